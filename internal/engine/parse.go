package engine

import (
	"strconv"
	"strings"
)

// parseCount keeps only the ASCII digits of text and parses them. The fallback is
// used when there are no digits, when the number overflows, and when it is zero.
func parseCount(text string, fallback int) int {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	n, err := strconv.Atoi(b.String())
	if err != nil || n == 0 {
		return fallback
	}
	return n
}

// resolvePlaces picks the destinations mentioned in a lowercased utterance.
// A destination matches when the utterance contains its name or its name contains
// the utterance's first word. Failing that, any word of the utterance contained in
// a destination name selects it. found is false when nothing matched and the
// defaults were returned.
func resolvePlaces(destinations, defaults []string, lower string) (places []string, found bool) {
	words := strings.Fields(lower)

	var first string
	if len(words) > 0 {
		first = words[0]
	}

	for _, d := range destinations {
		name := strings.ToLower(d)
		if strings.Contains(lower, name) || (first != "" && strings.Contains(name, first)) {
			places = append(places, d)
		}
	}
	if len(places) > 0 {
		return places, true
	}

	for _, d := range destinations {
		name := strings.ToLower(d)
		for _, w := range words {
			if strings.Contains(name, w) {
				places = append(places, d)
				break
			}
		}
	}
	if len(places) > 0 {
		return places, true
	}

	return copyStrings(defaults), false
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
