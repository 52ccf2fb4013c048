// Package engine implements the scripted travel assistant: an ordered routing
// table over free-text utterances, the planning dialogue, and chat sessions that
// answer after a simulated typing delay.
package engine

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/explorejh/travel-assistant/internal/catalog"
	"github.com/explorejh/travel-assistant/internal/itinerary"
	"github.com/explorejh/travel-assistant/internal/model"
)

// Rule names that are not derived from catalog topics.
const (
	RuleStartPlanning    = "start-planning"
	RuleCollectPlaces    = "collect-places"
	RuleCollectBudget    = "collect-budget"
	RuleCollectDuration  = "collect-duration"
	RuleCollectPartySize = "collect-party-size"
	RuleFallback         = "fallback"
	topicRulePrefix      = "topic:"
)

// Turn is a single utterance evaluated against the routing table.
type Turn struct {
	Text  string
	Lower string
	State model.DialogueState
}

// Reply is the assistant's answer to a turn.
type Reply struct {
	Text         string
	QuickReplies []string
	Itinerary    *model.ItineraryPlan
}

// Rule pairs a predicate with the handler run when it is the first match.
// Handle returns the reply and the next dialogue state.
type Rule struct {
	Name   string
	Match  func(t *Turn) bool
	Handle func(t *Turn) (Reply, model.DialogueState)
}

// Outcome is the result of routing one utterance.
type Outcome struct {
	Rule  string
	Reply Reply
	State model.DialogueState
}

// Router evaluates rules top to bottom; the first match wins. The last rule
// always matches, so every utterance gets an answer.
type Router struct {
	catalog *catalog.Catalog
	synth   *itinerary.Synthesizer
	picker  itinerary.Picker
	rules   []Rule
}

// NewRouter builds the routing table for c. picker drives the random choices
// (re-engagement prompt, revisit days); nil uses the global source.
func NewRouter(c *catalog.Catalog, picker itinerary.Picker) *Router {
	var opts []itinerary.Option
	if picker != nil {
		opts = append(opts, itinerary.WithPicker(picker))
	}

	r := &Router{
		catalog: c,
		synth:   itinerary.New(c, opts...),
		picker:  picker,
	}
	r.rules = r.buildRules()
	return r
}

// Catalog returns the reference data the router was built from.
func (r *Router) Catalog() *catalog.Catalog {
	return r.catalog
}

// Synthesizer returns the itinerary synthesizer used on flow completion.
func (r *Router) Synthesizer() *itinerary.Synthesizer {
	return r.synth
}

// RuleNames lists the routing table in evaluation order.
func (r *Router) RuleNames() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}

// Route answers text given the current state. It does not modify state.
func (r *Router) Route(state model.DialogueState, text string) Outcome {
	turn := &Turn{
		Text:  text,
		Lower: strings.ToLower(text),
		State: state.Clone(),
	}

	for _, rule := range r.rules {
		if !rule.Match(turn) {
			continue
		}
		reply, next := rule.Handle(turn)
		return Outcome{Rule: rule.Name, Reply: reply, State: next}
	}

	// Unreachable while the fallback rule is last.
	return Outcome{Rule: RuleFallback, Reply: r.reengage(), State: turn.State}
}

func (r *Router) buildRules() []Rule {
	rules := make([]Rule, 0, len(r.catalog.Topics)+6)

	for _, topic := range r.catalog.Topics {
		topic := topic
		rules = append(rules, Rule{
			Name: topicRulePrefix + topic.Name,
			Match: func(t *Turn) bool {
				return containsAny(t.Lower, topic.Keywords)
			},
			Handle: func(t *Turn) (Reply, model.DialogueState) {
				return Reply{Text: topic.Response, QuickReplies: copyStrings(topic.QuickReplies)}, t.State
			},
		})
	}

	rules = append(rules,
		Rule{
			Name: RuleStartPlanning,
			Match: func(t *Turn) bool {
				return t.State.Phase == model.PhaseInitial || containsAny(t.Lower, r.catalog.PlanningKeywords)
			},
			Handle: r.startPlanning,
		},
		phaseRule(RuleCollectPlaces, model.PhaseCollectingPlaces, r.collectPlaces),
		phaseRule(RuleCollectBudget, model.PhaseCollectingBudget, r.collectBudget),
		phaseRule(RuleCollectDuration, model.PhaseCollectingDuration, r.collectDuration),
		phaseRule(RuleCollectPartySize, model.PhaseCollectingPartySize, r.collectPartySize),
		Rule{
			Name:  RuleFallback,
			Match: func(*Turn) bool { return true },
			Handle: func(t *Turn) (Reply, model.DialogueState) {
				return r.reengage(), t.State
			},
		},
	)
	return rules
}

func phaseRule(name string, phase model.Phase, handle func(t *Turn) (Reply, model.DialogueState)) Rule {
	return Rule{
		Name:   name,
		Match:  func(t *Turn) bool { return t.State.Phase == phase },
		Handle: handle,
	}
}

// startPlanning begins a new flow, discarding any earlier selection.
func (r *Router) startPlanning(*Turn) (Reply, model.DialogueState) {
	next := model.DialogueState{Phase: model.PhaseCollectingPlaces}
	return Reply{Text: destinationMenuText, QuickReplies: copyStrings(r.catalog.Destinations)}, next
}

func (r *Router) collectPlaces(t *Turn) (Reply, model.DialogueState) {
	places, found := resolvePlaces(r.catalog.Destinations, r.catalog.DefaultPlaces, t.Lower)

	noted := someDestinations
	if found {
		noted = strings.Join(places, ", ")
	}

	next := t.State
	next.Draft.Places = places
	next.Phase = model.PhaseCollectingBudget
	return Reply{Text: fmt.Sprintf(placesNotedText, noted), QuickReplies: copyStrings(budgetReplies)}, next
}

func (r *Router) collectBudget(t *Turn) (Reply, model.DialogueState) {
	budget := parseCount(t.Text, r.catalog.Defaults.BudgetInRupees)

	next := t.State
	next.Draft.BudgetInRupees = budget
	next.Phase = model.PhaseCollectingDuration
	return Reply{Text: fmt.Sprintf(budgetNotedText, formatRupees(budget)), QuickReplies: copyStrings(durationReplies)}, next
}

func (r *Router) collectDuration(t *Turn) (Reply, model.DialogueState) {
	days := r.catalog.ClampDuration(parseCount(t.Text, r.catalog.Defaults.DurationInDays))

	next := t.State
	next.Draft.DurationInDays = days
	next.Phase = model.PhaseCollectingPartySize
	return Reply{Text: fmt.Sprintf(durationNotedText, formatDays(days)), QuickReplies: copyStrings(partySizeReplies)}, next
}

func (r *Router) collectPartySize(t *Turn) (Reply, model.DialogueState) {
	people := parseCount(t.Text, r.catalog.Defaults.PartySize)

	next := t.State
	next.Draft.PartySize = people
	next.Phase = model.PhaseComplete

	d := next.Draft
	places := d.Places
	if len(places) == 0 {
		places = r.catalog.DefaultPlaces
	}
	budget := orDefault(d.BudgetInRupees, r.catalog.Defaults.BudgetInRupees)
	days := orDefault(d.DurationInDays, r.catalog.Defaults.DurationInDays)

	plan := r.synth.Synthesize(places, budget, days, people)

	text := fmt.Sprintf(itineraryReadyText, plan.DurationInDays, people, pluralize(people, "person", "people"))
	return Reply{Text: text, QuickReplies: copyStrings(itineraryReplies), Itinerary: plan}, next
}

func (r *Router) reengage() Reply {
	var i int
	if r.picker != nil {
		i = r.picker.IntN(len(reengagePrompts))
	} else {
		i = rand.IntN(len(reengagePrompts))
	}
	return Reply{Text: reengagePrompts[i], QuickReplies: copyStrings(reengageReplies)}
}

func orDefault(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

// TopicRuleName returns the rule name for a catalog topic.
func TopicRuleName(topic string) string {
	return topicRulePrefix + topic
}
