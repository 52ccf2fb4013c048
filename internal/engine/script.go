package engine

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Conversation copy that is part of the dialogue flow rather than the reference data.
const (
	welcomeText = "Hello! I'm your ExploreJH AI travel assistant for Jharkhand. I can help you plan the " +
		"perfect itinerary based on your wishlist, budget, and preferences. Let's start by telling me " +
		"which places you'd like to visit!"

	destinationMenuText = "Excellent! Let's plan your perfect Jharkhand adventure. Here are some amazing " +
		"destinations to choose from. You can select multiple places - just tell me which ones catch your interest:"

	placesNotedText = "Perfect! I've noted %s for your trip. Now, what's your budget for this adventure? " +
		"This will help me suggest the best options for accommodation, food, and activities."

	someDestinations = "some great destinations"

	budgetNotedText = "Great! With a budget of %s, I can plan a wonderful trip for you. How many days are you " +
		"planning to explore Jharkhand? More days mean we can cover more places at a relaxed pace."

	durationNotedText = "%s is perfect for a comprehensive Jharkhand experience! How many people will be " +
		"traveling? This helps me calculate costs and suggest appropriate accommodations."

	itineraryReadyText = "Fantastic! I've created a comprehensive %d-day itinerary for %d %s. This includes " +
		"detailed daily plans, transportation options, accommodation suggestions, and cost breakdowns. " +
		"Your adventure awaits!"
)

var (
	welcomeReplies   = []string{"Plan my trip", "Show popular destinations", "Budget planning help"}
	budgetReplies    = []string{"₹5,000", "₹10,000", "₹15,000", "₹20,000+"}
	durationReplies  = []string{"2 days", "3 days", "4 days", "5 days", "7+ days"}
	partySizeReplies = []string{"Just me (Solo)", "2 people (Couple)", "3-4 people (Small group)", "5+ people (Large group)"}
	itineraryReplies = []string{"Modify itinerary", "Book accommodations", "Get guide contacts", "Start new planning"}
	reengageReplies  = []string{"Plan a trip", "Ask about places", "Transportation info", "Food & culture", "Emergency help"}
	reengagePrompts  = []string{
		"I'd love to help you with that! Could you be more specific about what you're looking for?",
		"That's interesting! How can I assist you with your Jharkhand travel plans?",
		"I'm here to help! What aspect of Jharkhand travel would you like to know about?",
	}
)

// formatRupees renders an amount with thousands separators, e.g. ₹10,000.
func formatRupees(amount int) string {
	return message.NewPrinter(language.English).Sprintf("₹%d", amount)
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

func formatDays(n int) string {
	return fmt.Sprintf("%d %s", n, pluralize(n, "day", "days"))
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// QuickReplyPresets lists the quick replies offered at each step of the dialogue.
type QuickReplyPresets struct {
	Welcome   []string `json:"welcome"`
	Budget    []string `json:"budget"`
	Duration  []string `json:"duration"`
	PartySize []string `json:"party_size"`
	Itinerary []string `json:"itinerary"`
	Reengage  []string `json:"reengage"`
}

// Presets returns copies of the dialogue quick replies.
func Presets() QuickReplyPresets {
	return QuickReplyPresets{
		Welcome:   copyStrings(welcomeReplies),
		Budget:    copyStrings(budgetReplies),
		Duration:  copyStrings(durationReplies),
		PartySize: copyStrings(partySizeReplies),
		Itinerary: copyStrings(itineraryReplies),
		Reengage:  copyStrings(reengageReplies),
	}
}
