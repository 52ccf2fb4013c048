// Package catalog holds the reference data the travel assistant converses over:
// destinations, activities, transport options and the FAQ topic table.
package catalog

import (
	"strings"
)

// Topic is an FAQ entry answered whenever one of its keywords appears in an utterance.
type Topic struct {
	Name         string   `koanf:"name" json:"name"`
	Keywords     []string `koanf:"keywords" json:"keywords"`
	Response     string   `koanf:"response" json:"response"`
	QuickReplies []string `koanf:"quick_replies" json:"quick_replies,omitempty"`
}

// TransportOption is a row of the static transportation table.
type TransportOption struct {
	Mode     string  `koanf:"mode" json:"mode"`
	Route    string  `koanf:"route" json:"route"`
	Cost     float64 `koanf:"cost" json:"cost"`
	Duration string  `koanf:"duration" json:"duration"`
}

// Defaults are substituted when an answer carries no usable number.
type Defaults struct {
	BudgetInRupees int `koanf:"budget_in_rupees" json:"budget_in_rupees"`
	DurationInDays int `koanf:"duration_in_days" json:"duration_in_days"`
	PartySize      int `koanf:"party_size" json:"party_size"`
}

// DefaultMaxDurationInDays is the trip length limit used when a catalog sets none.
const DefaultMaxDurationInDays = 60

// Limits bound the numbers a conversation can carry into a plan.
type Limits struct {
	MaxDurationInDays int `koanf:"max_duration_in_days" json:"max_duration_in_days"`
}

// Catalog is the complete reference data set. A Catalog is treated as immutable
// once loaded; sessions share it by pointer.
type Catalog struct {
	Destinations      []string            `koanf:"destinations" json:"destinations"`
	ActivityMap       map[string][]string `koanf:"activities" json:"activities"`
	GenericActivities []string            `koanf:"generic_activities" json:"generic_activities"`
	TransportOptions  []TransportOption   `koanf:"transport" json:"transport"`
	// Topics are matched in order; the first topic with a matching keyword wins.
	Topics           []Topic  `koanf:"topics" json:"topics"`
	PlanningKeywords []string `koanf:"planning_keywords" json:"planning_keywords"`
	DefaultPlaces    []string `koanf:"default_places" json:"default_places"`
	Defaults         Defaults `koanf:"defaults" json:"defaults"`
	Limits           Limits   `koanf:"limits" json:"limits"`
}

// MaxDuration returns the longest trip a plan may cover.
func (c *Catalog) MaxDuration() int {
	if c.Limits.MaxDurationInDays > 0 {
		return c.Limits.MaxDurationInDays
	}
	return DefaultMaxDurationInDays
}

// ClampDuration caps days at MaxDuration. Non-positive values are returned unchanged.
func (c *Catalog) ClampDuration(days int) int {
	return min(days, c.MaxDuration())
}

// Activities returns a copy of the activity list for place, or the generic list
// when the place is unknown.
func (c *Catalog) Activities(place string) []string {
	if acts, ok := c.ActivityMap[place]; ok && len(acts) > 0 {
		return append([]string(nil), acts...)
	}
	return append([]string(nil), c.GenericActivities...)
}

// TopicNames returns the topic names in match order.
func (c *Catalog) TopicNames() []string {
	names := make([]string, len(c.Topics))
	for i, t := range c.Topics {
		names[i] = t.Name
	}
	return names
}

// normalize lowercases keywords so matching can work on a lowercased utterance.
func (c *Catalog) normalize() {
	for i := range c.Topics {
		c.Topics[i].Keywords = lowerAll(c.Topics[i].Keywords)
	}
	c.PlanningKeywords = lowerAll(c.PlanningKeywords)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}

// Default returns the built-in Jharkhand catalog.
func Default() *Catalog {
	return &Catalog{
		Destinations: []string{
			"Hundru Falls", "Dassam Falls", "Netarhat Hill Station", "Betla National Park",
			"Jagannath Temple", "Rock Garden", "Ranchi Lake", "Palamau Tiger Reserve",
		},
		ActivityMap: map[string][]string{
			"Hundru Falls":          {"Waterfall trekking", "Photography", "Picnic by the falls"},
			"Dassam Falls":          {"Nature walks", "Rock climbing", "Swimming"},
			"Netarhat Hill Station": {"Sunrise viewing", "Hill trekking", "Pine forest walks"},
			"Betla National Park":   {"Wildlife safari", "Bird watching", "Nature photography"},
			"Jagannath Temple":      {"Temple visit", "Religious ceremonies", "Architecture study"},
			"Rock Garden":           {"Garden walks", "Rock formations", "Peaceful meditation"},
			"Ranchi Lake":           {"Boating", "Lake-side walks", "Sunset viewing"},
			"Palamau Tiger Reserve": {"Tiger spotting", "Jeep safari", "Wildlife photography"},
		},
		GenericActivities: []string{"Sightseeing", "Photography", "Local cuisine exploration"},
		TransportOptions: []TransportOption{
			{Mode: "Public Bus", Route: "Ranchi → Netarhat", Cost: 150, Duration: "3 hours"},
			{Mode: "Local Taxi", Route: "Netarhat → Betla", Cost: 800, Duration: "2 hours"},
			{Mode: "Uber", Route: "City Center → Rock Garden", Cost: 250, Duration: "45 mins"},
		},
		Topics:           defaultTopics(),
		PlanningKeywords: []string{"plan", "trip", "itinerary"},
		DefaultPlaces:    []string{"Hundru Falls", "Netarhat Hill Station", "Betla National Park"},
		Defaults: Defaults{
			BudgetInRupees: 10000,
			DurationInDays: 3,
			PartySize:      1,
		},
		Limits: Limits{MaxDurationInDays: DefaultMaxDurationInDays},
	}
}

func defaultTopics() []Topic {
	return []Topic{
		{
			Name:     "greeting",
			Keywords: []string{"hello", "hi", "hey"},
			Response: "Hello! I'm your AI travel assistant for Jharkhand. I can help you plan amazing trips, " +
				"answer questions about places, transportation, and local culture. How can I assist you today?",
			QuickReplies: []string{"Plan a trip", "Ask about places", "Transportation info", "Local culture"},
		},
		{
			Name:     "help",
			Keywords: []string{"help", "what can you do"},
			Response: "I'm here to be your complete Jharkhand travel companion! Here's what I can help you with:\n\n" +
				"Trip Planning: detailed day-by-day itineraries\n" +
				"Transportation: the best routes and transport options\n" +
				"Budget Planning: cost estimates\n" +
				"Accommodation: hotels and stays\n" +
				"Places: information about tourist attractions\n" +
				"Food: local cuisine recommendations\n" +
				"Culture: local traditions and festivals\n" +
				"Safety: travel tips and emergency contacts\n\n" +
				"What would you like to explore?",
			QuickReplies: []string{"Plan my trip", "Show famous places", "Transportation options", "Local food guide", "Cultural information"},
		},
		{
			Name:     "famous",
			Keywords: []string{"famous", "popular", "best places", "tourist"},
			Response: "Jharkhand has amazing tourist destinations! Here are the most popular ones:\n\n" +
				"Hill Stations: Netarhat, Parasnath Hills\n" +
				"Waterfalls: Hundru Falls, Dassam Falls, Jonha Falls\n" +
				"Wildlife: Betla National Park, Palamau Tiger Reserve\n" +
				"Religious Sites: Jagannath Temple, Baidyanath Dham\n" +
				"Gardens: Rock Garden Ranchi, Jubilee Park\n" +
				"Adventure: Dalma Wildlife Sanctuary, Ranchi Hills\n\n" +
				"Which type of destination interests you most?",
			QuickReplies: []string{"Plan trip to these places", "Tell me about waterfalls", "Wildlife safaris", "Religious sites", "Adventure activities"},
		},
		{
			Name:     "food",
			Keywords: []string{"food", "cuisine", "eat", "restaurant"},
			Response: "Jharkhand offers delicious traditional cuisine! Must-try local foods:\n\n" +
				"Main Dishes: Litti Chokha, Dhuska, Pitha\n" +
				"Curries: Santhal Chicken, Rugra (mushroom curry)\n" +
				"Tribal Delicacies: Handia (rice beer), Mahua flowers\n" +
				"Vegetables: Bamboo shoots, wild greens\n" +
				"Sweets: Thekua, Tilkut, Khaja\n\n" +
				"Would you like me to include food experiences in your trip planning?",
			QuickReplies: []string{"Yes, plan food tour", "Best restaurants", "Local markets", "Cooking experiences"},
		},
		{
			Name:     "culture",
			Keywords: []string{"culture", "festival", "tradition", "tribal"},
			Response: "Jharkhand has rich tribal culture and vibrant festivals:\n\n" +
				"Major Festivals: Sarhul (spring festival), Karma, Sohrai\n" +
				"Tribal Communities: Santhal, Munda, Oraon, Ho\n" +
				"Arts & Crafts: Sohrai paintings, tribal jewelry, bamboo crafts\n" +
				"Music & Dance: Santhal dance, Mundari music, Karma dance\n" +
				"Heritage Sites: Tribal museums, ancient temples\n\n" +
				"When are you planning to visit? I can suggest festivals happening during your trip!",
			QuickReplies: []string{"Plan cultural tour", "Festival calendar", "Art and crafts", "Tribal experiences"},
		},
		{
			Name:     "transport",
			Keywords: []string{"transport", "how to reach", "bus", "train"},
			Response: "Here are the transportation options in Jharkhand:\n\n" +
				"Airport: Birsa Munda Airport (Ranchi)\n" +
				"Railways: Major stations - Ranchi, Dhanbad, Jamshedpur\n" +
				"Buses: State transport, private operators\n" +
				"Road: Well-connected highways\n" +
				"Local: Auto-rickshaws, taxis, bike rentals\n\n" +
				"Which route are you looking for?",
			QuickReplies: []string{"Plan my route", "Bus timings", "Train bookings", "Local transport"},
		},
		{
			Name:     "safety",
			Keywords: []string{"safety", "emergency", "contact", "sos"},
			Response: "Safety is important! Here are emergency contacts and tips:\n\n" +
				"Emergency Numbers:\n" +
				"- Police: 100\n" +
				"- Medical: 108\n" +
				"- Tourist Helpline: 1363\n\n" +
				"Safety Tips:\n" +
				"- Carry ID and emergency contacts\n" +
				"- Inform someone about your itinerary\n" +
				"- Stay hydrated in tribal areas\n" +
				"- Respect local customs\n" +
				"- Use registered tour guides\n\n" +
				"Would you like me to include safety checkpoints in your itinerary?",
			QuickReplies: []string{"Yes, add safety info", "Emergency contacts", "Travel insurance", "Local guide contacts"},
		},
	}
}
