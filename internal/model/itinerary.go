package model

// ItineraryPlan is a synthesized multi-day travel plan. Plans are immutable once
// attached to a message; regenerating produces a new plan.
type ItineraryPlan struct {
	Places               []string              `json:"places"`
	DurationInDays       int                   `json:"duration_in_days"`
	PartySize            int                   `json:"party_size"`
	TotalBudget          int                   `json:"total_budget"`
	TransportationLegs   []TransportLeg        `json:"transportation_legs"`
	AccommodationOptions []AccommodationOption `json:"accommodation_options"`
	DailyPlans           []DailyPlan           `json:"daily_plans"`
	CostBreakdown        CostBreakdown         `json:"cost_breakdown"`
}

// TransportLeg is one leg of the suggested transportation.
type TransportLeg struct {
	Mode          string  `json:"mode"`
	RouteLabel    string  `json:"route_label"`
	Cost          float64 `json:"cost"`
	DurationLabel string  `json:"duration_label"`
}

// AccommodationOption is a suggested place to stay.
type AccommodationOption struct {
	Label          string  `json:"label"`
	CostPerNight   float64 `json:"cost_per_night"`
	RatingScore    float64 `json:"rating_score"`
	LocationLabel  string  `json:"location_label"`
	NightsAssigned int     `json:"nights_assigned"`
}

// DailyPlan is the plan for a single day of the trip.
type DailyPlan struct {
	DayIndex      int       `json:"day_index"`
	Destination   string    `json:"destination"`
	RevisitOf     string    `json:"revisit_of,omitempty"`
	Activities    []string  `json:"activities"`
	EstimatedCost float64   `json:"estimated_cost"`
	TimeSlots     TimeSlots `json:"time_slots"`
	Meals         Meals     `json:"meals"`
}

// Revisit reports whether the day revisits an already planned place.
func (d DailyPlan) Revisit() bool {
	return d.RevisitOf != ""
}

// TimeSlots describes a day's morning, afternoon and evening.
type TimeSlots struct {
	Morning   string `json:"morning"`
	Afternoon string `json:"afternoon"`
	Evening   string `json:"evening"`
}

// Meals describes a day's meals.
type Meals struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
}

// CostBreakdown splits the budget into categories. The figures are derived from
// fixed percentage splits and do not necessarily sum to the total budget.
type CostBreakdown struct {
	AccommodationTotal  float64 `json:"accommodation_total"`
	FoodTotal           float64 `json:"food_total"`
	TransportationTotal float64 `json:"transportation_total"`
	ActivitiesTotal     float64 `json:"activities_total"`
	MiscellaneousTotal  float64 `json:"miscellaneous_total"`
}

// ItineraryRequest asks for a plan to be synthesized directly.
type ItineraryRequest struct {
	Places []string `json:"places"`
	Budget int      `json:"budget"`
	Days   int      `json:"days"`
	People int      `json:"people"`
}
