// Package itinerary synthesizes multi-day travel plans from collected trip parameters.
package itinerary

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/explorejh/travel-assistant/internal/catalog"
	"github.com/explorejh/travel-assistant/internal/model"
)

const (
	// maxTransportLegs caps the legs taken from the transport table.
	maxTransportLegs = 3

	accommodationShare = 0.4
	foodShare          = 0.3
	miscShare          = 0.1
	revisitCostFactor  = 0.8

	baseRating       = 4.2
	ratingStep       = 0.1
	nightsPerStay    = 2
	firstStayLabel   = "Hotel Ranchi Plaza"
	firstStayLocated = "Ranchi City Center"
)

var revisitActivities = []string{"Deep exploration", "Hidden gems discovery", "Local interaction"}

// Picker chooses an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// Synthesizer builds itinerary plans from a catalog's reference tables.
type Synthesizer struct {
	catalog *catalog.Catalog
	picker  Picker
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithPicker sets the source used to choose revisit destinations.
func WithPicker(p Picker) Option {
	return func(s *Synthesizer) {
		s.picker = p
	}
}

// New creates a Synthesizer over c.
func New(c *catalog.Catalog, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		catalog: c,
		picker:  globalPicker{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize builds a plan. The only non-deterministic step is the choice of
// destination for days beyond the number of places. The input slice is not
// retained or modified. Synthesize never panics: an empty place list is replaced
// by the catalog's default places, a non-positive duration yields a plan with
// no days and a duration beyond the catalog's limit is capped at that limit.
func (s *Synthesizer) Synthesize(places []string, totalBudget, durationInDays, partySize int) *model.ItineraryPlan {
	durationInDays = s.catalog.ClampDuration(durationInDays)
	if len(places) == 0 {
		places = s.catalog.DefaultPlaces
	}
	places = append([]string(nil), places...)

	budget := float64(totalBudget)
	legs := s.transportLegs(len(places))

	var transportTotal float64
	for _, leg := range legs {
		transportTotal += leg.Cost
	}

	dailyActivityCost := jsRound(perDay(budget-transportTotal, durationInDays))
	costPerNight := perDay(budget*accommodationShare, durationInDays)
	foodTotal := budget * foodShare

	plan := &model.ItineraryPlan{
		Places:               places,
		DurationInDays:       durationInDays,
		PartySize:            partySize,
		TotalBudget:          totalBudget,
		TransportationLegs:   legs,
		AccommodationOptions: s.accommodations(places, durationInDays, costPerNight),
		DailyPlans:           s.dailyPlans(places, durationInDays, dailyActivityCost),
		CostBreakdown: model.CostBreakdown{
			AccommodationTotal:  costPerNight * float64(durationInDays),
			FoodTotal:           foodTotal,
			TransportationTotal: transportTotal,
			ActivitiesTotal:     dailyActivityCost*float64(durationInDays) - foodTotal,
			MiscellaneousTotal:  budget * miscShare,
		},
	}
	return plan
}

func (s *Synthesizer) transportLegs(placeCount int) []model.TransportLeg {
	n := min(placeCount, maxTransportLegs, len(s.catalog.TransportOptions))
	legs := make([]model.TransportLeg, 0, n)
	for _, opt := range s.catalog.TransportOptions[:n] {
		legs = append(legs, model.TransportLeg{
			Mode:          opt.Mode,
			RouteLabel:    opt.Route,
			Cost:          opt.Cost,
			DurationLabel: opt.Duration,
		})
	}
	return legs
}

func (s *Synthesizer) dailyPlans(places []string, days int, dailyActivityCost float64) []model.DailyPlan {
	plans := make([]model.DailyPlan, 0, max(days, 0))
	for day := 1; day <= days; day++ {
		if day <= len(places) {
			place := places[day-1]
			plans = append(plans, model.DailyPlan{
				DayIndex:      day,
				Destination:   place,
				Activities:    s.catalog.Activities(place),
				EstimatedCost: dailyActivityCost,
				TimeSlots: model.TimeSlots{
					Morning:   fmt.Sprintf("Visit %s - Main attraction", place),
					Afternoon: "Explore local markets and cuisine",
					Evening:   "Sunset photography and relaxation",
				},
				Meals: model.Meals{
					Breakfast: fmt.Sprintf("Local breakfast near %s", place),
					Lunch:     "Traditional Jharkhandi thali",
					Dinner:    "Regional specialties",
				},
			})
			continue
		}

		place := places[s.picker.IntN(len(places))]
		plans = append(plans, model.DailyPlan{
			DayIndex:      day,
			Destination:   fmt.Sprintf("Explore more of %s area", place),
			RevisitOf:     place,
			Activities:    append([]string(nil), revisitActivities...),
			EstimatedCost: dailyActivityCost * revisitCostFactor,
			TimeSlots: model.TimeSlots{
				Morning:   fmt.Sprintf("Discover hidden spots around %s", place),
				Afternoon: "Visit nearby villages and interact with locals",
				Evening:   "Cultural activities and folk performances",
			},
			Meals: model.Meals{
				Breakfast: "Village-style breakfast",
				Lunch:     "Picnic lunch in scenic location",
				Dinner:    "Home-style dinner with local family",
			},
		})
	}
	return plans
}

// accommodations returns ceil(days/2) options. Every option carries the same
// nightly cost regardless of the nights assigned to it.
func (s *Synthesizer) accommodations(places []string, days int, costPerNight float64) []model.AccommodationOption {
	count := 0
	if days > 0 {
		count = (days + nightsPerStay - 1) / nightsPerStay
	}

	options := make([]model.AccommodationOption, 0, count)
	for i := 0; i < count; i++ {
		label, location := firstStayLabel, firstStayLocated
		if i > 0 {
			place := places[i%len(places)]
			label = place + " Guest House"
			location = "Near " + place
		}
		options = append(options, model.AccommodationOption{
			Label:          label,
			CostPerNight:   costPerNight,
			RatingScore:    math.Round((baseRating-ratingStep*float64(i))*10) / 10,
			LocationLabel:  location,
			NightsAssigned: min(nightsPerStay, days-i*nightsPerStay),
		})
	}
	return options
}

// perDay divides amount across days, treating a non-positive day count as zero cost.
func perDay(amount float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return amount / float64(days)
}

// jsRound rounds half-way values toward positive infinity, so -2.5 becomes -2.
func jsRound(x float64) float64 {
	return math.Floor(x + 0.5)
}
