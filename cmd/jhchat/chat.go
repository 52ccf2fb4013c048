package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/explorejh/travel-assistant/internal/catalog"
	"github.com/explorejh/travel-assistant/internal/engine"
	"github.com/explorejh/travel-assistant/internal/itinerary"
	"github.com/explorejh/travel-assistant/internal/model"
	"github.com/explorejh/travel-assistant/pkg/logger"
)

const quitCommand = "/quit"

// runChat reads utterances line by line from in and prints the assistant's
// replies to out until EOF or /quit.
func runChat(in io.Reader, out io.Writer, c *catalog.Catalog, delay time.Duration, log *logger.Logger) error {
	sess := engine.NewSession("terminal", "local", engine.NewRouter(c, nil),
		engine.WithTypingDelay(delay, 0),
		engine.WithCancelOnClose(true),
		engine.WithLogger(log),
	)
	defer sess.Close()

	var last uint64
	last = printReplies(out, sess.MessagesAfter(last), last)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == quitCommand {
			break
		}

		if _, ok := sess.SubmitUserMessage(line); !ok {
			continue
		}
		sess.Wait()
		last = printReplies(out, sess.MessagesAfter(last), last)
	}
	fmt.Fprintln(out)

	return scanner.Err()
}

// printReplies prints assistant messages and returns the highest sequence seen.
func printReplies(out io.Writer, msgs []model.Message, last uint64) uint64 {
	for _, msg := range msgs {
		last = msg.Sequence
		if msg.Origin != model.OriginAssistant {
			continue
		}

		fmt.Fprintf(out, "\n%s\n", msg.Text)
		if msg.Itinerary != nil {
			writePlan(out, msg.Itinerary)
		}
		if len(msg.QuickReplies) > 0 {
			fmt.Fprintf(out, "  [%s]\n", strings.Join(msg.QuickReplies, "] ["))
		}
	}
	return last
}

func runPlan(out io.Writer, c *catalog.Catalog, places []string, budget, days, people int, asJSON bool) error {
	plan := itinerary.New(c).Synthesize(places, budget, days, people)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	writePlan(out, plan)
	return nil
}

func writePlan(out io.Writer, plan *model.ItineraryPlan) {
	fmt.Fprintf(out, "\n== %d-day trip for %d: %s ==\n", plan.DurationInDays, plan.PartySize, strings.Join(plan.Places, ", "))

	for _, day := range plan.DailyPlans {
		fmt.Fprintf(out, "Day %d: %s (about Rs %.0f)\n", day.DayIndex, day.Destination, day.EstimatedCost)
		fmt.Fprintf(out, "  morning   %s\n", day.TimeSlots.Morning)
		fmt.Fprintf(out, "  afternoon %s\n", day.TimeSlots.Afternoon)
		fmt.Fprintf(out, "  evening   %s\n", day.TimeSlots.Evening)
	}

	if len(plan.TransportationLegs) > 0 {
		fmt.Fprintln(out, "Transport:")
		for _, leg := range plan.TransportationLegs {
			fmt.Fprintf(out, "  %s, %s, Rs %.0f, %s\n", leg.Mode, leg.RouteLabel, leg.Cost, leg.DurationLabel)
		}
	}

	if len(plan.AccommodationOptions) > 0 {
		fmt.Fprintln(out, "Stays:")
		for _, stay := range plan.AccommodationOptions {
			fmt.Fprintf(out, "  %s (%s), Rs %.0f/night x %d, rated %.1f\n",
				stay.Label, stay.LocationLabel, stay.CostPerNight, stay.NightsAssigned, stay.RatingScore)
		}
	}

	b := plan.CostBreakdown
	fmt.Fprintf(out, "Budget Rs %d: stay %.0f, food %.0f, transport %.0f, activities %.0f, misc %.0f\n",
		plan.TotalBudget, b.AccommodationTotal, b.FoodTotal, b.TransportationTotal, b.ActivitiesTotal, b.MiscellaneousTotal)
}
