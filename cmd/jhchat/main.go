// Package main is a terminal client that chats with a local travel assistant.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/explorejh/travel-assistant/internal/catalog"
	"github.com/explorejh/travel-assistant/pkg/logger"
)

var (
	catalogPath string
	typingDelay time.Duration
	verbose     bool

	planPlaces []string
	planBudget int
	planDays   int
	planPeople int
	planJSON   bool
)

var rootCmd = &cobra.Command{
	Use:   "jhchat",
	Short: "Chat with the ExploreJH travel assistant in your terminal",
	Long: `jhchat runs a local conversation with the ExploreJH travel assistant.
Type a message and press enter; type /quit to leave.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCatalog()
		if err != nil {
			return err
		}
		return runChat(cmd.InOrStdin(), cmd.OutOrStdout(), store.Current(), typingDelay, newLogger())
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print an itinerary without a conversation",
	Example: `  jhchat plan --places "Hundru Falls,Betla National Park" --budget 15000 --days 4 --people 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCatalog()
		if err != nil {
			return err
		}
		return runPlan(cmd.OutOrStdout(), store.Current(), planPlaces, planBudget, planDays, planPeople, planJSON)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <catalog.yaml>",
	Short: "Check a catalog file for errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalog.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d destinations, %d topics\n", len(c.Destinations), len(c.Topics))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "", "Catalog YAML file (default: built-in Jharkhand catalog)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
	rootCmd.Flags().DurationVar(&typingDelay, "delay", 0, "Simulated typing delay before each reply")

	planCmd.Flags().StringSliceVar(&planPlaces, "places", nil, "Destinations to visit (default: catalog default places)")
	planCmd.Flags().IntVar(&planBudget, "budget", 10000, "Total budget in rupees")
	planCmd.Flags().IntVar(&planDays, "days", 3, "Trip length in days")
	planCmd.Flags().IntVar(&planPeople, "people", 1, "Number of travellers")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the itinerary as JSON")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *logger.Logger {
	return logger.NewConsole(verbose)
}

func openCatalog() (*catalog.Store, error) {
	store, err := catalog.OpenStore(catalogPath, newLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return store, nil
}
