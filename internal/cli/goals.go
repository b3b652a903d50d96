package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/config"
)

var (
	goalProductive float64
	goalLearning   float64
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Show the daily time goals",
	Args:  cobra.NoArgs,
	RunE:  runGoals,
}

var goalsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the daily time goals in hours",
	Args:  cobra.NoArgs,
	RunE:  runGoalsSet,
}

func init() {
	goalsSetCmd.Flags().Float64Var(&goalProductive, "productive", 4, "Productive time goal in hours")
	goalsSetCmd.Flags().Float64Var(&goalLearning, "learning", 1, "Learning time goal in hours")
	goalsCmd.AddCommand(goalsSetCmd)
}

func runGoals(cmd *cobra.Command, args []string) error {
	return withService(func(_ *config.Config, svc *activity.Service) error {
		g, err := svc.Goals(cmd.Context())
		if err != nil {
			return err
		}
		printGoals(cmd, g)
		return nil
	})
}

// runGoalsSet only changes the goals whose flag was given.
func runGoalsSet(cmd *cobra.Command, args []string) error {
	return withService(func(_ *config.Config, svc *activity.Service) error {
		current, err := svc.Goals(cmd.Context())
		if err != nil {
			return err
		}
		productive := float64(current.ProductiveTime) / 3600
		learning := float64(current.LearningTime) / 3600
		if cmd.Flags().Changed("productive") {
			productive = goalProductive
		}
		if cmd.Flags().Changed("learning") {
			learning = goalLearning
		}

		g, err := activity.GoalsFromHours(productive, learning)
		if err != nil {
			return err
		}
		if err := svc.SaveGoals(cmd.Context(), g); err != nil {
			return err
		}
		printGoals(cmd, g)
		return nil
	})
}

func printGoals(cmd *cobra.Command, g activity.Goals) {
	fmt.Fprintf(cmd.OutOrStdout(), "Productive: %s\nLearning:   %s\n",
		minutes(g.ProductiveTime), minutes(g.LearningTime))
}
