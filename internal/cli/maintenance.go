package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/classify"
	"github.com/sadopc/tabtrackr/internal/config"
	"github.com/sadopc/tabtrackr/internal/notify"
	"github.com/sadopc/tabtrackr/internal/recorder"
	"github.com/sadopc/tabtrackr/internal/store"
)

// now is the clock of the one-shot commands.
var now = time.Now

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop visits from before the current week",
	Args:  cobra.NoArgs,
	RunE:  runPrune,
}

var checkTasksCmd = &cobra.Command{
	Use:   "check-tasks",
	Short: "Notify when today's tasks are incomplete",
	Args:  cobra.NoArgs,
	RunE:  runCheckTasks,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's summary and the stored documents",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runPrune(cmd *cobra.Command, args []string) error {
	return withService(func(_ *config.Config, svc *activity.Service) error {
		res, err := svc.PruneWeekly(cmd.Context(), now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d visits and %d ledger days before %s.\n",
			res.VisitsRemoved, res.DaysRemoved, res.WeekStart.Format("2006-01-02"))
		return nil
	})
}

func runCheckTasks(cmd *cobra.Command, args []string) error {
	return withService(func(cfg *config.Config, svc *activity.Service) error {
		n, err := notify.New(cfg.Notifier)
		if err != nil {
			return err
		}
		count, err := recorder.CheckIncompleteTasks(cmd.Context(), svc, n, now())
		if err != nil {
			return err
		}
		if count == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "All of today's tasks are done.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), activity.IncompleteMessage(count))
		return nil
	})
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, s, err := openService(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	t := now()
	snap, err := svc.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	sum := activity.Summarize(snap.Visits, snap.Tasks, t)
	m := activity.ComputeMetrics(snap.Ledger, snap.Goals, svc.Classifier(), t)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Today (%s)\n", m.Date)
	fmt.Fprintf(out, "  Sites visited:   %d\n", sum.Visits)
	fmt.Fprintf(out, "  Tasks done:      %d/%d (%d%%)\n", sum.CompletedTasks, sum.Tasks, sum.TaskCompletion)
	fmt.Fprintf(out, "  Productive time: %s of %s (%d%%)\n",
		minutes(m.ProductiveTime), minutes(m.Goals.ProductiveTime), m.ProductiveProgress)
	fmt.Fprintf(out, "  Learning time:   %s of %s (%d%%)\n",
		minutes(m.LearningTime), minutes(m.Goals.LearningTime), m.LearningProgress)
	for _, c := range classify.Categories {
		fmt.Fprintf(out, "  %-16s %s\n", string(c)+":", minutes(m.ByCategory[c]))
	}

	entries, err := s.Entries(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nStorage (%s)\n", cfg.DBPath)
	for _, e := range entries {
		fmt.Fprintf(out, "  %-14s %7d bytes  %s\n", e.Key, e.Size, updated(e))
	}
	return nil
}

// minutes renders seconds as "1h05m".
func minutes(secs int64) string {
	return fmt.Sprintf("%dh%02dm", secs/3600, secs%3600/60)
}

func updated(e store.Entry) string {
	if e.UpdatedAt.IsZero() {
		return "never"
	}
	return e.UpdatedAt.Local().Format("2006-01-02 15:04")
}
