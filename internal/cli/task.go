package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/config"
)

var (
	taskURL      string
	taskCategory string
	taskAll      bool
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage today's tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a task for today",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List today's tasks",
	Args:  cobra.NoArgs,
	RunE:  runTaskList,
}

var taskToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Mark a task done or not done",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskToggle,
}

func init() {
	taskAddCmd.Flags().StringVar(&taskURL, "url", "", "Page to open for the task")
	taskAddCmd.Flags().StringVar(&taskCategory, "category", "Other",
		"Category: "+strings.Join(activity.TaskCategories, ", "))
	taskListCmd.Flags().BoolVar(&taskAll, "all", false, "Include tasks from other days")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskToggleCmd)
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	return withService(func(_ *config.Config, svc *activity.Service) error {
		task, err := svc.CreateTask(cmd.Context(), activity.NewTask{
			Name:     strings.Join(args, " "),
			URL:      taskURL,
			Category: taskCategory,
		}, now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added task %d: %s [%s]\n", task.ID, task.Name, task.Category)
		return nil
	})
}

func runTaskList(cmd *cobra.Command, args []string) error {
	return withService(func(_ *config.Config, svc *activity.Service) error {
		tasks, err := svc.Tasks(cmd.Context())
		if err != nil {
			return err
		}
		if !taskAll {
			tasks = activity.TodayTasks(tasks, now())
		}

		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks for today.")
			return nil
		}
		for _, t := range tasks {
			check := " "
			if t.Completed {
				check = "x"
			}
			fmt.Fprintf(out, "[%s] %d  %s  (%s)", check, t.ID, t.Name, t.Category)
			if t.URL != "" {
				fmt.Fprintf(out, "  %s", t.URL)
			}
			fmt.Fprintln(out)
		}
		return nil
	})
}

func runTaskToggle(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task id %q", args[0])
	}
	return withService(func(_ *config.Config, svc *activity.Service) error {
		task, err := svc.ToggleTask(cmd.Context(), id)
		if err != nil {
			return err
		}
		state := "not done"
		if task.Completed {
			state = "done"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is %s.\n", task.Name, state)
		return nil
	})
}
