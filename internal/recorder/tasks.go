package recorder

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/tabtrackr/internal/activity"
	"github.com/sadopc/tabtrackr/internal/notify"
)

// ReminderTitle is the title of the incomplete-task notification.
const ReminderTitle = "Incomplete Tasks Reminder"

// CheckIncompleteTasks sends one reminder when tasks created today are still
// open and returns how many there are. Nothing is remembered between calls,
// so every check with open tasks notifies again.
func CheckIncompleteTasks(ctx context.Context, svc *activity.Service, n notify.Notifier, now time.Time) (int, error) {
	tasks, err := svc.Tasks(ctx)
	if err != nil {
		return 0, err
	}
	open := activity.IncompleteToday(tasks, now)
	if open == 0 {
		return 0, nil
	}
	if err := n.Notify(ctx, ReminderTitle, activity.IncompleteMessage(open)); err != nil {
		return open, fmt.Errorf("notify: %w", err)
	}
	return open, nil
}
