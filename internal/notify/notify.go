package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

const (
	KindAuto       = "auto"
	KindOSAScript  = "osascript"
	KindNotifySend = "notify-send"
	KindLog        = "log"
)

var ErrUnknownKind = errors.New("unknown notifier")

const commandTimeout = 10 * time.Second

// New returns the notifier named by kind. "auto" picks osascript on macOS,
// notify-send when it is on PATH, and the log otherwise.
func New(kind string) (Notifier, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindAuto:
		return detect(runtime.GOOS, exec.LookPath), nil
	case KindOSAScript:
		return OSAScript{}, nil
	case KindNotifySend:
		return NotifySend{}, nil
	case KindLog:
		return Log{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func detect(goos string, lookPath func(string) (string, error)) Notifier {
	if goos == "darwin" {
		return OSAScript{}
	}
	if _, err := lookPath("notify-send"); err == nil {
		return NotifySend{}
	}
	return Log{}
}

// OSAScript posts a macOS notification through osascript.
type OSAScript struct{}

func (OSAScript) Notify(ctx context.Context, title, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		escapeAppleScript(message),
		escapeAppleScript(title),
	)
	return run(ctx, "osascript", "-e", script)
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// NotifySend posts a freedesktop notification.
type NotifySend struct{}

func (NotifySend) Notify(ctx context.Context, title, message string) error {
	return run(ctx, "notify-send", "--app-name=tabtrackr", title, message)
}

// Log writes the notification to the standard logger.
type Log struct{}

func (Log) Notify(_ context.Context, title, message string) error {
	log.Printf("notification: %s: %s", title, message)
	return nil
}

func run(ctx context.Context, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s timed out", name)
		}
		return fmt.Errorf("%s: %w, stderr: %s", name, err, stderr.String())
	}
	return nil
}
