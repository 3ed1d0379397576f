// Package notify delivers deadline alerts to the desktop, terminals and the
// activity log.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/twiced-technology-gmbh/lumina/internal/scheduler"
)

// ErrUnsupported is returned by Notify on platforms without a notification tool.
var ErrUnsupported = errors.New("desktop notifications not supported on this platform")

const appName = "lumina"

// Desktop shows alerts through the platform notification tool: osascript on
// macOS, notify-send on Linux.
type Desktop struct {
	goos     string
	lookPath func(string) (string, error)
	start    func(name string, args ...string) error
}

// NewDesktop returns a notifier for the running platform.
func NewDesktop() *Desktop {
	return &Desktop{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start:    startDetached,
	}
}

// Authorized reports whether the notification tool is installed.
func (d *Desktop) Authorized(_ context.Context) (bool, error) {
	tool := d.tool()
	if tool == "" {
		return false, nil
	}
	if _, err := d.lookPath(tool); err != nil {
		return false, nil //nolint:nilerr // a missing tool means no permission
	}
	return true, nil
}

// RequestAuthorization is Authorized: neither tool has a permission prompt of
// its own; macOS asks the user on the first notification.
func (d *Desktop) RequestAuthorization(ctx context.Context) (bool, error) {
	return d.Authorized(ctx)
}

// Notify starts the notification tool and returns without waiting for it.
func (d *Desktop) Notify(n scheduler.Notification) error {
	name, args := d.command(n)
	if name == "" {
		return ErrUnsupported
	}
	if err := d.start(name, args...); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}
	return nil
}

func (d *Desktop) tool() string {
	switch d.goos {
	case "darwin":
		return "osascript"
	case "linux", "freebsd", "openbsd", "netbsd":
		return "notify-send"
	default:
		return ""
	}
}

func (d *Desktop) command(n scheduler.Notification) (string, []string) {
	switch tool := d.tool(); tool {
	case "osascript":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`,
			appleScriptEscape(n.Body), appleScriptEscape(n.Title))
		return tool, []string{"-e", script}
	case "notify-send":
		return tool, []string{"--app-name", appName, "--urgency", "normal", n.Title, n.Body}
	default:
		return "", nil
	}
}

func appleScriptEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// startDetached starts the command and reaps it in the background.
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...) //nolint:gosec // fixed tool names
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
