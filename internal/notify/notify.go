// Package notify provides presenter implementations for the
// scheduler's presentation port: colored console output for one-shot
// runs and OS desktop notifications for the daemon. All delivery is
// fire-and-forget; failures are logged, never returned.
package notify

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/fatih/color"
)

// ConsolePresenter prints presentation events to a writer. Used by the
// one-shot sync command.
type ConsolePresenter struct {
	Out io.Writer
}

// NewConsolePresenter writes to stdout.
func NewConsolePresenter() *ConsolePresenter {
	return &ConsolePresenter{Out: os.Stdout}
}

func (p *ConsolePresenter) SetTooltip(text string) {
	fmt.Fprintf(p.Out, "%s %s\n", color.CyanString("▸"), text)
}

func (p *ConsolePresenter) Notify(title, body string) {
	fmt.Fprintf(p.Out, "%s %s: %s\n", color.YellowString("!"), color.New(color.Bold).Sprint(title), body)
}

func (p *ConsolePresenter) Refreshed(at time.Time) {
	fmt.Fprintf(p.Out, "%s refreshed at %s\n", color.GreenString("✓"), at.Format("15:04"))
}

// DesktopPresenter raises native desktop notifications through the
// platform's notifier command. Tooltip and refresh events only get
// logged: a headless daemon has no tray to update.
type DesktopPresenter struct {
	logger *log.Logger
	// run is swapped out by tests.
	run func(name string, args ...string) error
}

// NewDesktopPresenter creates a desktop presenter. logger may be nil.
func NewDesktopPresenter(logger *log.Logger) *DesktopPresenter {
	if logger == nil {
		logger = log.New(os.Stderr, "[notify] ", log.LstdFlags)
	}
	return &DesktopPresenter{
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

func (p *DesktopPresenter) SetTooltip(text string) {
	p.logger.Printf("status: %s", text)
}

func (p *DesktopPresenter) Notify(title, body string) {
	var err error
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q sound name %q", body, title, "Glass")
		err = p.run("osascript", "-e", script)
	case "linux":
		err = p.run("notify-send", title, body)
	default:
		p.logger.Printf("notification: %s: %s", title, body)
		return
	}
	if err != nil {
		p.logger.Printf("failed to deliver notification: %v", err)
	}
}

func (p *DesktopPresenter) Refreshed(at time.Time) {
	p.logger.Printf("data refreshed at %s", at.Format("15:04"))
}

// Multi fans presentation events out to several presenters.
type Multi []interface {
	SetTooltip(text string)
	Notify(title, body string)
	Refreshed(at time.Time)
}

func (m Multi) SetTooltip(text string) {
	for _, p := range m {
		p.SetTooltip(text)
	}
}

func (m Multi) Notify(title, body string) {
	for _, p := range m {
		p.Notify(title, body)
	}
}

func (m Multi) Refreshed(at time.Time) {
	for _, p := range m {
		p.Refreshed(at)
	}
}
