package cmd

import (
	"context"
	"log/slog"

	"github.com/twiced-technology-gmbh/lumina/internal/config"
	"github.com/twiced-technology-gmbh/lumina/internal/notify"
	"github.com/twiced-technology-gmbh/lumina/internal/scheduler"
	"github.com/twiced-technology-gmbh/lumina/internal/store"
	"github.com/twiced-technology-gmbh/lumina/internal/watcher"
)

// newEngine builds the deadline engine over s with the list's scheduler
// settings. Extra options are applied last.
func newEngine(cfg *config.Config, s store.Store, logger *slog.Logger, opts ...scheduler.Option) *scheduler.Engine {
	base := []scheduler.Option{
		scheduler.WithInterval(cfg.SchedulerInterval()),
		scheduler.WithOffsetPolicy(scheduler.OffsetPolicy{
			Timed:    cfg.TimedOffset(),
			DateOnly: cfg.DateOnlyOffset(),
		}),
		scheduler.WithLogger(logger.With("component", "scheduler")),
	}
	if cfg.DesktopNotificationsEnabled() {
		base = append(base, scheduler.WithOSNotifier(notify.NewDesktop()))
	}
	return scheduler.New(s, s, append(base, opts...)...)
}

// watchList runs onChange whenever task files change, until ctx is done.
// Only the file store has files to watch; other backends return at once.
func watchList(ctx context.Context, cfg *config.Config, s store.Store, logger *slog.Logger, onChange func()) {
	if store.Mode(s) != config.StoreDriverFile {
		logger.Debug("live reload disabled", "store", store.Mode(s))
		return
	}

	paths := []string{cfg.TasksPath()}
	if cfg.Dir() != cfg.TasksPath() {
		paths = append(paths, cfg.Dir())
	}
	w, err := watcher.New(paths, onChange, watcher.WithIgnore("*.jsonl"))
	if err != nil {
		logger.Warn("live reload unavailable", "error", err)
		return
	}
	defer w.Close()

	w.Run(ctx, func(err error) {
		logger.Warn("file watcher", "error", err)
	})
}
