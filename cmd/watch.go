package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lumina/internal/notify"
	"github.com/twiced-technology-gmbh/lumina/internal/output"
	"github.com/twiced-technology-gmbh/lumina/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run deadline alerts without the interactive list",
	Long: `Runs the deadline scheduler in the foreground. Alerts are printed to
stdout (one JSON object per line with --json), shown as desktop
notifications and recorded in the activity log. Edits made from other
terminals are picked up immediately. Press Ctrl+C to stop.

With --once a single evaluation pass runs and the command exits.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Bool("once", false, "run one evaluation pass and exit")
	watchCmd.Flags().Bool("no-desktop", false, "do not send desktop notifications")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noDesktop, _ := cmd.Flags().GetBool("no-desktop"); noDesktop {
		off := false
		cfg.Scheduler.DesktopNotifications = &off
	}

	logger := newLogger(true)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	var printer scheduler.AlertSink = notify.NewWriter(os.Stdout)
	if outputFormat() == output.FormatJSON {
		printer = jsonLines()
	}
	engine := newEngine(cfg, s, logger,
		scheduler.WithAlertSink(notify.Fanout{printer, notify.NewActivityLog(cfg.Dir())}))

	if err := engine.Start(ctx); err != nil {
		return err
	}
	defer engine.Stop()

	if once, _ := cmd.Flags().GetBool("once"); once {
		return nil
	}

	go watchList(ctx, cfg, s, logger, engine.Rearm)
	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}

// jsonLines writes each alert as a JSON object on its own line.
func jsonLines() scheduler.AlertSink {
	var mu sync.Mutex
	return scheduler.AlertSinkFunc(func(n scheduler.Notification) {
		mu.Lock()
		defer mu.Unlock()
		_ = output.JSON(os.Stdout, n)
	})
}
