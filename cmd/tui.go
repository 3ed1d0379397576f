package cmd

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lumina/internal/notify"
	"github.com/twiced-technology-gmbh/lumina/internal/tui"
)

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	// Log lines draw over the alternate screen; only --verbose asks for them.
	logger := slog.New(slog.DiscardHandler)
	if flagVerbose {
		logger = newLogger(false)
	}
	engine := newEngine(cfg, s, logger)

	model := tui.NewBoard(cfg, s)
	model.OnChange(engine.Rearm)
	p := tea.NewProgram(model, tea.WithAltScreen())

	engine.SetAlertSink(notify.Fanout{
		tui.NewAlertSink(p),
		notify.NewActivityLog(cfg.Dir()),
	})

	go watchList(ctx, cfg, s, logger, func() {
		p.Send(tui.ReloadMsg{})
		engine.Rearm()
	})

	// Program.Send blocks until the event loop runs, so the engine starts
	// alongside the program rather than before it.
	go func() {
		if err := engine.Start(ctx); err != nil {
			logger.Error("starting scheduler", "error", err)
		}
	}()

	_, err = p.Run()
	engine.Stop()
	return err
}
