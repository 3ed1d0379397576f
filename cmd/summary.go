package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/config"
	"github.com/twiced-technology-gmbh/lumina/internal/output"
	"github.com/twiced-technology-gmbh/lumina/internal/store"
)

var summaryCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"stats"},
	Short:   "Show list summary",
	Long: `Displays open and completed counts, upcoming and overdue deadlines,
and the priority distribution of open tasks.

Use --watch to keep the display live-updating whenever task files change.
Press Ctrl+C to stop.`,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().BoolP("watch", "w", false, "live-update the summary on file changes")
	summaryCmd.Flags().String("group-by", "", "group by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	groupBy, _ := cmd.Flags().GetString("group-by")
	if groupBy != "" && !slices.Contains(board.ValidGroupByFields(), groupBy) {
		return clierr.Newf(clierr.InvalidInput, "invalid --group-by field %q; valid: %s",
			groupBy, strings.Join(board.ValidGroupByFields(), ", "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := renderSummary(ctx, cfg, s, groupBy); err != nil {
		return err
	}

	if watch, _ := cmd.Flags().GetBool("watch"); !watch {
		return nil
	}

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")
	watchList(ctx, cfg, s, newLogger(true), func() {
		clearScreen()
		if err := renderSummary(ctx, cfg, s, groupBy); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering summary: %v\n", err)
		}
	})
	return nil
}

func renderSummary(ctx context.Context, cfg *config.Config, s store.Store, groupBy string) error {
	listCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	tasks, err := s.List(listCtx)
	if err != nil {
		return err
	}
	now := time.Now()

	if groupBy != "" {
		return outputGroupedList(tasks, groupBy, cfg, now)
	}

	summary := board.Summarize(cfg, tasks, now)
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, summary)
	case output.FormatCompact:
		output.SummaryCompact(os.Stdout, summary)
	default:
		output.SummaryTable(os.Stdout, summary)
	}
	return nil
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
