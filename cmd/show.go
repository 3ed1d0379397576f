package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show REF",
	Short: "Show task details",
	Long:  `Displays full details of a single task including its rendered markdown notes.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, tasks, err := loadTasks(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := board.Resolve(tasks, args[0])
	if err != nil {
		return err
	}

	now := time.Now()
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, output.View(t, now))
	case output.FormatCompact:
		output.TaskDetailCompact(os.Stdout, t, now)
		return nil
	}

	output.TaskDetail(os.Stdout, t, now)
	if t.Notes == "" {
		return nil
	}

	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	notes, err := output.RenderNotes(t.Notes, width, !flagNoColor && output.ColorEnabled(os.Stdout))
	if err != nil {
		// Fall back to the raw markdown.
		notes = t.Notes + "\n"
	}
	fmt.Fprint(os.Stdout, "\n"+notes)
	return nil
}
