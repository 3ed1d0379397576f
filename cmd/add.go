package cmd

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/config"
	"github.com/twiced-technology-gmbh/lumina/internal/date"
	"github.com/twiced-technology-gmbh/lumina/internal/output"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

var addCmd = &cobra.Command{
	Use:     "add [TEXT]",
	Aliases: []string{"create", "new"},
	Short:   "Add a task to the top of the list",
	Long: `Adds a new task at the top of the list.

Text can be provided as a positional argument or via --text.
Due dates accept YYYY-MM-DD, "YYYY-MM-DD HH:MM", HH:MM, today, tomorrow
or a relative +90m / +2h / +3d. --alert sets how long before the due date
to notify (30m, 2h, 1d, 0, or off); without it timed tasks alert 30 minutes
ahead and date-only tasks a day ahead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("text", "", "task text (alternative to positional argument)")
	addCmd.Flags().StringP("due", "d", "", "due date")
	addCmd.Flags().String("alert", "", "alert lead time before the due date (e.g. 15m, 2h, 1d, off)")
	addCmd.Flags().StringP("priority", "p", "", "task priority (default from config)")
	addCmd.Flags().StringSlice("tags", nil, "comma-separated tags")
	addCmd.Flags().String("notes", "", "markdown notes")
	addCmd.Flags().String("repeat", "", "recurrence rule (e.g. daily, weekly:1:mon,thu, monthly:1:1,15)")
	addCmd.Flags().StringArray("subtask", nil, "add a subtask (repeatable)")
	addCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "tag":
			name = "tags"
		case "body", "description":
			name = "notes"
		}
		return pflag.NormalizedName(name)
	})
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, err := resolveAddText(cmd, args)
	if err != nil {
		return err
	}

	t := &task.Task{
		Text:     text,
		Priority: cfg.Defaults.Priority,
	}
	if err := applyAddFlags(cmd, t, cfg, time.Now()); err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Add(ctx, t); err != nil {
		return err
	}

	logActivity(cfg, board.ActionAdd, t.ID, t.Text)

	return outputAddResult(t)
}

func outputAddResult(t *task.Task) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.View(t, time.Now()))
	}

	output.Messagef(os.Stdout, "Added task %s: %s", task.ShortID(t.ID), t.Text)
	if t.DueDate != nil {
		output.Messagef(os.Stdout, "  Due: %s | Alert: %s",
			t.DueDate.Format(t.IncludeTime), task.FormatOffset(t.NotificationOffset))
	}
	if t.Priority != "" {
		output.Messagef(os.Stdout, "  Priority: %s", t.Priority)
	}
	if len(t.Tags) > 0 {
		output.Messagef(os.Stdout, "  Tags: %s", strings.Join(t.Tags, ", "))
	}
	return nil
}

// resolveAddText returns the task text from either the positional arg or --text flag.
func resolveAddText(cmd *cobra.Command, args []string) (string, error) {
	flagText, _ := cmd.Flags().GetString("text")
	hasPositional := len(args) > 0
	hasFlag := flagText != ""

	switch {
	case hasPositional && hasFlag:
		return "", clierr.New(clierr.InvalidInput,
			"text provided both as argument and --text flag; use one or the other")
	case hasPositional:
		return args[0], task.ValidateText(args[0])
	case hasFlag:
		return flagText, task.ValidateText(flagText)
	default:
		return "", errors.New("task text is required: provide it as an argument or with --text")
	}
}

func applyAddFlags(cmd *cobra.Command, t *task.Task, cfg *config.Config, now time.Time) error {
	if v, _ := cmd.Flags().GetString("priority"); v != "" {
		if err := task.ValidatePriority(v, cfg.Priorities); err != nil {
			return err
		}
		t.Priority = v
	}
	if v, _ := cmd.Flags().GetStringSlice("tags"); len(v) > 0 {
		t.Tags = v
	}
	if v, _ := cmd.Flags().GetString("due"); v != "" {
		due, timed, err := date.ParseDue(v, now)
		if err != nil {
			return task.FormatDueDate(v, err)
		}
		t.DueDate = due.Ptr()
		t.IncludeTime = timed
	}
	if v, _ := cmd.Flags().GetString("alert"); v != "" {
		offset, err := task.ParseOffset(v)
		if err != nil {
			return err
		}
		t.NotificationOffset = offset
	}
	if v, _ := cmd.Flags().GetString("repeat"); v != "" {
		rule, err := task.ParseRecurrence(v)
		if err != nil {
			return err
		}
		t.RecurrenceRule = rule
	}
	if v, _ := cmd.Flags().GetString("notes"); v != "" {
		t.Notes = v
	}
	subtasks, _ := cmd.Flags().GetStringArray("subtask")
	for _, s := range subtasks {
		if strings.TrimSpace(s) != "" {
			task.AddSubtask(t, s)
		}
	}
	return nil
}
