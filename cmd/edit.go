package cmd

import (
	"context"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/config"
	"github.com/twiced-technology-gmbh/lumina/internal/date"
	"github.com/twiced-technology-gmbh/lumina/internal/output"
	"github.com/twiced-technology-gmbh/lumina/internal/store"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

var editCmd = &cobra.Command{
	Use:   "edit REF[,REF,...]",
	Short: "Edit a task",
	Long: `Modifies fields of an existing task. Only specified fields are changed.
A task is referenced by its list position (1 is the top) or an ID prefix.
Multiple references can be provided as a comma-separated list.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().String("text", "", "new text")
	editCmd.Flags().StringP("due", "d", "", "new due date")
	editCmd.Flags().Bool("clear-due", false, "clear due date")
	editCmd.Flags().String("alert", "", "alert lead time (e.g. 15m, 2h, 1d, off, auto)")
	editCmd.Flags().StringP("priority", "p", "", "new priority")
	editCmd.Flags().Bool("clear-priority", false, "clear priority")
	editCmd.Flags().StringSlice("add-tag", nil, "add tags")
	editCmd.Flags().StringSlice("remove-tag", nil, "remove tags")
	editCmd.Flags().String("notes", "", "new notes (replaces existing notes)")
	editCmd.Flags().StringP("append-notes", "a", "", "append text to notes")
	editCmd.Flags().String("repeat", "", "new recurrence rule")
	editCmd.Flags().Bool("clear-repeat", false, "clear recurrence")
	editCmd.Flags().StringArray("add-subtask", nil, "add a subtask (repeatable)")
	editCmd.Flags().IntSlice("toggle-subtask", nil, "toggle subtasks by 1-based index")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
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

	targets, err := board.ResolveAll(tasks, args[0])
	if err != nil {
		return err
	}

	if len(targets) == 1 {
		t, err := executeEdit(ctx, cmd, cfg, s, targets[0])
		if err != nil {
			return err
		}
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, output.View(t, time.Now()))
		}
		output.Messagef(os.Stdout, "Updated task %s: %s", task.ShortID(t.ID), t.Text)
		return nil
	}

	return runBatch(targets, "Updated", func(t *task.Task) error {
		_, err := executeEdit(ctx, cmd, cfg, s, t)
		return err
	})
}

// executeEdit applies the flags to a copy of t and stores it.
func executeEdit(ctx context.Context, cmd *cobra.Command, cfg *config.Config, s store.Store, t *task.Task) (*task.Task, error) {
	updated := t.Clone()
	changed, err := applyEditChanges(cmd, updated, cfg, time.Now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, clierr.New(clierr.NoChanges, "no changes specified")
	}

	if err := s.Update(ctx, updated); err != nil {
		return nil, err
	}
	logActivity(cfg, board.ActionEdit, updated.ID, updated.Text)
	return updated, nil
}

func applyEditChanges(cmd *cobra.Command, t *task.Task, cfg *config.Config, now time.Time) (bool, error) {
	changed := false
	flags := cmd.Flags()

	if v, _ := flags.GetString("text"); v != "" {
		if err := task.ValidateText(v); err != nil {
			return false, err
		}
		t.Text = v
		changed = true
	}

	if v, _ := flags.GetString("due"); v != "" {
		due, timed, err := date.ParseDue(v, now)
		if err != nil {
			return false, task.FormatDueDate(v, err)
		}
		t.DueDate = due.Ptr()
		t.IncludeTime = timed
		changed = true
	}
	if v, _ := flags.GetBool("clear-due"); v {
		t.DueDate = nil
		t.IncludeTime = false
		changed = true
	}
	if flags.Changed("alert") {
		v, _ := flags.GetString("alert")
		offset, err := task.ParseOffset(v)
		if err != nil {
			return false, err
		}
		t.NotificationOffset = offset
		changed = true
	}

	if v, _ := flags.GetString("priority"); v != "" {
		if err := task.ValidatePriority(v, cfg.Priorities); err != nil {
			return false, err
		}
		t.Priority = v
		changed = true
	}
	if v, _ := flags.GetBool("clear-priority"); v {
		t.Priority = ""
		changed = true
	}

	if v, _ := flags.GetStringSlice("add-tag"); len(v) > 0 {
		for _, tag := range v {
			if !slices.Contains(t.Tags, tag) {
				t.Tags = append(t.Tags, tag)
			}
		}
		changed = true
	}
	if v, _ := flags.GetStringSlice("remove-tag"); len(v) > 0 {
		t.Tags = slices.DeleteFunc(t.Tags, func(tag string) bool { return slices.Contains(v, tag) })
		changed = true
	}

	if flags.Changed("notes") {
		v, _ := flags.GetString("notes")
		t.Notes = v
		changed = true
	}
	if v, _ := flags.GetString("append-notes"); v != "" {
		if t.Notes != "" && !strings.HasSuffix(t.Notes, "\n") {
			t.Notes += "\n"
		}
		t.Notes += v
		changed = true
	}

	if v, _ := flags.GetString("repeat"); v != "" {
		rule, err := task.ParseRecurrence(v)
		if err != nil {
			return false, err
		}
		t.RecurrenceRule = rule
		changed = true
	}
	if v, _ := flags.GetBool("clear-repeat"); v {
		t.RecurrenceRule = nil
		changed = true
	}

	if v, _ := flags.GetStringArray("add-subtask"); len(v) > 0 {
		for _, text := range v {
			task.AddSubtask(t, text)
		}
		changed = true
	}
	if v, _ := flags.GetIntSlice("toggle-subtask"); len(v) > 0 {
		for _, n := range v {
			if err := task.ToggleSubtask(t, n); err != nil {
				return false, err
			}
		}
		changed = true
	}

	return changed, nil
}
