package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/output"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

var doneCmd = &cobra.Command{
	Use:     "done REF[,REF,...]",
	Aliases: []string{"complete"},
	Short:   "Mark tasks completed",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetCompleted(cmd, args[0], true)
	},
}

var undoCmd = &cobra.Command{
	Use:     "undo REF[,REF,...]",
	Aliases: []string{"reopen"},
	Short:   "Mark tasks open again",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetCompleted(cmd, args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoCmd)
}

func runSetCompleted(cmd *cobra.Command, refs string, done bool) error {
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

	targets, err := board.ResolveAll(tasks, refs)
	if err != nil {
		return err
	}

	action, verb := board.ActionComplete, "Completed"
	if !done {
		action, verb = board.ActionReopen, "Reopened"
	}
	now := time.Now()

	apply := func(t *task.Task) error {
		updated := t.Clone()
		if !task.SetCompleted(updated, done, now) {
			return clierr.Newf(clierr.NoChanges, "task %s is already %s", task.ShortID(t.ID), stateName(done))
		}
		if err := s.Update(ctx, updated); err != nil {
			return err
		}
		logActivity(cfg, action, updated.ID, updated.Text)
		*t = *updated
		return nil
	}

	if len(targets) == 1 {
		t := targets[0]
		if err := apply(t); err != nil {
			return err
		}
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, output.View(t, now))
		}
		output.Messagef(os.Stdout, "%s task %s: %s", verb, task.ShortID(t.ID), t.Text)
		return nil
	}

	return runBatch(targets, verb, apply)
}

func stateName(done bool) string {
	if done {
		return "completed"
	}
	return "open"
}
