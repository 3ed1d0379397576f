package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/output"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

var deleteCmd = &cobra.Command{
	Use:     "delete REF[,REF,...]",
	Aliases: []string{"rm"},
	Short:   "Delete tasks",
	Long: `Permanently removes tasks. Prompts for confirmation in interactive mode.
Multiple references can be provided as a comma-separated list (requires --yes).`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	yes, _ := cmd.Flags().GetBool("yes")
	if len(targets) > 1 && !yes {
		return clierr.New(clierr.ConfirmationReq, "batch delete requires --yes")
	}

	remove := func(t *task.Task) error {
		if err := s.Delete(ctx, t.ID); err != nil {
			return err
		}
		logActivity(cfg, board.ActionDelete, t.ID, t.Text)
		return nil
	}

	if len(targets) > 1 {
		return runBatch(targets, "Deleted", remove)
	}

	t := targets[0]
	if !yes {
		ok, err := confirm(fmt.Sprintf("Delete task %s %q?", task.ShortID(t.ID), t.Text))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	if err := remove(t); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status": "deleted",
			"id":     t.ID,
			"text":   t.Text,
		})
	}

	output.Messagef(os.Stdout, "Deleted task %s: %s", task.ShortID(t.ID), t.Text)
	return nil
}
