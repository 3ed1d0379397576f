package cmd

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/output"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

var moveCmd = &cobra.Command{
	Use:   "move REF WHERE",
	Short: "Reorder a task in the list",
	Long: `Moves a task within the list. WHERE is top, up, down, bottom or a
1-based position. The new order is printed afterwards.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // task reference and destination
	RunE: runMove,
}

func init() {
	rootCmd.AddCommand(moveCmd)
}

// moveResult is the JSON shape of a successful move.
type moveResult struct {
	ID       string            `json:"id"`
	Position int               `json:"position"`
	Tasks    []output.TaskView `json:"tasks"`
}

func runMove(cmd *cobra.Command, args []string) error {
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

	next, err := moveTask(tasks, t.ID, args[1])
	if err != nil {
		return err
	}
	if err := s.Reorder(ctx, next); err != nil {
		return err
	}
	logActivity(cfg, board.ActionMove, t.ID, args[1])

	pos := 0
	for i, n := range next {
		if n.ID == t.ID {
			pos = i + 1
			break
		}
	}

	now := time.Now()
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, moveResult{ID: t.ID, Position: pos, Tasks: output.Views(next, now)})
	}
	output.Messagef(os.Stdout, "Moved task %s to position %d: %s", task.ShortID(t.ID), pos, t.Text)
	return nil
}

// moveTask applies a move destination to the list.
func moveTask(tasks []*task.Task, id, where string) ([]*task.Task, error) {
	switch strings.ToLower(where) {
	case board.DirectionTop:
		return board.MoveToTop(tasks, id)
	case board.DirectionUp:
		return board.MoveUp(tasks, id)
	case board.DirectionDown:
		return board.MoveDown(tasks, id)
	case board.DirectionBottom:
		return board.MoveTo(tasks, id, len(tasks))
	}

	pos, err := strconv.Atoi(where)
	if err != nil || pos < 1 {
		return nil, clierr.Newf(clierr.InvalidInput,
			"invalid destination %q: expected top, up, down, bottom or a position", where)
	}
	return board.MoveTo(tasks, id, pos)
}
