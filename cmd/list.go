package cmd

import (
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/config"
	"github.com/twiced-technology-gmbh/lumina/internal/output"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `Lists tasks in list order with their countdowns.

The # column is the row number. It matches the position other commands
accept only for an unfiltered, unsorted listing; the ID column always works.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().Bool("open", false, "show only open tasks")
	listCmd.Flags().Bool("done", false, "show only completed tasks")
	listCmd.Flags().StringSlice("priority", nil, "filter by priority (comma-separated)")
	listCmd.Flags().String("tag", "", "filter by tag")
	listCmd.Flags().StringP("search", "s", "", "search text, notes, tags and subtasks (case-insensitive)")
	listCmd.Flags().Duration("due-within", 0, "show open tasks due within a duration (e.g. 24h)")
	listCmd.Flags().Bool("overdue", false, "show only overdue tasks")
	listCmd.Flags().Bool("has-due", false, "show only tasks with a due date")
	listCmd.Flags().String("sort", board.SortPosition, "sort field ("+strings.Join(board.SortFields(), ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	listCmd.Flags().String("group-by", "", "group results by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	priorities, _ := flags.GetStringSlice("priority")
	tag, _ := flags.GetString("tag")
	search, _ := flags.GetString("search")
	dueWithin, _ := flags.GetDuration("due-within")
	overdue, _ := flags.GetBool("overdue")
	sortBy, _ := flags.GetString("sort")
	reverse, _ := flags.GetBool("reverse")
	limit, _ := flags.GetInt("limit")
	groupBy, _ := flags.GetString("group-by")

	if groupBy != "" && !slices.Contains(board.ValidGroupByFields(), groupBy) {
		return clierr.Newf(clierr.InvalidInput, "invalid --group-by field %q; valid: %s",
			groupBy, strings.Join(board.ValidGroupByFields(), ", "))
	}
	if !slices.Contains(board.SortFields(), sortBy) {
		return clierr.Newf(clierr.InvalidInput, "invalid --sort field %q; valid: %s",
			sortBy, strings.Join(board.SortFields(), ", "))
	}

	now := time.Now()
	filter := board.FilterOptions{
		Priorities: priorities,
		Tag:        tag,
		Search:     search,
		DueWithin:  dueWithin,
		Overdue:    overdue,
		Now:        now,
	}
	if v, _ := flags.GetBool("open"); v {
		filter.Completed = new(bool)
	} else if v, _ := flags.GetBool("done"); v {
		done := true
		filter.Completed = &done
	}
	if v, _ := flags.GetBool("has-due"); v {
		filter.HasDue = &v
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	tasks, err := board.List(ctx, s, cfg, board.ListOptions{
		Filter:  filter,
		SortBy:  sortBy,
		Reverse: reverse,
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	if groupBy != "" {
		return outputGroupedList(tasks, groupBy, cfg, now)
	}
	return outputTaskList(tasks, now)
}

func outputGroupedList(tasks []*task.Task, groupBy string, cfg *config.Config, now time.Time) error {
	grouped := board.GroupBy(tasks, groupBy, cfg, now)
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, grouped)
	case output.FormatCompact:
		output.GroupedCompact(os.Stdout, grouped)
	default:
		output.GroupedTable(os.Stdout, grouped)
	}
	return nil
}

func outputTaskList(tasks []*task.Task, now time.Time) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, output.Views(tasks, now))
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, tasks, now)
	default:
		output.TaskTable(os.Stdout, tasks, now)
	}
	return nil
}
