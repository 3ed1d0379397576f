package board

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/config"
	"github.com/twiced-technology-gmbh/lumina/internal/date"
	"github.com/twiced-technology-gmbh/lumina/internal/store"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)

func mk(id, text string, pos int) *task.Task {
	return &task.Task{ID: id, Text: text, Position: pos}
}

func due(t *task.Task, at time.Time, timed bool) *task.Task {
	t.DueDate = date.FromTime(at).Ptr()
	t.IncludeTime = timed
	return t
}

func ids(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func sample() []*task.Task {
	return []*task.Task{
		mk("aa11", "write report", 0),
		mk("ab22", "buy milk", 1),
		mk("cc33", "call mom", 2),
	}
}

func TestResolve(t *testing.T) {
	tasks := sample()
	tests := []struct {
		ref    string
		wantID string
		code   string
	}{
		{"1", "aa11", ""},
		{"3", "cc33", ""},
		{"cc", "cc33", ""},
		{"AB2", "ab22", ""},
		{"aa11", "aa11", ""},
		{"a", "", clierr.AmbiguousTaskRef},
		{"zz", "", clierr.TaskNotFound},
		{"4", "", clierr.TaskNotFound},
		{"  ", "", clierr.InvalidTaskRef},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := Resolve(tasks, tt.ref)
			if tt.code != "" {
				assert.True(t, clierr.HasCode(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestResolveAll(t *testing.T) {
	got, err := ResolveAll(sample(), "3, cc,1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cc33", "aa11"}, ids(got))

	_, err = ResolveAll(sample(), " , ")
	assert.True(t, clierr.HasCode(err, clierr.InvalidTaskRef))
}

func TestMoves(t *testing.T) {
	tasks := sample()

	got, err := MoveToTop(tasks, "cc33")
	require.NoError(t, err)
	assert.Equal(t, []string{"cc33", "aa11", "ab22"}, ids(got))
	assert.Equal(t, []string{"aa11", "ab22", "cc33"}, ids(tasks), "input is not modified")

	got, err = MoveUp(tasks, "ab22")
	require.NoError(t, err)
	assert.Equal(t, []string{"ab22", "aa11", "cc33"}, ids(got))

	got, err = MoveDown(tasks, "aa11")
	require.NoError(t, err)
	assert.Equal(t, []string{"ab22", "aa11", "cc33"}, ids(got))

	got, err = MoveTo(tasks, "aa11", 99)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab22", "cc33", "aa11"}, ids(got))

	_, err = MoveToTop(tasks, "aa11")
	assert.True(t, clierr.HasCode(err, clierr.BoundaryError))
	_, err = MoveUp(tasks, "aa11")
	assert.True(t, clierr.HasCode(err, clierr.BoundaryError))
	_, err = MoveDown(tasks, "cc33")
	assert.True(t, clierr.HasCode(err, clierr.BoundaryError))
	_, err = MoveTo(tasks, "ab22", 2)
	assert.True(t, clierr.HasCode(err, clierr.NoChanges))
	_, err = MoveUp(tasks, "nope")
	assert.True(t, clierr.HasCode(err, clierr.TaskNotFound))
}

func TestFilter(t *testing.T) {
	done := mk("d", "done thing", 3)
	done.Completed = true
	late := due(mk("l", "late", 4), now.Add(-time.Hour), true)
	soon := due(mk("s", "soon", 5), now.Add(2*time.Hour), true)
	far := due(mk("f", "far", 6), now.Add(72*time.Hour), false)
	tagged := mk("t", "tagged", 7)
	tagged.Tags = []string{"home"}
	tagged.Priority = "high"
	tagged.Subtasks = []task.Subtask{{ID: "x", Text: "Find Receipt"}}
	all := []*task.Task{done, late, soon, far, tagged}

	yes, no := true, false
	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{"none", FilterOptions{}, []string{"d", "l", "s", "f", "t"}},
		{"open", FilterOptions{Completed: &no}, []string{"l", "s", "f", "t"}},
		{"completed", FilterOptions{Completed: &yes}, []string{"d"}},
		{"priority", FilterOptions{Priorities: []string{"high"}}, []string{"t"}},
		{"tag", FilterOptions{Tag: "home"}, []string{"t"}},
		{"search subtasks", FilterOptions{Search: "receipt"}, []string{"t"}},
		{"due within", FilterOptions{DueWithin: 24 * time.Hour, Now: now}, []string{"l", "s"}},
		{"overdue", FilterOptions{Overdue: true, Now: now}, []string{"l"}},
		{"has due", FilterOptions{HasDue: &yes}, []string{"l", "s", "f"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(all, tt.opts)))
		})
	}
}

func TestSort(t *testing.T) {
	cfg := config.NewDefault("test")
	a := due(mk("a", "zeta", 0), now.Add(3*time.Hour), true)
	b := mk("b", "alpha", 1)
	b.Priority = "low"
	c := due(mk("c", "mid", 2), now.Add(time.Hour), true)
	c.Priority = "high"

	tasks := []*task.Task{b, c, a}
	Sort(tasks, "", false, cfg)
	assert.Equal(t, []string{"a", "b", "c"}, ids(tasks))

	Sort(tasks, SortDue, false, cfg)
	assert.Equal(t, []string{"c", "a", "b"}, ids(tasks))

	Sort(tasks, SortPriority, false, cfg)
	assert.Equal(t, []string{"c", "b", "a"}, ids(tasks))

	Sort(tasks, SortText, true, cfg)
	assert.Equal(t, []string{"a", "c", "b"}, ids(tasks))
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, s.Add(ctx, &task.Task{Text: text}))
	}
	got, err := List(ctx, s, config.NewDefault("test"), ListOptions{SortBy: SortText, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Text)
	assert.Equal(t, "three", got[1].Text)
}

func TestSummarize(t *testing.T) {
	cfg := config.NewDefault("home")
	done := mk("d", "done", 0)
	done.Completed = true
	done.RecurrenceRule = &task.RecurrenceRule{Freq: task.FreqDaily, Interval: 1}
	late := due(mk("l", "late", 1), now.Add(-time.Minute), true)
	late.Priority = "high"
	soon := due(mk("s", "soon", 2), now.Add(5*time.Hour), true)
	later := due(mk("x", "later", 3), now.Add(48*time.Hour), false)

	s := Summarize(cfg, []*task.Task{done, late, soon, later}, now)
	assert.Equal(t, "home", s.ListName)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.Open)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 3, s.WithDue)
	assert.Equal(t, 1, s.Overdue)
	assert.Equal(t, 1, s.DueSoon)
	assert.Equal(t, 1, s.Recurring)
	assert.Equal(t, []PriorityCount{
		{Priority: "high", Count: 1},
		{Priority: "medium", Count: 0},
		{Priority: "low", Count: 0},
		{Priority: "none", Count: 2},
	}, s.Priorities)
}

func TestGroupByDue(t *testing.T) {
	cfg := config.NewDefault("home")
	tasks := []*task.Task{
		due(mk("l", "late", 0), now.Add(-time.Hour), true),
		due(mk("t", "tonight", 1), now.Add(3*time.Hour), true),
		due(mk("m", "tomorrow", 2), date.StartOfDay(now).AddDate(0, 0, 1), false),
		due(mk("w", "week", 3), date.StartOfDay(now).AddDate(0, 0, 4), false),
		mk("n", "none", 4),
	}
	tasks[1].Completed = true

	got := GroupBy(tasks, "due", cfg, now)
	keys := make([]string, len(got.Groups))
	for i, g := range got.Groups {
		keys[i] = g.Key
	}
	assert.Equal(t, []string{"overdue", "today", "tomorrow", "this week", "no due date"}, keys)
	assert.Equal(t, GroupSummary{Key: "today", Completed: 1, Total: 1}, got.Groups[1])
}

func TestGroupByTagAndPriority(t *testing.T) {
	cfg := config.NewDefault("home")
	a := mk("a", "a", 0)
	a.Tags = []string{"work", "home"}
	a.Priority = "low"
	b := mk("b", "b", 1)
	b.Priority = "high"

	byTag := GroupBy([]*task.Task{a, b}, "tag", cfg, now)
	require.Len(t, byTag.Groups, 3)
	assert.Equal(t, "(untagged)", byTag.Groups[0].Key)
	assert.Equal(t, "home", byTag.Groups[1].Key)

	byPrio := GroupBy([]*task.Task{a, b}, "priority", cfg, now)
	require.Len(t, byPrio.Groups, 2)
	assert.Equal(t, "high", byPrio.Groups[0].Key)
	assert.Equal(t, "low", byPrio.Groups[1].Key)
}

func TestActivityLog(t *testing.T) {
	dir := t.TempDir()
	entries, err := ReadLog(dir, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	LogMutation(dir, ActionAdd, "a", "first")
	LogMutation(dir, ActionMove, "b", "to top")
	LogMutation(dir, ActionDelete, "c", "gone")

	entries, err = ReadLog(dir, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionMove, entries[0].Action)
	assert.Equal(t, "c", entries[1].TaskID)
}
