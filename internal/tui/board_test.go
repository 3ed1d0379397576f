package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/config"
	"github.com/twiced-technology-gmbh/lumina/internal/date"
	"github.com/twiced-technology-gmbh/lumina/internal/scheduler"
	"github.com/twiced-technology-gmbh/lumina/internal/store"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)

// newTestBoard builds a board over a memory store listing a, b, c in order.
func newTestBoard(t *testing.T) (*Board, *store.MemoryStore) {
	t.Helper()
	cfg := config.NewDefault("Inbox")
	cfg.SetDir(t.TempDir())

	s := store.NewMemoryStore()
	ctx := context.Background()
	for _, id := range []string{"c", "b", "a"} {
		tk := &task.Task{ID: id, Text: "task " + id, CreatedAt: date.FromTime(now)}
		if id == "a" {
			tk.DueDate = date.FromTime(now.Add(-10 * time.Minute)).Ptr()
			tk.IncludeTime = true
		}
		require.NoError(t, s.Add(ctx, tk))
	}

	b := NewBoard(cfg, s)
	b.SetNow(func() time.Time { return now })
	b.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	return b, s
}

func ids(t *testing.T, s store.Store) []string {
	t.Helper()
	tasks, err := s.List(context.Background())
	require.NoError(t, err)
	out := make([]string, len(tasks))
	for i, tk := range tasks {
		out[i] = tk.ID
	}
	return out
}

func press(b *Board, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		b.Update(msg)
	}
}

func TestViewShowsCountdowns(t *testing.T) {
	b, _ := newTestBoard(t)
	out := b.View()
	assert.Contains(t, out, "Inbox")
	assert.Contains(t, out, "task a")
	assert.Contains(t, out, "overdue by 10 minutes")
	assert.Contains(t, out, "space:done")
}

func TestCursorMovement(t *testing.T) {
	b, _ := newTestBoard(t)
	press(b, "j", "j", "j")
	assert.Equal(t, 2, b.cursor)
	press(b, "k")
	assert.Equal(t, 1, b.cursor)
	assert.Equal(t, "b", b.selectedTask().ID)
}

func TestMoveKeysReorderStore(t *testing.T) {
	b, s := newTestBoard(t)
	var changes int
	b.OnChange(func() { changes++ })

	press(b, "j", "j", "t")
	assert.Equal(t, []string{"c", "a", "b"}, ids(t, s))
	assert.Equal(t, 0, b.cursor, "cursor follows the moved task")

	press(b, "J")
	assert.Equal(t, []string{"a", "c", "b"}, ids(t, s))
	assert.Equal(t, 1, b.cursor)

	press(b, "K", "K")
	assert.Equal(t, []string{"c", "a", "b"}, ids(t, s), "moving past the top is a no-op")
	assert.NoError(t, b.err)
	assert.Equal(t, 3, changes)

	entries, err := board.ReadLog(b.cfg.Dir(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestToggleCompletes(t *testing.T) {
	b, s := newTestBoard(t)
	press(b, " ")

	got, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.NotNil(t, got.CompletedAt)
	assert.NotContains(t, b.View(), "overdue by", "completed tasks show no countdown")
}

func TestHideCompleted(t *testing.T) {
	b, s := newTestBoard(t)
	b.cfg.TUI.HideCompleted = true
	press(b, " ")

	assert.Len(t, b.tasks, 2)
	assert.Len(t, b.all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(t, s))
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	b, s := newTestBoard(t)
	press(b, "j", "d")
	assert.Equal(t, viewConfirmDelete, b.view)
	assert.Contains(t, b.View(), "Delete task?")

	press(b, "n")
	assert.Equal(t, viewList, b.view)
	assert.Len(t, ids(t, s), 3)

	press(b, "d", "y")
	assert.Equal(t, []string{"a", "c"}, ids(t, s))
}

func TestAlertBanner(t *testing.T) {
	b, _ := newTestBoard(t)
	_, cmd := b.Update(AlertMsg{Notification: scheduler.Notification{
		TaskID: "b", Title: scheduler.NotificationTitle, Body: `"task b" is due at 12:20`,
	}})
	require.NotNil(t, cmd)
	assert.Contains(t, b.View(), `"task b" is due at 12:20`)

	b.Update(bannerExpiredMsg{seq: b.bannerSeq - 1})
	assert.NotNil(t, b.banner, "a stale timeout leaves a newer banner alone")

	b.Update(bannerExpiredMsg{seq: b.bannerSeq})
	assert.Nil(t, b.banner)
}

type sendRecorder struct{ msgs []tea.Msg }

func (r *sendRecorder) Send(msg tea.Msg) { r.msgs = append(r.msgs, msg) }

func TestNewAlertSink(t *testing.T) {
	var rec sendRecorder
	sink := NewAlertSink(&rec)
	sink.Alert(scheduler.Notification{TaskID: "x"})

	require.Len(t, rec.msgs, 1)
	assert.Equal(t, "x", rec.msgs[0].(AlertMsg).Notification.TaskID)
}

func TestReloadPicksUpExternalChanges(t *testing.T) {
	b, s := newTestBoard(t)
	require.NoError(t, s.Add(context.Background(), &task.Task{ID: "d", Text: "task d"}))
	b.Update(ReloadMsg{})
	assert.Len(t, b.tasks, 4)
	assert.Equal(t, "d", b.tasks[0].ID)
}
