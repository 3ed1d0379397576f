// Package tui implements the interactive task list.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/config"
	"github.com/twiced-technology-gmbh/lumina/internal/countdown"
	"github.com/twiced-technology-gmbh/lumina/internal/scheduler"
	"github.com/twiced-technology-gmbh/lumina/internal/store"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewList view = iota
	viewConfirmDelete
)

const (
	keyEsc = "esc"

	listChrome   = 3 // header + blank line + status bar
	bannerChrome = 2 // banner + blank line
	errorChrome  = 1
	tickInterval = 30 * time.Second
	storeTimeout = 5 * time.Second
)

// Board is the top-level bubbletea model: the task list in store order.
type Board struct {
	cfg    *config.Config
	store  store.Store
	keys   keyMap
	all    []*task.Task
	tasks  []*task.Task // all minus hidden completed tasks
	cursor int
	scroll int
	view   view
	width  int
	height int
	err    error
	now    func() time.Time

	onChange func()

	banner    *scheduler.Notification
	bannerSeq int

	deleteID   string
	deleteText string
}

// NewBoard creates a Board over s and loads the current list.
func NewBoard(cfg *config.Config, s store.Store) *Board {
	b := &Board{cfg: cfg, store: s, keys: defaultKeyMap(), now: time.Now}
	b.loadTasks()
	return b
}

// SetNow overrides the clock used for countdowns (for testing).
func (b *Board) SetNow(fn func() time.Time) {
	b.now = fn
}

// OnChange registers fn to run after the board mutates the list. The
// deadline engine's Rearm goes here so edits are evaluated right away.
func (b *Board) OnChange(fn func()) {
	b.onChange = fn
}

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.ensureVisible()
		return b, nil
	case ReloadMsg:
		b.loadTasks()
		return b, nil
	case TickMsg:
		return b, tickCmd()
	case AlertMsg:
		n := msg.Notification
		b.banner = &n
		b.bannerSeq++
		// A promotion may have followed the alert.
		b.loadTasks()
		return b, bannerTimeout(b.bannerSeq, b.cfg.BannerDuration())
	case bannerExpiredMsg:
		if msg.seq == b.bannerSeq {
			b.banner = nil
		}
		return b, nil
	}
	return b, nil
}

// View implements tea.Model.
func (b *Board) View() string {
	if b.width == 0 {
		return "Loading..."
	}
	if b.view == viewConfirmDelete {
		return b.viewDeleteConfirm()
	}
	return b.viewList()
}

func (b *Board) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, b.keys.ForceQuit) {
		return b, tea.Quit
	}
	if b.view == viewConfirmDelete {
		return b.handleDeleteKey(msg)
	}

	switch {
	case key.Matches(msg, b.keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, b.keys.Down):
		if b.cursor < len(b.tasks)-1 {
			b.cursor++
			b.ensureVisible()
		}
	case key.Matches(msg, b.keys.Up):
		if b.cursor > 0 {
			b.cursor--
			b.ensureVisible()
		}
	case key.Matches(msg, b.keys.Toggle):
		b.toggleSelected()
	case key.Matches(msg, b.keys.MoveUp):
		b.moveSelected(board.DirectionUp)
	case key.Matches(msg, b.keys.MoveDown):
		b.moveSelected(board.DirectionDown)
	case key.Matches(msg, b.keys.MoveTop):
		b.moveSelected(board.DirectionTop)
	case key.Matches(msg, b.keys.Delete):
		if t := b.selectedTask(); t != nil {
			b.deleteID = t.ID
			b.deleteText = t.Text
			b.view = viewConfirmDelete
		}
	}
	return b, nil
}

func (b *Board) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		b.executeDelete()
	case "n", "N", keyEsc, "q":
		b.view = viewList
	}
	return b, nil
}

func (b *Board) toggleSelected() {
	t := b.selectedTask()
	if t == nil {
		return
	}
	updated := t.Clone()
	task.Toggle(updated, b.now())

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := b.store.Update(ctx, updated); err != nil {
		b.err = fmt.Errorf("updating task: %w", err)
		return
	}
	action := board.ActionReopen
	if updated.Completed {
		action = board.ActionComplete
	}
	board.LogMutation(b.cfg.Dir(), action, updated.ID, updated.Text)
	b.changed(updated.ID)
}

// moveSelected repositions the selected task within the full list, so hidden
// completed tasks keep their places.
func (b *Board) moveSelected(direction string) {
	t := b.selectedTask()
	if t == nil {
		return
	}

	var (
		next []*task.Task
		err  error
	)
	switch direction {
	case board.DirectionTop:
		next, err = board.MoveToTop(b.all, t.ID)
	case board.DirectionUp:
		next, err = board.MoveUp(b.all, t.ID)
	default:
		next, err = board.MoveDown(b.all, t.ID)
	}
	if clierr.HasCode(err, clierr.BoundaryError) || clierr.HasCode(err, clierr.NoChanges) {
		return
	}
	if err != nil {
		b.err = err
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := b.store.Reorder(ctx, next); err != nil {
		b.err = fmt.Errorf("reordering tasks: %w", err)
		return
	}
	board.LogMutation(b.cfg.Dir(), board.ActionMove, t.ID, direction)
	b.changed(t.ID)
}

func (b *Board) executeDelete() {
	b.view = viewList

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := b.store.Delete(ctx, b.deleteID); err != nil {
		b.err = fmt.Errorf("deleting task: %w", err)
		return
	}
	board.LogMutation(b.cfg.Dir(), board.ActionDelete, b.deleteID, b.deleteText)
	b.changed("")
}

// changed reloads the list, keeps the cursor on id when it is still visible
// and notifies the change hook.
func (b *Board) changed(id string) {
	b.loadTasks()
	for i, t := range b.tasks {
		if t.ID == id {
			b.cursor = i
			break
		}
	}
	b.clampCursor()
	if b.onChange != nil {
		b.onChange()
	}
}

// loadTasks reads the list from the store.
func (b *Board) loadTasks() {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	tasks, err := b.store.List(ctx)
	if err != nil {
		b.err = err
		return
	}
	b.err = nil
	b.all = tasks

	b.tasks = tasks
	if b.cfg.TUI.HideCompleted {
		b.tasks = board.Filter(tasks, board.FilterOptions{Completed: new(bool)})
	}
	b.clampCursor()
}

// WatchPaths returns the paths that should be watched for file changes.
func (b *Board) WatchPaths() []string {
	paths := []string{b.cfg.TasksPath()}
	if b.cfg.Dir() != b.cfg.TasksPath() {
		paths = append(paths, b.cfg.Dir())
	}
	return paths
}

func (b *Board) selectedTask() *task.Task {
	if b.cursor >= 0 && b.cursor < len(b.tasks) {
		return b.tasks[b.cursor]
	}
	return nil
}

func (b *Board) clampCursor() {
	if b.cursor >= len(b.tasks) {
		b.cursor = len(b.tasks) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
	b.ensureVisible()
}

func (b *Board) chromeHeight() int {
	h := listChrome
	if b.banner != nil {
		h += bannerChrome
	}
	if b.err != nil {
		h += errorChrome
	}
	return h
}

func (b *Board) visibleRows() int {
	if b.height == 0 {
		return len(b.tasks)
	}
	return max(1, b.height-b.chromeHeight())
}

// ensureVisible scrolls so the cursor row is on screen.
func (b *Board) ensureVisible() {
	rows := b.visibleRows()
	switch {
	case b.cursor >= b.scroll+rows:
		b.scroll = b.cursor - rows + 1
	case b.cursor < b.scroll:
		b.scroll = b.cursor
	}
	if b.scroll < 0 {
		b.scroll = 0
	}
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a list refresh.
type ReloadMsg struct{}

// TickMsg is sent periodically to refresh countdowns.
type TickMsg struct{}

// AlertMsg carries an in-app deadline alert to the board.
type AlertMsg struct {
	Notification scheduler.Notification
}

type bannerExpiredMsg struct{ seq int }

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

func bannerTimeout(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return bannerExpiredMsg{seq: seq} })
}

// Sender is the part of *tea.Program the alert sink needs.
type Sender interface {
	Send(msg tea.Msg)
}

// NewAlertSink returns an engine alert sink that shows alerts on the
// board running in p.
func NewAlertSink(p Sender) scheduler.AlertSink {
	return scheduler.AlertSinkFunc(func(n scheduler.Notification) {
		p.Send(AlertMsg{Notification: n})
	})
}

// --- Styles ---

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("214")).
			Padding(0, 1)

	priorityStyles = map[string]lipgloss.Style{
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	overdueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	soonStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	doneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2) //nolint:mnd // dialog padding
)

// --- View rendering ---

func (b *Board) viewList() string {
	open := 0
	for _, t := range b.all {
		if !t.Completed {
			open++
		}
	}
	header := headerStyle.Render(truncate(fmt.Sprintf("%s  %d open / %d", b.cfg.List.Name, open, len(b.all)), b.width))

	parts := []string{header}
	if b.banner != nil {
		parts = append(parts, bannerStyle.Render(truncate("⏰ "+b.banner.Title+": "+b.banner.Body, b.width)), "")
	}

	rows := b.visibleRows()
	var lines []string
	if len(b.tasks) == 0 {
		lines = append(lines, dimStyle.Render("  (no tasks)"))
	}
	end := min(len(b.tasks), b.scroll+rows)
	for i := b.scroll; i < end; i++ {
		lines = append(lines, b.renderRow(b.tasks[i], i == b.cursor))
	}
	for len(lines) < rows && b.height > 0 {
		lines = append(lines, "")
	}
	parts = append(parts, strings.Join(lines, "\n"), b.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b *Board) renderRow(t *task.Task, selected bool) string {
	marker := "  "
	if selected {
		marker = cursorStyle.Render("> ")
	}
	check := "[ ] "
	if t.Completed {
		check = "[x] "
	}

	right := b.countdownLabel(t)
	if t.Priority != "" {
		p := t.Priority
		if st, ok := priorityStyles[p]; ok {
			p = st.Render(p)
		}
		right = p + "  " + right
	}

	textWidth := b.width - lipgloss.Width(marker) - lipgloss.Width(check) - lipgloss.Width(right) - 2 //nolint:mnd // gap
	text := truncate(t.Text, textWidth)
	if t.Completed {
		text = doneStyle.Render(text)
	}
	left := marker + check + text
	gap := max(1, b.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (b *Board) countdownLabel(t *task.Task) string {
	if t.DueDate == nil || t.Completed {
		return ""
	}
	now := b.now()
	due := t.DueDate.Time()
	label := countdown.Label(due, now)
	switch {
	case label == countdown.Expired || countdown.Overdue(due, now):
		return overdueStyle.Render(label)
	case due.Sub(now) <= board.DueSoonWindow:
		return soonStyle.Render(label)
	default:
		return dimStyle.Render(label)
	}
}

func (b *Board) renderStatusBar() string {
	bindings := []key.Binding{b.keys.Toggle, b.keys.MoveUp, b.keys.MoveDown, b.keys.MoveTop, b.keys.Delete, b.keys.Quit}
	help := make([]string, 0, len(bindings))
	for _, k := range bindings {
		help = append(help, k.Help().Key+":"+k.Help().Desc)
	}
	status := statusBarStyle.Render(truncate(" "+strings.Join(help, " "), b.width))

	if b.err != nil {
		return errorStyle.Render(truncate("Error: "+b.err.Error(), b.width)) + "\n" + status
	}
	return status
}

func (b *Board) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete task?") + "\n\n" +
		"  " + task.ShortID(b.deleteID) + ": " + b.deleteText + "\n\n" +
		dimStyle.Render("y:yes  n:no")

	return dialogStyle.Render(content)
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	target := min(maxLen-3, len(runes)) //nolint:mnd // room for "..."
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
