package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/scheduler"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	bodyStyle  = lipgloss.NewStyle()
)

// Writer prints each alert as one line. It is safe for concurrent use.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a sink printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Alert implements scheduler.AlertSink.
func (s *Writer) Alert(n scheduler.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s %s\n", titleStyle.Render(n.Title+":"), bodyStyle.Render(n.Body))
}

// ActivityLog records each alert in the list's activity log.
type ActivityLog struct {
	dir string
}

// NewActivityLog returns a sink appending to the activity log in listDir.
func NewActivityLog(listDir string) *ActivityLog {
	return &ActivityLog{dir: listDir}
}

// Alert implements scheduler.AlertSink.
func (s *ActivityLog) Alert(n scheduler.Notification) {
	board.LogMutation(s.dir, board.ActionAlert, n.TaskID, n.Body)
}

// Fanout delivers every alert to each sink in order. Nil sinks are skipped.
type Fanout []scheduler.AlertSink

// Alert implements scheduler.AlertSink.
func (f Fanout) Alert(n scheduler.Notification) {
	for _, s := range f {
		if s != nil {
			s.Alert(n)
		}
	}
}
