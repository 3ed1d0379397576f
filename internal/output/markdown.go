package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

const defaultWrap = 80

// RenderNotes renders a task's markdown notes for the terminal. Without color
// the plain notty style is used so output stays greppable.
func RenderNotes(notes string, width int, color bool) (string, error) {
	if strings.TrimSpace(notes) == "" {
		return "", nil
	}
	if width <= 0 {
		width = defaultWrap
	}

	style := "notty"
	if color {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(notes)
	if err != nil {
		return "", fmt.Errorf("rendering notes: %w", err)
	}
	return out, nil
}
