package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/lumina/internal/board"
	"github.com/twiced-technology-gmbh/lumina/internal/scheduler"
)

var note = scheduler.Notification{TaskID: "abc", Title: "Task due soon", Body: `"Pay \rent" is due at 14:30`}

type started struct {
	name string
	args []string
}

func fakeDesktop(goos string, installed bool) (*Desktop, *[]started) {
	var calls []started
	d := &Desktop{
		goos: goos,
		lookPath: func(name string) (string, error) {
			if !installed {
				return "", errors.New("not found")
			}
			return "/usr/bin/" + name, nil
		},
		start: func(name string, args ...string) error {
			calls = append(calls, started{name, args})
			return nil
		},
	}
	return d, &calls
}

func TestDesktopLinux(t *testing.T) {
	d, calls := fakeDesktop("linux", true)
	ok, err := d.RequestAuthorization(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, d.Notify(note))
	require.Len(t, *calls, 1)
	assert.Equal(t, "notify-send", (*calls)[0].name)
	assert.Equal(t, []string{"--app-name", "lumina", "--urgency", "normal", note.Title, note.Body}, (*calls)[0].args)
}

func TestDesktopDarwinEscapesScript(t *testing.T) {
	d, calls := fakeDesktop("darwin", true)
	require.NoError(t, d.Notify(note))
	require.Len(t, *calls, 1)
	assert.Equal(t, "osascript", (*calls)[0].name)
	assert.Equal(t,
		[]string{"-e", `display notification "\"Pay \\rent\" is due at 14:30" with title "Task due soon"`},
		(*calls)[0].args)
}

func TestDesktopUnavailable(t *testing.T) {
	d, _ := fakeDesktop("linux", false)
	ok, err := d.Authorized(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	d, calls := fakeDesktop("plan9", true)
	ok, err = d.Authorized(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, d.Notify(note), ErrUnsupported)
	assert.Empty(t, *calls)
}

func TestDesktopStartError(t *testing.T) {
	d, _ := fakeDesktop("linux", true)
	d.start = func(string, ...string) error { return errors.New("exec format error") }
	assert.ErrorContains(t, d.Notify(note), "starting notify-send")
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf).Alert(note)
	assert.Contains(t, buf.String(), "Task due soon:")
	assert.Contains(t, buf.String(), note.Body)
}

func TestActivityLogAndFanout(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	var direct []string

	f := Fanout{
		NewActivityLog(dir),
		nil,
		NewWriter(&buf),
		scheduler.AlertSinkFunc(func(n scheduler.Notification) { direct = append(direct, n.TaskID) }),
	}
	f.Alert(note)

	entries, err := board.ReadLog(dir, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, board.ActionAlert, entries[0].Action)
	assert.Equal(t, "abc", entries[0].TaskID)
	assert.Equal(t, note.Body, entries[0].Detail)
	assert.NotEmpty(t, buf.String())
	assert.Equal(t, []string{"abc"}, direct)
}
