package date

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestParseDue(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	now := time.Date(2026, 10, 18, 9, 15, 0, 0, loc)

	tests := []struct {
		in       string
		want     time.Time
		withTime bool
	}{
		{"2026-10-20", time.Date(2026, 10, 20, 0, 0, 0, 0, loc), false},
		{"2026-10-20 14:30", time.Date(2026, 10, 20, 14, 30, 0, 0, loc), true},
		{"2026-10-20T14:30", time.Date(2026, 10, 20, 14, 30, 0, 0, loc), true},
		{"16:45", time.Date(2026, 10, 18, 16, 45, 0, 0, loc), true},
		{"today", time.Date(2026, 10, 18, 0, 0, 0, 0, loc), false},
		{"Tomorrow", time.Date(2026, 10, 19, 0, 0, 0, 0, loc), false},
		{"+90m", now.Add(90 * time.Minute), true},
		{"+2d", now.Add(48 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, withTime, err := ParseDue(tt.in, now)
			require.NoError(t, err)
			assert.Equal(t, FromTime(tt.want), got)
			assert.Equal(t, tt.withTime, withTime)
		})
	}
}

func TestParseDueRejectsGarbage(t *testing.T) {
	now := time.Now()
	for _, in := range []string{"", "next week", "2026-13-01", "+-5m", "+xd"} {
		_, _, err := ParseDue(in, now)
		assert.Error(t, err, in)
	}
}

func TestInstantSub(t *testing.T) {
	a := Instant(10_000)
	b := Instant(4_000)
	assert.Equal(t, 6*time.Second, a.Sub(b))
	assert.Equal(t, -6*time.Second, b.Sub(a))
}

func TestInstantYAML(t *testing.T) {
	type doc struct {
		Due *Instant `yaml:"due,omitempty"`
	}

	out, err := yaml.Marshal(doc{Due: Instant(1760000000000).Ptr()})
	require.NoError(t, err)
	assert.Equal(t, "due: 1760000000000\n", string(out))

	var fromString doc
	require.NoError(t, yaml.Unmarshal([]byte("due: 2026-10-18 14:30\n"), &fromString))
	require.NotNil(t, fromString.Due)
	want := time.Date(2026, 10, 18, 14, 30, 0, 0, time.Local)
	assert.Equal(t, FromTime(want), *fromString.Due)
}

func TestInstantJSONAcceptsString(t *testing.T) {
	var i Instant
	require.NoError(t, json.Unmarshal([]byte(`"2026-10-18"`), &i))
	assert.Equal(t, FromTime(time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local)), i)

	require.NoError(t, json.Unmarshal([]byte(`1700000000000`), &i))
	assert.Equal(t, Instant(1700000000000), i)
}
