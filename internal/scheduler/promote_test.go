package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

func TestSelectPromotion(t *testing.T) {
	assert.Nil(t, SelectPromotion(nil))

	a := dueTask("a", base.Add(20*time.Minute), true)
	b := dueTask("b", base.Add(5*time.Minute), true)
	c := dueTask("c", base.Add(5*time.Minute), true)

	got := SelectPromotion([]*task.Task{a, b, c})
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID, "earliest due wins and ties keep the first one")

	got = SelectPromotion([]*task.Task{c, b})
	assert.Equal(t, "c", got.ID)
}

func TestNeedsPromotion(t *testing.T) {
	done := &task.Task{ID: "done", Completed: true}
	a := &task.Task{ID: "a"}
	b := &task.Task{ID: "b"}

	assert.False(t, NeedsPromotion([]*task.Task{a, b}, a))
	assert.True(t, NeedsPromotion([]*task.Task{a, b}, b))
	assert.False(t, NeedsPromotion([]*task.Task{done, a, b}, a), "completed tasks ahead do not count")
}

func TestPromotedOrder(t *testing.T) {
	done := &task.Task{ID: "done", Completed: true}
	a := &task.Task{ID: "a"}
	b := &task.Task{ID: "b"}
	c := &task.Task{ID: "c"}

	got := PromotedOrder([]*task.Task{a, done, b, c}, c)
	assert.Equal(t, []string{"c", "a", "done", "b"}, taskIDs(got))
}
