package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskState_String(t *testing.T) {
	cases := map[TaskState]string{
		NotScheduled: "notScheduled",
		Scheduling:   "scheduling",
		Scheduled:    "scheduled",
		Running:      "running",
		Canceling:    "canceling",
		Unknown:      "unknown",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
	assert.Equal(t, "unknown", TaskState(99).String())
}

func TestTransitionTo_AllowsEitherFromState(t *testing.T) {
	task := NewTask(MacroTask, "t", nil, nil, nil, nil, false)
	task.state = Scheduled
	assert.NotPanics(t, func() {
		task.transitionTo(Canceling, Scheduled, Running)
	})
	assert.Equal(t, Canceling, task.state)

	task.state = Running
	assert.NotPanics(t, func() {
		task.transitionTo(Canceling, Scheduled, Running)
	})
}

// S6: illegal transition is fatal, with a descriptive message.
func TestTransitionTo_IllegalTransitionIsFatal(t *testing.T) {
	task := NewTask(MacroTask, "t", nil, nil, nil, nil, false)
	task.state = Running

	defer func() {
		r := recover()
		require.NotNil(t, r)
		ie, ok := AsInvariantError(asError(r))
		require.True(t, ok)
		assert.Equal(t, InvariantIllegalTransition, ie.Code)
		assert.Contains(t, ie.Error(), "can not transition to 'scheduled'")
		assert.Contains(t, ie.Error(), "expecting state 'notScheduled'")
		assert.Contains(t, ie.Error(), "was 'running'")
	}()
	task.transitionTo(Scheduled, NotScheduled, -1)
	t.Fatal("expected panic")
}

// invariant 6: every state transition matches from1 or from2; otherwise a
// descriptive throw.
func TestTransitionTo_RejectsNeitherFromState(t *testing.T) {
	task := NewTask(MicroTask, "t", nil, nil, nil, nil, false)
	task.state = NotScheduled

	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := AsInvariantError(asError(r))
		require.True(t, ok)
	}()
	task.transitionTo(Canceling, Scheduled, Running)
	t.Fatal("expected panic")
}
