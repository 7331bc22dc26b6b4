package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1: two microtasks enqueued inside a macrotask run strictly before
// control returns to the host, in FIFO order.
func TestMicrotask_DrainsBeforeOutermostTaskReturnsControl(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	var log []string

	task := z.ScheduleMacroTask("t", func(this any, args []any) any {
		z.ScheduleMicroTask("m1", func(this any, args []any) any {
			log = append(log, "a")
			return nil
		})
		z.ScheduleMicroTask("m2", func(this any, args []any) any {
			log = append(log, "b")
			return nil
		})
		log = append(log, "sync")
		return nil
	}, nil,
		func(tk *Task) any { return nil },
		func(tk *Task) any { return nil },
	)

	InvokeTask(task, nil, nil)
	assert.Equal(t, []string{"sync", "a", "b"}, log)
}

func TestMicrotask_NestedSchedulingDrainsBeforeDrainReturns(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	var log []string

	task := z.ScheduleMacroTask("t", func(this any, args []any) any {
		z.ScheduleMicroTask("m1", func(this any, args []any) any {
			log = append(log, "m1")
			z.ScheduleMicroTask("m1-nested", func(this any, args []any) any {
				log = append(log, "m1-nested")
				return nil
			})
			return nil
		})
		return nil
	}, nil,
		func(tk *Task) any { return nil },
		func(tk *Task) any { return nil },
	)

	InvokeTask(task, nil, nil)
	assert.Equal(t, []string{"m1", "m1-nested"}, log)
}

func TestMicrotask_PanicIsCaughtAndRoutedToOnUnhandledError(t *testing.T) {
	prevHook := onUnhandledErrorHook
	defer func() { onUnhandledErrorHook = prevHook }()

	var gotTask *Task
	var gotErr error
	SetOnUnhandledError(func(task *Task, err error) {
		gotTask = task
		gotErr = err
	})

	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	task := z.ScheduleMicroTask("boom", func(this any, args []any) any {
		panic("kaboom")
	})

	assert.NotPanics(t, func() {
		drainMicroTaskQueue()
	})
	require.NotNil(t, gotTask)
	assert.Equal(t, task.Source, gotTask.Source)
	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "kaboom")
}

func TestMicrotask_DrainDoneHookFiresAfterEveryDrain(t *testing.T) {
	prevHook := microtaskDrainDoneHook
	defer func() { microtaskDrainDoneHook = prevHook }()

	calls := 0
	SetMicrotaskDrainDone(func() { calls++ })

	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	z.ScheduleMicroTask("m", func(this any, args []any) any { return nil })
	drainMicroTaskQueue()
	assert.Equal(t, 1, calls)

	// A drain with nothing queued still fires the hook once.
	drainMicroTaskQueue()
	assert.Equal(t, 2, calls)
}

func TestMicrotask_ArmMicrotaskTriggerUsesPromiseThenOverTimer(t *testing.T) {
	prevThen, prevTimer := nativePromiseThen, nativeTimer
	defer func() { nativePromiseThen, nativeTimer = prevThen, prevTimer }()

	var usedThen, usedTimer bool
	SetNativePromiseThen(func(fn func()) { usedThen = true })
	SetNativeTimer(func(fn func()) { usedTimer = true })

	armMicrotaskTrigger()
	assert.True(t, usedThen)
	assert.False(t, usedTimer)
}

func TestMicrotask_ArmMicrotaskTriggerFallsBackToTimer(t *testing.T) {
	prevThen, prevTimer := nativePromiseThen, nativeTimer
	defer func() { nativePromiseThen, nativeTimer = prevThen, prevTimer }()
	nativePromiseThen = nil

	var usedTimer bool
	SetNativeTimer(func(fn func()) { usedTimer = true })

	armMicrotaskTrigger()
	assert.True(t, usedTimer)
}
