package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZone_ForkChainsToParent(t *testing.T) {
	a, err := Root().Fork(&ZoneSpec{Name: "a"})
	require.NoError(t, err)
	b, err := a.Fork(&ZoneSpec{Name: "b"})
	require.NoError(t, err)

	var chain []string
	for z := b; z != nil; z = z.Parent() {
		chain = append(chain, z.Name())
	}
	assert.Equal(t, []string{"b", "a", "<root>"}, chain)
}

func TestZone_ForkDefaultsEmptyNameToUnnamed(t *testing.T) {
	z, err := Root().Fork(&ZoneSpec{})
	require.NoError(t, err)
	assert.Equal(t, "unnamed", z.Name())
}

func TestZone_ForkRejectsNilSpec(t *testing.T) {
	_, err := Root().Fork(nil)
	require.Error(t, err)
	var rangeErr *RangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestZone_GetWalksAncestors(t *testing.T) {
	a, err := Root().Fork(&ZoneSpec{Name: "a", Properties: map[string]any{"k": "v"}})
	require.NoError(t, err)
	b, err := a.Fork(&ZoneSpec{Name: "b"})
	require.NoError(t, err)

	v, ok := b.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	owner := b.GetZoneWith("k")
	require.NotNil(t, owner)
	assert.Equal(t, a, owner)

	_, ok = b.Get("missing")
	assert.False(t, ok)
}

// invariant 1: Z.get(K) === Z.getZoneWith(K)?.properties[K]
func TestZone_GetMatchesGetZoneWithInvariant(t *testing.T) {
	a, _ := Root().Fork(&ZoneSpec{Name: "a", Properties: map[string]any{"k": 1}})
	b, _ := a.Fork(&ZoneSpec{Name: "b", Properties: map[string]any{"k": 2}})
	c, _ := b.Fork(&ZoneSpec{Name: "c"})

	for _, z := range []*Zone{a, b, c} {
		owner := z.GetZoneWith("k")
		want, ok := owner.properties["k"]
		got, gotOk := z.Get("k")
		assert.Equal(t, ok, gotOk)
		assert.Equal(t, want, got)
	}
}

func TestZone_RunPropagatesErrorsUnchanged(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	assert.PanicsWithValue(t, "boom", func() {
		z.Run(func(this any, args []any) any {
			panic("boom")
		}, nil, nil, "test")
	})
}

// S5: onHandleError returning false suppresses a thrown error in RunGuarded.
func TestZone_RunGuardedSuppressesErrorWhenHandleErrorReturnsFalse(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{
		Name: "z",
		OnHandleError: func(d *Delegate, cur, target *Zone, err any) bool {
			return false
		},
	})

	var result any
	assert.NotPanics(t, func() {
		result = z.RunGuarded(func(this any, args []any) any {
			panic("x")
		}, nil, nil, "test")
	})
	assert.Nil(t, result)
}

func TestZone_RunGuardedRethrowsWhenHandleErrorReturnsTrue(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{
		Name: "z",
		OnHandleError: func(d *Delegate, cur, target *Zone, err any) bool {
			return true
		},
	})
	assert.PanicsWithValue(t, "x", func() {
		z.RunGuarded(func(this any, args []any) any {
			panic("x")
		}, nil, nil, "test")
	})
}

// invariant 2: zone-frame stack is identical on exit as on entry, both
// normal and exceptional.
func TestZone_FrameStackRestoredOnPanic(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	before := currentZoneFrame
	func() {
		defer func() { recover() }()
		z.Run(func(this any, args []any) any {
			assert.Equal(t, z, Current())
			panic("boom")
		}, nil, nil, "test")
	}()
	assert.Same(t, before, currentZoneFrame)
	assert.Equal(t, Root(), Current())
}

func TestZone_WrapRejectsNilCallback(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	_, err := z.Wrap(nil, "test")
	require.Error(t, err)
	var typeErr *TypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestZone_WrapEntersZoneOnInvocation(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	var seen *Zone
	wrapped, err := z.Wrap(func(this any, args []any) any {
		seen = Current()
		return nil
	}, "test")
	require.NoError(t, err)

	wrapped(nil, nil)
	assert.Equal(t, z, seen)
}

// S3: cross-zone reschedule rejects when target is a descendant.
func TestZone_ScheduleTaskRejectsRescheduleIntoDescendant(t *testing.T) {
	a, _ := Root().Fork(&ZoneSpec{Name: "A"})
	b, _ := a.Fork(&ZoneSpec{Name: "B"})

	task := a.ScheduleMicroTask("t", func(this any, args []any) any { return nil })

	defer func() {
		r := recover()
		require.NotNil(t, r)
		ie, ok := AsInvariantError(asError(r))
		require.True(t, ok)
		assert.Equal(t, InvariantRescheduleIntoDescendant, ie.Code)
		assert.Contains(t, ie.Error(), "can not reschedule")
	}()
	b.ScheduleTask(task)
	t.Fatal("expected panic")
}

// S4: runTask enforces owning zone.
func TestZone_RunTaskEnforcesOwningZone(t *testing.T) {
	a, _ := Root().Fork(&ZoneSpec{Name: "A"})
	b, _ := Root().Fork(&ZoneSpec{Name: "B"})

	task := a.ScheduleMacroTask("t", func(this any, args []any) any { return nil }, nil,
		func(tk *Task) any { return nil },
		func(tk *Task) any { return nil },
	)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		ie, ok := AsInvariantError(asError(r))
		require.True(t, ok)
		assert.Equal(t, InvariantWrongZone, ie.Code)
	}()
	b.RunTask(task, nil, nil)
	t.Fatal("expected panic")
}

// Round-trip / idempotence: schedule -> cancel on a one-shot task leaves
// state = notScheduled, runCount = 0, counters net zero.
func TestZone_ScheduleCancelRoundTripOnMacroTask(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	canceled := false
	task := z.ScheduleMacroTask("t", func(this any, args []any) any { return nil }, nil,
		func(tk *Task) any { return nil },
		func(tk *Task) any {
			canceled = true
			return nil
		},
	)
	assert.Equal(t, Scheduled, task.State())

	z.CancelTask(task)
	assert.True(t, canceled)
	assert.Equal(t, NotScheduled, task.State())
	assert.Equal(t, 0, task.RunCount)
	assert.Empty(t, task.zoneDelegates)
}

func TestZone_ScheduleMicroTaskThenDrainReturnsToNotScheduled(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	ran := false
	task := z.ScheduleMicroTask("t", func(this any, args []any) any {
		ran = true
		return nil
	})
	assert.Equal(t, Scheduled, task.State())

	drainMicroTaskQueue()
	assert.True(t, ran)
	assert.Equal(t, NotScheduled, task.State())
}

func TestZone_ScheduleRunNonPeriodicReturnsToNotScheduled(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	ran := false
	task := z.ScheduleMacroTask("t", func(this any, args []any) any {
		ran = true
		return nil
	}, nil,
		func(tk *Task) any { return nil },
		func(tk *Task) any { return nil },
	)
	z.RunTask(task, nil, nil)
	assert.True(t, ran)
	assert.Equal(t, NotScheduled, task.State())
	assert.Equal(t, 0, task.RunCount)
}

func TestZone_ScheduleRunPeriodicReturnsToScheduled(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	runs := 0
	task := z.ScheduleEventTask("t", func(this any, args []any) any {
		runs++
		return nil
	}, &TaskData{Periodic: true},
		func(tk *Task) any { return nil },
		func(tk *Task) any { return nil },
	)
	z.RunTask(task, nil, nil)
	assert.Equal(t, 1, runs)
	assert.Equal(t, Scheduled, task.State())
	assert.Equal(t, 1, task.RunCount)
}

func TestZone_NotScheduledEventTaskRunIsNoOp(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	task := NewTask(EventTask, "t", func(this any, args []any) any {
		t.Fatal("should not run")
		return nil
	}, nil, nil, nil, false)
	task.zone = z // simulate a previously-unscheduled-but-bound task

	result := z.RunTask(task, nil, nil)
	assert.Nil(t, result)
	assert.Equal(t, NotScheduled, task.State())
}

func TestZone_DefaultScheduleTaskRequiresScheduleFnForMacroTask(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	task := NewTask(MacroTask, "t", func(this any, args []any) any { return nil }, nil, nil, nil, false)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		ie, ok := AsInvariantError(asError(r))
		require.True(t, ok)
		assert.Equal(t, InvariantMissingScheduleFn, ie.Code)
	}()
	z.ScheduleTask(task)
	t.Fatal("expected panic")
}

func TestZone_DefaultCancelTaskRequiresCancelFn(t *testing.T) {
	z, _ := Root().Fork(&ZoneSpec{Name: "z"})
	task := z.ScheduleMacroTask("t", func(this any, args []any) any { return nil }, nil,
		func(tk *Task) any { return nil },
		nil,
	)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		ie, ok := AsInvariantError(asError(r))
		require.True(t, ok)
		assert.Equal(t, InvariantNotCancelable, ie.Code)
	}()
	z.CancelTask(task)
	t.Fatal("expected panic")
}
