package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/simlib/sim/random"
)

func TestKind_StringAndParse(t *testing.T) {
	for _, k := range []Kind{KindProcess, KindEvent} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("thread")
	assert.Error(t, err)
	assert.Equal(t, "unknown(9)", Kind(9).String())
}

func TestObject_Detached(t *testing.T) {
	p := NewProcess(4, nil)
	assert.Zero(t, p.ID())
	assert.Equal(t, KindProcess, p.Kind())
	assert.Equal(t, Class(4), p.Class())
	assert.Nil(t, p.Simulation())

	q := NewQueue("main")
	assert.ErrorIs(t, p.Schedule(q, 5, true), ErrDetached)
	assert.ErrorIs(t, p.Schedule(q, 5, false), ErrDetached)
	assert.ErrorIs(t, p.SchedulePeriodic(q, random.NewConstant[int64](1), false), ErrDetached)
	assert.True(t, q.IsEmpty())
	assert.False(t, p.HasPeriodicSchedule(), "failed periodic schedule must not keep the generator")

	// disposing a detached object does nothing
	p.Dispose()
	assert.False(t, p.IsDisposed())
}

func TestObject_Schedule_Errors(t *testing.T) {
	s, _ := newTestSimulation(t)
	p := s.CreateProcess(0, nil)

	assert.ErrorIs(t, p.Schedule(nil, 1, false), ErrNilQueue)
	assert.ErrorIs(t, p.Schedule(s.MainQueue(), -1, true), ErrScheduleInPast)
	assert.ErrorIs(t, p.SchedulePeriodic(s.MainQueue(), nil, false), ErrNilGenerator)
	assert.ErrorIs(t, p.SchedulePeriodic(nil, random.NewConstant[int64](1), false), ErrNilQueue)

	_, scheduled := p.NextFireTime()
	assert.False(t, scheduled)
}

func TestObject_Schedule_AbsoluteInPast(t *testing.T) {
	s, _ := newTestSimulation(t)
	var err error
	p := s.CreateProcess(0, ProcessFunc(func(p *Process) {
		err = p.Schedule(p.Simulation().MainQueue(), 3, false)
	}))
	require.NoError(t, p.Schedule(s.MainQueue(), 10, false))

	s.Run(context.Background())

	assert.ErrorIs(t, err, ErrScheduleInPast)
}

func TestObject_Schedule_RelativeAddsClock(t *testing.T) {
	s, _ := newTestSimulation(t)
	var at int64
	target := s.CreateProcess(0, nil)
	trigger := s.CreateProcess(0, ProcessFunc(func(p *Process) {
		require.NoError(t, target.Schedule(p.Simulation().MainQueue(), 7, true))
		at, _ = target.NextFireTime()
	}))
	require.NoError(t, trigger.Schedule(s.MainQueue(), 20, false))

	s.Run(context.Background())
	assert.Equal(t, int64(27), at)
}

func TestObject_Reschedule_MovesBetweenQueues(t *testing.T) {
	s, _ := newTestSimulation(t)
	aux := NewQueue("aux")
	s.AddQueue(aux)
	p := s.CreateProcess(0, nil)

	require.NoError(t, p.Schedule(s.MainQueue(), 10, false))
	require.NoError(t, p.Schedule(aux, 4, false))

	// THEN schedule state and queue membership agree
	assert.False(t, s.MainQueue().Contains(p.ID()))
	assert.True(t, aux.Contains(p.ID()))
	assert.Equal(t, 1, aux.Len())
	assert.Same(t, aux, p.CurrentQueue())
	at, ok := p.NextFireTime()
	require.True(t, ok)
	assert.Equal(t, int64(4), at)
}

func TestObject_Dispose_IsTerminal(t *testing.T) {
	s, _ := newTestSimulation(t)
	p := s.CreateProcess(2, nil)
	require.NoError(t, p.SchedulePeriodic(s.MainQueue(), random.NewConstant[int64](1), false))
	id := p.ID()

	p.Dispose()

	assert.True(t, p.IsDisposed())
	assert.Nil(t, p.Simulation())
	assert.Nil(t, p.CurrentQueue())
	assert.False(t, p.HasPeriodicSchedule())
	assert.True(t, s.MainQueue().IsEmpty())
	assert.Equal(t, id, p.ID(), "identity is immutable")
	_, found := s.ObjectByID(id)
	assert.False(t, found)
	assert.ErrorIs(t, p.Schedule(s.MainQueue(), 1, false), ErrDisposed)
	assert.ErrorIs(t, p.SchedulePeriodic(s.MainQueue(), random.NewConstant[int64](1), true), ErrDisposed)

	p.Dispose()
	assert.True(t, p.IsDisposed())
}

func TestObject_DisposeOtherWhileScheduled(t *testing.T) {
	s, _ := newTestSimulation(t)
	victim := &fireRecorder{}
	v := s.CreateProcess(0, victim)
	killer := s.CreateProcess(0, ProcessFunc(func(*Process) { v.Dispose() }))
	require.NoError(t, killer.Schedule(s.MainQueue(), 1, false))
	require.NoError(t, v.Schedule(s.MainQueue(), 2, false))

	assert.True(t, s.Run(context.Background()).OK())
	assert.Empty(t, victim.times)
	assert.Equal(t, int64(1), s.Now())
}

func TestObject_DisposeSelfWhilePeriodic(t *testing.T) {
	s, _ := newTestSimulation(t)
	rec := &fireRecorder{after: func(p *Process) { p.Dispose() }}
	p := s.CreateProcess(0, rec)
	require.NoError(t, p.SchedulePeriodic(s.MainQueue(), random.NewConstant[int64](1), false))

	status := s.Run(context.Background())

	assert.True(t, status.OK())
	assert.Equal(t, []int64{1}, rec.times)
	assert.True(t, s.MainQueue().IsEmpty())
}

func TestObject_Schedule_ForeignQueueRejected(t *testing.T) {
	// GIVEN two simulations whose first objects share identity 1
	a, _ := newTestSimulation(t)
	b, _ := newTestSimulation(t)
	var firedA []ObjectID
	pa := a.CreateProcess(0, ProcessFunc(func(p *Process) { firedA = append(firedA, p.ID()) }))
	pb := b.CreateProcess(0, nil)
	require.Equal(t, pa.ID(), pb.ID())

	// WHEN b's object is scheduled on a's queue
	err := pb.Schedule(a.MainQueue(), 5, false)
	perr := pb.SchedulePeriodic(a.MainQueue(), random.NewConstant[int64](1), false)

	// THEN both calls fail and nothing is queued anywhere
	assert.ErrorIs(t, err, ErrForeignQueue)
	assert.ErrorIs(t, perr, ErrForeignQueue)
	assert.False(t, pb.HasPeriodicSchedule())
	assert.True(t, a.MainQueue().IsEmpty())
	_, scheduled := pb.NextFireTime()
	assert.False(t, scheduled)

	// AND a's own object never fires in its place
	assert.True(t, a.Run(context.Background()).OK())
	assert.Empty(t, firedA)
}

func TestObject_Schedule_UnattachedQueueRejected(t *testing.T) {
	s, _ := newTestSimulation(t)
	loose := NewQueue("loose")
	p := s.CreateProcess(0, nil)

	assert.ErrorIs(t, p.Schedule(loose, 5, false), ErrForeignQueue)
	assert.True(t, loose.IsEmpty())
	_, scheduled := p.NextFireTime()
	assert.False(t, scheduled)

	s.AddQueue(loose)
	assert.Same(t, s, loose.Owner())
	require.NoError(t, p.Schedule(loose, 5, false))
	assert.True(t, s.Run(context.Background()).OK())
	_, scheduled = p.NextFireTime()
	assert.False(t, scheduled, "fired objects are no longer scheduled")
}

func TestSimulation_AddQueue_AlreadyAttachedPanics(t *testing.T) {
	a, _ := newTestSimulation(t)
	b, _ := newTestSimulation(t)
	assert.Panics(t, func() { b.AddQueue(a.MainQueue()) })
	assert.Panics(t, func() { a.AddQueue(a.MainQueue()) })
}
