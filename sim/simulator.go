// sim/simulator.go
package sim

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Simulation owns every registered object, the queues they are scheduled on,
// and the logical clock. It runs the main loop that repeatedly fires the
// soonest-due object.
type Simulation struct {
	log   *Logger
	runID string

	// Indexes over registered objects. Kind and class slices stay in ascending ID order.
	byID    map[ObjectID]Object
	byKind  map[Kind][]Object
	byClass map[Class][]Object
	nextID  ObjectID

	queues QueueSet
	clock  int64

	mode    RunMode
	stepper Stepper
	steps   uint64
	rng     *PartitionedRNG

	running bool
	exit    ExitStatus
}

// NewSimulation creates a simulation logging its trace to out.
func NewSimulation(out io.Writer, cfg Config) *Simulation {
	return &Simulation{
		log:     NewLogger(out),
		runID:   uuid.NewString(),
		byID:    make(map[ObjectID]Object),
		byKind:  make(map[Kind][]Object),
		byClass: make(map[Class][]Object),
		nextID:  1,
		mode:    cfg.Mode,
		stepper: cfg.Stepper,
		rng:     NewPartitionedRNG(cfg.Key),
	}
}

// Setup attaches the main queue. Call it before AddQueue.
func (s *Simulation) Setup(main *Queue) {
	s.attach(main)
	s.log.Line().Add("Setting up simulation").End()
}

// AddQueue attaches a secondary queue.
func (s *Simulation) AddQueue(q *Queue) {
	s.attach(q)
}

// attach binds q to s and appends it to the queue set. Panics if q already
// belongs to a simulation.
func (s *Simulation) attach(q *Queue) {
	if q == nil {
		return
	}
	if q.owner != nil {
		panic(fmt.Sprintf("queue %q is already attached to a simulation", q.name))
	}
	q.owner = s
	s.queues.Add(q)
}

// MainQueue returns the queue given to Setup, or nil.
func (s *Simulation) MainQueue() *Queue {
	return s.queues.Main()
}

// Queues returns the attached queues, main queue first.
func (s *Simulation) Queues() []*Queue {
	return s.queues.Queues()
}

// Logger returns the trace sink.
func (s *Simulation) Logger() *Logger { return s.log }

// RunID returns the unique identifier of this simulation instance.
func (s *Simulation) RunID() string { return s.runID }

// RNG returns the partitioned random source derived from the simulation key.
func (s *Simulation) RNG() *PartitionedRNG { return s.rng }

// Now returns the current simulation time.
func (s *Simulation) Now() int64 { return s.clock }

// Steps returns the number of loop iterations started so far.
func (s *Simulation) Steps() uint64 { return s.steps }

// Mode returns the run mode.
func (s *Simulation) Mode() RunMode { return s.mode }

// SetMode changes the run mode; takes effect at the next step.
func (s *Simulation) SetMode(m RunMode) { s.mode = m }

// SetStepper replaces the stepper used in RunStepped mode.
func (s *Simulation) SetStepper(st Stepper) { s.stepper = st }

// IsRunning reports whether Run is in progress and not stopped.
func (s *Simulation) IsRunning() bool { return s.running }

// ExitStatus returns the status of the last (or current) run.
func (s *Simulation) ExitStatus() ExitStatus { return s.exit }

// === Registry ===

// AddObject registers o, assigns its identity and indexes it. From this point
// the identity, kind and class of o are fixed. Panics if o is already
// registered or was disposed.
func (s *Simulation) AddObject(o Object) ObjectID {
	b := o.base()
	if b.disposed {
		panic("AddObject: object has been disposed")
	}
	if b.id != 0 {
		panic(fmt.Sprintf("AddObject: object already registered as %d", b.id))
	}

	id := s.nextID
	s.nextID++
	b.id = id
	b.sim = s

	s.byID[id] = o
	s.byKind[b.kind] = append(s.byKind[b.kind], o)
	s.byClass[b.class] = append(s.byClass[b.class], o)

	s.log.Line().Add("Adding object (GUID: ", id, ", type: ", b.kind, ", class: ", b.class, ")").End()
	return id
}

// CreateProcess creates and registers a process.
func (s *Simulation) CreateProcess(class Class, behavior ProcessBehavior) *Process {
	p := NewProcess(class, behavior)
	s.AddObject(p)
	return p
}

// CreateEvent creates and registers an event. Its random source is derived
// from the simulation key and the event identity.
func (s *Simulation) CreateEvent(class Class, handler TargetHandler) *Event {
	ev := newEvent(class, handler, nil)
	id := s.AddObject(ev)
	ev.rng = s.rng.Derive(SubsystemEvent(id))
	return ev
}

// RemoveObject disposes o if it is registered with this simulation; otherwise
// it does nothing.
func (s *Simulation) RemoveObject(o Object) {
	if o == nil || o.Simulation() != s {
		return
	}
	o.Dispose()
}

// unregister drops b from every index.
func (s *Simulation) unregister(b *entity) {
	if _, ok := s.byID[b.id]; !ok {
		return
	}
	delete(s.byID, b.id)
	match := func(o Object) bool { return o.ID() == b.id }
	s.byKind[b.kind] = slices.DeleteFunc(s.byKind[b.kind], match)
	s.byClass[b.class] = slices.DeleteFunc(s.byClass[b.class], match)
}

// ObjectByID returns the object with the given identity.
func (s *Simulation) ObjectByID(id ObjectID) (Object, bool) {
	o, ok := s.byID[id]
	return o, ok
}

// ObjectsByKind returns the objects of kind k in ascending ID order.
// The returned slice is a copy.
func (s *Simulation) ObjectsByKind(k Kind) []Object {
	return slices.Clone(s.byKind[k])
}

// ObjectsByClass returns the objects of class c in ascending ID order.
// The returned slice is a copy.
func (s *Simulation) ObjectsByClass(c Class) []Object {
	return slices.Clone(s.byClass[c])
}

// AllObjects returns every registered object in ascending ID order.
func (s *Simulation) AllObjects() []Object {
	objs := make([]Object, 0, len(s.byID))
	for _, o := range s.byID {
		objs = append(objs, o)
	}
	slices.SortFunc(objs, func(a, b Object) int { return cmp.Compare(a.ID(), b.ID()) })
	return objs
}

// Len returns the number of registered objects.
func (s *Simulation) Len() int {
	return len(s.byID)
}

// === Main loop ===

// Run fires scheduled objects in fire-time order until every queue is empty,
// Stop is called, or ctx is cancelled. Returns the exit status, ExitCodeOK
// unless Stop recorded another one.
func (s *Simulation) Run(ctx context.Context) ExitStatus {
	s.exit = ExitStatus{Code: ExitCodeOK}
	s.running = true
	runLog := logrus.WithField("run", s.runID)
	runLog.Infof("[tick %07d] Simulation started with %d objects in %d queues", s.clock, len(s.byID), s.queues.Len())

	for s.running && !s.queues.AllEmpty() {
		if ctx.Err() != nil {
			s.Stop(ExitCodeCancelled, 0)
			break
		}
		s.steps++

		if s.mode == RunStepped {
			s.log.Line().Add("Step: ", s.steps).End()
			if err := s.awaitStep(ctx); err != nil {
				code := ExitCodeFail
				if IsCancellation(err) {
					code = ExitCodeCancelled
				}
				runLog.Infof("[tick %07d] Stepped run ended by stepper: %v", s.clock, err)
				s.Stop(code, 0)
				break
			}
		}

		s.fireNext()
	}

	s.running = false
	runLog.Infof("[tick %07d] Simulation ended: %s", s.clock, s.exit)
	return s.exit
}

func (s *Simulation) awaitStep(ctx context.Context) error {
	if s.stepper == nil {
		logrus.Warnf("[tick %07d] Stepped mode without a stepper; continuing", s.clock)
		return nil
	}
	return s.stepper.Step(ctx, s.steps, s.clock)
}

// fireNext pops the globally soonest entry, advances the clock and runs the object.
func (s *Simulation) fireNext() {
	e, q, ok := s.queues.Pop()
	if !ok {
		return
	}
	obj, ok := s.byID[e.ID]
	if !ok {
		logrus.Warnf("[tick %07d] Dropping entry for unknown object %d", s.clock, e.ID)
		return
	}
	if e.At < s.clock {
		panic(fmt.Sprintf("Clock went backwards: %d < %d", e.At, s.clock))
	}
	s.clock = e.At

	s.log.At(s.clock).Add("Object ", e.ID, " fired at ", e.At).End()
	logrus.Debugf("[tick %07d] Executing %s %d from queue %q", s.clock, obj.Kind(), e.ID, q.Name())

	b := obj.base()
	// the object is no longer scheduled while it runs
	b.clearSchedule()
	obj.Run()

	if b.disposed || !b.HasPeriodicSchedule() {
		return
	}
	if err := b.NextPeriodicTick(q); err != nil {
		logrus.Warnf("[tick %07d] Periodic reschedule of object %d failed: %v", s.clock, e.ID, err)
		s.Stop(ExitCodeFail, e.ID)
	}
}

// Stop ends the run with the given code. The object currently running
// completes; the loop exits before the next step. Does nothing when the
// simulation is not running.
func (s *Simulation) Stop(code int64, initiator ObjectID) {
	if !s.running {
		return
	}
	s.running = false
	s.exit = ExitStatus{Code: code, Initiator: initiator}
}

// IsCancellation reports whether a stepper error is a deliberate cancellation
// rather than a failure.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrStepCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
