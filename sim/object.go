package sim

import "fmt"

// ObjectID identifies an object within one Simulation. IDs are assigned by
// Simulation.AddObject starting at 1; 0 means the object is not registered.
type ObjectID uint64

// Kind is the closed set of schedulable object variants.
type Kind int

const (
	KindProcess Kind = iota
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindProcess:
		return "process"
	case KindEvent:
		return "event"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseKind parses "process" or "event".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "process":
		return KindProcess, nil
	case "event":
		return KindEvent, nil
	default:
		return KindProcess, fmt.Errorf("invalid kind %q (must be 'process' or 'event')", s)
	}
}

// Class is a host-defined tag grouping objects for selection.
type Class uint32

// ClassUnspecified is the default class.
const ClassUnspecified Class = 0

// DeltaGenerator produces successive scheduling intervals (in ticks) for
// periodically scheduled objects. Every random.Generator[int64] satisfies it.
type DeltaGenerator interface {
	Next() int64
}

// Object is a schedulable simulation object. The only implementations are
// *Process and *Event; both share the lifecycle defined on entity.
type Object interface {
	ID() ObjectID
	Kind() Kind
	Class() Class
	Simulation() *Simulation

	NextFireTime() (int64, bool)
	CurrentQueue() *Queue
	Schedule(q *Queue, at int64, relative bool) error
	SchedulePeriodic(q *Queue, gen DeltaGenerator, fireImmediately bool) error
	HasPeriodicSchedule() bool
	NextPeriodicTick(q *Queue) error
	CancelPeriodicSchedule(removeFromQueue bool)
	Dispose()
	IsDisposed() bool

	// Run is invoked by the main loop when the object fires.
	Run()

	base() *entity
}

// entity holds identity and scheduling state shared by all object variants.
type entity struct {
	id    ObjectID
	kind  Kind
	class Class

	// sim is cleared on disposal; the Simulation owns the object, not the reverse.
	sim *Simulation

	gen DeltaGenerator

	// queue and at are set only while the object sits in queue.
	queue *Queue
	at    int64

	disposed bool
}

func (e *entity) base() *entity { return e }

// ID returns the identity assigned at registration (0 if unregistered).
func (e *entity) ID() ObjectID { return e.id }

// Kind returns the object variant.
func (e *entity) Kind() Kind { return e.kind }

// Class returns the host-defined classification.
func (e *entity) Class() Class { return e.class }

// Simulation returns the owning simulation, or nil if detached or disposed.
func (e *entity) Simulation() *Simulation { return e.sim }

// IsDisposed reports whether Dispose has completed on this object.
func (e *entity) IsDisposed() bool { return e.disposed }

// NextFireTime returns the scheduled fire time; false if unscheduled.
func (e *entity) NextFireTime() (int64, bool) {
	if e.queue == nil {
		return 0, false
	}
	return e.at, true
}

// CurrentQueue returns the queue the object is scheduled in, or nil.
func (e *entity) CurrentQueue() *Queue {
	return e.queue
}

// Schedule places the object on q. With relative set, at is a delay added to
// the simulation clock; otherwise it is an absolute fire time. An existing
// schedule is replaced. Only registered objects can be scheduled, and only on
// queues attached to their own Simulation.
func (e *entity) Schedule(q *Queue, at int64, relative bool) error {
	if q == nil {
		return ErrNilQueue
	}
	if e.disposed {
		return ErrDisposed
	}
	if e.sim == nil {
		return ErrDetached
	}
	if q.owner != e.sim {
		return fmt.Errorf("queue %q: %w", q.name, ErrForeignQueue)
	}
	now := e.sim.Now()
	if relative {
		if at < 0 {
			return fmt.Errorf("delay %d: %w", at, ErrScheduleInPast)
		}
		at += now
	} else if at < now {
		return fmt.Errorf("fire time %d at clock %d: %w", at, now, ErrScheduleInPast)
	}

	e.unschedule()
	e.at = at
	e.queue = q
	q.Push(e.id, at)
	return nil
}

// SchedulePeriodic attaches gen and schedules the first fire: at the current
// clock when fireImmediately is set, otherwise after the first generated delay.
// After every fire the main loop draws the next delay from gen.
func (e *entity) SchedulePeriodic(q *Queue, gen DeltaGenerator, fireImmediately bool) error {
	if gen == nil {
		return ErrNilGenerator
	}
	if q == nil {
		return ErrNilQueue
	}
	if e.disposed {
		return ErrDisposed
	}
	if e.sim == nil {
		return ErrDetached
	}
	if q.owner != e.sim {
		return fmt.Errorf("queue %q: %w", q.name, ErrForeignQueue)
	}

	var delay int64
	if !fireImmediately {
		delay = gen.Next()
	}
	prev := e.gen
	e.gen = gen
	if err := e.Schedule(q, delay, true); err != nil {
		e.gen = prev
		return err
	}
	return nil
}

// HasPeriodicSchedule returns true if a periodic generator is attached.
func (e *entity) HasPeriodicSchedule() bool {
	return e.gen != nil
}

// NextPeriodicTick reschedules the object on q after the next generated delay.
// It does nothing without a periodic generator.
func (e *entity) NextPeriodicTick(q *Queue) error {
	if e.gen == nil {
		return nil
	}
	return e.Schedule(q, e.gen.Next(), true)
}

// CancelPeriodicSchedule detaches the periodic generator. With removeFromQueue
// set, the pending fire is dropped as well.
func (e *entity) CancelPeriodicSchedule(removeFromQueue bool) {
	if e.gen == nil {
		return
	}
	e.gen = nil
	if removeFromQueue {
		e.unschedule()
	}
}

// Dispose removes the object from its queue and from the Simulation, then
// drops the back-reference. Disposal is terminal: a disposed object refuses
// scheduling and must not be registered again. Detached objects are left alone.
func (e *entity) Dispose() {
	if e.disposed || e.sim == nil {
		return
	}
	e.unschedule()
	e.sim.unregister(e)
	e.gen = nil
	e.sim = nil
	e.disposed = true
}

// unschedule removes the object from its current queue, if any.
func (e *entity) unschedule() {
	if e.queue != nil {
		e.queue.Remove(e.id)
	}
	e.clearSchedule()
}

// clearSchedule forgets the scheduling state without touching any queue.
// Used by the main loop once the entry is already popped.
func (e *entity) clearSchedule() {
	e.queue = nil
	e.at = 0
}
