package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/simlib/sim/random"
)

// TargetHandler executes an event on one selected target.
type TargetHandler interface {
	ExecuteOn(ev *Event, target Object)
}

// TargetFilter is an optional TargetHandler capability: it may rewrite the
// selected targets after all criteria were applied.
type TargetFilter interface {
	FilterTargets(ev *Event, targets []Object) []Object
}

// ExecutionObserver is an optional TargetHandler capability called once
// before and once after the targets are executed on.
type ExecutionObserver interface {
	BeforeExecute(ev *Event)
	AfterExecute(ev *Event)
}

// HandlerFunc adapts a function to TargetHandler.
type HandlerFunc func(ev *Event, target Object)

// ExecuteOn calls f(ev, target).
func (f HandlerFunc) ExecuteOn(ev *Event, target Object) { f(ev, target) }

// Event is a one-shot simulation object. When it fires it selects targets
// among the simulation objects, executes on each, and disposes itself unless
// it is periodic or was rescheduled while running.
type Event struct {
	entity
	handler  TargetHandler
	criteria []Criterion
	rng      *rand.Rand
}

// NewEvent creates a detached event whose random source is seeded from a
// true-random value. Events created through Simulation.CreateEvent use a
// stream derived from the simulation key instead.
func NewEvent(class Class, handler TargetHandler) *Event {
	return newEvent(class, handler, rand.New(rand.NewSource(random.TrueRandomSeed())))
}

func newEvent(class Class, handler TargetHandler, rng *rand.Rand) *Event {
	return &Event{
		entity:  entity{kind: KindEvent, class: class},
		handler: handler,
		rng:     rng,
	}
}

// AddCriterion appends a selection step. k is read only by SelectKOfN.
func (ev *Event) AddCriterion(sel Selector, mode SelectionMode, k uint32) {
	ev.criteria = append(ev.criteria, Criterion{Selector: sel, Mode: mode, K: k})
}

// Criteria returns a copy of the selection steps.
func (ev *Event) Criteria() []Criterion {
	out := make([]Criterion, len(ev.criteria))
	copy(out, ev.criteria)
	return out
}

// Handler returns the handler given at construction.
func (ev *Event) Handler() TargetHandler {
	return ev.handler
}

// Seed resets the event random source.
func (ev *Event) Seed(seed int64) {
	ev.rng = rand.New(rand.NewSource(seed))
}

// SelectTargets resolves the event criteria against the simulation and
// applies the handler filter, without executing anything.
// Returns nil for a detached event.
func (ev *Event) SelectTargets() []Object {
	s := ev.sim
	if s == nil {
		return nil
	}

	var targets []Object
	if len(ev.criteria) == 0 {
		targets = s.AllObjects()
	} else {
		// the first criterion reads the matching index directly
		first := ev.criteria[0]
		targets = applyMode(first.Selector.lookup(s), first, ev.rng)
		for _, c := range ev.criteria[1:] {
			if len(targets) == 0 {
				break
			}
			targets = applyMode(filterMatching(targets, c.Selector), c, ev.rng)
		}
	}

	if f, ok := ev.handler.(TargetFilter); ok {
		targets = f.FilterTargets(ev, targets)
	}
	return targets
}

// Run selects the targets and executes the event on them. Targets that are
// processes additionally receive the event.
func (ev *Event) Run() {
	if ev.sim == nil {
		return
	}
	targets := ev.SelectTargets()
	logrus.Debugf("[tick %07d] Event %d selected %d targets", ev.sim.Now(), ev.id, len(targets))

	obs, hasObs := ev.handler.(ExecutionObserver)
	if hasObs {
		obs.BeforeExecute(ev)
	}
	for _, t := range targets {
		// an earlier target may have disposed this one
		if t.IsDisposed() {
			continue
		}
		if ev.handler != nil {
			ev.handler.ExecuteOn(ev, t)
		}
		if p, ok := t.(*Process); ok && !p.IsDisposed() {
			p.ReceiveEvent(ev)
		}
	}
	if hasObs {
		obs.AfterExecute(ev)
	}

	if !ev.HasPeriodicSchedule() && ev.CurrentQueue() == nil {
		ev.Dispose()
	}
}
