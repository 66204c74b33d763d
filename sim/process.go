package sim

// ProcessBehavior is the host-supplied domain logic of a Process.
type ProcessBehavior interface {
	Run(p *Process)
}

// EventReceiver is implemented by behaviors that react to events targeting
// their process.
type EventReceiver interface {
	ReceiveEvent(p *Process, ev *Event)
}

// ProcessFunc adapts a function to ProcessBehavior.
type ProcessFunc func(p *Process)

// Run calls f(p).
func (f ProcessFunc) Run(p *Process) { f(p) }

// Process is a long-lived simulation object. It runs its behavior every time
// it fires and receives the events that select it.
type Process struct {
	entity
	behavior ProcessBehavior
}

// NewProcess creates a detached process; register it with Simulation.AddObject.
// A nil behavior makes Run and ReceiveEvent no-ops.
func NewProcess(class Class, behavior ProcessBehavior) *Process {
	return &Process{
		entity:   entity{kind: KindProcess, class: class},
		behavior: behavior,
	}
}

// Behavior returns the behavior given at construction.
func (p *Process) Behavior() ProcessBehavior {
	return p.behavior
}

// Run executes the process behavior.
func (p *Process) Run() {
	if p.behavior != nil {
		p.behavior.Run(p)
	}
}

// ReceiveEvent delivers ev if the behavior implements EventReceiver.
func (p *Process) ReceiveEvent(ev *Event) {
	if r, ok := p.behavior.(EventReceiver); ok {
		r.ReceiveEvent(p, ev)
	}
}
