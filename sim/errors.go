package sim

import "errors"

// Scheduling failures. Callers compare with errors.Is.
var (
	// ErrNilQueue is returned when scheduling onto a nil queue.
	ErrNilQueue = errors.New("sim: queue must not be nil")
	// ErrNilGenerator is returned by SchedulePeriodic without a generator.
	ErrNilGenerator = errors.New("sim: periodic generator must not be nil")
	// ErrDetached is returned when the object is not registered with a Simulation.
	ErrDetached = errors.New("sim: object is not attached to a simulation")
	// ErrDisposed is returned for any scheduling of a disposed object.
	ErrDisposed = errors.New("sim: object has been disposed")
	// ErrForeignQueue is returned when the queue is not attached to the object's Simulation.
	ErrForeignQueue = errors.New("sim: queue is not attached to the object's simulation")
	// ErrScheduleInPast is returned when the resulting fire time is before the clock.
	ErrScheduleInPast = errors.New("sim: fire time is before the current simulation time")
	// ErrStepCancelled is returned by a Stepper to end a stepped run.
	ErrStepCancelled = errors.New("sim: stepped run cancelled")
)
