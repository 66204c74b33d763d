package sim

import (
	"context"
	"sync"
)

// Stepper gates the main loop in RunStepped mode. Step is called before each
// object is popped; returning nil resumes. ErrStepCancelled or a context error
// ends the run with ExitCodeCancelled, any other error with ExitCodeFail.
type Stepper interface {
	Step(ctx context.Context, step uint64, now int64) error
}

// StepperFunc adapts a function to Stepper.
type StepperFunc func(ctx context.Context, step uint64, now int64) error

// Step calls f.
func (f StepperFunc) Step(ctx context.Context, step uint64, now int64) error {
	return f(ctx, step, now)
}

// ChannelStepper lets another goroutine drive a stepped run: every Resume
// releases exactly one step, Cancel ends the run.
type ChannelStepper struct {
	resume     chan struct{}
	cancel     chan struct{}
	cancelOnce sync.Once
}

// NewChannelStepper creates a ChannelStepper. Up to buffered resumes may be
// queued ahead of the loop.
func NewChannelStepper(buffered int) *ChannelStepper {
	return &ChannelStepper{
		resume: make(chan struct{}, buffered),
		cancel: make(chan struct{}),
	}
}

// Resume releases one step. It blocks when the resume buffer is full.
func (c *ChannelStepper) Resume() {
	select {
	case c.resume <- struct{}{}:
	case <-c.cancel:
	}
}

// Cancel ends the run at the next step. Safe to call more than once.
func (c *ChannelStepper) Cancel() {
	c.cancelOnce.Do(func() { close(c.cancel) })
}

// Step waits for Resume, Cancel or context cancellation.
func (c *ChannelStepper) Step(ctx context.Context, _ uint64, _ int64) error {
	select {
	case <-c.resume:
		return nil
	case <-c.cancel:
		return ErrStepCancelled
	case <-ctx.Done():
		return ctx.Err()
	}
}
