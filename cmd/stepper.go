package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/inference-sim/simlib/sim"
)

// consoleStepper drives a stepped run from line input: an empty line (or
// "n") releases one step, "c" switches to continuous, "q" cancels.
type consoleStepper struct {
	out   io.Writer
	lines chan string
	free  bool

	// done releases the reader once no more steps will be requested.
	done      chan struct{}
	closeOnce sync.Once
	exited    chan struct{}
}

func newConsoleStepper(in io.Reader, out io.Writer) *consoleStepper {
	c := &consoleStepper{
		out:    out,
		lines:  make(chan string),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go c.read(in)
	return c
}

// read forwards input lines until the input ends or the stepper is closed.
// A read already blocked on the input is only released by the input itself.
func (c *consoleStepper) read(in io.Reader) {
	defer close(c.exited)
	defer close(c.lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case c.lines <- sc.Text():
		case <-c.done:
			return
		}
	}
}

// Close stops forwarding input. Safe to call more than once.
func (c *consoleStepper) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *consoleStepper) Step(ctx context.Context, step uint64, now int64) error {
	if c.free {
		return nil
	}
	for {
		fmt.Fprintf(c.out, "step %d at t=%d [enter=next, c=continue, q=quit]> ", step, now)
		select {
		case <-ctx.Done():
			c.Close()
			return ctx.Err()
		case line, ok := <-c.lines:
			if !ok {
				return fmt.Errorf("input closed: %w", sim.ErrStepCancelled)
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "", "n", "next":
				return nil
			case "c", "continue":
				// no further input is needed
				c.free = true
				c.Close()
				return nil
			case "q", "quit":
				c.Close()
				return sim.ErrStepCancelled
			default:
				fmt.Fprintf(c.out, "unknown command %q\n", line)
			}
		}
	}
}
