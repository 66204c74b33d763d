package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/simlib/sim"
)

// action is what a scenario event does to its targets.
type action int

const (
	actionNotify action = iota
	actionDispose
	actionStop
)

func parseAction(s string) (action, error) {
	switch s {
	case "", "notify":
		return actionNotify, nil
	case "dispose":
		return actionDispose, nil
	case "stop":
		return actionStop, nil
	default:
		return actionNotify, fmt.Errorf("unknown action %q (must be 'notify', 'dispose' or 'stop')", s)
	}
}

func (a action) String() string {
	switch a {
	case actionDispose:
		return "dispose"
	case actionStop:
		return "stop"
	default:
		return "notify"
	}
}

// countingProcess traces and counts its fires and the events it receives.
type countingProcess struct {
	name     string
	fires    int
	received int
}

func (c *countingProcess) Run(p *sim.Process) {
	c.fires++
	s := p.Simulation()
	s.Logger().At(s.Now()).Add("Process ", c.name, " (", p.ID(), ") ran").End()
}

func (c *countingProcess) ReceiveEvent(p *sim.Process, ev *sim.Event) {
	c.received++
	s := p.Simulation()
	s.Logger().At(s.Now()).Add("Process ", c.name, " (", p.ID(), ") received event ", ev.ID()).End()
}

// actionHandler applies a scenario action to every selected target and
// retires a periodic event after limit fires.
type actionHandler struct {
	name   string
	action action
	limit  int
	fires  int
}

func (h *actionHandler) ExecuteOn(ev *sim.Event, target sim.Object) {
	if h.action != actionDispose || target.ID() == ev.ID() {
		return
	}
	logrus.Debugf("Event %q disposing %s %d", h.name, target.Kind(), target.ID())
	ev.Simulation().RemoveObject(target)
}

func (h *actionHandler) BeforeExecute(ev *sim.Event) {
	h.fires++
}

func (h *actionHandler) AfterExecute(ev *sim.Event) {
	s := ev.Simulation()
	if s == nil {
		return
	}
	if h.action == actionStop {
		s.Logger().At(s.Now()).Add("Event ", h.name, " (", ev.ID(), ") stopped the simulation").End()
		s.Stop(sim.ExitCodeOK, ev.ID())
	}
	if h.limit > 0 && h.fires >= h.limit {
		ev.CancelPeriodicSchedule(true)
	}
}
