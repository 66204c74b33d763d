package cmd

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/simlib/sim"
	"github.com/inference-sim/simlib/sim/random"
)

// Scenario is the YAML description of a simulation run.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Scenario struct {
	Seed      *int64        `yaml:"seed"`
	Mode      string        `yaml:"mode"`
	Queues    []string      `yaml:"queues"` // the first one is the main queue
	Processes []ProcessSpec `yaml:"processes"`
	Events    []EventSpec   `yaml:"events"`
	Horizon   int64         `yaml:"horizon"` // 0 = run until the queues drain
}

// PeriodicSpec attaches a delta distribution to a scheduled object.
type PeriodicSpec struct {
	random.DistSpec `yaml:",inline"`
	FireImmediately bool `yaml:"fire_immediately"`
}

// ProcessSpec declares count identical processes.
type ProcessSpec struct {
	Name     string        `yaml:"name"`
	Class    uint32        `yaml:"class"`
	Count    int           `yaml:"count"` // 0 means 1
	Queue    string        `yaml:"queue"`
	Start    *int64        `yaml:"start"`
	Periodic *PeriodicSpec `yaml:"periodic"`
}

// CriterionSpec is one selection step of an event.
type CriterionSpec struct {
	Field string `yaml:"field"` // id | kind | class
	Value string `yaml:"value"`
	Mode  string `yaml:"mode"` // all | one | k_of_n
	K     uint32 `yaml:"k"`
}

// EventSpec declares one event.
type EventSpec struct {
	Name     string          `yaml:"name"`
	Class    uint32          `yaml:"class"`
	Queue    string          `yaml:"queue"`
	At       *int64          `yaml:"at"`
	Relative bool            `yaml:"relative"`
	Periodic *PeriodicSpec   `yaml:"periodic"`
	Criteria []CriterionSpec `yaml:"criteria"`
	Action   string          `yaml:"action"` // notify (default) | dispose | stop
	Limit    int             `yaml:"limit"`  // fires before a periodic event retires; 0 = unlimited
}

// horizonClass tags the process that ends a run at the scenario horizon.
const horizonClass sim.Class = math.MaxUint32

// LoadScenario reads and strictly parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML. Unknown fields are errors so typos
// do not silently fall back to defaults.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the references and enumerations of the scenario.
func (sc *Scenario) Validate() error {
	if len(sc.Queues) == 0 {
		return fmt.Errorf("scenario declares no queues")
	}
	seen := make(map[string]bool, len(sc.Queues))
	for _, q := range sc.Queues {
		if q == "" {
			return fmt.Errorf("queue name must not be empty")
		}
		if seen[q] {
			return fmt.Errorf("duplicate queue %q", q)
		}
		seen[q] = true
	}
	if _, err := sim.ParseRunMode(sc.Mode); err != nil {
		return err
	}
	if sc.Horizon < 0 {
		return fmt.Errorf("horizon must be >= 0, got %d", sc.Horizon)
	}
	checkQueue := func(owner, q string) error {
		if q != "" && !seen[q] {
			return fmt.Errorf("%s: unknown queue %q", owner, q)
		}
		return nil
	}
	for i, p := range sc.Processes {
		owner := fmt.Sprintf("processes[%d] %q", i, p.Name)
		if p.Count < 0 {
			return fmt.Errorf("%s: count must be >= 0, got %d", owner, p.Count)
		}
		if sim.Class(p.Class) == horizonClass {
			return fmt.Errorf("%s: class %d is reserved", owner, p.Class)
		}
		if err := checkQueue(owner, p.Queue); err != nil {
			return err
		}
	}
	for i, e := range sc.Events {
		owner := fmt.Sprintf("events[%d] %q", i, e.Name)
		if sim.Class(e.Class) == horizonClass {
			return fmt.Errorf("%s: class %d is reserved", owner, e.Class)
		}
		if err := checkQueue(owner, e.Queue); err != nil {
			return err
		}
		if _, err := parseAction(e.Action); err != nil {
			return fmt.Errorf("%s: %w", owner, err)
		}
		if e.Limit < 0 {
			return fmt.Errorf("%s: limit must be >= 0, got %d", owner, e.Limit)
		}
		for j, c := range e.Criteria {
			if _, err := c.criterion(); err != nil {
				return fmt.Errorf("%s criteria[%d]: %w", owner, j, err)
			}
		}
	}
	return nil
}

// criterion converts the spec into a sim.Criterion.
func (c CriterionSpec) criterion() (sim.Criterion, error) {
	mode, err := sim.ParseSelectionMode(c.Mode)
	if err != nil {
		return sim.Criterion{}, err
	}
	value := strings.TrimSpace(c.Value)
	var sel sim.Selector
	switch c.Field {
	case "id":
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return sim.Criterion{}, fmt.Errorf("invalid id %q: %w", c.Value, err)
		}
		sel = sim.SelectID(sim.ObjectID(id))
	case "kind":
		k, err := sim.ParseKind(value)
		if err != nil {
			return sim.Criterion{}, err
		}
		sel = sim.SelectKind(k)
	case "class":
		cl, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return sim.Criterion{}, fmt.Errorf("invalid class %q: %w", c.Value, err)
		}
		sel = sim.SelectClass(sim.Class(cl))
	default:
		return sim.Criterion{}, fmt.Errorf("unknown criterion field %q (must be 'id', 'kind' or 'class')", c.Field)
	}
	if mode != sim.SelectKOfN && c.K != 0 {
		return sim.Criterion{}, fmt.Errorf("k is only valid with mode k_of_n")
	}
	return sim.Criterion{Selector: sel, Mode: mode, K: c.K}, nil
}

// Built is a scenario turned into a ready-to-run simulation.
type Built struct {
	Sim       *sim.Simulation
	Processes map[string][]*sim.Process
	Events    map[string]*sim.Event
	Horizon   *sim.Process // nil without a horizon

	behaviors map[string][]*countingProcess
}

// Fires returns how many times each process named name ran.
func (b *Built) Fires(name string) []int {
	out := make([]int, len(b.behaviors[name]))
	for i, c := range b.behaviors[name] {
		out[i] = c.fires
	}
	return out
}

// Received returns how many events each process named name received.
func (b *Built) Received(name string) []int {
	out := make([]int, len(b.behaviors[name]))
	for i, c := range b.behaviors[name] {
		out[i] = c.received
	}
	return out
}

// Build creates the simulation described by sc. Objects are registered in
// declaration order, processes first, so their identities are stable.
// The trace goes to out.
func (sc *Scenario) Build(out io.Writer, key sim.SimulationKey) (*Built, error) {
	mode, err := sim.ParseRunMode(sc.Mode)
	if err != nil {
		return nil, err
	}
	s := sim.NewSimulation(out, sim.Config{Key: key, Mode: mode})

	queues := make(map[string]*sim.Queue, len(sc.Queues))
	for i, name := range sc.Queues {
		q := sim.NewQueue(name)
		queues[name] = q
		if i == 0 {
			s.Setup(q)
		} else {
			s.AddQueue(q)
		}
	}
	queueFor := func(name string) *sim.Queue {
		if name == "" {
			return s.MainQueue()
		}
		return queues[name]
	}

	b := &Built{
		Sim:       s,
		Processes: make(map[string][]*sim.Process),
		Events:    make(map[string]*sim.Event),
		behaviors: make(map[string][]*countingProcess),
	}

	for _, ps := range sc.Processes {
		count := ps.Count
		if count == 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			behavior := &countingProcess{name: ps.Name}
			p := s.CreateProcess(sim.Class(ps.Class), behavior)
			genName := fmt.Sprintf("%s/%d", ps.Name, i)
			if err := schedule(s, p, queueFor(ps.Queue), ps.Start, false, ps.Periodic, genName); err != nil {
				return nil, fmt.Errorf("process %q: %w", ps.Name, err)
			}
			b.Processes[ps.Name] = append(b.Processes[ps.Name], p)
			b.behaviors[ps.Name] = append(b.behaviors[ps.Name], behavior)
		}
	}

	for _, es := range sc.Events {
		if _, dup := b.Events[es.Name]; dup && es.Name != "" {
			return nil, fmt.Errorf("duplicate event %q", es.Name)
		}
		act, err := parseAction(es.Action)
		if err != nil {
			return nil, err
		}
		ev := s.CreateEvent(sim.Class(es.Class), &actionHandler{name: es.Name, action: act, limit: es.Limit})
		for _, cs := range es.Criteria {
			c, err := cs.criterion()
			if err != nil {
				return nil, fmt.Errorf("event %q: %w", es.Name, err)
			}
			ev.AddCriterion(c.Selector, c.Mode, c.K)
		}
		if err := schedule(s, ev, queueFor(es.Queue), es.At, es.Relative, es.Periodic, es.Name); err != nil {
			return nil, fmt.Errorf("event %q: %w", es.Name, err)
		}
		b.Events[es.Name] = ev
	}

	if sc.Horizon > 0 {
		b.Horizon = s.CreateProcess(horizonClass, sim.ProcessFunc(func(p *sim.Process) {
			logrus.Infof("[tick %07d] Horizon reached", p.Simulation().Now())
			p.Simulation().Stop(sim.ExitCodeOK, p.ID())
		}))
		if err := b.Horizon.Schedule(s.MainQueue(), sc.Horizon, false); err != nil {
			return nil, fmt.Errorf("horizon: %w", err)
		}
	}

	logrus.Debugf("Built scenario: %d objects, %d queues, mode %s", s.Len(), len(s.Queues()), mode)
	return b, nil
}

// schedule places o on q. A periodic object fires first at the explicit
// start when one is given, and at the generated delay otherwise.
func schedule(s *sim.Simulation, o sim.Object, q *sim.Queue, start *int64, relative bool, periodic *PeriodicSpec, genName string) error {
	if periodic == nil {
		if start == nil {
			return nil
		}
		return o.Schedule(q, *start, relative)
	}

	gen, err := random.NewDeltaGenerator(periodic.DistSpec, s.RNG().ForSubsystem(sim.SubsystemGenerator(genName)))
	if err != nil {
		return err
	}
	if start == nil || periodic.FireImmediately {
		return o.SchedulePeriodic(q, gen, periodic.FireImmediately)
	}
	// attach the generator without drawing, then move the first fire
	if err := o.SchedulePeriodic(q, gen, true); err != nil {
		return err
	}
	return o.Schedule(q, *start, relative)
}
