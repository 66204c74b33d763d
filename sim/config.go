package sim

import (
	"fmt"

	"github.com/inference-sim/simlib/sim/random"
)

// RunMode selects how the main loop advances.
type RunMode int

const (
	// RunContinuous fires objects back to back.
	RunContinuous RunMode = iota
	// RunStepped waits on the configured Stepper before every step.
	RunStepped
)

func (m RunMode) String() string {
	switch m {
	case RunContinuous:
		return "continuous"
	case RunStepped:
		return "stepped"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseRunMode parses "continuous" or "stepped". The empty string is continuous.
func ParseRunMode(s string) (RunMode, error) {
	switch s {
	case "", "continuous":
		return RunContinuous, nil
	case "stepped":
		return RunStepped, nil
	default:
		return RunContinuous, fmt.Errorf("invalid run mode %q (must be 'continuous' or 'stepped')", s)
	}
}

// Exit codes reported in ExitStatus.
const (
	ExitCodeOK        int64 = 0
	ExitCodeFail      int64 = -1
	ExitCodeCancelled int64 = -2
)

// ExitStatus is the outcome of Simulation.Run.
type ExitStatus struct {
	Code      int64
	Initiator ObjectID // object that stopped the run; 0 if none
}

// OK reports whether the run ended with ExitCodeOK.
func (s ExitStatus) OK() bool {
	return s.Code == ExitCodeOK
}

func (s ExitStatus) String() string {
	if s.Initiator == 0 {
		return fmt.Sprintf("exit code %d", s.Code)
	}
	return fmt.Sprintf("exit code %d (initiated by object %d)", s.Code, s.Initiator)
}

// Config groups simulation construction parameters.
type Config struct {
	Key     SimulationKey // seeds event selection streams
	Mode    RunMode
	Stepper Stepper // consulted before every step in RunStepped mode
}

// DefaultConfig returns a continuous-mode config with a true-random key.
func DefaultConfig() Config {
	return Config{
		Key:  NewSimulationKey(random.TrueRandomSeed()),
		Mode: RunContinuous,
	}
}
