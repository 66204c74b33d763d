package random

import (
	"fmt"
	"math"
	"math/rand"
)

// DistSpec parameterizes a delta generator in configuration files.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewDeltaGenerator creates an int64 generator from a DistSpec. Random
// distributions draw from rng (true-random seeded when nil).
//
// Supported types and parameters:
//   - constant: value
//   - uniform_int: min, max
//   - uniform_real: min, max
//   - exponential: lambda, or mean (lambda = 1/mean)
//   - gaussian: mean, std_dev; optional min, max clamp the output
func NewDeltaGenerator(spec DistSpec, rng *rand.Rand) (Generator[int64], error) {
	p := spec.Params
	switch spec.Type {
	case "constant":
		if err := requireParam(p, "value"); err != nil {
			return nil, err
		}
		return NewConstant(int64(p["value"])), nil

	case "uniform_int":
		if err := requireParam(p, "min", "max"); err != nil {
			return nil, err
		}
		return NewUniformInt(rng, int64(p["min"]), int64(p["max"])), nil

	case "uniform_real":
		if err := requireParam(p, "min", "max"); err != nil {
			return nil, err
		}
		return NewUniformReal[int64](rng, p["min"], p["max"]), nil

	case "exponential":
		lambda, ok := p["lambda"]
		if !ok {
			mean, hasMean := p["mean"]
			if !hasMean {
				return nil, fmt.Errorf("distribution requires parameter %q or %q", "lambda", "mean")
			}
			if mean <= 0 {
				return nil, fmt.Errorf("exponential mean must be > 0, got %v", mean)
			}
			lambda = 1 / mean
		}
		if lambda <= 0 || math.IsInf(lambda, 0) || math.IsNaN(lambda) {
			return nil, fmt.Errorf("exponential lambda must be a positive finite number, got %v", lambda)
		}
		return NewExponential[int64](rng, lambda), nil

	case "gaussian":
		if err := requireParam(p, "mean", "std_dev"); err != nil {
			return nil, err
		}
		var gen Generator[int64] = NewGaussian[int64](rng, p["mean"], p["std_dev"])
		lo, hasMin := p["min"]
		hi, hasMax := p["max"]
		if hasMin || hasMax {
			var lo64, hi64 int64 = math.MinInt64, math.MaxInt64
			if hasMin {
				lo64 = int64(lo)
			}
			if hasMax {
				hi64 = int64(hi)
			}
			if lo64 > hi64 {
				return nil, fmt.Errorf("gaussian min %v exceeds max %v", lo, hi)
			}
			gen = NewClamped(gen, lo64, hi64)
		}
		return gen, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
