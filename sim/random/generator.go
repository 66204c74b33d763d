// Package random provides the numeric generators used to drive periodic
// scheduling: constant, uniform (integer and real), exponential and gaussian.
//
// Every generator produces an unbounded sequence through Next and can be
// reinitialized with new parameters without losing its random engine.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand"
	"time"
)

// Integer is the set of integer types a generator can produce.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Number is the set of numeric types a generator can produce.
type Number interface {
	Integer | ~float32 | ~float64
}

// Generator produces the next value of an infinite sequence.
type Generator[T Number] interface {
	Next() T
}

// engine returns rng, or a true-random seeded engine when rng is nil.
func engine(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(TrueRandomSeed()))
}

// TrueRandomSeed returns a seed read from the operating system's entropy source.
// It falls back to the wall clock if the source cannot be read.
func TrueRandomSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// Constant always returns the same value.
type Constant[T Number] struct {
	value T
}

// NewConstant creates a Constant generator.
func NewConstant[T Number](value T) *Constant[T] {
	return &Constant[T]{value: value}
}

func (g *Constant[T]) Next() T { return g.value }

// Reinit replaces the value.
func (g *Constant[T]) Reinit(value T) { g.value = value }

// Sequence cycles through a fixed list of values.
type Sequence[T Number] struct {
	values []T
	pos    int
}

// NewSequence creates a Sequence generator. An empty list yields zeros.
func NewSequence[T Number](values ...T) *Sequence[T] {
	return &Sequence[T]{values: append([]T(nil), values...)}
}

func (g *Sequence[T]) Next() T {
	if len(g.values) == 0 {
		var zero T
		return zero
	}
	v := g.values[g.pos]
	g.pos = (g.pos + 1) % len(g.values)
	return v
}

// Reinit replaces the values and restarts from the first one.
func (g *Sequence[T]) Reinit(values ...T) {
	g.values = append(g.values[:0], values...)
	g.pos = 0
}

// UniformInt draws integers uniformly from [min, max].
type UniformInt[T Integer] struct {
	rng      *rand.Rand
	min, max T
}

// NewUniformInt creates a UniformInt generator. A nil rng is seeded from a
// true-random source. Bounds given in reverse are swapped.
func NewUniformInt[T Integer](rng *rand.Rand, min, max T) *UniformInt[T] {
	g := &UniformInt[T]{rng: engine(rng)}
	g.Reinit(min, max)
	return g
}

func (g *UniformInt[T]) Next() T {
	// the difference is taken modulo 2^64, which is exact for every T
	span := uint64(g.max) - uint64(g.min)
	if span == 0 {
		return g.min
	}
	return g.min + T(uint64n(g.rng, span))
}

// uint64n returns a uniform draw from [0, span].
func uint64n(rng *rand.Rand, span uint64) uint64 {
	if span == math.MaxUint64 {
		return rng.Uint64()
	}
	n := span + 1
	if n <= math.MaxInt64 {
		return uint64(rng.Int63n(int64(n)))
	}
	// reject the tail that would bias the modulo
	limit := math.MaxUint64 - math.MaxUint64%n
	for {
		if v := rng.Uint64(); v < limit {
			return v % n
		}
	}
}

// Reinit replaces the bounds.
func (g *UniformInt[T]) Reinit(min, max T) {
	if min > max {
		min, max = max, min
	}
	g.min, g.max = min, max
}

// UniformReal draws reals uniformly from [min, max) and converts them to T.
type UniformReal[T Number] struct {
	rng      *rand.Rand
	min, max float64
}

// NewUniformReal creates a UniformReal generator. A nil rng is seeded from a
// true-random source.
func NewUniformReal[T Number](rng *rand.Rand, min, max float64) *UniformReal[T] {
	g := &UniformReal[T]{rng: engine(rng)}
	g.Reinit(min, max)
	return g
}

func (g *UniformReal[T]) Next() T {
	return T(g.min + g.rng.Float64()*(g.max-g.min))
}

// Reinit replaces the bounds.
func (g *UniformReal[T]) Reinit(min, max float64) {
	if min > max {
		min, max = max, min
	}
	g.min, g.max = min, max
}

// Exponential draws from an exponential distribution with rate lambda.
type Exponential[T Number] struct {
	rng    *rand.Rand
	lambda float64
}

// NewExponential creates an Exponential generator. A nil rng is seeded from a
// true-random source.
func NewExponential[T Number](rng *rand.Rand, lambda float64) *Exponential[T] {
	return &Exponential[T]{rng: engine(rng), lambda: lambda}
}

func (g *Exponential[T]) Next() T {
	return T(g.rng.ExpFloat64() / g.lambda)
}

// Reinit replaces the rate.
func (g *Exponential[T]) Reinit(lambda float64) { g.lambda = lambda }

// Gaussian draws from a normal distribution.
type Gaussian[T Number] struct {
	rng          *rand.Rand
	mean, stdDev float64
}

// NewGaussian creates a Gaussian generator. A nil rng is seeded from a
// true-random source.
func NewGaussian[T Number](rng *rand.Rand, mean, stdDev float64) *Gaussian[T] {
	return &Gaussian[T]{rng: engine(rng), mean: mean, stdDev: stdDev}
}

func (g *Gaussian[T]) Next() T {
	return T(g.rng.NormFloat64()*g.stdDev + g.mean)
}

// Reinit replaces the distribution parameters.
func (g *Gaussian[T]) Reinit(mean, stdDev float64) {
	g.mean, g.stdDev = mean, stdDev
}

// Clamped bounds the values of another generator to [min, max].
type Clamped[T Number] struct {
	gen      Generator[T]
	min, max T
}

// NewClamped wraps gen.
func NewClamped[T Number](gen Generator[T], min, max T) *Clamped[T] {
	return &Clamped[T]{gen: gen, min: min, max: max}
}

func (g *Clamped[T]) Next() T {
	return max(g.min, min(g.max, g.gen.Next()))
}
