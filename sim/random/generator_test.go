package random

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstant_AlwaysSameValue_ReinitKeepsIdentity(t *testing.T) {
	g := NewConstant[int64](5)
	for i := 0; i < 3; i++ {
		assert.Equal(t, int64(5), g.Next())
	}

	var gen Generator[int64] = g
	g.Reinit(7)
	assert.Equal(t, int64(7), gen.Next(), "reinit must be visible through the same generator")
}

func TestSequence_CyclesThroughValues(t *testing.T) {
	g := NewSequence[int64](1, 2, 3)
	got := []int64{g.Next(), g.Next(), g.Next(), g.Next()}
	assert.Equal(t, []int64{1, 2, 3, 1}, got)

	g.Reinit(9)
	assert.Equal(t, int64(9), g.Next())
	assert.Equal(t, int64(9), g.Next())
}

func TestSequence_Empty_YieldsZero(t *testing.T) {
	g := NewSequence[float64]()
	assert.Equal(t, 0.0, g.Next())
}

func TestUniformInt_StaysWithinInclusiveBounds(t *testing.T) {
	g := NewUniformInt(rand.New(rand.NewSource(42)), int64(3), int64(6))
	seen := map[int64]bool{}
	for i := 0; i < 10000; i++ {
		v := g.Next()
		if v < 3 || v > 6 {
			t.Fatalf("sample %d: %d outside [3, 6]", i, v)
		}
		seen[v] = true
	}
	assert.Len(t, seen, 4, "every value in [3, 6] should appear")
}

func TestUniformInt_FullWidthRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	t.Run("int64 [0, MaxInt64]", func(t *testing.T) {
		g := NewUniformInt(rng, int64(0), int64(math.MaxInt64))
		seen := map[int64]bool{}
		for i := 0; i < 100; i++ {
			v := g.Next()
			require.GreaterOrEqual(t, v, int64(0))
			seen[v] = true
		}
		assert.Greater(t, len(seen), 90, "draws must not collapse onto one value")
	})

	t.Run("int64 [MinInt64, MaxInt64]", func(t *testing.T) {
		g := NewUniformInt(rng, int64(math.MinInt64), int64(math.MaxInt64))
		var neg, pos int
		for i := 0; i < 1000; i++ {
			if v := g.Next(); v < 0 {
				neg++
			} else {
				pos++
			}
		}
		assert.Greater(t, neg, 400)
		assert.Greater(t, pos, 400)
	})

	t.Run("uint64 [0, MaxUint64]", func(t *testing.T) {
		g := NewUniformInt(rng, uint64(0), uint64(math.MaxUint64))
		high := 0
		for i := 0; i < 1000; i++ {
			if g.Next() > math.MaxInt64 {
				high++
			}
		}
		assert.Greater(t, high, 400, "the upper half of the range must be reachable")
	})

	t.Run("uint64 span above MaxInt64", func(t *testing.T) {
		lo, hi := uint64(1), uint64(math.MaxUint64-1)
		g := NewUniformInt(rng, lo, hi)
		high := 0
		for i := 0; i < 1000; i++ {
			v := g.Next()
			require.GreaterOrEqual(t, v, lo)
			require.LessOrEqual(t, v, hi)
			if v > math.MaxInt64 {
				high++
			}
		}
		assert.Greater(t, high, 400)
	})

	t.Run("int8 full range covers every value", func(t *testing.T) {
		g := NewUniformInt(rng, int8(math.MinInt8), int8(math.MaxInt8))
		seen := map[int8]bool{}
		for i := 0; i < 20000; i++ {
			seen[g.Next()] = true
		}
		assert.Len(t, seen, 256)
	})

	t.Run("narrow range near MaxUint64", func(t *testing.T) {
		g := NewUniformInt(rng, uint64(math.MaxUint64-2), uint64(math.MaxUint64))
		seen := map[uint64]bool{}
		for i := 0; i < 1000; i++ {
			v := g.Next()
			require.GreaterOrEqual(t, v, uint64(math.MaxUint64-2))
			seen[v] = true
		}
		assert.Len(t, seen, 3)
	})
}

func TestUniformInt_ReversedAndDegenerateBounds(t *testing.T) {
	g := NewUniformInt(rand.New(rand.NewSource(1)), 10, 2)
	for i := 0; i < 1000; i++ {
		v := g.Next()
		require.GreaterOrEqual(t, v, 2)
		require.LessOrEqual(t, v, 10)
	}

	g.Reinit(4, 4)
	assert.Equal(t, 4, g.Next())
}

func TestUniformReal_StaysWithinBounds(t *testing.T) {
	g := NewUniformReal[float64](rand.New(rand.NewSource(42)), 1.5, 2.5)
	for i := 0; i < 10000; i++ {
		v := g.Next()
		if v < 1.5 || v >= 2.5 {
			t.Fatalf("sample %d: %v outside [1.5, 2.5)", i, v)
		}
	}
}

func TestExponential_MeanMatchesRate(t *testing.T) {
	g := NewExponential[float64](rand.New(rand.NewSource(42)), 0.25)
	n := 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		v := g.Next()
		require.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	mean := sum / float64(n)
	if math.Abs(mean-4)/4 > 0.05 {
		t.Errorf("exponential mean = %.3f, want ≈ 4 (within 5%%)", mean)
	}
}

func TestGaussian_MeanMatchesParam(t *testing.T) {
	g := NewGaussian[float64](rand.New(rand.NewSource(42)), 100, 10)
	n := 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += g.Next()
	}
	mean := sum / float64(n)
	if math.Abs(mean-100)/100 > 0.02 {
		t.Errorf("gaussian mean = %.2f, want ≈ 100 (within 2%%)", mean)
	}

	g.Reinit(-50, 0)
	assert.Equal(t, -50.0, g.Next(), "zero deviation yields the mean")
}

func TestClamped_BoundsOutput(t *testing.T) {
	g := NewClamped[int64](NewSequence[int64](-5, 3, 50), 0, 10)
	assert.Equal(t, []int64{0, 3, 10}, []int64{g.Next(), g.Next(), g.Next()})
}

func TestGenerators_SameSeedSameSequence(t *testing.T) {
	a := NewExponential[int64](rand.New(rand.NewSource(7)), 0.1)
	b := NewExponential[int64](rand.New(rand.NewSource(7)), 0.1)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next(), "draw %d", i)
	}
}

func TestGenerators_NilEngineIsUsable(t *testing.T) {
	g := NewUniformInt[int](nil, 0, 1)
	v := g.Next()
	assert.True(t, v == 0 || v == 1)
}

func TestTrueRandomSeed_Varies(t *testing.T) {
	seen := map[int64]bool{}
	for i := 0; i < 8; i++ {
		seen[TrueRandomSeed()] = true
	}
	assert.Greater(t, len(seen), 1)
}
