package random

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeltaGenerator_Constant(t *testing.T) {
	g, err := NewDeltaGenerator(DistSpec{Type: "constant", Params: map[string]float64{"value": 5}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 5, 5}, []int64{g.Next(), g.Next(), g.Next()})
}

func TestNewDeltaGenerator_UniformInt(t *testing.T) {
	g, err := NewDeltaGenerator(DistSpec{Type: "uniform_int", Params: map[string]float64{"min": 1, "max": 3}},
		rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		v := g.Next()
		require.True(t, v >= 1 && v <= 3, "sample %d: %d outside [1, 3]", i, v)
	}
}

func TestNewDeltaGenerator_ExponentialAcceptsMean(t *testing.T) {
	byMean, err := NewDeltaGenerator(DistSpec{Type: "exponential", Params: map[string]float64{"mean": 10}},
		rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	byRate, err := NewDeltaGenerator(DistSpec{Type: "exponential", Params: map[string]float64{"lambda": 0.1}},
		rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		require.Equal(t, byRate.Next(), byMean.Next(), "draw %d", i)
	}
}

func TestNewDeltaGenerator_GaussianClamp(t *testing.T) {
	g, err := NewDeltaGenerator(DistSpec{Type: "gaussian", Params: map[string]float64{
		"mean": 5, "std_dev": 100, "min": 0, "max": 10,
	}}, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	for i := 0; i < 10000; i++ {
		v := g.Next()
		if v < 0 || v > 10 {
			t.Fatalf("sample %d: %d outside [0, 10]", i, v)
		}
	}
}

func TestNewDeltaGenerator_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec DistSpec
	}{
		{"unknown type", DistSpec{Type: "pareto"}},
		{"constant without value", DistSpec{Type: "constant"}},
		{"uniform without max", DistSpec{Type: "uniform_int", Params: map[string]float64{"min": 1}}},
		{"exponential without rate", DistSpec{Type: "exponential"}},
		{"exponential zero mean", DistSpec{Type: "exponential", Params: map[string]float64{"mean": 0}}},
		{"exponential negative rate", DistSpec{Type: "exponential", Params: map[string]float64{"lambda": -1}}},
		{"gaussian without std_dev", DistSpec{Type: "gaussian", Params: map[string]float64{"mean": 1}}},
		{"gaussian inverted clamp", DistSpec{Type: "gaussian", Params: map[string]float64{
			"mean": 1, "std_dev": 1, "min": 5, "max": 2,
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDeltaGenerator(tt.spec, nil)
			assert.Error(t, err)
		})
	}
}
