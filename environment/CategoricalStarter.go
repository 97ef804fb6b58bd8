package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CategoricalStarter returns starting states as vectors sampled from
// a multi-dimensional uniform categorical distribution. The categorical
// distributions sample values in (min, min+1, ... max).
type CategoricalStarter struct {
	features int
	seed     uint64
	mins     []int
	rand     []distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter, sampling
// dimension i from (0, 1, 2, ... bounds[i]-1)
func NewCategoricalStarter(bounds []int, seed uint64) CategoricalStarter {
	mins := make([]int, len(bounds))
	return NewCategoricalStarterBetween(mins, bounds, seed)
}

// NewCategoricalStarterBetween returns a new CategoricalStarter,
// sampling dimension i from (mins[i], mins[i]+1, ... bounds[i]-1)
func NewCategoricalStarterBetween(mins, bounds []int,
	seed uint64) CategoricalStarter {
	if len(mins) != len(bounds) {
		panic("newCategoricalStarterBetween: mins should have same length " +
			"as bounds")
	}
	source := rand.NewSource(seed)

	rand := make([]distuv.Categorical, len(bounds))
	for i := range rand {
		// Create the weights for the uniform categorical distribution
		weights := make([]float64, bounds[i]-mins[i])
		for j := range weights {
			weights[j] = 1.0 / float64(len(weights))
		}

		rand[i] = distuv.NewCategorical(weights, source)
	}

	return CategoricalStarter{len(bounds), seed, mins, rand}
}

// Start returns a starting state vector
func (c CategoricalStarter) Start() *mat.VecDense {
	start := make([]float64, c.features)
	for i := range start {
		start[i] = c.rand[i].Rand() + float64(c.mins[i])
	}

	return mat.NewVecDense(c.features, start)
}
