package agent

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/timestep"
)

// Random implements an agent that selects actions uniformly at random
// from an environment's action specification. For continuous action
// environments, each action dimension is sampled uniformly from its
// legal interval. For discrete action environments, each action
// dimension is sampled uniformly from its legal values.
//
// Random agents never learn and ignore the timesteps they observe.
type Random struct {
	dims       int
	continuous *distmv.Uniform
	discrete   []distuv.Categorical
	mins       []float64
}

// NewRandom returns a new Random agent acting according to the
// argument action specification. The specification must have finite
// bounds on every action dimension.
func NewRandom(spec environment.Spec, seed uint64) (*Random, error) {
	if spec.Type != environment.Action {
		return nil, fmt.Errorf("newRandom: spec does not describe actions")
	}

	dims := spec.Shape.Len()
	for i := 0; i < dims; i++ {
		lower, upper := spec.LowerBound.AtVec(i), spec.UpperBound.AtVec(i)
		if math.IsInf(lower, 0) || math.IsInf(upper, 0) {
			return nil, fmt.Errorf("newRandom: action dimension %v has "+
				"unbounded interval [%v, %v]", i, lower, upper)
		}
	}
	source := rand.NewSource(seed)

	agent := &Random{dims: dims}
	switch spec.Cardinality {
	case environment.Continuous:
		bounds := make([]r1.Interval, dims)
		for i := range bounds {
			bounds[i] = r1.Interval{
				Min: spec.LowerBound.AtVec(i),
				Max: spec.UpperBound.AtVec(i),
			}
		}
		agent.continuous = distmv.NewUniform(bounds, source)

	case environment.Discrete:
		agent.discrete = make([]distuv.Categorical, dims)
		agent.mins = make([]float64, dims)
		for i := range agent.discrete {
			lower := int(spec.LowerBound.AtVec(i))
			upper := int(spec.UpperBound.AtVec(i))
			agent.mins[i] = float64(lower)

			weights := make([]float64, upper-lower+1)
			for j := range weights {
				weights[j] = 1.0 / float64(len(weights))
			}
			agent.discrete[i] = distuv.NewCategorical(weights, source)
		}

	default:
		return nil, fmt.Errorf("newRandom: no such action cardinality: %v",
			spec.Cardinality)
	}

	return agent, nil
}

// SelectAction returns an action drawn uniformly at random from the
// action specification, independent of the argument timestep
func (r *Random) SelectAction(t timestep.TimeStep) *mat.VecDense {
	if r.continuous != nil {
		return mat.NewVecDense(r.dims, r.continuous.Rand(nil))
	}

	action := make([]float64, r.dims)
	for i := range action {
		action[i] = r.discrete[i].Rand() + r.mins[i]
	}
	return mat.NewVecDense(r.dims, action)
}

// ObserveFirst is a no-op, since Random agents do not learn
func (r *Random) ObserveFirst(t timestep.TimeStep) error { return nil }

// Observe is a no-op, since Random agents do not learn
func (r *Random) Observe(action mat.Vector,
	nextObs timestep.TimeStep) error {
	return nil
}

// EndEpisode is a no-op, since Random agents do not learn
func (r *Random) EndEpisode() {}
