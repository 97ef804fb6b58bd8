package mountaincar

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
	"github.com/samuelfneumann/gocarl/utils/floatutils"
)

// Continuous implements the continuous action Mountain Car
// environment.
//
// Actions are 1-dimensional and continuous. Actions determine the
// force to apply to the car and in which direction to apply this
// force. Actions are bounded between [-1, 1] = [MinContinuousAction,
// MaxContinuousAction], and actions outside of this range are clipped
// to stay within this range.
//
// Continuous implements the envcontext.Env interface.
type Continuous struct {
	*base
}

// NewContinuous creates a new continuous action Mountain Car
// environment with the argument task
func NewContinuous(t env.Task, discount float64) (envcontext.Env,
	ts.TimeStep, error) {
	baseEnv, firstStep, err := newBase(t, discount)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newContinuous: %v", err)
	}

	return &Continuous{baseEnv}, firstStep, nil
}

// ActionSpec returns the action specification of the environment
func (m *Continuous) ActionSpec() env.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims,
		[]float64{MinContinuousAction})
	upperBound := mat.NewVecDense(ActionDims,
		[]float64{MaxContinuousAction})

	return env.NewSpec(shape, env.Action, lowerBound,
		upperBound, env.Continuous)
}

// Step takes one environmental step given action a and returns the
// next timestep and a bool indicating whether or not the episode has
// ended. Actions are 1-dimensional and continuous, consisting of the
// force to apply to the car. Actions outside the legal range of
// [-1, 1] are clipped to stay within this range.
func (m *Continuous) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	// Ensure action is 1-dimensional
	if a.Len() > ActionDims {
		return ts.TimeStep{}, true, fmt.Errorf("step: actions should " +
			"be 1-dimensional")
	}

	// Clip action to legal range
	force := floatutils.Clip(a.AtVec(0), MinContinuousAction,
		MaxContinuousAction)

	// Calculate the next state given the force/action
	newState := m.nextState(force)

	// Update embedded base Mountain Car environment
	nextStep, last := m.update(a, newState)

	return nextStep, last, nil
}
