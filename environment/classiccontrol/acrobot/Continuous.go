package acrobot

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
)

// Continuous implements the continuous action Acrobot environment.
//
// Actions are 1-dimensional and continuous, consisting of the torque
// applied to the acrobot's fixed base. Actions are bounded between
// [MinContinuousAction, MaxContinuousAction], and actions outside of
// this range are clipped to stay within this range.
//
// Continuous implements the envcontext.Env interface.
type Continuous struct {
	*base
}

// NewContinuous creates a new continuous action Acrobot environment
// with the argument task. The seed determines the stream of torque
// noise drawn when the torque_noise_max context feature is positive.
func NewContinuous(t env.Task, discount float64, seed uint64) (envcontext.Env,
	ts.TimeStep, error) {
	acrobot, firstStep, err := newBase(t, discount, seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newContinuous: %v", err)
	}

	return &Continuous{acrobot}, firstStep, nil
}

// ActionSpec returns the action specification of the environment
func (c *Continuous) ActionSpec() env.Spec {
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
// torque applied to the acrobot's base. Actions outside the legal
// range of [MinContinuousAction, MaxContinuousAction] are clipped to
// stay within this range.
func (c *Continuous) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	// Ensure action is 1-dimensional
	if a.Len() > ActionDims {
		return ts.TimeStep{}, true, fmt.Errorf("step: actions should " +
			"be 1-dimensional")
	}

	// Calculate the next state given the torque/action. The torque is
	// clipped to the legal range by nextState.
	newState := c.nextState(a.AtVec(0))

	// Update embedded base Acrobot environment
	nextStep, last := c.update(a, newState)

	return nextStep, last, nil
}
