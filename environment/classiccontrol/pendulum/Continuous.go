package pendulum

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
	"github.com/samuelfneumann/gocarl/utils/floatutils"
)

// Continuous implements the continuous action pendulum environment.
// Actions are 1-dimensional and determine the torque to apply to the
// pendulum at its fixed base. Actions are bounded by the environment's
// torque bound, and actions outside of this region are clipped to stay
// within it.
//
// Continuous implements the envcontext.Env interface.
type Continuous struct {
	*base
}

// NewContinuous creates and returns a new pendulum environment with
// continuous actions
func NewContinuous(t environment.Task, discount float64) (envcontext.Env,
	ts.TimeStep, error) {
	baseEnv, firstStep, err := newBase(t, discount)
	if err != nil {
		return nil, ts.TimeStep{}, err
	}

	return &Continuous{baseEnv}, firstStep, nil
}

// Step takes one environmental step given action a and returns the
// next timestep as a timestep.TimeStep and a bool indicating whether
// or not the episode has ended. Actions outside the legal torque range
// are clipped to stay within it.
func (p *Continuous) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if action.Len() > ActionDims {
		return ts.TimeStep{}, true, fmt.Errorf("step: actions should be " +
			"1-dimensional")
	}

	torque := floatutils.ClipInterval(action.AtVec(0), p.torqueBounds)

	nextState := p.nextState(torque)
	nextStep, last := p.update(action, nextState)

	return nextStep, last, nil
}

// ActionSpec returns the action specification of the environment
func (p *Continuous) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(ActionDims, nil)

	minAction, maxAction := p.torqueBounds.Min, p.torqueBounds.Max
	lowerBound := mat.NewVecDense(ActionDims, []float64{minAction})
	upperBound := mat.NewVecDense(ActionDims, []float64{maxAction})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Continuous)
}
