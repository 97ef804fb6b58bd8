package pendulum

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
)

// Discrete implements the discrete action pendulum environment. The
// five legal actions apply a torque of -max, -max/2, 0, max/2, or max
// to the fixed base of the pendulum, where max is the environment's
// torque bound.
//
// Discrete implements the envcontext.Env interface.
type Discrete struct {
	*base
}

// NewDiscrete creates and returns a new pendulum environment with
// discrete actions
func NewDiscrete(t environment.Task, discount float64) (envcontext.Env,
	ts.TimeStep, error) {
	baseEnv, firstStep, err := newBase(t, discount)
	if err != nil {
		return nil, ts.TimeStep{}, err
	}

	return &Discrete{baseEnv}, firstStep, nil
}

// Step takes one environmental step given action a and returns the
// next timestep as a timestep.TimeStep and a bool indicating whether
// or not the episode has ended. Actions are discrete in
// [MinDiscreteAction, MaxDiscreteAction]. Illegal actions result in an
// error.
func (p *Discrete) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if action.Len() > ActionDims {
		return ts.TimeStep{}, true, fmt.Errorf("step: actions should be " +
			"1-dimensional")
	}

	// Convert discrete action to torque applied to the fixed base
	maxTorque := p.torqueBounds.Max
	var torque float64
	switch action.AtVec(0) {
	case 0.0:
		torque = -maxTorque
	case 1.0:
		torque = -maxTorque / 2.0
	case 2.0:
		torque = 0.0
	case 3.0:
		torque = maxTorque / 2.0
	case 4.0:
		torque = maxTorque
	default:
		return ts.TimeStep{}, true, fmt.Errorf("step: illegal action %v",
			action.AtVec(0))
	}

	nextState := p.nextState(torque)
	nextStep, last := p.update(action, nextState)

	return nextStep, last, nil
}

// ActionSpec returns the action specification of the environment
func (p *Discrete) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims, []float64{MinDiscreteAction})
	upperBound := mat.NewVecDense(ActionDims, []float64{MaxDiscreteAction})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}
