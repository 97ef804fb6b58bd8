package acrobot

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
)

// Discrete implements the discrete action Acrobot environment.
//
// Actions are 1-dimensional and discrete in (0, 1, 2). Actions
// determine the torque applied to the fixed base of the acrobot:
//
//	Action	Torque
//	  0		  -1
//	  1		   0
//	  2		   1
//
// Actions other than 0, 1, or 2 result in an error.
//
// Discrete implements the envcontext.Env interface.
type Discrete struct {
	*base
}

// NewDiscrete creates a new discrete action Acrobot environment with
// the argument task. The seed determines the stream of torque noise
// drawn when the torque_noise_max context feature is positive.
func NewDiscrete(t env.Task, discount float64, seed uint64) (envcontext.Env,
	ts.TimeStep, error) {
	acrobot, firstStep, err := newBase(t, discount, seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newDiscrete: %v", err)
	}

	return &Discrete{acrobot}, firstStep, nil
}

// ActionSpec returns the action specification of the environment
func (d *Discrete) ActionSpec() env.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims,
		[]float64{float64(MinDiscreteAction)})
	upperBound := mat.NewVecDense(ActionDims,
		[]float64{float64(MaxDiscreteAction)})

	return env.NewSpec(shape, env.Action, lowerBound,
		upperBound, env.Discrete)
}

// Step takes one environmental step given action a and returns the
// next timestep and a bool indicating whether or not the episode has
// ended. Actions are discrete, consisting of the torque applied to
// the acrobot's base and are in the set {MinDiscreteAction,
// MinDiscreteAction+1, ..., MaxDiscreteAction}.
func (d *Discrete) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	// Ensure action is 1-dimensional
	if a.Len() > ActionDims {
		return ts.TimeStep{}, true, fmt.Errorf("step: actions should " +
			"be 1-dimensional")
	}

	// Discrete action in {0, 1, 2}
	action := a.AtVec(0)

	// Ensure a legal action was selected
	intAction := int(action)
	if intAction > MaxDiscreteAction || intAction < MinDiscreteAction {
		return ts.TimeStep{}, true, fmt.Errorf("step: illegal action "+
			"%v ∉ (0, 1, 2)", intAction)
	}

	// Calculate the torque applied
	torque := float64(intAction) - 1.0

	// Calculate the next state given the torque/action
	newState := d.nextState(torque)

	// Update embedded base Acrobot environment
	nextStep, last := d.update(a, newState)

	return nextStep, last, nil
}
