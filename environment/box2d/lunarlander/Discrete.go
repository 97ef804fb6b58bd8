package lunarlander

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	"github.com/samuelfneumann/gocarl/timestep"
)

// Discrete implements the Lunar Lander environment with discrete
// actions. Actions are 1-dimensional and in {0, 1, 2, 3}:
//
//	Action	Engine fired
//	  0		no engine
//	  1		left engine
//	  2		main engine
//	  3		right engine
//
// Each engine fires at full throttle. See the Continuous struct for
// state observations, rewards, and the starting state contract.
type Discrete struct {
	*lunarLander
}

// NewDiscrete returns a new Lunar Lander environment with discrete
// actions, running the default context
func NewDiscrete(task environment.Task, discount float64,
	seed uint64) (envcontext.Env, timestep.TimeStep, error) {
	l, firstStep, err := newLunarLander(task, discount, seed)
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("newDiscrete: %v", err)
	}

	return &Discrete{l}, firstStep, nil
}

// ActionSpec returns the action specification of the environment
func (d *Discrete) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(MinDiscreteAction)})
	upperBound := mat.NewVecDense(1, []float64{float64(MaxDiscreteAction)})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}

// Step takes one environmental step given action a and returns the
// next timestep and whether it is the last timestep of the episode.
// See the Discrete struct for legal actions.
func (d *Discrete) Step(a *mat.VecDense) (timestep.TimeStep, bool, error) {
	var continuousAction *mat.VecDense
	switch int(a.AtVec(0)) {
	case 0:
		continuousAction = mat.NewVecDense(2, []float64{0.0, 0.0})
	case 1:
		continuousAction = mat.NewVecDense(2, []float64{0.0, -1.0})
	case 2:
		continuousAction = mat.NewVecDense(2, []float64{1.0, 0.0})
	case 3:
		continuousAction = mat.NewVecDense(2, []float64{0.0, 1.0})
	default:
		return timestep.TimeStep{}, true, fmt.Errorf("step: illegal "+
			"action %v ∉ (0, 1, 2, 3)", a.AtVec(0))
	}

	return d.lunarLander.Step(continuousAction)
}
