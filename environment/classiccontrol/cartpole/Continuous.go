package cartpole

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
	"github.com/samuelfneumann/gocarl/utils/floatutils"
)

// Continuous implements the classic control environment Cartpole with
// continuous actions. Actions are 1-dimensional and consist of the
// fraction of the environment's force magnification to apply to the
// cart horizontally, bounded by [MinContinuousAction,
// MaxContinuousAction]. Actions outside of this region are clipped to
// stay within it.
//
// Continuous implements the envcontext.Env interface.
type Continuous struct {
	*base
}

// NewContinuous constructs a new Cartpole environment with continuous
// actions
func NewContinuous(t env.Task, discount float64) (envcontext.Env,
	ts.TimeStep, error) {
	base, firstStep, err := newBase(t, discount)
	if err != nil {
		return nil, ts.TimeStep{}, err
	}

	return &Continuous{base}, firstStep, nil
}

// Step takes one environmental step given action a and returns the
// next state as a timestep.TimeStep and a bool indicating whether or
// not the episode has ended
func (c *Continuous) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if a.Len() > ActionDims {
		return ts.TimeStep{}, true, fmt.Errorf("step: actions should be " +
			"1-dimensional")
	}

	// Fraction of the force magnification to apply
	direction := floatutils.Clip(a.AtVec(0), MinContinuousAction,
		MaxContinuousAction)
	force := direction * c.forceMag

	nextState := c.nextState(force)
	nextStep, last := c.update(a, nextState)

	return nextStep, last, nil
}

// ActionSpec returns the action specification of the environment
func (c *Continuous) ActionSpec() env.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims, []float64{MinContinuousAction})
	upperBound := mat.NewVecDense(ActionDims, []float64{MaxContinuousAction})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Continuous)
}
