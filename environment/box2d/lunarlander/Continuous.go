package lunarlander

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	"github.com/samuelfneumann/gocarl/timestep"
)

// Continuous implements the Lunar Lander environment with continuous
// actions. Actions are 2-dimensional with both dimensions in [-1, 1].
// The first dimension throttles the main engine. It is off for values
// in [-1, 0] and throttles from 50% to 100% power as the value goes
// from 0 to 1, since the main engine cannot work with less than 50%
// power. The second dimension fires the side engines. Values in
// [-1, -0.5] fire the left engine and values in [0.5, 1] fire the
// right engine, with the engine power scaling over the interval.
// Values in (-0.5, 0.5) leave the side engines off. Actions outside
// the legal ranges are clipped.
//
// State observations are 8-dimensional and consist of the lander's x
// and y position and velocity, its angle and angular velocity, and
// two boolean flags denoting whether each leg touches the moon.
// Positions and velocities are normalized with respect to the
// viewport, and the angle is normalized to [-π, π]. Unlike the OpenAI
// Gym implementation, the world is bounded by walls the lander can
// collide with, so position features never exceed their bounds.
//
// Environmental Starters must return 2-dimensional starting values,
// consisting of the x and y position at which the lander begins,
// measured in Box2D world units. The x position should be within
// (0, ViewportW/Scale) and the y position within
// (ViewportH/Scale/2, InitialY). A random force is applied to the
// lander at the start of each episode. The magnitude of this force is
// controlled by the initial_random context feature.
type Continuous struct {
	*lunarLander
}

// NewContinuous returns a new Lunar Lander environment with continuous
// actions, running the default context
func NewContinuous(task environment.Task, discount float64,
	seed uint64) (envcontext.Env, timestep.TimeStep, error) {
	l, firstStep, err := newLunarLander(task, discount, seed)
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("newContinuous: %v", err)
	}

	return &Continuous{l}, firstStep, nil
}

// ActionSpec returns the action specification of the environment
func (c *Continuous) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(2, nil)
	lowerBound := mat.NewVecDense(2, []float64{MinContinuousAction,
		MinContinuousAction})
	upperBound := mat.NewVecDense(2, []float64{MaxContinuousAction,
		MaxContinuousAction})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Continuous)
}
