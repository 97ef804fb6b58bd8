package lunarlander

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/timestep"
)

// lunarLanderTask wraps all tasks that can be run on the Lunar Lander
// environment. Lunar lander tasks need access to the environment
// internals, e.g. leg ground contact and fuel usage, so the
// environment registers itself with the task at construction, and
// tells the task when a new episode begins.
type lunarLanderTask interface {
	environment.Task
	registerEnv(*lunarLander)
	reset()
}

// Land is the task of landing the lunar lander gently on its legs.
// Rewards are the change in a potential over the distance to the
// landing pad, the speed, and the tilt of the lander, minus fuel
// costs. Crashing or leaving the screen is rewarded with -100, and
// coming to rest on the moon is rewarded with +100.
//
// Episodes end when the lander crashes, leaves the screen, comes to
// rest, or after a step limit.
type Land struct {
	environment.Starter
	stepLimit   environment.Ender
	prevShaping *float64
	env         *lunarLander
}

// NewLand returns a new Land task, where episodes are cut off after
// cutoff steps
func NewLand(s environment.Starter, cutoff int) *Land {
	return &Land{
		Starter:   s,
		stepLimit: environment.NewStepLimit(cutoff),
	}
}

func (l *Land) registerEnv(env *lunarLander) {
	l.env = env
}

func (l *Land) reset() {
	l.prevShaping = nil
}

// AtGoal returns whether the lander is standing on both legs
func (l *Land) AtGoal(state mat.Matrix) bool {
	if l.env == nil {
		return false
	}
	leg1, leg2 := l.env.GroundContact()
	return leg1 && leg2
}

// GetReward returns the reward for taking action a, which resulted in
// the environment transitioning to nextState
func (l *Land) GetReward(state mat.Vector, a mat.Vector,
	nextState mat.Vector) float64 {
	if l.env == nil {
		panic("getReward: no environment registered with task")
	}

	shaping := -100.0*math.Sqrt(nextState.AtVec(0)*nextState.AtVec(0)+
		nextState.AtVec(1)*nextState.AtVec(1)) -
		100.0*math.Sqrt(nextState.AtVec(2)*nextState.AtVec(2)+
			nextState.AtVec(3)*nextState.AtVec(3)) -
		100.0*math.Abs(nextState.AtVec(4)) +
		10.0*nextState.AtVec(6) +
		10.0*nextState.AtVec(7)

	var reward float64
	if l.prevShaping != nil {
		reward = shaping - *l.prevShaping
	}
	l.prevShaping = &shaping

	// Fuel costs
	reward -= l.env.MPower() * 0.30
	reward -= l.env.SPower() * 0.03

	if l.env.IsGameOver() || math.Abs(nextState.AtVec(0)) >= 1.0 {
		reward = -100.0
	} else if !l.env.IsAwake() {
		reward = 100.0
	}
	return reward
}

// End checks whether the episode has ended, adjusting the argument
// timestep accordingly
func (l *Land) End(t *timestep.TimeStep) bool {
	if l.env != nil {
		crashed := l.env.IsGameOver() ||
			math.Abs(t.Observation.AtVec(0)) >= 1.0
		atRest := !l.env.IsAwake()
		if crashed || atRest {
			t.StepType = timestep.Last
			t.SetEnd(timestep.TerminalStateReached)
			return true
		}
	}
	return l.stepLimit.End(t)
}

// Min returns the minimum possible reward
func (l *Land) Min() float64 {
	return -100.0
}

// Max returns the maximum possible reward
func (l *Land) Max() float64 {
	return 100.0
}

// RewardSpec returns the reward specification of the task
func (l *Land) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	minReward := mat.NewVecDense(1, []float64{l.Min()})
	maxReward := mat.NewVecDense(1, []float64{l.Max()})

	return environment.NewSpec(shape, environment.Reward, minReward,
		maxReward, environment.Continuous)
}
