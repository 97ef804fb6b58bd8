package gridworld

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/timestep"
	"github.com/samuelfneumann/gocarl/utils/floatutils"
)

const (
	TimeStepReward float64 = -1.0
	GoalReward     float64 = 0.0
)

// Goal is the task of reaching the goal cell of a gridworld. Rewards
// are timeStepReward on every timestep and goalReward at the goal.
// Episodes end at the goal cell or after a step limit.
//
// The goal cell is a context feature of the gridworld, so the task
// reads it from the environment it is registered with.
type Goal struct {
	environment.Starter
	env *GridWorld

	stepLimit      environment.Ender
	timeStepReward float64
	goalReward     float64
}

// NewGoal returns a new Goal task, where episodes are cut off after
// cutoff steps
func NewGoal(s environment.Starter, timeStepReward, goalReward float64,
	cutoff int) *Goal {
	return &Goal{
		Starter:        s,
		stepLimit:      environment.NewStepLimit(cutoff),
		timeStepReward: timeStepReward,
		goalReward:     goalReward,
	}
}

func (g *Goal) register(env *GridWorld) {
	g.env = env
}

// GetReward returns the reward for transitioning to nextState
func (g *Goal) GetReward(_ mat.Vector, _ mat.Vector,
	nextState mat.Vector) float64 {
	if g.env == nil {
		return g.timeStepReward
	}

	goalX, goalY := g.env.GoalCell()
	_, cols := g.env.Dims()
	ind := goalY*cols + goalX

	if ind < nextState.Len() && nextState.AtVec(ind) == 1.0 {
		return g.goalReward
	}
	return g.timeStepReward
}

// AtGoal returns whether state is the one-hot encoding of the goal
// cell
func (g *Goal) AtGoal(state mat.Matrix) bool {
	if g.env == nil {
		return false
	}

	rows, cols := g.env.Dims()
	r, c := state.Dims()
	if c != 1 || r != rows*cols {
		return false
	}

	goalX, goalY := g.env.GoalCell()
	return state.At(goalY*cols+goalX, 0) == 1.0
}

// End checks whether the episode has ended, adjusting the argument
// timestep accordingly
func (g *Goal) End(t *timestep.TimeStep) bool {
	if g.AtGoal(t.Observation) {
		t.StepType = timestep.Last
		t.SetEnd(timestep.TerminalStateReached)
		return true
	}

	return g.stepLimit.End(t)
}

// Min returns the minimum possible reward
func (g *Goal) Min() float64 {
	return floatutils.Min(g.timeStepReward, g.goalReward)
}

// Max returns the maximum possible reward
func (g *Goal) Max() float64 {
	return floatutils.Max(g.timeStepReward, g.goalReward)
}

// RewardSpec returns the reward specification of the task
func (g *Goal) RewardSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	minReward := mat.NewVecDense(1, []float64{g.Min()})
	maxReward := mat.NewVecDense(1, []float64{g.Max()})

	return environment.NewSpec(shape, environment.Reward, minReward,
		maxReward, environment.Discrete)
}
