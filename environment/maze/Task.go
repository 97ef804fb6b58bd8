package maze

import (
	"github.com/samuelfneumann/gomaze"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gocarl/environment"
	ts "github.com/samuelfneumann/gocarl/timestep"
)

const (
	TimeStepReward float64 = -1.0
	TerminalReward float64 = 0
)

// Solve is the task of reaching the goal cell of a maze. Rewards are
// -1 on every timestep and 0 at the goal. Episodes end at the goal
// cell or after a step limit.
//
// Solve tasks read the start and goal cells from the maze they are
// run on, so the environment registers its maze with the task at
// construction and whenever the maze is rebuilt.
type Solve struct {
	maze      *gomaze.Maze
	stepLimit env.Ender
}

// NewSolve returns a new Solve task, where episodes are cut off after
// cutoff steps
func NewSolve(cutoff int) *Solve {
	return &Solve{
		stepLimit: env.NewStepLimit(cutoff),
	}
}

// Register tells the task which maze it is being run on
func (s *Solve) Register(m *gomaze.Maze) {
	s.maze = m
}

// Start returns the starting cell of the maze as (row, col)
func (s *Solve) Start() *mat.VecDense {
	row, col := s.maze.Start()
	return mat.NewVecDense(2, []float64{
		float64(row),
		float64(col),
	})
}

// GetReward returns the reward of transitioning to nextState
func (s *Solve) GetReward(_, _, _ mat.Vector) float64 {
	if s.maze.AtGoal() {
		return TerminalReward
	}
	return TimeStepReward
}

// End checks whether the episode has ended, adjusting the argument
// timestep accordingly
func (s *Solve) End(t *ts.TimeStep) bool {
	if s.maze.AtGoal() {
		t.StepType = ts.Last
		t.SetEnd(ts.TerminalStateReached)
		return true
	}

	return s.stepLimit.End(t)
}

// AtGoal returns whether state is the goal cell
func (s *Solve) AtGoal(state mat.Matrix) bool {
	rows, cols := state.Dims()
	if rows != 2 || cols != 1 {
		return false
	}

	goalRow, goalCol := s.maze.Goal()

	return int(state.At(0, 0)) == goalRow && int(state.At(1, 0)) == goalCol
}

// Min returns the minimum possible reward
func (s *Solve) Min() float64 {
	return TimeStepReward
}

// Max returns the maximum possible reward
func (s *Solve) Max() float64 {
	return TerminalReward
}

// RewardSpec returns the reward specification of the task
func (s *Solve) RewardSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	minReward := mat.NewVecDense(1, []float64{s.Min()})
	maxReward := mat.NewVecDense(1, []float64{s.Max()})

	return env.NewSpec(shape, env.Reward, minReward, maxReward,
		env.Discrete)
}
