// Package maze implements maze environments using GoMaze
package maze

import (
	"fmt"

	"github.com/samuelfneumann/gomaze"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
)

const (
	DefaultRows int = 10
	DefaultCols int = 10

	// Row or column value denoting that GoMaze should place the cell
	DefaultStartRow int = -1
	DefaultStartCol int = -1
	DefaultGoalRow  int = -1
	DefaultGoalCol  int = -1
)

// Context features of mazes
const (
	RowsFeature     string = "rows"
	ColsFeature     string = "cols"
	StartRowFeature string = "start_row"
	StartColFeature string = "start_col"
	GoalRowFeature  string = "goal_row"
	GoalColFeature  string = "goal_col"
)

// Maze implements maze environments. States are the (row, column)
// cell of the agent, and the four discrete actions move the agent one
// cell up, down, left, or right. The maze layout is drawn by a GoMaze
// Initer.
//
// The maze dimensions and the start and goal cells are context
// features. Rows or columns of -1 for the start or goal cell let
// GoMaze place that cell itself. Setting a context rebuilds the maze,
// so the layout changes with the context even when the dimensions do
// not.
type Maze struct {
	env.Task
	maze *gomaze.Maze
	init gomaze.Initer

	rows     int
	cols     int
	startRow int
	startCol int
	goalRow  int
	goalCol  int

	discount    float64
	currentStep ts.TimeStep
}

// New returns a new rows by cols maze environment whose layout is
// drawn by init. The start and goal cells are placed by GoMaze and
// can be moved with SetContext.
func New(t env.Task, rows, cols int, init gomaze.Initer,
	discount float64) (envcontext.Env, ts.TimeStep, error) {

	mazeEnv := &Maze{
		Task:     t,
		init:     init,
		rows:     rows,
		cols:     cols,
		startRow: DefaultStartRow,
		startCol: DefaultStartCol,
		goalRow:  DefaultGoalRow,
		goalCol:  DefaultGoalCol,
		discount: discount,
	}

	if err := mazeEnv.ContextSpace().Validate(mazeEnv.Context()); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	maze, err := gomaze.NewMaze(rows, cols, DefaultGoalRow, DefaultGoalCol,
		DefaultStartRow, DefaultStartCol, init, false)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: could not create maze: %v",
			err)
	}
	mazeEnv.maze = maze

	if task, ok := t.(*Solve); ok {
		task.Register(maze)
	}

	floatState := maze.Reset()
	state := mat.NewVecDense(len(floatState), floatState)
	step := ts.New(ts.First, 0, discount, state, 0)
	mazeEnv.currentStep = step

	return mazeEnv, step, nil
}

// ContextSpace returns the space of legal contexts for the maze
func (m *Maze) ContextSpace() envcontext.Space {
	return envcontext.Space{
		RowsFeature: envcontext.NewFeature(3, 100, envcontext.Discrete),
		ColsFeature: envcontext.NewFeature(3, 100, envcontext.Discrete),
		StartRowFeature: envcontext.NewFeature(-1, 99,
			envcontext.Discrete),
		StartColFeature: envcontext.NewFeature(-1, 99,
			envcontext.Discrete),
		GoalRowFeature: envcontext.NewFeature(-1, 99,
			envcontext.Discrete),
		GoalColFeature: envcontext.NewFeature(-1, 99,
			envcontext.Discrete),
	}
}

// DefaultContext returns the context the environment runs when no
// other context has been set
func (m *Maze) DefaultContext() envcontext.Context {
	return envcontext.Context{
		RowsFeature:     float64(DefaultRows),
		ColsFeature:     float64(DefaultCols),
		StartRowFeature: float64(DefaultStartRow),
		StartColFeature: float64(DefaultStartCol),
		GoalRowFeature:  float64(DefaultGoalRow),
		GoalColFeature:  float64(DefaultGoalCol),
	}
}

// Context returns the context the environment is currently running
func (m *Maze) Context() envcontext.Context {
	return envcontext.Context{
		RowsFeature:     float64(m.rows),
		ColsFeature:     float64(m.cols),
		StartRowFeature: float64(m.startRow),
		StartColFeature: float64(m.startCol),
		GoalRowFeature:  float64(m.goalRow),
		GoalColFeature:  float64(m.goalCol),
	}
}

// SetContext sets the context the environment runs, rebuilding the
// maze with the context's dimensions and cells. Features missing from
// the argument context keep their current values. SetContext returns
// an error if the merged context is illegal or if the maze could not
// be rebuilt, in which case the environment is unchanged.
func (m *Maze) SetContext(c envcontext.Context) error {
	full := c.Merge(m.Context())
	if err := m.ContextSpace().Validate(full); err != nil {
		return fmt.Errorf("setContext: %v", err)
	}

	rows := int(full[RowsFeature])
	cols := int(full[ColsFeature])
	startRow := int(full[StartRowFeature])
	startCol := int(full[StartColFeature])
	goalRow := int(full[GoalRowFeature])
	goalCol := int(full[GoalColFeature])

	if startRow >= rows || startCol >= cols {
		return fmt.Errorf("setContext: start cell (%v, %v) outside a "+
			"%v x %v maze", startRow, startCol, rows, cols)
	}
	if goalRow >= rows || goalCol >= cols {
		return fmt.Errorf("setContext: goal cell (%v, %v) outside a "+
			"%v x %v maze", goalRow, goalCol, rows, cols)
	}

	maze, err := gomaze.NewMaze(rows, cols, goalRow, goalCol, startRow,
		startCol, m.init, false)
	if err != nil {
		return fmt.Errorf("setContext: could not rebuild maze: %v", err)
	}

	m.maze = maze
	m.rows = rows
	m.cols = cols
	m.startRow = startRow
	m.startCol = startCol
	m.goalRow = goalRow
	m.goalCol = goalCol

	if task, ok := m.Task.(*Solve); ok {
		task.Register(maze)
	}
	return nil
}

// Step takes one environmental step given action a ϵ {0, 1, 2, 3}
func (m *Maze) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if action.Len() > 1 {
		return ts.TimeStep{}, false, fmt.Errorf("step: actions must be " +
			"1-dimensional")
	}

	a := int(action.AtVec(0))

	newPos, _, _, err := m.maze.Step(a)
	if err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %v", err)
	}
	nextState := mat.NewVecDense(len(newPos), newPos)

	reward := m.GetReward(m.CurrentTimeStep().Observation, action, nextState)
	nextStep := ts.New(ts.Mid, reward, m.discount, nextState,
		m.CurrentTimeStep().Number+1)

	last := m.End(&nextStep)
	m.currentStep = nextStep

	return nextStep, last, nil
}

// Reset resets the environment, beginning a new episode
func (m *Maze) Reset() (ts.TimeStep, error) {
	floatState := m.maze.Reset()

	state := mat.NewVecDense(len(floatState), floatState)
	step := ts.New(ts.First, 0, m.discount, state, 0)

	m.currentStep = step

	return step, nil
}

func (m *Maze) CurrentTimeStep() ts.TimeStep {
	return m.currentStep
}

func (m *Maze) ActionSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{0.0})
	upperBound := mat.NewVecDense(1, []float64{float64(gomaze.Actions - 1)})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Discrete)
}

func (m *Maze) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(2, nil)
	lowerBound := mat.NewVecDense(2, []float64{0., 0.})
	upperBound := mat.NewVecDense(2, []float64{
		float64(m.maze.Rows() - 1),
		float64(m.maze.Cols() - 1),
	})

	return env.NewSpec(shape, env.Observation, lowerBound, upperBound,
		env.Discrete)
}

func (m *Maze) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{m.discount})

	return env.NewSpec(shape, env.Discount, lowerBound, lowerBound,
		env.Discrete)
}
