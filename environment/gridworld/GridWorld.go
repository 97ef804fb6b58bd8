// Package gridworld implements 2D gridworld environments
package gridworld

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	"github.com/samuelfneumann/gocarl/timestep"
	"github.com/samuelfneumann/gocarl/utils/matutils"
)

const (
	DefaultRows  int = 5
	DefaultCols  int = 5
	DefaultGoalX int = 4
	DefaultGoalY int = 4

	MaxRows int = 50
	MaxCols int = 50

	// Actions
	MinAction int = 0
	MaxAction int = 3
)

// Context features of gridworlds
const (
	RowsFeature  string = "rows"
	ColsFeature  string = "cols"
	GoalXFeature string = "goal_x"
	GoalYFeature string = "goal_y"
)

// gridWorldTask wraps all tasks that can be run on a gridworld.
// Gridworld tasks read the grid dimensions and the goal cell from the
// environment, so the environment registers itself with the task at
// construction.
type gridWorldTask interface {
	environment.Task
	register(*GridWorld)
}

// GridWorld implements 2D gridworld environments. The agent occupies a
// single cell of a rows x cols grid and the four discrete actions move
// it one cell left, right, up, or down. Moves off the grid leave the
// agent in place. State observations are the one-hot encoding of the
// agent's cell, in row-major order with (0, 0) the bottom left cell.
//
// The grid dimensions and the goal cell are context features. The goal
// cell features are categorical over the legal cell indices, so
// context noise never perturbs them. Contexts take effect from the
// next call to Reset.
type GridWorld struct {
	environment.Task

	rows  int
	cols  int
	goalX int
	goalY int

	position    int
	discount    float64
	currentStep timestep.TimeStep
}

// New returns a new gridworld with the default dimensions and goal
// cell, running task t
func New(t environment.Task, discount float64) (envcontext.Env,
	timestep.TimeStep, error) {
	g := &GridWorld{
		Task:     t,
		rows:     DefaultRows,
		cols:     DefaultCols,
		goalX:    DefaultGoalX,
		goalY:    DefaultGoalY,
		discount: discount,
	}

	if task, ok := t.(gridWorldTask); ok {
		task.register(g)
	}

	step, err := g.Reset()
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	return g, step, nil
}

// contextSpace returns the space of legal contexts for a rows x cols
// gridworld. The goal features are categorical over the cell indices
// of the grid.
func contextSpace(rows, cols int) envcontext.Space {
	goalX := make([]float64, cols)
	for i := range goalX {
		goalX[i] = float64(i)
	}
	goalY := make([]float64, rows)
	for i := range goalY {
		goalY[i] = float64(i)
	}

	return envcontext.Space{
		RowsFeature: envcontext.NewFeature(1, float64(MaxRows),
			envcontext.Discrete),
		ColsFeature: envcontext.NewFeature(1, float64(MaxCols),
			envcontext.Discrete),
		GoalXFeature: envcontext.NewCategorical(goalX),
		GoalYFeature: envcontext.NewCategorical(goalY),
	}
}

// ContextSpace returns the space of legal contexts for gridworlds.
// The goal features are categorical over the cell indices of the
// largest legal grid, independent of the configured dimensions;
// whether a goal cell fits inside its context's dimensions is checked
// by SetContext.
func (g *GridWorld) ContextSpace() envcontext.Space {
	return contextSpace(MaxRows, MaxCols)
}

// DefaultContext returns the context the environment runs when no
// other context has been set
func (g *GridWorld) DefaultContext() envcontext.Context {
	return envcontext.Context{
		RowsFeature:  float64(DefaultRows),
		ColsFeature:  float64(DefaultCols),
		GoalXFeature: float64(DefaultGoalX),
		GoalYFeature: float64(DefaultGoalY),
	}
}

// Context returns the context the environment is currently running
func (g *GridWorld) Context() envcontext.Context {
	return envcontext.Context{
		RowsFeature:  float64(g.rows),
		ColsFeature:  float64(g.cols),
		GoalXFeature: float64(g.goalX),
		GoalYFeature: float64(g.goalY),
	}
}

// SetContext sets the context the environment runs. Features missing
// from the argument context keep their current values, so shrinking
// the grid below the current goal cell requires setting the goal
// features in the same call. SetContext returns an error if the
// merged context is illegal, in which case the environment is
// unchanged. The new context takes effect on the next call to Reset.
func (g *GridWorld) SetContext(c envcontext.Context) error {
	full := c.Merge(g.Context())

	// The legal goal cells depend on the new dimensions, so the
	// dimensions are validated first
	dims := envcontext.Space{
		RowsFeature: envcontext.NewFeature(1, float64(MaxRows),
			envcontext.Discrete),
		ColsFeature: envcontext.NewFeature(1, float64(MaxCols),
			envcontext.Discrete),
	}
	err := dims.Validate(envcontext.Context{
		RowsFeature: full[RowsFeature],
		ColsFeature: full[ColsFeature],
	})
	if err != nil {
		return fmt.Errorf("setContext: %v", err)
	}

	rows := int(full[RowsFeature])
	cols := int(full[ColsFeature])
	if err := contextSpace(rows, cols).Validate(full); err != nil {
		return fmt.Errorf("setContext: %v", err)
	}

	g.rows = rows
	g.cols = cols
	g.goalX = int(full[GoalXFeature])
	g.goalY = int(full[GoalYFeature])
	return nil
}

// Reset resets the environment, placing the agent at the cell chosen
// by the environment's Starter and beginning a new episode
func (g *GridWorld) Reset() (timestep.TimeStep, error) {
	start := g.Start()
	if start.Len() != 2 {
		return timestep.TimeStep{}, fmt.Errorf("reset: starting cells " +
			"should be 2-dimensional")
	}

	x := int(start.AtVec(0))
	y := int(start.AtVec(1))
	if x < 0 || x >= g.cols || y < 0 || y >= g.rows {
		return timestep.TimeStep{}, fmt.Errorf("reset: start cell "+
			"(%v, %v) outside a %v x %v gridworld", x, y, g.rows, g.cols)
	}

	g.position = y*g.cols + x
	step := timestep.New(timestep.First, 0, g.discount, g.getObservation(),
		0)
	g.currentStep = step

	return step, nil
}

// Step takes one environmental step given action a ϵ {0, 1, 2, 3},
// denoting left, right, up, and down respectively
func (g *GridWorld) Step(action *mat.VecDense) (timestep.TimeStep, bool,
	error) {
	if action.Len() != 1 {
		return timestep.TimeStep{}, false, fmt.Errorf("step: actions " +
			"must be 1-dimensional")
	}
	if g.position >= g.rows*g.cols {
		return timestep.TimeStep{}, false, fmt.Errorf("step: environment " +
			"must be reset after its context changes")
	}

	x, y := g.Coordinates()
	switch int(action.AtVec(0)) {
	case 0:
		if x-1 >= 0 {
			x--
		}
	case 1:
		if x+1 < g.cols {
			x++
		}
	case 2:
		if y+1 < g.rows {
			y++
		}
	case 3:
		if y-1 >= 0 {
			y--
		}
	default:
		return timestep.TimeStep{}, false, fmt.Errorf("step: illegal "+
			"action %v ∉ (0, 1, 2, 3)", action.AtVec(0))
	}
	g.position = y*g.cols + x

	obs := g.getObservation()
	reward := g.GetReward(g.currentStep.Observation, action, obs)
	step := timestep.New(timestep.Mid, reward, g.discount, obs,
		g.currentStep.Number+1)

	last := g.End(&step)
	g.currentStep = step

	return step, last, nil
}

// Dims returns the rows and columns of the gridworld
func (g *GridWorld) Dims() (rows, cols int) {
	return g.rows, g.cols
}

// GoalCell returns the (x, y) cell the current context places the
// goal at
func (g *GridWorld) GoalCell() (x, y int) {
	return g.goalX, g.goalY
}

// Coordinates returns the (x, y) cell the agent occupies
func (g *GridWorld) Coordinates() (x, y int) {
	y = g.position / g.cols
	x = g.position - (y * g.cols)
	return x, y
}

// At returns 1.0 if the agent occupies cell (x, y) and 0.0 otherwise
func (g *GridWorld) At(x, y int) float64 {
	if y*g.cols+x == g.position {
		return 1.0
	}
	return 0.0
}

func (g *GridWorld) getObservation() *mat.VecDense {
	position := mat.NewVecDense(g.rows*g.cols, nil)
	position.SetVec(g.position, 1.0)
	return position
}

func (g *GridWorld) CurrentTimeStep() timestep.TimeStep {
	return g.currentStep
}

// ObservationSpec returns the observation specification of the
// environment. Observations are rows x cols one-hot vectors, so the
// specification changes when a context changes the dimensions.
func (g *GridWorld) ObservationSpec() environment.Spec {
	cells := g.rows * g.cols
	shape := mat.NewVecDense(cells, nil)
	lowerBound := mat.NewVecDense(cells, nil)

	ones := make([]float64, cells)
	for i := range ones {
		ones[i] = 1.0
	}
	upperBound := mat.NewVecDense(cells, ones)

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Discrete)
}

// ActionSpec returns the action specification of the environment
func (g *GridWorld) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(MinAction)})
	upperBound := mat.NewVecDense(1, []float64{float64(MaxAction)})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}

// DiscountSpec returns the discount specification of the environment
func (g *GridWorld) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{g.discount})

	return environment.NewSpec(shape, environment.Discount, lowerBound,
		lowerBound, environment.Continuous)
}

// String implements the fmt.Stringer interface
func (g *GridWorld) String() string {
	grid := mat.NewDense(g.rows, g.cols, nil)
	x, y := g.Coordinates()
	grid.Set(y, x, 1.0)

	return fmt.Sprintf("GridWorld | At: (%v, %v)  |  Goal: (%v, %v)\n%v",
		x, y, g.goalX, g.goalY, matutils.Format(grid))
}
