package gridworld

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment"
)

// SingleStart starts every episode at the cell (x, y)
type SingleStart struct {
	x, y int
}

// NewSingleStart returns a Starter placing the agent at (x, y). The
// cell is checked against the grid dimensions when an episode begins,
// since contexts can change the dimensions.
func NewSingleStart(x, y int) SingleStart {
	return SingleStart{x, y}
}

// Start returns the starting cell as (x, y)
func (s SingleStart) Start() *mat.VecDense {
	return mat.NewVecDense(2, []float64{float64(s.x), float64(s.y)})
}

// RandomStart starts each episode at a cell drawn uniformly from the
// cells of a rows x cols grid
type RandomStart struct {
	environment.CategoricalStarter
}

// NewRandomStart returns a Starter placing the agent uniformly at
// random within a rows x cols grid
func NewRandomStart(rows, cols int, seed uint64) RandomStart {
	return RandomStart{
		environment.NewCategoricalStarter([]int{cols, rows}, seed),
	}
}
