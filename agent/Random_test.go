package agent

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment"
	ts "github.com/samuelfneumann/gocarl/timestep"
)

// actionSpec returns an action specification with the argument bounds
func actionSpec(lower, upper []float64,
	c environment.Cardinality) environment.Spec {
	shape := mat.NewVecDense(len(lower), nil)
	return environment.NewSpec(shape, environment.Action,
		mat.NewVecDense(len(lower), lower), mat.NewVecDense(len(upper), upper),
		c)
}

// TestRandomDiscrete ensures that discrete actions are always legal
// and that every legal action is eventually selected
func TestRandomDiscrete(t *testing.T) {
	spec := actionSpec([]float64{0.0}, []float64{2.0}, environment.Discrete)

	agent, err := NewRandom(spec, 14)
	if err != nil {
		t.Fatalf("could not create agent: %v", err)
	}

	seen := make(map[float64]bool)
	step := ts.TimeStep{}
	for i := 0; i < 1000; i++ {
		action := agent.SelectAction(step)

		if action.Len() != 1 {
			t.Fatalf("unexpected action length \n\twant(%v) \n\thave(%v)",
				1, action.Len())
		}

		a := action.AtVec(0)
		if a != math.Trunc(a) || a < 0.0 || a > 2.0 {
			t.Fatalf("illegal discrete action %v", a)
		}
		seen[a] = true
	}

	if len(seen) != 3 {
		t.Errorf("not all legal actions selected \n\twant(%v) \n\thave(%v)",
			3, len(seen))
	}
}

// TestRandomContinuous ensures that continuous actions stay within the
// action specification's bounds
func TestRandomContinuous(t *testing.T) {
	spec := actionSpec([]float64{-1.0, -2.0}, []float64{1.0, 2.0},
		environment.Continuous)

	agent, err := NewRandom(spec, 14)
	if err != nil {
		t.Fatalf("could not create agent: %v", err)
	}

	step := ts.TimeStep{}
	for i := 0; i < 1000; i++ {
		action := agent.SelectAction(step)

		for j := 0; j < action.Len(); j++ {
			if action.AtVec(j) < spec.LowerBound.AtVec(j) ||
				action.AtVec(j) > spec.UpperBound.AtVec(j) {
				t.Fatalf("action dimension %v out of bounds: %v", j,
					action.AtVec(j))
			}
		}
	}
}

// TestRandomUnbounded ensures that construction fails when the action
// specification has unbounded dimensions
func TestRandomUnbounded(t *testing.T) {
	spec := actionSpec([]float64{math.Inf(-1)}, []float64{math.Inf(1)},
		environment.Continuous)

	if _, err := NewRandom(spec, 14); err == nil {
		t.Error("expected error for unbounded action specification")
	}
}
