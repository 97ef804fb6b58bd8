package gridworld

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
)

const (
	left  float64 = 0.0
	right float64 = 1.0
	up    float64 = 2.0
	down  float64 = 3.0
)

func newTestEnv(t *testing.T, startX, startY, cutoff int) envcontext.Env {
	t.Helper()
	task := NewGoal(NewSingleStart(startX, startY), TimeStepReward,
		GoalReward, cutoff)
	env, firstStep, err := New(task, 1.0)
	if err != nil {
		t.Fatalf("could not construct environment: %v", err)
	}
	if !firstStep.First() {
		t.Fatalf("environment did not begin with a First timestep")
	}
	return env
}

func step(t *testing.T, env envcontext.Env, action float64) (ts.TimeStep,
	bool) {
	t.Helper()
	next, last, err := env.Step(mat.NewVecDense(1, []float64{action}))
	if err != nil {
		t.Fatalf("could not step environment: %v", err)
	}
	return next, last
}

func TestDefaultContext(t *testing.T) {
	env := newTestEnv(t, 0, 0, 100)

	defaults := env.DefaultContext()
	if len(defaults) != 4 {
		t.Errorf("unexpected number of context features \n\twant(%v) "+
			"\n\thave(%v)", 4, len(defaults))
	}
	if err := env.ContextSpace().Validate(defaults); err != nil {
		t.Errorf("default context is illegal: %v", err)
	}

	expected := envcontext.Context{
		RowsFeature:  float64(DefaultRows),
		ColsFeature:  float64(DefaultCols),
		GoalXFeature: float64(DefaultGoalX),
		GoalYFeature: float64(DefaultGoalY),
	}
	for name, value := range expected {
		if defaults[name] != value {
			t.Errorf("unexpected default value of %v \n\twant(%v) "+
				"\n\thave(%v)", name, value, defaults[name])
		}
	}

	current := env.Context()
	for name, value := range expected {
		if current[name] != value {
			t.Errorf("environment does not run the default context for "+
				"%v \n\twant(%v) \n\thave(%v)", name, value, current[name])
		}
	}
}

func TestSetContextIllegal(t *testing.T) {
	env := newTestEnv(t, 0, 0, 100)

	contexts := []envcontext.Context{
		{RowsFeature: 0},
		{RowsFeature: 2.5},
		{GoalXFeature: 7},
		{GoalXFeature: 2.5},
		// Shrinking the grid below the current goal cell requires
		// moving the goal in the same call
		{RowsFeature: 3, ColsFeature: 3},
		{"walls": 1.0},
	}
	for _, c := range contexts {
		if err := env.SetContext(c); err == nil {
			t.Errorf("illegal context %v was accepted", c)
		}
	}

	// Rejected contexts must leave the environment unchanged
	current := env.Context()
	for name, value := range env.DefaultContext() {
		if current[name] != value {
			t.Errorf("rejected context changed feature %v \n\twant(%v) "+
				"\n\thave(%v)", name, value, current[name])
		}
	}
}

func TestMovement(t *testing.T) {
	env := newTestEnv(t, 0, 0, 100)

	// Each action moves the agent one cell, and moves off the grid
	// leave it in place
	cells := []struct {
		action float64
		index  int
	}{
		{right, 1},
		{up, DefaultCols + 1},
		{left, DefaultCols},
		{down, 0},
		{down, 0},
		{left, 0},
	}

	for i, c := range cells {
		next, last := step(t, env, c.action)
		if last {
			t.Fatalf("episode ended unexpectedly at move %v", i)
		}
		if next.Observation.AtVec(c.index) != 1.0 {
			t.Errorf("agent not at expected cell after move %v", i)
		}
		if next.Reward != TimeStepReward {
			t.Errorf("unexpected reward \n\twant(%v) \n\thave(%v)",
				TimeStepReward, next.Reward)
		}
	}
}

func TestGoalReached(t *testing.T) {
	env := newTestEnv(t, DefaultGoalX, DefaultGoalY-1, 100)

	next, last := step(t, env, up)
	if !last || !next.Last() {
		t.Errorf("episode did not end at the goal cell")
	}
	if next.EndType != ts.TerminalStateReached {
		t.Errorf("unexpected end type \n\twant(%v) \n\thave(%v)",
			ts.TerminalStateReached, next.EndType)
	}
	if next.Reward != GoalReward {
		t.Errorf("unexpected reward at the goal \n\twant(%v) \n\thave(%v)",
			GoalReward, next.Reward)
	}
}

func TestContextReshapesGrid(t *testing.T) {
	env := newTestEnv(t, 0, 0, 100)

	err := env.SetContext(envcontext.Context{
		RowsFeature:  3,
		ColsFeature:  3,
		GoalXFeature: 2,
		GoalYFeature: 2,
	})
	if err != nil {
		t.Fatalf("could not set context: %v", err)
	}

	firstStep, err := env.Reset()
	if err != nil {
		t.Fatalf("could not reset environment: %v", err)
	}
	if firstStep.Observation.Len() != 9 {
		t.Errorf("observation does not match the context's dimensions "+
			"\n\twant(%v) \n\thave(%v)", 9, firstStep.Observation.Len())
	}
	if env.ObservationSpec().UpperBound.Len() != 9 {
		t.Errorf("observation spec does not match the context's dimensions")
	}

	// Walk to the new goal cell at (2, 2)
	var next ts.TimeStep
	var last bool
	for _, action := range []float64{right, right, up} {
		next, last = step(t, env, action)
		if last {
			t.Fatalf("episode ended before the goal cell")
		}
	}
	next, last = step(t, env, up)
	if !last || next.EndType != ts.TerminalStateReached {
		t.Errorf("episode did not end at the context's goal cell")
	}
}

func TestStepLimit(t *testing.T) {
	env := newTestEnv(t, 0, 0, 3)

	for i := 1; i <= 3; i++ {
		next, last := step(t, env, left)
		if i < 3 && last {
			t.Fatalf("episode ended early at step %v", i)
		}
		if i == 3 {
			if !last {
				t.Errorf("episode did not end at the step limit")
			}
			if next.EndType != ts.Timeout {
				t.Errorf("unexpected end type \n\twant(%v) \n\thave(%v)",
					ts.Timeout, next.EndType)
			}
		}
	}
}

// TestContextSpaceAllowsGrownGrid ensures the context space accepts
// goal cells that only exist after a context grows the grid, so that
// such contexts pass validation against ContextSpace() before any
// episode runs
func TestContextSpaceAllowsGrownGrid(t *testing.T) {
	env := newTestEnv(t, 0, 0, 100)

	grown := envcontext.Context{
		RowsFeature:  10,
		ColsFeature:  10,
		GoalXFeature: 7,
		GoalYFeature: 7,
	}

	// Validation against the space is the check run when contexts are
	// registered, before the environment is ever reconfigured
	if err := env.ContextSpace().Validate(grown.Merge(
		env.DefaultContext())); err != nil {
		t.Fatalf("grown-grid context rejected by the context space: %v", err)
	}

	if err := env.SetContext(grown); err != nil {
		t.Fatalf("could not set grown-grid context: %v", err)
	}

	firstStep, err := env.Reset()
	if err != nil {
		t.Fatalf("could not reset environment: %v", err)
	}
	if firstStep.Observation.Len() != 100 {
		t.Errorf("observation does not match the context's dimensions "+
			"\n\twant(%v) \n\thave(%v)", 100, firstStep.Observation.Len())
	}

	// Goal cells outside the configured dimensions are still illegal,
	// even though they lie inside the largest legal grid
	if err := env.SetContext(envcontext.Context{
		RowsFeature:  5,
		ColsFeature:  5,
		GoalXFeature: 7,
		GoalYFeature: 4,
	}); err == nil {
		t.Error("goal cell outside the configured dimensions was accepted")
	}
}
