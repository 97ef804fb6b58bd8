package mountaincar

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
)

// fixedStarter starts every episode from the same pinned state
type fixedStarter struct {
	state []float64
}

func (f fixedStarter) Start() *mat.VecDense {
	return mat.NewVecDense(len(f.state), f.state)
}

// valleyBottom is approximately the lowest point of the valley
const valleyBottom float64 = -0.5

func newTestEnv(t *testing.T, start []float64) envcontext.Env {
	task := NewGoal(fixedStarter{start}, 500, GoalPosition)
	env, _, err := NewDiscrete(task, 1.0)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}
	return env
}

// TestDefaultContext ensures a fresh environment runs its default
// context, including the goal position of its task
func TestDefaultContext(t *testing.T) {
	env := newTestEnv(t, []float64{valleyBottom, 0.0})

	expected := envcontext.Context{
		MinPositionFeature:  MinPosition,
		MaxPositionFeature:  MaxPosition,
		MaxSpeedFeature:     MaxSpeed,
		PowerFeature:        Power,
		GravityFeature:      Gravity,
		GoalPositionFeature: GoalPosition,
	}
	if !env.Context().Equals(expected, 1e-12) {
		t.Errorf("fresh environment not running the default context "+
			"\n\twant(%v) \n\thave(%v)", expected, env.Context())
	}
}

// TestSetContextIllegal ensures out-of-bounds and inconsistent
// contexts are rejected and leave the environment unchanged
func TestSetContextIllegal(t *testing.T) {
	env := newTestEnv(t, []float64{valleyBottom, 0.0})
	before := env.Context()

	contexts := []envcontext.Context{
		{MinPositionFeature: 0.5},
		{PowerFeature: 0.0},
		{MinPositionFeature: 0.0, MaxPositionFeature: 0.0},
		{"engine_power": Power},
	}
	for _, c := range contexts {
		if err := env.SetContext(c); err == nil {
			t.Errorf("illegal context %v accepted", c)
		}
	}

	if !env.Context().Equals(before, 1e-12) {
		t.Errorf("environment changed by rejected contexts "+
			"\n\twant(%v) \n\thave(%v)", before, env.Context())
	}
}

// TestPowerContext ensures engine power governs how hard actions push
// the car
func TestPowerContext(t *testing.T) {
	weak := newTestEnv(t, []float64{valleyBottom, 0.0})
	strong := newTestEnv(t, []float64{valleyBottom, 0.0})

	err := strong.SetContext(envcontext.Context{PowerFeature: 10 * Power})
	if err != nil {
		t.Fatalf("could not set context: %v", err)
	}

	if _, err := weak.Reset(); err != nil {
		t.Fatalf("could not reset: %v", err)
	}
	if _, err := strong.Reset(); err != nil {
		t.Fatalf("could not reset: %v", err)
	}

	right := mat.NewVecDense(1, []float64{2.0})
	weakStep, _, err := weak.Step(right)
	if err != nil {
		t.Fatalf("could not step: %v", err)
	}
	strongStep, _, err := strong.Step(right)
	if err != nil {
		t.Fatalf("could not step: %v", err)
	}

	weakSpeed := weakStep.Observation.AtVec(1)
	strongSpeed := strongStep.Observation.AtVec(1)
	if strongSpeed <= weakSpeed {
		t.Errorf("more power should accelerate the car more "+
			"\n\tdefault(%v) \n\tmore(%v)", weakSpeed, strongSpeed)
	}
}

// TestMaxSpeedContext ensures the velocity never exceeds the
// configured maximum speed and that the observation specification
// tracks it
func TestMaxSpeedContext(t *testing.T) {
	env := newTestEnv(t, []float64{valleyBottom, 0.0})

	maxSpeed := 0.01
	err := env.SetContext(envcontext.Context{MaxSpeedFeature: maxSpeed})
	if err != nil {
		t.Fatalf("could not set context: %v", err)
	}

	obsSpec := env.ObservationSpec()
	if obsSpec.UpperBound.AtVec(1) != maxSpeed {
		t.Errorf("observation spec does not track the maximum speed "+
			"\n\twant(%v) \n\thave(%v)", maxSpeed,
			obsSpec.UpperBound.AtVec(1))
	}

	if _, err := env.Reset(); err != nil {
		t.Fatalf("could not reset: %v", err)
	}

	right := mat.NewVecDense(1, []float64{2.0})
	for i := 0; i < 50; i++ {
		step, _, err := env.Step(right)
		if err != nil {
			t.Fatalf("could not step: %v", err)
		}
		if speed := step.Observation.AtVec(1); speed > maxSpeed {
			t.Fatalf("speed bound broken on step %v \n\twant(≤ %v) "+
				"\n\thave(%v)", i, maxSpeed, speed)
		}
	}
}

// TestGoalReached ensures episodes end with a terminal state and a
// reward of 0 once the car passes the goal
func TestGoalReached(t *testing.T) {
	// Start just below the goal travelling at full speed
	env := newTestEnv(t, []float64{0.44, MaxSpeed})

	if _, err := env.Reset(); err != nil {
		t.Fatalf("could not reset: %v", err)
	}

	right := mat.NewVecDense(1, []float64{2.0})
	step, last, err := env.Step(right)
	if err != nil {
		t.Fatalf("could not step: %v", err)
	}

	if !last {
		t.Error("episode did not end at the goal")
	}
	if step.EndType != ts.TerminalStateReached {
		t.Errorf("wrong end type \n\twant(%v) \n\thave(%v)",
			ts.TerminalStateReached, step.EndType)
	}
	if step.Reward != 0.0 {
		t.Errorf("wrong reward at the goal \n\twant(0.0) \n\thave(%v)",
			step.Reward)
	}
}

// TestGoalPositionContext ensures the goal_position feature moves the
// goal of the running task
func TestGoalPositionContext(t *testing.T) {
	env := newTestEnv(t, []float64{0.44, MaxSpeed})

	err := env.SetContext(envcontext.Context{GoalPositionFeature: 0.58})
	if err != nil {
		t.Fatalf("could not set context: %v", err)
	}
	if env.Context()[GoalPositionFeature] != 0.58 {
		t.Errorf("goal position not moved \n\twant(%v) \n\thave(%v)",
			0.58, env.Context()[GoalPositionFeature])
	}

	if _, err := env.Reset(); err != nil {
		t.Fatalf("could not reset: %v", err)
	}

	// One full speed step from 0.44 passes the default goal but not
	// the moved one
	right := mat.NewVecDense(1, []float64{2.0})
	step, last, err := env.Step(right)
	if err != nil {
		t.Fatalf("could not step: %v", err)
	}
	if last {
		t.Errorf("episode ended at the old goal position (position %v)",
			step.Observation.AtVec(0))
	}
	if step.Reward != -1.0 {
		t.Errorf("wrong reward short of the goal \n\twant(-1.0) "+
			"\n\thave(%v)", step.Reward)
	}
}
