package lunarlander

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
)

// fixedStarter starts every episode at the same position
type fixedStarter struct {
	state []float64
}

func (f fixedStarter) Start() *mat.VecDense {
	state := make([]float64, len(f.state))
	copy(state, f.state)
	return mat.NewVecDense(len(state), state)
}

func newTestEnv(t *testing.T, cutoff int, seed uint64) envcontext.Env {
	t.Helper()
	task := NewLand(fixedStarter{[]float64{InitialX, InitialY}}, cutoff)
	env, firstStep, err := NewDiscrete(task, 0.99, seed)
	if err != nil {
		t.Fatalf("could not construct environment: %v", err)
	}
	if !firstStep.First() {
		t.Fatalf("environment did not begin with a First timestep")
	}
	return env
}

func TestDefaultContext(t *testing.T) {
	env := newTestEnv(t, 500, 1)

	defaults := env.DefaultContext()
	if len(defaults) != 12 {
		t.Errorf("unexpected number of context features \n\twant(%v) "+
			"\n\thave(%v)", 12, len(defaults))
	}
	if err := env.ContextSpace().Validate(defaults); err != nil {
		t.Errorf("default context is illegal: %v", err)
	}

	expected := envcontext.Context{
		GravityXFeature:         XGravity,
		GravityYFeature:         YGravity,
		MainEngineFeature:       MainEnginePower,
		SideEngineFeature:       SideEnginePower,
		InitialRandomFeature:    InitialRandom,
		LegAwayFeature:          LegAway,
		LegDownFeature:          LegDown,
		LegWidthFeature:         LegW,
		LegHeightFeature:        LegH,
		LegSpringTorqueFeature:  LegSpringTorque,
		SideEngineHeightFeature: SideEngineHeight,
		SideEngineAwayFeature:   SideEngineAway,
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
	env := newTestEnv(t, 500, 1)

	contexts := []envcontext.Context{
		{GravityYFeature: 5.0},
		{LegWidthFeature: 0.0},
		{"wind_power": 10.0},
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

// TestGravityContext checks that strengthening gravity makes the
// lander fall faster. Both environments share a seed, so the terrain
// and the initial random force are identical and the vertical
// velocities differ only through gravity.
func TestGravityContext(t *testing.T) {
	fall := func(gravityY float64) float64 {
		env := newTestEnv(t, 500, 14)
		err := env.SetContext(envcontext.Context{GravityYFeature: gravityY})
		if err != nil {
			t.Fatalf("could not set context: %v", err)
		}
		if _, err := env.Reset(); err != nil {
			t.Fatalf("could not reset environment: %v", err)
		}

		noop := mat.NewVecDense(1, []float64{0.0})
		var step ts.TimeStep
		for i := 0; i < 10; i++ {
			var last bool
			step, last, err = env.Step(noop)
			if err != nil {
				t.Fatalf("could not step environment: %v", err)
			}
			if last {
				t.Fatalf("episode ended while the lander was still falling")
			}
		}
		return step.Observation.AtVec(3)
	}

	slow := fall(YGravity)
	fast := fall(-20.0)
	if fast >= slow {
		t.Errorf("stronger gravity should make the lander fall faster "+
			"\n\tvy(gravity_y=-20): %v \n\tvy(gravity_y=%v): %v", fast,
			YGravity, slow)
	}
}

func TestStepLimit(t *testing.T) {
	env := newTestEnv(t, 5, 3)

	noop := mat.NewVecDense(1, []float64{0.0})
	for i := 1; i <= 5; i++ {
		step, last, err := env.Step(noop)
		if err != nil {
			t.Fatalf("could not step environment: %v", err)
		}
		if i < 5 && last {
			t.Fatalf("episode ended early at step %v", i)
		}
		if i == 5 {
			if !last || !step.Last() {
				t.Errorf("episode did not end at the step limit")
			}
			if step.EndType != ts.Timeout {
				t.Errorf("unexpected end type \n\twant(%v) \n\thave(%v)",
					ts.Timeout, step.EndType)
			}
		}
	}
}

func TestIllegalAction(t *testing.T) {
	env := newTestEnv(t, 500, 2)

	if _, _, err := env.Step(mat.NewVecDense(1, []float64{4.0})); err == nil {
		t.Errorf("illegal action was accepted")
	}
}
