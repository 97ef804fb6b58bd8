package cartpole

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment/envcontext"
)

// uprightStarter starts every episode with the pole perfectly upright
// and the system at rest
type uprightStarter struct{}

func (u uprightStarter) Start() *mat.VecDense {
	return mat.NewVecDense(4, []float64{0.0, 0.0, 0.0, 0.0})
}

func newTestEnv(t *testing.T) envcontext.Env {
	task := NewBalance(uprightStarter{}, 500, FailAngle)
	env, _, err := NewDiscrete(task, 1.0)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}
	return env
}

// TestDefaultContext ensures a fresh environment runs its default
// context
func TestDefaultContext(t *testing.T) {
	env := newTestEnv(t)

	expected := envcontext.Context{
		GravityFeature:    Gravity,
		CartMassFeature:   CartMass,
		PoleMassFeature:   PoleMass,
		PoleLengthFeature: HalfPoleLength,
		ForceFeature:      ForceMag,
		DtFeature:         Dt,
	}
	if !env.Context().Equals(expected, 1e-12) {
		t.Errorf("fresh environment not running the default context "+
			"\n\twant(%v) \n\thave(%v)", expected, env.Context())
	}
}

// TestSetContextIllegal ensures out-of-bounds contexts are rejected
func TestSetContextIllegal(t *testing.T) {
	env := newTestEnv(t)

	if err := env.SetContext(envcontext.Context{CartMassFeature: 100.0}); err == nil {
		t.Error("out-of-bounds cart mass accepted")
	}
	if err := env.SetContext(envcontext.Context{DtFeature: 0.0}); err == nil {
		t.Error("zero integration interval accepted")
	}
}

// TestForceContext ensures the configured force magnification governs
// how hard actions push the cart
func TestForceContext(t *testing.T) {
	weak := newTestEnv(t)
	strong := newTestEnv(t)

	err := strong.SetContext(envcontext.Context{ForceFeature: 2 * ForceMag})
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
		t.Errorf("doubled force should accelerate the cart more "+
			"\n\tdefault(%v) \n\tdoubled(%v)", weakSpeed, strongSpeed)
	}
}

// tiltedStarter starts every episode with the pole slightly off
// balance
type tiltedStarter struct{}

func (s tiltedStarter) Start() *mat.VecDense {
	return mat.NewVecDense(4, []float64{0.0, 0.0, 0.05, 0.0})
}

// TestPoleLengthContext ensures a longer pole falls more slowly from
// the same tilted start
func TestPoleLengthContext(t *testing.T) {
	fall := func(poleLength float64) float64 {
		task := NewBalance(tiltedStarter{}, 500, FailAngle)
		env, _, err := NewDiscrete(task, 1.0)
		if err != nil {
			t.Fatalf("could not create environment: %v", err)
		}
		err = env.SetContext(envcontext.Context{PoleLengthFeature: poleLength})
		if err != nil {
			t.Fatalf("could not set context: %v", err)
		}
		if _, err := env.Reset(); err != nil {
			t.Fatalf("could not reset: %v", err)
		}

		// Let the pole fall freely under gravity
		nothing := mat.NewVecDense(1, []float64{1.0})
		var step = env.CurrentTimeStep()
		for i := 0; i < 20; i++ {
			step, _, err = env.Step(nothing)
			if err != nil {
				t.Fatalf("could not step: %v", err)
			}
		}
		return math.Abs(step.Observation.AtVec(2))
	}

	shortAngle := fall(HalfPoleLength)
	longAngle := fall(4 * HalfPoleLength)

	if longAngle >= shortAngle {
		t.Errorf("longer pole should fall more slowly \n\tshort(%v) "+
			"\n\tlong(%v)", shortAngle, longAngle)
	}
}

// TestEpisodeEndsAtFailAngle ensures episodes terminate once the pole
// falls past the failure angle
func TestEpisodeEndsAtFailAngle(t *testing.T) {
	env := newTestEnv(t)

	// Make the pole fall quickly by pushing in one direction forever
	right := mat.NewVecDense(1, []float64{2.0})
	if _, err := env.Reset(); err != nil {
		t.Fatalf("could not reset: %v", err)
	}

	for i := 0; i < 500; i++ {
		step, last, err := env.Step(right)
		if err != nil {
			t.Fatalf("could not step: %v", err)
		}
		if last {
			if math.Abs(step.Observation.AtVec(2)) < FailAngle {
				t.Error("episode ended before the pole fell")
			}
			if step.Reward != -1.0 {
				t.Errorf("wrong reward on failure \n\twant(-1.0) "+
					"\n\thave(%v)", step.Reward)
			}
			return
		}
	}
	t.Error("pole never fell under constant force")
}
