package pendulum

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment/envcontext"
)

// fixedStarter always starts episodes from the same state
type fixedStarter struct {
	state []float64
}

func (f fixedStarter) Start() *mat.VecDense {
	state := make([]float64, len(f.state))
	copy(state, f.state)
	return mat.NewVecDense(len(state), state)
}

func newTestEnv(t *testing.T) envcontext.Env {
	task := NewSwingUp(fixedStarter{[]float64{0.1, 0.0}}, 500)
	env, _, err := NewContinuous(task, 0.99)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}
	return env
}

// TestDefaultContext ensures a fresh environment runs its default
// context
func TestDefaultContext(t *testing.T) {
	env := newTestEnv(t)

	if !env.Context().Equals(env.DefaultContext(), 1e-12) {
		t.Errorf("fresh environment not running the default context "+
			"\n\twant(%v) \n\thave(%v)", env.DefaultContext(), env.Context())
	}
}

// TestSetContext ensures setting a partial context changes exactly the
// named features
func TestSetContext(t *testing.T) {
	env := newTestEnv(t)

	err := env.SetContext(envcontext.Context{
		GravityFeature: 20.0,
		MassFeature:    2.0,
	})
	if err != nil {
		t.Fatalf("could not set context: %v", err)
	}

	c := env.Context()
	if c[GravityFeature] != 20.0 {
		t.Errorf("gravity not updated \n\twant(20.0) \n\thave(%v)",
			c[GravityFeature])
	}
	if c[MassFeature] != 2.0 {
		t.Errorf("mass not updated \n\twant(2.0) \n\thave(%v)",
			c[MassFeature])
	}
	if c[LengthFeature] != Length {
		t.Errorf("length changed by an unrelated context \n\twant(%v) "+
			"\n\thave(%v)", Length, c[LengthFeature])
	}
}

// TestSetContextIllegal ensures illegal contexts are rejected and do
// not change the environment
func TestSetContextIllegal(t *testing.T) {
	env := newTestEnv(t)

	if err := env.SetContext(envcontext.Context{MassFeature: -1.0}); err == nil {
		t.Error("negative mass accepted")
	}
	if err := env.SetContext(envcontext.Context{"wind": 1.0}); err == nil {
		t.Error("unknown context feature accepted")
	}
	if !env.Context().Equals(env.DefaultContext(), 1e-12) {
		t.Error("rejected context changed the environment")
	}
}

// TestContextChangesDynamics ensures the configured physics govern the
// transition dynamics
func TestContextChangesDynamics(t *testing.T) {
	weak := newTestEnv(t)
	strong := newTestEnv(t)

	err := strong.SetContext(envcontext.Context{GravityFeature: 2 * Gravity})
	if err != nil {
		t.Fatalf("could not set context: %v", err)
	}

	if _, err := weak.Reset(); err != nil {
		t.Fatalf("could not reset: %v", err)
	}
	if _, err := strong.Reset(); err != nil {
		t.Fatalf("could not reset: %v", err)
	}

	// Apply zero torque so that gravity alone moves the pendulum
	zero := mat.NewVecDense(1, []float64{0.0})
	weakStep, _, err := weak.Step(zero)
	if err != nil {
		t.Fatalf("could not step: %v", err)
	}
	strongStep, _, err := strong.Step(zero)
	if err != nil {
		t.Fatalf("could not step: %v", err)
	}

	weakSpeed := math.Abs(weakStep.Observation.AtVec(1))
	strongSpeed := math.Abs(strongStep.Observation.AtVec(1))

	if strongSpeed <= weakSpeed {
		t.Errorf("stronger gravity should accelerate the pendulum more "+
			"\n\tdefault(%v) \n\tdoubled(%v)", weakSpeed, strongSpeed)
	}
}

// TestMaxSpeedContext ensures the angular velocity never exceeds the
// configured speed bound
func TestMaxSpeedContext(t *testing.T) {
	env := newTestEnv(t)

	maxSpeed := 0.05
	if err := env.SetContext(envcontext.Context{MaxSpeedFeature: maxSpeed}); err != nil {
		t.Fatalf("could not set context: %v", err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatalf("could not reset: %v", err)
	}

	action := mat.NewVecDense(1, []float64{TorqueBound})
	for i := 0; i < 20; i++ {
		step, _, err := env.Step(action)
		if err != nil {
			t.Fatalf("could not step: %v", err)
		}
		if speed := math.Abs(step.Observation.AtVec(1)); speed > maxSpeed {
			t.Fatalf("angular velocity exceeded the configured bound "+
				"\n\tbound(%v) \n\thave(%v)", maxSpeed, speed)
		}
	}
}

// TestMaxTorqueContext ensures the action spec tracks the configured
// torque bound
func TestMaxTorqueContext(t *testing.T) {
	env := newTestEnv(t)

	if err := env.SetContext(envcontext.Context{MaxTorqueFeature: 0.5}); err != nil {
		t.Fatalf("could not set context: %v", err)
	}

	spec := env.ActionSpec()
	if spec.UpperBound.AtVec(0) != 0.5 || spec.LowerBound.AtVec(0) != -0.5 {
		t.Errorf("action spec does not track the torque bound \n\twant(±0.5) "+
			"\n\thave([%v, %v])", spec.LowerBound.AtVec(0),
			spec.UpperBound.AtVec(0))
	}
}
