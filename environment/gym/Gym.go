// Package gym provides access to OpenAI Gym environments through Go
// bindings for the Python interpreter.
//
// All environments in the Classic Control and MuJoCo suites can be
// used, with their default tasks and episode cutoffs. The physical
// parameters of a Gym environment live as attributes on the wrapped
// Python object, so the caller names the parameters to expose as
// context features, and setting a context writes the feature values
// through to those attributes.
//
// This is made possible through the Go bindings for OpenAI Gym,
// found at https://github.com/samuelfneumann/GoGym.
package gym

import (
	"fmt"

	python "github.com/DataDog/go-python3"
	"github.com/samuelfneumann/gogym"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
)

// GymEnv implements access to an OpenAI Gym environment using GoGym.
//
// The context space of a GymEnv is supplied by the caller and maps
// context feature names to their legal values. Each feature name must
// be an attribute of the unwrapped Python environment, e.g. "gravity"
// or "masspole" for CartPole-v1. Setting a context assigns each
// feature value to the attribute of the same name, taking effect on
// the next Python call into the environment.
type GymEnv struct {
	gogym.Environment

	space    envcontext.Space
	defaults envcontext.Context
	context  envcontext.Context

	currentStep ts.TimeStep
	discount    float64
}

// New returns a new GymEnv with the given name, which must be a legal
// name from the OpenAI Gym suite. The space argument names the Python
// attributes exposed as context features, and defaults assigns the
// values the environment runs until another context is set.
func New(name string, space envcontext.Space, defaults envcontext.Context,
	discount float64, seed uint64) (envcontext.Env, ts.TimeStep, error) {
	goGymEnv, err := gogym.Make(name)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: could not create "+
			"environment: %v", err)
	}

	if _, err := goGymEnv.Seed(int(seed)); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: could not seed "+
			"environment: %v", err)
	}

	gymEnv := &GymEnv{
		Environment: goGymEnv,
		space:       space,
		defaults:    defaults.Clone(),
		context:     envcontext.Context{},
		discount:    discount,
	}

	if err := gymEnv.SetContext(defaults); err != nil {
		goGymEnv.Close()
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	step, err := gymEnv.Reset()
	if err != nil {
		goGymEnv.Close()
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	return gymEnv, step, nil
}

// ContextSpace returns the space of legal contexts for the
// environment, as supplied at construction
func (g *GymEnv) ContextSpace() envcontext.Space {
	return g.space
}

// DefaultContext returns the context the environment runs when no
// other context has been set
func (g *GymEnv) DefaultContext() envcontext.Context {
	return g.defaults.Clone()
}

// Context returns the context the environment is currently running
func (g *GymEnv) Context() envcontext.Context {
	return g.context.Clone()
}

// SetContext sets the context the environment runs by assigning each
// feature value to the Python attribute of the same name on the
// unwrapped Gym environment. Features missing from the argument
// context keep their current values. SetContext returns an error if
// the merged context is illegal, in which case no attribute is
// written.
func (g *GymEnv) SetContext(c envcontext.Context) error {
	full := c.Merge(g.Context())
	if err := g.space.Validate(full); err != nil {
		return fmt.Errorf("setContext: %v", err)
	}

	// Gym wraps environments, e.g. with time limits, so the physical
	// parameters live on the unwrapped environment
	unwrapped := g.Env().GetAttrString("unwrapped")
	if unwrapped == nil {
		if python.PyErr_Occurred() != nil {
			python.PyErr_Print()
		}
		return fmt.Errorf("setContext: could not unwrap environment %v",
			g.Name())
	}
	defer unwrapped.DecRef()

	for _, name := range full.Keys() {
		value := python.PyFloat_FromDouble(full[name])
		set := unwrapped.SetAttrString(name, value)
		value.DecRef()
		if set != 0 {
			if python.PyErr_Occurred() != nil {
				python.PyErr_Print()
			}
			return fmt.Errorf("setContext: could not set attribute %v on "+
				"%v", name, g.Name())
		}
	}

	g.context = full
	return nil
}

// Step takes a single environmental step
func (g *GymEnv) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	obs, reward, done, err := g.Environment.Step(a)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not step "+
			"GoGym environment: %v", err)
	}

	t := ts.New(ts.Mid, reward, g.discount, obs, g.CurrentTimeStep().Number+1)
	if done {
		t.StepType = ts.Last
		t.SetEnd(ts.TerminalStateReached)
	}
	g.currentStep = t

	return t, done, nil
}

// Reset resets the environment to some starting state
func (g *GymEnv) Reset() (ts.TimeStep, error) {
	obs, err := g.Environment.Reset()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not reset "+
			"environment: %v", err)
	}

	t := ts.New(ts.First, 0, g.discount, obs, 0)
	g.currentStep = t

	return t, nil
}

// CurrentTimeStep returns the current timestep in the environment
func (g *GymEnv) CurrentTimeStep() ts.TimeStep {
	return g.currentStep
}

// ObservationSpec returns the observation spec of the environment
func (g *GymEnv) ObservationSpec() env.Spec {
	space := g.ObservationSpace()

	var low, high, shape *mat.VecDense
	switch space.(type) {
	case *gogym.BoxSpace, *gogym.DiscreteSpace:
		low = space.Low()[0]
		high = space.High()[0]
		shape = mat.NewVecDense(low.Len(), nil)
	default:
		panic("observationSpec: invalid space type, package gym supports " +
			"only GoGym's BoxSpace or DiscreteSpace")
	}

	return env.NewSpec(shape, env.Observation, low, high, env.Continuous)
}

// ActionSpec returns the action specification of the environment
func (g *GymEnv) ActionSpec() env.Spec {
	space := g.ActionSpace()

	var low, high, shape *mat.VecDense
	switch space.(type) {
	case *gogym.BoxSpace, *gogym.DiscreteSpace:
		low = space.Low()[0]
		high = space.High()[0]
		shape = mat.NewVecDense(low.Len(), nil)
	default:
		panic("actionSpec: invalid space type, package gym supports " +
			"only GoGym's BoxSpace or DiscreteSpace")
	}

	cardinality := env.Discrete
	if g.ContinuousAction() {
		cardinality = env.Continuous
	}

	return env.NewSpec(shape, env.Action, low, high, cardinality)
}

// DiscountSpec returns the discount specification of the environment
func (g *GymEnv) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	low := mat.NewVecDense(1, []float64{g.discount})

	return env.NewSpec(shape, env.Discount, low, low, env.Continuous)
}

// Start implements the environment.Environment interface. This
// function panics, since starting states are drawn by Python.
func (g *GymEnv) Start() *mat.VecDense {
	panic("start: cannot calculate starting state for GymEnv")
}

// GetReward implements the environment.Environment interface. This
// function panics, since rewards are calculated by Python.
func (g *GymEnv) GetReward(_, _, _ mat.Vector) float64 {
	panic("getReward: cannot calculate reward for transition in GymEnv")
}

// End implements the environment.Environment interface. This
// function panics, since episode ends are determined by Python.
func (g *GymEnv) End(*ts.TimeStep) bool {
	panic("end: cannot calculate ending for GymEnv")
}

// AtGoal implements the environment.Environment interface. This
// function panics.
func (g *GymEnv) AtGoal(mat.Matrix) bool {
	panic("atGoal: cannot calculate at goal for GymEnv")
}

// Min implements the environment.Environment interface. This
// function panics.
func (g *GymEnv) Min() float64 {
	panic("min: cannot calculate minimum reward for GymEnv")
}

// Max implements the environment.Environment interface. This
// function panics.
func (g *GymEnv) Max() float64 {
	panic("max: cannot calculate maximum reward for GymEnv")
}

// RewardSpec implements the environment.Environment interface. This
// function panics.
func (g *GymEnv) RewardSpec() env.Spec {
	panic("rewardSpec: cannot calculate reward spec for GymEnv")
}

// Close performs resource cleanup after the environment is no longer
// needed
func (g *GymEnv) Close() error {
	g.Environment.Close()
	return nil
}
