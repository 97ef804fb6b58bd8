// Package cartpole implements the Cartpole classic control environment
package cartpole

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
	"github.com/samuelfneumann/gocarl/utils/floatutils"
)

const (
	// Default physical constants
	Gravity        float64 = 9.8
	CartMass       float64 = 1.0
	PoleMass       float64 = 0.1
	HalfPoleLength float64 = 0.5  // half of pole length
	ForceMag       float64 = 10.0 // Magnification of force applied
	Dt             float64 = 0.02 // seconds between state updates

	// Bounds (+/-) on state variables
	PositionBounds        float64 = 4.8
	SpeedBounds           float64 = math.MaxFloat64
	AngleBounds           float64 = math.Pi
	AngularVelocityBounds float64 = math.MaxFloat64

	// Discrete Actions
	MinDiscreteAction int = 0
	MaxDiscreteAction int = 2

	// Continuous Actions
	MinContinuousAction float64 = -1.0
	MaxContinuousAction float64 = 1.0

	ActionDims      int = 1
	ObservationDims int = 4
)

// Context feature names of the environment
const (
	GravityFeature    string = "gravity"
	CartMassFeature   string = "cart_mass"
	PoleMassFeature   string = "pole_mass"
	PoleLengthFeature string = "pole_length" // half of the pole length
	ForceFeature      string = "force"
	DtFeature         string = "dt"
)

// base implements the classic control environment Cartpole. In this
// environment, a pole is attached to a cart, which can move
// horizontally. The agent must keep the pole facing straight up for
// as long as possible.
//
// The state features are continuous and consist of the cart's x
// position and speed, as well as the pole's angle from the positive
// y-axis and the pole's angular velocity. All state features are
// bounded by the constants defined in this file. Angles are normalized
// to stay within [-π, π].
//
// The physical parameters of the system are mutable through the
// environment's context. The context features are the gravitational
// constant, the masses of the cart and pole, the half length of the
// pole, the magnification of the applied force, and the Euler
// integration interval. Setting a new context changes the dynamics for
// every following step.
//
// base does not implement the environment.Environment interface, but
// is embedded in Discrete and Continuous which do implement this
// interface.
type base struct {
	env.Task
	lastStep ts.TimeStep
	discount float64

	gravity        float64
	forceMag       float64
	poleMass       float64
	halfPoleLength float64
	cartMass       float64
	dt             float64

	positionBounds        r1.Interval
	speedBounds           r1.Interval
	angleBounds           r1.Interval
	angularVelocityBounds r1.Interval
}

// newBase constructs a new base Cartpole environment running the
// default context
func newBase(t env.Task, discount float64) (*base, ts.TimeStep, error) {
	positionBounds := r1.Interval{Min: -PositionBounds, Max: PositionBounds}
	speedBounds := r1.Interval{Min: -SpeedBounds, Max: SpeedBounds}
	angleBounds := r1.Interval{Min: -AngleBounds, Max: AngleBounds}
	angularVelocityBounds := r1.Interval{Min: -AngularVelocityBounds,
		Max: AngularVelocityBounds}

	state := t.Start()
	err := validateState(state, positionBounds, speedBounds, angleBounds,
		angularVelocityBounds)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	firstStep := ts.New(ts.First, 0.0, discount, state, 0)

	cartpole := base{
		Task:                  t,
		lastStep:              firstStep,
		discount:              discount,
		gravity:               Gravity,
		forceMag:              ForceMag,
		poleMass:              PoleMass,
		halfPoleLength:        HalfPoleLength,
		cartMass:              CartMass,
		dt:                    Dt,
		positionBounds:        positionBounds,
		speedBounds:           speedBounds,
		angleBounds:           angleBounds,
		angularVelocityBounds: angularVelocityBounds,
	}

	return &cartpole, firstStep, nil
}

// ContextSpace returns the legal values of every context feature of
// the environment
func (c *base) ContextSpace() envcontext.Space {
	return envcontext.Space{
		GravityFeature:    envcontext.NewFeature(0.0, math.Inf(1), envcontext.Continuous),
		CartMassFeature:   envcontext.NewFeature(0.1, 10.0, envcontext.Continuous),
		PoleMassFeature:   envcontext.NewFeature(0.01, 1.0, envcontext.Continuous),
		PoleLengthFeature: envcontext.NewFeature(0.05, 5.0, envcontext.Continuous),
		ForceFeature:      envcontext.NewFeature(1.0, 100.0, envcontext.Continuous),
		DtFeature:         envcontext.NewFeature(0.001, 0.1, envcontext.Continuous),
	}
}

// DefaultContext returns the context of the classic control Cartpole
func (c *base) DefaultContext() envcontext.Context {
	return envcontext.Context{
		GravityFeature:    Gravity,
		CartMassFeature:   CartMass,
		PoleMassFeature:   PoleMass,
		PoleLengthFeature: HalfPoleLength,
		ForceFeature:      ForceMag,
		DtFeature:         Dt,
	}
}

// SetContext reconfigures the physical parameters of the system. The
// new dynamics govern every following step.
func (c *base) SetContext(ctx envcontext.Context) error {
	full := ctx.Merge(c.Context())
	if err := c.ContextSpace().Validate(full); err != nil {
		return fmt.Errorf("setContext: %v", err)
	}

	c.gravity = full[GravityFeature]
	c.cartMass = full[CartMassFeature]
	c.poleMass = full[PoleMassFeature]
	c.halfPoleLength = full[PoleLengthFeature]
	c.forceMag = full[ForceFeature]
	c.dt = full[DtFeature]

	return nil
}

// Context returns the context the environment is currently configured
// with
func (c *base) Context() envcontext.Context {
	return envcontext.Context{
		GravityFeature:    c.gravity,
		CartMassFeature:   c.cartMass,
		PoleMassFeature:   c.poleMass,
		PoleLengthFeature: c.halfPoleLength,
		ForceFeature:      c.forceMag,
		DtFeature:         c.dt,
	}
}

// CurrentTimeStep returns the current timestep of the environment
func (c *base) CurrentTimeStep() ts.TimeStep {
	return c.lastStep
}

// Reset resets the environment and returns a starting state drawn from
// the environment Starter
func (c *base) Reset() (ts.TimeStep, error) {
	state := c.Start()
	err := validateState(state, c.positionBounds, c.speedBounds,
		c.angleBounds, c.angularVelocityBounds)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	startStep := ts.New(ts.First, 0, c.discount, state, 0)
	c.lastStep = startStep

	return startStep, nil
}

// nextState computes the next state of the environment given the
// horizontal force applied to the cart
func (c *base) nextState(force float64) *mat.VecDense {
	state := c.lastStep.Observation
	x, xDot := state.AtVec(0), state.AtVec(1)
	th, thDot := state.AtVec(2), state.AtVec(3)

	cosTheta := math.Cos(th)
	sinTheta := math.Sin(th)

	totalMass := c.poleMass + c.cartMass
	poleMassOverLength := c.poleMass / c.halfPoleLength

	temp := (force + poleMassOverLength*thDot*thDot*sinTheta) / totalMass
	thAcc := (c.gravity*sinTheta - cosTheta*temp) / (c.halfPoleLength *
		(4.0/3.0 - c.poleMass*cosTheta*cosTheta/totalMass))
	xAcc := temp - poleMassOverLength*thAcc*cosTheta/totalMass

	// Update state variables using Euler kinematic integration
	x += (c.dt * xDot)
	x = floatutils.ClipInterval(x, c.positionBounds)

	xDot += (c.dt * xAcc)
	xDot = floatutils.ClipInterval(xDot, c.speedBounds)

	th += (c.dt * thDot)
	th = floatutils.WrapInterval(th, c.angleBounds)

	thDot += (c.dt * thAcc)
	thDot = floatutils.ClipInterval(thDot, c.angularVelocityBounds)

	return mat.NewVecDense(4, []float64{x, xDot, th, thDot})
}

// update updates the base environment by constructing a new current
// TimeStep for the environment from the argument action and next state
func (c *base) update(action, newState *mat.VecDense) (ts.TimeStep, bool) {
	reward := c.GetReward(c.lastStep.Observation, action, newState)
	nextStep := ts.New(ts.Mid, reward, c.discount, newState,
		c.lastStep.Number+1)

	c.End(&nextStep)

	c.lastStep = nextStep
	return nextStep, nextStep.Last()
}

// ObservationSpec returns the observation specification of the
// environment
func (c *base) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)

	lower := []float64{c.positionBounds.Min, c.speedBounds.Min,
		c.angleBounds.Min, c.angularVelocityBounds.Min}
	lowerBound := mat.NewVecDense(ObservationDims, lower)

	upper := []float64{c.positionBounds.Max, c.speedBounds.Max,
		c.angleBounds.Max, c.angularVelocityBounds.Max}
	upperBound := mat.NewVecDense(ObservationDims, upper)

	return env.NewSpec(shape, env.Observation, lowerBound, upperBound,
		env.Continuous)
}

// DiscountSpec returns the discounting specification of the environment
func (c *base) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{c.discount})
	upperBound := mat.NewVecDense(1, []float64{c.discount})

	return env.NewSpec(shape, env.Discount, lowerBound, upperBound,
		env.Continuous)
}

// String converts the environment to a string representation
func (c *base) String() string {
	msg := "Cartpole  |  Position: %v  | Speed: %v  |  Angle: %v" +
		"  |  Angular Velocity: %v"

	state := c.lastStep.Observation
	position, speed := state.AtVec(0), state.AtVec(1)
	angle, velocity := state.AtVec(2), state.AtVec(3)

	return fmt.Sprintf(msg, position, speed, angle, velocity)
}

// validateState ensures that a state observation is valid and between
// the physical bounds of the Cartpole environment
func validateState(obs mat.Vector, positionBounds, speedBounds, angleBounds,
	angularVelocityBounds r1.Interval) error {
	if l := obs.Len(); l != ObservationDims {
		return fmt.Errorf("illegal state length \n\twant(%v) \n\thave(%v)",
			ObservationDims, l)
	}

	positionWithinBounds := obs.AtVec(0) <= positionBounds.Max &&
		obs.AtVec(0) >= positionBounds.Min
	if !positionWithinBounds {
		return fmt.Errorf("position %v is not within bounds %v",
			obs.AtVec(0), positionBounds)
	}

	speedWithinBounds := obs.AtVec(1) <= speedBounds.Max &&
		obs.AtVec(1) >= speedBounds.Min
	if !speedWithinBounds {
		return fmt.Errorf("speed %v is not within bounds %v", obs.AtVec(1),
			speedBounds)
	}

	angleWithinBounds := obs.AtVec(2) <= angleBounds.Max &&
		obs.AtVec(2) >= angleBounds.Min
	if !angleWithinBounds {
		return fmt.Errorf("angle %v is not within bounds %v", obs.AtVec(2),
			angleBounds)
	}

	velocityWithinBounds := obs.AtVec(3) <= angularVelocityBounds.Max &&
		obs.AtVec(3) >= angularVelocityBounds.Min
	if !velocityWithinBounds {
		return fmt.Errorf("angular velocity %v is not within bounds %v",
			obs.AtVec(3), angularVelocityBounds)
	}
	return nil
}
