// Package pendulum implements the pendulum classic control environment
package pendulum

import (
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
	"github.com/samuelfneumann/gocarl/utils/floatutils"
)

// default physical constants
const (
	AngleBound  float64 = math.Pi // +/- Angle bounds
	SpeedBound  float64 = 8.0     // +/- Speed bounds
	TorqueBound float64 = 2.0     // +/- Torque bounds

	MaxDiscreteAction float64 = 4.0
	MinDiscreteAction float64 = 0.0

	dt      float64 = 0.05
	Gravity float64 = 9.8
	Mass    float64 = 1.0
	Length  float64 = 1.0

	ActionDims      int = 1
	ObservationDims int = 2
)

// Context feature names of the environment
const (
	GravityFeature   string = "gravity"
	MassFeature      string = "mass"
	LengthFeature    string = "length"
	DtFeature        string = "dt"
	MaxSpeedFeature  string = "max_speed"
	MaxTorqueFeature string = "max_torque"
)

// base implements the classic control environment Pendulum. In this
// environment, a pendulum is attached to a fixed base. An agent can
// swing the pendulum back and forth, but the swinging torque is
// underpowered. In order to be able to swing the pendulum straight up,
// it must first be rocked back and forth, using the momentum to
// gradually climb higher until the pendulum can point straight up or
// rotate fully around its fixed base.
//
// State features consist of the angle of the pendulum from the positive
// y-axis and the angular velocity of the pendulum. The sign of the
// angular velocity indicates direction, with negative sign indicating
// counter clockwise rotation and positive sign indicating clockwise
// rotation. The angular velocity is clipped between ±max_speed. Angles
// are normalized to stay within [-AngleBound, AngleBound] = [-π, π].
//
// The physical parameters of the pendulum are mutable through its
// context. The context features are the gravitational constant, the
// mass and length of the pendulum, the integration timestep, the
// angular speed bound, and the torque bound. Setting a new context
// changes the dynamics for every following step, and the new speed
// and torque bounds take effect immediately.
//
// base does not implement the environment.Environment interface, but
// is embedded in Discrete and Continuous which do implement this
// interface. This struct is used to share code between discrete action
// and continuous action versions of the pendulum environment.
type base struct {
	environment.Task
	dt      float64
	gravity float64
	mass    float64
	length  float64

	angleBounds  r1.Interval
	speedBounds  r1.Interval
	torqueBounds r1.Interval

	lastStep ts.TimeStep
	discount float64
}

// newBase returns a new base pendulum environment running the default
// context
func newBase(t environment.Task, discount float64) (*base, ts.TimeStep,
	error) {
	angleBounds := r1.Interval{Min: -AngleBound, Max: AngleBound}
	speedBounds := r1.Interval{Min: -SpeedBound, Max: SpeedBound}
	torqueBounds := r1.Interval{Min: -TorqueBound, Max: TorqueBound}

	state := t.Start()
	if err := validateState(state, angleBounds, speedBounds); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	firstStep := ts.New(ts.First, 0.0, discount, state, 0)

	pendulum := base{
		Task:         t,
		dt:           dt,
		gravity:      Gravity,
		mass:         Mass,
		length:       Length,
		angleBounds:  angleBounds,
		speedBounds:  speedBounds,
		torqueBounds: torqueBounds,
		lastStep:     firstStep,
		discount:     discount,
	}

	return &pendulum, firstStep, nil
}

// ContextSpace returns the legal values of every context feature of
// the environment
func (p *base) ContextSpace() envcontext.Space {
	return envcontext.Space{
		GravityFeature:   envcontext.NewFeature(0.0, math.Inf(1), envcontext.Continuous),
		MassFeature:      envcontext.NewFeature(1e-6, math.Inf(1), envcontext.Continuous),
		LengthFeature:    envcontext.NewFeature(1e-6, math.Inf(1), envcontext.Continuous),
		DtFeature:        envcontext.NewFeature(1e-6, 1.0, envcontext.Continuous),
		MaxSpeedFeature:  envcontext.NewFeature(1e-6, math.Inf(1), envcontext.Continuous),
		MaxTorqueFeature: envcontext.NewFeature(1e-6, math.Inf(1), envcontext.Continuous),
	}
}

// DefaultContext returns the context of the classic control pendulum
func (p *base) DefaultContext() envcontext.Context {
	return envcontext.Context{
		GravityFeature:   Gravity,
		MassFeature:      Mass,
		LengthFeature:    Length,
		DtFeature:        dt,
		MaxSpeedFeature:  SpeedBound,
		MaxTorqueFeature: TorqueBound,
	}
}

// SetContext reconfigures the physical parameters of the pendulum. The
// new dynamics govern every following step.
func (p *base) SetContext(c envcontext.Context) error {
	full := c.Merge(p.Context())
	if err := p.ContextSpace().Validate(full); err != nil {
		return fmt.Errorf("setContext: %v", err)
	}

	p.gravity = full[GravityFeature]
	p.mass = full[MassFeature]
	p.length = full[LengthFeature]
	p.dt = full[DtFeature]
	p.speedBounds = r1.Interval{
		Min: -full[MaxSpeedFeature],
		Max: full[MaxSpeedFeature],
	}
	p.torqueBounds = r1.Interval{
		Min: -full[MaxTorqueFeature],
		Max: full[MaxTorqueFeature],
	}

	return nil
}

// Context returns the context the environment is currently configured
// with
func (p *base) Context() envcontext.Context {
	return envcontext.Context{
		GravityFeature:   p.gravity,
		MassFeature:      p.mass,
		LengthFeature:    p.length,
		DtFeature:        p.dt,
		MaxSpeedFeature:  p.speedBounds.Max,
		MaxTorqueFeature: p.torqueBounds.Max,
	}
}

// CurrentTimeStep returns the current timestep of the environment
func (p *base) CurrentTimeStep() ts.TimeStep {
	return p.lastStep
}

// Reset resets the environment, begins a new episode, and returns the
// first timestep of the new episode
func (p *base) Reset() (ts.TimeStep, error) {
	state := p.Start()
	if err := validateState(state, p.angleBounds, p.speedBounds); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	startStep := ts.New(ts.First, 0, p.discount, state, 0)
	p.lastStep = startStep

	return startStep, nil
}

// nextState computes the next state of the environment given an amount
// of torque to apply to the fixed base of the pendulum. The torque is
// first clipped to the environment's torque bounds.
func (p *base) nextState(torque float64) *mat.VecDense {
	obs := p.lastStep.Observation
	th, thdot := obs.AtVec(0), obs.AtVec(1)

	torque = floatutils.ClipInterval(torque, p.torqueBounds)

	newthdot := thdot + (-3*p.gravity/(2*p.length)*math.Sin(th+math.Pi)+
		3.0/(p.mass*math.Pow(p.length, 2))*torque)*p.dt

	newth := th + (newthdot * p.dt)

	// Clip the angular velocity and normalize the angle
	newthdot = floatutils.ClipInterval(newthdot, p.speedBounds)
	newth = floatutils.WrapInterval(newth, p.angleBounds)

	return mat.NewVecDense(2, []float64{newth, newthdot})
}

// update updates the base environment by constructing a new current
// TimeStep for the environment from the argument action and next state
func (p *base) update(action, newState *mat.VecDense) (ts.TimeStep, bool) {
	reward := p.GetReward(p.lastStep.Observation, action, newState)
	nextStep := ts.New(ts.Mid, reward, p.discount, newState,
		p.lastStep.Number+1)

	// Check if the step is the last in the episode and adjust step
	// type if necessary
	p.End(&nextStep)

	p.lastStep = nextStep
	return nextStep, nextStep.Last()
}

// DiscountSpec returns the discount specification of the environment
func (p *base) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{p.discount})
	upperBound := mat.NewVecDense(1, []float64{p.discount})

	return environment.NewSpec(shape, environment.Discount, lowerBound,
		upperBound, environment.Continuous)
}

// ObservationSpec returns the observation specification of the
// environment
func (p *base) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)

	minObs := []float64{p.angleBounds.Min, p.speedBounds.Min}
	lowerBound := mat.NewVecDense(ObservationDims, minObs)

	maxObs := []float64{p.angleBounds.Max, p.speedBounds.Max}
	upperBound := mat.NewVecDense(ObservationDims, maxObs)

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Continuous)
}

// String converts the environment to a string representation
func (p *base) String() string {
	str := "Pendulum  |  theta: %v  |  theta dot: %v\n"
	theta := p.lastStep.Observation.AtVec(0)
	thetadot := p.lastStep.Observation.AtVec(1)

	return fmt.Sprintf(str, theta, thetadot)
}

// Render renders the current timestep to the terminal
func (p *base) Render() {
	angle := p.lastStep.Observation.AtVec(0)
	var frame string

	if angle > -math.Pi/8 && angle < math.Pi/8 {
		frame = "  | \n  ."
	} else if angle > -math.Pi/8 && angle < (3*math.Pi/8) {
		frame = "   / \n  ."
	} else if angle >= (3*math.Pi/8) && angle < (5*math.Pi/8) {
		frame = "  .--\n"
	} else if angle >= (5*math.Pi/8) && angle < (7*math.Pi/8) {
		frame = "  . \n   \\"
	} else if angle >= (7*math.Pi/8) && angle < (9*math.Pi/8) {
		frame = "  . \n  |"
	} else if angle > (-9*math.Pi/8) && angle <= (-7*math.Pi/8) {
		frame = "  . \n  |"
	} else if angle > (-7*math.Pi/8) && angle <= (-5*math.Pi/8) {
		frame = "  . \n/"
	} else if angle > (-5*math.Pi/8) && angle <= (-3*math.Pi/8) {
		frame = "--.\n"
	} else if angle > (-3*math.Pi/8) && angle <= (-math.Pi/8) {
		frame = "\\ \n  ."
	}
	os.Stdout.WriteString("\x1b[3;J\x1b[H\x1b[2J")
	fmt.Printf("\n\n%s\n\n", frame)
}

// validateState validates the state to ensure that the angle and
// angular velocity are within the environmental limits
func validateState(obs mat.Vector, angleBounds, speedBounds r1.Interval) error {
	if l := obs.Len(); l != ObservationDims {
		return fmt.Errorf("illegal state length \n\twant(%v) \n\thave(%v)",
			ObservationDims, l)
	}

	thWithinBounds := obs.AtVec(0) <= angleBounds.Max &&
		obs.AtVec(0) >= angleBounds.Min
	if !thWithinBounds {
		return fmt.Errorf("theta %v is not within bounds %v", obs.AtVec(0),
			angleBounds)
	}

	thdotWithinBounds := obs.AtVec(1) <= speedBounds.Max &&
		obs.AtVec(1) >= speedBounds.Min
	if !thdotWithinBounds {
		return fmt.Errorf("theta dot %v is not within bounds %v",
			obs.AtVec(1), speedBounds)
	}
	return nil
}
