// Package acrobot implements the classic control environment Acrobot.
// In this environment, a double hinged and double linked pendulum is
// attached to a single actuated fixed base. Torque can be applied to
// the base to swing the double pendulum (acrobot) around.
//
// The physical parameters of the two links are exposed as a context,
// so that the same environment can be run under many different
// physical configurations. The context features are listed as
// constants in this package.
package acrobot

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distuv"

	env "github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
	"github.com/samuelfneumann/gocarl/utils/floatutils"
)

// dynamicsType determines whether the dynamics of the environment
// follows those defined in the NeurIPS paper or the RL book.
type dynamicsType bool

const (
	// Dynamics of environment is consistent with RL book
	book dynamicsType = true

	// Dynamics of environment is consistent with NeurIPS paper
	nips dynamicsType = false
)

const (
	dt float64 = 0.2

	// Physical constants
	LinkLength1 float64 = 1.0 // Metres, length of link 1
	LinkLength2 float64 = 1.0 // Metres, length of link 2
	LinkMass1   float64 = 1.0 // Kg, mass of link 1
	LinkMass2   float64 = 1.0 // Kg, mass of link 2
	LinkCOMPos1 float64 = 0.5 // Metres, centre of mass link 1
	LinkCOMPos2 float64 = 0.5 // Metres, centre of mass link 2
	LinkMOI     float64 = 1.0 // Moments of inertia for both links
	MaxVel1     float64 = 4 * math.Pi
	MinVel1     float64 = -MaxVel1
	MaxVel2     float64 = 9 * math.Pi
	MinVel2     float64 = -MaxVel2
	Gravity     float64 = 9.8
	MaxAngle    float64 = math.Pi
	MinAngle    float64 = -MaxAngle
	MinTorque   float64 = -1.0
	MaxTorque   float64 = 1.0

	// TorqueNoiseMax is the default half width of the uniform noise
	// added to applied torques. A value of 0 disables torque noise.
	TorqueNoiseMax float64 = 0.0

	// Environment constants
	ObservationDims     int     = 4
	ActionDims          int     = 1
	MinContinuousAction float64 = MinTorque
	MaxContinuousAction float64 = MaxTorque
	MinDiscreteAction   int     = 0 // Applies MinTorque
	MaxDiscreteAction   int     = 2 // Applies MaxTorque

	BookOrNips dynamicsType = book
)

// Context features of Acrobot
const (
	LinkLength1Feature  string = "link_length_1"
	LinkLength2Feature  string = "link_length_2"
	LinkMass1Feature    string = "link_mass_1"
	LinkMass2Feature    string = "link_mass_2"
	LinkCOM1Feature     string = "link_com_1"
	LinkCOM2Feature     string = "link_com_2"
	LinkMOIFeature      string = "link_moi"
	MaxVelocity1Feature string = "max_velocity_1"
	MaxVelocity2Feature string = "max_velocity_2"
	TorqueNoiseFeature  string = "torque_noise_max"
)

// base implements the classic control environment Acrobot.
//
// State feature vectors are 4-dimensional and consist of the angle
// of the first pendulum link measured from the negative y-axis,
// the angle of the second pendulum link measured from the negative
// y-axis, the angular velocity of the first link, and the angular
// velocity of the second link. That is, a feature vector has the
// form:
//
//	v ⃗	= [θ1, θ2, θ̇1, θ̇2], where:
//	θ1 = angle of the first link measured from the negative y-axis
//	θ2 = angle of the second link measured from the negative y-axis
//	θ̇1 = angular velocity of the first link
//	θ̇2 = angular velocity of the second link
//
// State features are bounded. Angles are bounded to be between [-π, π]
// and angular velocities are bounded by the max_velocity_1 and
// max_velocity_2 context features. Angles outside of [-π, π] are
// wrapped around to stay within this range, and angular velocity is
// clipped to stay within the legal range.
//
// base does not implement the envcontext.Env interface, but is
// embedded in Discrete and Continuous which do implement this
// interface. This struct is used to share code between discrete action
// and continuous action versions of the acrobot environment.
type base struct {
	env.Task
	lastStep        ts.TimeStep
	discount        float64
	angleBounds     r1.Interval
	velocity1Bounds r1.Interval
	velocity2Bounds r1.Interval

	linkLength1    float64
	linkLength2    float64
	linkMass1      float64
	linkMass2      float64
	linkCOM1       float64
	linkCOM2       float64
	linkMOI        float64
	torqueNoiseMax float64
	torqueNoise    distuv.Uniform
}

// validateState checks if the state is valid and returns an error
// denoting whether the state is a valid state or not.
func validateState(state *mat.VecDense, angleBounds, vel1Bounds,
	vel2Bounds r1.Interval) error {
	if l := state.Len(); l != 4 {
		return fmt.Errorf("illegal state length \n\twant(4) \n\thave(%v)", l)
	}
	if state.AtVec(0) < angleBounds.Min || state.AtVec(0) > angleBounds.Max {
		return fmt.Errorf("angle 1 out of bounds")
	}
	if state.AtVec(1) < angleBounds.Min || state.AtVec(1) > angleBounds.Max {
		return fmt.Errorf("angle 2 out of bounds")
	}
	if state.AtVec(2) < vel1Bounds.Min || state.AtVec(2) > vel1Bounds.Max {
		return fmt.Errorf("angular velocity 1 out of bounds")
	}
	if state.AtVec(3) < vel2Bounds.Min || state.AtVec(3) > vel2Bounds.Max {
		return fmt.Errorf("angular velocity 2 out of bounds")
	}
	return nil
}

// newBase returns a new base acrobot environment. The seed determines
// the stream of torque noise drawn when the torque_noise_max context
// feature is positive.
func newBase(t env.Task, discount float64, seed uint64) (*base,
	ts.TimeStep, error) {
	state := t.Start()

	firstStep := ts.New(ts.First, 0.0, discount, state, 0)

	src := rand.NewSource(seed)
	acrobot := base{
		Task:            t,
		lastStep:        firstStep,
		discount:        discount,
		angleBounds:     r1.Interval{Min: MinAngle, Max: MaxAngle},
		velocity1Bounds: r1.Interval{Min: MinVel1, Max: MaxVel1},
		velocity2Bounds: r1.Interval{Min: MinVel2, Max: MaxVel2},
		linkLength1:     LinkLength1,
		linkLength2:     LinkLength2,
		linkMass1:       LinkMass1,
		linkMass2:       LinkMass2,
		linkCOM1:        LinkCOMPos1,
		linkCOM2:        LinkCOMPos2,
		linkMOI:         LinkMOI,
		torqueNoiseMax:  TorqueNoiseMax,
		torqueNoise:     distuv.Uniform{Min: -1.0, Max: 1.0, Src: src},
	}

	// Ensure start state is valid
	err := validateState(state, acrobot.angleBounds, acrobot.velocity1Bounds,
		acrobot.velocity2Bounds)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newBase: %v", err)
	}

	return &acrobot, firstStep, nil
}

// ContextSpace returns the space of legal contexts for Acrobot
func (a *base) ContextSpace() envcontext.Space {
	return envcontext.Space{
		LinkLength1Feature: envcontext.NewFeature(1e-6, 10.0,
			envcontext.Continuous),
		LinkLength2Feature: envcontext.NewFeature(1e-6, 10.0,
			envcontext.Continuous),
		LinkMass1Feature: envcontext.NewFeature(1e-6, 10.0,
			envcontext.Continuous),
		LinkMass2Feature: envcontext.NewFeature(1e-6, 10.0,
			envcontext.Continuous),
		LinkCOM1Feature: envcontext.NewFeature(1e-6, 1.0,
			envcontext.Continuous),
		LinkCOM2Feature: envcontext.NewFeature(1e-6, 1.0,
			envcontext.Continuous),
		LinkMOIFeature: envcontext.NewFeature(1e-6, 10.0,
			envcontext.Continuous),
		MaxVelocity1Feature: envcontext.NewFeature(1e-6, math.Inf(1),
			envcontext.Continuous),
		MaxVelocity2Feature: envcontext.NewFeature(1e-6, math.Inf(1),
			envcontext.Continuous),
		TorqueNoiseFeature: envcontext.NewFeature(0.0, 1.0,
			envcontext.Continuous),
	}
}

// DefaultContext returns the context the environment runs when no
// other context has been set
func (a *base) DefaultContext() envcontext.Context {
	return envcontext.Context{
		LinkLength1Feature:  LinkLength1,
		LinkLength2Feature:  LinkLength2,
		LinkMass1Feature:    LinkMass1,
		LinkMass2Feature:    LinkMass2,
		LinkCOM1Feature:     LinkCOMPos1,
		LinkCOM2Feature:     LinkCOMPos2,
		LinkMOIFeature:      LinkMOI,
		MaxVelocity1Feature: MaxVel1,
		MaxVelocity2Feature: MaxVel2,
		TorqueNoiseFeature:  TorqueNoiseMax,
	}
}

// Context returns the context the environment is currently running
func (a *base) Context() envcontext.Context {
	return envcontext.Context{
		LinkLength1Feature:  a.linkLength1,
		LinkLength2Feature:  a.linkLength2,
		LinkMass1Feature:    a.linkMass1,
		LinkMass2Feature:    a.linkMass2,
		LinkCOM1Feature:     a.linkCOM1,
		LinkCOM2Feature:     a.linkCOM2,
		LinkMOIFeature:      a.linkMOI,
		MaxVelocity1Feature: a.velocity1Bounds.Max,
		MaxVelocity2Feature: a.velocity2Bounds.Max,
		TorqueNoiseFeature:  a.torqueNoiseMax,
	}
}

// SetContext sets the context the environment runs. Features missing
// from the argument context keep their current values. The new
// physical parameters take effect immediately. SetContext returns an
// error if the merged context is illegal, in which case the
// environment is unchanged.
func (a *base) SetContext(c envcontext.Context) error {
	full := c.Merge(a.Context())
	if err := a.ContextSpace().Validate(full); err != nil {
		return fmt.Errorf("setContext: %v", err)
	}

	a.linkLength1 = full[LinkLength1Feature]
	a.linkLength2 = full[LinkLength2Feature]
	a.linkMass1 = full[LinkMass1Feature]
	a.linkMass2 = full[LinkMass2Feature]
	a.linkCOM1 = full[LinkCOM1Feature]
	a.linkCOM2 = full[LinkCOM2Feature]
	a.linkMOI = full[LinkMOIFeature]
	a.velocity1Bounds = r1.Interval{
		Min: -full[MaxVelocity1Feature],
		Max: full[MaxVelocity1Feature],
	}
	a.velocity2Bounds = r1.Interval{
		Min: -full[MaxVelocity2Feature],
		Max: full[MaxVelocity2Feature],
	}
	a.torqueNoiseMax = full[TorqueNoiseFeature]
	return nil
}

// nextState returns the next state of the environment given the
// torque to apply to the fixed base of the acrobot.
func (a *base) nextState(torque float64) *mat.VecDense {
	s := a.CurrentTimeStep().Observation

	// Continuous action between [MinTorque, MaxTorque]
	torque = floatutils.Clip(torque, MinTorque, MaxTorque)

	if a.torqueNoiseMax > 0 {
		torque += a.torqueNoise.Rand() * a.torqueNoiseMax
	}

	sAugmented := mat.NewVecDense(s.Len()+1, nil)
	num := sAugmented.CopyVec(s)
	if num != s.Len() {
		panic("step: wrong number of state elements copied")
	}
	sAugmented.SetVec(sAugmented.Len()-1, torque)

	integrated := rk4(a.dsDt, sAugmented, []float64{0.0, dt})
	r, c := integrated.Dims()
	if c != 5 {
		panic("step: integration returned more than 5 components")
	}
	ns := integrated.RowView(r-1).(*mat.VecDense).SliceVec(0,
		c-1).(*mat.VecDense)

	// Ensure state stays in an acceptable range
	ns.SetVec(0, floatutils.WrapInterval(ns.AtVec(0), a.angleBounds))
	ns.SetVec(1, floatutils.WrapInterval(ns.AtVec(1), a.angleBounds))
	ns.SetVec(2, floatutils.ClipInterval(ns.AtVec(2), a.velocity1Bounds))
	ns.SetVec(3, floatutils.ClipInterval(ns.AtVec(3), a.velocity2Bounds))

	return ns
}

// update updates the base environment by constructing a new current
// TimeStep for the environment from the argument action and next
// state newState.
//
// This function is used so that the discrete and continuous action
// versions of Acrobot can be dealt with uniformly. Each calculates
// the torque to apply and calls this struct's nextState() function.
// The result of that function is then passed to this function as
// well as the action taken, which is needed to calculate the reward.
func (a *base) update(action, newState *mat.VecDense) (ts.TimeStep, bool) {
	// Create the new timestep
	reward := a.GetReward(a.CurrentTimeStep().Observation, action, newState)
	nextStep := ts.New(ts.Mid, reward, a.discount, newState,
		a.CurrentTimeStep().Number+1)

	// Check if the step is the last in the episode and adjust step type
	// if necessary
	a.End(&nextStep)

	a.lastStep = nextStep
	return nextStep, nextStep.Last()
}

// CurrentTimeStep returns the current timestep of the environment
func (a *base) CurrentTimeStep() ts.TimeStep {
	return a.lastStep
}

// Reset resets the environment, begins a new episode, and returns
// the first timestep of the new episode
func (a *base) Reset() (ts.TimeStep, error) {
	state := a.Start()
	err := validateState(state, a.angleBounds, a.velocity1Bounds,
		a.velocity2Bounds)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	startStep := ts.New(ts.First, 0, a.discount, state, 0)
	a.lastStep = startStep

	return startStep, nil
}

// ObservationSpec returns the observation specification of the
// environment
func (a *base) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)
	lowerBound := mat.NewVecDense(ObservationDims, []float64{
		a.angleBounds.Min, a.angleBounds.Min, a.velocity1Bounds.Min,
		a.velocity2Bounds.Min})
	upperBound := mat.NewVecDense(ObservationDims, []float64{
		a.angleBounds.Max, a.angleBounds.Max, a.velocity1Bounds.Max,
		a.velocity2Bounds.Max})

	return env.NewSpec(shape, env.Observation, lowerBound,
		upperBound, env.Continuous)
}

// DiscountSpec returns the discounting specification of the environment
func (a *base) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	bounds := mat.NewVecDense(1, []float64{a.discount})

	return env.NewSpec(shape, env.Discount, bounds, bounds,
		env.Continuous)
}

// String implements the fmt.Stringer interface
func (a *base) String() string {
	state := a.CurrentTimeStep().Observation

	return fmt.Sprintf("Acrobot  |  θ1: %v  |  θ2: %v  |  θ̇1: %v  |  θ̇2: %v",
		state.AtVec(0), state.AtVec(1), state.AtVec(2), state.AtVec(3))
}

// dsDt calculates ds/dt for the environment, where s = the current
// environment state augmented with the applied torque as its last
// component
func (a *base) dsDt(sAugmented *mat.VecDense, t float64) []float64 {
	m1 := a.linkMass1
	m2 := a.linkMass2
	l1 := a.linkLength1
	lc1 := a.linkCOM1
	lc2 := a.linkCOM2
	i1 := a.linkMOI
	i2 := a.linkMOI
	g := Gravity

	s := sAugmented.SliceVec(0, sAugmented.Len()-1)
	torque := sAugmented.AtVec(sAugmented.Len() - 1)

	theta1 := s.AtVec(0)
	theta2 := s.AtVec(1)
	dtheta1 := s.AtVec(2)
	dtheta2 := s.AtVec(3)

	d1 := (m1*math.Pow(lc1, 2) +
		m2*(math.Pow(l1, 2)+math.Pow(lc2, 2)+2*l1*lc2*math.Cos(theta2)) +
		i1 + i2)

	d2 := m2*(math.Pow(lc2, 2)+l1*lc2*math.Cos(theta2)) + i2

	phi2 := m2 * lc2 * g * math.Cos(theta1+theta2-(math.Pi/2.0))
	phi1 := (-m2*l1*lc2*math.Pow(dtheta2, 2)*math.Sin(theta2) -
		2*m2*l1*lc2*dtheta2*dtheta1*math.Sin(theta2) +
		(m1*lc1+m2*l1)*g*math.Cos(theta1-(math.Pi/2.0)) +
		phi2)

	var ddtheta2 float64
	if BookOrNips == nips {
		ddtheta2 = (torque + d2/d1*phi1 - phi2) / (m2*math.Pow(lc2, 2) +
			i2 - math.Pow(d2, 2)/d1)
	} else {
		ddtheta2 = (torque + d2/d1*phi1 - m2*l1*lc2*math.Pow(dtheta1, 2)*
			math.Sin(theta2) - phi2) /
			(m2*math.Pow(lc2, 2) + i2 - math.Pow(d2, 2)/d1)
	}
	ddtheta1 := -(d2*ddtheta2 + phi1) / d1

	// Last component is dtorque/dt == 0.0
	return []float64{dtheta1, dtheta2, ddtheta1, ddtheta2, 0.0}
}

// rk4 integrates an n-dimensional system of ODEs using 4-th order
// Runge-Kutta.
//
// Adapted from OpenAI Gym Acrobot:
// https://github.com/openai/gym/blob/7c9ae6d14087fe50714d59bc36b1797560
// 961710/gym/envs/classic_control/acrobot.py
func rk4(derivs func(*mat.VecDense, float64) []float64, y0 *mat.VecDense,
	t []float64) *mat.Dense {
	Ny := y0.Len()

	var yout *mat.Dense
	if Ny == 1 {
		yout = mat.NewDense(len(t), 1, nil)
	} else {
		yout = mat.NewDense(len(t), Ny, nil)
	}

	yout.SetRow(0, y0.RawVector().Data)

	for i := 0; i < len(t)-1; i++ {
		thist := t[i]
		dt := t[i+1] - thist // shadowing package constant
		dt2 := dt / 2.0

		y0 := yout.RowView(i).(*mat.VecDense) // shadowing input y0

		dsdt := derivs(y0, thist)
		k1 := mat.NewVecDense(len(dsdt), dsdt)

		input := mat.NewVecDense(len(dsdt), nil)
		input.AddScaledVec(y0, dt2, k1)
		dsdt = derivs(input, thist+dt2)
		k2 := mat.NewVecDense(len(dsdt), dsdt)

		input.AddScaledVec(y0, dt2, k2)
		dsdt = derivs(input, thist+dt2)
		k3 := mat.NewVecDense(len(dsdt), dsdt)

		input.AddScaledVec(y0, dt, k3)
		dsdt = derivs(input, thist+dt)
		k4 := mat.NewVecDense(len(dsdt), dsdt)

		row := mat.NewVecDense(k1.Len(), nil)
		row.CopyVec(k1)
		row.AddScaledVec(row, 2.0, k2)
		row.AddScaledVec(row, 2.0, k3)
		row.AddVec(row, k4)
		row.AddScaledVec(y0, dt/6.0, row)

		yout.SetRow(i+1, row.RawVector().Data)
	}
	return yout
}
