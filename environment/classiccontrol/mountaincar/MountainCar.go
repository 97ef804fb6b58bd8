// Package mountaincar implements the classic control environment
// "Mountain Car". In this environment, an agent controls a car in a
// valley between two hills. The car is underpowered and cannot drive
// up the hill unless it rocks back and forth from hill to hill, using
// its momentum to gradually climb higher.
//
// The physical parameters of the car and valley are exposed as a
// context, so that the same environment can be run under many
// different physical configurations. The context features are listed
// as constants in this package.
package mountaincar

import (
	"fmt"
	"math"
	"os"
	"strings"

	env "github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
	"github.com/samuelfneumann/gocarl/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

const (
	MinPosition float64 = -1.2
	MaxPosition float64 = 0.6
	MaxSpeed    float64 = 0.07
	Power       float64 = 0.0015 // Engine power
	Gravity     float64 = 0.0025

	ActionDims      int = 1
	ObservationDims int = 2

	// Discrete Actions Env
	MinDiscreteAction int = 0
	MaxDiscreteAction int = 2

	// Continuous Actions Env
	MinContinuousAction float64 = -1.0
	MaxContinuousAction float64 = 1.0
)

// Context features of Mountain Car
const (
	MinPositionFeature  string = "min_position"
	MaxPositionFeature  string = "max_position"
	MaxSpeedFeature     string = "max_speed"
	PowerFeature        string = "power"
	GravityFeature      string = "gravity"
	GoalPositionFeature string = "goal_position"
)

// Goaler describes a Task whose goal position can be read and moved.
// Tasks that implement Goaler have their goal position exposed as the
// goal_position context feature.
type Goaler interface {
	Goal() float64
	SetGoal(goalX float64)
}

// base implements the underlying Mountain Car environment. It tracks
// all the needed physical and environmental variables, but does not
// compute next states given actions. The Discrete and Continuous
// structs each embed a base environment and calculate the next states
// from actions.
//
// In Mountain Car, the environment state is continuous and consists of
// the car's x position and velocity. The x position and velocity are
// bounded by the current context, which determines the position
// bounds, maximum speed, engine power, and gravity. If the Task
// implements Goaler, the goal position is part of the context as well.
type base struct {
	env.Task
	positionBounds r1.Interval
	speedBounds    r1.Interval
	power          float64
	gravity        float64
	defaultGoal    float64
	hasGoal        bool
	lastStep       ts.TimeStep
	discount       float64
}

// newBase creates a new base environment with the argument task
func newBase(t env.Task, discount float64) (*base, ts.TimeStep, error) {
	positionBounds := r1.Interval{Min: MinPosition, Max: MaxPosition}
	speedBounds := r1.Interval{Min: -MaxSpeed, Max: MaxSpeed}

	state := t.Start()
	err := validateState(state, positionBounds, speedBounds)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newBase: %v", err)
	}

	firstStep := ts.New(ts.First, 0.0, discount, state, 0)

	mountainCar := base{
		Task:           t,
		positionBounds: positionBounds,
		speedBounds:    speedBounds,
		power:          Power,
		gravity:        Gravity,
		defaultGoal:    GoalPosition,
		lastStep:       firstStep,
		discount:       discount,
	}

	if goaler, ok := t.(Goaler); ok {
		mountainCar.hasGoal = true
		mountainCar.defaultGoal = goaler.Goal()
	}

	return &mountainCar, firstStep, nil
}

// ContextSpace returns the space of legal contexts for Mountain Car.
// The goal_position feature is present only when the environment's
// Task implements Goaler.
func (m *base) ContextSpace() envcontext.Space {
	space := envcontext.Space{
		MinPositionFeature: envcontext.NewFeature(-10.0, 0.0,
			envcontext.Continuous),
		MaxPositionFeature: envcontext.NewFeature(0.0, 10.0,
			envcontext.Continuous),
		MaxSpeedFeature: envcontext.NewFeature(1e-6, 10.0,
			envcontext.Continuous),
		PowerFeature: envcontext.NewFeature(1e-6, 1.0,
			envcontext.Continuous),
		GravityFeature: envcontext.NewFeature(0.0, 1.0,
			envcontext.Continuous),
	}
	if m.hasGoal {
		space[GoalPositionFeature] = envcontext.NewFeature(-10.0, 10.0,
			envcontext.Continuous)
	}
	return space
}

// DefaultContext returns the context the environment runs when no
// other context has been set
func (m *base) DefaultContext() envcontext.Context {
	c := envcontext.Context{
		MinPositionFeature: MinPosition,
		MaxPositionFeature: MaxPosition,
		MaxSpeedFeature:    MaxSpeed,
		PowerFeature:       Power,
		GravityFeature:     Gravity,
	}
	if m.hasGoal {
		c[GoalPositionFeature] = m.defaultGoal
	}
	return c
}

// Context returns the context the environment is currently running
func (m *base) Context() envcontext.Context {
	c := envcontext.Context{
		MinPositionFeature: m.positionBounds.Min,
		MaxPositionFeature: m.positionBounds.Max,
		MaxSpeedFeature:    m.speedBounds.Max,
		PowerFeature:       m.power,
		GravityFeature:     m.gravity,
	}
	if m.hasGoal {
		c[GoalPositionFeature] = m.Task.(Goaler).Goal()
	}
	return c
}

// SetContext sets the context the environment runs. Features missing
// from the argument context keep their current values. The new
// physical parameters take effect immediately. SetContext returns an
// error if the merged context is illegal, in which case the
// environment is unchanged.
func (m *base) SetContext(c envcontext.Context) error {
	full := c.Merge(m.Context())
	if err := m.ContextSpace().Validate(full); err != nil {
		return fmt.Errorf("setContext: %v", err)
	}
	if full[MinPositionFeature] >= full[MaxPositionFeature] {
		return fmt.Errorf("setContext: min_position (%v) not below "+
			"max_position (%v)", full[MinPositionFeature],
			full[MaxPositionFeature])
	}

	m.positionBounds = r1.Interval{
		Min: full[MinPositionFeature],
		Max: full[MaxPositionFeature],
	}
	m.speedBounds = r1.Interval{
		Min: -full[MaxSpeedFeature],
		Max: full[MaxSpeedFeature],
	}
	m.power = full[PowerFeature]
	m.gravity = full[GravityFeature]
	if m.hasGoal {
		m.Task.(Goaler).SetGoal(full[GoalPositionFeature])
	}
	return nil
}

// CurrentTimeStep returns the last TimeStep of the environment
func (m *base) CurrentTimeStep() ts.TimeStep {
	return m.lastStep
}

// ObservationSpec returns the observation specification of the
// environment
func (m *base) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)
	lowerBound := mat.NewVecDense(ObservationDims,
		[]float64{m.positionBounds.Min, m.speedBounds.Min})
	upperBound := mat.NewVecDense(ObservationDims,
		[]float64{m.positionBounds.Max, m.speedBounds.Max})

	return env.NewSpec(shape, env.Observation, lowerBound,
		upperBound, env.Continuous)
}

// DiscountSpec returns the discounting specification of the environment
func (m *base) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	bounds := mat.NewVecDense(1, []float64{m.discount})

	return env.NewSpec(shape, env.Discount, bounds, bounds,
		env.Continuous)
}

// Reset resets the environment and returns a starting state drawn from
// the environment Starter
func (m *base) Reset() (ts.TimeStep, error) {
	state := m.Start()
	err := validateState(state, m.positionBounds, m.speedBounds)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}
	startStep := ts.New(ts.First, 0, m.discount, state, 0)
	m.lastStep = startStep

	return startStep, nil
}

// nextState calculates the next state of the environment given that
// force is applied to the car
func (m *base) nextState(force float64) *mat.VecDense {
	// Get the current state
	state := m.lastStep.Observation
	position, velocity := state.AtVec(0), state.AtVec(1)

	// Update the velocity
	velocity += force*m.power - m.gravity*math.Cos(3*position)
	velocity = floatutils.ClipInterval(velocity, m.speedBounds)

	// Update the position
	position += velocity
	position = floatutils.ClipInterval(position, m.positionBounds)

	// The car stops dead when it hits the left wall
	if position <= m.positionBounds.Min && velocity < 0 {
		velocity = 0
	}

	return mat.NewVecDense(2, []float64{position, velocity})
}

// update changes the last state of the environment to newState. This
// function also checks whether or not a TimeStep is the last in the
// episode, adjusting it accordingly, and calculates the reward for the
// transition as defined by the Task. This function returns the next
// TimeStep and whether or not it is the last in the episode.
func (m *base) update(action, newState *mat.VecDense) (ts.TimeStep, bool) {
	reward := m.GetReward(m.lastStep.Observation, action, newState)
	nextStep := ts.New(ts.Mid, reward, m.discount, newState,
		m.lastStep.Number+1)

	m.End(&nextStep)

	m.lastStep = nextStep
	return nextStep, nextStep.Last()
}

// Render renders a text-based version of the environment
func (m *base) Render() {
	xIndices := 16

	// Print the hill
	var hill strings.Builder
	for i := 1; i < xIndices/2+1; i++ {
		if i == 1 {
			fmt.Fprint(&hill, calculateRow(xIndices, i)+"🏁\n")
		} else {
			fmt.Fprintln(&hill, calculateRow(xIndices, i))
		}
	}
	fmt.Fprintln(&hill, "")

	// Calculate the x position at which to draw the car
	xPos := m.lastStep.Observation.AtVec(0)
	xPos = (xPos - m.positionBounds.Min) /
		(m.positionBounds.Max - m.positionBounds.Min)
	x := int(xPos * float64(xIndices))

	// Print the position bar
	var builder strings.Builder
	for i := 0; i < xIndices; i++ {
		if i == x {
			fmt.Fprintf(&builder, "🚗")
		} else if i == xIndices-1 {
			fmt.Fprintf(&builder, "🏁")
		} else {
			fmt.Fprintf(&builder, "=")
		}
	}

	// Clear screen and draw
	os.Stdout.WriteString("\x1b[3;J\x1b[H\x1b[2J")
	fmt.Printf("%v%v\n", &hill, &builder)
}

// String returns a string representation of the environment
func (m *base) String() string {
	str := "Mountain Car  |  Position: %v  |  Speed: %v"
	state := m.lastStep.Observation
	return fmt.Sprintf(str, state.AtVec(0), state.AtVec(1))
}

// calculateRow calculates what to draw for a single row of text-based
// rendering of the hill in Mountain Car
func calculateRow(xIndices, width int) string {
	var builder strings.Builder

	// Starting "=" signs
	for i := 0; i < width; i++ {
		fmt.Fprintf(&builder, "=")
	}

	// Spaces
	for i := 0; i < xIndices-(2*width); i++ {
		fmt.Fprintf(&builder, " ")
	}

	// Ending "="
	for i := 0; i < width; i++ {
		fmt.Fprintf(&builder, "=")
	}
	return builder.String()
}

// validateState validates the state to ensure the position and speed
// are within the environmental limits
func validateState(s *mat.VecDense, positionBounds,
	speedBounds r1.Interval) error {
	position := s.AtVec(0)
	if position < positionBounds.Min || position > positionBounds.Max {
		return fmt.Errorf("illegal position %v ∉ [%v, %v]", position,
			positionBounds.Min, positionBounds.Max)
	}

	speed := s.AtVec(1)
	if speed < speedBounds.Min || speed > speedBounds.Max {
		return fmt.Errorf("illegal speed %v ∉ [%v, %v]", speed,
			speedBounds.Min, speedBounds.Max)
	}
	return nil
}
