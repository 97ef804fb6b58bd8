// Package envconfig provides configuration structs for configuring
// contextual environments with default physical parameters and tasks.
// Environment configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"

	"github.com/samuelfneumann/gomaze"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/box2d/lunarlander"
	"github.com/samuelfneumann/gocarl/environment/classiccontrol/acrobot"
	"github.com/samuelfneumann/gocarl/environment/classiccontrol/cartpole"
	"github.com/samuelfneumann/gocarl/environment/classiccontrol/mountaincar"
	"github.com/samuelfneumann/gocarl/environment/classiccontrol/pendulum"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	"github.com/samuelfneumann/gocarl/environment/gridworld"
	"github.com/samuelfneumann/gocarl/environment/gym"
	"github.com/samuelfneumann/gocarl/environment/maze"
	"github.com/samuelfneumann/gocarl/environment/wrappers"
	ts "github.com/samuelfneumann/gocarl/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	MountainCar EnvName = "MountainCar"
	Pendulum    EnvName = "Pendulum"
	Cartpole    EnvName = "Cartpole"
	Acrobot     EnvName = "Acrobot"
	LunarLander EnvName = "LunarLander"
	GridWorld   EnvName = "GridWorld"
	Gym         EnvName = "Gym"
)

// TaskName stores the tasks that can be configured with this package.
// Note that not all tasks can be used with all environments. The tasks
// that can be used with each environment are as follows:
//
//	Environment			Task
//	MountainCar			Goal
//	Cartpole			Balance
//	Pendulum			SwingUp
//	Acrobot				SwingUp
//	LunarLander			Land
//	GridWorld			Goal
//	Gym					default task of the named Gym environment
type TaskName string

// Tasks available for configuration
const (
	Goal    TaskName = "Goal"
	SwingUp TaskName = "SwingUp"
	Balance TaskName = "Balance"
	Land    TaskName = "Land"
)

// InstanceMode describes how the active context of an episode is
// selected from the registered contexts
type InstanceMode string

// Instance modes available for configuration
const (
	// RoundRobin cycles through contexts in sorted id order
	RoundRobin InstanceMode = "rr"

	// Random selects a context uniformly at random on every episode
	Random InstanceMode = "random"
)

// Config implements a specific configuration of a specific contextual
// environment and specific task. Not all environments can have all
// tasks.
//
// The Contexts field holds the named contexts the environment cycles
// through, each of which may assign values to any subset of the
// environment's context space. An empty Contexts field runs the
// environment's default context on every episode. The InstanceMode
// field selects how the next episode's context is chosen, and a
// positive NoiseStdPct perturbs each selected context with Gaussian
// noise whose standard deviation is NoiseStdPct of each feature value.
//
// For Gym environments, the GymName field names the OpenAI Gym
// environment to create, and GymSpace and GymDefaults describe the
// Python attributes exposed as context features.
type Config struct {
	Environment       EnvName
	Task              TaskName
	ContinuousActions bool
	EpisodeCutoff     uint
	Discount          float64

	GymName     string
	GymSpace    envcontext.Space
	GymDefaults envcontext.Context

	Contexts        map[string]envcontext.Context
	InstanceMode    InstanceMode
	NoiseStdPct     float64
	HideContext     bool
	VisibleFeatures []string
	Scale           wrappers.ScaleMode
}

// NewConfig returns a new environment Config running the argument
// contexts with the argument instance mode. Context noise, hiding,
// visibility, and scaling take their zero values and can be set on the
// returned Config.
func NewConfig(envName EnvName, taskName TaskName, continuousActions bool,
	episodeCutoff uint, discount float64,
	contexts map[string]envcontext.Context, mode InstanceMode) Config {
	return Config{
		Environment:       envName,
		Task:              taskName,
		ContinuousActions: continuousActions,
		EpisodeCutoff:     episodeCutoff,
		Discount:          discount,
		Contexts:          contexts,
		InstanceMode:      mode,
	}
}

// Create returns the contextual environment described by the Config as
// well as the first timestep of the environment
func (c Config) Create(seed uint64) (*wrappers.Contextual, ts.TimeStep,
	error) {
	base, _, err := c.createBase(seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %v", err)
	}

	var selector envcontext.Selector
	switch c.InstanceMode {
	case RoundRobin, "":
		// The round-robin selector is the wrapper's default

	case Random:
		if len(c.Contexts) > 0 {
			ids := make([]string, 0, len(c.Contexts))
			for id := range c.Contexts {
				ids = append(ids, id)
			}
			selector = envcontext.NewRandom(ids, seed)
		}

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("create: no such instance "+
			"mode: %v", c.InstanceMode)
	}

	var noise *envcontext.Noise
	if c.NoiseStdPct > 0 {
		noise = envcontext.NewNoise(c.NoiseStdPct, seed)
	}

	wrapped, err := wrappers.NewContextual(base, c.Contexts, selector, noise,
		c.HideContext, c.VisibleFeatures, c.Scale)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %v", err)
	}

	return wrapped, wrapped.CurrentTimeStep(), nil
}

// createBase returns the environment the Config wraps, running its
// default context
func (c Config) createBase(seed uint64) (envcontext.Env, ts.TimeStep, error) {
	switch c.Environment {
	case MountainCar:
		return CreateMountainCar(c.ContinuousActions, c.Task,
			int(c.EpisodeCutoff), seed, c.Discount)

	case Cartpole:
		return CreateCartpole(c.ContinuousActions, c.Task,
			int(c.EpisodeCutoff), seed, c.Discount)

	case Pendulum:
		return CreatePendulum(c.ContinuousActions, c.Task,
			int(c.EpisodeCutoff), seed, c.Discount)

	case Acrobot:
		return CreateAcrobot(c.ContinuousActions, c.Task,
			int(c.EpisodeCutoff), seed, c.Discount)

	case LunarLander:
		return CreateLunarLander(c.ContinuousActions, c.Task,
			int(c.EpisodeCutoff), seed, c.Discount)

	case GridWorld:
		return CreateGridWorld(c.ContinuousActions, c.Task,
			int(c.EpisodeCutoff), seed, c.Discount)

	case Gym:
		return gym.New(c.GymName, c.GymSpace, c.GymDefaults, c.Discount,
			seed)
	}

	return nil, ts.TimeStep{}, fmt.Errorf("cannot create environment %v, "+
		"no such environment", c.Environment)
}

// CreateMountainCar is a factory for creating the MountainCar
// environment with default physical parameters and default task
// parameters.
func CreateMountainCar(continuousActions bool, taskName TaskName, cutoff int,
	seed uint64, discount float64) (envcontext.Env, ts.TimeStep, error) {
	position := r1.Interval{Min: -0.6, Max: -0.4}
	velocity := r1.Interval{Min: 0.0, Max: 0.0}

	s := env.NewUniformStarter([]r1.Interval{position, velocity}, seed)

	var task env.Task
	switch taskName {
	case Goal:
		task = mountaincar.NewGoal(s, cutoff, mountaincar.GoalPosition)

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("createMountainCar: "+
			"MountainCar environment has no task %v", taskName)
	}

	if continuousActions {
		return mountaincar.NewContinuous(task, discount)
	}
	return mountaincar.NewDiscrete(task, discount)
}

// CreateCartpole is a factory for creating the Cartpole environment
// with default physical parameters and default task parameters.
func CreateCartpole(continuousActions bool, taskName TaskName, cutoff int,
	seed uint64, discount float64) (envcontext.Env, ts.TimeStep, error) {
	bounds := r1.Interval{Min: -0.05, Max: 0.05}
	s := env.NewUniformStarter([]r1.Interval{
		bounds,
		bounds,
		bounds,
		bounds,
	}, seed)

	var task env.Task
	switch taskName {
	case Balance:
		task = cartpole.NewBalance(s, cutoff, cartpole.FailAngle)

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("createCartpole: Cartpole "+
			"environment has no task %v", taskName)
	}

	if continuousActions {
		return cartpole.NewContinuous(task, discount)
	}
	return cartpole.NewDiscrete(task, discount)
}

// CreatePendulum is a factory for creating the Pendulum environment
// with default physical parameters and default task parameters.
func CreatePendulum(continuousActions bool, taskName TaskName,
	cutoff int, seed uint64, discount float64) (envcontext.Env, ts.TimeStep,
	error) {
	angle := r1.Interval{Min: -pendulum.AngleBound, Max: pendulum.AngleBound}
	speed := r1.Interval{Min: -1.0, Max: 1.0}

	s := env.NewUniformStarter([]r1.Interval{angle, speed}, seed)

	var task env.Task
	switch taskName {
	case SwingUp:
		task = pendulum.NewSwingUp(s, cutoff)

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("createPendulum: Pendulum "+
			"environment has no task %v", taskName)
	}

	if continuousActions {
		return pendulum.NewContinuous(task, discount)
	}
	return pendulum.NewDiscrete(task, discount)
}

// CreateAcrobot is a factory for creating the Acrobot environment with
// default physical parameters and default task parameters.
func CreateAcrobot(continuousActions bool, taskName TaskName, cutoff int,
	seed uint64, discount float64) (envcontext.Env, ts.TimeStep, error) {
	bounds := r1.Interval{Min: -0.1, Max: 0.1}
	s := env.NewUniformStarter([]r1.Interval{
		bounds,
		bounds,
		bounds,
		bounds,
	}, seed)

	var task env.Task
	switch taskName {
	case SwingUp:
		task = acrobot.NewSwingUp(s, cutoff, acrobot.GoalHeight)

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("createAcrobot: Acrobot "+
			"environment has no task %v", taskName)
	}

	if continuousActions {
		return acrobot.NewContinuous(task, discount, seed)
	}
	return acrobot.NewDiscrete(task, discount, seed)
}

// CreateLunarLander is a factory for creating the LunarLander
// environment with default physical parameters and default task
// parameters.
func CreateLunarLander(continuousActions bool, taskName TaskName, cutoff int,
	seed uint64, discount float64) (envcontext.Env, ts.TimeStep, error) {
	s := env.NewUniformStarter([]r1.Interval{
		{Min: lunarlander.InitialX, Max: lunarlander.InitialX},
		{Min: lunarlander.InitialY, Max: lunarlander.InitialY},
	}, seed)

	var task env.Task
	switch taskName {
	case Land:
		task = lunarlander.NewLand(s, cutoff)

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("createLunarLander: "+
			"LunarLander environment has no task %v", taskName)
	}

	if continuousActions {
		return lunarlander.NewContinuous(task, discount, seed)
	}
	return lunarlander.NewDiscrete(task, discount, seed)
}

// CreateGridWorld is a factory for creating the GridWorld environment
// with default dimensions and default task parameters.
func CreateGridWorld(continuousActions bool, taskName TaskName, cutoff int,
	seed uint64, discount float64) (envcontext.Env, ts.TimeStep, error) {
	if continuousActions {
		return nil, ts.TimeStep{}, fmt.Errorf("createGridWorld: GridWorld " +
			"environment has discrete actions only")
	}

	s := gridworld.NewSingleStart(0, 0)

	var task env.Task
	switch taskName {
	case Goal:
		task = gridworld.NewGoal(s, -1.0, 0.0, cutoff)

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("createGridWorld: GridWorld "+
			"environment has no task %v", taskName)
	}

	return gridworld.New(task, discount)
}

// CreateMaze is a factory for creating the Maze environment with
// default dimensions. Maze environments hold a gomaze.Initer, which is
// not JSON serializable, so mazes are created through this factory
// rather than through a Config.
func CreateMaze(rows, cols, cutoff int, init gomaze.Initer,
	discount float64) (envcontext.Env, ts.TimeStep, error) {
	task := maze.NewSolve(cutoff)
	return maze.New(task, rows, cols, init, discount)
}
