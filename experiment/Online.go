package experiment

import (
	"fmt"
	"time"

	"github.com/samuelfneumann/gocarl/agent"
	env "github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/experiment/savers"
	ts "github.com/samuelfneumann/gocarl/timestep"
	"github.com/samuelfneumann/gocarl/utils/progressbar"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	agent.Agent
	maxSteps     uint
	currentSteps uint
	savers       []savers.Saver
	pbar         *progressbar.ProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many timesteps the experiment is run for, and the s parameter
// is a slice of savers.Saver which determine what data is saved.
func NewOnline(e env.Environment, a agent.Agent, steps uint,
	s ...savers.Saver) *Online {
	return &Online{
		Environment: e,
		Agent:       a,
		maxSteps:    steps,
		savers:      s,
	}
}

// Register registers a saver.Saver with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(s savers.Saver) {
	o.savers = append(o.savers, s)
}

// RunEpisode runs a single episode of the experiment and returns
// whether or not the maximum timestep limit has been reached
func (o *Online) RunEpisode() (bool, error) {
	step, err := o.Environment.Reset()
	if err != nil {
		return false, fmt.Errorf("runEpisode: could not reset "+
			"environment: %v", err)
	}
	if err := o.Agent.ObserveFirst(step); err != nil {
		return false, fmt.Errorf("runEpisode: %v", err)
	}
	o.track(step)

	// Run the episode until it ends or the step limit is reached
	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++

		// Select action, step in environment
		action := o.Agent.SelectAction(step)
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return false, fmt.Errorf("runEpisode: could not step "+
				"environment: %v", err)
		}

		// Cache the environment step in each Saver
		o.track(step)

		// Observe the timestep
		if err := o.Agent.Observe(action, step); err != nil {
			return false, fmt.Errorf("runEpisode: %v", err)
		}

		if o.pbar != nil {
			o.pbar.Increment()
		}
	}

	if step.Last() {
		o.Agent.EndEpisode()
	}

	// Return whether or not the max timestep limit has been reached
	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps, displaying the
// progress through the experiment on the terminal
func (o *Online) Run() error {
	o.pbar = progressbar.NewProgressBar(65, int(o.maxSteps), time.Second,
		false)
	o.pbar.Display()
	defer func() {
		o.pbar.Close()
		o.pbar = nil
	}()

	ended := false
	for !ended {
		var err error
		ended, err = o.RunEpisode()
		if err != nil {
			return fmt.Errorf("run: %v", err)
		}
	}
	return nil
}

// Save saves all the data cached by the Savers to disk
func (o *Online) Save() {
	for _, saver := range o.savers {
		saver.Save()
	}
}

// track tracks the current timestep by caching its data in each saver
func (o *Online) track(t ts.TimeStep) {
	for _, saver := range o.savers {
		saver.Track(t)
	}
}
