// Package agent defines the interface for agents that act in
// environments
package agent

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/timestep"
)

// Agent determines the implementation details of an agent that acts
// in an environment.
//
// An Agent selects an action on every timestep and observes the
// timesteps its actions lead to. Agents in this package do not learn;
// they drive environments so that the behaviour of the environment
// under some fixed policy can be recorded.
type Agent interface {
	// SelectAction returns the action to take in the state described
	// by the argument timestep
	SelectAction(t timestep.TimeStep) *mat.VecDense

	// ObserveFirst records the first timestep in an episode
	ObserveFirst(t timestep.TimeStep) error

	// Observe records that an action lead to some timestep
	Observe(action mat.Vector, nextObs timestep.TimeStep) error

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}
