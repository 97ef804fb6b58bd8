package timestep

import "gonum.org/v1/gonum/mat"

// Transition packages together the information about a single
// environmental transition: the state, the action taken in that state,
// the resulting reward, discount, and next state, and the action taken
// in the next state.
type Transition struct {
	State      *mat.VecDense
	Action     *mat.VecDense
	Reward     float64
	Discount   float64
	NextState  *mat.VecDense
	NextAction *mat.VecDense
}

// NewTransition returns the transition between two adjacent timesteps,
// given the actions selected at each
func NewTransition(step TimeStep, action *mat.VecDense, nextStep TimeStep,
	nextAction *mat.VecDense) Transition {
	return Transition{
		State:      step.Observation,
		Action:     action,
		Reward:     nextStep.Reward,
		Discount:   nextStep.Discount,
		NextState:  nextStep.Observation,
		NextAction: nextAction,
	}
}
