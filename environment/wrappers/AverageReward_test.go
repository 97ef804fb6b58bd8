package wrappers

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/timestep"
)

// constErrorer returns a fixed differential TD error for every
// transition
type constErrorer struct {
	tdError float64
}

func (c constErrorer) TdError(t timestep.Transition) float64 {
	return c.tdError
}

// TestAverageRewardDifferentialReward ensures that rewards are
// converted to differential rewards using the environmental reward as
// the average reward update target
func TestAverageRewardDifferentialReward(t *testing.T) {
	raw := newPendulum(t)
	if _, err := raw.Reset(); err != nil {
		t.Fatalf("could not reset: %v", err)
	}

	learningRate := 0.5
	wrapped, firstStep, err := NewAverageReward(newPendulum(t), 0.0,
		learningRate, false)
	if err != nil {
		t.Fatalf("could not create wrapper: %v", err)
	}
	if firstStep.Discount != 1.0 {
		t.Errorf("first step is discounted \n\twant(1.0) \n\thave(%v)",
			firstStep.Discount)
	}

	// Both environments start pinned to the same state and receive the
	// same actions, so the raw environment supplies the undifferenced
	// rewards the wrapper is expected to shift
	action := mat.NewVecDense(1, []float64{0.0})
	avgReward, lastReward := 0.0, 0.0
	for i := 0; i < 5; i++ {
		rawStep, _, err := raw.Step(action)
		if err != nil {
			t.Fatalf("could not step: %v", err)
		}
		step, _, err := wrapped.Step(action)
		if err != nil {
			t.Fatalf("could not step: %v", err)
		}

		avgReward += learningRate * lastReward
		want := rawStep.Reward - avgReward
		if math.Abs(step.Reward-want) > 1e-12 {
			t.Errorf("wrong differential reward on step %v \n\twant(%v) "+
				"\n\thave(%v)", i, want, step.Reward)
		}
		if step.Discount != 1.0 {
			t.Errorf("step %v is discounted \n\twant(1.0) \n\thave(%v)", i,
				step.Discount)
		}

		lastReward = step.Reward
	}
}

// TestAverageRewardTdErrorTarget ensures that a registered TdErrorer
// supplies the average reward update target and that stepping without
// one is an error
func TestAverageRewardTdErrorTarget(t *testing.T) {
	raw := newPendulum(t)
	if _, err := raw.Reset(); err != nil {
		t.Fatalf("could not reset: %v", err)
	}

	tdError := 2.0
	learningRate := 0.5
	wrapped, _, err := NewAverageReward(newPendulum(t), 0.0, learningRate,
		true)
	if err != nil {
		t.Fatalf("could not create wrapper: %v", err)
	}

	action := mat.NewVecDense(1, []float64{0.0})
	if _, _, err := wrapped.Step(action); err == nil {
		t.Fatal("stepping without a registered TdErrorer should error")
	}

	wrapped.Register(constErrorer{tdError})

	// The first transition follows a First timestep, so the update
	// falls back to the environmental reward (zero on a First step);
	// every later update uses the registered TD error
	avgReward := 0.0
	for i := 0; i < 3; i++ {
		rawStep, _, err := raw.Step(action)
		if err != nil {
			t.Fatalf("could not step: %v", err)
		}
		step, _, err := wrapped.Step(action)
		if err != nil {
			t.Fatalf("could not step: %v", err)
		}

		if i > 0 {
			avgReward += learningRate * tdError
		}
		want := rawStep.Reward - avgReward
		if math.Abs(step.Reward-want) > 1e-12 {
			t.Errorf("wrong differential reward on step %v \n\twant(%v) "+
				"\n\thave(%v)", i, want, step.Reward)
		}
	}
}
