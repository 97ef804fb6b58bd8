package experiment

import (
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/agent"
	"github.com/samuelfneumann/gocarl/environment/classiccontrol/pendulum"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	"github.com/samuelfneumann/gocarl/environment/wrappers"
	"github.com/samuelfneumann/gocarl/experiment/savers"
)

// pinnedStarter always starts episodes from the same state
type pinnedStarter struct {
	state []float64
}

func (p pinnedStarter) Start() *mat.VecDense {
	state := make([]float64, len(p.state))
	copy(state, p.state)
	return mat.NewVecDense(len(state), state)
}

// newExperiment returns an Online experiment running a random agent on
// a contextual pendulum whose episodes are cut off after cutoff steps
func newExperiment(t *testing.T, cutoff int, maxSteps uint,
	s ...savers.Saver) (*Online, *wrappers.Contextual) {
	task := pendulum.NewSwingUp(pinnedStarter{[]float64{0.1, 0.0}}, cutoff)
	env, _, err := pendulum.NewContinuous(task, 0.99)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}

	contexts := map[string]envcontext.Context{
		"heavy": {pendulum.MassFeature: 2.0},
		"light": {pendulum.MassFeature: 0.5},
	}
	wrapped, err := wrappers.NewContextual(env, contexts, nil, nil, false,
		nil, wrappers.ScaleNone)
	if err != nil {
		t.Fatalf("could not create wrapper: %v", err)
	}

	random, err := agent.NewRandom(wrapped.ActionSpec(), 14)
	if err != nil {
		t.Fatalf("could not create agent: %v", err)
	}

	return NewOnline(wrapped, random, maxSteps, s...), wrapped
}

// TestOnlineRunsToStepLimit ensures that an Online experiment runs
// until the maximum timestep limit is reached and that every completed
// episode is recorded by the registered Savers
func TestOnlineRunsToStepLimit(t *testing.T) {
	dir := t.TempDir()
	returnFile := filepath.Join(dir, "returns.bin")
	lengthFile := filepath.Join(dir, "lengths.bin")

	exp, wrapped := newExperiment(t, 50, 120, savers.NewReturn(returnFile))
	exp.Register(savers.NewEpisodeLength(lengthFile))

	if err := exp.Run(); err != nil {
		t.Fatalf("could not run experiment: %v", err)
	}
	exp.Save()

	if steps := wrapped.TotalSteps(); steps != 120 {
		t.Errorf("unexpected number of steps \n\twant(%v) \n\thave(%v)",
			120, steps)
	}

	// 120 steps with episodes of 50 steps: two completed episodes and
	// one cut off by the experiment
	lengths := savers.LoadEpisodeLengths(lengthFile)
	if len(lengths) != 2 {
		t.Fatalf("unexpected number of episodes \n\twant(%v) \n\thave(%v)",
			2, len(lengths))
	}
	for i, length := range lengths {
		if length != 50 {
			t.Errorf("unexpected length of episode %v \n\twant(%v) "+
				"\n\thave(%v)", i, 50, length)
		}
	}

	returns := savers.LoadData(returnFile)
	if len(returns) != 2 {
		t.Errorf("unexpected number of returns \n\twant(%v) \n\thave(%v)",
			2, len(returns))
	}
}

// TestOnlineRecordsContexts ensures that the contextual run log has
// one record per episode with round-robin context ids
func TestOnlineRecordsContexts(t *testing.T) {
	contextFile := filepath.Join(t.TempDir(), "contexts.bin")

	exp, wrapped := newExperiment(t, 40, 100)
	exp.Register(savers.NewContext(wrapped, contextFile))

	if err := exp.Run(); err != nil {
		t.Fatalf("could not run experiment: %v", err)
	}
	exp.Save()

	// 100 steps with episodes of 40 steps: three episodes started
	records := savers.LoadContextData(contextFile)
	if len(records) != 3 {
		t.Fatalf("unexpected number of records \n\twant(%v) \n\thave(%v)",
			3, len(records))
	}

	expected := []string{"heavy", "light", "heavy"}
	for i, record := range records {
		if record.ID != expected[i] {
			t.Errorf("unexpected context for episode %v \n\twant(%v) "+
				"\n\thave(%v)", i, expected[i], record.ID)
		}
		if record.Episode != i {
			t.Errorf("unexpected episode number \n\twant(%v) \n\thave(%v)",
				i, record.Episode)
		}
		if record.TotalSteps != i*40 {
			t.Errorf("unexpected step count for episode %v \n\twant(%v) "+
				"\n\thave(%v)", i, i*40, record.TotalSteps)
		}
	}
}
