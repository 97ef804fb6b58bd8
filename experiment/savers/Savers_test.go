package savers

import (
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
)

// episode returns the timesteps of an episode with the argument
// rewards, one reward per step after the first
func episode(rewards []float64) []ts.TimeStep {
	obs := mat.NewVecDense(1, nil)
	steps := []ts.TimeStep{ts.New(ts.First, 0.0, 1.0, obs, 0)}

	for i, reward := range rewards {
		stepType := ts.Mid
		if i == len(rewards)-1 {
			stepType = ts.Last
		}
		steps = append(steps, ts.New(stepType, reward, 1.0, obs, i+1))
	}
	return steps
}

// TestReturn ensures that episodic returns are accumulated per episode
// and survive a save and load cycle
func TestReturn(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "return.bin")
	saver := NewReturn(filename)

	for _, rewards := range [][]float64{
		{1.0, 2.0, 3.0},
		{-1.0, -1.0},
	} {
		for _, step := range episode(rewards) {
			saver.Track(step)
		}
	}
	saver.Save()

	returns := LoadData(filename)
	expected := []float64{6.0, -2.0}
	if len(returns) != len(expected) {
		t.Fatalf("unexpected number of returns \n\twant(%v) \n\thave(%v)",
			len(expected), len(returns))
	}
	for i := range expected {
		if returns[i] != expected[i] {
			t.Errorf("unexpected return for episode %v \n\twant(%v) "+
				"\n\thave(%v)", i, expected[i], returns[i])
		}
	}
}

// TestEpisodeLength ensures that episode lengths are recorded at
// episode ends and survive a save and load cycle
func TestEpisodeLength(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "lengths.bin")
	saver := NewEpisodeLength(filename)

	for _, rewards := range [][]float64{
		{0.0, 0.0, 0.0, 0.0},
		{0.0},
	} {
		for _, step := range episode(rewards) {
			saver.Track(step)
		}
	}
	saver.Save()

	lengths := LoadEpisodeLengths(filename)
	expected := []int{4, 1}
	if len(lengths) != len(expected) {
		t.Fatalf("unexpected number of lengths \n\twant(%v) \n\thave(%v)",
			len(expected), len(lengths))
	}
	for i := range expected {
		if lengths[i] != expected[i] {
			t.Errorf("unexpected length of episode %v \n\twant(%v) "+
				"\n\thave(%v)", i, expected[i], lengths[i])
		}
	}
}

// fakeTracker implements ContextTracker with fixed values
type fakeTracker struct {
	id      string
	ctx     envcontext.Context
	episode int
	steps   int
}

func (f *fakeTracker) ActiveContext() (string, envcontext.Context) {
	return f.id, f.ctx
}

func (f *fakeTracker) Episode() int { return f.episode }

func (f *fakeTracker) TotalSteps() int { return f.steps }

// TestContext ensures that the active context is recorded once per
// episode and survives a save and load cycle
func TestContext(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "contexts.bin")

	tracker := &fakeTracker{
		id:  "heavy",
		ctx: envcontext.Context{"gravity": 19.6},
	}
	saver := NewContext(tracker, filename)

	for _, step := range episode([]float64{0.0, 0.0}) {
		saver.Track(step)
	}

	tracker.id = "light"
	tracker.ctx = envcontext.Context{"gravity": 4.9}
	tracker.episode = 1
	tracker.steps = 2
	for _, step := range episode([]float64{0.0}) {
		saver.Track(step)
	}

	saver.Save()

	records := LoadContextData(filename)
	if len(records) != 2 {
		t.Fatalf("unexpected number of records \n\twant(%v) \n\thave(%v)",
			2, len(records))
	}

	if records[0].ID != "heavy" || records[0].Episode != 0 ||
		records[0].TotalSteps != 0 {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[0].Context["gravity"] != 19.6 {
		t.Errorf("unexpected first context \n\twant(%v) \n\thave(%v)",
			19.6, records[0].Context["gravity"])
	}

	if records[1].ID != "light" || records[1].Episode != 1 ||
		records[1].TotalSteps != 2 {
		t.Errorf("unexpected second record: %+v", records[1])
	}
	if records[1].Context["gravity"] != 4.9 {
		t.Errorf("unexpected second context \n\twant(%v) \n\thave(%v)",
			4.9, records[1].Context["gravity"])
	}
}
