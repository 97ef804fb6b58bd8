package maze

import (
	"testing"

	"github.com/samuelfneumann/gocarl/environment/envcontext"
)

// newTestMaze returns a maze environment with context bookkeeping set
// up but no GoMaze maze behind it. Building mazes draws random
// layouts, so tests exercise the context logic, which rejects illegal
// contexts before any maze is built.
func newTestMaze() *Maze {
	return &Maze{
		Task:     NewSolve(100),
		rows:     DefaultRows,
		cols:     DefaultCols,
		startRow: DefaultStartRow,
		startCol: DefaultStartCol,
		goalRow:  DefaultGoalRow,
		goalCol:  DefaultGoalCol,
		discount: 1.0,
	}
}

func TestDefaultContext(t *testing.T) {
	env := newTestMaze()

	defaults := env.DefaultContext()
	if len(defaults) != 6 {
		t.Errorf("unexpected number of context features \n\twant(%v) "+
			"\n\thave(%v)", 6, len(defaults))
	}
	if err := env.ContextSpace().Validate(defaults); err != nil {
		t.Errorf("default context is illegal: %v", err)
	}

	expected := envcontext.Context{
		RowsFeature:     float64(DefaultRows),
		ColsFeature:     float64(DefaultCols),
		StartRowFeature: float64(DefaultStartRow),
		StartColFeature: float64(DefaultStartCol),
		GoalRowFeature:  float64(DefaultGoalRow),
		GoalColFeature:  float64(DefaultGoalCol),
	}
	for name, value := range expected {
		if defaults[name] != value {
			t.Errorf("unexpected default value of %v \n\twant(%v) "+
				"\n\thave(%v)", name, value, defaults[name])
		}
	}

	current := env.Context()
	for name, value := range expected {
		if current[name] != value {
			t.Errorf("environment does not run the default context for "+
				"%v \n\twant(%v) \n\thave(%v)", name, value, current[name])
		}
	}
}

func TestSetContextIllegal(t *testing.T) {
	env := newTestMaze()

	contexts := []envcontext.Context{
		{RowsFeature: 2.5},
		{RowsFeature: 1},
		{StartRowFeature: float64(DefaultRows)},
		{GoalColFeature: float64(DefaultCols) + 3},
		{"tiles": 1.0},
	}
	for _, c := range contexts {
		if err := env.SetContext(c); err == nil {
			t.Errorf("illegal context %v was accepted", c)
		}
	}

	// Rejected contexts must leave the environment unchanged
	current := env.Context()
	for name, value := range env.DefaultContext() {
		if current[name] != value {
			t.Errorf("rejected context changed feature %v \n\twant(%v) "+
				"\n\thave(%v)", name, value, current[name])
		}
	}
}
