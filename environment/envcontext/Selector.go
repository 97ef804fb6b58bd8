package envcontext

import (
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Selector chooses which of a fixed collection of named contexts
// becomes the active context of the next episode
type Selector interface {
	Select() string
}

// RoundRobin implements the Selector interface by cycling through
// context ids in sorted order, so that selection is deterministic and
// independent of map iteration order.
type RoundRobin struct {
	ids  []string
	next int
}

// NewRoundRobin returns a new RoundRobin selector over the argument
// context ids
func NewRoundRobin(ids []string) *RoundRobin {
	if len(ids) == 0 {
		panic("newRoundRobin: no context ids given")
	}

	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	return &RoundRobin{ids: sorted}
}

// Select returns the id of the next context in the cycle
func (r *RoundRobin) Select() string {
	id := r.ids[r.next]
	r.next = (r.next + 1) % len(r.ids)
	return id
}

// Random implements the Selector interface by choosing a context id
// uniformly at random at each episode
type Random struct {
	ids  []string
	dist distuv.Categorical
}

// NewRandom returns a new Random selector over the argument context
// ids
func NewRandom(ids []string, seed uint64) *Random {
	if len(ids) == 0 {
		panic("newRandom: no context ids given")
	}

	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	weights := make([]float64, len(sorted))
	for i := range weights {
		weights[i] = 1.0 / float64(len(weights))
	}

	source := rand.NewSource(seed)
	return &Random{ids: sorted, dist: distuv.NewCategorical(weights, source)}
}

// Select returns the id of a uniformly random context
func (r *Random) Select() string {
	return r.ids[int(r.dist.Rand())]
}
