package envcontext

import (
	"fmt"
	"sort"
	"strconv"
)

// Rander is any source of random float64 values. The distribution
// types in gonum's distuv package satisfy this interface.
type Rander interface {
	Rand() float64
}

// Sampler draws whole random contexts by sampling each feature from
// its own distribution. Features without a distribution take their
// default values, and sampled values are clipped into the legal region
// of the space.
type Sampler struct {
	space    Space
	defaults Context

	// Features are sampled in sorted name order so that sampling is
	// reproducible for seeded distributions sharing a source
	names []string
	dists map[string]Rander
}

// NewSampler returns a new Sampler drawing the features named in dists
// from their respective distributions. Every such feature must exist
// in the space, and every feature of the space must have a default.
func NewSampler(space Space, defaults Context,
	dists map[string]Rander) (*Sampler, error) {
	for _, name := range space.Keys() {
		if _, ok := defaults[name]; !ok {
			return nil, fmt.Errorf("newSampler: no default value for "+
				"context feature %v", name)
		}
	}
	names := make([]string, 0, len(dists))
	for name := range dists {
		if _, ok := space[name]; !ok {
			return nil, fmt.Errorf("newSampler: unknown context feature %v",
				name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return &Sampler{
		space:    space,
		defaults: defaults.Clone(),
		names:    names,
		dists:    dists,
	}, nil
}

// Sample returns a single random context
func (s *Sampler) Sample() Context {
	c := s.defaults.Clone()
	for _, name := range s.names {
		c[name] = s.dists[name].Rand()
	}

	clipped, _ := s.space.Clip(c)
	return clipped
}

// SampleN returns n random contexts named by their index
func (s *Sampler) SampleN(n int) map[string]Context {
	contexts := make(map[string]Context, n)
	for i := 0; i < n; i++ {
		contexts[strconv.Itoa(i)] = s.Sample()
	}
	return contexts
}
