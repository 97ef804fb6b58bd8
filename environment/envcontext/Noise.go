package envcontext

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Noise perturbs context feature values with Gaussian noise whose
// standard deviation is a fixed percentage of each value's magnitude.
// Categorical features are never perturbed, and zero-valued features
// are left unchanged since their noise scale is zero.
type Noise struct {
	stdPct float64
	dist   distuv.Normal
}

// NewNoise returns a new Noise which perturbs each feature value v by
// a draw from N(0, stdPct * |v|)
func NewNoise(stdPct float64, seed uint64) *Noise {
	if stdPct < 0 {
		panic(fmt.Sprintf("newNoise: negative standard deviation "+
			"percentage %v", stdPct))
	}

	source := rand.NewSource(seed)
	return &Noise{
		stdPct: stdPct,
		dist:   distuv.Normal{Mu: 0.0, Sigma: 1.0, Src: source},
	}
}

// Apply returns a copy of the context with every non-categorical
// feature perturbed. The space determines which features are
// categorical; features unknown to the space are left unchanged.
func (n *Noise) Apply(c Context, s Space) Context {
	return n.perturb(c, s, nil)
}

// ApplyTo returns a copy of the context in which only the listed
// features are perturbed. Categorical features are excluded even when
// listed.
func (n *Noise) ApplyTo(c Context, s Space, features []string) Context {
	whitelist := make(map[string]bool, len(features))
	for _, name := range features {
		whitelist[name] = true
	}
	return n.perturb(c, s, whitelist)
}

func (n *Noise) perturb(c Context, s Space, whitelist map[string]bool) Context {
	noisy := c.Clone()

	for _, name := range c.Keys() {
		if whitelist != nil && !whitelist[name] {
			continue
		}

		feature, ok := s[name]
		if !ok || feature.Kind == Categorical {
			continue
		}

		value := c[name]
		if value == 0.0 {
			continue
		}

		noisy[name] = value + n.dist.Rand()*n.stdPct*math.Abs(value)
	}
	return noisy
}
