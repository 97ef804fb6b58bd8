package wrappers

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
	"github.com/samuelfneumann/gocarl/utils/floatutils"
)

// ScaleMode determines how context feature values are scaled before
// being appended to observations
type ScaleMode string

const (
	// ScaleNone appends raw context values
	ScaleNone ScaleMode = "no"

	// ScaleByDefault divides each appended value by the value the
	// feature takes in the environment's default context
	ScaleByDefault ScaleMode = "by_default"

	// ScaleByMean divides each appended value by the mean value the
	// feature takes over all registered contexts
	ScaleByMean ScaleMode = "by_mean"
)

// Contextual wraps a context-aware environment and changes its context
// between episodes. A collection of named contexts is registered with
// the wrapper. On every call to Reset(), the wrapper selects one of the
// registered contexts, optionally perturbs it with Gaussian noise,
// clips it into the environment's context space, reconfigures the
// environment with it, and only then resets the environment. The
// selected context stays fixed until the next episode.
//
// Registered contexts may be partial. At construction, each context is
// completed with the environment's default context and validated
// against the environment's context space, so that an illegal context
// fails fast instead of at some later episode.
//
// Unless the context is hidden, the values of the visible context
// features are appended to every observation in sorted name order,
// and ObservationSpec() widens accordingly. Appended values may be
// scaled by the feature's default value or by its mean value over the
// registered contexts, which keeps features of very different
// magnitudes comparable.
//
// Contextual itself implements the environment.Environment interface,
// and is therefore itself an Environment.
type Contextual struct {
	envcontext.Env

	contexts map[string]envcontext.Context
	ids      []string
	selector envcontext.Selector
	noise    *envcontext.Noise

	hideContext bool
	visible     []string
	scale       ScaleMode
	divisors    map[string]float64

	activeID string
	active   envcontext.Context

	episode     int
	totalSteps  int
	currentStep ts.TimeStep
}

// NewContextual creates and returns a new Contextual environment
// wrapper.
//
// The contexts argument holds the named contexts to cycle through,
// each of which may assign values to any subset of the environment's
// context space. If contexts is empty, the environment runs its
// default context on every episode.
//
// The selector determines which context becomes active at each
// episode. If nil, contexts are selected round-robin in sorted id
// order. The noise argument, when non-nil, perturbs the active context
// at every episode.
//
// If hideContext is true, observations pass through unchanged.
// Otherwise the values of the features named in visibleFeatures are
// appended to every observation; a nil visibleFeatures appends every
// feature of the environment's context space.
func NewContextual(env envcontext.Env,
	contexts map[string]envcontext.Context, selector envcontext.Selector,
	noise *envcontext.Noise, hideContext bool, visibleFeatures []string,
	scale ScaleMode) (*Contextual, error) {
	space := env.ContextSpace()
	defaults := env.DefaultContext()

	// Complete each registered context with the defaults and ensure it
	// is legal before any episode runs
	merged := make(map[string]envcontext.Context, len(contexts))
	ids := make([]string, 0, len(contexts))
	for id, c := range contexts {
		full := c.Merge(defaults)
		if err := space.Validate(full); err != nil {
			return nil, fmt.Errorf("newContextual: illegal context %v: %v",
				id, err)
		}
		merged[id] = full
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if selector == nil && len(ids) > 0 {
		selector = envcontext.NewRoundRobin(ids)
	}

	if scale == "" {
		scale = ScaleNone
	}
	switch scale {
	case ScaleNone, ScaleByDefault, ScaleByMean:
	default:
		return nil, fmt.Errorf("newContextual: no such scale mode: %v", scale)
	}

	var visible []string
	if !hideContext {
		if visibleFeatures == nil {
			visible = space.Keys()
		} else {
			visible = make([]string, len(visibleFeatures))
			copy(visible, visibleFeatures)
			sort.Strings(visible)
			for _, name := range visible {
				if _, ok := space[name]; !ok {
					return nil, fmt.Errorf("newContextual: unknown visible "+
						"context feature %v", name)
				}
			}
		}
	}

	wrapper := &Contextual{
		Env:         env,
		contexts:    merged,
		ids:         ids,
		selector:    selector,
		noise:       noise,
		hideContext: hideContext,
		visible:     visible,
		scale:       scale,
		activeID:    "",
		active:      defaults.Clone(),
		episode:     -1,
	}
	wrapper.divisors = wrapper.scaleDivisors()
	wrapper.currentStep = wrapper.augment(env.CurrentTimeStep())

	return wrapper, nil
}

// scaleDivisors computes the per-feature divisor for the configured
// scale mode. Zero divisors are replaced by 1 so that zero-valued
// features pass through unscaled.
func (c *Contextual) scaleDivisors() map[string]float64 {
	divisors := make(map[string]float64, len(c.visible))

	for _, name := range c.visible {
		divisor := 1.0

		switch c.scale {
		case ScaleByDefault:
			divisor = c.Env.DefaultContext()[name]

		case ScaleByMean:
			if len(c.ids) > 0 {
				total := 0.0
				for _, id := range c.ids {
					total += c.contexts[id][name]
				}
				divisor = total / float64(len(c.ids))
			}
		}

		if divisor == 0.0 {
			divisor = 1.0
		}
		divisors[name] = divisor
	}
	return divisors
}

// nextContext runs the selection pipeline for the coming episode and
// returns the context the environment should be configured with
func (c *Contextual) nextContext() (string, envcontext.Context) {
	if len(c.ids) == 0 {
		return "", c.Env.DefaultContext()
	}

	id := c.selector.Select()
	ctx := c.contexts[id].Clone()

	if c.noise != nil {
		ctx = c.noise.Apply(ctx, c.Env.ContextSpace())
	}

	// Noise may push values out of bounds; keep the context legal
	ctx, _ = c.Env.ContextSpace().Clip(ctx)

	return id, ctx
}

// Reset selects the context of the next episode, reconfigures the
// wrapped environment with it, resets the environment, and returns the
// first timestep of the new episode
func (c *Contextual) Reset() (ts.TimeStep, error) {
	id, ctx := c.nextContext()

	if err := c.Env.SetContext(ctx); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not set context "+
			"%v: %v", id, err)
	}

	step, err := c.Env.Reset()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	c.activeID = id
	c.active = ctx
	c.episode++

	step = c.augment(step)
	c.currentStep = step

	return step, nil
}

// Step takes one environmental step given action a and returns the
// next timestep as a timestep.TimeStep and a bool indicating whether
// or not the episode has ended
func (c *Contextual) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	step, last, err := c.Env.Step(a)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %v", err)
	}
	c.totalSteps++

	step = c.augment(step)
	c.currentStep = step

	return step, last, nil
}

// CurrentTimeStep returns the current timestep of the environment,
// with the observation the wrapper produced for it
func (c *Contextual) CurrentTimeStep() ts.TimeStep {
	return c.currentStep
}

// augment appends the visible context feature values to the timestep's
// observation
func (c *Contextual) augment(step ts.TimeStep) ts.TimeStep {
	if c.hideContext || len(c.visible) == 0 {
		return step
	}

	obs := step.Observation
	augmented := mat.NewVecDense(obs.Len()+len(c.visible), nil)
	for i := 0; i < obs.Len(); i++ {
		augmented.SetVec(i, obs.AtVec(i))
	}
	for i, name := range c.visible {
		augmented.SetVec(obs.Len()+i, c.active[name]/c.divisors[name])
	}

	step.Observation = augmented
	return step
}

// ObservationSpec returns the observation specification of the
// environment, widened by the appended context features
func (c *Contextual) ObservationSpec() environment.Spec {
	base := c.Env.ObservationSpec()
	if c.hideContext || len(c.visible) == 0 {
		return base
	}

	space := c.Env.ContextSpace()
	n := base.Shape.Len()
	k := len(c.visible)

	shape := mat.NewVecDense(n+k, nil)
	lower := mat.NewVecDense(n+k, nil)
	upper := mat.NewVecDense(n+k, nil)
	for i := 0; i < n; i++ {
		lower.SetVec(i, base.LowerBound.AtVec(i))
		upper.SetVec(i, base.UpperBound.AtVec(i))
	}

	for i, name := range c.visible {
		feature := space[name]

		min, max := feature.Min, feature.Max
		if feature.Kind == envcontext.Categorical {
			min = floatutils.Min(feature.Values...)
			max = floatutils.Max(feature.Values...)
		}

		// A negative divisor flips the interval
		low := min / c.divisors[name]
		high := max / c.divisors[name]
		if low > high {
			low, high = high, low
		}

		lower.SetVec(n+i, low)
		upper.SetVec(n+i, high)
	}

	return environment.NewSpec(shape, environment.Observation, lower, upper,
		base.Cardinality)
}

// ActiveContext returns the id of the context selected for the current
// episode and a copy of its (possibly noise-perturbed) values. Before
// the first call to Reset(), the active context is the environment's
// default context under an empty id.
func (c *Contextual) ActiveContext() (string, envcontext.Context) {
	return c.activeID, c.active.Clone()
}

// Episode returns the index of the current episode, starting from 0 at
// the first call to Reset(). Before any reset, Episode returns -1.
func (c *Contextual) Episode() int {
	return c.episode
}

// TotalSteps returns the number of environmental steps taken across
// all episodes
func (c *Contextual) TotalSteps() int {
	return c.totalSteps
}

// Contexts returns the ids of the registered contexts in selection
// order
func (c *Contextual) Contexts() []string {
	ids := make([]string, len(c.ids))
	copy(ids, c.ids)
	return ids
}

// String returns a string representation of the Contextual environment
func (c *Contextual) String() string {
	return fmt.Sprintf("Contextual (%v contexts, active %v): %v",
		len(c.ids), c.activeID, c.Env)
}
