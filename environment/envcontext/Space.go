package envcontext

import (
	"fmt"
	"math"
	"sort"

	"github.com/samuelfneumann/gocarl/utils/floatutils"
)

// Kind describes the cardinality of a context feature. Continuous
// features take any value within their bounds, Discrete features take
// integer values within their bounds, and Categorical features take
// values from a fixed list with no meaningful ordering.
type Kind int

const (
	Continuous Kind = iota
	Discrete
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Discrete:
		return "Discrete"
	case Categorical:
		return "Categorical"
	default:
		return "Continuous"
	}
}

// Feature describes the legal values of a single context feature. For
// Continuous and Discrete features the legal values are those within
// [Min, Max]. For Categorical features the legal values are exactly
// those listed in Values, and Min and Max are meaningless.
type Feature struct {
	Min    float64
	Max    float64
	Kind   Kind
	Values []float64
}

// NewFeature returns the bounds of a continuous or discrete context
// feature taking values in [min, max]
func NewFeature(min, max float64, kind Kind) Feature {
	if kind == Categorical {
		panic("newFeature: categorical features need a value list, use " +
			"NewCategorical")
	}
	if min > max {
		panic(fmt.Sprintf("newFeature: min %v larger than max %v", min, max))
	}
	return Feature{Min: min, Max: max, Kind: kind}
}

// NewCategorical returns the bounds of a categorical context feature
// taking values from the argument list
func NewCategorical(values []float64) Feature {
	if len(values) == 0 {
		panic("newCategorical: categorical features need at least one value")
	}
	vals := make([]float64, len(values))
	copy(vals, values)
	return Feature{Kind: Categorical, Values: vals}
}

// Contains returns whether value is a legal value of the feature
func (f Feature) Contains(value float64) bool {
	switch f.Kind {
	case Categorical:
		for _, legal := range f.Values {
			if legal == value {
				return true
			}
		}
		return false

	case Discrete:
		if value != math.Trunc(value) {
			return false
		}
		return value >= f.Min && value <= f.Max

	default:
		return value >= f.Min && value <= f.Max
	}
}

// clip returns the legal value nearest to the argument value.
// Continuous values are clipped into [Min, Max], discrete values are
// rounded and then clipped, and categorical values are snapped to the
// nearest legal value.
func (f Feature) clip(value float64) float64 {
	switch f.Kind {
	case Categorical:
		nearest := f.Values[0]
		for _, legal := range f.Values[1:] {
			if math.Abs(legal-value) < math.Abs(nearest-value) {
				nearest = legal
			}
		}
		return nearest

	case Discrete:
		return floatutils.Clip(math.Round(value), f.Min, f.Max)

	default:
		return floatutils.Clip(value, f.Min, f.Max)
	}
}

// Space bounds every mutable parameter of an environment, mapping each
// context feature name to the legal values of that feature
type Space map[string]Feature

// Keys returns the feature names of the space in sorted order
func (s Space) Keys() []string {
	keys := make([]string, 0, len(s))
	for name := range s {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

// Validate returns an error if any feature of the context is unknown
// to the space or takes an illegal value. Discrete features must be
// integral, categorical features must be listed values, and continuous
// features must lie within their bounds.
func (s Space) Validate(c Context) error {
	for _, name := range c.Keys() {
		feature, ok := s[name]
		if !ok {
			return fmt.Errorf("unknown context feature %v", name)
		}

		value := c[name]
		if feature.Contains(value) {
			continue
		}

		switch feature.Kind {
		case Categorical:
			return fmt.Errorf("illegal value %v for categorical context "+
				"feature %v \n\twant one of %v", value, name, feature.Values)

		case Discrete:
			return fmt.Errorf("illegal value %v for discrete context "+
				"feature %v \n\twant integer in [%v, %v]", value, name,
				feature.Min, feature.Max)

		default:
			return fmt.Errorf("illegal value %v for context feature %v "+
				"\n\twant [%v, %v]", value, name, feature.Min, feature.Max)
		}
	}
	return nil
}

// Clip returns a copy of the context with every value replaced by the
// nearest legal value of its feature, along with the sorted names of
// the features whose values changed. Features unknown to the space are
// left untouched.
func (s Space) Clip(c Context) (Context, []string) {
	clipped := c.Clone()
	changed := make([]string, 0)

	for _, name := range c.Keys() {
		feature, ok := s[name]
		if !ok {
			continue
		}

		legal := feature.clip(c[name])
		if legal != c[name] {
			clipped[name] = legal
			changed = append(changed, name)
		}
	}
	return clipped, changed
}
