// Package envcontext implements contexts: named, bounded collections
// of environment parameters that may change between episodes.
//
// A Context assigns a concrete value to each mutable parameter of an
// environment, such as the gravity or pole length of a cartpole. A
// Space bounds the legal values of every such parameter. Environments
// expose their mutable parameters by implementing the Env interface,
// and the wrappers package reconfigures such environments with a new
// context at each episode boundary.
package envcontext

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Context maps context feature names to their values for a single
// configuration of an environment. Discrete and categorical features
// are stored as float64 and interpreted by the Kind of their Feature.
type Context map[string]float64

// Clone returns a copy of the context
func (c Context) Clone() Context {
	clone := make(Context, len(c))
	for name, value := range c {
		clone[name] = value
	}
	return clone
}

// Keys returns the feature names of the context in sorted order
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c))
	for name := range c {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

// Merge completes the context with defaults, returning a new context
// which takes its values from c where c has them and from defaults
// everywhere else. Neither argument is modified.
func (c Context) Merge(defaults Context) Context {
	merged := defaults.Clone()
	for name, value := range c {
		merged[name] = value
	}
	return merged
}

// Equals returns whether two contexts assign equal values, to within
// the tolerance tol, to an equal set of features
func (c Context) Equals(other Context, tol float64) bool {
	if len(c) != len(other) {
		return false
	}
	for name, value := range c {
		otherValue, ok := other[name]
		if !ok || math.Abs(value-otherValue) > tol {
			return false
		}
	}
	return true
}

// String implements the fmt.Stringer interface
func (c Context) String() string {
	var sb strings.Builder
	sb.WriteString("Context {")
	for i, name := range c.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v: %v", name, c[name])
	}
	sb.WriteString("}")
	return sb.String()
}
