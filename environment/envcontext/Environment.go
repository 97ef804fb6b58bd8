package envcontext

import (
	"github.com/samuelfneumann/gocarl/environment"
)

// Env is an environment whose physical or structural parameters are
// exposed as a bounded context. Setting a new context reconfigures the
// environment, taking effect no later than the start of the next
// episode.
type Env interface {
	environment.Environment

	// ContextSpace returns the legal values of every context feature
	// of the environment
	ContextSpace() Space

	// DefaultContext returns the context the environment runs with
	// when no other context has been set
	DefaultContext() Context

	// SetContext reconfigures the environment to run the argument
	// context. The context must assign a legal value to every feature
	// of the context space.
	SetContext(Context) error

	// Context returns the context the environment is currently
	// configured with
	Context() Context
}
