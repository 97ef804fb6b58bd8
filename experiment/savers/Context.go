package savers

import (
	"encoding/gob"
	"log"
	"os"

	"github.com/samuelfneumann/gocarl/environment/envcontext"
	ts "github.com/samuelfneumann/gocarl/timestep"
)

// ContextTracker provides the information about the active context of
// a contextual environment that a Context Saver records. The
// wrappers.Contextual environment satisfies this interface.
type ContextTracker interface {
	ActiveContext() (id string, ctx envcontext.Context)
	Episode() int
	TotalSteps() int
}

// ContextRecord is one row of a contextual run log: the context a
// single episode ran with, together with when the episode started.
type ContextRecord struct {
	Episode    int
	TotalSteps int
	ID         string
	Context    envcontext.Context
}

// Context tracks and saves the context of every episode in an
// experiment. At the start of each episode, the Saver records the
// episode number, the total number of environmental steps taken before
// the episode, and the id and values of the episode's active context.
type Context struct {
	source   ContextTracker
	records  []ContextRecord
	filename string
}

// NewContext returns a new Context Saver which records the contexts
// selected by source and saves its data at the specified location
// filename
func NewContext(source ContextTracker, filename string) *Context {
	return &Context{
		source:   source,
		filename: filename,
	}
}

// Track records the active context on the first timestep of every
// episode. All other timesteps are ignored, since a context never
// changes mid-episode.
func (c *Context) Track(t ts.TimeStep) {
	if !t.First() {
		return
	}

	id, ctx := c.source.ActiveContext()
	c.records = append(c.records, ContextRecord{
		Episode:    c.source.Episode(),
		TotalSteps: c.source.TotalSteps(),
		ID:         id,
		Context:    ctx,
	})
}

// Save saves the data tracked by the Context Saver to disk.
func (c *Context) Save() {
	file, err := os.Create(c.filename)
	if err != nil {
		log.Fatalf("could not open save file: %v", err)
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err = en.Encode(c.records); err != nil {
		log.Fatalf("could not encode context data: %v", err)
	}
}

// LoadContextData loads and returns the contextual run log saved by a
// Context Saver
func LoadContextData(filename string) []ContextRecord {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("could not open data file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	var data []ContextRecord

	if err = dec.Decode(&data); err != nil {
		log.Fatalf("could not decode data: %v", err)
	}

	return data
}
