package main

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/gocarl/agent"
	"github.com/samuelfneumann/gocarl/environment"
	"github.com/samuelfneumann/gocarl/environment/classiccontrol/pendulum"
	"github.com/samuelfneumann/gocarl/environment/envcontext"
	"github.com/samuelfneumann/gocarl/environment/wrappers"
	"github.com/samuelfneumann/gocarl/experiment"
	"github.com/samuelfneumann/gocarl/experiment/savers"
)

func main() {
	var seed uint64 = 192382

	// Create the environment
	angle := r1.Interval{Min: -pendulum.AngleBound, Max: pendulum.AngleBound}
	speed := r1.Interval{Min: -1.0, Max: 1.0}

	s := environment.NewUniformStarter([]r1.Interval{angle, speed}, seed)
	task := pendulum.NewSwingUp(s, 500)
	p, _, err := pendulum.NewContinuous(task, 1.0)
	if err != nil {
		log.Fatalf("could not create environment: %v", err)
	}

	// Swing the pendulum up under two different gravities, alternating
	// between them every episode
	contexts := map[string]envcontext.Context{
		"earth": {pendulum.GravityFeature: 9.8},
		"moon":  {pendulum.GravityFeature: 1.62},
	}

	noise := envcontext.NewNoise(0.01, seed)
	cp, err := wrappers.NewContextual(p, contexts, nil, noise, false, nil,
		wrappers.ScaleByDefault)
	if err != nil {
		log.Fatalf("could not create contextual environment: %v", err)
	}

	// Create the agent
	random, err := agent.NewRandom(cp.ActionSpec(), seed)
	if err != nil {
		log.Fatalf("could not create agent: %v", err)
	}

	// Experiment
	e := experiment.NewOnline(cp, random, 10_000,
		savers.NewReturn("./data.bin"),
		savers.NewContext(cp, "./context.bin"),
	)
	if err := e.Run(); err != nil {
		log.Fatalf("could not run experiment: %v", err)
	}
	e.Save()

	returns := savers.LoadData("./data.bin")
	fmt.Println(returns[len(returns)-10:])

	records := savers.LoadContextData("./context.bin")
	for _, record := range records[:4] {
		fmt.Printf("episode %v ran context %v: %v\n", record.Episode,
			record.ID, record.Context)
	}
}
