// Command gocarl runs an experiment on a contextual environment
// described by a JSON configuration file, recording the return, length,
// and context of every episode.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/samuelfneumann/gocarl/agent"
	"github.com/samuelfneumann/gocarl/environment/envconfig"
	"github.com/samuelfneumann/gocarl/experiment"
	"github.com/samuelfneumann/gocarl/experiment/savers"
)

var (
	configFile string
	steps      uint
	seed       uint64
	outDir     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gocarl",
		Short: "gocarl evaluates agents on contextual environments whose " +
			"physical parameters change between episodes.",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a random agent on a configured contextual environment",
		RunE:  runExperiment,
	}
	runCmd.Flags().StringVar(&configFile, "config", "",
		"path to the JSON environment configuration")
	runCmd.Flags().UintVar(&steps, "steps", 10_000,
		"number of environmental steps to run")
	runCmd.Flags().Uint64Var(&seed, "seed", 14,
		"seed of the environment and agent")
	runCmd.Flags().StringVar(&outDir, "out", ".",
		"directory to write the run's data files to")
	runCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(runCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runExperiment(cmd *cobra.Command, args []string) error {
	file, err := os.Open(configFile)
	if err != nil {
		return fmt.Errorf("could not open config: %v", err)
	}
	defer file.Close()

	var conf envconfig.Config
	if err := json.NewDecoder(file).Decode(&conf); err != nil {
		return fmt.Errorf("could not decode config: %v", err)
	}

	env, _, err := conf.Create(seed)
	if err != nil {
		return fmt.Errorf("could not create environment: %v", err)
	}

	random, err := agent.NewRandom(env.ActionSpec(), seed)
	if err != nil {
		return fmt.Errorf("could not create agent: %v", err)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("could not create output directory: %v", err)
	}

	// Name the run's data files by a fresh run id
	runID := uuid.New().String()
	outFile := func(kind string) string {
		return filepath.Join(outDir, fmt.Sprintf("%v_%v.bin", runID, kind))
	}

	exp := experiment.NewOnline(env, random, steps,
		savers.NewReturn(outFile("return")),
		savers.NewEpisodeLength(outFile("length")),
		savers.NewContext(env, outFile("context")),
	)

	log.Printf("run %v: %v for %v steps", runID, conf.Environment, steps)
	if err := exp.Run(); err != nil {
		return fmt.Errorf("could not run experiment: %v", err)
	}
	exp.Save()

	log.Printf("run %v: %v episodes in %v steps", runID, env.Episode()+1,
		env.TotalSteps())
	return nil
}
