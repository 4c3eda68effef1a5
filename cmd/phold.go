// cmd/phold.go
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-desim/desim/desim"
	"github.com/go-desim/desim/examples"
)

var (
	pholdProcs    int
	pholdFracSelf float64
	pholdMaxTime  float64
	pholdSeed     int64
)

var pholdCmd = &cobra.Command{
	Use:   "phold",
	Short: "Run the PHOLD parallel-simulation benchmark model",
	Run: func(cmd *cobra.Command, args []string) {
		logrus.SetLevel(parseLogLevel())
		n, err := runPhold(pholdProcs, pholdFracSelf, pholdMaxTime, pholdSeed)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("Executed %d events.\n", n)
	},
}

func runPhold(numProcs int, fracSelf, maxTime float64, seed int64) (int, error) {
	if numProcs < 1 {
		return 0, fmt.Errorf("phold: must create at least 1 process")
	}
	if fracSelf < 0 || fracSelf > 1 {
		return 0, fmt.Errorf("phold: frac_self_events (%v) must be in [0, 1]", fracSelf)
	}

	rng := desim.NewPartitionedRNG(desim.NewSimulationKey(&seed)).ForSubsystem("phold")
	sim := desim.NewSimulator(os.Stderr, parseLogLevel())

	objects := make([]*examples.PholdObject, numProcs)
	peerByIndex := func(i int) *examples.PholdObject { return objects[i] }
	for i := 0; i < numProcs; i++ {
		objects[i] = examples.NewPholdObject(i, numProcs, fracSelf, rng, peerByIndex)
		if err := sim.AddObject(objects[i]); err != nil {
			return 0, err
		}
	}

	if err := sim.Initialize(); err != nil {
		return 0, err
	}
	n, err := sim.Simulate(desim.Config{MaxTime: maxTime})
	return n, err
}

func init() {
	pholdCmd.Flags().IntVar(&pholdProcs, "procs", 4, "Number of PHOLD processes")
	pholdCmd.Flags().Float64Var(&pholdFracSelf, "frac-self", 0.5, "Fraction of events sent to self")
	pholdCmd.Flags().Float64Var(&pholdMaxTime, "max-time", 100.0, "End time for the simulation")
	pholdCmd.Flags().Int64Var(&pholdSeed, "seed", 1, "Random number seed")

	rootCmd.AddCommand(pholdCmd)
}
