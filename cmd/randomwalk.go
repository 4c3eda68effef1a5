// cmd/randomwalk.go
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
	randomWalkMaxTime float64
	randomWalkSeed    int64
	randomWalkQuiet   bool
)

var randomWalkCmd = &cobra.Command{
	Use:   "randomwalk",
	Short: "Run a one-dimensional random walk on the integer number line",
	Run: func(cmd *cobra.Command, args []string) {
		logrus.SetLevel(parseLogLevel())
		walk, n, err := runRandomWalk(randomWalkMaxTime, randomWalkSeed)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("Executed %d events.\n", n)
		if !randomWalkQuiet {
			fmt.Println("Random walk:")
			for _, p := range walk.History {
				fmt.Printf("%4.0f%6d\n", p.Time, p.Position)
			}
		}
	},
}

func runRandomWalk(maxTime float64, seed int64) (*examples.RandomWalkObject, int, error) {
	rng := desim.NewPartitionedRNG(desim.NewSimulationKey(&seed)).ForSubsystem("randomwalk")
	sim := desim.NewSimulator(os.Stderr, parseLogLevel())

	walk := examples.NewRandomWalkObject("random walk simulation object", rng)
	if err := sim.AddObject(walk); err != nil {
		return nil, 0, err
	}
	if err := sim.Initialize(); err != nil {
		return nil, 0, err
	}
	n, err := sim.Simulate(desim.Config{MaxTime: maxTime})
	return walk, n, err
}

func init() {
	randomWalkCmd.Flags().Float64Var(&randomWalkMaxTime, "max-time", 100.0, "End time for the simulation")
	randomWalkCmd.Flags().Int64Var(&randomWalkSeed, "seed", 1, "Random number seed")
	randomWalkCmd.Flags().BoolVar(&randomWalkQuiet, "quiet", false, "Don't print the walk history")

	rootCmd.AddCommand(randomWalkCmd)
}
