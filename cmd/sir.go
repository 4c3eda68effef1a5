// cmd/sir.go
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
	sirPopulation  int
	sirInfectious  int
	sirBeta        float64
	sirGamma       float64
	sirStatePeriod float64
	sirMaxTime     float64
	sirSeed        int64
)

var sirCmd = &cobra.Command{
	Use:   "sir",
	Short: "Run a stochastic Susceptible-Infectious-Recovered epidemic model",
	Run: func(cmd *cobra.Command, args []string) {
		logrus.SetLevel(parseLogLevel())
		sir, n, err := runSIR(sirPopulation, sirInfectious, sirBeta, sirGamma, sirStatePeriod, sirMaxTime, sirSeed)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("Executed %d events.\n", n)
		fmt.Println("time\ts\ti\tr")
		for _, p := range sir.History {
			fmt.Printf("%v\t%d\t%d\t%d\n", p.Time, p.Susceptible, p.Infectious, sir.N-p.Susceptible-p.Infectious)
		}
	},
}

func runSIR(population, initialInfectious int, beta, gamma, statePeriod, maxTime float64, seed int64) (*examples.SIRObject, int, error) {
	if initialInfectious < 0 || initialInfectious > population {
		return nil, 0, fmt.Errorf("sir: initial infectious count (%d) must be in [0, population]", initialInfectious)
	}
	rng := desim.NewPartitionedRNG(desim.NewSimulationKey(&seed)).ForSubsystem("sir")
	sim := desim.NewSimulator(os.Stderr, parseLogLevel())

	sir := examples.NewSIRObject("sir", population-initialInfectious, initialInfectious, population, beta, gamma, statePeriod, rng)
	if err := sim.AddObject(sir); err != nil {
		return nil, 0, err
	}
	if err := sim.Initialize(); err != nil {
		return nil, 0, err
	}
	n, err := sim.Simulate(desim.Config{MaxTime: maxTime})
	return sir, n, err
}

func init() {
	sirCmd.Flags().IntVar(&sirPopulation, "population", 1000, "Total population size")
	sirCmd.Flags().IntVar(&sirInfectious, "infectious", 1, "Initial number of infectious individuals")
	sirCmd.Flags().Float64Var(&sirBeta, "beta", 0.3, "Transmission rate")
	sirCmd.Flags().Float64Var(&sirGamma, "gamma", 0.1, "Recovery rate")
	sirCmd.Flags().Float64Var(&sirStatePeriod, "state-period", 1.0, "Time between trajectory samples")
	sirCmd.Flags().Float64Var(&sirMaxTime, "max-time", 100.0, "End time for the simulation")
	sirCmd.Flags().Int64Var(&sirSeed, "seed", 1, "Random number seed")

	rootCmd.AddCommand(sirCmd)
}
