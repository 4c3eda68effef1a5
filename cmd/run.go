// cmd/run.go
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-desim/desim/desim"
)

var (
	runModel      string
	runConfigPath string
)

// runCmd drives one of the built-in example models from a YAML config file
// (desim.Config, C7) rather than a user-supplied plugin -- no Go plugin
// mechanism appears anywhere in the retrieved example pack, so --model picks
// among the three example models built into this repo instead.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a built-in example model from a YAML config file",
	Run: func(cmd *cobra.Command, args []string) {
		logrus.SetLevel(parseLogLevel())
		cfg, err := desim.LoadConfig(runConfigPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		n, err := runModelFromConfig(runModel, cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logrus.Infof("simulation complete: %d batches dispatched", n)
	},
}

func runModelFromConfig(model string, cfg *desim.Config) (int, error) {
	seed := int64(1)
	if cfg.RandomSeed != nil {
		seed = *cfg.RandomSeed
	}
	switch model {
	case "phold":
		return runPhold(4, 0.5, cfg.MaxTime, seed)
	case "sir":
		_, n, err := runSIR(1000, 1, 0.3, 0.1, 1.0, cfg.MaxTime, seed)
		return n, err
	case "randomwalk":
		_, n, err := runRandomWalk(cfg.MaxTime, seed)
		return n, err
	default:
		return 0, fmt.Errorf("run: unknown --model %q (want phold, sir, or randomwalk)", model)
	}
}

func init() {
	runCmd.Flags().StringVar(&runModel, "model", "", "Example model to run: phold, sir, or randomwalk")
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to a YAML config file (required)")
	runCmd.MarkFlagRequired("model")
	runCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(runCmd)
}
