package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rmi-compiler/rmi/artifact"
	"github.com/rmi-compiler/rmi/rmi"
)

var (
	trainDataPath     string
	trainModelSpec    string
	trainBranching    uint64
	trainKeyFloat     bool
	trainPosFloat     bool
	trainOutPath      string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a single RMI from a (key, position) CSV",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadRMIConfig(configPath)
		if trainModelSpec == "" {
			trainModelSpec = cfg.ModelSpec
		}
		if trainBranching == 0 {
			trainBranching = cfg.BranchingFactor
		}

		data, err := readDataFile(trainDataPath, trainKeyFloat, trainPosFloat)
		if err != nil {
			logrus.Fatalf("rmi: %v", err)
		}

		trained, err := rmi.Train(data, trainModelSpec, trainBranching)
		if err != nil {
			logrus.Fatalf("rmi: training failed: %v", err)
		}

		stats := artifact.FromTrained(trained)
		if err := artifact.DisplayTable(os.Stdout, []artifact.RMIStatistics{stats}); err != nil {
			logrus.Fatalf("rmi: display: %v", err)
		}

		if trainOutPath != "" {
			if err := writeArtifact(trained, trainOutPath); err != nil {
				logrus.Fatalf("rmi: write artifact: %v", err)
			}
			fmt.Fprintf(os.Stdout, "wrote parameter blob to %s\n", trainOutPath)
		}
	},
}

func writeArtifact(trained *rmi.RMI, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return artifact.WriteParams(trained, f)
}

func init() {
	trainCmd.Flags().StringVar(&trainDataPath, "data", "", "Path to a two-column (key,position) CSV")
	trainCmd.Flags().StringVar(&trainModelSpec, "models", "", "Model spec \"top,leaf\" (overrides config default)")
	trainCmd.Flags().Uint64Var(&trainBranching, "branching-factor", 0, "Branching factor (overrides config default)")
	trainCmd.Flags().BoolVar(&trainKeyFloat, "key-float", false, "Parse keys as float64 instead of uint64")
	trainCmd.Flags().BoolVar(&trainPosFloat, "pos-float", false, "Parse positions as float64 instead of uint64")
	trainCmd.Flags().StringVar(&trainOutPath, "out", "", "Optional path to write the parameter blob")
	_ = trainCmd.MarkFlagRequired("data")
}
