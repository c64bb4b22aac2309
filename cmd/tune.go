package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rmi-compiler/rmi/artifact"
	"github.com/rmi-compiler/rmi/autotune"
)

var (
	tuneDataPath  string
	tuneRestrict  int
	tuneKeyFloat  bool
	tunePosFloat  bool
)

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Search for Pareto-efficient RMI configurations over a (key, position) CSV",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadRMIConfig(configPath)
		if tuneRestrict == 0 {
			tuneRestrict = cfg.Restrict
		}

		data, err := readDataFile(tuneDataPath, tuneKeyFloat, tunePosFloat)
		if err != nil {
			logrus.Fatalf("rmi: %v", err)
		}

		results, err := autotune.FindParetoEfficientConfigs(data, tuneRestrict, newLogrusProgressSink())
		if err != nil {
			logrus.Fatalf("rmi: autotune failed: %v", err)
		}

		if err := artifact.DisplayTable(os.Stdout, results); err != nil {
			logrus.Fatalf("rmi: display: %v", err)
		}
	},
}

func init() {
	tuneCmd.Flags().StringVar(&tuneDataPath, "data", "", "Path to a two-column (key,position) CSV")
	tuneCmd.Flags().IntVar(&tuneRestrict, "restrict", 0, "Maximum number of configurations to return (overrides config default)")
	tuneCmd.Flags().BoolVar(&tuneKeyFloat, "key-float", false, "Parse keys as float64 instead of uint64")
	tuneCmd.Flags().BoolVar(&tunePosFloat, "pos-float", false, "Parse positions as float64 instead of uint64")
	_ = tuneCmd.MarkFlagRequired("data")
}
