package cmd

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// RMIConfig describes the on-disk defaults a train/tune invocation layers
// flag overrides on top of: flags win over config, config wins over the
// built-in defaults from defaultRMIConfig.
type RMIConfig struct {
	ModelSpec       string `yaml:"model_spec"`
	BranchingFactor uint64 `yaml:"branching_factor"`
	Restrict        int    `yaml:"restrict"`
}

// defaultRMIConfig returns the built-in fallback used when no config file is
// given and no flag overrides a field.
func defaultRMIConfig() RMIConfig {
	return RMIConfig{
		ModelSpec:       "radix,linear",
		BranchingFactor: 1 << 8,
		Restrict:        10,
	}
}

// loadRMIConfig reads path (if non-empty) with strict field checking, so a
// typo'd key in the YAML is a hard error rather than a silently ignored
// field.
func loadRMIConfig(path string) RMIConfig {
	cfg := defaultRMIConfig()
	if path == "" {
		return cfg
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Fatalf("rmi: failed to read config %s: %v", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		logrus.Fatalf("rmi: failed to parse config %s: %v", path, err)
	}
	return cfg
}
