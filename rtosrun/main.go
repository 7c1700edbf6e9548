// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Rtosrun runs the demo applications on the hosted kernel.
//
// Usage:
//
//	rtosrun run [--app name] [--config file] [--ticks n] [--period d] [--trace]
//	rtosrun replay scenario.txtar
//	rtosrun config [--config file]
//
// In run mode, keys 1 and 2 press and release the two board buttons
// and q quits.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"

	"rsc.io/rtos/demo"
	"rsc.io/rtos/rtos"
)

var (
	configFile string
	trace      bool

	rootCmd = &cobra.Command{
		Use:           "rtosrun",
		Short:         "Run applications on the hosted real-time kernel",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetOutput(os.Stderr)
			logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
			logrus.SetLevel(logrus.InfoLevel)
			if trace {
				logrus.SetLevel(logrus.TraceLevel)
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "read kernel configuration from `file`")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "log every context switch")
	rootCmd.AddCommand(runCmd, replayCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rtosrun: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig returns the default configuration overlaid with --config.
func loadConfig() (rtos.Config, error) {
	if configFile == "" {
		return rtos.DefaultConfig(), nil
	}
	data, err := os.ReadFile(configFile)
	if err != nil {
		return rtos.Config{}, err
	}
	cfg, err := rtos.LoadConfig(data)
	if err != nil {
		return rtos.Config{}, fmt.Errorf("%s: %w", configFile, err)
	}
	return cfg, nil
}

func appNames() string {
	names := maps.Keys(demo.Apps)
	sort.Strings(names)
	return strings.Join(names, ", ")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective kernel configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay scenario.txtar",
	Short: "Replay a scenario archive tick by tick",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		s, err := demo.ParseScenario(args[0], data)
		if err != nil {
			return err
		}
		return s.Replay(cmd.OutOrStdout(), logrus.NewEntry(logrus.StandardLogger()))
	},
}
