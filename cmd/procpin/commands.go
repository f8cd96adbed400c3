// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thediveo/procpin"
	"github.com/thediveo/procpin/internal/config"
	"github.com/thediveo/procpin/internal/report"
	"github.com/thediveo/procpin/internal/runner"
)

// cycleError marks a failed pinning cycle that has already been reported.
type cycleError struct{ error }

func (e *cycleError) Unwrap() error { return e.error }

// flagValues are the command line settings; they override the configuration
// file and environment only when explicitly given.
type flagValues struct {
	configPath string
	process    string
	cpus       string
	mask       string
	interval   time.Duration
	once       bool
	noColor    bool
	logLevel   string
	logFormat  string
	timestamps bool
}

func newRootCmd(platform procpin.Platform) *cobra.Command {
	var flags flagValues
	rootCmd := &cobra.Command{
		Use:   "procpin",
		Short: "Keep a process pinned to a set of CPUs",
		Long: `procpin looks up a process by its executable name and sets its processor
affinity mask to the desired CPUs, repeating this on a fixed interval so that
restarted processes get pinned again.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, &flags)
			if err != nil {
				return err
			}
			mask, err := cfg.DesiredMask()
			if err != nil {
				return err
			}
			printer := report.NewPrinter(cmd.OutOrStdout(), cfg.Color && !color.NoColor)
			printer.Timestamps = flags.timestamps
			r := &runner.Runner{
				Pinner:   procpin.NewController(platform),
				Process:  cfg.Process,
				Mask:     mask,
				Interval: cfg.Interval,
				Once:     cfg.Once,
				Logger:   newLogger(cmd.ErrOrStderr(), cfg.Log),
				Report:   printer.Report,
			}
			if err := r.Run(cmd.Context()); err != nil {
				return &cycleError{err}
			}
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: text, json")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	f := rootCmd.Flags()
	f.StringVarP(&flags.process, "process", "p", "", "executable name of the process to pin (default audiodg.exe)")
	f.StringVar(&flags.cpus, "cpus", "", "CPUs to pin to, in list format such as 0-3,8")
	f.StringVar(&flags.mask, "mask", "", "affinity mask to pin to, such as 0x3 or 0b11 (default 0x1)")
	f.DurationVar(&flags.interval, "interval", 0, "interval between pinning cycles (default 10s)")
	f.BoolVar(&flags.once, "once", false, "pin only once and then exit")
	f.BoolVar(&flags.timestamps, "timestamps", false, "prefix reports with the time")
	rootCmd.MarkFlagsMutuallyExclusive("cpus", "mask")

	rootCmd.AddCommand(newListCmd(platform, &flags))
	return rootCmd
}

func newListCmd(platform procpin.Platform, flags *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "list [NAME]",
		Short: "List running processes, optionally only those with the given name",
		Args:  cobra.MaximumNArgs(1),
		// listing ignores the pinning configuration, broken or not.
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := platform.SnapshotProcesses()
			if err != nil {
				return &procpin.APIError{Message: "unable to read process list", Err: err}
			}
			defer snapshot.Close()
			entries := slices.Collect(snapshot.Entries())
			if len(args) > 0 {
				entries = slices.DeleteFunc(entries, func(e procpin.ProcessEntry) bool {
					return e.Name != args[0]
				})
				if len(entries) == 0 {
					return &procpin.ProcessNotFoundError{Name: args[0]}
				}
			}
			report.NewPrinter(cmd.OutOrStdout(), !flags.noColor && !color.NoColor).Processes(entries)
			return nil
		},
	}
}

// loadConfig returns the configuration from defaults, file, environment, and
// the explicitly set command line flags, in this order.
func loadConfig(cmd *cobra.Command, flags *flagValues) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("process") {
		cfg.Process = flags.process
	}
	if changed("cpus") {
		cfg.SetCPUs(flags.cpus)
	}
	if changed("mask") {
		cfg.SetMask(flags.mask)
	}
	if changed("interval") {
		cfg.Interval = flags.interval
	}
	if changed("once") {
		cfg.Once = flags.once
	}
	if changed("no-color") {
		cfg.Color = !flags.noColor
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
