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

// Package runner keeps a process pinned by running pinning cycles on a fixed
// interval.
package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/thediveo/procpin"
)

// Pinner runs a single pinning cycle; [*procpin.Controller] is a Pinner.
type Pinner interface {
	SetProcessAffinity(name string, mask procpin.Mask) (procpin.Outcome, error)
}

// ReportFunc receives the result of each cycle.
type ReportFunc func(outcome procpin.Outcome, err error)

// Runner repeatedly pins a process to a desired affinity mask.
type Runner struct {
	Pinner   Pinner
	Process  string
	Mask     procpin.Mask
	Interval time.Duration
	// Once runs just a single cycle.
	Once   bool
	Logger *slog.Logger
	Report ReportFunc
}

// Run runs a first cycle immediately and then another cycle every interval,
// until the context gets cancelled. Cycles run to completion and never
// overlap; a failed cycle is reported and the next cycle takes place as
// scheduled. If the runner is configured to run only once, Run returns the
// error of this single cycle instead.
func (r *Runner) Run(ctx context.Context) error {
	if r.Interval <= 0 && !r.Once {
		return errors.New("interval must be positive")
	}
	log := r.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = log.With(
		slog.String("run", uuid.NewString()),
		slog.String("process", r.Process),
		slog.String("mask", r.Mask.String()))
	log.Info("pinning process", slog.String("cpus", r.Mask.List().String()),
		slog.Duration("interval", r.Interval))

	if r.Once {
		return r.cycle(log, 1)
	}

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for cycle := 1; ; cycle++ {
		_ = r.cycle(log, cycle)
		select {
		case <-ctx.Done():
			log.Info("stopped pinning", slog.Int("cycles", cycle))
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Runner) cycle(log *slog.Logger, cycle int) error {
	log = log.With(slog.Int("cycle", cycle))
	log.Debug("starting cycle")
	outcome, err := r.Pinner.SetProcessAffinity(r.Process, r.Mask)
	if r.Report != nil {
		r.Report(outcome, err)
	}
	if err != nil {
		log.Warn("pinning failed", slog.String("error", err.Error()))
		return err
	}
	attrs := []any{
		slog.Uint64("pid", uint64(outcome.PID)),
		slog.String("old", outcome.OldMask.String()),
		slog.String("system", outcome.SystemMask.String()),
	}
	if outcome.Kind == procpin.Updated {
		log.Info("affinity updated", attrs...)
	} else {
		log.Debug("affinity unchanged", attrs...)
	}
	return nil
}
