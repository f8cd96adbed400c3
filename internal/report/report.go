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

// Package report renders the results of pinning cycles to the console.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/thediveo/procpin"
)

// Printer writes one line per cycle outcome or error. Invalid mask errors
// span several lines, showing both masks in binary.
type Printer struct {
	W io.Writer
	// Timestamps prefixes each report with the local time.
	Timestamps bool

	updated   *color.Color
	unchanged *color.Color
	failed    *color.Color
	stamp     *color.Color
}

// NewPrinter returns a Printer writing to w, using colors if enabled.
func NewPrinter(w io.Writer, colored bool) *Printer {
	p := &Printer{
		W:         w,
		updated:   color.New(color.FgGreen),
		unchanged: color.New(color.Faint),
		failed:    color.New(color.FgRed),
		stamp:     color.New(color.FgCyan, color.Faint),
	}
	for _, c := range []*color.Color{p.updated, p.unchanged, p.failed, p.stamp} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Report renders the result of a single cycle.
func (p *Printer) Report(outcome procpin.Outcome, err error) {
	if p.Timestamps {
		p.stamp.Fprint(p.W, time.Now().Format(time.DateTime)+" ")
	}
	switch {
	case err != nil:
		p.failed.Fprintln(p.W, err.Error())
	case outcome.Kind == procpin.Updated:
		p.updated.Fprintln(p.W, outcome.String())
	default:
		p.unchanged.Fprintln(p.W, outcome.String())
	}
}

// Processes renders a process snapshot as a table of PIDs and names.
func (p *Printer) Processes(entries []procpin.ProcessEntry) {
	for _, entry := range entries {
		fmt.Fprintf(p.W, "%8d  %s\n", entry.PID, entry.Name)
	}
}
