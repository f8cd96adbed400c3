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

package procpin

import "fmt"

// OutcomeKind tells whether a cycle changed the affinity of a process.
type OutcomeKind int

const (
	// Unchanged means the process already had the desired mask.
	Unchanged OutcomeKind = iota
	// Updated means the desired mask has been applied.
	Updated
)

func (k OutcomeKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Updated:
		return "updated"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of a successful affinity cycle. For Unchanged
// outcomes OldMask and NewMask both are the current mask of the process.
type Outcome struct {
	Kind        OutcomeKind
	ProcessName string
	PID         uint32
	OldMask     Mask
	NewMask     Mask
	SystemMask  Mask
}

func unchanged(name string, pid uint32, current, system Mask) Outcome {
	return Outcome{
		Kind:        Unchanged,
		ProcessName: name,
		PID:         pid,
		OldMask:     current,
		NewMask:     current,
		SystemMask:  system,
	}
}

func updated(name string, pid uint32, old, applied, system Mask) Outcome {
	return Outcome{
		Kind:        Updated,
		ProcessName: name,
		PID:         pid,
		OldMask:     old,
		NewMask:     applied,
		SystemMask:  system,
	}
}

func (o Outcome) String() string {
	if o.Kind == Updated {
		return fmt.Sprintf("Updated affinity mask for process %s with PID %d: %x -> %x (system affinity mask: %x)",
			o.ProcessName, o.PID, uint64(o.OldMask), uint64(o.NewMask), uint64(o.SystemMask))
	}
	return fmt.Sprintf("Affinity mask for process %s with PID %d already set to %x (system affinity mask: %x)",
		o.ProcessName, o.PID, uint64(o.NewMask), uint64(o.SystemMask))
}
