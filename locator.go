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

// FindProcess returns the PID of a running process with the specified
// executable base name, taking a fresh process snapshot from the platform.
// Names are compared exactly, including case.
//
// If several processes share the same name, the first one in the snapshot's
// enumeration order is returned. As this order is defined by the platform,
// which of the processes gets picked is not deterministic.
//
// FindProcess returns a [*ProcessNotFoundError] if no process matches, and
// an [*APIError] if the snapshot cannot be taken.
func FindProcess(p Platform, name string) (uint32, error) {
	if name == "" {
		return 0, &ProcessNotFoundError{Name: name}
	}
	snapshot, err := p.SnapshotProcesses()
	if err != nil {
		return 0, &APIError{Message: "unable to read process list", Err: err}
	}
	defer snapshot.Close()
	for entry := range snapshot.Entries() {
		if entry.Name == name {
			return entry.PID, nil
		}
	}
	return 0, &ProcessNotFoundError{Name: name}
}
