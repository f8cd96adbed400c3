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

import "iter"

// AccessRights are the rights requested when opening a process. The values
// are those of the Windows process access rights; other platforms may ignore
// them.
type AccessRights uint32

const (
	// QueryLimitedInformation allows reading the affinity of a process.
	QueryLimitedInformation AccessRights = 0x1000
	// SetInformation allows changing the affinity of a process.
	SetInformation AccessRights = 0x0200
)

// ProcessEntry is a single process of a process snapshot.
type ProcessEntry struct {
	PID  uint32
	Name string // executable base name, such as “audiodg.exe”.
}

// ProcessSnapshot is a point-in-time list of the running processes. It must
// be closed after use.
type ProcessSnapshot interface {
	// Entries iterates the processes in platform-defined order.
	Entries() iter.Seq[ProcessEntry]
	Close() error
}

// ProcessHandle is an opened process. It must be closed after use.
type ProcessHandle interface {
	PID() uint32
	Close() error
}

// Platform is the operating system layer process affinity is implemented on.
// Use [NativePlatform] for the platform of the build OS.
type Platform interface {
	// SnapshotProcesses enumerates the currently running processes.
	SnapshotProcesses() (ProcessSnapshot, error)
	// OpenProcess opens the process with the specified PID, requesting the
	// specified access rights.
	OpenProcess(pid uint32, access AccessRights) (ProcessHandle, error)
	// ProcessAffinity returns the affinity mask of the process as well as
	// the system affinity mask.
	ProcessAffinity(h ProcessHandle) (process, system Mask, err error)
	// SetProcessAffinity sets the affinity mask of the process.
	SetProcessAffinity(h ProcessHandle, mask Mask) error
}
