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

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by the native platform on operating systems
// without process affinity support.
var ErrUnsupported = errors.New("process affinity not supported on this platform")

// ProcessNotFoundError reports that no running process has the requested
// executable name.
type ProcessNotFoundError struct {
	Name string
}

func (e *ProcessNotFoundError) Error() string {
	return fmt.Sprintf("cannot find a process with the name %s", e.Name)
}

// InvalidMaskError reports a desired affinity mask that uses CPUs outside
// the system affinity mask. It is detected locally and never submitted to
// the operating system.
type InvalidMaskError struct {
	Desired Mask
	System  Mask
}

func (e *InvalidMaskError) Error() string {
	return fmt.Sprintf("affinity mask not applicable on this system:\nprocess mask: %s\nsystem mask:  %s",
		e.Desired.Binary(), e.System.Binary())
}

// UnrepresentableAffinityError is returned by a Platform when the affinity
// of a process cannot be expressed as a single Mask: it includes CPUs beyond
// MaxCPUs, or the threads of the process have differing affinities. Process
// is the affinity of the main thread limited to the first MaxCPUs CPUs.
//
// The affinity of such a process never equals any desired Mask, so the
// desired Mask gets applied.
type UnrepresentableAffinityError struct {
	Process Mask
	System  Mask
	Reason  string
}

func (e *UnrepresentableAffinityError) Error() string {
	return "affinity not representable as a mask: " + e.Reason
}

// APIError reports a failed platform call. Op names the platform operation
// and Message gives optional context; Err is the underlying platform error,
// if any. Either part may be missing.
type APIError struct {
	Op      string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	context := e.Message
	if context == "" {
		context = e.Op
	}
	switch {
	case e.Err != nil && context != "":
		return context + ": " + e.Err.Error()
	case e.Err != nil:
		return "error using the API: " + e.Err.Error()
	case context != "":
		return "error using the API: " + context
	default:
		return "error using the API"
	}
}

func (e *APIError) Unwrap() error { return e.Err }
