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

// Operation names used in APIErrors.
const (
	OpGetProcessAffinityMask = "GetProcessAffinityMask"
	OpSetProcessAffinityMask = "SetProcessAffinityMask"
)

// accessRights are the only rights ever requested on a target process.
const accessRights = QueryLimitedInformation | SetInformation

// Controller pins processes using a Platform. A Controller keeps no state
// between calls.
type Controller struct {
	platform Platform
}

// NewController returns a Controller working on the specified platform.
func NewController(p Platform) *Controller {
	return &Controller{platform: p}
}

// SetProcessAffinity sets the affinity mask of the named process using the
// native platform. See [Controller.SetProcessAffinity] for details.
func SetProcessAffinity(name string, mask Mask) (Outcome, error) {
	return NewController(NativePlatform()).SetProcessAffinity(name, mask)
}

// SetProcessAffinity runs a single read-decide-apply cycle on the named
// process: if the current affinity of the process differs from the desired
// mask and the desired mask is applicable to the system affinity mask, the
// desired mask gets applied. The process name is resolved anew on each call,
// so restarted processes are picked up.
//
// A process affinity that is no single Mask, see
// [UnrepresentableAffinityError], always counts as differing.
//
// Any failure stops the cycle and is returned as is; there are no retries.
func (c *Controller) SetProcessAffinity(name string, desired Mask) (Outcome, error) {
	pid, err := FindProcess(c.platform, name)
	if err != nil {
		return Outcome{}, err
	}

	h, err := c.platform.OpenProcess(pid, accessRights)
	if err != nil {
		return Outcome{}, &APIError{
			Message: fmt.Sprintf("opening process %s", name),
			Err:     err,
		}
	}
	defer h.Close()

	current, system, err := c.platform.ProcessAffinity(h)
	var unrepresentable *UnrepresentableAffinityError
	switch {
	case errors.As(err, &unrepresentable):
		current, system = unrepresentable.Process, unrepresentable.System
	case err != nil:
		return Outcome{}, &APIError{Op: OpGetProcessAffinityMask, Err: err}
	case current == desired:
		return unchanged(name, pid, current, system), nil
	}
	if !desired.Applicable(system) {
		return Outcome{}, &InvalidMaskError{Desired: desired, System: system}
	}
	if err := c.platform.SetProcessAffinity(h, desired); err != nil {
		return Outcome{}, &APIError{Op: OpSetProcessAffinityMask, Err: err}
	}
	return updated(name, pid, current, desired, system), nil
}
