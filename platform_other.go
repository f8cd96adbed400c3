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

//go:build !linux && !windows

package procpin

// NativePlatform returns a platform that fails all operations with
// [ErrUnsupported].
func NativePlatform() Platform {
	return unsupportedPlatform{}
}

type unsupportedPlatform struct{}

func (unsupportedPlatform) SnapshotProcesses() (ProcessSnapshot, error) {
	return nil, ErrUnsupported
}

func (unsupportedPlatform) OpenProcess(uint32, AccessRights) (ProcessHandle, error) {
	return nil, ErrUnsupported
}

func (unsupportedPlatform) ProcessAffinity(ProcessHandle) (Mask, Mask, error) {
	return 0, 0, ErrUnsupported
}

func (unsupportedPlatform) SetProcessAffinity(ProcessHandle, Mask) error {
	return ErrUnsupported
}
