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

//go:build windows

package procpin

import (
	"errors"
	"fmt"
	"iter"
	"unsafe"

	"golang.org/x/sys/windows"
)

// x/sys/windows doesn't wrap the process affinity functions, so we need to
// go to kernel32 ourselves.
var (
	modkernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procGetProcessAffinityMask = modkernel32.NewProc("GetProcessAffinityMask")
	procSetProcessAffinityMask = modkernel32.NewProc("SetProcessAffinityMask")
)

// NativePlatform returns the Windows platform, based on ToolHelp32 process
// snapshots and the kernel32 process affinity functions.
func NativePlatform() Platform {
	return windowsPlatform{}
}

type windowsPlatform struct{}

type windowsSnapshot struct {
	h windows.Handle
}

type windowsProcess struct {
	h   windows.Handle
	pid uint32
}

func (windowsPlatform) SnapshotProcesses() (ProcessSnapshot, error) {
	h, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot: %w", err)
	}
	return &windowsSnapshot{h: h}, nil
}

// Entries walks the snapshot using Process32First/Process32Next; the walk
// ends at the last entry or on the first error.
func (s *windowsSnapshot) Entries() iter.Seq[ProcessEntry] {
	return func(yield func(ProcessEntry) bool) {
		var entry windows.ProcessEntry32
		entry.Size = uint32(unsafe.Sizeof(entry))
		err := windows.Process32First(s.h, &entry)
		for err == nil {
			if !yield(ProcessEntry{
				PID:  entry.ProcessID,
				Name: windows.UTF16ToString(entry.ExeFile[:]),
			}) {
				return
			}
			err = windows.Process32Next(s.h, &entry)
		}
	}
}

func (s *windowsSnapshot) Close() error {
	if s.h == windows.InvalidHandle {
		return nil
	}
	err := windows.CloseHandle(s.h)
	s.h = windows.InvalidHandle
	return err
}

func (windowsPlatform) OpenProcess(pid uint32, access AccessRights) (ProcessHandle, error) {
	h, err := windows.OpenProcess(uint32(access), false, pid)
	if err != nil {
		return nil, err
	}
	return &windowsProcess{h: h, pid: pid}, nil
}

func (p *windowsProcess) PID() uint32 { return p.pid }

func (p *windowsProcess) Close() error {
	if p.h == 0 {
		return nil
	}
	err := windows.CloseHandle(p.h)
	p.h = 0
	return err
}

func (windowsPlatform) ProcessAffinity(h ProcessHandle) (process, system Mask, err error) {
	wh, err := windowsHandle(h)
	if err != nil {
		return 0, 0, err
	}
	var procmask, sysmask uintptr
	r1, _, e1 := procGetProcessAffinityMask.Call(uintptr(wh),
		uintptr(unsafe.Pointer(&procmask)), uintptr(unsafe.Pointer(&sysmask)))
	if r1 == 0 {
		return 0, 0, callError(e1)
	}
	return Mask(procmask), Mask(sysmask), nil
}

func (windowsPlatform) SetProcessAffinity(h ProcessHandle, mask Mask) error {
	wh, err := windowsHandle(h)
	if err != nil {
		return err
	}
	r1, _, e1 := procSetProcessAffinityMask.Call(uintptr(wh), uintptr(mask))
	if r1 == 0 {
		return callError(e1)
	}
	return nil
}

func windowsHandle(h ProcessHandle) (windows.Handle, error) {
	wp, ok := h.(*windowsProcess)
	if !ok || wp.h == 0 {
		return 0, errors.New("not an open windows process handle")
	}
	return wp.h, nil
}

// callError returns the last error of a failed LazyProc call, falling back
// to ERROR_INVALID_PARAMETER when the call did not leave any error code.
func callError(e error) error {
	var errno windows.Errno
	if errors.As(e, &errno) && errno != 0 {
		return errno
	}
	return windows.ERROR_INVALID_PARAMETER
}
