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

//go:build linux

package procpin

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// NativePlatform returns the Linux platform, based on procfs and the
// sched_getaffinity(2)/sched_setaffinity(2) syscalls. The system mask is the
// set of online CPUs.
//
// Linux doesn't know access rights in the Windows sense, so they are ignored.
func NativePlatform() Platform {
	return &linuxPlatform{
		procRoot:   "/proc",
		onlineCPUs: "/sys/devices/system/cpu/online",
	}
}

type linuxPlatform struct {
	procRoot   string
	onlineCPUs string
}

type linuxSnapshot struct {
	p    *linuxPlatform
	pids []uint32
}

type linuxProcess struct {
	pid uint32
	fd  int // pidfd, or -1 on kernels without pidfd support.
}

func (p *linuxPlatform) SnapshotProcesses() (ProcessSnapshot, error) {
	dirents, err := os.ReadDir(p.procRoot)
	if err != nil {
		return nil, err
	}
	pids := make([]uint32, 0, len(dirents))
	for _, dirent := range dirents {
		if !dirent.IsDir() {
			continue
		}
		pid, err := strconv.ParseUint(dirent.Name(), 10, 32)
		if err != nil {
			continue
		}
		pids = append(pids, uint32(pid))
	}
	return &linuxSnapshot{p: p, pids: pids}, nil
}

// Entries returns the processes in the lexical order of their procfs
// directory names. Process names are read while iterating, so processes that
// terminated since the snapshot was taken are silently skipped.
func (s *linuxSnapshot) Entries() iter.Seq[ProcessEntry] {
	return func(yield func(ProcessEntry) bool) {
		for _, pid := range s.pids {
			name, ok := s.p.processName(pid)
			if !ok {
				continue
			}
			if !yield(ProcessEntry{PID: pid, Name: name}) {
				return
			}
		}
	}
}

func (s *linuxSnapshot) Close() error {
	s.pids = nil
	return nil
}

// processName returns the base name of the executable of the specified
// process. If the executable link cannot be read, such as for kernel threads
// or processes of other users, it falls back to the (possibly truncated)
// command name.
func (p *linuxPlatform) processName(pid uint32) (string, bool) {
	procdir := filepath.Join(p.procRoot, strconv.FormatUint(uint64(pid), 10))
	if exe, err := os.Readlink(filepath.Join(procdir, "exe")); err == nil {
		exe = strings.TrimSuffix(exe, " (deleted)")
		return filepath.Base(exe), true
	}
	comm, err := os.ReadFile(filepath.Join(procdir, "comm"))
	if err != nil {
		return "", false
	}
	return strings.TrimSuffix(string(comm), "\n"), true
}

func (p *linuxPlatform) OpenProcess(pid uint32, _ AccessRights) (ProcessHandle, error) {
	fd, err := unix.PidfdOpen(int(pid), 0)
	if err == nil {
		return &linuxProcess{pid: pid, fd: fd}, nil
	}
	if !errors.Is(err, unix.ENOSYS) {
		return nil, err
	}
	// Kernels before 5.3 lack pidfds, so we can only check that the process
	// exists (EPERM also tells us so).
	if err := unix.Kill(int(pid), 0); err != nil && !errors.Is(err, unix.EPERM) {
		return nil, err
	}
	return &linuxProcess{pid: pid, fd: -1}, nil
}

func (h *linuxProcess) PID() uint32 { return h.pid }

func (h *linuxProcess) Close() error {
	if h.fd < 0 {
		return nil
	}
	err := unix.Close(h.fd)
	h.fd = -1
	return err
}

// alive returns an error if the process behind a pidfd has terminated, so we
// don't end up touching a different process that got the same PID.
func (h *linuxProcess) alive() error {
	if h.fd < 0 {
		return nil
	}
	return unix.PidfdSendSignal(h.fd, 0, nil, 0)
}

// ProcessAffinity returns the affinity of the main thread of the process,
// checking that all other threads share it. Otherwise, or when the affinity
// includes CPUs beyond MaxCPUs, it returns an [UnrepresentableAffinityError].
func (p *linuxPlatform) ProcessAffinity(h ProcessHandle) (process, system Mask, err error) {
	lh, err := linuxHandle(h)
	if err != nil {
		return 0, 0, err
	}
	if err := lh.alive(); err != nil {
		return 0, 0, err
	}
	system, err = p.systemMask()
	if err != nil {
		return 0, 0, err
	}
	words, err := schedGetaffinity(int(lh.pid))
	if err != nil {
		return 0, 0, err
	}
	process, beyond := maskFromWords(words)
	if beyond {
		return process, system, &UnrepresentableAffinityError{
			Process: process,
			System:  system,
			Reason:  fmt.Sprintf("includes CPUs beyond %d", MaxCPUs-1),
		}
	}
	tids, err := p.tasks(lh.pid)
	if err != nil {
		return 0, 0, err
	}
	for _, tid := range tids {
		if tid == int(lh.pid) {
			continue
		}
		words, err := schedGetaffinity(tid)
		if err != nil {
			if errors.Is(err, unix.ESRCH) {
				continue
			}
			return 0, 0, fmt.Errorf("task %d: %w", tid, err)
		}
		if taskmask, beyond := maskFromWords(words); beyond || taskmask != process {
			return process, system, &UnrepresentableAffinityError{
				Process: process,
				System:  system,
				Reason:  fmt.Sprintf("task %d differs from the main thread", tid),
			}
		}
	}
	return process, system, nil
}

// SetProcessAffinity sets the affinity of all threads of the process, as
// Linux affinities are per thread. Threads terminating while we're at it
// are skipped.
//
// Setting the affinity isn't atomic: on failure, the threads before the
// failing one already have the new affinity. The next ProcessAffinity call
// then sees differing threads, so the affinity gets applied again.
func (p *linuxPlatform) SetProcessAffinity(h ProcessHandle, mask Mask) error {
	lh, err := linuxHandle(h)
	if err != nil {
		return err
	}
	if err := lh.alive(); err != nil {
		return err
	}
	tids, err := p.tasks(lh.pid)
	if err != nil {
		return err
	}
	words := []uint64{uint64(mask)}
	for _, tid := range tids {
		if err := schedSetaffinity(tid, words); err != nil {
			if errors.Is(err, unix.ESRCH) {
				continue
			}
			return fmt.Errorf("task %d: %w", tid, err)
		}
	}
	return nil
}

// tasks returns the TIDs of the threads of the specified process.
func (p *linuxPlatform) tasks(pid uint32) ([]int, error) {
	dirents, err := os.ReadDir(filepath.Join(p.procRoot, strconv.FormatUint(uint64(pid), 10), "task"))
	if err != nil {
		return nil, err
	}
	tids := make([]int, 0, len(dirents))
	for _, dirent := range dirents {
		tid, err := strconv.Atoi(dirent.Name())
		if err != nil {
			continue
		}
		tids = append(tids, tid)
	}
	return tids, nil
}

// systemMask returns the online CPUs. CPUs beyond MaxCPUs cannot be part of
// any Mask and thus are left out.
func (p *linuxPlatform) systemMask() (Mask, error) {
	online, err := os.ReadFile(p.onlineCPUs)
	if err != nil {
		return 0, err
	}
	l, err := ParseList(online)
	if err != nil {
		return 0, fmt.Errorf("malformed online CPU list: %w", err)
	}
	return l.clippedMask(), nil
}

func linuxHandle(h ProcessHandle) (*linuxProcess, error) {
	lh, ok := h.(*linuxProcess)
	if !ok {
		return nil, errors.New("not a linux process handle")
	}
	return lh, nil
}

// setsize reflects the dynamically determined size of kernel CPU sets on this
// system (size in uint64 words). This is usually smaller than the fixed-sized
// [unix.CPUSet] that Go's [unix.SchedGetaffinity] uses.
var setsize atomic.Uint64
var wordbytesize = uint64(unsafe.Sizeof(uint64(0)))

func init() {
	setsize.Store(1)
}

// schedGetaffinity returns the CPU affinity bit string of the task with the
// passed TID. If tid is zero, then the affinity of the calling thread is
// returned.
//
// We don't use [unix.SchedGetaffinity] as this is tied to the fixed size
// [unix.CPUSet] type; instead, we dynamically figure out the size needed and
// cache the size internally.
func schedGetaffinity(tid int) ([]uint64, error) {
	var set []uint64

	setlenStart := setsize.Load()
	setlen := setlenStart
	for {
		set = make([]uint64, setlen)
		// we use RawSyscall here instead of Syscall as we know that
		// SYS_SCHED_GETAFFINITY does not block, following Go's stdlib
		// implementation.
		_, _, e := unix.RawSyscall(unix.SYS_SCHED_GETAFFINITY,
			uintptr(tid), uintptr(setlen*wordbytesize), uintptr(unsafe.Pointer(&set[0])))
		if e != 0 {
			if e == unix.EINVAL {
				setlen *= 2
				continue
			}
			return nil, e
		}
		// Set the new size; if this fails because another go routine already
		// upped the set size, retry until we either notice that we're smaller
		// than what was set as the new set size, or we succeed in setting the
		// size.
		for {
			if setsize.CompareAndSwap(setlenStart, setlen) {
				break
			}
			setlenStart = setsize.Load()
			if setlenStart > setlen {
				break
			}
		}
		return set, nil
	}
}

// schedSetaffinity sets the CPU affinity of the task with the passed TID. It
// is an error trying to set no affinities.
func schedSetaffinity(tid int, set []uint64) error {
	if len(set) == 0 {
		return unix.EINVAL
	}
	_, _, e := unix.RawSyscall(unix.SYS_SCHED_SETAFFINITY,
		uintptr(tid), uintptr(uint64(len(set))*wordbytesize), uintptr(unsafe.Pointer(&set[0])))
	if e != 0 {
		return e
	}
	return nil
}
