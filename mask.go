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
	"fmt"
	"strconv"
	"strings"
)

// Mask is a processor affinity mask: bit i set means that logical CPU i is
// eligible. Masks cover the CPUs 0-63, as Windows affinity masks are limited
// to a single processor group of at most 64 logical processors.
type Mask uint64

// MaxCPUs is the number of logical CPUs a Mask is able to represent.
const MaxCPUs = 64

// IsSet reports whether cpu is in this mask.
func (m Mask) IsSet(cpu uint) bool {
	if cpu >= MaxCPUs {
		return false
	}
	return m&(Mask(1)<<cpu) != 0
}

// AddRange returns this mask with the CPUs from the specified inclusive range
// added. It panics when from is beyond to or to cannot be represented.
func (m Mask) AddRange(from, to uint) Mask {
	if from > to {
		panic(fmt.Sprintf("invalid range %d-%d", from, to))
	}
	if to >= MaxCPUs {
		panic(fmt.Sprintf("cpu %d beyond mask size", to))
	}
	for cpu := from; cpu <= to; cpu++ {
		m |= Mask(1) << cpu
	}
	return m
}

// Applicable reports whether this mask only uses CPUs also present in the
// specified system mask.
func (m Mask) Applicable(system Mask) bool {
	return m&^system == 0
}

// String returns the mask in hexadecimal notation, such as “0xf”.
func (m Mask) String() string {
	return "0x" + strconv.FormatUint(uint64(m), 16)
}

// Binary returns the mask as 64 binary digits, most significant CPU first.
func (m Mask) Binary() string {
	return fmt.Sprintf("%064b", uint64(m))
}

// List returns the list of CPU ranges corresponding with this Mask.
func (m Mask) List() List {
	cpulist := List{}
	for cpu := uint(0); cpu < MaxCPUs; cpu++ {
		if !m.IsSet(cpu) {
			continue
		}
		from := cpu
		for cpu+1 < MaxCPUs && m.IsSet(cpu+1) {
			cpu++
		}
		cpulist = append(cpulist, [2]uint{from, cpu})
	}
	return cpulist
}

// ParseMask returns the Mask for the given integer text, which can be in
// decimal or in hexadecimal, binary, or octal notation when prefixed by “0x”,
// “0b”, or “0o” respectively. Underscores are allowed between digits.
func ParseMask(s string) (Mask, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty affinity mask")
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid affinity mask %q: %w", s, err)
	}
	return Mask(v), nil
}

// maskFromWords folds a kernel cpu bit string in units of uint64 words into a
// Mask, additionally reporting whether any CPU beyond the Mask capacity is
// set. Such CPUs are not part of the returned Mask.
func maskFromWords(words []uint64) (m Mask, beyond bool) {
	if len(words) == 0 {
		return 0, false
	}
	for _, word := range words[1:] {
		if word != 0 {
			beyond = true
			break
		}
	}
	return Mask(words[0]), beyond
}
