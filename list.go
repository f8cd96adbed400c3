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
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/thediveo/faf"
)

// List is a list of CPU [from...to] ranges. CPU numbers are starting from zero.
type List [][2]uint

// String returns the CPU list in textual format, with the individual ranges
// “x-y” separated by “,” and single CPU ranges collapsed into “x” (instead of
// “x-x”).
func (l List) String() string {
	var b strings.Builder
	for idx, cpurange := range l {
		if idx > 0 {
			b.WriteString(",")
		}
		if cpurange[0] == cpurange[1] {
			fmt.Fprintf(&b, "%d", cpurange[0])
			continue
		}
		fmt.Fprintf(&b, "%d-%d", cpurange[0], cpurange[1])
	}
	return b.String()
}

// ParseList returns a new CPU List for the given textual list format, such as
// “0-3,8”. Surrounding white space, such as the trailing newline of sysfs
// files, is ignored. If the text is malformed then an error is returned
// instead.
func ParseList(b []byte) (List, error) {
	bs := faf.NewBytestring(bytes.TrimSpace(b))
	l := List{}
	for {
		if bs.EOL() {
			return l, nil
		}
		from, ok := bs.Uint64()
		if !ok {
			return nil, errors.New("expected unsigned integer number")
		}
		if bs.EOL() {
			return append(l, [2]uint{uint(from), uint(from)}), nil
		}
		switch ch, _ := bs.Next(); ch {
		case '-':
			to, ok := bs.Uint64()
			if !ok {
				return nil, errors.New("expected unsigned integer number")
			}
			if to < from {
				return nil, fmt.Errorf("invalid range %d-%d", from, to)
			}
			l = append(l, [2]uint{uint(from), uint(to)})
			if bs.EOL() {
				return l, nil
			}
			ch, _ = bs.Next()
			if ch != ',' {
				return nil, errors.New("expected ','")
			}
		case ',':
			l = append(l, [2]uint{uint(from), uint(from)})
		default:
			return nil, errors.New("expected '-' or ','")
		}
	}
}

// Mask returns the affinity Mask corresponding with this list. It returns an
// error if the list contains CPUs a Mask cannot represent.
func (l List) Mask() (Mask, error) {
	var m Mask
	for _, r := range l {
		if r[0] > r[1] {
			return 0, fmt.Errorf("invalid range %d-%d", r[0], r[1])
		}
		if r[1] >= MaxCPUs {
			return 0, fmt.Errorf("cpu %d beyond the %d CPUs of an affinity mask",
				r[1], MaxCPUs)
		}
		m = m.AddRange(r[0], r[1])
	}
	return m, nil
}

// clippedMask returns the Mask of the CPUs in this list that a Mask can
// address, ignoring any CPUs from MaxCPUs on. Invalid ranges are skipped.
func (l List) clippedMask() Mask {
	var m Mask
	for _, r := range l {
		if r[0] > r[1] || r[0] >= MaxCPUs {
			continue
		}
		m = m.AddRange(r[0], min(r[1], MaxCPUs-1))
	}
	return m
}
