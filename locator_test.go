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
	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/ginkgo/v2/dsl/table"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("finding processes", func() {

	processes := []ProcessEntry{
		{PID: 4, Name: "System"},
		{PID: 42, Name: "audiodg.exe"},
		{PID: 666, Name: "explorer.exe"},
		{PID: 1000, Name: "audiodg.exe"},
	}

	DescribeTable("resolving names to PIDs",
		func(name string, expected uint32) {
			p := &fakePlatform{processes: processes}
			Expect(FindProcess(p, name)).To(Equal(expected))
			Expect(p.liveSnapshots).To(BeZero())
		},
		Entry("only match", "explorer.exe", uint32(666)),
		Entry("first of several matches", "audiodg.exe", uint32(42)),
		Entry("first entry", "System", uint32(4)),
	)

	It("picks the first match in the order the platform provides", func() {
		p := &fakePlatform{processes: []ProcessEntry{
			{PID: 1000, Name: "audiodg.exe"},
			{PID: 42, Name: "audiodg.exe"},
		}}
		Expect(Successful(FindProcess(p, "audiodg.exe"))).To(Equal(uint32(1000)))
	})

	DescribeTable("not finding processes",
		func(procs []ProcessEntry, name string) {
			p := &fakePlatform{processes: procs}
			Expect(FindProcess(p, name)).Error().To(
				MatchError(&ProcessNotFoundError{Name: name}))
			Expect(p.liveSnapshots).To(BeZero())
		},
		Entry("empty process list", nil, "audiodg.exe"),
		Entry("no match", processes, "notepad.exe"),
		Entry("names are case sensitive", processes, "AUDIODG.EXE"),
		Entry("no partial matches", processes, "audiodg"),
	)

	It("doesn't take a snapshot for an empty name", func() {
		p := &fakePlatform{processes: processes}
		Expect(FindProcess(p, "")).Error().To(MatchError(&ProcessNotFoundError{}))
		Expect(p.snapshots).To(BeZero())
	})

	It("reports failing snapshots", func() {
		p := &fakePlatform{snapshotErr: errBoom}
		_, err := FindProcess(p, "audiodg.exe")
		Expect(err).To(MatchError(errBoom))
		Expect(err).To(BeAssignableToTypeOf(&APIError{}))
		Expect(err.Error()).To(Equal("unable to read process list: boom"))
	})

})
