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
	"strings"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/ginkgo/v2/dsl/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("errors and outcomes", func() {

	DescribeTable("rendering API errors",
		func(err *APIError, expected string) {
			Expect(err.Error()).To(Equal(expected))
		},
		Entry("message and error", &APIError{Message: "opening process foo.exe", Err: errBoom}, "opening process foo.exe: boom"),
		Entry("operation and error", &APIError{Op: "SetProcessAffinityMask", Err: errBoom}, "SetProcessAffinityMask: boom"),
		Entry("error only", &APIError{Err: errBoom}, "error using the API: boom"),
		Entry("message only", &APIError{Message: "GetProcessAffinityMask"}, "error using the API: GetProcessAffinityMask"),
		Entry("nothing", &APIError{}, "error using the API"),
	)

	It("unwraps API errors", func() {
		Expect(&APIError{Err: errBoom}).To(MatchError(errBoom))
	})

	It("renders missing processes", func() {
		Expect((&ProcessNotFoundError{Name: "audiodg.exe"}).Error()).To(
			Equal("cannot find a process with the name audiodg.exe"))
	})

	It("renders invalid masks in binary", func() {
		lines := strings.Split((&InvalidMaskError{Desired: 0b10000, System: 0b1111}).Error(), "\n")
		Expect(lines).To(HaveExactElements(
			"affinity mask not applicable on this system:",
			"process mask: "+strings.Repeat("0", 59)+"10000",
			"system mask:  "+strings.Repeat("0", 60)+"1111",
		))
	})

	It("renders unrepresentable affinities", func() {
		Expect((&UnrepresentableAffinityError{Reason: "includes CPUs beyond 63"}).Error()).To(
			Equal("affinity not representable as a mask: includes CPUs beyond 63"))
	})

	It("renders outcomes", func() {
		Expect(updated("audiodg.exe", 42, 0x1, 0x3, 0xf).String()).To(Equal(
			"Updated affinity mask for process audiodg.exe with PID 42: 1 -> 3 (system affinity mask: f)"))
		Expect(updated("audiodg.exe", 42, 0x1, 0x3, ^Mask(0)).String()).To(HaveSuffix(
			"(system affinity mask: ffffffffffffffff)"))
		Expect(unchanged("audiodg.exe", 42, 0x1, 0xf).String()).To(Equal(
			"Affinity mask for process audiodg.exe with PID 42 already set to 1 (system affinity mask: f)"))
	})

	It("names outcome kinds", func() {
		Expect(Updated.String()).To(Equal("updated"))
		Expect(Unchanged.String()).To(Equal("unchanged"))
		Expect(OutcomeKind(42).String()).To(Equal("OutcomeKind(42)"))
	})

})
