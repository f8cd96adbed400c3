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

var _ = Describe("cpu lists", func() {

	DescribeTable("generating textual representations",
		func(list List, expected string) {
			Expect(list.String()).To(Equal(expected))
		},
		Entry(nil, List{}, ""),
		Entry(nil, List{{1, 1}, {2, 42}, {63, 63}}, "1,2-42,63"),
		Entry(nil, List{{2, 42}}, "2-42"),
	)

	When("parsing lists from text", func() {

		It("returns nothing from nothing", func() {
			Expect(ParseList([]byte(""))).To(Equal(List{}))
		})

		It("returns a single cpu", func() {
			Expect(ParseList([]byte("42"))).To(Equal(List{[2]uint{42, 42}}))
		})

		It("returns a single range", func() {
			Expect(ParseList([]byte("0-3"))).To(Equal(List{[2]uint{0, 3}}))
		})

		It("accepts sysfs contents", func() {
			Expect(ParseList([]byte("0-7\n"))).To(Equal(List{[2]uint{0, 7}}))
		})

		It("altogether", func() {
			Expect(ParseList([]byte("1-42,50,60-61"))).To(
				Equal(List{[2]uint{1, 42}, [2]uint{50, 50}, [2]uint{60, 61}}))
		})

		DescribeTable("parsing errors",
			func(s string, msg string) {
				Expect(ParseList([]byte(s))).Error().To(MatchError(msg))
			},
			Entry(nil, "abc", "expected unsigned integer number"),
			Entry(nil, "0abc", "expected '-' or ','"),
			Entry(nil, "1-z", "expected unsigned integer number"),
			Entry(nil, "0-0abc", "expected ','"),
			Entry(nil, "3-1", "invalid range 3-1"),
		)

	})

	DescribeTable("converting into masks",
		func(l string, expected Mask) {
			Expect(Successful(ParseList([]byte(l))).Mask()).To(Equal(expected))
		},
		Entry(nil, "", Mask(0)),
		Entry(nil, "0", Mask(0b1)),
		Entry(nil, "0-1", Mask(0b11)),
		Entry(nil, "0,2-3", Mask(0b1101)),
		Entry(nil, "63", Mask(1<<63)),
	)

	It("rejects CPUs beyond the mask size", func() {
		Expect(List{{60, 64}}.Mask()).Error().To(MatchError(ContainSubstring("cpu 64")))
	})

	DescribeTable("clipping lists to the mask size",
		func(l string, expected Mask) {
			Expect(Successful(ParseList([]byte(l))).clippedMask()).To(Equal(expected))
		},
		Entry(nil, "0-3,6", Mask(0b1001111)),
		Entry(nil, "0-127", ^Mask(0)),
		Entry(nil, "60-70,100", Mask(0xf)<<60),
		Entry(nil, "64-127", Mask(0)),
	)

	It("round-trips through masks", func() {
		l := Successful(ParseList([]byte("1,3-5,40-63")))
		Expect(Successful(l.Mask()).List()).To(Equal(l))
	})

})
