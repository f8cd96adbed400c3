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
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/ginkgo/v2/dsl/table"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("affinity masks", func() {

	DescribeTable("converting into lists",
		func(m Mask, expected List) {
			Expect(m.List()).To(Equal(expected))
		},
		Entry("empty mask", Mask(0), List{}),
		Entry("single cpu #0", Mask(1<<0), List{{0, 0}}),
		Entry("single cpu #63", Mask(1<<63), List{{63, 63}}),
		Entry("cpus #1-3", Mask(0xe), List{{1, 3}}),
		Entry("cpu #1-2, #62", Mask(1<<62|1<<2|1<<1), List{{1, 2}, {62, 62}}),
		Entry("all cpus", ^Mask(0), List{{0, 63}}),
		Entry("b/w", Mask(0xaa0), List{{5, 5}, {7, 7}, {9, 9}, {11, 11}}),
		Entry("art", Mask(0x5a0), List{{5, 5}, {7, 8}, {10, 10}}),
	)

	It("validates against the system mask", func() {
		Expect(Mask(0b0011).Applicable(0b1111)).To(BeTrue())
		Expect(Mask(0b1111).Applicable(0b1111)).To(BeTrue())
		Expect(Mask(0).Applicable(0b1111)).To(BeTrue())
		Expect(Mask(0b10000).Applicable(0b1111)).To(BeFalse())
		Expect(Mask(0b0101).Applicable(0b0011)).To(BeFalse())
	})

	It("validates iff no bit lies outside the system mask", func() {
		applicable := func(desired, system Mask) bool {
			for cpu := uint(0); cpu < MaxCPUs; cpu++ {
				if desired.IsSet(cpu) && !system.IsSet(cpu) {
					return false
				}
			}
			return true
		}
		rng := rand.New(rand.NewPCG(42, 666))
		for range 10000 {
			system := Mask(rng.Uint64())
			desired := Mask(rng.Uint64())
			if rng.IntN(2) == 0 {
				desired &= system
			}
			Expect(desired.Applicable(system)).To(Equal(applicable(desired, system)),
				"desired %s, system %s", desired, system)
		}
	})

	It("renders hex and binary", func() {
		Expect(Mask(0).String()).To(Equal("0x0"))
		Expect(Mask(0xf).String()).To(Equal("0xf"))
		Expect(Mask(0b101).Binary()).To(HaveLen(64))
		Expect(Mask(0b101).Binary()).To(HaveSuffix("0101"))
	})

	When("testing and adding CPUs", func() {

		It("correctly tests", func() {
			Expect(Mask(2).IsSet(0)).To(BeFalse())
			Expect(Mask(2).IsSet(1)).To(BeTrue())
			Expect(Mask(^Mask(0)).IsSet(666)).To(BeFalse())
		})

		It("adds CPU ranges", func() {
			Expect(Mask(0).AddRange(1, 1).AddRange(61, 63).String()).To(Equal("0xe000000000000002"))
		})

		It("panics on invalid ranges", func() {
			Expect(func() { Mask(0).AddRange(3, 1) }).To(Panic())
			Expect(func() { Mask(0).AddRange(1, 64) }).To(Panic())
		})

	})

	DescribeTable("parsing masks",
		func(s string, expected Mask) {
			Expect(Successful(ParseMask(s))).To(Equal(expected))
		},
		Entry(nil, "1", Mask(1)),
		Entry(nil, "0x0f", Mask(0xf)),
		Entry(nil, "0b0011", Mask(3)),
		Entry(nil, "0o17", Mask(0xf)),
		Entry(nil, " 0xff_00 ", Mask(0xff00)),
	)

	DescribeTable("rejecting malformed masks",
		func(s string) {
			Expect(ParseMask(s)).Error().To(HaveOccurred())
		},
		Entry(nil, ""),
		Entry(nil, "cpu0"),
		Entry(nil, "-1"),
		Entry(nil, "0x10000000000000000"),
	)

	It("folds kernel cpu sets into masks", func() {
		m, beyond := maskFromWords(nil)
		Expect(m).To(BeZero())
		Expect(beyond).To(BeFalse())

		m, beyond = maskFromWords([]uint64{0xf, 0, 0})
		Expect(m).To(Equal(Mask(0xf)))
		Expect(beyond).To(BeFalse())

		m, beyond = maskFromWords([]uint64{0xf, 1})
		Expect(m).To(Equal(Mask(0xf)))
		Expect(beyond).To(BeTrue())
	})

})
