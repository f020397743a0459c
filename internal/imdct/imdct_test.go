// Copyright 2017 Hajime Hoshi
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package imdct

import "testing"

func TestAntiAliasPureShortBlockIsNoOp(t *testing.T) {
	x := make([]int32, 576)
	for i := range x {
		x[i] = int32(i + 1)
	}
	want := make([]int32, len(x))
	copy(want, x)
	AntiAlias(x, 2, false)
	for i := range x {
		if x[i] != want[i] {
			t.Fatalf("pure short block: x[%d] changed from %v to %v", i, want[i], x[i])
		}
	}
}

func TestAntiAliasLongBlockButterfliesBoundary(t *testing.T) {
	x := make([]int32, 36)
	x[17] = 1 << 20
	x[18] = 1 << 20
	AntiAlias(x, 0, false)
	cs, ca := csa[0][0], csa[0][1]
	wantLo := mulQ31(1<<20, cs) - mulQ31(1<<20, ca)
	wantHi := mulQ31(1<<20, cs) + mulQ31(1<<20, ca)
	if x[17] != wantLo {
		t.Errorf("x[17] = %v, want %v", x[17], wantLo)
	}
	if x[18] != wantHi {
		t.Errorf("x[18] = %v, want %v", x[18], wantHi)
	}
}

func TestLongAllZeroInput(t *testing.T) {
	var in [18]int32
	for bt := 0; bt < 4; bt++ {
		out := Long(in, bt)
		for i, v := range out {
			if v != 0 {
				t.Fatalf("blockType=%d: out[%d] = %v, want 0", bt, i, v)
			}
		}
	}
}

func TestShortAllZeroInput(t *testing.T) {
	var in [3][6]int32
	out := Short(in)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want 0", i, v)
		}
	}
}

func TestOverlapAddCarriesTailIntoNextBlock(t *testing.T) {
	var o Overlap
	var first [36]int32
	for i := range first {
		first[i] = int32(i + 1)
	}
	out := make([]int32, 18)
	o.Add(0, 0, first, out)
	for i := 0; i < 18; i++ {
		if out[i] != first[i] {
			t.Fatalf("first block out[%d] = %v, want %v (no prior tail)", i, out[i], first[i])
		}
	}

	var second [36]int32
	o.Add(0, 0, second, out)
	for i := 0; i < 18; i++ {
		want := first[18+i]
		if out[i] != want {
			t.Fatalf("second block out[%d] = %v, want %v (carried tail)", i, out[i], want)
		}
	}
}

func TestFrequencyInvertEvenSubbandIsNoOp(t *testing.T) {
	block := []int32{1, 2, 3, 4}
	want := []int32{1, 2, 3, 4}
	FrequencyInvert(0, block)
	for i := range block {
		if block[i] != want[i] {
			t.Fatalf("even subband: block[%d] = %v, want %v", i, block[i], want[i])
		}
	}
}

func TestFrequencyInvertOddSubbandNegatesOddIndices(t *testing.T) {
	block := []int32{1, 2, 3, 4}
	want := []int32{1, -2, 3, -4}
	FrequencyInvert(1, block)
	for i := range block {
		if block[i] != want[i] {
			t.Fatalf("odd subband: block[%d] = %v, want %v", i, block[i], want[i])
		}
	}
}
