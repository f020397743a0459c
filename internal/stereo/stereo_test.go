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

package stereo

import "testing"

func TestMidSideReconstruction(t *testing.T) {
	mid := []int32{10, 0, -5}
	side := []int32{2, 0, 1}
	MidSide(mid, side, 3)
	wantL := []int32{12, 0, -4}
	wantR := []int32{8, 0, -6}
	for i := range mid {
		if mid[i] != wantL[i] || side[i] != wantR[i] {
			t.Fatalf("i=%d: got L=%d R=%d, want L=%d R=%d", i, mid[i], side[i], wantL[i], wantR[i])
		}
	}
}

func TestMidSideRespectsBound(t *testing.T) {
	mid := []int32{10, 10}
	side := []int32{2, 2}
	MidSide(mid, side, 1)
	if mid[0] != 12 || side[0] != 8 {
		t.Fatalf("index 0 should be reconstructed, got L=%d R=%d", mid[0], side[0])
	}
	if mid[1] != 10 || side[1] != 2 {
		t.Fatalf("index 1 is past the bound and should be untouched, got L=%d R=%d", mid[1], side[1])
	}
}

func TestIntensityMPEG1IllegalPositionLeavesValuesAlone(t *testing.T) {
	left := []int32{100}
	right := []int32{0}
	IntensityMPEG1(left, right, []int{7}, 0)
	if left[0] != 100 || right[0] != 0 {
		t.Fatalf("pos=7 (illegal) should be a no-op, got L=%d R=%d", left[0], right[0])
	}
}

func TestIntensityMPEG1CenterPositionSplitsEvenly(t *testing.T) {
	left := []int32{100}
	right := []int32{0}
	// position 3 is the table's 0.5 ratio: equal split between channels.
	IntensityMPEG1(left, right, []int{3}, 0)
	if left[0] != 50 || right[0] != 50 {
		t.Fatalf("center position should split evenly, got L=%d R=%d", left[0], right[0])
	}
}

func TestIntensityMPEG2IllegalPositionIsNoOp(t *testing.T) {
	left := []int32{100}
	right := []int32{0}
	illegal := 15
	IntensityMPEG2(left, right, []int{illegal}, illegal, 0, 0)
	if left[0] != 100 || right[0] != 0 {
		t.Fatalf("illegal position should be a no-op, got L=%d R=%d", left[0], right[0])
	}
}

func TestIsPowBaseSelection(t *testing.T) {
	if got := isPow(0, 1); got != 0x40000000 {
		t.Errorf("isPow(0,1) = %#x, want 0x40000000 (Q31 0.5)", got)
	}
	if got := isPow(1, 0); got != 0x7fffffff {
		t.Errorf("isPow(1,0) = %#x, want 0x7fffffff (Q31 1.0)", got)
	}
}
