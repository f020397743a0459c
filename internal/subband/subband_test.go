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

package subband

import "testing"

func TestSynthAllZeroInputYieldsSilence(t *testing.T) {
	var s State
	var samples [32]int32
	out := make([]int16, 32)
	for block := 0; block < 20; block++ {
		s.Synth(samples, out)
		for i, v := range out {
			if v != 0 {
				t.Fatalf("block %d: out[%d] = %d, want 0 for all-zero input", block, i, v)
			}
		}
	}
}

func TestClipToShortSaturatesPositive(t *testing.T) {
	if got := ClipToShort(1 << 26); got != 32767 {
		t.Errorf("ClipToShort(2<<25) = %d, want 32767", got)
	}
}

func TestClipToShortSaturatesNegative(t *testing.T) {
	if got := ClipToShort(-(1 << 26)); got != -32767 {
		t.Errorf("ClipToShort(-2<<25) = %d, want -32767", got)
	}
}

func TestClipToShortPassesThroughMidRange(t *testing.T) {
	got := ClipToShort(1 << 24) // 0.5 in Q25
	want := int16(32767 / 2)
	if got != want {
		t.Errorf("ClipToShort(1<<24) = %d, want %d", got, want)
	}
}

func TestSynthHistoryAffectsSubsequentBlocks(t *testing.T) {
	var s1, s2 State
	var impulse [32]int32
	impulse[0] = 1 << 25
	var zero [32]int32

	out := make([]int16, 32)
	s1.Synth(impulse, out)
	s1.Synth(zero, out)
	afterImpulse := make([]int16, 32)
	copy(afterImpulse, out)

	s2.Synth(zero, out)
	s2.Synth(zero, out)
	allZeroHistory := make([]int16, 32)
	copy(allZeroHistory, out)

	same := true
	for i := range afterImpulse {
		if afterImpulse[i] != allZeroHistory[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected the impulse's filter tail to influence the following block")
	}
}
