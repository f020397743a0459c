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

package frame

import (
	"testing"

	"github.com/corvidae-audio/mp3dec/internal/bits"
	"github.com/corvidae-audio/mp3dec/internal/frameheader"
	"github.com/corvidae-audio/mp3dec/internal/sideinfo"
)

// TestDecodeMonoAllZeroGranuleIsSilent feeds a fully zeroed side-info
// block (part2_3_length, big_values, global_gain all 0) through a mono
// MPEG-1 frame. With no Huffman bits to consume and no scale factors to
// apply, every stage downstream should settle on exact silence once the
// filterbank history has flushed.
func TestDecodeMonoAllZeroGranuleIsSilent(t *testing.T) {
	h := frameheader.FrameHeader(0xfffb50c4) // MPEG-1, Layer III, mono
	si := &sideinfo.SideInfo{}
	md := bits.New(make([]byte, 256))

	s := NewState()
	var out []int16
	s.Decode(h, si, md, &out)

	wantSamples := h.Granules() * 576 * 2 // mono output is channel-duplicated
	if len(out) != wantSamples {
		t.Fatalf("len(out) = %d, want %d", len(out), wantSamples)
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %d, want 0 for an all-zero granule", i, v)
		}
	}
}

// TestDecodeStereoAllZeroGranuleIsSilent exercises the two-channel path
// with a plain-stereo header (neither mid/side nor intensity is active)
// and all-zero input, and checks that the output is one interleaved
// stereo frame (granules * 576 * 2 samples) of silence.
func TestDecodeStereoAllZeroGranuleIsSilent(t *testing.T) {
	h := frameheader.FrameHeader(0xfffb5004) // MPEG-1, Layer III, stereo
	if h.NumberOfChannels() != 2 {
		t.Fatalf("test header should be stereo, got %d channels", h.NumberOfChannels())
	}
	si := &sideinfo.SideInfo{}
	md := bits.New(make([]byte, 256))

	s := NewState()
	var out []int16
	s.Decode(h, si, md, &out)

	wantSamples := h.Granules() * 576 * 2
	if len(out) != wantSamples {
		t.Fatalf("len(out) = %d, want %d", len(out), wantSamples)
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %d, want 0 for an all-zero granule", i, v)
		}
	}
}
