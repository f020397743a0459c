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

package scalefactor

import (
	"testing"

	"github.com/corvidae-audio/mp3dec/internal/bits"
	"github.com/corvidae-audio/mp3dec/internal/sideinfo"
)

func TestDecodeMPEG1LongBlockAllZero(t *testing.T) {
	si := &sideinfo.SideInfo{}
	b := bits.New(make([]byte, 32))
	sf := DecodeMPEG1(b, si, 0, 0, [4]int{}, nil)
	for sfb, v := range sf.L {
		if v != 0 {
			t.Fatalf("L[%d] = %d, want 0 (scalefac_compress 0 means slen 0,0)", sfb, v)
		}
	}
}

func TestDecodeMPEG1ReusesGranule0WhenScfsiSet(t *testing.T) {
	si := &sideinfo.SideInfo{}
	si.ScalefacCompress[1][0] = 0 // slen1=0, slen2=0, so fresh reads would be 0
	prev := &ScaleFactors{}
	prev.L[0] = 17
	prev.L[5] = 9

	scfsi := [4]int{1, 0, 0, 0} // group 0 (bands 0-5) reused from granule 0
	b := bits.New(make([]byte, 32))
	sf := DecodeMPEG1(b, si, 1, 0, scfsi, prev)

	if sf.L[0] != 17 || sf.L[5] != 9 {
		t.Fatalf("expected band group 0 to be copied from granule 0, got L[0]=%d L[5]=%d", sf.L[0], sf.L[5])
	}
}

func TestDecodeMPEG1PureShortBlock(t *testing.T) {
	si := &sideinfo.SideInfo{}
	si.BlockType[0][0] = 2
	si.MixedBlockFlag[0][0] = 0
	b := bits.New(make([]byte, 32))
	sf := DecodeMPEG1(b, si, 0, 0, [4]int{}, nil)
	for w := 0; w < 3; w++ {
		for sfb := 0; sfb < 12; sfb++ {
			if sf.S[w][sfb] != 0 {
				t.Fatalf("S[%d][%d] = %d, want 0", w, sfb, sf.S[w][sfb])
			}
		}
	}
}

func TestDecodeMPEG2LongBlockAllZero(t *testing.T) {
	si := &sideinfo.SideInfo{}
	b := bits.New(make([]byte, 32))
	sf := DecodeMPEG2(b, si, 0, false)
	for sfb, v := range sf.L {
		if v != 0 {
			t.Fatalf("L[%d] = %d, want 0", sfb, v)
		}
	}
}

func TestDecodeMPEG2PureShortBlock(t *testing.T) {
	si := &sideinfo.SideInfo{}
	si.WinSwitchFlag[0][0] = 1
	si.BlockType[0][0] = 2
	si.MixedBlockFlag[0][0] = 0
	b := bits.New(make([]byte, 32))
	sf := DecodeMPEG2(b, si, 0, false)
	for w := 0; w < 3; w++ {
		for sfb := 0; sfb < 13; sfb++ {
			if sf.S[w][sfb] != 0 {
				t.Fatalf("S[%d][%d] = %d, want 0", w, sfb, sf.S[w][sfb])
			}
		}
	}
}
