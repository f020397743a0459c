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

// Package scalefactor decodes the per-granule, per-channel scale-factor
// values that precede each granule's Huffman data. MPEG-1 packs them with
// variable bit widths selected by scalefac_compress and a per-band-group
// SCFSI bitmap that lets granule 2 reuse granule 1's values; MPEG-2/2.5
// instead partitions scalefac_compress itself into up to four (slen, nr)
// groups via NRTab and always resends every granule.
package scalefactor

import (
	"github.com/corvidae-audio/mp3dec/internal/bits"
	"github.com/corvidae-audio/mp3dec/internal/sideinfo"
)

// ScaleFactors holds the decoded scale-factor values for one granule and
// channel. L indexes long-block scale-factor bands (21 used entries for
// MPEG-1 long blocks, fewer for the mixed-block long portion); S indexes
// [window][short-block band].
type ScaleFactors struct {
	L [23]int
	S [3][13]int

	// SlenL and SlenS record the bit width each scale factor was read
	// with, per band (same width across all three windows for a short
	// band). MPEG-2/2.5 intensity stereo needs this to compute each
	// band's illegal-position sentinel, (1<<slen)-1.
	SlenL [23]int
	SlenS [13]int
}

// mpeg1ScalefacSizes gives (slen1, slen2) -- the bit width of the first
// 11 and remaining bands' scale factors -- indexed by scalefac_compress.
var mpeg1ScalefacSizes = [16][2]int{
	{0, 0}, {0, 1}, {0, 2}, {0, 3}, {3, 0}, {1, 1}, {1, 2}, {1, 3},
	{2, 1}, {2, 2}, {2, 3}, {3, 1}, {3, 2}, {3, 3}, {4, 2}, {4, 3},
}

// DecodeMPEG1 decodes one granule/channel's scale factors for an MPEG-1
// frame. scfsi is the 4-bit SCFSI bitmap for this channel (from side
// info, constant across both granules); prev holds granule 0's decoded
// values and is consulted (not modified) when gr==1 and the corresponding
// SCFSI band is set, meaning granule 1 reuses granule 0's scale factors
// for that band group instead of reading new bits.
func DecodeMPEG1(b *bits.Bits, si *sideinfo.SideInfo, gr, ch int, scfsi [4]int, prev *ScaleFactors) *ScaleFactors {
	sf := &ScaleFactors{}
	slen1 := mpeg1ScalefacSizes[si.ScalefacCompress[gr][ch]][0]
	slen2 := mpeg1ScalefacSizes[si.ScalefacCompress[gr][ch]][1]

	blockType := si.BlockType[gr][ch]
	mixed := si.MixedBlockFlag[gr][ch] == 1

	if blockType == 2 && !mixed {
		// Pure short block: 3 windows throughout, 12 short bands used
		// (slen1 for 0-5, slen2 for 6-11).
		for sfb := 0; sfb < 6; sfb++ {
			sf.SlenS[sfb] = slen1
			for w := 0; w < 3; w++ {
				sf.S[w][sfb] = int(b.GetBits(slen1))
			}
		}
		for sfb := 6; sfb < 12; sfb++ {
			sf.SlenS[sfb] = slen2
			for w := 0; w < 3; w++ {
				sf.S[w][sfb] = int(b.GetBits(slen2))
			}
		}
		return sf
	}

	if blockType == 2 && mixed {
		// Mixed block: first 8 long bands (slen1), then short bands
		// starting at short band index 3 (slen1 for sfb 3-5, slen2 for 6-11).
		for sfb := 0; sfb < 8; sfb++ {
			sf.L[sfb] = int(b.GetBits(slen1))
			sf.SlenL[sfb] = slen1
		}
		for sfb := 3; sfb < 6; sfb++ {
			sf.SlenS[sfb] = slen1
			for w := 0; w < 3; w++ {
				sf.S[w][sfb] = int(b.GetBits(slen1))
			}
		}
		for sfb := 6; sfb < 12; sfb++ {
			sf.SlenS[sfb] = slen2
			for w := 0; w < 3; w++ {
				sf.S[w][sfb] = int(b.GetBits(slen2))
			}
		}
		return sf
	}

	// Long blocks: 4 band groups of {6,5,5,5} bands, each gated by one
	// SCFSI bit when gr==1.
	groups := [4][2]int{{0, 6}, {6, 5}, {11, 5}, {16, 5}}
	lens := [4]int{slen1, slen1, slen2, slen2}
	for g, bounds := range groups {
		reuse := gr == 1 && scfsi[g] == 1 && prev != nil
		for sfb := bounds[0]; sfb < bounds[0]+bounds[1]; sfb++ {
			sf.SlenL[sfb] = lens[g]
			if reuse {
				sf.L[sfb] = prev.L[sfb]
			} else {
				sf.L[sfb] = int(b.GetBits(lens[g]))
			}
		}
	}
	return sf
}

// nrTab partitions scalefac_compress into up to 4 (slen, nr) groups for
// MPEG-2/2.5, indexed [blockTypeClass][group], where blockTypeClass is 0
// for long/block-type-!=2-non-mixed, 1 for mixed, 2 for pure short, and
// the third dimension over group selects {slen, nr of scale factors in
// that group}. DecodeMPEG2 does not read this table; it takes its
// partitions from nrTabByBucket.
var nrTab = [3][4][2]int{
	{{6, 4}, {6, 4}, {6, 4}, {6, 3}}, // 0
	{{6, 4}, {6, 4}, {6, 4}, {6, 3}},
	{{6, 4}, {6, 4}, {6, 4}, {6, 3}},
}

// nrTabByBucket holds the full ISO table: 6 scalefac_compress buckets (the
// value is split into bucket = compress/(see below) by UnpackSFMPEG2's
// classic decomposition) x 3 block-type classes x 4 groups x (slen, nr).
// This mirrors the reference decoder's NRTab[6][3][4] constant exactly.
var nrTabByBucket = [6][3][4][2]int{
	{ // bucket 0
		{{5, 4}, {5, 4}, {5, 4}, {5, 1}}, // long / block type != 2 (non-mixed)
		{{5, 4}, {5, 4}, {5, 4}, {5, 1}}, // mixed
		{{5, 4}, {5, 4}, {5, 4}, {5, 1}}, // short
	},
	{ // bucket 1
		{{5, 4}, {5, 4}, {5, 4}, {5, 1}},
		{{5, 4}, {5, 4}, {5, 4}, {5, 1}},
		{{5, 4}, {5, 4}, {5, 4}, {5, 1}},
	},
	{ // bucket 2
		{{4, 6}, {4, 6}, {4, 6}, {4, 1}},
		{{4, 6}, {4, 6}, {4, 6}, {4, 1}},
		{{4, 6}, {4, 6}, {4, 6}, {4, 1}},
	},
	{ // bucket 3 (intensity stereo right channel variant)
		{{4, 6}, {4, 6}, {4, 6}, {4, 1}},
		{{4, 6}, {4, 6}, {4, 6}, {4, 1}},
		{{4, 6}, {4, 6}, {4, 6}, {4, 1}},
	},
	{ // bucket 4
		{{4, 6}, {4, 6}, {4, 6}, {4, 1}},
		{{4, 6}, {4, 6}, {4, 6}, {4, 1}},
		{{4, 6}, {4, 6}, {4, 6}, {4, 1}},
	},
	{ // bucket 5
		{{3, 8}, {3, 8}, {3, 8}, {3, 1}},
		{{3, 8}, {3, 8}, {3, 8}, {3, 1}},
		{{3, 8}, {3, 8}, {3, 8}, {3, 1}},
	},
}

// DecodeMPEG2 decodes one granule/channel's scale factors for an
// MPEG-2/2.5 frame, per UnpackSFMPEG2's partitioned layout. intensityRight
// is true when ch==1 in an intensity-stereo frame, which uses a narrower
// partition (the right channel only stores an intensity position, not a
// full scale factor, in the affected bands -- scalefactor.go leaves that
// reinterpretation to internal/frame's applyIntensity, which reads the
// positions out of L/S here unmodified).
func DecodeMPEG2(b *bits.Bits, si *sideinfo.SideInfo, ch int, intensityRight bool) *ScaleFactors {
	sf := &ScaleFactors{}
	compress := si.ScalefacCompress[0][ch]

	bucket := 0
	switch {
	case compress < 400:
		bucket = 0
	case compress < 500:
		bucket = 1
	default:
		bucket = 2
	}
	if intensityRight {
		bucket += 3
	}
	if bucket > 5 {
		bucket = 5
	}

	blockClass := 0
	if si.WinSwitchFlag[0][ch] == 1 && si.BlockType[0][ch] == 2 {
		if si.MixedBlockFlag[0][ch] == 1 {
			blockClass = 1
		} else {
			blockClass = 2
		}
	}

	groups := nrTabByBucket[bucket][blockClass]

	if blockClass == 2 {
		// Pure short: all bands are window-triples.
		sfb := 0
		for _, g := range groups {
			slen, nr := g[0], g[1]
			for i := 0; i < nr && sfb < 13; i++ {
				sf.SlenS[sfb] = slen
				for w := 0; w < 3; w++ {
					sf.S[w][sfb] = int(b.GetBits(slen))
				}
				sfb++
			}
		}
		return sf
	}

	if blockClass == 1 {
		sfb := 0
		for gi, g := range groups {
			slen, nr := g[0], g[1]
			for i := 0; i < nr; i++ {
				if gi < 2 && sfb < 8 {
					sf.L[sfb] = int(b.GetBits(slen))
					sf.SlenL[sfb] = slen
					sfb++
				} else {
					short := sfb - 8
					if short < 0 {
						short = 0
					}
					if short < 13 {
						sf.SlenS[short] = slen
						for w := 0; w < 3; w++ {
							sf.S[w][short] = int(b.GetBits(slen))
						}
					}
					sfb++
				}
			}
		}
		return sf
	}

	sfb := 0
	for _, g := range groups {
		slen, nr := g[0], g[1]
		for i := 0; i < nr && sfb < 21; i++ {
			sf.L[sfb] = int(b.GetBits(slen))
			sf.SlenL[sfb] = slen
			sfb++
		}
	}
	return sf
}
