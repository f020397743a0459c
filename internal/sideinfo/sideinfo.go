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

// Package sideinfo parses the Layer III side-information block that
// follows the frame header (and CRC, if present): per-granule per-channel
// Huffman region layout, block-switch flags, and scale-factor framing.
// MPEG-1 side info covers two granules and carries an SCFSI bitmap;
// MPEG-2/2.5 side info covers a single granule and carries none (scale
// factors are always re-sent per granule, partitioned by internal/scalefactor).
package sideinfo

import (
	"github.com/corvidae-audio/mp3dec/internal/bits"
	"github.com/corvidae-audio/mp3dec/internal/consts"
	"github.com/corvidae-audio/mp3dec/internal/frameheader"
)

// SideInfo is the parsed side-information block for one frame.
// Index order is [gr][ch]; for MPEG-2/2.5, only gr==0 is populated.
type SideInfo struct {
	MainDataBegin int       // 9 bits MPEG-1, 8 bits MPEG-2/2.5
	PrivateBits   int        // 5 bits mono, 3 bits stereo (MPEG-1); 1/2 bits (MPEG-2/2.5)
	Scfsi         [2][4]int  // 1 bit; MPEG-1 only, always 0 for MPEG-2/2.5

	Part2_3Length    [2][2]int
	BigValues        [2][2]int
	GlobalGain       [2][2]int
	ScalefacCompress [2][2]int
	WinSwitchFlag    [2][2]int

	BlockType      [2][2]int
	MixedBlockFlag [2][2]int
	TableSelect    [2][2][3]int
	SubblockGain   [2][2][3]int

	Region0Count [2][2]int
	Region1Count [2][2]int

	Preflag           [2][2]int
	ScalefacScale     [2][2]int
	Count1TableSelect [2][2]int

	// The MPEG-2/2.5 slen/nr partition widths are not stored here: side
	// info alone doesn't name a partition, only scalefacCompress, which
	// internal/scalefactor expands and records in ScaleFactors.SlenL/SlenS.
}

// Read parses a side-information block from b, which must be positioned
// at the first bit of side info (i.e. immediately after any CRC).
func Read(b *bits.Bits, h frameheader.FrameHeader) *SideInfo {
	si := &SideInfo{}
	nGr := h.Granules()
	nCh := h.NumberOfChannels()
	lsf := h.LowSamplingFrequency()

	if lsf {
		si.MainDataBegin = int(b.GetBits(8))
	} else {
		si.MainDataBegin = int(b.GetBits(9))
	}

	if nCh == 1 {
		si.PrivateBits = int(b.GetBits(map[bool]int{true: 1, false: 5}[lsf]))
	} else {
		si.PrivateBits = int(b.GetBits(map[bool]int{true: 2, false: 3}[lsf]))
	}

	if !lsf {
		for ch := 0; ch < nCh; ch++ {
			for band := 0; band < 4; band++ {
				si.Scfsi[ch][band] = int(b.GetBits(1))
			}
		}
	}

	for gr := 0; gr < nGr; gr++ {
		for ch := 0; ch < nCh; ch++ {
			si.Part2_3Length[gr][ch] = int(b.GetBits(12))
			si.BigValues[gr][ch] = int(b.GetBits(9))
			si.GlobalGain[gr][ch] = int(b.GetBits(8))
			if lsf {
				si.ScalefacCompress[gr][ch] = int(b.GetBits(9))
			} else {
				si.ScalefacCompress[gr][ch] = int(b.GetBits(4))
			}
			si.WinSwitchFlag[gr][ch] = int(b.GetBits(1))

			if si.WinSwitchFlag[gr][ch] == 1 {
				si.BlockType[gr][ch] = int(b.GetBits(2))
				si.MixedBlockFlag[gr][ch] = int(b.GetBits(1))

				for region := 0; region < 2; region++ {
					si.TableSelect[gr][ch][region] = int(b.GetBits(5))
				}
				for window := 0; window < 3; window++ {
					si.SubblockGain[gr][ch][window] = int(b.GetBits(3))
				}

				// Region counts are implicit for window-switched blocks
				// (each count is one less than the bands it covers):
				// region0 spans 8 long-block scale-factor bands (9 for a
				// pure short block) and region1 takes the rest of the 22.
				if si.BlockType[gr][ch] == 0 {
					// Reserved combination (switch flag set, block type 0)
					// per the standard; not decodable, callers should
					// treat Part2_3Length-driven skip as the fallback.
					si.Region0Count[gr][ch] = 0
					si.Region1Count[gr][ch] = 0
				} else {
					if si.BlockType[gr][ch] == 2 && si.MixedBlockFlag[gr][ch] == 0 {
						si.Region0Count[gr][ch] = 8
					} else {
						si.Region0Count[gr][ch] = 7
					}
					si.Region1Count[gr][ch] = 20 - si.Region0Count[gr][ch]
				}
			} else {
				for region := 0; region < 3; region++ {
					si.TableSelect[gr][ch][region] = int(b.GetBits(5))
				}
				si.Region0Count[gr][ch] = int(b.GetBits(4))
				si.Region1Count[gr][ch] = int(b.GetBits(3))
				si.BlockType[gr][ch] = 0
			}

			si.Preflag[gr][ch] = 0
			if !lsf {
				si.Preflag[gr][ch] = int(b.GetBits(1))
			}
			si.ScalefacScale[gr][ch] = int(b.GetBits(1))
			si.Count1TableSelect[gr][ch] = int(b.GetBits(1))
		}
	}
	return si
}

// Bytes returns the number of whole bytes the side-information block
// occupies on the wire for the given header, matching consts.SideInfoBytes.
func Bytes(h frameheader.FrameHeader) int {
	return consts.SideInfoBytes(h.ID(), h.NumberOfChannels())
}
