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

package huffman

import (
	"github.com/corvidae-audio/mp3dec/internal/bits"
	"github.com/corvidae-audio/mp3dec/internal/consts"
	"github.com/corvidae-audio/mp3dec/internal/sideinfo"
)

// DecodeGranule decodes all 576 frequency lines for one granule/channel:
// the big_values region (itself split into up to three sub-regions, each
// with its own pair table), followed by the count1 region of quads, up to
// part2_3_length bits or 576 values, whichever comes first. The second
// return value is nonZeroBound: the number of lines actually carrying
// Huffman-decoded data before the trailing zero-fill, i.e. where
// intensity-stereo-only coding (if any) begins for this channel.
func DecodeGranule(b *bits.Bits, si *sideinfo.SideInfo, sfb consts.SfBandTable, gr, ch int, part2Start int) ([576]int32, int) {
	var is [576]int32

	bigValues := si.BigValues[gr][ch] * 2
	if bigValues > 576 {
		bigValues = 576
	}
	region0Count := si.Region0Count[gr][ch] + 1
	region1Count := si.Region1Count[gr][ch] + 1

	var region0End, region1End int
	if si.WinSwitchFlag[gr][ch] == 1 && si.BlockType[gr][ch] == 2 {
		// Short/mixed blocks: region boundaries are fixed sample counts,
		// not scale-factor-band-table lookups.
		region0End = 36
		region1End = 576
	} else {
		region0End = sfBandBoundary(sfb.Long[:], region0Count)
		region1End = sfBandBoundary(sfb.Long[:], region0Count+region1Count)
	}
	if region0End > bigValues {
		region0End = bigValues
	}
	if region1End > bigValues {
		region1End = bigValues
	}

	i := 0
	for i < region0End && i < bigValues {
		x, y := DecodePair(b, si.TableSelect[gr][ch][0])
		is[i], is[i+1] = int32(x), int32(y)
		i += 2
	}
	for i < region1End && i < bigValues {
		x, y := DecodePair(b, si.TableSelect[gr][ch][1])
		is[i], is[i+1] = int32(x), int32(y)
		i += 2
	}
	for i < bigValues {
		x, y := DecodePair(b, si.TableSelect[gr][ch][2])
		is[i], is[i+1] = int32(x), int32(y)
		i += 2
	}

	endBit := part2Start + si.Part2_3Length[gr][ch]
	for i+4 <= 576 && b.BitsConsumed() < endBit {
		v, w, x, y := DecodeQuad(b, si.Count1TableSelect[gr][ch])
		is[i] = int32(v)
		is[i+1] = int32(w)
		is[i+2] = int32(x)
		is[i+3] = int32(y)
		i += 4
	}

	// Any bits left in this granule's allotment past the last decoded
	// quad are stuffing; realign to the declared boundary exactly.
	if b.BitsConsumed() < endBit {
		b.SkipBits(endBit - b.BitsConsumed())
	} else if b.BitsConsumed() > endBit && i > bigValues {
		// A corrupt count1 table can overrun; drop the last decoded quad
		// (the zero-fill below clears it) so dequantization doesn't see
		// data that oversteps this granule.
		i -= 4
	}

	nonZeroBound := i
	for ; i < 576; i++ {
		is[i] = 0
	}

	return is, nonZeroBound
}

func sfBandBoundary(table []int, count int) int {
	if count < 0 {
		return 0
	}
	if count >= len(table) {
		return table[len(table)-1]
	}
	return table[count]
}
