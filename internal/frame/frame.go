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

// Package frame orchestrates the decode of one Layer III frame's main
// data into PCM: scale factors, Huffman decode, dequantization, stereo
// processing, anti-alias/hybrid synthesis, frequency inversion, and the
// polyphase synthesis filterbank, in that order, matching the original
// decoder's per-granule per-channel loop. It owns the state that must
// survive across frames: the IMDCT overlap-add tail and each channel's
// polyphase history.
//
// Every frequency line from dequantization onward is a Q25 fixed-point
// int32; nothing in this pipeline is floating point.
package frame

import (
	"github.com/corvidae-audio/mp3dec/internal/bits"
	"github.com/corvidae-audio/mp3dec/internal/consts"
	"github.com/corvidae-audio/mp3dec/internal/dequant"
	"github.com/corvidae-audio/mp3dec/internal/frameheader"
	"github.com/corvidae-audio/mp3dec/internal/huffman"
	"github.com/corvidae-audio/mp3dec/internal/imdct"
	"github.com/corvidae-audio/mp3dec/internal/scalefactor"
	"github.com/corvidae-audio/mp3dec/internal/sideinfo"
	"github.com/corvidae-audio/mp3dec/internal/stereo"
	"github.com/corvidae-audio/mp3dec/internal/subband"
)

// State holds everything about the decode that must persist from one
// frame to the next: the hybrid-synthesis overlap-add buffers and each
// channel's polyphase filterbank history.
type State struct {
	overlap imdct.Overlap
	subband [consts.MaxNChan]subband.State
}

// NewState returns a zeroed cross-frame decode state, as at stream start
// or after a resynchronization that invalidates prior history.
func NewState() *State {
	return &State{}
}

// Decode decodes every granule of one frame's main data into interleaved
// 16-bit PCM (little-endian, stereo-duplicated if the source is mono),
// appending samples to out.
func (s *State) Decode(h frameheader.FrameHeader, si *sideinfo.SideInfo, md *bits.Bits, out *[]int16) {
	nGr := h.Granules()
	nCh := h.NumberOfChannels()
	sfb := consts.SfBandIndices(h.ID(), h.SamplingFrequency())

	var prevSF [consts.MaxNChan]*scalefactor.ScaleFactors

	for gr := 0; gr < nGr; gr++ {
		var chFreq [consts.MaxNChan][576]int32
		var chGB [consts.MaxNChan]int
		var chNonZero [consts.MaxNChan]int
		var chSF [consts.MaxNChan]*scalefactor.ScaleFactors
		var chCB [consts.MaxNChan]dequant.CriticalBandInfo

		for ch := 0; ch < nCh; ch++ {
			part2Start := md.BitsConsumed()

			var sf *scalefactor.ScaleFactors
			if h.LowSamplingFrequency() {
				sf = scalefactor.DecodeMPEG2(md, si, ch, ch == 1 && h.UseIntensityStereo())
			} else {
				sf = scalefactor.DecodeMPEG1(md, si, gr, ch, si.Scfsi[ch], prevSF[ch])
				if gr == 0 {
					prevSF[ch] = sf
				}
			}
			chSF[ch] = sf

			is, nonZeroBound := huffman.DecodeGranule(md, si, sfb, gr, ch, part2Start)
			chNonZero[ch] = nonZeroBound

			cb := dequant.CriticalBandInfo{BlockType: si.BlockType[gr][ch]}
			if si.WinSwitchFlag[gr][ch] == 1 && si.BlockType[gr][ch] == 2 {
				if si.MixedBlockFlag[gr][ch] == 1 {
					cb.CbEndL = sfb.Long[8]
				} else {
					cb.CbEndL = 0
				}
			} else {
				cb.CbEndL = 576
			}

			long, gbLong := dequant.RequantizeLong(is, sf, si, sfb, gr, ch, &cb)
			if cb.CbEndL < 576 {
				short, gbShort := dequant.RequantizeShort(is, sf, si, sfb, gr, ch, &cb)
				for i := cb.CbEndL; i < 576; i++ {
					long[i] = short[i]
				}
				if gbShort < gbLong {
					gbLong = gbShort
				}
			}
			chFreq[ch] = long
			chGB[ch] = gbLong
			chCB[ch] = cb
		}

		if nCh == 2 {
			applyStereo(h, si, sfb, gr, &chFreq, chGB, chNonZero, chSF, &chCB)
		}

		var timeDomain [consts.MaxNChan][32][18]int32
		for ch := 0; ch < nCh; ch++ {
			blockType := si.BlockType[gr][ch]
			mixed := si.MixedBlockFlag[gr][ch] == 1

			freq := chFreq[ch]

			if blockType != 2 {
				imdct.AntiAlias(freq[:], blockType, false)
			} else if mixed {
				imdct.AntiAlias(freq[:], blockType, true)
			}

			for sb := 0; sb < 32; sb++ {
				useShort := blockType == 2 && (!mixed || sb >= 2)
				var block36 [36]int32
				if useShort {
					var windows [3][6]int32
					for w := 0; w < 3; w++ {
						for i := 0; i < 6; i++ {
							windows[w][i] = freq[sb*18+w*6+i]
						}
					}
					block36 = imdct.Short(windows)
				} else {
					var in18 [18]int32
					copy(in18[:], freq[sb*18:sb*18+18])
					bt := blockType
					if bt == 2 {
						// Long subbands of a mixed block use the normal window.
						bt = 0
					}
					block36 = imdct.Long(in18, bt)
				}
				var slot18 [18]int32
				s.overlap.Add(ch, sb, block36, slot18[:])
				imdct.FrequencyInvert(sb, slot18[:])
				timeDomain[ch][sb] = slot18
			}
		}

		for ss := 0; ss < 18; ss++ {
			var pcm [consts.MaxNChan][32]int16
			for ch := 0; ch < nCh; ch++ {
				var samples [32]int32
				for sb := 0; sb < 32; sb++ {
					samples[sb] = timeDomain[ch][sb][ss]
				}
				s.subband[ch].Synth(samples, pcm[ch][:])
			}
			for i := 0; i < 32; i++ {
				*out = append(*out, pcm[0][i])
				if nCh == 2 {
					*out = append(*out, pcm[1][i])
				} else {
					*out = append(*out, pcm[0][i])
				}
			}
		}
	}
}

// guardClampBound is the magnitude a frequency line is clamped to before
// mid-side reconstruction when either channel's granule lacked a full
// guard bit (dequant's accumulated OR of magnitudes used all 31 bits,
// leaving no headroom for the sum/difference to overflow safely).
const guardClampBound = (1 << 30) - 1

func applyStereo(h frameheader.FrameHeader, si *sideinfo.SideInfo, sfb consts.SfBandTable, gr int, chFreq *[consts.MaxNChan][576]int32, gb [consts.MaxNChan]int, nonZeroBound [consts.MaxNChan]int, sf [consts.MaxNChan]*scalefactor.ScaleFactors, cb *[consts.MaxNChan]dequant.CriticalBandInfo) {
	if h.UseMSStereo() {
		mid := chFreq[0][:]
		side := chFreq[1][:]
		if gb[0] < 1 || gb[1] < 1 {
			for i := 0; i < 576; i++ {
				mid[i] = clampGuard(mid[i])
				side[i] = clampGuard(side[i])
			}
		}
		bound := nonZeroBound[0]
		if nonZeroBound[1] > bound {
			bound = nonZeroBound[1]
		}
		stereo.MidSide(mid, side, bound)
	}
	if h.UseIntensityStereo() {
		applyIntensity(h, si, sfb, gr, chFreq, nonZeroBound[1], sf[1], &cb[1])
	}
}

func clampGuard(v int32) int32 {
	if v > guardClampBound {
		return guardClampBound
	}
	if v < -guardClampBound {
		return -guardClampBound
	}
	return v
}

// applyIntensity wires internal/stereo's MPEG-1/2 intensity reconstruction
// into the decoded right channel. The right channel's scale factors above
// nonZeroBound carry intensity position data instead of real audio (the
// encoder stops sending independent right-channel Huffman data once
// intensity coding takes over); this builds a per-line position array in
// the same layout chFreq uses (long-block index, or the window-interleaved
// sb*18+w*6+i layout for short blocks) and calls the MPEG-1 or MPEG-2/2.5
// reconstruction band by band.
func applyIntensity(h frameheader.FrameHeader, si *sideinfo.SideInfo, sfb consts.SfBandTable, gr int, chFreq *[consts.MaxNChan][576]int32, nonZeroBound int, rsf *scalefactor.ScaleFactors, cb *dequant.CriticalBandInfo) {
	if rsf == nil {
		return
	}
	left := chFreq[0][:]
	right := chFreq[1][:]
	mpeg2 := h.LowSamplingFrequency()

	// Long-block (or mixed-block long prefix) bands.
	longEnd := cb.CbEndL
	for b := 0; b+1 < len(sfb.Long) && sfb.Long[b] < longEnd; b++ {
		start, end := sfb.Long[b], sfb.Long[b+1]
		if end > longEnd {
			end = longEnd
		}
		if start >= end {
			continue
		}
		pos := make([]int, end-start)
		for i := range pos {
			pos[i] = rsf.L[b]
		}
		first := 0
		if nonZeroBound > start {
			first = nonZeroBound - start
			if first > len(pos) {
				first = len(pos)
			}
		}
		if mpeg2 {
			illegal := (1 << uint(rsf.SlenL[b])) - 1
			scaleBit := intensityScaleBit(si, gr)
			stereo.IntensityMPEG2(left[start:end], right[start:end], pos, illegal, scaleBit, first)
		} else {
			stereo.IntensityMPEG1(left[start:end], right[start:end], pos, first)
		}
	}

	// Short-block bands (pure short, or the short tail of a mixed block),
	// reasoned about per window in the sb*18+w*6+i output layout.
	if longEnd >= 576 {
		return
	}
	total := 576 - longEnd
	windowLen := total / 3
	for w := 0; w < 3; w++ {
		sfbIdx := 0
		for pos := 0; pos < windowLen; pos++ {
			for sfbIdx < 12 && pos >= sfb.Short[sfbIdx+1]-sfb.Short[0] {
				sfbIdx++
			}
			sbLocal := pos / 6
			freqInSub := pos % 6
			outIdx := (longEnd/18+sbLocal)*18 + w*6 + freqInSub
			if outIdx >= 576 {
				continue
			}
			if outIdx < nonZeroBound {
				continue
			}
			band := sfbIdx
			if band >= 13 {
				continue
			}
			posVal := rsf.S[w][band]
			if mpeg2 {
				illegal := (1 << uint(rsf.SlenS[band])) - 1
				scaleBit := intensityScaleBit(si, gr)
				single := []int{posVal}
				stereo.IntensityMPEG2(left[outIdx:outIdx+1], right[outIdx:outIdx+1], single, illegal, scaleBit, 0)
			} else {
				single := []int{posVal}
				stereo.IntensityMPEG1(left[outIdx:outIdx+1], right[outIdx:outIdx+1], single, 0)
			}
		}
	}
}

// intensityScaleBit reports the MPEG-2/2.5 intensity_scale selector used
// by the is_pow geometric series (0.5 vs 1/sqrt(2) base). Per ISO/IEC
// 13818-3, this is simply the left (normal) channel's scalefac_scale bit
// for the granule, not a separately coded value.
func intensityScaleBit(si *sideinfo.SideInfo, gr int) int {
	return si.ScalefacScale[gr][0]
}
