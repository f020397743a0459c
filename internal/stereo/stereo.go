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

// Package stereo reconstructs left/right frequency lines from the
// joint-stereo encodings Layer III allows: mid-side (M/S) and intensity
// stereo, each with an MPEG-1 and an MPEG-2/2.5 variant of the intensity
// position-to-weight mapping.
package stereo

// isRatiosMPEG1Q31 is the classic is_ratio table (ISFMpeg1), as Q31
// fixed-point fractions: illegal position 7 is handled by the caller,
// never indexed here.
var isRatiosMPEG1Q31 = [7]int32{
	0, 0x1b0cb174, 0x2ed9eba2, 0x40000000, 0x5126145e, 0x64f34e8c, 0x7fffffff,
}

// mulQ31 multiplies a Q25 frequency-line value by a Q31 fraction,
// matching the fixed-point convention the rest of the decode pipeline
// uses (dequant.FracBits == 25 lines in, same format out).
func mulQ31(a int32, fracQ31 int32) int32 {
	return int32((int64(a) * int64(fracQ31)) >> 31)
}

// MidSide reconstructs left/right lines from mid/side lines in place,
// for the first nonZeroBound samples (beyond which both channels are
// silent and nothing needs reconstructing).
func MidSide(mid, side []int32, nonZeroBound int) {
	for i := 0; i < nonZeroBound && i < len(mid) && i < len(side); i++ {
		m, s := mid[i], side[i]
		mid[i] = m + s
		side[i] = m - s
	}
}

// IntensityMPEG1 applies intensity stereo to the right channel above the
// point where individual right-channel lines stop being transmitted
// (isPos taken from the right channel's scale factors, reinterpreted as a
// position index 0-6; 7 means "not intensity-coded, leave as is").
func IntensityMPEG1(left, right []int32, isPos []int, firstIntensityBand int) {
	for i := firstIntensityBand; i < len(left) && i < len(isPos); i++ {
		pos := isPos[i]
		if pos < 0 || pos > 6 {
			// pos == 7 is the "not intensity-coded" sentinel; any other
			// out-of-range raw scale-factor value is treated the same way
			// rather than risking an out-of-bounds table read.
			continue
		}
		ratioQ31 := isRatiosMPEG1Q31[pos]
		l := left[i]
		r := mulQ31(l, ratioQ31)
		right[i] = r
		left[i] = l - r
	}
}

// IntensityMPEG2 applies the MPEG-2/2.5 variant, where the scale factor
// itself (not a 3-bit position) encodes the intensity weight via
// intensityScale; illegalPos is (1<<slen)-1, the sentinel meaning "not
// intensity-coded".
func IntensityMPEG2(left, right []int32, isPos []int, illegalPos int, intensityScale int, firstIntensityBand int) {
	for i := firstIntensityBand; i < len(left) && i < len(isPos); i++ {
		pos := isPos[i]
		if pos < 0 || pos == illegalPos {
			continue
		}
		var k0, k1 int32
		if pos&1 != 0 {
			k0 = isPow(intensityScale, (pos+1)>>1)
			k1 = 0x7fffffff
		} else {
			k0 = 0x7fffffff
			k1 = isPow(intensityScale, pos>>1)
		}
		l := left[i]
		right[i] = mulQ31(l, k1)
		left[i] = mulQ31(l, k0)
	}
}

// isPow returns base^n as a Q31 fraction, where base is 0.5 or 1/sqrt2
// depending on intensity_scale, matching the reference decoder's
// repeated-multiply table construction.
func isPow(intensityScale, n int) int32 {
	base := int32(0x40000000) // Q31(0.5)
	if intensityScale == 1 {
		base = 0x5a82799a // Q31(1/sqrt2)
	}
	v := int32(0x7fffffff)
	if n > 0 {
		v = base
		for i := 1; i < n; i++ {
			v = mulQ31(v, base)
		}
	}
	return v
}
