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

// Package imdct implements the anti-alias butterfly, the hybrid synthesis
// (IMDCT plus windowing and overlap-add), and frequency inversion stages
// that turn one granule's 576 dequantized frequency lines into 576
// time-domain samples ready for the polyphase filterbank. Every sample
// entering and leaving this package is a Q25 fixed-point int32 (the same
// format dequant.FracBits produces); every coefficient table is Q31.
// There is no floating-point arithmetic in the per-sample decode path —
// math.Sin/math.Cos appear only in this package's init(), building the
// Q31 window/cosine constant tables once at program start, never inside
// AntiAlias/Long/Short/Overlap.Add/FrequencyInvert themselves.
//
// The reference decoder computes the 36-point IMDCT via a fast 9-point
// IDCT kernel (c9_0..c9_4) to avoid a 36x36 matrix multiply; this package
// instead uses the direct matrix form (one multiply-accumulate per
// output/input pair), which is mathematically equivalent and far shorter
// to express clearly, at the cost of doing more arithmetic than the fast
// kernel. See DESIGN.md for why the fast-kernel route was not taken.
package imdct

import "math"

// mulQ31 multiplies a Q25 signal sample by a Q31 coefficient, returning a
// Q25 result: the fixed-point equivalent of the reference decoder's
// 32-bit signed multiply-high (MULSHIFT32).
func mulQ31(a int32, q31 int32) int32 {
	return int32((int64(a) * int64(q31)) >> 31)
}

func toQ31(v float64) int32 {
	q := int64(math.Round(v * (1 << 31)))
	if q > 0x7fffffff {
		q = 0x7fffffff
	}
	if q < -0x80000000 {
		q = -0x80000000
	}
	return int32(q)
}

// csa holds the 8 anti-alias butterfly coefficient pairs (ISO/IEC
// 11172-3 Table 3-B.9, cs then ca for each of the 8 boundary samples) as
// Q31 fixed-point values. Ported from original_source/mp3_decoder.h's
// csa[8][2] table (there stored as cs and -ca; this package keeps the
// teacher's cs/+ca convention, so the ca half is the original table's
// value negated back to positive — confirmed numerically identical to
// the teacher's float csa table to within rounding).
var csa = [8][2]int32{
	{0x6dc253f0, 0x41daff56},
	{0x70dcebe4, 0x3c61b6b7},
	{0x798d6e73, 0x281cc0b6},
	{0x7ddd40a7, 0x1748ee8a},
	{0x7f6d20b7, 0x0c1b01d1},
	{0x7fe47e40, 0x053e5c39},
	{0x7ffcb263, 0x01d1423a},
	{0x7fffc694, 0x00793da3},
}

// AntiAlias butterflies the top 8 samples of each of the first 31
// subband boundaries in a long (or mixed block's long-block prefix)
// granule. For pure short blocks the stage is a no-op (nBfly == 0 in the
// reference decoder, since short-block subbands aren't contiguous in
// frequency the way long-block ones are).
func AntiAlias(x []int32, blockType int, mixed bool) {
	if blockType == 2 && !mixed {
		return
	}
	nBfly := 31
	if blockType == 2 && mixed {
		nBfly = 1
	}
	for sb := 0; sb < nBfly; sb++ {
		base := sb * 18
		for i := 0; i < 8; i++ {
			lo := base + 17 - i
			hi := base + 18 + i
			if hi >= len(x) {
				break
			}
			cs, ca := csa[i][0], csa[i][1]
			a, b := x[lo], x[hi]
			x[lo] = mulQ31(a, cs) - mulQ31(b, ca)
			x[hi] = mulQ31(b, cs) + mulQ31(a, ca)
		}
	}
}

// imdctWin holds the four block-type windows (normal, start, short,
// stop), each 36 samples, as Q31 fixed-point values, matching the
// reference decoder's imdctWin table. Built once at init() time via
// math.Sin — a one-time constant-table derivation, not part of the
// per-sample decode path.
var imdctWin [4][36]int32

// cosLong36[n][k] and cosShort12[n][k] are the 36-point and 12-point
// IMDCT cosine-kernel tables, likewise Q31 and built once at init().
// shortWindow is the 12-sample window applied to each of the three
// 12-point short-block IMDCT outputs before they're overlapped into the
// 36-sample block.
var cosLong36 [36][18]int32
var cosShort12 [12][6]int32
var shortWindow [12]int32

func init() {
	var f [4][36]float64
	for i := 0; i < 36; i++ {
		f[0][i] = math.Sin(math.Pi / 36 * (float64(i) + 0.5))
	}
	for i := 0; i < 18; i++ {
		f[1][i] = math.Sin(math.Pi / 36 * (float64(i) + 0.5))
	}
	for i := 18; i < 24; i++ {
		f[1][i] = 1
	}
	for i := 24; i < 30; i++ {
		f[1][i] = math.Sin(math.Pi / 12 * (float64(i) - 18 + 0.5))
	}
	for i := 30; i < 36; i++ {
		f[1][i] = 0
	}
	for i := 0; i < 12; i++ {
		f[2][i] = 0
	}
	for i := 0; i < 12; i++ {
		f[2][6+i] = math.Sin(math.Pi / 12 * (float64(i) + 0.5))
	}
	for i := 0; i < 6; i++ {
		f[3][i] = 0
	}
	for i := 6; i < 12; i++ {
		f[3][i] = math.Sin(math.Pi / 12 * (float64(i-6) + 0.5))
	}
	for i := 12; i < 18; i++ {
		f[3][i] = 1
	}
	for i := 18; i < 36; i++ {
		f[3][i] = math.Sin(math.Pi / 36 * (float64(i) + 0.5))
	}
	for bt := 0; bt < 4; bt++ {
		for i := 0; i < 36; i++ {
			imdctWin[bt][i] = toQ31(f[bt][i])
		}
	}

	for n := 0; n < 36; n++ {
		for k := 0; k < 18; k++ {
			cosLong36[n][k] = toQ31(math.Cos(math.Pi / 72 * (2*float64(n) + 1 + 18) * (2*float64(k) + 1)))
		}
	}
	for n := 0; n < 12; n++ {
		for k := 0; k < 6; k++ {
			cosShort12[n][k] = toQ31(math.Cos(math.Pi / 24 * (2*float64(n) + 1 + 6) * (2*float64(k) + 1)))
		}
		shortWindow[n] = toQ31(math.Sin(math.Pi / 12 * (float64(n) + 0.5)))
	}
}

// Long computes the windowed 36-point IMDCT of one 18-sample sub-block,
// for block types 0 (normal), 1 (start), and 3 (stop). in and the result
// are Q25.
func Long(in [18]int32, blockType int) [36]int32 {
	var out [36]int32
	for n := 0; n < 36; n++ {
		var sum int64
		for k := 0; k < 18; k++ {
			sum += int64(mulQ31(in[k], cosLong36[n][k]))
		}
		out[n] = mulQ31(clampSum(sum), imdctWin[blockType][n])
	}
	return out
}

// Short computes three independent 12-point IMDCTs (for the three windows
// of a short block), each windowed by the 12-sample short window, and
// overlaps them into the 36-sample output the way the reference
// decoder's IMDCT12x3 does: window w's 12 samples land at offset w*6,
// so the three windows overlap pairwise by 6 samples and the combined
// nonzero span covers samples 0..23, with 24..35 left at zero (matching
// the teacher's short-block handling, where that tail is only ever
// populated for mixed blocks' long-block subbands). in and the result
// are Q25.
func Short(in [3][6]int32) [36]int32 {
	var sub [3][12]int32
	for w := 0; w < 3; w++ {
		for n := 0; n < 12; n++ {
			var sum int64
			for k := 0; k < 6; k++ {
				sum += int64(mulQ31(in[w][k], cosShort12[n][k]))
			}
			sub[w][n] = mulQ31(clampSum(sum), shortWindow[n])
		}
	}
	var out [36]int32
	for w := 0; w < 3; w++ {
		offset := w * 6
		for n := 0; n < 12; n++ {
			out[offset+n] += sub[w][n]
		}
	}
	return out
}

// clampSum folds an accumulated multiply-add sum (which can briefly
// exceed one Q25 sample's range while several Q31-scaled terms are being
// summed) back into int32 range before the final windowing multiply.
func clampSum(sum int64) int32 {
	const maxV = (1 << 31) - 1
	const minV = -(1 << 31)
	if sum > maxV {
		return maxV
	}
	if sum < minV {
		return minV
	}
	return int32(sum)
}

// Overlap holds the persistent 18-sample tail carried from one granule's
// IMDCT output into the next, per channel and per subband. Q25.
type Overlap struct {
	store [2][32][18]int32
}

// Add overlaps freq (36 samples, the current block's IMDCT output for one
// subband) with the stored tail from the previous block, writes the first
// 18 summed samples to out, and saves the new tail.
func (o *Overlap) Add(ch, sb int, freq [36]int32, out []int32) {
	for i := 0; i < 18; i++ {
		out[i] = freq[i] + o.store[ch][sb][i]
		o.store[ch][sb][i] = freq[18+i]
	}
}

// FrequencyInvert negates every other sample of odd-numbered subbands,
// undoing the frequency-domain mirroring the polyphase analysis
// filterbank introduced at the encoder.
func FrequencyInvert(sb int, block []int32) {
	if sb%2 == 0 {
		return
	}
	for i := 1; i < len(block); i += 2 {
		block[i] = -block[i]
	}
}
