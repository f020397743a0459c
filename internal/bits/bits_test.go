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

package bits_test

import (
	"testing"

	. "github.com/corvidae-audio/mp3dec/internal/bits"
)

func TestGetBits(t *testing.T) {
	b1 := byte(85)  // 01010101
	b2 := byte(170) // 10101010
	b3 := byte(204) // 11001100
	b4 := byte(51)  // 00110011
	b := New([]byte{b1, b2, b3, b4})

	if got := b.GetBits(1); got != 0 {
		t.Fatalf("GetBits(1) = %d, want 0", got)
	}
	if got := b.GetBits(1); got != 1 {
		t.Fatalf("GetBits(1) = %d, want 1", got)
	}
	if got := b.GetBits(1); got != 0 {
		t.Fatalf("GetBits(1) = %d, want 0", got)
	}
	if got := b.GetBits(1); got != 1 {
		t.Fatalf("GetBits(1) = %d, want 1", got)
	}
	if got := b.GetBits(8); got != 90 /* 01011010 */ {
		t.Fatalf("GetBits(8) = %d, want 90", got)
	}
	if got := b.GetBits(12); got != 2764 /* 101011001100 */ {
		t.Fatalf("GetBits(12) = %d, want 2764", got)
	}
}

func TestGetBitsSplitAbove25(t *testing.T) {
	buf := []byte{0xff, 0xff, 0xff, 0xff, 0x00, 0x00}
	b := New(buf)
	if got := b.GetBits(32); got != 0xffffffff {
		t.Fatalf("GetBits(32) = %#x, want 0xffffffff", got)
	}
}

func TestBitsConsumedRoundTrip(t *testing.T) {
	buf := []byte{0x12, 0x34, 0x56, 0x78, 0x9a}
	b := New(buf)
	b.GetBits(3)
	b.GetBits(13)
	if got, want := b.BitsConsumed(), 16; got != want {
		t.Fatalf("BitsConsumed() = %d, want %d", got, want)
	}
	if got, want := b.Remaining(), len(buf)*8-16; got != want {
		t.Fatalf("Remaining() = %d, want %d", got, want)
	}
}

func TestSetBitPos(t *testing.T) {
	buf := []byte{0x12, 0x34, 0x56, 0x78}
	b := New(buf)
	b.SetBitPos(8)
	if got := b.GetBits(8); got != 0x34 {
		t.Fatalf("GetBits(8) after SetBitPos(8) = %#x, want 0x34", got)
	}
}
