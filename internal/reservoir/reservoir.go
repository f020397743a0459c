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

// Package reservoir assembles each frame's main data: Layer III allows a
// granule's Huffman data to borrow unused capacity from previous frames,
// addressed backward from the current frame's main-data pointer via
// side_info.main_data_begin. This package owns the rolling byte buffer
// that makes that borrowing possible, mirroring the reference decoder's
// per-frame memmove/memcpy bit-reservoir management in MP3Decode.
package reservoir

import (
	"github.com/corvidae-audio/mp3dec/internal/bits"
	"github.com/corvidae-audio/mp3dec/internal/consts"
)

// Reservoir holds the tail of previously-seen main-data bytes so a frame
// whose main_data_begin points backward can be assembled into one
// contiguous buffer.
type Reservoir struct {
	buf []byte

	// selfContained, when true, rejects any frame with a nonzero
	// main_data_begin: each frame's main data must be fully contained in
	// that frame (the "useSize"/RTP framing mode).
	selfContained bool
}

// New returns an empty reservoir.
func New() *Reservoir {
	return &Reservoir{}
}

// SetSelfContained toggles self-contained ("RFC 3119 RTP") framing mode.
func (r *Reservoir) SetSelfContained(v bool) {
	r.selfContained = v
}

// SelfContained reports whether self-contained framing mode is active.
func (r *Reservoir) SelfContained() bool {
	return r.selfContained
}

// Reset discards any carried-over bytes, used when resynchronizing after
// a bad frame or a seek.
func (r *Reservoir) Reset() {
	r.buf = nil
}

// Assemble builds the bit-reader main data for the current frame.
// mainDataBegin is the number of bytes, counted backward from the start
// of this frame's main-data section, at which the granule data for this
// frame actually begins. payload is this frame's own main-data bytes
// (the frame, minus header, CRC, and side info).
//
// It returns ErrMaindataUnderflow (via consts.StageError) when
// mainDataBegin requests more history than the reservoir has accumulated,
// which happens at stream start and after any dropped frame.
func (r *Reservoir) Assemble(mainDataBegin int, payload []byte) (*bits.Bits, error) {
	if r.selfContained {
		if mainDataBegin != 0 {
			return nil, &consts.StageError{
				Code:   consts.ErrMaindataUnderflow,
				Stage:  "reservoir",
				Reason: "main_data_begin must be 0 in self-contained frame mode",
			}
		}
		b := bits.New(payload)
		r.buf = nil
		return b, nil
	}

	if mainDataBegin > len(r.buf) {
		// Not enough history yet (typical for the first frame or two
		// after a sync loss); carry this frame's bytes forward and
		// report underflow so the caller can skip decoding this frame
		// without losing reservoir continuity.
		r.buf = append(r.buf, payload...)
		r.trim()
		return nil, &consts.StageError{
			Code:   consts.ErrMaindataUnderflow,
			Stage:  "reservoir",
			Reason: "insufficient main-data history",
		}
	}

	start := len(r.buf) - mainDataBegin
	combined := make([]byte, 0, mainDataBegin+len(payload))
	combined = append(combined, r.buf[start:]...)
	combined = append(combined, payload...)

	r.buf = append(r.buf, payload...)
	r.trim()

	return bits.New(combined), nil
}

// maxBacklog bounds how much history the reservoir keeps: main_data_begin
// is at most 9 bits wide (511) under MPEG-1, so nothing past that can ever
// be addressed.
const maxBacklog = 511

func (r *Reservoir) trim() {
	if len(r.buf) > maxBacklog {
		r.buf = r.buf[len(r.buf)-maxBacklog:]
	}
}
