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

// Package consts holds the constants shared across the decoder's internal
// packages: version/layer/mode enums, the bitrate and sample-rate tables,
// the scale-factor band tables, and the handful of error types every stage
// can return.
package consts

import "fmt"

// Version is the 2-bit MPEG version ID stored in header bits 20-19.
type Version uint8

const (
	Version2_5      Version = 0
	VersionReserved Version = 1
	Version2        Version = 2
	Version1        Version = 3
)

func (v Version) String() string {
	switch v {
	case Version1:
		return "MPEG-1"
	case Version2:
		return "MPEG-2"
	case Version2_5:
		return "MPEG-2.5"
	default:
		return "reserved"
	}
}

// LowSamplingFrequency reports whether this version uses the MPEG-2/2.5
// side-info and scale-factor layouts (single granule, partitioned scale
// factors) rather than the MPEG-1 layout.
func (v Version) LowSamplingFrequency() bool {
	return v == Version2 || v == Version2_5
}

// Granules is the number of granules per frame for this version.
func (v Version) Granules() int {
	if v == Version1 {
		return 2
	}
	return 1
}

// Layer is the 2-bit layer ID stored in header bits 18-17.
type Layer uint8

const (
	LayerReserved Layer = 0
	Layer3        Layer = 1
	Layer2        Layer = 2
	Layer1        Layer = 3
)

// Mode is the channel mode stored in header bits 7-6.
type Mode uint8

const (
	ModeStereo        Mode = 0
	ModeJointStereo   Mode = 1
	ModeDualChannel   Mode = 2
	ModeSingleChannel Mode = 3
)

// SamplingFrequency is the 2-bit sample-rate index stored in header bits 11-10.
type SamplingFrequency uint8

var sampleRates = [4][3]int{
	// Rows are indexed by Version value. Sample-rate index 3 (reserved) is
	// never dereferenced; FrameHeader.IsValid rejects it.
	{11025, 12000, 8000},  // Version2_5
	{0, 0, 0},              // VersionReserved
	{22050, 24000, 16000}, // Version2
	{44100, 48000, 32000}, // Version1
}

// Int returns the sample rate in Hz for this index under the given version.
func (sf SamplingFrequency) Int(v Version) int {
	return sampleRates[v][sf]
}

const SamplesPerGr = 576

// SamplesPerFrame is the number of time-domain samples per channel produced
// by one frame: 1152 for MPEG-1 (two granules), 576 for MPEG-2/2.5.
func SamplesPerFrame(v Version) int {
	return SamplesPerGr * v.Granules()
}

const (
	MaxNChan  = 2
	MaxNGran  = 2
	NBands    = 32
	BlockSize = 18 // time slots per granule per subband
	// VBufLength is the length of one half of a channel's doubled
	// polyphase history buffer: 17 blocks of 32 samples.
	VBufLength = 17 * NBands
)

// layer3Bitrates holds the kbps table for MPEG-1 and MPEG-2/2.5 Layer III;
// index 0 means free-format, index 15 is invalid (rejected by the header
// parser before this table is consulted).
var layer3Bitrates = [2][16]int{
	{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0},
	{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
}

// BitrateKbps returns the Layer III bitrate in kbps for the given version
// and bitrate index (0 = free-format).
func BitrateKbps(v Version, index int) int {
	if v == Version1 {
		return layer3Bitrates[0][index]
	}
	return layer3Bitrates[1][index]
}

// SideInfoBytes returns the fixed length, in bytes, of the side-information
// section for the given version and channel count.
func SideInfoBytes(v Version, nChans int) int {
	if v == Version1 {
		if nChans == 1 {
			return 17
		}
		return 32
	}
	if nChans == 1 {
		return 9
	}
	return 17
}

// UnexpectedEOF is returned when the source runs out of bytes mid-field;
// callers treat it the same as io.EOF when it surfaces between frames.
type UnexpectedEOF struct {
	At string
}

func (e *UnexpectedEOF) Error() string {
	return fmt.Sprintf("mp3: unexpected EOF at %s", e.At)
}

// StageError is a typed error identifying which pipeline stage rejected
// the current frame, matching the ERR_MP3_* codes in the reference
// decoder. The caller's frame is zeroed and cross-frame state is
// preserved; decoding can continue with the next frame.
type StageError struct {
	Code   int
	Stage  string
	Reason string
}

func (e *StageError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("mp3: %s: invalid frame", e.Stage)
	}
	return fmt.Sprintf("mp3: %s: %s", e.Stage, e.Reason)
}

// Error codes, mirroring the reference decoder's ERR_MP3_* enum (negative
// on the wire; these are kept positive here and wrapped in StageError).
const (
	ErrIndataUnderflow = iota + 1
	ErrMaindataUnderflow
	ErrFreeBitrateSync
	ErrInvalidFrameHeader
	ErrInvalidSideInfo
	ErrInvalidScaleFact
	ErrInvalidHuffCodes
	ErrInvalidDequantize
	ErrInvalidIMDCT
	ErrInvalidSubband
)
