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

// Package frameheader parses and validates the 32-bit Layer III frame
// header: sync word, version, bitrate, sample rate, and the handful of
// flag bits everything downstream keys off (channel mode, block-switch
// related padding, free-format bitrate lock-in).
package frameheader

import (
	"github.com/corvidae-audio/mp3dec/internal/consts"
)

// FrameHeader is the 32-bit Layer III frame header, held in the same bit
// layout it appears on the wire.
type FrameHeader uint32

// ID returns this header's MPEG version, stored in bits 20,19.
func (m FrameHeader) ID() consts.Version {
	return consts.Version((m & 0x00180000) >> 19)
}

// Layer returns the layer stored in bits 18,17.
func (m FrameHeader) Layer() consts.Layer {
	return consts.Layer((m & 0x00060000) >> 17)
}

// ProtectionBit returns the CRC protection bit stored in bit 16. It is 0
// when a 16-bit CRC follows the header, 1 when absent.
func (m FrameHeader) ProtectionBit() int {
	return int(m&0x00010000) >> 16
}

// BitrateIndex returns the bitrate index stored in bits 15-12. Index 0
// means free-format; index 15 is invalid and rejected by IsValid.
func (m FrameHeader) BitrateIndex() int {
	return int(m&0x0000f000) >> 12
}

// SamplingFrequency returns the sample-rate index stored in bits 11,10.
func (m FrameHeader) SamplingFrequency() consts.SamplingFrequency {
	return consts.SamplingFrequency(int(m&0x00000c00) >> 10)
}

// SamplingFrequencyValue returns the sample rate in Hz.
func (m FrameHeader) SamplingFrequencyValue() int {
	return m.SamplingFrequency().Int(m.ID())
}

// PaddingBit returns the padding bit stored in bit 9: when set, the frame
// carries one extra slot to hit the bitrate's average exactly.
func (m FrameHeader) PaddingBit() int {
	return int(m&0x00000200) >> 9
}

// PrivateBit returns the private bit stored in bit 8.
func (m FrameHeader) PrivateBit() int {
	return int(m&0x00000100) >> 8
}

// Mode returns the channel mode stored in bits 7,6.
func (m FrameHeader) Mode() consts.Mode {
	return consts.Mode((m & 0x000000c0) >> 6)
}

// ModeExtension returns the joint-stereo mode extension stored in bits 5,4.
func (m FrameHeader) ModeExtension() int {
	return int(m&0x00000030) >> 4
}

// Copyright returns the copyright bit stored in bit 3.
func (m FrameHeader) Copyright() int {
	return int(m&0x00000008) >> 3
}

// OriginalOrCopy returns the original/copy bit stored in bit 2.
func (m FrameHeader) OriginalOrCopy() int {
	return int(m&0x00000004) >> 2
}

// Emphasis returns the emphasis field stored in bits 1,0.
func (m FrameHeader) Emphasis() int {
	return int(m&0x00000003) >> 0
}

// IsValid reports whether the header's sync word and reserved fields are
// consistent with a decodable Layer III frame.
func (m FrameHeader) IsValid() bool {
	const sync = 0xffe00000
	if (m & sync) != sync {
		return false
	}
	if m.ID() == consts.VersionReserved {
		return false
	}
	if m.Layer() != consts.Layer3 {
		return false
	}
	if m.BitrateIndex() == 15 {
		return false
	}
	if m.SamplingFrequency() == 3 {
		return false
	}
	if m.Emphasis() == 2 {
		return false
	}
	return true
}

// Granules returns the number of granules per frame: 2 for MPEG-1, 1 for
// MPEG-2/2.5.
func (m FrameHeader) Granules() int {
	return m.ID().Granules()
}

// LowSamplingFrequency reports whether this is an MPEG-2 or MPEG-2.5
// header (single granule, partitioned scale factors).
func (m FrameHeader) LowSamplingFrequency() bool {
	return m.ID().LowSamplingFrequency()
}

// UseMSStereo reports whether the mid-side stereo mode is active for this
// frame: joint stereo with mode_extension bit 1 set.
func (m FrameHeader) UseMSStereo() bool {
	return m.Mode() == consts.ModeJointStereo && m.ModeExtension()&0x2 != 0
}

// UseIntensityStereo reports whether intensity stereo is active for this
// frame: joint stereo with mode_extension bit 0 set.
func (m FrameHeader) UseIntensityStereo() bool {
	return m.Mode() == consts.ModeJointStereo && m.ModeExtension()&0x1 != 0
}

// NumberOfChannels returns 1 for single-channel mode, 2 otherwise.
func (m FrameHeader) NumberOfChannels() int {
	if m.Mode() == consts.ModeSingleChannel {
		return 1
	}
	return 2
}

// BytesPerSlot is fixed at 1 for Layer III.
const BytesPerSlot = 1

// FrameSize returns the total frame length in bytes, including the header
// itself, for a header carrying an explicit (non-free-format) bitrate.
// Free-format frames must use FreeFormatFrameSize instead, since their
// bitrate index is 0 and carries no rate information on its own.
func (m FrameHeader) FrameSize() int {
	return m.FreeFormatFrameSize(consts.BitrateKbps(m.ID(), m.BitrateIndex()) * 1000)
}

// FreeFormatFrameSize computes the frame length, in bytes, for a given
// bitrate in bits/second: samples-per-frame/8 * bitrate / sample rate,
// plus the padding byte. FrameSize calls it with the header's table
// bitrate; the free-format lock-in scan in the frame reader measures the
// frame length directly from the byte distance to the next sync word
// and does not call it.
func (m FrameHeader) FreeFormatFrameSize(bitrateBps int) int {
	if bitrateBps == 0 {
		return 0
	}
	return (consts.SamplesPerFrame(m.ID())/8*bitrateBps)/m.SamplingFrequencyValue() + m.PaddingBit()
}

// IsFreeFormat reports whether this header declares free-format bitrate.
func (m FrameHeader) IsFreeFormat() bool {
	return m.BitrateIndex() == 0
}

// SideInfoBytes returns the fixed length of the side-information section
// that follows the header (and CRC, if present).
func (m FrameHeader) SideInfoBytes() int {
	return consts.SideInfoBytes(m.ID(), m.NumberOfChannels())
}
