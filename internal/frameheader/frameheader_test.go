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

package frameheader_test

import (
	"testing"

	"github.com/corvidae-audio/mp3dec/internal/consts"
	"github.com/corvidae-audio/mp3dec/internal/frameheader"
)

// mpeg1MonoHeader is 0xfffb50c4: MPEG-1, Layer III, no CRC, bitrate index
// 5 (64kbps), 44100Hz, no padding, single channel, original.
const mpeg1MonoHeader = frameheader.FrameHeader(0xfffb50c4)

func TestBasicFields(t *testing.T) {
	h := mpeg1MonoHeader
	if !h.IsValid() {
		t.Fatal("expected header to be valid")
	}
	if h.ID() != consts.Version1 {
		t.Errorf("ID() = %v, want Version1", h.ID())
	}
	if h.Layer() != consts.Layer3 {
		t.Errorf("Layer() = %v, want Layer3", h.Layer())
	}
	if h.ProtectionBit() != 1 {
		t.Errorf("ProtectionBit() = %d, want 1", h.ProtectionBit())
	}
	if h.BitrateIndex() != 5 {
		t.Errorf("BitrateIndex() = %d, want 5", h.BitrateIndex())
	}
	if h.SamplingFrequencyValue() != 44100 {
		t.Errorf("SamplingFrequencyValue() = %d, want 44100", h.SamplingFrequencyValue())
	}
	if h.NumberOfChannels() != 1 {
		t.Errorf("NumberOfChannels() = %d, want 1", h.NumberOfChannels())
	}
	if h.Granules() != 2 {
		t.Errorf("Granules() = %d, want 2", h.Granules())
	}
	if h.LowSamplingFrequency() {
		t.Error("LowSamplingFrequency() should be false for MPEG-1")
	}
}

func TestFrameSize(t *testing.T) {
	h := mpeg1MonoHeader
	// 144 * 64000 / 44100 = 208 (truncated), plus padding (0 here).
	if got, want := h.FrameSize(), 208; got != want {
		t.Errorf("FrameSize() = %d, want %d", got, want)
	}
}

func TestSideInfoBytes(t *testing.T) {
	h := mpeg1MonoHeader
	if got, want := h.SideInfoBytes(), 17; got != want {
		t.Errorf("SideInfoBytes() = %d, want %d", got, want)
	}
}

func TestIsValidRejectsBadSync(t *testing.T) {
	h := frameheader.FrameHeader(0x00000000)
	if h.IsValid() {
		t.Fatal("all-zero header should not be valid")
	}
}

func TestIsValidRejectsReservedBitrate(t *testing.T) {
	h := mpeg1MonoHeader | 0x0000f000
	if h.IsValid() {
		t.Fatal("bitrate index 15 should be invalid")
	}
}

func TestIsValidRejectsNonLayer3(t *testing.T) {
	// Flip the layer bits (18,17) to Layer1 (binary 11).
	h := (mpeg1MonoHeader &^ 0x00060000) | 0x00060000
	if h.Layer() != consts.Layer1 {
		t.Fatalf("test setup error: Layer() = %v", h.Layer())
	}
	if h.IsValid() {
		t.Fatal("Layer I header should be rejected by this decoder")
	}
}

func TestIsFreeFormat(t *testing.T) {
	free := mpeg1MonoHeader &^ 0x0000f000
	if !free.IsFreeFormat() {
		t.Fatal("bitrate index 0 should be free-format")
	}
	if mpeg1MonoHeader.IsFreeFormat() {
		t.Fatal("bitrate index 5 should not be free-format")
	}
}

func TestUseMSAndIntensityStereo(t *testing.T) {
	// mode = joint stereo (01), mode_extension = 11 (both MS and intensity)
	h := (mpeg1MonoHeader &^ 0x000000f0) | 0x00000070
	if !h.UseMSStereo() {
		t.Error("expected UseMSStereo to be true")
	}
	if !h.UseIntensityStereo() {
		t.Error("expected UseIntensityStereo to be true")
	}
	if h.NumberOfChannels() != 2 {
		t.Errorf("NumberOfChannels() = %d, want 2 for joint stereo", h.NumberOfChannels())
	}
}
