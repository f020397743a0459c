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

// Package mp3 implements a fixed-point MPEG-1/2/2.5 Layer III decoder:
// give it an io.ReadCloser over an MP3 byte stream and read back 16-bit
// stereo PCM.
package mp3

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/corvidae-audio/mp3dec/internal/consts"
	"github.com/corvidae-audio/mp3dec/internal/frame"
	"github.com/corvidae-audio/mp3dec/internal/frameheader"
	"github.com/corvidae-audio/mp3dec/internal/reservoir"
)

// BytesPerSample is the size of one interleaved stereo PCM sample: two
// channels, 16 bits each.
const BytesPerSample = 4

// FrameInfo mirrors the reference decoder's MP3GetLastFrameInfo: a
// snapshot of the most recently decoded frame's header fields.
type FrameInfo struct {
	Version        consts.Version
	BitrateKbps    int
	SampleRate     int
	Channels       int
	SamplesPerFrame int
}

// A Decoder is an MP3-decoded stream. Decoder decodes its underlying
// source on the fly; the stream is always formatted as 16-bit (little
// endian) stereo PCM, even when the source is single-channel, matching
// the teacher's stream contract.
type Decoder struct {
	source      *source
	reservoir   *reservoir.Reservoir
	frameState  *frame.State
	sampleRate  int
	length      int64
	frameStarts []int64
	buf         []byte
	pos         int64
	lastHeader  frameheader.FrameHeader
	haveHeader  bool
}

// ErrInvalidHeader is returned when a frame header names a version/layer
// combination this decoder cannot handle (anything but Layer III).
var ErrInvalidHeader = errors.New("mp3: invalid or unsupported frame header")

func (d *Decoder) readFrame() error {
	df, _, err := d.source.readNextFrame()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		if _, ok := err.(*consts.UnexpectedEOF); ok {
			return io.EOF
		}
		return err
	}

	md, err := d.reservoir.Assemble(df.mainDataBegin, df.payload)
	if err != nil {
		// Underflow (not enough reservoir history yet: stream start or
		// just after a resync) or a nonzero main_data_begin in
		// self-contained mode. This frame contributes a frame of silence;
		// move on.
		d.buf = append(d.buf, make([]byte, consts.SamplesPerFrame(df.header.ID())*BytesPerSample)...)
		return nil
	}

	var pcm []int16
	d.frameState.Decode(df.header, df.sideInfo, md, &pcm)

	buf := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		buf[2*i] = byte(s)
		buf[2*i+1] = byte(s >> 8)
	}
	d.buf = append(d.buf, buf...)
	d.lastHeader = df.header
	d.haveHeader = true
	return nil
}

// Read is io.Reader's Read.
func (d *Decoder) Read(buf []byte) (int, error) {
	for len(d.buf) == 0 {
		if err := d.readFrame(); err != nil {
			return 0, err
		}
	}
	n := copy(buf, d.buf)
	d.buf = d.buf[n:]
	d.pos += int64(n)
	return n, nil
}

// Seek is io.Seeker's Seek.
//
// Seek panics when the underlying source is not io.Seeker.
func (d *Decoder) Seek(offset int64, whence int) (int64, error) {
	npos := int64(0)
	switch whence {
	case io.SeekStart:
		npos = offset
	case io.SeekCurrent:
		npos = d.pos + offset
	case io.SeekEnd:
		npos = d.length + offset
	default:
		panic(fmt.Sprintf("mp3: invalid whence: %v", whence))
	}
	d.pos = npos
	d.buf = nil
	d.reservoir.Reset()
	d.frameState = frame.NewState()

	idx := 0
	if len(d.frameStarts) > 0 {
		idx = int(npos / int64(BytesPerSample) / int64(consts.SamplesPerFrame(consts.Version1)))
		if idx >= len(d.frameStarts) {
			idx = len(d.frameStarts) - 1
		}
		if idx < 0 {
			idx = 0
		}
	}
	if _, err := d.source.Seek(d.frameStarts[idx], io.SeekStart); err != nil {
		return 0, err
	}
	return npos, nil
}

// Close is io.Closer's Close.
func (d *Decoder) Close() error {
	return d.source.Close()
}

// SampleRate returns the sample rate like 44100.
//
// Note that the sample rate is retrieved from the first frame.
func (d *Decoder) SampleRate() int {
	return d.sampleRate
}

// Length returns the total size in bytes.
//
// Length returns -1 when the total size is not available, e.g. when the
// given source is not io.Seeker.
func (d *Decoder) Length() int64 {
	return d.length
}

// Duration returns the total playback duration, or 0 if Length is
// unavailable.
func (d *Decoder) Duration() time.Duration {
	if d.length < 0 || d.sampleRate == 0 {
		return 0
	}
	samples := d.length / BytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(d.sampleRate)
}

// ElapsedTime returns the playback position implied by the current read
// cursor.
func (d *Decoder) ElapsedTime() time.Duration {
	if d.sampleRate == 0 {
		return 0
	}
	samples := d.pos / BytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(d.sampleRate)
}

// LastFrameInfo returns a snapshot of the most recently decoded frame's
// header fields, matching the reference decoder's MP3GetLastFrameInfo.
func (d *Decoder) LastFrameInfo() (FrameInfo, bool) {
	if !d.haveHeader {
		return FrameInfo{}, false
	}
	h := d.lastHeader
	return FrameInfo{
		Version:         h.ID(),
		BitrateKbps:     consts.BitrateKbps(h.ID(), h.BitrateIndex()),
		SampleRate:      h.SamplingFrequencyValue(),
		Channels:        h.NumberOfChannels(),
		SamplesPerFrame: consts.SamplesPerFrame(h.ID()),
	}, true
}

// SetSelfContainedFrames toggles self-contained ("RFC 3119 RTP") framing
// mode, in which every frame's main_data_begin must be 0. It panics once
// the read position is nonzero (after Read has returned data, or after
// Seek has moved away from the start): toggling mid-stream would desync
// the reservoir this decoder has already built up.
func (d *Decoder) SetSelfContainedFrames(v bool) {
	if d.pos != 0 {
		panic("mp3: SetSelfContainedFrames must be called before reading begins")
	}
	d.reservoir.SetSelfContained(v)
}

// NewDecoder decodes the given io.ReadCloser and returns a decoded stream.
//
// The stream is always formatted as 16-bit (little endian) 2 channels
// even if the source is single-channel MP3. Thus, a sample always
// consists of 4 bytes.
//
// If r is io.Seeker, a decoded stream checks its length and Length
// returns a valid value.
func NewDecoder(r io.ReadCloser) (*Decoder, error) {
	s := &source{
		reader: r,
	}
	d := &Decoder{
		source:     s,
		reservoir:  reservoir.New(),
		frameState: frame.NewState(),
		length:     -1,
	}
	if _, ok := r.(io.Seeker); ok {
		if err := s.skipTags(); err != nil {
			return nil, err
		}
		l := int64(0)
		for {
			pos := int64(0)
			df, p, err := s.readNextFrame()
			if err != nil {
				if err == io.EOF {
					break
				}
				if _, ok := err.(*consts.UnexpectedEOF); ok {
					break
				}
				return nil, err
			}
			pos = p
			d.frameStarts = append(d.frameStarts, pos)
			l += int64(consts.SamplesPerFrame(df.header.ID())) * BytesPerSample
		}
		if err := s.rewind(); err != nil {
			return nil, err
		}
		d.length = l
	}
	if err := s.skipTags(); err != nil {
		return nil, err
	}
	if err := d.readFrame(); err != nil {
		return nil, err
	}
	d.sampleRate = d.lastHeader.SamplingFrequencyValue()
	return d, nil
}
