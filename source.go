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

package mp3

import (
	"fmt"
	"io"

	"github.com/corvidae-audio/mp3dec/internal/bits"
	"github.com/corvidae-audio/mp3dec/internal/consts"
	"github.com/corvidae-audio/mp3dec/internal/frameheader"
	"github.com/corvidae-audio/mp3dec/internal/sideinfo"
)

type source struct {
	reader io.ReadCloser
	buf    []byte
	pos    int64

	// freeFormatSize caches the frame byte size, without the padding byte,
	// discovered from the distance to the first frame's successor, for
	// streams whose bitrate index is 0 (free format). The reference
	// decoder calls this lock-in: once found, the same size (plus each
	// frame's padding bit) is reused for every subsequent frame rather
	// than rescanned.
	freeFormatSize  int
	freeFormatKnown bool
}

// decodedFrame is everything readNextFrame assembles for one frame: the
// header and side info needed to drive frame.State.Decode, plus the raw
// main-data bytes (not yet merged with reservoir history -- the caller
// does that, since only it owns the cross-frame Reservoir).
type decodedFrame struct {
	header       frameheader.FrameHeader
	sideInfo     *sideinfo.SideInfo
	mainDataBegin int
	payload      []byte
}

func (s *source) Seek(position int64, whence int) (int64, error) {
	seeker, ok := s.reader.(io.Seeker)
	if !ok {
		panic("mp3: source must be io.Seeker")
	}
	s.buf = nil
	n, err := seeker.Seek(position, whence)
	if err != nil {
		return 0, err
	}
	s.pos = n
	return n, nil
}

func (s *source) Close() error {
	s.buf = nil
	return s.reader.Close()
}

func (s *source) skipTags() error {
	buf := make([]byte, 3)
	if _, err := s.ReadFull(buf); err != nil {
		return err
	}
	switch string(buf) {
	case "TAG":
		buf := make([]byte, 125)
		if _, err := s.ReadFull(buf); err != nil {
			return err
		}

	case "ID3":
		// Skip version (2 bytes) and flag (1 byte)
		buf := make([]byte, 3)
		if _, err := s.ReadFull(buf); err != nil {
			return err
		}

		buf = make([]byte, 4)
		n, err := s.ReadFull(buf)
		if err != nil {
			return err
		}
		if n != 4 {
			return nil
		}
		size := (uint32(buf[0]) << 21) | (uint32(buf[1]) << 14) |
			(uint32(buf[2]) << 7) | uint32(buf[3])
		buf = make([]byte, size)
		if _, err := s.ReadFull(buf); err != nil {
			return err
		}

	default:
		s.Unread(buf)
	}

	return nil
}

func (s *source) rewind() error {
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return err
	}
	s.pos = 0
	s.buf = nil
	return nil
}

func (s *source) Unread(buf []byte) {
	s.buf = append(s.buf, buf...)
	s.pos -= int64(len(buf))
}

func (s *source) ReadFull(buf []byte) (int, error) {
	read := 0
	if s.buf != nil {
		read = copy(buf, s.buf)
		if len(s.buf) > read {
			s.buf = s.buf[read:]
		} else {
			s.buf = nil
		}
		if len(buf) == read {
			return read, nil
		}
	}

	n, err := io.ReadFull(s.reader, buf[read:])
	if err != nil {
		// Allow if all data can't be read. This is common.
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
	}
	s.pos += int64(n)
	return n + read, err
}

func (s *source) readCRC() error {
	buf := make([]byte, 2)
	n, err := s.ReadFull(buf)
	if n < 2 {
		if err == io.EOF {
			return &consts.UnexpectedEOF{At: "readCRC"}
		}
		return fmt.Errorf("mp3: error at readCRC: %v", err)
	}
	return nil
}

// readNextFrame reads one frame's header, side info, and raw main-data
// payload. It does not touch the bit reservoir: the caller merges payload
// with carried-over bytes via its own reservoir.Reservoir, since that
// state must survive across calls in a way a single frame read does not.
func (s *source) readNextFrame() (*decodedFrame, int64, error) {
	h, pos, err := s.readHeader()
	if err != nil {
		return nil, 0, err
	}
	if h.ProtectionBit() == 0 {
		if err := s.readCRC(); err != nil {
			return nil, 0, err
		}
	}

	frameSize, err := s.frameSize(h)
	if err != nil {
		return nil, 0, err
	}

	siBytes := h.SideInfoBytes()
	siBuf := make([]byte, siBytes)
	if n, err := s.ReadFull(siBuf); n < siBytes {
		if err == io.EOF {
			return nil, 0, &consts.UnexpectedEOF{At: "readNextFrame (sideinfo)"}
		}
		return nil, 0, err
	}
	si := sideinfo.Read(bits.New(siBuf), h)

	headerBytes := 4
	if h.ProtectionBit() == 0 {
		headerBytes += 2
	}
	mainLen := frameSize - headerBytes - siBytes
	if mainLen < 0 {
		return nil, 0, fmt.Errorf("mp3: computed negative main-data length at position %d", pos)
	}
	payload := make([]byte, mainLen)
	if n, err := s.ReadFull(payload); n < mainLen {
		if err == io.EOF {
			return nil, 0, &consts.UnexpectedEOF{At: "readNextFrame (maindata)"}
		}
		return nil, 0, err
	}

	return &decodedFrame{
		header:        h,
		sideInfo:      si,
		mainDataBegin: si.MainDataBegin,
		payload:       payload,
	}, pos, nil
}

// frameSize returns the total byte length of the frame described by h,
// resolving free-format streams via the lock-in scan described on
// source.freeFormatSize.
func (s *source) frameSize(h frameheader.FrameHeader) (int, error) {
	if !h.IsFreeFormat() {
		return h.FrameSize(), nil
	}
	if s.freeFormatKnown {
		return s.freeFormatSize + h.PaddingBit(), nil
	}
	// Lock-in: scan forward byte by byte for the next sync word; the
	// distance found becomes every subsequent free-format frame's size
	// (padding bit still adjusts it by one byte per frame thereafter).
	var scanned []byte
	window := uint32(0)
	for {
		b := make([]byte, 1)
		if _, err := s.ReadFull(b); err != nil {
			return 0, err
		}
		scanned = append(scanned, b[0])
		window = window<<8 | uint32(b[0])
		if len(scanned) >= 4 {
			candidate := frameheader.FrameHeader(window)
			if candidate.IsValid() {
				break
			}
		}
		if len(scanned) > 1<<20 {
			return 0, fmt.Errorf("mp3: free-format sync not found within search window")
		}
	}
	// The scan started right after this frame's header (and CRC), so the
	// frame's total length adds those bytes back.
	headerBytes := 4
	if h.ProtectionBit() == 0 {
		headerBytes += 2
	}
	size := len(scanned) - 4 + headerBytes
	// Put every scanned byte back: the next sync word belongs to the
	// following frame, and the bytes before it are this frame's own body,
	// which the normal read path (side info + main data) still needs to
	// consume starting right after this frame's header.
	s.Unread(scanned)
	s.freeFormatSize = size - h.PaddingBit()
	s.freeFormatKnown = true
	return size, nil
}

func (s *source) readHeader() (h frameheader.FrameHeader, startPosition int64, err error) {
	pos := s.pos
	buf := make([]byte, 4)
	if n, err := s.ReadFull(buf); n < 4 {
		if err == io.EOF {
			if n == 0 {
				// Expected EOF
				return 0, 0, io.EOF
			}
			return 0, 0, &consts.UnexpectedEOF{At: "readHeader (1)"}
		}
		return 0, 0, err
	}

	b1 := uint32(buf[0])
	b2 := uint32(buf[1])
	b3 := uint32(buf[2])
	b4 := uint32(buf[3])
	header := frameheader.FrameHeader((b1 << 24) | (b2 << 16) | (b3 << 8) | (b4 << 0))
	for !header.IsValid() {
		b1 = b2
		b2 = b3
		b3 = b4

		buf := make([]byte, 1)
		if _, err := s.ReadFull(buf); err != nil {
			if err == io.EOF {
				return 0, 0, &consts.UnexpectedEOF{At: "readHeader (2)"}
			}
			return 0, 0, err
		}
		b4 = uint32(buf[0])
		header = frameheader.FrameHeader((b1 << 24) | (b2 << 16) | (b3 << 8) | (b4 << 0))
		pos++
	}

	return header, pos, nil
}
