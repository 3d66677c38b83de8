/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package entropy

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

const urandomDevice = "/dev/urandom"

// osWordSource reads 64-bit words directly from the OS entropy device,
// one unbuffered read per word. The device is opened non-blocking so a
// missing or permission-denied device fails the open immediately instead
// of hanging.
type osWordSource struct {
	fd int
}

func openOsWordSource() (*osWordSource, error) {
	fd, err := unix.Open(urandomDevice, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrSourceUnavailable, urandomDevice, err)
	}
	return &osWordSource{fd: fd}, nil
}

func (s *osWordSource) nextWord() (uint64, error) {
	var buf [8]byte
	n, err := unix.Read(s.fd, buf[:])
	if err != nil {
		return 0, fmt.Errorf("%w: reading %s: %v", ErrSourceUnavailable, urandomDevice, err)
	}
	if n != len(buf) {
		return 0, fmt.Errorf("%w: short read from %s", ErrSourceUnavailable, urandomDevice)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (s *osWordSource) Close() error {
	return unix.Close(s.fd)
}

// OsBits is a Source that reads fresh bytes from the OS entropy device on
// demand, with no buffering beyond the single machine word being drained.
type OsBits struct {
	view *bitView
	src  *osWordSource
}

// NewOsBits opens the OS entropy device and returns a Source backed by
// it. It fails fast with ErrSourceUnavailable if the device cannot be
// opened.
func NewOsBits() (*OsBits, error) {
	src, err := openOsWordSource()
	if err != nil {
		return nil, err
	}
	return &OsBits{view: newBitView(src), src: src}, nil
}

func (b *OsBits) NextBit() (bool, error) {
	return b.view.NextBit()
}

// Close releases the underlying device handle.
func (b *OsBits) Close() error {
	return b.src.Close()
}

// bufferedOsWordSource refills a buf-sized chunk of entropy at a time
// instead of issuing one syscall per word.
type bufferedOsWordSource struct {
	fd  int
	buf []byte
	pos int
}

func openBufferedOsWordSource(bufSize int) (*bufferedOsWordSource, error) {
	if bufSize < 8 {
		bufSize = 8
	}
	fd, err := unix.Open(urandomDevice, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrSourceUnavailable, urandomDevice, err)
	}
	return &bufferedOsWordSource{fd: fd, buf: make([]byte, bufSize), pos: bufSize}, nil
}

func (s *bufferedOsWordSource) nextWord() (uint64, error) {
	if s.pos+8 > len(s.buf) {
		n, err := unix.Read(s.fd, s.buf)
		if err != nil {
			return 0, fmt.Errorf("%w: refilling buffer for %s: %v", ErrSourceUnavailable, urandomDevice, err)
		}
		if n != len(s.buf) {
			return 0, fmt.Errorf("%w: short read refilling buffer for %s", ErrSourceUnavailable, urandomDevice)
		}
		s.pos = 0
	}
	w := binary.LittleEndian.Uint64(s.buf[s.pos:])
	s.pos += 8
	return w, nil
}

func (s *bufferedOsWordSource) Close() error {
	return unix.Close(s.fd)
}

// BufferedOsBits is a Source like OsBits, but refills a bufSize-byte
// buffer from the OS entropy device instead of reading one word at a
// time.
type BufferedOsBits struct {
	view *bitView
	src  *bufferedOsWordSource
}

// NewBufferedOsBits opens the OS entropy device with an internal buffer
// of bufSize bytes.
func NewBufferedOsBits(bufSize int) (*BufferedOsBits, error) {
	src, err := openBufferedOsWordSource(bufSize)
	if err != nil {
		return nil, err
	}
	return &BufferedOsBits{view: newBitView(src), src: src}, nil
}

func (b *BufferedOsBits) NextBit() (bool, error) {
	return b.view.NextBit()
}

func (b *BufferedOsBits) Close() error {
	return b.src.Close()
}
