// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package acq

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ByteOrder selects how multi-byte numeric fields are decoded. AcqKnowledge
// files don't declare their byte order directly; it's inferred by trying
// both and seeing which produces an in-range file revision (see
// detectByteOrderAndRevision in walker.go).
type ByteOrder binary.ByteOrder

// byteReader wraps an io.ReadSeeker with the fixed-width primitive reads the
// header schemas need, tracking the current offset the way OpenPSG-edf's
// Reader tracks record offsets for its per-signal cursors.
type byteReader struct {
	r     io.ReadSeeker
	order ByteOrder
}

func newByteReader(r io.ReadSeeker, order ByteOrder) *byteReader {
	return &byteReader{r: r, order: order}
}

func (b *byteReader) tell() (int64, error) {
	pos, err := b.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("%w: tell: %v", ErrSeek, err)
	}
	return pos, nil
}

func (b *byteReader) seek(offset int64) error {
	if _, err := b.r.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %d: %v", ErrSeek, offset, err)
	}
	return nil
}

func (b *byteReader) skip(n int64) error {
	if _, err := b.r.Seek(n, io.SeekCurrent); err != nil {
		return fmt.Errorf("%w: skip %d: %v", ErrSeek, n, err)
	}
	return nil
}

func (b *byteReader) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return nil, fmt.Errorf("%w: read %d bytes: %v", ErrInsufficientData, n, err)
	}
	return buf, nil
}

func (b *byteReader) readUint8() (uint8, error) {
	buf, err := b.readN(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (b *byteReader) readInt8() (int8, error) {
	v, err := b.readUint8()
	return int8(v), err
}

func (b *byteReader) readUint16() (uint16, error) {
	buf, err := b.readN(2)
	if err != nil {
		return 0, err
	}
	return b.order.Uint16(buf), nil
}

func (b *byteReader) readInt16() (int16, error) {
	v, err := b.readUint16()
	return int16(v), err
}

func (b *byteReader) readUint32() (uint32, error) {
	buf, err := b.readN(4)
	if err != nil {
		return 0, err
	}
	return b.order.Uint32(buf), nil
}

func (b *byteReader) readInt32() (int32, error) {
	v, err := b.readUint32()
	return int32(v), err
}

func (b *byteReader) readUint64() (uint64, error) {
	buf, err := b.readN(8)
	if err != nil {
		return 0, err
	}
	return b.order.Uint64(buf), nil
}

func (b *byteReader) readFloat64() (float64, error) {
	v, err := b.readUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// readFixedString reads n bytes and trims at the first NUL, matching
// StructDict.unpack's string handling (trailing nulls never become part of
// the value).
func (b *byteReader) readFixedString(n int) (string, error) {
	buf, err := b.readN(n)
	if err != nil {
		return "", err
	}
	for i, c := range buf {
		if c == 0 {
			buf = buf[:i]
			break
		}
	}
	return string(buf), nil
}
