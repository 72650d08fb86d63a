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
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteReaderPrimitivesLittleEndian(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int16(-7)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(123456)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(0x3FF0000000000000))) // 1.0

	br := newByteReader(bytes.NewReader(buf.Bytes()), binary.LittleEndian)

	v16, err := br.readInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(-7), v16)

	v32, err := br.readInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(123456), v32)

	f, err := br.readFloat64()
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)
}

func TestByteReaderFixedStringTrimsAtNul(t *testing.T) {
	raw := append([]byte("hello"), make([]byte, 5)...) // "hello" + 5 NULs
	br := newByteReader(bytes.NewReader(raw), binary.LittleEndian)
	s, err := br.readFixedString(len(raw))
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestByteReaderSeekAndTell(t *testing.T) {
	br := newByteReader(bytes.NewReader(make([]byte, 16)), binary.LittleEndian)
	require.NoError(t, br.seek(8))
	pos, err := br.tell()
	require.NoError(t, err)
	assert.Equal(t, int64(8), pos)

	require.NoError(t, br.skip(4))
	pos, err = br.tell()
	require.NoError(t, err)
	assert.Equal(t, int64(12), pos)
}

func TestByteReaderInsufficientData(t *testing.T) {
	br := newByteReader(bytes.NewReader([]byte{0x01}), binary.LittleEndian)
	_, err := br.readInt32()
	assert.ErrorIs(t, err, ErrInsufficientData)
}
