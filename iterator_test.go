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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLittleEndianSamplesInt16(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int16(-100)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int16(200)))

	vals, err := decodeLittleEndianSamples(buf.Bytes(), DtypeInt16)
	require.NoError(t, err)
	assert.Equal(t, []float64{-100, 200}, vals)
}

func TestDecodeLittleEndianSamplesFloat64(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, math.Float64bits(3.5)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, math.Float64bits(-1.0)))

	vals, err := decodeLittleEndianSamples(buf.Bytes(), DtypeFloat64)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.5, -1.0}, vals)
}

func TestDecodeLittleEndianSamplesRejectsPartialSample(t *testing.T) {
	_, err := decodeLittleEndianSamples([]byte{0x01, 0x02, 0x03}, DtypeInt16)
	assert.Error(t, err)
}

func TestReadRawSampleInt16UsesFileByteOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, int16(42)))
	br := newByteReader(bytes.NewReader(buf.Bytes()), binary.BigEndian)

	v, err := readRawSample(br, DtypeInt16)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestStreamRejectsCompressedFiles(t *testing.T) {
	it := &SampleIterator{layout: &fileLayout{isCompressed: true}}
	err := it.Stream([]int{0}, func(int, int, []float64) bool { return true })
	assert.Error(t, err)
}
