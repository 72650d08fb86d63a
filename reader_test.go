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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileFullyMaterializes(t *testing.T) {
	raw := buildTwoChannelEqualRateFixture(t)
	df, err := ReadFile(bytes.NewReader(raw))
	require.NoError(t, err)

	require.Len(t, df.Channels, 2)
	assert.True(t, df.Channels[0].Loaded())
	assert.True(t, df.Channels[1].Loaded())
	assert.Equal(t, []float64{10, 11, 12, 13}, df.Channels[0].RawData)
	assert.Equal(t, []float64{20, 21, 22, 23}, df.Channels[1].RawData)
}

func TestOpenFileDefersSampleData(t *testing.T) {
	raw := buildTwoChannelEqualRateFixture(t)
	df, it, err := OpenFile(bytes.NewReader(raw))
	require.NoError(t, err)
	require.NotNil(t, it)

	for _, c := range df.Channels {
		assert.False(t, c.Loaded())
	}

	require.NoError(t, it.MaterializeAll())
	for _, c := range df.Channels {
		assert.True(t, c.Loaded())
	}
}

func TestOpenFileWithChunkSizeOption(t *testing.T) {
	raw := buildTwoChannelEqualRateFixture(t)
	_, it, err := OpenFile(bytes.NewReader(raw), WithChunkSize(1))
	require.NoError(t, err)
	assert.Equal(t, 1, it.chunkSizeSamples)
}

func TestOpenFileIgnoresNonPositiveChunkSize(t *testing.T) {
	raw := buildTwoChannelEqualRateFixture(t)
	_, it, err := OpenFile(bytes.NewReader(raw), WithChunkSize(0))
	require.NoError(t, err)
	assert.Equal(t, defaultChunkSizeSamples, it.chunkSizeSamples)
}

func TestReadStreamSpoolsNonSeekableSource(t *testing.T) {
	raw := buildTwoChannelEqualRateFixture(t)
	df, err := ReadStream(bytes.NewReader(raw)) // any io.Reader works
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11, 12, 13}, df.Channels[0].RawData)
}

func TestStreamOneChannelAtATime(t *testing.T) {
	raw := buildTwoChannelEqualRateFixture(t)
	r := bytes.NewReader(raw)
	df, it, err := OpenFile(r)
	require.NoError(t, err)

	var got []float64
	err = it.Stream([]int{1}, func(ci, start int, chunk []float64) bool {
		assert.Equal(t, 1, ci)
		got = append(got, chunk...)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 21, 22, 23}, got)
	assert.False(t, df.Channels[0].Loaded())
}
