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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return tm
}

func TestChannelDataScalesInt16Samples(t *testing.T) {
	c := &Channel{
		SampleDtype: DtypeInt16,
		Scale:       2.0,
		Offset:      1.0,
		RawData:     []float64{0, 1, 2, 3},
	}
	assert.Equal(t, []float64{1, 3, 5, 7}, c.Data())
	// cached: calling again returns the same slice, not a recomputation.
	assert.Same(t, &c.Data()[0], &c.Data()[0])
}

func TestChannelDataFloat64IsIdentity(t *testing.T) {
	c := &Channel{
		SampleDtype: DtypeFloat64,
		Scale:       1,
		Offset:      0,
		RawData:     []float64{0.5, -1.25},
	}
	assert.Equal(t, []float64{0.5, -1.25}, c.Data())
}

func TestChannelDataNilWhenNotLoaded(t *testing.T) {
	c := &Channel{SampleDtype: DtypeInt16}
	assert.Nil(t, c.Data())
	assert.False(t, c.Loaded())
}

func TestChannelUpsampledDataRepeatsEachSample(t *testing.T) {
	c := &Channel{
		SampleDtype:      DtypeFloat64,
		Scale:            1,
		FrequencyDivider: 3,
		RawData:          []float64{1, 2},
	}
	assert.Equal(t, []float64{1, 1, 1, 2, 2, 2}, c.UpsampledData())
}

func TestChannelTimeIndex(t *testing.T) {
	c := &Channel{PointCount: 4, SamplesPerSecond: 2}
	assert.Equal(t, []float64{0, 0.5, 1, 1.5}, c.TimeIndex())
}

func TestChannelFreeDataClearsCaches(t *testing.T) {
	c := &Channel{SampleDtype: DtypeFloat64, Scale: 1, RawData: []float64{1, 2}}
	c.Data()
	c.UpsampledData()
	c.FreeData()
	assert.Nil(t, c.RawData)
	assert.Nil(t, c.data)
	assert.Nil(t, c.upsamp)
	assert.False(t, c.Loaded())
}

func TestMarkerTypeName(t *testing.T) {
	m := &Marker{TypeCode: "apnd"}
	assert.Equal(t, "Append", m.Type())

	m2 := &Marker{TypeCode: ""}
	assert.Equal(t, "None", m2.Type())

	m3 := &Marker{TypeCode: "zzzz"}
	assert.Equal(t, "Unknown", m3.Type())
}

func TestMarkerChannelSampleIndex(t *testing.T) {
	ch := &Channel{FrequencyDivider: 4}
	m := &Marker{GlobalSampleIndex: 40, Channel: ch}
	idx, ok := m.ChannelSampleIndex()
	assert.True(t, ok)
	assert.Equal(t, int64(10), idx)

	global := &Marker{GlobalSampleIndex: 40}
	_, ok = global.ChannelSampleIndex()
	assert.False(t, ok)
}

func TestDatafileResolveMarkerChannelsWeakReference(t *testing.T) {
	df := &Datafile{
		Channels: []*Channel{
			{OrderNum: 0, Name: "EDA"},
			{OrderNum: 1, Name: "ECG"},
		},
	}
	df.indexChannels()
	df.Markers = []*Marker{
		{ChannelNumber: -1}, // global marker, left unresolved
		{ChannelNumber: 1},  // resolves to ECG
		{ChannelNumber: 99}, // dangling reference
	}
	df.resolveMarkerChannels()

	assert.Nil(t, df.Markers[0].Channel)
	require.NotNil(t, df.Markers[1].Channel)
	assert.Equal(t, "ECG", df.Markers[1].Channel.Name)
	assert.Nil(t, df.Markers[2].Channel)
	require.Len(t, df.Warnings, 1)
	assert.Contains(t, df.Warnings[0].Error(), "channel_number 99")
}

func TestDatafileWarningsErr(t *testing.T) {
	df := &Datafile{}
	assert.NoError(t, df.WarningsErr())

	df.addWarning(invariantViolation("bad thing %d", 1))
	df.addWarning(encodingFailure("bad text"))
	err := df.WarningsErr()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad thing 1")
	assert.Contains(t, err.Error(), "bad text")
}

func TestDatafileEarliestMarkerCreatedAt(t *testing.T) {
	df := &Datafile{}
	assert.Nil(t, df.EarliestMarkerCreatedAt())

	later := mustTime(t, "2024-01-02T00:00:00Z")
	earlier := mustTime(t, "2024-01-01T00:00:00Z")
	df.Markers = []*Marker{
		{CreatedAt: &later},
		{CreatedAt: nil},
		{CreatedAt: &earlier},
	}
	got := df.EarliestMarkerCreatedAt()
	require.NotNil(t, got)
	assert.True(t, got.Equal(earlier))
}

func TestDatafileTimeIndexSpansLongestChannel(t *testing.T) {
	df := &Datafile{
		SamplesPerSecond: 4,
		Channels: []*Channel{
			{FrequencyDivider: 1, PointCount: 4},
			{FrequencyDivider: 2, PointCount: 1}, // 2 upsampled points, shorter
		},
	}
	idx := df.TimeIndex()
	require.Len(t, idx, 4)
	assert.Equal(t, 0.0, idx[0])
	assert.InDelta(t, 0.75, idx[3], 1e-9)
}
