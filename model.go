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
	"time"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats"
)

// SampleDtype names a channel's on-disk numeric representation.
type SampleDtype int

const (
	DtypeInt16 SampleDtype = iota
	DtypeFloat64
)

// SampleSizeBytes is the width of one raw sample for this dtype.
func (d SampleDtype) SampleSizeBytes() int {
	if d == DtypeFloat64 {
		return 8
	}
	return 2
}

// HeaderBag is an opaque, read-only set of decoded header fields. It backs
// Datafile.GraphHeader and Journal.Header: fields the public model doesn't
// promote to a named attribute but that callers may still want for
// diagnostics.
type HeaderBag map[string]any

func bagFromDecoded(d decodedHeader) HeaderBag {
	bag := make(HeaderBag, len(d.values))
	for k, v := range d.values {
		bag[k] = v
	}
	return bag
}

// Channel is one acquired signal.
type Channel struct {
	OrderNum         int
	Name             string
	Units            string
	FrequencyDivider int
	SamplesPerSecond float64
	PointCount       int
	SampleDtype      SampleDtype
	Scale            float64
	Offset           float64

	// RawData holds undecoded samples as read from disk: int16 values are
	// widened to float64 without scaling, float64 values are copied as-is.
	// It is nil until the Sample Iterator (or ReadFile) populates it.
	RawData []float64

	datafile *Datafile
	data     []float64
	upsamp   []float64
}

// SampleSizeBytes is the on-disk width of one sample of this channel.
func (c *Channel) SampleSizeBytes() int { return c.SampleDtype.SampleSizeBytes() }

// DataLength is the byte length of this channel's entire raw data region.
func (c *Channel) DataLength() int64 {
	return int64(c.SampleSizeBytes()) * int64(c.PointCount)
}

// Loaded reports whether RawData has been populated.
func (c *Channel) Loaded() bool { return c.RawData != nil }

// Data returns raw_data*scale+offset as float64, matching AcqKnowledge's
// displayed values. For float64 channels scale is 1 and offset is 0, so
// this returns RawData unchanged (cached, not recomputed on every call).
func (c *Channel) Data() []float64 {
	if !c.Loaded() {
		return nil
	}
	if c.data != nil {
		return c.data
	}
	if c.SampleDtype == DtypeFloat64 {
		c.data = c.RawData
		return c.data
	}
	out := make([]float64, len(c.RawData))
	copy(out, c.RawData)
	floats.Scale(c.Scale, out)
	floats.AddConst(c.Offset, out)
	c.data = out
	return c.data
}

// TimeIndex returns this channel's sample times, in seconds, at its own
// sampling rate (not the base rate).
func (c *Channel) TimeIndex() []float64 {
	out := make([]float64, c.PointCount)
	for i := range out {
		out[i] = float64(i) / c.SamplesPerSecond
	}
	return out
}

// UpsampledData repeats each sample frequency_divider times so every
// channel in the file lines up on the same base-rate time grid.
func (c *Channel) UpsampledData() []float64 {
	if c.upsamp != nil {
		return c.upsamp
	}
	data := c.Data()
	if data == nil {
		return nil
	}
	out := make([]float64, len(data)*c.FrequencyDivider)
	for i := range out {
		out[i] = data[i/c.FrequencyDivider]
	}
	c.upsamp = out
	return out
}

// FreeData drops RawData and any cached derived views, so a caller
// streaming many channels can release memory between channels.
func (c *Channel) FreeData() {
	c.RawData = nil
	c.data = nil
	c.upsamp = nil
}

// Marker is an annotation attached to a global sample index, optionally to
// one channel.
type Marker struct {
	GlobalSampleIndex int64
	Label             string
	TypeCode          string
	Style             string
	ChannelNumber     int // -1 for a global marker
	Channel           *Channel
	CreatedAt         *time.Time

	datafile *Datafile
}

// Type is the human-readable label for TypeCode.
func (m *Marker) Type() string { return markerTypeName(m.TypeCode) }

// ChannelSampleIndex is GlobalSampleIndex expressed in the attached
// channel's own sample rate; it's undefined (returns -1, ok=false) for a
// global marker.
func (m *Marker) ChannelSampleIndex() (int64, bool) {
	if m.Channel == nil {
		return -1, false
	}
	return m.GlobalSampleIndex / int64(m.Channel.FrequencyDivider), true
}

// Journal is the free-text (or, from format revision ~4.2 on, HTML) note
// attached to a recording.
type Journal struct {
	Text   string
	Header HeaderBag
}

// Datafile is the aggregate root of one parsed AcqKnowledge recording.
type Datafile struct {
	FileRevision     int
	IsCompressed     bool
	ByteOrder        string // "little" or "big"
	SamplesPerSecond float64
	GraphHeader      HeaderBag
	Channels         []*Channel
	Markers          []*Marker
	Journal          *Journal

	// Warnings collects every non-fatal finding (InvariantViolation,
	// EncodingFailure) encountered while parsing. The file still parsed
	// completely if len(Warnings) > 0.
	Warnings []error

	channelsByOrderNum map[int]*Channel
	timeIndex          []float64
}

// WarningsErr combines Warnings into a single error for callers that want
// one value instead of a slice, or nil if there were no warnings.
func (d *Datafile) WarningsErr() error {
	if len(d.Warnings) == 0 {
		return nil
	}
	return multierr.Combine(d.Warnings...)
}

// ChannelByOrderNum resolves a Marker's weak channel reference. Returns nil
// if no channel has that order_num.
func (d *Datafile) ChannelByOrderNum(orderNum int) *Channel {
	return d.channelsByOrderNum[orderNum]
}

// EarliestMarkerCreatedAt is the minimum CreatedAt across all markers that
// have one, or nil if none do.
func (d *Datafile) EarliestMarkerCreatedAt() *time.Time {
	var earliest *time.Time
	for _, m := range d.Markers {
		if m.CreatedAt == nil {
			continue
		}
		if earliest == nil || m.CreatedAt.Before(*earliest) {
			earliest = m.CreatedAt
		}
	}
	return earliest
}

// TimeIndex is the base-rate time index shared by every channel's
// UpsampledData, spanning the longest channel's recording duration.
func (d *Datafile) TimeIndex() []float64 {
	if d.timeIndex != nil {
		return d.timeIndex
	}
	var totalSamples int
	for _, c := range d.Channels {
		n := c.FrequencyDivider * c.PointCount
		if n > totalSamples {
			totalSamples = n
		}
	}
	if totalSamples == 0 {
		return nil
	}
	out := make([]float64, totalSamples)
	for i := range out {
		out[i] = float64(i) / d.SamplesPerSecond
	}
	d.timeIndex = out
	return out
}

func (d *Datafile) addWarning(w Warning) {
	d.Warnings = append(d.Warnings, w)
}

func (d *Datafile) indexChannels() {
	d.channelsByOrderNum = make(map[int]*Channel, len(d.Channels))
	for _, c := range d.Channels {
		d.channelsByOrderNum[c.OrderNum] = c
	}
}

// resolveMarkerChannels fills in each Marker's weak Channel reference,
// recording an InvariantViolation warning (and leaving Channel nil) for any
// marker whose ChannelNumber matches no channel's OrderNum.
func (d *Datafile) resolveMarkerChannels() {
	for _, m := range d.Markers {
		if m.ChannelNumber < 0 {
			continue
		}
		ch := d.ChannelByOrderNum(m.ChannelNumber)
		if ch == nil {
			d.addWarning(invariantViolation("marker at sample %d references channel_number %d, which matches no channel's order_num", m.GlobalSampleIndex, m.ChannelNumber))
			continue
		}
		m.Channel = ch
	}
}
