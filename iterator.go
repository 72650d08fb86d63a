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
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
)

// StreamFunc receives one chunk of decoded, unscaled samples for a single
// channel. start is the channel-local sample index of chunk[0]. Returning
// false cancels the run: the Iterator stops reading and returns without
// exposing any partial data for the channel currently in flight.
type StreamFunc func(channelIndex int, start int, chunk []float64) bool

// SampleIterator is a lazy, restartable reader of sample data for one
// Datafile. Repeated runs from the same Datafile re-seek the underlying
// source and produce byte-identical results; it never mutates the File
// Walker's offset map.
type SampleIterator struct {
	r                io.ReadSeeker
	df               *Datafile
	layout           *fileLayout
	chunkSizeSamples int
}

func newSampleIterator(r io.ReadSeeker, df *Datafile, layout *fileLayout, chunkSizeSamples int) *SampleIterator {
	return &SampleIterator{r: r, df: df, layout: layout, chunkSizeSamples: chunkSizeSamples}
}

// MaterializeAll fills Channel.RawData for every channel and returns.
func (it *SampleIterator) MaterializeAll() error {
	return it.MaterializeChannels(allChannelIndexes(it.df))
}

// MaterializeChannels fills Channel.RawData for exactly the given channels.
func (it *SampleIterator) MaterializeChannels(channelIndexes []int) error {
	for _, ci := range channelIndexes {
		c := it.df.Channels[ci]
		c.RawData = make([]float64, 0, c.PointCount)
	}
	return it.run(channelIndexes, func(ci, _ int, vals []float64) bool {
		c := it.df.Channels[ci]
		c.RawData = append(c.RawData, vals...)
		return true
	})
}

// Stream invokes fn once per chunk per channel, in channel-interleave
// order, without ever materializing the full recording in memory.
// Streaming a compressed file isn't supported: each compressed channel
// segment must be inflated as a whole, so there is no intermediate chunk
// boundary to stream at.
func (it *SampleIterator) Stream(channelIndexes []int, fn StreamFunc) error {
	if it.layout.isCompressed {
		return fmt.Errorf("acq: streaming is not supported for compressed files")
	}
	return it.run(channelIndexes, fn)
}

func allChannelIndexes(df *Datafile) []int {
	out := make([]int, len(df.Channels))
	for i := range out {
		out[i] = i
	}
	return out
}

func (it *SampleIterator) run(channelIndexes []int, consume StreamFunc) error {
	if it.layout.isCompressed {
		return it.runCompressed(channelIndexes, consume)
	}
	return it.runUncompressed(channelIndexes, consume)
}

func (it *SampleIterator) runUncompressed(channelIndexes []int, consume StreamFunc) error {
	br := newByteReader(it.r, it.layout.order)
	if err := br.seek(it.layout.dataStartOffset); err != nil {
		return err
	}

	wanted := make([]bool, len(it.df.Channels))
	for _, ci := range channelIndexes {
		wanted[ci] = true
	}

	plans := planChunks(it.layout.dividers, it.layout.pointCounts, it.chunkSizeSamples)
	sampleCursor := make([]int, len(it.df.Channels))

	for _, plan := range plans {
		buffers := make([][]float64, len(it.df.Channels))
		for rep := 0; rep < plan.Repetitions; rep++ {
			for _, ch := range plan.Pattern {
				v, err := readRawSample(br, it.df.Channels[ch].SampleDtype)
				if err != nil {
					return fmt.Errorf("reading sample for channel %d: %w", ch, err)
				}
				if wanted[ch] {
					buffers[ch] = append(buffers[ch], v)
				}
			}
		}
		for _, ci := range channelIndexes {
			vals := buffers[ci]
			if len(vals) == 0 {
				continue
			}
			start := sampleCursor[ci]
			sampleCursor[ci] += len(vals)
			if !consume(ci, start, vals) {
				return nil
			}
		}
	}
	return nil
}

// runCompressed decompresses each requested channel's segment in full.
// Per-channel payloads are always little-endian regardless of the file's
// declared byte order -- an observed invariant of the format, not a
// consequence of the file-wide endianness flag.
func (it *SampleIterator) runCompressed(channelIndexes []int, consume StreamFunc) error {
	for _, ci := range channelIndexes {
		offset := it.layout.compressedOffsets[ci]
		length := it.layout.compressedLens[ci]
		if _, err := it.r.Seek(offset, io.SeekStart); err != nil {
			return fmt.Errorf("%w: seek to compressed segment for channel %d: %v", ErrSeek, ci, err)
		}
		comp := make([]byte, length)
		if _, err := io.ReadFull(it.r, comp); err != nil {
			return fmt.Errorf("%w: reading compressed segment for channel %d: %v", ErrInsufficientData, ci, err)
		}
		zr, err := zlib.NewReader(bytes.NewReader(comp))
		if err != nil {
			return fmt.Errorf("%w: opening zlib stream for channel %d: %v", ErrChecksumOrInflate, ci, err)
		}
		raw, err := io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return fmt.Errorf("%w: inflating channel %d: %v", ErrChecksumOrInflate, ci, err)
		}
		vals, err := decodeLittleEndianSamples(raw, it.df.Channels[ci].SampleDtype)
		if err != nil {
			return fmt.Errorf("%w: channel %d: %v", ErrChecksumOrInflate, ci, err)
		}
		if !consume(ci, 0, vals) {
			return nil
		}
	}
	return nil
}

func readRawSample(br *byteReader, dtype SampleDtype) (float64, error) {
	if dtype == DtypeFloat64 {
		return br.readFloat64()
	}
	v, err := br.readInt16()
	return float64(v), err
}

func decodeLittleEndianSamples(raw []byte, dtype SampleDtype) ([]float64, error) {
	size := dtype.SampleSizeBytes()
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("decompressed length %d is not a multiple of sample size %d", len(raw), size)
	}
	n := len(raw) / size
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		chunk := raw[i*size : (i+1)*size]
		if dtype == DtypeFloat64 {
			bits := binary.LittleEndian.Uint64(chunk)
			out[i] = math.Float64frombits(bits)
		} else {
			out[i] = float64(int16(binary.LittleEndian.Uint16(chunk)))
		}
	}
	return out, nil
}
