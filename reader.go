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
	"fmt"
	"io"
)

// options holds the reader's one tunable, the Sample Iterator's chunk
// size. CLI/config-file parsing is out of scope for this package; callers
// that need it build it on top.
type options struct {
	chunkSizeSamples int
}

// Option configures ReadFile/OpenFile.
type Option func(*options)

// WithChunkSize overrides the Sample Pattern Planner's chunk size, in
// samples. It only affects throughput and memory use, never output.
func WithChunkSize(samples int) Option {
	return func(o *options) {
		if samples > 0 {
			o.chunkSizeSamples = samples
		}
	}
}

func resolveOptions(opts []Option) options {
	o := options{chunkSizeSamples: defaultChunkSizeSamples}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// OpenFile walks an AcqKnowledge file's header graph and returns a Datafile
// with every channel's metadata populated but no sample data loaded, plus
// a SampleIterator that can materialize or stream that data on demand.
//
// r must remain open and positioned arbitrarily; OpenFile and the returned
// SampleIterator both seek it freely. The caller owns r's lifetime.
func OpenFile(r io.ReadSeeker, opts ...Option) (*Datafile, *SampleIterator, error) {
	o := resolveOptions(opts)
	df, layout, err := newWalker().walk(r)
	if err != nil {
		return nil, nil, fmt.Errorf("acq: opening file: %w", err)
	}
	it := newSampleIterator(r, df, layout, o.chunkSizeSamples)
	return df, it, nil
}

// ReadFile fully materializes an AcqKnowledge file: every channel's
// RawData is populated before this returns.
func ReadFile(r io.ReadSeeker, opts ...Option) (*Datafile, error) {
	df, it, err := OpenFile(r, opts...)
	if err != nil {
		return nil, err
	}
	if err := it.MaterializeAll(); err != nil {
		return nil, fmt.Errorf("acq: reading sample data: %w", err)
	}
	return df, nil
}

// ReadStream fully materializes an AcqKnowledge file from a non-seekable
// source by spooling it into an in-memory seekable buffer first. Prefer
// ReadFile/OpenFile with an *os.File when the source already supports
// seeking.
func ReadStream(r io.Reader, opts ...Option) (*Datafile, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("acq: spooling stream: %w", err)
	}
	return ReadFile(bytes.NewReader(buf), opts...)
}
