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
	"time"
)

// fileLayout is everything the Sample Iterator needs that isn't part of the
// public Datafile: byte offsets the File Walker computed during the walk.
type fileLayout struct {
	order        ByteOrder
	isCompressed bool

	dataStartOffset  int64
	dataRegionLength int64

	dividers    []int
	pointCounts []int

	// compressedOffsets/compressedLens are indexed the same as
	// datafile.Channels, populated only when isCompressed.
	compressedOffsets []int64
	compressedLens    []int64
}

// walker drives the ordered header traversal described for both storage
// modes and populates a Datafile plus the byte-offset layout the Sample
// Iterator needs.
type walker struct {
	br  *byteReader
	dec *headerDecoder
}

func newWalker() *walker {
	return &walker{dec: newHeaderDecoder()}
}

// refMagicLow/refMagicHigh bound the plausible file_revision range used for
// byte-order detection (spec: "a version integer in the range [30, 200]").
const (
	refMagicLow  = 30
	refMagicHigh = 200
)

// detectByteOrderAndRevision reads the Graph Header's leading
// (nItemHeaderLen int16, lVersion int32) pair under both byte orders and
// keeps whichever decode yields an in-range file_revision, tie-broken
// toward the smaller value -- the same tie-break the format's own bootstrap
// logic uses.
func detectByteOrderAndRevision(r io.ReadSeeker) (ByteOrder, int, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("%w: seek to start: %v", ErrSeek, err)
	}
	buf := make([]byte, 6)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, 0, fmt.Errorf("%w: reading graph header magic: %v", ErrInsufficientData, err)
	}
	candidates := []ByteOrder{binary.LittleEndian, binary.BigEndian}
	bestOrder := ByteOrder(nil)
	bestRevision := -1
	for _, order := range candidates {
		rev := int(int32(order.Uint32(buf[2:6])))
		if rev < refMagicLow || rev > refMagicHigh {
			continue
		}
		if bestRevision == -1 || rev < bestRevision {
			bestRevision = rev
			bestOrder = order
		}
	}
	if bestOrder == nil {
		return nil, 0, fmt.Errorf("%w: no byte order yields a file revision in [%d, %d]", ErrUnsupportedRevision, refMagicLow, refMagicHigh)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("%w: seek to start: %v", ErrSeek, err)
	}
	return bestOrder, bestRevision, nil
}

// walk performs the full header traversal and returns the populated
// Datafile plus the layout the Sample Iterator needs to read sample data.
func (w *walker) walk(r io.ReadSeeker) (*Datafile, *fileLayout, error) {
	order, revision, err := detectByteOrderAndRevision(r)
	if err != nil {
		return nil, nil, err
	}
	w.br = newByteReader(r, order)

	df := &Datafile{FileRevision: revision}
	if order == binary.LittleEndian {
		df.ByteOrder = "little"
	} else {
		df.ByteOrder = "big"
	}

	graph, err := w.dec.decode(w.br, graphSchema, revision)
	if err != nil {
		return nil, nil, err
	}
	df.GraphHeader = bagFromDecoded(graph)
	df.IsCompressed = graph.intField("bCompressed") == 1
	df.SamplesPerSecond = 1000.0 / graph.floatField("dSampleTime")
	channelCount := int(graph.intField("nChannels"))

	graphLen, err := effectiveLength(graph)
	if err != nil {
		return nil, nil, err
	}
	if err := w.br.seek(graph.offset + graphLen); err != nil {
		return nil, nil, err
	}

	if revision >= v430 {
		if err := w.skipPaddingHeaders(int(graph.intField("hExpectedPaddings")), revision); err != nil {
			return nil, nil, err
		}
	}

	channelHeaders := make([]decodedHeader, channelCount)
	for i := 0; i < channelCount; i++ {
		ch, err := w.dec.decode(w.br, channelSchema, revision)
		if err != nil {
			return nil, nil, err
		}
		channelHeaders[i] = ch
		chLen, err := effectiveLength(ch)
		if err != nil {
			return nil, nil, err
		}
		if err := w.br.seek(ch.offset + chLen); err != nil {
			return nil, nil, err
		}
	}

	dtypeHeaders, err := w.decodeForeignAndDTypes(revision, channelCount)
	if err != nil {
		return nil, nil, err
	}

	channels := make([]*Channel, channelCount)
	dividers := make([]int, channelCount)
	pointCounts := make([]int, channelCount)
	for i := 0; i < channelCount; i++ {
		ch := channelHeaders[i]
		dt := dtypeHeaders[i]
		divider := int(ch.intField("nVarSampleDivider"))
		if divider == 0 {
			divider = 1
		}
		dtype := channelDtypeFromCode(int(dt.intField("nType")))

		name, warn := decodeText(ch.bytesField("szCommentText"))
		if warn != nil {
			df.addWarning(*warn)
		}
		units, warn := decodeText(ch.bytesField("szUnitsText"))
		if warn != nil {
			df.addWarning(*warn)
		}

		c := &Channel{
			OrderNum:         int(ch.intField("nChanOrder")),
			Name:             name,
			Units:            units,
			FrequencyDivider: divider,
			SamplesPerSecond: df.SamplesPerSecond / float64(divider),
			PointCount:       int(ch.intField("lBufLength")),
			SampleDtype:      dtype,
			Scale:            ch.floatField("dAmplScale"),
			Offset:           ch.floatField("dAmplOffset"),
			datafile:         df,
		}
		if dtype == DtypeFloat64 {
			c.Scale, c.Offset = 1, 0
		}
		channels[i] = c
		dividers[i] = divider
		pointCounts[i] = c.PointCount
	}
	df.Channels = channels
	df.indexChannels()

	layout := &fileLayout{order: order, isCompressed: df.IsCompressed, dividers: dividers, pointCounts: pointCounts}

	if !df.IsCompressed {
		dataStart, err := w.br.tell()
		if err != nil {
			return nil, nil, err
		}
		var dataLen int64
		for _, c := range channels {
			dataLen += c.DataLength()
		}
		layout.dataStartOffset = dataStart
		layout.dataRegionLength = dataLen
		if err := w.br.seek(dataStart + dataLen); err != nil {
			return nil, nil, err
		}
	}

	if err := w.readMarkers(df, revision); err != nil {
		return nil, nil, err
	}
	if err := w.readJournal(df, revision); err != nil {
		return nil, nil, err
	}

	if df.IsCompressed {
		if err := w.readCompressionHeaders(layout, channelCount, revision); err != nil {
			return nil, nil, err
		}
	}

	df.resolveMarkerChannels()
	return df, layout, nil
}

func channelDtypeFromCode(code int) SampleDtype {
	if code == 2 {
		return DtypeInt16
	}
	return DtypeFloat64
}

func (w *walker) skipPaddingHeaders(count int, revision int) error {
	for i := 0; i < count; i++ {
		h, err := w.dec.decode(w.br, unknownPaddingSchema, revision)
		if err != nil {
			return err
		}
		n, err := effectiveLength(h)
		if err != nil {
			return err
		}
		if err := w.br.seek(h.offset + n); err != nil {
			return err
		}
	}
	return nil
}

// decodeForeignAndDTypes implements the Foreign Data Header's "weird
// length" robustness described for the Header Decoder: trust the declared
// length first, and if the channel-datatype headers that follow don't look
// plausible, rewind and scan forward for the next run of channelCount
// plausible (size, type) pairs instead.
func (w *walker) decodeForeignAndDTypes(revision int, channelCount int) ([]decodedHeader, error) {
	foreign, err := w.dec.decode(w.br, foreignSchema, revision)
	if err != nil {
		return nil, err
	}
	foreignLen, err := effectiveLength(foreign)
	if err != nil {
		return nil, err
	}
	strategy1Offset := foreign.offset + foreignLen

	if err := w.br.seek(strategy1Offset); err != nil {
		return nil, err
	}
	headers, ok := w.tryReadDTypeHeaders(revision, channelCount)
	if ok {
		return headers, nil
	}

	scanStart := foreign.offset + int64(foreign.schema.staticSize)
	headers, err = scanForDTypeHeaders(w.br, revision, channelCount, scanStart)
	if err != nil {
		return nil, fmt.Errorf("%w: declared foreign header length produced implausible channel-datatype headers, and no plausible signature was found by scanning forward: %v", ErrForeignHeaderAmbiguous, err)
	}
	return headers, nil
}

func (w *walker) tryReadDTypeHeaders(revision int, channelCount int) ([]decodedHeader, bool) {
	start, err := w.br.tell()
	if err != nil {
		return nil, false
	}
	headers := make([]decodedHeader, channelCount)
	for i := 0; i < channelCount; i++ {
		h, err := w.dec.decode(w.br, channelDTypeSchema, revision)
		if err != nil {
			w.br.seek(start)
			return nil, false
		}
		if !dtypeHeaderPlausible(h) {
			w.br.seek(start)
			return nil, false
		}
		headers[i] = h
	}
	return headers, true
}

func dtypeHeaderPlausible(h decodedHeader) bool {
	size := h.intField("nSize")
	typ := h.intField("nType")
	switch typ {
	case 1, 0:
		return size == 8
	case 2:
		return size == 2
	default:
		return false
	}
}

// maxDTypeScans bounds the forward scan for a plausible channel-datatype
// header signature, matching the format's own scan ceiling.
const maxDTypeScans = 4096

func scanForDTypeHeaders(br *byteReader, revision int, channelCount int, from int64) ([]decodedHeader, error) {
	for offset := from; offset < from+maxDTypeScans; offset++ {
		if err := br.seek(offset); err != nil {
			return nil, err
		}
		start, _ := br.tell()
		headers := make([]decodedHeader, channelCount)
		ok := true
		for i := 0; i < channelCount; i++ {
			h, err := br.readUint16()
			if err != nil {
				ok = false
				break
			}
			t, err := br.readUint16()
			if err != nil {
				ok = false
				break
			}
			dh := decodedHeader{
				kind:     headerChannelDType,
				offset:   start,
				revision: revision,
				values:   map[string]any{"nSize": int64(int16(h)), "nType": int64(int16(t))},
			}
			if !dtypeHeaderPlausible(dh) {
				ok = false
				break
			}
			headers[i] = dh
		}
		if ok {
			return headers, nil
		}
	}
	return nil, fmt.Errorf("acq: no plausible channel-datatype header signature found within %d bytes", maxDTypeScans)
}

func (w *walker) readMarkers(df *Datafile, revision int) error {
	if revision < v400B {
		return w.readV2Markers(df, revision)
	}
	return w.readV4Markers(df, revision)
}

func (w *walker) readV2Markers(df *Datafile, revision int) error {
	mh, err := w.dec.decode(w.br, v2MarkerSchema, revision)
	if err != nil {
		return err
	}
	count := int(mh.intField("lMarkers"))
	markers := make([]*Marker, 0, count)
	for i := 0; i < count; i++ {
		ih, err := w.dec.decode(w.br, v2MarkerItemSchema, revision)
		if err != nil {
			return err
		}
		textLen := int(ih.intField("nTextLength"))
		if revision >= v35x {
			textLen++
		}
		text, werr := w.readMarkerText(df, textLen)
		if werr != nil {
			return werr
		}
		markers = append(markers, &Marker{
			GlobalSampleIndex: ih.intField("lSample"),
			Label:             text,
			ChannelNumber:     -1,
			datafile:          df,
		})
	}
	df.Markers = markers
	return w.skipV2MarkerMetadata(revision, count)
}

// skipV2MarkerMetadata consumes the marker-metadata block that follows V2
// marker items, if present. Its leading tag doubles as a disambiguator: if
// it matches the V2 journal header's tag, there's no metadata here at all
// and the walker must rewind so the journal reader sees that tag itself.
func (w *walker) skipV2MarkerMetadata(revision int, markerCount int) error {
	start, err := w.br.tell()
	if err != nil {
		return err
	}
	pre, err := w.dec.decode(w.br, v2MarkerMetadataPreSchema, revision)
	if err != nil {
		return w.br.seek(start)
	}
	tag := pre.bytesField("tag")
	if matchesJournalTag(tag) {
		return w.br.seek(start)
	}
	itemCount := int(pre.intField("lItemCount"))
	if itemCount <= 0 || itemCount > markerCount+1 {
		return w.br.seek(start)
	}
	for i := 0; i < itemCount; i++ {
		if _, err := w.dec.decode(w.br, v2MarkerMetadataItemSchema, revision); err != nil {
			return w.br.seek(start)
		}
	}
	return nil
}

func matchesJournalTag(tag []byte) bool {
	expected := []byte{0x44, 0x33, 0x22, 0x11}
	if len(tag) != len(expected) {
		return false
	}
	for i := range tag {
		if tag[i] != expected[i] {
			return false
		}
	}
	return true
}

func (w *walker) readV4Markers(df *Datafile, revision int) error {
	mh, err := w.dec.decode(w.br, v4MarkerSchema, revision)
	if err != nil {
		return err
	}
	count := int(mh.intField("lMarkersExtra")) - 1
	if count < 0 {
		count = 0
	}
	markers := make([]*Marker, 0, count)
	for i := 0; i < count; i++ {
		ih, err := w.dec.decode(w.br, v4MarkerItemSchema, revision)
		if err != nil {
			return err
		}
		styleRaw := ih.bytesField("sMarkerStyle")
		style, werr := decodeText(styleRaw)
		if werr != nil {
			df.addWarning(*werr)
		}
		textLen := int(ih.intField("nTextLength"))
		text, terr := w.readMarkerText(df, textLen)
		if terr != nil {
			return terr
		}
		channelNumber := int(ih.intField("nChannel"))
		m := &Marker{
			GlobalSampleIndex: ih.intField("lSample"),
			Label:             text,
			TypeCode:          style,
			Style:             style,
			ChannelNumber:     channelNumber,
			datafile:          df,
		}
		if revision >= v440 {
			ms := int64(ih.intField("llDateCreated"))
			t := time.Unix(0, ms*int64(time.Millisecond)).UTC()
			m.CreatedAt = &t
		}
		markers = append(markers, m)
	}
	df.Markers = markers

	markerEnd := mh.offset + mh.intField("lLength")
	return w.br.seek(markerEnd)
}

// readMarkerText reads n raw bytes of marker text and decodes it through
// the standard encoding cascade, recording a warning (not failing the
// file) on a lossy decode -- per-marker errors are recovered locally.
func (w *walker) readMarkerText(df *Datafile, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	raw, err := w.br.readN(n)
	if err != nil {
		return "", err
	}
	text, warn := decodeText(trimTrailingNul(raw))
	if warn != nil {
		df.addWarning(*warn)
	}
	return text, nil
}

func trimTrailingNul(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}

func (w *walker) readJournal(df *Datafile, revision int) error {
	if revision < v400B {
		return w.readV2Journal(df, revision)
	}
	return w.readV4Journal(df, revision)
}

func (w *walker) readV2Journal(df *Datafile, revision int) error {
	if revision < v370 {
		return nil
	}
	start, err := w.br.tell()
	if err != nil {
		return err
	}
	jh, err := w.dec.decode(w.br, v2JournalSchema, revision)
	if err != nil {
		return w.br.seek(start)
	}
	journalLen := int(jh.intField("lJournalLen"))
	if !matchesJournalTag(jh.bytesField("tag")) || journalLen <= 0 {
		return nil
	}
	raw, err := w.br.readN(journalLen)
	if err != nil {
		return err
	}
	text, warn := decodeText(trimTrailingNul(raw))
	if warn != nil {
		df.addWarning(*warn)
	}
	df.Journal = &Journal{Text: text, Header: bagFromDecoded(jh)}
	return nil
}

func (w *walker) readV4Journal(df *Datafile, revision int) error {
	lh, err := w.dec.decode(w.br, v4JournalLengthSchema, revision)
	if err != nil {
		return err
	}
	journalDataLen := lh.intField("lJournalDataLen")
	dataEnd := lh.offset + journalDataLen

	if journalDataLen < int64(resolveStaticSize(v4JournalSchema, revision)) {
		return w.br.seek(dataEnd)
	}

	jh, err := w.dec.decode(w.br, v4JournalSchema, revision)
	if err != nil {
		return w.br.seek(dataEnd)
	}
	var journalTextLen int64
	if revision < v420 {
		journalTextLen = jh.intField("lEarlyJournalLen")
	} else {
		journalTextLen = jh.intField("lLateJournalLen")
	}
	if journalTextLen > 0 && journalTextLen < dataEnd-jh.offset {
		raw, err := w.br.readN(int(journalTextLen))
		if err == nil {
			text, warn := decodeText(trimTrailingNul(raw))
			if warn != nil {
				df.addWarning(*warn)
			}
			df.Journal = &Journal{Text: text, Header: bagFromDecoded(jh)}
		}
	}
	return w.br.seek(dataEnd)
}

func resolveStaticSize(s schema, revision int) int {
	v, ok := s.variantFor(revision)
	if !ok {
		return 0
	}
	return resolveVariant(v, revision).staticSize
}

func (w *walker) readCompressionHeaders(layout *fileLayout, channelCount int, revision int) error {
	main, err := w.dec.decode(w.br, mainCompressionSchema, revision)
	if err != nil {
		return err
	}
	mainLen, err := effectiveLength(main)
	if err != nil {
		return err
	}
	if err := w.br.seek(main.offset + mainLen); err != nil {
		return err
	}

	offsets := make([]int64, channelCount)
	lens := make([]int64, channelCount)
	for i := 0; i < channelCount; i++ {
		ch, err := w.dec.decode(w.br, channelCompressionSchema, revision)
		if err != nil {
			return err
		}
		offsets[i] = compressedDataOffset(ch)
		lens[i] = ch.intField("lCompressedLen")
		chLen, err := effectiveLength(ch)
		if err != nil {
			return err
		}
		if err := w.br.seek(ch.offset + chLen); err != nil {
			return err
		}
	}
	layout.compressedOffsets = offsets
	layout.compressedLens = lens
	return nil
}
