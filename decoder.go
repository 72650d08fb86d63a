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
	"fmt"
)

// decodedHeader is the result of decoding one header: its field values by
// name, plus enough bookkeeping (offset, revision, raw schema) for the File
// Walker to compute where the next header starts.
type decodedHeader struct {
	kind     headerKind
	offset   int64
	revision int
	schema   resolvedSchema
	values   map[string]any
}

func (d decodedHeader) has(name string) bool {
	_, ok := d.values[name]
	return ok
}

func (d decodedHeader) intField(name string) int64 {
	switch v := d.values[name].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func (d decodedHeader) floatField(name string) float64 {
	switch v := d.values[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func (d decodedHeader) stringField(name string) string {
	s, _ := d.values[name].(string)
	return s
}

func (d decodedHeader) int64ArrayField(name string) []int64 {
	a, _ := d.values[name].([]int64)
	return a
}

// bytesField recovers a string- or byte-array-kind field's raw bytes, for
// callers (the text-decoding cascade, tag comparisons) that need the bytes
// as originally read rather than decodeOneField's eager string conversion.
// The round trip through Go's string type is byte-preserving even when the
// bytes aren't valid UTF-8, so no information is lost.
func (d decodedHeader) bytesField(name string) []byte {
	switch v := d.values[name].(type) {
	case string:
		return []byte(v)
	case []int64:
		out := make([]byte, len(v))
		for i, b := range v {
			out[i] = byte(b)
		}
		return out
	default:
		return nil
	}
}

// headerDecoder reads one header at a time from a byteReader, given a
// schema and the file's revision and byte order. It's Component C: header
// shape is entirely data-driven (schema.go/headers.go), so this file only
// contains the read loop and the per-kind "effective length" rules the
// format itself needs (a header's own declared length almost never equals
// the sum of its known fields, because of trailing fields this reader
// doesn't model).
type headerDecoder struct {
	cache *schemaCache
}

func newHeaderDecoder() *headerDecoder {
	return &headerDecoder{cache: newSchemaCache()}
}

// decode reads the header at the byteReader's current position, consuming
// exactly resolvedSchema.staticSize bytes (the fields this reader models);
// it does not itself seek past any trailing unknown bytes, leaving that to
// the caller via effectiveLength.
func (hd *headerDecoder) decode(br *byteReader, s schema, revision int) (decodedHeader, error) {
	offset, err := br.tell()
	if err != nil {
		return decodedHeader{}, err
	}
	rs, ok := hd.cache.resolve(s, revision)
	if !ok {
		return decodedHeader{}, fmt.Errorf("%w: no schema variant for header kind %d at revision %d", ErrUnsupportedRevision, s.kind, revision)
	}
	values := make(map[string]any, len(rs.fields))
	for _, rf := range rs.fields {
		v, err := decodeOneField(br, rf.field)
		if err != nil {
			return decodedHeader{}, fmt.Errorf("decoding %s field %q at offset %d: %w", headerKindName(s.kind), rf.name, offset, err)
		}
		values[rf.name] = v
	}
	return decodedHeader{kind: s.kind, offset: offset, revision: revision, schema: rs, values: values}, nil
}

func decodeOneField(br *byteReader, f field) (any, error) {
	if f.kind == kindString {
		return br.readFixedString(f.count)
	}
	count := f.count
	if count == 0 {
		count = 1
	}
	if count == 1 {
		return decodeScalar(br, f.kind)
	}
	if f.kind == kindFloat64 {
		out := make([]float64, count)
		for i := range out {
			v, err := br.readFloat64()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	out := make([]int64, count)
	for i := range out {
		v, err := decodeScalar(br, f.kind)
		if err != nil {
			return nil, err
		}
		out[i] = v.(int64)
	}
	return out, nil
}

func decodeScalar(br *byteReader, k fieldKind) (any, error) {
	switch k {
	case kindInt8:
		v, err := br.readInt8()
		return int64(v), err
	case kindUint8:
		v, err := br.readUint8()
		return int64(v), err
	case kindInt16:
		v, err := br.readInt16()
		return int64(v), err
	case kindUint16:
		v, err := br.readUint16()
		return int64(v), err
	case kindInt32:
		v, err := br.readInt32()
		return int64(v), err
	case kindUint32:
		v, err := br.readUint32()
		return int64(v), err
	case kindUint64:
		v, err := br.readUint64()
		return int64(v), err
	case kindFloat64:
		v, err := br.readFloat64()
		return v, err
	default:
		return nil, fmt.Errorf("acq: unknown field kind %d", k)
	}
}

func headerKindName(k headerKind) string {
	switch k {
	case headerGraph:
		return "GraphHeader"
	case headerUnknownPadding:
		return "UnknownPaddingHeader"
	case headerChannel:
		return "ChannelHeader"
	case headerForeign:
		return "ForeignHeader"
	case headerChannelDType:
		return "ChannelDTypeHeader"
	case headerV2Journal:
		return "V2JournalHeader"
	case headerV4JournalLength:
		return "V4JournalLengthHeader"
	case headerV4Journal:
		return "V4JournalHeader"
	case headerMainCompression:
		return "MainCompressionHeader"
	case headerChannelCompression:
		return "ChannelCompressionHeader"
	case headerV2Marker:
		return "V2MarkerHeader"
	case headerV2MarkerMetadataPre:
		return "V2MarkerMetadataPreHeader"
	case headerV2MarkerMetadataItem:
		return "V2MarkerMetadataHeader"
	case headerV4Marker:
		return "V4MarkerHeader"
	case headerV2MarkerItem:
		return "V2MarkerItemHeader"
	case headerV4MarkerItem:
		return "V4MarkerItemHeader"
	default:
		return "UnknownHeader"
	}
}

// effectiveLength returns the number of bytes the File Walker should
// advance by to reach whatever follows this header, mirroring each header
// class's effective_len_bytes override.
func effectiveLength(d decodedHeader) (int64, error) {
	switch d.kind {
	case headerGraph:
		if d.has("lExtItemHeaderLen") {
			return d.intField("lExtItemHeaderLen"), nil
		}
		return int64(d.schema.staticSize), nil
	case headerUnknownPadding:
		return d.intField("lChannelLen"), nil
	case headerChannel:
		return d.intField("lChanHeaderLen"), nil
	case headerForeign:
		if d.has("lLength") {
			return d.intField("lLength"), nil
		}
		return d.intField("nLength"), nil
	case headerMainCompression:
		if d.has("lTextLen") {
			return int64(d.schema.staticSize) + d.intField("lTextLen"), nil
		}
		return int64(d.schema.staticSize) + d.intField("lStrLen1") + d.intField("lStrLen2"), nil
	case headerChannelCompression:
		return channelCompressionHeaderOnlyLen(d) + d.intField("lCompressedLen"), nil
	default:
		return int64(d.schema.staticSize), nil
	}
}

// channelCompressionHeaderOnlyLen is the length of just the
// ChannelCompressionHeader itself (struct fields plus the variable-length
// channel label and unit label that are embedded in it), not including the
// compressed payload that follows.
func channelCompressionHeaderOnlyLen(d decodedHeader) int64 {
	return int64(d.schema.staticSize) + d.intField("lChannelLabelLen") + d.intField("lUnitLabelLen")
}

// compressedDataOffset is where the zlib payload for one channel starts,
// immediately after its ChannelCompressionHeader and embedded labels.
func compressedDataOffset(d decodedHeader) int64 {
	return d.offset + channelCompressionHeaderOnlyLen(d)
}
