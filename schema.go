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
	lru "github.com/hashicorp/golang-lru/v2"
)

// fieldKind is the element type of a header field, mirroring the struct
// format characters StructDict used ('h', 'l', 'd', 'B', 'b', 'Ns', 'Q').
type fieldKind int

const (
	kindInt8 fieldKind = iota
	kindUint8
	kindInt16
	kindUint16
	kindInt32
	kindUint32
	kindUint64
	kindFloat64
	kindString // fixed-width, NUL-trimmed
)

func (k fieldKind) elementWidth() int {
	switch k {
	case kindInt8, kindUint8, kindString:
		return 1
	case kindInt16, kindUint16:
		return 2
	case kindInt32, kindUint32:
		return 4
	case kindUint64, kindFloat64:
		return 8
	default:
		return 0
	}
}

// field is one entry of a header's declared field table: a name, an
// element kind, a count (array length, or byte length for kindString), and
// the minimum file revision at which the field is present. Fields are
// declared in on-disk order for the newest revision; older revisions simply
// skip any field whose minRevision they don't satisfy, so a field's offset
// is the sum of the widths of every earlier-declared field that's also
// present at the target revision -- regardless of how minRevision values
// compare across the table, since a skipped field never occupied any bytes.
type field struct {
	name        string
	kind        fieldKind
	count       int
	minRevision int
}

func (f field) width() int {
	if f.kind == kindString {
		return f.count
	}
	n := f.count
	if n == 0 {
		n = 1
	}
	return f.kind.elementWidth() * n
}

// variant is one revision-bracketed shape of a header kind (e.g. GraphHeader
// has a pre-4.0.0B and a post-4.0.0B variant with largely disjoint field
// tables, the same split the format itself makes).
type variant struct {
	minRevision int
	maxRevision int // 0 means unbounded
	fields      []field
}

func (v variant) covers(revision int) bool {
	if revision < v.minRevision {
		return false
	}
	if v.maxRevision != 0 && revision >= v.maxRevision {
		return false
	}
	return true
}

// schema is the full set of variants for one header kind.
type schema struct {
	kind     headerKind
	variants []variant
}

func (s schema) variantFor(revision int) (variant, bool) {
	for _, v := range s.variants {
		if v.covers(revision) {
			return v, true
		}
	}
	return variant{}, false
}

// resolvedField carries a field's computed byte offset within its header,
// alongside the field declaration itself.
type resolvedField struct {
	field
	offset int
}

// resolvedSchema is what the Header Decoder actually walks: the ordered,
// offset-annotated field list for one (header kind, file revision) pair,
// plus the sum of those fields' widths. A header's own declared length, if
// it has one, is read from its decoded values by effectiveLength.
type resolvedSchema struct {
	fields     []resolvedField
	byName     map[string]resolvedField
	staticSize int // sum of field widths; used when there's no length field
}

func resolveVariant(v variant, revision int) resolvedSchema {
	rs := resolvedSchema{byName: make(map[string]resolvedField, len(v.fields))}
	offset := 0
	for _, f := range v.fields {
		if f.minRevision > revision {
			continue
		}
		rf := resolvedField{field: f, offset: offset}
		rs.fields = append(rs.fields, rf)
		rs.byName[f.name] = rf
		offset += f.width()
	}
	rs.staticSize = offset
	return rs
}

// cacheKey is (header kind, file revision): the Header Decoder resolves the
// same pair repeatedly (once per channel header, once per channel-datatype
// header, ...), so it's worth caching.
type cacheKey struct {
	kind     headerKind
	revision int
}

// schemaCache memoizes resolveVariant results. Bounded because the key
// space is small (a couple dozen header kinds times a couple dozen known
// revisions) but unbounded inputs are theoretically possible via malformed
// revision numbers.
type schemaCache struct {
	lru *lru.Cache[cacheKey, resolvedSchema]
}

func newSchemaCache() *schemaCache {
	c, err := lru.New[cacheKey, resolvedSchema](256)
	if err != nil {
		// lru.New only errors for a non-positive size, which 256 never is.
		panic(err)
	}
	return &schemaCache{lru: c}
}

func (c *schemaCache) resolve(s schema, revision int) (resolvedSchema, bool) {
	key := cacheKey{kind: s.kind, revision: revision}
	if rs, ok := c.lru.Get(key); ok {
		return rs, true
	}
	v, ok := s.variantFor(revision)
	if !ok {
		return resolvedSchema{}, false
	}
	rs := resolveVariant(v, revision)
	c.lru.Add(key, rs)
	return rs, true
}
