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
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// decodeText runs the three-way cascade described for header string fields:
// UTF-8, then Windows-1252, then MacRoman, keeping the first one that
// produces a lossless decode. Old AcqKnowledge files predate any declared
// text encoding, so this reader guesses the same way the format's other
// implementations do, but gives UTF-8 priority since most files created
// since the mid-2000s are already valid UTF-8.
func decodeText(raw []byte) (string, *Warning) {
	if len(raw) == 0 {
		return "", nil
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	for _, enc := range []encoding.Encoding{charmap.Windows1252, charmap.Macintosh} {
		if s, ok := decodeLossless(enc, raw); ok {
			return s, nil
		}
	}
	// Nothing decoded losslessly; fall back to Windows-1252 with
	// replacement characters and record why.
	s, _ := charmap.Windows1252.NewDecoder().String(string(raw))
	w := encodingFailure("could not decode %d bytes losslessly in UTF-8, Windows-1252, or MacRoman; used Windows-1252 with replacement", len(raw))
	return s, &w
}

func decodeLossless(enc encoding.Encoding, raw []byte) (string, bool) {
	dec := enc.NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", false
	}
	// Charmap decoders substitute U+FFFD for bytes they can't map instead
	// of returning an error; raw is not valid UTF-8 here, so any U+FFFD in
	// the output is a substitution and the decode was lossy.
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}
