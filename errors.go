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
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy described in the format's error handling
// design. Callers should use errors.Is against these, since returned errors
// wrap them with added context via fmt.Errorf("...: %w", ...).
var (
	// ErrInsufficientData means the source ended in the middle of a field.
	ErrInsufficientData = errors.New("acq: insufficient data")

	// ErrSeek means a seek was required on a non-seekable source.
	ErrSeek = errors.New("acq: seek error")

	// ErrUnsupportedRevision means the file revision is below the minimum
	// this reader knows how to parse.
	ErrUnsupportedRevision = errors.New("acq: unsupported file revision")

	// ErrForeignHeaderAmbiguous means neither the declared-length strategy
	// nor the signature-scan strategy produced a self-consistent parse of
	// the Foreign Data Header.
	ErrForeignHeaderAmbiguous = errors.New("acq: foreign data header ambiguous")

	// ErrChecksumOrInflate means zlib inflation of a compressed channel
	// segment failed.
	ErrChecksumOrInflate = errors.New("acq: checksum or inflate error")
)

// Warning is a non-fatal finding attached to a Datafile (InvariantViolation
// and EncodingFailure in the error taxonomy). The rest of the file still
// parses when a Warning is recorded.
type Warning struct {
	Kind    string
	Message string
}

func (w Warning) Error() string {
	return w.Kind + ": " + w.Message
}

func invariantViolation(format string, args ...any) Warning {
	return Warning{Kind: "InvariantViolation", Message: fmt.Sprintf(format, args...)}
}

func encodingFailure(format string, args ...any) Warning {
	return Warning{Kind: "EncodingFailure", Message: fmt.Sprintf(format, args...)}
}
