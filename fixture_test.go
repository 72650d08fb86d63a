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
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFixedString appends s, NUL-padded (or truncated) to exactly width
// bytes, matching how the format stores fixed-width text fields.
func writeFixedString(t *testing.T, buf *bytes.Buffer, s string, width int) {
	t.Helper()
	b := make([]byte, width)
	copy(b, s)
	_, err := buf.Write(b)
	require.NoError(t, err)
}

func writeLE(t *testing.T, buf *bytes.Buffer, v any) {
	t.Helper()
	require.NoError(t, binary.Write(buf, binary.LittleEndian, v))
}

// buildTwoChannelEqualRateFixture builds a minimal, little-endian,
// uncompressed AcqKnowledge file at file revision 34 (v30r): two int16
// channels sampled at the same rate (frequency divider 1, so no
// nVarSampleDivider field needs to exist at this revision), an empty
// marker header, and no journal (journals start at v370). Channel 0 carries raw samples
// [10,11,12,13] with scale 1/offset 0; channel 1 carries [20,21,22,23]
// with scale 2/offset 1.
func buildTwoChannelEqualRateFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer

	// --- GraphHeader (PRE_4, fields through v30r): 164 bytes total.
	writeLE(t, &buf, int16(164))          // nItemHeaderLen
	writeLE(t, &buf, int32(34))           // lVersion (file revision)
	writeLE(t, &buf, int32(164))          // lExtItemHeaderLen
	writeLE(t, &buf, int16(2))            // nChannels
	writeLE(t, &buf, int16(0))            // nHorizAxisType
	writeLE(t, &buf, int16(0))            // nCurChannel
	writeLE(t, &buf, float64(250.0))      // dSampleTime (ms) -> 4 Hz
	writeLE(t, &buf, float64(0))          // dTimeOffset
	writeLE(t, &buf, float64(1))          // dTimeScale
	writeLE(t, &buf, float64(0))          // dTimeCursor1
	writeLE(t, &buf, float64(0))          // dTimeCursor2
	for i := 0; i < 4; i++ {
		writeLE(t, &buf, int16(0)) // rcWindow
	}
	for i := 0; i < 6; i++ {
		writeLE(t, &buf, int16(0)) // nMeasurement
	}
	writeLE(t, &buf, int16(0))       // fHilite
	writeLE(t, &buf, float64(0))     // dFirstTimeOffset
	writeLE(t, &buf, int16(0))       // nRescale
	writeFixedString(t, &buf, "", 40) // szHorizUnits1
	writeFixedString(t, &buf, "", 10) // szHorizUnits2
	writeLE(t, &buf, int16(0))       // nInMemory
	writeLE(t, &buf, int16(0))       // fGrid
	writeLE(t, &buf, int16(0))       // fMarkers
	writeLE(t, &buf, int16(0))       // nPlotDraft
	writeLE(t, &buf, int16(0))       // nDispMode
	writeLE(t, &buf, int16(0))       // rRReserved
	writeLE(t, &buf, int16(0))       // bShowToolBar
	writeLE(t, &buf, int16(0))       // bShowChannelButtons
	writeLE(t, &buf, int16(0))       // bShowMeasurements
	writeLE(t, &buf, int16(0))       // bShowMarkers
	writeLE(t, &buf, int16(0))       // bShowJournal
	writeLE(t, &buf, int16(0))       // curXChannel
	writeLE(t, &buf, int16(0))       // mmtPrecision
	require.Equal(t, 164, buf.Len())

	// --- two ChannelHeaders (PRE_4, fields through v30r): 122 bytes each.
	type chanSpec struct {
		name  string
		scale float64
		off   float64
	}
	specs := []chanSpec{
		{"Channel 1", 1, 0},
		{"Channel 2", 2, 1},
	}
	for i, spec := range specs {
		start := buf.Len()
		writeLE(t, &buf, int32(122))           // lChanHeaderLen
		writeLE(t, &buf, int16(i))              // nNum
		writeFixedString(t, &buf, spec.name, 40) // szCommentText
		for j := 0; j < 4; j++ {
			writeLE(t, &buf, uint8(0)) // rgbColor
		}
		writeLE(t, &buf, int16(0))            // nDispChan
		writeLE(t, &buf, float64(0))          // dVoltOffset
		writeLE(t, &buf, float64(1))          // dVoltScale
		writeFixedString(t, &buf, "units", 20) // szUnitsText
		writeLE(t, &buf, int32(4))             // lBufLength (4 points)
		writeLE(t, &buf, spec.scale)           // dAmplScale
		writeLE(t, &buf, spec.off)             // dAmplOffset
		writeLE(t, &buf, int16(i))             // nChanOrder
		writeLE(t, &buf, int16(0))             // nDispSize
		writeLE(t, &buf, int16(0))             // plotMode
		writeLE(t, &buf, float64(0))           // vMid
		require.Equal(t, 122, buf.Len()-start)
	}

	// --- ForeignHeader (PRE_4): nLength=4 (itself, no payload), nType=0.
	writeLE(t, &buf, int16(4))
	writeLE(t, &buf, int16(0))

	// --- ChannelDTypeHeader x2: int16 samples (nType=2, nSize=2).
	for i := 0; i < 2; i++ {
		writeLE(t, &buf, int16(2)) // nSize
		writeLE(t, &buf, int16(2)) // nType
	}

	// --- interleaved raw sample data: ch0[0],ch1[0],ch0[1],ch1[1],...
	ch0 := []int16{10, 11, 12, 13}
	ch1 := []int16{20, 21, 22, 23}
	for i := 0; i < 4; i++ {
		writeLE(t, &buf, ch0[i])
		writeLE(t, &buf, ch1[i])
	}

	// --- V2MarkerHeader: no markers.
	writeLE(t, &buf, int32(8)) // lLength
	writeLE(t, &buf, int32(0)) // lMarkers

	// revision 34 < v370, so readV2Journal returns immediately: no journal
	// bytes needed.

	return buf.Bytes()
}
