// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package acq

// headerKind identifies one of the binary header shapes that make up an
// AcqKnowledge file, matching the class names of the format this reader is
// grounded on (GraphHeader, ChannelHeader, ForeignHeader, ...).
type headerKind int

const (
	headerGraph headerKind = iota
	headerUnknownPadding
	headerChannel
	headerForeign
	headerChannelDType
	headerV2Journal
	headerV4JournalLength
	headerV4Journal
	headerMainCompression
	headerChannelCompression
	headerV2Marker
	headerV2MarkerMetadataPre
	headerV2MarkerMetadataItem
	headerV4Marker
	headerV2MarkerItem
	headerV4MarkerItem
)

// graphSchema is the main Graph Header: channel count, sample period,
// compression flag, and (from V_430) the expected-padding-header count.
// The PRE_4/POST_4 split and every field threshold below is taken directly
// from the format's own field table.
var graphSchema = schema{
	kind: headerGraph,
	variants: []variant{
		{
			minRevision: vAll,
			maxRevision: v400B,
			fields: []field{
				{"nItemHeaderLen", kindInt16, 1, vAll},
				{"lVersion", kindInt32, 1, vAll},
				{"lExtItemHeaderLen", kindInt32, 1, v20a},
				{"nChannels", kindInt16, 1, v20a},
				{"nHorizAxisType", kindInt16, 1, v20a},
				{"nCurChannel", kindInt16, 1, v20a},
				{"dSampleTime", kindFloat64, 1, v20a},
				{"dTimeOffset", kindFloat64, 1, v20a},
				{"dTimeScale", kindFloat64, 1, v20a},
				{"dTimeCursor1", kindFloat64, 1, v20a},
				{"dTimeCursor2", kindFloat64, 1, v20a},
				{"rcWindow", kindInt16, 4, v20a},
				{"nMeasurement", kindInt16, 6, v20a},
				{"fHilite", kindInt16, 1, v20a},
				{"dFirstTimeOffset", kindFloat64, 1, v20a},
				{"nRescale", kindInt16, 1, v20a},
				{"szHorizUnits1", kindString, 40, v20a},
				{"szHorizUnits2", kindString, 10, v20a},
				{"nInMemory", kindInt16, 1, v20a},
				{"fGrid", kindInt16, 1, v20a},
				{"fMarkers", kindInt16, 1, v20a},
				{"nPlotDraft", kindInt16, 1, v20a},
				{"nDispMode", kindInt16, 1, v20a},
				{"rRReserved", kindInt16, 1, v20a},
				{"bShowToolBar", kindInt16, 1, v30r},
				{"bShowChannelButtons", kindInt16, 1, v30r},
				{"bShowMeasurements", kindInt16, 1, v30r},
				{"bShowMarkers", kindInt16, 1, v30r},
				{"bShowJournal", kindInt16, 1, v30r},
				{"curXChannel", kindInt16, 1, v30r},
				{"mmtPrecision", kindInt16, 1, v30r},
				{"nMeasurementRows", kindInt16, 1, v303},
				{"mmt40", kindInt16, 40, v303},
				{"mmtChan40", kindInt16, 40, v303},
				{"mmtCalcOpnd1", kindInt16, 40, v35x},
				{"mmtCalcOpnd2", kindInt16, 40, v35x},
				{"mmtCalcOp", kindInt16, 40, v35x},
				{"mmtCalcConstant", kindFloat64, 40, v35x},
				{"bNewGridWithMinor", kindInt32, 1, v370},
				{"colorMajorGrid", kindUint8, 4, v370},
				{"colorMinorGrid", kindUint8, 4, v370},
				{"wMajorGridStyle", kindInt16, 1, v370},
				{"wMinorGridStyle", kindInt16, 1, v370},
				{"wMajorGridWidth", kindInt16, 1, v370},
				{"wMinorGridWidth", kindInt16, 1, v370},
				{"bFixedUnitsDiv", kindInt32, 1, v370},
				{"bMidRangeShow", kindInt32, 1, v370},
				{"dStartMiddlePoint", kindFloat64, 1, v370},
				{"dOffsetPoint", kindFloat64, 60, v370},
				{"hGrid", kindFloat64, 1, v370},
				{"vGrid", kindFloat64, 60, v370},
				{"bEnableWaveTools", kindInt32, 1, v370},
				{"hozizPrecision", kindInt16, 1, v373},
				{"reserved", kindInt8, 20, v381},
				{"bOverlapMode", kindInt32, 1, v381},
				{"bShowHardware", kindInt32, 1, v381},
				{"bXAutoPlot", kindInt32, 1, v381},
				{"bXAutoScroll", kindInt32, 1, v381},
				{"bStartButtonVisible", kindInt32, 1, v381},
				{"bCompressed", kindInt32, 1, v381},
				{"bAlwaysStartButtonVisible", kindInt32, 1, v381},
				{"pathVideo", kindString, 260, v382},
				{"optSyncDelay", kindInt32, 1, v382},
				{"syncDelay", kindFloat64, 1, v382},
				{"bHRPPasteMeasurements", kindInt32, 1, v382},
				{"graphType", kindInt32, 1, v390},
				{"mmtCalcExpr", kindString, 10240, v390},
				{"mmtMomentOrder", kindInt32, 40, v390},
				{"mmtTimeDelay", kindInt32, 40, v390},
				{"mmtEmbedDim", kindInt32, 40, v390},
				{"mmtMIDelay", kindInt32, 40, v390},
			},
		},
		{
			minRevision: v400B,
			maxRevision: 0,
			fields: []field{
				{"nItemHeaderLen", kindInt16, 1, vAll},
				{"lVersion", kindInt32, 1, vAll},
				{"lExtItemHeaderLen", kindInt32, 1, v20a},
				{"nChannels", kindInt16, 1, v20a},
				{"nHorizAxisType", kindInt16, 1, v20a},
				{"nCurChannel", kindInt16, 1, v20a},
				{"dSampleTime", kindFloat64, 1, v20a},
				{"dTimeOffset", kindFloat64, 1, v20a},
				{"dTimeScale", kindFloat64, 1, v20a},
				{"dTimeCursor1", kindFloat64, 1, v20a},
				{"dTimeCursor2", kindFloat64, 1, v20a},
				{"rcWindow", kindInt16, 4, v20a},
				{"nMeasurement", kindInt16, 6, v20a},
				{"fHilite", kindInt16, 1, v20a},
				{"dFirstTimeOffset", kindFloat64, 1, v20a},
				{"nRescale", kindInt16, 1, v20a},
				{"szHorizUnits1", kindString, 40, v20a},
				{"szHorizUnits2", kindString, 10, v20a},
				{"nInMemory", kindInt16, 1, v20a},
				{"fGrid", kindInt16, 1, v20a},
				{"fMarkers", kindInt16, 1, v20a},
				{"nPlotDraft", kindInt16, 1, v20a},
				{"nDispMode", kindInt16, 1, v20a},
				{"rRReserved", kindInt16, 1, v20a},
				{"unknown", kindUint8, 822, v400B},
				{"bCompressed", kindInt32, 1, v400B},
				{"unknown2", kindUint8, 1422, v400B},
				{"hExpectedPaddings", kindInt16, 1, v430},
			},
		},
	},
}

// unknownPaddingSchema: a 40-byte block of unidentified purpose that some
// modern files carry between the graph header and the channel headers.
var unknownPaddingSchema = schema{
	kind: headerUnknownPadding,
	variants: []variant{
		{minRevision: vAll, maxRevision: 0, fields: []field{
			{"lChannelLen", kindInt32, 1, vAll},
			{"unknown", kindUint8, 36, vAll},
		}},
	},
}

// channelSchema is the per-channel header: name, units, frequency divider,
// scale/offset, buffer length, and display order.
var channelSchema = schema{
	kind: headerChannel,
	variants: []variant{
		{
			minRevision: vAll,
			maxRevision: v400B,
			fields: []field{
				{"lChanHeaderLen", kindInt32, 1, v20a},
				{"nNum", kindInt16, 1, v20a},
				{"szCommentText", kindString, 40, v20a},
				{"rgbColor", kindUint8, 4, v20a},
				{"nDispChan", kindInt16, 1, v20a},
				{"dVoltOffset", kindFloat64, 1, v20a},
				{"dVoltScale", kindFloat64, 1, v20a},
				{"szUnitsText", kindString, 20, v20a},
				{"lBufLength", kindInt32, 1, v20a},
				{"dAmplScale", kindFloat64, 1, v20a},
				{"dAmplOffset", kindFloat64, 1, v20a},
				{"nChanOrder", kindInt16, 1, v20a},
				{"nDispSize", kindInt16, 1, v20a},
				{"plotMode", kindInt16, 1, v30r},
				{"vMid", kindFloat64, 1, v30r},
				{"szDescription", kindString, 128, v370},
				{"nVarSampleDivider", kindInt16, 1, v370},
				{"vertPrecision", kindInt16, 1, v373},
				{"activeSegmentColor", kindInt8, 4, v382},
				{"activeSegmentStyle", kindInt32, 1, v382},
			},
		},
		{
			minRevision: v400B,
			maxRevision: 0,
			fields: []field{
				{"lChanHeaderLen", kindInt32, 1, v20a},
				{"nNum", kindInt16, 1, v20a},
				{"szCommentText", kindString, 40, v20a},
				{"notColor", kindUint8, 4, v20a},
				{"nDispChan", kindInt16, 1, v20a},
				{"dVoltOffset", kindFloat64, 1, v20a},
				{"dVoltScale", kindFloat64, 1, v20a},
				{"szUnitsText", kindString, 20, v20a},
				{"lBufLength", kindInt32, 1, v20a},
				{"dAmplScale", kindFloat64, 1, v20a},
				{"dAmplOffset", kindFloat64, 1, v20a},
				{"nChanOrder", kindInt16, 1, v20a},
				{"nDispSize", kindInt16, 1, v20a},
				{"unknown", kindString, 40, v400B},
				{"nVarSampleDivider", kindInt16, 1, v400B},
			},
		},
	},
}

// foreignSchema: an opaque, vendor-reserved block whose length field alone
// matters to this reader (see walker.go's ambiguity-resolution strategies).
var foreignSchema = schema{
	kind: headerForeign,
	variants: []variant{
		{minRevision: vAll, maxRevision: v400B, fields: []field{
			{"nLength", kindInt16, 1, v20a},
			{"nType", kindInt16, 1, v20a},
		}},
		{minRevision: v400B, maxRevision: 0, fields: []field{
			{"lLength", kindInt32, 1, v400B},
		}},
	},
}

// channelDTypeSchema: per-channel sample width and numeric type code, read
// for every channel right after the foreign header.
var channelDTypeSchema = schema{
	kind: headerChannelDType,
	variants: []variant{
		{minRevision: vAll, maxRevision: 0, fields: []field{
			{"nSize", kindInt16, 1, v20a},
			{"nType", kindInt16, 1, v20a},
		}},
	},
}

// v2JournalSchema: the trivial version-2/3 journal header. Its leading tag
// also doubles as a disambiguator when reading marker metadata (see
// walker.go).
var v2JournalSchema = schema{
	kind: headerV2Journal,
	variants: []variant{
		{minRevision: vAll, maxRevision: 0, fields: []field{
			{"tag", kindUint8, 4, v20a},
			{"hShow", kindInt16, 1, v20a},
			{"lJournalLen", kindInt32, 1, v20a},
		}},
	},
}

var v4JournalLengthSchema = schema{
	kind: headerV4JournalLength,
	variants: []variant{
		{minRevision: vAll, maxRevision: 0, fields: []field{
			{"lJournalDataLen", kindInt32, 1, v400B},
		}},
	},
}

var v4JournalSchema = schema{
	kind: headerV4Journal,
	variants: []variant{
		{minRevision: vAll, maxRevision: 0, fields: []field{
			{"bUnknown1", kindInt8, 262, v400B},
			{"lEarlyJournalLen", kindInt32, 1, v400B},
			{"bUnknown2", kindInt8, 290, v400B},
			{"bUnknown3", kindInt8, 26, v420},
			{"bUnknown4", kindInt8, 4, v440},
			{"lLateJournalLenMinusOne", kindInt32, 1, v420},
			{"lLateJournalLen", kindInt32, 1, v420},
		}},
	},
}

// mainCompressionSchema precedes the per-channel compression headers in
// compressed files; only its declared length matters here.
var mainCompressionSchema = schema{
	kind: headerMainCompression,
	variants: []variant{
		{minRevision: vAll, maxRevision: v400B + 1, fields: []field{
			{"unknown", kindUint8, 34, v20a},
			{"lTextLen", kindInt32, 1, v20a},
		}},
		{minRevision: v400B + 1, maxRevision: 0, fields: []field{
			{"unknown1", kindUint8, 24, v400B},
			{"lStrLen1", kindInt32, 1, v400B},
			{"lStrLen2", kindInt32, 1, v400B},
			{"unknown2", kindUint8, 20, v400B},
			{"unknown3", kindUint8, 6, v420},
		}},
	},
}

// channelCompressionSchema: one per compressed channel, carrying the
// compressed payload's offset and length.
var channelCompressionSchema = schema{
	kind: headerChannelCompression,
	variants: []variant{
		{minRevision: vAll, maxRevision: 0, fields: []field{
			{"unknown", kindUint8, 44, v381},
			{"lChannelLabelLen", kindInt32, 1, v381},
			{"lUnitLabelLen", kindInt32, 1, v381},
			{"lUncompressedLen", kindInt32, 1, v381},
			{"lCompressedLen", kindInt32, 1, v381},
		}},
	},
}

var v2MarkerSchema = schema{
	kind: headerV2Marker,
	variants: []variant{
		{minRevision: vAll, maxRevision: 0, fields: []field{
			{"lLength", kindInt32, 1, v20a},
			{"lMarkers", kindInt32, 1, v20a},
		}},
	},
}

var v2MarkerMetadataPreSchema = schema{
	kind: headerV2MarkerMetadataPre,
	variants: []variant{
		{minRevision: vAll, maxRevision: 0, fields: []field{
			{"tag", kindUint8, 4, v20a},
			{"lItemCount", kindInt32, 1, v20a},
			{"sUnknown", kindString, 76, v20a},
		}},
	},
}

var v2MarkerMetadataItemSchema = schema{
	kind: headerV2MarkerMetadataItem,
	variants: []variant{
		{minRevision: vAll, maxRevision: 0, fields: []field{
			{"lUnknown1", kindInt32, 1, v20a},
			{"lMarkerNumber", kindInt32, 1, v20a},
			{"bUnknown2", kindUint8, 12, v20a},
			{"rgbaColor", kindUint8, 4, v20a},
			{"hMarkerTag", kindInt16, 1, v20a},
			{"hMarkerTypeID", kindInt16, 1, v20a},
		}},
	},
}

var v4MarkerSchema = schema{
	kind: headerV4Marker,
	variants: []variant{
		{minRevision: vAll, maxRevision: 0, fields: []field{
			{"lLength", kindInt32, 1, v400B},
			{"lMarkersExtra", kindInt32, 1, v400B},
			{"lMarkers", kindInt32, 1, v400B},
			{"unknown", kindUint8, 6, v400B},
			{"szDefl", kindString, 5, v400B},
			{"unknown2", kindInt16, 1, v400B},
			{"unknown3", kindUint8, 8, v42x},
			{"unknown4", kindUint8, 8, v440},
		}},
	},
}

var v2MarkerItemSchema = schema{
	kind: headerV2MarkerItem,
	variants: []variant{
		{minRevision: vAll, maxRevision: 0, fields: []field{
			{"lSample", kindInt32, 1, v20a},
			{"fSelected", kindInt16, 1, v35x},
			{"fTextLocked", kindInt16, 1, v20a},
			{"fPositionLocked", kindInt16, 1, v20a},
			{"nTextLength", kindInt16, 1, v20a},
		}},
	},
}

var v4MarkerItemSchema = schema{
	kind: headerV4MarkerItem,
	variants: []variant{
		{minRevision: vAll, maxRevision: 0, fields: []field{
			{"lSample", kindInt32, 1, v400B},
			{"unknown", kindUint8, 4, v400B},
			{"nChannel", kindInt16, 1, v400B},
			{"sMarkerStyle", kindString, 4, v400B},
			{"llDateCreated", kindUint64, 1, v440},
			{"unknown3", kindUint8, 8, v42x},
			{"nTextLength", kindInt16, 1, v400B},
		}},
	},
}
