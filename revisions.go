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
	"sort"
)

// File revision constants, naming the exact integer thresholds BIOPAC has
// used to gate which header fields a given file carries. A file's own
// revision number (GraphHeader's lVersion) is compared against these with
// <= / >= when a header schema decides which of its fields are present.
const (
	vAll  = 0
	v20a  = 30
	v20b  = 31
	v20r  = 32
	v207  = 33
	v30r  = 34
	v303  = 35
	v35x  = 36
	v36x  = 37
	v370  = 38
	v373  = 39
	v381  = 41
	v37P  = 42
	v382  = 43
	v38P  = 44
	v390  = 45
	v400B = 61
	v400  = 68
	v401  = 76
	v402  = 78
	v41a  = 80
	v410  = 83
	v411  = 84
	v420  = 108
	v42x  = 121
	v430  = 124
	v440  = 128
	v501  = 132
)

// minReaderRevision is the smallest file revision this reader will attempt.
// Nothing below it is grounded in the revision table above.
const minReaderRevision = v20a

var revisionNames = map[int]string{
	vAll:  "all",
	v20a:  "2.0a",
	v20b:  "2.0b",
	v20r:  "2.0r",
	v207:  "2.0.7",
	v30r:  "3.0r",
	v303:  "3.0.3",
	v35x:  "3.5.x",
	v36x:  "3.6.x",
	v370:  "3.7.0",
	v373:  "3.7.3",
	v381:  "3.8.1",
	v37P:  "3.7.P",
	v382:  "3.8.2",
	v38P:  "3.8.P",
	v390:  "3.9.0",
	v400B: "4.0.0B",
	v400:  "4.0.0",
	v401:  "4.0.1",
	v402:  "4.0.2",
	v41a:  "4.1a",
	v410:  "4.1.0",
	v411:  "4.1.1",
	v420:  "4.2.0",
	v42x:  "4.2.x",
	v430:  "4.3.0",
	v440:  "4.4.0",
	v501:  "5.0.1",
}

// versionStringGuess mirrors the format's own "closest known version"
// heuristic: exact hit, "before", "after", or "between" two known revisions.
func versionStringGuess(revision int) string {
	if name, ok := revisionNames[revision]; ok {
		return name
	}
	known := make([]int, 0, len(revisionNames))
	for k := range revisionNames {
		known = append(known, k)
	}
	sort.Ints(known)
	if revision < known[0] {
		return "unknown early version"
	}
	if revision > known[len(known)-1] {
		return fmt.Sprintf("after %s", revisionNames[known[len(known)-1]])
	}
	for i, r := range known {
		if revision < r {
			return fmt.Sprintf("between %s and %s", revisionNames[known[i-1]], revisionNames[r])
		}
	}
	return "unknown version"
}
