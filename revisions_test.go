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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionStringGuessExactHit(t *testing.T) {
	assert.Equal(t, "4.2.0", versionStringGuess(v420))
}

func TestVersionStringGuessBetween(t *testing.T) {
	got := versionStringGuess(v420 + 1)
	assert.Contains(t, got, "between")
	assert.Contains(t, got, "4.2.0")
}

func TestVersionStringGuessAfterNewest(t *testing.T) {
	got := versionStringGuess(v501 + 100)
	assert.Contains(t, got, "after")
	assert.Contains(t, got, "5.0.1")
}

func TestVersionStringGuessBeforeEarliest(t *testing.T) {
	assert.Equal(t, "unknown early version", versionStringGuess(-1))
}
