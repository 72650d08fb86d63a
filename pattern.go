// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package acq

// ChunkPlan is one (pattern, repetitions) unit of work for the Sample
// Iterator: read repetitions × len(Pattern) raw samples, in Pattern order.
type ChunkPlan struct {
	Pattern     []int
	Repetitions int
}

// defaultChunkSizeSamples is the planner's implementation-parameter default
// (an implementation detail that must not affect output, only throughput).
const defaultChunkSizeSamples = 1 << 20

// basePattern computes the interleave pattern for a set of per-channel
// frequency dividers: the least common multiple of the dividers gives the
// pattern length in "slots," and channel i occupies a slot whenever
// slot mod dividers[i] == 0.
func basePattern(dividers []int) []int {
	base := lcmAll(dividers)
	pattern := make([]int, 0, base)
	for slot := 0; slot < base; slot++ {
		for ch, d := range dividers {
			if slot%d == 0 {
				pattern = append(pattern, ch)
			}
		}
	}
	return pattern
}

// countsInPattern returns, for each channel, how many times it appears in
// pattern.
func countsInPattern(pattern []int, channelCount int) []int {
	counts := make([]int, channelCount)
	for _, ch := range pattern {
		counts[ch]++
	}
	return counts
}

// truncatePattern edits pattern for the final, possibly-irregular
// repetition: for each channel whose remaining sample budget is smaller
// than its count in pattern, only that channel's first `remaining[ch]`
// occurrences survive — later ones (toward the end of the pattern) are
// dropped. Channels with enough budget are untouched. The result preserves
// the original slot order of whatever survives, so it may have a different
// shape than pattern, not merely a shorter prefix of it.
func truncatePattern(pattern []int, remaining []int) []int {
	seen := make([]int, len(remaining))
	out := make([]int, 0, len(pattern))
	for _, ch := range pattern {
		if seen[ch] < remaining[ch] {
			out = append(out, ch)
		}
		seen[ch]++
	}
	return out
}

// planChunks lays out the full sequence of chunked reads needed to consume
// exactly pointCounts[i] samples of each channel, given their frequency
// dividers, without ever reading past a channel's recorded sample count.
func planChunks(dividers []int, pointCounts []int, chunkSizeSamples int) []ChunkPlan {
	if chunkSizeSamples <= 0 {
		chunkSizeSamples = defaultChunkSizeSamples
	}
	base := basePattern(dividers)
	if len(base) == 0 {
		return nil
	}
	countInBase := countsInPattern(base, len(dividers))
	remaining := append([]int(nil), pointCounts...)

	maxRepsPerChunk := chunkSizeSamples / len(base)
	if maxRepsPerChunk < 1 {
		maxRepsPerChunk = 1
	}

	var plans []ChunkPlan
	for sumPositive(remaining) {
		fullReps := minFullReps(remaining, countInBase)
		if fullReps > 0 {
			reps := fullReps
			if reps > maxRepsPerChunk {
				reps = maxRepsPerChunk
			}
			plans = append(plans, ChunkPlan{Pattern: base, Repetitions: reps})
			for i := range remaining {
				remaining[i] -= reps * countInBase[i]
			}
			continue
		}
		edited := truncatePattern(base, remaining)
		if len(edited) == 0 {
			break
		}
		plans = append(plans, ChunkPlan{Pattern: edited, Repetitions: 1})
		for _, ch := range edited {
			remaining[ch]--
		}
	}
	return plans
}

// minFullReps is the largest number of complete, unedited repetitions of
// the base pattern every channel's remaining budget can still afford.
func minFullReps(remaining, countInBase []int) int {
	reps := -1
	for i, count := range countInBase {
		if count == 0 {
			continue
		}
		r := remaining[i] / count
		if reps == -1 || r < reps {
			reps = r
		}
	}
	if reps < 0 {
		return 0
	}
	return reps
}

func sumPositive(xs []int) bool {
	for _, x := range xs {
		if x > 0 {
			return true
		}
	}
	return false
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm2(a, b int) int {
	return (a / gcd(a, b)) * b
}

// lcmAll is the least common multiple of every divider, used to size the
// base interleave pattern.
func lcmAll(xs []int) int {
	if len(xs) == 0 {
		return 1
	}
	result := xs[0]
	for _, x := range xs[1:] {
		result = lcm2(result, x)
	}
	return result
}
