// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package merge

import (
	"sort"

	"github.com/gogpu/regmerge/liverange"
)

// RegisterRemap tells where a temporary goes. A temporary with Valid unset
// keeps its own index.
type RegisterRemap struct {
	Valid  bool `yaml:"valid"`
	Target int  `yaml:"target"`
}

// accessRecord is one used temporary in the merge scan.
type accessRecord struct {
	begin int
	end   int
	reg   int
	erase bool
}

// Registers plans the renaming of temporaries with disjoint live ranges.
//
// Used temporaries are sorted by the begin of their live range. Starting with
// the first, the current target absorbs the next temporary that begins at or
// after the target's end, which then extends the target's end; when none is
// left the next unmerged temporary becomes the target.
func Registers(ranges []liverange.RegisterRange) []RegisterRemap {
	result := make([]RegisterRemap, len(ranges))

	records := make([]accessRecord, 0, len(ranges))
	for i, r := range ranges {
		if r.Begin >= 0 {
			records = append(records, accessRecord{begin: r.Begin, end: r.End, reg: i})
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].begin < records[j].begin
	})

	end := len(records)
	firstErase := end
	trgt := 0
	searchStart := 1

	for trgt < end {
		src := findNextRename(records, searchStart, end, records[trgt].end)
		if src < end {
			result[records[src].reg] = RegisterRemap{Valid: true, Target: records[trgt].reg}
			records[trgt].end = records[src].end

			// Searching only moves forward, so the merged record is only
			// marked here and removed when the target advances.
			records[src].erase = true
			if firstErase == end {
				firstErase = src
			}
			searchStart = src + 1
			continue
		}

		if firstErase != end {
			out := firstErase
			for in := firstErase + 1; in < end; in++ {
				if !records[in].erase {
					records[out] = records[in]
					out++
				}
			}
			end = out
			firstErase = end
		}
		trgt++
		searchStart = trgt + 1
	}

	return result
}

// findNextRename returns the first record in [start, end) that begins at or
// after bound, or end.
func findNextRename(records []accessRecord, start, end, bound int) int {
	return start + sort.Search(end-start, func(i int) bool {
		return records[start+i].begin >= bound
	})
}

// Disjoint reports whether two register live ranges do not overlap.
func Disjoint(a, b liverange.RegisterRange) bool {
	return a.End <= b.Begin || b.End <= a.Begin
}

// CountRegisters returns the number of temporaries left after applying
// remap to n temporaries with the given live ranges. Unused temporaries are
// not counted.
func CountRegisters(ranges []liverange.RegisterRange, remap []RegisterRemap) int {
	n := 0
	for i := range ranges {
		if !ranges[i].Unused() && !remap[i].Valid {
			n++
		}
	}
	return n
}
