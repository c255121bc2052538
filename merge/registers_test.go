// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/regmerge/liverange"
)

func rr(begin, end int) liverange.RegisterRange {
	return liverange.RegisterRange{Begin: begin, End: end}
}

var unused = rr(-1, -1)

func TestRegisters(t *testing.T) {
	tests := []struct {
		name   string
		ranges []liverange.RegisterRange
		want   []RegisterRemap
	}{
		{
			name:   "empty",
			ranges: nil,
			want:   []RegisterRemap{},
		},
		{
			name:   "touching ranges merge",
			ranges: []liverange.RegisterRange{unused, unused, unused, rr(0, 5), rr(5, 9)},
			want: []RegisterRemap{
				{}, {}, {}, {},
				{Valid: true, Target: 3},
			},
		},
		{
			name:   "overlapping ranges stay",
			ranges: []liverange.RegisterRange{rr(0, 5), rr(4, 9)},
			want:   []RegisterRemap{{}, {}},
		},
		{
			name:   "chain into one target",
			ranges: []liverange.RegisterRange{rr(0, 2), rr(2, 4), rr(4, 6), rr(6, 8)},
			want: []RegisterRemap{
				{},
				{Valid: true, Target: 0},
				{Valid: true, Target: 0},
				{Valid: true, Target: 0},
			},
		},
		{
			name: "target skips overlapping candidates",
			// T0 (0,3) takes T2 (3,6) and T3 (6,8), T1 (1,7) takes nothing
			// that is left.
			ranges: []liverange.RegisterRange{rr(0, 3), rr(1, 7), rr(3, 6), rr(6, 8)},
			want: []RegisterRemap{
				{},
				{},
				{Valid: true, Target: 0},
				{Valid: true, Target: 0},
			},
		},
		{
			name: "second target after compaction",
			// T0 (0,4) takes T3 (5,9); then T1 (1,3) takes T2 (3,4).
			ranges: []liverange.RegisterRange{rr(0, 4), rr(1, 3), rr(3, 4), rr(5, 9)},
			want: []RegisterRemap{
				{},
				{},
				{Valid: true, Target: 1},
				{Valid: true, Target: 0},
			},
		},
		{
			name:   "unused registers are left alone",
			ranges: []liverange.RegisterRange{unused, rr(0, 1), unused, rr(1, 2)},
			want: []RegisterRemap{
				{},
				{},
				{},
				{Valid: true, Target: 1},
			},
		},
		{
			name:   "equal begins keep input order",
			ranges: []liverange.RegisterRange{rr(2, 3), rr(0, 2), rr(0, 1)},
			want: []RegisterRemap{
				{Valid: true, Target: 1},
				{},
				{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Registers(tt.ranges)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Registers() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestRegistersDisjoint checks that every group of temporaries sharing a
// target has pairwise disjoint original ranges.
func TestRegistersDisjoint(t *testing.T) {
	ranges := []liverange.RegisterRange{
		rr(0, 3), rr(2, 10), rr(3, 4), rr(4, 12), rr(5, 6),
		unused, rr(6, 7), rr(7, 8), rr(10, 11), rr(11, 14),
		rr(1, 2), rr(8, 9),
	}
	remap := Registers(ranges)

	groups := make(map[int][]int)
	for i, r := range ranges {
		if r.Unused() {
			continue
		}
		target := i
		if remap[i].Valid {
			target = remap[i].Target
			if remap[target].Valid {
				t.Fatalf("T%d targets T%d which is itself renamed", i, target)
			}
		}
		groups[target] = append(groups[target], i)
	}

	for target, members := range groups {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := ranges[members[i]], ranges[members[j]]
				if !Disjoint(a, b) {
					t.Errorf("group T%d: T%d %v overlaps T%d %v", target, members[i], a, members[j], b)
				}
			}
		}
	}

	if got, want := CountRegisters(ranges, remap), len(groups); got != want {
		t.Errorf("CountRegisters() = %d, want %d", got, want)
	}
}

func TestDisjoint(t *testing.T) {
	tests := []struct {
		a, b liverange.RegisterRange
		want bool
	}{
		{rr(0, 5), rr(5, 9), true},
		{rr(5, 9), rr(0, 5), true},
		{rr(0, 5), rr(4, 9), false},
		{rr(0, 9), rr(2, 3), false},
	}
	for _, tt := range tests {
		if got := Disjoint(tt.a, tt.b); got != tt.want {
			t.Errorf("Disjoint(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
