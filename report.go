package regmerge

import (
	"github.com/gogpu/regmerge/ir"
)

// Report is a serializable summary of an analysis.
type Report struct {
	Program   string `yaml:"program,omitempty"`
	Stage     string `yaml:"stage,omitempty"`
	Mergeable bool   `yaml:"mergeable"`
	Reason    string `yaml:"reason,omitempty"`

	Temps  Count `yaml:"temps"`
	Arrays Count `yaml:"arrays"`

	Registers []RegisterEntry `yaml:"registers,omitempty"`
	ArrayList []ArrayEntry    `yaml:"array_ranges,omitempty"`
}

// Count is a register count before and after merging.
type Count struct {
	Before int `yaml:"before"`
	After  int `yaml:"after"`
}

// RegisterEntry describes one used temporary.
type RegisterEntry struct {
	Temp   int  `yaml:"temp"`
	Begin  int  `yaml:"begin"`
	End    int  `yaml:"end"`
	Target *int `yaml:"target,omitempty"`
}

// ArrayEntry describes one used array.
type ArrayEntry struct {
	ID      uint32 `yaml:"id"`
	Length  uint32 `yaml:"length"`
	Begin   int    `yaml:"begin"`
	End     int    `yaml:"end"`
	Mask    string `yaml:"mask"`
	Target  uint32 `yaml:"target,omitempty"`
	Swizzle string `yaml:"swizzle,omitempty"`
}

// NewReport summarizes the analysis of p.
func NewReport(p *ir.Program, res *Result) Report {
	rep := Report{
		Program:   p.Name,
		Stage:     ir.StageName(p.Stage),
		Mergeable: res.Mergeable,
		Temps:     Count{Before: p.NumTemps, After: res.NumTemps()},
		Arrays:    Count{Before: p.NumArrays(), After: res.Arrays.NumArrays},
	}
	if res.Reason != nil {
		rep.Reason = res.Reason.Error()
	}

	for i, r := range res.RegisterRanges {
		if r.Unused() {
			continue
		}
		entry := RegisterEntry{Temp: i, Begin: r.Begin, End: r.End}
		if m := res.RegisterRemap[i]; m.Valid {
			target := m.Target
			entry.Target = &target
		}
		rep.Registers = append(rep.Registers, entry)
	}

	for i, r := range res.ArrayRanges {
		if r.Unused() {
			continue
		}
		entry := ArrayEntry{
			ID:     r.ID,
			Length: r.Length,
			Begin:  r.Begin,
			End:    r.End,
			Mask:   r.AccessMask.String(),
		}
		if m := res.Arrays.Remaps[i]; m.Target != 0 {
			entry.Target = m.Target
			entry.Swizzle = m.SwizzleString()
		}
		rep.ArrayList = append(rep.ArrayList, entry)
	}
	return rep
}
