// Package regmerge shrinks the temporary register footprint of shader
// programs.
//
// regmerge computes, for every temporary and every temporary array of a
// flat shader IR program, the span of instructions over which its value must
// be preserved, and coalesces registers whose spans do not overlap:
//   - Temporaries with disjoint live ranges share one register.
//   - Arrays with disjoint live ranges share one array.
//   - Arrays with overlapping live ranges share one array when their used
//     components fit into four, each with its own component mapping.
//
// The analysis understands structured control flow (loops, if/else and
// switch) and keeps values alive across loop iterations where a later
// iteration may read them.
//
// Example usage:
//
//	p, err := regmerge.Parse(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, res, err := regmerge.Coalesce(p, regmerge.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Mergeable, out.NumTemps)
//
// Programs that call subroutines are not analysed; Analyze reports them as
// not mergeable and returns identity mappings.
//
// The lower-level stages live in their own packages: asm (text front end),
// ir (instruction IR and validation), liverange (analysis), merge (planners)
// and remap (rewriting).
package regmerge

import (
	"errors"
	"fmt"

	"github.com/gogpu/regmerge/asm"
	"github.com/gogpu/regmerge/ir"
	"github.com/gogpu/regmerge/liverange"
	"github.com/gogpu/regmerge/merge"
	"github.com/gogpu/regmerge/remap"
)

// Options configures the analysis.
type Options struct {
	// Validate enables IR validation before analysis.
	Validate bool `yaml:"validate"`

	// MergeRegisters enables renaming of temporaries.
	MergeRegisters bool `yaml:"merge_registers"`

	// MergeArrays enables merging of arrays.
	MergeArrays bool `yaml:"merge_arrays"`

	// Interleave enables packing arrays with overlapping live ranges into
	// one array. Only used with MergeArrays.
	Interleave bool `yaml:"interleave"`

	// MaxIfElseNesting bounds if/else write pairing inside loops.
	MaxIfElseNesting int `yaml:"max_ifelse_nesting"`
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Validate:         true,
		MergeRegisters:   true,
		MergeArrays:      true,
		Interleave:       true,
		MaxIfElseNesting: liverange.DefaultMaxIfElseNesting,
	}
}

// Result holds the live ranges and the remapping tables of one analysis.
type Result struct {
	// Mergeable is false when the program could not be analysed. The
	// remapping tables are then identity mappings and Reason says why.
	Mergeable bool
	Reason    error

	// RegisterRanges has one entry per temporary. Nil when not mergeable.
	RegisterRanges []liverange.RegisterRange

	// RegisterRemap has one entry per temporary.
	RegisterRemap []merge.RegisterRemap

	// ArrayRanges has one entry per array. Nil when not mergeable.
	ArrayRanges []liverange.ArrayRange

	// Arrays is the array merge plan.
	Arrays merge.ArrayPlan
}

// NumTemps returns the number of temporaries still in use after applying the
// register remapping. Without live ranges every declared temporary counts.
func (r *Result) NumTemps() int {
	if r.RegisterRanges == nil {
		return len(r.RegisterRemap)
	}
	return merge.CountRegisters(r.RegisterRanges, r.RegisterRemap)
}

// Parse parses assembly source to a program.
func Parse(source string) (*ir.Program, error) {
	p, err := asm.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return p, nil
}

// Analyze computes live ranges and remapping tables for p.
//
// The pipeline is:
//  1. Validate the program (if enabled)
//  2. Compute temporary and array live ranges
//  3. Plan register renaming and array merging
//
// A program the analysis cannot follow is not an error: the result has
// Mergeable unset and identity mappings.
func Analyze(p *ir.Program, opts Options) (*Result, error) {
	if p == nil {
		return nil, errors.New("regmerge: program is nil")
	}
	log := Logger()

	if opts.Validate {
		validationErrors, err := ir.Validate(p)
		if err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		if len(validationErrors) > 0 {
			return nil, fmt.Errorf("validation failed: %w", &validationErrors[0])
		}
	}

	ranges, err := liverange.Compute(p, liverange.Options{
		MaxIfElseNesting: opts.MaxIfElseNesting,
		Logger:           log,
	})
	if err != nil {
		if errors.Is(err, liverange.ErrUnsupportedOpcode) {
			log.Warn("regmerge: program not mergeable, keeping original allocation",
				"program", p.Name, "reason", err)
			return identityResult(p, err), nil
		}
		return nil, fmt.Errorf("live range analysis: %w", err)
	}

	res := &Result{
		Mergeable:      true,
		RegisterRanges: ranges.Registers,
		ArrayRanges:    ranges.Arrays,
	}

	if opts.MergeRegisters {
		res.RegisterRemap = merge.Registers(ranges.Registers)
		for i, m := range res.RegisterRemap {
			if m.Valid {
				log.Debug("rename temporary", "temp", i, "into", m.Target)
			}
		}
	} else {
		res.RegisterRemap = make([]merge.RegisterRemap, p.NumTemps)
	}

	if opts.MergeArrays {
		res.Arrays = merge.Arrays(ranges.Arrays, merge.ArrayOptions{
			Interleave: opts.Interleave,
			Logger:     log,
		})
	} else {
		res.Arrays = identityArrays(p.NumArrays())
	}

	log.Info("regmerge: analysis complete",
		"program", p.Name,
		"temps", p.NumTemps, "temps_after", res.NumTemps(),
		"arrays", p.NumArrays(), "arrays_after", res.Arrays.NumArrays)
	return res, nil
}

// Coalesce analyses p and returns a rewritten copy using fewer registers.
// A program that is not mergeable is returned as an unchanged copy.
func Coalesce(p *ir.Program, opts Options) (*ir.Program, *Result, error) {
	res, err := Analyze(p, opts)
	if err != nil {
		return nil, nil, err
	}
	if !res.Mergeable {
		return p.Clone(), res, nil
	}
	return remap.Apply(p, res.RegisterRemap, &res.Arrays), res, nil
}

// AnalyzeSource parses assembly source and analyses the program.
func AnalyzeSource(source string, opts Options) (*ir.Program, *Result, error) {
	p, err := Parse(source)
	if err != nil {
		return nil, nil, err
	}
	res, err := Analyze(p, opts)
	if err != nil {
		return nil, nil, err
	}
	return p, res, nil
}

func identityResult(p *ir.Program, reason error) *Result {
	return &Result{
		Reason:        reason,
		RegisterRemap: make([]merge.RegisterRemap, p.NumTemps),
		Arrays:        identityArrays(p.NumArrays()),
	}
}

func identityArrays(n int) merge.ArrayPlan {
	plan := merge.ArrayPlan{
		Remaps:    make([]merge.ArrayRemap, n),
		NumArrays: n,
	}
	for i := range plan.Remaps {
		plan.Remaps[i].Swizzle = [4]int8{0, 1, 2, 3}
	}
	return plan
}
