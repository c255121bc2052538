// Command regmerge analyses the temporaries of a shader program and merges
// registers and arrays whose live ranges do not overlap.
//
// Usage:
//
//	regmerge [options] <input.asm>
//
// Examples:
//
//	regmerge shader.asm                  # Print live ranges and renames
//	regmerge -format yaml shader.asm     # Print the report as YAML
//	regmerge -rewrite shader.asm         # Print the coalesced program
//	regmerge -debug shader.asm           # Log every scope and decision
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/regmerge"
	"github.com/gogpu/regmerge/asm"
	"github.com/gogpu/regmerge/ir"
)

const regmergeVersion = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// cliFlags holds the parsed command line.
type cliFlags struct {
	config       string
	format       string
	output       string
	color        string
	rewrite      bool
	noArrays     bool
	noInterleave bool
	noValidate   bool
	debug        bool
	version      bool
}

func newFlagSet(stderr io.Writer, f *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("regmerge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.config, "config", "", "YAML configuration file")
	fs.StringVar(&f.format, "format", "text", "report format: text or yaml")
	fs.StringVar(&f.output, "o", "", "output file (default: stdout)")
	fs.StringVar(&f.color, "color", "auto", "colorize text output: auto, always or never")
	fs.BoolVar(&f.rewrite, "rewrite", false, "print the coalesced program instead of the report")
	fs.BoolVar(&f.noArrays, "no-arrays", false, "do not merge arrays")
	fs.BoolVar(&f.noInterleave, "no-interleave", false, "do not interleave arrays with overlapping live ranges")
	fs.BoolVar(&f.noValidate, "no-validate", false, "skip IR validation")
	fs.BoolVar(&f.debug, "debug", false, "log analysis decisions to stderr")
	fs.BoolVar(&f.version, "version", false, "print version")
	fs.Usage = func() { usage(fs) }
	return fs
}

func run(args []string, stdout, stderr io.Writer) int {
	var f cliFlags
	fs := newFlagSet(stderr, &f)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if f.version {
		fmt.Fprintf(stdout, "regmerge version %s\n", regmergeVersion)
		return 0
	}
	if f.format != "text" && f.format != "yaml" {
		fmt.Fprintf(stderr, "Error: unknown format %q\n", f.format)
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "Error: no input file specified")
		fs.Usage()
		return 1
	}

	cfg, err := loadConfig(f.config)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	opts := cfg.Options
	if f.noArrays {
		opts.MergeArrays = false
	}
	if f.noInterleave {
		opts.Interleave = false
	}
	if f.noValidate {
		opts.Validate = false
	}

	level, logging, _ := cfg.Level()
	if f.debug {
		level, logging = slog.LevelDebug, true
	}
	if logging {
		regmerge.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
		defer regmerge.SetLogger(nil)
	}

	inputPath := fs.Arg(0)
	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading file: %v\n", err)
		return 1
	}

	prog, err := regmerge.Parse(string(source))
	if err != nil {
		var srcErrs asm.SourceErrors
		if errors.As(err, &srcErrs) {
			fmt.Fprintf(stderr, "%s: parse error:\n%s\n", inputPath, srcErrs.FormatAll())
		} else {
			fmt.Fprintf(stderr, "%s: %v\n", inputPath, err)
		}
		return 1
	}
	if prog.Name == "" {
		prog.Name = trimExt(filepath.Base(inputPath))
	}

	out := stdout
	if f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			fmt.Fprintf(stderr, "Error creating output: %v\n", err)
			return 1
		}
		defer file.Close()
		out = file
	}

	if f.rewrite {
		rewritten, _, err := regmerge.Coalesce(prog, opts)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", inputPath, err)
			return 1
		}
		if err := writeProgram(out, rewritten); err != nil {
			fmt.Fprintf(stderr, "Error writing output: %v\n", err)
			return 1
		}
		return 0
	}

	res, err := regmerge.Analyze(prog, opts)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", inputPath, err)
		return 1
	}
	report := regmerge.NewReport(prog, res)

	switch f.format {
	case "yaml":
		err = writeYAML(out, report)
	default:
		err = writeText(out, report, useColor(f.color, out))
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (regmerge.Config, error) {
	if path == "" {
		return regmerge.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return regmerge.Config{}, err
	}
	defer f.Close()
	return regmerge.LoadConfig(f)
}

func writeProgram(w io.Writer, p *ir.Program) error {
	_, err := io.WriteString(w, p.String())
	return err
}

func writeYAML(w io.Writer, report regmerge.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "Usage: regmerge [options] <input.asm>\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  regmerge shader.asm                 Print live ranges and renames\n")
	fmt.Fprintf(w, "  regmerge -format yaml shader.asm    Print the report as YAML\n")
	fmt.Fprintf(w, "  regmerge -rewrite -o out.asm in.asm Write the coalesced program\n")
}
