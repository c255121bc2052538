package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"github.com/gogpu/regmerge"
)

const (
	colorReset  = "\x1b[0m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorBold   = "\x1b[1m"
)

// useColor resolves the -color flag. In auto mode only a terminal gets
// escape sequences.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type painter bool

func (p painter) paint(color, s string) string {
	if !p || s == "" {
		return s
	}
	return color + s + colorReset
}

// table aligns cells by display width. Colored cells are padded on their
// plain text so escape sequences do not count.
type table struct {
	header []string
	rows   [][]string
	colors [][]string
}

func (t *table) add(colors []string, cells ...string) {
	t.rows = append(t.rows, cells)
	t.colors = append(t.colors, colors)
}

func (t *table) write(w io.Writer, p painter) error {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var sb strings.Builder
	line := func(cells, colors []string) {
		var ln strings.Builder
		for i, cell := range cells {
			if i > 0 {
				ln.WriteString("  ")
			}
			text := cell
			if i < len(cells)-1 {
				text = runewidth.FillRight(cell, widths[i])
			}
			if colors != nil && colors[i] != "" {
				text = p.paint(colors[i], cell) + text[len(cell):]
			}
			ln.WriteString(text)
		}
		sb.WriteString(strings.TrimRight(ln.String(), " "))
		sb.WriteByte('\n')
	}

	line(t.header, nil)
	for i, row := range t.rows {
		line(row, t.colors[i])
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// writeText prints the report as a summary line followed by register and
// array tables.
func writeText(w io.Writer, rep regmerge.Report, color bool) error {
	p := painter(color)

	title := rep.Program
	if rep.Stage != "" {
		title += " (" + rep.Stage + ")"
	}
	if _, err := fmt.Fprintf(w, "%s: temps %d -> %d, arrays %d -> %d\n",
		p.paint(colorBold, title),
		rep.Temps.Before, rep.Temps.After, rep.Arrays.Before, rep.Arrays.After); err != nil {
		return err
	}
	if !rep.Mergeable {
		_, err := fmt.Fprintf(w, "%s\n", p.paint(colorYellow, "not mergeable: "+rep.Reason))
		return err
	}

	if len(rep.Registers) > 0 {
		t := table{header: []string{"TEMP", "RANGE", "TARGET"}}
		for _, r := range rep.Registers {
			target, colors := "", []string(nil)
			if r.Target != nil {
				target = "TEMP[" + strconv.Itoa(*r.Target) + "]"
				colors = []string{"", "", colorGreen}
			}
			t.add(colors, "TEMP["+strconv.Itoa(r.Temp)+"]", rangeString(r.Begin, r.End, ")"), target)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := t.write(w, p); err != nil {
			return err
		}
	}

	if len(rep.ArrayList) > 0 {
		t := table{header: []string{"ARRAY", "LENGTH", "RANGE", "MASK", "TARGET", "SWIZZLE"}}
		for _, a := range rep.ArrayList {
			target, colors := "", []string(nil)
			if a.Target != 0 {
				target = "ARRAY(" + strconv.FormatUint(uint64(a.Target), 10) + ")"
				colors = []string{"", "", "", "", colorGreen, ""}
			}
			t.add(colors,
				"ARRAY("+strconv.FormatUint(uint64(a.ID), 10)+")",
				strconv.FormatUint(uint64(a.Length), 10),
				rangeString(a.Begin, a.End, "]"),
				a.Mask,
				target,
				a.Swizzle)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := t.write(w, p); err != nil {
			return err
		}
	}
	return nil
}

// rangeString formats a live range. Register ranges are half-open, array
// ranges include their end.
func rangeString(begin, end int, closing string) string {
	return "[" + strconv.Itoa(begin) + ", " + strconv.Itoa(end) + closing
}
