package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/regmerge"
)

const sourceTouching = `.name touching
.stage fragment
.temps 5
MOV TEMP[3], IN[0]
MOV OUT[0], IN[0]
MOV OUT[0], IN[0]
MOV OUT[0], IN[0]
MOV OUT[0], IN[0]
MOV TEMP[4], TEMP[3]
MOV OUT[0], IN[0]
MOV OUT[0], IN[0]
MOV OUT[0], IN[0]
MOV OUT[1], TEMP[4]
END
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errb bytes.Buffer
	code = run(args, &out, &errb)
	return code, out.String(), errb.String()
}

func TestRunText(t *testing.T) {
	input := writeFile(t, "touching.asm", sourceTouching)
	code, out, stderr := runCLI(t, "-color", "never", input)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	want := `touching (fragment): temps 5 -> 1, arrays 0 -> 0

TEMP     RANGE   TARGET
TEMP[3]  [0, 5)
TEMP[4]  [5, 9)  TEMP[3]
`
	if out != want {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", out, want)
	}
}

func TestRunTextColor(t *testing.T) {
	input := writeFile(t, "touching.asm", sourceTouching)
	_, out, _ := runCLI(t, "-color", "always", input)

	for _, want := range []string{
		colorBold + "touching (fragment)" + colorReset,
		"TEMP[4]  [5, 9)  " + colorGreen + "TEMP[3]" + colorReset,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%q", want, out)
		}
	}
}

func TestRunYAML(t *testing.T) {
	input := writeFile(t, "touching.asm", sourceTouching)
	code, out, stderr := runCLI(t, "-format", "yaml", input)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	var rep regmerge.Report
	if err := yaml.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if rep.Program != "touching" || !rep.Mergeable {
		t.Errorf("report = %+v", rep)
	}
	if rep.Temps != (regmerge.Count{Before: 5, After: 1}) {
		t.Errorf("Temps = %+v, want {5 1}", rep.Temps)
	}
	if len(rep.Registers) != 2 || rep.Registers[1].Target == nil || *rep.Registers[1].Target != 3 {
		t.Errorf("Registers = %+v", rep.Registers)
	}
}

func TestRunRewrite(t *testing.T) {
	input := writeFile(t, "touching.asm", sourceTouching)
	output := filepath.Join(t.TempDir(), "out.asm")
	code, _, stderr := runCLI(t, "-rewrite", "-o", output, input)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	p, err := regmerge.Parse(string(data))
	if err != nil {
		t.Fatalf("rewritten program does not parse: %v\n%s", err, data)
	}
	if p.NumTemps != 4 {
		t.Errorf("NumTemps = %d, want 4", p.NumTemps)
	}
	if strings.Contains(string(data), "TEMP[4]") {
		t.Errorf("rewritten program still uses TEMP[4]:\n%s", data)
	}
}

func TestRunConfig(t *testing.T) {
	input := writeFile(t, "touching.asm", sourceTouching)
	config := writeFile(t, "regmerge.yaml", "merge_registers: false\n")
	code, out, stderr := runCLI(t, "-config", config, "-color", "never", input)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(out, "temps 5 -> 2") {
		t.Errorf("output = %q, want temps 5 -> 2", out)
	}
}

func TestRunDebugLogs(t *testing.T) {
	input := writeFile(t, "touching.asm", sourceTouching)
	code, _, stderr := runCLI(t, "-debug", input)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stderr, "rename temporary") {
		t.Errorf("debug log missing rename record:\n%s", stderr)
	}
}

func TestRunNotMergeable(t *testing.T) {
	input := writeFile(t, "sub.asm", `MOV TEMP[0], IN[0]
CAL
MOV OUT[0], TEMP[0]
RET
END
`)
	code, out, stderr := runCLI(t, "-color", "never", input)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.HasPrefix(out, "sub: temps 1 -> 1") {
		t.Errorf("output = %q, want program named after the file", out)
	}
	if !strings.Contains(out, "not mergeable: ") {
		t.Errorf("output = %q, want not mergeable", out)
	}
}

func TestRunErrors(t *testing.T) {
	good := writeFile(t, "good.asm", sourceTouching)
	bad := writeFile(t, "bad.asm", "MOV TEMP[0], FOO[1]\nEND\n")
	invalid := writeFile(t, "invalid.asm", "ENDLOOP\nEND\n")
	badConfig := writeFile(t, "bad.yaml", "no_such_key: 1\n")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no input", nil, 1, "no input file"},
		{"missing file", []string{filepath.Join(t.TempDir(), "none.asm")}, 1, "Error reading file"},
		{"parse error", []string{bad}, 1, "parse error"},
		{"validation error", []string{invalid}, 1, "validation failed"},
		{"bad config", []string{"-config", badConfig, good}, 1, "config"},
		{"bad format", []string{"-format", "json", good}, 2, "unknown format"},
		{"bad flag", []string{"-bogus", good}, 2, "bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantErr)
			}
		})
	}
}

func TestRunVersion(t *testing.T) {
	code, out, _ := runCLI(t, "-version")
	if code != 0 || !strings.Contains(out, regmergeVersion) {
		t.Errorf("version: code %d output %q", code, out)
	}
}
