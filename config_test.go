package regmerge

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Config
		wantErr string
	}{
		{
			name:  "empty document keeps defaults",
			input: "",
			want:  DefaultConfig(),
		},
		{
			name:  "overrides",
			input: "interleave: false\nmax_ifelse_nesting: 8\nlog_level: debug\n",
			want: Config{
				Options: Options{
					Validate:         true,
					MergeRegisters:   true,
					MergeArrays:      true,
					Interleave:       false,
					MaxIfElseNesting: 8,
				},
				LogLevel: "debug",
			},
		},
		{
			name:    "unknown key",
			input:   "merge_everything: true\n",
			wantErr: "merge_everything",
		},
		{
			name:    "negative nesting",
			input:   "max_ifelse_nesting: -1\n",
			wantErr: "must not be negative",
		},
		{
			name:    "bad level",
			input:   "log_level: loud\n",
			wantErr: "log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadConfig(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("LoadConfig() error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigLevel(t *testing.T) {
	tests := []struct {
		level   string
		want    slog.Level
		enabled bool
	}{
		{"", 0, false},
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
	}
	for _, tt := range tests {
		got, enabled, err := Config{LogLevel: tt.level}.Level()
		if err != nil {
			t.Errorf("Level(%q) error = %v", tt.level, err)
			continue
		}
		if got != tt.want || enabled != tt.enabled {
			t.Errorf("Level(%q) = %v, %v, want %v, %v", tt.level, got, enabled, tt.want, tt.enabled)
		}
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeArrays = false
	cfg.LogLevel = "info"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), "merge_arrays: false") {
		t.Errorf("marshalled config lacks merge_arrays:\n%s", data)
	}

	got, err := LoadConfig(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
