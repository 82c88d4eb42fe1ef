package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gookit/color"
)

const tinyScenario = `{
	"name": "Tiny",
	"opening_room": "hall",
	"items": {"key": {"name": "Brass Key"}},
	"rooms": {
		"hall": {"name": "Hall", "description": "A hall.", "exits": {"north": "vault"}, "items": ["key"]},
		"vault": {"name": "Vault", "description": "A vault.", "exits": {"south": "hall"}},
		"attic": {"name": "Attic", "description": "Dusty."}
	},
	"win_rule": {"room": "vault"}
}`

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestValidateFile(t *testing.T) {
	color.Enable = false

	tests := []struct {
		name     string
		file     string
		content  string
		wantOK   bool
		contains []string
	}{
		{
			name:     "valid with unreachable room",
			file:     "tiny.json",
			content:  tinyScenario,
			wantOK:   true,
			contains: []string{"OK", `warning: room "attic" cannot be reached`},
		},
		{
			name:     "bad extension",
			file:     "tiny.yaml",
			content:  tinyScenario,
			contains: []string{"must have .json extension"},
		},
		{
			name:     "bad filename",
			file:     "Tiny-Scenario.json",
			content:  tinyScenario,
			contains: []string{"lowercase snake_case"},
		},
		{
			name:     "invalid json",
			file:     "broken.json",
			content:  `{"name": `,
			contains: []string{"invalid JSON", "FAIL"},
		},
		{
			name: "several problems reported separately",
			file: "bad_refs.json",
			content: strings.NewReplacer(
				`"exits": {"north": "vault"}`, `"exits": {"north": "cellar"}`,
				`"win_rule": {"room": "vault"}`, `"win_rule": {"room": "roof"}`,
			).Replace(tinyScenario),
			contains: []string{`leads to unknown room "cellar"`, `unknown room "roof"`, "2 problem(s)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, tt.file, tt.content)
			var out bytes.Buffer
			ok := validateFile(&out, path)
			if ok != tt.wantOK {
				t.Errorf("validateFile() = %v, want %v\n%s", ok, tt.wantOK, out.String())
			}
			for _, want := range tt.contains {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestValidateFile_Builtins(t *testing.T) {
	color.Enable = false
	matches, err := filepath.Glob("../../pkg/scenario/scenarios/*.json")
	if err != nil || len(matches) == 0 {
		t.Fatalf("no builtin scenarios found: %v", err)
	}
	for _, path := range matches {
		var out bytes.Buffer
		if !validateFile(&out, path) {
			t.Errorf("builtin %s failed validation:\n%s", path, out.String())
		}
	}
}
