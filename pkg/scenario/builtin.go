package scenario

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed scenarios/*.json
var builtinFiles embed.FS

// DefaultScenarioFile is the scenario used when none is requested.
const DefaultScenarioFile = "haunted_mansion.json"

// BuiltinFS returns the embedded scenarios as a flat filesystem.
func BuiltinFS() fs.FS {
	sub, err := fs.Sub(builtinFiles, "scenarios")
	if err != nil {
		panic(fmt.Sprintf("embedded scenarios missing: %v", err))
	}
	return sub
}

// LoadFS loads and validates a scenario file from fsys.
func LoadFS(fsys fs.FS, filename string) (*Scenario, error) {
	if filename != path.Base(filename) || !strings.HasSuffix(filename, ".json") {
		return nil, fmt.Errorf("invalid scenario filename %q: %w", filename, fs.ErrInvalid)
	}
	data, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", filename, err)
	}
	s, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", filename, err)
	}
	s.FileName = filename
	return s, nil
}

// ListFS maps scenario names to file names for every scenario in fsys.
// Files that fail to load are skipped.
func ListFS(fsys fs.FS) (map[string]string, error) {
	matches, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(matches))
	for _, m := range matches {
		s, err := LoadFS(fsys, m)
		if err != nil {
			continue
		}
		out[s.Name] = m
	}
	return out, nil
}

// Builtin loads one of the embedded scenarios.
func Builtin(filename string) (*Scenario, error) {
	return LoadFS(BuiltinFS(), filename)
}

// HauntedMansion returns the default embedded scenario.
func HauntedMansion() *Scenario {
	s, err := Builtin(DefaultScenarioFile)
	if err != nil {
		panic(fmt.Sprintf("builtin scenario %s is invalid: %v", DefaultScenarioFile, err))
	}
	return s
}
