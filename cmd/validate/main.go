package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gookit/color"
	"golang.org/x/term"

	"github.com/jwebster45206/mansion-engine/pkg/scenario"
)

var (
	colorOK      = color.Style{color.FgGreen, color.OpBold}
	colorError   = color.Style{color.FgRed, color.OpBold}
	colorWarning = color.Style{color.FgYellow}
	colorSubtle  = color.Style{color.FgGray}
)

var validFilenameRegex = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <scenario.json> [more.json ...]\n", os.Args[0])
		os.Exit(1)
	}

	color.Enable = term.IsTerminal(int(os.Stdout.Fd()))

	failed := 0
	for _, filename := range os.Args[1:] {
		if !validateFile(os.Stdout, filename) {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d scenario files failed validation\n", failed, len(os.Args)-1)
		os.Exit(1)
	}
}

// validateFile loads one scenario file and reports every problem found.
// Unreachable rooms are warnings and do not fail validation.
func validateFile(w io.Writer, filename string) bool {
	fmt.Fprintf(w, "Validating %s...\n", filename)

	problems := checkFilename(filename)
	var s *scenario.Scenario
	if len(problems) == 0 {
		data, err := os.ReadFile(filename)
		if err != nil {
			problems = append(problems, fmt.Errorf("failed to read file: %w", err))
		} else if s, err = scenario.Load(data); err != nil {
			problems = append(problems, splitErrors(err)...)
		}
	}

	for _, p := range problems {
		fmt.Fprintf(w, "  %s %s\n", colorError.Sprint("error:"), p)
	}
	if len(problems) > 0 {
		fmt.Fprintf(w, "%s %s: %d problem(s)\n", colorError.Sprint("FAIL"), filename, len(problems))
		return false
	}

	for _, room := range s.UnreachableRooms() {
		fmt.Fprintf(w, "  %s room %q cannot be reached from %q\n", colorWarning.Sprint("warning:"), room, s.OpeningRoom)
	}
	fmt.Fprintf(w, "%s %s %s\n", colorOK.Sprint("OK"), filename,
		colorSubtle.Sprintf("(%d rooms, %d items, %d doors, %d triggers)", len(s.Rooms), len(s.Items), len(s.Doors), len(s.Triggers)))
	return true
}

func checkFilename(filename string) []error {
	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return []error{fmt.Errorf("scenario file must have .json extension: %s", baseName)}
	}
	if !validFilenameRegex.MatchString(strings.TrimSuffix(baseName, ".json")) {
		return []error{fmt.Errorf("scenario filename '%s' must be lowercase snake_case (e.g., my_scenario.json, not my-scenario.json or MyScenario.json)", baseName)}
	}
	return nil
}

// splitErrors flattens a joined validation error into its parts.
func splitErrors(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
