package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/mansion-engine/internal/handlers"
	"github.com/jwebster45206/mansion-engine/pkg/engine"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays scripted test suites against a running mansion-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
	ScenarioOverride  string // If set, overrides the scenario for all test cases
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	for i, step := range suite.Steps {
		if n := step.requestCount(); n != 1 {
			return TestSuite{}, fmt.Errorf("%s: step %d (%s) sets %d of command, selection and action; want exactly one", filename, i, step.Name, n)
		}
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

func (s TestStep) requestCount() int {
	n := 0
	if s.Command != nil {
		n++
	}
	if s.Selection != nil {
		n++
	}
	if s.Action != nil {
		n++
	}
	return n
}

// RunSuite executes a complete test suite on a fresh game
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	gameID, err := r.newGame(ctx, suite)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Game = gameID

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, suite, &gameID, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)
		result.Game = gameID

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	if err := DeleteGame(ctx, r.Client, r.BaseURL, gameID); err != nil {
		r.Logger("    Warning: %v", err)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) newGame(ctx context.Context, suite TestSuite) (uuid.UUID, error) {
	req := handlers.CreateGameRequest{
		Scenario:   suite.Scenario,
		PlayerName: suite.PlayerName,
	}
	if r.ScenarioOverride != "" {
		req.Scenario = r.ScenarioOverride
	}
	game, err := CreateGame(ctx, r.Client, r.BaseURL, req)
	if err != nil {
		return uuid.UUID{}, err
	}
	return game.ID, nil
}

// runStep performs one step. A reset step replaces *gameID with a new game.
func (r *Runner) runStep(ctx context.Context, suite TestSuite, gameID *uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{
		StepName: step.Name,
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	if step.Command != nil && *step.Command == ResetGameCommand {
		result.IsReset = true
		result.ResponseText = "[GAME RESET]"
		if err := DeleteGame(ctx, r.Client, r.BaseURL, *gameID); err != nil {
			result.Error = fmt.Errorf("failed to reset game: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		newID, err := r.newGame(ctx, suite)
		if err != nil {
			result.Error = fmt.Errorf("failed to reset game: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		*gameID = newID

		game, err := GetGame(ctx, r.Client, r.BaseURL, newID)
		if err != nil {
			result.Error = err
			result.Duration = time.Since(start)
			return result
		}
		if err := checkGame(step.Expectations, game); err != nil {
			result.Error = fmt.Errorf("reset expectation failed: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		result.Success = true
		result.Duration = time.Since(start)
		return result
	}

	turn, err := PostAction(ctx, r.Client, r.BaseURL, *gameID, handlers.ActionRequest{
		Action:    step.Action,
		Selection: step.Selection,
		Command:   step.Command,
		Item:      step.Item,
	})
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}
	result.ResponseText = ResponseText(turn.Result)

	if err := checkExpectations(step.Expectations, turn); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// ResponseText joins the event texts and error message of a result.
func ResponseText(res engine.ActionResult) string {
	var parts []string
	for _, ev := range res.Events {
		if ev.Text != "" {
			parts = append(parts, ev.Text)
		}
	}
	if res.Message != "" {
		parts = append(parts, res.Message)
	}
	return strings.Join(parts, "\n")
}

// checkExpectations validates the test expectations against one turn
func checkExpectations(exp Expectations, turn *handlers.TurnResponse) error {
	res := turn.Result

	if exp.OK != nil && res.OK != *exp.OK {
		return fmt.Errorf("expected ok=%t, got %t (error %q: %s)", *exp.OK, res.OK, res.Error, res.Message)
	}

	if exp.Error != nil && string(res.Error) != *exp.Error {
		return fmt.Errorf("expected error %q, got %q (%s)", *exp.Error, res.Error, res.Message)
	}

	for _, want := range exp.EventTypes {
		found := slices.ContainsFunc(res.Events, func(ev engine.Event) bool {
			return string(ev.Type) == want
		})
		if !found {
			return fmt.Errorf("expected a %q event, got %v", want, eventTypes(res.Events))
		}
	}

	responseText := ResponseText(res)
	if len(exp.ResponseContains) > 0 {
		lowerResponse := strings.ToLower(responseText)
		for _, expectedText := range exp.ResponseContains {
			if !strings.Contains(lowerResponse, strings.ToLower(expectedText)) {
				return fmt.Errorf("expected response to contain '%s', but it didn't: %q", expectedText, responseText)
			}
		}
	}

	if len(exp.ResponseNotContains) > 0 {
		lowerResponse := strings.ToLower(responseText)
		for _, unexpectedText := range exp.ResponseNotContains {
			if strings.Contains(lowerResponse, strings.ToLower(unexpectedText)) {
				return fmt.Errorf("expected response to NOT contain '%s', but it did", unexpectedText)
			}
		}
	}

	if exp.ResponseRegex != "" {
		matched, err := regexp.MatchString(exp.ResponseRegex, responseText)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("response didn't match regex pattern: %s", exp.ResponseRegex)
		}
	}

	return checkGame(exp, &turn.Game)
}

// checkGame validates the game-level expectations
func checkGame(exp Expectations, game *handlers.GameResponse) error {
	if exp.Room != nil && string(game.Room.ID) != *exp.Room {
		return fmt.Errorf("expected room %s, got %s", *exp.Room, game.Room.ID)
	}

	if exp.Status != nil && string(game.Status) != *exp.Status {
		return fmt.Errorf("expected status %s, got %s", *exp.Status, game.Status)
	}

	if exp.TurnCounter != nil && game.Turn != *exp.TurnCounter {
		return fmt.Errorf("expected turn_counter to be %d, got %d", *exp.TurnCounter, game.Turn)
	}

	if exp.Inventory != nil {
		actual := make([]string, 0, len(game.Player.Inventory))
		for _, item := range game.Player.Inventory {
			actual = append(actual, string(item.ID))
		}
		if err := sameSet("inventory", *exp.Inventory, actual); err != nil {
			return err
		}
	}

	if exp.RoomItems != nil {
		actual := make([]string, 0, len(game.Room.Items))
		for _, item := range game.Room.Items {
			actual = append(actual, string(item.ID))
		}
		if err := sameSet("room items", *exp.RoomItems, actual); err != nil {
			return err
		}
	}

	if exp.LockedDoors != nil {
		var actual []string
		for _, door := range game.Room.Doors {
			if door.Locked {
				actual = append(actual, string(door.ID))
			}
		}
		if err := sameSet("locked doors", *exp.LockedDoors, actual); err != nil {
			return err
		}
	}

	return nil
}

// sameSet compares two lists ignoring order.
func sameSet(what string, expected, actual []string) error {
	for _, want := range expected {
		if !slices.Contains(actual, want) {
			return fmt.Errorf("expected %s to contain '%s', but it's missing. Actual %s: %v", what, want, what, actual)
		}
	}
	for _, got := range actual {
		if !slices.Contains(expected, got) {
			return fmt.Errorf("%s contains unexpected '%s'. Expected: %v, Actual: %v", what, got, expected, actual)
		}
	}
	return nil
}

func eventTypes(events []engine.Event) []string {
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, string(ev.Type))
	}
	return types
}
