package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/mansion-engine/pkg/state"
)

// Special command values that trigger non-game actions
const (
	ResetGameCommand = "RESET_GAME"
)

// TestSuite defines a complete scripted playthrough
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name       string     `json:"name"`
	Scenario   string     `json:"scenario,omitempty"`    // Used for regular tests
	PlayerName string     `json:"player_name,omitempty"` // Used for regular tests
	Steps      []TestStep `json:"steps,omitempty"`       // Used for regular tests
	Cases      []string   `json:"cases,omitempty"`       // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one request to the actions endpoint and its expected outcome.
// Exactly one of Command, Selection or Action is set.
// Use command: "RESET_GAME" to start over with a fresh game.
type TestStep struct {
	Name         string        `json:"name,omitempty"`
	Command      *string       `json:"command,omitempty"`
	Selection    *int          `json:"selection,omitempty"`
	Action       *state.Action `json:"action,omitempty"`
	Item         string        `json:"item,omitempty"` // Completes a use or drop selection
	Expectations Expectations  `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// Result properties
	OK         *bool    `json:"ok,omitempty"`
	Error      *string  `json:"error,omitempty"`       // Error kind, e.g. "door_locked"
	EventTypes []string `json:"event_types,omitempty"` // Each must appear in the result

	// Game properties
	Room        *string   `json:"room,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Inventory   *[]string `json:"inventory,omitempty"`    // Item IDs, order independent; [] means empty
	RoomItems   *[]string `json:"room_items,omitempty"`   // Item IDs lying in the current room
	LockedDoors *[]string `json:"locked_doors,omitempty"` // Locked doors gating the current room
	TurnCounter *int      `json:"turn_counter,omitempty"`

	// Response Analysis, over the event texts and error message
	ResponseContains    []string `json:"response_contains,omitempty"`
	ResponseNotContains []string `json:"response_not_contains,omitempty"`
	ResponseRegex       string   `json:"response_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName     string
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
	IsReset      bool // True if this was a RESET_GAME step (should not count toward pass/fail metrics)
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	Game     uuid.UUID // ID of the last game used for this test
}
