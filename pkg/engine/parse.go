package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/mansion-engine/pkg/scenario"
	"github.com/jwebster45206/mansion-engine/pkg/state"
)

var knownDirections = map[string]bool{
	"north": true, "south": true, "east": true, "west": true, "up": true, "down": true,
	"n": true, "s": true, "e": true, "w": true, "u": true, "d": true,
}

// Select resolves a 1-based action menu number against the current room.
func (e *Engine) Select(gs *state.GameState, n int) (state.Action, error) {
	actions := gs.ListAvailableActions()
	if n < 1 || n > len(actions) {
		return state.Action{}, fmt.Errorf("%w: choose 1-%d", state.ErrInvalidActionSelection, len(actions))
	}
	return actions[n-1].Action, nil
}

// SelectItem resolves a 1-based bag slot, for completing a use or drop
// chosen from the menu.
func (e *Engine) SelectItem(gs *state.GameState, n int) (scenario.ItemID, error) {
	inv := gs.Player.Inventory
	if len(inv) == 0 {
		return "", fmt.Errorf("%w: your bag is empty", state.ErrItemNotHeld)
	}
	if n < 1 || n > len(inv) {
		return "", fmt.Errorf("%w: choose an item 1-%d", state.ErrInvalidActionSelection, len(inv))
	}
	return inv[n-1], nil
}

// Parse matches a typed command. It understands a menu number, a bare
// direction, and the verbs go, take, drop, use, bag, look and quit. Item
// names must match an item's ID or display name exactly, ignoring case.
// A bare "use" or "drop" returns an action with no item for the caller
// to complete.
func (e *Engine) Parse(gs *state.GameState, input string) (state.Action, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return state.Action{}, fmt.Errorf("%w: empty command", state.ErrInvalidActionSelection)
	}
	if n, err := strconv.Atoi(input); err == nil {
		return e.Select(gs, n)
	}

	fields := strings.Fields(input)
	verb, rest := fields[0], strings.Join(fields[1:], " ")

	switch verb {
	case "go", "move", "walk":
		if rest == "" {
			return state.Action{}, fmt.Errorf("%w: go where?", state.ErrInvalidActionSelection)
		}
		return state.Action{Type: state.ActMove, Direction: scenario.ParseDirection(rest)}, nil
	case "take", "get", "pickup", "pick":
		if verb == "pick" {
			rest = strings.TrimSpace(strings.TrimPrefix(rest, "up"))
		}
		if rest == "" {
			return state.Action{}, fmt.Errorf("%w: take what?", state.ErrInvalidActionSelection)
		}
		item, ok := gs.World().FindItem(rest)
		if !ok {
			return state.Action{}, fmt.Errorf("%w: %q", state.ErrNoSuchItemHere, rest)
		}
		return state.Action{Type: state.ActPickUp, Item: item}, nil
	case "drop", "remove", "use":
		typ := state.ActUse
		if verb != "use" {
			typ = state.ActDrop
		}
		if rest == "" {
			return state.Action{Type: typ}, nil
		}
		item, ok := gs.World().FindItem(rest)
		if !ok {
			return state.Action{}, fmt.Errorf("%w: %q", state.ErrItemNotHeld, rest)
		}
		return state.Action{Type: typ, Item: item}, nil
	case "bag", "i", "inventory":
		return state.Action{Type: state.ActBag}, nil
	case "look", "l":
		return state.Action{Type: state.ActLook}, nil
	case "quit", "q", "exit":
		return state.Action{Type: state.ActQuit}, nil
	}

	if rest == "" && knownDirections[verb] {
		return state.Action{Type: state.ActMove, Direction: scenario.ParseDirection(verb)}, nil
	}
	return state.Action{}, fmt.Errorf("%w: %q", state.ErrInvalidActionSelection, input)
}

// Execute parses a command and applies it. Parse failures are reported as
// failed results, like any other rejected action.
func (e *Engine) Execute(gs *state.GameState, input string) ActionResult {
	if gs.Status != state.StatusPlaying {
		return e.Apply(gs, state.Action{})
	}
	action, err := e.Parse(gs, input)
	if err != nil {
		return failure(gs, action, err)
	}
	if (action.Type == state.ActUse || action.Type == state.ActDrop) && action.Item == "" {
		return failure(gs, action, fmt.Errorf("%w: %s what?", state.ErrInvalidActionSelection, action.Type))
	}
	return e.Apply(gs, action)
}
