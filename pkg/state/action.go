package state

import (
	"fmt"

	"github.com/jwebster45206/mansion-engine/pkg/scenario"
)

type ActionType string

const (
	ActMove   ActionType = "move"
	ActPickUp ActionType = "pickup"
	ActBag    ActionType = "bag"
	ActLook   ActionType = "look"
	ActUse    ActionType = "use"
	ActDrop   ActionType = "drop"
	ActQuit   ActionType = "quit"
)

// Action is a single player-issued action.
type Action struct {
	Type      ActionType         `json:"type"`
	Direction scenario.Direction `json:"direction,omitempty"` // For move
	Item      scenario.ItemID    `json:"item,omitempty"`      // For pickup, use, drop
}

// ActionDescriptor is one entry of the action menu.
type ActionDescriptor struct {
	Action Action `json:"action"`
	Label  string `json:"label"`
}

// ListAvailableActions returns the action menu for the current room: one
// move per exit, one pickup per visible item, then the fixed actions.
// Use and drop entries carry no item; the caller picks one from the bag.
func (gs *GameState) ListAvailableActions() []ActionDescriptor {
	room := gs.world.Rooms[gs.Player.Room]
	var actions []ActionDescriptor

	for _, dir := range room.Directions() {
		actions = append(actions, ActionDescriptor{
			Action: Action{Type: ActMove, Direction: dir},
			Label:  fmt.Sprintf("Go %s to %s", dir, gs.world.RoomName(room.Exits[dir])),
		})
	}

	if rs := gs.Rooms[gs.Player.Room]; rs != nil {
		for _, item := range rs.Items {
			actions = append(actions, ActionDescriptor{
				Action: Action{Type: ActPickUp, Item: item},
				Label:  "Pick up " + gs.world.ItemName(item),
			})
		}
	}

	actions = append(actions,
		ActionDescriptor{Action: Action{Type: ActBag}, Label: "Check bag"},
		ActionDescriptor{Action: Action{Type: ActLook}, Label: "Look around"},
		ActionDescriptor{Action: Action{Type: ActUse}, Label: "Use item"},
		ActionDescriptor{Action: Action{Type: ActDrop}, Label: "Drop item"},
		ActionDescriptor{Action: Action{Type: ActQuit}, Label: "Quit game"},
	)
	return actions
}
