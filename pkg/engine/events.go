package engine

import (
	"github.com/jwebster45206/mansion-engine/pkg/scenario"
	"github.com/jwebster45206/mansion-engine/pkg/state"
)

// EventType tags the structured events produced by a turn.
type EventType string

const (
	EventIntro       EventType = "intro"
	EventRoomEntered EventType = "room_entered"
	EventTrigger     EventType = "trigger"
	EventItemTaken   EventType = "item_taken"
	EventItemDropped EventType = "item_dropped"
	EventItemUsed    EventType = "item_used"
	EventDoorToggled EventType = "door_toggled"
	EventBag         EventType = "bag"
	EventLook        EventType = "look"
	EventVictory     EventType = "victory"
	EventQuit        EventType = "quit"
)

// Event is one observable outcome of a turn. Text is ready for display;
// the other fields let a presentation layer render it its own way.
type Event struct {
	Type    EventType          `json:"type"`
	Text    string             `json:"text,omitempty"`
	Room    scenario.RoomID    `json:"room,omitempty"`
	Item    scenario.ItemID    `json:"item,omitempty"`
	Trigger scenario.TriggerID `json:"trigger,omitempty"`
	Door    *state.DoorEvent   `json:"door,omitempty"`
	Items   []state.ItemView   `json:"items,omitempty"` // Bag contents for bag events
}

// ActionResult is the structured outcome of applying an action. Failures are
// never fatal: OK is false, Error carries the wire tag and the world is
// unchanged.
type ActionResult struct {
	OK      bool            `json:"ok"`
	Action  state.Action    `json:"action"`
	Error   state.ErrorKind `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Events  []Event         `json:"events,omitempty"`
	Status  state.Status    `json:"status"`
	Turn    int             `json:"turn"`
}

func failure(gs *state.GameState, action state.Action, err error) ActionResult {
	return ActionResult{
		OK:      false,
		Action:  action,
		Error:   state.KindOf(err),
		Message: err.Error(),
		Status:  gs.Status,
		Turn:    gs.TurnCounter,
	}
}
