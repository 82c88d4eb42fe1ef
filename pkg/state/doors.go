package state

import (
	"github.com/jwebster45206/mansion-engine/pkg/scenario"
)

// DoorEvent records a door toggle.
type DoorEvent struct {
	Door     scenario.DoorID `json:"door"`
	Name     string          `json:"name"`
	Previous DoorState       `json:"previous"`
	New      DoorState       `json:"new"`
}

// UseItem uses a held item in the current room. If the item toggles a door
// here, the door flips and the toggle is returned; otherwise the use is flavor
// only and the returned event is nil.
func (gs *GameState) UseItem(item scenario.ItemID) (*DoorEvent, error) {
	if !gs.Player.Has(item) {
		return nil, ErrItemNotHeld
	}

	doorID, ok := gs.world.DoorForUse(item, gs.Player.Room)
	if !ok {
		return nil, nil
	}

	prev := gs.Doors[doorID]
	next := Locked
	if prev == Locked {
		next = Unlocked
	}
	gs.Doors[doorID] = next

	return &DoorEvent{
		Door:     doorID,
		Name:     gs.world.Doors[doorID].Name,
		Previous: prev,
		New:      next,
	}, nil
}
