package state

import (
	"fmt"

	"github.com/jwebster45206/mansion-engine/pkg/scenario"
)

// AttemptMove resolves a move from a room in a direction. It does not change
// any state; the engine moves the player on success.
func (gs *GameState) AttemptMove(from scenario.RoomID, dir scenario.Direction) (scenario.RoomID, error) {
	room, err := gs.world.Room(from)
	if err != nil {
		return "", fmt.Errorf("%w: %w", err, ErrUnknownRoom)
	}

	to, ok := room.Exits[dir]
	if !ok {
		return "", ErrNoSuchExit
	}

	if doorID, gated := gs.world.DoorAt(from, dir); gated && !gs.IsDoorUnlocked(doorID) {
		return "", &DoorLockedError{Door: doorID, Name: gs.world.Doors[doorID].Name}
	}

	return to, nil
}
