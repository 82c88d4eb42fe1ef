package state

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/mansion-engine/pkg/actor"
	"github.com/jwebster45206/mansion-engine/pkg/scenario"
)

// Engine errors. All of them are recoverable: the action is rejected and the
// world is left unchanged.
var (
	ErrNoSuchExit             = errors.New("you can't go that way")
	ErrDoorLocked             = errors.New("the way is locked")
	ErrBagFull                = actor.ErrBagFull
	ErrItemNotHeld            = actor.ErrItemNotHeld
	ErrNoSuchItemHere         = errors.New("there's no such item here")
	ErrInvalidActionSelection = errors.New("invalid action selection")
	ErrGameOver               = errors.New("the game is over")
	ErrNotStarted             = errors.New("the game has not started")
	ErrUnknownRoom            = errors.New("unknown room")
)

// DoorLockedError reports which door blocked a move. It matches ErrDoorLocked.
type DoorLockedError struct {
	Door scenario.DoorID
	Name string
}

func (e *DoorLockedError) Error() string {
	return fmt.Sprintf("the %s is locked", e.Name)
}

func (e *DoorLockedError) Is(target error) bool {
	return target == ErrDoorLocked
}

// ErrorKind is the wire tag for an engine error.
type ErrorKind string

const (
	KindNone                   ErrorKind = ""
	KindNoSuchExit             ErrorKind = "no_such_exit"
	KindDoorLocked             ErrorKind = "door_locked"
	KindBagFull                ErrorKind = "bag_full"
	KindItemNotHeld            ErrorKind = "item_not_held"
	KindNoSuchItemHere         ErrorKind = "no_such_item_here"
	KindInvalidActionSelection ErrorKind = "invalid_action_selection"
	KindGameOver               ErrorKind = "game_over"
	KindNotStarted             ErrorKind = "not_started"
	KindInternal               ErrorKind = "internal"
)

// KindOf maps an error to its wire tag.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNoSuchExit):
		return KindNoSuchExit
	case errors.Is(err, ErrDoorLocked):
		return KindDoorLocked
	case errors.Is(err, ErrBagFull):
		return KindBagFull
	case errors.Is(err, ErrItemNotHeld):
		return KindItemNotHeld
	case errors.Is(err, ErrNoSuchItemHere):
		return KindNoSuchItemHere
	case errors.Is(err, ErrInvalidActionSelection):
		return KindInvalidActionSelection
	case errors.Is(err, ErrGameOver):
		return KindGameOver
	case errors.Is(err, ErrNotStarted):
		return KindNotStarted
	default:
		return KindInternal
	}
}
