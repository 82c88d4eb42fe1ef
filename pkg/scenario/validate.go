package scenario

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/zyedidia/generic/mapset"
)

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

// IsValidID reports whether id is lowercase snake_case.
func IsValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

// Validate checks referential integrity of a prepared scenario. All problems
// are reported together.
func (s *Scenario) Validate() error {
	v := &validator{s: s}
	v.validate()
	return errors.Join(v.errs...)
}

type validator struct {
	s    *Scenario
	errs []error
}

func (v *validator) addError(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) validate() {
	s := v.s
	if s.Name == "" {
		v.addError("scenario name is required")
	}
	if len(s.Rooms) == 0 {
		v.addError("scenario has no rooms")
	}
	if _, ok := s.Rooms[s.OpeningRoom]; !ok {
		v.addError("opening_room %q is not a room", s.OpeningRoom)
	}

	for _, id := range sortedKeys(s.Items) {
		v.validateIDFormat("item ID", string(id))
		if s.Items[id].Name == "" {
			v.addError("item %q has no name", id)
		}
	}

	placed := mapset.New[ItemID]()
	for _, id := range sortedKeys(s.Rooms) {
		v.validateIDFormat("room ID", string(id))
		v.validateRoom(s.Rooms[id], placed)
	}
	for _, id := range sortedKeys(s.Items) {
		if !placed.Has(id) {
			v.addError("item %q is not placed in any room", id)
		}
	}

	for _, id := range sortedKeys(s.Doors) {
		v.validateIDFormat("door ID", string(id))
		v.validateDoor(s.Doors[id])
	}
	v.validateDoorTables()

	flagsSet := mapset.New[FlagID]()
	for _, id := range sortedKeys(s.Triggers) {
		v.validateIDFormat("trigger ID", string(id))
		trigger := s.Triggers[id]
		if _, ok := s.Rooms[trigger.Room]; !ok {
			v.addError("trigger %q refers to unknown room %q", id, trigger.Room)
		}
		for _, f := range trigger.SetFlags {
			v.validateIDFormat("flag", string(f))
			flagsSet.Put(f)
		}
	}

	v.validateWinRule(flagsSet)
}

func (v *validator) validateRoom(room Room, placed mapset.Set[ItemID]) {
	s := v.s
	if room.Name == "" {
		v.addError("room %q has no name", room.ID)
	}
	for dir, to := range room.Exits {
		if dir == "" {
			v.addError("room %q has an exit with no direction", room.ID)
		}
		if _, ok := s.Rooms[to]; !ok {
			v.addError("room %q exit %q leads to unknown room %q", room.ID, dir, to)
		}
	}
	for _, item := range room.Items {
		if _, ok := s.Items[item]; !ok {
			v.addError("room %q holds unknown item %q", room.ID, item)
			continue
		}
		if placed.Has(item) {
			v.addError("item %q is placed more than once", item)
			continue
		}
		placed.Put(item)
	}
	for i, variant := range room.Variants {
		if variant.When.IsEmpty() {
			v.addError("room %q variant %d has empty 'when' clause - no conditions specified", room.ID, i)
		}
		v.validateWhen(variant.When, fmt.Sprintf("room %q variant %d", room.ID, i))
	}
}

func (v *validator) validateDoor(door Door) {
	s := v.s
	if _, ok := s.Items[door.RequiredItem]; !ok {
		v.addError("door %q requires unknown item %q", door.ID, door.RequiredItem)
	}
	if len(door.Gates) == 0 {
		v.addError("door %q gates no exits", door.ID)
	}
	for _, gate := range door.Gates {
		room, ok := s.Rooms[gate.Room]
		if !ok {
			v.addError("door %q gates unknown room %q", door.ID, gate.Room)
			continue
		}
		if _, ok := room.Exits[gate.Direction]; !ok {
			v.addError("door %q gates missing exit %q of room %q", door.ID, gate.Direction, gate.Room)
		}
	}
}

// validateDoorTables rejects exits gated twice and ambiguous (item, room) uses.
func (v *validator) validateDoorTables() {
	s := v.s
	exits := make(map[Exit]DoorID)
	uses := make(map[useKey]DoorID)
	for _, id := range sortedKeys(s.Doors) {
		for _, gate := range s.Doors[id].Gates {
			if other, taken := exits[gate]; taken && other != id {
				v.addError("exit %q of room %q is gated by both %q and %q", gate.Direction, gate.Room, other, id)
			}
			exits[gate] = id

			key := useKey{item: s.Doors[id].RequiredItem, room: gate.Room}
			if other, taken := uses[key]; taken && other != id {
				v.addError("using %q in room %q is ambiguous between doors %q and %q", key.item, key.room, other, id)
			}
			uses[key] = id
		}
	}
}

func (v *validator) validateWhen(w When, context string) {
	s := v.s
	if w.Room != "" {
		if _, ok := s.Rooms[w.Room]; !ok {
			v.addError("%s refers to unknown room %q", context, w.Room)
		}
	}
	for _, d := range append(append([]DoorID{}, w.DoorsUnlocked...), w.DoorsLocked...) {
		if _, ok := s.Doors[d]; !ok {
			v.addError("%s refers to unknown door %q", context, d)
		}
	}
	for _, i := range w.Items {
		if _, ok := s.Items[i]; !ok {
			v.addError("%s refers to unknown item %q", context, i)
		}
	}
	for _, f := range w.Flags {
		v.validateIDFormat("flag", string(f))
	}
}

func (v *validator) validateWinRule(flagsSet mapset.Set[FlagID]) {
	s := v.s
	rule := s.WinRule
	if rule.Room == "" {
		v.addError("win_rule.room is required")
	} else if _, ok := s.Rooms[rule.Room]; !ok {
		v.addError("win_rule refers to unknown room %q", rule.Room)
	}
	if rule.RequiredDoorUnlocked != "" {
		if _, ok := s.Doors[rule.RequiredDoorUnlocked]; !ok {
			v.addError("win_rule refers to unknown door %q", rule.RequiredDoorUnlocked)
		}
	}
	for _, f := range rule.RequiredFlags {
		if !flagsSet.Has(f) {
			v.addError("win_rule requires flag %q which no trigger sets", f)
		}
	}
}

func (v *validator) validateIDFormat(fieldName, id string) {
	if !IsValidID(id) {
		v.addError("%s '%s' should be lowercase snake_case", fieldName, id)
	}
}

// UnreachableRooms lists rooms that cannot be reached from the opening room,
// ignoring door state. These are not errors but usually indicate a typo.
func (s *Scenario) UnreachableRooms() []RoomID {
	visited := mapset.New[RoomID]()
	queue := []RoomID{s.OpeningRoom}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited.Has(current) {
			continue
		}
		room, ok := s.Rooms[current]
		if !ok {
			continue
		}
		visited.Put(current)
		for _, dir := range room.Directions() {
			if next := room.Exits[dir]; !visited.Has(next) {
				queue = append(queue, next)
			}
		}
	}

	var unreachable []RoomID
	for _, id := range sortedKeys(s.Rooms) {
		if !visited.Has(id) {
			unreachable = append(unreachable, id)
		}
	}
	return unreachable
}
