package scenario

import (
	"slices"
	"strings"
)

// Identifiers are resolved once, when a scenario is loaded. They are kept as
// distinct types so a room key can't be handed to something expecting an item.
type (
	ItemID    string
	RoomID    string
	DoorID    string
	FlagID    string
	TriggerID string
	Direction string
)

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
	Up    Direction = "up"
	Down  Direction = "down"
)

// canonicalDirections is the display order for exits.
var canonicalDirections = []Direction{North, South, East, West, Up, Down}

var directionAliases = map[string]Direction{
	"n": North,
	"s": South,
	"e": East,
	"w": West,
	"u": Up,
	"d": Down,
}

// ParseDirection normalizes user input such as "N" or " north " to a Direction.
// Unknown words are returned lowercased; whether they lead anywhere is up to the room.
func ParseDirection(s string) Direction {
	s = strings.ToLower(strings.TrimSpace(s))
	if d, ok := directionAliases[s]; ok {
		return d
	}
	return Direction(s)
}

// SortDirections orders directions canonically: north, south, east, west, up,
// down, then anything else alphabetically.
func SortDirections(dirs []Direction) {
	rank := func(d Direction) int {
		if i := slices.Index(canonicalDirections, d); i >= 0 {
			return i
		}
		return len(canonicalDirections)
	}
	slices.SortFunc(dirs, func(a, b Direction) int {
		ra, rb := rank(a), rank(b)
		if ra != rb {
			return ra - rb
		}
		return strings.Compare(string(a), string(b))
	})
}
