package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"github.com/jwebster45206/mansion-engine/pkg/actor"
	"github.com/jwebster45206/mansion-engine/pkg/scenario"
)

// Status is the position of a game in its lifecycle:
// not_started → playing → victory | quit.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusPlaying    Status = "playing"
	StatusVictory    Status = "victory"
	StatusQuit       Status = "quit"
)

// IsTerminal reports whether no further actions are accepted.
func (s Status) IsTerminal() bool {
	return s == StatusVictory || s == StatusQuit
}

// DoorState is the lock state of a door.
type DoorState string

const (
	Locked   DoorState = "locked"
	Unlocked DoorState = "unlocked"
)

// RoomState is the mutable part of a room.
type RoomState struct {
	Items   []scenario.ItemID `json:"items"`   // Items lying here, in display order
	Visited bool              `json:"visited"` // Set the first time the player enters
}

// GameState is the complete world state of one game. The static tables live in
// the bound Scenario; everything that changes during play lives here.
type GameState struct {
	ID          uuid.UUID                      `json:"id"`       // Unique ID per session
	Scenario    string                         `json:"scenario"` // Scenario file name
	Player      actor.Player                   `json:"player"`
	Rooms       map[scenario.RoomID]*RoomState `json:"rooms"`
	Doors       map[scenario.DoorID]DoorState  `json:"doors,omitempty"`
	Status      Status                         `json:"status"`
	TurnCounter int                            `json:"turn_counter"`
	CreatedAt   time.Time                      `json:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at"`

	world *scenario.Scenario
}

// New builds the initial world state for a scenario. The game is not started
// until the engine enters the opening room.
func New(scen *scenario.Scenario, playerName string) *GameState {
	now := time.Now()
	gs := &GameState{
		ID:        uuid.New(),
		Scenario:  scen.FileName,
		Player:    *actor.NewPlayer(playerName, scen.OpeningRoom, scen.BagCapacity),
		Rooms:     make(map[scenario.RoomID]*RoomState, len(scen.Rooms)),
		Doors:     make(map[scenario.DoorID]DoorState, len(scen.Doors)),
		Status:    StatusNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
		world:     scen,
	}
	for id, room := range scen.Rooms {
		items := make([]scenario.ItemID, len(room.Items))
		copy(items, room.Items)
		gs.Rooms[id] = &RoomState{Items: items}
	}
	for id, door := range scen.Doors {
		gs.Doors[id] = Unlocked
		if door.Locked {
			gs.Doors[id] = Locked
		}
	}
	return gs
}

// Bind attaches the static scenario to a state that was decoded from storage.
// The stored rooms and doors must match the scenario's exactly.
func (gs *GameState) Bind(scen *scenario.Scenario) error {
	if scen == nil {
		return fmt.Errorf("cannot bind game %s to nil scenario", gs.ID)
	}
	if _, err := scen.Room(gs.Player.Room); err != nil {
		return fmt.Errorf("player %w: %w", err, ErrUnknownRoom)
	}
	for id, rs := range gs.Rooms {
		if _, ok := scen.Rooms[id]; !ok || rs == nil {
			return fmt.Errorf("room %q: %w", id, ErrUnknownRoom)
		}
	}
	for id := range scen.Rooms {
		if _, ok := gs.Rooms[id]; !ok {
			return fmt.Errorf("room %q missing from game %s: %w", id, gs.ID, ErrUnknownRoom)
		}
	}
	for id, door := range gs.Doors {
		if _, err := scen.Door(id); err != nil {
			return err
		}
		if door != Locked && door != Unlocked {
			return fmt.Errorf("door %q has invalid state %q", id, door)
		}
	}
	for id := range scen.Doors {
		if _, ok := gs.Doors[id]; !ok {
			return fmt.Errorf("door %q missing from game %s: %w", id, gs.ID, scenario.ErrUnknownID)
		}
	}
	gs.world = scen
	return nil
}

// World returns the bound scenario.
func (gs *GameState) World() *scenario.Scenario {
	return gs.world
}

// IsGameOver returns the lifecycle status.
func (gs *GameState) IsGameOver() Status {
	return gs.Status
}

// CurrentRoom implements scenario.GameStateView.
func (gs *GameState) CurrentRoom() scenario.RoomID {
	return gs.Player.Room
}

// IsDoorUnlocked implements scenario.GameStateView.
func (gs *GameState) IsDoorUnlocked(door scenario.DoorID) bool {
	return gs.Doors[door] == Unlocked
}

// HasFlag implements scenario.GameStateView.
func (gs *GameState) HasFlag(flag scenario.FlagID) bool {
	return gs.Player.HasFlag(flag)
}

// HasItem implements scenario.GameStateView.
func (gs *GameState) HasItem(item scenario.ItemID) bool {
	return gs.Player.Has(item)
}

var _ scenario.GameStateView = (*GameState)(nil)

// CheckWinCondition evaluates the scenario's win rule against the current state.
func (gs *GameState) CheckWinCondition() bool {
	return gs.world.WinRule.Satisfied(gs)
}

// Enter moves the player into room. On the first visit the room is marked
// visited and its triggers fire; the fired triggers are returned.
func (gs *GameState) Enter(room scenario.RoomID) ([]scenario.Trigger, error) {
	rs, ok := gs.Rooms[room]
	if !ok {
		return nil, fmt.Errorf("room %q: %w", room, ErrUnknownRoom)
	}
	gs.Player.Room = room
	if rs.Visited {
		return nil, nil
	}
	rs.Visited = true

	fired := gs.world.TriggersFor(room)
	for _, trigger := range fired {
		for _, flag := range trigger.SetFlags {
			gs.Player.SetFlag(flag)
		}
	}
	return fired, nil
}

// ItemCount counts items in rooms plus items in the bag.
func (gs *GameState) ItemCount() int {
	n := len(gs.Player.Inventory)
	for _, rs := range gs.Rooms {
		n += len(rs.Items)
	}
	return n
}

// CheckItemConservation verifies every scenario item is in exactly one place.
func (gs *GameState) CheckItemConservation() error {
	seen := mapset.New[scenario.ItemID]()
	place := func(item scenario.ItemID, where string) error {
		if seen.Has(item) {
			return fmt.Errorf("item %q duplicated (again in %s)", item, where)
		}
		seen.Put(item)
		return nil
	}
	for _, item := range gs.Player.Inventory {
		if err := place(item, "inventory"); err != nil {
			return err
		}
	}
	for id, rs := range gs.Rooms {
		for _, item := range rs.Items {
			if err := place(item, string(id)); err != nil {
				return err
			}
		}
	}
	if seen.Size() != len(gs.world.Items) {
		return fmt.Errorf("found %d items, scenario defines %d", seen.Size(), len(gs.world.Items))
	}
	return nil
}
