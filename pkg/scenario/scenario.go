package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DefaultBagCapacity is used when a scenario does not set bag_capacity.
const DefaultBagCapacity = 4

// ErrUnknownID is wrapped by every failed lookup of an item, room or door.
var ErrUnknownID = errors.New("unknown id")

// Scenario is the static definition of a game world: the item registry, the
// room graph, the door registry, narrative triggers and the win rule.
// A Scenario is never mutated during play.
type Scenario struct {
	Name        string                `json:"name"`                   // Name of the scenario
	FileName    string                `json:"file_name,omitempty"`    // Name of the file containing the scenario
	Story       string                `json:"story,omitempty"`        // Brief description of the scenario
	Intro       string                `json:"intro,omitempty"`        // Shown once when the game starts
	OpeningRoom RoomID                `json:"opening_room"`           // Initial room for the player
	BagCapacity int                   `json:"bag_capacity,omitempty"` // Maximum inventory size
	Items       map[ItemID]Item       `json:"items"`
	Rooms       map[RoomID]Room       `json:"rooms"`
	Doors       map[DoorID]Door       `json:"doors,omitempty"`
	Triggers    map[TriggerID]Trigger `json:"triggers,omitempty"`
	WinRule     WinRule               `json:"win_rule"`

	doorsByUse     map[useKey]DoorID
	doorsByExit    map[Exit]DoorID
	triggersByRoom map[RoomID][]Trigger
}

// Load strictly decodes, prepares and validates a scenario.
func Load(data []byte) (*Scenario, error) {
	if !json.Valid(data) {
		return nil, errors.New("scenario contains invalid JSON")
	}

	var s Scenario
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed strict JSON unmarshaling: %w", err)
	}

	s.Prepare()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Prepare copies map keys into the ID fields, applies defaults and builds the
// lookup tables used during play. It is safe to call more than once.
func (s *Scenario) Prepare() {
	if s.BagCapacity <= 0 {
		s.BagCapacity = DefaultBagCapacity
	}

	for id, item := range s.Items {
		item.ID = id
		s.Items[id] = item
	}
	for id, room := range s.Rooms {
		room.ID = id
		s.Rooms[id] = room
	}

	s.doorsByUse = make(map[useKey]DoorID)
	s.doorsByExit = make(map[Exit]DoorID)
	for _, id := range sortedKeys(s.Doors) {
		door := s.Doors[id]
		door.ID = id
		s.Doors[id] = door
		for _, gate := range door.Gates {
			if _, taken := s.doorsByExit[gate]; !taken {
				s.doorsByExit[gate] = id
			}
			key := useKey{item: door.RequiredItem, room: gate.Room}
			if _, taken := s.doorsByUse[key]; !taken {
				s.doorsByUse[key] = id
			}
		}
	}

	s.triggersByRoom = make(map[RoomID][]Trigger)
	for _, id := range sortedKeys(s.Triggers) {
		trigger := s.Triggers[id]
		trigger.ID = id
		s.Triggers[id] = trigger
		s.triggersByRoom[trigger.Room] = append(s.triggersByRoom[trigger.Room], trigger)
	}
}

// Item returns the item definition or an error wrapping ErrUnknownID.
func (s *Scenario) Item(id ItemID) (Item, error) {
	item, ok := s.Items[id]
	if !ok {
		return Item{}, fmt.Errorf("item %q: %w", id, ErrUnknownID)
	}
	return item, nil
}

// Room returns the room definition or an error wrapping ErrUnknownID.
func (s *Scenario) Room(id RoomID) (Room, error) {
	room, ok := s.Rooms[id]
	if !ok {
		return Room{}, fmt.Errorf("room %q: %w", id, ErrUnknownID)
	}
	return room, nil
}

// Door returns the door definition or an error wrapping ErrUnknownID.
func (s *Scenario) Door(id DoorID) (Door, error) {
	door, ok := s.Doors[id]
	if !ok {
		return Door{}, fmt.Errorf("door %q: %w", id, ErrUnknownID)
	}
	return door, nil
}

// FindItem resolves user input to an item. The input must equal the item's
// ID or display name, ignoring case. Substrings never match.
func (s *Scenario) FindItem(name string) (ItemID, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if _, ok := s.Items[ItemID(name)]; ok {
		return ItemID(name), true
	}
	for _, id := range sortedKeys(s.Items) {
		item := s.Items[id]
		if strings.EqualFold(item.Name, name) || strings.EqualFold(string(id), name) {
			return id, true
		}
	}
	return "", false
}

// ItemName returns the display name of an item, falling back to its ID.
func (s *Scenario) ItemName(id ItemID) string {
	if item, ok := s.Items[id]; ok && item.Name != "" {
		return item.Name
	}
	return string(id)
}

// RoomName returns the display name of a room, falling back to its ID.
func (s *Scenario) RoomName(id RoomID) string {
	if room, ok := s.Rooms[id]; ok && room.Name != "" {
		return room.Name
	}
	return string(id)
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
