package scenario

// Exit identifies a single directed edge of the room graph.
type Exit struct {
	Room      RoomID    `json:"room"`
	Direction Direction `json:"direction"`
}

// Door is a binary lock laid over one or more exits. Using RequiredItem in a
// room that owns one of the gates toggles it.
type Door struct {
	ID           DoorID `json:"id"`            // Also the key in the map.
	Name         string `json:"name"`          // Display name, e.g. "pantry door"
	RequiredItem ItemID `json:"required_item"` // Item that toggles the lock
	Locked       bool   `json:"locked"`        // Initial state
	Gates        []Exit `json:"gates"`         // Exits this door blocks while locked
}

// useKey indexes the (item, room) → door table.
type useKey struct {
	item ItemID
	room RoomID
}

// DoorForUse returns the door toggled by using item in room, if any.
func (s *Scenario) DoorForUse(item ItemID, room RoomID) (DoorID, bool) {
	id, ok := s.doorsByUse[useKey{item: item, room: room}]
	return id, ok
}

// DoorAt returns the door gating the exit, if any.
func (s *Scenario) DoorAt(room RoomID, dir Direction) (DoorID, bool) {
	id, ok := s.doorsByExit[Exit{Room: room, Direction: dir}]
	return id, ok
}
