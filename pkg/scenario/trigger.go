package scenario

// Trigger is a one-time narrative event fired the first time the player enters
// Room, e.g. meeting a ghost.
type Trigger struct {
	ID       TriggerID `json:"id"` // Also the key in the map.
	Room     RoomID    `json:"room"`
	SetFlags []FlagID  `json:"set_flags,omitempty"`
	Text     string    `json:"text,omitempty"`
}

// TriggersFor returns the triggers attached to a room, sorted by ID.
func (s *Scenario) TriggersFor(room RoomID) []Trigger {
	return s.triggersByRoom[room]
}
