package scenario

// Item is a collectible object. Items are immutable once loaded; rooms and the
// player's bag refer to them by ID.
type Item struct {
	ID          ItemID            `json:"id"`                      // Also the key in the map.
	Name        string            `json:"name"`                    // Display name, e.g. "Silver Key"
	Description string            `json:"description,omitempty"`   // Shown when the item is seen or held
	Effect      string            `json:"effect,omitempty"`        // Use effect tag, e.g. "key", "light", "ward"
	UseText     string            `json:"use_text,omitempty"`      // Flavor when the item is used with no door effect
	RoomUseText map[RoomID]string `json:"room_use_text,omitempty"` // Per-room flavor overrides
}

// UseTextIn returns the flavor text for using the item in the given room.
func (i Item) UseTextIn(room RoomID) string {
	if txt, ok := i.RoomUseText[room]; ok && txt != "" {
		return txt
	}
	return i.UseText
}
