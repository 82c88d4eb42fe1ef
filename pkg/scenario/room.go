package scenario

// Room is a node in the world graph. Exits map a direction to the destination
// room; the graph may be asymmetric.
type Room struct {
	ID          RoomID               `json:"id"`                  // Also the key in the map.
	Name        string               `json:"name"`                // Display name
	Description string               `json:"description"`         // Default description
	LookText    string               `json:"look_text,omitempty"` // Extra detail for "look around"
	Exits       map[Direction]RoomID `json:"exits,omitempty"`     // Direction → Room ID
	Items       []ItemID             `json:"items,omitempty"`     // Initial item placement
	Variants    []DescriptionVariant `json:"variants,omitempty"`  // Conditional descriptions, first match wins
}

// DescriptionVariant replaces a room's description while its conditions hold.
type DescriptionVariant struct {
	When        When   `json:"when"`
	Description string `json:"description"`
}

// Directions returns the room's exit directions in canonical order.
func (r Room) Directions() []Direction {
	dirs := make([]Direction, 0, len(r.Exits))
	for d := range r.Exits {
		dirs = append(dirs, d)
	}
	SortDirections(dirs)
	return dirs
}

// DescriptionFor resolves the description against the current game state.
func (r Room) DescriptionFor(gsView GameStateView) string {
	for _, v := range r.Variants {
		if v.When.Evaluate(gsView) {
			return v.Description
		}
	}
	return r.Description
}
