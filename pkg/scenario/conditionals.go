package scenario

// GameStateView provides the minimal interface needed to evaluate conditionals
// This avoids an import cycle with the state package
type GameStateView interface {
	CurrentRoom() RoomID
	IsDoorUnlocked(door DoorID) bool
	HasFlag(flag FlagID) bool
	HasItem(item ItemID) bool
}

// When is a conjunction of world conditions. Every listed condition must hold.
type When struct {
	Room          RoomID   `json:"room,omitempty"`           // Player must be in this room
	DoorsUnlocked []DoorID `json:"doors_unlocked,omitempty"` // All of these doors must be unlocked
	DoorsLocked   []DoorID `json:"doors_locked,omitempty"`   // All of these doors must be locked
	Flags         []FlagID `json:"flags,omitempty"`          // All of these flags must be set
	Items         []ItemID `json:"items,omitempty"`          // All of these items must be held
}

// IsEmpty reports whether no condition is specified.
func (w When) IsEmpty() bool {
	return w.Room == "" &&
		len(w.DoorsUnlocked) == 0 &&
		len(w.DoorsLocked) == 0 &&
		len(w.Flags) == 0 &&
		len(w.Items) == 0
}

// Evaluate checks if all conditions are met.
// An empty When never matches.
func (w When) Evaluate(gsView GameStateView) bool {
	if w.IsEmpty() {
		return false
	}

	if w.Room != "" && gsView.CurrentRoom() != w.Room {
		return false
	}
	for _, d := range w.DoorsUnlocked {
		if !gsView.IsDoorUnlocked(d) {
			return false
		}
	}
	for _, d := range w.DoorsLocked {
		if gsView.IsDoorUnlocked(d) {
			return false
		}
	}
	for _, f := range w.Flags {
		if !gsView.HasFlag(f) {
			return false
		}
	}
	for _, i := range w.Items {
		if !gsView.HasItem(i) {
			return false
		}
	}

	return true
}

// WinRule is the declarative victory condition: the player stands in Room,
// RequiredDoorUnlocked (if set) is unlocked, and every RequiredFlags is set.
type WinRule struct {
	Room                 RoomID   `json:"room"`
	RequiredDoorUnlocked DoorID   `json:"required_door_unlocked,omitempty"`
	RequiredFlags        []FlagID `json:"required_flags,omitempty"`
	Text                 string   `json:"text,omitempty"` // Victory narration
}

// When expresses the rule as a conditional.
func (r WinRule) When() When {
	w := When{
		Room:  r.Room,
		Flags: r.RequiredFlags,
	}
	if r.RequiredDoorUnlocked != "" {
		w.DoorsUnlocked = []DoorID{r.RequiredDoorUnlocked}
	}
	return w
}

// Satisfied reports whether the rule holds for the given state.
func (r WinRule) Satisfied(gsView GameStateView) bool {
	return r.When().Evaluate(gsView)
}
