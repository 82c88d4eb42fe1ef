package actor

import (
	"errors"
	"slices"

	"github.com/jwebster45206/mansion-engine/pkg/scenario"
)

var (
	ErrBagFull     = errors.New("bag is full")
	ErrItemNotHeld = errors.New("item not held")
)

// Player is the runtime state of the player character.
type Player struct {
	Name      string                   `json:"name"`
	Room      scenario.RoomID          `json:"room"`
	Inventory []scenario.ItemID        `json:"inventory"`       // Ordered, insertion order preserved
	Capacity  int                      `json:"capacity"`        // Maximum inventory size
	Flags     map[scenario.FlagID]bool `json:"flags,omitempty"` // Narrative flags; once set they stay set
	Completed bool                     `json:"completed"`       // Set once on victory
}

// NewPlayer creates a player standing in start with an empty bag.
func NewPlayer(name string, start scenario.RoomID, capacity int) *Player {
	if name == "" {
		name = "Adventurer"
	}
	if capacity <= 0 {
		capacity = scenario.DefaultBagCapacity
	}
	return &Player{
		Name:      name,
		Room:      start,
		Inventory: make([]scenario.ItemID, 0, capacity),
		Capacity:  capacity,
		Flags:     make(map[scenario.FlagID]bool),
	}
}

// Has reports whether the item is in the bag.
func (p *Player) Has(item scenario.ItemID) bool {
	return slices.Contains(p.Inventory, item)
}

// IsFull reports whether the bag is at capacity.
func (p *Player) IsFull() bool {
	return len(p.Inventory) >= p.Capacity
}

// Add appends the item to the bag. The bag is unchanged on error.
func (p *Player) Add(item scenario.ItemID) error {
	if p.IsFull() {
		return ErrBagFull
	}
	p.Inventory = append(p.Inventory, item)
	return nil
}

// Remove takes the item out of the bag, keeping the order of the rest.
func (p *Player) Remove(item scenario.ItemID) error {
	i := slices.Index(p.Inventory, item)
	if i < 0 {
		return ErrItemNotHeld
	}
	p.Inventory = slices.Delete(p.Inventory, i, i+1)
	return nil
}

// SetFlag sets a narrative flag and reports whether it was newly set.
func (p *Player) SetFlag(flag scenario.FlagID) bool {
	if p.Flags == nil {
		p.Flags = make(map[scenario.FlagID]bool)
	}
	if p.Flags[flag] {
		return false
	}
	p.Flags[flag] = true
	return true
}

// HasFlag reports whether a narrative flag is set.
func (p *Player) HasFlag(flag scenario.FlagID) bool {
	return p.Flags[flag]
}

// Complete marks the player as having won. It cannot be undone.
func (p *Player) Complete() {
	p.Completed = true
}
