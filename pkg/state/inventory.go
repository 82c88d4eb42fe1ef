package state

import (
	"slices"

	"github.com/jwebster45206/mansion-engine/pkg/scenario"
)

// PickUp moves an item from the current room into the bag.
func (gs *GameState) PickUp(item scenario.ItemID) error {
	rs := gs.Rooms[gs.Player.Room]
	if rs == nil {
		return ErrUnknownRoom
	}
	i := slices.Index(rs.Items, item)
	if i < 0 {
		return ErrNoSuchItemHere
	}
	if err := gs.Player.Add(item); err != nil {
		return err
	}
	rs.Items = slices.Delete(rs.Items, i, i+1)
	return nil
}

// Drop moves an item from the bag into the current room.
func (gs *GameState) Drop(item scenario.ItemID) error {
	rs := gs.Rooms[gs.Player.Room]
	if rs == nil {
		return ErrUnknownRoom
	}
	if err := gs.Player.Remove(item); err != nil {
		return err
	}
	rs.Items = append(rs.Items, item)
	return nil
}
