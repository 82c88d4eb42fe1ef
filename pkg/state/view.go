package state

import (
	"github.com/jwebster45206/mansion-engine/pkg/scenario"
)

// ItemView is an item as shown to the player.
type ItemView struct {
	ID          scenario.ItemID `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
}

// DoorStatus is the visible state of a door.
type DoorStatus struct {
	ID     scenario.DoorID `json:"id"`
	Name   string          `json:"name"`
	Locked bool            `json:"locked"`
}

// ExitView is one exit of the current room.
type ExitView struct {
	Direction scenario.Direction `json:"direction"`
	To        scenario.RoomID    `json:"to"`
	ToName    string             `json:"to_name"`
	Door      *DoorStatus        `json:"door,omitempty"` // Set when a door gates this exit
}

// RoomView is the observable state of the current room.
type RoomView struct {
	ID          scenario.RoomID `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	LookText    string          `json:"look_text,omitempty"`
	Items       []ItemView      `json:"items"`
	Exits       []ExitView      `json:"exits"`
	Doors       []DoorStatus    `json:"doors,omitempty"` // Doors gating exits of this room
}

// DescribeCurrentRoom builds the view of the room the player is in.
func (gs *GameState) DescribeCurrentRoom() RoomView {
	room := gs.world.Rooms[gs.Player.Room]
	view := RoomView{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.DescriptionFor(gs),
		LookText:    room.LookText,
		Items:       make([]ItemView, 0),
		Exits:       make([]ExitView, 0, len(room.Exits)),
	}

	if rs := gs.Rooms[room.ID]; rs != nil {
		view.Items = gs.itemViews(rs.Items)
	}

	seenDoors := make(map[scenario.DoorID]bool)
	for _, dir := range room.Directions() {
		exit := ExitView{
			Direction: dir,
			To:        room.Exits[dir],
			ToName:    gs.world.RoomName(room.Exits[dir]),
		}
		if doorID, ok := gs.world.DoorAt(room.ID, dir); ok {
			status := gs.doorStatus(doorID)
			exit.Door = &status
			if !seenDoors[doorID] {
				seenDoors[doorID] = true
				view.Doors = append(view.Doors, status)
			}
		}
		view.Exits = append(view.Exits, exit)
	}

	return view
}

// DescribeInventory lists the bag contents in order.
func (gs *GameState) DescribeInventory() []ItemView {
	return gs.itemViews(gs.Player.Inventory)
}

func (gs *GameState) itemViews(ids []scenario.ItemID) []ItemView {
	views := make([]ItemView, 0, len(ids))
	for _, id := range ids {
		item := gs.world.Items[id]
		views = append(views, ItemView{
			ID:          id,
			Name:        gs.world.ItemName(id),
			Description: item.Description,
		})
	}
	return views
}

func (gs *GameState) doorStatus(id scenario.DoorID) DoorStatus {
	return DoorStatus{
		ID:     id,
		Name:   gs.world.Doors[id].Name,
		Locked: gs.Doors[id] == Locked,
	}
}
