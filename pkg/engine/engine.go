package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jwebster45206/mansion-engine/pkg/scenario"
	"github.com/jwebster45206/mansion-engine/pkg/state"
)

// ErrAlreadyStarted is returned by Start for a game past not_started.
var ErrAlreadyStarted = errors.New("game already started")

// Engine applies player actions to game states. It holds no per-game data,
// so one Engine serves any number of games; callers serialize access to
// each GameState.
type Engine struct {
	logger *slog.Logger
}

// New returns an engine. A nil logger discards log output.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{logger: logger}
}

// Start enters the opening room and moves the game to playing. The intro,
// the opening room and any triggers there are reported as events.
func (e *Engine) Start(gs *state.GameState) (ActionResult, error) {
	if gs.World() == nil {
		return ActionResult{}, fmt.Errorf("game %s has no scenario bound", gs.ID)
	}
	if gs.Status != state.StatusNotStarted {
		return ActionResult{}, fmt.Errorf("game %s: %w", gs.ID, ErrAlreadyStarted)
	}

	scen := gs.World()
	var events []Event
	if scen.Intro != "" {
		events = append(events, Event{Type: EventIntro, Text: scen.Intro})
	}

	entered, err := e.enter(gs, scen.OpeningRoom)
	if err != nil {
		return ActionResult{}, fmt.Errorf("failed to enter opening room: %w", err)
	}
	events = append(events, entered...)
	gs.Status = state.StatusPlaying
	events = append(events, e.checkWin(gs)...)
	gs.UpdatedAt = time.Now()

	e.logger.Debug("Game started", "game_id", gs.ID.String(), "scenario", gs.Scenario, "player", gs.Player.Name)
	return ActionResult{
		OK:     true,
		Events: events,
		Status: gs.Status,
		Turn:   gs.TurnCounter,
	}, nil
}

// Apply performs one action. On failure the world is unchanged and the
// result carries the error kind. On success the turn counter advances and
// the win rule is evaluated.
func (e *Engine) Apply(gs *state.GameState, action state.Action) ActionResult {
	switch {
	case gs.Status == state.StatusNotStarted:
		return failure(gs, action, state.ErrNotStarted)
	case gs.Status.IsTerminal():
		return failure(gs, action, state.ErrGameOver)
	}

	var (
		events []Event
		err    error
	)
	switch action.Type {
	case state.ActMove:
		events, err = e.move(gs, action.Direction)
	case state.ActPickUp:
		events, err = e.pickUp(gs, action.Item)
	case state.ActDrop:
		events, err = e.drop(gs, action.Item)
	case state.ActUse:
		events, err = e.use(gs, action.Item)
	case state.ActBag:
		events = e.bag(gs)
	case state.ActLook:
		events = e.look(gs)
	case state.ActQuit:
		gs.Status = state.StatusQuit
		events = []Event{{Type: EventQuit, Text: "Thank you for playing!"}}
	default:
		err = fmt.Errorf("%w: unknown action %q", state.ErrInvalidActionSelection, action.Type)
	}

	if err != nil {
		e.logger.Debug("Action rejected",
			"game_id", gs.ID.String(),
			"action", action.Type,
			"error", err)
		return failure(gs, action, err)
	}

	gs.TurnCounter++
	if !gs.Status.IsTerminal() {
		events = append(events, e.checkWin(gs)...)
	}
	gs.UpdatedAt = time.Now()

	e.logger.Debug("Action applied",
		"game_id", gs.ID.String(),
		"action", action.Type,
		"room", gs.Player.Room,
		"turn", gs.TurnCounter,
		"status", gs.Status)

	return ActionResult{
		OK:     true,
		Action: action,
		Events: events,
		Status: gs.Status,
		Turn:   gs.TurnCounter,
	}
}

func (e *Engine) move(gs *state.GameState, dir scenario.Direction) ([]Event, error) {
	to, err := gs.AttemptMove(gs.Player.Room, dir)
	if err != nil {
		return nil, err
	}
	return e.enter(gs, to)
}

// enter moves the player and reports the room plus any triggers that fired.
func (e *Engine) enter(gs *state.GameState, room scenario.RoomID) ([]Event, error) {
	fired, err := gs.Enter(room)
	if err != nil {
		return nil, err
	}
	view := gs.DescribeCurrentRoom()
	events := []Event{{Type: EventRoomEntered, Room: view.ID, Text: view.Description}}
	for _, trigger := range fired {
		e.logger.Debug("Trigger fired", "game_id", gs.ID.String(), "trigger", trigger.ID, "flags", trigger.SetFlags)
		events = append(events, Event{
			Type:    EventTrigger,
			Room:    room,
			Trigger: trigger.ID,
			Text:    trigger.Text,
		})
	}
	return events, nil
}

func (e *Engine) pickUp(gs *state.GameState, item scenario.ItemID) ([]Event, error) {
	if err := gs.PickUp(item); err != nil {
		if errors.Is(err, state.ErrBagFull) {
			return nil, fmt.Errorf("%w (maximum %d items), drop something first", err, gs.Player.Capacity)
		}
		return nil, err
	}
	return []Event{{
		Type: EventItemTaken,
		Item: item,
		Room: gs.Player.Room,
		Text: fmt.Sprintf("You picked up the %s.", gs.World().ItemName(item)),
	}}, nil
}

func (e *Engine) drop(gs *state.GameState, item scenario.ItemID) ([]Event, error) {
	if item == "" {
		return nil, fmt.Errorf("%w: drop needs an item", state.ErrInvalidActionSelection)
	}
	if err := gs.Drop(item); err != nil {
		return nil, err
	}
	return []Event{{
		Type: EventItemDropped,
		Item: item,
		Room: gs.Player.Room,
		Text: fmt.Sprintf("You removed the %s from your bag and left it here.", gs.World().ItemName(item)),
	}}, nil
}

func (e *Engine) use(gs *state.GameState, item scenario.ItemID) ([]Event, error) {
	if item == "" {
		return nil, fmt.Errorf("%w: use needs an item", state.ErrInvalidActionSelection)
	}
	toggle, err := gs.UseItem(item)
	if err != nil {
		return nil, err
	}

	scen := gs.World()
	name := scen.ItemName(item)
	used := Event{Type: EventItemUsed, Item: item, Room: gs.Player.Room}
	if toggle != nil {
		used.Text = fmt.Sprintf("You use the %s on the %s.", name, toggle.Name)
		return []Event{used, {
			Type: EventDoorToggled,
			Room: gs.Player.Room,
			Door: toggle,
			Text: fmt.Sprintf("The %s is now %s!", toggle.Name, toggle.New),
		}}, nil
	}

	if def, err := scen.Item(item); err == nil {
		used.Text = def.UseTextIn(gs.Player.Room)
	}
	if used.Text == "" {
		used.Text = fmt.Sprintf("The %s doesn't seem to do anything useful here.", name)
	}
	return []Event{used}, nil
}

func (e *Engine) bag(gs *state.GameState) []Event {
	items := gs.DescribeInventory()
	if len(items) == 0 {
		return []Event{{Type: EventBag, Text: "Your bag is empty.", Items: items}}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Your bag contains (%d/%d):", len(items), gs.Player.Capacity)
	for i, item := range items {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, item.Name)
	}
	return []Event{{Type: EventBag, Text: b.String(), Items: items}}
}

func (e *Engine) look(gs *state.GameState) []Event {
	view := gs.DescribeCurrentRoom()
	var b strings.Builder
	fmt.Fprintf(&b, "You take a closer look around the %s...", view.Name)
	if view.LookText != "" {
		b.WriteString("\n" + view.LookText)
	}
	for _, exit := range view.Exits {
		if exit.Door == nil {
			continue
		}
		lock := "unlocked"
		if exit.Door.Locked {
			lock = "locked"
		}
		fmt.Fprintf(&b, "\nThe %s to the %s is %s.", exit.Door.Name, exit.Direction, lock)
	}
	return []Event{{Type: EventLook, Room: view.ID, Text: b.String()}}
}

// checkWin ends the game in victory when the win rule holds.
func (e *Engine) checkWin(gs *state.GameState) []Event {
	if !gs.CheckWinCondition() {
		return nil
	}
	gs.Player.Complete()
	gs.Status = state.StatusVictory
	e.logger.Info("Game won", "game_id", gs.ID.String(), "player", gs.Player.Name, "turns", gs.TurnCounter)

	text := gs.World().WinRule.Text
	if text == "" {
		text = "Congratulations! You have escaped!"
	}
	return []Event{{Type: EventVictory, Room: gs.Player.Room, Text: text}}
}
