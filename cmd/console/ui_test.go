package main

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mansion-engine/internal/handlers"
	"github.com/jwebster45206/mansion-engine/pkg/scenario"
	"github.com/jwebster45206/mansion-engine/pkg/state"
)

func newTestUI(t *testing.T) ConsoleUI {
	t.Helper()
	client, err := newLocalClient(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.True(t, client.testConnection())

	ui := NewConsoleUI(&ConsoleConfig{PlayerName: "Tester"}, client)
	model, _ := ui.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	ui = model.(ConsoleUI)

	scenarios, err := client.listScenarios()
	require.NoError(t, err)
	model, _ = ui.Update(scenariosLoadedMsg{scenarios: scenarios})
	ui = model.(ConsoleUI)

	game, err := client.createGame(scenario.DefaultScenarioFile, "Tester")
	require.NoError(t, err)
	model, _ = ui.Update(gameCreatedMsg{game: game})
	return model.(ConsoleUI)
}

// send runs one input through the model, executing the resulting command.
func send(t *testing.T, ui ConsoleUI, input string) ConsoleUI {
	t.Helper()
	ui.textarea.SetValue(input)
	model, cmd := ui.Update(tea.KeyMsg{Type: tea.KeyEnter})
	ui = model.(ConsoleUI)
	if cmd != nil {
		msg := cmd()
		if turn, ok := msg.(turnMsg); ok {
			model, _ = ui.Update(turn)
			ui = model.(ConsoleUI)
		}
	}
	return ui
}

func TestLocalClient_ListScenarios(t *testing.T) {
	client, err := newLocalClient(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	scenarios, err := client.listScenarios()
	require.NoError(t, err)
	files := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		files = append(files, s.FileName)
	}
	assert.Contains(t, files, scenario.DefaultScenarioFile)
}

func TestLocalClient_UnknownScenario(t *testing.T) {
	client, err := newLocalClient(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	_, err = client.createGame("no_such_place.json", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestConsoleUI_GameCreated(t *testing.T) {
	ui := newTestUI(t)

	assert.False(t, ui.showScenarioModal)
	require.NotNil(t, ui.game)
	assert.Equal(t, state.StatusPlaying, ui.game.Status)
	assert.NotEmpty(t, ui.transcript, "opening events should be shown")
	assert.Contains(t, ui.View(), "GAME STATE")
}

func TestConsoleUI_CommandMovesPlayer(t *testing.T) {
	ui := newTestUI(t)
	start := ui.game.Room.ID

	ui = send(t, ui, "go north")
	assert.NotEqual(t, start, ui.game.Room.ID)
	assert.Equal(t, 1, ui.game.Turn)
	assert.Equal(t, entryNarration, ui.transcript[len(ui.transcript)-1].kind)
}

func TestConsoleUI_RejectedCommandShowsError(t *testing.T) {
	ui := newTestUI(t)

	ui = send(t, ui, "dance wildly")
	last := ui.transcript[len(ui.transcript)-1]
	assert.Equal(t, entryError, last.kind)
	assert.Equal(t, 0, ui.game.Turn)
}

func TestConsoleUI_UsePromptsForItem(t *testing.T) {
	ui := newTestUI(t)

	// Nothing held: the bare verb goes to the engine, which rejects it.
	ui = send(t, ui, "use")
	assert.Empty(t, ui.pendingItem)
	assert.Equal(t, entryError, ui.transcript[len(ui.transcript)-1].kind)

	ui = send(t, ui, "n")
	require.NotEmpty(t, ui.game.Room.Items, "the living room holds an item")
	item := ui.game.Room.Items[0]
	ui = send(t, ui, "take "+item.Name)
	require.Len(t, ui.game.Player.Inventory, 1)

	ui = send(t, ui, "drop")
	assert.Equal(t, state.ActDrop, ui.pendingItem)
	assert.Contains(t, ui.transcript[len(ui.transcript)-1].text, "1. "+item.Name)

	ui = send(t, ui, "1")
	assert.Empty(t, ui.pendingItem)
	assert.Empty(t, ui.game.Player.Inventory)
	assert.Contains(t, itemIDs(ui.game.Room.Items), item.ID)
}

func TestConsoleUI_InvalidItemSelection(t *testing.T) {
	ui := newTestUI(t)
	ui = send(t, ui, "n")
	item := ui.game.Room.Items[0]
	ui = send(t, ui, "take "+item.Name)

	ui = send(t, ui, "use")
	require.Equal(t, state.ActUse, ui.pendingItem)
	ui = send(t, ui, "9")
	assert.Empty(t, ui.pendingItem)
	assert.Equal(t, entryError, ui.transcript[len(ui.transcript)-1].kind)
	assert.Len(t, ui.game.Player.Inventory, 1)
}

func TestConsoleUI_QuitEndsGame(t *testing.T) {
	ui := newTestUI(t)

	ui = send(t, ui, "quit")
	assert.Equal(t, state.StatusQuit, ui.game.Status)
	assert.Empty(t, ui.game.Actions)
	assert.Contains(t, ui.transcript[len(ui.transcript)-1].text, "The game is over")
}

func TestConsoleUI_HelpCommand(t *testing.T) {
	ui := newTestUI(t)
	ui.textarea.SetValue("/help")
	model, cmd := ui.Update(tea.KeyMsg{Type: tea.KeyEnter})
	ui = model.(ConsoleUI)

	assert.Nil(t, cmd)
	assert.Contains(t, ui.transcript[len(ui.transcript)-1].text, "How to play")
}

func TestWriteMetadata(t *testing.T) {
	game := &handlers.GameResponse{
		Status: state.StatusPlaying,
		Turn:   3,
		Player: handlers.PlayerView{
			Name:      "Tester",
			Inventory: []state.ItemView{{ID: "candle", Name: "Candle"}},
			Capacity:  4,
		},
		Room: state.RoomView{
			Name: "Garden",
			Exits: []state.ExitView{
				{Direction: "north", ToName: "Living Room"},
				{Direction: "south", ToName: "Outside", Door: &state.DoorStatus{ID: "garden_gate", Locked: true}},
			},
		},
		Actions: []state.ActionDescriptor{{Label: "Go north to Living Room"}},
	}

	out := writeMetadata(game)
	assert.Contains(t, out, "North: Living Room")
	assert.Contains(t, out, "South: Outside")
	assert.Contains(t, out, "locked")
	assert.Contains(t, out, "Bag (1/4)")
	assert.Contains(t, out, "Turn: 3")
	assert.Contains(t, out, "Status: Playing")
	assert.Contains(t, out, "1. Go north to Living Room")
}

func TestPlainTranscript(t *testing.T) {
	ui := ConsoleUI{transcript: []entry{
		{kind: entryNarration, text: "You enter the hall."},
		{kind: entryUser, text: "look"},
		{kind: entryError, text: "nothing"},
	}}
	out := ui.plainTranscript()
	assert.True(t, strings.HasPrefix(out, NarratorName+": You enter the hall."))
	assert.Contains(t, out, "You: look")
	assert.NotContains(t, out, "\x1b[")
}

func itemIDs(items []state.ItemView) []scenario.ItemID {
	ids := make([]scenario.ItemID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
