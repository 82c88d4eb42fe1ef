package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mansion-engine/pkg/engine"
	"github.com/jwebster45206/mansion-engine/pkg/scenario"
	"github.com/jwebster45206/mansion-engine/pkg/state"
	"github.com/jwebster45206/mansion-engine/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

type recordingPublisher struct {
	mu      sync.Mutex
	created int
	turns   []engine.ActionResult
	deleted int
}

func (p *recordingPublisher) PublishGameCreated(ctx context.Context, gameID uuid.UUID, scenarioFile string, start engine.ActionResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created++
	return nil
}

func (p *recordingPublisher) PublishTurn(ctx context.Context, gameID uuid.UUID, result engine.ActionResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.turns = append(p.turns, result)
	return nil
}

func (p *recordingPublisher) PublishGameDeleted(ctx context.Context, gameID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted++
	return nil
}

func newTestGamesHandler(t *testing.T) (*GamesHandler, *storage.MockStorage, *recordingPublisher) {
	t.Helper()
	store, err := storage.NewMockStorageWithBuiltins()
	require.NoError(t, err)
	pub := &recordingPublisher{}
	return NewGamesHandler(testLogger(), store, engine.New(nil), pub), store, pub
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createGame(t *testing.T, h http.Handler, body any) GameResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/v1/games", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var game GameResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&game))
	return game
}

func act(t *testing.T, h http.Handler, id uuid.UUID, req ActionRequest) TurnResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/v1/games/"+id.String()+"/actions", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var turn TurnResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&turn))
	return turn
}

func command(s string) ActionRequest {
	return ActionRequest{Command: &s}
}

func TestGamesHandler_Create(t *testing.T) {
	h, _, pub := newTestGamesHandler(t)

	game := createGame(t, h, CreateGameRequest{PlayerName: "  Mara "})
	assert.NotEqual(t, uuid.Nil, game.ID)
	assert.Equal(t, scenario.DefaultScenarioFile, game.Scenario)
	assert.Equal(t, state.StatusPlaying, game.Status)
	assert.Equal(t, "Mara", game.Player.Name)
	assert.Equal(t, 4, game.Player.Capacity)
	assert.Equal(t, scenario.RoomID("entrance_hall"), game.Room.ID)
	assert.NotEmpty(t, game.Actions)
	require.NotEmpty(t, game.Events)
	assert.Equal(t, engine.EventIntro, game.Events[0].Type)
	assert.Equal(t, 1, pub.created)
}

func TestGamesHandler_CreateNormalizesScenario(t *testing.T) {
	h, _, _ := newTestGamesHandler(t)
	game := createGame(t, h, CreateGameRequest{Scenario: "Odettes Cellar"})
	assert.Equal(t, "odettes_cellar.json", game.Scenario)
	assert.Equal(t, scenario.RoomID("foyer"), game.Room.ID)
}

func TestGamesHandler_CreateErrors(t *testing.T) {
	h, _, _ := newTestGamesHandler(t)

	rec := do(t, h, http.MethodPost, "/v1/games", CreateGameRequest{Scenario: "nowhere"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/games", bytes.NewBufferString("{oops"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/games", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGamesHandler_ReadAndDelete(t *testing.T) {
	h, store, pub := newTestGamesHandler(t)
	game := createGame(t, h, nil)

	rec := do(t, h, http.MethodGet, "/v1/games/"+game.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var read GameResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&read))
	assert.Equal(t, game.ID, read.ID)
	assert.Empty(t, read.Events)

	rec = do(t, h, http.MethodDelete, "/v1/games/"+game.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, pub.deleted)

	gs, err := store.LoadGameState(context.Background(), game.ID)
	require.NoError(t, err)
	assert.Nil(t, gs)

	rec = do(t, h, http.MethodGet, "/v1/games/"+game.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGamesHandler_StaleSessionRejected(t *testing.T) {
	store, err := storage.NewMockStorageWithBuiltins()
	require.NoError(t, err)
	var logs bytes.Buffer
	h := NewGamesHandler(slog.New(slog.NewTextHandler(&logs, nil)), store, engine.New(nil), nil)
	game := createGame(t, h, nil)

	// A session saved before the scenario gained its garden gate.
	gs, err := store.LoadGameState(context.Background(), game.ID)
	require.NoError(t, err)
	delete(gs.Doors, "garden_gate")

	rec := do(t, h, http.MethodGet, "/v1/games/"+game.ID.String(), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/games/"+game.ID.String()+"/actions", command("go south"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, scenario.RoomID("entrance_hall"), gs.Player.Room)

	assert.Contains(t, logs.String(), "Failed to bind game to scenario")
	assert.Contains(t, logs.String(), "game_id="+game.ID.String())
}

func TestGamesHandler_BadPaths(t *testing.T) {
	h, _, _ := newTestGamesHandler(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/v1/games/not-a-uuid", http.StatusBadRequest},
		{http.MethodGet, "/v1/games/" + uuid.NewString() + "/moves", http.StatusNotFound},
		{http.MethodGet, "/v1/games/" + uuid.NewString() + "/actions", http.StatusMethodNotAllowed},
		{http.MethodPut, "/v1/games/" + uuid.NewString(), http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/games/" + uuid.NewString(), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, h, tt.method, tt.path, nil).Code)
		})
	}
}

func TestGamesHandler_ActionRequests(t *testing.T) {
	h, _, pub := newTestGamesHandler(t)
	game := createGame(t, h, nil)
	path := "/v1/games/" + game.ID.String() + "/actions"

	// Structured action
	turn := act(t, h, game.ID, ActionRequest{Action: &state.Action{Type: state.ActPickUp, Item: "candle"}})
	assert.True(t, turn.Result.OK)
	require.Len(t, turn.Game.Player.Inventory, 1)
	assert.Equal(t, "Candle", turn.Game.Player.Inventory[0].Name)

	// Menu selection: 1 is north from the entrance hall
	one := 1
	turn = act(t, h, game.ID, ActionRequest{Selection: &one})
	assert.True(t, turn.Result.OK)
	assert.Equal(t, scenario.RoomID("living_room"), turn.Game.Room.ID)
	assert.Equal(t, 2, turn.Game.Turn)

	// Typed command
	turn = act(t, h, game.ID, command("take silver key"))
	assert.True(t, turn.Result.OK)

	// Recoverable engine failure is a 200 with ok=false
	turn = act(t, h, game.ID, command("go up"))
	assert.False(t, turn.Result.OK)
	assert.Equal(t, state.KindNoSuchExit, turn.Result.Error)
	assert.Equal(t, 3, turn.Game.Turn)

	// Selection of "Use item" completed with an item name
	var useIndex int
	for i, a := range turn.Game.Actions {
		if a.Action.Type == state.ActUse {
			useIndex = i + 1
		}
	}
	require.NotZero(t, useIndex)
	turn = act(t, h, game.ID, ActionRequest{Selection: &useIndex, Item: "Candle"})
	assert.True(t, turn.Result.OK, turn.Result.Message)

	turn = act(t, h, game.ID, ActionRequest{Selection: &useIndex})
	assert.Equal(t, state.KindInvalidActionSelection, turn.Result.Error)

	big := 99
	turn = act(t, h, game.ID, ActionRequest{Selection: &big})
	assert.Equal(t, state.KindInvalidActionSelection, turn.Result.Error)

	// Malformed requests
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, path, ActionRequest{}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, path, map[string]any{"command": "look", "selection": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, path, map[string]any{"verb": "look"}).Code)

	// Unknown game
	rec := do(t, h, http.MethodPost, "/v1/games/"+uuid.NewString()+"/actions", command("look"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Len(t, pub.turns, 7)
}

func TestGamesHandler_QuitEndsGame(t *testing.T) {
	h, _, _ := newTestGamesHandler(t)
	game := createGame(t, h, nil)

	turn := act(t, h, game.ID, command("quit"))
	assert.True(t, turn.Result.OK)
	assert.Equal(t, state.StatusQuit, turn.Game.Status)
	assert.Empty(t, turn.Game.Actions)

	turn = act(t, h, game.ID, command("look"))
	assert.Equal(t, state.KindGameOver, turn.Result.Error)

	one := 1
	turn = act(t, h, game.ID, ActionRequest{Selection: &one})
	assert.Equal(t, state.KindGameOver, turn.Result.Error)
}

func TestGamesHandler_ConcurrentActions(t *testing.T) {
	h, store, _ := newTestGamesHandler(t)
	game := createGame(t, h, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/v1/games/"+game.ID.String()+"/actions",
				bytes.NewBufferString(`{"command": "look"}`))
			h.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	gs, err := store.LoadGameState(context.Background(), game.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, gs.TurnCounter)
	assert.Equal(t, 0, h.locks.size())
}

func TestNormalizeID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"haunted_mansion.json", "haunted_mansion.json"},
		{"Haunted Mansion", "haunted_mansion"},
		{"odettes-cellar", "odettes_cellar"},
		{"  Spaced  Out ", "spaced_out"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeID(tt.in); got != tt.want {
			t.Errorf("normalizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
