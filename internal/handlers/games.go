package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/mansion-engine/internal/logger"
	"github.com/jwebster45206/mansion-engine/pkg/engine"
	"github.com/jwebster45206/mansion-engine/pkg/scenario"
	"github.com/jwebster45206/mansion-engine/pkg/state"
	"github.com/jwebster45206/mansion-engine/pkg/storage"
)

// GamePublisher receives game lifecycle events. Publishing is best effort.
type GamePublisher interface {
	PublishGameCreated(ctx context.Context, gameID uuid.UUID, scenarioFile string, start engine.ActionResult) error
	PublishTurn(ctx context.Context, gameID uuid.UUID, result engine.ActionResult) error
	PublishGameDeleted(ctx context.Context, gameID uuid.UUID) error
}

type GamesHandler struct {
	storage   storage.Storage
	engine    *engine.Engine
	publisher GamePublisher
	logger    *slog.Logger
	locks     *gameLocks
}

// NewGamesHandler creates the games handler. publisher may be nil.
func NewGamesHandler(logger *slog.Logger, storage storage.Storage, eng *engine.Engine, publisher GamePublisher) *GamesHandler {
	return &GamesHandler{
		storage:   storage,
		engine:    eng,
		publisher: publisher,
		logger:    logger,
		locks:     newGameLocks(),
	}
}

// CreateGameRequest defines the request body for starting a game
type CreateGameRequest struct {
	Scenario   string `json:"scenario,omitempty"` // Scenario filename, defaults to the haunted mansion
	PlayerName string `json:"player_name,omitempty"`
}

// Normalize converts the scenario to a snake_case file name with a .json extension.
func (req *CreateGameRequest) Normalize() {
	req.Scenario = ensureJSONExtension(normalizeID(req.Scenario))
	if req.Scenario == "" {
		req.Scenario = scenario.DefaultScenarioFile
	}
	req.PlayerName = strings.TrimSpace(req.PlayerName)
}

// ActionRequest carries exactly one of Action, Selection or Command.
// Item completes a use or drop chosen by menu selection.
type ActionRequest struct {
	Action    *state.Action `json:"action,omitempty"`
	Selection *int          `json:"selection,omitempty"`
	Command   *string       `json:"command,omitempty"`
	Item      string        `json:"item,omitempty"`
}

func (req ActionRequest) count() int {
	n := 0
	if req.Action != nil {
		n++
	}
	if req.Selection != nil {
		n++
	}
	if req.Command != nil {
		n++
	}
	return n
}

// PlayerView is the player as shown to clients.
type PlayerView struct {
	Name      string           `json:"name"`
	Inventory []state.ItemView `json:"inventory"`
	Capacity  int              `json:"capacity"`
	Completed bool             `json:"completed"`
}

// GameResponse is the observable state of a game.
type GameResponse struct {
	ID       uuid.UUID                `json:"id"`
	Scenario string                   `json:"scenario"`
	Status   state.Status             `json:"status"`
	Turn     int                      `json:"turn"`
	Player   PlayerView               `json:"player"`
	Room     state.RoomView           `json:"room"`
	Actions  []state.ActionDescriptor `json:"actions,omitempty"` // Empty once the game is over
	Events   []engine.Event           `json:"events,omitempty"`  // Opening events, on create only
}

// TurnResponse is returned for every applied or rejected action.
type TurnResponse struct {
	Result engine.ActionResult `json:"result"`
	Game   GameResponse        `json:"game"`
}

func newGameResponse(gs *state.GameState) GameResponse {
	resp := GameResponse{
		ID:       gs.ID,
		Scenario: gs.Scenario,
		Status:   gs.Status,
		Turn:     gs.TurnCounter,
		Player: PlayerView{
			Name:      gs.Player.Name,
			Inventory: gs.DescribeInventory(),
			Capacity:  gs.Player.Capacity,
			Completed: gs.Player.Completed,
		},
		Room: gs.DescribeCurrentRoom(),
	}
	if gs.Status == state.StatusPlaying {
		resp.Actions = gs.ListAvailableActions()
	}
	return resp
}

// ServeHTTP handles HTTP requests for games
// Routes:
// POST   /v1/games              - Start a new game
// GET    /v1/games/{id}         - Read a game
// DELETE /v1/games/{id}         - Delete a game
// POST   /v1/games/{id}/actions - Apply an action
func (h *GamesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	if len(parts) > 2 || (len(parts) == 2 && parts[1] != "actions") {
		writeError(w, h.logger, http.StatusNotFound, "Not found")
		return
	}

	gameID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid game ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	if len(parts) == 2 {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleAction(w, r, gameID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleRead(w, r, gameID)
	case http.MethodDelete:
		h.handleDelete(w, r, gameID)
	default:
		h.logger.Warn("Method not allowed for games endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
	}
}

func (h *GamesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Warn("Invalid JSON in request body", "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
	}
	req.Normalize()

	scen, err := h.storage.GetScenario(r.Context(), req.Scenario)
	if err != nil {
		if errors.Is(err, storage.ErrScenarioNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Scenario not found: "+req.Scenario)
			return
		}
		h.logger.Error("Failed to load scenario", "scenario", req.Scenario, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load scenario")
		return
	}

	gs := state.New(scen, req.PlayerName)
	log := logger.WithGame(h.logger, gs.ID.String())
	start, err := h.engine.Start(gs)
	if err != nil {
		log.Error("Failed to start game", "scenario", req.Scenario, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to start game")
		return
	}

	if err := h.storage.SaveGameState(r.Context(), gs.ID, gs); err != nil {
		log.Error("Failed to save new game", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create game")
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishGameCreated(r.Context(), gs.ID, gs.Scenario, start); err != nil {
			log.Warn("Failed to publish game creation", "error", err)
		}
	}

	log.Info("Game created", "scenario", gs.Scenario, "player", gs.Player.Name)
	resp := newGameResponse(gs)
	resp.Events = start.Events
	writeJSON(w, h.logger, http.StatusCreated, resp)
}

// loadGame loads a game and binds its scenario. It returns nil after writing
// the error response when the game is missing or cannot be bound.
func (h *GamesHandler) loadGame(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) *state.GameState {
	log := logger.WithGame(h.logger, gameID.String())
	gs, err := h.storage.LoadGameState(r.Context(), gameID)
	if err != nil {
		log.Error("Failed to load game", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return nil
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return nil
	}

	scen, err := h.storage.GetScenario(r.Context(), gs.Scenario)
	if err == nil {
		err = gs.Bind(scen)
	}
	if err != nil {
		log.Error("Failed to bind game to scenario", "error", err, "scenario", gs.Scenario)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game scenario")
		return nil
	}
	return gs
}

func (h *GamesHandler) handleRead(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	gs := h.loadGame(w, r, gameID)
	if gs == nil {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, newGameResponse(gs))
}

func (h *GamesHandler) handleDelete(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	log := logger.WithGame(h.logger, gameID.String())
	unlock := h.locks.Lock(gameID)
	defer unlock()

	if err := h.storage.DeleteGameState(r.Context(), gameID); err != nil {
		log.Error("Failed to delete game", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	if h.publisher != nil {
		if err := h.publisher.PublishGameDeleted(r.Context(), gameID); err != nil {
			log.Warn("Failed to publish game deletion", "error", err)
		}
	}
	log.Info("Game deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *GamesHandler) handleAction(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	var req ActionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.count() != 1 {
		writeError(w, h.logger, http.StatusBadRequest, "Exactly one of action, selection or command is required")
		return
	}

	log := logger.WithGame(h.logger, gameID.String())
	unlock := h.locks.Lock(gameID)
	defer unlock()

	gs := h.loadGame(w, r, gameID)
	if gs == nil {
		return
	}

	result := h.apply(gs, req)
	if result.OK {
		if err := h.storage.SaveGameState(r.Context(), gs.ID, gs); err != nil {
			log.Error("Failed to save game", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game")
			return
		}
	}

	if h.publisher != nil {
		if err := h.publisher.PublishTurn(r.Context(), gameID, result); err != nil {
			log.Warn("Failed to publish turn", "error", err)
		}
	}

	writeJSON(w, h.logger, http.StatusOK, TurnResponse{
		Result: result,
		Game:   newGameResponse(gs),
	})
}

// apply resolves the request to an action and runs it through the engine.
func (h *GamesHandler) apply(gs *state.GameState, req ActionRequest) engine.ActionResult {
	switch {
	case req.Command != nil:
		return h.engine.Execute(gs, *req.Command)
	case req.Action != nil:
		return h.engine.Apply(gs, *req.Action)
	}

	if gs.Status != state.StatusPlaying {
		return h.engine.Apply(gs, state.Action{})
	}
	action, err := h.engine.Select(gs, *req.Selection)
	if err != nil {
		return engine.ActionResult{
			Error:   state.KindOf(err),
			Message: err.Error(),
			Status:  gs.Status,
			Turn:    gs.TurnCounter,
		}
	}
	if (action.Type == state.ActUse || action.Type == state.ActDrop) && action.Item == "" && req.Item != "" {
		item, ok := gs.World().FindItem(req.Item)
		if !ok {
			item = scenario.ItemID(req.Item)
		}
		action.Item = item
	}
	return h.engine.Apply(gs, action)
}

// normalizeID converts a string to lowercase snake_case for consistent IDs.
// It handles spaces, hyphens and dots.
func normalizeID(s string) string {
	var out strings.Builder
	prevUnderscore := false
	for i, r := range strings.TrimSpace(s) {
		if r >= 'A' && r <= 'Z' {
			r = r + ('a' - 'A')
		}
		switch {
		case r == '.':
			out.WriteRune('.')
			prevUnderscore = false
		case r == ' ' || r == '-' || r == '_':
			if !prevUnderscore && i > 0 {
				out.WriteRune('_')
				prevUnderscore = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			out.WriteRune(r)
			prevUnderscore = false
		}
	}
	return out.String()
}

// ensureJSONExtension adds .json extension if not present
func ensureJSONExtension(s string) string {
	if s == "" || strings.HasSuffix(s, ".json") {
		return s
	}
	return s + ".json"
}
