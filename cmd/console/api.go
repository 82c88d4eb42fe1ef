package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"

	"github.com/jwebster45206/mansion-engine/internal/handlers"
	"github.com/jwebster45206/mansion-engine/pkg/engine"
	"github.com/jwebster45206/mansion-engine/pkg/storage"
)

// apiClient talks to the games API, either over the network or to an
// in-process handler.
type apiClient struct {
	client  *http.Client
	baseURL string
}

func newRemoteClient(cfg *ConsoleConfig) *apiClient {
	return &apiClient{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.APIBaseURL,
	}
}

// newLocalClient serves the API from memory so the console can run
// without Redis or a separate server process.
func newLocalClient(logger *slog.Logger) (*apiClient, error) {
	store, err := storage.NewMockStorageWithBuiltins()
	if err != nil {
		return nil, fmt.Errorf("failed to load builtin scenarios: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, logger))
	games := handlers.NewGamesHandler(logger, store, engine.New(logger), nil)
	mux.Handle("/v1/games", games)
	mux.Handle("/v1/games/", games)
	scenarios := handlers.NewScenarioHandler(logger, store)
	mux.Handle("/v1/scenarios", scenarios)
	mux.Handle("/v1/scenarios/", scenarios)

	return &apiClient{
		client:  &http.Client{Transport: handlerTransport{handler: mux}},
		baseURL: "http://console.local",
	}, nil
}

// handlerTransport answers requests by invoking an http.Handler directly.
type handlerTransport struct {
	handler http.Handler
}

func (t handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	t.handler.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

func (c *apiClient) testConnection() bool {
	resp, err := c.client.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (c *apiClient) listScenarios() ([]handlers.ScenarioSummary, error) {
	var out []handlers.ScenarioSummary
	if err := c.do(http.MethodGet, "/v1/scenarios", nil, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	return out, nil
}

func (c *apiClient) createGame(scenarioFile, playerName string) (*handlers.GameResponse, error) {
	req := handlers.CreateGameRequest{
		Scenario:   scenarioFile,
		PlayerName: playerName,
	}
	var game handlers.GameResponse
	if err := c.do(http.MethodPost, "/v1/games", req, http.StatusCreated, &game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return &game, nil
}

func (c *apiClient) act(gameID uuid.UUID, req handlers.ActionRequest) (*handlers.TurnResponse, error) {
	var turn handlers.TurnResponse
	if err := c.do(http.MethodPost, fmt.Sprintf("/v1/games/%s/actions", gameID), req, http.StatusOK, &turn); err != nil {
		return nil, err
	}
	return &turn, nil
}

func (c *apiClient) do(method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, errorResp.Error)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
