package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/mansion-engine/internal/handlers"
)

// CreateGame starts a new game via POST /v1/games
func CreateGame(ctx context.Context, client *http.Client, baseURL string, req handlers.CreateGameRequest) (*handlers.GameResponse, error) {
	var game handlers.GameResponse
	if err := doJSON(ctx, client, http.MethodPost, baseURL+"/v1/games", req, http.StatusCreated, &game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return &game, nil
}

// GetGame reads a game via GET /v1/games/{id}
func GetGame(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID) (*handlers.GameResponse, error) {
	var game handlers.GameResponse
	if err := doJSON(ctx, client, http.MethodGet, fmt.Sprintf("%s/v1/games/%s", baseURL, gameID), nil, http.StatusOK, &game); err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &game, nil
}

// DeleteGame removes a game via DELETE /v1/games/{id}
func DeleteGame(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID) error {
	if err := doJSON(ctx, client, http.MethodDelete, fmt.Sprintf("%s/v1/games/%s", baseURL, gameID), nil, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

// PostAction applies one action via POST /v1/games/{id}/actions
func PostAction(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID, req handlers.ActionRequest) (*handlers.TurnResponse, error) {
	var turn handlers.TurnResponse
	if err := doJSON(ctx, client, http.MethodPost, fmt.Sprintf("%s/v1/games/%s/actions", baseURL, gameID), req, http.StatusOK, &turn); err != nil {
		return nil, fmt.Errorf("failed to post action: %w", err)
	}
	return &turn, nil
}

func doJSON(ctx context.Context, client *http.Client, method, url string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s returned %d (expected %d): %s", method, url, resp.StatusCode, wantStatus, string(respBody))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
