package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/mansion-engine/pkg/engine"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeGameCreated EventType = "game.created"
	EventTypeTurnApplied EventType = "game.turn"
	EventTypeGameEnded   EventType = "game.ended"
	EventTypeGameDeleted EventType = "game.deleted"
)

// Event represents a generic event structure
type Event struct {
	Type   EventType      `json:"type"`
	GameID string         `json:"game_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// Broadcaster publishes game events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel is the pub/sub channel for one game.
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", gameID.String())
}

// Subscribe opens a subscription to one game's events. The caller closes it.
func (b *Broadcaster) Subscribe(ctx context.Context, gameID uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(gameID))
}

// PublishGameCreated publishes a game.created event with the opening turn.
func (b *Broadcaster) PublishGameCreated(ctx context.Context, gameID uuid.UUID, scenarioFile string, start engine.ActionResult) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeGameCreated,
		GameID: gameID.String(),
		Data: map[string]any{
			"scenario": scenarioFile,
			"events":   start.Events,
			"status":   start.Status,
		},
	})
}

// PublishTurn publishes the outcome of an action. A turn that ends the game
// is followed by a game.ended event.
func (b *Broadcaster) PublishTurn(ctx context.Context, gameID uuid.UUID, result engine.ActionResult) error {
	err := b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeTurnApplied,
		GameID: gameID.String(),
		Data: map[string]any{
			"result": result,
		},
	})
	if err != nil || !result.OK || !result.Status.IsTerminal() {
		return err
	}
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeGameEnded,
		GameID: gameID.String(),
		Data: map[string]any{
			"status": result.Status,
			"turn":   result.Turn,
		},
	})
}

// PublishGameDeleted publishes a game.deleted event
func (b *Broadcaster) PublishGameDeleted(ctx context.Context, gameID uuid.UUID) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:   EventTypeGameDeleted,
		GameID: gameID.String(),
	})
}

// publishToGame publishes an event to the game-specific channel
func (b *Broadcaster) publishToGame(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}
