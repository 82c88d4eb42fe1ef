package storage

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/jwebster45206/mansion-engine/pkg/scenario"
	"github.com/jwebster45206/mansion-engine/pkg/state"
	"github.com/jwebster45206/mansion-engine/pkg/storage"
)

func setupTestStorage(t *testing.T, dataDir string) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client, err := NewRedisClient("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("Failed to create redis client: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	r := NewRedisStorage(client, dataDir, time.Minute, logger)
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedisStorage_GameStateRoundTrip(t *testing.T) {
	r, mr := setupTestStorage(t, "")
	ctx := context.Background()

	if err := r.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	gs := state.New(scenario.HauntedMansion(), "Tester")
	if err := gs.PickUp("candle"); err != nil {
		t.Fatalf("PickUp failed: %v", err)
	}
	if err := r.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("Failed to save gamestate: %v", err)
	}

	key := "gamestate:" + gs.ID.String()
	if !mr.Exists(key) {
		t.Fatalf("Expected key %s to exist", key)
	}
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Errorf("Expected TTL of 1m, got %v", ttl)
	}

	loaded, err := r.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatalf("Failed to load gamestate: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil gamestate")
	}
	if err := loaded.Bind(scenario.HauntedMansion()); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if !loaded.HasItem("candle") {
		t.Error("Expected loaded player to hold the candle")
	}
	if err := loaded.CheckItemConservation(); err != nil {
		t.Errorf("Item conservation broken after round trip: %v", err)
	}

	if err := r.DeleteGameState(ctx, gs.ID); err != nil {
		t.Fatalf("Failed to delete gamestate: %v", err)
	}
	loaded, err = r.LoadGameState(ctx, gs.ID)
	if err != nil || loaded != nil {
		t.Errorf("Expected nil, nil after delete, got %v, %v", loaded, err)
	}
}

func TestRedisStorage_SessionExpires(t *testing.T) {
	r, mr := setupTestStorage(t, "")
	ctx := context.Background()

	gs := state.New(scenario.HauntedMansion(), "Tester")
	if err := r.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("Failed to save gamestate: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	loaded, err := r.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loaded != nil {
		t.Error("Expected expired gamestate to be gone")
	}
}

func TestRedisStorage_LoadMissing(t *testing.T) {
	r, _ := setupTestStorage(t, "")
	loaded, err := r.LoadGameState(context.Background(), uuid.New())
	if err != nil || loaded != nil {
		t.Errorf("Expected nil, nil, got %v, %v", loaded, err)
	}
}

func TestRedisStorage_LoadCorrupt(t *testing.T) {
	r, mr := setupTestStorage(t, "")
	id := uuid.New()
	if err := mr.Set("gamestate:"+id.String(), "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.LoadGameState(context.Background(), id); err == nil {
		t.Error("Expected error for corrupt gamestate")
	}
}

func TestRedisStorage_BuiltinScenarios(t *testing.T) {
	r, _ := setupTestStorage(t, "")
	ctx := context.Background()

	list, err := r.ListScenarios(ctx)
	if err != nil {
		t.Fatalf("Failed to list scenarios: %v", err)
	}
	if list["Haunted Mansion"] != "haunted_mansion.json" {
		t.Errorf("Expected builtin Haunted Mansion, got %v", list)
	}

	s, err := r.GetScenario(ctx, "haunted_mansion.json")
	if err != nil {
		t.Fatalf("Failed to get scenario: %v", err)
	}
	if s.OpeningRoom != "entrance_hall" {
		t.Errorf("Expected opening room entrance_hall, got %s", s.OpeningRoom)
	}

	for _, name := range []string{"nonexistent.json", "../secrets.json"} {
		if _, err := r.GetScenario(ctx, name); !errors.Is(err, storage.ErrScenarioNotFound) {
			t.Errorf("GetScenario(%q): expected ErrScenarioNotFound, got %v", name, err)
		}
	}
}

const tinyScenario = `{
  "name": "Tiny",
  "opening_room": "hall",
  "items": {"lamp": {"name": "Lamp"}},
  "rooms": {
    "hall": {"name": "Hall", "description": "A hall.", "exits": {"north": "yard"}, "items": ["lamp"]},
    "yard": {"name": "Yard", "description": "A yard.", "exits": {"south": "hall"}}
  },
  "win_rule": {"room": "yard"}
}`

func TestRedisStorage_DataDirScenarios(t *testing.T) {
	dataDir := t.TempDir()
	dir := filepath.Join(dataDir, "scenarios")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tiny.json"), []byte(tinyScenario), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name": "Broken"`), 0o644); err != nil {
		t.Fatal(err)
	}

	r, _ := setupTestStorage(t, dataDir)
	ctx := context.Background()

	list, err := r.ListScenarios(ctx)
	if err != nil {
		t.Fatalf("Failed to list scenarios: %v", err)
	}
	if list["Tiny"] != "tiny.json" {
		t.Errorf("Expected Tiny from data dir, got %v", list)
	}
	if _, ok := list["Haunted Mansion"]; !ok {
		t.Error("Expected builtin scenarios alongside data dir")
	}
	if _, ok := list["Broken"]; ok {
		t.Error("Broken scenario should be skipped")
	}

	s, err := r.GetScenario(ctx, "tiny.json")
	if err != nil {
		t.Fatalf("Failed to get scenario: %v", err)
	}
	if s.Name != "Tiny" || s.FileName != "tiny.json" {
		t.Errorf("Unexpected scenario %s (%s)", s.Name, s.FileName)
	}

	if _, err := r.GetScenario(ctx, "broken.json"); err == nil || errors.Is(err, storage.ErrScenarioNotFound) {
		t.Errorf("Expected load error for broken scenario, got %v", err)
	}
}

func TestRedisStorage_ListScenariosShadowsByFileName(t *testing.T) {
	dataDir := t.TempDir()
	dir := filepath.Join(dataDir, "scenarios")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	// Same file name as the builtin mansion, different scenario name.
	if err := os.WriteFile(filepath.Join(dir, scenario.DefaultScenarioFile), []byte(tinyScenario), 0o644); err != nil {
		t.Fatal(err)
	}

	r, _ := setupTestStorage(t, dataDir)
	ctx := context.Background()

	list, err := r.ListScenarios(ctx)
	if err != nil {
		t.Fatalf("Failed to list scenarios: %v", err)
	}
	if list["Tiny"] != scenario.DefaultScenarioFile {
		t.Errorf("Expected Tiny to own %s, got %v", scenario.DefaultScenarioFile, list)
	}
	if _, ok := list["Haunted Mansion"]; ok {
		t.Errorf("Shadowed builtin should not be listed, got %v", list)
	}
	for name, file := range list {
		s, err := r.GetScenario(ctx, file)
		if err != nil {
			t.Fatalf("Failed to get listed scenario %s: %v", file, err)
		}
		if s.Name != name {
			t.Errorf("Listing maps %q to %s, which loads %q", name, file, s.Name)
		}
	}
}

func TestRedisStorage_WaitForConnection(t *testing.T) {
	r, mr := setupTestStorage(t, "")
	if err := r.WaitForConnection(context.Background(), 3, 10*time.Millisecond); err != nil {
		t.Fatalf("Expected connection, got %v", err)
	}

	mr.Close()
	if err := r.WaitForConnection(context.Background(), 2, 10*time.Millisecond); err == nil {
		t.Error("Expected failure once redis is gone")
	}
}
