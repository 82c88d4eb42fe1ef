package handlers

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mansion-engine/internal/services/events"
	"github.com/jwebster45206/mansion-engine/pkg/engine"
	"github.com/jwebster45206/mansion-engine/pkg/state"
)

// readEvent reads SSE lines until an event line appears and returns its name.
func readEvent(t *testing.T, r *bufio.Reader) (name, data string) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && name != "":
			return name, data
		}
	}
}

func TestEventsHandler_StreamsGameEvents(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	broadcaster := events.NewBroadcaster(client, testLogger())

	mux := http.NewServeMux()
	mux.Handle("/v1/events/games/", NewEventsHandler(broadcaster, testLogger()))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	gameID := uuid.New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events/games/"+gameID.String(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	name, data := readEvent(t, reader)
	assert.Equal(t, "connected", name)
	assert.Contains(t, data, gameID.String())

	require.NoError(t, broadcaster.PublishTurn(ctx, gameID, engine.ActionResult{
		OK:     true,
		Action: state.Action{Type: state.ActLook},
		Status: state.StatusPlaying,
		Turn:   1,
	}))

	name, data = readEvent(t, reader)
	assert.Equal(t, string(events.EventTypeTurnApplied), name)
	assert.Contains(t, data, `"look"`)
}

func TestEventsHandler_BadRequests(t *testing.T) {
	h := NewEventsHandler(nil, testLogger())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/v1/events/games/" + uuid.NewString(), http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/events/games/not-a-uuid", http.StatusBadRequest},
		{http.MethodGet, "/v1/events/other/" + uuid.NewString(), http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, tt.path)
	}
}
