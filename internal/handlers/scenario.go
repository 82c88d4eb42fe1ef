package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/jwebster45206/mansion-engine/pkg/storage"
)

type ScenarioHandler struct {
	log     *slog.Logger
	storage storage.Storage
}

func NewScenarioHandler(log *slog.Logger, storage storage.Storage) *ScenarioHandler {
	return &ScenarioHandler{
		log:     log,
		storage: storage,
	}
}

// ScenarioSummary is one entry of the scenario list.
type ScenarioSummary struct {
	Name     string `json:"name"`
	FileName string `json:"file_name"`
}

// ServeHTTP handles
// GET /v1/scenarios        - List scenarios
// GET /v1/scenarios/{file} - Read a scenario definition
func (h *ScenarioHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	filename := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/scenarios"), "/")
	if filename == "" {
		h.handleList(w, r)
		return
	}
	h.handleGet(w, r, filename)
}

func (h *ScenarioHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.storage.ListScenarios(r.Context())
	if err != nil {
		h.log.Error("Failed to list scenarios", "error", err)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to list scenarios")
		return
	}

	out := make([]ScenarioSummary, 0, len(list))
	for name, file := range list {
		out = append(out, ScenarioSummary{Name: name, FileName: file})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileName < out[j].FileName })
	writeJSON(w, h.log, http.StatusOK, out)
}

func (h *ScenarioHandler) handleGet(w http.ResponseWriter, r *http.Request, filename string) {
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") {
		writeError(w, h.log, http.StatusBadRequest, "Invalid filename")
		return
	}

	s, err := h.storage.GetScenario(r.Context(), ensureJSONExtension(filename))
	if err != nil {
		if errors.Is(err, storage.ErrScenarioNotFound) {
			writeError(w, h.log, http.StatusNotFound, "Scenario not found")
			return
		}
		h.log.Error("Failed to get scenario", "error", err, "filename", filename)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to retrieve scenario")
		return
	}
	writeJSON(w, h.log, http.StatusOK, s)
}
