package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/jwebster45206/mansion-engine/pkg/scenario"
	"github.com/jwebster45206/mansion-engine/pkg/storage"
)

// ListScenarios maps scenario names to file names across all scenario
// sources. A file shadowed by an earlier source is not listed, and on a
// name clash the earlier source wins. Invalid files are skipped.
func (r *RedisStorage) ListScenarios(ctx context.Context) (map[string]string, error) {
	result := make(map[string]string)
	files := mapset.New[string]()
	for _, fsys := range r.scenarios {
		list, err := scenario.ListFS(fsys)
		if err != nil {
			r.logger.Error("Failed to list scenarios", "error", err)
			return nil, fmt.Errorf("failed to list scenarios: %w", err)
		}
		for _, name := range slices.Sorted(maps.Keys(list)) {
			file := list[name]
			if files.Has(file) {
				continue
			}
			files.Put(file)
			if _, taken := result[name]; !taken {
				result[name] = file
			}
		}
	}
	return result, nil
}

// GetScenario loads and validates a scenario by file name.
func (r *RedisStorage) GetScenario(ctx context.Context, filename string) (*scenario.Scenario, error) {
	for _, fsys := range r.scenarios {
		s, err := scenario.LoadFS(fsys, filename)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrInvalid) {
			r.logger.Error("Failed to load scenario", "filename", filename, "error", err)
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", storage.ErrScenarioNotFound, filename)
}
