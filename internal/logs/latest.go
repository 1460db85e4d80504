package logs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoLogs reports that no run log matched the requested stage.
var ErrNoLogs = errors.New("no run logs found")

// Latest returns the most recent run log in dir. When stage is non-empty only
// logs named `<stage>-<runID>.log` are considered. Run IDs are UTC timestamps,
// so lexical order is chronological.
func Latest(dir, stage string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoLogs
		}
		return "", fmt.Errorf("read log dir: %w", err)
	}
	prefix := ""
	if stage = strings.TrimSpace(stage); stage != "" {
		prefix = stage + "-"
	}

	type candidate struct {
		name  string
		runID string
	}
	var candidates []candidate
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".log" {
			continue
		}
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		base := strings.TrimSuffix(name, ".log")
		idx := strings.LastIndex(base, "-")
		if idx < 0 {
			continue
		}
		candidates = append(candidates, candidate{name: name, runID: base[idx+1:]})
	}
	if len(candidates) == 0 {
		return "", ErrNoLogs
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].runID == candidates[j].runID {
			return candidates[i].name < candidates[j].name
		}
		return candidates[i].runID < candidates[j].runID
	})
	return filepath.Join(dir, candidates[len(candidates)-1].name), nil
}
