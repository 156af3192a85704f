package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Persistence handles the disk I/O for the MemStore: one JSON file per
// bucket under a data directory.
type Persistence struct {
	DataDir string
	mu      sync.Mutex // Serializes writes to the filesystem
}

// NewPersistence initializes a persistence handler, creating the data
// directory if it does not exist.
func NewPersistence(dir string) (*Persistence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Persistence{DataDir: dir}, nil
}

// SaveBucket writes a bucket's data to its JSON file atomically: the
// content goes to a temp file first, then an os.Rename swaps it in, so a
// crash leaves either the old file or the new one, never a torn write.
func (p *Persistence) SaveBucket(bucket string, data map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	filePath := filepath.Join(p.DataDir, fmt.Sprintf("%s.json", bucket))
	tempPath := filePath + ".tmp"

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tempPath, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tempPath, filePath)
}

// LoadAll reads every bucket file in the data directory. Unreadable or
// unparsable files are skipped with a warning; a stored record is never
// worth refusing to start over.
func (p *Persistence) LoadAll() (map[string]map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	all := make(map[string]map[string]any)

	files, err := os.ReadDir(p.DataDir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if filepath.Ext(file.Name()) != ".json" {
			continue
		}
		bucket := file.Name()[:len(file.Name())-len(".json")]

		content, err := os.ReadFile(filepath.Join(p.DataDir, file.Name()))
		if err != nil {
			slog.Warn("could not read bucket file", "file", file.Name(), "err", err)
			continue
		}

		var data map[string]any
		if err := json.Unmarshal(content, &data); err != nil {
			slog.Warn("could not decode bucket file", "file", file.Name(), "err", err)
			continue
		}
		all[bucket] = data
	}
	return all, nil
}
