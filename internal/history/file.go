package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON file per agent under a base directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(agentID string) string {
	return filepath.Join(s.dir, agentID+".json")
}

func (s *FileStore) Load(ctx context.Context, agentID, systemPrompt string) ([]Message, error) {
	data, err := os.ReadFile(s.path(agentID))
	if errors.Is(err, fs.ErrNotExist) {
		return s.Reset(ctx, agentID, systemPrompt)
	}
	if err != nil {
		return nil, fmt.Errorf("loading history for %s: %w", agentID, err)
	}

	var log []Message
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("parsing history for %s: %w", agentID, err)
	}
	return log, nil
}

func (s *FileStore) Save(ctx context.Context, agentID string, log []Message) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history for %s: %w", agentID, err)
	}
	if err := os.WriteFile(s.path(agentID), data, 0o600); err != nil {
		return fmt.Errorf("writing history for %s: %w", agentID, err)
	}
	return nil
}

func (s *FileStore) Reset(ctx context.Context, agentID, systemPrompt string) ([]Message, error) {
	log := Seed(systemPrompt)
	if err := s.Save(ctx, agentID, log); err != nil {
		return nil, err
	}
	return log, nil
}
