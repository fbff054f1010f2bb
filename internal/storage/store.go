// Package storage persists story memories as JSON files under a data
// directory, one file per story key, with a separate pointer file naming the
// story currently being played.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"visualnovel/internal/novel"
)

// StoryKeyPrefix marks every persisted story memory key.
const StoryKeyPrefix = "story-"

const currentPointerFile = "current"

// FileStore is the storage adapter backed by the local filesystem. A single
// mutex serializes read-modify-write of memory blobs so concurrent access
// within the process cannot lose updates.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// NewStoryKey builds a unique story key from the player name and the clock.
// The name is sanitized so keys stay safe as file names.
func NewStoryKey(userName string) string {
	var b strings.Builder
	for _, r := range userName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return fmt.Sprintf("%s%s-%d", StoryKeyPrefix, b.String(), time.Now().UnixMilli())
}

func (s *FileStore) memoryPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// SaveMemory writes the blob atomically: temp file first, then rename.
func (s *FileStore) SaveMemory(key string, m *novel.StoryMemory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(key, m)
}

func (s *FileStore) saveLocked(key string, m *novel.StoryMemory) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal memory %q: %w", key, err)
	}
	path := s.memoryPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write memory %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit memory %q: %w", key, err)
	}
	return nil
}

// LoadMemory returns (nil, nil) when no blob exists for the key.
func (s *FileStore) LoadMemory(key string) (*novel.StoryMemory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.memoryPath(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read memory %q: %w", key, err)
	}
	var m novel.StoryMemory
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode memory %q: %w", key, err)
	}
	return &m, nil
}

// RemoveMemory deletes a story. Clearing the current pointer if it names the
// removed story is the caller's concern; removing a missing key is not an
// error.
func (s *FileStore) RemoveMemory(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.memoryPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove memory %q: %w", key, err)
	}
	return nil
}

// ListStories returns every persisted story key, sorted.
func (s *FileStore) ListStories() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, StoryKeyPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// SetCurrentStory records which story subsequent turns belong to.
func (s *FileStore) SetCurrentStory(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(filepath.Join(s.dir, currentPointerFile), []byte(key), 0o644); err != nil {
		return fmt.Errorf("set current story: %w", err)
	}
	return nil
}

// CurrentStory returns the current story key, or "" when none is set.
func (s *FileStore) CurrentStory() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, currentPointerFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ClearCurrentStory drops the pointer, e.g. after deleting the story it
// names.
func (s *FileStore) ClearCurrentStory() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.dir, currentPointerFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear current story: %w", err)
	}
	return nil
}

// CreateStory validates the profile, persists a fresh memory for it, and
// points the current-story pointer at it.
func (s *FileStore) CreateStory(p novel.Profile, modeName string) (string, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("invalid profile: %w", err)
	}
	if p.Timestamp == "" {
		p.Timestamp = time.Now().Format(time.RFC3339)
	}
	key := NewStoryKey(p.UserName)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveLocked(key, &novel.StoryMemory{Setup: p, Mode: modeName, ChatHistory: []novel.MemoryRecord{}}); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, currentPointerFile), []byte(key), 0o644); err != nil {
		return "", fmt.Errorf("set current story: %w", err)
	}
	return key, nil
}
