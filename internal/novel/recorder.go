package novel

import (
	"errors"
	"fmt"
	"time"

	"visualnovel/internal/debug"
)

var (
	// ErrNoCurrentStory means no story pointer is set; the player has to go
	// through setup first.
	ErrNoCurrentStory = errors.New("no current story found, start a new game first")
	// ErrNoMemory means the current story pointer names a key with no
	// persisted memory behind it.
	ErrNoMemory = errors.New("no memory data found for the current story")
)

// MemoryStore is the slice of the storage adapter the core needs: load and
// flush one story's memory blob, and resolve the process-wide current story
// pointer. LoadMemory returns (nil, nil) when no blob exists for the key.
type MemoryStore interface {
	LoadMemory(key string) (*StoryMemory, error)
	SaveMemory(key string, m *StoryMemory) error
	CurrentStory() string
}

// Recorder appends decision records to the current story's memory and keeps
// its rolling summary up to date. It holds a working copy of the memory only
// for the duration of one record; the store stays the long-lived owner.
type Recorder struct {
	store MemoryStore
	log   *debug.Logger
	now   func() time.Time
}

func NewRecorder(store MemoryStore, log *debug.Logger) *Recorder {
	return &Recorder{store: store, log: log, now: time.Now}
}

// Record persists one committed player decision. Both failure modes here are
// user-facing setup errors, not engine bugs, so they are logged and returned
// rather than swallowed.
func (r *Recorder) Record(speakerText, userChoice, userName, speakerName string) error {
	key := r.store.CurrentStory()
	if key == "" {
		r.log.Printf("memory record rejected: %v", ErrNoCurrentStory)
		return ErrNoCurrentStory
	}

	memory, err := r.store.LoadMemory(key)
	if err != nil {
		return fmt.Errorf("load memory for %q: %w", key, err)
	}
	if memory == nil {
		r.log.Printf("memory record rejected for %q: %v", key, ErrNoMemory)
		return ErrNoMemory
	}

	memory.ChatHistory = append(memory.ChatHistory, MemoryRecord{
		Timestamp:   r.now().Format(time.RFC3339),
		SpeakerName: speakerName,
		SpeakerText: speakerText,
		UserChoice:  userChoice,
		UserName:    userName,
	})
	memory.RebuildSummary()

	if err := r.store.SaveMemory(key, memory); err != nil {
		return fmt.Errorf("save memory for %q: %w", key, err)
	}
	return nil
}

// Summary returns the current story's rolling summary, or the empty string
// when there is no story or history yet.
func (r *Recorder) Summary() string {
	key := r.store.CurrentStory()
	if key == "" {
		return ""
	}
	memory, err := r.store.LoadMemory(key)
	if err != nil || memory == nil {
		return ""
	}
	return memory.Summary
}
