package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TurnLog is one audited turn: which story it belonged to, what the player
// sent, and the raw completion that came back.
type TurnLog struct {
	ID          int       `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	StoryKey    string    `json:"story_key"`
	UserMessage string    `json:"user_message"`
	Response    string    `json:"response"`
	Metadata    string    `json:"metadata"`
}

type TurnMetadata struct {
	Model         string        `json:"model"`
	TranscriptLen int           `json:"transcript_len"`
	ResponseTime  time.Duration `json:"response_time_ms"`
}

// CompletionLogger persists every honored turn to SQLite for later review.
// Logging is best-effort; callers treat failures as non-fatal.
type CompletionLogger struct {
	db    *sql.DB
	model string
}

func NewCompletionLogger(path, model string) (*CompletionLogger, error) {
	if path == "" {
		path = "./turns.db"
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger := &CompletionLogger{db: db, model: model}
	if err := logger.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return logger, nil
}

func (cl *CompletionLogger) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		story_key TEXT NOT NULL,
		user_message TEXT NOT NULL,
		response TEXT NOT NULL,
		metadata TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_turns_timestamp ON turns(timestamp);
	CREATE INDEX IF NOT EXISTS idx_turns_story_key ON turns(story_key);
	`
	_, err := cl.db.Exec(schema)
	return err
}

// LogTurn satisfies the engine's audit hook. An empty userMessage marks the
// auto-fetched opening turn.
func (cl *CompletionLogger) LogTurn(storyKey, userMessage, response string, transcriptLen int, elapsed time.Duration) error {
	metadata, err := json.Marshal(TurnMetadata{
		Model:         cl.model,
		TranscriptLen: transcriptLen,
		ResponseTime:  elapsed,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = cl.db.Exec(`
		INSERT INTO turns (story_key, user_message, response, metadata)
		VALUES (?, ?, ?, ?)
	`, storyKey, userMessage, response, string(metadata))
	return err
}

// RecentTurns returns the newest audited turns, newest first.
func (cl *CompletionLogger) RecentTurns(limit int) ([]TurnLog, error) {
	rows, err := cl.db.Query(`
		SELECT id, timestamp, story_key, user_message, response, metadata
		FROM turns ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []TurnLog
	for rows.Next() {
		var entry TurnLog
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.StoryKey, &entry.UserMessage, &entry.Response, &entry.Metadata); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (cl *CompletionLogger) Close() error {
	return cl.db.Close()
}
