package history

import (
	"sync"

	"github.com/gpt-relay-bot/internal/models"
)

// Log is the in-memory interaction log: an append-only ordered sequence of
// handled commands per user. No persistence and no capacity bound; the record
// is intentionally lost on restart.
type Log struct {
	mu      sync.RWMutex
	entries map[int64][]models.LogEntry
}

// NewLog creates an empty interaction log
func NewLog() *Log {
	return &Log{entries: make(map[int64][]models.LogEntry)}
}

// Append records one handled command for the user.
func (l *Log) Append(userID int64, command models.Command, params map[string]string, rawText string) {
	if params == nil {
		params = map[string]string{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[userID] = append(l.entries[userID], models.LogEntry{
		Command: command,
		Params:  params,
		RawText: rawText,
	})
}

// List returns the user's entries oldest first. The returned slice is a copy.
func (l *Log) List(userID int64) []models.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	es := l.entries[userID]
	out := make([]models.LogEntry, len(es))
	copy(out, es)
	return out
}
