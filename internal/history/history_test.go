package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/gpt-relay-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEmpty(t *testing.T) {
	l := NewLog()
	assert.Empty(t, l.List(1))
}

func TestAppendPreservesOrder(t *testing.T) {
	l := NewLog()
	l.Append(1, models.CommandStart, nil, "/start")
	l.Append(1, models.CommandAsk, map[string]string{"question": "What is 2+2?"}, "What is 2+2?")
	l.Append(1, models.CommandHistory, nil, "/history")

	entries := l.List(1)
	require.Len(t, entries, 3)
	assert.Equal(t, models.CommandStart, entries[0].Command)
	assert.Equal(t, models.CommandAsk, entries[1].Command)
	assert.Equal(t, "What is 2+2?", entries[1].Params["question"])
	assert.Equal(t, models.CommandHistory, entries[2].Command)
}

func TestUsersAreIsolated(t *testing.T) {
	l := NewLog()
	l.Append(1, models.CommandStart, nil, "/start")
	l.Append(2, models.CommandAsk, nil, "hi")

	assert.Len(t, l.List(1), 1)
	assert.Len(t, l.List(2), 1)
	assert.Empty(t, l.List(3))
}

func TestListReturnsCopy(t *testing.T) {
	l := NewLog()
	l.Append(1, models.CommandStart, nil, "/start")

	entries := l.List(1)
	entries[0].RawText = "mutated"

	assert.Equal(t, "/start", l.List(1)[0].RawText)
}

func TestConcurrentAppend(t *testing.T) {
	l := NewLog()
	const n = 100

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Append(7, models.CommandAsk, nil, fmt.Sprintf("q%d", i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, l.List(7), n)
}
