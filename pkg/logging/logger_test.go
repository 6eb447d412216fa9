package logging

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryOutput captures log entries for assertions.
type memoryOutput struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (m *memoryOutput) Write(e LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryOutput) Sync() error  { return nil }
func (m *memoryOutput) Close() error { return nil }

func TestSeverityFiltering(t *testing.T) {
	out := &memoryOutput{}
	logger := NewLogger(Config{Severity: WARN, Outputs: []Output{out}})

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	require.Len(t, out.entries, 2)
	assert.Equal(t, WARN, out.entries[0].Severity)
	assert.Equal(t, ERROR, out.entries[1].Severity)
}

func TestContextFields(t *testing.T) {
	out := &memoryOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})

	ctx := WithRunID(WithModelID(context.Background(), "claude-sonnet-4-5"), "run-42")
	logger.Info(ctx, "generation %d complete", 3)

	require.Len(t, out.entries, 1)
	entry := out.entries[0]
	assert.Equal(t, "claude-sonnet-4-5", entry.ModelID)
	assert.Equal(t, "run-42", entry.Fields["run_id"])
	assert.Equal(t, "generation 3 complete", entry.Message)
}

func TestDefaultFields(t *testing.T) {
	out := &memoryOutput{}
	logger := NewLogger(Config{
		Severity:      INFO,
		Outputs:       []Output{out},
		DefaultFields: map[string]interface{}{"component": "optimizer"},
	})

	logger.Info(context.Background(), "hello")

	require.Len(t, out.entries, 1)
	assert.Equal(t, "optimizer", out.entries[0].Fields["component"])
}

func TestTokenTotals(t *testing.T) {
	out := &memoryOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})

	logger.TokenTotals(context.Background(), 120, 30)

	require.Len(t, out.entries, 1)
	entry := out.entries[0]
	assert.Equal(t, DEBUG, entry.Severity)
	require.NotNil(t, entry.TokenInfo)
	assert.Equal(t, 120, entry.TokenInfo.PromptTokens)
	assert.Equal(t, 30, entry.TokenInfo.CompletionTokens)
	assert.Equal(t, 150, entry.TokenInfo.TotalTokens)
	assert.Contains(t, entry.Message, "total=150")
}

func TestTokenTotalsFilteredBySeverity(t *testing.T) {
	out := &memoryOutput{}
	logger := NewLogger(Config{Severity: INFO, Outputs: []Output{out}})

	logger.TokenTotals(context.Background(), 10, 5)
	assert.Empty(t, out.entries)
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, DEBUG, ParseSeverity("DEBUG"))
	assert.Equal(t, ERROR, ParseSeverity("ERROR"))
	assert.Equal(t, INFO, ParseSeverity("bogus"))
}

func TestFormatFieldsTruncatesPrompts(t *testing.T) {
	long := strings.Repeat("x", 200)
	formatted := formatFields(map[string]interface{}{"prompt": long})
	assert.Contains(t, formatted, "...")
	assert.Less(t, len(formatted), 150)
}

func TestGlobalLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	custom := NewLogger(Config{Severity: ERROR})
	SetLogger(custom)
	assert.Same(t, custom, GetLogger())
}
