package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/proficiency-service/internal/session"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		level  slog.Level
		status string
	}{
		{nil, slog.LevelInfo, "success"},
		{ErrSessionNotFound, slog.LevelInfo, "not_found"},
		{invalidStateFixture(), slog.LevelWarn, "invalid_state"},
		{fmt.Errorf("toggle: %w", session.ErrSkillLimitReached), slog.LevelWarn, "validation_error"},
		{ErrTimeExpired, slog.LevelWarn, "conflict"},
		{fmt.Errorf("submit: %w", ErrNotCurrentQuestion), slog.LevelWarn, "conflict"},
		{fmt.Errorf("disk on fire"), slog.LevelError, "error"},
	}
	for _, tt := range tests {
		level, status := classify(tt.err)
		assert.Equal(t, tt.level, level, "%v", tt.err)
		assert.Equal(t, tt.status, status, "%v", tt.err)
	}
}

func invalidStateFixture() error {
	return fmt.Errorf("submit: %w", &InvalidStateError{Operation: "submit answer", Current: "complete", Required: []string{"in_progress"}})
}

func TestLogOperationAddsStateDetails(t *testing.T) {
	var buf bytes.Buffer
	l := NewServiceLogger(slog.New(slog.NewJSONHandler(&buf, nil)), "sessions")

	l.LogOperation(context.Background(), "submit_answer", "cand-1", "s-1", invalidStateFixture())

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"component":"sessions"`)
	assert.Contains(t, out, `"current_state":"complete"`)
	assert.Contains(t, out, `"status":"invalid_state"`)
}

func TestRedactMetadata(t *testing.T) {
	got := redactMetadata(map[string]any{
		"note":       "blur",
		"AuthToken":  "abc",
		"frame_data": "base64",
		"device":     map[string]any{"api_key": "k", "model": "cam"},
	})

	assert.Equal(t, "blur", got["note"])
	assert.Equal(t, "[REDACTED]", got["AuthToken"])
	assert.Equal(t, "[REDACTED]", got["frame_data"])
	assert.Equal(t, map[string]any{"api_key": "[REDACTED]", "model": "cam"}, got["device"])
	assert.Nil(t, redactMetadata(nil))
}
