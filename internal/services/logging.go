package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// ServiceLogger records the outcome of rejected session operations at a level
// matching the kind of failure.
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, component string) *ServiceLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceLogger{logger: logger.With("component", component)}
}

// classify maps an operation error to a log level and status label
func classify(err error) (slog.Level, string) {
	switch {
	case err == nil:
		return slog.LevelInfo, "success"
	case IsNotFound(err):
		return slog.LevelInfo, "not_found"
	case IsInvalidState(err):
		return slog.LevelWarn, "invalid_state"
	case IsValidation(err) || IsBusinessRule(err):
		return slog.LevelWarn, "validation_error"
	case IsUnauthorized(err) || IsForbidden(err):
		return slog.LevelWarn, "unauthorized"
	case IsConflict(err):
		return slog.LevelWarn, "conflict"
	}
	return slog.LevelError, "error"
}

func (l *ServiceLogger) LogOperation(ctx context.Context, operation, actorID, sessionID string, err error) {
	level, status := classify(err)

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("actor_id", actorID),
		slog.String("session_id", sessionID),
		slog.String("status", status),
	}

	var (
		stateErr    *InvalidStateError
		ruleErr     *BusinessRuleError
		fieldErrs   ValidationErrors
		singleField *ValidationError
	)
	switch {
	case err == nil:
	case errors.As(err, &stateErr):
		attrs = append(attrs, slog.String("current_state", stateErr.Current), slog.Any("required_state", stateErr.Required))
	case errors.As(err, &ruleErr):
		attrs = append(attrs, slog.String("business_rule", ruleErr.Rule))
	case errors.As(err, &fieldErrs):
		attrs = append(attrs, slog.Int("validation_errors_count", len(fieldErrs)))
	case errors.As(err, &singleField):
		attrs = append(attrs, slog.String("field", singleField.Field))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	l.logger.LogAttrs(ctx, level, operation+" "+status, attrs...)
}

var sensitiveKeys = []string{"password", "token", "key", "secret", "auth", "credential", "image", "frame"}

// redactMetadata copies client-supplied proctoring metadata, masking keys that
// may carry credentials or captured frames. Nested maps are redacted too.
func redactMetadata(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch {
		case isSensitiveKey(k):
			out[k] = "[REDACTED]"
		default:
			if nested, ok := v.(map[string]any); ok {
				v = redactMetadata(nested)
			}
			out[k] = v
		}
	}
	return out
}

func isSensitiveKey(k string) bool {
	lower := strings.ToLower(k)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
