package review

import "context"

// Logger defines the outbound port for structured logging.
// Implementations must be safe for concurrent use.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
	LogError(ctx context.Context, message string, fields map[string]interface{})
}
