package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/toolhouse/pkg/registry"
)

// SanitizeMiddleware cleans every string argument before the tool runs and
// rejects oversized or invalid UTF-8 input. A limit of zero or less falls
// back to MaxInputSize.
func SanitizeMiddleware(logger *slog.Logger, limit int) registry.Middleware {
	if limit <= 0 {
		limit = MaxInputSize()
	}
	return func(name string, next registry.ToolFunction) registry.ToolFunction {
		return func(ctx context.Context, args map[string]any) (any, error) {
			clean, err := sanitizeArgs(args, limit)
			if err != nil {
				logger.Warn("Tool input rejected", "tool", name, "error", err)
				return nil, err
			}
			return next(ctx, clean)
		}
	}
}

// LoggingMiddleware logs each tool call with its duration and outcome.
func LoggingMiddleware(logger *slog.Logger) registry.Middleware {
	return func(name string, next registry.ToolFunction) registry.ToolFunction {
		return func(ctx context.Context, args map[string]any) (any, error) {
			start := time.Now()
			out, err := next(ctx, args)
			if err != nil {
				logger.Info("Tool call failed", "tool", name, "duration", time.Since(start), "error", err)
				return out, err
			}
			logger.Debug("Tool call", "tool", name, "duration", time.Since(start))
			return out, nil
		}
	}
}
