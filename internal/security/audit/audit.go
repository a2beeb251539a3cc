package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/citas/internal/infrastructure/logger"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{logger: l.With(slog.String("component", "audit"))}
}

func (al *Logger) LogAction(ctx context.Context, userID int64, role, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.Int64("user_id", userID),
		slog.String("role", role),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", logger.RequestID(ctx)),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogDenied(ctx context.Context, userID int64, role, reason string) {
	al.LogAction(ctx, userID, role, "access_denied", "api", "", "denied", reason)
}

func (al *Logger) LogLogin(ctx context.Context, email, status string) {
	al.logger.Info("audit",
		slog.String("action", "login"),
		slog.String("email", email),
		slog.String("status", status),
		slog.String("request_id", logger.RequestID(ctx)),
		slog.Time("timestamp", time.Now()),
	)
}
