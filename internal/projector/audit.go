package projector

import (
	"context"

	"go.uber.org/zap"

	"taskhub/internal/contracts"
	"taskhub/internal/msg/broker"
)

// AuditLog writes every message on the topic to the log, known or not.
type AuditLog struct {
	l *zap.Logger
}

func NewAuditLog(l *zap.Logger) *AuditLog {
	return &AuditLog{l: l}
}

func (a *AuditLog) Handle(_ context.Context, msg broker.Message) error {
	a.l.Info("Event received",
		zap.String("message_id", msg.ID.String()),
		zap.String("message_type", msg.Type),
		zap.Int("size", len(msg.Body)),
		zap.Bool("known", contracts.Known(msg.Type)),
	)

	return nil
}
