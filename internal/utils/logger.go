package utils

import (
	"context"
	"time"

	"local-library/internal/middleware"
	"local-library/internal/models"
	"local-library/internal/store"
)

// AuditLogger appends an AuditLog entry for every catalog mutation.
type AuditLogger struct {
	Logs store.Collection[models.AuditLog]
}

func (l *AuditLogger) Log(ctx context.Context, entity, action string, data any) error {
	performedBy := middleware.RequestID(ctx)
	if performedBy == "" {
		performedBy = "system"
	}

	log := models.AuditLog{
		Timestamp:   time.Now(),
		Entity:      entity,
		Action:      action,
		PerformedBy: performedBy,
		Data:        data,
	}
	_, err := l.Logs.Insert(ctx, log)
	return err
}
