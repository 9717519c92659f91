package utils

import (
	"go.uber.org/zap"

	"local-library/internal/models"
)

// ExportData ships audit entries to the structured log.
func ExportData(logger *zap.Logger, logs []models.AuditLog) error {
	for _, log := range logs {
		logger.Info("audit",
			zap.Time("timestamp", log.Timestamp),
			zap.String("id", log.ID.Hex()),
			zap.String("entity", log.Entity),
			zap.String("action", log.Action),
			zap.String("performed_by", log.PerformedBy),
			zap.Any("data", log.Data),
		)
	}
	return nil
}
