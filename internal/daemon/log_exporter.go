package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"local-library/internal/models"
	"local-library/internal/store"
	"local-library/internal/utils"
)

type LogExporter struct {
	Logs     store.Collection[models.AuditLog]
	Logger   *zap.Logger
	Interval time.Duration
}

// InitLogExporter exports pending audit entries every Interval until ctx is done.
func (l *LogExporter) InitLogExporter(ctx context.Context) {
	if l.Interval <= 0 {
		l.Logger.Info("audit export disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(l.Interval)
		defer ticker.Stop()

		for {
			if _, err := l.ExportPending(ctx); err != nil && ctx.Err() == nil {
				l.Logger.Warn("audit export failed", zap.Error(err))
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// ExportPending exports every unexported entry and marks it exported.
func (l *LogExporter) ExportPending(ctx context.Context) (int, error) {
	logs, err := l.Logs.Find(ctx, store.Filter{"exported": false}, store.Asc("timestamp"))
	if err != nil {
		return 0, err
	}
	if len(logs) == 0 {
		return 0, nil
	}

	if err := utils.ExportData(l.Logger, logs); err != nil {
		return 0, err
	}

	for _, log := range logs {
		log.Exported = true
		if _, err := l.Logs.UpdateByID(ctx, log.ID, log); err != nil {
			return 0, err
		}
	}
	return len(logs), nil
}
