package daemon_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"local-library/internal/constants"
	"local-library/internal/daemon"
	"local-library/internal/models"
	"local-library/internal/store"
	"local-library/internal/utils"
)

func TestExportPending(t *testing.T) {
	ctx := context.Background()
	logs := store.NewMemory[models.AuditLog]("audit_logs")
	audit := utils.AuditLogger{Logs: logs}

	require.NoError(t, audit.Log(ctx, models.GenreEntity, constants.Create, models.Genre{Name: "Fantasy"}))
	require.NoError(t, audit.Log(ctx, models.GenreEntity, constants.Delete, "abc"))

	core, recorded := observer.New(zap.InfoLevel)
	exporter := daemon.LogExporter{Logs: logs, Logger: zap.New(core)}

	n, err := exporter.ExportPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries := recorded.FilterMessage("audit").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "create", entries[0].ContextMap()["action"])
	assert.Equal(t, "system", entries[0].ContextMap()["performed_by"])

	pending, err := logs.Count(ctx, store.Filter{"exported": false})
	require.NoError(t, err)
	assert.Zero(t, pending)

	n, err = exporter.ExportPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
