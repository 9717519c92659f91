package utils_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"local-library/internal/constants"
	"local-library/internal/middleware"
	"local-library/internal/models"
	"local-library/internal/store"
	"local-library/internal/utils"
)

func TestAuditLoggerWithoutRequest(t *testing.T) {
	logs := store.NewMemory[models.AuditLog](store.AuditLogsCollection)
	logger := &utils.AuditLogger{Logs: logs}

	require.NoError(t, logger.Log(context.Background(), models.GenreEntity, constants.Create, models.Genre{Name: "Poetry"}))

	entries, err := logs.Find(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "system", entries[0].PerformedBy)
	assert.Equal(t, models.GenreEntity, entries[0].Entity)
	assert.Equal(t, constants.Create, entries[0].Action)
	assert.False(t, entries[0].Exported)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestAuditLoggerRecordsRequestID(t *testing.T) {
	logs := store.NewMemory[models.AuditLog](store.AuditLogsCollection)
	logger := &utils.AuditLogger{Logs: logs}

	handler := middleware.RequestLogger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, logger.Log(r.Context(), models.AuthorEntity, constants.Delete, nil))
	}))

	req := httptest.NewRequest(http.MethodPost, "/catalog/author/x/delete", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries, err := logs.Find(context.Background(), store.Filter{"performed_by": "req-42"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportData(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)

	err := utils.ExportData(zap.New(core), []models.AuditLog{
		{Entity: models.BookEntity, Action: constants.Update, PerformedBy: "system"},
	})
	require.NoError(t, err)

	entries := recorded.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	assert.Equal(t, models.BookEntity, entries[0].ContextMap()["entity"])
	assert.Equal(t, constants.Update, entries[0].ContextMap()["action"])
}
