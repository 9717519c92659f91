package configs_test

import (
	"testing"
	"time"

	"local-library/configs"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGO_URI", "DB_NAME", "STORE", "REQUEST_TIMEOUT", "AUDIT_EXPORT_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := configs.LoadConfig()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.DBName != "local_library" {
		t.Errorf("DBName = %q", cfg.DBName)
	}
	if cfg.Store != configs.StoreMongo {
		t.Errorf("Store = %q", cfg.Store)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE", "memory")
	t.Setenv("REQUEST_TIMEOUT", "250ms")
	t.Setenv("AUDIT_EXPORT_INTERVAL", "1m")

	cfg := configs.LoadConfig()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Store != configs.StoreMemory {
		t.Errorf("Store = %q", cfg.Store)
	}
	if cfg.RequestTimeout != 250*time.Millisecond {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.AuditExportInterval != time.Minute {
		t.Errorf("AuditExportInterval = %v", cfg.AuditExportInterval)
	}
}
