package config_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"mandi-backend/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "STORE_TIMEOUT_SECONDS", "BODY_LIMIT_BYTES", "BODY_LIMIT_MB", "WHATSAPP_REGION", "REDIS_ADDRESS"} {
		t.Setenv(k, "")
	}

	cfg := config.Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 4*1024*1024, cfg.BodyLimitBytes)
	assert.Equal(t, "IN", cfg.WhatsAppRegion)
	assert.Empty(t, cfg.RedisAddress)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("STORE_TIMEOUT_SECONDS", "2")
	t.Setenv("LOCK_TTL_SECONDS", "not-a-number")
	t.Setenv("DB_TRACING", "true")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_SECRET", "legacy")

	cfg := config.Load()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 15*time.Second, cfg.LockTTL, "unparsable values fall back to the default")
	assert.True(t, cfg.DBTracing)
	assert.Equal(t, "legacy", cfg.JWTSecret)
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	log := config.NewLogger("bogus", &buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())

	config.LogError(log, "services", "CreateSale", "reserve bag", "LOT1", errors.New("boom"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "boom", line["msg"])
	assert.Equal(t, "services", line["module"])
	assert.Equal(t, "LOT1", line["data"])
}
