package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg := LoadConfig()

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.False(t, cfg.Database.UseSSL)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, time.Hour, cfg.Auth.RevocationPruneEvery)
	assert.Equal(t, "account-events", cfg.MQ.Channel)
	assert.Equal(t, "internal/db/migrations", cfg.MigrationsPath)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_USE_SSL", "true")
	t.Setenv("JWT_SECRET", "  s3cret  ")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("MQ_BACKEND", "RabbitMQ")
	t.Setenv("STORAGE_BACKEND", "minio")

	cfg := LoadConfig()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.True(t, cfg.Database.UseSSL)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
	assert.Equal(t, MQBackendRabbitMQ, cfg.MQ.Backend)
	assert.Equal(t, StorageBackendMinio, cfg.Storage.Backend)
}

func TestLoadConfig_BadDurationFallsBack(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "soon")

	cfg := LoadConfig()

	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
}

func TestValidate(t *testing.T) {
	valid := Config{Auth: AuthConfig{JWTSecret: "k", TokenTTL: time.Minute}}
	require.NoError(t, valid.Validate())

	missingSecret := valid
	missingSecret.Auth.JWTSecret = ""
	assert.Error(t, missingSecret.Validate())

	zeroTTL := valid
	zeroTTL.Auth.TokenTTL = 0
	assert.Error(t, zeroTTL.Validate())

	badMQ := valid
	badMQ.MQ.Backend = "kafka"
	assert.Error(t, badMQ.Validate())

	badStorage := valid
	badStorage.Storage.Backend = "s3"
	assert.Error(t, badStorage.Validate())
}
