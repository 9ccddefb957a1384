package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Email.Timeout)
	assert.Equal(t, "log", cfg.Email.Provider)
	assert.False(t, cfg.Workflow.RequireApprovalBeforeClosure)
}

func TestNew_ReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("NOTIFY_EMAIL_TIMEOUT", "3s")
	t.Setenv("WORKFLOW_REQUIRE_APPROVAL_BEFORE_CLOSURE", "true")
	t.Setenv("REDIS_DB", "4")

	cfg := New()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Email.Timeout)
	assert.True(t, cfg.Workflow.RequireApprovalBeforeClosure)
	assert.Equal(t, 4, cfg.Redis.DB)
}

func TestNew_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("NOTIFY_EMAIL_TIMEOUT", "ten seconds")
	t.Setenv("DATABASE_AUTO_MIGRATE", "maybe")

	cfg := New()

	assert.Equal(t, 10*time.Second, cfg.Email.Timeout)
	assert.True(t, cfg.Postgres.AutoMigrate)
}
