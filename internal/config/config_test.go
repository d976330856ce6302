package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("MIGRATE_ON_START", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("NOTIFY_HOUR", "")

	cfg := Load()

	require.Equal(t, "3001", cfg.AppPort)
	require.False(t, cfg.MigrateOnStart)
	require.Equal(t, 0, cfg.NotifyHour)
}

func TestLoad_MigrateOnStart(t *testing.T) {
	t.Setenv("MIGRATE_ON_START", "true")
	require.True(t, Load().MigrateOnStart)

	// Anything but the literal "true" leaves migrations off.
	t.Setenv("MIGRATE_ON_START", "1")
	require.False(t, Load().MigrateOnStart)
}

func TestLoad_DatabaseURLWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:pw@db:5432/diary")

	require.Equal(t, "postgres://app:pw@db:5432/diary", Load().DSN)
}

func TestLoad_DSNAssembledFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_USER", "diary")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("POSTGRES_DB", "diary")
	t.Setenv("POSTGRES_PORT", "5433")

	cfg := Load()
	require.Contains(t, cfg.DSN, "host=db.internal")
	require.Contains(t, cfg.DSN, "port=5433")
	require.Contains(t, cfg.DSN, "dbname=diary")
}

func TestLoad_NotifyHour(t *testing.T) {
	t.Setenv("NOTIFY_HOUR", "8")
	require.Equal(t, 8, Load().NotifyHour)

	t.Setenv("NOTIFY_HOUR", "not-a-number")
	require.Equal(t, 0, Load().NotifyHour)
}
