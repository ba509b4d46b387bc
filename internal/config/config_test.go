package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestBuildDefaults(t *testing.T) {
	viper.Reset()
	setDefaults()
	cfg := build()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 1.65, cfg.Reorder.ServiceLevelZ)
	assert.Equal(t, 1.0, cfg.Reorder.ReviewDays)
	assert.Equal(t, 4.0, cfg.Reorder.DefaultLeadTime)
	assert.Equal(t, 28, cfg.Reorder.WindowDays)
	assert.Equal(t, 15*time.Minute, cfg.Drive.SyncInterval)
	assert.False(t, cfg.Cache.Enabled)
}

func TestBuildFromEnv(t *testing.T) {
	viper.Reset()
	setDefaults()
	viper.AutomaticEnv()
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("REORDER_SERVICE_LEVEL_Z", "2.33")

	cfg := build()
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 2.33, cfg.Reorder.ServiceLevelZ)
}

func TestDatabaseURLs(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "app", Password: "p@ss", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=app password=p@ss dbname=stock sslmode=disable", db.DSN())
	assert.Equal(t, "postgres://app:p%40ss@db:5432/stock?sslmode=disable", db.URL())
}
