package config

import (
	"testing"

	"lending/core"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	var cfg core.Config
	defaults(&cfg)
	assert.Equal(t, "UTC", cfg.App.Location)
	assert.Equal(t, "@every 10s", cfg.Monitor.Schedule)
	assert.Equal(t, "lending", cfg.Auth.Issuer)

	cfg.Monitor.Schedule = "@every 1m"
	defaults(&cfg)
	assert.Equal(t, "@every 1m", cfg.Monitor.Schedule)
}
