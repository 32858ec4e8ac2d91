package config

import (
	"lending/core"

	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file, env vars prefixed with LENDING override it
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("LENDING")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	defaults(config)
	return nil
}

func defaults(cfg *core.Config) {
	if cfg.App.Location == "" {
		cfg.App.Location = "UTC"
	}

	if cfg.Monitor.Schedule == "" {
		cfg.Monitor.Schedule = "@every 10s"
	}

	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "lending"
	}
}
