package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/skiff-deploy/skiff/internal/core/domain"
)

// Config carries everything the process needs, resolved once at startup.
type Config struct {
	Target     domain.DeploymentTarget
	ListenAddr string // control API listen address (serve subcommand)
	LogLevel   string
}

// FromEnv returns the built-in deployment target overridden by SKIFF_* env
// vars. No config file is read.
func FromEnv() (Config, error) {
	cfg := Config{
		Target: domain.DeploymentTarget{
			Project:   "skiff-web",
			Image:     "skiff-web",
			Container: "skiff-web",
			HostPort:  8080,
			Source:    "web",
		},
		ListenAddr: ":3000",
		LogLevel:   "info",
	}

	if v := os.Getenv("SKIFF_PROJECT"); v != "" {
		cfg.Target.Project = v
	}
	if v := os.Getenv("SKIFF_IMAGE"); v != "" {
		cfg.Target.Image = v
	}
	if v := os.Getenv("SKIFF_CONTAINER"); v != "" {
		cfg.Target.Container = v
	}
	if v := os.Getenv("SKIFF_SOURCE"); v != "" {
		cfg.Target.Source = v
	}
	if v := os.Getenv("SKIFF_HOST_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("invalid SKIFF_HOST_PORT %q", v)
		}
		cfg.Target.HostPort = port
	}
	if v := os.Getenv("SKIFF_LISTEN"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("SKIFF_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}
