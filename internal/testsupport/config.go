// Package testsupport provides helpers for building test fixtures.
package testsupport

import (
	"path/filepath"
	"testing"

	"keel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ManifestDir = filepath.Join(base, "manifests")
	cfg.IRODS.AdminUsers = []string{"irods-admin"}
	cfg.MLWH.Host = "localhost"
	cfg.MLWH.User = "test"
	cfg.MLWH.Password = "test"
	cfg.MLWH.Database = "mlwarehouse_test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithZone overrides the catalog zone on the test config.
func WithZone(zone string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.IRODS.Zone = zone
	}
}

// WithWorkers overrides the worker pool size on the test config.
func WithWorkers(count int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workers.Count = count
	}
}
