package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateIRODS(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Workers.Count > 64 {
		return errors.New("workers.count must be 64 or fewer")
	}
	return nil
}

func (c *Config) validateIRODS() error {
	if c.IRODS.Zone == "" {
		return errors.New("irods.zone must be set")
	}
	if c.IRODS.ExpectedReplicas < 1 {
		return errors.New("irods.expected_replicas must be at least 1")
	}
	if len(c.IRODS.AdminUsers) == 0 {
		return errors.New("irods.admin_users must name at least one user retained on withdrawn data")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
