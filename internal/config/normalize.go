package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIRODS()
	c.normalizeMLWH()
	c.normalizeWorkers()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ManifestDir) == "" {
		c.Paths.ManifestDir = defaultManifestDir
	}
	if c.Paths.ManifestDir, err = expandPath(c.Paths.ManifestDir); err != nil {
		return fmt.Errorf("paths.manifest_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIRODS() {
	c.IRODS.Zone = strings.TrimSpace(c.IRODS.Zone)
	c.IRODS.DefaultResource = strings.TrimSpace(c.IRODS.DefaultResource)
	c.IRODS.BatonBinary = strings.TrimSpace(c.IRODS.BatonBinary)
	if c.IRODS.BatonBinary == "" {
		c.IRODS.BatonBinary = defaultBatonBinary
	}
	c.IRODS.ReplBinary = strings.TrimSpace(c.IRODS.ReplBinary)
	if c.IRODS.ReplBinary == "" {
		c.IRODS.ReplBinary = defaultReplBinary
	}
	c.IRODS.TrimBinary = strings.TrimSpace(c.IRODS.TrimBinary)
	if c.IRODS.TrimBinary == "" {
		c.IRODS.TrimBinary = defaultTrimBinary
	}
	if c.IRODS.ExpectedReplicas <= 0 {
		c.IRODS.ExpectedReplicas = defaultExpectedReplicas
	}
	if c.IRODS.OperationTimeout <= 0 {
		c.IRODS.OperationTimeout = defaultOperationTimeout
	}
	users := make([]string, 0, len(c.IRODS.AdminUsers))
	for _, user := range c.IRODS.AdminUsers {
		if user = strings.TrimSpace(user); user != "" {
			users = append(users, user)
		}
	}
	if len(users) > 0 {
		c.IRODS.AdminUsers = users
	}
	c.IRODS.Creator = strings.TrimSpace(c.IRODS.Creator)
	if c.IRODS.Creator == "" {
		c.IRODS.Creator = defaultCreator
	}
	c.IRODS.Publisher = strings.TrimSpace(c.IRODS.Publisher)
	if c.IRODS.Publisher == "" {
		c.IRODS.Publisher = defaultPublisher
	}
	c.IRODS.OntRootCollection = strings.TrimSpace(c.IRODS.OntRootCollection)
	if c.IRODS.OntRootCollection == "" {
		c.IRODS.OntRootCollection = defaultOntRootCollection
	}
}

func (c *Config) normalizeMLWH() {
	c.MLWH.Host = strings.TrimSpace(c.MLWH.Host)
	if c.MLWH.Host == "" {
		c.MLWH.Host = defaultMLWHHost
	}
	if c.MLWH.Port <= 0 {
		c.MLWH.Port = defaultMLWHPort
	}
	c.MLWH.User = strings.TrimSpace(c.MLWH.User)
	c.MLWH.Database = strings.TrimSpace(c.MLWH.Database)
	if c.MLWH.Database == "" {
		c.MLWH.Database = defaultMLWHDatabase
	}
}

func (c *Config) normalizeWorkers() {
	if c.Workers.Count <= 0 {
		c.Workers.Count = defaultWorkerCount
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
