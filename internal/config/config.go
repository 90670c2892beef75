package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir     string `toml:"work_dir"`
	LogDir      string `toml:"log_dir"`
	ManifestDir string `toml:"manifest_dir"`
}

// IRODS contains connection and policy settings for the data catalog.
type IRODS struct {
	Zone              string   `toml:"zone"`
	DefaultResource   string   `toml:"default_resource"`
	ExpectedReplicas  int      `toml:"expected_replicas"`
	BatonBinary       string   `toml:"baton_binary"`
	ReplBinary        string   `toml:"irepl_binary"`
	TrimBinary        string   `toml:"itrim_binary"`
	OperationTimeout  int      `toml:"operation_timeout"`
	AdminUsers        []string `toml:"admin_users"`
	Creator           string   `toml:"creator"`
	Publisher         string   `toml:"publisher"`
	OntRootCollection string   `toml:"ont_root_collection"`
}

// MLWH contains connection settings for the ML warehouse database.
type MLWH struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// Workers contains batch processing settings.
type Workers struct {
	Count int `toml:"count"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for keel.
//
// Configuration sections by subsystem:
//   - Paths: journal, log, and manifest directories
//   - IRODS: catalog zone, replica policy, and client binaries
//   - MLWH: ML warehouse database connection
//   - Workers: per-operation worker pool size
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	IRODS   IRODS   `toml:"irods"`
	MLWH    MLWH    `toml:"mlwh"`
	Workers Workers `toml:"workers"`
	Logging Logging `toml:"logging"`
}

// envOverrides holds settings that may be supplied through the environment so
// that credentials can stay out of the configuration file. Variables use the
// KEEL_ prefix, e.g. KEEL_MLWH_PASSWORD.
type envOverrides struct {
	MLWHHost     string `envconfig:"MLWH_HOST"`
	MLWHUser     string `envconfig:"MLWH_USER"`
	MLWHPassword string `envconfig:"MLWH_PASSWORD"`
	MLWHDatabase string `envconfig:"MLWH_DATABASE"`
	IRODSZone    string `envconfig:"IRODS_ZONE"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/keel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized, and environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnvironment(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnvironment() error {
	var env envOverrides
	if err := envconfig.Process("keel", &env); err != nil {
		return fmt.Errorf("process environment: %w", err)
	}
	if env.MLWHHost != "" {
		c.MLWH.Host = env.MLWHHost
	}
	if env.MLWHUser != "" {
		c.MLWH.User = env.MLWHUser
	}
	if env.MLWHPassword != "" {
		c.MLWH.Password = env.MLWHPassword
	}
	if env.MLWHDatabase != "" {
		c.MLWH.Database = env.MLWHDatabase
	}
	if env.IRODSZone != "" {
		c.IRODS.Zone = env.IRODSZone
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/keel/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("keel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.ManifestDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JournalPath returns the location of the operation journal database.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.WorkDir, "journal.db")
}

// LockPath returns the run lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.WorkDir, "keel.lock")
}

// MLWHDSN builds a MySQL DSN for the warehouse connection.
func (c *Config) MLWHDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.MLWH.User, c.MLWH.Password, c.MLWH.Host, c.MLWH.Port, c.MLWH.Database)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
