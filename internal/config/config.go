package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

type Config struct {
	Source            string               `yaml:"source" json:"source"`
	IncludeExtensions []string             `yaml:"include_extensions" json:"include_extensions"`
	FixDimensions     bool                 `yaml:"fix_dimensions" json:"fix_dimensions"`
	FixRename         bool                 `yaml:"fix_rename" json:"fix_rename"`
	Description       string               `yaml:"description" json:"description"`
	Date              string               `yaml:"date" json:"date"`
	ConflictPolicy    types.ConflictPolicy `yaml:"conflict_policy" json:"conflict_policy"`
	CheckMethod       types.CheckMethod    `yaml:"check_method" json:"check_method"`
	Backup            bool                 `yaml:"backup" json:"backup"`
	BackupDir         string               `yaml:"backup_dir" json:"backup_dir"`
	Verify            bool                 `yaml:"verify" json:"verify"`
	StateFile         string               `yaml:"state_file" json:"state_file"`
	LogFile           string               `yaml:"log_file" json:"log_file"`
	LogJSON           bool                 `yaml:"log_json" json:"log_json"`
	DryRun            bool                 `yaml:"dry_run" json:"dry_run"`
	Force             bool                 `yaml:"force" json:"force"`
}

// DataDir returns the per-user directory holding state, logs, presets and
// settings.
func DataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".photosnorm")
}

func DefaultConfig() *Config {
	dataDir := DataDir()

	return &Config{
		IncludeExtensions: []string{"jpg", "jpeg", "png"},
		ConflictPolicy:    types.ConflictPolicyFail,
		CheckMethod:       types.CheckMethodNameSize,
		Backup:            false,
		BackupDir:         filepath.Join(dataDir, "backups"),
		Verify:            false,
		StateFile:         filepath.Join(dataDir, "state.json"),
		LogFile:           filepath.Join(dataDir, "photosnorm.log"),
		LogJSON:           false,
		DryRun:            false,
		Force:             false,
	}
}

func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Source == "" {
		return &ValidationError{Field: "source", Message: "source path is required"}
	}

	switch c.ConflictPolicy {
	case types.ConflictPolicyFail, types.ConflictPolicySkip:
	case "":
		c.ConflictPolicy = types.ConflictPolicyFail
	default:
		return &ValidationError{Field: "conflict_policy", Message: "must be fail or skip"}
	}

	switch c.CheckMethod {
	case types.CheckMethodNameSize, types.CheckMethodHash:
	case "":
		c.CheckMethod = types.CheckMethodNameSize
	default:
		return &ValidationError{Field: "check_method", Message: "must be name-size or hash"}
	}

	dataDir := DataDir()
	if c.LogFile == "" {
		c.LogFile = filepath.Join(dataDir, "photosnorm.log")
	}
	if c.StateFile == "" {
		c.StateFile = filepath.Join(dataDir, "state.json")
	}
	if c.BackupDir == "" {
		c.BackupDir = filepath.Join(dataDir, "backups")
	}
	if len(c.IncludeExtensions) == 0 {
		c.IncludeExtensions = []string{"jpg", "jpeg", "png"}
	}

	return nil
}

// RunConfig converts the config into the snapshot form recorded with run
// history entries.
func (c *Config) RunConfig() types.RunConfig {
	return types.RunConfig{
		Source:         c.Source,
		FixDimensions:  c.FixDimensions,
		FixRename:      c.FixRename,
		Description:    c.Description,
		Date:           c.Date,
		ConflictPolicy: c.ConflictPolicy,
		CheckMethod:    c.CheckMethod,
		DryRun:         c.DryRun,
		Backup:         c.Backup,
		Verify:         c.Verify,
		Force:          c.Force,
	}
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
