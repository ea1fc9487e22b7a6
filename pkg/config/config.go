package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/nodewee/doc-pipeline/pkg/constants"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

// Default values
const (
	DefaultLogLevel      = "info"
	DefaultEnableVerbose = false
)

// Config holds tool locations and runtime settings
type Config struct {
	// External tool paths (persisted)
	NextflowPath   string `json:"nextflow_path"`
	WorkflowDir    string `json:"workflow_dir"`
	DataRoot       string `json:"data_root"`
	RemoteWorkflow string `json:"remote_workflow"`

	// Runtime settings (not persisted to file)
	LogLevel      string `json:"-"`
	EnableVerbose bool   `json:"-"`
}

// NewConfig returns a configuration with built-in defaults only
func NewConfig() *Config {
	return &Config{
		NextflowPath:   constants.DefaultEnginePath,
		RemoteWorkflow: constants.DefaultRemoteRepo,
		LogLevel:       DefaultLogLevel,
		EnableVerbose:  DefaultEnableVerbose,
	}
}

// DefaultConfig returns the configuration by loading from file or falling back to defaults
func DefaultConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config file, using basic defaults: %v\n", err)
		return NewConfig()
	}
	return config
}

// LoadConfigWithEnvOverrides loads config from file and applies environment variable overrides
func LoadConfigWithEnvOverrides() *Config {
	config := DefaultConfig()
	config.ApplyEnv(os.Getenv)
	return config
}

// ApplyEnv applies environment overrides read through getenv
func (c *Config) ApplyEnv(getenv func(string) string) {
	if value := getenv("NEXTFLOW_PATH"); value != "" {
		c.NextflowPath = value
	}
	if value := getenv("PICCL_WORKFLOW_DIR"); value != "" {
		c.WorkflowDir = value
	}
	if value := getenv("PICCL_DATA_ROOT"); value != "" {
		c.DataRoot = value
	}
	if value := getenv("DOC_PIPELINE_REMOTE_WORKFLOW"); value != "" {
		c.RemoteWorkflow = value
	}
	if value := getenv("DOC_PIPELINE_LOG_LEVEL"); value != "" {
		c.LogLevel = value
	}
	if value := getenv("DOC_PIPELINE_VERBOSE"); value != "" {
		c.EnableVerbose = value == "true" || value == "1" || value == "yes"
	}
}

// ResolvePaths expands ~ and environment variables in the configured
// locations and makes them absolute. Workflows run with the job's working
// directory as cwd, so a relative location would otherwise resolve there.
// A bare launcher name is left for PATH lookup.
func (c *Config) ResolvePaths() error {
	targets := []*string{&c.WorkflowDir, &c.DataRoot}
	if strings.ContainsRune(c.NextflowPath, os.PathSeparator) || strings.HasPrefix(c.NextflowPath, "~") {
		targets = append(targets, &c.NextflowPath)
	}
	for _, p := range targets {
		if *p == "" {
			continue
		}
		expanded, err := utils.ExpandPath(*p)
		if err != nil {
			return utils.WrapError(err, utils.ErrorTypeValidation, "failed to expand path").
				WithContext(utils.ContextPath, *p)
		}
		abs, err := utils.GetAbsolutePath(expanded)
		if err != nil {
			return utils.WrapError(err, utils.ErrorTypeValidation, "failed to resolve path").
				WithContext(utils.ContextPath, *p)
		}
		*p = abs
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return NewConfigValidator().Validate(c)
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Nextflow: %s, WorkflowDir: %s, DataRoot: %s, LogLevel: %s, Verbose: %v}",
		c.NextflowPath, c.WorkflowDir, c.DataRoot, c.LogLevel, c.EnableVerbose)
}
