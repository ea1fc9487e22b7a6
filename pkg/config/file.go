package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/nodewee/doc-pipeline/pkg/constants"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

const (
	ConfigFileName = "config.json"
	AppDirName     = ".doc-pipeline"

	// ConfigDirEnv relocates the configuration directory
	ConfigDirEnv = "DOC_PIPELINE_CONFIG_DIR"
)

// ConfigFile represents the JSON configuration file structure
type ConfigFile struct {
	NextflowPath   string `json:"nextflow_path"`
	WorkflowDir    string `json:"workflow_dir"`
	DataRoot       string `json:"data_root"`
	RemoteWorkflow string `json:"remote_workflow"`
}

// keyAccessors maps config keys to the field they address
var keyAccessors = map[string]func(*Config) *string{
	"nextflow_path":   func(c *Config) *string { return &c.NextflowPath },
	"workflow_dir":    func(c *Config) *string { return &c.WorkflowDir },
	"data_root":       func(c *Config) *string { return &c.DataRoot },
	"remote_workflow": func(c *Config) *string { return &c.RemoteWorkflow },
}

// GetConfigDir returns the user configuration directory (~/.doc-pipeline)
func GetConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", utils.WrapError(err, utils.ErrorTypeIO, "failed to get user home directory")
	}

	return filepath.Join(homeDir, AppDirName), nil
}

// GetConfigFilePath returns the full path to the configuration file
func GetConfigFilePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, ConfigFileName), nil
}

// LoadConfig loads configuration from file or creates default if not exists
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigFilePath()
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to get config file path")
	}

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return createDefaultConfigFile(configPath)
	}

	return loadConfigFromFile(configPath)
}

// createDefaultConfigFile creates a default configuration file with auto-detected tools
func createDefaultConfigFile(configPath string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), constants.DefaultDirPermission); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to create config directory")
	}

	configFile := configToConfigFile(NewConfig())
	detectAndUpdateToolPaths(configFile, exec.LookPath)

	if err := saveConfigFile(configPath, configFile); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to save default config file")
	}

	return configFileToConfig(configFile), nil
}

// loadConfigFromFile loads configuration from an existing file
func loadConfigFromFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to read config file")
	}

	var configFile ConfigFile
	if err := json.Unmarshal(data, &configFile); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeValidation, "failed to parse config file")
	}

	return configFileToConfig(&configFile), nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	configPath, err := GetConfigFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), constants.DefaultDirPermission); err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to create config directory")
	}

	return saveConfigFile(configPath, configToConfigFile(config))
}

// saveConfigFile saves ConfigFile to disk
func saveConfigFile(configPath string, configFile *ConfigFile) error {
	data, err := json.MarshalIndent(configFile, "", "  ")
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeSystem, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, constants.DefaultFilePermission); err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to write config file")
	}

	return nil
}

// detectAndUpdateToolPaths resolves the engine binary on PATH
func detectAndUpdateToolPaths(configFile *ConfigFile, lookPath func(string) (string, error)) {
	name := configFile.NextflowPath
	if name == "" {
		name = constants.DefaultEnginePath
	}
	if filepath.IsAbs(name) {
		return
	}
	if path, err := lookPath(name); err == nil && utils.IsExecutable(path) {
		configFile.NextflowPath = utils.NormalizePath(path)
	}
}

// configFileToConfig converts ConfigFile to Config
func configFileToConfig(cf *ConfigFile) *Config {
	c := NewConfig()
	if cf.NextflowPath != "" {
		c.NextflowPath = cf.NextflowPath
	}
	if cf.RemoteWorkflow != "" {
		c.RemoteWorkflow = cf.RemoteWorkflow
	}
	c.WorkflowDir = cf.WorkflowDir
	c.DataRoot = cf.DataRoot
	return c
}

// configToConfigFile converts Config to ConfigFile
func configToConfigFile(c *Config) *ConfigFile {
	return &ConfigFile{
		NextflowPath:   c.NextflowPath,
		WorkflowDir:    c.WorkflowDir,
		DataRoot:       c.DataRoot,
		RemoteWorkflow: c.RemoteWorkflow,
	}
}

// GetConfigValue gets a specific configuration value by key
func GetConfigValue(key string) (string, error) {
	config, err := LoadConfig()
	if err != nil {
		return "", err
	}
	return config.Get(key)
}

// SetConfigValue sets a specific configuration value by key
func SetConfigValue(key, value string) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	if err := config.Set(key, value); err != nil {
		return err
	}
	return SaveConfig(config)
}

// Get returns the value of a persisted key
func (c *Config) Get(key string) (string, error) {
	accessor, ok := keyAccessors[key]
	if !ok {
		return "", utils.NewValidationError(fmt.Sprintf("unknown config key: %s", key), nil)
	}
	return *accessor(c), nil
}

// Set updates a persisted key
func (c *Config) Set(key, value string) error {
	accessor, ok := keyAccessors[key]
	if !ok {
		return utils.NewValidationError(fmt.Sprintf("unknown config key: %s", key), nil)
	}
	*accessor(c) = value
	return nil
}

// ListConfigKeys returns all available configuration keys
func ListConfigKeys() []string {
	keys := make([]string, 0, len(keyAccessors))
	for k := range keyAccessors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
