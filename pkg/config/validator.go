package config

import (
	"fmt"
	"strings"

	"github.com/nodewee/doc-pipeline/pkg/utils"
)

// ConfigValidator checks a configuration and reports every problem at once
type ConfigValidator struct{}

// NewConfigValidator creates a configuration validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate validates the configuration
func (v *ConfigValidator) Validate(c *Config) error {
	var errors []string

	if err := v.validateEngine(c); err != nil {
		errors = append(errors, err.Error())
	}

	if err := v.validateLogLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return utils.NewValidationError("configuration validation failed",
			fmt.Errorf("validation errors: %s", strings.Join(errors, "; ")))
	}

	return nil
}

// validateEngine requires some way of launching workflows
func (v *ConfigValidator) validateEngine(c *Config) error {
	if c.WorkflowDir != "" {
		if !utils.IsDir(c.WorkflowDir) {
			return fmt.Errorf("workflow directory does not exist: %s", c.WorkflowDir)
		}
		return nil
	}
	if c.NextflowPath == "" {
		return fmt.Errorf("either nextflow_path or workflow_dir must be set")
	}
	if c.RemoteWorkflow == "" {
		return fmt.Errorf("remote_workflow must be set when no workflow_dir is configured")
	}
	return nil
}

// validateLogLevel checks the log level name
func (v *ConfigValidator) validateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}

	for _, valid := range validLevels {
		if strings.ToLower(level) == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid log level: %s", level)
}
