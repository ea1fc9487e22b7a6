package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nodewee/doc-pipeline/pkg/constants"
)

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"NEXTFLOW_PATH":          "/opt/nextflow",
		"PICCL_WORKFLOW_DIR":     "/opt/piccl",
		"PICCL_DATA_ROOT":        "/data",
		"DOC_PIPELINE_LOG_LEVEL": "debug",
		"DOC_PIPELINE_VERBOSE":   "1",
	}
	c := NewConfig()
	c.ApplyEnv(func(k string) string { return env[k] })

	if c.NextflowPath != "/opt/nextflow" || c.WorkflowDir != "/opt/piccl" || c.DataRoot != "/data" {
		t.Errorf("paths not applied: %s", c)
	}
	if c.LogLevel != "debug" || !c.EnableVerbose {
		t.Errorf("runtime settings not applied: %s", c)
	}
	if c.RemoteWorkflow != constants.DefaultRemoteRepo {
		t.Errorf("RemoteWorkflow = %s, want default", c.RemoteWorkflow)
	}
}

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	t.Chdir(base)
	t.Setenv("PICCL_HOME", "/opt/piccl")

	c := NewConfig()
	c.WorkflowDir = "workflows"
	c.DataRoot = "$PICCL_HOME/data"
	c.NextflowPath = "bin/nextflow"
	if err := c.ResolvePaths(); err != nil {
		t.Fatalf("ResolvePaths: %v", err)
	}

	tests := []struct {
		name, got, want string
	}{
		{"workflow dir", c.WorkflowDir, filepath.Join(base, "workflows")},
		{"data root", c.DataRoot, "/opt/piccl/data"},
		{"launcher", c.NextflowPath, filepath.Join(base, "bin", "nextflow")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, tt.got, tt.want)
		}
	}
}

func TestResolvePathsKeepsBareLauncher(t *testing.T) {
	c := NewConfig()
	if err := c.ResolvePaths(); err != nil {
		t.Fatal(err)
	}
	if c.NextflowPath != constants.DefaultEnginePath || c.WorkflowDir != "" {
		t.Errorf("unexpected resolution: %s", c)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"missing workflow dir", func(c *Config) { c.WorkflowDir = "/does/not/exist" }, true},
		{"existing workflow dir", func(c *Config) { c.WorkflowDir = os.TempDir() }, false},
		{"no engine", func(c *Config) { c.NextflowPath = "" }, true},
		{"no remote", func(c *Config) { c.RemoteWorkflow = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigDirEnv, dir)

	c, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.RemoteWorkflow != constants.DefaultRemoteRepo {
		t.Errorf("RemoteWorkflow = %s", c.RemoteWorkflow)
	}

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	var cf ConfigFile
	if err := json.Unmarshal(data, &cf); err != nil {
		t.Fatalf("config file is not JSON: %v", err)
	}
}

func TestSetAndGetConfigValue(t *testing.T) {
	t.Setenv(ConfigDirEnv, t.TempDir())

	if err := SetConfigValue("data_root", "/srv/piccl"); err != nil {
		t.Fatalf("SetConfigValue: %v", err)
	}
	got, err := GetConfigValue("data_root")
	if err != nil {
		t.Fatalf("GetConfigValue: %v", err)
	}
	if got != "/srv/piccl" {
		t.Errorf("data_root = %q", got)
	}

	if err := SetConfigValue("colour", "blue"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestDetectToolPaths(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "nextflow")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	cf := &ConfigFile{NextflowPath: "nextflow"}
	detectAndUpdateToolPaths(cf, func(string) (string, error) { return bin, nil })
	if cf.NextflowPath != bin {
		t.Errorf("NextflowPath = %s, want %s", cf.NextflowPath, bin)
	}

	cf = &ConfigFile{NextflowPath: "nextflow"}
	detectAndUpdateToolPaths(cf, func(string) (string, error) { return "", errors.New("not found") })
	if cf.NextflowPath != "nextflow" {
		t.Errorf("NextflowPath = %s, want unchanged", cf.NextflowPath)
	}
}

func TestListConfigKeys(t *testing.T) {
	keys := ListConfigKeys()
	if len(keys) != 4 || keys[0] != "data_root" {
		t.Errorf("keys = %v", keys)
	}
}
