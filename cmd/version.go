package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nodewee/doc-pipeline/pkg/config"
)

// Version information variables - set by main.go
var (
	version   = "dev"
	gitCommit = "none"
	buildTime = "unknown"
	buildBy   = "unknown"
)

// SetVersionInfo sets the version information from main.go
func SetVersionInfo(v, commit, buildTimeParam, buildByParam string) {
	version = v
	gitCommit = commit
	buildTime = buildTimeParam
	buildBy = buildByParam
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and pipeline configuration",
	Long: `Show the build version together with the pipeline setup a run would use:
the workflow engine, where the workflow scripts come from and the data root
holding the per-language correction resources.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		showVersionInfo(loadConfig())
	},
}

// versionLine is the one-line form printed by --version
func versionLine() string {
	return fmt.Sprintf("doc-pipeline %s (%s, %s/%s)", version, shortCommit(), runtime.GOOS, runtime.GOARCH)
}

func shortCommit() string {
	if len(gitCommit) > 12 {
		return gitCommit[:12]
	}
	return gitCommit
}

// showVersionInfo prints the build and the configured pipeline
func showVersionInfo(cfg *config.Config) {
	fmt.Println("📄 " + versionLine())
	fmt.Printf("  Built:       %s by %s with %s\n", buildTime, buildBy, runtime.Version())
	if isReleaseBuild() {
		fmt.Printf("  Release:     https://github.com/nodewee/doc-pipeline/releases/tag/%s\n", version)
	}
	fmt.Println()

	fmt.Println("🔄 Pipeline:")
	if err := cfg.ResolvePaths(); err != nil {
		fmt.Printf("  ⚠️  %v\n", err)
	}
	if cfg.WorkflowDir != "" {
		fmt.Printf("  Workflows:   %s (local scripts)\n", cfg.WorkflowDir)
	} else {
		fmt.Printf("  Workflows:   %s (via %s)\n", cfg.RemoteWorkflow, cfg.NextflowPath)
	}
	fmt.Printf("  Engine:      %s\n", cfg.NextflowPath)
	dataRoot := cfg.DataRoot
	if dataRoot == "" {
		dataRoot = "(not set)"
	}
	fmt.Printf("  Data root:   %s\n", dataRoot)
}

func isReleaseBuild() bool {
	return !strings.Contains(version, "dev") && !strings.Contains(version, "+")
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
