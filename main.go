package main

import (
	"fmt"
	"os"

	"github.com/nodewee/doc-pipeline/cmd"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

// Version information - these will be set during build time via ldflags
var (
	Version   = "dev"     // Application version (e.g., "v1.2.3")
	GitCommit = "none"    // Git commit hash
	BuildTime = "unknown" // Build timestamp
	BuildBy   = "unknown" // Builder information
)

func main() {
	// Pass version information to the command system
	cmd.SetVersionInfo(Version, GitCommit, BuildTime, BuildBy)

	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		// The host job system branches on the exit code
		os.Exit(utils.ExitCode(err))
	}
}
