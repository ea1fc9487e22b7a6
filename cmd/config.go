package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nodewee/doc-pipeline/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pipeline configuration",
	Long: `Manage pipeline configuration settings.

Configuration is stored in a JSON file in your user configuration directory (~/.doc-pipeline/config.json).
Set DOC_PIPELINE_CONFIG_DIR to use another directory. Environment variables
(NEXTFLOW_PATH, PICCL_WORKFLOW_DIR, PICCL_DATA_ROOT, DOC_PIPELINE_REMOTE_WORKFLOW)
override the file for a single invocation.

Available commands:
  list  - List all configured settings
  get   - Get a specific setting
  set   - Set a specific setting

Examples:
  doc-pipeline config list                                  # List all settings
  doc-pipeline config get workflow_dir                      # Get the workflow directory
  doc-pipeline config set workflow_dir /opt/PICCL           # Run workflows from a local checkout
  doc-pipeline config set data_root /opt/PICCL/data         # Set the resource root
  doc-pipeline config set nextflow_path /usr/local/bin/nextflow`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "list":
			listConfig()
		case "get":
			if len(args) < 2 {
				fmt.Println("Error: 'get' command requires a key name")
				fmt.Println("Usage: doc-pipeline config get <key>")
				return
			}
			getConfig(args[1])
		case "set":
			if len(args) < 3 {
				fmt.Println("Error: 'set' command requires a key and value")
				fmt.Println("Usage: doc-pipeline config set <key> <value>")
				return
			}
			setConfig(args[1], args[2])
		default:
			fmt.Printf("Error: Unknown config command '%s'\n", args[0])
			fmt.Println("Available commands: list, get, set")
		}
	},
}

// listConfig lists all persisted configuration settings
func listConfig() {
	fmt.Println("🛠️  Pipeline Configuration")
	fmt.Println("==========================")

	// Load current config
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("❌ Error loading configuration: %v\n", err)
		return
	}

	// Show config file location
	configPath, _ := config.GetConfigFilePath()
	fmt.Printf("📁 Config file: %s\n\n", configPath)

	fmt.Println("🛠️  Settings:")
	for _, key := range config.ListConfigKeys() {
		value, _ := cfg.Get(key)
		fmt.Printf("  %-22s = %s\n", key, getDisplayValue(value))
	}

	fmt.Println("\n💡 Tip: Use 'doc-pipeline config get <key>' to get specific values")
	fmt.Println("💡 Tip: Use 'doc-pipeline config set <key> <value>' to change a setting")
	fmt.Println("💡 Note: An empty workflow_dir runs the workflows from remote_workflow via nextflow")
}

// getConfig gets a specific configuration value
func getConfig(key string) {
	value, err := config.GetConfigValue(key)
	if err != nil {
		fmt.Printf("❌ Error getting config value '%s': %v\n", key, err)
		return
	}

	fmt.Printf("📝 %s = %v\n", key, value)
}

// setConfig sets a specific configuration value
func setConfig(key, value string) {
	// All config values are strings (paths or a repository name)
	err := config.SetConfigValue(key, value)
	if err != nil {
		fmt.Printf("❌ Error setting config value '%s': %v\n", key, err)
		return
	}

	fmt.Printf("✅ Successfully set %s = %v\n", key, value)
	fmt.Printf("💡 Tip: Run 'doc-pipeline check' to verify the new setting\n")
}

// getDisplayValue returns a display-friendly value for empty strings
func getDisplayValue(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

// configListCmd represents the 'config list' command
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Run: func(cmd *cobra.Command, args []string) {
		listConfig()
	},
}

// configGetCmd represents the 'config get' command
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific setting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		getConfig(args[0])
	},
}

// configSetCmd represents the 'config set' command
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a specific setting",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setConfig(args[0], args[1])
	},
}

func init() {
	// Add config command to root
	rootCmd.AddCommand(configCmd)

	// Add subcommands to config
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
