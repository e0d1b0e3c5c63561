package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "navgen",
		Short: "Generate Doxygen navigation scripts from markdown and C++ headers",
		Long: `navgen rebuilds the navigation index of a Doxygen HTML site
(navtreedata.js, its deferred child scripts and the navtreeindex shards)
from the project's markdown pages and C/C++ headers, and lints existing
indexes for structural defects.

Settings are read from navgen.yml (or navgen.toml) in the project root.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default: nearest navgen.yml)")
	rootCmd.PersistentFlags().StringArray("set", nil, "Override a configuration value (key=value, repeatable)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")

	// Core Commands
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default navgen.yml in the current directory",
		Args:  cobra.NoArgs,
		RunE:  RunInit,
	}
	initCmd.Flags().String("name", "", "Project name (default: directory name)")
	initCmd.Flags().Bool("no-generate", false, "Write configuration only, skip the initial generate")

	generateCmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Generate navtreedata.js and its scripts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunGenerate,
	}
	generateCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever pages, headers or the configuration change",
		Args:  cobra.NoArgs,
		RunE:  RunWatch,
	}
	watchCmd.Flags().String("exec", "", "Command to run after each regeneration that rewrote scripts")
	watchCmd.Flags().Int("debounce", 300, "Quiet period in milliseconds before regenerating")

	// Inspect Commands
	checkCmd := &cobra.Command{
		Use:   "check [navtreedata.js]",
		Short: "Lint a navigation index (exit status 1 on errors)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunCheck,
	}
	checkCmd.Flags().Int("shard-size", 0, "Links per navtreeindex script (default: configured or 250)")
	checkCmd.Flags().String("html", "", "Directory of rendered pages whose anchors are verified")
	checkCmd.Flags().Bool("json", false, "Print machine-readable report")

	showCmd := &cobra.Command{
		Use:   "show [navtreedata.js]",
		Short: "Print the navigation tree",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunShow,
	}
	showCmd.Flags().Int("depth", 0, "Levels to print (0 prints everything)")
	showCmd.Flags().Bool("json", false, "Print the tree as JSON")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show which inputs changed since the last generate",
		Args:  cobra.NoArgs,
		RunE:  RunStatus,
	}
	statusCmd.Flags().Bool("json", false, "Print machine-readable status output")

	// Additional Commands
	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of navgen.yml",
		Args:  cobra.NoArgs,
		RunE:  RunSchema,
	}
	schemaCmd.Flags().StringP("output", "o", "", "Write the schema to a file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "navgen %s\n", version)
		},
	}

	rootCmd.AddCommand(
		initCmd,
		generateCmd,
		watchCmd,
		checkCmd,
		showCmd,
		statusCmd,
		schemaCmd,
		versionCmd,
	)

	return rootCmd
}
