package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"orthoview/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the settings file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the current settings (defaults if no file exists) as YAML",
	Long: `Write the settings to path, or to the --config / $ORTHOVIEW_CONFIG file.
An existing file is only overwritten with --force.

Example:
  orthoview config init ~/.config/orthoview/config.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	src := resolvePath(configPath, "ORTHOVIEW_CONFIG", "")
	dst := src
	if len(args) == 1 {
		dst = args[0]
	}
	if dst == "" {
		return fmt.Errorf("no path given and neither --config nor ORTHOVIEW_CONFIG is set")
	}

	if _, err := os.Stat(dst); err == nil && !mustGetBool(cmd, "force") {
		return fmt.Errorf("%s already exists; use --force to overwrite it", dst)
	}

	cfg, err := config.Load(src)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Save(dst); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", dst)
	return nil
}
