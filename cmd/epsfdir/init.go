package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eps-fdir/epsfdir/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/epsfdir.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new epsfdir configuration file",
		Long: `Initialize creates a new .epsfdir configuration file in the current directory.

The generated file includes:
- The result table names and chart output directory
- The model artifact selection and C output settings
- Documentation for all available options

Examples:
  # Create .epsfdir in current directory
  epsfdir init

  # Create config file at a specific path
  epsfdir init -o myconfig.yaml

  # Force overwrite existing file
  epsfdir init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/epsfdir.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure settings such as:")
	fmt.Fprintln(out, "  - Result table locations and chart resolution")
	fmt.Fprintln(out, "  - Model kind, pruning tag and panel of the exported model")
	fmt.Fprintln(out, "  - C output directory and function name")

	return nil
}
