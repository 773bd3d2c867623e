package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/sys/atomicwriter"
	"github.com/spf13/cobra"
)

const defaultInitPath = "swagger2doc.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample swagger2doc configuration file",
		Long:  "Scaffold a commented swagger2doc configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			})
		},
	}

	cmd.Flags().String("out", defaultInitPath, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultInitPath
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	if err := atomicwriter.WriteFile(absPath, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write %s: %v\nHint: choose a different --out or check directory permissions.", absPath, err))
	}
	newLogger(cfg.Verbose).WithField("path", absPath).Debug("wrote sample config")
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# swagger2doc configuration (YAML; a .toml file with the same keys also works)
# All fields are optional. Command-line flags override config values.

# Path or URL to the Swagger 2.0 document (http/https or local file).
# source: ./swagger.yaml

# Version of the source document. Only 2.0 is supported.
# flagVersion: "2.0"

# Module and client class names recorded in the output.
# moduleName: petstore
# className: API

# Output directory. When omitted, derived from packageName or the document title.
# destination: ./out

# Package name and version. The version is read from git tags when omitted.
# packageName: petstore-client
# packageVersion: 1.0.0

# Repository and command used to list version tags.
# repoPath: .
# tagCommand: git tag -l

# Directories for per-tag operation files and models, relative to destination.
# docPath: docs
# modelPath: docs/models

# Output format (json|yaml for normalized data, markdown|html for linked pages).
# format: json

# Leave synthesized enums without the parameter or property description.
# noEnumDescription: false

# Apply the document-level security requirement to every operation.
# globalSecurity: false

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite non-empty output directory.
# force: false

# Enable verbose logging.
# verbose: false
`
