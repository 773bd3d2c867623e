package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mark3labs/swagger2doc/internal/emitter"
	"github.com/mark3labs/swagger2doc/internal/spec"
	"github.com/mark3labs/swagger2doc/internal/version"
)

// SupportedFlagVersion is the only document version generate accepts.
const SupportedFlagVersion = "2.0"

const fallbackDestination = "swagger2doc-out"

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Source            string
	FlagVersion       string
	ModuleName        string
	ClassName         string
	Destination       string
	PackageName       string
	PackageVersion    string
	RepoPath          string
	TagCommand        string
	DocPath           string
	ModelPath         string
	Format            string
	NoEnumDescription bool
	GlobalSecurity    bool
	ConfigPath        string
	DryRun            bool
	Force             bool
	Verbose           bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		FlagVersion: SupportedFlagVersion,
		ClassName:   spec.DefaultClassName,
		RepoPath:    ".",
		TagCommand:  version.DefaultCommand,
		DocPath:     spec.DefaultDocsPath,
		ModelPath:   spec.DefaultModelPath,
		Format:      string(emitter.FormatJSON),
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Normalize a Swagger 2.0 document and write the result",
		Long: "Normalize a Swagger 2.0 document into operations, parameters, security headers and models. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  swagger2doc generate --source petstore.yaml --destination ./out
  swagger2doc generate --source petstore.yaml --format markdown
  swagger2doc --config swagger2doc.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("source", "s", "", "Path or URL to the Swagger 2.0 document")
	flags.StringP("flag-version", "f", SupportedFlagVersion, "Swagger version of the source document")
	flags.StringP("moduleName", "m", "", "Module name recorded in the output")
	flags.StringP("className", "c", spec.DefaultClassName, "Client class name")
	flags.StringP("destination", "d", "", "Output directory (derived from package name or title when omitted)")
	flags.StringP("package-name", "n", "", "Package name recorded in the output")
	flags.String("package-version", "", "Package version; resolved from git tags when omitted")
	flags.StringP("repo-path", "p", ".", "Repository inspected for version tags")
	flags.StringP("tag-command", "t", version.DefaultCommand, "Command listing version tags")
	flags.String("doc-path", spec.DefaultDocsPath, "Directory for per-tag operation files, relative to the destination")
	flags.String("model-path", spec.DefaultModelPath, "Directory for model files, relative to the destination")
	flags.String("format", string(emitter.FormatJSON), "Output format (json|yaml|markdown|html)")
	flags.Bool("no-enum-description", false, "Leave synthesized enums without the parameter or property description")
	flags.Bool("global-security", false, "Apply the document-level security requirement to every operation")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	strs := map[string]*string{
		"source":          &cfg.Source,
		"flag-version":    &cfg.FlagVersion,
		"moduleName":      &cfg.ModuleName,
		"className":       &cfg.ClassName,
		"destination":     &cfg.Destination,
		"package-name":    &cfg.PackageName,
		"package-version": &cfg.PackageVersion,
		"repo-path":       &cfg.RepoPath,
		"tag-command":     &cfg.TagCommand,
		"doc-path":        &cfg.DocPath,
		"model-path":      &cfg.ModelPath,
		"format":          &cfg.Format,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	bools := map[string]*bool{
		"no-enum-description": &cfg.NoEnumDescription,
		"global-security":     &cfg.GlobalSecurity,
		"dry-run":             &cfg.DryRun,
		"force":               &cfg.Force,
		"verbose":             &cfg.Verbose,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	for _, s := range []*string{
		&c.Source, &c.FlagVersion, &c.ModuleName, &c.ClassName, &c.Destination,
		&c.PackageName, &c.PackageVersion, &c.RepoPath, &c.TagCommand,
		&c.DocPath, &c.ModelPath,
	} {
		*s = strings.TrimSpace(*s)
	}
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.ClassName == "" {
		c.ClassName = spec.DefaultClassName
	}
}

func (c *GenerateConfig) validate() error {
	if c.Source == "" {
		return newUsageError("generate: --source is required (set via flag or config file)")
	}
	if c.FlagVersion != SupportedFlagVersion {
		return newUsageError(fmt.Sprintf("generate: unsupported --flag-version %q (allowed: %s)", c.FlagVersion, SupportedFlagVersion))
	}
	if _, err := emitter.ParseFormat(c.Format); err != nil {
		return newUsageError(fmt.Sprintf("generate: unsupported --format %q (allowed: json, yaml, markdown, html)", c.Format))
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	log := newLogger(cfg.Verbose)

	// 1) Load the document (file or http/https URL)
	raw, err := spec.Load(ctx, cfg.Source)
	if err != nil {
		return specUsageError(err)
	}

	// 2) Normalize; the package version comes from the flag or the repo tags
	doc, err := spec.Normalize(ctx, raw,
		spec.WithLogger(log),
		spec.WithPackageName(cfg.PackageName),
		spec.WithPackageVersion(cfg.PackageVersion),
		spec.WithVersionResolver(&version.GitTags{RepoPath: cfg.RepoPath, Command: cfg.TagCommand, Logger: log}),
		spec.WithClassName(cfg.ClassName),
		spec.WithModuleName(cfg.ModuleName),
		spec.WithDocsPath(cfg.DocPath),
		spec.WithModelPath(cfg.ModelPath),
		spec.WithEnumDescription(!cfg.NoEnumDescription),
		spec.WithGlobalSecurity(cfg.GlobalSecurity),
	)
	if err != nil {
		return specUsageError(err)
	}

	// 3) Derive the output directory when omitted
	outDir := cfg.Destination
	if outDir == "" {
		outDir = sanitizeName(cfg.PackageName)
	}
	if outDir == "" {
		outDir = deriveName(doc.Title)
	}
	if outDir == "" {
		outDir = fallbackDestination
	}

	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	// 4) Emit
	format, _ := emitter.ParseFormat(cfg.Format)
	res, err := emitter.Emit(ctx, doc, emitter.Options{
		OutDir: outDir,
		Format: format,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
		Logger: log,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}
	if cfg.DryRun {
		paths := make([]string, 0, len(res.Planned))
		for _, p := range res.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(absOut, len(res.Planned), paths)
		return nil
	}
	log.WithFields(logrus.Fields{
		"out":        absOut,
		"files":      len(res.Planned),
		"operations": len(doc.Operations),
		"version":    doc.PackageVersion,
	}).Info("generated")
	return nil
}

func newLogger(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --destination or use --force when appropriate.", outDir, msg))
	}
	return err
}

// sanitizeName lowercases name and keeps only characters safe for a
// directory name.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ToLower(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}

func deriveName(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return ""
	}
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	return sanitizeName(strings.Join(strings.Fields(repl.Replace(t)), "-"))
}
