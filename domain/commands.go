package domain

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
)

// newCommandContext builds the operation context for path, loading the
// configuration that applies to it.
func newCommandContext(cmd *cobra.Command, path string) (*Context, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")

	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	ctx := NewContextWithVerbose(base, path, verbose)

	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}
	config, _, err := ResolveConfig(dir)
	if err != nil {
		return nil, err
	}
	return ctx.WithConfig(config), nil
}

func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// generateBuildCmd creates the 'build' command for the CLI.
func generateBuildCmd(builder Builder) *cobra.Command {
	var output string
	var dryRun bool
	var tieBreak string

	cmd := &cobra.Command{
		Use:   "build [path]",
		Short: "Build the composition plan of a declaration",
		Long:  "Build the composition plan of a declaration document and output it in the specified format.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			format, _ := cmd.Flags().GetString("format")

			ctx, err := newCommandContext(cmd, path)
			if err != nil {
				return err
			}
			opts := BuildOpts{
				Format:   format,
				Output:   output,
				DryRun:   dryRun,
				TieBreak: tieBreak,
			}

			result, err := builder.Build(ctx, path, opts)
			if err != nil {
				return fmt.Errorf("build failed: %w", err)
			}

			return outputResult(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path for the generated plan")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview output without writing files")
	cmd.Flags().StringVar(&tieBreak, "tie-break", "", "Tie-break strategy (declaration, lexical)")

	return cmd
}

// generateLintCmd creates the 'lint' command for the CLI.
func generateLintCmd(linter Linter) *cobra.Command {
	var fix bool
	var disable []string

	cmd := &cobra.Command{
		Use:   "lint [path]",
		Short: "Lint declarations according to the mixin rules",
		Long:  "Check declaration documents according to the mixin rules and output errors/warnings.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			format, _ := cmd.Flags().GetString("format")

			ctx, err := newCommandContext(cmd, path)
			if err != nil {
				return err
			}
			opts := LintOpts{
				Format:  format,
				Fix:     fix,
				Disable: disable,
			}

			result, err := linter.Lint(ctx, path, opts)
			if err != nil {
				return fmt.Errorf("lint failed: %w", err)
			}

			return outputResult(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Automatically fix fixable issues")
	cmd.Flags().StringSliceVar(&disable, "disable", nil, "Rules to disable (comma-separated)")

	return cmd
}

// generateInitCmd creates the 'init' command for the CLI.
func generateInitCmd(initializer Initializer) *cobra.Command {
	var name string
	var outPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new project with an example declaration",
		Long:  "Create a wetwire.yaml and an example declaration document.",
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			format, _ := cmd.Flags().GetString("format")

			workDir := "."
			ctx := NewContextWithVerbose(context.Background(), workDir, verbose)
			opts := InitOpts{
				Name: name,
				Path: outPath,
			}

			result, err := initializer.Init(ctx, workDir, opts)
			if err != nil {
				return fmt.Errorf("init failed: %w", err)
			}

			return outputResult(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&outPath, "path", ".", "Output directory (default: current directory)")

	return cmd
}

// generateValidateCmd creates the 'validate' command for the CLI.
func generateValidateCmd(validator Validator) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate that a declaration can be planned",
		Long:  "Validate a declaration document and check that a composition plan can be built from it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			format, _ := cmd.Flags().GetString("format")

			ctx, err := newCommandContext(cmd, path)
			if err != nil {
				return err
			}

			result, err := validator.Validate(ctx, path, ValidateOpts{Strict: strict})
			if err != nil {
				return fmt.Errorf("validate failed: %w", err)
			}

			return outputResult(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on lint warnings")

	return cmd
}

// generateImportCmd creates the 'import' command for the CLI (optional).
func generateImportCmd(importer Importer) *cobra.Command {
	var target string
	var recursive bool

	cmd := &cobra.Command{
		Use:   "import [source]",
		Short: "Import Go type information into a declaration",
		Long:  "Scan Go sources for interfaces and structs and write them to the types section of a declaration document.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]

			verbose, _ := cmd.Flags().GetBool("verbose")
			format, _ := cmd.Flags().GetString("format")

			workDir := "."
			ctx := NewContextWithVerbose(context.Background(), workDir, verbose)
			opts := ImportOpts{
				Target:    target,
				Recursive: recursive,
			}

			result, err := importer.Import(ctx, source, opts)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			return outputResult(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Declaration document to write the types to")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Scan subdirectories")

	return cmd
}

// generateListCmd creates the 'list' command for the CLI (optional).
func generateListCmd(lister Lister) *cobra.Command {
	var listType string

	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "List the resolved mixin order",
		Long:  "Resolve a declaration and list its mixins in application order, or its capability bindings.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			format, _ := cmd.Flags().GetString("format")

			ctx, err := newCommandContext(cmd, path)
			if err != nil {
				return err
			}
			opts := ListOpts{
				Format: format,
				Type:   listType,
			}

			result, err := lister.List(ctx, path, opts)
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}

			return outputResult(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().StringVar(&listType, "type", "order", "What to list (order, bindings, pipelines)")

	return cmd
}

// generateGraphCmd creates the 'graph' command for the CLI (optional).
func generateGraphCmd(grapher Grapher) *cobra.Command {
	var graphFormat string

	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Visualize the capability graph of a declaration",
		Long:  "Generate a visualization of mixins, capabilities and their providers (DOT or Mermaid).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			format, _ := cmd.Flags().GetString("format")

			ctx, err := newCommandContext(cmd, path)
			if err != nil {
				return err
			}

			result, err := grapher.Graph(ctx, path, GraphOpts{Format: graphFormat})
			if err != nil {
				return fmt.Errorf("graph failed: %w", err)
			}

			return outputResult(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().StringVar(&graphFormat, "graph-format", "dot", "Graph format (dot, mermaid)")

	return cmd
}

// generateWatchCmd creates the 'watch' command for the CLI (optional).
func generateWatchCmd(watcher Watcher) *cobra.Command {
	var tieBreak string

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Rebuild the plan whenever the declaration changes",
		Long:  "Watch a declaration document and rebuild its composition plan on every change until interrupted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			format, _ := cmd.Flags().GetString("format")

			ctx, err := newCommandContext(cmd, path)
			if err != nil {
				return err
			}
			sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
			defer stop()
			ctx.Context = sigCtx

			out := cmd.OutOrStdout()
			opts := WatchOpts{
				Build: BuildOpts{Format: format, TieBreak: tieBreak},
				OnResult: func(r *Result) {
					if err := outputResult(out, r, format); err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), err)
					}
				},
			}

			result, err := watcher.Watch(ctx, path, opts)
			if err != nil {
				return fmt.Errorf("watch failed: %w", err)
			}

			return outputResult(out, result, format)
		},
	}

	cmd.Flags().StringVar(&tieBreak, "tie-break", "", "Tie-break strategy (declaration, lexical)")

	return cmd
}

// outputResult handles outputting the result based on the format flag.
func outputResult(w io.Writer, result *Result, format string) error {
	output, err := FormatResult(result, format)
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}

	fmt.Fprint(w, output)

	// Return error if result indicates failure
	if !result.Success {
		return fmt.Errorf("operation failed")
	}

	return nil
}
