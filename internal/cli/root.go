// Package cli implements the dsaviz command-line interface.
//
// The commands run command scripts (see package script) through a headless
// engine:
//   - render: rasterize the resulting canvas to PNG
//   - scene: print the draw commands or the canvas state as JSON
//   - limits: print the effective validation limits
//
// Limits come from the same environment variables the server reads.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dsaviz/dsaviz/internal/config"
	"github.com/dsaviz/dsaviz/internal/document"
	"github.com/dsaviz/dsaviz/internal/engine"
	"github.com/dsaviz/dsaviz/internal/script"
)

var version = "dev"

// SetVersion sets the version shown by --version.
func SetVersion(v string) {
	version = v
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "dsaviz",
		Short:        "dsaviz draws data-structure teaching diagrams",
		Long:         `dsaviz runs diagram scripts through the editing engine and renders the result.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(stderr, level)))
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newSceneCmd())
	root.AddCommand(newLimitsCmd())
	return root
}

// sourceFlags selects what the engine starts from.
type sourceFlags struct {
	sample bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.sample, "sample", false, "start from the built-in sample scene")
}

// buildEngine creates an engine with the configured limits, runs the
// script at path (if any) and returns it.
func buildEngine(ctx context.Context, path string, src sourceFlags) (*engine.Engine, error) {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	opts := []engine.Option{
		engine.WithLimits(cfg.Limits()),
		engine.WithLogger(slog.New(logger)),
	}
	if src.sample {
		opts = append(opts, engine.WithState(document.NewSampleState()))
	}
	e := engine.NewEngine(opts...)

	if path == "" {
		return e, nil
	}
	prog := newProgress(logger)
	s, err := script.Load(path)
	if err != nil {
		return nil, err
	}
	if _, err := s.Run(e); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("script applied", "path", path, "title", s.Title, "entities", e.State().Count())
	prog.done(fmt.Sprintf("Ran %d steps", len(s.Steps)))
	return e, nil
}

func scriptArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
