package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dsaviz/dsaviz/internal/config"
	"github.com/dsaviz/dsaviz/internal/export"
)

func newRenderCmd() *cobra.Command {
	var (
		output string
		width  int
		height int
		src    sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "render [script.toml]",
		Short: "Render a diagram script to PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			e, err := buildEngine(ctx, scriptArg(args), src)
			if err != nil {
				return err
			}

			opts := export.DefaultOptions()
			if cfg, err := config.Load(); err == nil {
				opts.Width, opts.Height = cfg.ExportWidth, cfg.ExportHeight
			}
			if cmd.Flags().Changed("width") {
				opts.Width = width
			}
			if cmd.Flags().Changed("height") {
				opts.Height = height
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			prog := newProgress(logger)
			if err := export.WritePNG(f, e.ExportScene(), opts); err != nil {
				f.Close()
				return fmt.Errorf("render: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			prog.done(fmt.Sprintf("Wrote %s (%dx%d)", output, opts.Width, opts.Height))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "diagram.png", "output file")
	cmd.Flags().IntVar(&width, "width", 0, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "image height in pixels")
	src.register(cmd)
	return cmd
}
