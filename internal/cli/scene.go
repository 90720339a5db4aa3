package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dsaviz/dsaviz/internal/config"
	"github.com/dsaviz/dsaviz/internal/engine"
)

func newSceneCmd() *cobra.Command {
	var (
		state bool
		src   sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "scene [script.toml]",
		Short: "Print the draw commands (or the state) a script produces",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(cmd.Context(), scriptArg(args), src)
			if err != nil {
				return err
			}
			var v any = engine.CompileDrawCommands(e.ExportScene(), engine.Identity())
			if state {
				v = e.State()
			}
			return writeJSON(cmd, v)
		},
	}

	cmd.Flags().BoolVar(&state, "state", false, "print the canvas state instead of draw commands")
	src.register(cmd)
	return cmd
}

func newLimitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "limits",
		Short: "Print the effective validation limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return writeJSON(cmd, cfg.Limits())
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
