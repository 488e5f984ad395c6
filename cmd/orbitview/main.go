// orbitview - interactive OBJ and glTF model viewer.
//
// Controls:
//
//	Left drag   - Orbit the camera
//	Scroll      - Zoom in/out
//	Arrows      - Orbit by a fixed step
//	+/-         - Zoom
//	R           - Reset camera
//	F           - Frame the whole scene
//	O           - Open a model (or drop a file on the window)
//	B           - Toggle bounding boxes
//	F12         - Save a screenshot
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/orbitview/internal/config"
	"github.com/Faultbox/orbitview/internal/logger"
	"github.com/Faultbox/orbitview/internal/viewer"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var overrides *config.Overrides

	cmd := &cobra.Command{
		Use:   "orbitview [model.obj|model.gltf|model.glb ...]",
		Short: "Interactive 3D model viewer",
		Long: `orbitview - interactive 3D model viewer

Opens the given models side by side, or the scene from the config file
when none are given.

Controls:
  Left drag   - Orbit the camera
  Scroll      - Zoom in/out
  Arrows      - Orbit by a fixed step
  +/-         - Zoom
  R           - Reset camera
  F           - Frame the whole scene
  O           - Open a model (or drop a file on the window)
  B           - Toggle bounding boxes
  F12         - Save a screenshot
  Esc         - Quit`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides.Models = args
			return runViewer(cmd.Context(), overrides)
		},
	}
	overrides = config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(newInfoCmd(), newConfigCmd())
	return cmd
}

func runViewer(ctx context.Context, o *config.Overrides) error {
	cfg, err := config.Load(o)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("=== orbitview ===", zap.String("version", version))
	logger.Sugar.Debugf("config: %+v", cfg)

	v, err := viewer.New(cfg)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		return err
	}
	defer v.Close()

	if err := v.Run(ctx); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return err
	}

	logger.Info("viewer closed normally")
	return nil
}

func newConfigCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the default configuration file",
		Long:  "Write the default configuration as YAML, to --output or the user config directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if output == "" {
				if err := cfg.Save(); err != nil {
					return fmt.Errorf("saving config: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s/config.yaml\n", config.ConfigDir())
				return nil
			}
			if err := cfg.SaveTo(output); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write instead of the user config directory")
	return cmd
}
