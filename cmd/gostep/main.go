package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/gostep/internal/config"
	"github.com/philipparndt/gostep/internal/logging"
	"github.com/philipparndt/gostep/pkg/cad"
	"github.com/philipparndt/gostep/pkg/kernel/helper"
	"github.com/philipparndt/gostep/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gostep",
	Short: "Inspect, tessellate and name the faces of STEP models",
	Long: `gostep loads STEP (ISO 10303-21) models through a B-rep kernel helper,
reports per-face geometry, produces render-ready meshes and writes feature
names back into the STEP file. It can also serve all of this over HTTP.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger, err = logging.New(logging.Config{
			Level:       cfg.Log.Level,
			Format:      cfg.Log.Format,
			Development: cfg.Log.Development,
		})
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		if cfg.File != "" {
			logger.Debug("using config file", zap.String("file", cfg.File))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultFile+")")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console or json)")
	pf.Bool("dev", false, "development logging")
	pf.String("kernel", "", "B-rep kernel helper executable")
	pf.StringSlice("kernel-arg", nil, "leading argument for the kernel helper (repeatable)")
}

// newEngine builds an engine on the configured kernel helper
func newEngine() (*cad.Engine, error) {
	if cfg.Kernel.Command == "" {
		return nil, fmt.Errorf("no kernel configured: set --kernel, kernel.command or %sKERNEL__COMMAND", config.EnvPrefix)
	}
	k := helper.New(cfg.Kernel.Command, cfg.Kernel.Args, logger)
	return cad.NewEngine(k, logger), nil
}

// loadModel loads path into a fresh engine
func loadModel(path string) (*cad.Engine, cad.LoadInfo, error) {
	engine, err := newEngine()
	if err != nil {
		return nil, cad.LoadInfo{}, err
	}
	info, err := engine.Load(path)
	if err != nil {
		return nil, cad.LoadInfo{}, err
	}
	return engine, info, nil
}

func meshOptions() cad.MeshOptions {
	return cad.MeshOptions{
		LinearDeflection:  cfg.Mesh.LinearDeflection,
		AngularDeflection: cfg.Mesh.AngularDeflection,
	}
}

func addMeshFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("linear", 0.1, "linear deflection in model units")
	cmd.Flags().Float64("angular", 0.5, "angular deflection in radians, passed to the kernel as is")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
