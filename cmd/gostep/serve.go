package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/philipparndt/gostep/internal/metrics"
	"github.com/philipparndt/gostep/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve the HTTP API",
	Long: `Start the HTTP API. An optional file is loaded before the server starts;
with --watch it is reloaded whenever it changes on disk.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addMeshFlags(serveCmd)
	serveCmd.Flags().String("addr", ":8000", "Listen address")
	serveCmd.Flags().Bool("watch", false, "Reload the loaded file when it changes")
	serveCmd.Flags().Int64("max-upload-mb", 100, "Maximum upload size in MiB")
}

func runServe(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	s, err := server.New(server.Config{
		Engine:            engine,
		Logger:            logger,
		Metrics:           metrics.New(prometheus.DefaultRegisterer),
		Addr:              cfg.Server.Addr,
		MaxUploadBytes:    cfg.MaxUploadBytes(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		Mesh:              meshOptions(),
		Watch:             cfg.Server.Watch,
	})
	if err != nil {
		return err
	}

	if len(args) == 1 {
		info, err := s.LoadFile(args[0])
		if err != nil {
			return err
		}
		logger.Info("model loaded", zap.String("path", info.Path), zap.Int("faces", info.NumFaces))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return s.Serve(ctx)
}
