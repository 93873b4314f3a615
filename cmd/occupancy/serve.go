package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	qhttp "occupancy/http"
	"occupancy/logging"
	"occupancy/monitoring"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the prediction form and JSON API",
	Long: `Serve loads the feature order and model once, then serves:

  GET  /             input form
  POST /predict      form submission, HTML result
  POST /api/predict  JSON prediction
  GET  /api/schema   feature order and category options
  GET  /api/health   liveness
  GET  /metrics      Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides http.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.HTTP.Port = servePort
	}

	logger := logging.New(cfg.Log)
	defer logger.Sync()

	predictor, err := buildPredictor(cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderer, err := qhttp.NewRenderer(cfg.Templates.Dir, logger)
	if err != nil {
		return err
	}
	if cfg.Templates.Reload {
		if err := renderer.Watch(ctx); err != nil {
			return err
		}
		logger.Info("watching templates", zap.String("dir", cfg.Templates.Dir))
	}

	metrics := monitoring.NewMetrics()
	handlers, err := qhttp.NewHandlers(predictor, renderer, metrics, logger)
	if err != nil {
		return err
	}

	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.HTTP.Port,
		Timeout:        cfg.HTTP.Timeout,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, handlers, metrics, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("exiting")
	return nil
}
