package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"churnlens/history"
	qhttp "churnlens/http"
	"churnlens/logging"
	"churnlens/ml"
	"churnlens/monitoring"
)

type Config struct {
	Model struct {
		BundlePath string `yaml:"bundle_path"`
		CacheSize  int    `yaml:"cache_size"`
		Watch      bool   `yaml:"watch"`
	} `yaml:"model"`
	History struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	} `yaml:"history"`
	Http struct {
		Port           int `yaml:"port"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"http"`
	Log logging.Config `yaml:"log"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(config.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 2. Load the model bundle. Missing or corrupt artifact means the
	// service cannot run at all.
	bundle, err := ml.LoadBundle(config.Model.BundlePath)
	if err != nil {
		logger.Fatal("failed to load model bundle", zap.Error(err))
	}
	logger.Info("model bundle loaded",
		zap.String("path", config.Model.BundlePath),
		zap.String("model_type", bundle.ModelType),
		zap.Strings("numeric_cols", bundle.NumericCols))

	pipeline, err := ml.NewPipeline(bundle, config.Model.CacheSize)
	if err != nil {
		logger.Fatal("failed to build inference pipeline", zap.Error(err))
	}

	// 3. Open the history ledger. A broken store is not fatal: predictions
	// still work, they just cannot be saved.
	ledger, err := history.Open(config.History.Backend, config.History.Path, bundle.NumericCols)
	if err != nil {
		logger.Warn("history store unavailable, predictions will not be saved", zap.Error(err))
	} else {
		defer ledger.Close()
		qhttp.SetLedger(ledger)
	}

	hub := monitoring.NewHub(logger)
	defer hub.Close()

	qhttp.SetBundle(bundle)
	qhttp.SetPredictor(pipeline)
	qhttp.SetHub(hub)
	qhttp.SetLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if config.Model.Watch {
		if err := ml.WatchBundle(ctx, config.Model.BundlePath, logger); err != nil {
			logger.Warn("bundle watcher disabled", zap.Error(err))
		}
	}

	// 4. Start HTTP server
	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port != 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.TimeoutSeconds > 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	server := qhttp.NewServer(serverConfig, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	cancel()
	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
