package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Brownie44l1/ronde-api/internal/config"
	"github.com/Brownie44l1/ronde-api/internal/handlers"
	"github.com/Brownie44l1/ronde-api/internal/metrics"
	"github.com/Brownie44l1/ronde-api/internal/model"
	"github.com/Brownie44l1/ronde-api/internal/preprocess"
)

func setupLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	setupLogging(cfg)

	log.Infof("Loading model from: %s", cfg.ModelPath)
	modelServer, err := model.NewServer(model.Options{
		ModelPath:         cfg.ModelPath,
		LabelsPath:        cfg.LabelsPath,
		SharedLibraryPath: cfg.SharedLibraryPath,
	})
	if err != nil {
		log.Fatalf("Failed to initialize model server: %v", err)
	}
	defer modelServer.Close()

	if len(os.Args) > 1 && os.Args[1] == "predict" {
		if len(os.Args) < 3 {
			log.Error("missing image path argument for predict command")
			return
		}
		if err := predictOnce(modelServer, cfg.Verdict, os.Args[2]); err != nil {
			log.WithError(err).Error("Prediction failed")
		}
		return
	}

	serve(cfg, modelServer)
}

func serve(cfg *config.Config, modelServer *model.Server) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()
	handler := handlers.NewHandler(modelServer, cfg.Verdict, m)
	router := handlers.NewRouter(handler, m, cfg.MaxUploadMB)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Server starting on port %s (gin %s mode)", cfg.Port, gin.Mode())
		log.Infof("Classes: %v", modelServer.Labels.IDs())
		log.Info("Endpoints:")
		log.Info("  GET  /health         - Health check")
		log.Info("  GET  /metrics        - Prometheus metrics")
		log.Info("  POST /predict/       - Predict from image upload (field: file)")
		log.Info("  POST /predict/tensor - Predict from a preprocessed tensor")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Server failed: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}
}

// predictOnce classifies one file and prints the response body to stdout.
func predictOnce(modelServer *model.Server, verdict model.Verdict, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	tensor, err := preprocess.FromReader(file)
	if err != nil {
		return err
	}

	start := time.Now()
	pred, err := modelServer.Predict(tensor)
	if err != nil {
		return err
	}
	log.Debugf("inference took %s", time.Since(start))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(model.NewResponse(pred, verdict))
}
