package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/Brownie44l1/ronde-api/internal/model"
)

type Config struct {
	Port string

	ModelPath         string
	LabelsPath        string
	SharedLibraryPath string

	Verdict model.Verdict

	// MaxUploadMB bounds the multipart memory buffer; larger uploads spill
	// to disk rather than being rejected.
	MaxUploadMB int64

	LogLevel  string
	LogFormat string
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() (*Config, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port: getEnv("PORT", "8000"),

		ModelPath:         resolve(root, getEnv("MODEL_PATH", filepath.Join("models", "ronde_anget_light.onnx"))),
		LabelsPath:        resolve(root, getEnv("LABELS_PATH", filepath.Join("models", "labelsronde.json"))),
		SharedLibraryPath: os.Getenv("ONNXRUNTIME_LIB"),

		Verdict: model.Verdict{
			Confident:    getEnv("VERDICT_CONFIDENT", model.DefaultVerdict.Confident),
			NotConfident: getEnv("VERDICT_NOT_CONFIDENT", model.DefaultVerdict.NotConfident),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	threshold, err := strconv.ParseFloat(getEnv("CONFIDENCE_THRESHOLD", "60"), 64)
	if err != nil {
		return nil, errors.Wrap(err, "invalid CONFIDENCE_THRESHOLD")
	}
	if threshold < 0 || threshold > 100 {
		return nil, errors.Errorf("CONFIDENCE_THRESHOLD must be within [0,100], got %v", threshold)
	}
	cfg.Verdict.Threshold = threshold

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "32"), 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "invalid MAX_UPLOAD_MB")
	}
	if maxUpload <= 0 {
		return nil, errors.Errorf("MAX_UPLOAD_MB must be positive, got %d", maxUpload)
	}
	cfg.MaxUploadMB = maxUpload

	return cfg, nil
}

// projectRoot is the working directory, or two levels up when started from
// cmd/server.
func projectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get working directory")
	}
	if filepath.Base(wd) == "server" && filepath.Base(filepath.Dir(wd)) == "cmd" {
		wd = filepath.Join(wd, "../..")
	}
	return wd, nil
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
