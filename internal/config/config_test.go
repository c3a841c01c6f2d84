package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/Brownie44l1/ronde-api/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "MODEL_PATH", "LABELS_PATH", "ONNXRUNTIME_LIB",
		"CONFIDENCE_THRESHOLD", "VERDICT_CONFIDENT", "VERDICT_NOT_CONFIDENT", "MAX_UPLOAD_MB"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if !strings.HasSuffix(cfg.ModelPath, filepath.Join("models", "ronde_anget_light.onnx")) || !filepath.IsAbs(cfg.ModelPath) {
		t.Errorf("ModelPath = %q", cfg.ModelPath)
	}
	if !strings.HasSuffix(cfg.LabelsPath, filepath.Join("models", "labelsronde.json")) {
		t.Errorf("LabelsPath = %q", cfg.LabelsPath)
	}
	if cfg.Verdict != model.DefaultVerdict {
		t.Errorf("Verdict = %+v, want %+v", cfg.Verdict, model.DefaultVerdict)
	}
	if cfg.MaxUploadMB != 32 {
		t.Errorf("MaxUploadMB = %d", cfg.MaxUploadMB)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_PATH", "/opt/models/m.onnx")
	t.Setenv("CONFIDENCE_THRESHOLD", "75.5")
	t.Setenv("VERDICT_CONFIDENT", "confident")
	t.Setenv("VERDICT_NOT_CONFIDENT", "not confident")
	t.Setenv("MAX_UPLOAD_MB", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9090" || cfg.ModelPath != "/opt/models/m.onnx" || cfg.MaxUploadMB != 4 {
		t.Errorf("Load() = %+v", cfg)
	}
	want := model.Verdict{Threshold: 75.5, Confident: "confident", NotConfident: "not confident"}
	if cfg.Verdict != want {
		t.Errorf("Verdict = %+v, want %+v", cfg.Verdict, want)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	cases := []struct{ key, value string }{
		{"CONFIDENCE_THRESHOLD", "sixty"},
		{"CONFIDENCE_THRESHOLD", "101"},
		{"CONFIDENCE_THRESHOLD", "-1"},
		{"MAX_UPLOAD_MB", "big"},
		{"MAX_UPLOAD_MB", "0"},
	}
	for _, c := range cases {
		t.Run(c.key+"="+c.value, func(t *testing.T) {
			t.Setenv(c.key, c.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() expected error for %s=%s", c.key, c.value)
			}
		})
	}
}
