package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Brownie44l1/ronde-api/internal/metrics"
	"github.com/Brownie44l1/ronde-api/internal/model"
	"github.com/Brownie44l1/ronde-api/internal/preprocess"
)

// Predictor is satisfied by *model.Server.
type Predictor interface {
	Predict(tensor []float32) (*model.Prediction, error)
	Classes() int
}

type Handler struct {
	predictor Predictor
	verdict   model.Verdict
	metrics   *metrics.Metrics
}

func NewHandler(predictor Predictor, verdict model.Verdict, m *metrics.Metrics) *Handler {
	return &Handler{
		predictor: predictor,
		verdict:   verdict,
		metrics:   m,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "classes": h.predictor.Classes()})
}

// PredictFromImage serves POST /predict/ with a multipart "file" field.
func (h *Handler) PredictFromImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "file: field required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.fail(c, errors.Wrap(err, "open upload"))
		return
	}
	defer file.Close()

	log.WithFields(log.Fields{
		"request_id": c.GetString(requestIDKey),
		"filename":   fileHeader.Filename,
		"size":       fileHeader.Size,
	}).Debug("received file")

	tensor, err := preprocess.FromReader(file)
	if err != nil {
		h.fail(c, errors.Wrapf(err, "preprocess %s", fileHeader.Filename))
		return
	}

	h.respond(c, tensor)
}

// PredictFromTensor serves POST /predict/tensor with an already
// preprocessed NHWC tensor.
func (h *Handler) PredictFromTensor(c *gin.Context) {
	var req model.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid JSON"})
		return
	}

	if len(req.Image) != preprocess.TensorLen {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": fmt.Sprintf("expected %d values, got %d", preprocess.TensorLen, len(req.Image)),
		})
		return
	}

	h.respond(c, req.Image)
}

func (h *Handler) respond(c *gin.Context, tensor []float32) {
	start := time.Now()
	pred, err := h.predictor.Predict(tensor)
	h.metrics.ObserveInference(time.Since(start))
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := model.NewResponse(pred, h.verdict)
	h.metrics.CountPrediction(resp.LabelID, resp.ThresholdCheck == h.verdict.Confident)
	c.JSON(http.StatusOK, resp)
}

// fail answers with a bare 500; the cause is only logged.
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}
