package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Brownie44l1/ronde-api/internal/metrics"
)

func NewRouter(h *Handler, m *metrics.Metrics, maxUploadMB int64) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxUploadMB << 20

	router.Use(requestID(), logRequests(m), gin.Recovery(), enableCORS())

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.POST("/predict/", h.PredictFromImage)
	router.POST("/predict/tensor", h.PredictFromTensor)

	return router
}
