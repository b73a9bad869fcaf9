package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/dto"
)

// getAnomalies handles GET /insights/anomalies
// @Summary Detect anomalies
// @Description Run every enabled detector for a tenant. Detector failures degrade the report; 503 only when all of them fail.
// @Tags insights
// @Produce json
// @Param user_id query string true "Tenant ID" example:"tenant_123"
// @Success 200 {object} dto.AnomaliesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.AnomaliesResponse
// @Router /insights/anomalies [get]
func (h *Handler) getAnomalies(c *gin.Context) {
	var req dto.AnomaliesRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid anomalies request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	report := h.anomalies.DetectAnomalies(c.Request.Context(), req.UserID)
	response := dto.AnomaliesResponse{
		Degraded: report.Degraded(),
		Report:   report,
	}

	if report.Unavailable() {
		h.log.Error("Anomaly detection unavailable", zap.String("user_id", req.UserID))
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	h.log.Info("Anomalies detected",
		zap.String("user_id", req.UserID),
		zap.Int("anomaly_count", len(report.Anomalies)),
		zap.Bool("degraded", response.Degraded))

	c.JSON(http.StatusOK, response)
}
