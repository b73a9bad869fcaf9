package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/dto"
)

// processJourneys handles POST /journeys/process
// @Summary Build customer journeys
// @Description Build and store a journey for every purchase of the tenant that has none yet
// @Tags journeys
// @Produce json
// @Param user_id query string true "Tenant ID" example:"tenant_123"
// @Success 200 {object} dto.ProcessJourneysResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /journeys/process [post]
func (h *Handler) processJourneys(c *gin.Context) {
	var req dto.ProcessJourneysRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid journey processing request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	result, err := h.journeyService.ProcessJourneys(c.Request.Context(), req.UserID)
	if err != nil {
		h.log.Error("Failed to process journeys", zap.Error(err), zap.String("user_id", req.UserID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// listJourneys handles GET /journeys
// @Summary List customer journeys
// @Description List stored journeys, newest purchase first
// @Tags journeys
// @Produce json
// @Param user_id query string true "Tenant ID" example:"tenant_123"
// @Param from query int false "Purchases at or after (Unix epoch)"
// @Param to query int false "Purchases at or before (Unix epoch)"
// @Param limit query int false "Maximum journeys returned (1-1000)"
// @Success 200 {object} dto.ListJourneysResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /journeys [get]
func (h *Handler) listJourneys(c *gin.Context) {
	var req dto.ListJourneysRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid journey list request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	journeys, err := h.journeyService.ListJourneys(c.Request.Context(), &req)
	if err != nil {
		status, code := statusFor(err)
		h.log.Error("Failed to list journeys", zap.Error(err), zap.String("user_id", req.UserID))
		c.JSON(status, dto.ErrorResponse{
			Error:   code,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.ListJourneysResponse{
		UserID:   req.UserID,
		Count:    len(journeys),
		Journeys: journeys,
	})
}

// getAttribution handles GET /journeys/attribution
// @Summary Attribution summary
// @Description Credit stored journeys' order value to channels with the chosen model
// @Tags journeys
// @Produce json
// @Param user_id query string true "Tenant ID" example:"tenant_123"
// @Param model query string true "Attribution model" Enums(last_click, first_click, linear)
// @Param from query int false "Purchases at or after (Unix epoch)"
// @Param to query int false "Purchases at or before (Unix epoch)"
// @Success 200 {object} dto.AttributionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /journeys/attribution [get]
func (h *Handler) getAttribution(c *gin.Context) {
	var req dto.AttributionRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid attribution request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	summary, err := h.journeyService.Attribution(c.Request.Context(), &req)
	if err != nil {
		status, code := statusFor(err)
		h.log.Error("Failed to compute attribution",
			zap.Error(err),
			zap.String("user_id", req.UserID),
			zap.String("model", req.Model))
		c.JSON(status, dto.ErrorResponse{
			Error:   code,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}
