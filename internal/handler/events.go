package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/dto"
)

// publishEvent handles POST /events
// @Summary Publish a single event
// @Description Publish a single marketing event to the queue
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.PublishEventRequest true "Event data"
// @Success 202 {object} dto.PublishEventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events [post]
func (h *Handler) publishEvent(c *gin.Context) {
	var req dto.PublishEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid event request",
			zap.Error(err),
			zap.String("event_type", req.EventType))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventID, err := h.eventService.IngestEvent(c.Request.Context(), &req)
	if err != nil {
		status, code := statusFor(err)
		h.log.Error("Failed to process event",
			zap.Error(err),
			zap.String("event_type", req.EventType),
			zap.String("user_id", req.UserID))
		c.JSON(status, dto.ErrorResponse{
			Error:   code,
			Message: err.Error(),
		})
		return
	}

	h.log.Info("Event accepted",
		zap.String("event_id", eventID),
		zap.String("event_type", req.EventType))

	c.JSON(http.StatusAccepted, dto.PublishEventResponse{
		EventID: eventID,
		Status:  "accepted",
	})
}

// publishEventsBulk handles POST /events/bulk
// @Summary Publish multiple events
// @Description Publish up to 1000 marketing events; each event is accepted or rejected on its own
// @Tags events
// @Accept json
// @Produce json
// @Param events body dto.PublishEventsBulkRequest true "Bulk events data"
// @Success 202 {object} dto.PublishBulkEventsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events/bulk [post]
func (h *Handler) publishEventsBulk(c *gin.Context) {
	var bulkRequest dto.PublishEventsBulkRequest

	if err := c.ShouldBindJSON(&bulkRequest); err != nil {
		h.log.Warn("Invalid bulk event request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventIDs, errors, err := h.eventService.IngestBulk(c.Request.Context(), bulkRequest.Events)
	if err != nil {
		h.log.Error("Failed to process bulk events",
			zap.Error(err),
			zap.Int("event_count", len(bulkRequest.Events)))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	accepted := len(eventIDs)
	rejected := len(errors)

	h.log.Info("Bulk events processed",
		zap.Int("accepted", accepted),
		zap.Int("rejected", rejected),
		zap.Int("total", len(bulkRequest.Events)))

	c.JSON(http.StatusAccepted, dto.PublishBulkEventsResponse{
		Accepted: accepted,
		Rejected: rejected,
		EventIDs: eventIDs,
		Errors:   errors,
	})
}

// getMetrics handles GET /events/metrics
// @Summary Get event counts
// @Description Count a tenant's raw events of one type with optional grouping by platform, hour, or day
// @Tags events
// @Produce json
// @Param user_id query string true "Tenant ID" example:"tenant_123"
// @Param event_type query string true "Event type to filter by" example:"click"
// @Param from query int true "Start timestamp (Unix epoch)" example:"1759395200"
// @Param to query int true "End timestamp (Unix epoch)" example:"1760000000"
// @Param group_by query string false "Field to group by" Enums(platform, hour, day)
// @Success 200 {object} dto.GetMetricsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events/metrics [get]
func (h *Handler) getMetrics(c *gin.Context) {
	var req dto.GetMetricsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid metrics request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	response, err := h.eventService.GetMetrics(c.Request.Context(), &req)
	if err != nil {
		status, code := statusFor(err)
		h.log.Error("Failed to get metrics",
			zap.Error(err),
			zap.String("user_id", req.UserID),
			zap.String("event_type", req.EventType),
			zap.Int64("from", req.From),
			zap.Int64("to", req.To))
		c.JSON(status, dto.ErrorResponse{
			Error:   code,
			Message: err.Error(),
		})
		return
	}

	h.log.Info("Metrics retrieved",
		zap.String("event_type", req.EventType),
		zap.Uint64("total_count", response.TotalCount),
		zap.Uint64("unique_customers", response.UniqueCustomer))

	c.JSON(http.StatusOK, response)
}

// upsertDailyMetrics handles POST /metrics/daily
// @Summary Upsert daily metrics
// @Description Write daily ad-platform metric rows; the latest write wins per (user, source, account, date)
// @Tags metrics
// @Accept json
// @Produce json
// @Param metrics body dto.UpsertDailyMetricsRequest true "Daily metric rows"
// @Success 200 {object} dto.UpsertDailyMetricsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /metrics/daily [post]
func (h *Handler) upsertDailyMetrics(c *gin.Context) {
	var req dto.UpsertDailyMetricsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid daily metrics request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	written, err := h.eventService.UpsertDailyMetrics(c.Request.Context(), &req)
	if err != nil {
		status, code := statusFor(err)
		h.log.Error("Failed to upsert daily metrics",
			zap.Error(err),
			zap.Int("row_count", len(req.Metrics)))
		c.JSON(status, dto.ErrorResponse{
			Error:   code,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.UpsertDailyMetricsResponse{Written: written})
}
