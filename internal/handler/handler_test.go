package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
	"github.com/BarkinBalci/marketing-insights-service/internal/dto"
	"github.com/BarkinBalci/marketing-insights-service/internal/insights"
	"github.com/BarkinBalci/marketing-insights-service/internal/journey"
	"github.com/BarkinBalci/marketing-insights-service/internal/service"
)

const (
	testTimestamp int64 = 1766702551
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockEventService is a mock implementation of service.EventServicer
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) IngestEvent(ctx context.Context, event *dto.PublishEventRequest) (string, error) {
	args := m.Called(ctx, event)
	return args.String(0), args.Error(1)
}

func (m *MockEventService) IngestBulk(ctx context.Context, events []dto.PublishEventRequest) ([]string, []string, error) {
	args := m.Called(ctx, events)
	return args.Get(0).([]string), args.Get(1).([]string), args.Error(2)
}

func (m *MockEventService) GetMetrics(ctx context.Context, req *dto.GetMetricsRequest) (*dto.GetMetricsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GetMetricsResponse), args.Error(1)
}

func (m *MockEventService) UpsertDailyMetrics(ctx context.Context, req *dto.UpsertDailyMetricsRequest) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

// MockAnomalyDetector is a mock implementation of service.AnomalyDetector
type MockAnomalyDetector struct {
	mock.Mock
}

func (m *MockAnomalyDetector) DetectAnomalies(ctx context.Context, userID string) *insights.Report {
	args := m.Called(ctx, userID)
	return args.Get(0).(*insights.Report)
}

// MockJourneyService is a mock implementation of service.JourneyServicer
type MockJourneyService struct {
	mock.Mock
}

func (m *MockJourneyService) ProcessJourneys(ctx context.Context, userID string) (*journey.ProcessResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journey.ProcessResult), args.Error(1)
}

func (m *MockJourneyService) ListJourneys(ctx context.Context, req *dto.ListJourneysRequest) ([]*domain.CustomerJourney, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CustomerJourney), args.Error(1)
}

func (m *MockJourneyService) Attribution(ctx context.Context, req *dto.AttributionRequest) (*journey.Summary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journey.Summary), args.Error(1)
}

// MockPinger is a mock implementation of Pinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type testDeps struct {
	events    *MockEventService
	anomalies *MockAnomalyDetector
	journeys  *MockJourneyService
}

func newTestHandler(opts ...Option) (*Handler, testDeps) {
	deps := testDeps{
		events:    new(MockEventService),
		anomalies: new(MockAnomalyDetector),
		journeys:  new(MockJourneyService),
	}
	return NewHandler(deps.events, deps.anomalies, deps.journeys, zap.NewNop(), opts...), deps
}

func doJSON(h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var response dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestHandler_HealthCheck(t *testing.T) {
	handler, _ := newTestHandler()

	w := doJSON(handler, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

func TestHandler_HealthCheck_DependencyDown(t *testing.T) {
	clickhouse := new(MockPinger)
	postgres := new(MockPinger)
	clickhouse.On("Ping", mock.Anything).Return(nil)
	postgres.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	handler, _ := newTestHandler(
		WithHealthCheck("clickhouse", clickhouse),
		WithHealthCheck("postgres", postgres),
	)

	w := doJSON(handler, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "degraded", response.Status)
	assert.Equal(t, "ok", response.Checks["clickhouse"])
	assert.Equal(t, "connection refused", response.Checks["postgres"])
}

func TestHandler_PublishEvent_Success(t *testing.T) {
	handler, deps := newTestHandler()

	eventReq := dto.PublishEventRequest{
		UserID:         "tenant-1",
		CustomerID:     "cust-1",
		EventType:      "click",
		Platform:       "google",
		CampaignID:     "campaign1",
		EventTimestamp: testTimestamp,
	}

	deps.events.On("IngestEvent", mock.Anything, &eventReq).Return("event-id-123", nil)

	w := doJSON(handler, http.MethodPost, "/events", eventReq)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var response dto.PublishEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "event-id-123", response.EventID)
	assert.Equal(t, "accepted", response.Status)
	deps.events.AssertExpectations(t)
}

func TestHandler_PublishEvent_InvalidJSON(t *testing.T) {
	handler, deps := newTestHandler()

	w := doJSON(handler, http.MethodPost, "/events", []byte(`{"event_type": "click", invalid}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)
	deps.events.AssertNotCalled(t, "IngestEvent", mock.Anything, mock.Anything)
}

func TestHandler_PublishEvent_MissingRequiredFields(t *testing.T) {
	handler, deps := newTestHandler()

	w := doJSON(handler, http.MethodPost, "/events", dto.PublishEventRequest{EventType: "click"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)
	deps.events.AssertNotCalled(t, "IngestEvent", mock.Anything, mock.Anything)
}

func TestHandler_PublishEvent_FutureTimestamp(t *testing.T) {
	handler, deps := newTestHandler()

	eventReq := dto.PublishEventRequest{
		UserID:         "tenant-1",
		EventType:      "click",
		Platform:       "google",
		EventTimestamp: testTimestamp,
	}

	deps.events.On("IngestEvent", mock.Anything, &eventReq).
		Return("", fmt.Errorf("%w: 2556144000 > 1766702551", service.ErrFutureTimestamp))

	w := doJSON(handler, http.MethodPost, "/events", eventReq)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)
}

func TestHandler_PublishEvent_ServiceError(t *testing.T) {
	handler, deps := newTestHandler()

	eventReq := dto.PublishEventRequest{
		UserID:         "tenant-1",
		EventType:      "click",
		Platform:       "google",
		EventTimestamp: testTimestamp,
	}

	deps.events.On("IngestEvent", mock.Anything, &eventReq).Return("", errors.New("queue publish error"))

	w := doJSON(handler, http.MethodPost, "/events", eventReq)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	response := decodeError(t, w)
	assert.Equal(t, "internal_error", response.Error)
	assert.Contains(t, response.Message, "queue publish error")
	deps.events.AssertExpectations(t)
}

func TestHandler_PublishEventsBulk_PartialSuccess(t *testing.T) {
	handler, deps := newTestHandler()

	bulkReq := dto.PublishEventsBulkRequest{
		Events: []dto.PublishEventRequest{
			{UserID: "tenant-1", EventType: "impression", Platform: "google", EventTimestamp: testTimestamp},
			{UserID: "tenant-1", EventType: "click", Platform: "meta", EventTimestamp: testTimestamp},
		},
	}

	deps.events.On("IngestBulk", mock.Anything, bulkReq.Events).
		Return([]string{"event-id-1"}, []string{"event 1: timestamp cannot be in the future"}, nil)

	w := doJSON(handler, http.MethodPost, "/events/bulk", bulkReq)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var response dto.PublishBulkEventsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Accepted)
	assert.Equal(t, 1, response.Rejected)
	assert.Equal(t, []string{"event-id-1"}, response.EventIDs)
	deps.events.AssertExpectations(t)
}

func TestHandler_PublishEventsBulk_EmptyEvents(t *testing.T) {
	handler, deps := newTestHandler()

	w := doJSON(handler, http.MethodPost, "/events/bulk", dto.PublishEventsBulkRequest{Events: []dto.PublishEventRequest{}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	deps.events.AssertNotCalled(t, "IngestBulk", mock.Anything, mock.Anything)
}

func TestHandler_PublishEventsBulk_InvalidNestedEvent(t *testing.T) {
	handler, deps := newTestHandler()

	w := doJSON(handler, http.MethodPost, "/events/bulk", dto.PublishEventsBulkRequest{
		Events: []dto.PublishEventRequest{{UserID: "tenant-1"}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	deps.events.AssertNotCalled(t, "IngestBulk", mock.Anything, mock.Anything)
}

func TestHandler_GetMetrics_Success(t *testing.T) {
	handler, deps := newTestHandler()

	expectedReq := &dto.GetMetricsRequest{
		UserID:    "tenant-1",
		EventType: "click",
		From:      1760000000,
		To:        1760086400,
		GroupBy:   "platform",
	}

	deps.events.On("GetMetrics", mock.Anything, expectedReq).Return(&dto.GetMetricsResponse{
		UserID:         "tenant-1",
		EventType:      "click",
		TotalCount:     10,
		UniqueCustomer: 4,
		GroupBy:        "platform",
		Groups:         []dto.MetricsGroupData{{GroupValue: "google", TotalCount: 10}},
	}, nil)

	w := doJSON(handler, http.MethodGet,
		"/events/metrics?user_id=tenant-1&event_type=click&from=1760000000&to=1760086400&group_by=platform", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.GetMetricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, uint64(10), response.TotalCount)
	assert.Equal(t, uint64(4), response.UniqueCustomer)
	deps.events.AssertExpectations(t)
}

func TestHandler_GetMetrics_InvalidQueryParams(t *testing.T) {
	handler, deps := newTestHandler()

	w := doJSON(handler, http.MethodGet, "/events/metrics?event_type=click", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	deps.events.AssertNotCalled(t, "GetMetrics", mock.Anything, mock.Anything)
}

func TestHandler_GetMetrics_ValidationErrorFromService(t *testing.T) {
	handler, deps := newTestHandler()

	deps.events.On("GetMetrics", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: invalid group_by value: campaign", service.ErrInvalidRequest))

	w := doJSON(handler, http.MethodGet,
		"/events/metrics?user_id=tenant-1&event_type=click&from=1&to=2&group_by=campaign", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)
}

func TestHandler_GetMetrics_ServiceError(t *testing.T) {
	handler, deps := newTestHandler()

	deps.events.On("GetMetrics", mock.Anything, mock.Anything).Return(nil, errors.New("database error"))

	w := doJSON(handler, http.MethodGet, "/events/metrics?user_id=tenant-1&event_type=click&from=1&to=2", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", decodeError(t, w).Error)
}

func TestHandler_UpsertDailyMetrics(t *testing.T) {
	handler, deps := newTestHandler()

	body := dto.UpsertDailyMetricsRequest{
		Metrics: []dto.DailyMetricRequest{{
			UserID:      "tenant-1",
			Source:      "google",
			AccountID:   "123",
			Date:        "2026-10-14",
			CostUSD:     100,
			Clicks:      10,
			Impressions: 1000,
		}},
	}

	deps.events.On("UpsertDailyMetrics", mock.Anything, &body).Return(1, nil)

	w := doJSON(handler, http.MethodPost, "/metrics/daily", body)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.UpsertDailyMetricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Written)
}

func TestHandler_UpsertDailyMetrics_RejectsNegativeValues(t *testing.T) {
	handler, deps := newTestHandler()

	w := doJSON(handler, http.MethodPost, "/metrics/daily", []byte(
		`{"metrics":[{"user_id":"t","source":"google","account_id":"1","date":"2026-10-14","cost_usd":-5}]}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	deps.events.AssertNotCalled(t, "UpsertDailyMetrics", mock.Anything, mock.Anything)
}

func TestHandler_GetAnomalies(t *testing.T) {
	previous := 100.0
	tests := []struct {
		name         string
		report       *insights.Report
		wantStatus   int
		wantDegraded bool
	}{
		{
			name: "all detectors ok",
			report: &insights.Report{
				UserID: "tenant-1",
				Anomalies: []domain.Anomaly{{
					Type:          domain.AnomalyCostSpike,
					Priority:      domain.PriorityHigh,
					Source:        "google",
					PreviousValue: &previous,
				}},
				Detectors: []insights.DetectorStatus{
					{Detector: domain.AnomalyCostSpike, State: insights.StateOK, Anomalies: 1},
					{Detector: domain.AnomalyCVRDrop, State: insights.StateDisabled},
				},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "one detector failed",
			report: &insights.Report{
				UserID:    "tenant-1",
				Anomalies: []domain.Anomaly{},
				Detectors: []insights.DetectorStatus{
					{Detector: domain.AnomalyCostSpike, State: insights.StateOK},
					{Detector: domain.AnomalyCTRDrop, State: insights.StateFailed, Error: "timeout"},
				},
			},
			wantStatus:   http.StatusOK,
			wantDegraded: true,
		},
		{
			name: "every detector failed",
			report: &insights.Report{
				UserID:    "tenant-1",
				Anomalies: []domain.Anomaly{},
				Detectors: []insights.DetectorStatus{
					{Detector: domain.AnomalyCostSpike, State: insights.StateFailed, Error: "connection refused"},
					{Detector: domain.AnomalyCTRDrop, State: insights.StateFailed, Error: "connection refused"},
				},
			},
			wantStatus:   http.StatusServiceUnavailable,
			wantDegraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, deps := newTestHandler()
			deps.anomalies.On("DetectAnomalies", mock.Anything, "tenant-1").Return(tt.report)

			w := doJSON(handler, http.MethodGet, "/insights/anomalies?user_id=tenant-1", nil)

			assert.Equal(t, tt.wantStatus, w.Code)

			var response dto.AnomaliesResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.wantDegraded, response.Degraded)
			require.NotNil(t, response.Report)
			assert.Len(t, response.Anomalies, len(tt.report.Anomalies))
			assert.Len(t, response.Detectors, len(tt.report.Detectors))
		})
	}
}

func TestHandler_GetAnomalies_MissingUser(t *testing.T) {
	handler, deps := newTestHandler()

	w := doJSON(handler, http.MethodGet, "/insights/anomalies", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	deps.anomalies.AssertNotCalled(t, "DetectAnomalies", mock.Anything, mock.Anything)
}

func TestHandler_ProcessJourneys(t *testing.T) {
	handler, deps := newTestHandler()

	deps.journeys.On("ProcessJourneys", mock.Anything, "tenant-1").Return(&journey.ProcessResult{
		UserID:    "tenant-1",
		Purchases: 4,
		Created:   2,
		Skipped:   1,
		Ignored:   1,
	}, nil)

	w := doJSON(handler, http.MethodPost, "/journeys/process?user_id=tenant-1", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.ProcessJourneysResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Created)
	assert.Equal(t, 1, response.Ignored)
}

func TestHandler_ProcessJourneys_Error(t *testing.T) {
	handler, deps := newTestHandler()

	deps.journeys.On("ProcessJourneys", mock.Anything, "tenant-1").Return(nil, errors.New("clickhouse down"))

	w := doJSON(handler, http.MethodPost, "/journeys/process?user_id=tenant-1", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_ListJourneys(t *testing.T) {
	handler, deps := newTestHandler()

	deps.journeys.On("ListJourneys", mock.Anything, &dto.ListJourneysRequest{UserID: "tenant-1", Limit: 20}).
		Return([]*domain.CustomerJourney{{UserID: "tenant-1", OrderID: "order-1"}}, nil)

	w := doJSON(handler, http.MethodGet, "/journeys?user_id=tenant-1&limit=20", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.ListJourneysResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
	assert.Equal(t, "order-1", response.Journeys[0].OrderID)
}

func TestHandler_ListJourneys_LimitOutOfRange(t *testing.T) {
	handler, deps := newTestHandler()

	w := doJSON(handler, http.MethodGet, "/journeys?user_id=tenant-1&limit=5000", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	deps.journeys.AssertNotCalled(t, "ListJourneys", mock.Anything, mock.Anything)
}

func TestHandler_GetAttribution(t *testing.T) {
	handler, deps := newTestHandler()

	deps.journeys.On("Attribution", mock.Anything, &dto.AttributionRequest{UserID: "tenant-1", Model: "linear"}).
		Return(&journey.Summary{
			Model:           journey.ModelLinear,
			Channels:        []journey.ChannelCredit{{Channel: "google", Value: 100, Share: 100}},
			TotalValue:      100,
			AttributedValue: 100,
			JourneyCount:    1,
		}, nil)

	w := doJSON(handler, http.MethodGet, "/journeys/attribution?user_id=tenant-1&model=linear", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.AttributionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, journey.ModelLinear, response.Model)
	require.Len(t, response.Channels, 1)
	assert.Equal(t, 100.0, response.Channels[0].Share)
}

func TestHandler_GetAttribution_UnknownModel(t *testing.T) {
	handler, deps := newTestHandler()

	w := doJSON(handler, http.MethodGet, "/journeys/attribution?user_id=tenant-1&model=time_decay", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	deps.journeys.AssertNotCalled(t, "Attribution", mock.Anything, mock.Anything)
}

func TestHandler_PrometheusEndpoint(t *testing.T) {
	handler, _ := newTestHandler()

	w := doJSON(handler, http.MethodGet, "/internal/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
