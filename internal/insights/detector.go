package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
	"github.com/BarkinBalci/marketing-insights-service/internal/observability"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository"
)

// DetectorState is the outcome of one detector in a detection pass
type DetectorState string

const (
	StateOK       DetectorState = "ok"
	StateFailed   DetectorState = "failed"
	StateDisabled DetectorState = "disabled"
)

// DetectorStatus reports how a single detector fared
type DetectorStatus struct {
	Detector   domain.AnomalyType `json:"detector"`
	State      DetectorState      `json:"state"`
	Error      string             `json:"error,omitempty"`
	Anomalies  int                `json:"anomalies"`
	DurationMs int64              `json:"duration_ms"`
}

// Report is the result of a detection pass. An empty anomaly list with every
// detector ok means nothing unusual; failed detectors are listed separately.
type Report struct {
	UserID      string           `json:"user_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Anomalies   []domain.Anomaly `json:"anomalies"`
	Detectors   []DetectorStatus `json:"detectors"`
}

// Degraded reports whether at least one detector failed
func (r *Report) Degraded() bool {
	for _, s := range r.Detectors {
		if s.State == StateFailed {
			return true
		}
	}
	return false
}

// Unavailable reports whether every enabled detector failed
func (r *Report) Unavailable() bool {
	enabled := 0
	for _, s := range r.Detectors {
		switch s.State {
		case StateOK:
			return false
		case StateFailed:
			enabled++
		}
	}
	return enabled > 0
}

// Detector runs the configured anomaly detectors against the daily metrics table
type Detector struct {
	repo   repository.MetricsRepository
	cfg    Config
	log    *zap.Logger
	now    func() time.Time
	tracer trace.Tracer
}

// NewDetector creates a new anomaly detector
func NewDetector(repo repository.MetricsRepository, cfg Config, log *zap.Logger, opts ...Option) *Detector {
	d := &Detector{
		repo:   repo,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
		tracer: otel.Tracer(observability.TracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the detector configuration
func (d *Detector) Config() Config {
	return d.cfg
}

type detectorResult struct {
	status    DetectorStatus
	anomalies []domain.Anomaly
}

// DetectAnomalies runs every enabled detector for the tenant. Detector failures are
// isolated and reported in the returned Report; this method never fails as a whole.
func (d *Detector) DetectAnomalies(ctx context.Context, userID string) *Report {
	ctx, span := d.tracer.Start(ctx, "insights.DetectAnomalies",
		trace.WithAttributes(attribute.String("user_id", userID)))
	defer span.End()

	results := make([]detectorResult, len(detectorOrder))

	if d.cfg.Parallel {
		var g errgroup.Group
		g.SetLimit(len(detectorOrder))
		for i, t := range detectorOrder {
			g.Go(func() error {
				results[i] = d.runDetector(ctx, userID, t)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, t := range detectorOrder {
			results[i] = d.runDetector(ctx, userID, t)
		}
	}

	report := &Report{
		UserID:      userID,
		GeneratedAt: d.now().UTC(),
		Anomalies:   make([]domain.Anomaly, 0),
		Detectors:   make([]DetectorStatus, 0, len(results)),
	}
	for _, r := range results {
		report.Detectors = append(report.Detectors, r.status)
		report.Anomalies = append(report.Anomalies, r.anomalies...)
	}
	sortByPriority(report.Anomalies)

	span.SetAttributes(
		attribute.Int("anomalies", len(report.Anomalies)),
		attribute.Bool("degraded", report.Degraded()),
	)

	d.log.Info("Anomaly detection completed",
		zap.String("user_id", userID),
		zap.Int("anomalies", len(report.Anomalies)),
		zap.Bool("degraded", report.Degraded()))

	return report
}

func (d *Detector) runDetector(ctx context.Context, userID string, t domain.AnomalyType) (result detectorResult) {
	cfg, _ := d.cfg.Detector(t)
	result.status.Detector = t

	if !cfg.Enabled {
		result.status.State = StateDisabled
		observability.DetectorRunsTotal.WithLabelValues(string(t), string(StateDisabled)).Inc()
		return result
	}

	ctx, span := d.tracer.Start(ctx, "insights.detector",
		trace.WithAttributes(attribute.String("detector", string(t))))
	defer span.End()

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		result.status.DurationMs = elapsed.Milliseconds()
		observability.DetectorDuration.WithLabelValues(string(t)).Observe(elapsed.Seconds())
		observability.DetectorRunsTotal.WithLabelValues(string(t), string(result.status.State)).Inc()
	}()

	anomalies, err := d.detect(ctx, userID, t, cfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("detector timed out after %s: %w", d.cfg.QueryTimeout, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.log.Error("Anomaly detector failed",
			zap.String("detector", string(t)),
			zap.String("user_id", userID),
			zap.Error(err))
		result.status.State = StateFailed
		result.status.Error = err.Error()
		return result
	}

	sortByMagnitude(anomalies)
	if d.cfg.Limit > 0 && len(anomalies) > d.cfg.Limit {
		anomalies = anomalies[:d.cfg.Limit]
	}
	for _, a := range anomalies {
		observability.AnomaliesFound.WithLabelValues(string(t), string(a.Priority)).Inc()
	}

	result.status.State = StateOK
	result.status.Anomalies = len(anomalies)
	result.anomalies = anomalies
	return result
}

// detect bounds a single detector by the query timeout and converts panics into errors
func (d *Detector) detect(ctx context.Context, userID string, t domain.AnomalyType, cfg DetectorConfig) (anomalies []domain.Anomaly, err error) {
	defer func() {
		if r := recover(); r != nil {
			anomalies = nil
			err = fmt.Errorf("detector panicked: %v", r)
		}
	}()

	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	if d.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.QueryTimeout)
		defer cancel()
	}

	switch t {
	case domain.AnomalyLowROAS:
		return d.detectLowROAS(ctx, userID, cfg)
	case domain.AnomalyZeroConversions:
		return d.detectZeroConversions(ctx, userID, cfg)
	default:
		spec, ok := changeDetectors[t]
		if !ok {
			return nil, fmt.Errorf("unknown detector: %s", t)
		}
		return d.detectChange(ctx, userID, spec, cfg)
	}
}
