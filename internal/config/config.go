package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/BarkinBalci/marketing-insights-service/internal/insights"
	"github.com/BarkinBalci/marketing-insights-service/internal/journey"
	"github.com/BarkinBalci/marketing-insights-service/internal/logger"
	"github.com/BarkinBalci/marketing-insights-service/internal/observability"
)

type Config struct {
	Service    Service    `envconfig:"SERVICE"`
	ClickHouse ClickHouse `envconfig:"CLICKHOUSE"`
	Postgres   Postgres   `envconfig:"POSTGRES"`
	SQS        SQS        `envconfig:"SQS"`
	Valkey     Valkey     `envconfig:"VALKEY"`
	Consumer   Consumer   `envconfig:"CONSUMER"`
	Insights   Insights   `envconfig:"INSIGHTS"`
	Journey    Journey    `envconfig:"JOURNEY"`
	Log        Log        `envconfig:"LOG"`
	Tracing    Tracing    `envconfig:"TRACING"`
}

type Service struct {
	Environment string `envconfig:"ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"API_PORT" default:"8080"`
	Host        string `envconfig:"HOST" default:"localhost:8080"`
	Version     string `envconfig:"VERSION" default:"dev"`
}

type ClickHouse struct {
	Host            string `envconfig:"HOST" required:"true"`
	Port            string `envconfig:"PORT" required:"true"`
	Database        string `envconfig:"DB" required:"true"`
	User            string `envconfig:"USER" default:""`
	Password        string `envconfig:"PASSWORD" default:""`
	UseTLS          bool   `envconfig:"USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CONN_MAX_LIFETIME_SEC" default:"3600"`
	DialTimeoutSec  int    `envconfig:"DIAL_TIMEOUT_SEC" default:"5"`
	MaxExecTimeSec  int    `envconfig:"MAX_EXECUTION_TIME_SEC" default:"60"`
	Compression     bool   `envconfig:"COMPRESSION" default:"true"`
}

type Postgres struct {
	DSN      string `envconfig:"DSN"`
	MaxConns int32  `envconfig:"MAX_CONNS" default:"10"`
	MinConns int32  `envconfig:"MIN_CONNS" default:"2"`
}

type SQS struct {
	Endpoint string `envconfig:"ENDPOINT"`
	QueueURL string `envconfig:"QUEUE_URL" required:"true"`
	Region   string `envconfig:"REGION" required:"true"`
}

type Valkey struct {
	Host                  string `envconfig:"HOST" default:"localhost"`
	Port                  string `envconfig:"PORT" default:"6379"`
	IdempotencyEnabled    bool   `envconfig:"IDEMPOTENCY_ENABLED" default:"true"`
	IdempotencyFailOpen   bool   `envconfig:"IDEMPOTENCY_FAIL_OPEN" default:"true"`
	IdempotencyTTLSeconds int    `envconfig:"IDEMPOTENCY_TTL_SEC" default:"86400"`
}

type Consumer struct {
	BatchSizeMax         int    `envconfig:"BATCH_SIZE_MAX" default:"2000"`
	BatchTimeoutSec      int    `envconfig:"BATCH_TIMEOUT_SEC" default:"10"`
	ReceiveMaxMessages   int32  `envconfig:"RECEIVE_MAX_MESSAGES" default:"10"`
	ReceiveWaitTimeSec   int32  `envconfig:"RECEIVE_WAIT_TIME_SEC" default:"20"`
	VisibilityTimeoutSec int32  `envconfig:"VISIBILITY_TIMEOUT_SEC" default:"60"`
	BufferSize           int    `envconfig:"BUFFER_SIZE" default:"100"`
	HealthCheckPort      string `envconfig:"HEALTH_CHECK_PORT" default:"8081"`
}

type Insights struct {
	Limit           int  `envconfig:"LIMIT" default:"10"`
	QueryTimeoutSec int  `envconfig:"QUERY_TIMEOUT_SEC" default:"30"`
	Parallel        bool `envconfig:"PARALLEL" default:"false"`
	CVRDropEnabled  bool `envconfig:"CVR_DROP_ENABLED" default:"false"`
}

type Journey struct {
	WindowDays int `envconfig:"WINDOW_DAYS" default:"30"`
}

type Log struct {
	File       string `envconfig:"FILE"`
	MaxSizeMB  int    `envconfig:"MAX_SIZE_MB" default:"100"`
	MaxBackups int    `envconfig:"MAX_BACKUPS" default:"5"`
	MaxAgeDays int    `envconfig:"MAX_AGE_DAYS" default:"14"`
}

type Tracing struct {
	Enabled     bool    `envconfig:"ENABLED" default:"false"`
	Endpoint    string  `envconfig:"ENDPOINT"`
	Insecure    bool    `envconfig:"INSECURE" default:"false"`
	SampleRatio float64 `envconfig:"SAMPLE_RATIO" default:"0.1"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// InsightsConfig maps the environment onto the detector defaults
func (c *Config) InsightsConfig() insights.Config {
	cfg := insights.DefaultConfig()
	if c.Insights.Limit > 0 {
		cfg.Limit = c.Insights.Limit
	}
	if c.Insights.QueryTimeoutSec > 0 {
		cfg.QueryTimeout = time.Duration(c.Insights.QueryTimeoutSec) * time.Second
	}
	cfg.Parallel = c.Insights.Parallel
	cfg.CVRDrop.Enabled = c.Insights.CVRDropEnabled
	return cfg
}

// JourneyConfig maps the environment onto the journey builder settings
func (c *Config) JourneyConfig() journey.Config {
	cfg := journey.DefaultConfig()
	if c.Journey.WindowDays > 0 {
		cfg.WindowDays = c.Journey.WindowDays
	}
	return cfg
}

// LogFileOptions returns the rotating file settings for the logger
func (c *Config) LogFileOptions() logger.FileOptions {
	return logger.FileOptions{
		Path:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}

// TracingOptions returns the OTLP settings for the named binary
func (c *Config) TracingOptions(serviceName string) observability.TracingOptions {
	return observability.TracingOptions{
		Enabled:     c.Tracing.Enabled,
		ServiceName: serviceName,
		Environment: c.Service.Environment,
		Version:     c.Service.Version,
		Endpoint:    c.Tracing.Endpoint,
		Insecure:    c.Tracing.Insecure,
		SampleRatio: c.Tracing.SampleRatio,
	}
}
