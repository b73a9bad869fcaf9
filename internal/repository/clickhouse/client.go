package clickhouse

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/config"
)

const (
	defaultDialTimeout = 5 * time.Second
	defaultMaxExecTime = 60
)

// Client owns the ClickHouse connection shared by the event and metrics repositories
type Client struct {
	connection driver.Conn
	log        *zap.Logger
}

// NewClient opens a ClickHouse connection and verifies it with a ping
func NewClient(ctx context.Context, cfg *config.ClickHouse, log *zap.Logger) (*Client, error) {
	opts := buildOptions(cfg)

	log.Info("Connecting to ClickHouse",
		zap.Strings("addr", opts.Addr),
		zap.String("database", cfg.Database),
		zap.Bool("tls", opts.TLS != nil),
		zap.Bool("compression", opts.Compression != nil))

	connection, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := connection.Ping(ctx); err != nil {
		var exception *clickhouse.Exception
		if errors.As(err, &exception) {
			log.Error("ClickHouse rejected ping",
				zap.Int32("code", exception.Code),
				zap.String("message", exception.Message))
		}
		if closeErr := connection.Close(); closeErr != nil {
			log.Warn("Failed to close ClickHouse connection after ping failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Info("ClickHouse connection established")

	return &Client{connection: connection, log: log}, nil
}

// buildOptions maps service configuration onto driver options
func buildOptions(cfg *config.ClickHouse) *clickhouse.Options {
	dialTimeout := defaultDialTimeout
	if cfg.DialTimeoutSec > 0 {
		dialTimeout = time.Duration(cfg.DialTimeoutSec) * time.Second
	}
	maxExec := defaultMaxExecTime
	if cfg.MaxExecTimeSec > 0 {
		maxExec = cfg.MaxExecTimeSec
	}

	opts := &clickhouse.Options{
		Addr: []string{net.JoinHostPort(cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": maxExec,
		},
		DialTimeout:      dialTimeout,
		MaxOpenConns:     cfg.MaxOpenConns,
		MaxIdleConns:     cfg.MaxIdleConns,
		ConnMaxLifetime:  time.Duration(cfg.ConnMaxLifetime) * time.Second,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		BlockBufferSize:  10,
	}

	if cfg.UseTLS {
		opts.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if cfg.Compression {
		opts.Compression = &clickhouse.Compression{Method: clickhouse.CompressionLZ4}
	}

	return opts
}

// Conn returns the underlying ClickHouse connection
func (c *Client) Conn() driver.Conn {
	return c.connection
}

// Ping checks if the ClickHouse connection is alive
func (c *Client) Ping(ctx context.Context) error {
	return c.connection.Ping(ctx)
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if err := c.connection.Close(); err != nil {
		return fmt.Errorf("failed to close ClickHouse connection: %w", err)
	}
	c.log.Info("ClickHouse connection closed")
	return nil
}
