package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	notificationsSent metric.Int64Counter
	webhookFailures   metric.Int64Counter
	importRows        metric.Int64Counter
	rateLimitDenied   metric.Int64Counter
	verifyRequests    metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "notifycar"
	}
	meter := provider.Meter(name)

	notificationsSent, err := meter.Int64Counter("notifycar_notifications_sent_total")
	if err != nil {
		return nil, err
	}
	webhookFailures, err := meter.Int64Counter("notifycar_webhook_failures_total")
	if err != nil {
		return nil, err
	}
	importRows, err := meter.Int64Counter("notifycar_import_rows_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("notifycar_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}
	verifyRequests, err := meter.Int64Counter("notifycar_verification_requests_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		notificationsSent: notificationsSent,
		webhookFailures:   webhookFailures,
		importRows:        importRows,
		rateLimitDenied:   rateLimitDenied,
		verifyRequests:    verifyRequests,
	}, nil
}

// RecordNotificationSent increments sent notification counts by status.
func (m *Metrics) RecordNotificationSent(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.notificationsSent.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", strings.ToLower(strings.TrimSpace(status))),
	))
}

// RecordWebhookFailure increments outbound webhook failures by kind.
func (m *Metrics) RecordWebhookFailure(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.webhookFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", strings.TrimSpace(kind)),
	))
}

// RecordImportRows counts processed CSV rows split by outcome.
func (m *Metrics) RecordImportRows(ctx context.Context, entity string, succeeded, failed int) {
	if m == nil {
		return
	}
	entityAttr := attribute.String("entity", strings.TrimSpace(entity))
	if succeeded > 0 {
		m.importRows.Add(ctx, int64(succeeded), metric.WithAttributes(entityAttr, attribute.String("outcome", "ok")))
	}
	if failed > 0 {
		m.importRows.Add(ctx, int64(failed), metric.WithAttributes(entityAttr, attribute.String("outcome", "error")))
	}
}

// RecordRateLimitDenied increments public rate limit rejections.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
	))
}

// RecordVerificationRequest increments phone verification requests.
func (m *Metrics) RecordVerificationRequest(ctx context.Context) {
	if m == nil {
		return
	}
	m.verifyRequests.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}
