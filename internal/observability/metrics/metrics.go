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

type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
}

// Metrics holds the permit workflow instruments.
type Metrics struct {
	transitions      metric.Int64Counter
	invoicesCreated  metric.Int64Counter
	invoicesPaid     metric.Int64Counter
	invoicedCents    metric.Int64Counter
	notifications    metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
	applicationsOpen metric.Int64Counter
}

// NewProvider registers the global meter provider. A noop provider is used when OTel is disabled.
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
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}
	if log != nil {
		log.Info("metrics initialized", zap.String("endpoint", cfg.ExporterEndpoint))
	}
	return provider, nil
}

func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "permitdesk"
	}
	meter := provider.Meter(name)

	var (
		m   Metrics
		err error
	)
	if m.transitions, err = meter.Int64Counter("permitdesk_application_transitions_total",
		metric.WithDescription("Application status transitions by outcome.")); err != nil {
		return nil, err
	}
	if m.applicationsOpen, err = meter.Int64Counter("permitdesk_applications_submitted_total",
		metric.WithDescription("Applications received through intake.")); err != nil {
		return nil, err
	}
	if m.invoicesCreated, err = meter.Int64Counter("permitdesk_invoices_created_total"); err != nil {
		return nil, err
	}
	if m.invoicesPaid, err = meter.Int64Counter("permitdesk_invoices_paid_total"); err != nil {
		return nil, err
	}
	if m.invoicedCents, err = meter.Int64Counter("permitdesk_invoiced_amount_cents_total",
		metric.WithUnit("{cent}")); err != nil {
		return nil, err
	}
	if m.notifications, err = meter.Int64Counter("permitdesk_notifications_total"); err != nil {
		return nil, err
	}
	if m.rateLimitDenied, err = meter.Int64Counter("permitdesk_rate_limit_denied_total"); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordTransition counts approve/disapprove/delete outcomes ("ok", "rejected", "error").
func (m *Metrics) RecordTransition(ctx context.Context, transition, outcome string) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("transition", transition),
		attribute.String("outcome", outcome),
	)...))
}

func (m *Metrics) RecordApplicationSubmitted(ctx context.Context) {
	if m == nil {
		return
	}
	m.applicationsOpen.Add(ctx, 1)
}

func (m *Metrics) RecordInvoiceCreated(ctx context.Context, amountCents int64) {
	if m == nil {
		return
	}
	m.invoicesCreated.Add(ctx, 1)
	m.invoicedCents.Add(ctx, amountCents)
}

func (m *Metrics) RecordInvoicePaid(ctx context.Context) {
	if m == nil {
		return
	}
	m.invoicesPaid.Add(ctx, 1)
}

func (m *Metrics) RecordNotification(ctx context.Context, method, outcome string) {
	if m == nil {
		return
	}
	m.notifications.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	)...))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("endpoint", endpoint),
	)...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"transition": {},
	"outcome":    {},
	"method":     {},
	"endpoint":   {},
}

// FilterAttributes keeps metric labels to a fixed low-cardinality set.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; ok {
			filtered = append(filtered, attr)
		}
	}
	return filtered
}
