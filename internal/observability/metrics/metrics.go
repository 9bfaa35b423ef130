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
	entityWrites      metric.Int64Counter
	listQueries       metric.Int64Counter
	treeExpansions    metric.Int64Counter
	idempotentReplays metric.Int64Counter
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

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "orgmgr"
	}
	meter := provider.Meter(name)

	entityWrites, err := meter.Int64Counter("orgmgr_entity_writes_total")
	if err != nil {
		return nil, err
	}
	listQueries, err := meter.Int64Counter("orgmgr_list_queries_total")
	if err != nil {
		return nil, err
	}
	treeExpansions, err := meter.Int64Counter("orgmgr_activity_tree_expansions_total")
	if err != nil {
		return nil, err
	}
	idempotentReplays, err := meter.Int64Counter("orgmgr_idempotent_replays_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		entityWrites:      entityWrites,
		listQueries:       listQueries,
		treeExpansions:    treeExpansions,
		idempotentReplays: idempotentReplays,
	}, nil
}

// RecordEntityWrite increments write counts per entity and operation.
func (m *Metrics) RecordEntityWrite(ctx context.Context, entity, operation string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("entity", strings.TrimSpace(entity)),
		attribute.String("operation", strings.TrimSpace(operation)),
	)
	m.entityWrites.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordListQuery increments paginated list query counts per entity.
func (m *Metrics) RecordListQuery(ctx context.Context, entity string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("entity", strings.TrimSpace(entity)))
	m.listQueries.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTreeExpansion increments activity descendant expansion counts.
func (m *Metrics) RecordTreeExpansion(ctx context.Context, roots int) {
	if m == nil {
		return
	}
	m.treeExpansions.Add(ctx, 1, metric.WithAttributes(
		FilterAttributes(attribute.Int("roots", roots))...,
	))
}

// RecordIdempotentReplay increments replayed response counts per route.
func (m *Metrics) RecordIdempotentReplay(ctx context.Context, route string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("route", strings.TrimSpace(route)))
	m.idempotentReplays.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
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
	"entity":      {},
	"operation":   {},
	"route":       {},
	"endpoint":    {},
	"status_code": {},
	"reason":      {},
	"roots":       {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
