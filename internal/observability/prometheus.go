package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/aevon-lab/project-indica"

// Provider owns the MeterProvider backing the /metrics endpoint.
type Provider struct {
	mp      *sdkmetric.MeterProvider
	handler http.Handler
}

// NewPrometheusProvider creates an OTel MeterProvider exported through its own
// Prometheus registry, so repeated calls never collide on collectors.
func NewPrometheusProvider() (*Provider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &Provider{
		mp:      sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)),
		handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// Meter returns the application meter.
func (p *Provider) Meter() metric.Meter {
	return p.mp.Meter(meterName)
}

// Handler serves the Prometheus scrape endpoint.
func (p *Provider) Handler() http.Handler {
	return p.handler
}

func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}
