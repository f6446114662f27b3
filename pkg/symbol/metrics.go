package symbol

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/go-drift/driftmap/pkg/symbol"

type metrics struct {
	managersCreated  metric.Int64Counter
	imagesRegistered metric.Int64Counter
	imagesFallback   metric.Int64Counter
	symbolsCreated   metric.Int64Counter
	symbolsRemoved   metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) *metrics {
	meter := mp.Meter(meterName)
	return &metrics{
		managersCreated:  counter(meter, "driftmap.managers.created", "Symbol managers created in the map style."),
		imagesRegistered: counter(meter, "driftmap.images.registered", "Icon bitmaps registered in the map style."),
		imagesFallback:   counter(meter, "driftmap.images.fallback", "Icons replaced by the fallback bitmap."),
		symbolsCreated:   counter(meter, "driftmap.symbols.created", "Native symbols created."),
		symbolsRemoved:   counter(meter, "driftmap.symbols.removed", "Native symbols removed."),
	}
}

// counter falls back to a no-op instrument when the provider rejects the
// definition.
func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{count}"))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}
