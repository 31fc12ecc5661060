package motion

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/adammck/biped/components/motion"

// metrics are recorded against the global meter provider, which discards
// everything unless the binary installs a real one.
type metrics struct {
	attrs metric.MeasurementOption

	frames  metric.Int64Counter
	skipped metric.Int64Counter
	latency metric.Float64Histogram
}

func newMetrics(character string) (*metrics, error) {
	m := otel.Meter(instrumentationName)
	mm := &metrics{
		attrs: metric.WithAttributes(attribute.String("character", character)),
	}

	var err error
	mm.frames, err = m.Int64Counter(
		"motion.frames.synthesized",
		metric.WithDescription("Frames synthesized by the motion loop"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}

	mm.skipped, err = m.Int64Counter(
		"motion.frames.skipped",
		metric.WithDescription("Frames skipped because the predictor was not ready"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating skipped counter: %w", err)
	}

	mm.latency, err = m.Float64Histogram(
		"motion.frame.duration",
		metric.WithDescription("Time taken to synthesize one frame"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating latency histogram: %w", err)
	}

	return mm, nil
}

func (m *metrics) synthesized(d time.Duration) {
	ctx := context.Background()
	m.frames.Add(ctx, 1, m.attrs)
	m.latency.Record(ctx, float64(d)/float64(time.Millisecond), m.attrs)
}

func (m *metrics) skip() {
	m.skipped.Add(context.Background(), 1, m.attrs)
}
