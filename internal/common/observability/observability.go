package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"sas-panel/internal/common/logger"
)

// Options configures New.
type Options struct {
	ServiceName string
	// Tracing turns on the tracer provider; spans are logged at debug level.
	Tracing     bool
	SampleRatio float64
	Logger      logger.Logger
}

// Observability owns the meter and tracer used around every client call.
// A nil *Observability is valid and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	callCounter    otelmetric.Int64Counter
	callDuration   otelmetric.Float64Histogram
	log            logger.Logger
}

func New(opts Options) *Observability {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	o := &Observability{log: log}

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err})
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(o.meterProvider)
		o.meter = o.meterProvider.Meter(opts.ServiceName)

		o.callCounter, _ = o.meter.Int64Counter(
			"sas.calls",
			otelmetric.WithDescription("Number of channel calls by action and outcome"),
		)
		o.callDuration, _ = o.meter.Float64Histogram(
			"sas.calls.duration",
			otelmetric.WithDescription("Time from send to settled outcome"),
			otelmetric.WithUnit("ms"),
		)
	}

	if opts.Tracing {
		ratio := opts.SampleRatio
		if ratio <= 0 {
			ratio = 1
		}
		o.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
			sdktrace.WithSyncer(&logSpanExporter{log: log}),
		)
		otel.SetTracerProvider(o.tracerProvider)
		o.tracer = o.tracerProvider.Tracer(opts.ServiceName)
	}

	return o
}

// StartCall opens a span for one logical call. The returned func ends it
// and records the call's count and duration under outcome.
func (o *Observability) StartCall(ctx context.Context, action string) (context.Context, func(outcome string, err error)) {
	start := time.Now()
	if o == nil {
		return ctx, func(string, error) {}
	}

	var span trace.Span
	if o.tracer != nil {
		ctx, span = o.tracer.Start(ctx, "sas.call "+action,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(attribute.String("sas.action", action)),
		)
	}

	return ctx, func(outcome string, err error) {
		attrs := otelmetric.WithAttributes(
			attribute.String("action", action),
			attribute.String("outcome", outcome),
		)
		if o.callCounter != nil {
			o.callCounter.Add(ctx, 1, attrs)
		}
		if o.callDuration != nil {
			o.callDuration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
		}
		if span != nil {
			span.SetAttributes(attribute.String("sas.outcome", outcome))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			span.End()
		}
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}

// logSpanExporter writes finished spans to the structured logger.
type logSpanExporter struct {
	log logger.Logger
}

func (e *logSpanExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		e.log.Debug("span", map[string]interface{}{
			"name":     s.Name(),
			"traceId":  s.SpanContext().TraceID().String(),
			"spanId":   s.SpanContext().SpanID().String(),
			"duration": s.EndTime().Sub(s.StartTime()).String(),
			"status":   s.Status().Code.String(),
		})
	}
	return nil
}

func (e *logSpanExporter) Shutdown(context.Context) error {
	return nil
}
