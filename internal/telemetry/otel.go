package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	name = "github.com/hyperledger-labs/yui-bridge-relayer"

	defaultServiceName = "uly"

	// AttributeKeyBridges lists the bridges served by the process on its resource
	AttributeKeyBridges = attribute.Key("relayer.bridges")

	// Some of the environment variables that the Go SDK doesn't support
	propagatorsKey     = "OTEL_PROPAGATORS"
	defaultPropagators = "tracecontext,baggage"

	// Environment variables for exporter selection
	// cf. https://opentelemetry.io/docs/specs/otel/configuration/sdk-environment-variables/#exporter-selection
	tracesExporterKey      = "OTEL_TRACES_EXPORTER"
	metricsExporterKey     = "OTEL_METRICS_EXPORTER"
	logsExporterKey        = "OTEL_LOGS_EXPORTER"
	defaultTracesExporter  = "otlp"
	defaultMetricsExporter = "otlp"
	defaultLogsExporter    = "otlp"

	// Environment variables for the Prometheus exporter
	// cf. https://opentelemetry.io/docs/specs/otel/configuration/sdk-environment-variables/#prometheus-exporter
	prometheusHostKey     = "OTEL_EXPORTER_PROMETHEUS_HOST"
	prometheusPortKey     = "OTEL_EXPORTER_PROMETHEUS_PORT"
	defaultPrometheusHost = "localhost"
	defaultPrometheusPort = 9464

	// Writers of the console exporters: stdout or stderr
	consoleTracesWriterKey  = "OTEL_EXPORTER_CONSOLE_TRACES_WRITER"
	consoleLogsWriterKey    = "OTEL_EXPORTER_CONSOLE_LOGS_WRITER"
	consoleMetricsWriterKey = "OTEL_EXPORTER_CONSOLE_METRICS_WRITER"
	defaultConsoleWriter    = "stdout"
)

// metricAttributeKeys are the attributes the relay records on its instruments.
// Anything else is dropped from the relayer.* streams to keep their cardinality bounded.
var metricAttributeKeys = []attribute.Key{
	"chain_id",
	"source_chain_id",
	"para_id",
	"outcome",
	"guard",
}

// Options describe the relayer process to the telemetry backends
type Options struct {
	// ServiceName defaults to the binary name. OTEL_SERVICE_NAME overrides it.
	ServiceName    string
	ServiceVersion string
	// Bridges are the bridge names configured in this process
	Bridges []string
}

// SetupOTelSDK bootstraps the OpenTelemetry pipeline using the environment variables
// described on https://opentelemetry.io/docs/specs/otel/configuration/sdk-environment-variables/.
// All providers share one resource built from opts and OTEL_RESOURCE_ATTRIBUTES.
// If it does not return an error, make sure to call shutdown for proper cleanup.
//
// An unknown exporter or propagator name is an error rather than a warning.
func SetupOTelSDK(ctx context.Context, opts Options) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error

	shutdown = func(ctx context.Context) error {
		var err error
		for i := len(shutdownFuncs) - 1; i >= 0; i-- {
			err = errors.Join(err, shutdownFuncs[i](ctx))
		}
		shutdownFuncs = nil
		return err
	}

	fail := func(inErr error) (func(context.Context) error, error) {
		return nil, errors.Join(inErr, shutdown(ctx))
	}

	prop, err := newPropagator()
	if err != nil {
		return fail(err)
	}
	res, err := newResource(ctx, opts)
	if err != nil {
		return fail(err)
	}
	otel.SetTextMapPropagator(prop)

	tracerProvider, err := newTracerProvider(ctx, res)
	if err != nil {
		return fail(err)
	}
	shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	meterProvider, err := newMeterProvider(ctx, res)
	if err != nil {
		return fail(err)
	}
	shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	loggerProvider, err := newLoggerProvider(ctx, res)
	if err != nil {
		return fail(err)
	}
	shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
	global.SetLoggerProvider(loggerProvider)

	return shutdown, nil
}

// newResource identifies the relayer process. Detectors later in the list win, so
// OTEL_SERVICE_NAME and OTEL_RESOURCE_ATTRIBUTES override the options.
func newResource(ctx context.Context, opts Options) (*resource.Resource, error) {
	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = defaultServiceName
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(serviceName)}
	if opts.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(opts.ServiceVersion))
	}
	if len(opts.Bridges) > 0 {
		bridges := slices.Clone(opts.Bridges)
		slices.Sort(bridges)
		attrs = append(attrs, AttributeKeyBridges.StringSlice(bridges))
	}
	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attrs...),
		resource.WithFromEnv(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build the telemetry resource: %v", err)
	}
	return res, nil
}

// relayerViews restricts the attributes of the relayer.* instruments
func relayerViews() []sdkmetric.View {
	return []sdkmetric.View{
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: namespaceRoot + ".*"},
			sdkmetric.Stream{AttributeFilter: attribute.NewAllowKeysFilter(metricAttributeKeys...)},
		),
	}
}

// forEachExporter calls build for every exporter named in the comma separated env
// value, skipping "none"
func forEachExporter(envName, defaultValue string, build func(exporter string) (bool, error)) error {
	for _, exporter := range strings.Split(getEnv(envName, defaultValue), ",") {
		exporter = strings.TrimSpace(exporter)
		if exporter == "none" {
			continue
		}
		ok, err := build(exporter)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("unsupported exporter: %q from %s=%q", exporter, envName, os.Getenv(envName))
		}
	}
	return nil
}

func getEnv(envName, defaultValue string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return defaultValue
}

func getWriter(envName string) (io.Writer, error) {
	switch v := getEnv(envName, defaultConsoleWriter); v {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return nil, fmt.Errorf("unknown writer: %q from %s=%q", v, envName, os.Getenv(envName))
	}
}

func newPropagator() (propagation.TextMapPropagator, error) {
	var propagators []propagation.TextMapPropagator
	for _, propagator := range strings.Split(getEnv(propagatorsKey, defaultPropagators), ",") {
		switch propagator {
		case "tracecontext":
			propagators = append(propagators, propagation.TraceContext{})
		case "baggage":
			propagators = append(propagators, propagation.Baggage{})
		default:
			return nil, fmt.Errorf("unsupported propagator: %q from %s=%q", propagator, propagatorsKey, os.Getenv(propagatorsKey))
		}
	}

	return propagation.NewCompositeTextMapPropagator(propagators...), nil
}

func newTracerProvider(ctx context.Context, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	err := forEachExporter(tracesExporterKey, defaultTracesExporter, func(exporter string) (bool, error) {
		var (
			exp sdktrace.SpanExporter
			err error
		)
		switch exporter {
		case "otlp":
			exp, err = otlptracegrpc.New(ctx)
		case "console":
			var writer io.Writer
			if writer, err = getWriter(consoleTracesWriterKey); err == nil {
				exp, err = stdouttrace.New(stdouttrace.WithWriter(writer))
			}
		default:
			return false, nil
		}
		if err != nil {
			return true, err
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res), sdkmetric.WithView(relayerViews()...)}
	err := forEachExporter(metricsExporterKey, defaultMetricsExporter, func(exporter string) (bool, error) {
		var reader sdkmetric.Reader
		switch exporter {
		case "otlp":
			exp, err := otlpmetricgrpc.New(ctx)
			if err != nil {
				return true, err
			}
			reader = sdkmetric.NewPeriodicReader(exp)
		case "console":
			writer, err := getWriter(consoleMetricsWriterKey)
			if err != nil {
				return true, err
			}
			exp, err := stdoutmetric.New(stdoutmetric.WithWriter(writer))
			if err != nil {
				return true, err
			}
			reader = sdkmetric.NewPeriodicReader(exp)
		case "prometheus":
			addr := fmt.Sprintf("%s:%s", getEnv(prometheusHostKey, defaultPrometheusHost), getEnv(prometheusPortKey, fmt.Sprint(defaultPrometheusPort)))
			exp, err := NewPrometheusExporter(addr)
			if err != nil {
				return true, err
			}
			reader = exp
		default:
			return false, nil
		}
		opts = append(opts, sdkmetric.WithReader(reader))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

func newLoggerProvider(ctx context.Context, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	opts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	err := forEachExporter(logsExporterKey, defaultLogsExporter, func(exporter string) (bool, error) {
		var (
			exp sdklog.Exporter
			err error
		)
		switch exporter {
		case "otlp":
			exp, err = otlploggrpc.New(ctx)
		case "console":
			var writer io.Writer
			if writer, err = getWriter(consoleLogsWriterKey); err == nil {
				exp, err = stdoutlog.New(stdoutlog.WithWriter(writer))
			}
		default:
			return false, nil
		}
		if err != nil {
			return true, err
		}
		opts = append(opts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return sdklog.NewLoggerProvider(opts...), nil
}
