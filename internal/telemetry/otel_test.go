package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestNewResource(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment=staging")

	res, err := newResource(context.TODO(), Options{
		ServiceVersion: "v0.3.0",
		Bridges:        []string{"rialto-millau", "millau-rialto"},
	})
	require.NoError(t, err)

	set := res.Set()
	name, _ := set.Value(semconv.ServiceNameKey)
	assert.Equal(t, defaultServiceName, name.AsString())
	version, _ := set.Value(semconv.ServiceVersionKey)
	assert.Equal(t, "v0.3.0", version.AsString())
	bridges, _ := set.Value(AttributeKeyBridges)
	assert.Equal(t, []string{"millau-rialto", "rialto-millau"}, bridges.AsStringSlice())
	env, _ := set.Value("deployment.environment")
	assert.Equal(t, "staging", env.AsString())
}

func TestNewResourceServiceNameFromEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "westend-relay")

	res, err := newResource(context.TODO(), Options{ServiceName: "uly"})
	require.NoError(t, err)
	name, _ := res.Set().Value(semconv.ServiceNameKey)
	assert.Equal(t, "westend-relay", name.AsString())
	assert.False(t, res.Set().HasValue(AttributeKeyBridges))
}

func TestRelayerViews(t *testing.T) {
	ctx := context.TODO()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithView(relayerViews()...))
	defer provider.Shutdown(ctx)
	meter := provider.Meter("test")

	attrs := api.WithAttributes(
		attribute.String("chain_id", "rialto"),
		attribute.String("outcome", OutcomeIncluded),
		attribute.String("tx_hash", "0x01"),
	)
	submitted, err := meter.Int64Counter(namespaceRoot + ".submitted_transactions")
	require.NoError(t, err)
	submitted.Add(ctx, 1, attrs)
	other, err := meter.Int64Counter("rpc.calls")
	require.NoError(t, err)
	other.Add(ctx, 1, attrs)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	points := make(map[string]attribute.Set)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok, m.Name)
		require.Len(t, sum.DataPoints, 1, m.Name)
		points[m.Name] = sum.DataPoints[0].Attributes
	}

	relayer := points[namespaceRoot+".submitted_transactions"]
	assert.True(t, relayer.HasValue("chain_id"))
	assert.True(t, relayer.HasValue("outcome"))
	assert.False(t, relayer.HasValue("tx_hash"))
	rpc := points["rpc.calls"]
	assert.True(t, rpc.HasValue("tx_hash"))
}

func TestSetupOTelSDK(t *testing.T) {
	for _, key := range []string{tracesExporterKey, metricsExporterKey, logsExporterKey} {
		t.Setenv(key, "none")
	}
	shutdown, err := SetupOTelSDK(context.TODO(), Options{Bridges: []string{"millau-rialto"}})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.TODO()))
}

func TestSetupOTelSDKErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"unknown propagator", map[string]string{propagatorsKey: "b3"}},
		{"unknown trace exporter", map[string]string{tracesExporterKey: "jaeger"}},
		{"unknown metric exporter", map[string]string{tracesExporterKey: "none", metricsExporterKey: "statsd"}},
		{"unknown console writer", map[string]string{tracesExporterKey: "console", consoleTracesWriterKey: "file"}},
		{"unknown log exporter", map[string]string{tracesExporterKey: "none", metricsExporterKey: "none", logsExporterKey: "syslog"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for key, value := range c.env {
				t.Setenv(key, value)
			}
			shutdown, err := SetupOTelSDK(context.TODO(), Options{})
			require.Error(t, err)
			require.Nil(t, shutdown)
		})
	}
}
