package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hyperledger-labs/yui-bridge-relayer/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	api "go.opentelemetry.io/otel/metric"
)

const (
	namespaceRoot = "relayer"
)

// Outcomes of a submitted transaction
const (
	OutcomeIncluded     = "submitted"
	OutcomeAlreadyKnown = "already_known"
	OutcomeFailed       = "failed"
)

var (
	BestFinalizedSourceGauge     *Int64SyncGauge
	BestFinalizedTargetGauge     *Int64SyncGauge
	ParachainHeadRelayBlockGauge *Int64SyncGauge
	SubmittedTransactionsCounter api.Int64Counter
	GuardViolationsCounter       api.Int64Counter

	meter = otel.Meter(name)
)

// the global meter delegates to the provider installed later by SetupOTelSDK
func init() {
	if err := InitializeMetrics(); err != nil {
		panic(err)
	}
}

func InitializeMetrics() error {
	var err error

	// create the instrument "relayer.best_finalized_source"
	name := fmt.Sprintf("%s.best_finalized_source", namespaceRoot)
	if BestFinalizedSourceGauge, err = NewInt64SyncGauge(
		meter,
		name,
		api.WithUnit("1"),
		api.WithDescription("best finalized block number of the source chain"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.best_finalized_target"
	name = fmt.Sprintf("%s.best_finalized_target", namespaceRoot)
	if BestFinalizedTargetGauge, err = NewInt64SyncGauge(
		meter,
		name,
		api.WithUnit("1"),
		api.WithDescription("best source block number known to the light client on the target chain"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.parachain_head_relay_block"
	name = fmt.Sprintf("%s.parachain_head_relay_block", namespaceRoot)
	if ParachainHeadRelayBlockGauge, err = NewInt64SyncGauge(
		meter,
		name,
		api.WithUnit("1"),
		api.WithDescription("relay block number at which the best parachain head was read"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.submitted_transactions"
	name = fmt.Sprintf("%s.submitted_transactions", namespaceRoot)
	if SubmittedTransactionsCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of transactions submitted to target chains"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.guard_violations"
	name = fmt.Sprintf("%s.guard_violations", namespaceRoot)
	if GuardViolationsCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of guard violations"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	return nil
}

// RecordSubmission counts one submitted transaction
func RecordSubmission(ctx context.Context, chainID, outcome string) {
	SubmittedTransactionsCounter.Add(ctx, 1, api.WithAttributes(
		attribute.String("chain_id", chainID),
		attribute.String("outcome", outcome),
	))
}

// RecordGuardViolation counts one tripped guard
func RecordGuardViolation(ctx context.Context, guard string) {
	GuardViolationsCounter.Add(ctx, 1, api.WithAttributes(attribute.String("guard", guard)))
}

func NewPrometheusExporter(addr string) (*prometheus.Exporter, error) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger := log.GetLogger().WithModule("telemetry")
			logger.Fatal("Prometheus exporter server failed", err)
		}
	}()

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create the Prometheus Exporter: %v", err)
	}

	return exporter, nil
}
