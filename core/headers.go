package core

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/internal/telemetry"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	importedHeadersMap  = "ImportedHeaders"
	defaultStallTimeout = 5 * time.Minute
)

// BestFinalizedAtTarget returns the best header of the source chain known to the
// light client on the target chain, or nil if the bridge is not initialized
func BestFinalizedAtTarget(ctx context.Context, target ChainReader, source ChainDescriptor) (*HeaderID, error) {
	bz, err := target.StateCall(ctx, source.BestFinalizedHeaderIDMethod(), nil, nil)
	if err != nil {
		return nil, err
	}
	id, err := DecodeOptionalHeaderID(bz, source.BlockNumberSize())
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "unexpected result of %s", source.BestFinalizedHeaderIDMethod()), ErrConfiguration)
	}
	return id, nil
}

// ImportedHeaderStorageKey returns the key of a header imported by the finality pallet
func ImportedHeaderStorageKey(grandpaPallet string, hash Hash) StorageKey {
	return StorageMapKey(grandpaPallet, importedHeadersMap, hash[:], Identity)
}

// IsHeaderImported reports whether the finality pallet on the target has the header
func IsHeaderImported(ctx context.Context, target ChainReader, grandpaPallet string, hash Hash) (bool, error) {
	bz, err := target.Storage(ctx, ImportedHeaderStorageKey(grandpaPallet, hash), nil)
	if err != nil {
		return false, err
	}
	return bz != nil, nil
}

type HeadersRelayConfig struct {
	// GrandpaPallet is the name of the finality pallet instance on the target
	GrandpaPallet string `json:"grandpa_pallet" yaml:"grandpa-pallet"`
	// StallTimeout is how long a submitted header may stay unimported before it is
	// submitted again
	StallTimeout time.Duration `json:"stall_timeout" yaml:"stall-timeout"`
}

type pendingHeader struct {
	id          HeaderID
	submittedAt time.Time
}

// HeadersRelay relays finalized headers of a source chain to the light client on a
// target chain. Serve is not safe for concurrent use.
type HeadersRelay struct {
	bridge    string
	src       *ProvableChain
	submitter *TxSubmitter
	encoder   CallEncoder
	reporter  StatusReporter
	cfg       HeadersRelayConfig

	pending *pendingHeader
	now     func() time.Time
}

// NewHeadersRelay returns a new HeadersRelay
func NewHeadersRelay(bridge string, src *ProvableChain, submitter *TxSubmitter, encoder CallEncoder, reporter StatusReporter, cfg HeadersRelayConfig) *HeadersRelay {
	if cfg.StallTimeout == 0 {
		cfg.StallTimeout = defaultStallTimeout
	}
	return &HeadersRelay{
		bridge:    bridge,
		src:       src,
		submitter: submitter,
		encoder:   encoder,
		reporter:  reporter,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (r *HeadersRelay) logger() *log.RelayLogger {
	return log.GetLogger().
		WithBridge(r.bridge).
		WithChainPair(r.src.ChainID(), r.submitter.Target().ChainID()).
		WithModule("core.headers")
}

// Serve performs one iteration of the header relay. Proof and submission failures of
// a header are reported and swallowed so that the next iteration can move on; only
// transient and fatal errors are returned.
func (r *HeadersRelay) Serve(ctx context.Context) error {
	target := r.submitter.Target()
	ctx, span := tracer.Start(ctx, "HeadersRelay.Serve", WithChainPairAttributes(r.src, target))
	defer span.End()
	logger := r.logger()

	srcBest, err := r.src.LatestFinalized(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if srcBest == nil {
		logger.InfoContext(ctx, "source chain has no finalized header yet")
		return nil
	}
	telemetry.BestFinalizedSourceGauge.Set(int64(srcBest.Number), attribute.String("chain_id", r.src.ChainID()))

	dstBest, err := BestFinalizedAtTarget(ctx, target, r.src.Descriptor())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if dstBest == nil {
		err := errors.Mark(ErrNotInitialized, ErrConfiguration)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	telemetry.BestFinalizedTargetGauge.Set(int64(dstBest.Number),
		attribute.String("chain_id", target.ChainID()),
		attribute.String("source_chain_id", r.src.ChainID()),
	)

	if r.pending != nil {
		switch {
		case dstBest.Number >= r.pending.id.Number:
			logger.InfoContext(ctx, "submitted header has been imported", "header", r.pending.id.String())
			r.pending = nil
		case r.now().Sub(r.pending.submittedAt) < r.cfg.StallTimeout:
			logger.DebugContext(ctx, "waiting for the submitted header to be imported",
				"header", r.pending.id.String(),
				"best_at_target", dstBest.String(),
			)
			return nil
		default:
			logger.WarnContext(ctx, "submitted header has not been imported in time",
				"header", r.pending.id.String(),
				"stall_timeout", r.cfg.StallTimeout,
			)
			r.pending = nil
		}
	}

	if srcBest.Number <= dstBest.Number {
		logger.DebugContext(ctx, "target is up to date", "src_best", srcBest.String(), "best_at_target", dstBest.String())
		return nil
	}

	imported, err := IsHeaderImported(ctx, target, r.cfg.GrandpaPallet, srcBest.Hash)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if imported {
		r.reporter.Report(ctx, newStatus(r.bridge, RelayItemHeader, RelayResultSkipped, *srcBest).withReason("already imported"))
		return nil
	}

	proof, err := r.src.ProveFinalityOf(ctx, *srcBest)
	if err != nil {
		return r.skipOrFail(ctx, *srcBest, err, "failed to get finality proof")
	}
	proofID := proof.HeaderID()
	if proofID.Number <= dstBest.Number {
		r.reporter.Report(ctx, newStatus(r.bridge, RelayItemHeader, RelayResultSkipped, proofID).withReason("proof is not newer than the target"))
		return nil
	}
	if err := r.src.VerifyProof(proof.Header, proof); err != nil {
		return r.skipOrFail(ctx, proofID, err, "invalid finality proof")
	}

	call, err := r.encoder.EncodeSubmitFinalityProof(proof)
	if err != nil {
		return r.skipOrFail(ctx, proofID, err, "failed to encode finality proof")
	}
	outcome, err := r.submitter.Submit(ctx, call, EraPolicyMortal)
	if err != nil {
		return r.skipOrFail(ctx, proofID, err, "failed to submit finality proof")
	}
	r.pending = &pendingHeader{id: proofID, submittedAt: r.now()}
	r.reporter.Report(ctx, newStatus(r.bridge, RelayItemHeader, RelayResultSubmitted, proofID).withTx(outcome))
	return nil
}

// skipOrFail reports a failure of one header. Fatal and transient errors are
// returned, the others are skipped.
func (r *HeadersRelay) skipOrFail(ctx context.Context, id HeaderID, err error, msg string) error {
	r.reporter.Report(ctx, newStatus(r.bridge, RelayItemHeader, RelayResultFailed, id).withReason(err.Error()))
	if IsFatal(err) || IsTransient(err) || ctx.Err() != nil {
		return errors.Wrap(err, msg)
	}
	r.logger().ErrorContext(ctx, msg, err, "header", id.String())
	return nil
}
