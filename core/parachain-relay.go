package core

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/internal/telemetry"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
	"github.com/puzpuzpuz/xsync/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultParachainWorkers = 4

type ParachainsRelayConfig struct {
	// ParasPallet is the name of the parachains pallet on the relay chain
	ParasPallet string `json:"paras_pallet" yaml:"paras-pallet"`
	// BridgeParachainsPallet is the name of the bridge parachains pallet on the target
	BridgeParachainsPallet string        `json:"bridge_parachains_pallet" yaml:"bridge-parachains-pallet"`
	ParaIDs                []ParaID      `json:"para_ids" yaml:"para-ids"`
	Workers                int           `json:"workers" yaml:"workers"`
	StallTimeout           time.Duration `json:"stall_timeout" yaml:"stall-timeout"`
}

type paraHeadUpdate struct {
	paraID ParaID
	best   BestParaHeadHash
}

type pendingParaHead struct {
	relayBlock  uint32
	submittedAt time.Time
}

// ParachainsRelay relays heads of parachains read at relay chain blocks that are
// already finalized on the target chain. Serve is not safe for concurrent use.
type ParachainsRelay struct {
	bridge    string
	relay     *ProvableChain
	submitter *TxSubmitter
	encoder   CallEncoder
	reporter  StatusReporter
	cfg       ParachainsRelayConfig

	trackers *xsync.Map[ParaID, *ParaHeadTracker]
	pending  *xsync.Map[ParaID, pendingParaHead]
	pool     pond.Pool
	now      func() time.Time
}

// NewParachainsRelay returns a new ParachainsRelay
func NewParachainsRelay(bridge string, relay *ProvableChain, submitter *TxSubmitter, encoder CallEncoder, reporter StatusReporter, cfg ParachainsRelayConfig) *ParachainsRelay {
	if cfg.ParasPallet == "" {
		cfg.ParasPallet = ParasPalletName
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultParachainWorkers
	}
	if cfg.StallTimeout == 0 {
		cfg.StallTimeout = defaultStallTimeout
	}
	return &ParachainsRelay{
		bridge:    bridge,
		relay:     relay,
		submitter: submitter,
		encoder:   encoder,
		reporter:  reporter,
		cfg:       cfg,
		trackers:  xsync.NewMap[ParaID, *ParaHeadTracker](),
		pending:   xsync.NewMap[ParaID, pendingParaHead](),
		pool:      pond.NewPool(cfg.Workers, pond.WithQueueSize(max(len(cfg.ParaIDs), 1))),
		now:       time.Now,
	}
}

// Tracker returns the tracker of a parachain, creating it on first use
func (r *ParachainsRelay) Tracker(paraID ParaID) *ParaHeadTracker {
	tracker, _ := r.trackers.LoadOrStore(paraID, NewParaHeadTracker(paraID))
	return tracker
}

// Stop waits for running reads and releases the worker pool
func (r *ParachainsRelay) Stop() {
	r.pool.StopAndWait()
}

func (r *ParachainsRelay) logger() *log.RelayLogger {
	return log.GetLogger().
		WithBridge(r.bridge).
		WithChainPair(r.relay.ChainID(), r.submitter.Target().ChainID()).
		WithModule("core.parachains")
}

// Serve performs one iteration of the parachain heads relay
func (r *ParachainsRelay) Serve(ctx context.Context) error {
	target := r.submitter.Target()
	ctx, span := tracer.Start(ctx, "ParachainsRelay.Serve", WithChainPairAttributes(r.relay, target))
	defer span.End()
	logger := r.logger()

	relayBlock, err := BestFinalizedAtTarget(ctx, target, r.relay.Descriptor())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if relayBlock == nil {
		err := errors.Mark(ErrNotInitialized, ErrConfiguration)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	updates, err := r.collectUpdates(ctx, *relayBlock)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if len(updates) == 0 {
		logger.DebugContext(ctx, "parachain heads are up to date", "relay_block", relayBlock.String())
		return nil
	}

	paraIDs := make([]ParaID, 0, len(updates))
	keys := make([]StorageKey, 0, len(updates))
	for _, u := range updates {
		paraIDs = append(paraIDs, u.paraID)
		keys = append(keys, ParachainHeadStorageKeyAtSource(r.cfg.ParasPallet, u.paraID))
	}
	proof, err := r.relay.ReadProof(ctx, keys, relayBlock.Hash)
	if err != nil {
		return r.skipOrFail(ctx, updates, *relayBlock, err, "failed to read parachain heads proof")
	}
	call, err := r.encoder.EncodeSubmitParachainHeads(*relayBlock, paraIDs, proof)
	if err != nil {
		return r.skipOrFail(ctx, updates, *relayBlock, err, "failed to encode parachain heads")
	}
	outcome, err := r.submitter.Submit(ctx, call, EraPolicyMortal)
	if err != nil {
		return r.skipOrFail(ctx, updates, *relayBlock, err, "failed to submit parachain heads")
	}
	for _, u := range updates {
		r.pending.Store(u.paraID, pendingParaHead{relayBlock: u.best.AtRelayBlockNumber, submittedAt: r.now()})
		r.reporter.Report(ctx, newStatus(r.bridge, RelayItemParaHead, RelayResultSubmitted, HeaderID{
			Number: BlockNumber(u.best.AtRelayBlockNumber),
			Hash:   u.best.HeadHash,
		}).withParaID(u.paraID).withTx(outcome))
	}
	return nil
}

// collectUpdates reads the heads of all parachains at relayBlock concurrently and
// returns the ones that the target still needs, ordered by para id
func (r *ParachainsRelay) collectUpdates(ctx context.Context, relayBlock HeaderID) ([]paraHeadUpdate, error) {
	group := r.pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	results := make([]*paraHeadUpdate, len(r.cfg.ParaIDs))
	errs := make([]error, len(r.cfg.ParaIDs))
	for i, paraID := range r.cfg.ParaIDs {
		i, paraID := i, paraID
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = r.checkParachain(groupCtx, paraID, relayBlock)
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, pond.ErrGroupStopped) {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var updates []paraHeadUpdate
	for _, u := range results {
		if u != nil {
			updates = append(updates, *u)
		}
	}
	slices.SortFunc(updates, func(a, b paraHeadUpdate) int {
		return cmp.Compare(a.paraID, b.paraID)
	})
	return updates, nil
}

func (r *ParachainsRelay) checkParachain(ctx context.Context, paraID ParaID, relayBlock HeaderID) (*paraHeadUpdate, error) {
	logger := r.logger().WithParachain(uint32(paraID))
	tracker := r.Tracker(paraID)

	head, err := ParaHeadAtSource(ctx, r.relay, r.cfg.ParasPallet, paraID, relayBlock.Hash)
	if err != nil {
		return nil, err
	}
	if head == nil {
		logger.WarnContext(ctx, "parachain has no head at the relay block", "relay_block", relayBlock.String())
		return nil, nil
	}
	if !tracker.Observe(uint32(relayBlock.Number), Blake2_256(head)) {
		logger.DebugContext(ctx, "ignoring stale observation", "relay_block", relayBlock.String())
	}
	best := tracker.Best()
	telemetry.ParachainHeadRelayBlockGauge.Set(int64(best.AtRelayBlockNumber),
		attribute.String("chain_id", r.relay.ChainID()),
		attribute.Int64("para_id", int64(paraID)),
	)

	if p, ok := r.pending.Load(paraID); ok {
		if p.relayBlock >= best.AtRelayBlockNumber && r.now().Sub(p.submittedAt) < r.cfg.StallTimeout {
			logger.DebugContext(ctx, "waiting for the submitted head to be imported", "relay_block", p.relayBlock)
			return nil, nil
		}
	}

	imported, err := tracker.IsImported(ctx, r.submitter.Target(), r.cfg.BridgeParachainsPallet, best.AtRelayBlockNumber, best.HeadHash)
	if err != nil {
		return nil, err
	}
	if imported {
		r.pending.Delete(paraID)
		r.reporter.Report(ctx, newStatus(r.bridge, RelayItemParaHead, RelayResultSkipped, HeaderID{
			Number: BlockNumber(best.AtRelayBlockNumber),
			Hash:   best.HeadHash,
		}).withParaID(paraID).withReason("already imported"))
		return nil, nil
	}
	return &paraHeadUpdate{paraID: paraID, best: *best}, nil
}

func (r *ParachainsRelay) skipOrFail(ctx context.Context, updates []paraHeadUpdate, relayBlock HeaderID, err error, msg string) error {
	for _, u := range updates {
		r.reporter.Report(ctx, newStatus(r.bridge, RelayItemParaHead, RelayResultFailed, HeaderID{
			Number: BlockNumber(u.best.AtRelayBlockNumber),
			Hash:   u.best.HeadHash,
		}).withParaID(u.paraID).withReason(err.Error()))
	}
	if IsFatal(err) || IsTransient(err) || ctx.Err() != nil {
		return errors.Wrap(err, msg)
	}
	r.logger().ErrorContext(ctx, msg, err, "relay_block", relayBlock.String())
	return nil
}
