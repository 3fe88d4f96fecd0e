package core

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
)

// InitializeBridge seeds the light client of src on the target chain of submitter.
// It is a one-shot operation signed with an immortal era. A bridge that is already
// initialized is left untouched.
func InitializeBridge(ctx context.Context, bridge string, src *ProvableChain, submitter *TxSubmitter, encoder CallEncoder, reporter StatusReporter) error {
	logger := log.GetLogger().WithBridge(bridge).WithChainPair(src.ChainID(), submitter.Target().ChainID())
	defer logger.TimeTrackContext(ctx, time.Now(), "InitializeBridge")

	known, err := BestFinalizedAtTarget(ctx, submitter.Target(), src.Descriptor())
	if err != nil {
		return errors.Wrap(err, "failed to query the target light client")
	}
	if known != nil {
		logger.InfoContext(ctx, "bridge is already initialized", "best_finalized", known.String())
		reporter.Report(ctx, newStatus(bridge, RelayItemInit, RelayResultSkipped, *known).withReason("already initialized"))
		return nil
	}

	data, err := src.BuildInitializationData(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to build initialization data")
	}
	id := data.Header.ID()
	logger.InfoContext(ctx, "built initialization data",
		"header", id.String(),
		"set_id", data.SetID,
		"authorities", data.Authorities,
	)

	call, err := encoder.EncodeInitBridge(data)
	if err != nil {
		return errors.Wrap(err, "failed to encode the initialization call")
	}
	outcome, err := submitter.Submit(ctx, call, EraPolicyImmortal)
	if err != nil {
		reporter.Report(ctx, newStatus(bridge, RelayItemInit, RelayResultFailed, id).withReason(err.Error()))
		return errors.Wrap(err, "failed to submit the initialization transaction")
	}
	reporter.Report(ctx, newStatus(bridge, RelayItemInit, RelayResultSubmitted, id).withTx(outcome))
	logger.InfoContext(ctx, "initialized bridge", "tx_hash", outcome.TxHash.Hex(), "already_known", outcome.AlreadyKnown)
	return nil
}
