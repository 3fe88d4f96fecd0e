package cmd

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/coreutil"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
	"github.com/hyperledger-labs/yui-bridge-relayer/status"
)

// bridgeRelay is everything one bridge direction needs to submit transactions to its target
type bridgeRelay struct {
	name      string
	config    *config.BridgeConfig
	src       *core.ProvableChain
	dst       *core.ProvableChain
	submitter *core.TxSubmitter
	encoder   core.CallEncoder
	reporter  core.StatusReporter

	closers []func() error
}

func newBridgeRelay(ctx *config.Context, name string) (*bridgeRelay, error) {
	bridge, src, dst, err := ctx.Config.ChainsFromBridge(name)
	if err != nil {
		return nil, err
	}
	if !dst.Descriptor().AcceptsTransactions() {
		return nil, core.NewConfigurationError("bridge %s: target chain %s does not accept transactions", name, dst.ChainID())
	}
	signer, err := bridge.BuildSigner()
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "bridge %s", name), core.ErrConfiguration)
	}
	if signer.Scheme() != dst.Descriptor().SignatureScheme() {
		return nil, core.NewConfigurationError("bridge %s: signer scheme %s does not match %s of target chain %s",
			name, signer.Scheme(), dst.Descriptor().SignatureScheme(), dst.ChainID())
	}
	scheme, err := coreutil.SignSchemeOf(dst)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "bridge %s", name), core.ErrConfiguration)
	}
	encoder, err := bridge.BuildCallEncoder()
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "bridge %s", name), core.ErrConfiguration)
	}

	r := &bridgeRelay{
		name:      name,
		config:    bridge,
		src:       src,
		dst:       dst,
		submitter: core.NewTxSubmitter(dst, signer, scheme, bridge.Tx),
		encoder:   encoder,
	}
	reporters := core.StatusReporters{core.LogStatusReporter{}}
	if bridge.Status.NatsURL != "" {
		nr, err := status.NewNatsReporter(bridge.Status.NatsURL, bridge.Status.Subject, name)
		if err != nil {
			return nil, err
		}
		reporters = append(reporters, nr)
		r.closers = append(r.closers, nr.Close)
	}
	r.reporter = reporters
	return r, nil
}

// verifyLayout checks the pallets the enabled loops read from
func (r *bridgeRelay) verifyLayout(ctx context.Context) error {
	var srcPallets, dstPallets []string
	if h := r.config.Headers; h != nil {
		dstPallets = append(dstPallets, h.GrandpaPallet)
	}
	if p := r.config.Parachains; p != nil {
		srcPallets = append(srcPallets, p.ParasPallet)
		dstPallets = append(dstPallets, p.BridgeParachainsPallet)
	}
	if err := core.VerifyStorageLayout(ctx, r.src, srcPallets...); err != nil {
		return errors.Wrapf(err, "source chain %s", r.src.ChainID())
	}
	if err := core.VerifyStorageLayout(ctx, r.dst, dstPallets...); err != nil {
		return errors.Wrapf(err, "target chain %s", r.dst.ChainID())
	}
	return nil
}

func (r *bridgeRelay) Close() {
	logger := log.GetLogger().WithBridge(r.name)
	for _, closeFn := range r.closers {
		if err := closeFn(); err != nil {
			logger.Error("failed to close", err)
		}
	}
}

// initPallet returns the pallet holding the light client that init-bridge seeds
func (r *bridgeRelay) initPallet() string {
	if r.config.Headers != nil {
		return r.config.Headers.GrandpaPallet
	}
	return ""
}
