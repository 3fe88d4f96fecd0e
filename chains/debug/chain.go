package debug

import (
	"context"
	"time"

	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

// Chain forwards to OriginChain and injects the faults configured by environment variables
type Chain struct {
	config      ChainConfig
	OriginChain core.Chain
}

var _ core.Chain = (*Chain)(nil)

func (c *Chain) ChainID() string {
	return c.OriginChain.ChainID()
}

func (c *Chain) Config() ChainConfig {
	return c.config
}

func (c *Chain) Descriptor() core.ChainDescriptor {
	return c.OriginChain.Descriptor()
}

func (c *Chain) Init(homePath string, timeout time.Duration, debug bool) error {
	return c.OriginChain.Init(homePath, timeout, debug)
}

func (c *Chain) Close() error {
	return c.OriginChain.Close()
}

func (c *Chain) Header(ctx context.Context, at *core.Hash) (*core.Header, error) {
	return c.OriginChain.Header(ctx, at)
}

func (c *Chain) BlockHash(ctx context.Context, number core.BlockNumber) (core.Hash, error) {
	return c.OriginChain.BlockHash(ctx, number)
}

func (c *Chain) FinalizedHead(ctx context.Context) (core.Hash, error) {
	return c.OriginChain.FinalizedHead(ctx)
}

func (c *Chain) GenesisHash(ctx context.Context) (core.Hash, error) {
	return c.OriginChain.GenesisHash(ctx)
}

func (c *Chain) RuntimeVersion(ctx context.Context) (*core.RuntimeVersion, error) {
	return c.OriginChain.RuntimeVersion(ctx)
}

func (c *Chain) StateCall(ctx context.Context, method string, data []byte, at *core.Hash) ([]byte, error) {
	return c.OriginChain.StateCall(ctx, method, data, at)
}

func (c *Chain) ProveFinality(ctx context.Context, number core.BlockNumber) ([]byte, error) {
	if debugFakeNoJustification(c, number) {
		return nil, nil
	}
	return c.OriginChain.ProveFinality(ctx, number)
}

func (c *Chain) AccountNextIndex(ctx context.Context, account core.AccountID) (core.Nonce, error) {
	return c.OriginChain.AccountNextIndex(ctx, account)
}
