package otelcore

import (
	"context"
	"fmt"

	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Chain wraps a core.Chain and records a span for every RPC round trip
type Chain struct {
	core.Chain
	tracer trace.Tracer
}

func NewChain(chain core.Chain, tracer trace.Tracer) core.Chain {
	return &Chain{
		Chain:  chain,
		tracer: tracer,
	}
}

func UnwrapChain(chain core.Chain) (core.Chain, error) {
	c, ok := chain.(*Chain)
	if !ok {
		return nil, fmt.Errorf("chain type is not %T, but %T", &Chain{}, chain)
	}
	return c.Chain, nil
}

func (c *Chain) start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	opts = append(opts, core.WithChainAttributes(c.ChainID()))
	return c.tracer.Start(ctx, name, opts...)
}

func end(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func atAttributes(at *core.Hash) trace.SpanStartOption {
	if at == nil {
		return trace.WithAttributes(core.AttributeKeyBlockHash.String("best"))
	}
	return trace.WithAttributes(core.AttributeKeyBlockHash.String(at.Hex()))
}

func (c *Chain) Header(ctx context.Context, at *core.Hash) (*core.Header, error) {
	ctx, span := c.start(ctx, "Chain.Header", atAttributes(at))
	header, err := c.Chain.Header(ctx, at)
	end(span, err)
	return header, err
}

func (c *Chain) BlockHash(ctx context.Context, number core.BlockNumber) (core.Hash, error) {
	ctx, span := c.start(ctx, "Chain.BlockHash",
		trace.WithAttributes(core.AttributeKeyBlockNumber.Int64(int64(number))),
	)
	hash, err := c.Chain.BlockHash(ctx, number)
	end(span, err)
	return hash, err
}

func (c *Chain) FinalizedHead(ctx context.Context) (core.Hash, error) {
	ctx, span := c.start(ctx, "Chain.FinalizedHead")
	hash, err := c.Chain.FinalizedHead(ctx)
	end(span, err)
	return hash, err
}

func (c *Chain) GenesisHash(ctx context.Context) (core.Hash, error) {
	ctx, span := c.start(ctx, "Chain.GenesisHash")
	hash, err := c.Chain.GenesisHash(ctx)
	end(span, err)
	return hash, err
}

func (c *Chain) RuntimeVersion(ctx context.Context) (*core.RuntimeVersion, error) {
	ctx, span := c.start(ctx, "Chain.RuntimeVersion")
	version, err := c.Chain.RuntimeVersion(ctx)
	if err == nil {
		span.SetAttributes(attribute.Int64("spec_version", int64(version.SpecVersion)))
	}
	end(span, err)
	return version, err
}

func (c *Chain) Storage(ctx context.Context, key core.StorageKey, at *core.Hash) ([]byte, error) {
	ctx, span := c.start(ctx, "Chain.Storage",
		atAttributes(at),
		trace.WithAttributes(attribute.String("key", key.Hex())),
	)
	value, err := c.Chain.Storage(ctx, key, at)
	end(span, err)
	return value, err
}

func (c *Chain) StateCall(ctx context.Context, method string, data []byte, at *core.Hash) ([]byte, error) {
	ctx, span := c.start(ctx, "Chain.StateCall",
		atAttributes(at),
		trace.WithAttributes(attribute.String("method", method)),
	)
	result, err := c.Chain.StateCall(ctx, method, data, at)
	end(span, err)
	return result, err
}

func (c *Chain) ReadProof(ctx context.Context, keys []core.StorageKey, at core.Hash) ([][]byte, error) {
	ctx, span := c.start(ctx, "Chain.ReadProof",
		atAttributes(&at),
		trace.WithAttributes(attribute.Int("keys", len(keys))),
	)
	proof, err := c.Chain.ReadProof(ctx, keys, at)
	end(span, err)
	return proof, err
}

func (c *Chain) ProveFinality(ctx context.Context, number core.BlockNumber) ([]byte, error) {
	ctx, span := c.start(ctx, "Chain.ProveFinality",
		trace.WithAttributes(core.AttributeKeyBlockNumber.Int64(int64(number))),
	)
	proof, err := c.Chain.ProveFinality(ctx, number)
	end(span, err)
	return proof, err
}

func (c *Chain) AccountNextIndex(ctx context.Context, account core.AccountID) (core.Nonce, error) {
	ctx, span := c.start(ctx, "Chain.AccountNextIndex")
	nonce, err := c.Chain.AccountNextIndex(ctx, account)
	if err == nil {
		span.SetAttributes(core.AttributeKeyNonce.Int64(int64(nonce)))
	}
	end(span, err)
	return nonce, err
}

func (c *Chain) SubmitExtrinsic(ctx context.Context, extrinsic []byte) (core.Hash, error) {
	ctx, span := c.start(ctx, "Chain.SubmitExtrinsic",
		trace.WithAttributes(attribute.Int("size", len(extrinsic))),
	)
	hash, err := c.Chain.SubmitExtrinsic(ctx, extrinsic)
	if err == nil {
		span.SetAttributes(core.AttributeKeyTxHash.String(hash.Hex()))
	}
	end(span, err)
	return hash, err
}
