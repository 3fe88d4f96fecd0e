package core

import (
	"github.com/hyperledger-labs/yui-bridge-relayer/otelcore/semconv"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	AttributeKeyChainID     = semconv.ChainIDKey
	AttributeKeyBridge      = semconv.BridgeKey
	AttributeKeyEngine      = semconv.EngineKey
	AttributeKeyParaID      = semconv.ParaIDKey
	AttributeKeyBlockNumber = semconv.BlockNumberKey
	AttributeKeyBlockHash   = semconv.BlockHashKey
	AttributeKeyTxHash      = semconv.TxHashKey
	AttributeKeyNonce       = semconv.NonceKey
	AttributeKeyOutcome     = semconv.OutcomeKey
	AttributeKeyGuard       = semconv.GuardKey
	AttributeKeyDirection   = semconv.DirectionKey
	AttributeKeyPackage     = semconv.PackageKey
)

// AttributeGroup prefixes the given key to all attributes
func AttributeGroup(key string, attributes ...attribute.KeyValue) []attribute.KeyValue {
	return semconv.AttributeGroup(key, attributes...)
}

// WithChainAttributes returns a SpanStartOption that contains a chain ID
func WithChainAttributes(chainID string) trace.SpanStartOption {
	return trace.WithAttributes(AttributeKeyChainID.String(chainID))
}

// WithChainPairAttributes returns a SpanStartOption for a source and target chain pair
func WithChainPairAttributes(src, dst Chain) trace.SpanStartOption {
	attrs := AttributeGroup("src", AttributeKeyChainID.String(src.ChainID()))
	attrs = append(attrs, AttributeGroup("dst", AttributeKeyChainID.String(dst.ChainID()))...)
	return trace.WithAttributes(attrs...)
}

// WithHeaderIDAttributes returns a SpanStartOption describing a header
func WithHeaderIDAttributes(id HeaderID) trace.SpanStartOption {
	return trace.WithAttributes(
		AttributeKeyBlockNumber.Int64(int64(id.Number)),
		AttributeKeyBlockHash.String(id.Hash.Hex()),
	)
}
