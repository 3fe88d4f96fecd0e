package otelcore

import (
	"context"
	"fmt"

	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"go.opentelemetry.io/otel/trace"
)

// Engine wraps a core.FinalityEngine and records a span for every proof it builds
type Engine struct {
	core.FinalityEngine
	chainID string
	tracer  trace.Tracer
}

func NewEngine(engine core.FinalityEngine, chainID string, tracer trace.Tracer) core.FinalityEngine {
	return &Engine{
		FinalityEngine: engine,
		chainID:        chainID,
		tracer:         tracer,
	}
}

func UnwrapEngine(engine core.FinalityEngine) (core.FinalityEngine, error) {
	e, ok := engine.(*Engine)
	if !ok {
		return nil, fmt.Errorf("engine type is not %T, but %T", &Engine{}, engine)
	}
	return e.FinalityEngine, nil
}

func (e *Engine) start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	opts = append(opts,
		core.WithChainAttributes(e.chainID),
		trace.WithAttributes(core.AttributeKeyEngine.String(e.Name())),
	)
	return e.tracer.Start(ctx, name, opts...)
}

func (e *Engine) BestFinalized(ctx context.Context, source core.ChainReader) (*core.HeaderID, error) {
	ctx, span := e.start(ctx, "Engine.BestFinalized")
	id, err := e.FinalityEngine.BestFinalized(ctx, source)
	end(span, err)
	return id, err
}

func (e *Engine) FinalityProofFor(ctx context.Context, source core.ChainReader, id core.HeaderID) (*core.FinalityProof, error) {
	ctx, span := e.start(ctx, "Engine.FinalityProofFor", core.WithHeaderIDAttributes(id))
	proof, err := e.FinalityEngine.FinalityProofFor(ctx, source, id)
	end(span, err)
	return proof, err
}

func (e *Engine) InitializationData(ctx context.Context, source core.ChainReader) (*core.InitializationData, error) {
	ctx, span := e.start(ctx, "Engine.InitializationData")
	data, err := e.FinalityEngine.InitializationData(ctx, source)
	end(span, err)
	return data, err
}
