package core

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ProvableChain is a source chain bundled with the finality engine that proves its headers.
//
// It wraps the engine methods with tracing, so that modules get spans without
// modifying their code.
type ProvableChain struct {
	Chain
	FinalityEngine
}

// NewProvableChain returns a new ProvableChain instance
func NewProvableChain(chain Chain, engine FinalityEngine) *ProvableChain {
	return &ProvableChain{Chain: chain, FinalityEngine: engine}
}

func (pc *ProvableChain) Init(homePath string, timeout time.Duration, debug bool) error {
	return pc.Chain.Init(homePath, timeout, debug)
}

// LatestFinalized returns the best finalized header id of this chain
func (pc *ProvableChain) LatestFinalized(ctx context.Context) (*HeaderID, error) {
	ctx, span := tracer.Start(ctx, "FinalityEngine.BestFinalized",
		WithChainAttributes(pc.ChainID()),
		withPackage(pc.FinalityEngine),
	)
	defer span.End()

	id, err := pc.FinalityEngine.BestFinalized(ctx, pc.Chain)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return id, err
}

// ProveFinalityOf returns a finality proof of the given header of this chain
func (pc *ProvableChain) ProveFinalityOf(ctx context.Context, id HeaderID) (*FinalityProof, error) {
	ctx, span := tracer.Start(ctx, "FinalityEngine.FinalityProofFor",
		WithChainAttributes(pc.ChainID()),
		WithHeaderIDAttributes(id),
		withPackage(pc.FinalityEngine),
	)
	defer span.End()

	proof, err := pc.FinalityEngine.FinalityProofFor(ctx, pc.Chain, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return proof, err
}

// BuildInitializationData returns the bootstrap payload of a light client of this chain
func (pc *ProvableChain) BuildInitializationData(ctx context.Context) (*InitializationData, error) {
	ctx, span := tracer.Start(ctx, "FinalityEngine.InitializationData",
		WithChainAttributes(pc.ChainID()),
		withPackage(pc.FinalityEngine),
	)
	defer span.End()

	data, err := pc.FinalityEngine.InitializationData(ctx, pc.Chain)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("set_id", int64(data.SetID)),
		attribute.Int("authorities", data.Authorities),
	)
	return data, nil
}
