package mock

import (
	"bytes"
	"context"
	"crypto/sha256"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

// EngineName is the name of the mock finality engine
const EngineName = "mock"

var justificationPrefix = []byte("mock")

// Engine is a finality engine for development chains. A header is final once it is
// FinalityDelay blocks behind the best header, and its proof is a digest of the header.
type Engine struct {
	config EngineConfig
}

var _ core.FinalityEngine = (*Engine)(nil)

func NewEngine(config EngineConfig) *Engine {
	return &Engine{config: config}
}

func (e *Engine) Name() string {
	return EngineName
}

func (e *Engine) bestFinalizedNumber(ctx context.Context, source core.ChainReader) (core.BlockNumber, bool, error) {
	best, err := source.Header(ctx, nil)
	if err != nil {
		return 0, false, errors.Mark(err, core.ErrSourceUnreachable)
	}
	if uint64(best.Number) < e.config.FinalityDelay {
		return 0, false, nil
	}
	return best.Number - core.BlockNumber(e.config.FinalityDelay), true, nil
}

// BestFinalized returns the header FinalityDelay blocks behind the best one
func (e *Engine) BestFinalized(ctx context.Context, source core.ChainReader) (*core.HeaderID, error) {
	number, ok, err := e.bestFinalizedNumber(ctx, source)
	if err != nil || !ok {
		return nil, err
	}
	header, err := core.HeaderByNumber(ctx, source, number)
	if err != nil {
		return nil, err
	}
	id := header.ID()
	return &id, nil
}

func (e *Engine) FinalityProofFor(ctx context.Context, source core.ChainReader, id core.HeaderID) (*core.FinalityProof, error) {
	number, ok, err := e.bestFinalizedNumber(ctx, source)
	if err != nil {
		return nil, err
	}
	if !ok || id.Number > number {
		return nil, errors.Wrapf(core.ErrHeaderNotFinalized, "header=%s", id)
	}
	header, err := source.Header(ctx, &id.Hash)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "header=%s", id), core.ErrProofUnavailable)
	}
	return &core.FinalityProof{Header: header, Justification: justify(header)}, nil
}

func (e *Engine) InitializationData(ctx context.Context, source core.ChainReader) (*core.InitializationData, error) {
	id, err := e.BestFinalized(ctx, source)
	if err != nil {
		return nil, errors.Mark(err, core.ErrSourceUnreachable)
	}
	if id == nil {
		return nil, errors.Wrap(core.ErrHeaderNotFinalized, "no finalized header yet")
	}
	header, err := source.Header(ctx, &id.Hash)
	if err != nil {
		return nil, errors.Mark(err, core.ErrSourceUnreachable)
	}
	return &core.InitializationData{Header: header, Encoded: header.Encode()}, nil
}

// VerifyProof checks that the justification is the digest of the header
func (e *Engine) VerifyProof(header *core.Header, proof *core.FinalityProof) error {
	if proof == nil || proof.Header == nil {
		return errors.Wrap(core.ErrInvalidProof, "empty proof")
	}
	if header.Hash() != proof.Header.Hash() {
		return errors.Wrapf(core.ErrInvalidProof, "proof is for another header: %s", proof.Header.ID())
	}
	if !bytes.Equal(proof.Justification, justify(header)) {
		return errors.Wrap(core.ErrInvalidProof, "justification mismatch")
	}
	return nil
}

func justify(header *core.Header) []byte {
	digest := sha256.Sum256(header.Encode())
	return append(bytes.Clone(justificationPrefix), digest[:]...)
}
