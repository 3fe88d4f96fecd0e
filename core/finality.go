package core

import (
	"context"
)

// FinalityProof binds the finality of Header. Justification is the engine specific
// SCALE encoding that the target light client verifies.
type FinalityProof struct {
	Header        *Header
	Justification []byte
}

func (p *FinalityProof) HeaderID() HeaderID {
	return p.Header.ID()
}

// InitializationData seeds the light client of the target chain. Encoded is the
// engine specific SCALE encoding passed to the bridge pallet.
type InitializationData struct {
	Header      *Header
	SetID       uint64
	Authorities int
	Encoded     []byte
}

// FinalityEngine abstracts a consensus proof scheme of a source chain
type FinalityEngine interface {
	// Name returns the engine name, e.g. "grandpa"
	Name() string

	// BestFinalized returns the best finalized header of the source chain, or nil
	// if the source has not finalized any header yet
	BestFinalized(ctx context.Context, source ChainReader) (*HeaderID, error)

	// FinalityProofFor returns a proof of the finality of the given header. The header
	// of the returned proof may be a descendant of the requested one when the source
	// only justifies the last block of a session.
	// It fails with ErrProofUnavailable or ErrHeaderNotFinalized.
	FinalityProofFor(ctx context.Context, source ChainReader, id HeaderID) (*FinalityProof, error)

	// InitializationData builds the payload seeding the target light client.
	// It fails with ErrSourceUnreachable on RPC failures.
	InitializationData(ctx context.Context, source ChainReader) (*InitializationData, error)

	// VerifyProof checks the internal consistency of the proof without any chain access.
	// It fails with ErrInvalidProof.
	VerifyProof(header *Header, proof *FinalityProof) error
}
