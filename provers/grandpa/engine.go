package grandpa

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
)

const (
	// EngineName is the name of the GRANDPA finality engine
	EngineName = "grandpa"

	AuthoritiesMethod = "GrandpaApi_grandpa_authorities"
	PalletName        = "Grandpa"
	CurrentSetIDItem  = "CurrentSetId"
)

// Engine produces and checks GRANDPA finality proofs of a source chain
type Engine struct {
	numberSize int

	mu       sync.RWMutex
	lastSets map[uint64]*AuthoritySet
	// latest set id seen while building proofs, used by VerifyProof
	latest uint64
}

var _ core.FinalityEngine = (*Engine)(nil)

// NewEngine returns an engine for a source chain with the given block number width
func NewEngine(numberSize int) *Engine {
	if numberSize != 8 {
		numberSize = 4
	}
	return &Engine{numberSize: numberSize, lastSets: make(map[uint64]*AuthoritySet)}
}

func (e *Engine) Name() string {
	return EngineName
}

// BestFinalized returns nil while only genesis is finalized, since genesis carries
// no justification
func (e *Engine) BestFinalized(ctx context.Context, source core.ChainReader) (*core.HeaderID, error) {
	header, err := core.BestFinalizedHeader(ctx, source)
	if err != nil {
		return nil, errors.Mark(err, core.ErrSourceUnreachable)
	}
	if header.Number == 0 {
		return nil, nil
	}
	id := header.ID()
	return &id, nil
}

// AuthoritySetAt reads the voter set and set id at the given block
func (e *Engine) AuthoritySetAt(ctx context.Context, source core.ChainReader, at core.Hash) (*AuthoritySet, error) {
	raw, err := source.StateCall(ctx, AuthoritiesMethod, nil, &at)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to read grandpa authorities"), core.ErrSourceUnreachable)
	}
	authorities, err := DecodeAuthorities(raw)
	if err != nil {
		return nil, err
	}
	bz, err := source.Storage(ctx, core.StorageValueKey(PalletName, CurrentSetIDItem), &at)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to read grandpa set id"), core.ErrSourceUnreachable)
	}
	var setID uint64
	if len(bz) != 0 {
		if len(bz) != 8 {
			return nil, errors.Newf("invalid set id encoding: length=%d", len(bz))
		}
		setID = binary.LittleEndian.Uint64(bz)
	}
	return &AuthoritySet{SetID: setID, Authorities: authorities}, nil
}

func (e *Engine) remember(set *AuthoritySet) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSets[set.SetID] = set
	if set.SetID >= e.latest {
		e.latest = set.SetID
	}
	for id := range e.lastSets {
		if id+1 < e.latest {
			delete(e.lastSets, id)
		}
	}
}

// FinalityProofFor fetches the justification of the given header. The node may only
// justify the last header of a session, so the returned proof can be for a descendant.
func (e *Engine) FinalityProofFor(ctx context.Context, source core.ChainReader, id core.HeaderID) (*core.FinalityProof, error) {
	finalized, err := core.BestFinalizedHeader(ctx, source)
	if err != nil {
		return nil, errors.Mark(err, core.ErrSourceUnreachable)
	}
	if id.Number > finalized.Number {
		return nil, errors.Wrapf(core.ErrHeaderNotFinalized, "header=%s, finalized=%s", id, finalized.ID())
	}

	raw, err := source.ProveFinality(ctx, id.Number)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "header=%s", id), core.ErrSourceUnreachable)
	}
	if len(raw) == 0 {
		return nil, errors.Wrapf(core.ErrProofUnavailable, "header=%s", id)
	}
	encoded, err := DecodeFinalityProof(raw)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "header=%s", id), core.ErrInvalidProof)
	}

	header, err := source.Header(ctx, &encoded.Block)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "proven block=%s", encoded.Block), core.ErrProofUnavailable)
	}
	if header.Number < id.Number {
		return nil, errors.Wrapf(core.ErrInvalidProof, "proof is for an ancestor: requested=%s, proven=%s", id, header.ID())
	}

	set, err := e.AuthoritySetAt(ctx, source, header.ParentHash)
	if err != nil {
		return nil, err
	}
	e.remember(set)

	proof := &core.FinalityProof{Header: header, Justification: encoded.Justification}
	if err := e.VerifyProof(header, proof); err != nil {
		return nil, err
	}
	log.GetLogger().DebugContext(ctx, "built grandpa finality proof",
		"block_number", header.Number,
		"set_id", set.SetID,
	)
	return proof, nil
}

// InitializationData reads the best finalized header and its voter set
func (e *Engine) InitializationData(ctx context.Context, source core.ChainReader) (*core.InitializationData, error) {
	header, err := core.BestFinalizedHeader(ctx, source)
	if err != nil {
		return nil, errors.Mark(err, core.ErrSourceUnreachable)
	}
	set, err := e.AuthoritySetAt(ctx, source, header.Hash())
	if err != nil {
		return nil, err
	}
	if len(set.Authorities) == 0 {
		return nil, errors.Wrapf(core.ErrProofUnavailable, "empty authority set at %s", header.ID())
	}
	e.remember(set)

	// header ++ authority_list ++ set_id ++ is_halted
	encoded := header.Encode()
	encoded = append(encoded, set.Encode()...)
	encoded = binary.LittleEndian.AppendUint64(encoded, set.SetID)
	encoded = append(encoded, 0)

	return &core.InitializationData{
		Header:      header,
		SetID:       set.SetID,
		Authorities: len(set.Authorities),
		Encoded:     encoded,
	}, nil
}

// VerifyProof checks the justification against the header and the most recently
// observed authority sets
func (e *Engine) VerifyProof(header *core.Header, proof *core.FinalityProof) error {
	if proof == nil || proof.Header == nil {
		return errors.Wrap(core.ErrInvalidProof, "empty proof")
	}
	j, err := DecodeJustification(proof.Justification, e.numberSize)
	if err != nil {
		return errors.Mark(err, core.ErrInvalidProof)
	}

	e.mu.RLock()
	sets := make([]*AuthoritySet, 0, len(e.lastSets))
	for _, s := range e.lastSets {
		sets = append(sets, s)
	}
	e.mu.RUnlock()
	if len(sets) == 0 {
		return errors.Wrap(core.ErrInvalidProof, "no authority set known")
	}

	var lastErr error
	for _, set := range sets {
		if lastErr = VerifyJustification(header.ID(), set, j, e.numberSize); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// VerifyJustification checks that the justification finalizes target under the given set
func VerifyJustification(target core.HeaderID, set *AuthoritySet, j *Justification, numberSize int) error {
	if j.Commit.TargetHash != target.Hash || j.Commit.TargetNumber != target.Number {
		return errors.Wrapf(core.ErrInvalidProof, "justification targets #%d(%s), expected %s",
			j.Commit.TargetNumber, j.Commit.TargetHash, target)
	}

	ancestry := make(map[core.Hash]*core.Header, len(j.VotesAncestries))
	for _, h := range j.VotesAncestries {
		ancestry[h.Hash()] = h
	}

	seen := make(map[AuthorityID]struct{}, len(j.Commit.Precommits))
	var weight uint64
	for i, p := range j.Commit.Precommits {
		if _, ok := seen[p.ID]; ok {
			return errors.Wrapf(core.ErrInvalidProof, "duplicate vote from %x", p.ID[:])
		}
		seen[p.ID] = struct{}{}

		w, ok := set.weightOf(p.ID)
		if !ok {
			return errors.Wrapf(core.ErrInvalidProof, "precommit %d from unknown authority %x", i, p.ID[:])
		}
		msg := SigningPayload(p.Precommit, j.Round, set.SetID, numberSize)
		if !ed25519.Verify(ed25519.PublicKey(p.ID[:]), msg, p.Signature[:]) {
			return errors.Wrapf(core.ErrInvalidProof, "invalid signature of precommit %d", i)
		}
		if err := checkAncestry(ancestry, j.Commit.TargetHash, p.Precommit); err != nil {
			return errors.Wrapf(err, "precommit %d", i)
		}
		weight += w
	}

	if threshold := set.Threshold(); weight < threshold {
		return errors.Wrapf(core.ErrInvalidProof, "not enough votes: weight=%d, threshold=%d, set_id=%d", weight, threshold, set.SetID)
	}
	return nil
}

// checkAncestry walks from the precommit target back to the commit target
func checkAncestry(ancestry map[core.Hash]*core.Header, base core.Hash, p Precommit) error {
	current := p.TargetHash
	for steps := 0; steps <= len(ancestry); steps++ {
		if current == base {
			return nil
		}
		h, ok := ancestry[current]
		if !ok {
			break
		}
		current = h.ParentHash
	}
	return errors.Wrapf(core.ErrInvalidProof, "target %s is not a descendant of the commit target", p.TargetHash)
}
