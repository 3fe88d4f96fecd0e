package core

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/ChainSafe/gossamer/pkg/scale"
	"github.com/cockroachdb/errors"
)

const (
	// ParasPalletName is the name of the parachains pallet at relay chains
	ParasPalletName = "Paras"

	parasHeadsMap        = "Heads"
	bestParaHeadsMap     = "BestParaHeads"
	importedParaHeadsMap = "ImportedParaHeads"
)

// ParaID identifies a parachain at its relay chain
type ParaID uint32

func (id ParaID) Encode() []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(id))
}

// BestParaHeadHash is the best known head of a parachain, tagged with the number of
// the relay block where it has been read
type BestParaHeadHash struct {
	AtRelayBlockNumber uint32
	HeadHash           [HashLength]byte
}

func (b BestParaHeadHash) String() string {
	return fmt.Sprintf("%s@%d", Hash(b.HeadHash).Hex(), b.AtRelayBlockNumber)
}

// DecodeBestParaHeadHash decodes the value of the BestParaHeads map
func DecodeBestParaHeadHash(bz []byte) (*BestParaHeadHash, error) {
	var v BestParaHeadHash
	if err := scale.Unmarshal(bz, &v); err != nil {
		return nil, errors.Wrap(err, "failed to decode BestParaHeadHash")
	}
	return &v, nil
}

// DecodeParaHead decodes the value of the Paras.Heads map, a SCALE byte vector
func DecodeParaHead(bz []byte) ([]byte, error) {
	var head []byte
	if err := scale.Unmarshal(bz, &head); err != nil {
		return nil, errors.Wrap(err, "failed to decode parachain head data")
	}
	return head, nil
}

// ParachainHeadStorageKeyAtSource returns the key of a parachain head in the relay chain
func ParachainHeadStorageKeyAtSource(parasPallet string, paraID ParaID) StorageKey {
	return StorageMapKey(parasPallet, parasHeadsMap, paraID.Encode(), Twox64Concat)
}

// BestParachainHeadHashStorageKeyAtTarget returns the key of the best known head of a
// parachain in the bridge parachains pallet of the target chain
func BestParachainHeadHashStorageKeyAtTarget(bridgePallet string, paraID ParaID) StorageKey {
	return StorageMapKey(bridgePallet, bestParaHeadsMap, paraID.Encode(), Blake2_128Concat)
}

// ImportedParachainHeadStorageKeyAtTarget returns the key of an imported parachain head
// in the bridge parachains pallet of the target chain
func ImportedParachainHeadStorageKeyAtTarget(bridgePallet string, paraID ParaID, headHash Hash) StorageKey {
	return StorageDoubleMapKey(bridgePallet, importedParaHeadsMap, paraID.Encode(), Blake2_128Concat, headHash[:], Blake2_128Concat)
}

// TrackerState is the state of a ParaHeadTracker
type TrackerState int

const (
	TrackerUninitialized TrackerState = iota
	TrackerTracking
)

func (s TrackerState) String() string {
	switch s {
	case TrackerUninitialized:
		return "Uninitialized"
	case TrackerTracking:
		return "Tracking"
	default:
		return fmt.Sprintf("TrackerState(%d)", int(s))
	}
}

// ParaHeadTracker keeps the best known head of one parachain.
//
// A head read at finalized relay block B is an ancestor of (or equal to) any head
// read at a finalized relay block after B, so observations are ordered by relay
// block number alone and the head is never decoded.
type ParaHeadTracker struct {
	paraID ParaID

	mu   sync.RWMutex
	best *BestParaHeadHash
}

// NewParaHeadTracker returns an uninitialized tracker
func NewParaHeadTracker(paraID ParaID) *ParaHeadTracker {
	return &ParaHeadTracker{paraID: paraID}
}

func (t *ParaHeadTracker) ParaID() ParaID {
	return t.paraID
}

func (t *ParaHeadTracker) State() TrackerState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.best == nil {
		return TrackerUninitialized
	}
	return TrackerTracking
}

// Observe records the head read at the given relay block. An observation at or
// below the current relay block is ignored and false is returned.
// Relay block numbers need not be contiguous.
func (t *ParaHeadTracker) Observe(relayBlock uint32, headHash Hash) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.best != nil && relayBlock <= t.best.AtRelayBlockNumber {
		return false
	}
	t.best = &BestParaHeadHash{AtRelayBlockNumber: relayBlock, HeadHash: headHash}
	return true
}

// Best returns a copy of the best known head, or nil before the first observation
func (t *ParaHeadTracker) Best() *BestParaHeadHash {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.best == nil {
		return nil
	}
	best := *t.best
	return &best
}

// IsImported reports whether the target chain does not need the given head anymore:
// either the head itself is in the imported heads index, or the target already
// knows a head read at the same or a later relay block.
func (t *ParaHeadTracker) IsImported(ctx context.Context, target ChainReader, bridgePallet string, relayBlock uint32, headHash Hash) (bool, error) {
	bz, err := target.Storage(ctx, ImportedParachainHeadStorageKeyAtTarget(bridgePallet, t.paraID, headHash), nil)
	if err != nil {
		return false, err
	}
	if bz != nil {
		return true, nil
	}
	best, err := BestParaHeadAtTarget(ctx, target, bridgePallet, t.paraID)
	if err != nil {
		return false, err
	}
	return best != nil && best.AtRelayBlockNumber >= relayBlock, nil
}

// BestParaHeadAtTarget reads the best head of a parachain known to the target chain
func BestParaHeadAtTarget(ctx context.Context, target ChainReader, bridgePallet string, paraID ParaID) (*BestParaHeadHash, error) {
	bz, err := target.Storage(ctx, BestParachainHeadHashStorageKeyAtTarget(bridgePallet, paraID), nil)
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, nil
	}
	return DecodeBestParaHeadHash(bz)
}

// ParaHeadAtSource reads the head of a parachain from the relay chain at the given block.
// It returns nil if the parachain is not registered there.
func ParaHeadAtSource(ctx context.Context, source ChainReader, parasPallet string, paraID ParaID, at Hash) ([]byte, error) {
	bz, err := source.Storage(ctx, ParachainHeadStorageKeyAtSource(parasPallet, paraID), &at)
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, nil
	}
	return DecodeParaHead(bz)
}
