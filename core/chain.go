package core

import (
	"context"
	"time"
)

// Chain represents a substrate based chain that the relayer reads from or submits to
type Chain interface {
	// ChainID returns the configured identifier of the chain
	ChainID() string

	// Descriptor returns the static facts about the chain
	Descriptor() ChainDescriptor

	// Init initializes the chain. It must be called before any query.
	Init(homePath string, timeout time.Duration, debug bool) error

	// Close releases the underlying connection
	Close() error

	ChainReader
	TxPool
}

// ChainReader is the read-only view of a chain
type ChainReader interface {
	// Header returns the header at the given block hash, or the best header if at is nil
	Header(ctx context.Context, at *Hash) (*Header, error)

	// BlockHash returns the hash of the canonical block with the given number
	BlockHash(ctx context.Context, number BlockNumber) (Hash, error)

	// FinalizedHead returns the hash of the best finalized block
	FinalizedHead(ctx context.Context) (Hash, error)

	// GenesisHash returns the hash of block #0
	GenesisHash(ctx context.Context) (Hash, error)

	// RuntimeVersion returns the live runtime version at the best block
	RuntimeVersion(ctx context.Context) (*RuntimeVersion, error)

	// Storage reads a storage value. A missing entry is returned as nil without an error.
	Storage(ctx context.Context, key StorageKey, at *Hash) ([]byte, error)

	// StateCall executes a runtime api method
	StateCall(ctx context.Context, method string, data []byte, at *Hash) ([]byte, error)

	// ReadProof returns the trie nodes proving the given keys at the given block
	ReadProof(ctx context.Context, keys []StorageKey, at Hash) ([][]byte, error)

	// ProveFinality returns the encoded finality proof of the given block, or nil
	// if the node cannot produce one
	ProveFinality(ctx context.Context, number BlockNumber) ([]byte, error)
}

// TxPool is the write path of a chain
type TxPool interface {
	// AccountNextIndex returns the next nonce of the account, including pending transactions
	AccountNextIndex(ctx context.Context, account AccountID) (Nonce, error)

	// SubmitExtrinsic submits a signed extrinsic to the transaction pool
	SubmitExtrinsic(ctx context.Context, extrinsic []byte) (Hash, error)
}

// HeaderByNumber returns the canonical header with the given number
func HeaderByNumber(ctx context.Context, chain ChainReader, number BlockNumber) (*Header, error) {
	hash, err := chain.BlockHash(ctx, number)
	if err != nil {
		return nil, err
	}
	return chain.Header(ctx, &hash)
}

// BestFinalizedHeader returns the best finalized header of the chain
func BestFinalizedHeader(ctx context.Context, chain ChainReader) (*Header, error) {
	hash, err := chain.FinalizedHead(ctx)
	if err != nil {
		return nil, err
	}
	return chain.Header(ctx, &hash)
}
