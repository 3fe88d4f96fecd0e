package millau

import (
	"time"

	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

const (
	DescriptorName = "millau"

	// WithMillauGrandpaPalletName is the GRANDPA bridge pallet instance tracking Millau at Rialto
	WithMillauGrandpaPalletName = "BridgeMillauGrandpa"

	BestFinalizedMillauHeaderMethod = "MillauFinalityApi_best_finalized"

	maximumBlockWeight    core.Weight = 2_000_000_000_000
	extrinsicBaseWeight   core.Weight = 125_000_000
	normalDispatchPercent             = 75
	maximumBlockSize                  = 2 * 1024 * 1024
	extraStorageProofSize             = 1024
)

// Descriptor is the Millau test chain. Its block numbers are 64 bits wide.
var Descriptor = (&core.Descriptor{
	ChainName:           "Millau",
	NumberSize:          8,
	Scheme:              core.SchemeEd25519,
	BlockInterval:       5 * time.Second,
	ExtrinsicSize:       maximumBlockSize * normalDispatchPercent / 100,
	ExtrinsicWeight:     maximumBlockWeight*normalDispatchPercent/100 - extrinsicBaseWeight,
	ProofOverhead:       extraStorageProofSize,
	FeePolynomial:       core.IdentityFee(),
	BestFinalizedMethod: BestFinalizedMillauHeaderMethod,
	Version: core.RuntimeVersion{
		SpecName:           "millau-runtime",
		SpecVersion:        1,
		TransactionVersion: 1,
	},
}).MustValidate()
