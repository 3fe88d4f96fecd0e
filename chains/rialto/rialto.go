package rialto

import (
	"time"

	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

const (
	DescriptorName = "rialto"

	ParasPalletName = "Paras"
	// WithRialtoGrandpaPalletName is the GRANDPA bridge pallet instance tracking Rialto at Millau
	WithRialtoGrandpaPalletName = "BridgeRialtoGrandpa"
	// WithRialtoParachainsPalletName is the parachains bridge pallet instance tracking Rialto parachains
	WithRialtoParachainsPalletName = "BridgeRialtoParachains"

	BestFinalizedRialtoHeaderMethod = "RialtoFinalityApi_best_finalized"

	maximumBlockWeight    core.Weight = 2_000_000_000_000
	extrinsicBaseWeight   core.Weight = 125_000_000
	normalDispatchPercent             = 75
	maximumBlockSize                  = 2 * 1024 * 1024
	extraStorageProofSize             = 1024
)

// Descriptor is the Rialto test relay chain
var Descriptor = (&core.Descriptor{
	ChainName:           "Rialto",
	NumberSize:          4,
	Scheme:              core.SchemeEd25519,
	BlockInterval:       6 * time.Second,
	ExtrinsicSize:       maximumBlockSize * normalDispatchPercent / 100,
	ExtrinsicWeight:     maximumBlockWeight*normalDispatchPercent/100 - extrinsicBaseWeight,
	ProofOverhead:       extraStorageProofSize,
	FeePolynomial:       core.IdentityFee(),
	BestFinalizedMethod: BestFinalizedRialtoHeaderMethod,
	Version: core.RuntimeVersion{
		SpecName:           "rialto-runtime",
		SpecVersion:        1,
		TransactionVersion: 1,
	},
	SessionLength: 4,
}).MustValidate()
