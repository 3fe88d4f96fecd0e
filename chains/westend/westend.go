package westend

import (
	"time"

	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

const (
	DescriptorName = "westend"

	// ParasPalletName is the name of the parachains pallet in the Westend runtime
	ParasPalletName = "Paras"
	// WithWestendGrandpaPalletName is the GRANDPA bridge pallet instance tracking Westend at bridged chains
	WithWestendGrandpaPalletName = "BridgeWestendGrandpa"
	// WithWestendBridgeParasPalletName is the parachains bridge pallet instance tracking Westend parachains
	WithWestendBridgeParasPalletName = "BridgeWestendParachains"

	BestFinalizedWestendHeaderMethod  = "WestendFinalityApi_best_finalized"
	BestFinalizedWestmintHeaderMethod = "WestmintFinalityApi_best_finalized"

	// WestmintParachainID is the para id of Westmint at Westend
	WestmintParachainID core.ParaID = 2000

	// SessionLength is the target length of a session, 10 minutes of blocks
	SessionLength core.BlockNumber = 10 * blocksPerMinute

	// ExtrinsicBaseWeight is the weight of the smallest non-empty extrinsic
	ExtrinsicBaseWeight core.Weight = 85_212_000

	// Cents is a hundredth of a WND in plancks
	Cents uint64 = 1_000_000_000_000 / 1_000

	blockInterval   = 6 * time.Second
	blocksPerMinute = 10

	maximumBlockWeight    core.Weight = 2_000_000_000_000
	normalDispatchPercent             = 75
	maximumBlockSize                  = 5 * 1024 * 1024
	extraStorageProofSize             = 1024
)

// WeightToFee maps the extrinsic base weight to a tenth of a cent
func WeightToFee() core.WeightToFeePolynomial {
	return core.RationalFee(Cents, 10*uint64(ExtrinsicBaseWeight))
}

// Descriptor is the Westend relay chain. The relayer never submits transactions to it.
var Descriptor = (&core.Descriptor{
	ChainName:           "Westend",
	NumberSize:          4,
	Scheme:              core.SchemeSr25519,
	BlockInterval:       blockInterval,
	ExtrinsicSize:       maximumBlockSize * normalDispatchPercent / 100,
	ExtrinsicWeight:     maximumBlockWeight*normalDispatchPercent/100 - ExtrinsicBaseWeight,
	ProofOverhead:       extraStorageProofSize,
	FeePolynomial:       WeightToFee(),
	BestFinalizedMethod: BestFinalizedWestendHeaderMethod,
	NotDispatchable:     true,
	Version: core.RuntimeVersion{
		SpecName:           "westend",
		SpecVersion:        9140,
		TransactionVersion: 8,
	},
	SessionLength: SessionLength,
}).MustValidate()
