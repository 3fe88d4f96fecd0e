package core

// CallEncoder builds the calls of the bridge pallets deployed at one target chain
type CallEncoder interface {
	// EncodeInitBridge encodes the call initializing the finality pallet
	EncodeInitBridge(data *InitializationData) ([]byte, error)

	// EncodeSubmitFinalityProof encodes the call importing a finalized header
	EncodeSubmitFinalityProof(proof *FinalityProof) ([]byte, error)

	// EncodeSubmitParachainHeads encodes the call importing the heads of the given
	// parachains read at relayBlock, with the storage proof of those heads
	EncodeSubmitParachainHeads(relayBlock HeaderID, paraIDs []ParaID, proof [][]byte) ([]byte, error)
}
