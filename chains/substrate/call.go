package substrate

import (
	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

const EncoderName = "pallet-index"

// CallIndex is the (pallet index, call index) pair identifying a call in a runtime
type CallIndex [2]uint8

// CallEncoderConfig locates the bridge pallet calls in the target runtime
type CallEncoderConfig struct {
	InitBridge           CallIndex `json:"init_bridge" yaml:"init-bridge"`
	SubmitFinalityProof  CallIndex `json:"submit_finality_proof" yaml:"submit-finality-proof"`
	SubmitParachainHeads CallIndex `json:"submit_parachain_heads" yaml:"submit-parachain-heads"`
	// Sudo wraps the initialization call when set
	Sudo *CallIndex `json:"sudo,omitempty" yaml:"sudo,omitempty"`
	// BlockNumberSize is the width of a relay chain block number in the parachains pallet
	BlockNumberSize int `json:"block_number_size" yaml:"block-number-size"`
}

var _ core.CallEncoderConfig = (*CallEncoderConfig)(nil)

func (c *CallEncoderConfig) Build() (core.CallEncoder, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &CallEncoder{config: *c}, nil
}

func (c *CallEncoderConfig) Validate() error {
	if c.InitBridge == c.SubmitFinalityProof {
		return core.NewConfigurationError("init-bridge and submit-finality-proof share the call index %v", c.InitBridge)
	}
	switch c.BlockNumberSize {
	case 0, 4, 8:
	default:
		return core.NewConfigurationError("invalid block-number-size: %d", c.BlockNumberSize)
	}
	return nil
}

// CallEncoder encodes the calls of the bridge pallets by their call index
type CallEncoder struct {
	config CallEncoderConfig
}

var _ core.CallEncoder = (*CallEncoder)(nil)

func (e *CallEncoder) EncodeInitBridge(data *core.InitializationData) ([]byte, error) {
	if data == nil || len(data.Encoded) == 0 {
		return nil, errors.New("empty initialization data")
	}
	call := append(e.config.InitBridge[:], data.Encoded...)
	if e.config.Sudo != nil {
		call = append(e.config.Sudo[:], call...)
	}
	return call, nil
}

func (e *CallEncoder) EncodeSubmitFinalityProof(proof *core.FinalityProof) ([]byte, error) {
	if proof == nil || proof.Header == nil {
		return nil, errors.New("empty finality proof")
	}
	call := append(e.config.SubmitFinalityProof[:], proof.Header.Encode()...)
	return append(call, proof.Justification...), nil
}

func (e *CallEncoder) EncodeSubmitParachainHeads(relayBlock core.HeaderID, paraIDs []core.ParaID, proof [][]byte) ([]byte, error) {
	if len(paraIDs) == 0 {
		return nil, errors.New("no parachain to submit")
	}
	size := e.config.BlockNumberSize
	if size == 0 {
		size = 4
	}
	call := append(e.config.SubmitParachainHeads[:], core.EncodeBlockNumber(relayBlock.Number, size)...)
	call = append(call, relayBlock.Hash[:]...)
	call = append(call, core.EncodeCompact(uint64(len(paraIDs)))...)
	for _, id := range paraIDs {
		call = append(call, id.Encode()...)
	}
	call = append(call, core.EncodeCompact(uint64(len(proof)))...)
	for _, node := range proof {
		call = append(call, core.EncodeBytes(node)...)
	}
	return call, nil
}
