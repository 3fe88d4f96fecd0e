package grandpa

import (
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

var _ core.EngineConfig = (*EngineConfig)(nil)

// EngineConfig configures the GRANDPA engine
type EngineConfig struct{}

func (c EngineConfig) Build(source core.ChainDescriptor) (core.FinalityEngine, error) {
	return NewEngine(source.BlockNumberSize()), nil
}

func (c EngineConfig) Validate() error {
	return nil
}
