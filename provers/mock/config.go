package mock

import (
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

var _ core.EngineConfig = (*EngineConfig)(nil)

// EngineConfig configures the mock engine
type EngineConfig struct {
	FinalityDelay uint64 `json:"finality_delay" yaml:"finality-delay"`
}

func (c EngineConfig) Build(source core.ChainDescriptor) (core.FinalityEngine, error) {
	return NewEngine(c), nil
}

func (c EngineConfig) Validate() error {
	return nil
}
