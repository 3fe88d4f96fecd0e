package debug

import (
	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/utils"
)

const EngineName = "debug"

var _ core.EngineConfig = (*EngineConfig)(nil)

var _ utils.UnpackInterfacesMessage = (*EngineConfig)(nil)

// EngineConfig wraps the config of another finality engine
type EngineConfig struct {
	OriginEngine *utils.Any `json:"origin_engine" yaml:"origin-engine"`

	origin core.EngineConfig
}

func (cfg *EngineConfig) UnpackInterfaces(r *utils.InterfaceRegistry) error {
	if cfg == nil {
		return nil
	}
	return utils.UnpackAny(r, utils.KindEngine, cfg.OriginEngine, &cfg.origin)
}

func (cfg *EngineConfig) Build(source core.ChainDescriptor) (core.FinalityEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.origin == nil {
		return nil, errors.New("origin-engine must be set")
	}
	originEngine, err := cfg.origin.Build(source)
	if err != nil {
		return nil, err
	}
	return NewEngine(source.Name(), originEngine), nil
}

func (cfg *EngineConfig) Validate() error {
	if cfg.origin == nil {
		return core.NewConfigurationError("origin-engine must be set")
	}
	return cfg.origin.Validate()
}
