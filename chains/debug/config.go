package debug

import (
	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/utils"
)

const ChainName = "debug"

// ChainConfig wraps the config of another chain type
type ChainConfig struct {
	OriginChain *utils.Any `json:"origin_chain" yaml:"origin-chain"`

	origin core.ChainConfig
}

var _ core.ChainConfig = (*ChainConfig)(nil)

var _ utils.UnpackInterfacesMessage = (*ChainConfig)(nil)

func (cfg *ChainConfig) UnpackInterfaces(r *utils.InterfaceRegistry) error {
	if cfg == nil {
		return nil
	}
	return utils.UnpackAny(r, utils.KindChain, cfg.OriginChain, &cfg.origin)
}

func (cfg *ChainConfig) Build(chainID string, descriptor core.ChainDescriptor) (core.Chain, error) {
	if cfg.origin == nil {
		return nil, errors.New("origin-chain must be set")
	}
	originChain, err := cfg.origin.Build(chainID, descriptor)
	if err != nil {
		return nil, err
	}
	return &Chain{
		config:      *cfg,
		OriginChain: originChain,
	}, nil
}

func (cfg *ChainConfig) Validate() error {
	if cfg.origin == nil {
		return core.NewConfigurationError("origin-chain must be set")
	}
	return cfg.origin.Validate()
}
