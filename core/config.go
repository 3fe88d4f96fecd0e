package core

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/utils"
)

// ChainConfig defines a chain client configuration and its builder
type ChainConfig interface {
	Build(chainID string, descriptor ChainDescriptor) (Chain, error)
	Validate() error
}

// EngineConfig defines a finality engine configuration and its builder
type EngineConfig interface {
	Build(source ChainDescriptor) (FinalityEngine, error)
	Validate() error
}

// CallEncoderConfig defines the bridge pallet call layout of a target chain
type CallEncoderConfig interface {
	Build() (CallEncoder, error)
	Validate() error
}

// ChainEngineConfig defines the top level configuration for a chain instance
type ChainEngineConfig struct {
	ChainID string `json:"chain-id" yaml:"chain-id"`
	// Descriptor is the registered name of the chain descriptor, e.g. "westend"
	Descriptor string     `json:"descriptor" yaml:"descriptor"`
	Chain      *utils.Any `json:"chain" yaml:"chain"`
	Engine     *utils.Any `json:"engine" yaml:"engine"`

	// cache
	descriptor ChainDescriptor `json:"-" yaml:"-"`
	chain      ChainConfig     `json:"-" yaml:"-"`
	engine     EngineConfig    `json:"-" yaml:"-"`
}

// Init resolves the typed sections against the registry and validates them
func (cc *ChainEngineConfig) Init(registry *utils.InterfaceRegistry) error {
	if cc.ChainID == "" {
		return NewConfigurationError("chain-id must be set")
	}
	var descriptor ChainDescriptor
	if err := utils.UnpackAny(registry, utils.KindDescriptor, &utils.Any{Type: cc.Descriptor}, &descriptor); err != nil {
		return errors.Mark(errors.Wrapf(err, "chain %s", cc.ChainID), ErrConfiguration)
	}
	var chain ChainConfig
	if err := utils.UnpackAny(registry, utils.KindChain, cc.Chain, &chain); err != nil {
		return errors.Mark(errors.Wrapf(err, "chain %s", cc.ChainID), ErrConfiguration)
	} else if err := chain.Validate(); err != nil {
		return errors.Mark(errors.Wrapf(err, "invalid chain config of %s", cc.ChainID), ErrConfiguration)
	}
	var engine EngineConfig
	if cc.Engine != nil {
		if err := utils.UnpackAny(registry, utils.KindEngine, cc.Engine, &engine); err != nil {
			return errors.Mark(errors.Wrapf(err, "chain %s", cc.ChainID), ErrConfiguration)
		} else if err := engine.Validate(); err != nil {
			return errors.Mark(errors.Wrapf(err, "invalid engine config of %s", cc.ChainID), ErrConfiguration)
		}
	}
	cc.descriptor = descriptor
	cc.chain = chain
	cc.engine = engine
	return nil
}

// GetDescriptor returns the resolved descriptor
func (cc ChainEngineConfig) GetDescriptor() (ChainDescriptor, error) {
	if cc.descriptor == nil {
		return nil, errors.New("descriptor is nil")
	}
	return cc.descriptor, nil
}

// Build returns a new ProvableChain instance. A chain without an engine section can
// only be used as a target.
func (cc ChainEngineConfig) Build() (*ProvableChain, error) {
	if cc.chain == nil {
		return nil, errors.New("chain is nil")
	}
	chain, err := cc.chain.Build(cc.ChainID, cc.descriptor)
	if err != nil {
		return nil, err
	}
	var engine FinalityEngine
	if cc.engine != nil {
		if engine, err = cc.engine.Build(cc.descriptor); err != nil {
			return nil, err
		}
	}
	return NewProvableChain(chain, engine), nil
}

// InitChains initializes the connections of the given chains
func InitChains(chains []*ProvableChain, homePath string, timeout time.Duration, debug bool) error {
	for _, c := range chains {
		if err := c.Init(homePath, timeout, debug); err != nil {
			return errors.Wrapf(err, "failed to initialize chain %s", c.ChainID())
		}
	}
	return nil
}
