package config

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
	"github.com/hyperledger-labs/yui-bridge-relayer/otelcore"
	"github.com/hyperledger-labs/yui-bridge-relayer/utils"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/hyperledger-labs/yui-bridge-relayer/config")

type Config struct {
	Global  GlobalConfig              `yaml:"global" json:"global"`
	Chains  []*core.ChainEngineConfig `yaml:"chains" json:"chains"`
	Bridges map[string]*BridgeConfig  `yaml:"bridges" json:"bridges"`

	// cache
	chains Chains `yaml:"-" json:"-"`

	ConfigPath string `yaml:"-" json:"-"`
}

type GlobalConfig struct {
	Timeout      string       `yaml:"timeout" json:"timeout"`
	LoggerConfig LoggerConfig `yaml:"logger" json:"logger"`
}

type LoggerConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

func DefaultConfig(configPath string) Config {
	return Config{
		Global:     newDefaultGlobalConfig(),
		Chains:     []*core.ChainEngineConfig{},
		Bridges:    map[string]*BridgeConfig{},
		ConfigPath: configPath,
	}
}

// newDefaultGlobalConfig returns a global config with defaults set
func newDefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		Timeout: "10s",
		LoggerConfig: LoggerConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "stderr",
		},
	}
}

// GetChain returns the built chain with the given id
func (c *Config) GetChain(chainID string) (*core.ProvableChain, error) {
	return c.chains.Get(chainID)
}

// AddChain adds an additional chain to the config
func (c *Config) AddChain(cc *core.ChainEngineConfig) error {
	for _, existing := range c.Chains {
		if existing.ChainID == cc.ChainID {
			return fmt.Errorf("chain with ID %s already exists in config", cc.ChainID)
		}
	}
	c.Chains = append(c.Chains, cc)
	return nil
}

// AddBridge adds an additional bridge to the config
func (c *Config) AddBridge(name string, bridge *BridgeConfig) error {
	if _, ok := c.Bridges[name]; ok {
		return fmt.Errorf("bridge %s already exists in config", name)
	}
	if c.Bridges == nil {
		c.Bridges = map[string]*BridgeConfig{}
	}
	c.Bridges[name] = bridge
	return nil
}

// GetBridge returns the bridge with the given name
func (c *Config) GetBridge(name string) (*BridgeConfig, error) {
	bridge, ok := c.Bridges[name]
	if !ok {
		return nil, core.NewConfigurationError("bridge %s is not configured", name)
	}
	return bridge, nil
}

// ChainsFromBridge takes the bridge name and returns its source and target chains
func (c *Config) ChainsFromBridge(name string) (*BridgeConfig, *core.ProvableChain, *core.ProvableChain, error) {
	bridge, err := c.GetBridge(name)
	if err != nil {
		return nil, nil, nil, err
	}
	chains, err := c.chains.Gets(bridge.Source, bridge.Target)
	if err != nil {
		return nil, nil, nil, err
	}
	src, dst := chains[bridge.Source], chains[bridge.Target]
	if src.FinalityEngine == nil {
		return nil, nil, nil, core.NewConfigurationError("bridge %s: source chain %s has no finality engine", name, bridge.Source)
	}
	return bridge, src, dst, nil
}

// InitChains resolves and builds every configured chain and bridge
func (c *Config) InitChains(registry *utils.InterfaceRegistry, homePath string, debug bool) error {
	to, err := time.ParseDuration(c.Global.Timeout)
	if err != nil {
		return errors.Wrap(err, "did you remember to run 'uly config init'")
	}

	chains := make(Chains, 0, len(c.Chains))
	for _, cc := range c.Chains {
		if err := cc.Init(registry); err != nil {
			return err
		}
		chain, err := cc.Build()
		if err != nil {
			return errors.Wrapf(err, "failed to build chain %s", cc.ChainID)
		}
		chains = append(chains, withTracing(chain))
	}
	if err := core.InitChains(chains, homePath, to, debug); err != nil {
		return err
	}
	c.chains = chains

	for name, bridge := range c.Bridges {
		if err := bridge.Init(registry); err != nil {
			return errors.Wrapf(err, "bridge %s", name)
		}
	}
	return nil
}

// withTracing wraps the chain and its engine so that every RPC round trip and proof gets a span
func withTracing(pc *core.ProvableChain) *core.ProvableChain {
	var engine core.FinalityEngine
	if pc.FinalityEngine != nil {
		engine = otelcore.NewEngine(pc.FinalityEngine, pc.ChainID(), tracer)
	}
	return core.NewProvableChain(otelcore.NewChain(pc.Chain, tracer), engine)
}

// Close releases the connections of all chains
func (c *Config) Close() {
	logger := log.GetLogger().WithModule("config")
	for _, chain := range c.chains {
		if err := chain.Close(); err != nil {
			logger.Error("failed to close chain", err, "chain_id", chain.ChainID())
		}
	}
}
