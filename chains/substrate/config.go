package substrate

import (
	"net/url"

	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

const ChainName = "substrate"

// ChainConfig is the connection config of a substrate node
type ChainConfig struct {
	RPCAddr string `json:"rpc_addr" yaml:"rpc-addr"`
	// SS58Prefix is the network prefix of account addresses passed to the node
	SS58Prefix uint16 `json:"ss58_prefix" yaml:"ss58-prefix"`
	// RawAddress is set for runtimes whose extrinsics carry a bare account id
	RawAddress bool `json:"raw_address" yaml:"raw-address"`
}

var _ core.ChainConfig = (*ChainConfig)(nil)

func (c *ChainConfig) Build(chainID string, descriptor core.ChainDescriptor) (core.Chain, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return NewChain(*c, chainID, descriptor), nil
}

func (c *ChainConfig) Validate() error {
	if c.RPCAddr == "" {
		return core.NewConfigurationError("rpc-addr is empty")
	}
	u, err := url.Parse(c.RPCAddr)
	if err != nil {
		return core.NewConfigurationError("invalid rpc-addr %q: %v", c.RPCAddr, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return core.NewConfigurationError("rpc-addr must be a websocket url: %s", c.RPCAddr)
	}
	if c.SS58Prefix >= 1<<14 {
		return core.NewConfigurationError("ss58-prefix out of range: %d", c.SS58Prefix)
	}
	return nil
}
