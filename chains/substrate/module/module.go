package module

import (
	"github.com/hyperledger-labs/yui-bridge-relayer/chains/substrate"
	"github.com/hyperledger-labs/yui-bridge-relayer/chains/substrate/cmd"
	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	"github.com/hyperledger-labs/yui-bridge-relayer/utils"
	"github.com/spf13/cobra"
)

type Module struct{}

var _ config.ModuleI = (*Module)(nil)

// Name returns the name of the module
func (Module) Name() string {
	return "substrate"
}

// RegisterInterfaces registers the chain config and the call encoder config
func (Module) RegisterInterfaces(registry *utils.InterfaceRegistry) {
	registry.RegisterImplementation(utils.KindChain, substrate.ChainName, func() any { return &substrate.ChainConfig{} })
	registry.RegisterImplementation(utils.KindEncoder, substrate.EncoderName, func() any { return &substrate.CallEncoderConfig{} })
}

// GetCmd returns the command
func (Module) GetCmd(ctx *config.Context) *cobra.Command {
	return cmd.SubstrateCmd(ctx)
}
