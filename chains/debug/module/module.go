package module

import (
	"github.com/hyperledger-labs/yui-bridge-relayer/chains/debug"
	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	"github.com/hyperledger-labs/yui-bridge-relayer/utils"
	"github.com/spf13/cobra"
)

type Module struct{}

var _ config.ModuleI = (*Module)(nil)

// Name returns the name of the module
func (Module) Name() string {
	return "debug.chain"
}

// RegisterInterfaces registers the fault injecting chain wrapper
func (Module) RegisterInterfaces(registry *utils.InterfaceRegistry) {
	registry.RegisterImplementation(utils.KindChain, debug.ChainName, func() any { return &debug.ChainConfig{} })
}

// GetCmd returns the command
func (Module) GetCmd(ctx *config.Context) *cobra.Command {
	return nil
}
