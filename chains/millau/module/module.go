package module

import (
	"github.com/hyperledger-labs/yui-bridge-relayer/chains/millau"
	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	"github.com/hyperledger-labs/yui-bridge-relayer/utils"
	"github.com/spf13/cobra"
)

type Module struct{}

var _ config.ModuleI = (*Module)(nil)

// Name returns the name of the module
func (Module) Name() string {
	return "millau"
}

// RegisterInterfaces registers the Millau descriptor
func (Module) RegisterInterfaces(registry *utils.InterfaceRegistry) {
	registry.RegisterImplementation(utils.KindDescriptor, millau.DescriptorName, func() any { return millau.Descriptor })
}

// GetCmd returns the command
func (Module) GetCmd(ctx *config.Context) *cobra.Command {
	return nil
}
