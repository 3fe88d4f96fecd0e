package module

import (
	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	debugengine "github.com/hyperledger-labs/yui-bridge-relayer/provers/debug"
	"github.com/hyperledger-labs/yui-bridge-relayer/utils"
	"github.com/spf13/cobra"
)

type Module struct{}

var _ config.ModuleI = (*Module)(nil)

// Name returns the name of the module
func (Module) Name() string {
	return "debug.engine"
}

// RegisterInterfaces registers the fault injecting engine wrapper
func (Module) RegisterInterfaces(registry *utils.InterfaceRegistry) {
	registry.RegisterImplementation(utils.KindEngine, debugengine.EngineName, func() any { return &debugengine.EngineConfig{} })
}

// GetCmd returns the command
func (Module) GetCmd(ctx *config.Context) *cobra.Command {
	return nil
}
