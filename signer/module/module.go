package module

import (
	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	"github.com/hyperledger-labs/yui-bridge-relayer/signer"
	"github.com/hyperledger-labs/yui-bridge-relayer/utils"
	"github.com/spf13/cobra"
)

type Module struct{}

var _ config.ModuleI = (*Module)(nil)

// Name returns the name of the module
func (Module) Name() string {
	return "signer"
}

// RegisterInterfaces registers the signer config types
func (Module) RegisterInterfaces(registry *utils.InterfaceRegistry) {
	registry.RegisterImplementation(utils.KindSigner, signer.Ed25519SignerName, func() any { return &signer.Ed25519SignerConfig{} })
	registry.RegisterImplementation(utils.KindSigner, signer.EcdsaSignerName, func() any { return &signer.EcdsaSignerConfig{} })
}

// GetCmd returns the command
func (Module) GetCmd(ctx *config.Context) *cobra.Command {
	return nil
}
