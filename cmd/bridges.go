package cmd

import (
	"fmt"
	"os"

	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

func bridgesCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridges",
		Short: "manage bridge configurations",
		Long: `
A bridge relays the finalized headers of a source chain, and optionally the heads of its parachains,
to the light client pallets of a target chain, signed with one relayer account of the target chain`,
		RunE: noCommand,
	}

	cmd.AddCommand(
		bridgesListCmd(ctx),
		bridgesAddCmd(ctx),
	)

	return cmd
}

func bridgesListCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "print out configured bridges",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printOutput(cmd, ctx.Config.Bridges)
		},
	}
	return skipChains(cmd)
}

func bridgesAddCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [bridge-name]",
		Short: "add a bridge to the list of bridges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := cmd.Flags().GetString(flagFile)
			if err != nil {
				return err
			}
			if err := fileInputBridgeAdd(ctx, file, args[0]); err != nil {
				return err
			}
			return overWriteConfig(ctx)
		},
	}
	cmd = fileFlag(cmd)
	cmd.MarkFlagRequired(flagFile)
	return skipChains(cmd)
}

func fileInputBridgeAdd(ctx *config.Context, file, name string) error {
	byt, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	bridge := &config.BridgeConfig{}
	if err := yaml.UnmarshalStrict(byt, bridge); err != nil {
		return fmt.Errorf("failed to unmarshal file %s, error: %v", file, err)
	}
	if err := bridge.Init(ctx.Registry); err != nil {
		return err
	}
	return ctx.Config.AddBridge(name, bridge)
}
