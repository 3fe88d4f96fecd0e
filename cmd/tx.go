package cmd

import (
	"strings"

	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/spf13/cobra"
)

// transactionCmd represents the tx command
func transactionCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Bridge Transaction Commands",
		Long: strings.TrimSpace(`Commands to submit bridge transactions to configured chains. 
		Most of these commands take a '[bridge]' argument. Make sure:
	1. Chains are properly configured to relay over by using the 'uly chains list' command
	2. Bridge is properly configured to relay over by using the 'uly bridges list' command`),
		RunE: noCommand,
	}

	cmd.AddCommand(
		initBridgeCmd(ctx),
	)

	return cmd
}

func initBridgeCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-bridge [bridge]",
		Short: "initialize the light client of the source chain on the target chain",
		Long: "Builds the initialization data of the source chain from its best finalized header and" +
			" submits it to the target chain. An initialized bridge is left untouched",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newBridgeRelay(ctx, args[0])
			if err != nil {
				return err
			}
			defer r.Close()
			if err := core.VerifyStorageLayout(cmd.Context(), r.dst, r.initPallet()); err != nil {
				return err
			}
			return core.InitializeBridge(cmd.Context(), r.name, r.src, r.submitter, r.encoder, r.reporter)
		},
	}
	return cmd
}
