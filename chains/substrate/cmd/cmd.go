package cmd

import (
	"fmt"

	"github.com/hyperledger-labs/yui-bridge-relayer/chains/substrate"
	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/spf13/cobra"
)

const flagPrefix = "prefix"

func SubstrateCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "substrate",
		Short: "substrate account utilities",
	}

	cmd.AddCommand(
		addressCmd(),
		accountCmd(),
	)

	return cmd
}

func addressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address [account-id-hex]",
		Short: "print the SS58 address of an account id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := core.DecodeHex(args[0])
			if err != nil {
				return err
			}
			var account core.AccountID
			if len(bz) != len(account) {
				return fmt.Errorf("account id must be %d bytes: got %d", len(account), len(bz))
			}
			copy(account[:], bz)
			prefix, err := cmd.Flags().GetUint16(flagPrefix)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), substrate.EncodeSS58(account, prefix))
			return nil
		},
	}
	cmd.Flags().Uint16(flagPrefix, 42, "SS58 network prefix")
	return cmd
}

func accountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "account [ss58-address]",
		Short: "print the account id and network prefix of an SS58 address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, prefix, err := substrate.DecodeSS58(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", account.Hex(), prefix)
			return nil
		},
	}
}
