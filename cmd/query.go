package cmd

import (
	"fmt"
	"strconv"

	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/spf13/cobra"
)

// queryCmd represents the chain command
func queryCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Bridge Query Commands",
		Long:  "Commands to query the state of bridges on configured chains.",
		RunE:  noCommand,
	}

	cmd.AddCommand(
		queryBestFinalizedCmd(ctx),
		queryParaHeadCmd(ctx),
		queryBalanceCmd(ctx),
	)

	return cmd
}

type bestFinalizedResult struct {
	Source    *core.HeaderID `json:"source" yaml:"source"`
	AtTarget  *core.HeaderID `json:"at_target" yaml:"at-target"`
	Remaining uint64         `json:"remaining" yaml:"remaining"`
}

func queryBestFinalizedCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "best-finalized [bridge]",
		Short: "Query the best finalized header of the source chain and the one known to the target chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, src, dst, err := ctx.Config.ChainsFromBridge(args[0])
			if err != nil {
				return err
			}
			source, err := src.LatestFinalized(cmd.Context())
			if err != nil {
				return err
			}
			atTarget, err := core.BestFinalizedAtTarget(cmd.Context(), dst, src.Descriptor())
			if err != nil {
				return err
			}
			res := bestFinalizedResult{Source: source, AtTarget: atTarget, Remaining: remainingHeaders(source, atTarget)}
			return printOutput(cmd, res)
		},
	}
	return yamlFlag(jsonFlag(cmd))
}

// remainingHeaders is the number of source headers the target has not finalized yet
func remainingHeaders(source, atTarget *core.HeaderID) uint64 {
	switch {
	case source == nil:
		return 0
	case atTarget == nil:
		return uint64(source.Number)
	case source.Number > atTarget.Number:
		return uint64(source.Number - atTarget.Number)
	default:
		return 0
	}
}

type paraHeadResult struct {
	ParaID   core.ParaID `json:"para_id" yaml:"para-id"`
	AtTarget string      `json:"at_target" yaml:"at-target"`
	AtSource string      `json:"at_source" yaml:"at-source"`
}

func queryParaHeadCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "para-head [bridge] [para-id]",
		Short: "Query the head of a parachain at the source relay chain and the best one known to the target chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bridge, src, dst, err := ctx.Config.ChainsFromBridge(args[0])
			if err != nil {
				return err
			}
			if bridge.Parachains == nil {
				return core.NewConfigurationError("bridge %s does not relay parachains", args[0])
			}
			id, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid para-id %q: %v", args[1], err)
			}
			paraID := core.ParaID(id)

			atTarget, err := core.BestParaHeadAtTarget(cmd.Context(), dst, bridge.Parachains.BridgeParachainsPallet, paraID)
			if err != nil {
				return err
			}
			finalized, err := src.FinalizedHead(cmd.Context())
			if err != nil {
				return err
			}
			head, err := core.ParaHeadAtSource(cmd.Context(), src, bridge.Parachains.ParasPallet, paraID, finalized)
			if err != nil {
				return err
			}
			res := paraHeadResult{ParaID: paraID}
			if atTarget != nil {
				res.AtTarget = atTarget.String()
			}
			if head != nil {
				res.AtSource = core.Blake2_256(head).Hex()
			}
			return printOutput(cmd, res)
		},
	}
	return yamlFlag(jsonFlag(cmd))
}

func queryBalanceCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance [bridge]",
		Short: "Query the free balance of the relayer account on the target chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bridge, _, dst, err := ctx.Config.ChainsFromBridge(args[0])
			if err != nil {
				return err
			}
			signer, err := bridge.BuildSigner()
			if err != nil {
				return err
			}
			balance, err := core.FreeBalance(cmd.Context(), dst, signer.AccountID())
			if err != nil {
				return err
			}
			fmt.Printf("%s%s\n", balance.String(), dst.Descriptor().TokenID())
			return nil
		},
	}
	return cmd
}
