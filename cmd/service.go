package cmd

import (
	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serviceCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Relay Service Commands",
		Long:  "Commands to manage the relay service",
		RunE:  noCommand,
	}
	cmd.AddCommand(
		startCmd(ctx),
	)
	return cmd
}

func startCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start [bridge]",
		Short: "Relay finalized headers and parachain heads of a bridge until a guard stops it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newBridgeRelay(ctx, args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			if !viper.GetBool(flagSkipLayoutCheck) {
				if err := r.verifyLayout(cmd.Context()); err != nil {
					return err
				}
			}

			guards, err := r.config.BuildGuards(r.dst, r.submitter.Account())
			if err != nil {
				return err
			}
			interval := viper.GetDuration(flagRelayInterval)
			if interval == 0 {
				interval = r.config.RelayInterval
			}
			srv := core.NewRelayService(r.name, r.src, r.dst, guards, interval)
			if r.config.Headers != nil && viper.GetBool(flagHeaders) {
				srv.AddLoop("headers", core.NewHeadersRelay(r.name, r.src, r.submitter, r.encoder, r.reporter, *r.config.Headers))
			}
			if r.config.Parachains != nil && viper.GetBool(flagParachains) {
				parachains := core.NewParachainsRelay(r.name, r.src, r.submitter, r.encoder, r.reporter, *r.config.Parachains)
				defer parachains.Stop()
				srv.AddLoop("parachains", parachains)
			}
			return srv.Start(cmd.Context())
		},
	}
	return loopFlags(relayIntervalFlag(cmd))
}
