package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	flagHome            = "home"
	flagDebug           = "debug"
	flagEnableTelemetry = "enable-telemetry"
	flagJSON            = "json"
	flagYAML            = "yaml"
	flagFile            = "file"
	flagRelayInterval   = "relay-interval"
	flagHeaders         = "headers"
	flagParachains      = "parachains"
	flagSkipLayoutCheck = "skip-layout-check"
	flagPrefix          = "prefix"
)

// annotationSkipChains marks commands that run without building the configured chains
const annotationSkipChains = "skip-chains"

func skipChains(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationSkipChains] = "true"
	return cmd
}

func fileFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().StringP(flagFile, "f", "", "fetch yaml data from specified file")
	if err := viper.BindPFlag(flagFile, cmd.Flags().Lookup(flagFile)); err != nil {
		panic(err)
	}
	return cmd
}

func yamlFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().BoolP(flagYAML, "y", false, "output using yaml")
	if err := viper.BindPFlag(flagYAML, cmd.Flags().Lookup(flagYAML)); err != nil {
		panic(err)
	}
	return cmd
}

func jsonFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().BoolP(flagJSON, "j", false, "returns the response in json format")
	if err := viper.BindPFlag(flagJSON, cmd.Flags().Lookup(flagJSON)); err != nil {
		panic(err)
	}
	return cmd
}

func relayIntervalFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().Duration(flagRelayInterval, 0, "time interval to perform relays. defaults to the bridge config, then to the source block time")
	if err := viper.BindPFlag(flagRelayInterval, cmd.Flags().Lookup(flagRelayInterval)); err != nil {
		panic(err)
	}
	return cmd
}

func loopFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("loops", pflag.ContinueOnError)
	fs.Bool(flagHeaders, true, "relay finalized headers if the bridge config enables it")
	fs.Bool(flagParachains, true, "relay parachain heads if the bridge config enables it")
	fs.Bool(flagSkipLayoutCheck, false, "skip checking that the configured pallets exist")
	return fs
}

func loopFlags(cmd *cobra.Command) *cobra.Command {
	fs := loopFlagSet()
	cmd.Flags().AddFlagSet(fs)
	if err := viper.BindPFlags(fs); err != nil {
		panic(err)
	}
	return cmd
}
