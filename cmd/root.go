package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	"github.com/hyperledger-labs/yui-bridge-relayer/internal/telemetry"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
	"github.com/hyperledger-labs/yui-bridge-relayer/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homePath    string
	debugOutput bool
	defaultHome = os.ExpandEnv("$HOME/.yui-bridge-relayer")
)

const (
	appName    = "uly"
	configPath = "config/config.yaml"
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(modules ...config.ModuleI) error {
	// rootCmd represents the base command when called without any subcommands
	var rootCmd = &cobra.Command{
		Use:   appName,
		Short: "This application relays finalized headers and parachain heads between substrate chains",
	}

	cobra.EnableCommandSorting = false
	rootCmd.SilenceUsage = true

	registry := utils.NewInterfaceRegistry()
	for _, m := range modules {
		m.RegisterInterfaces(registry)
	}
	ctx := &config.Context{Modules: modules, Registry: registry, Config: &config.Config{}}

	// Register top level flags --home and --debug
	rootCmd.PersistentFlags().StringVar(&homePath, flagHome, defaultHome, "set home directory")
	rootCmd.PersistentFlags().BoolVarP(&debugOutput, flagDebug, "d", false, "debug output")
	rootCmd.PersistentFlags().Bool(flagEnableTelemetry, false, "enable the OpenTelemetry SDK configured by OTEL_* environment variables")
	if err := viper.BindPFlag(flagHome, rootCmd.PersistentFlags().Lookup(flagHome)); err != nil {
		return err
	}
	if err := viper.BindPFlag(flagDebug, rootCmd.PersistentFlags().Lookup(flagDebug)); err != nil {
		return err
	}
	if err := viper.BindPFlag(flagEnableTelemetry, rootCmd.PersistentFlags().Lookup(flagEnableTelemetry)); err != nil {
		return err
	}

	rootCmd.AddCommand(
		configCmd(ctx),
		chainsCmd(ctx),
		bridgesCmd(ctx),
		transactionCmd(ctx),
		queryCmd(ctx),
		serviceCmd(ctx),
		modulesCmd(ctx),
	)

	// Register module commands
	for _, module := range modules {
		if cmd := module.GetCmd(ctx); cmd != nil {
			rootCmd.AddCommand(cmd)
		}
	}

	var shutdownTelemetry func(context.Context) error
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		// reads `homeDir/config/config.yaml` into `ctx.Config` before each command
		if err := initConfig(ctx, cmd); err != nil {
			return err
		}
		enableTelemetry := viper.GetBool(flagEnableTelemetry)
		if enableTelemetry {
			shutdown, err := telemetry.SetupOTelSDK(cmd.Context(), telemetry.Options{
				ServiceName:    appName,
				ServiceVersion: relayerVersion(),
				Bridges:        bridgeNames(ctx.Config),
			})
			if err != nil {
				return errors.Wrap(err, "failed to set up the OpenTelemetry SDK")
			}
			shutdownTelemetry = shutdown
		}
		loggerConfig := ctx.Config.Global.LoggerConfig
		if debugOutput {
			loggerConfig.Level = "DEBUG"
		}
		if err := log.InitLogger(loggerConfig.Level, loggerConfig.Format, loggerConfig.Output, enableTelemetry); err != nil {
			return err
		}
		if cmd.Annotations[annotationSkipChains] == "true" {
			return nil
		}
		// ensure config has the built chains used for all chain operations
		return ctx.Config.InitChains(registry, homePath, debugOutput)
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, _ []string) error {
		ctx.Config.Close()
		if shutdownTelemetry != nil {
			return shutdownTelemetry(context.Background())
		}
		return nil
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(sigCtx)
}

func configFilePath() string {
	return filepath.Join(homePath, configPath)
}

// noCommand prints the help of a command group invoked without a subcommand
func noCommand(cmd *cobra.Command, args []string) error {
	cmd.Help()
	return errors.New("specified command does not exist")
}

func bridgeNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Bridges))
	for name := range cfg.Bridges {
		names = append(names, name)
	}
	return names
}
