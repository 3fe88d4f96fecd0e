package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	"github.com/spf13/cobra"
)

func configCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "manage configuration file",
		RunE:    noCommand,
	}

	cmd.AddCommand(
		configShowCmd(ctx),
		configInitCmd(ctx),
		configValidateCmd(ctx),
	)

	return cmd
}

// Command for inititalizing an empty config at the --home location
func configInitCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"i"},
		Short:   "Creates a default home directory at path defined by --home",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := ctx.Config.ConfigPath
			// If the config doesn't exist...
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				dirPath := filepath.Dir(cfgPath)
				if err := os.MkdirAll(dirPath, os.ModePerm); err != nil {
					return err
				}
				bz, err := config.MarshalYAML(config.DefaultConfig(cfgPath))
				if err != nil {
					return err
				}
				// And write the default config to that location...
				return os.WriteFile(cfgPath, bz, 0o600)
			}

			// Otherwise, the config file exists, and an error is returned...
			return fmt.Errorf("config already exists: %s", cfgPath)
		},
	}
	return skipChains(cmd)
}

// Command for printing current configuration
func configShowCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"s", "list", "l"},
		Short:   "Prints current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := ctx.Config.ConfigPath
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				return fmt.Errorf("config does not exist: %s", cfgPath)
			}

			out, err := config.MarshalYAML(*ctx.Config)
			if err != nil {
				return err
			}

			fmt.Println(string(out))
			return nil
		},
	}

	return skipChains(cmd)
}

// Command for checking that every chain and bridge of the configuration can be built
func configValidateCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "validate",
		Aliases: []string{"v"},
		Short:   "Builds every configured chain and bridge without connecting to them",
		RunE: func(cmd *cobra.Command, args []string) error {
			for name := range ctx.Config.Bridges {
				if _, _, _, err := ctx.Config.ChainsFromBridge(name); err != nil {
					return err
				}
			}
			fmt.Printf("%d chains and %d bridges are valid\n", len(ctx.Config.Chains), len(ctx.Config.Bridges))
			return nil
		},
	}
	return cmd
}

// initConfig reads in config file if set.
func initConfig(ctx *config.Context, cmd *cobra.Command) error {
	cfgPath := configFilePath()
	if _, err := os.Stat(cfgPath); err == nil {
		file, err := os.ReadFile(cfgPath)
		if err != nil {
			return errors.Wrap(err, "error reading file")
		}

		// unmarshall them into the struct
		if err = config.UnmarshalYAML(file, ctx.Config); err != nil {
			return errors.Wrap(err, "error unmarshalling config")
		}
		ctx.Config.ConfigPath = cfgPath
	} else {
		defConfig := config.DefaultConfig(cfgPath)
		ctx.Config = &defConfig
	}
	return nil
}

// overWriteConfig overwrites the config file with the current configuration
func overWriteConfig(ctx *config.Context) error {
	bz, err := config.MarshalYAML(*ctx.Config)
	if err != nil {
		return err
	}
	return os.WriteFile(ctx.Config.ConfigPath, bz, 0o600)
}
