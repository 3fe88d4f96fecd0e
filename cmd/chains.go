package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/config"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

func chainsCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chains",
		Short: "manage chain configurations",
		RunE:  noCommand,
	}

	cmd.AddCommand(
		chainsListCmd(ctx),
		chainsAddDirCmd(ctx),
		chainsTypesCmd(ctx),
	)

	return cmd
}

func chainsListCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "print out configured chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printOutput(cmd, ctx.Config.Chains)
		},
	}
	return skipChains(cmd)
}

func chainsAddDirCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:  "add-dir [dir]",
		Args: cobra.ExactArgs(1),
		Short: `Add new chains to the configuration file from a directory 
		full of chain configuration, useful for adding testnet configurations`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if err := filesAdd(ctx, args[0]); err != nil {
				return err
			}
			return overWriteConfig(ctx)
		},
	}

	return skipChains(cmd)
}

func filesAdd(ctx *config.Context, dir string) error {
	dir = filepath.Clean(dir)
	files, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		pth := filepath.Join(dir, f.Name())
		if f.IsDir() {
			fmt.Printf("directory at %s, skipping...\n", pth)
			continue
		}
		byt, err := os.ReadFile(pth)
		if err != nil {
			return fmt.Errorf("failed to read file %s, error: %v", pth, err)
		}
		var c core.ChainEngineConfig
		if err := yaml.UnmarshalStrict(byt, &c); err != nil {
			return fmt.Errorf("failed to unmarshal file %s, error: %v", pth, err)
		}
		if err := c.Init(ctx.Registry); err != nil {
			return fmt.Errorf("failed to init chain %s, error: %v", pth, err)
		}
		if err = ctx.Config.AddChain(&c); err != nil {
			return fmt.Errorf("failed to add chain %s, error: %v", pth, err)
		}
		fmt.Printf("added %s...\n", c.ChainID)
	}
	return nil
}

func chainsTypesCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "print out the chain, engine, descriptor, signer and encoder types registered by modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			types := make(map[utils.Kind][]string)
			for _, kind := range []utils.Kind{utils.KindChain, utils.KindEngine, utils.KindDescriptor, utils.KindSigner, utils.KindEncoder} {
				types[kind] = ctx.Registry.ListImplementations(kind)
			}
			return printOutput(cmd, types)
		},
	}
	return skipChains(yamlFlag(jsonFlag(cmd)))
}

// printOutput prints v as yaml, or as json with --json
func printOutput(cmd *cobra.Command, v any) error {
	jsn, _ := cmd.Flags().GetBool(flagJSON)
	yml, _ := cmd.Flags().GetBool(flagYAML)
	switch {
	case yml && jsn:
		return errors.New("can't pass both --json and --yaml, must pick one")
	case jsn:
		out, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	default: // default format is yaml
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
}
