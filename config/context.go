package config

import "github.com/hyperledger-labs/yui-bridge-relayer/utils"

type Context struct {
	Modules  []ModuleI
	Registry *utils.InterfaceRegistry
	Config   *Config
}
