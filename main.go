package main

import (
	"log"

	debugchain "github.com/hyperledger-labs/yui-bridge-relayer/chains/debug/module"
	millau "github.com/hyperledger-labs/yui-bridge-relayer/chains/millau/module"
	rialto "github.com/hyperledger-labs/yui-bridge-relayer/chains/rialto/module"
	substrate "github.com/hyperledger-labs/yui-bridge-relayer/chains/substrate/module"
	testchain "github.com/hyperledger-labs/yui-bridge-relayer/chains/testchain/module"
	westend "github.com/hyperledger-labs/yui-bridge-relayer/chains/westend/module"
	"github.com/hyperledger-labs/yui-bridge-relayer/cmd"
	debugengine "github.com/hyperledger-labs/yui-bridge-relayer/provers/debug/module"
	grandpa "github.com/hyperledger-labs/yui-bridge-relayer/provers/grandpa/module"
	mock "github.com/hyperledger-labs/yui-bridge-relayer/provers/mock/module"
	signer "github.com/hyperledger-labs/yui-bridge-relayer/signer/module"
)

func main() {
	if err := cmd.Execute(
		substrate.Module{},
		debugchain.Module{},
		westend.Module{},
		millau.Module{},
		rialto.Module{},
		testchain.Module{},
		grandpa.Module{},
		mock.Module{},
		debugengine.Module{},
		signer.Module{},
	); err != nil {
		log.Fatal(err)
	}
}
