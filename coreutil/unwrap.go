package coreutil

import (
	"fmt"

	"github.com/hyperledger-labs/yui-bridge-relayer/chains/debug"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/otelcore"
	debugengine "github.com/hyperledger-labs/yui-bridge-relayer/provers/debug"
)

// UnwrapChain finds the first struct value in the Chain field that matches the specified
// type argument.
//
// In the following example, UnwrapChain returns a *substrate.Chain value in the Chain field:
//
//	chain, err := coreutil.UnwrapChain[*substrate.Chain](provableChain)
func UnwrapChain[C core.Chain](c core.Chain) (C, error) {
	chain := c
	for {
		switch unwrapped := chain.(type) {
		case *core.ProvableChain:
			chain = unwrapped.Chain
		case *otelcore.Chain:
			chain = unwrapped.Chain
		case C:
			return unwrapped, nil
		case *debug.Chain:
			chain = unwrapped.OriginChain
		default:
			var zero C
			return zero, fmt.Errorf("failed to unwrap chain: expected=%T, actual=%T", zero, unwrapped)
		}
	}
}

// UnwrapEngine finds the first struct value in the FinalityEngine field that matches the
// specified type argument.
//
// In the following example, UnwrapEngine returns a *grandpa.Engine value in the FinalityEngine field:
//
//	engine, err := coreutil.UnwrapEngine[*grandpa.Engine](provableChain)
func UnwrapEngine[E core.FinalityEngine](e core.FinalityEngine) (E, error) {
	engine := e
	for {
		switch unwrapped := engine.(type) {
		case *core.ProvableChain:
			engine = unwrapped.FinalityEngine
		case *otelcore.Engine:
			engine = unwrapped.FinalityEngine
		case E:
			return unwrapped, nil
		case *debugengine.Engine:
			engine = unwrapped.OriginEngine()
		default:
			var zero E
			return zero, fmt.Errorf("failed to unwrap engine: expected=%T, actual=%T", zero, unwrapped)
		}
	}
}

// SignSchemeOf returns the extrinsic format of the given chain, looking through wrappers
// for a chain that provides one
func SignSchemeOf(c core.Chain) (core.SignScheme, error) {
	type schemeProvider interface {
		core.Chain
		SignScheme() core.SignScheme
	}
	chain, err := UnwrapChain[schemeProvider](c)
	if err != nil {
		return nil, err
	}
	return chain.SignScheme(), nil
}
