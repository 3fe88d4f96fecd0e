// Package testchain describes a chain without any real runtime behind it. Tests and
// local setups driven by the mock engine use it.
package testchain

import (
	"time"

	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

const (
	DescriptorName = "testchain"

	BestFinalizedHeaderMethod = "TestMethod"
)

var Descriptor = (&core.Descriptor{
	ChainName:           "Test",
	NumberSize:          4,
	Scheme:              core.SchemeEd25519,
	BlockInterval:       time.Second,
	ExtrinsicSize:       1 << 20,
	ExtrinsicWeight:     1 << 40,
	FeePolynomial:       core.IdentityFee(),
	BestFinalizedMethod: BestFinalizedHeaderMethod,
	Version: core.RuntimeVersion{
		SpecName:           "test",
		SpecVersion:        1,
		TransactionVersion: 1,
	},
}).MustValidate()
