package semconv

import (
	"go.opentelemetry.io/otel/attribute"
)

const (
	// ChainIDKey represents the chain ID.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "rialto"
	ChainIDKey = attribute.Key("chain_id")

	// BridgeKey represents the name of a bridge in the config.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "rialto-to-millau"
	BridgeKey = attribute.Key("bridge")

	// EngineKey represents the name of a finality engine.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "grandpa", "mock"
	EngineKey = attribute.Key("engine")

	// ParaIDKey represents a parachain id at its relay chain.
	//
	// Type: int
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: 2000
	ParaIDKey = attribute.Key("para_id")

	// BlockNumberKey represents a block number.
	//
	// Type: int
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: 123
	BlockNumberKey = attribute.Key("block_number")

	// BlockHashKey represents a block hash.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "0xe143f23803ac50e8f6f8e62695d1ce9e4e1d68aa36c1cd2cfd15340213f3423e"
	BlockHashKey = attribute.Key("block_hash")

	// TxHashKey represents the transaction hash.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "0x8a9f1ab5b4d35a9c4d9ed8e1d0b2a4c6e0f2e4a6c8e0f2a4c6e8f0a2c4e6a8c0"
	TxHashKey = attribute.Key("tx_hash")

	// NonceKey represents the nonce of a transaction.
	//
	// Type: int
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: 7
	NonceKey = attribute.Key("nonce")

	// OutcomeKey represents the outcome of a submission.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "submitted", "already_known", "failed"
	OutcomeKey = attribute.Key("outcome")

	// GuardKey represents the name of a guard.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "balance", "spec_version"
	GuardKey = attribute.Key("guard")

	// DirectionKey represents the direction.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "src", "dst"
	DirectionKey = attribute.Key("direction")

	// PackageKey represents the go package implementing a traced call.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "github.com/hyperledger-labs/yui-bridge-relayer/provers/grandpa"
	PackageKey = attribute.Key("package")
)

// AttributeGroup prefixes the given key to all attributes.
//
// For example, if the key is "foo" and the key of an attribute is "bar", the new key will be "foo.bar".
func AttributeGroup(key string, attributes ...attribute.KeyValue) []attribute.KeyValue {
	newAttrs := make([]attribute.KeyValue, 0, len(attributes))
	for _, attr := range attributes {
		newAttrs = append(newAttrs, attribute.KeyValue{
			Key:   attribute.Key(key + "." + string(attr.Key)),
			Value: attr.Value,
		})
	}
	return newAttrs
}
