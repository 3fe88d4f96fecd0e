package core

import (
	"time"

	"cosmossdk.io/math"
	"github.com/cockroachdb/errors"
)

// SignatureScheme names the signature algorithm of a chain's transactions
type SignatureScheme string

const (
	SchemeEd25519 SignatureScheme = "ed25519"
	SchemeSr25519 SignatureScheme = "sr25519"
	SchemeEcdsa   SignatureScheme = "ecdsa"
)

// ChainDescriptor exposes the static facts about one chain
type ChainDescriptor interface {
	// Name returns the human readable chain name, e.g. "Westend"
	Name() string
	// TokenID returns the identifier of the chain token at exchange rate services, if any
	TokenID() string
	// BlockNumberSize returns the encoded width of a block number, 4 or 8
	BlockNumberSize() int
	SignatureScheme() SignatureScheme
	AverageBlockInterval() time.Duration
	MaxExtrinsicSize() uint32
	MaxExtrinsicWeight() Weight
	// StorageProofOverhead is the approximate size of a storage proof of a single value
	StorageProofOverhead() uint32
	WeightToFee(weight Weight) math.Uint
	// BestFinalizedHeaderIDMethod is the runtime api deployed at bridged chains which
	// returns the best finalized header of this chain
	BestFinalizedHeaderIDMethod() string
	// AcceptsTransactions is false for chains whose calls are never submitted by the relayer
	AcceptsTransactions() bool
	// RuntimeVersion returns the runtime version the relayer was built against
	RuntimeVersion() RuntimeVersion
}

// Descriptor is the value implementation of ChainDescriptor. It is immutable once validated.
type Descriptor struct {
	ChainName           string
	Token               string
	NumberSize          int
	Scheme              SignatureScheme
	BlockInterval       time.Duration
	ExtrinsicSize       uint32
	ExtrinsicWeight     Weight
	ProofOverhead       uint32
	FeePolynomial       WeightToFeePolynomial
	BestFinalizedMethod string
	NotDispatchable     bool
	Version             RuntimeVersion
	SessionLength       BlockNumber
}

var _ ChainDescriptor = (*Descriptor)(nil)

// Validate catches misconfigured descriptors at construction time
func (d *Descriptor) Validate() error {
	if d.ChainName == "" {
		return NewConfigurationError("descriptor: empty chain name")
	}
	if d.NumberSize != 4 && d.NumberSize != 8 {
		return NewConfigurationError("descriptor %s: block number size must be 4 or 8: %d", d.ChainName, d.NumberSize)
	}
	switch d.Scheme {
	case SchemeEd25519, SchemeSr25519, SchemeEcdsa:
	default:
		return NewConfigurationError("descriptor %s: unknown signature scheme %q", d.ChainName, d.Scheme)
	}
	if d.BlockInterval <= 0 {
		return NewConfigurationError("descriptor %s: block interval must be positive: %s", d.ChainName, d.BlockInterval)
	}
	if err := d.FeePolynomial.Validate(); err != nil {
		return errors.Mark(errors.Wrapf(err, "descriptor %s", d.ChainName), ErrConfiguration)
	}
	return nil
}

// MustValidate panics on an invalid descriptor. It is meant for package-level descriptors.
func (d *Descriptor) MustValidate() *Descriptor {
	if err := d.Validate(); err != nil {
		panic(err)
	}
	return d
}

func (d *Descriptor) Name() string                        { return d.ChainName }
func (d *Descriptor) TokenID() string                     { return d.Token }
func (d *Descriptor) BlockNumberSize() int                { return d.NumberSize }
func (d *Descriptor) SignatureScheme() SignatureScheme    { return d.Scheme }
func (d *Descriptor) AverageBlockInterval() time.Duration { return d.BlockInterval }
func (d *Descriptor) MaxExtrinsicSize() uint32            { return d.ExtrinsicSize }
func (d *Descriptor) MaxExtrinsicWeight() Weight          { return d.ExtrinsicWeight }
func (d *Descriptor) StorageProofOverhead() uint32        { return d.ProofOverhead }
func (d *Descriptor) BestFinalizedHeaderIDMethod() string { return d.BestFinalizedMethod }
func (d *Descriptor) AcceptsTransactions() bool           { return !d.NotDispatchable }
func (d *Descriptor) RuntimeVersion() RuntimeVersion      { return d.Version }

func (d *Descriptor) WeightToFee(weight Weight) math.Uint {
	return d.FeePolynomial.Fee(weight)
}
