package signer

import (
	"context"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

const (
	ecdsaDeriveDomain = "Secp256k1HDKD"
	// compactSigMagicOffset is added to the recovery code of a compact signature
	// made with a compressed key
	compactSigMagicOffset = 27 + 4
)

// EcdsaSigner signs the blake2-256 hash of a message with a secp256k1 key. The
// account id is the blake2-256 hash of the compressed public key.
type EcdsaSigner struct {
	key *secp256k1.PrivateKey
}

var _ core.Signer = (*EcdsaSigner)(nil)

// NewEcdsaSigner returns a signer for the key derived from the secret uri
func NewEcdsaSigner(suri string) (*EcdsaSigner, error) {
	uri, err := ParseSecretURI(suri)
	if err != nil {
		return nil, err
	}
	seed, err := uri.Derive(ecdsaDeriveDomain)
	if err != nil {
		return nil, err
	}
	return &EcdsaSigner{key: secp256k1.PrivKeyFromBytes(seed)}, nil
}

func (s *EcdsaSigner) Scheme() core.SignatureScheme {
	return core.SchemeEcdsa
}

func (s *EcdsaSigner) AccountID() core.AccountID {
	return core.AccountID(core.Blake2_256(s.key.PubKey().SerializeCompressed()))
}

// Sign returns the 65 bytes recoverable signature `r ++ s ++ v`
func (s *EcdsaSigner) Sign(_ context.Context, msg []byte) ([]byte, error) {
	digest := core.Blake2_256(msg)
	compact := ecdsa.SignCompact(s.key, digest[:], true)
	sig := make([]byte, 0, 65)
	sig = append(sig, compact[1:]...)
	return append(sig, compact[0]-compactSigMagicOffset), nil
}

func (s *EcdsaSigner) GetPublicKey(context.Context) ([]byte, error) {
	return s.key.PubKey().SerializeCompressed(), nil
}
