package signer

import (
	"context"
	"crypto/ed25519"

	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

const ed25519DeriveDomain = "Ed25519HDKD"

// Ed25519Signer signs with an ed25519 key. The account id is the public key.
type Ed25519Signer struct {
	key ed25519.PrivateKey
}

var _ core.Signer = (*Ed25519Signer)(nil)

// NewEd25519Signer returns a signer for the key derived from the secret uri
func NewEd25519Signer(suri string) (*Ed25519Signer, error) {
	uri, err := ParseSecretURI(suri)
	if err != nil {
		return nil, err
	}
	seed, err := uri.Derive(ed25519DeriveDomain)
	if err != nil {
		return nil, err
	}
	return &Ed25519Signer{key: ed25519.NewKeyFromSeed(seed)}, nil
}

func (s *Ed25519Signer) Scheme() core.SignatureScheme {
	return core.SchemeEd25519
}

func (s *Ed25519Signer) AccountID() core.AccountID {
	var account core.AccountID
	copy(account[:], s.key.Public().(ed25519.PublicKey))
	return account
}

func (s *Ed25519Signer) Sign(_ context.Context, msg []byte) ([]byte, error) {
	return ed25519.Sign(s.key, msg), nil
}

func (s *Ed25519Signer) GetPublicKey(context.Context) ([]byte, error) {
	return s.key.Public().(ed25519.PublicKey), nil
}
