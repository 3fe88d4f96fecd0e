package core

import (
	"context"
)

type SignerConfig interface {
	Build() (Signer, error)
	Validate() error
}

// Signer holds the key of the relayer account on a target chain
type Signer interface {
	Scheme() SignatureScheme
	AccountID() AccountID
	Sign(ctx context.Context, msg []byte) (signature []byte, err error)
	GetPublicKey(ctx context.Context) ([]byte, error)
}
