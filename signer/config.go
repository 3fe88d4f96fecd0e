package signer

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

const (
	Ed25519SignerName = "ed25519"
	EcdsaSignerName   = "ecdsa"
)

// KeyConfig locates the secret uri of a key. Exactly one of the fields is set.
type KeyConfig struct {
	SecretURI     string `json:"suri,omitempty" yaml:"suri,omitempty"`
	SecretURIFile string `json:"suri_file,omitempty" yaml:"suri-file,omitempty"`
}

func (c KeyConfig) Validate() error {
	if (c.SecretURI == "") == (c.SecretURIFile == "") {
		return core.NewConfigurationError("exactly one of suri and suri-file must be set")
	}
	return nil
}

func (c KeyConfig) secretURI() (string, error) {
	if c.SecretURI != "" {
		return c.SecretURI, nil
	}
	bz, err := os.ReadFile(c.SecretURIFile)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", c.SecretURIFile)
	}
	return strings.TrimSpace(string(bz)), nil
}

type Ed25519SignerConfig struct {
	KeyConfig `yaml:",inline"`
}

var _ core.SignerConfig = (*Ed25519SignerConfig)(nil)

func (c *Ed25519SignerConfig) Build() (core.Signer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	suri, err := c.secretURI()
	if err != nil {
		return nil, err
	}
	return NewEd25519Signer(suri)
}

type EcdsaSignerConfig struct {
	KeyConfig `yaml:",inline"`
}

var _ core.SignerConfig = (*EcdsaSignerConfig)(nil)

func (c *EcdsaSignerConfig) Build() (core.Signer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	suri, err := c.secretURI()
	if err != nil {
		return nil, err
	}
	return NewEcdsaSigner(suri)
}
