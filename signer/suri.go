package signer

import (
	"crypto/sha512"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
)

// DevPhrase is the mnemonic of the well known development accounts
const DevPhrase = "bottom drive obey lake curtain smoke basket hold race lonely fit walk"

const (
	seedLength       = 32
	pbkdf2Iterations = 2048
)

// SecretURI is a parsed secret key uri of the form `<phrase or 0xseed>[//hard...][///password]`
type SecretURI struct {
	Phrase    string
	HexSeed   []byte
	Junctions [][seedLength]byte
	Password  string
}

// ParseSecretURI parses s. An empty phrase stands for DevPhrase, so "//Alice" is the dev account Alice.
func ParseSecretURI(s string) (*SecretURI, error) {
	s = strings.TrimSpace(s)
	var uri SecretURI
	if i := strings.Index(s, "///"); i >= 0 {
		uri.Password = s[i+3:]
		s = s[:i]
	}
	phrase := s
	if i := strings.Index(s, "/"); i >= 0 {
		phrase = s[:i]
		path := s[i:]
		for len(path) > 0 {
			if !strings.HasPrefix(path, "//") {
				return nil, errors.Newf("soft derivation is not supported: %q", path)
			}
			path = path[2:]
			end := strings.Index(path, "/")
			if end < 0 {
				end = len(path)
			}
			code := path[:end]
			if code == "" {
				return nil, errors.New("empty derivation junction")
			}
			uri.Junctions = append(uri.Junctions, chainCode(code))
			path = path[end:]
		}
	}
	phrase = strings.TrimSpace(phrase)
	switch {
	case phrase == "":
		uri.Phrase = DevPhrase
	case strings.HasPrefix(phrase, "0x"):
		seed, err := core.DecodeHex(phrase)
		if err != nil {
			return nil, err
		}
		if len(seed) != seedLength {
			return nil, errors.Newf("seed must be %d bytes: got %d", seedLength, len(seed))
		}
		uri.HexSeed = seed
	default:
		uri.Phrase = strings.Join(strings.Fields(phrase), " ")
		if !bip39.IsMnemonicValid(uri.Phrase) {
			return nil, errors.New("invalid mnemonic")
		}
	}
	return &uri, nil
}

// chainCode returns the chain code of a junction. Numeric junctions are u64 and
// the rest are SCALE encoded strings.
func chainCode(code string) [seedLength]byte {
	var encoded []byte
	if n, err := strconv.ParseUint(code, 10, 64); err == nil {
		encoded = make([]byte, 8)
		for i := range encoded {
			encoded[i] = byte(n >> (8 * i))
		}
	} else {
		encoded = core.EncodeBytes([]byte(code))
	}
	var cc [seedLength]byte
	if len(encoded) > seedLength {
		cc = [seedLength]byte(core.Blake2_256(encoded))
	} else {
		copy(cc[:], encoded)
	}
	return cc
}

// MiniSecret returns the seed of the root key before any derivation
func (u *SecretURI) MiniSecret() ([]byte, error) {
	if u.HexSeed != nil {
		return u.HexSeed, nil
	}
	entropy, err := bip39.EntropyFromMnemonic(u.Phrase)
	if err != nil {
		return nil, errors.Wrap(err, "invalid mnemonic")
	}
	seed := pbkdf2.Key(entropy, []byte("mnemonic"+u.Password), pbkdf2Iterations, 64, sha512.New)
	return seed[:seedLength], nil
}

// Derive applies the hard junctions of the uri with the derivation domain of a scheme
func (u *SecretURI) Derive(domain string) ([]byte, error) {
	seed, err := u.MiniSecret()
	if err != nil {
		return nil, err
	}
	for _, cc := range u.Junctions {
		var data []byte
		data = append(data, core.EncodeBytes([]byte(domain))...)
		data = append(data, seed...)
		data = append(data, cc[:]...)
		h := core.Blake2_256(data)
		seed = h[:]
	}
	return seed, nil
}
