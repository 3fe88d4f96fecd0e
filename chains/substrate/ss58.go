package substrate

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

const ss58ChecksumLength = 2

var ss58Prefix = []byte("SS58PRE")

// EncodeSS58 returns the SS58 address of account under the given network prefix
func EncodeSS58(account core.AccountID, prefix uint16) string {
	var payload []byte
	switch {
	case prefix < 64:
		payload = []byte{byte(prefix)}
	default:
		first := byte((prefix&0b1111_1100)>>2) | 0b0100_0000
		second := byte(prefix>>8) | byte(prefix&0b11)<<6
		payload = []byte{first, second}
	}
	payload = append(payload, account[:]...)
	sum := ss58Checksum(payload)
	return base58.Encode(append(payload, sum[:ss58ChecksumLength]...))
}

// DecodeSS58 parses an SS58 address and returns its account and network prefix
func DecodeSS58(address string) (core.AccountID, uint16, error) {
	var account core.AccountID
	bz, err := base58.Decode(address)
	if err != nil {
		return account, 0, errors.Wrap(err, "invalid base58")
	}
	if len(bz) < 1 {
		return account, 0, errors.New("empty address")
	}
	var prefix uint16
	prefixLen := 1
	if bz[0]&0b0100_0000 != 0 {
		if len(bz) < 2 {
			return account, 0, errors.New("truncated address")
		}
		prefixLen = 2
		lower := (bz[0]<<2)&0b1111_1100 | bz[1]>>6
		upper := bz[1] & 0b0011_1111
		prefix = uint16(lower) | uint16(upper)<<8
	} else {
		prefix = uint16(bz[0])
	}
	if len(bz) != prefixLen+len(account)+ss58ChecksumLength {
		return account, 0, errors.Newf("unexpected address length: %d", len(bz))
	}
	payload := bz[:prefixLen+len(account)]
	sum := ss58Checksum(payload)
	if !bytes.Equal(sum[:ss58ChecksumLength], bz[len(payload):]) {
		return account, 0, errors.New("invalid address checksum")
	}
	copy(account[:], payload[prefixLen:])
	return account, prefix, nil
}

func ss58Checksum(payload []byte) [blake2b.Size]byte {
	return blake2b.Sum512(append(append([]byte{}, ss58Prefix...), payload...))
}
