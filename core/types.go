package core

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/blake2b"
)

const HashLength = 32

// BlockNumber is wide enough for both u32 and u64 numbered chains.
// The on-chain width is given by ChainDescriptor.BlockNumberSize.
type BlockNumber uint64

// Hash is a 256-bit block, state or extrinsic hash
type Hash [HashLength]byte

// AccountID is a 32-byte account identifier
type AccountID [32]byte

// Nonce is the per-account transaction index
type Nonce uint64

// Weight is the computational cost of a dispatch
type Weight uint64

func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// HashFromHex parses a 0x-prefixed (or bare) hex string into a Hash
func HashFromHex(s string) (Hash, error) {
	var h Hash
	bz, err := DecodeHex(s)
	if err != nil {
		return h, err
	}
	if len(bz) != HashLength {
		return h, errors.Newf("invalid hash length: expected=%d, actual=%d", HashLength, len(bz))
	}
	copy(h[:], bz)
	return h, nil
}

// Blake2_256 returns the 256-bit BLAKE2b digest of data
func Blake2_256(data []byte) Hash {
	return blake2b.Sum256(data)
}

func (a AccountID) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a AccountID) String() string {
	return a.Hex()
}

// DecodeHex decodes a hex string with an optional 0x prefix
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	bz, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex string: %q", s)
	}
	return bz, nil
}

// EncodeHex encodes bytes as a 0x-prefixed hex string
func EncodeHex(bz []byte) string {
	return "0x" + hex.EncodeToString(bz)
}

// HeaderID identifies a header unambiguously. IDs are ordered by number first.
type HeaderID struct {
	Number BlockNumber `json:"number" yaml:"number"`
	Hash   Hash        `json:"hash" yaml:"hash"`
}

func (id HeaderID) String() string {
	return fmt.Sprintf("#%d(%s)", id.Number, id.Hash.Hex())
}

// Compare orders header ids by number, then by hash bytes for a total order
func (id HeaderID) Compare(other HeaderID) int {
	switch {
	case id.Number < other.Number:
		return -1
	case id.Number > other.Number:
		return 1
	}
	for i := range id.Hash {
		if id.Hash[i] != other.Hash[i] {
			if id.Hash[i] < other.Hash[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Header is a substrate block header. The digest is kept in its SCALE encoding
// because the relayer never interprets digest items.
type Header struct {
	ParentHash     Hash
	Number         BlockNumber
	StateRoot      Hash
	ExtrinsicsRoot Hash
	Digest         []byte
}

// Encode returns the SCALE encoding of the header
func (h *Header) Encode() []byte {
	buf := append(h.ParentHash[:], EncodeCompact(uint64(h.Number))...)
	buf = append(buf, h.StateRoot[:]...)
	buf = append(buf, h.ExtrinsicsRoot[:]...)
	if len(h.Digest) == 0 {
		return append(buf, EncodeCompact(0)...)
	}
	return append(buf, h.Digest...)
}

// Hash returns the blake2-256 hash of the encoded header
func (h *Header) Hash() Hash {
	return Blake2_256(h.Encode())
}

func (h *Header) ID() HeaderID {
	return HeaderID{Number: h.Number, Hash: h.Hash()}
}

// DecodeHeader decodes a SCALE encoded header
func DecodeHeader(bz []byte) (*Header, error) {
	r := NewScaleReader(bz)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, errors.Newf("trailing %d bytes after header", r.Remaining())
	}
	return h, nil
}

// DecodeHeaderPrefix decodes the header at the start of bz and returns the number of bytes consumed
func DecodeHeaderPrefix(bz []byte) (*Header, int, error) {
	r := NewScaleReader(bz)
	h, err := readHeader(r)
	if err != nil {
		return nil, 0, err
	}
	return h, r.Offset(), nil
}

func readHeader(r *ScaleReader) (*Header, error) {
	var h Header
	if err := r.Decode(&h.ParentHash); err != nil {
		return nil, errors.Wrap(err, "parent_hash")
	}
	number, err := r.Compact()
	if err != nil {
		return nil, errors.Wrap(err, "number")
	}
	h.Number = BlockNumber(number)
	if err := r.Decode(&h.StateRoot); err != nil {
		return nil, errors.Wrap(err, "state_root")
	}
	if err := r.Decode(&h.ExtrinsicsRoot); err != nil {
		return nil, errors.Wrap(err, "extrinsics_root")
	}
	digest, err := r.digest()
	if err != nil {
		return nil, errors.Wrap(err, "digest")
	}
	h.Digest = digest
	return &h, nil
}

// RuntimeVersion is the subset of the runtime version the relayer signs against
type RuntimeVersion struct {
	SpecName           string `json:"specName" yaml:"spec-name"`
	SpecVersion        uint32 `json:"specVersion" yaml:"spec-version"`
	TransactionVersion uint32 `json:"transactionVersion" yaml:"transaction-version"`
}
