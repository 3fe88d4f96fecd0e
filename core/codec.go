package core

import (
	"bytes"
	"io"
	"math/big"

	"github.com/ChainSafe/gossamer/pkg/scale"
	"github.com/cockroachdb/errors"
)

// digest item variants, cf. sp_runtime::generic::DigestItem
const (
	digestItemOther                     = 0
	digestItemChangesTrieRoot           = 2
	digestItemConsensus                 = 4
	digestItemSeal                      = 5
	digestItemPreRuntime                = 6
	digestItemRuntimeEnvironmentUpdated = 8
)

func mustMarshal(v any) []byte {
	bz, err := scale.Marshal(v)
	if err != nil {
		panic(err)
	}
	return bz
}

// EncodeCompact returns the SCALE compact encoding of n
func EncodeCompact(n uint64) []byte {
	return mustMarshal(uint(n))
}

// EncodeBytes returns the SCALE encoding of a byte vector (compact length prefix)
func EncodeBytes(bz []byte) []byte {
	return mustMarshal(bz)
}

// EncodeBlockNumber encodes a block number with the given byte width (4 or 8)
func EncodeBlockNumber(n BlockNumber, size int) []byte {
	if size == 8 {
		return mustMarshal(uint64(n))
	}
	return mustMarshal(uint32(n))
}

// DecodeOptionalHeaderID decodes `Option<(BlockNumber, Hash)>` as returned by the
// best_finalized runtime APIs of bridge pallets.
func DecodeOptionalHeaderID(bz []byte, numberSize int) (*HeaderID, error) {
	r := NewScaleReader(bz)
	var some uint8
	if err := r.Decode(&some); err != nil {
		return nil, err
	}
	switch some {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, errors.Newf("invalid option prefix: %d", some)
	}
	number, err := r.BlockNumber(numberSize)
	if err != nil {
		return nil, err
	}
	id := HeaderID{Number: number}
	if err := r.Decode(&id.Hash); err != nil {
		return nil, err
	}
	return &id, nil
}

// ScaleReader decodes a SCALE byte stream with the scale package while keeping the
// byte positions, which lets callers slice out raw encodings of nested values.
type ScaleReader struct {
	bz []byte
	r  *bytes.Reader
	d  *scale.Decoder
}

func NewScaleReader(bz []byte) *ScaleReader {
	r := bytes.NewReader(bz)
	return &ScaleReader{bz: bz, r: r, d: scale.NewDecoder(exactReader{r})}
}

// exactReader fails a read that the input cannot fill. The decoder treats a short
// read as success.
type exactReader struct {
	*bytes.Reader
}

func (r exactReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.Len() < len(p) {
		return 0, io.ErrUnexpectedEOF
	}
	return r.Reader.Read(p)
}

// Remaining is the number of undecoded bytes
func (r *ScaleReader) Remaining() int {
	return r.r.Len()
}

// Offset is the number of decoded bytes
func (r *ScaleReader) Offset() int {
	return len(r.bz) - r.r.Len()
}

// Rest returns the undecoded bytes without consuming them
func (r *ScaleReader) Rest() []byte {
	return r.bz[r.Offset():]
}

// Decode decodes the next value into dst, a pointer
func (r *ScaleReader) Decode(dst any) error {
	if err := r.d.Decode(dst); err != nil {
		return errors.Wrapf(err, "failed to decode %T at offset %d", dst, r.Offset())
	}
	return nil
}

// Take returns the next n bytes as a subslice of the input
func (r *ScaleReader) Take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, errors.Newf("unexpected end of input: want=%d, remaining=%d", n, r.Remaining())
	}
	start := r.Offset()
	if _, err := r.r.Seek(int64(n), io.SeekCurrent); err != nil {
		return nil, err
	}
	return r.bz[start : start+n], nil
}

// BlockNumber decodes a fixed-width block number of the given byte width
func (r *ScaleReader) BlockNumber(size int) (BlockNumber, error) {
	if size == 8 {
		var v uint64
		err := r.Decode(&v)
		return BlockNumber(v), err
	}
	var v uint32
	err := r.Decode(&v)
	return BlockNumber(v), err
}

// Compact decodes a compact integer that fits in 64 bits
func (r *ScaleReader) Compact() (uint64, error) {
	// the big integer form accepts every width of the big-integer mode
	var v *big.Int
	if err := r.Decode(&v); err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.Newf("compact integer wider than 64 bits: %d bits", v.BitLen())
	}
	return v.Uint64(), nil
}

// Vec returns the next compact-prefixed byte vector as a subslice of the input
func (r *ScaleReader) Vec() ([]byte, error) {
	n, err := r.Compact()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Remaining()) {
		return nil, errors.Newf("vector length %d exceeds input", n)
	}
	return r.Take(int(n))
}

// digest reads a Vec<DigestItem> and returns its raw encoding
func (r *ScaleReader) digest() ([]byte, error) {
	start := r.Offset()
	n, err := r.Compact()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < n; i++ {
		var variant uint8
		if err := r.Decode(&variant); err != nil {
			return nil, err
		}
		switch variant {
		case digestItemOther:
			_, err = r.Vec()
		case digestItemChangesTrieRoot:
			_, err = r.Take(HashLength)
		case digestItemConsensus, digestItemSeal, digestItemPreRuntime:
			var engine [4]byte
			if err = r.Decode(&engine); err == nil {
				_, err = r.Vec()
			}
		case digestItemRuntimeEnvironmentUpdated:
		default:
			err = errors.Newf("unknown digest item variant: %d", variant)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "digest item %d", i)
		}
	}
	return append([]byte(nil), r.bz[start:r.Offset()]...), nil
}
