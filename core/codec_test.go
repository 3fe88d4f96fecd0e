package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeCompact(t *testing.T) {
	cases := []struct {
		n        uint64
		expected string
	}{
		{0, "0x00"},
		{1, "0x04"},
		{42, "0xa8"},
		{63, "0xfc"},
		{64, "0x0101"},
		{16383, "0xfdff"},
		{16384, "0x02000100"},
		{1073741823, "0xfeffffff"},
		{1073741824, "0x0300000040"},
		{1 << 33, "0x070000000002"},
		{1<<64 - 1, "0x13ffffffffffffffff"},
	}
	for _, c := range cases {
		bz := EncodeCompact(c.n)
		require.Equal(t, c.expected, EncodeHex(bz), "n=%d", c.n)

		r := NewScaleReader(bz)
		decoded, err := r.Compact()
		require.NoError(t, err)
		require.Equal(t, c.n, decoded)
		require.Zero(t, r.Remaining())
		require.Equal(t, len(bz), r.Offset())
	}
}

func TestScaleReaderErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		read func(r *ScaleReader) error
	}{
		{"truncated two-byte compact", "0x01", func(r *ScaleReader) error { _, err := r.Compact(); return err }},
		{"truncated four-byte compact", "0x0200", func(r *ScaleReader) error { _, err := r.Compact(); return err }},
		{"truncated big compact", "0x07000000", func(r *ScaleReader) error { _, err := r.Compact(); return err }},
		{"compact wider than 64 bits", "0x170000000000000000ff", func(r *ScaleReader) error { _, err := r.Compact(); return err }},
		{"vector longer than input", "0x0c0102", func(r *ScaleReader) error { _, err := r.Vec(); return err }},
		{"truncated hash", "0x0102", func(r *ScaleReader) error { var h Hash; return r.Decode(&h) }},
		{"truncated block number", "0x010203", func(r *ScaleReader) error { _, err := r.BlockNumber(4); return err }},
		{"take past the end", "0x01", func(r *ScaleReader) error { _, err := r.Take(2); return err }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			bz, err := DecodeHex(c.in)
			require.NoError(t, err)
			require.Error(t, c.read(NewScaleReader(bz)))
		})
	}
}

func TestScaleReaderPositions(t *testing.T) {
	bz := append(EncodeBytes([]byte("head")), 0xaa, 0xbb)
	r := NewScaleReader(bz)

	vec, err := r.Vec()
	require.NoError(t, err)
	require.Equal(t, []byte("head"), vec)
	require.Equal(t, 5, r.Offset())
	require.Equal(t, []byte{0xaa, 0xbb}, r.Rest())
	require.Equal(t, 5, r.Offset())

	b, err := r.Take(1)
	require.NoError(t, err)
	require.Equal(t, []byte{0xaa}, b)
	require.Equal(t, 1, r.Remaining())
}

func testHeader(number BlockNumber) *Header {
	digest := []byte{0x04, digestItemPreRuntime, 'a', 'u', 'r', 'a', 0x20, 1, 2, 3, 4, 5, 6, 7, 8}
	return &Header{
		ParentHash:     Hash{0x01},
		Number:         number,
		StateRoot:      Hash{0x02},
		ExtrinsicsRoot: Hash{0x03},
		Digest:         digest,
	}
}

func TestHeaderEncoding(t *testing.T) {
	for _, number := range []BlockNumber{0, 63, 64, 1 << 20, 1 << 33} {
		h := testHeader(number)
		decoded, err := DecodeHeader(h.Encode())
		require.NoError(t, err)
		require.Equal(t, h, decoded)
		require.Equal(t, h.Hash(), decoded.Hash())
		require.Equal(t, HeaderID{Number: number, Hash: h.Hash()}, decoded.ID())
	}

	// an empty digest is encoded as an empty vector
	empty := &Header{Number: 1}
	decoded, err := DecodeHeader(empty.Encode())
	require.NoError(t, err)
	require.Equal(t, []byte{0}, decoded.Digest)
	require.Equal(t, empty.Hash(), decoded.Hash())
}

func TestDecodeHeaderErrors(t *testing.T) {
	bz := testHeader(10).Encode()

	_, err := DecodeHeader(append(bz, 0xff))
	require.ErrorContains(t, err, "trailing")

	_, err = DecodeHeader(bz[:40])
	require.Error(t, err)

	unknown := (&Header{Number: 1, Digest: []byte{0x04, 0x07}}).Encode()
	_, err = DecodeHeader(unknown)
	require.ErrorContains(t, err, "unknown digest item variant")

	h, n, err := DecodeHeaderPrefix(append(bz, 0xff, 0xfe))
	require.NoError(t, err)
	require.Equal(t, len(bz), n)
	require.Equal(t, BlockNumber(10), h.Number)
}

func TestDecodeOptionalHeaderID(t *testing.T) {
	hash := Hash{0xab}

	id, err := DecodeOptionalHeaderID([]byte{0}, 4)
	require.NoError(t, err)
	require.Nil(t, id)

	bz := append([]byte{1}, EncodeBlockNumber(7, 4)...)
	id, err = DecodeOptionalHeaderID(append(bz, hash[:]...), 4)
	require.NoError(t, err)
	require.Equal(t, &HeaderID{Number: 7, Hash: hash}, id)

	bz = append([]byte{1}, EncodeBlockNumber(1<<40, 8)...)
	id, err = DecodeOptionalHeaderID(append(bz, hash[:]...), 8)
	require.NoError(t, err)
	require.Equal(t, &HeaderID{Number: 1 << 40, Hash: hash}, id)

	_, err = DecodeOptionalHeaderID([]byte{2}, 4)
	require.Error(t, err)
	_, err = DecodeOptionalHeaderID([]byte{1, 0, 0}, 4)
	require.Error(t, err)
}

func TestHeaderIDCompare(t *testing.T) {
	a := HeaderID{Number: 1, Hash: Hash{0xff}}
	b := HeaderID{Number: 2, Hash: Hash{0x00}}
	c := HeaderID{Number: 2, Hash: Hash{0x01}}
	require.Equal(t, -1, a.Compare(b))
	require.Equal(t, 1, b.Compare(a))
	require.Equal(t, -1, b.Compare(c))
	require.Equal(t, 0, c.Compare(c))
}
