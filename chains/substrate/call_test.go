package substrate

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/stretchr/testify/require"
)

func TestCallEncoder(t *testing.T) {
	sudo := CallIndex{0x00, 0x00}
	cfg := CallEncoderConfig{
		InitBridge:           CallIndex{0x13, 0x02},
		SubmitFinalityProof:  CallIndex{0x13, 0x00},
		SubmitParachainHeads: CallIndex{0x14, 0x00},
		Sudo:                 &sudo,
	}
	enc, err := cfg.Build()
	require.NoError(t, err)

	call, err := enc.EncodeInitBridge(&core.InitializationData{Encoded: []byte{0xaa}})
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x00, 0x13, 0x02, 0xaa}, call)

	header := &core.Header{Number: 1}
	call, err = enc.EncodeSubmitFinalityProof(&core.FinalityProof{Header: header, Justification: []byte{0xbb}})
	require.NoError(t, err)
	require.Equal(t, append(append([]byte{0x13, 0x00}, header.Encode()...), 0xbb), call)

	relay := core.HeaderID{Number: 5, Hash: core.Hash{0xcc}}
	call, err = enc.EncodeSubmitParachainHeads(relay, []core.ParaID{2000}, [][]byte{{0x01, 0x02}})
	require.NoError(t, err)
	expected := []byte{0x14, 0x00, 0x05, 0x00, 0x00, 0x00}
	expected = append(expected, relay.Hash[:]...)
	expected = append(expected, 0x04, 0xd0, 0x07, 0x00, 0x00)
	expected = append(expected, 0x04, 0x08, 0x01, 0x02)
	require.Equal(t, expected, call)
}

func TestCallEncoderConfigValidate(t *testing.T) {
	cfg := CallEncoderConfig{InitBridge: CallIndex{1, 1}, SubmitFinalityProof: CallIndex{1, 1}}
	require.True(t, errors.Is(cfg.Validate(), core.ErrConfiguration))

	cfg = CallEncoderConfig{InitBridge: CallIndex{1, 0}, SubmitFinalityProof: CallIndex{1, 1}, BlockNumberSize: 3}
	require.True(t, errors.Is(cfg.Validate(), core.ErrConfiguration))
}
