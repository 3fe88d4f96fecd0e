package core

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func encodeBestParaHeadHash(relayBlock uint32, head Hash) []byte {
	return append(binary.LittleEndian.AppendUint32(nil, relayBlock), head[:]...)
}

func TestParaHeadTrackerObserve(t *testing.T) {
	tracker := NewParaHeadTracker(2000)
	require.Equal(t, TrackerUninitialized, tracker.State())
	require.Nil(t, tracker.Best())

	require.True(t, tracker.Observe(10, Hash{1}))
	require.Equal(t, TrackerTracking, tracker.State())
	require.Equal(t, &BestParaHeadHash{AtRelayBlockNumber: 10, HeadHash: Hash{1}}, tracker.Best())

	// same or older relay blocks never replace the best head
	require.False(t, tracker.Observe(10, Hash{2}))
	require.False(t, tracker.Observe(9, Hash{3}))
	require.Equal(t, Hash(tracker.Best().HeadHash), Hash{1})

	// relay blocks need not be contiguous
	require.True(t, tracker.Observe(25, Hash{4}))
	require.Equal(t, uint32(25), tracker.Best().AtRelayBlockNumber)

	// Best returns a copy
	best := tracker.Best()
	best.AtRelayBlockNumber = 0
	require.Equal(t, uint32(25), tracker.Best().AtRelayBlockNumber)
}

func TestParaHeadTrackerConcurrentObserve(t *testing.T) {
	tracker := NewParaHeadTracker(2000)
	var wg sync.WaitGroup
	for i := uint32(1); i <= 100; i++ {
		wg.Add(1)
		go func(n uint32) {
			defer wg.Done()
			tracker.Observe(n, Hash{byte(n)})
		}(i)
	}
	wg.Wait()
	require.Equal(t, &BestParaHeadHash{AtRelayBlockNumber: 100, HeadHash: Hash{100}}, tracker.Best())
}

func TestParaHeadTrackerIsImported(t *testing.T) {
	const pallet = "BridgeRialtoParachains"
	head := Hash{0xaa}
	ctx := context.TODO()

	cases := []struct {
		name     string
		imported []byte
		best     []byte
		expected bool
	}{
		{"head in imported index", []byte{0}, nil, true},
		{"target knows a later head", nil, encodeBestParaHeadHash(11, Hash{0xbb}), true},
		{"target knows the same relay block", nil, encodeBestParaHeadHash(10, head), true},
		{"target knows an older head", nil, encodeBestParaHeadHash(9, Hash{0xbb}), false},
		{"target knows nothing", nil, nil, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			target := NewMockChain(ctrl)
			target.EXPECT().Storage(gomock.Any(), ImportedParachainHeadStorageKeyAtTarget(pallet, 2000, head), nil).Return(c.imported, nil)
			if c.imported == nil {
				target.EXPECT().Storage(gomock.Any(), BestParachainHeadHashStorageKeyAtTarget(pallet, 2000), nil).Return(c.best, nil)
			}
			imported, err := NewParaHeadTracker(2000).IsImported(ctx, target, pallet, 10, head)
			require.NoError(t, err)
			require.Equal(t, c.expected, imported)
		})
	}
}

func TestParaHeadAtSource(t *testing.T) {
	ctx := context.TODO()
	at := Hash{0x07}
	ctrl := gomock.NewController(t)
	source := NewMockChain(ctrl)

	headData := []byte("parachain header")
	source.EXPECT().Storage(gomock.Any(), ParachainHeadStorageKeyAtSource(ParasPalletName, 2000), &at).Return(EncodeBytes(headData), nil)
	source.EXPECT().Storage(gomock.Any(), ParachainHeadStorageKeyAtSource(ParasPalletName, 2001), &at).Return(nil, nil)

	head, err := ParaHeadAtSource(ctx, source, ParasPalletName, 2000, at)
	require.NoError(t, err)
	require.Equal(t, headData, head)

	head, err = ParaHeadAtSource(ctx, source, ParasPalletName, 2001, at)
	require.NoError(t, err)
	require.Nil(t, head)
}

func TestDecodeBestParaHeadHash(t *testing.T) {
	best, err := DecodeBestParaHeadHash(encodeBestParaHeadHash(42, Hash{0xcc}))
	require.NoError(t, err)
	require.Equal(t, &BestParaHeadHash{AtRelayBlockNumber: 42, HeadHash: Hash{0xcc}}, best)
	require.Equal(t, Hash{0xcc}.Hex()+"@42", best.String())

	_, err = DecodeBestParaHeadHash([]byte{1, 2})
	require.Error(t, err)
}
