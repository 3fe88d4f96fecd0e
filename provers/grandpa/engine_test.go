package grandpa_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
	"github.com/hyperledger-labs/yui-bridge-relayer/provers/grandpa"
)

type voter struct {
	key ed25519.PrivateKey
	id  grandpa.AuthorityID
}

func newVoters(n int) []voter {
	voters := make([]voter, n)
	for i := range voters {
		seed := make([]byte, ed25519.SeedSize)
		seed[0] = byte(i + 1)
		key := ed25519.NewKeyFromSeed(seed)
		copy(voters[i].id[:], key.Public().(ed25519.PublicKey))
		voters[i].key = key
	}
	return voters
}

func authoritySet(setID uint64, voters []voter) *grandpa.AuthoritySet {
	set := &grandpa.AuthoritySet{SetID: setID}
	for _, v := range voters {
		set.Authorities = append(set.Authorities, grandpa.Authority{ID: v.id, Weight: 1})
	}
	return set
}

func header(parent core.Hash, number core.BlockNumber) *core.Header {
	h := &core.Header{ParentHash: parent, Number: number}
	h.StateRoot[0] = byte(number)
	return h
}

func sign(v voter, p grandpa.Precommit, round, setID uint64) grandpa.SignedPrecommit {
	sp := grandpa.SignedPrecommit{Precommit: p, ID: v.id}
	copy(sp.Signature[:], ed25519.Sign(v.key, grandpa.SigningPayload(p, round, setID, 4)))
	return sp
}

func justify(target *core.Header, voters []voter, round, setID uint64) *grandpa.Justification {
	j := &grandpa.Justification{Round: round}
	j.Commit.TargetHash = target.Hash()
	j.Commit.TargetNumber = target.Number
	for _, v := range voters {
		j.Commit.Precommits = append(j.Commit.Precommits, sign(v, grandpa.Precommit{TargetHash: target.Hash(), TargetNumber: target.Number}, round, setID))
	}
	return j
}

func TestThreshold(t *testing.T) {
	cases := []struct {
		voters    int
		threshold uint64
	}{
		{1, 1},
		{3, 3},
		{4, 3},
		{7, 5},
		{10, 7},
	}
	for _, c := range cases {
		set := authoritySet(0, newVoters(c.voters))
		assert.Equal(t, c.threshold, set.Threshold(), "voters=%d", c.voters)
	}
}

func TestJustificationEncoding(t *testing.T) {
	voters := newVoters(3)
	target := header(core.Hash{1}, 10)
	child := header(target.Hash(), 11)
	j := justify(target, voters, 7, 2)
	j.VotesAncestries = []*core.Header{child}

	decoded, err := grandpa.DecodeJustification(j.Encode(4), 4)
	require.NoError(t, err)
	assert.Equal(t, j.Round, decoded.Round)
	assert.Equal(t, j.Commit, decoded.Commit)
	require.Len(t, decoded.VotesAncestries, 1)
	assert.Equal(t, child.Hash(), decoded.VotesAncestries[0].Hash())

	_, err = grandpa.DecodeJustification(append(j.Encode(4), 0), 4)
	assert.Error(t, err)

	encoded := j.Encode(4)
	for _, n := range []int{4, 8 + 31, 8 + 32 + 4 + 1 + 50} {
		_, err = grandpa.DecodeJustification(encoded[:n], 4)
		assert.Error(t, err, "truncated at %d", n)
	}
}

func TestSigningPayload(t *testing.T) {
	p := grandpa.Precommit{TargetHash: core.Hash{0xaa}, TargetNumber: 5}
	payload := grandpa.SigningPayload(p, 3, 9, 4)
	require.Len(t, payload, 1+32+4+8+8)
	assert.Equal(t, byte(1), payload[0])
	assert.Equal(t, byte(0xaa), payload[1])
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(payload[33:37]))
	assert.Equal(t, uint64(3), binary.LittleEndian.Uint64(payload[37:45]))
	assert.Equal(t, uint64(9), binary.LittleEndian.Uint64(payload[45:53]))
}

func TestVerifyJustification(t *testing.T) {
	voters := newVoters(4)
	set := authoritySet(5, voters)
	target := header(core.Hash{1}, 100)
	child := header(target.Hash(), 101)

	cases := map[string]struct {
		build func() *grandpa.Justification
		valid bool
	}{
		"all voters": {
			build: func() *grandpa.Justification { return justify(target, voters, 1, 5) },
			valid: true,
		},
		"exact threshold": {
			build: func() *grandpa.Justification { return justify(target, voters[:3], 1, 5) },
			valid: true,
		},
		"below threshold": {
			build: func() *grandpa.Justification { return justify(target, voters[:2], 1, 5) },
		},
		"wrong set id": {
			build: func() *grandpa.Justification { return justify(target, voters, 1, 6) },
		},
		"duplicate voter": {
			build: func() *grandpa.Justification {
				j := justify(target, voters[:2], 1, 5)
				j.Commit.Precommits = append(j.Commit.Precommits, j.Commit.Precommits[0])
				return j
			},
		},
		"unknown authority": {
			build: func() *grandpa.Justification { return justify(target, newVoters(5)[4:], 1, 5) },
		},
		"vote for descendant with ancestry": {
			build: func() *grandpa.Justification {
				j := justify(target, voters[:2], 1, 5)
				p := grandpa.Precommit{TargetHash: child.Hash(), TargetNumber: child.Number}
				j.Commit.Precommits = append(j.Commit.Precommits, sign(voters[2], p, 1, 5))
				j.VotesAncestries = []*core.Header{child}
				return j
			},
			valid: true,
		},
		"vote for descendant without ancestry": {
			build: func() *grandpa.Justification {
				j := justify(target, voters[:2], 1, 5)
				p := grandpa.Precommit{TargetHash: child.Hash(), TargetNumber: child.Number}
				j.Commit.Precommits = append(j.Commit.Precommits, sign(voters[2], p, 1, 5))
				return j
			},
		},
		"tampered signature": {
			build: func() *grandpa.Justification {
				j := justify(target, voters, 1, 5)
				j.Commit.Precommits[0].Signature[0] ^= 0xff
				return j
			},
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			err := grandpa.VerifyJustification(target.ID(), set, c.build(), 4)
			if c.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, core.ErrInvalidProof), "err=%v", err)
			}
		})
	}
}

func TestVerifyJustificationWrongTarget(t *testing.T) {
	voters := newVoters(3)
	target := header(core.Hash{1}, 100)
	other := header(core.Hash{2}, 100)
	err := grandpa.VerifyJustification(other.ID(), authoritySet(0, voters), justify(target, voters, 1, 0), 4)
	assert.True(t, errors.Is(err, core.ErrInvalidProof))
}

func encodeAuthorities(set *grandpa.AuthoritySet) []byte {
	return set.Encode()
}

func TestEngineFinalityProofFor(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	source := core.NewMockChain(ctrl)

	voters := newVoters(3)
	set := authoritySet(4, voters)
	parent := header(core.Hash{9}, 49)
	target := header(parent.Hash(), 50)
	finalized := header(target.Hash(), 51)
	targetHash, finalizedHash := target.Hash(), finalized.Hash()

	proof := &grandpa.EncodedFinalityProof{
		Block:         targetHash,
		Justification: justify(target, voters, 2, 4).Encode(4),
	}
	setID := binary.LittleEndian.AppendUint64(nil, set.SetID)

	source.EXPECT().FinalizedHead(gomock.Any()).Return(finalizedHash, nil).AnyTimes()
	source.EXPECT().Header(gomock.Any(), gomock.Eq(&finalizedHash)).Return(finalized, nil).AnyTimes()
	source.EXPECT().Header(gomock.Any(), gomock.Eq(&targetHash)).Return(target, nil).AnyTimes()
	source.EXPECT().ProveFinality(gomock.Any(), core.BlockNumber(50)).Return(proof.Encode(), nil)
	source.EXPECT().ProveFinality(gomock.Any(), core.BlockNumber(48)).Return(nil, nil)
	source.EXPECT().StateCall(gomock.Any(), grandpa.AuthoritiesMethod, gomock.Nil(), gomock.Any()).Return(encodeAuthorities(set), nil).AnyTimes()
	source.EXPECT().Storage(gomock.Any(), core.StorageValueKey(grandpa.PalletName, grandpa.CurrentSetIDItem), gomock.Any()).Return(setID, nil).AnyTimes()

	var logs bytes.Buffer
	require.NoError(t, log.InitLoggerWithWriter("debug", "json", &logs, false))
	engine := grandpa.NewEngine(4)

	best, err := engine.BestFinalized(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, finalized.ID(), *best)

	fp, err := engine.FinalityProofFor(ctx, source, target.ID())
	require.NoError(t, err)
	assert.Equal(t, target.ID(), fp.HeaderID())
	assert.NoError(t, engine.VerifyProof(target, fp))
	assert.Contains(t, logs.String(), `"block_number":50`)
	assert.Contains(t, logs.String(), `"set_id":4`)
	assert.NotContains(t, logs.String(), "BADKEY")

	_, err = engine.FinalityProofFor(ctx, source, core.HeaderID{Number: 52})
	assert.True(t, errors.Is(err, core.ErrHeaderNotFinalized))

	_, err = engine.FinalityProofFor(ctx, source, core.HeaderID{Number: 48})
	assert.True(t, errors.Is(err, core.ErrProofUnavailable))

	init, err := engine.InitializationData(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), init.SetID)
	assert.Equal(t, 3, init.Authorities)
	assert.Equal(t, finalized.ID(), init.Header.ID())
}

func TestEngineBestFinalizedAtGenesis(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := core.NewMockChain(ctrl)
	genesis := header(core.Hash{}, 0)
	genesisHash := genesis.Hash()
	source.EXPECT().FinalizedHead(gomock.Any()).Return(genesisHash, nil)
	source.EXPECT().Header(gomock.Any(), gomock.Eq(&genesisHash)).Return(genesis, nil)

	best, err := grandpa.NewEngine(4).BestFinalized(context.Background(), source)
	require.NoError(t, err)
	assert.Nil(t, best)
}

func TestEngineVerifyWithoutKnownSet(t *testing.T) {
	voters := newVoters(1)
	target := header(core.Hash{}, 1)
	proof := &core.FinalityProof{Header: target, Justification: justify(target, voters, 0, 0).Encode(4)}
	err := grandpa.NewEngine(4).VerifyProof(target, proof)
	assert.True(t, errors.Is(err, core.ErrInvalidProof))
}
