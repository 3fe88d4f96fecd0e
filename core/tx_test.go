package core_test

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hyperledger-labs/yui-bridge-relayer/chains/testchain"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

type testSigner struct {
	key ed25519.PrivateKey
}

func newTestSigner() *testSigner {
	return &testSigner{key: ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize))}
}

func (s *testSigner) Scheme() core.SignatureScheme { return core.SchemeEd25519 }

func (s *testSigner) AccountID() core.AccountID {
	var id core.AccountID
	copy(id[:], s.key.Public().(ed25519.PublicKey))
	return id
}

func (s *testSigner) Sign(_ context.Context, msg []byte) ([]byte, error) {
	return ed25519.Sign(s.key, msg), nil
}

func (s *testSigner) GetPublicKey(context.Context) ([]byte, error) {
	return s.key.Public().(ed25519.PublicKey), nil
}

var testGenesis = core.Hash{0x99}

type txFixture struct {
	target    *core.MockChain
	signer    *testSigner
	submitter *core.TxSubmitter
	signed    []core.SignParam
}

func newTxFixture(t *testing.T, descriptor core.ChainDescriptor, cfg core.TxSubmitterConfig) *txFixture {
	ctrl := gomock.NewController(t)
	f := &txFixture{
		target: core.NewMockChain(ctrl),
		signer: newTestSigner(),
	}
	f.target.EXPECT().ChainID().Return("rialto").AnyTimes()
	f.target.EXPECT().Descriptor().Return(descriptor).AnyTimes()
	f.target.EXPECT().RuntimeVersion(gomock.Any()).Return(&core.RuntimeVersion{SpecName: "test", SpecVersion: 1, TransactionVersion: 1}, nil).AnyTimes()
	f.target.EXPECT().GenesisHash(gomock.Any()).Return(testGenesis, nil).AnyTimes()

	scheme := core.SignSchemeFunc(func(_ context.Context, param core.SignParam) ([]byte, error) {
		f.signed = append(f.signed, param)
		return append([]byte{byte(param.Unsigned.Nonce)}, param.Unsigned.Call...), nil
	})
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Millisecond
		cfg.MaxRetryDelay = 5 * time.Millisecond
	}
	f.submitter = core.NewTxSubmitter(f.target, f.signer, scheme, cfg)
	return f
}

func (f *txFixture) expectNonces(nonces ...core.Nonce) {
	calls := make([]any, 0, len(nonces))
	for _, n := range nonces {
		calls = append(calls, f.target.EXPECT().AccountNextIndex(gomock.Any(), f.signer.AccountID()).Return(n, nil))
	}
	gomock.InOrder(calls...)
}

func (f *txFixture) expectSubmissions(results ...error) {
	calls := make([]any, 0, len(results))
	for _, err := range results {
		calls = append(calls, f.target.EXPECT().SubmitExtrinsic(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, extrinsic []byte) (core.Hash, error) {
				if err != nil {
					return core.Hash{}, err
				}
				return core.Blake2_256(extrinsic), nil
			}))
	}
	gomock.InOrder(calls...)
}

func TestTxSubmitterSubmit(t *testing.T) {
	call := []byte("submit_finality_proof")
	connErr := core.NewConnectionError(errors.New("EOF"), "failed to submit extrinsic")

	cases := []struct {
		name         string
		nonces       []core.Nonce
		results      []error
		expectErr    error
		expectNonce  core.Nonce
		alreadyKnown bool
		attempts     uint
	}{
		{
			name:        "submitted",
			nonces:      []core.Nonce{7},
			results:     []error{nil},
			expectNonce: 7,
			attempts:    1,
		},
		{
			name:         "already known is a success",
			nonces:       []core.Nonce{7},
			results:      []error{errors.Wrap(core.ErrTxAlreadyKnown, "1013: Transaction Already Imported")},
			expectNonce:  7,
			alreadyKnown: true,
			attempts:     1,
		},
		{
			name:        "nonce too low triggers one re-query",
			nonces:      []core.Nonce{7, 8},
			results:     []error{core.ErrNonceTooLow, nil},
			expectNonce: 8,
			attempts:    1,
		},
		{
			name:      "nonce too low twice is fatal to the submission",
			nonces:    []core.Nonce{7, 8},
			results:   []error{core.ErrNonceTooLow, core.ErrNonceTooLow},
			expectErr: core.ErrNonceTooLow,
		},
		{
			name:         "nonce too low after a transient error means the earlier attempt landed",
			nonces:       []core.Nonce{7},
			results:      []error{connErr, core.ErrNonceTooLow},
			expectNonce:  7,
			alreadyKnown: true,
			attempts:     2,
		},
		{
			name:        "pool full is retried with the same nonce",
			nonces:      []core.Nonce{7},
			results:     []error{core.ErrPoolFull, core.ErrPoolFull, nil},
			expectNonce: 7,
			attempts:    3,
		},
		{
			name:      "pool full until attempts run out",
			nonces:    []core.Nonce{7},
			results:   []error{core.ErrPoolFull, core.ErrPoolFull, core.ErrPoolFull},
			expectErr: core.ErrPoolFull,
		},
		{
			name:      "rejected is not retried",
			nonces:    []core.Nonce{7},
			results:   []error{errors.Wrap(core.ErrTxRejected, "1010: Invalid Transaction")},
			expectErr: core.ErrTxRejected,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newTxFixture(t, testchain.Descriptor, core.TxSubmitterConfig{MaxAttempts: 3})
			f.expectNonces(c.nonces...)
			f.expectSubmissions(c.results...)

			outcome, err := f.submitter.Submit(context.TODO(), call, core.EraPolicyImmortal)
			if c.expectErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, c.expectErr), "%+v", err)
				require.True(t, core.IsSubmissionError(err))
				require.Nil(t, outcome)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.expectNonce, outcome.Nonce)
			require.Equal(t, c.alreadyKnown, outcome.AlreadyKnown)
			require.Equal(t, c.attempts, outcome.Attempts)
			require.Equal(t, core.Blake2_256(append([]byte{byte(c.expectNonce)}, call...)), outcome.TxHash)

			for _, param := range f.signed {
				require.True(t, param.Era.IsImmortal())
				require.Equal(t, testGenesis, param.GenesisHash)
				require.Equal(t, testGenesis, param.BirthHash)
				require.Equal(t, call, param.Unsigned.Call)
			}
		})
	}
}

func TestTxSubmitterIdempotence(t *testing.T) {
	call := []byte("submit_parachain_heads")
	f := newTxFixture(t, testchain.Descriptor, core.TxSubmitterConfig{})
	f.expectNonces(3, 3)
	f.expectSubmissions(nil, core.ErrTxAlreadyKnown)

	first, err := f.submitter.Submit(context.TODO(), call, core.EraPolicyImmortal)
	require.NoError(t, err)
	require.False(t, first.AlreadyKnown)

	second, err := f.submitter.Submit(context.TODO(), call, core.EraPolicyImmortal)
	require.NoError(t, err)
	require.True(t, second.AlreadyKnown)
	require.Equal(t, first.TxHash, second.TxHash)
	require.Equal(t, first.Nonce, second.Nonce)
}

func TestTxSubmitterMortalEra(t *testing.T) {
	cases := []struct {
		name         string
		period       uint64
		bestNumber   core.BlockNumber
		expectPeriod uint64
		expectBirth  *core.BlockNumber
	}{
		{"era born at the best block", 64, 100, 64, nil},
		{"quantized era born before the best block", 8192, 8193, 8192, ptr(core.BlockNumber(8192))},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newTxFixture(t, testchain.Descriptor, core.TxSubmitterConfig{MortalPeriod: c.period})
			best := &core.Header{ParentHash: core.Hash{0x01}, Number: c.bestNumber}
			birthHash := best.Hash()
			f.target.EXPECT().Header(gomock.Any(), nil).Return(best, nil)
			if c.expectBirth != nil {
				birthHash = core.Hash{0xbb}
				f.target.EXPECT().BlockHash(gomock.Any(), *c.expectBirth).Return(birthHash, nil)
			}
			f.expectNonces(1)
			f.expectSubmissions(nil)

			_, err := f.submitter.Submit(context.TODO(), []byte("call"), core.EraPolicyMortal)
			require.NoError(t, err)
			require.Len(t, f.signed, 1)
			era := f.signed[0].Era
			require.False(t, era.IsImmortal())
			require.Equal(t, c.expectPeriod, era.Period)
			require.Equal(t, best.ID(), era.Anchor)
			require.Equal(t, birthHash, f.signed[0].BirthHash)
			require.Equal(t, testGenesis, f.signed[0].GenesisHash)
		})
	}
}

func TestTxSubmitterRefusesAfterGuardTrip(t *testing.T) {
	f := newTxFixture(t, testchain.Descriptor, core.TxSubmitterConfig{})
	violation := core.NewInvariantViolation("balance", "balance is below the minimum")
	ctx, cancel := context.WithCancelCause(context.TODO())
	cancel(violation)

	_, err := f.submitter.Submit(ctx, []byte("call"), core.EraPolicyMortal)
	require.Error(t, err)
	require.ErrorIs(t, err, violation)
	require.True(t, core.IsFatal(err))
	require.Empty(t, f.signed)
}

func TestTxSubmitterExtrinsicSizeLimit(t *testing.T) {
	descriptor := (&core.Descriptor{
		ChainName:     "Small",
		NumberSize:    4,
		Scheme:        core.SchemeEd25519,
		BlockInterval: time.Second,
		ExtrinsicSize: 8,
		FeePolynomial: core.IdentityFee(),
	}).MustValidate()
	f := newTxFixture(t, descriptor, core.TxSubmitterConfig{})
	f.expectNonces(0)

	_, err := f.submitter.Submit(context.TODO(), make([]byte, 16), core.EraPolicyImmortal)
	require.Error(t, err)
	require.True(t, errors.Is(err, core.ErrTxRejected), "%+v", err)
	require.Len(t, f.signed, 1)
}

func TestTxSubmitterNotDispatchable(t *testing.T) {
	descriptor := (&core.Descriptor{
		ChainName:       "Relay",
		NumberSize:      4,
		Scheme:          core.SchemeSr25519,
		BlockInterval:   time.Second,
		FeePolynomial:   core.IdentityFee(),
		NotDispatchable: true,
	}).MustValidate()
	f := newTxFixture(t, descriptor, core.TxSubmitterConfig{})

	_, err := f.submitter.Submit(context.TODO(), []byte("call"), core.EraPolicyImmortal)
	require.Error(t, err)
	require.True(t, core.IsFatal(err))
}

func ptr[T any](v T) *T {
	return &v
}
