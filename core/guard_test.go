package core_test

import (
	"context"
	"encoding/binary"
	"sync/atomic"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger-labs/yui-bridge-relayer/chains/testchain"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

// encodeAccountInfo returns an AccountInfo with the given free balance
func encodeAccountInfo(free uint64) []byte {
	bz := make([]byte, 16)
	bz = binary.LittleEndian.AppendUint64(bz, free)
	bz = append(bz, make([]byte, 8)...)
	// reserved, frozen and flags
	return append(bz, make([]byte, 48)...)
}

type errGuard struct{}

func (errGuard) Name() string { return "unreachable" }

func (errGuard) Check(context.Context) error {
	return core.NewConnectionError(errors.New("EOF"), "failed to read")
}

// tripGuard holds for its first `holds` checks and is violated afterwards
type tripGuard struct {
	holds  int32
	checks atomic.Int32
}

func (*tripGuard) Name() string { return "trip" }

func (g *tripGuard) Check(context.Context) error {
	if g.checks.Add(1) > g.holds {
		return core.NewInvariantViolation("trip", "violated after %d checks", g.holds)
	}
	return nil
}

func TestFreeBalance(t *testing.T) {
	ctx := context.TODO()
	chain := newFakeChain("rialto", testchain.Descriptor, 1)
	account := newTestSigner().AccountID()

	free, err := core.FreeBalance(ctx, chain, account)
	require.NoError(t, err)
	require.True(t, free.IsZero())

	chain.setStorage(core.AccountInfoStorageKey(account), encodeAccountInfo(1_000_000))
	free, err = core.FreeBalance(ctx, chain, account)
	require.NoError(t, err)
	require.Equal(t, "1000000", free.String())

	// balances wider than 64 bits
	wide := binary.LittleEndian.AppendUint64(make([]byte, 24), 1)
	chain.setStorage(core.AccountInfoStorageKey(account), append(wide, make([]byte, 48)...))
	free, err = core.FreeBalance(ctx, chain, account)
	require.NoError(t, err)
	require.Equal(t, "18446744073709551616", free.String())

	chain.setStorage(core.AccountInfoStorageKey(account), []byte{1, 2, 3})
	_, err = core.FreeBalance(ctx, chain, account)
	require.Error(t, err)
}

func TestGuards(t *testing.T) {
	ctx := context.TODO()
	chain := newFakeChain("rialto", testchain.Descriptor, 1)
	account := newTestSigner().AccountID()
	chain.setStorage(core.AccountInfoStorageKey(account), encodeAccountInfo(1000))

	cases := []struct {
		name      string
		guard     core.Guard
		violation bool
	}{
		{"balance above the floor", core.NewBalanceGuard(chain, account, math.NewUint(1000)), false},
		{"balance below the floor", core.NewBalanceGuard(chain, account, math.NewUint(1001)), true},
		{"missing account", core.NewBalanceGuard(chain, core.AccountID{1}, math.NewUint(1)), true},
		{"expected spec version", core.NewSpecVersionGuard(chain, 1), false},
		{"runtime upgraded", core.NewSpecVersionGuard(chain, 2), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.guard.Check(ctx)
			if !c.violation {
				require.NoError(t, err)
				return
			}
			var v *core.InvariantViolation
			require.ErrorAs(t, err, &v)
			require.Equal(t, c.guard.Name(), v.Guard)
			require.True(t, core.IsFatal(err))
		})
	}
}

func TestGuardMonitorRunOnce(t *testing.T) {
	chain := newFakeChain("rialto", testchain.Descriptor, 1)

	t.Run("all guards hold", func(t *testing.T) {
		ctx, cancel := context.WithCancelCause(context.TODO())
		defer cancel(nil)
		m := core.NewGuardMonitor().
			Add(core.NewSpecVersionGuard(chain, 1), 0).
			Add(errGuard{}, 0)
		require.NoError(t, m.RunOnce(ctx, cancel))
		require.NoError(t, ctx.Err())
		require.Nil(t, m.Violation())
	})

	t.Run("first violation cancels the relay", func(t *testing.T) {
		ctx, cancel := context.WithCancelCause(context.TODO())
		defer cancel(nil)
		m := core.NewGuardMonitor().
			Add(errGuard{}, 0).
			Add(core.NewSpecVersionGuard(chain, 2), 0)
		require.Equal(t, 2, m.Len())

		err := m.RunOnce(ctx, cancel)
		var v *core.InvariantViolation
		require.ErrorAs(t, err, &v)
		require.Equal(t, "spec_version", v.Guard)
		require.Same(t, v, m.Violation())
		require.ErrorIs(t, ctx.Err(), context.Canceled)
		require.Same(t, v, context.Cause(ctx))

		// later violations do not replace the first one
		m.Add(core.NewBalanceGuard(chain, core.AccountID{1}, math.NewUint(1)), 0)
		require.Error(t, m.RunOnce(ctx, cancel))
		require.Same(t, v, m.Violation())
	})
}

func TestGuardMonitorRun(t *testing.T) {
	t.Run("scheduled check cancels the relay", func(t *testing.T) {
		parent, stop := context.WithTimeout(context.TODO(), 10*time.Second)
		defer stop()
		ctx, cancel := context.WithCancelCause(parent)
		defer cancel(nil)

		guard := &tripGuard{holds: 1}
		m := core.NewGuardMonitor().Add(guard, time.Second)

		err := m.Run(ctx, cancel)
		var v *core.InvariantViolation
		require.ErrorAs(t, err, &v)
		require.Equal(t, "trip", v.Guard)
		require.Same(t, v, m.Violation())
		require.Same(t, v, context.Cause(ctx))
		// the first check runs at startup, the violating one on the schedule
		require.GreaterOrEqual(t, guard.checks.Load(), int32(2))
		require.NoError(t, parent.Err())
	})

	t.Run("stops without a violation when the relay stops", func(t *testing.T) {
		ctx, cancel := context.WithCancelCause(context.TODO())
		m := core.NewGuardMonitor().
			Add(&tripGuard{holds: 1 << 30}, time.Second).
			Add(errGuard{}, time.Second)
		time.AfterFunc(10*time.Millisecond, func() { cancel(nil) })

		require.NoError(t, m.Run(ctx, cancel))
		require.Nil(t, m.Violation())
	})
}
