package core

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"
	"time"

	"cosmossdk.io/math"
	"github.com/ChainSafe/gossamer/pkg/scale"
	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/internal/telemetry"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
	"github.com/robfig/cron/v3"
)

// Guard is a read-only invariant check. Check returns an *InvariantViolation when the
// invariant does not hold; any other error is a failed sample and is not fatal.
type Guard interface {
	Name() string
	Check(ctx context.Context) error
}

// BalanceGuard checks that the free balance of an account stays above a floor
type BalanceGuard struct {
	chain   ChainReader
	account AccountID
	floor   math.Uint
}

var _ Guard = (*BalanceGuard)(nil)

func NewBalanceGuard(chain ChainReader, account AccountID, floor math.Uint) *BalanceGuard {
	return &BalanceGuard{chain: chain, account: account, floor: floor}
}

func (g *BalanceGuard) Name() string {
	return "balance"
}

func (g *BalanceGuard) Check(ctx context.Context) error {
	free, err := FreeBalance(ctx, g.chain, g.account)
	if err != nil {
		return err
	}
	if free.LT(g.floor) {
		return NewInvariantViolation(g.Name(), "free balance of %s is %s, below the floor %s", g.account, free, g.floor)
	}
	return nil
}

// FreeBalance reads the free balance of an account from System.Account.
// A missing account has a zero balance.
func FreeBalance(ctx context.Context, chain ChainReader, account AccountID) (math.Uint, error) {
	bz, err := chain.Storage(ctx, AccountInfoStorageKey(account), nil)
	if err != nil {
		return math.ZeroUint(), err
	}
	if bz == nil {
		return math.ZeroUint(), nil
	}
	return decodeFreeBalance(bz)
}

// decodeFreeBalance extracts AccountInfo.data.free, the u128 following the four u32
// counters (nonce, consumers, providers, sufficients)
func decodeFreeBalance(bz []byte) (math.Uint, error) {
	var info struct {
		Nonce       uint32
		Consumers   uint32
		Providers   uint32
		Sufficients uint32
		Free        *scale.Uint128
	}
	if err := NewScaleReader(bz).Decode(&info); err != nil {
		return math.ZeroUint(), errors.Wrap(err, "failed to decode AccountInfo")
	}
	return math.NewUintFromBigInt(new(big.Int).SetBytes(info.Free.Bytes(binary.BigEndian))), nil
}

// SpecVersionGuard checks that the live runtime still has the spec version that
// transactions are built for
type SpecVersionGuard struct {
	chain    ChainReader
	expected uint32
}

var _ Guard = (*SpecVersionGuard)(nil)

func NewSpecVersionGuard(chain ChainReader, expected uint32) *SpecVersionGuard {
	return &SpecVersionGuard{chain: chain, expected: expected}
}

func (g *SpecVersionGuard) Name() string {
	return "spec_version"
}

func (g *SpecVersionGuard) Check(ctx context.Context) error {
	version, err := g.chain.RuntimeVersion(ctx)
	if err != nil {
		return err
	}
	if version.SpecVersion != g.expected {
		return NewInvariantViolation(g.Name(), "spec_version is %d, expected %d", version.SpecVersion, g.expected)
	}
	return nil
}

type scheduledGuard struct {
	Guard
	interval time.Duration
}

// GuardMonitor runs guards in the background. The first violation cancels the
// context shared by all relay tasks, with the violation as the cause.
type GuardMonitor struct {
	guards []scheduledGuard

	mu        sync.Mutex
	violation *InvariantViolation
}

// NewGuardMonitor returns an empty GuardMonitor
func NewGuardMonitor() *GuardMonitor {
	return &GuardMonitor{}
}

// Add schedules g every interval
func (m *GuardMonitor) Add(g Guard, interval time.Duration) *GuardMonitor {
	m.guards = append(m.guards, scheduledGuard{Guard: g, interval: interval})
	return m
}

func (m *GuardMonitor) Len() int {
	return len(m.guards)
}

// Violation returns the violation that stopped the relay, if any
func (m *GuardMonitor) Violation() *InvariantViolation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.violation
}

// RunOnce checks every guard once and returns the first violation
func (m *GuardMonitor) RunOnce(ctx context.Context, cancel context.CancelCauseFunc) error {
	for _, g := range m.guards {
		if v := m.check(ctx, g, cancel); v != nil {
			return v
		}
	}
	return nil
}

// Run checks every guard once, then on its interval until ctx is done.
// It returns the violation that cancelled the relay, if any.
func (m *GuardMonitor) Run(ctx context.Context, cancel context.CancelCauseFunc) error {
	if err := m.RunOnce(ctx, cancel); err != nil {
		return err
	}

	logger := cronLogger{log.GetLogger().WithModule("core.guard")}
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(logger),
		cron.Recover(logger),
	))
	for _, g := range m.guards {
		g := g
		if _, err := c.AddFunc(fmt.Sprintf("@every %s", g.interval), func() {
			m.check(ctx, g, cancel)
		}); err != nil {
			return NewConfigurationError("invalid interval of guard %s: %v", g.Name(), err)
		}
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	if v := m.Violation(); v != nil {
		return v
	}
	return nil
}

func (m *GuardMonitor) check(ctx context.Context, g Guard, cancel context.CancelCauseFunc) *InvariantViolation {
	logger := log.GetLogger().WithModule("core.guard")
	err := g.Check(ctx)
	if err == nil {
		return nil
	}
	var v *InvariantViolation
	if !errors.As(err, &v) {
		logger.ErrorContext(ctx, "failed to run guard", err, "guard", g.Name())
		return nil
	}

	m.mu.Lock()
	first := m.violation == nil
	if first {
		m.violation = v
	}
	m.mu.Unlock()

	if first {
		telemetry.RecordGuardViolation(ctx, g.Name())
		logger.ErrorContext(ctx, "guard tripped, stopping the relay", v, "guard", g.Name())
		cancel(v)
	}
	return v
}

// cronLogger adapts RelayLogger to cron.Logger
type cronLogger struct {
	*log.RelayLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.RelayLogger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.RelayLogger.Error(msg, err, keysAndValues...)
}
