package core

import (
	"context"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
	"golang.org/x/sync/errgroup"
)

var (
	rtyAttNum = uint(5)
	rtyAtt    = retry.Attempts(rtyAttNum)
	rtyDel    = retry.Delay(time.Millisecond * 400)
	rtyErr    = retry.LastErrorOnly(true)
)

// RelayServer is one relay loop
type RelayServer interface {
	Serve(ctx context.Context) error
}

// RelayService runs the header relay, the parachain heads relay and the guards of
// one bridge. A guard violation or a fatal error of any task stops all of them.
type RelayService struct {
	bridge   string
	src      Chain
	dst      Chain
	loops    map[string]RelayServer
	guards   *GuardMonitor
	interval time.Duration
}

// NewRelayService returns a new service. A zero interval defaults to the average
// block interval of the source chain.
func NewRelayService(bridge string, src, dst Chain, guards *GuardMonitor, interval time.Duration) *RelayService {
	if interval == 0 {
		interval = src.Descriptor().AverageBlockInterval()
	}
	if guards == nil {
		guards = NewGuardMonitor()
	}
	return &RelayService{
		bridge:   bridge,
		src:      src,
		dst:      dst,
		loops:    make(map[string]RelayServer),
		guards:   guards,
		interval: interval,
	}
}

// AddLoop registers a relay loop under the given name
func (srv *RelayService) AddLoop(name string, loop RelayServer) *RelayService {
	srv.loops[name] = loop
	return srv
}

func (srv *RelayService) logger() *log.RelayLogger {
	return log.GetLogger().WithBridge(srv.bridge).WithChainPair(srv.src.ChainID(), srv.dst.ChainID())
}

// Start runs all loops until ctx is done or a fatal error occurs
func (srv *RelayService) Start(ctx context.Context) error {
	logger := srv.logger()
	if len(srv.loops) == 0 {
		return NewConfigurationError("bridge %s: no relay loop is enabled", srv.bridge)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return srv.guards.Run(egCtx, cancel)
	})
	for name, loop := range srv.loops {
		name, loop := name, loop
		eg.Go(func() error {
			return srv.runLoop(egCtx, name, loop)
		})
	}

	err := eg.Wait()
	if v := srv.guards.Violation(); v != nil {
		return v
	}
	if errors.Is(err, context.Canceled) {
		logger.Info("relay service stopped")
		return nil
	}
	return err
}

func (srv *RelayService) runLoop(ctx context.Context, name string, loop RelayServer) error {
	logger := &log.RelayLogger{Logger: srv.logger().WithModule("core.service").With("loop", name)}
	logger.InfoContext(ctx, "starting relay loop", "interval", srv.interval)
	for {
		if err := retry.Do(func() error {
			return loop.Serve(ctx)
		}, rtyAtt, rtyDel, rtyErr, retry.Context(ctx), retry.RetryIf(IsTransient), retry.OnRetry(func(n uint, err error) {
			logger.InfoContext(ctx,
				"retrying to serve relays",
				"try", n+1,
				"try_limit", rtyAttNum,
				"error", err.Error(),
			)
		})); err != nil {
			if cause := context.Cause(ctx); ctx.Err() != nil {
				return cause
			}
			if IsFatal(err) {
				logger.ErrorContext(ctx, "relay loop failed", err)
				return err
			}
			logger.ErrorContext(ctx, "relay iteration failed", err)
		}
		if err := wait(ctx, srv.interval); err != nil {
			return context.Cause(ctx)
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
