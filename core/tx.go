package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/internal/telemetry"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTxMaxAttempts   = 5
	defaultTxRetryDelay    = 400 * time.Millisecond
	defaultTxMaxRetryDelay = 30 * time.Second
	defaultMortalPeriod    = 64
)

// UnsignedTransaction is a call with the nonce it is going to be signed with
type UnsignedTransaction struct {
	Call  []byte
	Nonce Nonce
	Tip   uint64
}

// SignParam is everything needed to sign a transaction for a target chain
type SignParam struct {
	SpecVersion        uint32
	TransactionVersion uint32
	GenesisHash        Hash
	// BirthHash is the hash of the block where a mortal era starts. It is ignored
	// for immortal eras.
	BirthHash Hash
	Signer    Signer
	Era       TransactionEra
	Unsigned  UnsignedTransaction
}

// SignScheme turns a SignParam into an encoded extrinsic ready for submission
type SignScheme interface {
	SignTransaction(ctx context.Context, param SignParam) ([]byte, error)
}

// SignSchemeFunc adapts a function to SignScheme
type SignSchemeFunc func(ctx context.Context, param SignParam) ([]byte, error)

func (f SignSchemeFunc) SignTransaction(ctx context.Context, param SignParam) ([]byte, error) {
	return f(ctx, param)
}

// TxOutcome is the result of a logical submission
type TxOutcome struct {
	TxHash Hash
	Nonce  Nonce
	// AlreadyKnown is set when the target reported the transaction as already
	// submitted, by this or a competing relayer
	AlreadyKnown bool
	Attempts     uint
}

// TxSubmitterConfig tunes the retry and era policy of a TxSubmitter
type TxSubmitterConfig struct {
	MaxAttempts   uint          `json:"max_attempts" yaml:"max-attempts"`
	RetryDelay    time.Duration `json:"retry_delay" yaml:"retry-delay"`
	MaxRetryDelay time.Duration `json:"max_retry_delay" yaml:"max-retry-delay"`
	MortalPeriod  uint64        `json:"mortal_period" yaml:"mortal-period"`
	Tip           uint64        `json:"tip" yaml:"tip"`
}

// DefaultTxSubmitterConfig returns the default config
func DefaultTxSubmitterConfig() TxSubmitterConfig {
	return TxSubmitterConfig{
		MaxAttempts:   defaultTxMaxAttempts,
		RetryDelay:    defaultTxRetryDelay,
		MaxRetryDelay: defaultTxMaxRetryDelay,
		MortalPeriod:  defaultMortalPeriod,
	}
}

func (cfg TxSubmitterConfig) withDefaults() TxSubmitterConfig {
	def := DefaultTxSubmitterConfig()
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.MaxRetryDelay == 0 {
		cfg.MaxRetryDelay = def.MaxRetryDelay
	}
	if cfg.MortalPeriod == 0 {
		cfg.MortalPeriod = def.MortalPeriod
	}
	return cfg
}

// TxSubmitter signs and submits transactions to one target chain with one key.
// Submissions are serialized so that nonces of the key never race.
type TxSubmitter struct {
	target Chain
	signer Signer
	scheme SignScheme
	cfg    TxSubmitterConfig

	mu sync.Mutex
}

// NewTxSubmitter returns a new TxSubmitter
func NewTxSubmitter(target Chain, signer Signer, scheme SignScheme, cfg TxSubmitterConfig) *TxSubmitter {
	return &TxSubmitter{
		target: target,
		signer: signer,
		scheme: scheme,
		cfg:    cfg.withDefaults(),
	}
}

func (s *TxSubmitter) Target() Chain {
	return s.target
}

func (s *TxSubmitter) Account() AccountID {
	return s.signer.AccountID()
}

func (s *TxSubmitter) logger() *log.RelayLogger {
	return log.GetLogger().WithChain(s.target.ChainID()).WithModule("core.tx")
}

// Submit signs call with a fresh nonce and submits it.
//
// A transaction reported as already known is a success. Transient errors are retried
// with the same nonce and exponential backoff. A nonce-too-low error on a fresh
// submission triggers one nonce re-query, and a second one is returned as a fatal
// SubmissionError. A nonce-too-low error after a transient failure means an earlier
// attempt of the same submission landed, so it is a success.
func (s *TxSubmitter) Submit(ctx context.Context, call []byte, policy EraPolicy) (*TxOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := tracer.Start(ctx, "TxSubmitter.Submit",
		WithChainAttributes(s.target.ChainID()),
		trace.WithAttributes(AttributeKeyDirection.String(policy.String())),
	)
	defer span.End()

	outcome, err := s.submit(ctx, call, policy)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		telemetry.RecordSubmission(ctx, s.target.ChainID(), telemetry.OutcomeFailed)
		return nil, err
	}
	span.SetAttributes(
		AttributeKeyTxHash.String(outcome.TxHash.Hex()),
		AttributeKeyNonce.Int64(int64(outcome.Nonce)),
	)
	if outcome.AlreadyKnown {
		telemetry.RecordSubmission(ctx, s.target.ChainID(), telemetry.OutcomeAlreadyKnown)
	} else {
		telemetry.RecordSubmission(ctx, s.target.ChainID(), telemetry.OutcomeIncluded)
	}
	return outcome, nil
}

func (s *TxSubmitter) submit(ctx context.Context, call []byte, policy EraPolicy) (*TxOutcome, error) {
	logger := s.logger()

	if err := s.checkAlive(ctx); err != nil {
		return nil, err
	}
	if !s.target.Descriptor().AcceptsTransactions() {
		return nil, NewConfigurationError("chain %s does not accept transactions", s.target.Descriptor().Name())
	}

	nonce, err := s.queryNonce(ctx)
	if err != nil {
		return nil, err
	}
	outcome, err := s.submitWithNonce(ctx, call, nonce, policy)
	if !errors.Is(err, ErrNonceTooLow) {
		return outcome, err
	}

	logger.WarnContext(ctx, "nonce too low, re-querying", "nonce", nonce)
	requeried, err := s.queryNonce(ctx)
	if err != nil {
		return nil, err
	}
	outcome, err = s.submitWithNonce(ctx, call, requeried, policy)
	if errors.Is(err, ErrNonceTooLow) {
		return nil, errors.Wrapf(err, "nonce too low again after re-query: first=%d, requeried=%d", nonce, requeried)
	}
	return outcome, err
}

// checkAlive fails once the relay has been stopped by a guard
func (s *TxSubmitter) checkAlive(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	if cause := context.Cause(ctx); cause != nil {
		return errors.Wrap(cause, "refusing to submit")
	}
	return ctx.Err()
}

func (s *TxSubmitter) queryNonce(ctx context.Context) (Nonce, error) {
	var nonce Nonce
	err := retry.Do(func() error {
		var err error
		nonce, err = s.target.AccountNextIndex(ctx, s.signer.AccountID())
		return err
	}, s.retryOptions(ctx, "query nonce")...)
	return nonce, err
}

// submitWithNonce submits the call with a fixed nonce, retrying transient failures.
// An attempt that has started runs to completion even if ctx is cancelled meanwhile;
// no new attempt starts after that.
func (s *TxSubmitter) submitWithNonce(ctx context.Context, call []byte, nonce Nonce, policy EraPolicy) (*TxOutcome, error) {
	logger := s.logger()
	inflight := context.WithoutCancel(ctx)
	var (
		attempts      uint
		transientSeen bool
		outcome       *TxOutcome
	)
	err := retry.Do(func() error {
		attempts++
		if err := s.checkAlive(ctx); err != nil {
			return retry.Unrecoverable(err)
		}
		extrinsic, err := s.sign(inflight, call, nonce, policy)
		if err != nil {
			if IsTransient(err) {
				transientSeen = true
				return err
			}
			return retry.Unrecoverable(err)
		}
		hash, err := s.target.SubmitExtrinsic(inflight, extrinsic)
		switch {
		case err == nil:
			outcome = &TxOutcome{TxHash: hash, Nonce: nonce, Attempts: attempts}
			return nil
		case errors.Is(err, ErrTxAlreadyKnown):
			logger.InfoContext(ctx, "transaction already known", "nonce", nonce, "error", err.Error())
			outcome = &TxOutcome{TxHash: Blake2_256(extrinsic), Nonce: nonce, AlreadyKnown: true, Attempts: attempts}
			return nil
		case errors.Is(err, ErrNonceTooLow) && transientSeen:
			logger.InfoContext(ctx, "nonce consumed by an earlier attempt", "nonce", nonce)
			outcome = &TxOutcome{TxHash: Blake2_256(extrinsic), Nonce: nonce, AlreadyKnown: true, Attempts: attempts}
			return nil
		case IsTransient(err):
			transientSeen = true
			return err
		default:
			return retry.Unrecoverable(err)
		}
	}, s.retryOptions(ctx, "submit extrinsic", "nonce", nonce)...)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "transaction submitted",
		"tx_hash", outcome.TxHash.Hex(),
		"nonce", nonce,
		"already_known", outcome.AlreadyKnown,
		"attempts", outcome.Attempts,
	)
	return outcome, nil
}

func (s *TxSubmitter) sign(ctx context.Context, call []byte, nonce Nonce, policy EraPolicy) ([]byte, error) {
	version, err := s.target.RuntimeVersion(ctx)
	if err != nil {
		return nil, err
	}
	genesis, err := s.target.GenesisHash(ctx)
	if err != nil {
		return nil, err
	}
	param := SignParam{
		SpecVersion:        version.SpecVersion,
		TransactionVersion: version.TransactionVersion,
		GenesisHash:        genesis,
		BirthHash:          genesis,
		Signer:             s.signer,
		Era:                ImmortalEra(),
		Unsigned:           UnsignedTransaction{Call: call, Nonce: nonce, Tip: s.cfg.Tip},
	}
	if policy == EraPolicyMortal {
		best, err := s.target.Header(ctx, nil)
		if err != nil {
			return nil, err
		}
		anchor := best.ID()
		param.Era = MortalEra(anchor, s.cfg.MortalPeriod)
		param.BirthHash = anchor.Hash
		if birth := param.Era.Birth(anchor.Number); birth != anchor.Number {
			if param.BirthHash, err = s.target.BlockHash(ctx, birth); err != nil {
				return nil, err
			}
		}
	}
	extrinsic, err := s.scheme.SignTransaction(ctx, param)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}
	if limit := s.target.Descriptor().MaxExtrinsicSize(); limit > 0 && len(extrinsic) > int(limit) {
		return nil, errors.Mark(
			errors.Newf("extrinsic size %d exceeds the limit %d", len(extrinsic), limit),
			ErrTxRejected,
		)
	}
	return extrinsic, nil
}

func (s *TxSubmitter) retryOptions(ctx context.Context, action string, args ...any) []retry.Option {
	logger := s.logger()
	return []retry.Option{
		retry.Attempts(s.cfg.MaxAttempts),
		retry.Delay(s.cfg.RetryDelay),
		retry.MaxDelay(s.cfg.MaxRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(IsTransient),
		retry.OnRetry(func(n uint, err error) {
			logger.InfoContext(ctx, fmt.Sprintf("retrying to %s", action),
				append([]any{
					"try", n + 1,
					"try_limit", s.cfg.MaxAttempts,
					"error", err.Error(),
				}, args...)...,
			)
		}),
	}
}
