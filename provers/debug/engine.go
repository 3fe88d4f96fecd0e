package debug

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
)

// lookupChainEnv returns the argument of a `<chain name> <arg>` env if it targets chain
func lookupChainEnv(env, chain string) (string, bool) {
	val, ok := os.LookupEnv(env)
	if !ok {
		return "", false
	}
	s := strings.SplitN(val, " ", 2)
	if len(s) != 2 {
		log.GetLogger().WithModule("debug").Error("malformed env: <chain name> <space> <arg>", nil, "env", env, "value", val)
		return "", false
	}
	if s[0] != chain {
		return "", false
	}
	return s[1], true
}

// Engine forwards to the origin engine and injects the faults configured by
// environment variables
type Engine struct {
	chain        string
	originEngine core.FinalityEngine
}

var _ core.FinalityEngine = (*Engine)(nil)

func NewEngine(chain string, originEngine core.FinalityEngine) *Engine {
	log.GetLogger().WithModule("debug").Info("debug engine is initialized", "chain", chain, "origin", originEngine.Name())
	return &Engine{chain: chain, originEngine: originEngine}
}

func (e *Engine) OriginEngine() core.FinalityEngine {
	return e.originEngine
}

func (e *Engine) Name() string {
	return e.originEngine.Name()
}

// BestFinalized lags the best finalized header by DEBUG_RELAYER_FINALITY_LAG blocks
func (e *Engine) BestFinalized(ctx context.Context, source core.ChainReader) (*core.HeaderID, error) {
	best, err := e.originEngine.BestFinalized(ctx, source)
	if err != nil || best == nil {
		return best, err
	}
	val, ok := lookupChainEnv("DEBUG_RELAYER_FINALITY_LAG", e.chain)
	if !ok {
		return best, nil
	}
	lag, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return best, nil
	}
	if uint64(best.Number) < lag {
		return nil, nil
	}
	header, err := core.HeaderByNumber(ctx, source, best.Number-core.BlockNumber(lag))
	if err != nil {
		return nil, errors.Mark(err, core.ErrSourceUnreachable)
	}
	id := header.ID()
	return &id, nil
}

// FinalityProofFor waits DEBUG_RELAYER_PROOF_WAIT seconds before building the proof,
// and fails with ErrProofUnavailable when DEBUG_RELAYER_PROOF_UNAVAILABLE is set
func (e *Engine) FinalityProofFor(ctx context.Context, source core.ChainReader, id core.HeaderID) (*core.FinalityProof, error) {
	if val, ok := lookupChainEnv("DEBUG_RELAYER_PROOF_WAIT", e.chain); ok {
		secs, _ := strconv.Atoi(val)
		log.GetLogger().WithModule("debug").Info("waiting before building a finality proof", "chain", e.chain, "header", id.String(), "seconds", secs)
		select {
		case <-time.After(time.Duration(secs) * time.Second):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if val, ok := lookupChainEnv("DEBUG_RELAYER_PROOF_UNAVAILABLE", e.chain); ok {
		return nil, errors.Mark(errors.Newf("fake unavailable proof: %s", val), core.ErrProofUnavailable)
	}
	return e.originEngine.FinalityProofFor(ctx, source, id)
}

func (e *Engine) InitializationData(ctx context.Context, source core.ChainReader) (*core.InitializationData, error) {
	return e.originEngine.InitializationData(ctx, source)
}

func (e *Engine) VerifyProof(header *core.Header, proof *core.FinalityProof) error {
	return e.originEngine.VerifyProof(header, proof)
}
