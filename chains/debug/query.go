package debug

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
)

func logger(chain *Chain) *log.RelayLogger {
	return log.GetLogger().WithChain(chain.ChainID()).WithModule("debug")
}

// debugFakeLost fails reads of the state of blocks older than the threshold below
// the best block, like a pruned node does
func debugFakeLost(ctx context.Context, chain *Chain, at *core.Hash) error {
	env := fmt.Sprintf("DEBUG_RELAYER_MISSING_TRIE_NODE_HEIGHT_%s", chain.ChainID())
	val, ok := os.LookupEnv(env)
	if !ok || at == nil {
		return nil
	}
	threshold, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		logger(chain).Error("malformed env", err, "env", env, "value", val)
		return nil
	}

	queried, err := chain.OriginChain.Header(ctx, at)
	if err != nil {
		return err
	}
	best, err := chain.OriginChain.Header(ctx, nil)
	if err != nil {
		return err
	}
	if uint64(queried.Number)+threshold < uint64(best.Number) {
		return errors.Newf("fake missing trie node: %d + %d < %d", queried.Number, threshold, best.Number)
	}
	return nil
}

// debugFakeNoJustification hides the justifications of blocks whose number is not
// a multiple of the given interval
func debugFakeNoJustification(chain *Chain, number core.BlockNumber) bool {
	env := fmt.Sprintf("DEBUG_RELAYER_JUSTIFICATION_INTERVAL_%s", chain.ChainID())
	val, ok := os.LookupEnv(env)
	if !ok {
		return false
	}
	interval, err := strconv.ParseUint(val, 10, 64)
	if err != nil || interval == 0 {
		logger(chain).Error("malformed env", err, "env", env, "value", val)
		return false
	}
	return uint64(number)%interval != 0
}

// submitFaults maps the values of DEBUG_RELAYER_SUBMIT_FAILURE_<chain-id> to the
// error the transaction pool is faked to return
var submitFaults = map[string]error{
	"connection":    errors.Mark(errors.New("fake connection reset"), core.ErrConnection),
	"pool-full":     errors.Mark(errors.New("fake pool full"), core.ErrPoolFull),
	"nonce-too-low": errors.Mark(errors.New("fake stale transaction"), core.ErrNonceTooLow),
	"already-known": errors.Mark(errors.New("fake already imported"), core.ErrTxAlreadyKnown),
	"rejected":      errors.Mark(errors.New("fake invalid transaction"), core.ErrTxRejected),
}

func debugFakeSubmitFailure(chain *Chain) error {
	env := fmt.Sprintf("DEBUG_RELAYER_SUBMIT_FAILURE_%s", chain.ChainID())
	val, ok := os.LookupEnv(env)
	if !ok {
		return nil
	}
	err, ok := submitFaults[val]
	if !ok {
		logger(chain).Error("malformed env", errors.Newf("unknown fault %q", val), "env", env)
		return nil
	}
	return err
}

func (c *Chain) Storage(ctx context.Context, key core.StorageKey, at *core.Hash) ([]byte, error) {
	if err := debugFakeLost(ctx, c, at); err != nil {
		return nil, err
	}
	return c.OriginChain.Storage(ctx, key, at)
}

func (c *Chain) ReadProof(ctx context.Context, keys []core.StorageKey, at core.Hash) ([][]byte, error) {
	if err := debugFakeLost(ctx, c, &at); err != nil {
		return nil, err
	}
	return c.OriginChain.ReadProof(ctx, keys, at)
}

func (c *Chain) SubmitExtrinsic(ctx context.Context, extrinsic []byte) (core.Hash, error) {
	if err := debugFakeSubmitFailure(c); err != nil {
		return core.Hash{}, err
	}
	return c.OriginChain.SubmitExtrinsic(ctx, extrinsic)
}
