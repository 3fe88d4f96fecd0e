package substrate

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
)

// Chain is a core.Chain backed by the JSON-RPC api of a substrate node
type Chain struct {
	config     ChainConfig
	chainID    string
	descriptor core.ChainDescriptor

	client *wsClient

	genesisMu sync.Mutex
	genesis   *core.Hash
}

var _ core.Chain = (*Chain)(nil)

// NewChain returns a new Chain. No connection is made until the first query.
func NewChain(config ChainConfig, chainID string, descriptor core.ChainDescriptor) *Chain {
	return &Chain{
		config:     config,
		chainID:    chainID,
		descriptor: descriptor,
	}
}

func (c *Chain) ChainID() string {
	return c.chainID
}

func (c *Chain) Descriptor() core.ChainDescriptor {
	return c.descriptor
}

func (c *Chain) Config() ChainConfig {
	return c.config
}

func (c *Chain) Init(homePath string, timeout time.Duration, debug bool) error {
	c.client = newWSClient(c.config.RPCAddr, timeout)
	if debug {
		log.GetLogger().WithChain(c.chainID).Debug("substrate chain initialized", "rpc_addr", c.config.RPCAddr, "descriptor", c.descriptor.Name())
	}
	return nil
}

func (c *Chain) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Chain) call(ctx context.Context, result any, method string, params ...any) error {
	if c.client == nil {
		return errors.Newf("chain %s is not initialized", c.chainID)
	}
	return c.client.Call(ctx, result, method, params...)
}

type rpcHeader struct {
	ParentHash     core.Hash `json:"parentHash"`
	Number         string    `json:"number"`
	StateRoot      core.Hash `json:"stateRoot"`
	ExtrinsicsRoot core.Hash `json:"extrinsicsRoot"`
	Digest         struct {
		Logs []string `json:"logs"`
	} `json:"digest"`
}

func (h *rpcHeader) toHeader() (*core.Header, error) {
	number, err := parseHexNumber(h.Number)
	if err != nil {
		return nil, errors.Wrap(err, "invalid header number")
	}
	digest := core.EncodeCompact(uint64(len(h.Digest.Logs)))
	for i, item := range h.Digest.Logs {
		bz, err := core.DecodeHex(item)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid digest item %d", i)
		}
		digest = append(digest, bz...)
	}
	return &core.Header{
		ParentHash:     h.ParentHash,
		Number:         core.BlockNumber(number),
		StateRoot:      h.StateRoot,
		ExtrinsicsRoot: h.ExtrinsicsRoot,
		Digest:         digest,
	}, nil
}

func parseHexNumber(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
}

func hashParam(at *core.Hash) any {
	if at == nil {
		return nil
	}
	return at.Hex()
}

func (c *Chain) Header(ctx context.Context, at *core.Hash) (*core.Header, error) {
	var res *rpcHeader
	if err := c.call(ctx, &res, "chain_getHeader", hashParam(at)); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.Newf("header not found: %v", hashParam(at))
	}
	return res.toHeader()
}

func (c *Chain) BlockHash(ctx context.Context, number core.BlockNumber) (core.Hash, error) {
	var res *core.Hash
	if err := c.call(ctx, &res, "chain_getBlockHash", uint64(number)); err != nil {
		return core.Hash{}, err
	}
	if res == nil {
		return core.Hash{}, errors.Newf("block #%d not found", number)
	}
	return *res, nil
}

func (c *Chain) FinalizedHead(ctx context.Context) (core.Hash, error) {
	var res core.Hash
	if err := c.call(ctx, &res, "chain_getFinalizedHead"); err != nil {
		return core.Hash{}, err
	}
	return res, nil
}

func (c *Chain) GenesisHash(ctx context.Context) (core.Hash, error) {
	c.genesisMu.Lock()
	defer c.genesisMu.Unlock()
	if c.genesis != nil {
		return *c.genesis, nil
	}
	hash, err := c.BlockHash(ctx, 0)
	if err != nil {
		return core.Hash{}, err
	}
	c.genesis = &hash
	return hash, nil
}

func (c *Chain) RuntimeVersion(ctx context.Context) (*core.RuntimeVersion, error) {
	var res core.RuntimeVersion
	if err := c.call(ctx, &res, "state_getRuntimeVersion"); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Chain) Storage(ctx context.Context, key core.StorageKey, at *core.Hash) ([]byte, error) {
	var res *string
	if err := c.call(ctx, &res, "state_getStorage", key.Hex(), hashParam(at)); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	return core.DecodeHex(*res)
}

func (c *Chain) StateCall(ctx context.Context, method string, data []byte, at *core.Hash) ([]byte, error) {
	var res string
	if err := c.call(ctx, &res, "state_call", method, core.EncodeHex(data), hashParam(at)); err != nil {
		return nil, err
	}
	return core.DecodeHex(res)
}

type readProof struct {
	At    core.Hash `json:"at"`
	Proof []string  `json:"proof"`
}

func (c *Chain) ReadProof(ctx context.Context, keys []core.StorageKey, at core.Hash) ([][]byte, error) {
	params := make([]string, len(keys))
	for i, k := range keys {
		params[i] = k.Hex()
	}
	var res readProof
	if err := c.call(ctx, &res, "state_getReadProof", params, at.Hex()); err != nil {
		return nil, err
	}
	nodes := make([][]byte, len(res.Proof))
	for i, node := range res.Proof {
		bz, err := core.DecodeHex(node)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid proof node %d", i)
		}
		nodes[i] = bz
	}
	return nodes, nil
}

func (c *Chain) ProveFinality(ctx context.Context, number core.BlockNumber) ([]byte, error) {
	var res *string
	if err := c.call(ctx, &res, "grandpa_proveFinality", uint64(number)); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	return core.DecodeHex(*res)
}

func (c *Chain) AccountNextIndex(ctx context.Context, account core.AccountID) (core.Nonce, error) {
	var res json.Number
	address := EncodeSS58(account, c.config.SS58Prefix)
	if err := c.call(ctx, &res, "system_accountNextIndex", address); err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(res.String(), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid nonce: %s", res)
	}
	return core.Nonce(n), nil
}

func (c *Chain) SubmitExtrinsic(ctx context.Context, extrinsic []byte) (core.Hash, error) {
	var res core.Hash
	if err := c.call(ctx, &res, "author_submitExtrinsic", core.EncodeHex(extrinsic)); err != nil {
		return core.Hash{}, err
	}
	return res, nil
}

// SignScheme returns the extrinsic format accepted by this chain
func (c *Chain) SignScheme() core.SignScheme {
	return NewExtrinsicBuilder(c.config.RawAddress)
}
