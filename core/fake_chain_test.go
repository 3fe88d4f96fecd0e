package core_test

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

// fakeChain is an in-memory core.Chain with a linear history
type fakeChain struct {
	id         string
	descriptor core.ChainDescriptor

	mu         sync.Mutex
	headers    []*core.Header
	storage    map[string][]byte
	stateCalls map[string][]byte
	nonce      core.Nonce
	submitted  [][]byte
	submitErrs []error
	proofKeys  [][]core.StorageKey
}

var _ core.Chain = (*fakeChain)(nil)

func newFakeChain(id string, descriptor core.ChainDescriptor, best core.BlockNumber) *fakeChain {
	c := &fakeChain{
		id:         id,
		descriptor: descriptor,
		storage:    make(map[string][]byte),
		stateCalls: make(map[string][]byte),
	}
	c.extend(best)
	return c
}

// extend appends headers until the best one has the given number
func (c *fakeChain) extend(best core.BlockNumber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for n := core.BlockNumber(len(c.headers)); n <= best; n++ {
		h := &core.Header{Number: n, StateRoot: core.Blake2_256([]byte(fmt.Sprintf("%s-%d", c.id, n)))}
		if n > 0 {
			h.ParentHash = c.headers[n-1].Hash()
		}
		c.headers = append(c.headers, h)
	}
}

func (c *fakeChain) headerID(number core.BlockNumber) core.HeaderID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.headers[number].ID()
}

func (c *fakeChain) setStorage(key core.StorageKey, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storage[string(key)] = value
}

func (c *fakeChain) setStateCall(method string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateCalls[method] = value
}

func (c *fakeChain) failSubmissions(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitErrs = append(c.submitErrs, errs...)
}

func (c *fakeChain) submissions() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.submitted...)
}

func (c *fakeChain) ChainID() string {
	return c.id
}

func (c *fakeChain) Descriptor() core.ChainDescriptor {
	return c.descriptor
}

func (c *fakeChain) Init(string, time.Duration, bool) error {
	return nil
}

func (c *fakeChain) Close() error {
	return nil
}

func (c *fakeChain) Header(_ context.Context, at *core.Hash) (*core.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if at == nil {
		return c.headers[len(c.headers)-1], nil
	}
	for _, h := range c.headers {
		if h.Hash() == *at {
			return h, nil
		}
	}
	return nil, errors.Newf("header %s not found", at)
}

func (c *fakeChain) BlockHash(_ context.Context, number core.BlockNumber) (core.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(number) >= len(c.headers) {
		return core.Hash{}, errors.Newf("block #%d not found", number)
	}
	return c.headers[number].Hash(), nil
}

func (c *fakeChain) FinalizedHead(ctx context.Context) (core.Hash, error) {
	best, _ := c.Header(ctx, nil)
	return best.Hash(), nil
}

func (c *fakeChain) GenesisHash(ctx context.Context) (core.Hash, error) {
	return c.BlockHash(ctx, 0)
}

func (c *fakeChain) RuntimeVersion(context.Context) (*core.RuntimeVersion, error) {
	version := c.descriptor.RuntimeVersion()
	return &version, nil
}

func (c *fakeChain) Storage(_ context.Context, key core.StorageKey, _ *core.Hash) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.storage[string(key)], nil
}

func (c *fakeChain) StateCall(_ context.Context, method string, _ []byte, _ *core.Hash) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bz, ok := c.stateCalls[method]
	if !ok {
		return nil, errors.Newf("unknown runtime api: %s", method)
	}
	return bz, nil
}

func (c *fakeChain) ReadProof(_ context.Context, keys []core.StorageKey, _ core.Hash) ([][]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proofKeys = append(c.proofKeys, keys)
	return [][]byte{[]byte("trie node")}, nil
}

func (c *fakeChain) ProveFinality(context.Context, core.BlockNumber) ([]byte, error) {
	return nil, nil
}

func (c *fakeChain) AccountNextIndex(context.Context, core.AccountID) (core.Nonce, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonce, nil
}

func (c *fakeChain) SubmitExtrinsic(_ context.Context, extrinsic []byte) (core.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.submitErrs) > 0 {
		err := c.submitErrs[0]
		c.submitErrs = c.submitErrs[1:]
		if err != nil {
			return core.Hash{}, err
		}
	}
	c.submitted = append(c.submitted, extrinsic)
	c.nonce++
	return core.Blake2_256(extrinsic), nil
}

// encodeOptionalHeaderID is the result of a best finalized header runtime api of a
// chain with u32 block numbers
func encodeOptionalHeaderID(id *core.HeaderID) []byte {
	if id == nil {
		return []byte{0}
	}
	bz := binary.LittleEndian.AppendUint32([]byte{1}, uint32(id.Number))
	return append(bz, id.Hash[:]...)
}

type recordingReporter struct {
	mu       sync.Mutex
	statuses []core.RelayStatus
}

func (r *recordingReporter) Report(_ context.Context, st core.RelayStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, st)
}

func (r *recordingReporter) results() []core.RelayResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]core.RelayResult, 0, len(r.statuses))
	for _, st := range r.statuses {
		results = append(results, st.Result)
	}
	return results
}

func (r *recordingReporter) last() core.RelayStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[len(r.statuses)-1]
}

type testEncoder struct {
	mu      sync.Mutex
	paraIDs [][]core.ParaID
}

func (e *testEncoder) EncodeInitBridge(data *core.InitializationData) ([]byte, error) {
	return append([]byte("init:"), data.Encoded...), nil
}

func (e *testEncoder) EncodeSubmitFinalityProof(proof *core.FinalityProof) ([]byte, error) {
	return append([]byte("finality:"), proof.Header.Encode()...), nil
}

func (e *testEncoder) EncodeSubmitParachainHeads(relayBlock core.HeaderID, paraIDs []core.ParaID, proof [][]byte) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paraIDs = append(e.paraIDs, paraIDs)
	return []byte(fmt.Sprintf("heads:%d:%v:%d", relayBlock.Number, paraIDs, len(proof))), nil
}

// newTestSubmitter returns a submitter whose scheme records every signed payload
func newTestSubmitter(target core.Chain) (*core.TxSubmitter, *[]core.SignParam) {
	var (
		mu     sync.Mutex
		signed []core.SignParam
	)
	scheme := core.SignSchemeFunc(func(_ context.Context, param core.SignParam) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		signed = append(signed, param)
		return append(binary.LittleEndian.AppendUint64(nil, uint64(param.Unsigned.Nonce)), param.Unsigned.Call...), nil
	})
	submitter := core.NewTxSubmitter(target, newTestSigner(), scheme, core.TxSubmitterConfig{
		MaxAttempts:   2,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: time.Millisecond,
	})
	return submitter, &signed
}
