package substrate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFunc func(params []json.RawMessage) (any, *RPCError)

// fakeNode is a websocket JSON-RPC server answering from a method table
type fakeNode struct {
	t        *testing.T
	server   *httptest.Server
	mu       sync.Mutex
	handlers map[string]handlerFunc
	calls    map[string]int
}

func newFakeNode(t *testing.T) *fakeNode {
	n := &fakeNode{t: t, handlers: map[string]handlerFunc{}, calls: map[string]int{}}
	upgrader := websocket.Upgrader{}
	n.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req struct {
				ID     uint64            `json:"id"`
				Method string            `json:"method"`
				Params []json.RawMessage `json:"params"`
			}
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			n.mu.Lock()
			h, ok := n.handlers[req.Method]
			n.calls[req.Method]++
			n.mu.Unlock()
			resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
			if !ok {
				resp["error"] = &RPCError{Code: -32601, Message: "Method not found"}
			} else if result, rpcErr := h(req.Params); rpcErr != nil {
				resp["error"] = rpcErr
			} else {
				resp["result"] = result
			}
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}))
	t.Cleanup(n.server.Close)
	return n
}

func (n *fakeNode) handle(method string, h handlerFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

func (n *fakeNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func (n *fakeNode) url() string {
	return "ws" + strings.TrimPrefix(n.server.URL, "http")
}

func newTestChain(t *testing.T, node *fakeNode) *Chain {
	cfg := ChainConfig{RPCAddr: node.url(), SS58Prefix: 42}
	chain, err := cfg.Build("test", &core.Descriptor{ChainName: "Test", NumberSize: 4})
	require.NoError(t, err)
	require.NoError(t, chain.Init("", 2*time.Second, false))
	t.Cleanup(func() { chain.Close() })
	return chain.(*Chain)
}

func TestChainHeader(t *testing.T) {
	node := newFakeNode(t)
	header := &core.Header{
		ParentHash:     core.Hash{1},
		Number:         300,
		StateRoot:      core.Hash{2},
		ExtrinsicsRoot: core.Hash{3},
	}
	// a PreRuntime item: variant 6, engine id "aura", 1 byte payload
	item := []byte{6, 'a', 'u', 'r', 'a', 4, 0xff}
	header.Digest = append(core.EncodeCompact(1), item...)

	node.handle("chain_getHeader", func(params []json.RawMessage) (any, *RPCError) {
		assert.Len(t, params, 1)
		return map[string]any{
			"parentHash":     header.ParentHash.Hex(),
			"number":         "0x12c",
			"stateRoot":      header.StateRoot.Hex(),
			"extrinsicsRoot": header.ExtrinsicsRoot.Hex(),
			"digest":         map[string]any{"logs": []string{core.EncodeHex(item)}},
		}, nil
	})

	chain := newTestChain(t, node)
	got, err := chain.Header(context.TODO(), nil)
	require.NoError(t, err)
	require.Equal(t, header, got)
	require.Equal(t, header.Hash(), got.Hash())
}

func TestChainStorage(t *testing.T) {
	node := newFakeNode(t)
	key := core.StorageValueKey("Timestamp", "Now")
	node.handle("state_getStorage", func(params []json.RawMessage) (any, *RPCError) {
		var k string
		assert.NoError(t, json.Unmarshal(params[0], &k))
		if k == key.Hex() {
			return "0x0102", nil
		}
		return nil, nil
	})

	chain := newTestChain(t, node)
	value, err := chain.Storage(context.TODO(), key, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, value)

	value, err = chain.Storage(context.TODO(), core.StorageValueKey("System", "Number"), nil)
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestChainGenesisHashIsCached(t *testing.T) {
	node := newFakeNode(t)
	genesis := core.Hash{0xaa}
	node.handle("chain_getBlockHash", func(params []json.RawMessage) (any, *RPCError) {
		return genesis.Hex(), nil
	})

	chain := newTestChain(t, node)
	for i := 0; i < 3; i++ {
		got, err := chain.GenesisHash(context.TODO())
		require.NoError(t, err)
		require.Equal(t, genesis, got)
	}
	require.Equal(t, 1, node.count("chain_getBlockHash"))
}

func TestChainAccountNextIndex(t *testing.T) {
	node := newFakeNode(t)
	alice := mustAccount(t, "0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d")
	node.handle("system_accountNextIndex", func(params []json.RawMessage) (any, *RPCError) {
		var address string
		assert.NoError(t, json.Unmarshal(params[0], &address))
		assert.Equal(t, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", address)
		return 7, nil
	})

	chain := newTestChain(t, node)
	nonce, err := chain.AccountNextIndex(context.TODO(), alice)
	require.NoError(t, err)
	require.Equal(t, core.Nonce(7), nonce)
}

func TestChainSubmitExtrinsicErrors(t *testing.T) {
	cases := []struct {
		name   string
		rpcErr *RPCError
		class  error
	}{
		{"stale", &RPCError{Code: 1010, Message: "Invalid Transaction", Data: json.RawMessage(`"Transaction is outdated"`)}, core.ErrNonceTooLow},
		{"bad proof", &RPCError{Code: 1010, Message: "Invalid Transaction", Data: json.RawMessage(`"Transaction has a bad signature"`)}, core.ErrTxRejected},
		{"already imported", &RPCError{Code: 1013, Message: "Transaction Already Imported"}, core.ErrTxAlreadyKnown},
		{"priority too low", &RPCError{Code: 1014, Message: "Priority is too low"}, core.ErrTxAlreadyKnown},
		{"pool full", &RPCError{Code: 1016, Message: "Immediately Dropped"}, core.ErrPoolFull},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			node := newFakeNode(t)
			node.handle("author_submitExtrinsic", func([]json.RawMessage) (any, *RPCError) {
				return nil, c.rpcErr
			})
			chain := newTestChain(t, node)
			_, err := chain.SubmitExtrinsic(context.TODO(), []byte{0})
			require.Error(t, err)
			require.True(t, errors.Is(err, c.class), "%v", err)
			require.True(t, core.IsSubmissionError(err))
		})
	}
}

func TestChainConnectionError(t *testing.T) {
	node := newFakeNode(t)
	url := node.url()
	node.server.Close()

	cfg := ChainConfig{RPCAddr: url}
	chain, err := cfg.Build("test", &core.Descriptor{ChainName: "Test", NumberSize: 4})
	require.NoError(t, err)
	require.NoError(t, chain.Init("", time.Second, false))
	defer chain.Close()

	_, err = chain.FinalizedHead(context.TODO())
	require.Error(t, err)
	require.True(t, core.IsTransient(err))
}

func TestChainReconnects(t *testing.T) {
	node := newFakeNode(t)
	finalized := core.Hash{0x11}
	node.handle("chain_getFinalizedHead", func([]json.RawMessage) (any, *RPCError) {
		return finalized.Hex(), nil
	})
	chain := newTestChain(t, node)

	got, err := chain.FinalizedHead(context.TODO())
	require.NoError(t, err)
	require.Equal(t, finalized, got)

	node.server.CloseClientConnections()
	require.Eventually(t, func() bool {
		got, err := chain.FinalizedHead(context.TODO())
		return err == nil && got == finalized
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWSClientDropKeepsNewerConnectionCalls(t *testing.T) {
	node := newFakeNode(t)
	release := make(chan struct{})
	node.handle("system_health", func([]json.RawMessage) (any, *RPCError) {
		return map[string]any{"peers": 3}, nil
	})
	node.handle("author_pendingExtrinsics", func([]json.RawMessage) (any, *RPCError) {
		<-release
		return []string{}, nil
	})
	client := newWSClient(node.url(), 5*time.Second)
	defer client.Close()

	require.NoError(t, client.Call(context.TODO(), nil, "system_health"))
	client.mu.Lock()
	old := client.conn
	client.conn = nil
	client.mu.Unlock()
	stale := make(chan rpcResult, 1)
	old.pending.Store(0, stale)

	done := make(chan error, 1)
	go func() {
		var pending []string
		done <- client.Call(context.TODO(), &pending, "author_pendingExtrinsics")
	}()
	require.Eventually(t, func() bool {
		return node.count("author_pendingExtrinsics") == 1
	}, 5*time.Second, 10*time.Millisecond)

	client.dropConnection(old, errors.New("read failed"))
	res := <-stale
	require.True(t, core.IsTransient(res.err), "%v", res.err)

	close(release)
	require.NoError(t, <-done)
}

func TestChainConfigValidate(t *testing.T) {
	cases := []struct {
		name  string
		cfg   ChainConfig
		valid bool
	}{
		{"ws", ChainConfig{RPCAddr: "ws://localhost:9944"}, true},
		{"wss", ChainConfig{RPCAddr: "wss://westend-rpc.polkadot.io", SS58Prefix: 42}, true},
		{"empty", ChainConfig{}, false},
		{"http", ChainConfig{RPCAddr: "http://localhost:9933"}, false},
		{"prefix", ChainConfig{RPCAddr: "ws://localhost:9944", SS58Prefix: 1 << 14}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if c.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				require.True(t, errors.Is(err, core.ErrConfiguration))
			}
		})
	}
}
