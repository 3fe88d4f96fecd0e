package substrate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
	"github.com/puzpuzpuz/xsync/v4"
)

const jsonrpcVersion = "2.0"

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is an error object returned by the node
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("rpc error %d: %s: %s", e.Code, e.Message, string(e.Data))
}

type rpcResult struct {
	resp rpcResponse
	err  error
}

// wsConn is one websocket connection and the calls waiting for its responses
type wsConn struct {
	*websocket.Conn
	pending *xsync.Map[uint64, chan rpcResult]
	dropped atomic.Bool
}

// wsClient is a JSON-RPC client over one websocket connection. The connection is
// dialed on first use and redialed after a transport failure.
type wsClient struct {
	endpoint string
	timeout  time.Duration

	mu   sync.Mutex
	conn *wsConn

	nextID atomic.Uint64
	closed atomic.Bool
}

func newWSClient(endpoint string, timeout time.Duration) *wsClient {
	return &wsClient{
		endpoint: endpoint,
		timeout:  timeout,
	}
}

func (c *wsClient) logger() *log.RelayLogger {
	return log.GetLogger().WithModule("substrate.rpc")
}

// connection returns the live connection, dialing a new one if needed. It must be
// called with c.mu held.
func (c *wsClient) connection(ctx context.Context) (*wsConn, error) {
	if c.closed.Load() {
		return nil, errors.Mark(errors.New("client is closed"), core.ErrConnection)
	}
	if c.conn != nil {
		return c.conn, nil
	}
	dialer := websocket.Dialer{HandshakeTimeout: c.timeout}
	conn, resp, err := dialer.DialContext(ctx, c.endpoint, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, core.NewConnectionError(err, "failed to dial %s", c.endpoint)
	}
	c.conn = &wsConn{Conn: conn, pending: xsync.NewMap[uint64, chan rpcResult]()}
	go c.readLoop(c.conn)
	return c.conn, nil
}

func (c *wsClient) readLoop(conn *wsConn) {
	for {
		var resp rpcResponse
		if err := conn.ReadJSON(&resp); err != nil {
			c.dropConnection(conn, err)
			return
		}
		if ch, ok := conn.pending.LoadAndDelete(resp.ID); ok {
			ch <- rpcResult{resp: resp}
		}
	}
}

// dropConnection fails the pending calls of conn with a connection error. Calls
// sent over a newer connection are left alone.
func (c *wsClient) dropConnection(conn *wsConn, cause error) {
	if conn.dropped.Swap(true) {
		return
	}
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()

	if !c.closed.Load() {
		c.logger().Warn("websocket connection lost", "endpoint", c.endpoint, "error", cause.Error())
	}
	err := core.NewConnectionError(cause, "connection to %s lost", c.endpoint)
	conn.pending.Range(func(id uint64, ch chan rpcResult) bool {
		if _, ok := conn.pending.LoadAndDelete(id); ok {
			ch <- rpcResult{err: err}
		}
		return true
	})
}

// Call invokes method and decodes its result into result, which may be nil
func (c *wsClient) Call(ctx context.Context, result any, method string, params ...any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if params == nil {
		params = []any{}
	}
	id := c.nextID.Add(1)
	ch := make(chan rpcResult, 1)

	c.mu.Lock()
	conn, err := c.connection(ctx)
	if err == nil {
		// registered under c.mu so that a concurrent drop of conn always sees it
		conn.pending.Store(id, ch)
		defer conn.pending.Delete(id)
		if deadline, ok := ctx.Deadline(); ok {
			_ = conn.SetWriteDeadline(deadline)
		}
		err = conn.WriteJSON(rpcRequest{JSONRPC: jsonrpcVersion, ID: id, Method: method, Params: params})
		if err != nil {
			err = core.NewConnectionError(err, "failed to send %s", method)
		}
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return res.err
		}
		if res.resp.Error != nil {
			return classifyRPCError(method, res.resp.Error)
		}
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(res.resp.Result, result); err != nil {
			return errors.Wrapf(err, "failed to decode the result of %s", method)
		}
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return core.NewConnectionError(ctx.Err(), "%s timed out", method)
		}
		return ctx.Err()
	}
}

func (c *wsClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}
