package status

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/log"
	"github.com/nats-io/nats.go"
)

// DefaultSubject returns the subject statuses of a bridge are published to
func DefaultSubject(bridge string) string {
	return fmt.Sprintf("relayer.%s.status", bridge)
}

// NatsReporter publishes every relay status as a JSON message. Publishing is best
// effort: failures are logged and never reach the relay loops.
type NatsReporter struct {
	conn    *nats.Conn
	subject string
}

var _ core.StatusReporter = (*NatsReporter)(nil)

// NewNatsReporter connects to the given NATS endpoints. An empty subject defaults to
// DefaultSubject(bridge). The connection is retried in the background if the server
// is not reachable yet.
func NewNatsReporter(url, subject, bridge string) (*NatsReporter, error) {
	if subject == "" {
		subject = DefaultSubject(bridge)
	}
	logger := log.GetLogger().WithBridge(bridge).WithModule("status.nats")
	options := []nats.Option{
		nats.Name(fmt.Sprintf("relayer-%s", bridge)),
		nats.ReconnectWait(time.Second / 5),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.Timeout(5 * time.Second),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Error("NATS error", err)
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected, will try reconnecting", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	conn, err := nats.Connect(url, options...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to NATS at %s", url)
	}
	return &NatsReporter{conn: conn, subject: subject}, nil
}

func (r *NatsReporter) Subject() string {
	return r.subject
}

func (r *NatsReporter) Report(ctx context.Context, st core.RelayStatus) {
	bz, err := json.Marshal(st)
	if err != nil {
		log.GetLogger().ErrorContext(ctx, "failed to encode relay status", err)
		return
	}
	if err := r.conn.Publish(r.subject, bz); err != nil {
		log.GetLogger().WithBridge(st.Bridge).ErrorContext(ctx, "failed to publish relay status", err, "subject", r.subject)
	}
}

// Close flushes pending messages and closes the connection
func (r *NatsReporter) Close() error {
	return r.conn.Drain()
}
