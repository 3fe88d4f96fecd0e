package status

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNatsReporter(t *testing.T) {
	opts := test.DefaultTestOptions
	opts.Port = -1
	s := test.RunServer(&opts)
	defer s.Shutdown()

	sub, err := nats.Connect(s.ClientURL())
	require.NoError(t, err)
	defer sub.Close()
	msgs := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("relayer.rialto-millau.status", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	reporter, err := NewNatsReporter(s.ClientURL(), "", "rialto-millau")
	require.NoError(t, err)
	defer reporter.Close()
	assert.Equal(t, "relayer.rialto-millau.status", reporter.Subject())

	paraID := core.ParaID(2000)
	reporter.Report(context.TODO(), core.RelayStatus{
		Bridge:      "rialto-millau",
		Kind:        core.RelayItemParaHead,
		Result:      core.RelayResultSubmitted,
		ParaID:      &paraID,
		BlockNumber: 10,
		BlockHash:   core.Hash{1},
		Time:        time.Unix(0, 0).UTC(),
	})

	select {
	case msg := <-msgs:
		var got core.RelayStatus
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, core.RelayItemParaHead, got.Kind)
		assert.Equal(t, core.RelayResultSubmitted, got.Result)
		assert.Equal(t, paraID, *got.ParaID)
		assert.Equal(t, core.BlockNumber(10), got.BlockNumber)
		assert.Equal(t, core.Hash{1}, got.BlockHash)
	case <-time.After(5 * time.Second):
		t.Fatal("status was not published")
	}
}
