package core

import (
	"context"
	"time"

	"github.com/hyperledger-labs/yui-bridge-relayer/log"
)

// RelayItemKind is the kind of item a relay loop processes
type RelayItemKind string

const (
	RelayItemHeader   RelayItemKind = "header"
	RelayItemParaHead RelayItemKind = "para_head"
	RelayItemInit     RelayItemKind = "init"
)

// RelayResult is what happened to a processed item
type RelayResult string

const (
	RelayResultSubmitted RelayResult = "submitted"
	RelayResultSkipped   RelayResult = "skipped"
	RelayResultFailed    RelayResult = "failed"
)

// RelayStatus is the structured status emitted for each processed item
type RelayStatus struct {
	Bridge      string        `json:"bridge"`
	Kind        RelayItemKind `json:"kind"`
	Result      RelayResult   `json:"result"`
	ParaID      *ParaID       `json:"para_id,omitempty"`
	BlockNumber BlockNumber   `json:"block_number"`
	BlockHash   Hash          `json:"block_hash"`
	TxHash      *Hash         `json:"tx_hash,omitempty"`
	Reason      string        `json:"reason,omitempty"`
	Time        time.Time     `json:"time"`
}

// StatusReporter receives one status per processed item
type StatusReporter interface {
	Report(ctx context.Context, status RelayStatus)
}

// LogStatusReporter writes statuses to the relay logger
type LogStatusReporter struct{}

var _ StatusReporter = LogStatusReporter{}

func (LogStatusReporter) Report(ctx context.Context, st RelayStatus) {
	logger := log.GetLogger().WithBridge(st.Bridge).WithModule("core.status")
	args := []any{
		"kind", st.Kind,
		"result", st.Result,
		"block_number", st.BlockNumber,
		"block_hash", st.BlockHash.Hex(),
	}
	if st.ParaID != nil {
		args = append(args, "para_id", *st.ParaID)
	}
	if st.TxHash != nil {
		args = append(args, "tx_hash", st.TxHash.Hex())
	}
	if st.Reason != "" {
		args = append(args, "reason", st.Reason)
	}
	if st.Result == RelayResultFailed {
		logger.WarnContext(ctx, "relay status", args...)
	} else {
		logger.InfoContext(ctx, "relay status", args...)
	}
}

// StatusReporters fans a status out to several reporters
type StatusReporters []StatusReporter

func (rs StatusReporters) Report(ctx context.Context, st RelayStatus) {
	for _, r := range rs {
		r.Report(ctx, st)
	}
}

func newStatus(bridge string, kind RelayItemKind, result RelayResult, id HeaderID) RelayStatus {
	return RelayStatus{
		Bridge:      bridge,
		Kind:        kind,
		Result:      result,
		BlockNumber: id.Number,
		BlockHash:   id.Hash,
		Time:        time.Now(),
	}
}

func (st RelayStatus) withTx(outcome *TxOutcome) RelayStatus {
	if outcome != nil {
		h := outcome.TxHash
		st.TxHash = &h
	}
	return st
}

func (st RelayStatus) withReason(reason string) RelayStatus {
	st.Reason = reason
	return st
}

func (st RelayStatus) withParaID(id ParaID) RelayStatus {
	st.ParaID = &id
	return st
}
