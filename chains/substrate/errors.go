package substrate

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

// Transaction pool error codes of the author rpc
const (
	codeInvalidTransaction = 1010
	codeUnknownTransaction = 1011
	codeTemporarilyBanned  = 1012
	codeAlreadyImported    = 1013
	codePriorityTooLow     = 1014
	codeCyclicDependency   = 1015
	codeImmediatelyDropped = 1016
)

// classifyRPCError maps a node error to one of the error classes of the relayer
func classifyRPCError(method string, e *RPCError) error {
	err := errors.Wrapf(e, "%s failed", method)
	mark := func(class error) error {
		return errors.Mark(errors.Mark(err, core.ErrSubmission), class)
	}
	switch e.Code {
	case codeInvalidTransaction:
		data := strings.ToLower(string(e.Data))
		if strings.Contains(data, "outdated") || strings.Contains(data, "stale") {
			return mark(core.ErrNonceTooLow)
		}
		return mark(core.ErrTxRejected)
	case codeAlreadyImported, codeTemporarilyBanned, codePriorityTooLow:
		return mark(core.ErrTxAlreadyKnown)
	case codeImmediatelyDropped:
		return mark(core.ErrPoolFull)
	case codeUnknownTransaction, codeCyclicDependency:
		return mark(core.ErrTxRejected)
	default:
		return err
	}
}
