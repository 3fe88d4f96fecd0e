package core

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/cockroachdb/errors"
)

const (
	minEraPeriod = 4
	maxEraPeriod = 1 << 16
)

// TransactionEra is the validity window of a transaction
type TransactionEra struct {
	// Period is zero for an immortal era
	Period uint64
	Phase  uint64
	// Anchor is the block the mortal era was built from
	Anchor HeaderID
}

// ImmortalEra returns an era valid forever
func ImmortalEra() TransactionEra {
	return TransactionEra{}
}

// MortalEra returns an era valid for about period blocks starting at anchor.
// The period is rounded up to a power of two within [4, 65536].
func MortalEra(anchor HeaderID, period uint64) TransactionEra {
	p := uint64(maxEraPeriod)
	if period > 0 && period <= maxEraPeriod {
		p = uint64(1) << bits.Len64(period-1)
	}
	if p < minEraPeriod {
		p = minEraPeriod
	}
	phase := uint64(anchor.Number) % p
	quantize := max(p>>12, 1)
	return TransactionEra{
		Period: p,
		Phase:  phase / quantize * quantize,
		Anchor: anchor,
	}
}

func (e TransactionEra) IsImmortal() bool {
	return e.Period == 0
}

func (e TransactionEra) String() string {
	if e.IsImmortal() {
		return "immortal"
	}
	return fmt.Sprintf("mortal(period=%d, phase=%d, anchor=%s)", e.Period, e.Phase, e.Anchor)
}

// Encode returns the SCALE encoding of the era
func (e TransactionEra) Encode() []byte {
	if e.IsImmortal() {
		return []byte{0}
	}
	quantize := max(e.Period>>12, 1)
	low := uint64(bits.TrailingZeros64(e.Period)) - 1
	low = min(max(low, 1), 15)
	encoded := uint16(low | (e.Phase/quantize)<<4)
	return binary.LittleEndian.AppendUint16(nil, encoded)
}

// DecodeEra decodes a SCALE encoded era
func DecodeEra(bz []byte) (TransactionEra, error) {
	if len(bz) == 0 {
		return TransactionEra{}, errors.New("empty era")
	}
	if bz[0] == 0 {
		return ImmortalEra(), nil
	}
	if len(bz) < 2 {
		return TransactionEra{}, errors.New("truncated mortal era")
	}
	encoded := uint64(binary.LittleEndian.Uint16(bz))
	period := uint64(2) << (encoded % (1 << 4))
	quantize := max(period>>12, 1)
	phase := (encoded >> 4) * quantize
	if period < minEraPeriod || phase >= period {
		return TransactionEra{}, errors.Newf("invalid mortal era: period=%d, phase=%d", period, phase)
	}
	return TransactionEra{Period: period, Phase: phase}, nil
}

// Birth returns the first block number at which a mortal era built at current is valid
func (e TransactionEra) Birth(current BlockNumber) BlockNumber {
	if e.IsImmortal() {
		return 0
	}
	c := max(uint64(current), e.Phase)
	return BlockNumber((c-e.Phase)/e.Period*e.Period + e.Phase)
}

// Death returns the first block number at which a mortal era built at current is invalid
func (e TransactionEra) Death(current BlockNumber) BlockNumber {
	if e.IsImmortal() {
		return BlockNumber(^uint64(0))
	}
	return e.Birth(current) + BlockNumber(e.Period)
}

// EraPolicy selects the era of a submission
type EraPolicy int

const (
	// EraPolicyImmortal is used for one-shot bootstrap transactions
	EraPolicyImmortal EraPolicy = iota
	// EraPolicyMortal is used for steady state relay transactions
	EraPolicyMortal
)

func (p EraPolicy) String() string {
	switch p {
	case EraPolicyImmortal:
		return "immortal"
	case EraPolicyMortal:
		return "mortal"
	default:
		return fmt.Sprintf("EraPolicy(%d)", int(p))
	}
}
