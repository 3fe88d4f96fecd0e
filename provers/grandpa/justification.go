package grandpa

import (
	"encoding/binary"

	"github.com/ChainSafe/gossamer/pkg/scale"
	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

// precommitMessageVariant is the index of Message::Precommit
const precommitMessageVariant = 1

// AuthorityID is an ed25519 public key of a GRANDPA voter
type AuthorityID [32]byte

// Authority is a voter with its weight
type Authority struct {
	ID     AuthorityID
	Weight uint64
}

// AuthoritySet is the voter set of one set id
type AuthoritySet struct {
	SetID       uint64
	Authorities []Authority
}

// TotalWeight returns the sum of all voter weights
func (s *AuthoritySet) TotalWeight() uint64 {
	var total uint64
	for _, a := range s.Authorities {
		total += a.Weight
	}
	return total
}

// Threshold returns the weight needed for a supermajority
func (s *AuthoritySet) Threshold() uint64 {
	total := s.TotalWeight()
	if total == 0 {
		return 0
	}
	return total - (total-1)/3
}

func (s *AuthoritySet) weightOf(id AuthorityID) (uint64, bool) {
	for _, a := range s.Authorities {
		if a.ID == id {
			return a.Weight, true
		}
	}
	return 0, false
}

// Encode returns the SCALE encoding of the authority list
func (s *AuthoritySet) Encode() []byte {
	out := core.EncodeCompact(uint64(len(s.Authorities)))
	for _, a := range s.Authorities {
		out = append(out, a.ID[:]...)
		out = binary.LittleEndian.AppendUint64(out, a.Weight)
	}
	return out
}

// DecodeAuthorities decodes the result of GrandpaApi_grandpa_authorities
func DecodeAuthorities(bz []byte) ([]Authority, error) {
	var list []struct {
		ID     [32]byte
		Weight uint64
	}
	if err := scale.Unmarshal(bz, &list); err != nil {
		return nil, errors.Wrap(err, "failed to decode authority list")
	}
	authorities := make([]Authority, len(list))
	for i, a := range list {
		authorities[i] = Authority{ID: a.ID, Weight: a.Weight}
	}
	return authorities, nil
}

// Precommit is a vote for a block and its ancestors
type Precommit struct {
	TargetHash   core.Hash
	TargetNumber core.BlockNumber
}

// SignedPrecommit is a precommit with the voter signature
type SignedPrecommit struct {
	Precommit Precommit
	Signature [64]byte
	ID        AuthorityID
}

// Commit aggregates the precommits finalizing a target
type Commit struct {
	TargetHash   core.Hash
	TargetNumber core.BlockNumber
	Precommits   []SignedPrecommit
}

// Justification is a GRANDPA justification of a block
type Justification struct {
	Round           uint64
	Commit          Commit
	VotesAncestries []*core.Header
}

// SigningPayload returns the message a voter signs for a precommit
func SigningPayload(p Precommit, round, setID uint64, numberSize int) []byte {
	out := []byte{precommitMessageVariant}
	out = append(out, p.TargetHash[:]...)
	out = append(out, core.EncodeBlockNumber(p.TargetNumber, numberSize)...)
	out = binary.LittleEndian.AppendUint64(out, round)
	return binary.LittleEndian.AppendUint64(out, setID)
}

// Encode returns the SCALE encoding of the justification
func (j *Justification) Encode(numberSize int) []byte {
	out := binary.LittleEndian.AppendUint64(nil, j.Round)
	out = append(out, j.Commit.TargetHash[:]...)
	out = append(out, core.EncodeBlockNumber(j.Commit.TargetNumber, numberSize)...)
	out = append(out, core.EncodeCompact(uint64(len(j.Commit.Precommits)))...)
	for _, p := range j.Commit.Precommits {
		out = append(out, p.Precommit.TargetHash[:]...)
		out = append(out, core.EncodeBlockNumber(p.Precommit.TargetNumber, numberSize)...)
		out = append(out, p.Signature[:]...)
		out = append(out, p.ID[:]...)
	}
	out = append(out, core.EncodeCompact(uint64(len(j.VotesAncestries)))...)
	for _, h := range j.VotesAncestries {
		out = append(out, h.Encode()...)
	}
	return out
}

type decoder struct {
	*core.ScaleReader
	numberSize int
}

func newDecoder(bz []byte, numberSize int) *decoder {
	return &decoder{ScaleReader: core.NewScaleReader(bz), numberSize: numberSize}
}

func (d *decoder) decode(dst interface{}) error {
	return d.Decode(dst)
}

func (d *decoder) number() (core.BlockNumber, error) {
	return d.BlockNumber(d.numberSize)
}

func (d *decoder) length() (int, error) {
	n, err := d.Compact()
	if err != nil {
		return 0, err
	}
	if n > uint64(d.Remaining()) {
		return 0, errors.Newf("sequence length %d exceeds input", n)
	}
	return int(n), nil
}

// rest returns the undecoded bytes
func (d *decoder) rest() []byte {
	return d.Rest()
}

// DecodeJustification decodes a SCALE encoded justification
func DecodeJustification(bz []byte, numberSize int) (*Justification, error) {
	d := newDecoder(bz, numberSize)
	var j Justification
	if err := d.decode(&j.Round); err != nil {
		return nil, errors.Wrap(err, "round")
	}
	if err := d.decode(&j.Commit.TargetHash); err != nil {
		return nil, errors.Wrap(err, "commit target hash")
	}
	number, err := d.number()
	if err != nil {
		return nil, errors.Wrap(err, "commit target number")
	}
	j.Commit.TargetNumber = number

	n, err := d.length()
	if err != nil {
		return nil, errors.Wrap(err, "precommits")
	}
	j.Commit.Precommits = make([]SignedPrecommit, n)
	for i := range j.Commit.Precommits {
		p := &j.Commit.Precommits[i]
		if err := d.decode(&p.Precommit.TargetHash); err != nil {
			return nil, errors.Wrapf(err, "precommit %d", i)
		}
		if p.Precommit.TargetNumber, err = d.number(); err != nil {
			return nil, errors.Wrapf(err, "precommit %d", i)
		}
		if err := d.decode(&p.Signature); err != nil {
			return nil, errors.Wrapf(err, "precommit %d signature", i)
		}
		if err := d.decode(&p.ID); err != nil {
			return nil, errors.Wrapf(err, "precommit %d authority", i)
		}
	}

	n, err = d.length()
	if err != nil {
		return nil, errors.Wrap(err, "votes ancestries")
	}
	rest := d.rest()
	j.VotesAncestries = make([]*core.Header, 0, n)
	for i := 0; i < n; i++ {
		h, read, err := core.DecodeHeaderPrefix(rest)
		if err != nil {
			return nil, errors.Wrapf(err, "ancestry header %d", i)
		}
		j.VotesAncestries = append(j.VotesAncestries, h)
		rest = rest[read:]
	}
	if len(rest) != 0 {
		return nil, errors.Newf("trailing %d bytes after justification", len(rest))
	}
	return &j, nil
}

// EncodedFinalityProof is the payload returned by grandpa_proveFinality
type EncodedFinalityProof struct {
	Block          core.Hash
	Justification  []byte
	UnknownHeaders []*core.Header
}

// DecodeFinalityProof decodes a SCALE encoded finality proof
func DecodeFinalityProof(bz []byte) (*EncodedFinalityProof, error) {
	d := newDecoder(bz, 4)
	var p EncodedFinalityProof
	if err := d.decode(&p.Block); err != nil {
		return nil, errors.Wrap(err, "block")
	}
	if err := d.decode(&p.Justification); err != nil {
		return nil, errors.Wrap(err, "justification")
	}
	n, err := d.length()
	if err != nil {
		return nil, errors.Wrap(err, "unknown headers")
	}
	rest := d.rest()
	for i := 0; i < n; i++ {
		h, read, err := core.DecodeHeaderPrefix(rest)
		if err != nil {
			return nil, errors.Wrapf(err, "unknown header %d", i)
		}
		p.UnknownHeaders = append(p.UnknownHeaders, h)
		rest = rest[read:]
	}
	return &p, nil
}

// Encode returns the SCALE encoding of the finality proof
func (p *EncodedFinalityProof) Encode() []byte {
	out := append([]byte(nil), p.Block[:]...)
	out = append(out, core.EncodeBytes(p.Justification)...)
	out = append(out, core.EncodeCompact(uint64(len(p.UnknownHeaders)))...)
	for _, h := range p.UnknownHeaders {
		out = append(out, h.Encode()...)
	}
	return out
}
