package substrate

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
)

const (
	extrinsicVersion     = 4
	extrinsicSignedFlag  = 0b1000_0000
	multiAddressID       = 0
	maxSigningPayloadLen = 256
)

var multiSignatureVariants = map[core.SignatureScheme]byte{
	core.SchemeEd25519: 0,
	core.SchemeSr25519: 1,
	core.SchemeEcdsa:   2,
}

// ExtrinsicBuilder builds signed version 4 extrinsics with the default signed extensions
type ExtrinsicBuilder struct {
	// rawAddress encodes the signer as a bare account id instead of a MultiAddress
	rawAddress bool
}

var _ core.SignScheme = (*ExtrinsicBuilder)(nil)

func NewExtrinsicBuilder(rawAddress bool) *ExtrinsicBuilder {
	return &ExtrinsicBuilder{rawAddress: rawAddress}
}

// SigningPayload returns the bytes the signer signs for param
func SigningPayload(param core.SignParam) []byte {
	var payload []byte
	payload = append(payload, param.Unsigned.Call...)
	payload = append(payload, extra(param)...)
	payload = appendU32(payload, param.SpecVersion)
	payload = appendU32(payload, param.TransactionVersion)
	payload = append(payload, param.GenesisHash[:]...)
	if param.Era.IsImmortal() {
		payload = append(payload, param.GenesisHash[:]...)
	} else {
		payload = append(payload, param.BirthHash[:]...)
	}
	if len(payload) > maxSigningPayloadLen {
		h := core.Blake2_256(payload)
		return h[:]
	}
	return payload
}

func extra(param core.SignParam) []byte {
	bz := param.Era.Encode()
	bz = append(bz, core.EncodeCompact(uint64(param.Unsigned.Nonce))...)
	return append(bz, core.EncodeCompact(param.Unsigned.Tip)...)
}

func appendU32(bz []byte, v uint32) []byte {
	return append(bz, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (b *ExtrinsicBuilder) SignTransaction(ctx context.Context, param core.SignParam) ([]byte, error) {
	if param.Signer == nil {
		return nil, errors.New("signer is not set")
	}
	variant, ok := multiSignatureVariants[param.Signer.Scheme()]
	if !ok {
		return nil, errors.Newf("unsupported signature scheme: %s", param.Signer.Scheme())
	}
	sig, err := param.Signer.Sign(ctx, SigningPayload(param))
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign the transaction")
	}

	account := param.Signer.AccountID()
	body := []byte{extrinsicSignedFlag | extrinsicVersion}
	if !b.rawAddress {
		body = append(body, multiAddressID)
	}
	body = append(body, account[:]...)
	body = append(body, variant)
	body = append(body, sig...)
	body = append(body, extra(param)...)
	body = append(body, param.Unsigned.Call...)
	return core.EncodeBytes(body), nil
}

// DecodedExtrinsic is the signed part of an extrinsic built by ExtrinsicBuilder
type DecodedExtrinsic struct {
	Account   core.AccountID
	Variant   byte
	Signature []byte
	Era       core.TransactionEra
	Nonce     core.Nonce
	Tip       uint64
	Call      []byte
}

// DecodeExtrinsic decodes an extrinsic built by ExtrinsicBuilder. The call is returned raw.
func DecodeExtrinsic(bz []byte, rawAddress bool) (*DecodedExtrinsic, error) {
	r := core.NewScaleReader(bz)
	length, err := r.Compact()
	if err != nil {
		return nil, err
	}
	if length != uint64(r.Remaining()) {
		return nil, errors.Newf("length prefix %d does not match body of %d bytes", length, r.Remaining())
	}
	var version uint8
	if err := r.Decode(&version); err != nil {
		return nil, err
	}
	if version != extrinsicSignedFlag|extrinsicVersion {
		return nil, errors.Newf("unexpected extrinsic version byte: %#x", version)
	}
	if !rawAddress {
		var addressVariant uint8
		if err := r.Decode(&addressVariant); err != nil {
			return nil, err
		}
	}
	var ext DecodedExtrinsic
	if err := r.Decode(&ext.Account); err != nil {
		return nil, err
	}
	if err := r.Decode(&ext.Variant); err != nil {
		return nil, err
	}
	sigLen := 64
	if ext.Variant == multiSignatureVariants[core.SchemeEcdsa] {
		sigLen = 65
	}
	if ext.Signature, err = r.Take(sigLen); err != nil {
		return nil, err
	}
	eraLen := 2
	if rest := r.Rest(); len(rest) > 0 && rest[0] == 0 {
		eraLen = 1
	}
	eraBz, err := r.Take(eraLen)
	if err != nil {
		return nil, err
	}
	if ext.Era, err = core.DecodeEra(eraBz); err != nil {
		return nil, err
	}
	nonce, err := r.Compact()
	if err != nil {
		return nil, err
	}
	ext.Nonce = core.Nonce(nonce)
	if ext.Tip, err = r.Compact(); err != nil {
		return nil, err
	}
	ext.Call = r.Rest()
	return &ext, nil
}
