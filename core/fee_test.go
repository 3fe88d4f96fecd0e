package core

import (
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeightToFee(t *testing.T) {
	cases := []struct {
		name     string
		poly     WeightToFeePolynomial
		weight   Weight
		expected uint64
	}{
		{"identity", IdentityFee(), 1_000, 1_000},
		{"rational", RationalFee(10, 3), 7, 23},
		{"rational without integer part", RationalFee(1, 4), 10, 2},
		{
			"quadratic",
			WeightToFeePolynomial{
				{Degree: 2, CoeffInteger: 2, CoeffFrac: NewRational(0, 1)},
				{Degree: 1, CoeffInteger: 3, CoeffFrac: NewRational(0, 1)},
			},
			10,
			230,
		},
		{
			"negative term saturates",
			WeightToFeePolynomial{
				{Degree: 1, CoeffInteger: 1, CoeffFrac: NewRational(0, 1)},
				{Degree: 2, Negative: true, CoeffInteger: 1, CoeffFrac: NewRational(0, 1)},
			},
			10,
			0,
		},
		{
			"negative term",
			WeightToFeePolynomial{
				{Degree: 2, CoeffInteger: 1, CoeffFrac: NewRational(0, 1)},
				{Degree: 1, Negative: true, CoeffInteger: 1, CoeffFrac: NewRational(0, 1)},
			},
			10,
			90,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.NoError(t, c.poly.Validate())
			require.Equal(t, c.expected, c.poly.Fee(c.weight).Uint64())
		})
	}
}

func TestRationalFeeBoundaries(t *testing.T) {
	for _, pq := range [][2]uint64{{1, 1}, {2, 3}, {10, 3}, {1_000_000_000, 1_250_000_000}, {10_000_000_000, 859_900_000}} {
		p, q := pq[0], pq[1]
		poly := RationalFee(p, q)
		for _, w := range []uint64{0, 1, q - 1, q} {
			t.Run(fmt.Sprintf("p=%d,q=%d,w=%d", p, q, w), func(t *testing.T) {
				expected := new(big.Int).Mul(new(big.Int).SetUint64(p), new(big.Int).SetUint64(w))
				expected.Quo(expected, new(big.Int).SetUint64(q))
				require.Equal(t, expected.String(), poly.Fee(Weight(w)).String())
			})
		}
	}
}

func TestWeightToFeeLarge(t *testing.T) {
	// w^2 overflows uint64 but not the fee
	poly := WeightToFeePolynomial{{Degree: 2, CoeffInteger: 1, CoeffFrac: NewRational(0, 1)}}
	fee := poly.Fee(1 << 40)
	require.Equal(t, "1208925819614629174706176", fee.String())
}

func TestWeightToFeeValidate(t *testing.T) {
	require.Error(t, WeightToFeePolynomial{}.Validate())
	require.Error(t, WeightToFeePolynomial{{Degree: 1, CoeffFrac: NewRational(1, 0)}}.Validate())
	require.Error(t, WeightToFeePolynomial{{Degree: 1, CoeffFrac: NewRational(3, 3)}}.Validate())
}

func TestDescriptorValidate(t *testing.T) {
	valid := func() *Descriptor {
		return &Descriptor{
			ChainName:     "Test",
			NumberSize:    4,
			Scheme:        SchemeSr25519,
			BlockInterval: time.Second,
			FeePolynomial: IdentityFee(),
		}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(d *Descriptor){
		"empty name":       func(d *Descriptor) { d.ChainName = "" },
		"bad number size":  func(d *Descriptor) { d.NumberSize = 2 },
		"unknown scheme":   func(d *Descriptor) { d.Scheme = "rsa" },
		"negative time":    func(d *Descriptor) { d.BlockInterval = -1 },
		"zero time":        func(d *Descriptor) { d.BlockInterval = 0 },
		"empty polynomial": func(d *Descriptor) { d.FeePolynomial = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := valid()
			mutate(d)
			err := d.Validate()
			require.Error(t, err)
			require.True(t, IsFatal(err), "%v", err)
		})
	}
	require.Panics(t, func() { (&Descriptor{}).MustValidate() })
}
