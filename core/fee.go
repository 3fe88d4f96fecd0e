package core

import (
	"cosmossdk.io/math"
	"github.com/cockroachdb/errors"
)

// Rational is an exact non-negative fraction
type Rational struct {
	Numerator   uint64 `json:"numerator" yaml:"numerator"`
	Denominator uint64 `json:"denominator" yaml:"denominator"`
}

// NewRational returns num/den
func NewRational(num, den uint64) Rational {
	return Rational{Numerator: num, Denominator: den}
}

// WeightToFeeCoefficient is one term `±(CoeffInteger + CoeffFrac) * weight^Degree`
// of a fee polynomial.
type WeightToFeeCoefficient struct {
	Degree       uint8    `json:"degree" yaml:"degree"`
	Negative     bool     `json:"negative" yaml:"negative"`
	CoeffInteger uint64   `json:"coeff_integer" yaml:"coeff-integer"`
	CoeffFrac    Rational `json:"coeff_frac" yaml:"coeff-frac"`
}

// WeightToFeePolynomial maps a weight to a fee. Terms are evaluated in order with
// saturating arithmetic, like the runtime does.
type WeightToFeePolynomial []WeightToFeeCoefficient

// IdentityFee charges one unit of balance per unit of weight
func IdentityFee() WeightToFeePolynomial {
	return WeightToFeePolynomial{{Degree: 1, CoeffInteger: 1, CoeffFrac: NewRational(0, 1)}}
}

// RationalFee returns the degree-1 polynomial charging p/q per unit of weight,
// split into the integer part p/q and the fractional part (p%q)/q.
func RationalFee(p, q uint64) WeightToFeePolynomial {
	return WeightToFeePolynomial{{
		Degree:       1,
		CoeffInteger: p / q,
		CoeffFrac:    NewRational(p%q, q),
	}}
}

func (p WeightToFeePolynomial) Validate() error {
	if len(p) == 0 {
		return errors.New("empty fee polynomial")
	}
	for i, c := range p {
		if c.CoeffFrac.Denominator == 0 {
			return errors.Newf("coefficient %d: zero denominator", i)
		}
		if c.CoeffFrac.Numerator >= c.CoeffFrac.Denominator {
			return errors.Newf("coefficient %d: fractional part %d/%d is not below one", i, c.CoeffFrac.Numerator, c.CoeffFrac.Denominator)
		}
	}
	return nil
}

// Fee computes `Σ ±(int·w^d + floor(num·w^d/den))`
func (p WeightToFeePolynomial) Fee(weight Weight) math.Uint {
	w := math.NewUint(uint64(weight))
	acc := math.ZeroUint()
	for _, c := range p {
		pow := math.OneUint()
		for i := uint8(0); i < c.Degree; i++ {
			pow = pow.Mul(w)
		}
		term := pow.Mul(math.NewUint(c.CoeffInteger))
		if c.CoeffFrac.Numerator != 0 {
			frac := pow.Mul(math.NewUint(c.CoeffFrac.Numerator)).Quo(math.NewUint(c.CoeffFrac.Denominator))
			term = term.Add(frac)
		}
		if c.Negative {
			if acc.LT(term) {
				acc = math.ZeroUint()
			} else {
				acc = acc.Sub(term)
			}
		} else {
			acc = acc.Add(term)
		}
	}
	return acc
}
