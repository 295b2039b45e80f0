package main

import (
	"github.com/ericlagergren/decimal"
)

// Partial sum of Flint-Hills series (https://arxiv.org/abs/1104.5100) - sum of 1/(k^3*sin(k)^2) for k in [1, n]
func calcSum(n int) *decimal.Big {
	precCtx := decimal.Context128

	one := decimal.New(1, 0)
	bN := decimal.New(int64(n), 0)
	bK := new(decimal.Big)
	term := new(decimal.Big)
	sum := new(decimal.Big)
	for bK.SetUint64(1); bK.Cmp(bN) <= 0; bK.Add(bK, one) {
		precCtx.Sin(term, bK)
		precCtx.Mul(term, term, bK)
		precCtx.Mul(term, term, term) // k^2*sin(k)^2
		precCtx.Mul(term, term, bK)
		precCtx.Quo(term, one, term)

		precCtx.Add(sum, sum, term)
	}

	return sum
}
