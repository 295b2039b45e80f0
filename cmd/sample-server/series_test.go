package main

import (
	"testing"

	"github.com/ericlagergren/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalcSum(t *testing.T) {
	assertT := assert.New(t)

	assertT.Equal(0, calcSum(0).Sign())

	// 1/sin(1)^2
	first, _ := calcSum(1).Float64()
	assertT.InDelta(1.412282927, first, 1e-9)

	sum10, _ := calcSum(10).Float64()
	sum20, _ := calcSum(20).Float64()
	assertT.Greater(sum20, sum10)
}

var val *decimal.Big

func BenchmarkSum(b *testing.B) {
	for i := 0; i < b.N; i++ {
		val = calcSum(1000)
	}
}
