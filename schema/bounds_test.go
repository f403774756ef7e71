package schema

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func BenchmarkMinMaxRand(b *testing.B) {

	size := 40000

	input := make([]float32, size)

	for i := 0; i < size; i++ {
		input[i] = float32(rand.Int63n(50000))
	}

	var result BoundsFloat

	for b.Loop() {
		result = GetMaxMinBoundsFloat(input)
	}

	b.Logf("min : %.0f, max : %.0f", result.Min, result.Max)
}

func TestMinMax(t *testing.T) {
	input := []uint32{0, 7000, 1, 2, 3, 4, 5, 6, 0}

	result := GetMaxMinBoundsFloat(input)

	assert.Equal(t, 7000.0, result.Max)
	assert.Equal(t, 0.0, result.Min)
}

func TestMinMaxFloat(t *testing.T) {
	input := []float32{-10, 7000, 1, 2, 3, 4, 5, 6, 0, 1000}

	result := GetMaxMinBoundsFloat(input)

	assert.Equal(t, 7000.0, result.Max)
	assert.Equal(t, -10.0, result.Min)
}

func TestMinMaxEmpty(t *testing.T) {
	assert.Equal(t, BoundsFloat{}, GetMaxMinBoundsFloat([]int32{}))
	assert.Equal(t, BoundsFloat{}, GetMaxMinBoundsBool(nil))
}

func TestMinMaxBool(t *testing.T) {
	assert.Equal(t, BoundsFloat{Min: 1, Max: 1}, GetMaxMinBoundsBool([]bool{true, true}))
	assert.Equal(t, BoundsFloat{Min: 0, Max: 1}, GetMaxMinBoundsBool([]bool{true, false}))
}

func TestMorph(t *testing.T) {
	b := BoundsFloat{Min: 2, Max: 4}

	assert.False(t, b.Morph(BoundsFloat{Min: 3, Max: 3}))
	assert.True(t, b.Morph(BoundsFloat{Min: 1, Max: 37}))
	assert.Equal(t, BoundsFloat{Min: 1, Max: 37}, b)
}
