package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcEmpty(t *testing.T) {
	s := Calc([]int(nil))
	assert.Equal(t, 0, s.N)
	assert.Equal(t, 0, s.Best)
	assert.Equal(t, 0.0, s.Mean)
	assert.Equal(t, 0.0, s.Std)
}

func TestCalcSingleValue(t *testing.T) {
	s := Calc([]float64{3.5})
	assert.Equal(t, 1, s.N)
	assert.Equal(t, 3.5, s.Best)
	assert.Equal(t, 3.5, s.Mean)
	// Выборочное отклонение для одной точки не определено, считаем нулём.
	assert.Equal(t, 0.0, s.Std)
}

func TestCalcInts(t *testing.T) {
	s := Calc([]int{12, 10, 14})
	assert.Equal(t, 3, s.N)
	assert.Equal(t, 10, s.Best)
	assert.InDelta(t, 12.0, s.Mean, 1e-12)
	assert.InDelta(t, 2.0, s.Std, 1e-12)
}

func TestCalcFloats(t *testing.T) {
	s := Calc([]float64{1.0, 2.0, 3.0, 4.0})
	assert.Equal(t, 4, s.N)
	assert.Equal(t, 1.0, s.Best)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	// Выборочная дисперсия: (2.25+0.25+0.25+2.25)/3 = 5/3.
	assert.InDelta(t, 1.2909944487358056, s.Std, 1e-9)
}
