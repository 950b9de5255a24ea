package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoiseFieldDeterministic(t *testing.T) {
	a := NewNoiseField(12345)
	b := NewNoiseField(12345)

	for i := 0; i < 100; i++ {
		x := float64(i) * 0.37
		z := float64(i) * -0.21
		assert.Equal(t, a.Noise2D(x, z), b.Noise2D(x, z))
		assert.Equal(t, a.Noise3D(x, float64(i)*0.5, z), b.Noise3D(x, float64(i)*0.5, z))
	}
	assert.Equal(t, int64(12345), a.Seed())
}

func TestNoiseFieldRange(t *testing.T) {
	f := NewNoiseField(42)

	for x := -50; x < 50; x++ {
		for z := -50; z < 50; z += 7 {
			v := f.Noise2D(float64(x)*0.13, float64(z)*0.13)
			assert.GreaterOrEqual(t, v, -1.0)
			assert.LessOrEqual(t, v, 1.0)

			w := f.Noise3D(float64(x)*0.11, float64(z)*0.05, float64(z)*0.11)
			assert.GreaterOrEqual(t, w, -1.0)
			assert.LessOrEqual(t, w, 1.0)
		}
	}
}

func TestNoiseFieldSeedsDiffer(t *testing.T) {
	a := NewNoiseField(1)
	b := NewNoiseField(2)

	differs := false
	for i := 1; i < 64 && !differs; i++ {
		x := float64(i) * 0.173
		differs = a.Noise3D(x, x*0.5, -x) != b.Noise3D(x, x*0.5, -x)
	}
	assert.True(t, differs, "разные сиды должны давать разные поля")
}

func TestNoiseFieldCoversUnitRange(t *testing.T) {
	f := NewNoiseField(42)

	var max2, max3 float64
	near2, near3, total := 0, 0, 0
	for x := -50; x < 50; x++ {
		for z := -50; z < 50; z += 7 {
			v := f.Noise2D(float64(x)*0.13, float64(z)*0.13)
			w := f.Noise3D(float64(x)*0.11, float64(z)*0.05, float64(z)*0.11)
			max2 = max(max2, math.Abs(v))
			max3 = max(max3, math.Abs(w))
			if math.Abs(v) < 0.3 {
				near2++
			}
			if math.Abs(w) < 0.3 {
				near3++
			}
			total++
		}
	}

	assert.Greater(t, max2, 0.9, "2D шум должен доходить до краёв диапазона")
	assert.Greater(t, max3, 0.9, "3D шум должен доходить до краёв диапазона")
	// Значения распределены почти равномерно: в |n| < 0.3 попадает около 30%
	assert.InDelta(t, 0.3, float64(near2)/float64(total), 0.1)
	assert.InDelta(t, 0.3, float64(near3)/float64(total), 0.1)
}

func TestNoiseFieldNegativeCoordinates(t *testing.T) {
	f := NewNoiseField(42)

	// Отрицательный z не сводится к двумерному шуму
	assert.NotEqual(t, f.Noise3D(0.3, 0.7, -1.2), f.Noise3D(0.3, 0.7, -2.9))
	assert.InDelta(t, f.Noise3D(0.3, 0.7, 254.8), f.Noise3D(0.3, 0.7, -1.2), 1e-9)

	// Далеко за решёткой поле остаётся периодическим
	assert.InDelta(t, f.Noise2D(119.7, 1.7), f.Noise2D(-5000.3, 1.7), 1e-9)
}

func TestWrapLattice(t *testing.T) {
	assert.Equal(t, 0.0, wrapLattice(0))
	assert.Equal(t, 10.5, wrapLattice(10.5))
	assert.Equal(t, 255.0, wrapLattice(-1))
	assert.Equal(t, 4.0, wrapLattice(516))
}

func TestClampUnit(t *testing.T) {
	assert.Equal(t, -1.0, clampUnit(-3))
	assert.Equal(t, 1.0, clampUnit(2.5))
	assert.Equal(t, 0.25, clampUnit(0.25))
}
