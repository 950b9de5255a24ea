package util

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина, общие для всех полей
const (
	noiseAlpha   = 2.0 // Сглаживание шума
	noiseBeta    = 2.0 // Частота шума
	noiseOctaves = 3   // Количество октав
)

// Решётка go-perlin повторяется с периодом 256. Отрицательный z в Noise3D
// библиотека молча сводит к Noise2D, поэтому координаты заворачиваются в [0, 256).
const noisePeriod = 256.0

// Стандартное отклонение суммы октав, измеренное по всей решётке.
// Сырая сумма редко выходит за ±0.8 и скучена около нуля; через erf
// она раскладывается почти равномерно по [-1, 1].
const (
	noiseSpread2D = 0.25
	noiseSpread3D = 0.21
)

// NoiseField — детерминированное когерентное поле шума.
// После создания не изменяется и безопасно для параллельного чтения.
type NoiseField struct {
	seed   int64
	perlin *perlin.Perlin
}

// NewNoiseField создаёт поле шума Перлина с указанным сидом
func NewNoiseField(seed int64) *NoiseField {
	return &NoiseField{
		seed:   seed,
		perlin: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
	}
}

// Seed возвращает сид поля
func (f *NoiseField) Seed() int64 {
	return f.seed
}

// Noise2D возвращает значение шума в диапазоне [-1, 1]
func (f *NoiseField) Noise2D(x, y float64) float64 {
	raw := f.perlin.Noise2D(wrapLattice(x), wrapLattice(y))
	return normalize(raw, noiseSpread2D)
}

// Noise3D возвращает значение шума в диапазоне [-1, 1]
func (f *NoiseField) Noise3D(x, y, z float64) float64 {
	raw := f.perlin.Noise3D(wrapLattice(x), wrapLattice(y), wrapLattice(z))
	return normalize(raw, noiseSpread3D)
}

// wrapLattice переносит координату в [0, noisePeriod). Поле периодично,
// так что значение шума не меняется.
func wrapLattice(v float64) float64 {
	return v - noisePeriod*math.Floor(v/noisePeriod)
}

// normalize растягивает сумму октав на [-1, 1] монотонно и непрерывно
func normalize(raw, spread float64) float64 {
	return clampUnit(math.Erf(raw / (spread * math.Sqrt2)))
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
