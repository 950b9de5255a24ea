package world

import "github.com/annel0/voxel-world/internal/world/block"

// Biome — классификация местности. Пока не участвует в GenerateChunk:
// это точка расширения для будущей биомной генерации.
type Biome int

const (
	BiomePlains Biome = iota
	BiomeHills
	BiomeMountains
	BiomeDesert
)

func (b Biome) String() string {
	switch b {
	case BiomePlains:
		return "plains"
	case BiomeHills:
		return "hills"
	case BiomeMountains:
		return "mountains"
	case BiomeDesert:
		return "desert"
	default:
		return "unknown"
	}
}

// SurfaceBlock возвращает блок поверхности биома.
// Если нужного блока нет в реестре, возвращается воздух.
func (b Biome) SurfaceBlock(registry *block.Registry) block.BlockID {
	name := block.GrassName
	switch b {
	case BiomeMountains:
		name = block.StoneName
	case BiomeDesert:
		name = block.DirtName // Песка во встроенном наборе нет
	}

	def, ok := registry.GetByName(name)
	if !ok {
		return block.AirBlockID
	}
	return def.ID
}

// HeightScale возвращает множитель амплитуды рельефа
func (b Biome) HeightScale() float64 {
	switch b {
	case BiomePlains:
		return 16.0
	case BiomeHills:
		return 32.0
	case BiomeMountains:
		return 64.0
	case BiomeDesert:
		return 8.0
	default:
		return 0
	}
}
