package world

import "github.com/annel0/voxel-world/internal/vec"

// Размеры чанка. Чанк занимает всю высоту мира, поэтому Y-координата
// чанка всегда равна нулю.
const (
	ChunkSize   = 16
	ChunkHeight = 256
	ChunkVolume = ChunkSize * ChunkSize * ChunkHeight
)

// floorDiv — деление с округлением вниз (а не к нулю)
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// floorMod — неотрицательный остаток для положительного делителя
func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// WorldToChunk возвращает координаты чанка, содержащего мировую точку.
// x = -1 принадлежит чанку -1, а не 0.
func WorldToChunk(world vec.Vec3) vec.Vec3 {
	return vec.Vec3{
		X: floorDiv(world.X, ChunkSize),
		Y: 0,
		Z: floorDiv(world.Z, ChunkSize),
	}
}

// WorldToLocal возвращает координаты точки внутри её чанка
func WorldToLocal(world vec.Vec3) vec.Vec3 {
	return vec.Vec3{
		X: floorMod(world.X, ChunkSize),
		Y: world.Y,
		Z: floorMod(world.Z, ChunkSize),
	}
}

// ChunkLocalToWorld — обратное преобразование к WorldToChunk/WorldToLocal
func ChunkLocalToWorld(chunk, local vec.Vec3) vec.Vec3 {
	return vec.Vec3{
		X: chunk.X*ChunkSize + local.X,
		Y: local.Y,
		Z: chunk.Z*ChunkSize + local.Z,
	}
}

// InBounds проверяет, лежат ли локальные координаты внутри чанка
func InBounds(local vec.Vec3) bool {
	return local.X >= 0 && local.X < ChunkSize &&
		local.Z >= 0 && local.Z < ChunkSize &&
		local.Y >= 0 && local.Y < ChunkHeight
}

// LocalToIndex линеаризует локальные координаты (y*W*W + z*W + x).
// Возвращает false для координат вне чанка — без прижатия к границе.
func LocalToIndex(local vec.Vec3) (int, bool) {
	if !InBounds(local) {
		return 0, false
	}
	return local.Y*ChunkSize*ChunkSize + local.Z*ChunkSize + local.X, true
}

// IndexToLocal — обратное преобразование к LocalToIndex
func IndexToLocal(index int) (vec.Vec3, bool) {
	if index < 0 || index >= ChunkVolume {
		return vec.Vec3{}, false
	}
	return vec.Vec3{
		X: index % ChunkSize,
		Y: index / (ChunkSize * ChunkSize),
		Z: (index / ChunkSize) % ChunkSize,
	}, true
}
