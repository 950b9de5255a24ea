package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/voxel-world/internal/world/block"
)

func TestBiomeProperties(t *testing.T) {
	registry := block.NewRegistry()

	assert.Equal(t, block.GrassBlockID, BiomePlains.SurfaceBlock(registry))
	assert.Equal(t, block.GrassBlockID, BiomeHills.SurfaceBlock(registry))
	assert.Equal(t, block.StoneBlockID, BiomeMountains.SurfaceBlock(registry))
	assert.Equal(t, block.DirtBlockID, BiomeDesert.SurfaceBlock(registry))

	assert.Greater(t, BiomeMountains.HeightScale(), BiomeHills.HeightScale())
	assert.Greater(t, BiomeHills.HeightScale(), BiomePlains.HeightScale())
	assert.Greater(t, BiomePlains.HeightScale(), BiomeDesert.HeightScale())

	assert.Equal(t, "mountains", BiomeMountains.String())
	assert.Equal(t, "unknown", Biome(42).String())
	assert.Zero(t, Biome(42).HeightScale())
}

func TestBiomeSurfaceMissingBlock(t *testing.T) {
	registry := block.NewRegistry()
	_ = registry.Register(block.Def{ID: block.StoneBlockID, Name: "rock", Kind: block.KindSolid})

	assert.Equal(t, block.AirBlockID, BiomeMountains.SurfaceBlock(registry))
}
