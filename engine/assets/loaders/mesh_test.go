package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

func loadObjDocument(t *testing.T, name, contents string) (*metadata.Resource, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	loader := &MeshLoader{}
	return loader.Load(path, metadata.ResourceTypeMesh, nil)
}

func objConfigs(t *testing.T, res *metadata.Resource) []*metadata.MeshConfig {
	t.Helper()
	configs, ok := res.Data.([]*metadata.MeshConfig)
	require.True(t, ok)
	return configs
}

func TestMeshLoaderObjectsAndSubsets(t *testing.T) {
	res, err := loadObjDocument(t, "props.obj", `
# two objects sharing a vertex pool
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
o quad
usemtl stone
f 1/1/1 2/2/1 3/3/1 4/4/1
o tri
f 1 2 3
`)
	require.NoError(t, err)
	assert.Equal(t, "props", res.Name)

	configs := objConfigs(t, res)
	require.Len(t, configs, 2)

	quad := configs[0]
	assert.Equal(t, "quad", quad.Name)
	require.Len(t, quad.Vertices, 4)
	// The four-corner face fans into two triangles.
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, quad.Indices)
	assert.True(t, quad.Attributes.Has(metadata.VertexAttributePosition))
	assert.True(t, quad.Attributes.Has(metadata.VertexAttributeNormal))
	assert.True(t, quad.Attributes.Has(metadata.VertexAttributeTexCoord0))
	assert.Equal(t, []string{"stone"}, quad.MaterialNames)

	require.Len(t, quad.Subsets, 1)
	subset := quad.Subsets[0]
	assert.Equal(t, "quad.0", subset.Name)
	assert.Equal(t, uint32(0), subset.IndexOffset)
	assert.Equal(t, uint32(6), subset.IndexCount)
	assert.Equal(t, math.NewVec3(0, 0, 0), subset.MinExtents)
	assert.Equal(t, math.NewVec3(1, 1, 0), subset.MaxExtents)

	first := quad.Vertices[0]
	assert.Equal(t, math.NewVec3(0, 0, 0), first.Position)
	assert.Equal(t, math.NewVec2(0, 0), first.Texcoord)
	assert.Equal(t, math.NewVec3(0, 0, 1), first.Normal)
	assert.Equal(t, math.NewVec4Create(1, 1, 1, 1), first.Colour)

	// The bare triangle authored no vn lines, so it gets flat generated
	// face normals, and an unnamed material.
	tri := configs[1]
	assert.Equal(t, "tri", tri.Name)
	require.Len(t, tri.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, tri.Indices)
	assert.True(t, tri.Attributes.Has(metadata.VertexAttributePosition))
	assert.True(t, tri.Attributes.Has(metadata.VertexAttributeNormal))
	assert.False(t, tri.Attributes.Has(metadata.VertexAttributeTexCoord0))
	assert.Equal(t, []string{""}, tri.MaterialNames)
}

func TestMeshLoaderDeduplicatesCorners(t *testing.T) {
	res, err := loadObjDocument(t, "shared.obj", `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`)
	require.NoError(t, err)

	configs := objConfigs(t, res)
	require.Len(t, configs, 1)

	// Corners 1 and 3 are shared between the faces.
	assert.Len(t, configs[0].Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, configs[0].Indices)
}

func TestMeshLoaderMaterialRunsSplitSubsets(t *testing.T) {
	res, err := loadObjDocument(t, "runs.obj", `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
usemtl stone
f 1 2 3
usemtl wood
f 1 3 4
`)
	require.NoError(t, err)

	config := objConfigs(t, res)[0]
	require.Len(t, config.Subsets, 2)
	assert.Equal(t, []string{"stone", "wood"}, config.MaterialNames)

	assert.Equal(t, uint32(0), config.Subsets[0].IndexOffset)
	assert.Equal(t, uint32(3), config.Subsets[0].IndexCount)
	assert.Equal(t, uint32(3), config.Subsets[1].IndexOffset)
	assert.Equal(t, uint32(3), config.Subsets[1].IndexCount)
}

func TestMeshLoaderPrunesEmptySubsets(t *testing.T) {
	res, err := loadObjDocument(t, "pruned.obj", `
v 0 0 0
v 1 0 0
v 1 1 0
usemtl unused
usemtl stone
f 1 2 3
`)
	require.NoError(t, err)

	config := objConfigs(t, res)[0]
	require.Len(t, config.Subsets, 1)
	assert.Equal(t, []string{"stone"}, config.MaterialNames)
	assert.Equal(t, uint32(3), config.Subsets[0].IndexCount)
}

func TestMeshLoaderNegativeIndices(t *testing.T) {
	res, err := loadObjDocument(t, "relative.obj", `
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`)
	require.NoError(t, err)

	config := objConfigs(t, res)[0]
	require.Len(t, config.Vertices, 3)
	assert.Equal(t, math.NewVec3(0, 0, 0), config.Vertices[0].Position)
	assert.Equal(t, math.NewVec3(1, 0, 0), config.Vertices[1].Position)
	assert.Equal(t, math.NewVec3(0, 1, 0), config.Vertices[2].Position)
}

func TestMeshLoaderMissingTexcoordComponent(t *testing.T) {
	// A "v//vn" corner skips the texcoord without claiming the attribute.
	res, err := loadObjDocument(t, "nouv.obj", `
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
`)
	require.NoError(t, err)

	config := objConfigs(t, res)[0]
	assert.True(t, config.Attributes.Has(metadata.VertexAttributeNormal))
	assert.False(t, config.Attributes.Has(metadata.VertexAttributeTexCoord0))
}

func TestMeshLoaderParseErrors(t *testing.T) {
	cases := []struct {
		name     string
		document string
		wantErr  string
	}{
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2", "face needs at least three corners"},
		{"short vector", "v 1 2", "expected three components"},
		{"short texcoord", "vt 0.5", "vt needs two components"},
		{"bad corner", "v 0 0 0\nf 1/x 1 1", "invalid face corner"},
		{"out of range", "v 0 0 0\nf 1 2 3", "out of range"},
		{"empty file", "", "no geometry found"},
		{"comments only", "# nothing here\n", "no geometry found"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := loadObjDocument(t, "broken.obj", c.document)
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.wantErr)
		})
	}
}

func TestMeshLoaderUnload(t *testing.T) {
	res, err := loadObjDocument(t, "solo.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	require.NoError(t, err)

	loader := &MeshLoader{}
	require.NoError(t, loader.Unload(res))
	assert.Nil(t, res.Data)

	require.NoError(t, loader.Unload(nil))
}
