package systems

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/lumina/engine/assets"
	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/scene"
)

/** @brief The configuration for the buffer manager. */
type BufferManagerConfig struct {
	/** @brief The maximum number of meshes held resident at once. */
	MaxMeshCount uint32
	/** @brief The maximum number of textures held resident at once. */
	MaxTextureCount uint32
}

/** @brief A leaf of the pick acceleration tree holds at most this many triangles. */
const bvhLeafTriangleCount = 4

/** @brief Vertex3D serialized: position, normal, texcoord, colour, tangent. */
const vertex3DByteSize = (3 + 3 + 2 + 4 + 3) * 4

// A mesh whose buffers still await their batched flush.
type meshUpload struct {
	mesh   *metadata.RenderMesh
	config *metadata.MeshConfig
}

// A texture whose pixels still await their batched flush.
type textureUpload struct {
	texture *metadata.Texture
	pixels  []uint8
}

/**
 * @brief Owns every GPU-destined resource: mesh vertex/index buffers and
 * texture pixel stores. Lookups resolve lazily from registered procedural
 * configs or from disk and are cached by name; uploads are queued and
 * flushed in one batch per preparation pass.
 *
 * The caches are the only state shared between concurrently preparing
 * layers, so they are the only state behind the mutex.
 */
type BufferManager struct {
	config BufferManagerConfig
	assets *assets.AssetManager
	jobs   *JobSystem

	mutex sync.RWMutex

	meshConfigs map[string]*metadata.MeshConfig
	meshes      map[string]*metadata.MeshReference
	buffers     map[uint32]*metadata.RenderBuffer

	defaultTextures *metadata.DefaultTexture
	textures        map[string]*metadata.TextureReference

	pendingMeshes   []meshUpload
	pendingTextures []textureUpload

	// Names that already produced a load warning, so each failing
	// resource warns exactly once while being retried every frame.
	warned map[string]bool

	meshBudgetWarned    bool
	textureBudgetWarned bool
}

func NewBufferManager(config BufferManagerConfig, assetManager *assets.AssetManager, jobSystem *JobSystem) (*BufferManager, error) {
	if config.MaxMeshCount == 0 {
		return nil, fmt.Errorf("config.MaxMeshCount must be > 0")
	}
	if config.MaxTextureCount == 0 {
		return nil, fmt.Errorf("config.MaxTextureCount must be > 0")
	}

	bm := &BufferManager{
		config:      config,
		assets:      assetManager,
		jobs:        jobSystem,
		meshConfigs: make(map[string]*metadata.MeshConfig),
		meshes:      make(map[string]*metadata.MeshReference),
		buffers:     make(map[uint32]*metadata.RenderBuffer),
		textures:    make(map[string]*metadata.TextureReference),
		warned:      make(map[string]bool),
	}

	if err := bm.createDefaultTextures(); err != nil {
		return nil, err
	}
	if err := bm.RegisterMeshConfig(GenerateCubeConfig(1.0, 1.0, 1.0, 1.0, 1.0, metadata.DefaultMeshName, "")); err != nil {
		return nil, err
	}

	return bm, nil
}

func (bm *BufferManager) Shutdown() error {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	for name, ref := range bm.meshes {
		bm.destroyMesh(ref.Mesh)
		delete(bm.meshes, name)
	}
	for name, ref := range bm.textures {
		if ref.Texture != nil && ref.Texture.ID != metadata.InvalidID {
			core.IdentifierReleaseID(ref.Texture.ID)
		}
		delete(bm.textures, name)
	}
	if bm.defaultTextures != nil {
		bm.defaultTextures.DestroyDefaultTextures()
	}
	bm.pendingMeshes = nil
	bm.pendingTextures = nil
	return nil
}

/**
 * @brief Registers a procedurally generated mesh configuration under its
 * name, making it resolvable without touching the asset manager.
 */
func (bm *BufferManager) RegisterMeshConfig(config *metadata.MeshConfig) error {
	if config == nil || config.Name == "" {
		return fmt.Errorf("mesh config must have a name")
	}
	if len(config.Vertices) == 0 {
		return fmt.Errorf("mesh config '%s' has no vertices", config.Name)
	}

	bm.mutex.Lock()
	defer bm.mutex.Unlock()
	bm.meshConfigs[config.Name] = config
	return nil
}

/**
 * @brief Resolves the mesh a model node references. Cache hits return the
 * resident mesh; misses resolve from a registered config or from disk and
 * queue the buffer upload. Returns nil when the node carries no mesh name
 * or the resource cannot be loaded this frame; failures warn once and are
 * retried on later frames.
 */
func (bm *BufferManager) LoadMesh(node *scene.Node) *metadata.RenderMesh {
	if node == nil || node.Model == nil || node.Model.MeshName == "" {
		return nil
	}
	name := node.Model.MeshName

	bm.mutex.RLock()
	ref, ok := bm.meshes[name]
	bm.mutex.RUnlock()
	if ok {
		return ref.Mesh
	}

	bm.mutex.Lock()
	defer bm.mutex.Unlock()
	if ref, ok := bm.meshes[name]; ok {
		return ref.Mesh
	}
	return bm.resolveMesh(name)
}

/** @brief Explicitly acquires a mesh by name, taking a reference on it. */
func (bm *BufferManager) AcquireMesh(name string, autoRelease bool) (*metadata.RenderMesh, error) {
	if name == "" {
		return nil, fmt.Errorf("mesh name must not be empty")
	}

	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	ref, ok := bm.meshes[name]
	if !ok {
		if mesh := bm.resolveMesh(name); mesh == nil {
			return nil, fmt.Errorf("unable to resolve mesh '%s'", name)
		}
		ref = bm.meshes[name]
		ref.AutoRelease = autoRelease
	}
	ref.ReferenceCount++
	return ref.Mesh, nil
}

/**
 * @brief Releases a reference on a mesh. When the last reference on an
 * auto-release mesh goes away its buffers are destroyed; the configuration
 * stays registered so the mesh can be resolved again later.
 */
func (bm *BufferManager) ReleaseMesh(name string) error {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	ref, ok := bm.meshes[name]
	if !ok {
		core.LogWarn("ReleaseMesh called for unknown mesh '%s'. Nothing was done.", name)
		return nil
	}
	if ref.ReferenceCount > 0 {
		ref.ReferenceCount--
	}
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		bm.destroyMesh(ref.Mesh)
		delete(bm.meshes, name)
	}
	return nil
}

// Callers hold bm.mutex.
func (bm *BufferManager) resolveMesh(name string) *metadata.RenderMesh {
	config, ok := bm.meshConfigs[name]
	if !ok {
		config = bm.loadMeshConfig(name)
		if config == nil {
			return nil
		}
	}

	if uint32(len(bm.meshes)) >= bm.config.MaxMeshCount && !bm.meshBudgetWarned {
		core.LogWarn("Mesh budget of %d exceeded while resolving '%s'.", bm.config.MaxMeshCount, name)
		bm.meshBudgetWarned = true
	}

	mesh := bm.createMesh(name, config)
	bm.meshes[name] = &metadata.MeshReference{Mesh: mesh, AutoRelease: false}
	return mesh
}

// Callers hold bm.mutex.
func (bm *BufferManager) loadMeshConfig(name string) *metadata.MeshConfig {
	resource, err := bm.assets.LoadAsset(name, metadata.ResourceTypeMesh, nil)
	if err != nil {
		if !bm.warned["mesh."+name] {
			core.LogWarn("Unable to load mesh '%s': %s", name, err.Error())
			bm.warned["mesh."+name] = true
		}
		return nil
	}

	configs, ok := resource.Data.([]*metadata.MeshConfig)
	if !ok || len(configs) == 0 {
		if !bm.warned["mesh."+name] {
			core.LogWarn("Mesh resource '%s' yielded no usable configuration.", name)
			bm.warned["mesh."+name] = true
		}
		return nil
	}

	config := mergeMeshConfigs(name, configs)
	bm.meshConfigs[name] = config
	return config
}

/**
 * @brief Folds the per-object configurations a multi-object mesh file
 * produces into a single configuration: vertex and index streams are
 * concatenated with index fixup and every subset is carried over.
 */
func mergeMeshConfigs(name string, configs []*metadata.MeshConfig) *metadata.MeshConfig {
	if len(configs) == 1 {
		merged := *configs[0]
		merged.Name = name
		return &merged
	}

	merged := &metadata.MeshConfig{Name: name}
	for _, config := range configs {
		vertexBase := uint32(len(merged.Vertices))
		indexBase := uint32(len(merged.Indices))

		merged.Vertices = append(merged.Vertices, config.Vertices...)
		for _, index := range config.Indices {
			merged.Indices = append(merged.Indices, index+vertexBase)
		}
		merged.Attributes |= config.Attributes

		subsets := config.Subsets
		if len(subsets) == 0 {
			bounds := config.CalculateBounds()
			subsets = []metadata.SubsetConfig{{
				Name:       config.Name,
				IndexCount: uint32(len(config.Indices)),
				MinExtents: bounds.Min,
				MaxExtents: bounds.Max,
			}}
		}
		for _, subset := range subsets {
			subset.IndexOffset += indexBase
			merged.Subsets = append(merged.Subsets, subset)
		}
		merged.MaterialNames = append(merged.MaterialNames, config.MaterialNames...)
	}
	return merged
}

// Callers hold bm.mutex.
func (bm *BufferManager) createMesh(name string, config *metadata.MeshConfig) *metadata.RenderMesh {
	mesh := &metadata.RenderMesh{
		Name:           name,
		Attributes:     config.Attributes,
		Bounds:         config.CalculateBounds(),
		VertexCount:    uint32(len(config.Vertices)),
		IndexCount:     uint32(len(config.Indices)),
		PointsTopology: config.PointsTopology,
	}
	mesh.UniqueID = core.IdentifierAcquireNewID(mesh)

	if len(config.Subsets) > 0 {
		mesh.Subsets = make([]*metadata.MeshSubset, len(config.Subsets))
		for i := range config.Subsets {
			sc := &config.Subsets[i]
			mesh.Subsets[i] = &metadata.MeshSubset{
				Name:        sc.Name,
				IndexOffset: sc.IndexOffset,
				IndexCount:  sc.IndexCount,
				Bounds:      math.Extents3D{Min: sc.MinExtents, Max: sc.MaxExtents},
				Lods:        sc.Lods,
			}
		}
	} else {
		mesh.Subsets = []*metadata.MeshSubset{{
			Name:       name,
			IndexCount: mesh.IndexCount,
			Bounds:     mesh.Bounds,
		}}
	}

	vertexBuffer := &metadata.RenderBuffer{RenderBufferType: metadata.RENDERBUFFER_TYPE_VERTEX}
	indexBuffer := &metadata.RenderBuffer{RenderBufferType: metadata.RENDERBUFFER_TYPE_INDEX}
	mesh.VertexBuffer = core.IdentifierAcquireNewID(vertexBuffer)
	mesh.IndexBuffer = core.IdentifierAcquireNewID(indexBuffer)
	bm.buffers[mesh.VertexBuffer] = vertexBuffer
	bm.buffers[mesh.IndexBuffer] = indexBuffer

	bm.pendingMeshes = append(bm.pendingMeshes, meshUpload{mesh: mesh, config: config})
	return mesh
}

// Callers hold bm.mutex.
func (bm *BufferManager) destroyMesh(mesh *metadata.RenderMesh) {
	if mesh == nil {
		return
	}
	delete(bm.buffers, mesh.VertexBuffer)
	delete(bm.buffers, mesh.IndexBuffer)
	core.IdentifierReleaseID(mesh.VertexBuffer)
	core.IdentifierReleaseID(mesh.IndexBuffer)
	core.IdentifierReleaseID(mesh.UniqueID)
	mesh.Generation = 0
}

/**
 * @brief Flushes every queued mesh and texture upload in one batch. Mesh
 * vertex/index data is serialized into the managed buffers and each touched
 * resource has its generation bumped so consumers notice the reload.
 */
func (bm *BufferManager) CommitPendingUploads() {
	bm.mutex.Lock()
	meshes := bm.pendingMeshes
	textures := bm.pendingTextures
	bm.pendingMeshes = nil
	bm.pendingTextures = nil
	bm.mutex.Unlock()

	for _, upload := range meshes {
		vertexBuffer := bm.lookupBuffer(upload.mesh.VertexBuffer)
		indexBuffer := bm.lookupBuffer(upload.mesh.IndexBuffer)
		if vertexBuffer == nil || indexBuffer == nil {
			// Released before the flush arrived.
			continue
		}
		vertexBuffer.Data = encodeVertices(upload.config.Vertices)
		vertexBuffer.TotalSize = uint64(len(vertexBuffer.Data))
		indexBuffer.Data = encodeIndices(upload.config.Indices)
		indexBuffer.TotalSize = uint64(len(indexBuffer.Data))
		upload.mesh.Generation++
		core.LogDebug("Uploaded mesh '%s' (%d vertices, %d indices).",
			upload.mesh.Name, upload.mesh.VertexCount, upload.mesh.IndexCount)
	}

	for _, upload := range textures {
		upload.texture.InternalData = upload.pixels
		if upload.texture.Generation == metadata.InvalidID {
			upload.texture.Generation = 0
		} else {
			upload.texture.Generation++
		}
		core.LogDebug("Uploaded texture '%s' (%dx%d).",
			upload.texture.Name, upload.texture.Width, upload.texture.Height)
	}
}

func (bm *BufferManager) lookupBuffer(handle uint32) *metadata.RenderBuffer {
	bm.mutex.RLock()
	defer bm.mutex.RUnlock()
	return bm.buffers[handle]
}

func encodeVertices(vertices []math.Vertex3D) []byte {
	out := make([]byte, len(vertices)*vertex3DByteSize)
	offset := 0
	putFloat := func(f float32) {
		binary.LittleEndian.PutUint32(out[offset:], math32.Float32bits(f))
		offset += 4
	}
	for i := range vertices {
		v := &vertices[i]
		putFloat(v.Position.X)
		putFloat(v.Position.Y)
		putFloat(v.Position.Z)
		putFloat(v.Normal.X)
		putFloat(v.Normal.Y)
		putFloat(v.Normal.Z)
		putFloat(v.Texcoord.X)
		putFloat(v.Texcoord.Y)
		putFloat(v.Colour.X)
		putFloat(v.Colour.Y)
		putFloat(v.Colour.Z)
		putFloat(v.Colour.W)
		putFloat(v.Tangent.X)
		putFloat(v.Tangent.Y)
		putFloat(v.Tangent.Z)
	}
	return out
}

func encodeIndices(indices []uint32) []byte {
	out := make([]byte, len(indices)*4)
	for i, index := range indices {
		binary.LittleEndian.PutUint32(out[i*4:], index)
	}
	return out
}

/**
 * @brief Builds the pick acceleration structure for a resident mesh: one
 * median-split tree per subset over a shared per-triangle bounds array.
 * Returns nil when the mesh's source configuration is no longer known.
 */
func (bm *BufferManager) LoadMeshBvh(mesh *metadata.RenderMesh) *metadata.MeshBvh {
	if mesh == nil {
		return nil
	}

	bm.mutex.RLock()
	config := bm.meshConfigs[mesh.Name]
	bm.mutex.RUnlock()
	if config == nil || len(config.Indices) < 3 {
		return nil
	}

	bvh := &metadata.MeshBvh{
		TriangleBounds: make([]math.Extents3D, 0, len(config.Indices)/3),
		Roots:          make([]*metadata.MeshBvhNode, 0, len(mesh.Subsets)),
	}

	for _, subset := range mesh.Subsets {
		first := len(bvh.TriangleBounds)
		triangleCount := int(subset.IndexCount) / 3
		for t := 0; t < triangleCount; t++ {
			base := int(subset.IndexOffset) + t*3
			bounds := math.NewExtents3DEmpty().
				Include(config.Vertices[config.Indices[base+0]].Position).
				Include(config.Vertices[config.Indices[base+1]].Position).
				Include(config.Vertices[config.Indices[base+2]].Position)
			bvh.TriangleBounds = append(bvh.TriangleBounds, bounds)
		}
		bvh.Roots = append(bvh.Roots, buildBvhNode(bvh.TriangleBounds, first, len(bvh.TriangleBounds)))
	}
	return bvh
}

/**
 * @brief Recursively splits the triangle range [lo, hi) at the median of
 * the centroids along the node's longest axis. The bounds slice is
 * reordered in place so every leaf addresses a contiguous range.
 */
func buildBvhNode(triangleBounds []math.Extents3D, lo, hi int) *metadata.MeshBvhNode {
	if hi <= lo {
		return nil
	}

	node := &metadata.MeshBvhNode{Bounds: math.NewExtents3DEmpty()}
	for i := lo; i < hi; i++ {
		node.Bounds = node.Bounds.Include(triangleBounds[i].Min).Include(triangleBounds[i].Max)
	}

	if hi-lo <= bvhLeafTriangleCount {
		node.TriangleOffset = uint32(lo)
		node.TriangleCount = uint32(hi - lo)
		return node
	}

	axis := longestAxis(node.Bounds)
	span := triangleBounds[lo:hi]
	sort.Slice(span, func(i, j int) bool {
		return axisComponent(span[i].Center(), axis) < axisComponent(span[j].Center(), axis)
	})

	mid := (lo + hi) / 2
	node.Left = buildBvhNode(triangleBounds, lo, mid)
	node.Right = buildBvhNode(triangleBounds, mid, hi)
	return node
}

func longestAxis(bounds math.Extents3D) int {
	size := bounds.Max.Sub(bounds.Min)
	if size.Y > size.X {
		if size.Z > size.Y {
			return 2
		}
		return 1
	}
	if size.Z > size.X {
		return 2
	}
	return 0
}

func axisComponent(v math.Vec3, axis int) float32 {
	switch axis {
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	return v.X
}

/**
 * @brief Generates the configuration for a plane in the xy plane, facing
 * +z, centered on the origin, carved into segments.
 */
func GeneratePlaneConfig(width, height float32, xSegmentCount, ySegmentCount uint32, tileX, tileY float32, name, materialName string) *metadata.MeshConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if xSegmentCount < 1 {
		core.LogWarn("xSegmentCount must be a positive number. Defaulting to one.")
		xSegmentCount = 1
	}
	if ySegmentCount < 1 {
		core.LogWarn("ySegmentCount must be a positive number. Defaulting to one.")
		ySegmentCount = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	config := &metadata.MeshConfig{
		Name:       meshOrDefaultName(name),
		Vertices:   make([]math.Vertex3D, xSegmentCount*ySegmentCount*4),
		Indices:    make([]uint32, xSegmentCount*ySegmentCount*6),
		Attributes: metadata.VertexAttributePosition | metadata.VertexAttributeNormal | metadata.VertexAttributeTexCoord0,
	}
	if materialName != "" {
		config.MaterialNames = []string{materialName}
	}

	segmentWidth := width / float32(xSegmentCount)
	segmentHeight := height / float32(ySegmentCount)
	halfWidth := width * 0.5
	halfHeight := height * 0.5
	for y := uint32(0); y < ySegmentCount; y++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			minX := (float32(x) * segmentWidth) - halfWidth
			minY := (float32(y) * segmentHeight) - halfHeight
			maxX := minX + segmentWidth
			maxY := minY + segmentHeight
			minU := (float32(x) / float32(xSegmentCount)) * tileX
			minV := (float32(y) / float32(ySegmentCount)) * tileY
			maxU := (float32(x+1) / float32(xSegmentCount)) * tileX
			maxV := (float32(y+1) / float32(ySegmentCount)) * tileY

			vOffset := ((y * xSegmentCount) + x) * 4
			v0 := &config.Vertices[vOffset+0]
			v1 := &config.Vertices[vOffset+1]
			v2 := &config.Vertices[vOffset+2]
			v3 := &config.Vertices[vOffset+3]

			v0.Position = math.NewVec3(minX, minY, 0.0)
			v0.Texcoord = math.NewVec2(minU, minV)
			v1.Position = math.NewVec3(maxX, maxY, 0.0)
			v1.Texcoord = math.NewVec2(maxU, maxV)
			v2.Position = math.NewVec3(minX, maxY, 0.0)
			v2.Texcoord = math.NewVec2(minU, maxV)
			v3.Position = math.NewVec3(maxX, minY, 0.0)
			v3.Texcoord = math.NewVec2(maxU, minV)

			normal := math.NewVec3(0.0, 0.0, 1.0)
			v0.Normal = normal
			v1.Normal = normal
			v2.Normal = normal
			v3.Normal = normal

			iOffset := ((y * xSegmentCount) + x) * 6
			config.Indices[iOffset+0] = vOffset + 0
			config.Indices[iOffset+1] = vOffset + 1
			config.Indices[iOffset+2] = vOffset + 2
			config.Indices[iOffset+3] = vOffset + 0
			config.Indices[iOffset+4] = vOffset + 3
			config.Indices[iOffset+5] = vOffset + 1
		}
	}

	bounds := config.CalculateBounds()
	config.Subsets = []metadata.SubsetConfig{{
		Name:       config.Name,
		IndexCount: uint32(len(config.Indices)),
		MinExtents: bounds.Min,
		MaxExtents: bounds.Max,
	}}

	return config
}

/**
 * @brief Generates the configuration for a cube centered on the origin,
 * four vertices per face with proper normals, texcoords and tangents.
 */
func GenerateCubeConfig(width, height, depth, tileX, tileY float32, name, materialName string) *metadata.MeshConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1.0
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	config := &metadata.MeshConfig{
		Name:     meshOrDefaultName(name),
		Vertices: make([]math.Vertex3D, 4*6),
		Indices:  make([]uint32, 6*6),
		Attributes: metadata.VertexAttributePosition | metadata.VertexAttributeNormal |
			metadata.VertexAttributeTexCoord0 | metadata.VertexAttributeTangentBinormal,
	}
	if materialName != "" {
		config.MaterialNames = []string{materialName}
	}

	minX := -width * 0.5
	minY := -height * 0.5
	minZ := -depth * 0.5
	maxX := width * 0.5
	maxY := height * 0.5
	maxZ := depth * 0.5

	type face struct {
		positions [4]math.Vec3
		normal    math.Vec3
	}
	faces := [6]face{
		{ // Front
			positions: [4]math.Vec3{
				math.NewVec3(minX, minY, maxZ), math.NewVec3(maxX, maxY, maxZ),
				math.NewVec3(minX, maxY, maxZ), math.NewVec3(maxX, minY, maxZ)},
			normal: math.NewVec3(0.0, 0.0, 1.0),
		},
		{ // Back
			positions: [4]math.Vec3{
				math.NewVec3(maxX, minY, minZ), math.NewVec3(minX, maxY, minZ),
				math.NewVec3(maxX, maxY, minZ), math.NewVec3(minX, minY, minZ)},
			normal: math.NewVec3(0.0, 0.0, -1.0),
		},
		{ // Left
			positions: [4]math.Vec3{
				math.NewVec3(minX, minY, minZ), math.NewVec3(minX, maxY, maxZ),
				math.NewVec3(minX, maxY, minZ), math.NewVec3(minX, minY, maxZ)},
			normal: math.NewVec3(-1.0, 0.0, 0.0),
		},
		{ // Right
			positions: [4]math.Vec3{
				math.NewVec3(maxX, minY, maxZ), math.NewVec3(maxX, maxY, minZ),
				math.NewVec3(maxX, maxY, maxZ), math.NewVec3(maxX, minY, minZ)},
			normal: math.NewVec3(1.0, 0.0, 0.0),
		},
		{ // Bottom
			positions: [4]math.Vec3{
				math.NewVec3(maxX, minY, maxZ), math.NewVec3(minX, minY, minZ),
				math.NewVec3(maxX, minY, minZ), math.NewVec3(minX, minY, maxZ)},
			normal: math.NewVec3(0.0, -1.0, 0.0),
		},
		{ // Top
			positions: [4]math.Vec3{
				math.NewVec3(minX, maxY, maxZ), math.NewVec3(maxX, maxY, minZ),
				math.NewVec3(minX, maxY, minZ), math.NewVec3(maxX, maxY, maxZ)},
			normal: math.NewVec3(0.0, 1.0, 0.0),
		},
	}

	texcoords := [4]math.Vec2{
		math.NewVec2(0.0, 0.0),
		math.NewVec2(tileX, tileY),
		math.NewVec2(0.0, tileY),
		math.NewVec2(tileX, 0.0),
	}

	for f := range faces {
		vOffset := f * 4
		for corner := 0; corner < 4; corner++ {
			vertex := &config.Vertices[vOffset+corner]
			vertex.Position = faces[f].positions[corner]
			vertex.Normal = faces[f].normal
			vertex.Texcoord = texcoords[corner]
		}

		iOffset := f * 6
		config.Indices[iOffset+0] = uint32(vOffset + 0)
		config.Indices[iOffset+1] = uint32(vOffset + 1)
		config.Indices[iOffset+2] = uint32(vOffset + 2)
		config.Indices[iOffset+3] = uint32(vOffset + 0)
		config.Indices[iOffset+4] = uint32(vOffset + 3)
		config.Indices[iOffset+5] = uint32(vOffset + 1)
	}

	math.GenerateTangents(config.Vertices, config.Indices)

	config.Subsets = []metadata.SubsetConfig{{
		Name:       config.Name,
		IndexCount: uint32(len(config.Indices)),
		MinExtents: math.NewVec3(minX, minY, minZ),
		MaxExtents: math.NewVec3(maxX, maxY, maxZ),
	}}

	return config
}

func meshOrDefaultName(name string) string {
	if name != "" {
		return name
	}
	return metadata.DefaultMeshName
}
