package renderer

import (
	"sort"

	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/math"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
	"github.com/spaghettifunk/lumina/engine/scene"
)

/**
 * @brief Prepares every classified model in three passes ordered by
 * resource dependency: mesh residency (plus pick acceleration) first,
 * with one batched upload flush for the whole set; skinning and morph
 * state second; per-subset record emission last, once meshes and bone
 * textures are settled.
 */
func (ld *LayerData) prepareModels() {
	models := ld.renderableModels.Items()

	for _, node := range models {
		mesh := ld.meshes.LoadMesh(node)
		if mesh == nil {
			continue
		}
		pickable := ld.Config.GlobalPickingEnabled || node.Model.Pickable
		if pickable && node.GlobalOpacity > metadata.MinRenderableOpacity && mesh.Bvh == nil {
			mesh.Bvh = ld.meshes.LoadMeshBvh(mesh)
		}
	}
	ld.meshes.CommitPendingUploads()

	for _, node := range models {
		ld.prepareModelDeformation(node)
	}

	for _, node := range models {
		ld.prepareModelSubsets(node)
	}
}

/**
 * @brief Refreshes a model's skinning palette and morph weights. The bone
 * texture backing is allocated or resized only when the bone count moved
 * its required size, and released once the model stops being skinned.
 */
func (ld *LayerData) prepareModelDeformation(node *scene.Node) {
	model := node.Model
	boneCount := ld.refreshBonePalette(node)

	backing := ld.boneTextures[node]
	if boneCount == 0 {
		if backing != nil {
			core.IdentifierReleaseID(backing.Texture.ID)
			delete(ld.boneTextures, node)
			ld.frameFlags.Set(metadata.PrepResultLayerDataDirty, true)
		}
	} else {
		size := metadata.BoneTextureSize(uint32(boneCount))
		if backing == nil || backing.Size != size {
			if backing != nil {
				core.IdentifierReleaseID(backing.Texture.ID)
			}
			backing = &metadata.BoneTexture{
				Texture: &metadata.Texture{
					Name:         node.Name + ".bones",
					Width:        size,
					Height:       size,
					ChannelCount: 4,
					Format:       metadata.TextureFormatRGBA32F,
				},
				Size: size,
			}
			backing.Texture.ID = core.IdentifierAcquireNewID(backing)
			ld.boneTextures[node] = backing
			ld.frameFlags.Set(metadata.PrepResultLayerDataDirty, true)
		}
		backing.BoneCount = uint32(boneCount)
	}

	targetCount := len(model.MorphTargets)
	if targetCount > scene.MaxMorphTargets {
		ld.diagnostics.WarnTooManyMorphTargets(node.Name, targetCount, scene.MaxMorphTargets)
		targetCount = scene.MaxMorphTargets
	}
	for i := 0; i < targetCount; i++ {
		target := model.MorphTargets[i]
		model.MorphWeights[i] = target.Weight
		attributes := target.Attributes
		switch {
		case i > scene.MaxMorphTargetIndexSupportsNormals:
			attributes &= scene.MorphAttributePosition
		case i > scene.MaxMorphTargetIndexSupportsTangents:
			attributes &= scene.MorphAttributePosition | scene.MorphAttributeNormal
		}
		model.MorphAttributes[i] = attributes
	}
}

/**
 * @brief Resolves the model's bone matrices. A skin provides them packed;
 * otherwise a referenced skeleton has its joint hierarchy flattened into
 * the model's working palette whenever the skeleton reports changed joint
 * transforms. Returns the bone count, zero for unskinned models.
 */
func (ld *LayerData) refreshBonePalette(node *scene.Node) int {
	model := node.Model
	if model.Skin != nil {
		model.BoneData = model.Skin.BoneData
		model.BoneCount = model.Skin.BoneCount()
		return model.BoneCount
	}

	skeletonNode := model.SkeletonNode
	if skeletonNode == nil || skeletonNode.Skeleton == nil || skeletonNode.Skeleton.MaxIndex < 0 {
		model.BoneData = nil
		model.BoneCount = 0
		return 0
	}

	skeleton := skeletonNode.Skeleton
	boneCount := int(skeleton.MaxIndex) + 1
	needed := boneCount * scene.FloatsPerBone
	if len(model.BoneData) != needed {
		model.BoneData = make([]float32, needed)
		skeleton.BoneTransformsDirty = true
	}
	if skeleton.BoneTransformsDirty {
		writeJointPalette(skeletonNode, model.BoneData)
		skeleton.BoneTransformsDirty = false
	}
	model.BoneCount = boneCount
	return boneCount
}

// Flattens the joint hierarchy: per bone, the composed joint matrix
// followed by its normal matrix, 32 floats per slot.
func writeJointPalette(n *scene.Node, dst []float32) {
	if n.Kind == scene.NodeKindJoint && n.Joint != nil {
		index := int(n.Joint.Index)
		offset := index * scene.FloatsPerBone
		if index >= 0 && offset+scene.FloatsPerBone <= len(dst) {
			joint := n.Joint.InverseBindPose.Mul(n.Global)
			normal := math.NewMat4Transposed(joint.Inverse())
			copy(dst[offset:], joint.Data[:])
			copy(dst[offset+16:], normal.Data[:])
		}
	}
	for _, child := range n.Children {
		writeJointPalette(child, dst)
	}
}

/**
 * @brief Emits one renderable record per visible mesh subset: resolves the
 * subset's material (reusing the last name when the model declares fewer
 * names than the mesh has subsets), culls against the camera frustum,
 * selects a level of detail, builds the shader key and texture image
 * chain, classifies opacity and places the record in exactly one bucket.
 */
func (ld *LayerData) prepareModelSubsets(node *scene.Node) {
	model := node.Model
	mesh := ld.meshes.LoadMesh(node)
	if mesh == nil {
		return
	}
	ld.stats.ModelsPrepared++

	morphCount := len(model.MorphTargets)
	if morphCount > scene.MaxMorphTargets {
		morphCount = scene.MaxMorphTargets
	}

	context := ld.contextArena.Alloc()
	context.Model = node
	context.GlobalTransform = node.Global
	context.NormalMatrix = math.NewMat4Transposed(node.Global.Inverse())
	context.ModelViewProjection = node.Global
	if ld.Camera != nil {
		context.ModelViewProjection = node.Global.Mul(ld.Camera.Camera.ViewProjection())
	}
	context.Lights = ld.lightListForNode(node)
	context.BoneTexture = ld.boneTextures[node]
	context.MorphWeights = model.MorphWeights[:morphCount]
	context.MorphAttributes = model.MorphAttributes[:morphCount]
	ld.modelContexts = append(ld.modelContexts, context)

	if model.InstanceTable != nil && model.InstanceTable.DepthSortingEnabled && ld.Camera != nil {
		ld.sortInstances(model.InstanceTable)
	}

	// A model with no material names draws nothing at all.
	if len(model.MaterialNames) == 0 {
		return
	}

	var camera *scene.Camera
	if ld.Camera != nil {
		camera = ld.Camera.Camera
	}
	maxScale := maxScaleComponent(node.Global)

	for si, subset := range mesh.Subsets {
		nameIndex := math.Min(si, len(model.MaterialNames)-1)
		material := ld.materials.AcquireMaterial(model.MaterialNames[nameIndex])
		if material == nil {
			// Not resolvable this frame; the subset is retried next frame.
			continue
		}
		if material.Dirty {
			ld.frameFlags.Set(metadata.PrepResultLayerDataDirty, true)
		}

		worldBounds := subset.Bounds.Transformed(node.Global)
		if camera != nil && camera.FrustumCullingEnabled && camera.FrustumValid &&
			!camera.Frustum.IntersectsAABB(worldBounds) {
			continue
		}

		record := ld.recordArena.Alloc()
		record.Kind = metadata.RenderableKindSubset
		record.Node = node
		record.GlobalTransform = node.Global
		record.Bounds = worldBounds
		record.DepthBias = model.DepthBias
		record.Material = material
		record.Mesh = mesh
		record.Subset = subset
		record.SubsetLevelOfDetail = ld.selectLevelOfDetail(subset, worldBounds, model, maxScale)
		record.ModelContext = context
		if model.Instancing() {
			record.InstanceSerial = model.InstanceTable.Serial
		}

		flags := attributeFlags(mesh.Attributes)
		flags.Set(metadata.RenderableDirty, material.Dirty)
		flags.Set(metadata.RenderableCastsShadows, model.CastsShadows)
		flags.Set(metadata.RenderableReceivesShadows, model.ReceivesShadows)
		flags.Set(metadata.RenderableCastsReflections, model.CastsReflections)
		flags.Set(metadata.RenderableReceivesReflections, model.ReceivesReflections)
		flags.Set(metadata.RenderablePickable, ld.Config.GlobalPickingEnabled || model.Pickable)
		flags.Set(metadata.RenderableUsedInBakedLighting, model.UsedInBakedLighting)
		flags.Set(metadata.RenderablePointsTopology, mesh.PointsTopology)
		flags.Set(metadata.RenderableRequiresScreenTexture, material.RequiresScreenTexture())

		hasTransparency := material.HasUnconditionalTransparency()
		if model.InstanceTable != nil && model.InstanceTable.HasTransparency {
			hasTransparency = true
		}

		key := ld.subsetShaderKey(model, mesh, material, context)
		material.EachTextureMap(func(mapType metadata.ImageMapType, tm *metadata.TextureMap) bool {
			texture := ld.meshes.LoadRenderImage(tm)
			if texture == nil {
				// Not resident yet; the chain simply goes on without it.
				return true
			}
			image := ld.imageArena.Alloc()
			image.MapType = mapType
			image.Map = tm
			record.AppendImage(image)
			key.SetImageMap(mapType, true)
			if mapType.ContributesTransparency() && texture.HasTransparency() {
				hasTransparency = true
			}
			return true
		})

		opacity := node.GlobalOpacity * material.Opacity
		if material.Kind != metadata.MaterialKindCustom {
			// The base colour alpha factor modulates the surface exactly like
			// the uniform opacity does; custom materials own their alpha.
			opacity *= material.BaseColour.W
		}
		completelyTransparent := false
		switch {
		case opacity <= metadata.MinRenderableOpacity:
			opacity = 0.0
			completelyTransparent = true
			hasTransparency = true
		case opacity >= metadata.OpaqueOpacityThreshold:
			opacity = 1.0
		default:
			hasTransparency = true
		}
		record.Opacity = opacity
		flags.SetHasTransparency(hasTransparency)
		flags.Set(metadata.RenderableCompletelyTransparent, completelyTransparent)

		key.SetFeature(metadata.ShaderFeatureTransparency, flags.Has(metadata.RenderableHasTransparency))
		record.Flags = flags
		record.ShaderKey = key

		handle := metadata.RenderableHandle{
			Record:           record,
			CameraDistanceSq: ld.cameraDistanceSq(worldBounds.Center(), model.DepthBias),
		}
		ld.bucketRecord(handle, material)
		if model.UsedInBakedLighting {
			ld.recordBakedLighting(node, handle)
		}
		ld.stats.RecordsEmitted++
	}
}

/**
 * @brief Emits one record per live particle emitter. Particle sprites
 * never cast or receive shadows; their bucket follows the emitter's own
 * transparency flag.
 */
func (ld *LayerData) prepareParticles() {
	var camera *scene.Camera
	if ld.Camera != nil {
		camera = ld.Camera.Camera
	}

	for _, node := range ld.renderableParticles.Items() {
		particles := node.Particles
		if node.GlobalOpacity <= 0 || particles.ParticleCount <= 0 {
			continue
		}

		worldBounds := particles.Bounds.Transformed(node.Global)
		if camera != nil && camera.FrustumCullingEnabled && camera.FrustumValid &&
			!camera.Frustum.IntersectsAABB(worldBounds) {
			continue
		}

		record := ld.recordArena.Alloc()
		record.Kind = metadata.RenderableKindParticles
		record.Node = node
		record.GlobalTransform = node.Global
		record.Bounds = worldBounds
		record.Opacity = node.GlobalOpacity
		record.ParticleSeed = particles.Seed

		flags := metadata.RenderableHasAttributePosition |
			metadata.RenderableHasAttributeNormal |
			metadata.RenderableHasAttributeTexCoord0 |
			metadata.RenderableHasAttributeColour
		flags.Set(metadata.RenderableCastsReflections, particles.CastsReflections)
		flags.SetHasTransparency(particles.HasTransparency)
		record.Flags = flags

		var key metadata.ShaderKey
		key.SetFeature(metadata.ShaderFeatureTransparency, particles.HasTransparency)
		record.ShaderKey = key

		handle := metadata.RenderableHandle{
			Record:           record,
			CameraDistanceSq: ld.cameraDistanceSq(worldBounds.Center(), 0),
		}
		ld.bucketRecord(handle, nil)
		ld.stats.RecordsEmitted++
	}
}

// 2d content is authored y-down; the flip is folded into each item's MVP.
var item2DFlip = math.NewMat4Scale(math.NewVec3(1, -1, 1))

/**
 * @brief Refreshes every classified 2d overlay item: composes its MVP for
 * the resolved camera and re-measures its text run, if any. A failed
 * measurement leaves the previous glyph count in place and retries next
 * frame.
 */
func (ld *LayerData) prepareItem2Ds() {
	if ld.renderableItem2Ds.Len() == 0 {
		return
	}

	haveCamera := ld.Camera != nil
	var viewProjection math.Mat4
	if haveCamera {
		viewProjection = ld.Camera.Camera.ViewProjection()
	}

	for _, node := range ld.renderableItem2Ds.Items() {
		item := node.Item2D
		if haveCamera {
			item.MVP = item2DFlip.Mul(node.Global).Mul(viewProjection)
		}
		if item.Text != "" && item.FontName != "" && ld.text != nil {
			measurement, err := ld.text.MeasureText(item.FontName, item.Text)
			if err != nil {
				core.LogDebug("item2d '%s': text not measurable this frame: %v", node.Name, err)
				continue
			}
			item.GlyphCount = int(measurement.GlyphCount)
		}
	}
}

/**
 * @brief Derives the shader variant key shared by a model subset: material
 * family and fixed-function state, light and shadow counts with per-light
 * shadow bits, deformation counts, and the feature bits that select
 * generated code paths. Image presence bits are added afterwards, while
 * the texture chain is resolved.
 */
func (ld *LayerData) subsetShaderKey(model *scene.Model, mesh *metadata.RenderMesh, material *metadata.Material, context *metadata.ModelContext) metadata.ShaderKey {
	var key metadata.ShaderKey
	key.SetMaterialKind(material.Kind)
	key.SetCullMode(material.CullMode)
	key.SetBlendMode(material.BlendMode)
	key.SetAlphaMode(material.AlphaMode)
	key.SetLightCount(uint32(len(context.Lights)))
	key.SetMorphTargetCount(uint32(len(context.MorphWeights)))

	shadowed := uint32(0)
	for i, light := range context.Lights {
		if light.Shadows {
			key.SetLightShadows(uint32(i), true)
			shadowed++
		}
	}
	key.SetShadowMapCount(shadowed)

	key.SetFeature(metadata.ShaderFeatureLighting, material.Lighting == metadata.MaterialLightingFragment && len(context.Lights) > 0)
	key.SetFeature(metadata.ShaderFeatureShadows, shadowed > 0)
	key.SetFeature(metadata.ShaderFeatureSsao, ld.Config.SsaoEnabled)
	key.SetFeature(metadata.ShaderFeatureScreenTexture, material.RequiresScreenTexture())
	key.SetFeature(metadata.ShaderFeatureScreenMipTexture, material.RequiresScreenMipTexture())
	key.SetFeature(metadata.ShaderFeatureDepthTexture, material.RequiresDepthTexture())
	key.SetFeature(metadata.ShaderFeatureSkinning, context.BoneTexture != nil && mesh.Attributes.Has(metadata.VertexAttributeJointAndWeight))
	key.SetFeature(metadata.ShaderFeatureMorphing, len(context.MorphWeights) > 0 && mesh.Attributes.Has(metadata.VertexAttributeMorphTarget))
	key.SetFeature(metadata.ShaderFeatureInstancing, model.Instancing())
	key.SetFeature(metadata.ShaderFeatureVertexColours, mesh.Attributes.Has(metadata.VertexAttributeColour))
	key.SetFeature(metadata.ShaderFeatureLightmap, model.UsedInBakedLighting && model.LightmapKey != "")
	key.SetFeature(metadata.ShaderFeaturePointsTopology, mesh.PointsTopology)
	return key
}

/**
 * @brief Picks the subset's level of detail. The subset's world bounds are
 * projected onto the view axis to get a camera distance (constant 1 for
 * orthographic cameras, zero when the camera plane cuts the box); each lod
 * range is accepted while its projected screen size stays at or below the
 * camera's pixel-error threshold, and the coarsest accepted range wins.
 * Level zero is the full-detail geometry.
 */
func (ld *LayerData) selectLevelOfDetail(subset *metadata.MeshSubset, worldBounds math.Extents3D, model *scene.Model, maxScale float32) uint32 {
	if len(subset.Lods) == 0 || ld.meshLodThreshold <= 0 || model.LevelOfDetailBias <= 0 || ld.Camera == nil {
		return 0
	}

	camera := ld.Camera.Camera
	distance := float32(1.0)
	if camera.Projection == scene.CameraProjectionPerspective {
		plane := math.NewPlane(ld.cameraPosition, ld.cameraDirection)
		minD := plane.Distance(worldBounds.Support(ld.cameraDirection.MulScalar(-1)))
		maxD := plane.Distance(worldBounds.Support(ld.cameraDirection))
		switch {
		case minD*maxD < 0:
			// The camera plane cuts the box: always full detail.
			return 0
		case minD >= 0:
			distance = minD
		default:
			distance = -maxD
		}
	}

	denominator := distance * camera.LevelOfDetailMultiplier()
	if denominator <= 0 {
		return 0
	}

	biasScale := maxScale / model.LevelOfDetailBias
	level := uint32(0)
	for i := range subset.Lods {
		screenSize := subset.Lods[i].Distance * biasScale / denominator
		if screenSize > ld.meshLodThreshold {
			break
		}
		level = uint32(i + 1)
	}
	return level
}

/**
 * @brief Places a record into exactly one classification bucket by strict
 * precedence (screen texture, then transparency, then opaque) and folds
 * the material's pass requirements into the frame flags.
 */
func (ld *LayerData) bucketRecord(handle metadata.RenderableHandle, material *metadata.Material) {
	record := handle.Record
	switch {
	case record.Flags.Has(metadata.RenderableRequiresScreenTexture):
		ld.screenTextureObjects = append(ld.screenTextureObjects, handle)
		ld.frameFlags.Set(metadata.PrepResultRequiresScreenTexture, true)
		if material != nil && material.RequiresScreenMipTexture() {
			ld.frameFlags.Set(metadata.PrepResultRequiresScreenMipTexture, true)
		}
	case record.Flags.Has(metadata.RenderableHasTransparency):
		ld.transparentObjects = append(ld.transparentObjects, handle)
	default:
		ld.opaqueObjects = append(ld.opaqueObjects, handle)
	}

	if material != nil && material.RequiresDepthTexture() {
		ld.frameFlags.Set(metadata.PrepResultRequiresDepthTexture, true)
	}
	if material != nil && material.RequiresAoTexture() {
		ld.frameFlags.Set(metadata.PrepResultRequiresSsaoPass, true)
		ld.frameFlags.Set(metadata.PrepResultRequiresDepthTexture, true)
	}
}

func (ld *LayerData) recordBakedLighting(node *scene.Node, handle metadata.RenderableHandle) {
	n := len(ld.bakedLightingModels)
	if n == 0 || ld.bakedLightingModels[n-1].Model != node {
		ld.bakedLightingModels = append(ld.bakedLightingModels, metadata.BakedLightingModel{Model: node})
		n++
	}
	group := &ld.bakedLightingModels[n-1]
	group.Renderables = append(group.Renderables, handle)
}

/**
 * @brief The sort key for camera-relative ordering: the signed distance of
 * a world point along the view axis, plus the sign-preserving square of
 * the depth bias. Projection distance rather than euclidean distance so
 * wide fields of view do not produce parallax sorting artifacts.
 */
func (ld *LayerData) cameraDistanceSq(worldCenter math.Vec3, depthBias float32) float32 {
	if ld.Camera == nil {
		return 0
	}
	difference := worldCenter.Sub(ld.cameraPosition)
	return difference.Dot(ld.cameraDirection) + signedSquare(depthBias)
}

func signedSquare(v float32) float32 {
	if v >= 0 {
		return v * v
	}
	return -(v * v)
}

// Back to front along the view axis, in place. The authored serial is
// untouched: sorting reorders, it does not change contents.
func (ld *LayerData) sortInstances(table *scene.InstanceTable) {
	sort.Slice(table.Entries, func(i, j int) bool {
		di := table.Entries[i].Position().Sub(ld.cameraPosition).Dot(ld.cameraDirection)
		dj := table.Entries[j].Position().Sub(ld.cameraPosition).Dot(ld.cameraDirection)
		return di > dj
	})
}

func maxScaleComponent(m math.Mat4) float32 {
	s := m.ScaleComponents()
	return math.Max(math.Max(math.Abs(s.X), math.Abs(s.Y)), math.Abs(s.Z))
}

func attributeFlags(attributes metadata.VertexAttributes) metadata.RenderableFlags {
	var flags metadata.RenderableFlags
	if attributes.Has(metadata.VertexAttributePosition) {
		flags |= metadata.RenderableHasAttributePosition
	}
	if attributes.Has(metadata.VertexAttributeNormal) {
		flags |= metadata.RenderableHasAttributeNormal
	}
	if attributes.Has(metadata.VertexAttributeTexCoord0) {
		flags |= metadata.RenderableHasAttributeTexCoord0
	}
	if attributes.Has(metadata.VertexAttributeTexCoord1) {
		flags |= metadata.RenderableHasAttributeTexCoord1
	}
	if attributes.Has(metadata.VertexAttributeLightmapUV) {
		flags |= metadata.RenderableHasAttributeLightmapUV
	}
	if attributes.Has(metadata.VertexAttributeTangentBinormal) {
		flags |= metadata.RenderableHasAttributeTangentBinormal
	}
	if attributes.Has(metadata.VertexAttributeColour) {
		flags |= metadata.RenderableHasAttributeColour
	}
	if attributes.Has(metadata.VertexAttributeJointAndWeight) {
		flags |= metadata.RenderableHasAttributeJointAndWeight
	}
	if attributes.Has(metadata.VertexAttributeMorphTarget) {
		flags |= metadata.RenderableHasAttributeMorphTarget
	}
	return flags
}
