package metadata

import "fmt"

/** @brief The number of 32-bit words a shader key packs its fields into. */
const ShaderKeyWordCount = 4

/** @brief Single-bit shader variant features, packed into key word 0. */
type ShaderFeature uint32

const (
	/** @brief The variant evaluates fragment lighting. */
	ShaderFeatureLighting ShaderFeature = iota
	/** @brief The variant samples shadow maps. */
	ShaderFeatureShadows
	/** @brief The variant samples the screen space ambient occlusion texture. */
	ShaderFeatureSsao
	/** @brief The variant samples a backbuffer copy. */
	ShaderFeatureScreenTexture
	/** @brief The variant samples mip levels of the backbuffer copy. */
	ShaderFeatureScreenMipTexture
	/** @brief The variant samples the pre-rendered depth texture. */
	ShaderFeatureDepthTexture
	/** @brief The variant reads a bone transform texture. */
	ShaderFeatureSkinning
	/** @brief The variant blends morph target deltas. */
	ShaderFeatureMorphing
	/** @brief The variant reads per-instance transforms. */
	ShaderFeatureInstancing
	/** @brief The variant blends its output. */
	ShaderFeatureTransparency
	/** @brief The variant reads vertex colours. */
	ShaderFeatureVertexColours
	/** @brief The variant samples a reflection probe. */
	ShaderFeatureReflectionProbe
	/** @brief The variant samples a baked lightmap. */
	ShaderFeatureLightmap
	/** @brief The variant renders point topology. */
	ShaderFeaturePointsTopology

	shaderFeatureCount
)

/**
 * @brief A fixed-size, bit-packed description of a shader variant. Keys
 * are plain comparable values: equal keys select the same compiled
 * variant, and Less imposes a strict total order so variant lists can be
 * sorted deterministically. Word 0 holds boolean features, word 1 holds
 * small counts and enums, word 2 the set of bound texture map slots and
 * word 3 a per-light shadow mask.
 */
type ShaderKey [ShaderKeyWordCount]uint32

// Field positions inside word 1.
const (
	shaderKeyLightCountShift  = 0
	shaderKeyLightCountBits   = 5
	shaderKeyShadowCountShift = 5
	shaderKeyShadowCountBits  = 4
	shaderKeyMorphCountShift  = 9
	shaderKeyMorphCountBits   = 4
	shaderKeyCullModeShift    = 13
	shaderKeyCullModeBits     = 2
	shaderKeyBlendModeShift   = 15
	shaderKeyBlendModeBits    = 2
	shaderKeyAlphaModeShift   = 17
	shaderKeyAlphaModeBits    = 2
	shaderKeyKindShift        = 19
	shaderKeyKindBits         = 2
)

func (k *ShaderKey) setBits(word, shift, width, value uint32) {
	mask := (uint32(1)<<width - 1) << shift
	k[word] = (k[word] &^ mask) | ((value << shift) & mask)
}

func (k ShaderKey) bits(word, shift, width uint32) uint32 {
	return (k[word] >> shift) & (uint32(1)<<width - 1)
}

/** @brief Turns a boolean feature on or off. */
func (k *ShaderKey) SetFeature(f ShaderFeature, on bool) {
	if on {
		k[0] |= 1 << uint32(f)
	} else {
		k[0] &^= 1 << uint32(f)
	}
}

/** @brief Indicates if a boolean feature is set. */
func (k ShaderKey) HasFeature(f ShaderFeature) bool {
	return k[0]&(1<<uint32(f)) != 0
}

/** @brief Stores the number of lights the variant iterates. */
func (k *ShaderKey) SetLightCount(n uint32) {
	k.setBits(1, shaderKeyLightCountShift, shaderKeyLightCountBits, n)
}

func (k ShaderKey) LightCount() uint32 {
	return k.bits(1, shaderKeyLightCountShift, shaderKeyLightCountBits)
}

/** @brief Stores the number of shadow maps the variant samples. */
func (k *ShaderKey) SetShadowMapCount(n uint32) {
	k.setBits(1, shaderKeyShadowCountShift, shaderKeyShadowCountBits, n)
}

func (k ShaderKey) ShadowMapCount() uint32 {
	return k.bits(1, shaderKeyShadowCountShift, shaderKeyShadowCountBits)
}

/** @brief Stores the number of morph targets the variant blends. */
func (k *ShaderKey) SetMorphTargetCount(n uint32) {
	k.setBits(1, shaderKeyMorphCountShift, shaderKeyMorphCountBits, n)
}

func (k ShaderKey) MorphTargetCount() uint32 {
	return k.bits(1, shaderKeyMorphCountShift, shaderKeyMorphCountBits)
}

/** @brief Stores the face culling mode. */
func (k *ShaderKey) SetCullMode(mode FaceCullMode) {
	k.setBits(1, shaderKeyCullModeShift, shaderKeyCullModeBits, uint32(mode))
}

func (k ShaderKey) CullMode() FaceCullMode {
	return FaceCullMode(k.bits(1, shaderKeyCullModeShift, shaderKeyCullModeBits))
}

/** @brief Stores the blend mode. */
func (k *ShaderKey) SetBlendMode(mode BlendMode) {
	k.setBits(1, shaderKeyBlendModeShift, shaderKeyBlendModeBits, uint32(mode))
}

func (k ShaderKey) BlendMode() BlendMode {
	return BlendMode(k.bits(1, shaderKeyBlendModeShift, shaderKeyBlendModeBits))
}

/** @brief Stores the alpha mode. */
func (k *ShaderKey) SetAlphaMode(mode AlphaMode) {
	k.setBits(1, shaderKeyAlphaModeShift, shaderKeyAlphaModeBits, uint32(mode))
}

func (k ShaderKey) AlphaMode() AlphaMode {
	return AlphaMode(k.bits(1, shaderKeyAlphaModeShift, shaderKeyAlphaModeBits))
}

/** @brief Stores the material shading family. */
func (k *ShaderKey) SetMaterialKind(kind MaterialKind) {
	k.setBits(1, shaderKeyKindShift, shaderKeyKindBits, uint32(kind))
}

func (k ShaderKey) MaterialKind() MaterialKind {
	return MaterialKind(k.bits(1, shaderKeyKindShift, shaderKeyKindBits))
}

/** @brief Marks a texture map slot as bound. */
func (k *ShaderKey) SetImageMap(t ImageMapType, on bool) {
	if on {
		k[2] |= 1 << uint32(t)
	} else {
		k[2] &^= 1 << uint32(t)
	}
}

func (k ShaderKey) HasImageMap(t ImageMapType) bool {
	return k[2]&(1<<uint32(t)) != 0
}

/** @brief Marks whether light index i casts shadows. */
func (k *ShaderKey) SetLightShadows(i uint32, on bool) {
	if i >= 32 {
		return
	}
	if on {
		k[3] |= 1 << i
	} else {
		k[3] &^= 1 << i
	}
}

func (k ShaderKey) LightShadows(i uint32) bool {
	if i >= 32 {
		return false
	}
	return k[3]&(1<<i) != 0
}

/** @brief Reports strict lexicographic word order between two keys. */
func (k ShaderKey) Less(other ShaderKey) bool {
	for i := 0; i < ShaderKeyWordCount; i++ {
		if k[i] != other[i] {
			return k[i] < other[i]
		}
	}
	return false
}

func (k ShaderKey) Equal(other ShaderKey) bool { return k == other }

func (k ShaderKey) String() string {
	return fmt.Sprintf("%08x:%08x:%08x:%08x", k[0], k[1], k[2], k[3])
}
