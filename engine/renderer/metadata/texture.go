package metadata

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
	/** @brief The default base colour texture name. */
	DEFAULT_BASE_COLOUR_TEXTURE_NAME string = "default_BASE"
	/** @brief The default specular texture name. */
	DEFAULT_SPECULAR_TEXTURE_NAME string = "default_SPEC"
	/** @brief The default normal texture name. */
	DEFAULT_NORMAL_TEXTURE_NAME string = "default_NORM"
)

type TextureReference struct {
	ReferenceCount uint64
	Texture        *Texture
	AutoRelease    bool
}

// Also used as result_data from job.
type TextureLoadParams struct {
	ResourceName      string
	OutTexture        *Texture
	TempTexture       *Texture
	CurrentGeneration uint32
	ImageResource     *Resource
}

type TextureFlag int

const (
	/** @brief Indicates if the texture has transparency. */
	TextureFlagHasTransparency TextureFlag = 0x1
	/** @brief Indicates if the texture can be written (rendered) to. */
	TextureFlagIsWriteable TextureFlag = 0x2
	/** @brief Indicates if the texture was created via wrapping vs traditional creation. */
	TextureFlagIsWrapped TextureFlag = 0x4
	/** @brief Indicates if the texture carries a full mip chain. */
	TextureFlagHasMipmaps TextureFlag = 0x8
)

/** @brief Holds bit flags for textures.. */
type TextureFlagBits uint8

/**
 * @brief Represents various types of textures.
 */
type TextureType int

const (
	/** @brief A standard two-dimensional texture. */
	TextureType2d TextureType = iota
	/** @brief A cube texture, used for cubemaps and omnidirectional shadow maps. */
	TextureTypeCube
)

/** @brief The pixel formats a texture can be stored in. */
type TextureFormat int

const (
	/** @brief 8 bits per channel RGBA. */
	TextureFormatRGBA8 TextureFormat = iota
	/** @brief A single 8 bit channel. */
	TextureFormatR8
	/** @brief Two 8 bit channels. */
	TextureFormatRG8
	/** @brief Three 8 bit channels, no alpha. */
	TextureFormatRGB8
	/** @brief 16 bit float per channel RGBA. */
	TextureFormatRGBA16F
	/** @brief 32 bit float per channel RGBA. Used for bone transform textures. */
	TextureFormatRGBA32F
	/** @brief A 32 bit depth format. */
	TextureFormatDepth32F
)

/** @brief Returns the number of colour channels the format carries. */
func (f TextureFormat) ChannelCount() uint8 {
	switch f {
	case TextureFormatR8, TextureFormatDepth32F:
		return 1
	case TextureFormatRG8:
		return 2
	case TextureFormatRGB8:
		return 3
	}
	return 4
}

/**
 * @brief Selects the channel a single-valued map samples from its texture.
 */
type TextureChannel uint8

const (
	TextureChannelRed TextureChannel = iota
	TextureChannelGreen
	TextureChannelBlue
	TextureChannelAlpha
)

func (c TextureChannel) String() string {
	switch c {
	case TextureChannelRed:
		return "r"
	case TextureChannelGreen:
		return "g"
	case TextureChannelBlue:
		return "b"
	case TextureChannelAlpha:
		return "a"
	}
	return "r"
}

/**
 * @brief Represents a texture.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID uint32
	/** @brief The texture type. */
	TextureType TextureType
	/** @brief The pixel format of the texture. */
	Format TextureFormat
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief Holds various Flags for this texture. */
	Flags TextureFlagBits
	/** @brief The texture Generation. Incremented every time the data is reloaded. */
	Generation uint32
	/** @brief The texture Name. */
	Name string
	/** @brief The raw texture data (pixels). */
	InternalData interface{}
}

/** @brief Indicates whether any texel carries an alpha value below one. */
func (t *Texture) HasTransparency() bool {
	return t != nil && TextureFlag(t.Flags)&TextureFlagHasTransparency != 0
}

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
)

type TextureRepeat int

const (
	TextureRepeatRepeat         TextureRepeat = 0x1
	TextureRepeatMirroredRepeat TextureRepeat = 0x2
	TextureRepeatClampToEdge    TextureRepeat = 0x3
	TextureRepeatClampToBorder  TextureRepeat = 0x4
)

/**
 * @brief A structure which maps a texture, sampling channel and
 * other properties.
 */
type TextureMap struct {
	/** @brief A pointer to a Texture. */
	Texture *Texture
	/** @brief The channel sampled when the map provides a single value. */
	Channel TextureChannel
	/** @brief Texture filtering mode for minification. */
	FilterMinify TextureFilter
	/** @brief Texture filtering mode for magnification. */
	FilterMagnify TextureFilter
	/** @brief The repeat mode on the U axis (or X, or S) */
	RepeatU TextureRepeat
	/** @brief The repeat mode on the V axis (or Y, or T) */
	RepeatV TextureRepeat
	/** @brief The repeat mode on the W axis (or Z, or U) */
	RepeatW TextureRepeat
	/** @brief A pointer to internal, render API-specific data. Typically the internal sampler. */
	InternalData interface{}
}

/**
 * @brief Resolves the channel the map actually samples. Maps authored
 * against a channel the texture format does not carry fall back to the
 * red channel rather than sampling garbage.
 */
func (tm *TextureMap) EffectiveChannel() TextureChannel {
	if tm.Texture == nil {
		return tm.Channel
	}
	if uint8(tm.Channel) >= tm.Texture.Format.ChannelCount() {
		return TextureChannelRed
	}
	return tm.Channel
}

type DefaultTexture struct {
	DefaultTexture           *Texture
	TexturePixels            []uint8
	DefaultBaseColourTexture *Texture
	BaseColourTexturePixels  []uint8
	DefaultSpecularTexture   *Texture
	SpecularTexturePixels    []uint8
	DefaultNormalTexture     *Texture
	NormalTexturePixels      []uint8
}

func NewDefaultTexture() *DefaultTexture {
	return &DefaultTexture{
		DefaultTexture:           &Texture{},
		DefaultBaseColourTexture: &Texture{},
		DefaultSpecularTexture:   &Texture{},
		DefaultNormalTexture:     &Texture{},
	}
}

// CreateSkeletonTextures builds the CPU side of the fallback textures; the
// actual GPU objects are created later by whichever backend consumes them.
func (ts *DefaultTexture) CreateSkeletonTextures() bool {
	// NOTE: Create default texture, a 256x256 blue/white checkerboard pattern.
	// This is done in code to eliminate asset dependencies.
	texDimension := uint32(256)
	channels := uint32(4)
	pixelCount := uint32(texDimension * texDimension)

	pixels := make([]uint8, pixelCount*channels)
	for i := range pixels {
		pixels[i] = 255
	}

	// Each pixel.
	for row := uint32(0); row < texDimension; row++ {
		for col := uint32(0); col < texDimension; col++ {
			index := uint32((row * texDimension) + col)
			index_bpp := uint32(index * channels)
			if row%2 != 0 {
				if col%2 != 0 {
					pixels[index_bpp+0] = 0
					pixels[index_bpp+1] = 0
				}
			} else {
				if col%2 == 0 {
					pixels[index_bpp+0] = 0
					pixels[index_bpp+1] = 0
				}
			}
		}
	}

	ts.DefaultTexture.Name = DEFAULT_TEXTURE_NAME
	ts.DefaultTexture.Width = texDimension
	ts.DefaultTexture.Height = texDimension
	ts.DefaultTexture.ChannelCount = 4
	ts.DefaultTexture.Format = TextureFormatRGBA8
	ts.DefaultTexture.Generation = InvalidID
	ts.DefaultTexture.Flags = 0
	ts.DefaultTexture.TextureType = TextureType2d
	ts.TexturePixels = pixels

	// Base colour texture, all white.
	basePixels := make([]uint8, 16*16*4)
	for i := range basePixels {
		basePixels[i] = 255
	}

	ts.DefaultBaseColourTexture.Name = DEFAULT_BASE_COLOUR_TEXTURE_NAME
	ts.DefaultBaseColourTexture.Width = 16
	ts.DefaultBaseColourTexture.Height = 16
	ts.DefaultBaseColourTexture.ChannelCount = 4
	ts.DefaultBaseColourTexture.Format = TextureFormatRGBA8
	ts.DefaultBaseColourTexture.Generation = InvalidID
	ts.DefaultBaseColourTexture.Flags = 0
	ts.DefaultBaseColourTexture.TextureType = TextureType2d
	ts.BaseColourTexturePixels = basePixels

	// Specular texture, all black (no specular).
	specPixels := make([]uint8, 16*16*4)

	ts.DefaultSpecularTexture.Name = DEFAULT_SPECULAR_TEXTURE_NAME
	ts.DefaultSpecularTexture.Width = 16
	ts.DefaultSpecularTexture.Height = 16
	ts.DefaultSpecularTexture.ChannelCount = 4
	ts.DefaultSpecularTexture.Format = TextureFormatRGBA8
	ts.DefaultSpecularTexture.Generation = InvalidID
	ts.DefaultSpecularTexture.Flags = 0
	ts.DefaultSpecularTexture.TextureType = TextureType2d
	ts.SpecularTexturePixels = specPixels

	// Normal texture, a flat z-up normal.
	normalPixels := make([]uint8, 16*16*4)
	for row := 0; row < 16; row++ {
		for col := 0; col < 16; col++ {
			index := uint32((row * 16) + col)
			index_bpp := index * channels
			normalPixels[index_bpp+0] = 128
			normalPixels[index_bpp+1] = 128
			normalPixels[index_bpp+2] = 255
			normalPixels[index_bpp+3] = 255
		}
	}

	ts.DefaultNormalTexture.Name = DEFAULT_NORMAL_TEXTURE_NAME
	ts.DefaultNormalTexture.Width = 16
	ts.DefaultNormalTexture.Height = 16
	ts.DefaultNormalTexture.ChannelCount = 4
	ts.DefaultNormalTexture.Format = TextureFormatRGBA8
	ts.DefaultNormalTexture.Generation = InvalidID
	ts.DefaultNormalTexture.Flags = 0
	ts.DefaultNormalTexture.TextureType = TextureType2d
	ts.NormalTexturePixels = normalPixels

	return true
}

func (ts *DefaultTexture) DestroyDefaultTextures() {
	ts.DestroySkeletonTexture(ts.DefaultTexture)
	ts.DestroySkeletonTexture(ts.DefaultBaseColourTexture)
	ts.DestroySkeletonTexture(ts.DefaultSpecularTexture)
	ts.DestroySkeletonTexture(ts.DefaultNormalTexture)
}

func (ts *DefaultTexture) DestroySkeletonTexture(texture *Texture) {
	texture.ID = InvalidID
	texture.Generation = InvalidID
}
