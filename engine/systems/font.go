package systems

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/spaghettifunk/lumina/engine/assets"
	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

// Size used for system font faces when the configuration leaves it unset.
const defaultSystemFontSize uint16 = 20

type BitmapFontInternalData struct {
	LoadedResource *metadata.Resource
	// Casted pointer to the resource data for convenience.
	ResourceData *metadata.BitmapFontResourceData
}

type BitmapFontLookup struct {
	ID             uint16
	ReferenceCount uint16
	Font           *BitmapFontInternalData
}

type SystemFontLookup struct {
	ID             uint16
	ReferenceCount uint16
	Face           string
	DefaultSize    uint16
	/** @brief The index of this face within its collection. */
	Index int32
	/** @brief The parsed collection the face belongs to, shared between faces. */
	Collection *sfnt.Collection
	// Faces built per requested pixel size.
	sizeFaces map[uint16]font.Face
}

/**
 * @brief Loads fonts and measures text runs against them. Bitmap fonts
 * bring their own pre-rendered atlas and glyph table; system fonts are
 * measured analytically through their parsed outlines, one cached face
 * per requested size. Measurement runs under the registry lock since
 * faces are not safe for concurrent use.
 */
type FontSystem struct {
	config *metadata.FontSystemConfig

	mutex            sync.Mutex
	bitmapFontLookup map[string]uint16
	systemFontLookup map[string]uint16
	bitmapFonts      []*BitmapFontLookup
	systemFonts      []*SystemFontLookup

	buffers *BufferManager
	assets  *assets.AssetManager
}

func NewFontSystem(config *metadata.FontSystemConfig, buffers *BufferManager, assetManager *assets.AssetManager) (*FontSystem, error) {
	if config.MaxBitmapFontCount == 0 || config.MaxSystemFontCount == 0 {
		err := fmt.Errorf("font system config.MaxBitmapFontCount and config.MaxSystemFontCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}

	fs := &FontSystem{
		config:           config,
		bitmapFontLookup: make(map[string]uint16),
		systemFontLookup: make(map[string]uint16),
		bitmapFonts:      make([]*BitmapFontLookup, config.MaxBitmapFontCount),
		systemFonts:      make([]*SystemFontLookup, config.MaxSystemFontCount),
		buffers:          buffers,
		assets:           assetManager,
	}
	for i := range fs.bitmapFonts {
		fs.bitmapFonts[i] = &BitmapFontLookup{ID: metadata.InvalidIDUint16}
	}
	for i := range fs.systemFonts {
		fs.systemFonts[i] = &SystemFontLookup{ID: metadata.InvalidIDUint16}
	}

	// Load up any default fonts.
	for i := 0; i < int(config.DefaultBitmapFontCount); i++ {
		if err := fs.LoadBitmapFont(config.BitmapFontConfigs[i]); err != nil {
			core.LogError("failed to load bitmap font '%s'", config.BitmapFontConfigs[i].Name)
			return nil, err
		}
	}
	for i := 0; i < int(config.DefaultSystemFontCount); i++ {
		if err := fs.LoadSystemFont(config.SystemFontConfigs[i]); err != nil {
			core.LogError("failed to load system font '%s'", config.SystemFontConfigs[i].Name)
			return nil, err
		}
	}

	return fs, nil
}

func (fs *FontSystem) Shutdown() error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	for i := range fs.bitmapFonts {
		lookup := fs.bitmapFonts[i]
		if lookup.ID == metadata.InvalidIDUint16 {
			continue
		}
		data := lookup.Font.ResourceData.Data
		if data.Atlas != nil && data.Atlas.Texture != nil {
			fs.buffers.ReleaseTexture(data.Atlas.Texture.Name)
			data.Atlas.Texture = nil
		}
		if err := fs.assets.UnloadAsset(lookup.Font.LoadedResource); err != nil {
			core.LogError(err.Error())
		}
		fs.bitmapFonts[i] = &BitmapFontLookup{ID: metadata.InvalidIDUint16}
	}
	fs.bitmapFontLookup = make(map[string]uint16)

	for i := range fs.systemFonts {
		fs.systemFonts[i] = &SystemFontLookup{ID: metadata.InvalidIDUint16}
	}
	fs.systemFontLookup = make(map[string]uint16)

	return nil
}

/**
 * @brief Loads a bitmap font and acquires its first atlas page as a
 * texture. Loading an already-known name is not an error; the existing
 * font keeps serving.
 */
func (fs *FontSystem) LoadBitmapFont(config *metadata.BitmapFontConfig) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if id, found := fs.bitmapFontLookup[config.Name]; found && id != metadata.InvalidIDUint16 {
		core.LogWarn("a font named '%s' already exists and will not be loaded again", config.Name)
		return nil
	}

	id := freeFontSlot(len(fs.bitmapFonts), func(i int) bool { return fs.bitmapFonts[i].ID == metadata.InvalidIDUint16 })
	if id == metadata.InvalidIDUint16 {
		return fmt.Errorf("no space left for a new bitmap font; increase MaxBitmapFontCount above %d", fs.config.MaxBitmapFontCount)
	}

	res, err := fs.assets.LoadAsset(config.ResourceName, metadata.ResourceTypeBitmapFont, nil)
	if err != nil {
		core.LogError("failed to load bitmap font resource '%s'", config.ResourceName)
		return err
	}
	data := res.Data.(*metadata.BitmapFontResourceData)

	// Acquire the first atlas page. Measurement only needs the glyph
	// table, but the page rides along so 2d passes can sample it.
	if len(data.Pages) > 0 {
		texture, err := fs.buffers.AcquireTexture(data.Pages[0].Name, true)
		if err != nil {
			fs.assets.UnloadAsset(res)
			return err
		}
		if data.Data.Atlas == nil {
			data.Data.Atlas = &metadata.TextureMap{}
		}
		data.Data.Atlas.Texture = texture
	}
	setupFontData(data.Data)

	lookup := fs.bitmapFonts[id]
	lookup.Font = &BitmapFontInternalData{
		LoadedResource: res,
		ResourceData:   data,
	}
	lookup.ID = id
	fs.bitmapFontLookup[config.Name] = id

	core.LogDebug("loaded bitmap font '%s' (%d glyphs)", config.Name, len(data.Data.Glyphs))
	return nil
}

/**
 * @brief Loads a system font file and registers one entry per face it
 * carries. The parsed collection is shared between the faces; the
 * resource wrapper is released once the lookups hold it.
 */
func (fs *FontSystem) LoadSystemFont(config *metadata.SystemFontConfig) error {
	res, err := fs.assets.LoadAsset(config.ResourceName, metadata.ResourceTypeSystemFont, nil)
	if err != nil {
		core.LogError("failed to load system font resource '%s'", config.ResourceName)
		return err
	}
	data := res.Data.(*metadata.SystemFontResourceData)

	size := config.DefaultSize
	if size == 0 {
		size = defaultSystemFontSize
	}

	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	for i, face := range data.Fonts {
		if id, found := fs.systemFontLookup[face.Name]; found && id != metadata.InvalidIDUint16 {
			core.LogWarn("a font named '%s' already exists and will not be loaded again", face.Name)
			continue
		}

		id := freeFontSlot(len(fs.systemFonts), func(i int) bool { return fs.systemFonts[i].ID == metadata.InvalidIDUint16 })
		if id == metadata.InvalidIDUint16 {
			return fmt.Errorf("no space left for a new system font; increase MaxSystemFontCount above %d", fs.config.MaxSystemFontCount)
		}

		lookup := fs.systemFonts[id]
		lookup.Face = face.Name
		lookup.DefaultSize = size
		lookup.Index = int32(i)
		lookup.Collection = data.FontBinary
		lookup.sizeFaces = make(map[uint16]font.Face)

		// Build the default size face up front so the first measurement
		// does not pay for glyph parsing.
		if _, err := lookup.faceForSize(size); err != nil {
			core.LogError("failed to build face '%s' at size %d: %s", face.Name, size, err.Error())
			continue
		}

		lookup.ID = id
		fs.systemFontLookup[face.Name] = id
		core.LogDebug("loaded system font face '%s' (collection index %d)", face.Name, i)
	}

	return fs.assets.UnloadAsset(res)
}

/**
 * @brief Measures a text run against the named font. Bitmap fonts walk
 * their glyph table at their baked size; system fonts measure at the size
 * they were registered with. Unknown names are an error so callers can
 * skip the text for the frame and retry once the font is loaded.
 */
func (fs *FontSystem) MeasureText(fontName, text string) (metadata.TextMeasurement, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if id, found := fs.bitmapFontLookup[fontName]; found && id != metadata.InvalidIDUint16 {
		return measureBitmapText(fs.bitmapFonts[id].Font.ResourceData.Data, text), nil
	}
	if id, found := fs.systemFontLookup[fontName]; found && id != metadata.InvalidIDUint16 {
		lookup := fs.systemFonts[id]
		return lookup.measure(lookup.DefaultSize, text)
	}
	return metadata.TextMeasurement{}, fmt.Errorf("no font named '%s' is loaded", fontName)
}

/**
 * @brief Measures a text run at an explicit pixel size. System fonts
 * build (and cache) a face for the size; bitmap fonts scale their baked
 * measurement, which is approximate but avoids re-rendering atlases.
 */
func (fs *FontSystem) MeasureTextAt(fontName string, size uint16, text string) (metadata.TextMeasurement, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if id, found := fs.systemFontLookup[fontName]; found && id != metadata.InvalidIDUint16 {
		return fs.systemFonts[id].measure(size, text)
	}
	if id, found := fs.bitmapFontLookup[fontName]; found && id != metadata.InvalidIDUint16 {
		data := fs.bitmapFonts[id].Font.ResourceData.Data
		measurement := measureBitmapText(data, text)
		if data.Size > 0 && size > 0 && uint32(size) != data.Size {
			scale := float32(size) / float32(data.Size)
			measurement.Width *= scale
			measurement.Height *= scale
		}
		return measurement, nil
	}
	return metadata.TextMeasurement{}, fmt.Errorf("no font named '%s' is loaded", fontName)
}

/**
 * @brief Takes a reference on a bitmap font and returns its glyph data,
 * for callers that build geometry themselves.
 */
func (fs *FontSystem) Acquire(fontName string) (*metadata.FontData, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	id, found := fs.bitmapFontLookup[fontName]
	if !found || id == metadata.InvalidIDUint16 {
		return nil, fmt.Errorf("a bitmap font named '%s' was not found", fontName)
	}
	lookup := fs.bitmapFonts[id]
	lookup.ReferenceCount++
	return lookup.Font.ResourceData.Data, nil
}

/** @brief Releases a reference taken with Acquire. */
func (fs *FontSystem) Release(fontName string) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	id, found := fs.bitmapFontLookup[fontName]
	if !found || id == metadata.InvalidIDUint16 {
		core.LogWarn("released unknown font '%s', nothing was done", fontName)
		return
	}
	if fs.bitmapFonts[id].ReferenceCount > 0 {
		fs.bitmapFonts[id].ReferenceCount--
	}
}

// measure builds or reuses the face for the size and walks the text line
// by line. Callers hold the registry lock.
func (lookup *SystemFontLookup) measure(size uint16, text string) (metadata.TextMeasurement, error) {
	face, err := lookup.faceForSize(size)
	if err != nil {
		return metadata.TextMeasurement{}, err
	}

	metrics := face.Metrics()
	lineHeight := float32(metrics.Height.Ceil())

	var measurement metadata.TextMeasurement
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		// Faces carry no tab glyph; a tab measures as four spaces.
		line = strings.ReplaceAll(line, "\t", "    ")
		width := float32(font.MeasureString(face, line).Ceil())
		if width > measurement.Width {
			measurement.Width = width
		}
		for _, r := range line {
			if !unicode.IsSpace(r) {
				measurement.GlyphCount++
			}
		}
	}
	measurement.Height = lineHeight * float32(len(lines))
	return measurement, nil
}

func (lookup *SystemFontLookup) faceForSize(size uint16) (font.Face, error) {
	if face, found := lookup.sizeFaces[size]; found {
		return face, nil
	}

	f, err := lookup.Collection.Font(int(lookup.Index))
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	lookup.sizeFaces[size] = face
	return face, nil
}

// measureBitmapText walks the baked glyph table the same way geometry
// generation would: newlines reset the pen, tabs advance by the resolved
// tab width, and kerning pairs adjust the advance to the next codepoint.
func measureBitmapText(data *metadata.FontData, text string) metadata.TextMeasurement {
	var measurement metadata.TextMeasurement
	var x, width float32
	lineHeight := float32(data.LineHeight)
	height := lineHeight

	for c := uint32(0); c < uint32(len(text)); {
		codepoint, advance, err := metadata.BytesToCodepoint(text, c)
		if err != nil {
			core.LogWarn("invalid UTF-8 found in string, using unknown codepoint of -1")
			codepoint, advance = -1, 1
		}
		c += uint32(advance)

		if codepoint == '\n' {
			if x > width {
				width = x
			}
			x = 0
			height += lineHeight
			continue
		}
		if codepoint == '\t' {
			x += data.TabXAdvance
			continue
		}

		glyph := findGlyph(data, codepoint)
		if glyph == nil {
			// Fall back to the unknown-codepoint glyph.
			glyph = findGlyph(data, -1)
		}
		if glyph == nil {
			continue
		}

		kerning := int16(0)
		if c < uint32(len(text)) {
			if next, _, err := metadata.BytesToCodepoint(text, c); err == nil {
				for _, k := range data.Kernings {
					if k.Codepoint0 == codepoint && k.Codepoint1 == next {
						kerning = k.Amount
					}
				}
			}
		}
		x += float32(glyph.XAdvance) + float32(kerning)

		if codepoint != ' ' {
			measurement.GlyphCount++
		}
	}
	if x > width {
		width = x
	}

	measurement.Width = width
	measurement.Height = height
	return measurement
}

func findGlyph(data *metadata.FontData, codepoint int32) *metadata.FontGlyph {
	for _, glyph := range data.Glyphs {
		if glyph.Codepoint == codepoint {
			return glyph
		}
	}
	return nil
}

// setupFontData resolves the atlas sampler state and the tab advance.
// Not every font exports a tab glyph: prefer one when present, then four
// spaces, then four times the nominal size.
func setupFontData(data *metadata.FontData) {
	if data.Atlas == nil {
		data.Atlas = &metadata.TextureMap{}
	}
	data.Atlas.FilterMagnify = metadata.TextureFilterModeLinear
	data.Atlas.FilterMinify = metadata.TextureFilterModeLinear
	data.Atlas.RepeatU = metadata.TextureRepeatClampToEdge
	data.Atlas.RepeatV = metadata.TextureRepeatClampToEdge
	data.Atlas.RepeatW = metadata.TextureRepeatClampToEdge

	if data.TabXAdvance == 0 {
		for _, glyph := range data.Glyphs {
			if glyph.Codepoint == '\t' {
				data.TabXAdvance = float32(glyph.XAdvance)
				break
			}
		}
		if data.TabXAdvance == 0 {
			for _, glyph := range data.Glyphs {
				if glyph.Codepoint == ' ' {
					data.TabXAdvance = float32(glyph.XAdvance) * 4
					break
				}
			}
		}
		if data.TabXAdvance == 0 {
			data.TabXAdvance = float32(data.Size * 4)
		}
	}
}

func freeFontSlot(count int, free func(int) bool) uint16 {
	for i := 0; i < count; i++ {
		if free(i) {
			return uint16(i)
		}
	}
	return metadata.InvalidIDUint16
}
