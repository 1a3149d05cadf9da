package metadata

import (
	"golang.org/x/image/font/sfnt"
)

type SystemFontConfig struct {
	Name         string
	DefaultSize  uint16
	ResourceName string
}

type BitmapFontConfig struct {
	Name         string
	Size         uint16
	ResourceName string
}

type FontSystemConfig struct {
	DefaultSystemFontCount uint8
	SystemFontConfigs      []*SystemFontConfig
	DefaultBitmapFontCount uint8
	BitmapFontConfigs      []*BitmapFontConfig
	MaxSystemFontCount     uint8
	MaxBitmapFontCount     uint8
	AutoRelease            bool
}

type FontGlyph struct {
	Codepoint int32
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

type FontKerning struct {
	Codepoint0 int32
	Codepoint1 int32
	Amount     int16
}

type FontType int

const (
	FONT_TYPE_BITMAP FontType = iota
	FONT_TYPE_SYSTEM
)

type FontData struct {
	FontType         FontType
	Face             string
	Size             uint32
	LineHeight       int32
	Baseline         int32
	AtlasSizeX       int32
	AtlasSizeY       int32
	Atlas            *TextureMap
	Glyphs           []*FontGlyph
	Kernings         []*FontKerning
	TabXAdvance      float32
	InternalDataSize uint32
	InternalData     interface{}
}

type BitmapFontPage struct {
	ID   int8
	Name string
}

type BitmapFontResourceData struct {
	Data  *FontData
	Pages []*BitmapFontPage
}

type SystemFontFace struct {
	Name string
}

/**
 * @brief Parsed font file data produced by the system font loader. A
 * single file may carry several faces (TTC/OTC collections).
 */
type SystemFontResourceData struct {
	/** @brief The faces present in the binary, by family name. */
	Fonts []*SystemFontFace
	/** @brief The parsed font collection. */
	FontBinary *sfnt.Collection
	/** @brief The size of the font file in bytes. */
	BinarySize uint64
}

/**
 * @brief The measured footprint of a run of text, produced by the font
 * system and consumed when preparing flat 2d items.
 */
type TextMeasurement struct {
	/** @brief The width of the text in atlas units. */
	Width float32
	/** @brief The height of the text in atlas units, covering every line. */
	Height float32
	/** @brief The number of drawable glyphs, excluding whitespace and newlines. */
	GlyphCount uint32
}
