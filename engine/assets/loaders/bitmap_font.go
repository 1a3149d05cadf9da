package loaders

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

type BitmapFontLoader struct{}

/**
 * @brief Parses an AngelCode .fnt descriptor. Page images are not decoded
 * here; the page names are carried on the resource so the atlas textures
 * can be acquired through the normal image path when actually needed.
 */
func (fl *BitmapFontLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	descriptor, err := bmfont.LoadDescriptor(path)
	if err != nil {
		return nil, err
	}

	data := &metadata.FontData{
		FontType:   metadata.FONT_TYPE_BITMAP,
		Face:       descriptor.Info.Face,
		Size:       uint32(descriptor.Info.Size),
		LineHeight: int32(descriptor.Common.LineHeight),
		Baseline:   int32(descriptor.Common.Base),
		AtlasSizeX: int32(descriptor.Common.ScaleW),
		AtlasSizeY: int32(descriptor.Common.ScaleH),
		Glyphs:     make([]*metadata.FontGlyph, 0, len(descriptor.Chars)),
		Kernings:   make([]*metadata.FontKerning, 0, len(descriptor.Kerning)),
	}

	for _, g := range descriptor.Chars {
		data.Glyphs = append(data.Glyphs, &metadata.FontGlyph{
			Codepoint: g.ID,
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    uint8(g.Page),
		})
	}
	sort.Slice(data.Glyphs, func(i, j int) bool {
		return data.Glyphs[i].Codepoint < data.Glyphs[j].Codepoint
	})

	for pair, k := range descriptor.Kerning {
		data.Kernings = append(data.Kernings, &metadata.FontKerning{
			Codepoint0: pair.First,
			Codepoint1: pair.Second,
			Amount:     int16(k.Amount),
		})
	}

	resourceData := &metadata.BitmapFontResourceData{
		Data:  data,
		Pages: make([]*metadata.BitmapFontPage, 0, len(descriptor.Pages)),
	}
	for _, p := range descriptor.Pages {
		name := strings.TrimSuffix(p.File, filepath.Ext(p.File))
		resourceData.Pages = append(resourceData.Pages, &metadata.BitmapFontPage{
			ID:   int8(p.ID),
			Name: name,
		})
	}
	sort.Slice(resourceData.Pages, func(i, j int) bool {
		return resourceData.Pages[i].ID < resourceData.Pages[j].ID
	})

	return &metadata.Resource{
		FullPath: path,
		Data:     resourceData,
		DataSize: uint64(len(descriptor.Chars)),
	}, nil
}

func (fl *BitmapFontLoader) Unload(resource *metadata.Resource) error {
	if resource != nil && resource.Data != nil {
		if data, ok := resource.Data.(*metadata.BitmapFontResourceData); ok {
			data.Data.Glyphs = nil
			data.Data.Kernings = nil
			data.Pages = nil
		}
		resource.Data = nil
		resource.DataSize = 0
	}
	return nil
}
