package loaders

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

type SystemFontLoader struct{}

/**
 * @brief Parses a TrueType/OpenType font file. Collections (.ttc/.otc)
 * yield one face per member font; plain files yield a single face. Faces
 * are named by their family name, falling back to the file's base name
 * when the name table cannot be read.
 */
func (fl *SystemFontLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	collection, err := opentype.ParseCollection(fontBytes)
	if err != nil {
		return nil, err
	}

	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	rd := &metadata.SystemFontResourceData{
		FontBinary: collection,
		BinarySize: uint64(len(fontBytes)),
	}
	for i := 0; i < collection.NumFonts(); i++ {
		name := fallback
		if f, err := collection.Font(i); err == nil {
			if family, err := f.Name(nil, sfnt.NameIDFamily); err == nil && family != "" {
				name = family
			}
		}
		rd.Fonts = append(rd.Fonts, &metadata.SystemFontFace{Name: name})
	}

	return &metadata.Resource{
		FullPath: path,
		Data:     rd,
		DataSize: uint64(len(fontBytes)),
	}, nil
}

func (fl *SystemFontLoader) Unload(resource *metadata.Resource) error {
	if resource != nil {
		resource.Data = nil
		resource.DataSize = 0
	}
	return nil
}
