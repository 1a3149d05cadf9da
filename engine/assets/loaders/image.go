package loaders

import (
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

type ImageLoader struct{}

/**
 * @brief Decodes a PNG or JPEG file into tightly packed RGBA8 pixels.
 * Other channel layouts are normalized to four channels so the texture
 * pipeline deals with exactly one CPU-side format.
 */
func (il *ImageLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	flipY := false
	if typedParams, ok := params.(*metadata.ImageResourceParams); ok && typedParams != nil {
		flipY = typedParams.FlipY
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	width := rgba.Bounds().Dx()
	height := rgba.Bounds().Dy()
	rowSize := width * 4

	pixels := make([]uint8, rowSize*height)
	for y := 0; y < height; y++ {
		dstRow := y
		if flipY {
			dstRow = height - 1 - y
		}
		copy(pixels[dstRow*rowSize:(dstRow+1)*rowSize], rgba.Pix[y*rgba.Stride:y*rgba.Stride+rowSize])
	}

	return &metadata.Resource{
		FullPath: path,
		DataSize: uint64(len(pixels)),
		Data: &metadata.ImageResourceData{
			ChannelCount: 4,
			Width:        uint32(width),
			Height:       uint32(height),
			Pixels:       pixels,
		},
	}, nil
}

func (il *ImageLoader) Unload(resource *metadata.Resource) error {
	if resource != nil {
		resource.Data = nil
		resource.DataSize = 0
	}
	return nil
}
