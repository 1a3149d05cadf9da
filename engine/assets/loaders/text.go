package loaders

import (
	"os"

	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

type TextLoader struct{}

func (tl *TextLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &metadata.Resource{
		FullPath: path,
		DataSize: uint64(len(buf)),
		Data:     string(buf),
	}, nil
}

func (tl *TextLoader) Unload(resource *metadata.Resource) error {
	if resource != nil {
		resource.Data = nil
		resource.DataSize = 0
	}
	return nil
}
