package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/lumina/engine/assets/loaders"
	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

/**
 * @brief Indexes the on-disk asset tree, watches it for changes and
 * dispatches typed loads to registered loaders. File modifications are
 * re-fired on the core event bus so registries holding resolved resources
 * (materials, textures, configuration) can invalidate their entries.
 */
type AssetManager struct {
	basePath string

	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

func (am *AssetManager) Initialize(assetsDir string) error {
	am.basePath = assetsDir

	am.registerLoader(metadata.ResourceTypeText, &loaders.TextLoader{})
	am.registerLoader(metadata.ResourceTypeBinary, &loaders.BinaryLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	am.registerLoader(metadata.ResourceTypeMaterial, &loaders.MaterialLoader{})
	am.registerLoader(metadata.ResourceTypeMesh, &loaders.MeshLoader{})
	am.registerLoader(metadata.ResourceTypeBitmapFont, &loaders.BitmapFontLoader{})
	am.registerLoader(metadata.ResourceTypeSystemFont, &loaders.SystemFontLoader{})

	go am.start()

	if err := am.addRecursive(assetsDir); err != nil {
		return err
	}

	return nil
}

func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	return nil
}

/** @brief The directory all relative asset paths resolve against. */
func (am *AssetManager) BasePath() string {
	return am.basePath
}

// Add starts watching the named file or directory (non-recursively).
func (am *AssetManager) add(name string) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	return am.fsnotify.Add(name)
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	return am.watchRecursive(name, false)
}

// Remove stops watching the the named file or directory (non-recursively).
func (am *AssetManager) remove(name string) error {
	return am.fsnotify.Remove(name)
}

// RemoveRecursive stops watching the named directory and all sub-directories.
func (am *AssetManager) removeRecursive(name string) error {
	return am.watchRecursive(name, true)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

/**
 * @brief Candidate relative paths for a named resource of the given type,
 * in lookup priority order.
 */
func (am *AssetManager) resolvePaths(name string, resourceType metadata.ResourceType) []string {
	switch resourceType {
	case metadata.ResourceTypeMaterial:
		return []string{fmt.Sprintf("materials/%s.lmt", name)}
	case metadata.ResourceTypeImage:
		// Bitmap font atlas pages sit next to their .fnt descriptor.
		return []string{
			fmt.Sprintf("textures/%s.png", name),
			fmt.Sprintf("textures/%s.jpg", name),
			fmt.Sprintf("fonts/%s.png", name),
		}
	case metadata.ResourceTypeMesh:
		return []string{fmt.Sprintf("meshes/%s.obj", name)}
	case metadata.ResourceTypeBitmapFont:
		return []string{fmt.Sprintf("fonts/%s.fnt", name)}
	case metadata.ResourceTypeSystemFont:
		return []string{
			fmt.Sprintf("fonts/%s.ttf", name),
			fmt.Sprintf("fonts/%s.otf", name),
			fmt.Sprintf("fonts/%s.ttc", name),
		}
	}
	return []string{name}
}

// Load an asset using the appropriate loader
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	loader, loaderExists := am.loaders[resourceType]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %d", resourceType)
	}

	var path string
	for _, candidate := range am.resolvePaths(name, resourceType) {
		full := filepath.Join(am.basePath, candidate)
		if _, err := os.Stat(full); err == nil {
			path = full
			break
		}
	}
	if path == "" {
		return nil, fmt.Errorf("asset not found: %s (type %d)", name, resourceType)
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       resourceType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()

	resource, err := loader.Load(path, resourceType, params)
	if err != nil {
		return nil, err
	}
	resource.LoaderID = uint32(resourceType)
	if resource.Name == "" {
		resource.Name = name
	}
	return resource, nil
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	if asset == nil {
		return nil
	}
	loader, ok := am.loaders[metadata.ResourceType(asset.LoaderID)]
	if !ok {
		return nil
	}
	return loader.Unload(asset)
}

func (am *AssetManager) start() {
	for {
		select {

		case e := <-am.fsnotify.Events:
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name, false)
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			// Can't stat a deleted entry, so just try to remove it from the
			// watch list either way.
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
				am.fsnotify.Remove(e.Name)
			}

		case e := <-am.fsnotify.Errors:
			if e != nil {
				core.LogError(e.Error())
			}

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				if err := am.fsnotify.Remove(walkPath); err != nil {
					return err
				}
			} else {
				if err := am.fsnotify.Add(walkPath); err != nil {
					return err
				}
			}
		} else {
			am.indexFile(walkPath)
		}
		return nil
	})
}

/** @brief Records a file in the index without firing change events. */
func (am *AssetManager) indexFile(path string) {
	assetType, ok := determineAssetType(path)
	if !ok {
		return
	}
	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path: path,
		Type: assetType,
	}
	am.mutex.Unlock()
}

/**
 * @brief Indexes a created or modified file and re-fires it on the event
 * bus so downstream registries can invalidate. Configuration documents get
 * their own code since whole-engine settings reload differently from a
 * single asset.
 */
func (am *AssetManager) handleFileEvent(path string) {
	assetType, ok := determineAssetType(path)
	if !ok {
		return
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	am.mutex.Unlock()

	event := &core.AssetModifiedEvent{
		Path:      path,
		AssetName: assetBaseName(path),
	}
	code := core.EVENT_CODE_ASSET_MODIFIED
	if filepath.Ext(path) == ".toml" {
		code = core.EVENT_CODE_CONFIG_RELOADED
	}
	core.EventFire(code, am, core.EventContext{
		Type: code,
		Data: event,
	})
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

/** @brief The registry-facing name of an asset file: base name, no extension. */
func assetBaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func determineAssetType(path string) (metadata.ResourceType, bool) {
	switch filepath.Ext(path) {
	case ".png", ".jpg":
		return metadata.ResourceTypeImage, true
	case ".lmt":
		return metadata.ResourceTypeMaterial, true
	case ".obj":
		return metadata.ResourceTypeMesh, true
	case ".fnt":
		return metadata.ResourceTypeBitmapFont, true
	case ".ttf", ".otf", ".ttc":
		return metadata.ResourceTypeSystemFont, true
	case ".toml":
		return metadata.ResourceTypeText, true
	case ".txt":
		return metadata.ResourceTypeText, true
	case ".bin":
		return metadata.ResourceTypeBinary, true
	default:
		return 0, false
	}
}
