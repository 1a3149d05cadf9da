package systems

import (
	"fmt"

	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

// Called once from NewBufferManager, before any lookups can happen.
func (bm *BufferManager) createDefaultTextures() error {
	bm.defaultTextures = metadata.NewDefaultTexture()
	if !bm.defaultTextures.CreateSkeletonTextures() {
		return fmt.Errorf("failed to create default textures")
	}

	register := func(texture *metadata.Texture, pixels []uint8) {
		texture.ID = core.IdentifierAcquireNewID(texture)
		texture.InternalData = pixels
		texture.Generation = 0
		bm.textures[texture.Name] = &metadata.TextureReference{Texture: texture}
	}
	register(bm.defaultTextures.DefaultTexture, bm.defaultTextures.TexturePixels)
	register(bm.defaultTextures.DefaultBaseColourTexture, bm.defaultTextures.BaseColourTexturePixels)
	register(bm.defaultTextures.DefaultSpecularTexture, bm.defaultTextures.SpecularTexturePixels)
	register(bm.defaultTextures.DefaultNormalTexture, bm.defaultTextures.NormalTexturePixels)
	return nil
}

func (bm *BufferManager) GetDefaultTexture() *metadata.Texture {
	return bm.defaultTextures.DefaultTexture
}

func (bm *BufferManager) GetDefaultBaseColourTexture() *metadata.Texture {
	return bm.defaultTextures.DefaultBaseColourTexture
}

func (bm *BufferManager) GetDefaultSpecularTexture() *metadata.Texture {
	return bm.defaultTextures.DefaultSpecularTexture
}

func (bm *BufferManager) GetDefaultNormalTexture() *metadata.Texture {
	return bm.defaultTextures.DefaultNormalTexture
}

/**
 * @brief Returns the named texture's cache entry without loading any pixel
 * data, creating a skeleton entry on first sight. Material maps reference
 * placeholders so that pixels are only pulled in once a visible renderable
 * actually samples the map.
 */
func (bm *BufferManager) TexturePlaceholder(name string) *metadata.Texture {
	if name == "" {
		return nil
	}

	bm.mutex.RLock()
	ref, ok := bm.textures[name]
	bm.mutex.RUnlock()
	if ok {
		return ref.Texture
	}

	bm.mutex.Lock()
	defer bm.mutex.Unlock()
	if ref, ok := bm.textures[name]; ok {
		return ref.Texture
	}
	return bm.createPlaceholder(name)
}

// Callers hold bm.mutex.
func (bm *BufferManager) createPlaceholder(name string) *metadata.Texture {
	if uint32(len(bm.textures)) >= bm.config.MaxTextureCount && !bm.textureBudgetWarned {
		core.LogWarn("Texture budget of %d exceeded while registering '%s'.", bm.config.MaxTextureCount, name)
		bm.textureBudgetWarned = true
	}

	texture := &metadata.Texture{
		Name:        name,
		TextureType: metadata.TextureType2d,
		Generation:  metadata.InvalidID,
	}
	texture.ID = core.IdentifierAcquireNewID(texture)
	bm.textures[name] = &metadata.TextureReference{Texture: texture}
	return texture
}

/**
 * @brief Resolves a texture map to its resident texture, loading the pixel
 * data on first use. Returns nil when the map has no texture bound or the
 * image resource cannot be loaded, in which case the caller renders without
 * the map and retries on a later frame.
 */
func (bm *BufferManager) LoadRenderImage(textureMap *metadata.TextureMap) *metadata.Texture {
	if textureMap == nil || textureMap.Texture == nil || textureMap.Texture.Name == "" {
		return nil
	}
	texture := textureMap.Texture
	if texture.Generation != metadata.InvalidID {
		return texture
	}

	bm.mutex.Lock()
	defer bm.mutex.Unlock()
	if texture.Generation != metadata.InvalidID {
		return texture
	}
	if !bm.loadTexturePixels(texture) {
		return nil
	}
	return texture
}

/**
 * @brief Loads the texture's image resource and makes it resident in
 * place: the cache entry keeps its pointer so every map referencing the
 * texture sees the new data. Callers hold bm.mutex.
 */
func (bm *BufferManager) loadTexturePixels(texture *metadata.Texture) bool {
	params := &metadata.ImageResourceParams{FlipY: true}
	resource, err := bm.assets.LoadAsset(texture.Name, metadata.ResourceTypeImage, params)
	if err != nil {
		if !bm.warned["texture."+texture.Name] {
			core.LogWarn("Unable to load texture '%s': %s", texture.Name, err.Error())
			bm.warned["texture."+texture.Name] = true
		}
		return false
	}

	data, ok := resource.Data.(*metadata.ImageResourceData)
	if !ok {
		core.LogError("Image resource '%s' carried unexpected data.", texture.Name)
		return false
	}

	texture.Width = data.Width
	texture.Height = data.Height
	texture.ChannelCount = data.ChannelCount
	texture.Format = metadata.TextureFormatRGBA8
	texture.InternalData = data.Pixels
	if scanForTransparency(data.Pixels, data.ChannelCount) {
		texture.Flags |= metadata.TextureFlagBits(metadata.TextureFlagHasTransparency)
	} else {
		texture.Flags &^= metadata.TextureFlagBits(metadata.TextureFlagHasTransparency)
	}
	if texture.Generation == metadata.InvalidID {
		texture.Generation = 0
	} else {
		texture.Generation++
	}

	bm.assets.UnloadAsset(resource)
	core.LogDebug("Loaded texture '%s' (%dx%d).", texture.Name, texture.Width, texture.Height)
	return true
}

// Any texel with alpha below full marks the whole texture transparent.
func scanForTransparency(pixels []uint8, channelCount uint8) bool {
	if channelCount < 4 {
		return false
	}
	step := uint32(channelCount)
	for i := uint32(3); i < uint32(len(pixels)); i += step {
		if pixels[i] < 255 {
			return true
		}
	}
	return false
}

/**
 * @brief Acquires the named texture, taking a reference and loading it
 * synchronously when it is not yet resident.
 */
func (bm *BufferManager) AcquireTexture(name string, autoRelease bool) (*metadata.Texture, error) {
	if name == metadata.DEFAULT_TEXTURE_NAME {
		core.LogWarn("AcquireTexture called for the default texture. Use GetDefaultTexture instead.")
		return bm.defaultTextures.DefaultTexture, nil
	}

	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	ref, ok := bm.textures[name]
	if !ok {
		bm.createPlaceholder(name)
		ref = bm.textures[name]
		ref.AutoRelease = autoRelease
	}
	if ref.Texture.Generation == metadata.InvalidID {
		if !bm.loadTexturePixels(ref.Texture) {
			return nil, fmt.Errorf("unable to load texture '%s'", name)
		}
	}
	ref.ReferenceCount++
	return ref.Texture, nil
}

/**
 * @brief Releases a reference on the named texture. When the last
 * reference on an auto-release texture goes away the entry is removed.
 */
func (bm *BufferManager) ReleaseTexture(name string) {
	if name == metadata.DEFAULT_TEXTURE_NAME {
		return
	}

	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	ref, ok := bm.textures[name]
	if !ok {
		core.LogWarn("ReleaseTexture called for unknown texture '%s'. Nothing was done.", name)
		return
	}
	if ref.ReferenceCount > 0 {
		ref.ReferenceCount--
	}
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		core.IdentifierReleaseID(ref.Texture.ID)
		ref.Texture.ID = metadata.InvalidID
		ref.Texture.Generation = metadata.InvalidID
		delete(bm.textures, name)
	}
}

/**
 * @brief Kicks off background loads for the named textures through the job
 * system. Each decode runs on a worker; the decoded pixels become resident
 * at the next upload flush, so preloaded textures resolve without a
 * mid-frame disk hit.
 */
func (bm *BufferManager) PreloadTextures(names []string) {
	for _, name := range names {
		texture := bm.TexturePlaceholder(name)
		if texture == nil || texture.Generation != metadata.InvalidID {
			continue
		}

		bm.jobs.Submit(metadata.JobTask{
			JobType:  metadata.JOB_TYPE_RESOURCE_LOAD,
			Priority: metadata.JOB_PRIORITY_NORMAL,
			InputParams: []interface{}{
				&metadata.TextureLoadParams{
					ResourceName:      name,
					OutTexture:        texture,
					CurrentGeneration: texture.Generation,
				},
			},
			OnStart:    bm.textureLoadJobStart,
			OnComplete: bm.textureLoadJobSuccess,
			OnFailure:  bm.textureLoadJobFail,
		})
	}
}

// Runs on a job worker: pulls the image resource off disk and decodes it.
func (bm *BufferManager) textureLoadJobStart(params interface{}, resultChan chan<- interface{}) error {
	inputParams := params.([]interface{})
	loadParams := inputParams[0].(*metadata.TextureLoadParams)

	resource, err := bm.assets.LoadAsset(loadParams.ResourceName, metadata.ResourceTypeImage, &metadata.ImageResourceParams{FlipY: true})
	if err != nil {
		resultChan <- loadParams
		return err
	}

	loadParams.ImageResource = resource
	resultChan <- loadParams
	return nil
}

// Queues the decoded pixels; the next flush makes the texture resident.
func (bm *BufferManager) textureLoadJobSuccess(resultChan <-chan interface{}) {
	params, ok := <-resultChan
	if !ok {
		return
	}
	loadParams, ok := params.(*metadata.TextureLoadParams)
	if !ok {
		core.LogError("Texture load job completed with unexpected params.")
		return
	}

	data, ok := loadParams.ImageResource.Data.(*metadata.ImageResourceData)
	if !ok {
		core.LogError("Image resource '%s' carried unexpected data.", loadParams.ResourceName)
		return
	}

	texture := loadParams.OutTexture
	texture.Width = data.Width
	texture.Height = data.Height
	texture.ChannelCount = data.ChannelCount
	texture.Format = metadata.TextureFormatRGBA8
	if scanForTransparency(data.Pixels, data.ChannelCount) {
		texture.Flags |= metadata.TextureFlagBits(metadata.TextureFlagHasTransparency)
	}

	bm.mutex.Lock()
	bm.pendingTextures = append(bm.pendingTextures, textureUpload{texture: texture, pixels: data.Pixels})
	bm.mutex.Unlock()

	core.LogDebug("Preloaded texture '%s'.", loadParams.ResourceName)
	bm.assets.UnloadAsset(loadParams.ImageResource)
}

func (bm *BufferManager) textureLoadJobFail(resultChan <-chan interface{}) {
	params, ok := <-resultChan
	if !ok {
		return
	}
	if loadParams, ok := params.(*metadata.TextureLoadParams); ok {
		core.LogWarn("Failed to preload texture '%s'.", loadParams.ResourceName)
	}
}

/**
 * @brief Starts watching for on-disk texture edits. A modified image that
 * is already resident is reloaded in place and its generation bumped, so
 * dependent materials pick the change up on the next prepared frame.
 */
func (bm *BufferManager) WatchAssetChanges() {
	core.EventRegister(core.EVENT_CODE_ASSET_MODIFIED, bm, bm.onAssetModified)
}

func (bm *BufferManager) onAssetModified(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	event, ok := data.Data.(*core.AssetModifiedEvent)
	if !ok {
		return false
	}

	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	ref, ok := bm.textures[event.AssetName]
	if !ok || ref.Texture.Generation == metadata.InvalidID {
		// Not a resident texture; leave the event for other listeners.
		return false
	}
	if bm.loadTexturePixels(ref.Texture) {
		core.LogInfo("Reloaded texture '%s' after on-disk change.", event.AssetName)
	}
	return false
}
