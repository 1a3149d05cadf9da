package metadata

/**
 * @brief Capabilities reported by whichever backend ultimately consumes
 * the prepared frame. Preparation only reads these; it never talks to
 * the backend directly.
 */
type RendererCapabilities struct {
	/** @brief The largest uniform buffer range the device supports, in bytes.
	Small ranges reduce the per-frame light cap. */
	MaxUniformBufferRange uint32
	/** @brief The largest 2d texture edge the device supports, in texels. */
	MaxTextureSize uint32
}

type RenderBufferType int

const (
	/** @brief Buffer is use is unknown. Default, but usually invalid. */
	RENDERBUFFER_TYPE_UNKNOWN RenderBufferType = iota
	/** @brief Buffer is used for vertex data. */
	RENDERBUFFER_TYPE_VERTEX
	/** @brief Buffer is used for index data. */
	RENDERBUFFER_TYPE_INDEX
	/** @brief Buffer is used for staging purposes (i.e. from host-visible to device-local memory) */
	RENDERBUFFER_TYPE_STAGING
)

/**
 * @brief A linear upload buffer owned by the buffer manager. The Data
 * slice is the CPU-side staging copy; whatever consumes the prepared
 * frame owns the device-side half through InternalData.
 */
type RenderBuffer struct {
	/** @brief The type of buffer, which typically determines its use. */
	RenderBufferType RenderBufferType
	/** @brief The total size of the buffer in bytes. */
	TotalSize uint64
	/** @brief The buffer data. */
	Data []byte
	/** @brief Contains internal data for the renderer-API-specific buffer. */
	InternalData interface{}
}

/** @brief A range, typically of memory */
type MemoryRange struct {
	/** @brief The Offset in bytes. */
	Offset uint64
	/** @brief The size in bytes. */
	Size uint64
}
