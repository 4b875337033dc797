package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// Frame is a decoded eye image in the two forms the detector consumes.
// Both images are zero-origin and have the same size.
type Frame struct {
	// Gray is the 8-bit intensity image the detector runs on.
	Gray *image.Gray

	// Color is a private copy of the source used for debug overlays.
	Color *image.NRGBA
}

// NewFrame builds a Frame from any decoded image.
func NewFrame(img image.Image) *Frame {
	return &Frame{
		Gray:  ToGray(img),
		Color: imaging.Clone(img),
	}
}

// Bounds returns the frame rectangle.
func (f *Frame) Bounds() image.Rectangle {
	return f.Gray.Bounds()
}

// Overlay returns a fresh copy of the color image to draw on, leaving the
// cached frame untouched.
func (f *Frame) Overlay() *image.NRGBA {
	return imaging.Clone(f.Color)
}

// ImageCache provides thread-safe caching of decoded frames to avoid
// redundant disk reads and grayscale conversions.
//
// Frames are keyed by the exact path string used to load them. Cached frames
// remain in memory until explicitly removed via Evict() or Clear().
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	frame, err := cache.LoadFrame("/path/to/eye.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Use frame.Gray...
//	cache.Evict("/path/to/eye.png") // Optional: free memory
type ImageCache struct {
	mu     sync.RWMutex
	frames map[string]*Frame
}

// NewImageCache creates and initializes a new empty frame cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		frames: make(map[string]*Frame),
	}
}

// LoadFrame retrieves a frame from the cache or loads and converts it from
// disk if not cached. Supported formats are PNG, JPEG, and GIF.
//
// The returned frame is shared with other callers; draw on Frame.Overlay(),
// never on Frame.Color.
func (c *ImageCache) LoadFrame(path string) (*Frame, error) {
	c.mu.RLock()
	if f, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return f, nil
	}
	c.mu.RUnlock()

	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	frame := NewFrame(img)

	c.mu.Lock()
	c.frames[path] = frame
	c.mu.Unlock()

	return frame, nil
}

// Len returns the number of cached frames.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// Clear removes all frames from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]*Frame)
	c.mu.Unlock()
}

// Evict removes a specific frame from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// FrameInfo contains metadata about a loaded frame.
type FrameInfo struct {
	// Width is the frame width in pixels.
	Width int `json:"width"`

	// Height is the frame height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", "gif", or "unknown".
	// Detection is based on file extension, not file contents.
	Format string `json:"format"`

	// Pixels is Width × Height.
	Pixels int `json:"pixels"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFrameInfo loads a frame into the cache (if not already cached) and
// returns its metadata.
func LoadFrameInfo(cache *ImageCache, path string) (*FrameInfo, error) {
	frame, err := cache.LoadFrame(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	bounds := frame.Bounds()
	return &FrameInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		Pixels:        bounds.Dx() * bounds.Dy(),
		FileSizeBytes: stat.Size(),
	}, nil
}
