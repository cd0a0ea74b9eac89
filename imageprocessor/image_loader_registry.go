package imageprocessor

import (
	"errors"
	"image"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"framematch/logging"
)

// ImageLoaderRegistry maintains a registry of image loaders keyed by extension
type ImageLoaderRegistry struct {
	loaders       map[string]ImageLoader
	defaultLoader ImageLoader
	mutex         sync.RWMutex
}

// NewImageLoaderRegistry creates a registry with the standard and RAW loaders
func NewImageLoaderRegistry() *ImageLoaderRegistry {
	registry := &ImageLoaderRegistry{
		loaders: make(map[string]ImageLoader),
	}

	// Standard formats also act as the fallback for unknown extensions,
	// since the decoder sniffs the file header anyway
	standardLoader := NewStandardImageLoader()
	for _, ext := range extensionsFor(standardFormats) {
		registry.RegisterLoader(ext, standardLoader)
	}
	registry.defaultLoader = standardLoader

	rawLoader := NewRawPreviewLoader()
	for _, ext := range extensionsFor(rawFormats) {
		registry.RegisterLoader(ext, rawLoader)
	}

	return registry
}

// RegisterLoader registers a loader for a specific file extension
func (r *ImageLoaderRegistry) RegisterLoader(ext string, loader ImageLoader) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.loaders[ext] = loader
}

// ReplaceStandardLoader routes every standard format, and the fallback, to loader
func (r *ImageLoaderRegistry) ReplaceStandardLoader(loader ImageLoader) {
	for _, ext := range extensionsFor(standardFormats) {
		r.RegisterLoader(ext, loader)
	}

	r.mutex.Lock()
	r.defaultLoader = loader
	r.mutex.Unlock()
	logging.DebugLog("standard formats now decoded by %T", loader)
}

// GetLoader returns the appropriate loader for the given path
func (r *ImageLoaderRegistry) GetLoader(path string) ImageLoader {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	if loader, ok := r.loaders[ext]; ok {
		return loader
	}
	return r.defaultLoader
}

// CanLoadFile checks if a loader is registered for the file's extension
func (r *ImageLoaderRegistry) CanLoadFile(path string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, ok := r.loaders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// LoadImage decodes path with the matching loader. Failures come back as *DecodeError.
func (r *ImageLoaderRegistry) LoadImage(path string) (*image.Gray, error) {
	loader := r.GetLoader(path)
	if loader == nil {
		return nil, &DecodeError{Path: path, Err: errors.New("no suitable loader")}
	}

	img, err := loader.LoadImage(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if img == nil {
		return nil, &DecodeError{Path: path, Err: errors.New("loader returned no pixels")}
	}
	return img, nil
}

// Close releases loaders holding external processes
func (r *ImageLoaderRegistry) Close() error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	seen := make(map[ImageLoader]bool)
	var errs []error
	for _, loader := range r.loaders {
		if seen[loader] {
			continue
		}
		seen[loader] = true
		if c, ok := loader.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
