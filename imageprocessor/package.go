// Package imageprocessor decodes image files into 8-bit grayscale buffers and
// scores how alike two decoded frames are.
package imageprocessor

import "image"

// ImageLoader is the interface that all image loaders must implement
type ImageLoader interface {
	// CanLoad checks if the loader can handle the given file
	CanLoad(path string) bool

	// LoadImage decodes the file into a grayscale buffer
	LoadImage(path string) (*image.Gray, error)
}
