package imageprocessor

import (
	"image"

	"github.com/disintegration/imaging"

	// Formats beyond the ones imaging registers itself
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// StandardImageLoader handles common image formats like JPEG, PNG, TIFF and WebP
type StandardImageLoader struct {
	BaseImageLoader
}

// NewStandardImageLoader creates a new loader for standard image formats
func NewStandardImageLoader() *StandardImageLoader {
	return &StandardImageLoader{
		BaseImageLoader: BaseImageLoader{SupportedFormats: standardFormats},
	}
}

// LoadImage decodes the file, applies its EXIF orientation and converts it to grayscale
func (l *StandardImageLoader) LoadImage(path string) (*image.Gray, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return ToGray(img), nil
}
