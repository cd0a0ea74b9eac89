//go:build opencv

// Package cvloader decodes images through OpenCV. It needs the OpenCV shared
// libraries at build and run time, so it lives apart from the pure Go loaders.
package cvloader

import (
	"fmt"
	"image"

	"framematch/imageprocessor"

	"gocv.io/x/gocv"
)

// Loader reads files with OpenCV's IMRead in grayscale mode
type Loader struct {
	imageprocessor.BaseImageLoader
}

// New creates an OpenCV-backed loader for the standard formats
func New() *Loader {
	return &Loader{
		BaseImageLoader: imageprocessor.BaseImageLoader{
			SupportedFormats: []imageprocessor.FormatType{
				imageprocessor.FormatJPEG,
				imageprocessor.FormatPNG,
				imageprocessor.FormatTIFF,
				imageprocessor.FormatBMP,
				imageprocessor.FormatWEBP,
			},
		},
	}
}

// LoadImage decodes path into a grayscale buffer
func (l *Loader) LoadImage(path string) (*image.Gray, error) {
	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("opencv could not decode %s", path)
	}
	if mat.Type() != gocv.MatTypeCV8U {
		converted := gocv.NewMat()
		defer converted.Close()
		mat.ConvertTo(&converted, gocv.MatTypeCV8U)
		return toGray(converted)
	}
	return toGray(mat)
}

func toGray(mat gocv.Mat) (*image.Gray, error) {
	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert mat: %w", err)
	}
	return imageprocessor.ToGray(img), nil
}
