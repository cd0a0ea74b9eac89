//go:build !opencv

package main

import (
	"errors"

	"framematch/imageprocessor"
)

func newOpenCVLoader() (imageprocessor.ImageLoader, error) {
	return nil, errors.New("decoder opencv: this binary was built without OpenCV support (rebuild with -tags opencv)")
}
