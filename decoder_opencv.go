//go:build opencv

package main

import (
	"framematch/imageprocessor"
	"framematch/imageprocessor/cvloader"
)

func newOpenCVLoader() (imageprocessor.ImageLoader, error) {
	return cvloader.New(), nil
}
