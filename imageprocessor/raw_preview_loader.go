package imageprocessor

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"framematch/logging"

	"github.com/barasher/go-exiftool"
	"github.com/disintegration/imaging"
)

// Preview tags probed in order, largest first
var previewTags = []string{
	"LargestImagePreview",
	"PreviewImage",
	"JpgFromRaw",
	"OtherImage",
	"ThumbnailImage",
}

// RawPreviewLoader decodes RAW camera files through the JPEG preview embedded
// by the camera. It drives a single long-lived exiftool process, started on first use.
type RawPreviewLoader struct {
	BaseImageLoader

	once    sync.Once
	mu      sync.Mutex
	et      *exiftool.Exiftool
	initErr error
}

// NewRawPreviewLoader creates a RAW loader backed by exiftool
func NewRawPreviewLoader() *RawPreviewLoader {
	return &RawPreviewLoader{
		BaseImageLoader: BaseImageLoader{SupportedFormats: rawFormats},
	}
}

func (l *RawPreviewLoader) tool() (*exiftool.Exiftool, error) {
	l.once.Do(func() {
		l.et, l.initErr = exiftool.NewExiftool(exiftool.ExtractAllBinaryMetadata())
		if l.initErr != nil {
			logging.LogWarning("exiftool unavailable, RAW files will be skipped: %v", l.initErr)
		}
	})
	return l.et, l.initErr
}

// LoadImage extracts the first decodable embedded preview and converts it to grayscale
func (l *RawPreviewLoader) LoadImage(path string) (*image.Gray, error) {
	if _, err := l.tool(); err != nil {
		return nil, fmt.Errorf("exiftool unavailable: %w", err)
	}

	l.mu.Lock()
	if l.et == nil {
		l.mu.Unlock()
		return nil, errors.New("raw loader closed")
	}
	fileInfos := l.et.ExtractMetadata(path)
	l.mu.Unlock()

	if len(fileInfos) == 0 {
		return nil, errors.New("no metadata extracted")
	}
	if fileInfos[0].Err != nil {
		return nil, fileInfos[0].Err
	}

	for _, tag := range previewTags {
		value, err := fileInfos[0].GetString(tag)
		if err != nil {
			continue
		}
		data, ok := decodeBinaryField(value)
		if !ok {
			continue
		}
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			logging.DebugLog("preview %s of %s not decodable: %v", tag, path, err)
			continue
		}
		return ToGray(img), nil
	}

	return nil, errors.New("no decodable embedded preview")
}

// Close stops the exiftool process if it was started
func (l *RawPreviewLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.et == nil {
		return nil
	}
	err := l.et.Close()
	l.et = nil
	return err
}

// decodeBinaryField unpacks the "base64:" values exiftool emits for binary tags
func decodeBinaryField(value string) ([]byte, bool) {
	encoded, ok := strings.CutPrefix(value, "base64:")
	if !ok {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}
