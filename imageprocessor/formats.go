package imageprocessor

import (
	"path/filepath"
	"sort"
	"strings"
)

// FormatType represents a known image format type
type FormatType string

// Known image format constants
const (
	FormatUnknown FormatType = "unknown"
	FormatJPEG    FormatType = "jpeg"
	FormatPNG     FormatType = "png"
	FormatGIF     FormatType = "gif"
	FormatTIFF    FormatType = "tiff"
	FormatBMP     FormatType = "bmp"
	FormatWEBP    FormatType = "webp"
	FormatRAW     FormatType = "raw"
	FormatCR2     FormatType = "cr2"
	FormatCR3     FormatType = "cr3"
	FormatNEF     FormatType = "nef"
	FormatARW     FormatType = "arw"
	FormatDNG     FormatType = "dng"
)

// Map of extensions to format types
var formatExtensions = map[string]FormatType{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
	".webp": FormatWEBP,

	// RAW formats, decoded from their embedded previews
	".raw": FormatRAW,
	".cr2": FormatCR2,
	".cr3": FormatCR3,
	".nef": FormatNEF,
	".arw": FormatARW,
	".dng": FormatDNG,
	".raf": FormatRAW,
	".nrw": FormatRAW,
	".srf": FormatRAW,
	".orf": FormatRAW,
	".rw2": FormatRAW,
	".pef": FormatRAW,
}

var standardFormats = []FormatType{FormatJPEG, FormatPNG, FormatGIF, FormatTIFF, FormatBMP, FormatWEBP}

var rawFormats = []FormatType{FormatRAW, FormatCR2, FormatCR3, FormatNEF, FormatARW, FormatDNG}

// GetFileFormat returns the format type based on file extension
func GetFileFormat(path string) FormatType {
	ext := strings.ToLower(filepath.Ext(path))
	format, exists := formatExtensions[ext]
	if !exists {
		return FormatUnknown
	}
	return format
}

// IsImageFile checks if a file is a supported image based on extension
func IsImageFile(path string) bool {
	return GetFileFormat(path) != FormatUnknown
}

// IsRawFormat checks if a file is in RAW format
func IsRawFormat(path string) bool {
	format := GetFileFormat(path)
	for _, raw := range rawFormats {
		if format == raw {
			return true
		}
	}
	return false
}

// extensionsFor returns every known extension mapped to one of the given formats, sorted
func extensionsFor(formats []FormatType) []string {
	var exts []string
	for ext, format := range formatExtensions {
		for _, f := range formats {
			if format == f {
				exts = append(exts, ext)
				break
			}
		}
	}
	sort.Strings(exts)
	return exts
}
