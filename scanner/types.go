package scanner

import (
	"io"
	"sync"
	"time"

	"framematch/imageprocessor"

	"github.com/schollz/progressbar/v3"
)

// ScanOptions defines the options for loading one directory
type ScanOptions struct {
	FolderPath         string
	Label              string // shown in status lines, e.g. "input" or "pool"
	MaxWorkers         int
	AbortOnDecodeError bool
	Registry           *imageprocessor.ImageLoaderRegistry
	Status             io.Writer // human-readable progress; nil discards it
}

// ProcessImageResult holds the result of decoding one file
type ProcessImageResult struct {
	Path    string
	Success bool
	Error   error
	IsRaw   bool
}

// LoadStats summarizes one directory load
type LoadStats struct {
	Found       int // regular entries handed to the decoders
	Decoded     int
	Skipped     int
	Directories int // subdirectories, never descended into
	Failures    []error
	Elapsed     time.Duration
}

// ProgressTracker tracks progress of a load
type ProgressTracker struct {
	label      string
	out        io.Writer
	totalFiles int
	processed  int
	errors     int
	bar        *progressbar.ProgressBar
	ticker     *time.Ticker
	done       chan struct{}
	exited     chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex
}
