package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"framematch/imageprocessor"
	"framematch/logging"
	"framematch/signalhandler"
	"framematch/types"

	"golang.org/x/sync/errgroup"
)

// ErrUnreadableDir marks a directory that does not exist or cannot be listed
var ErrUnreadableDir = errors.New("directory not readable")

// frameCollector gathers decoded frames from concurrent workers
type frameCollector struct {
	mu       sync.Mutex
	frames   []types.Frame
	failures []error
}

func (c *frameCollector) add(frame types.Frame) {
	c.mu.Lock()
	c.frames = append(c.frames, frame)
	c.mu.Unlock()
}

func (c *frameCollector) fail(err error) {
	c.mu.Lock()
	c.failures = append(c.failures, err)
	c.mu.Unlock()
}

// LoadImageSet decodes every regular entry of a single, non-recursive listing
// of options.FolderPath. Decode failures are skipped and reported in the stats
// unless AbortOnDecodeError is set. The returned set is sorted by name.
func LoadImageSet(ctx context.Context, options ScanOptions) (*types.ImageSet, LoadStats, error) {
	var stats LoadStats
	startTime := time.Now()

	entries, err := os.ReadDir(options.FolderPath)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %s: %v", ErrUnreadableDir, options.FolderPath, err)
	}

	registry := options.Registry
	if registry == nil {
		registry = imageprocessor.NewImageLoaderRegistry()
		defer registry.Close()
	}

	status := options.Status
	if status == nil {
		status = io.Discard
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			stats.Directories++
			logging.DebugLog("Skipping subdirectory %s", filepath.Join(options.FolderPath, entry.Name()))
			continue
		}
		paths = append(paths, filepath.Join(options.FolderPath, entry.Name()))
	}
	stats.Found = len(paths)

	// Display initial information
	fmt.Fprintf(status, "Reading %s files...\n", labelOrDefault(options.Label))
	fmt.Fprintf(status, "Total frames: %d\n", stats.Found)
	logging.LogInfo("Loading %d files from %s", stats.Found, options.FolderPath)

	tracker := NewProgressTracker(status, labelOrDefault(options.Label), stats.Found)
	collector := &frameCollector{}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(signalhandler.ResolveWorkers(options.MaxWorkers))

	for _, path := range paths {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			// Work queued before a cancellation is dropped
			if groupCtx.Err() != nil {
				return nil
			}

			img, err := decodeFile(registry, path)
			tracker.Record(ProcessImageResult{
				Path:    path,
				Success: err == nil,
				Error:   err,
				IsRaw:   imageprocessor.IsRawFormat(path),
			})
			if err != nil {
				if options.AbortOnDecodeError {
					return err
				}
				collector.fail(err)
				return nil
			}

			collector.add(types.Frame{ID: types.NewIdentity(path), Pix: img})
			return nil
		})
	}

	waitErr := group.Wait()
	tracker.Stop()
	stats.Elapsed = time.Since(startTime)
	stats.Failures = collector.failures
	stats.Decoded = len(collector.frames)
	stats.Skipped = len(collector.failures)

	if waitErr != nil {
		return nil, stats, fmt.Errorf("load %s: %w", options.FolderPath, waitErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, fmt.Errorf("load %s: %w", options.FolderPath, err)
	}

	set := &types.ImageSet{Dir: options.FolderPath, Frames: collector.frames}
	set.SortByName()

	logging.LogInfo("Loaded %d/%d frames from %s in %v (%d skipped)",
		stats.Decoded, stats.Found, options.FolderPath, stats.Elapsed.Round(time.Millisecond), stats.Skipped)
	return set, stats, nil
}

// decodeFile loads one file, turning decoder panics into errors
func decodeFile(registry *imageprocessor.ImageLoaderRegistry, path string) (img *image.Gray, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.LogError("Panic during image loading: %v, file: %s\nStack trace: %s", r, path, debug.Stack())
			img = nil
			err = &imageprocessor.DecodeError{Path: path, Err: fmt.Errorf("panic during image loading: %v", r)}
		}
	}()

	return registry.LoadImage(path)
}

func labelOrDefault(label string) string {
	if label == "" {
		return "image"
	}
	return label
}
