package scanner

import (
	"fmt"
	"io"
	"time"

	"framematch/logging"
	"framematch/utils"

	"github.com/schollz/progressbar/v3"
)

const progressInterval = 2 * time.Second

// NewProgressTracker starts progress reporting for total files. Terminals get
// a live bar; other writers get a percentage line every few seconds.
func NewProgressTracker(out io.Writer, label string, total int) *ProgressTracker {
	if out == nil {
		out = io.Discard
	}
	tracker := &ProgressTracker{
		label:      label,
		out:        out,
		totalFiles: total,
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
	}

	if total == 0 || out == io.Discard {
		return tracker
	}

	if utils.IsTerminal(out) {
		tracker.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription(fmt.Sprintf("Decoding %s frames", label)),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
		)
		return tracker
	}

	tracker.ticker = time.NewTicker(progressInterval)
	go tracker.displayProgress()
	return tracker
}

// displayProgress shows the progress periodically
func (p *ProgressTracker) displayProgress() {
	defer close(p.exited)
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			p.printLine()
			p.mu.Unlock()
		}
	}
}

func (p *ProgressTracker) printLine() {
	fmt.Fprintf(p.out, "%.2f%% done... (%d/%d, %d skipped)\n",
		p.percentage(), p.processed, p.totalFiles, p.errors)
}

func (p *ProgressTracker) percentage() float64 {
	if p.totalFiles == 0 {
		return 100
	}
	return float64(p.processed) / float64(p.totalFiles) * 100
}

// Record updates the tracker with one decode outcome
func (p *ProgressTracker) Record(result ProcessImageResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed++
	if !result.Success {
		p.errors++
		if result.Error != nil {
			logging.LogImageProcessed(result.Path, false, result.Error.Error())
		}
	} else {
		logging.LogImageProcessed(result.Path, true, "")
	}

	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// Counts returns how many files were recorded and how many of them failed
func (p *ProgressTracker) Counts() (processed, errors int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.errors
}

// Stop ends progress reporting and prints the final state
func (p *ProgressTracker) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		if p.ticker != nil {
			p.ticker.Stop()
			<-p.exited
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.bar != nil {
			_ = p.bar.Finish()
			return
		}
		if p.out != io.Discard {
			p.printLine()
		}
	})
}
