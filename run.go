package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"framematch/config"
	"framematch/imageprocessor"
	"framematch/logging"
	"framematch/matcher"
	"framematch/scanner"
	"framematch/signalhandler"
	"framematch/sink"
	"framematch/types"
	"framematch/utils"

	"github.com/dustin/go-humanize"
)

// runResult collects what printSummary reports, including for failed runs
type runResult struct {
	inputStats   scanner.LoadStats
	poolStats    scanner.LoadStats
	summary      matcher.Summary
	bytesWritten int64
	filesWritten int64
	matching     bool
}

type matchSink interface {
	matcher.Sink
	Close() error
}

// copyOutput adapts CopySink to matchSink, counting what it wrote
type copyOutput struct {
	*sink.CopySink
	result *runResult
}

func (c copyOutput) Close() error {
	c.result.bytesWritten = c.BytesWritten()
	c.result.filesWritten = c.FilesWritten()
	return nil
}

func runMatching(ctx context.Context, cfg *config.Config, out io.Writer) (runResult, error) {
	var result runResult

	if err := utils.CheckDirectory(cfg.InDir); err != nil {
		return result, fmt.Errorf("input directory: %w", err)
	}
	if err := utils.CheckDirectory(cfg.PoolDir); err != nil {
		return result, fmt.Errorf("frame pool directory: %w", err)
	}

	metric, err := imageprocessor.ParseMetric(cfg.Metric)
	if err != nil {
		return result, err
	}
	comparator, err := matcher.ParseComparator(cfg.Comparator)
	if err != nil {
		return result, err
	}
	evaluator, err := imageprocessor.NewEvaluator(metric)
	if err != nil {
		return result, err
	}

	// The orchestrator and the report sink print from several goroutines
	matchOut := utils.NewLockedWriter(out)

	var output matchSink
	if cfg.Mode == config.ModeCopy {
		if err := utils.EnsureOutputDirectory(cfg.OutDir); err != nil {
			return result, fmt.Errorf("output directory: %w", err)
		}
		lock, err := sink.LockOutputDir(cfg.OutDir)
		if err != nil {
			return result, err
		}
		defer lock.Release()
		output = copyOutput{CopySink: sink.NewCopySink(cfg.OutDir), result: &result}
	} else {
		output = sink.NewReportSink(matchOut)
	}

	registry := imageprocessor.NewImageLoaderRegistry()
	defer registry.Close()
	if cfg.Decoder == config.DecoderOpenCV {
		loader, err := newOpenCVLoader()
		if err != nil {
			return result, err
		}
		registry.ReplaceStandardLoader(loader)
	}

	workers := signalhandler.ResolveWorkers(cfg.Workers)
	logging.LogInfo("Matching %s against %s (metric %s, comparator %s, %d workers)",
		cfg.InDir, cfg.PoolDir, metric, comparator, workers)

	load := func(dir, label string) (*types.ImageSet, scanner.LoadStats, error) {
		return scanner.LoadImageSet(ctx, scanner.ScanOptions{
			FolderPath:         dir,
			Label:              label,
			MaxWorkers:         workers,
			AbortOnDecodeError: cfg.DecodeFailures == config.DecodeFailuresAbort,
			Registry:           registry,
			Status:             out,
		})
	}

	inputs, stats, err := load(cfg.InDir, "input")
	result.inputStats = stats
	if err != nil {
		return result, err
	}
	pool, stats, err := load(cfg.PoolDir, "frame pool")
	result.poolStats = stats
	if err != nil {
		return result, err
	}

	outer, inner := matcher.SplitWorkers(workers, inputs.Len())
	selector := matcher.NewSelector(evaluator, comparator, inner)
	orchestrator := matcher.NewOrchestrator(selector, output, matcher.Options{Workers: outer, Status: matchOut})

	result.matching = true
	summary, runErr := orchestrator.Run(ctx, inputs, pool)
	result.summary = summary
	if err := output.Close(); err != nil {
		logging.LogWarning("Failed to finish output: %v", err)
	}
	return result, runErr
}

func printSummary(out io.Writer, cfg *config.Config, r runResult) {
	if r.inputStats.Skipped > 0 || r.poolStats.Skipped > 0 {
		fmt.Fprintf(out, "Skipped %d input and %d pool files that could not be decoded\n",
			r.inputStats.Skipped, r.poolStats.Skipped)
	}
	if !r.matching {
		return
	}

	s := r.summary
	fmt.Fprintf(out, "Matched %d of %d frames in %s\n", s.Matched, s.Inputs, s.Elapsed.Round(time.Millisecond))
	if cfg.Mode == config.ModeCopy {
		fmt.Fprintf(out, "Wrote %s to %s (%s)\n",
			pluralFiles(r.filesWritten), cfg.OutDir, humanize.Bytes(uint64(r.bytesWritten)))
	}
	if s.Mismatches > 0 {
		fmt.Fprintf(out, "%s pool comparisons skipped for mismatched dimensions\n", humanize.Comma(int64(s.Mismatches)))
	}
	if n := len(s.Failures); n > 0 {
		fmt.Fprintf(out, "%d frames failed (%d selection, %d output):\n", n, s.SelectionFailures, s.SinkFailures)
		for _, err := range s.Failures {
			fmt.Fprintf(out, "  %v\n", err)
		}
	}
}

func pluralFiles(n int64) string {
	if n == 1 {
		return "1 file"
	}
	return humanize.Comma(n) + " files"
}
