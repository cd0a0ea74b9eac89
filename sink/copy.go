// Package sink turns match decisions into output: byte copies of the matched
// pool files, or a printed report.
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"framematch/types"
)

// CopySink writes the matched pool file's bytes to outDir under the source frame's name
type CopySink struct {
	outDir       string
	bytesWritten atomic.Int64
	files        atomic.Int64
}

// NewCopySink creates a sink writing into outDir, which must already exist
func NewCopySink(outDir string) *CopySink {
	return &CopySink{outDir: outDir}
}

// Consume copies result.Match to outDir/result.Source.Name
func (s *CopySink) Consume(ctx context.Context, result types.MatchResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := filepath.Join(s.outDir, result.Source.Name)
	n, err := CopyFileAtomic(result.Match.Path(), dst)
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", result.Match.Path(), dst, err)
	}
	s.bytesWritten.Add(n)
	s.files.Add(1)
	return nil
}

// BytesWritten returns the total bytes copied so far
func (s *CopySink) BytesWritten() int64 {
	return s.bytesWritten.Load()
}

// FilesWritten returns the number of output files written so far
func (s *CopySink) FilesWritten() int64 {
	return s.files.Load()
}

// CopyFileAtomic streams src into a temporary file next to dst and renames it
// into place, so dst is either absent, the previous content, or a full copy.
func CopyFileAtomic(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename has happened
		_ = os.Remove(tmpName)
	}()

	written, err := io.Copy(tmp, in)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return 0, err
	}
	return written, nil
}
