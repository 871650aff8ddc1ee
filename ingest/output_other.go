//go:build !linux && !darwin

package ingest

import (
	"os"

	"golang.org/x/xerrors"
)

// outputFile on non-Unix platforms falls back to plain WriteAt: no
// golang.org/x/sys/unix mmap support there, but the same preallocated,
// random-access-write behavior workers need.
type outputFile struct {
	f *os.File
}

func openOutput(path string, size int64) (*outputFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, xerrors.Errorf("open: %w", err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, xerrors.Errorf("truncate: %w", err)
	}
	return &outputFile{f: f}, nil
}

func (o *outputFile) writeAt(buf []byte, offset int64) error {
	_, err := o.f.WriteAt(buf, offset)
	return err
}

func (o *outputFile) syncAndClose() error {
	if err := o.f.Sync(); err != nil {
		return err
	}
	return o.close()
}

func (o *outputFile) close() error {
	return o.f.Close()
}
