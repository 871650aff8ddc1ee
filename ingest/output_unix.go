//go:build linux || darwin

package ingest

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// outputFile wraps a preallocated, mmap'd output file. Workers write
// their disjoint byte range directly into the mapping; syncAndClose
// msyncs and munmaps it, mirroring the original's
// posix_fallocate/mmap/madvise/msync/munmap sequence.
type outputFile struct {
	f    *os.File
	data []byte
}

func openOutput(path string, size int64) (*outputFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, xerrors.Errorf("open: %w", err)
	}

	if err := unix.Fallocate(int(f.Fd()), 0, 0, size); err != nil {
		// Fallocate isn't supported on every filesystem (e.g. tmpfs on
		// some kernels); fall back to a plain truncate, same observable
		// result for callers.
		if truncErr := f.Truncate(size); truncErr != nil {
			f.Close()
			return nil, xerrors.Errorf("fallocate: %w (truncate fallback: %v)", err, truncErr)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, xerrors.Errorf("mmap: %w", err)
	}
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	return &outputFile{f: f, data: data}, nil
}

func (o *outputFile) writeAt(buf []byte, offset int64) error {
	copy(o.data[offset:offset+int64(len(buf))], buf)
	return nil
}

func (o *outputFile) syncAndClose() error {
	if err := unix.Msync(o.data, unix.MS_SYNC); err != nil {
		return xerrors.Errorf("msync: %w", err)
	}
	return o.close()
}

func (o *outputFile) close() error {
	if o.data != nil {
		if err := unix.Munmap(o.data); err != nil {
			o.f.Close()
			return xerrors.Errorf("munmap: %w", err)
		}
		o.data = nil
	}
	return o.f.Close()
}
