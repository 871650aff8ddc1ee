// Package ingest converts a whitespace-delimited text edge list into the
// fixed-record binary format core.Graph.Load reads, using a thread-per-slice
// parallel parse of the input file.
package ingest

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// Config selects the parsing mode for one ingest run.
type Config struct {
	InputPath  string
	OutputPath string
	Edges      uint64
	Threads    int
	Weighted   bool
	GenWeights bool
	OneIndexed bool
	Logger     zerolog.Logger
}

func (c *Config) recordSize() int64 {
	if c.Weighted || c.GenWeights {
		return 8 + 8 + 4
	}
	return 8 + 8
}

func (c *Config) validate() error {
	if c.InputPath == "" {
		return xerrors.New("ingest: InputPath is required")
	}
	if c.OutputPath == "" {
		return xerrors.New("ingest: OutputPath is required")
	}
	if c.Edges == 0 {
		return xerrors.New("ingest: Edges must be > 0")
	}
	if c.Threads <= 0 {
		return xerrors.New("ingest: Threads must be > 0")
	}
	if c.Weighted && c.GenWeights {
		return xerrors.New("ingest: cannot generate weights for an already-weighted input graph")
	}
	return nil
}

// Stats summarizes a completed Run.
type Stats struct {
	EdgesWritten uint64
	MaxVertexID  uint64
	BytesWritten int64
}

// Ingester drives one text-to-binary conversion.
type Ingester struct {
	cfg Config
}

// New validates cfg and returns a ready-to-run Ingester.
func New(cfg Config) (*Ingester, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Ingester{cfg: cfg}, nil
}

// Run parses cfg.Edges lines from cfg.InputPath and writes cfg.Threads
// disjoint record ranges into cfg.OutputPath in parallel, one goroutine
// per thread slice (mirroring edgeListText2Bin.c's thread-per-slice
// design), aggregating every worker's failure via go-multierror instead
// of exiting early and leaving siblings to run to completion uselessly.
func (ig *Ingester) Run(ctx context.Context) (Stats, error) {
	cfg := ig.cfg
	rsize := cfg.recordSize()
	fileSize := int64(cfg.Edges) * rsize

	out, err := openOutput(cfg.OutputPath, fileSize)
	if err != nil {
		return Stats{}, xerrors.Errorf("ingest: open output %q: %w", cfg.OutputPath, err)
	}

	edgesPerThread := cfg.Edges / uint64(cfg.Threads)
	remainder := cfg.Edges % uint64(cfg.Threads)

	results := make([]uint64, cfg.Threads)

	// Every worker's failure is folded into workerErr via go-multierror
	// rather than only surfacing the first one errgroup happens to see;
	// errgroup still cancels gctx on the first failure so siblings stop
	// early instead of running the original's fire-and-forget threads to
	// completion after a sibling has already failed.
	var workerErr *multierror.Error
	var workerErrMu sync.Mutex
	recordErr := func(err error) {
		workerErrMu.Lock()
		workerErr = multierror.Append(workerErr, err)
		workerErrMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	for t := 0; t < cfg.Threads; t++ {
		t := t
		initialOffset := uint64(t) * edgesPerThread
		count := edgesPerThread
		if t == cfg.Threads-1 {
			count += remainder
		}
		byteOffset := int64(initialOffset) * rsize

		g.Go(func() error {
			maxV, err := parseSlice(gctx, cfg, initialOffset, count, byteOffset, rsize, out)
			if err != nil {
				wrapped := xerrors.Errorf("ingest: thread %d (lines [%d,%d)): %w", t, initialOffset, initialOffset+count, err)
				recordErr(wrapped)
				return wrapped
			}
			results[t] = maxV
			return nil
		})
	}

	_ = g.Wait()
	if err := workerErr.ErrorOrNil(); err != nil {
		_ = out.close()
		return Stats{}, err
	}

	if err := out.syncAndClose(); err != nil {
		return Stats{}, xerrors.Errorf("ingest: finalize output: %w", err)
	}

	var maxVID uint64
	for _, v := range results {
		if v > maxVID {
			maxVID = v
		}
	}

	cfg.Logger.Info().
		Uint64("edges_written", cfg.Edges).
		Uint64("max_vertex_id", maxVID).
		Int64("bytes_written", fileSize).
		Msg("ingest complete")

	return Stats{EdgesWritten: cfg.Edges, MaxVertexID: maxVID, BytesWritten: fileSize}, nil
}

// parseSlice seeks the input file to line initialOffset, parses count
// edge records, and writes them into out at byteOffset. It opens its own
// *os.File handle (the original opens a fresh FILE* per thread too) so
// seeking is independent across goroutines.
func parseSlice(ctx context.Context, cfg Config, initialOffset, count uint64, byteOffset int64, rsize int64, out *outputFile) (uint64, error) {
	f, err := os.Open(cfg.InputPath)
	if err != nil {
		return 0, xerrors.Errorf("open input: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, 1<<20)
	for i := uint64(0); i < initialOffset; i++ {
		if _, err := reader.ReadString('\n'); err != nil {
			return 0, xerrors.Errorf("seek to line %d: %w", i+1, err)
		}
	}

	seed := rand.New(rand.NewSource(int64(initialOffset) + 1))
	buf := make([]byte, count*uint64(rsize))

	var maxVID uint64
	var off int64
	for i := uint64(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return 0, xerrors.Errorf("read line %d: %w", initialOffset+i+1, err)
		}

		src, dst, weight, err := parseLine(line, cfg.Weighted)
		if err != nil {
			return 0, xerrors.Errorf("parse line %d: %w", initialOffset+i+1, err)
		}

		if cfg.OneIndexed {
			src--
			dst--
		}
		if src > maxVID {
			maxVID = src
		}
		if dst > maxVID {
			maxVID = dst
		}

		binary.LittleEndian.PutUint64(buf[off:], src)
		off += 8
		binary.LittleEndian.PutUint64(buf[off:], dst)
		off += 8
		if cfg.Weighted {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(weight))
			off += 4
		} else if cfg.GenWeights {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(seed.Float32()))
			off += 4
		}
	}

	if err := out.writeAt(buf, byteOffset); err != nil {
		return 0, xerrors.Errorf("write output slice: %w", err)
	}

	return maxVID, nil
}

func parseLine(line string, weighted bool) (src, dst uint64, weight float32, err error) {
	if weighted {
		_, err = fmt.Sscanf(line, "%d %d %f", &src, &dst, &weight)
	} else {
		_, err = fmt.Sscanf(line, "%d %d", &src, &dst)
	}
	if err != nil && err != io.EOF {
		return 0, 0, 0, err
	}
	return src, dst, weight, nil
}
