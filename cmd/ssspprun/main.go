// Command ssspprun loads a binary weighted edge file and runs
// single-source shortest paths from a given (or randomly chosen) source
// vertex, reporting the count of reached vertices and the step count.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/brandonshearin/geminigo/core"
	"github.com/brandonshearin/geminigo/core/procgroup"
	"github.com/brandonshearin/geminigo/internal/xlog"
	"github.com/brandonshearin/geminigo/kernels/sssp"
)

var (
	threads        int
	denseThreshold int
	logLevel       string
)

var rootCmd = &cobra.Command{
	Use:   "ssspprun <binary-weighted-edge-file> <num-vertices> [source]",
	Short: "Run single-source shortest paths over a binary weighted edge file",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runSSSP,
}

func init() {
	rootCmd.Flags().IntVarP(&threads, "threads", "t", 4, "number of simulated partitions (ranks)")
	rootCmd.Flags().IntVar(&denseThreshold, "dense-threshold", 20, "sparse/dense mode-selection divisor")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "v", "info", "log level: debug, info, warn, error")
}

func runSSSP(cmd *cobra.Command, args []string) error {
	path := args[0]
	numVertices, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return xerrors.Errorf("ssspprun: parse <num-vertices>: %w", err)
	}

	log := xlog.NewConsole(logLevel)

	// As in bfsrun, the all-reduce-max below (not a redeclared local)
	// is what every rank actually agrees on as the source vertex.
	var root core.VertexId
	if len(args) == 3 {
		v, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return xerrors.Errorf("ssspprun: parse [source]: %w", err)
		}
		root = core.VertexId(v)
	} else {
		root = core.VertexId(rand.Uint64() % numVertices)
	}

	groups := procgroup.NewLocalGroup(threads)
	shared := sssp.NewShared(core.VertexId(numVertices))

	results := make([]*sssp.Result, threads)
	errs := make([]error, threads)
	var wg sync.WaitGroup
	wg.Add(threads)
	for i := 0; i < threads; i++ {
		i := i
		go func() {
			defer wg.Done()
			g, err := core.NewGraph[float32](core.GraphConfig{
				ProcessGroup:   groups[i],
				DenseThreshold: denseThreshold,
				Logger:         log.With().Int("rank", i).Logger(),
			})
			if err != nil {
				errs[i] = err
				return
			}
			if err := g.Load(path, numVertices); err != nil {
				errs[i] = err
				return
			}

			resolvedRoot := core.VertexId(g.ProcessGroup().AllReduceUint64(uint64(root), procgroup.Max))
			res, err := sssp.Run(context.Background(), g, resolvedRoot, shared)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = res
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	var reached uint64
	for v := core.VertexId(0); v < core.VertexId(numVertices); v++ {
		if results[0].Distance[v] < sssp.Unreachable {
			reached++
		}
	}

	fmt.Printf("root=%d reached_vertices=%d steps=%d\n", results[0].Root, reached, results[0].Steps)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
