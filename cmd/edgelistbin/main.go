// Command edgelistbin converts a whitespace-delimited text edge list
// into the fixed-record binary format core.Graph.Load reads.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/brandonshearin/geminigo/ingest"
	"github.com/brandonshearin/geminigo/internal/xlog"
)

var (
	threads    int
	edges      uint64
	inputPath  string
	outputPath string
	weighted   bool
	genWeights bool
	oneIndexed bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "edgelistbin",
	Short: "Convert a text edge list into the engine's binary edge format",
	Example: `  edgelistbin -t 8 -e 1000000 -f ./twitter.txt -o ./twitter.bin
  edgelistbin -t 4 -e 500 -f ./small.wel -o ./small.bin -w
  edgelistbin -t 4 -e 500 -f ./small.el -o ./small.bin -a`,
	RunE: runConvert,
}

func init() {
	rootCmd.Flags().IntVarP(&threads, "threads", "t", 32, "parser thread count")
	rootCmd.Flags().Uint64VarP(&edges, "edges", "e", 1000, "number of edge records in the input file")
	rootCmd.Flags().StringVarP(&inputPath, "file", "f", "./input_graph", "input text edge list path")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "./output_graph", "output binary edge file path")
	rootCmd.Flags().BoolVarP(&weighted, "weighted", "w", false, "input lines carry a trailing float weight")
	rootCmd.Flags().BoolVarP(&genWeights, "gen-weights", "a", false, "generate a random weight per edge (unweighted input only)")
	rootCmd.Flags().BoolVarP(&oneIndexed, "one-indexed", "i", false, "input vertex ids are 1-indexed")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "v", "info", "log level: debug, info, warn, error")
}

func runConvert(cmd *cobra.Command, args []string) error {
	log := xlog.NewConsole(logLevel)
	runID := uuid.New().String()

	ig, err := ingest.New(ingest.Config{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Edges:      edges,
		Threads:    threads,
		Weighted:   weighted,
		GenWeights: genWeights,
		OneIndexed: oneIndexed,
		Logger:     log.With().Str("run_id", runID).Logger(),
	})
	if err != nil {
		return err
	}

	stats, err := ig.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("edges_written=%d max_vertex_id=%d bytes_written=%d\n", stats.EdgesWritten, stats.MaxVertexID, stats.BytesWritten)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
