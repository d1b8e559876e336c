// Package main provides the pamgo CLI: PAM clustering of a dissimilarity
// matrix or a 2-D vectors file, optionally distributed over a TCP fabric.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/pamgo"
	"github.com/hupe1980/pamgo/fabric"
	"github.com/hupe1980/pamgo/fabric/tcpfabric"
	"github.com/hupe1980/pamgo/matrix"
)

const (
	formatVectors = "vectors"
	formatMatrix  = "matrix"
)

func main() {
	code := run(os.Args[1:])
	os.Exit(code)
}

func run(args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			code = 2
		}
	}()

	cmd := newRootCommand()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	var (
		format      string
		threads     int
		clusterFile string
		output      string
		cacheDir    string
		quiet       bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "pamgo NUMBER_OF_CLUSTERS INPUT [THREADS]",
		Short: "Partitioning Around Medoids clustering",
		Long: `pamgo partitions objects into clusters around medoids.

INPUT is a 2-D vectors file (default) or a dissimilarity matrix
(--format matrix), read from a local path or an s3://bucket/key or
minio://endpoint/bucket/key artifact URI. Files ending in .zst or .lz4
are decompressed transparently.

With --cluster the run is distributed: every rank starts with the same
arguments and its own topology file; rank 0 prints the result.`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("number of clusters %q is not an integer", args[0])
			}
			if len(args) == 3 {
				threads, err = strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("thread count %q is not an integer", args[2])
				}
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}

			return cluster(cmd.Context(), clusterOptions{
				k:           k,
				input:       args[1],
				format:      format,
				threads:     threads,
				clusterFile: clusterFile,
				output:      output,
				cacheDir:    cacheDir,
				quiet:       quiet,
				logger:      pamgo.NewTextLogger(level),
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", formatVectors, "input format: vectors or matrix")
	cmd.Flags().IntVar(&threads, "threads", 1, "worker threads per process")
	cmd.Flags().StringVar(&clusterFile, "cluster", "", "YAML cluster topology file for distributed runs")
	cmd.Flags().StringVar(&output, "output", "", "assignment destination (path or artifact URI; default stdout)")
	cmd.Flags().StringVar(&cacheDir, "store-cache", "", "local cache directory for remote artifacts")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the assignment listing, print timing only")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	return cmd
}

type clusterOptions struct {
	k           int
	input       string
	format      string
	threads     int
	clusterFile string
	output      string
	cacheDir    string
	quiet       bool
	logger      *pamgo.Logger
}

func cluster(ctx context.Context, opts clusterOptions) error {
	if opts.format != formatVectors && opts.format != formatMatrix {
		return fmt.Errorf("unknown input format %q", opts.format)
	}

	fab := fabric.Single()
	if opts.clusterFile != "" {
		cfg, err := tcpfabric.LoadConfig(opts.clusterFile)
		if err != nil {
			return err
		}

		connectCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		fab, err = tcpfabric.Connect(connectCtx, cfg)
		if err != nil {
			return err
		}
	}
	defer fab.Close()

	readStart := time.Now()
	m, err := loadInput(ctx, opts)
	if err != nil {
		fab.Abort(1)
		return err
	}
	readTime := time.Since(readStart)

	pamStart := time.Now()
	assignment, err := pamgo.Cluster(ctx, m, opts.k,
		pamgo.WithFabric(fab),
		pamgo.WithThreads(opts.threads),
		pamgo.WithLogger(opts.logger),
		pamgo.WithProgressInterval(time.Second),
	)
	if err != nil {
		fab.Abort(1)
		return err
	}
	pamTime := time.Since(pamStart)

	if fab.Rank() == 0 && !opts.quiet {
		if err := writeAssignment(ctx, assignment, opts); err != nil {
			fab.Abort(1)
			return err
		}
	}

	fmt.Printf("%d\t%g\t%g\n", fab.Rank(), readTime.Seconds(), pamTime.Seconds())
	return nil
}

// loadInput reads the matrix from a local path or remote artifact,
// building it from points when the input is a vectors file.
func loadInput(ctx context.Context, opts clusterOptions) (*matrix.Matrix, error) {
	input := opts.input

	ref, remote, err := parseArtifactURI(input)
	if err != nil {
		return nil, err
	}
	if remote {
		store, err := openStore(ctx, ref, opts.cacheDir)
		if err != nil {
			return nil, err
		}

		tmpDir, err := os.MkdirTemp("", "pamgo-*")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(tmpDir)

		input, err = fetchToFile(ctx, store, ref.key, tmpDir)
		if err != nil {
			return nil, err
		}
	}

	if opts.format == formatMatrix {
		return matrix.Open(input)
	}

	f, err := os.Open(input) //nolint:gosec // G304: Path is configurable
	if err != nil {
		return nil, err
	}
	defer f.Close()

	points, err := matrix.LoadPoints(f)
	if err != nil {
		return nil, err
	}
	return matrix.FromPoints(points, nil)
}

// writeAssignment writes the listing to stdout, a local file or a remote
// artifact.
func writeAssignment(ctx context.Context, a *pamgo.Assignment, opts clusterOptions) error {
	if opts.output == "" || opts.output == "-" {
		return a.WriteListing(os.Stdout)
	}

	ref, remote, err := parseArtifactURI(opts.output)
	if err != nil {
		return err
	}
	if remote {
		store, err := openStore(ctx, ref, "")
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := a.WriteListing(&buf); err != nil {
			return err
		}
		return store.Put(ctx, ref.key, buf.Bytes())
	}

	f, err := os.Create(opts.output) //nolint:gosec // G304: Path is configurable
	if err != nil {
		return err
	}
	if err := a.WriteListing(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
