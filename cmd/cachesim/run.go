package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/addrlist"
	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/geometry"
	"github.com/sarchlab/cachesim/metric"
	"github.com/sarchlab/cachesim/report"
	"github.com/sarchlab/cachesim/trace"
)

type runOptions struct {
	configPath   string
	size         int
	block        int
	lines        int
	tagBits      int
	maxAddresses int

	trace     bool
	traceFile string
	metrics   bool
	verbose   bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [address...]",
		Short: "Run an address stream through the cache.",
		Long: `Run an address stream through the cache. Addresses may be ` +
			`given as arguments, separated by spaces or commas. Geometry ` +
			`values and addresses that are not given by flags, a config file ` +
			`or arguments are asked for on standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a JSON or YAML cache config file")
	flags.IntVar(&opts.size, "size", 0, "Cache total size in bytes")
	flags.IntVar(&opts.block, "block", 0, "Bytes per block")
	flags.IntVar(&opts.lines, "lines", 0, "Number of lines per set")
	flags.IntVar(&opts.tagBits, "tag-bits", geometry.DefaultTagBits,
		"Tag width in bits; wider tags are truncated (0 keeps all bits)")
	flags.IntVar(&opts.maxAddresses, "max-addresses", 0,
		"Maximum number of addresses per run (0 means unlimited)")
	flags.BoolVar(&opts.trace, "trace", false, "Write a CSV trace of every access")
	flags.StringVar(&opts.traceFile, "trace-file", "",
		"Trace file name without extension (default: generated)")
	flags.BoolVar(&opts.metrics, "metrics", false, "Print statistics and per-set counters")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	return cmd
}

func runSimulation(cmd *cobra.Command, opts *runOptions, args []string) error {
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

	config, err := resolveConfig(cmd, opts, in, out)
	if err != nil {
		return err
	}

	g, err := config.Derive()
	if err != nil {
		return err
	}
	logger.Info("cache geometry", "geometry", g.String())

	addresses, err := resolveAddresses(args, config.MaxAddresses, in, out)
	if err != nil {
		return err
	}

	cacheOpts := []cache.Option{cache.WithLogger(logger)}

	if opts.trace || opts.traceFile != "" {
		writer := trace.NewCSVTraceWriter(opts.traceFile)
		if err := writer.Init(); err != nil {
			return err
		}
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("failed to close trace", "error", err)
			}
		}()

		logger.Info("tracing accesses", "file", writer.Path())
		cacheOpts = append(cacheOpts, cache.WithObserver(writer))
	}

	var metrics *metric.Metrics
	if opts.metrics {
		metrics = metric.NewMetrics()
		cacheOpts = append(cacheOpts, cache.WithObserver(metrics))
	}

	c := cache.New(g, cacheOpts...)

	fmt.Fprintln(out)
	for _, addr := range addresses {
		report.Access(out, c.Access(addr))
	}

	report.Contents(out, c.Snapshot())

	if metrics != nil {
		report.Summary(out, c.Stats())

		summary, err := metrics.Summary()
		if err != nil {
			return err
		}
		printSetSummary(out, summary)
	}

	return nil
}

// resolveConfig layers defaults, the config file and flags, then asks for
// any geometry value that is still missing.
func resolveConfig(
	cmd *cobra.Command,
	opts *runOptions,
	in *bufio.Reader,
	out io.Writer,
) (*geometry.Config, error) {
	config := &geometry.Config{TagBits: geometry.DefaultTagBits}
	if opts.configPath != "" {
		var err error
		config, err = geometry.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		config.TotalSize = opts.size
	}
	if flags.Changed("block") {
		config.BlockSize = opts.block
	}
	if flags.Changed("lines") {
		config.LinesPerSet = opts.lines
	}
	if flags.Changed("tag-bits") {
		config.TagBits = opts.tagBits
	}
	if flags.Changed("max-addresses") {
		config.MaxAddresses = opts.maxAddresses
	}

	p := &prompter{in: in, out: out}

	questions := []struct {
		flag   string
		prompt string
		value  *int
	}{
		{"size", "Cache total size (in bytes)?: ", &config.TotalSize},
		{"block", "Bytes per block?: ", &config.BlockSize},
		{"lines", "Number of lines per set?: ", &config.LinesPerSet},
	}

	for _, q := range questions {
		if opts.configPath != "" || flags.Changed(q.flag) {
			continue
		}

		v, err := p.askInt(q.prompt)
		if err != nil {
			return nil, err
		}
		*q.value = v
	}

	return config, nil
}

func resolveAddresses(
	args []string,
	limit int,
	in *bufio.Reader,
	out io.Writer,
) ([]uint64, error) {
	if len(args) > 0 {
		return addrlist.ParseFields(args, limit)
	}

	p := &prompter{in: in, out: out}

	return p.askAddresses("Enter list of byte addresses: ", limit)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})

	return slog.New(handler).With("run", xid.New().String())
}

func printSetSummary(w io.Writer, summary []metric.SetSummary) {
	fmt.Fprintf(w, "\nPer-set counters:\n")
	for _, s := range summary {
		fmt.Fprintf(w, "   Set %d: hits %d, misses %d, evictions %d\n",
			s.Set, s.Hits, s.Misses, s.Evictions)
	}
}
