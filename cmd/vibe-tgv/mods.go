package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-tgv/internal/alignment"
	"github.com/inodb/vibe-tgv/internal/duckdb"
	"github.com/inodb/vibe-tgv/internal/modification"
	"github.com/inodb/vibe-tgv/internal/output"
)

func newModsCmd() *cobra.Command {
	var (
		outputFile string
		useDB      bool
		dbPath     string
	)

	cmd := &cobra.Command{
		Use:   "mods [flags] <bam|sam> [region]",
		Short: "List base modification calls",
		Long: `Decode the MM/ML base modification tags of every mapped read and write
one tab-delimited line per call. With --db the calls are indexed in DuckDB;
an unchanged input is not decoded again, a region is answered from the
index and without a region a per-type summary is printed.`,
		Example: `  vibe-tgv mods reads.bam chr1:1-50000
  vibe-tgv mods --db reads.bam
  vibe-tgv mods --db reads.bam chr1:10000-20000`,
		Args: cobra.RangeArgs(1, 2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{"decode.workers": "workers"})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			var region *alignment.Region
			if len(args) == 2 {
				r, err := alignment.ParseRegion(args[1])
				if err != nil {
					return err
				}
				region = &r
			}

			var out io.Writer = cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			workers := viper.GetInt("decode.workers")
			if !useDB {
				calls, err := decodeCalls(args[0], region, workers, logger)
				if err != nil {
					return err
				}
				return writeCalls(out, calls)
			}

			if dbPath == "" {
				dbPath = viper.GetString("cache.path")
			}
			return runModsIndexed(out, args[0], dbPath, region, workers, logger)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&useDB, "db", false, "Index calls in DuckDB and query the index")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "DuckDB index path (default: cache.path)")
	cmd.Flags().Int("workers", 0, "Decode workers (0 = all CPUs)")

	return cmd
}

// runModsIndexed refreshes the DuckDB index for input if it changed, then
// answers the region from the index or prints a summary.
func runModsIndexed(out io.Writer, input, dbPath string, region *alignment.Region, workers int, logger *zap.Logger) error {
	if input == "-" {
		return fmt.Errorf("--db needs a file input, not stdin")
	}
	fp, err := duckdb.StatFile(input)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	unchanged, err := store.SourceUnchanged(fp)
	if err != nil {
		return err
	}
	if unchanged {
		logger.Info("index is up to date", zap.String("input", input), zap.String("db", dbPath))
	} else {
		calls, err := decodeCalls(input, nil, workers, logger)
		if err != nil {
			return err
		}
		if err := store.ClearCalls(); err != nil {
			return fmt.Errorf("clear index: %w", err)
		}
		if err := store.WriteCalls(calls); err != nil {
			return fmt.Errorf("write calls: %w", err)
		}
		if err := store.RecordSource(fp, len(calls)); err != nil {
			return err
		}
		logger.Info("indexed modification calls",
			zap.String("input", input), zap.String("db", dbPath), zap.Int("calls", len(calls)))
	}

	if region != nil {
		calls, err := store.CallsInRegion(region.Chrom, region.Start, region.End)
		if err != nil {
			return err
		}
		return writeCalls(out, calls)
	}

	summary, err := store.Summary()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "#mod\tcalls\thigh\tlow")
	for _, s := range summary {
		fmt.Fprintf(out, "%s\t%d\t%d\t%d\n", s.Type, s.Calls, s.High, s.Low)
	}
	return nil
}

// decodeCalls decodes the calls of every mapped read in input, or only of
// the reads overlapping region when it is set.
func decodeCalls(input string, region *alignment.Region, workers int, logger *zap.Logger) ([]modification.Call, error) {
	reader, err := alignment.OpenReader(input)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var a *alignment.Alignment
	if region != nil {
		loader := alignment.NewLoader()
		loader.SetLogger(logger)
		if a, err = loader.Load(reader, *region); err != nil {
			return nil, err
		}
	} else {
		if a, err = readAll(reader, logger); err != nil {
			return nil, err
		}
	}

	if err := a.DecodeModifications(workers); err != nil {
		return nil, err
	}

	var calls []modification.Call
	for i := range a.Reads {
		r := &a.Reads[i]
		calls = append(calls, r.BaseModifications.Calls(r.Name, r.Chrom, r.Mate(), r.IsReverse())...)
	}
	if region != nil {
		calls = inRegion(calls, *region)
	}
	return calls, nil
}

// readAll converts every mapped record of rr into a Read.
func readAll(rr alignment.RecordReader, logger *zap.Logger) (*alignment.Alignment, error) {
	var reads []alignment.Read
	for {
		rec, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		read, err := alignment.FromRecord(rec, nil)
		if err != nil {
			logger.Debug("skipping record", zap.String("name", rec.Name), zap.Error(err))
			continue
		}
		reads = append(reads, read)
	}
	return alignment.New("", 0, 0, reads), nil
}

// inRegion keeps the calls whose position lies inside region.
func inRegion(calls []modification.Call, region alignment.Region) []modification.Call {
	kept := calls[:0]
	for _, c := range calls {
		if c.Chrom == region.Chrom && c.Pos >= region.Start && c.Pos <= region.End {
			kept = append(kept, c)
		}
	}
	return kept
}

func writeCalls(w io.Writer, calls []modification.Call) error {
	cw := output.NewCallWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteAll(calls); err != nil {
		return err
	}
	return cw.Flush()
}
