package main

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-tgv/internal/alignment"
	"github.com/inodb/vibe-tgv/internal/canvas"
	"github.com/inodb/vibe-tgv/internal/command"
	"github.com/inodb/vibe-tgv/internal/export"
	"github.com/inodb/vibe-tgv/internal/layout"
	"github.com/inodb/vibe-tgv/internal/reference"
	"github.com/inodb/vibe-tgv/internal/render"
)

// viewConfig collects everything needed to render one view.
type viewConfig struct {
	input     string
	region    string
	reference string
	width     int
	height    int
	paired    bool
	mods      bool
	workers   int
	commands  []string
}

func newViewCmd() *cobra.Command {
	var (
		outputFile string
		format     string
		refPath    string
		commands   []string
	)

	cmd := &cobra.Command{
		Use:   "view [flags] <bam|sam> <region>",
		Short: "Render reads overlapping a region",
		Long: `Render the reads overlapping a region as a grid of cells and write it as
text, HTML or SVG. The region is chr, chr:pos or chr:start-end; the view
starts at the region start and spans --width bases.`,
		Example: `  vibe-tgv view reads.bam chr1:10,000-10,120
  vibe-tgv view --mod -f html -o view.html reads.bam chr1:10000
  vibe-tgv view --cmd paired --cmd "export svg pairs.svg" reads.bam chr7:55191822
  samtools view -h reads.bam chr1 | vibe-tgv view - chr1:500`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{
				"view.width":         "width",
				"view.height":        "height",
				"view.paired":        "paired",
				"view.modifications": "mod",
				"view.format":        "format",
				"decode.workers":     "workers",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			formatName := viper.GetString("view.format")
			if !cmd.Flags().Changed("format") && outputFile != "" {
				if ext := strings.TrimPrefix(filepath.Ext(outputFile), "."); ext != "" {
					if _, err := export.ParseFormat(ext); err == nil {
						formatName = ext
					}
				}
			}
			f, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			cfg := viewConfig{
				input:     args[0],
				region:    args[1],
				reference: refPath,
				width:     viper.GetInt("view.width"),
				height:    viper.GetInt("view.height"),
				paired:    viper.GetBool("view.paired"),
				mods:      viper.GetBool("view.modifications"),
				workers:   viper.GetInt("decode.workers"),
				commands:  commands,
			}
			buf, st, err := renderView(cfg, logger)
			if err != nil {
				return err
			}
			if st.Quit {
				return nil
			}

			for _, e := range st.Exports {
				if err := export.WriteFile(e.Path, buf, e.Format); err != nil {
					return err
				}
				logger.Info("exported view", zap.String("path", e.Path), zap.Stringer("format", e.Format))
			}

			var out io.Writer = cmd.OutOrStdout()
			if outputFile != "" {
				return export.WriteFile(outputFile, buf, f)
			}
			return export.Write(out, buf, f)
		},
	}

	cmd.Flags().Int("width", 120, "View width in cells (one base per cell)")
	cmd.Flags().Int("height", 40, "View height in rows")
	cmd.Flags().Bool("paired", false, "Draw mates of a pair on one row")
	cmd.Flags().Bool("mod", false, "Color bases by MM/ML modification calls")
	cmd.Flags().Int("workers", 0, "Modification decode workers (0 = all CPUs)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, html, svg")
	cmd.Flags().StringVarP(&refPath, "reference", "r", "", "Reference FASTA for mismatch detection")
	cmd.Flags().StringArrayVar(&commands, "cmd", nil, "Command-mode input applied before rendering (repeatable)")

	return cmd
}

// renderView loads the reads of cfg.region, applies cfg.commands and draws
// the result into a new buffer. The returned state carries any exports
// and the quit flag requested by the commands.
func renderView(cfg viewConfig, logger *zap.Logger) (*canvas.Buffer, *command.State, error) {
	if cfg.width < 1 || cfg.height < 1 {
		return nil, nil, fmt.Errorf("view size %dx%d must be positive", cfg.width, cfg.height)
	}
	region, err := alignment.ParseRegion(cfg.region)
	if err != nil {
		return nil, nil, err
	}

	st := &command.State{
		Region:  region,
		Options: render.Options{Paired: cfg.paired, ShowModifications: cfg.mods},
	}
	for _, c := range cfg.commands {
		if err := st.Run(c); err != nil {
			return nil, nil, fmt.Errorf("command %q: %w", c, err)
		}
	}
	if st.Quit {
		return nil, st, nil
	}
	if len(st.Sorts) > 0 || len(st.Filters) > 0 {
		logger.Warn("sort and filter options are recorded but not applied",
			zap.Int("sorts", len(st.Sorts)), zap.Int("filters", len(st.Filters)))
	}

	window := alignment.Region{
		Chrom: st.Region.Chrom,
		Start: st.Region.Start,
		End:   st.Region.Start + uint64(cfg.width) - 1,
	}
	if st.Region.Start > math.MaxUint64-uint64(cfg.width) {
		window.End = math.MaxUint64
	}

	reader, err := alignment.OpenReader(cfg.input)
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close()

	loader := alignment.NewLoader()
	loader.SetLogger(logger)
	if cfg.reference != "" {
		seq, err := reference.LoadFASTA(cfg.reference, window.Chrom, window.Start, window.End)
		if err != nil {
			return nil, nil, fmt.Errorf("load reference: %w", err)
		}
		loader.SetReference(seq)
	}

	a, err := loader.Load(reader, window)
	if err != nil {
		return nil, nil, err
	}

	if st.Options.ShowModifications {
		if err := a.DecodeModifications(cfg.workers); err != nil {
			return nil, nil, err
		}
		calls := 0
		for i := range a.Reads {
			calls += a.Reads[i].BaseModifications.Count()
		}
		logger.Debug("decoded modifications", zap.Int("reads", len(a.Reads)), zap.Int("calls", calls))
	}
	if st.Options.Paired {
		a.StackPairs()
	} else {
		a.Stack()
	}

	area := canvas.Rect{Width: cfg.width, Height: cfg.height}
	buf := canvas.NewBuffer(area)
	view := layout.NewAlignmentView(window.Start, 0)
	if err := render.RenderAlignment(area, buf, a, view, render.DefaultPalette(), st.Options); err != nil {
		return nil, nil, fmt.Errorf("render %s: %w", window, err)
	}
	return buf, st, nil
}
