package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/CTAG07/Cadenza/pkg/chord"
	"github.com/CTAG07/Cadenza/pkg/markov"
	"github.com/CTAG07/Cadenza/pkg/templating"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// generateFlags are shared by the generate, interpolate and loop commands.
type generateFlags struct {
	seed        uint64
	temperature float64
	fromFile    bool
	format      string
}

func (f *generateFlags) register(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for the random source (0 uses the config seed, or a fresh one)")
	cmd.Flags().Float64Var(&f.temperature, "temperature", 0, "sampling temperature; 1 samples the model as trained, <=0 always picks the likeliest chord")
	cmd.Flags().BoolVar(&f.fromFile, "file", false, "treat SOURCE as a progression file instead of a corpus name")
	cmd.Flags().StringVarP(&f.format, "format", "o", "", "output template name or inline template (default from config)")
}

// run is one generation request: the model it samples and how the result is reported.
type run struct {
	id     string
	source string
	seed   uint64
	model  *markov.Model[chord.Chord]
	src    rand.Source
	opts   []markov.GenerateOption
}

// newRun builds the model for source and resolves seed and temperature.
func (a *app) newRun(cmd *cobra.Command, source string, flags *generateFlags) (*run, error) {
	ctx := cmd.Context()
	model, err := a.loadModel(ctx, source, flags.fromFile)
	if err != nil {
		return nil, err
	}

	seed := flags.seed
	if seed == 0 {
		seed = a.config.Generation.Seed
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	temperature := a.config.Generation.Temperature
	if cmd.Flags().Changed("temperature") {
		temperature = flags.temperature
	}

	r := &run{
		id:     uuid.NewString(),
		source: source,
		seed:   seed,
		model:  model,
		src:    rand.NewPCG(seed, seed),
		opts:   []markov.GenerateOption{markov.WithTemperature(temperature)},
	}
	a.logger.InfoContext(ctx, "Generation started",
		slog.String("run_id", r.id),
		slog.String("command", cmd.Name()),
		slog.String("source", source),
		slog.Uint64("seed", seed),
		slog.Float64("temperature", temperature),
		slog.Int("alphabet_size", model.Len()),
	)
	return r, nil
}

// loadModel builds a model from a stored progression or a progression file.
func (a *app) loadModel(ctx context.Context, source string, fromFile bool) (*markov.Model[chord.Chord], error) {
	opts := []markov.Option{
		markov.WithLogger(a.logger),
		markov.WithZeroThreshold(a.config.Generation.ZeroThreshold),
	}
	if !fromFile {
		info, err := a.progression(ctx, source)
		if err != nil {
			return nil, err
		}
		return a.store.BuildModel(ctx, info, opts...)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	chords, err := a.tokenizer.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return markov.Build(chords, opts...)
}

// finish renders the generated chords and logs the end of the run.
func (a *app) finish(cmd *cobra.Command, r *run, chords []chord.Chord, format string) error {
	a.logger.InfoContext(cmd.Context(), "Generation finished",
		slog.String("run_id", r.id),
		slog.Int("length", len(chords)),
		slog.Int("cached_powers", r.model.CachedPowers()),
	)
	tm, err := a.templates()
	if err != nil {
		return err
	}
	return tm.Render(cmd.OutOrStdout(), format, templating.ProgressionData{
		RunID:  r.id,
		Mode:   cmd.Name(),
		Source: r.source,
		Seed:   r.seed,
		Chords: chords,
	})
}

// parseChordFlag parses a chord given on the command line.
func parseChordFlag(name, value string) (chord.Chord, error) {
	if value == "" {
		return chord.Chord{}, fmt.Errorf("--%s is required", name)
	}
	c, err := chord.Parse(value)
	if err != nil {
		return chord.Chord{}, fmt.Errorf("--%s: %w", name, err)
	}
	return c, nil
}

func newGenerateCmd(a *app) *cobra.Command {
	var flags generateFlags
	var start string
	var count int
	cmd := &cobra.Command{
		Use:     "generate SOURCE",
		Short:   "Walk the chain forward from a starting chord",
		Aliases: []string{"gen"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startChord, err := parseChordFlag("start", start)
			if err != nil {
				return err
			}
			r, err := a.newRun(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			chords, err := r.model.GenerateLinear(startChord, count, r.src, r.opts...)
			if err != nil {
				return err
			}
			return a.finish(cmd, r, append([]chord.Chord{startChord}, chords...), flags.format)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "chord to start from (required)")
	cmd.Flags().IntVarP(&count, "count", "n", 8, "number of chords to generate after the start chord")
	flags.register(cmd)
	return cmd
}

func newInterpolateCmd(a *app) *cobra.Command {
	var flags generateFlags
	var left, right string
	var span int
	cmd := &cobra.Command{
		Use:   "interpolate SOURCE",
		Short: "Fill in chords between two fixed chords",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := parseChordFlag("left", left)
			if err != nil {
				return err
			}
			rc, err := parseChordFlag("right", right)
			if err != nil {
				return err
			}
			r, err := a.newRun(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			interior, err := r.model.GenerateInterpolated(l, rc, span, r.src, r.opts...)
			if err != nil {
				return err
			}
			chords := make([]chord.Chord, 0, span+2)
			chords = append(chords, l)
			chords = append(chords, interior...)
			chords = append(chords, rc)
			return a.finish(cmd, r, chords, flags.format)
		},
	}
	cmd.Flags().StringVar(&left, "left", "", "chord before the gap (required)")
	cmd.Flags().StringVar(&right, "right", "", "chord after the gap (required)")
	cmd.Flags().IntVar(&span, "span", 2, "number of chords to generate between left and right")
	flags.register(cmd)
	return cmd
}

func newLoopCmd(a *app) *cobra.Command {
	var flags generateFlags
	var start string
	var length int
	cmd := &cobra.Command{
		Use:   "loop SOURCE",
		Short: "Generate a progression that leads back to its first chord",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			anchor, err := parseChordFlag("start", start)
			if err != nil {
				return err
			}
			r, err := a.newRun(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			chords, err := r.model.GenerateLoop(anchor, length, r.src, r.opts...)
			if err != nil {
				return err
			}
			return a.finish(cmd, r, chords, flags.format)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "chord the loop starts and ends on (required)")
	cmd.Flags().IntVar(&length, "length", 4, "number of chords in the loop")
	flags.register(cmd)
	return cmd
}

func newTemplatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the available output templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tm, err := a.templates()
			if err != nil {
				return err
			}
			def := tm.GetConfig().Default
			for _, name := range tm.GetTemplateNames() {
				marker := ""
				if name == def {
					marker = " (default)"
				}
				if _, err = fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", name, marker); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
