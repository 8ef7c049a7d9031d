package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

func newCorpusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "corpus",
		Short:   "Manage the stored training progressions",
		Aliases: []string{"c"},
	}
	cmd.AddCommand(
		newCorpusAddCmd(a),
		newCorpusListCmd(a),
		newCorpusShowCmd(a),
		newCorpusRemoveCmd(a),
		newCorpusExportCmd(a),
		newCorpusImportCmd(a),
		newCorpusStatsCmd(a),
		newCorpusPruneCmd(a),
	)
	return cmd
}

// openInput opens path for reading, or returns stdin for "" and "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}

func newCorpusAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME [FILE]",
		Short: "Append chords from a progression file (or stdin) to a progression, creating it if needed",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore()
			if err != nil {
				return err
			}
			var path string
			if len(args) == 2 {
				path = args[1]
			}
			in, err := openInput(cmd, path)
			if err != nil {
				return err
			}
			defer func(in io.ReadCloser) {
				_ = in.Close()
			}(in)

			info, err := store.GetOrInsertProgression(ctx, args[0])
			if err != nil {
				return err
			}
			if err = store.Train(ctx, info, in); err != nil {
				return fmt.Errorf("training '%s': %w", info.Name, err)
			}
			stats, err := store.GetProgressionStats(ctx, info)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chords, %d distinct\n", info.Name, stats.Length, stats.DistinctChords)
			return err
		},
	}
}

func newCorpusListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List stored progressions",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			stats, err := store.GetStats(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range stats.Progressions {
				if _, err = fmt.Fprintln(cmd.OutOrStdout(), p.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newCorpusShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print the chords of a progression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			info, err := a.progression(ctx, args[0])
			if err != nil {
				return err
			}
			chords, err := a.store.Chords(ctx, info)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), a.store.Tokenizer().Join(chords))
			return err
		},
	}
}

func newCorpusRemoveCmd(a *app) *cobra.Command {
	var prune bool
	cmd := &cobra.Command{
		Use:     "remove NAME",
		Short:   "Delete a progression",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			info, err := a.progression(ctx, args[0])
			if err != nil {
				return err
			}
			if err = a.store.RemoveProgression(ctx, info); err != nil {
				return err
			}
			if prune {
				_, err = a.store.PruneVocabulary(ctx)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "also drop chords no progression uses anymore")
	return cmd
}

func newCorpusExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export NAME [FILE]",
		Short: "Write a progression as JSON to a file or stdout",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			info, err := a.progression(ctx, args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 || args[1] == "-" {
				return a.store.ExportProgression(ctx, info, cmd.OutOrStdout())
			}
			var buf bytes.Buffer
			if err = a.store.ExportProgression(ctx, info, &buf); err != nil {
				return err
			}
			if err = atomic.WriteFile(args[1], &buf); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}
			a.logger.Info("Progression written", slog.String("path", args[1]))
			return nil
		},
	}
}

func newCorpusImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Read a JSON progression, appending to an existing one of the same name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer func(in io.ReadCloser) {
				_ = in.Close()
			}(in)

			info, err := store.ImportProgression(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", info.Name)
			return err
		},
	}
}

func newCorpusStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show corpus and per-progression statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore()
			if err != nil {
				return err
			}
			stats, err := store.GetStats(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tCHORDS\tDISTINCT\tMEAN ENTROPY")
			for _, p := range stats.Progressions {
				st := stats.Stats[p.Id]
				entropy := "-"
				if st.Length > 0 {
					m, err := store.BuildModel(ctx, p)
					if err != nil {
						return err
					}
					entropy = fmt.Sprintf("%.3f", m.Stats().MeanEntropy)
				}
				_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", p.Name, st.Length, st.DistinctChords, entropy)
			}
			_, _ = fmt.Fprintf(w, "\nvocabulary: %d chords\n", stats.VocabSize)
			return w.Flush()
		},
	}
}

func newCorpusPruneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop stored chords that no progression uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			removed, err := store.PruneVocabulary(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "pruned %d chords\n", removed)
			return err
		},
	}
}
