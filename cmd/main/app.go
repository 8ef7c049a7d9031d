package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/CTAG07/Cadenza/pkg/chord"
	"github.com/CTAG07/Cadenza/pkg/corpus"
	"github.com/CTAG07/Cadenza/pkg/templating"
	"github.com/spf13/cobra"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	// flags
	configFlag   string
	logLevelFlag string
	dbFlag       string

	configPath string
	config     *Config
	tokenizer  *chord.Tokenizer
	logger     *slog.Logger
	stdout     io.Writer
	stderr     io.Writer

	db    *sql.DB
	store *corpus.Store
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		// Replaced once the config is loaded.
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

// setup loads .env and the config file, applies environment and flag
// overrides and builds the logger. It runs before every command.
func (a *app) setup(cmd *cobra.Command) error {
	if err := loadEnv(); err != nil {
		return err
	}

	a.configPath = configPath(a.configFlag)
	config, err := LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err = config.applyEnv(); err != nil {
		return err
	}
	if a.dbFlag != "" {
		config.CLI.DatabasePath = a.dbFlag
	}
	if a.logLevelFlag != "" {
		config.CLI.LogLevel = a.logLevelFlag
	}
	a.config = config

	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: parseLogLevel(config.CLI.LogLevel)}))
	a.logger.Debug("Configuration loaded",
		slog.String("config_path", a.configPath),
		slog.String("database_path", config.CLI.DatabasePath),
		slog.String("command", cmd.CommandPath()),
	)

	a.tokenizer, err = config.newTokenizer()
	return err
}

// openStore opens the corpus database, creating the schema if needed.
func (a *app) openStore() (*corpus.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	db, err := initDB(a.config.CLI.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = corpus.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set up corpus schema: %w", err)
	}
	store, err := corpus.NewStore(db, a.tokenizer)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create corpus store: %w", err)
	}
	store.SetLogger(a.logger)

	a.logger.Debug("Database opened", slog.String("driver", driverName), slog.String("path", a.config.CLI.DatabasePath))
	a.db = db
	a.store = store
	return store, nil
}

// close releases the store and database, if they were opened.
func (a *app) close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Failed to close database", "error", err)
		}
		a.db = nil
	}
}

// templates returns a template manager. The corpus is attached when it is already open.
func (a *app) templates() (*templating.TemplateManager, error) {
	return templating.NewTemplateManager(a.logger, a.store, a.config.Templates)
}

// progression looks up a progression by name, wrapping a miss in a readable error.
func (a *app) progression(ctx context.Context, name string) (corpus.ProgressionInfo, error) {
	store, err := a.openStore()
	if err != nil {
		return corpus.ProgressionInfo{}, err
	}
	info, err := store.GetProgressionInfo(ctx, name)
	if err != nil {
		return corpus.ProgressionInfo{}, fmt.Errorf("progression '%s': %w", name, err)
	}
	return info, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "cadenza",
		Short:         "Generate chord progressions from a Markov model of example progressions",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.configFlag, "config", "", "path to the JSON config file (env "+envConfigPath+")")
	root.PersistentFlags().StringVar(&a.logLevelFlag, "log-level", "", "debug, info, warn or error (env "+envLogLevel+")")
	root.PersistentFlags().StringVar(&a.dbFlag, "db", "", "path to the corpus database (env "+envDatabase+")")

	root.AddCommand(
		newCorpusCmd(a),
		newGenerateCmd(a),
		newInterpolateCmd(a),
		newLoopCmd(a),
		newTemplatesCmd(a),
		newConfigCmd(a),
	)
	return root
}
