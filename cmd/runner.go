package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/digger/internal/collection"
	"github.com/desertthunder/digger/internal/formatter"
	"github.com/desertthunder/digger/internal/services"
	"github.com/desertthunder/digger/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	tagger     services.Tagger
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
	now        func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Tagger and DB are optional; when nil each command builds them from the loaded configuration.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Tagger     services.Tagger
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
	Now        func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		tagger:     opts.Tagger,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
		now:        opts.Now,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, inspectCommand, healthCommand, dupesCommand, tagCommand, synthCommand, exportCommand,
		selectionsCommand, jobsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns the configuration named by the command's --config flag.
// The default path falls back to the runner's configuration; any other path must exist.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	return r.configAt(cmd.String("config"))
}

func (r *Runner) configAt(path string) (*shared.Config, error) {
	if path == "" || path == r.configPath {
		return r.config, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}
	return shared.LoadConfig(path)
}

// openDatabase returns a migrated database handle and a func releasing it.
// An injected handle is shared and left open.
func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, func(), error) {
	if r.db != nil {
		return r.db, func() {}, nil
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, func() { db.Close() }, nil
}

// taggerFor returns the injected tagger or one built from config, nil when none is configured.
func (r *Runner) taggerFor(config *shared.Config) services.Tagger {
	if r.tagger != nil {
		return r.tagger
	}
	t, err := services.NewHTTPTagger(config.Tagger, r.logger)
	if err != nil {
		r.logger.Warn("tagging service not configured", "error", err)
		return nil
	}
	return t
}

// loadDocument parses the collection named by the command's first argument.
func (r *Runner) loadDocument(cmd *cli.Command) (*collection.Document, string, error) {
	path := cmd.Args().First()
	if path == "" {
		return nil, "", fmt.Errorf("%w: collection file path", shared.ErrMissingArgument)
	}

	doc, err := collection.Load(path)
	if err != nil {
		return nil, "", err
	}
	r.logger.Debug("loaded collection", "path", path, "tracks", len(doc.Tracks()))
	return doc, path, nil
}

// writeReport sends a rendered report to the --output file when set, else to the runner's output.
func (r *Runner) writeReport(cmd *cli.Command, data []byte) error {
	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteReport(path, data); err != nil {
			return err
		}
		r.logger.Info("report written", "path", path)
		return nil
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
