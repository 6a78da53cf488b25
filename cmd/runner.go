package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"spotfave/internal/analysis"
	"spotfave/internal/qr"
	"spotfave/internal/repositories"
	"spotfave/internal/services"
	"spotfave/internal/shared"
	"spotfave/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.CatalogService
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.MutationEngine
	curator    *tasks.CurateEngine
	discover   *tasks.DiscoverEngine
	analyzer   *analysis.Analyzer
	history    *repositories.HistoryRepository
	qrEncoder  qr.Encoder
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.CatalogService
	Logger     *log.Logger
	Output     io.Writer
	History    *repositories.HistoryRepository
	QREncoder  qr.Encoder
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.QREncoder == nil {
		opts.QREncoder = qr.NewPNGEncoder()
	}

	analyzer := analysis.NewAnalyzer(opts.Catalog, opts.Logger)

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		logger:     opts.Logger,
		output:     opts.Output,
		engine:     tasks.NewMutationEngine(opts.Catalog, opts.Config, opts.Logger),
		curator:    tasks.NewCurateEngine(opts.Catalog, analyzer, opts.Logger),
		discover:   tasks.NewDiscoverEngine(opts.Catalog, opts.Logger),
		analyzer:   analyzer,
		history:    opts.History,
		qrEncoder:  opts.QREncoder,
	}
}

// SetLogger swaps the runner's logger and rebuilds the engines around it.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.analyzer = analysis.NewAnalyzer(r.catalog, logger)
	r.engine = tasks.NewMutationEngine(r.catalog, r.config, logger)
	r.curator = tasks.NewCurateEngine(r.catalog, r.analyzer, logger)
	r.discover = tasks.NewDiscoverEngine(r.catalog, logger)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, addCommand, playlistsCommand, curateCommand, discoverCommand, locksCommand, analyzeCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireCatalog returns an error when no catalog service was initialized.
func (r *Runner) requireCatalog() error {
	if r.catalog == nil {
		return fmt.Errorf("%w: Spotify service not initialized, run 'spotfave setup' first", shared.ErrServiceUnavailable)
	}
	return nil
}

// recordHistory persists an operation outcome when a history database is open.
func (r *Runner) recordHistory(command, target string, succeeded, failed int, detail string) {
	if r.history == nil {
		return
	}
	op := &repositories.Operation{
		Command:   command,
		Target:    target,
		Succeeded: succeeded,
		Failed:    failed,
		Detail:    detail,
	}
	if err := r.history.Record(op); err != nil {
		r.logger.Warn("failed to record operation history", "error", err)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
