package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/busarchive/internal/config"
	"github.com/matzehuels/busarchive/internal/metrics"
	"github.com/matzehuels/busarchive/pkg/archive"
	"github.com/matzehuels/busarchive/pkg/buildinfo"
	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/observability"
	"github.com/matzehuels/busarchive/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "busarchive"

	// archiveExt is the conventional file extension for archives.
	archiveExt = ".busarchive"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config *config.Config

	// Metrics is non-nil when a metrics textfile is configured.
	Metrics *metrics.Collector

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. An explicit level set here wins
// over the configured log level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.verbose = level == LogDebug
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Busarchive saves and restores bus schedules as object-graph archives",
		Long: `Busarchive writes bus schedules (trips, shared routes and polymorphic stops)
to a versioned text archive and reads them back with every shared object
still shared. Archives can be kept on disk or in a file, Redis or MongoDB store.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template(fmt.Sprintf("archive format: %d", archive.FormatVersion)))
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/busarchive/config.toml)")

	// Register all subcommands
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.importGTFSCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Setup
// =============================================================================

// setup loads the configuration, applies its log level and registers the
// metrics collector.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.Options{Path: c.configPath})
	if err != nil {
		return err
	}
	c.Config = cfg

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return aerrors.Wrap(aerrors.ErrCodeInvalidInput, err, "invalid log level %q", cfg.LogLevel)
	}
	if !c.verbose {
		c.Logger.SetLevel(level)
	}

	if cfg.MetricsFile != "" {
		c.Metrics = metrics.NewCollector()
		observability.SetArchiveHooks(c.Metrics)
		observability.SetStoreHooks(c.Metrics)
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	c.Logger.Debug("loaded config", "backend", cfg.Store.Backend, "metrics", cfg.MetricsFile)
	return nil
}

// Close writes collected metrics and unregisters the collector. It must
// run after the root command returns, whether or not the command failed,
// so failed operations are counted too.
func (c *CLI) Close() error {
	if c.Metrics == nil {
		return nil
	}
	defer observability.Reset()
	if err := c.Metrics.WriteToTextfile(c.Config.MetricsFile); err != nil {
		return err
	}
	c.Logger.Debug("wrote metrics", "path", c.Config.MetricsFile)
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// archiveOptions returns the options passed to every archive reader and
// writer, tracing slots and records at debug level.
func (c *CLI) archiveOptions() []archive.Option {
	return []archive.Option{archive.WithLogger(c.Logger.WithPrefix("archive"))}
}

// openStore connects to the configured archive store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	return c.Config.OpenStore(ctx)
}

// defaultOutput derives an output path from an input path.
func defaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + archiveExt
}
