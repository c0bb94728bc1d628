package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/callout/pkg/buildinfo"
	"github.com/matzehuels/callout/pkg/cache"
	"github.com/matzehuels/callout/pkg/config"
	"github.com/matzehuels/callout/pkg/observability"
	"github.com/matzehuels/callout/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = config.AppName

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
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Callout places annotation boxes next to the things they describe",
		Long: `Callout computes where an annotation box and its pointer arrow go so that
the box sits next to a target element, aligned along one side, and stays
inside an optional boundary. It renders scenes of targets and callouts,
drives them live in the terminal or a browser, and serves the placement
engine over HTTP.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/callout/config.toml)")

	root.AddCommand(c.placeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration, applies the verbosity flag and attaches
// the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		observability.NewLogHooks(c.Logger).Install()
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	c.Logger.Debug("configuration loaded", "path", c.configPath)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the local file cache.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// cacheDir returns the configured cache directory, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
