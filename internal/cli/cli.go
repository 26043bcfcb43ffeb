package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treewalk/pkg/buildinfo"
	"github.com/matzehuels/treewalk/pkg/config"
	"github.com/matzehuels/treewalk/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "treewalk"

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

	// global flags
	configPath string
	server     string
	file       string
	noCache    bool
	offline    bool

	cfg config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
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
		Short: "treewalk draws red-black trees and animates searches across them",
		Long: `treewalk fetches a red-black tree from a tree service, lays it out as a
node-link diagram and animates the path a search takes from the root.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			registerHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default ~/.config/treewalk/config.toml)")
	pf.StringVar(&c.server, "server", "", "tree service URL (overrides config and "+config.EnvServer+")")
	pf.StringVar(&c.file, "file", "", "read the tree from a JSON file instead of the service")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable the tree cache")
	pf.BoolVar(&c.offline, "offline", false, "use the cached tree without contacting the service")
	_ = root.MarkPersistentFlagFilename("config", "toml")
	_ = root.MarkPersistentFlagFilename("file", "json")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.eventsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies the global flags on top.
func (c *CLI) loadConfig() error {
	path, optional := c.configPath, false
	if path == "" {
		optional = true
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}
	if c.server != "" {
		cfg.Server = c.server
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if c.noCache {
		cfg.Cache.Backend = "none"
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "path", path, "server", cfg.Server)
	return nil
}

// registerHooks routes library events to the debug log.
func registerHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetHTTPHooks(h)
	observability.SetCacheHooks(h)
	observability.SetRenderHooks(h)
	observability.SetAnimationHooks(h)
}
