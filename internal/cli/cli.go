// Package cli implements the ivrflow command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ivrflow/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "ivrflow"

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

	// Config is loaded before any command runs.
	Config     Config
	configPath string
	verbose    bool
	noCache    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:     newLogger(w, level),
		Config:     DefaultConfig(),
		configPath: configPath(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "ivrflow edits and stores call-routing flows",
		Long:         `ivrflow is a toolkit for building IVR call-routing flows: a terminal canvas editor, a flow store with file, Redis and MongoDB backends, Graphviz rendering and an HTTP API.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", c.configPath, "config file")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVar(&c.noCache, "no-cache", false, "bypass the lookup cache")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.flowsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.typesCommand())
	root.AddCommand(c.lookupCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies its log level unless
// --verbose overrides it.
func (c *CLI) loadConfig() error {
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.verbose {
		c.SetLogLevel(LogDebug)
	} else {
		c.SetLogLevel(cfg.Level())
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "store", cfg.Store.Backend)
	return nil
}
