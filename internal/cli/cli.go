// Package cli implements the boxp command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/L1TangDingZhen/BOX-P/internal/config"
	"github.com/L1TangDingZhen/BOX-P/pkg/buildinfo"
	"github.com/L1TangDingZhen/BOX-P/pkg/cache"
	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
	"github.com/L1TangDingZhen/BOX-P/pkg/geom"
	"github.com/L1TangDingZhen/BOX-P/pkg/session"
	"github.com/L1TangDingZhen/BOX-P/pkg/task"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = buildinfo.Name

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

	// ConfigPath overrides the config file location (--config).
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "boxp places boxes in a container without collisions",
		Long: `boxp manages packing tasks: boxes placed in a rectangular container.

Every placement is checked against the container bounds and against every
box already placed. Placed boxes can be grouped into display layers by what
rests on what, rendered as a support graph, or walked through one by one.

Tasks are stored as JSON files (space_info + items).`,
		Version:      buildinfo.Resolved(),
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/boxp/config.toml)")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.lineupCommand())
	root.AddCommand(c.layersCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Cache
// =============================================================================

// svgCacheTTL bounds how long rendered support graphs are kept on disk.
const svgCacheTTL = 7 * 24 * time.Hour

// cacheDir returns $XDG_CACHE_HOME/boxp, or ~/.cache/boxp.
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// newCache opens the render cache, or a null cache when disabled or when
// the cache directory is unusable.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "error", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("cache disabled", "dir", dir, "error", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Config & Sessions
// =============================================================================

func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// sessionOptions returns session options built from the config.
func (c *CLI) sessionOptions(cfg config.Config) (session.Options, error) {
	layers, err := cfg.LayerOptions()
	if err != nil {
		return session.Options{}, err
	}
	return session.Options{
		Container: cfg.ContainerValue(),
		Seed:      cfg.Seed(),
		Layers:    layers,
		Logger:    c.Logger,
	}, nil
}

// loaded is a task file replayed into a session.
type loaded struct {
	path   string
	task   *task.Task
	sess   *session.Session
	report task.Report
}

// openTask reads the task at path and places its items into a new session.
// Items that cannot be placed are logged and kept in the report.
func (c *CLI) openTask(path string) (*loaded, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	opts, err := c.sessionOptions(cfg)
	if err != nil {
		return nil, err
	}

	t, err := task.ImportJSON(path)
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", path, err)
	}
	sess, rep, err := task.NewSession(t, opts)
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", path, err)
	}
	for _, rej := range rep.Rejected {
		c.Logger.Warn("item not placed", "order_id", rej.OrderID, "name", rej.Name, "code", rej.Code())
	}
	return &loaded{path: path, task: t, sess: sess, report: rep}, nil
}

// save writes the session back to the task file.
func (l *loaded) save() error {
	if err := task.ExportJSON(task.FromSession(l.sess, l.task.ID), l.path); err != nil {
		return fmt.Errorf("write task %s: %w", l.path, err)
	}
	return nil
}

// warnDropped warns that rejected items are not written back.
func (l *loaded) warnDropped() {
	if n := len(l.report.Rejected); n > 0 {
		printWarning("%d item(s) could not be placed and were dropped", n)
		for _, rej := range l.report.Rejected {
			printDetail("%s", rej)
		}
	}
}

// resolveBox maps a box ID ("item0002") or a 1-based order ID ("2") from
// the task file to a placed box ID.
func (l *loaded) resolveBox(ref string) (string, error) {
	if _, ok := l.sess.Box(ref); ok {
		return ref, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		for _, p := range l.report.Placed {
			if p.OrderID == n {
				return p.Box.ID, nil
			}
		}
	}
	return "", errors.New(errors.ErrCodeNotFound, "no box %q in %s", ref, l.path)
}

// =============================================================================
// Flag Parsing
// =============================================================================

// parseTriple parses "x,y,z" into three numbers.
func parseTriple(s string) ([3]float64, error) {
	var out [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return out, errors.New(errors.ErrCodeInvalidInput, "want three comma-separated numbers, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %q", s)
		}
		out[i] = v
	}
	return out, nil
}

func parseContainer(s string) (geom.Container, error) {
	v, err := parseTriple(s)
	if err != nil {
		return geom.Container{}, err
	}
	c := geom.Container{X: v[0], Y: v[1], Z: v[2]}
	return c, c.Validate()
}

// fileExists reports whether path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
