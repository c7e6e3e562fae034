// Package main provides the CLI entry point for ysconv.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"ysconv/internal/audit"
	"ysconv/internal/config"
	"ysconv/internal/orchestrator"
	"ysconv/internal/output"
	"ysconv/internal/rewriter"
	"ysconv/internal/watcher"
)

type globalFlags struct {
	Root   string `help:"Addon directory to convert." default:"." type:"existingdir"`
	Config string `help:"Configuration file (default: <root>/ysconv.yaml if present)." type:"path"`
}

// loadConfig resolves the configuration for a command. An explicit --config
// that does not exist is an error; the default location is optional.
func (g *globalFlags) loadConfig() (*config.Configuration, error) {
	if g.Config != "" {
		return config.Load(g.Config)
	}
	return config.LoadOrDefault(filepath.Join(g.Root, config.DefaultConfigName))
}

func (g *globalFlags) journalDir(cfg *config.Configuration) string {
	dir := cfg.Journal.Directory
	if filepath.IsAbs(dir) {
		return dir
	}
	absRoot, err := filepath.Abs(g.Root)
	if err != nil {
		absRoot = g.Root
	}
	return filepath.Join(absRoot, dir)
}

// RunCmd converts the tree once.
type RunCmd struct {
	globalFlags
	DryRun  bool `help:"Report what would change without touching the disk."`
	Verbose bool `short:"v" help:"Report every rename and rewrite."`
}

func (c *RunCmd) Run() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	out := output.New(output.DefaultConfig(c.Verbose))

	orch := orchestrator.New(c.Root, cfg, out, c.DryRun)
	summary, err := orch.Run()
	if err != nil {
		return err
	}

	out.Info("%s", summary.String())
	if summary.HasErrors() {
		os.Exit(1)
	}
	return nil
}

// WatchCmd converts the tree once and then keeps watching the files that
// could not be decoded, re-processing each one after the user repairs it.
type WatchCmd struct {
	globalFlags
	Verbose bool `short:"v" help:"Report every rename and rewrite."`
}

func (c *WatchCmd) Run() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	out := output.New(output.DefaultConfig(c.Verbose))

	orch := orchestrator.New(c.Root, cfg, out, false)
	summary, err := orch.Run()
	if err != nil {
		return err
	}
	out.Info("%s", summary.String())

	if len(summary.DecodeFailures) == 0 {
		return nil
	}
	out.Info("Watching %d file(s); edit them to fix the reported bytes and they will be re-processed. Ctrl-C to stop.",
		len(summary.DecodeFailures))

	handler := func(path string) (bool, error) {
		result, err := orch.ProcessFile(path)
		if err != nil {
			var decodeErr *rewriter.DecodeError
			if errors.As(err, &decodeErr) {
				out.Error("Still unable to process %s", decodeErr.Path)
				return false, nil
			}
			return false, err
		}
		if result.Error != nil {
			out.Error("Error re-processing %s: %v", result.RelPath, result.Error)
			return false, result.Error
		}
		out.Info("Repaired %s", result.RelPath)
		return true, nil
	}

	w, err := watcher.New(watcher.Config{
		Debounce:        time.Duration(cfg.Watch.DebounceSeconds) * time.Second,
		StableThreshold: time.Duration(cfg.Watch.StableThresholdMs) * time.Millisecond,
	}, handler)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(summary.DecodeFailures))
	for _, failure := range summary.DecodeFailures {
		paths = append(paths, failure.FullPath)
	}
	if err := w.Track(paths); err != nil {
		return err
	}
	w.Start()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	select {
	case <-w.AllFixed():
		out.Info("All files repaired.")
	case <-interrupt:
	}

	stats := w.Stop()
	out.Info("Watch session: %d repaired, %d still pending (%s)",
		stats.Fixed, stats.Pending, stats.Duration.Round(time.Second))
	if stats.Pending > 0 {
		os.Exit(1)
	}
	return nil
}

// UndoCmd reverses the renames of the most recent conversion run.
type UndoCmd struct {
	globalFlags
}

func (c *UndoCmd) Run() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	out := output.New(output.DefaultConfig(false))

	journalDir := c.journalDir(cfg)
	reader := audit.NewReader(journalDir)

	var writer *audit.Writer
	if !cfg.Journal.Disabled {
		writer, err = audit.NewWriter(journalDir)
		if err != nil {
			out.Error("Warning: undo will not be journaled: %v", err)
			writer = nil
		} else {
			defer writer.Close()
		}
	}

	absRoot, err := filepath.Abs(c.Root)
	if err != nil {
		absRoot = c.Root
	}

	result, err := audit.Undo(reader, writer, absRoot)
	if err != nil {
		return err
	}

	out.Info("Undid run %s: restored %d rename(s)", result.TargetRunID, result.Restored)
	if result.Rewrites > 0 {
		out.Info("%d content rewrite(s) were not reversed; rewriting only lowercases references, so a fresh run reproduces them.", result.Rewrites)
	}
	for _, failure := range result.Failures {
		out.Error("Could not restore %s (now %s): %s", failure.Path, failure.Target, failure.Message)
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d rename(s) could not be restored", result.Failed)
	}
	return nil
}

func main() {
	var cli struct {
		Run   RunCmd   `cmd:"" default:"withargs" help:"Convert the addon tree under --root (default command)."`
		Watch WatchCmd `cmd:"" help:"Convert, then re-process undecodable files as you fix them."`
		Undo  UndoCmd  `cmd:"" help:"Reverse the renames of the most recent run."`
	}

	ctx := kong.Parse(
		&cli,
		kong.Name("ysconv"),
		kong.Description("Makes YSFlight addon trees portable across case-sensitive and case-insensitive filesystems."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
