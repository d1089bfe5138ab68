package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/openclearing/ledgerbridge/config"
	"github.com/openclearing/ledgerbridge/ledger"
	"github.com/openclearing/ledgerbridge/loader"
	"github.com/openclearing/ledgerbridge/output"
	"github.com/openclearing/ledgerbridge/telemetry"
)

type SanitizeCmd struct {
	File   FileOrStdin `help:"Journal CSV filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Output string      `help:"Write the sanitized journal to this file instead of stdout." short:"o"`
	Table  bool        `help:"Render the sanitized journal as an aligned table."`
	Watch  bool        `help:"Re-run whenever the input file changes." short:"w"`
}

func (cmd *SanitizeCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	cfg, err := config.Load(globals.Config)
	if err != nil {
		return err
	}

	accounts, err := seedRemote(cfg)
	if err != nil {
		return err
	}

	if cfg.TransitoryAccount != "" {
		if err := ledger.EnsureTransitoryAccount(accounts, cfg.TransitoryAccount, cfg.ReportingCurrency); err != nil {
			return err
		}
	}

	sanitizer, err := buildSanitizer(cfg, accounts)
	if err != nil {
		return err
	}

	if cmd.Watch {
		if cmd.File.Filename == "<stdin>" {
			return fmt.Errorf("--watch requires a file argument")
		}
		return cmd.watch(ctx, globals, sanitizer)
	}

	return cmd.runOnce(ctx, globals, sanitizer)
}

func (cmd *SanitizeCmd) runOnce(ctx *kong.Context, globals *Globals, sanitizer *ledger.Sanitizer) error {
	runCtx := context.Background()

	var collector telemetry.Collector
	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		defer func() {
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
		}()
	}

	lines, err := cmd.File.LoadLines()
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(1)
	}

	sanitized, err := sanitizer.Sanitize(runCtx, lines)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(1)
	}

	if cmd.Table {
		renderTable(ctx.Stdout, sanitized)
		return nil
	}

	dest := cmd.Output
	if dest == "" {
		dest = "-"
	}
	if err := loader.WriteFile(dest, sanitized); err != nil {
		return err
	}
	if cmd.Output != "" {
		printSuccess(ctx.Stderr, fmt.Sprintf("Wrote %d lines to %s", len(sanitized), pathStyle.Render(cmd.Output)))
	}

	return nil
}

// watch re-runs the sanitizer whenever the input file changes. Editors
// often replace files in multiple steps, so events are debounced; remove
// and rename events are included since atomic saves produce them.
func (cmd *SanitizeCmd) watch(ctx *kong.Context, globals *Globals, sanitizer *ledger.Sanitizer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory rather than the file so the watch survives
	// atomic replaces.
	target := cmd.File.GetAbsoluteFilename()
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", target, err)
	}

	printInfof(ctx.Stderr, "Watching %s", pathStyle.Render(target))

	if err := cmd.runOnce(ctx, globals, sanitizer); err != nil {
		printError(ctx.Stderr, err.Error())
	}

	const debounceDelay = 100 * time.Millisecond
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	rerun := make(chan struct{}, 1)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})

		case <-rerun:
			printInfof(ctx.Stderr, "Change detected, re-running")
			if err := cmd.runOnce(ctx, globals, sanitizer); err != nil {
				printError(ctx.Stderr, err.Error())
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(ctx.Stderr, fmt.Sprintf("file watcher error: %v", err))
		}
	}
}
