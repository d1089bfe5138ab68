package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/alecthomas/kong"

	"github.com/openclearing/ledgerbridge/config"
	"github.com/openclearing/ledgerbridge/ledger"
	"github.com/openclearing/ledgerbridge/output"
	"github.com/openclearing/ledgerbridge/telemetry"
)

type CheckCmd struct {
	File FileOrStdin `help:"Journal CSV filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
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

	sanitizer, err := buildSanitizer(cfg, accounts)
	if err != nil {
		return err
	}

	runCtx := context.Background()

	var collector telemetry.Collector
	var checkTimer telemetry.Timer
	var once sync.Once

	reportTelemetry := func() {
		once.Do(func() {
			if collector != nil {
				checkTimer.End()
				_, _ = fmt.Fprintln(ctx.Stderr)
				collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
			}
		})
	}

	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)
		checkTimer = collector.Start(fmt.Sprintf("check %s", filepath.Base(cmd.File.Filename)))

		defer reportTelemetry()
	}

	lines, err := cmd.File.LoadLines()
	if err != nil {
		printError(ctx.Stderr, err.Error())
		reportTelemetry()
		return NewCommandError(1)
	}

	if err := sanitizer.Check(runCtx, lines); err != nil {
		var sanitizeErrors *ledger.SanitizeErrors
		if stdErrors.As(err, &sanitizeErrors) {
			for _, groupErr := range sanitizeErrors.Errors {
				printError(ctx.Stderr, groupErr.Error())
			}
			_, _ = fmt.Fprintln(ctx.Stderr)
			printError(ctx.Stderr, fmt.Sprintf("%d transaction(s) cannot be represented on the remote ledger", len(sanitizeErrors.Errors)))
		} else {
			printError(ctx.Stderr, err.Error())
		}
		reportTelemetry()
		return NewCommandError(1)
	}

	printSuccess(ctx.Stdout, "Check passed")

	return nil
}
