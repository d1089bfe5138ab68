package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/openclearing/ledgerbridge/config"
	"github.com/openclearing/ledgerbridge/ledger"
)

// AccountsCmd manages the remote account chart.
type AccountsCmd struct {
	List             AccountsListCmd     `cmd:"" help:"List the configured account chart."`
	EnsureTransitory EnsureTransitoryCmd `cmd:"" help:"Ensure the transitory clearing account exists with the reporting currency."`
}

type AccountsListCmd struct{}

func (cmd *AccountsListCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return err
	}

	accounts, err := seedRemote(cfg)
	if err != nil {
		return err
	}

	chart, err := accounts.List()
	if err != nil {
		return err
	}

	renderAccountTable(ctx.Stdout, chart)

	return nil
}

type EnsureTransitoryCmd struct {
	Yes bool `help:"Create the account without a confirmation prompt." short:"y"`
}

func (cmd *EnsureTransitoryCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return err
	}

	if cfg.TransitoryAccount == "" {
		return ledger.NewConfigurationError("not set")
	}

	accounts, err := seedRemote(cfg)
	if err != nil {
		return err
	}

	if _, err := ledger.ResolveTransitoryAccount(accounts, cfg.TransitoryAccount, cfg.ReportingCurrency); err == nil {
		printSuccess(ctx.Stdout, fmt.Sprintf("Transitory account %s exists with currency %s",
			cfg.TransitoryAccount, cfg.ReportingCurrency))
		return nil
	}

	if _, ok := accounts.AccountCurrency(cfg.TransitoryAccount); ok {
		// Present but in the wrong currency; creation would not help.
		_, err := ledger.ResolveTransitoryAccount(accounts, cfg.TransitoryAccount, cfg.ReportingCurrency)
		return err
	}

	shouldCreate := cmd.Yes
	if !shouldCreate {
		confirmed, err := promptYesNo(ctx, fmt.Sprintf("Account %q does not exist. Create it?", cfg.TransitoryAccount))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		shouldCreate = confirmed
	}
	if !shouldCreate {
		return ledger.NewConfigurationError("account %q does not exist", cfg.TransitoryAccount)
	}

	if err := ledger.EnsureTransitoryAccount(accounts, cfg.TransitoryAccount, cfg.ReportingCurrency); err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Created transitory account %s (%s)",
		cfg.TransitoryAccount, cfg.ReportingCurrency))

	return nil
}
