package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Config    string `help:"Path to the configuration file." short:"c" type:"existingfile" optional:""`
	Telemetry bool   `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Check    CheckCmd    `cmd:"" help:"Check that a journal can be represented on the remote ledger."`
	Sanitize SanitizeCmd `cmd:"" help:"Split multi-currency transactions and settle exchange rate residuals."`
	Accounts AccountsCmd `cmd:"" help:"Manage the remote account chart."`
}
