package ledger

// AccountResolver resolves an account identifier to its denominated
// currency. Implemented by the remote client; the engine only reads.
type AccountResolver interface {
	// AccountCurrency returns the currency of the account and whether the
	// account exists at all.
	AccountCurrency(account string) (currency string, ok bool)
}

// AccountProvisioner extends AccountResolver with the ability to create an
// account on the remote side.
type AccountProvisioner interface {
	AccountResolver

	// CreateAccount provisions an account with the given identifier, name
	// and currency under the remote's default grouping, without a tax code.
	CreateAccount(account, name, currency string) error
}

// transitoryAccountName is the display name used when the transitory
// account is provisioned automatically.
const transitoryAccountName = "Transitory account"

// ResolveTransitoryAccount validates the designated clearing account and
// returns its identifier. It fails with ConfigurationError if the account is
// unset, does not exist remotely, or is not denominated in the reporting
// currency. The pipeline calls this once per invocation and threads the
// resolved account through; it is never re-validated mid-run.
func ResolveTransitoryAccount(accounts AccountResolver, account, reporting string) (string, error) {
	if account == "" {
		return "", NewConfigurationError("not set")
	}

	currency, ok := accounts.AccountCurrency(account)
	if !ok {
		return "", NewConfigurationError("account %q does not exist", account)
	}
	if currency != reporting {
		return "", NewConfigurationError(
			"account %q must be denominated in the %s reporting currency, not %s",
			account, reporting, currency)
	}

	return account, nil
}

// EnsureTransitoryAccount provisions the transitory account on the remote
// side when it does not exist yet, then validates it. The account is created
// in the reporting currency under the default grouping with no tax code.
//
// Provisioning is not safe to race across concurrent callers; callers that
// introduce concurrency must serialize it per account id.
func EnsureTransitoryAccount(accounts AccountProvisioner, account, reporting string) error {
	if account == "" {
		return NewConfigurationError("not set")
	}

	if _, ok := accounts.AccountCurrency(account); !ok {
		if err := accounts.CreateAccount(account, transitoryAccountName, reporting); err != nil {
			return NewConfigurationError("provisioning account %q failed: %v", account, err)
		}
	}

	_, err := ResolveTransitoryAccount(accounts, account, reporting)
	return err
}
