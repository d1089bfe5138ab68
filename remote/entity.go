// Package remote defines the contracts the engine expects from the remote
// bookkeeping service and provides an in-memory implementation of them for
// tests and offline runs. The real HTTP client, with its authentication and
// retry behavior, lives outside this repository and plugs into the same
// interfaces.
package remote

// Account is the remote representation of a bookkeeping account.
type Account struct {
	// ID is the remote's own identifier, assigned on creation.
	ID string

	// Number is the account number the ledger refers to.
	Number string

	// Name is the display name.
	Name string

	// Currency the account is denominated in.
	Currency string

	// TaxCode optionally applied to postings on this account.
	TaxCode string

	// Group is the remote's account grouping path.
	Group string
}

// AccountClient is the full contract for the account entity on the remote
// side: the four CRUD operations plus schema standardization. One such
// interface exists per backing entity type; concrete implementations are
// injected rather than wired as loose callables.
type AccountClient interface {
	// List returns all accounts known to the remote.
	List() ([]Account, error)

	// Add creates an account and returns it with the remote assigned id.
	Add(account Account) (Account, error)

	// Modify updates an existing account, matched by number.
	Modify(account Account) error

	// Delete removes the account with the given number.
	Delete(number string) error

	// Standardize returns the accounts in canonical form: deterministic
	// ordering and normalized fields, so local and remote state compare
	// structurally.
	Standardize(accounts []Account) []Account
}
