package remote

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/openclearing/ledgerbridge/ledger"
)

// defaultGroup is the grouping path accounts land in when no explicit group
// is given, mirroring the remote's default category.
const defaultGroup = "/Assets"

// JournalEntry is a transaction as posted on the remote side. The remote
// stores one currency and one eight digit exchange rate per entry.
type JournalEntry struct {
	ID        string
	Reference string
	Date      time.Time
	Currency  string
	Rate      decimal.Decimal
	Items     []JournalItem
}

// JournalItem is a single debit or credit within a journal entry.
type JournalItem struct {
	Account     string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	TaxCode     string
	Description string
}

// Memory is an in-memory stand-in for the remote bookkeeping service. It
// implements AccountClient as well as the engine's AccountResolver and
// AccountProvisioner contracts, and accepts journal postings under the same
// restrictions the real service enforces. Safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]Account
	journal  []JournalEntry
}

// NewMemory creates an empty in-memory remote.
func NewMemory() *Memory {
	return &Memory{accounts: make(map[string]Account)}
}

// List returns all accounts in standardized order.
func (m *Memory) List() ([]Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accounts := make([]Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		accounts = append(accounts, account)
	}
	return m.Standardize(accounts), nil
}

// Add creates an account, assigning the remote id.
func (m *Memory) Add(account Account) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if account.Number == "" {
		return Account{}, fmt.Errorf("account number is required")
	}
	if _, ok := m.accounts[account.Number]; ok {
		return Account{}, fmt.Errorf("account %q already exists", account.Number)
	}

	account.ID = uuid.NewString()
	if account.Group == "" {
		account.Group = defaultGroup
	}
	m.accounts[account.Number] = account

	return account, nil
}

// Modify updates an existing account, matched by number. The remote id is
// preserved.
func (m *Memory) Modify(account Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.accounts[account.Number]
	if !ok {
		return fmt.Errorf("account %q does not exist", account.Number)
	}
	account.ID = existing.ID
	m.accounts[account.Number] = account

	return nil
}

// Delete removes the account with the given number.
func (m *Memory) Delete(number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[number]; !ok {
		return fmt.Errorf("account %q does not exist", number)
	}
	delete(m.accounts, number)

	return nil
}

// Standardize orders accounts by number.
func (m *Memory) Standardize(accounts []Account) []Account {
	sorted := slices.Clone(accounts)
	slices.SortFunc(sorted, func(a, b Account) int {
		if a.Number < b.Number {
			return -1
		}
		if a.Number > b.Number {
			return 1
		}
		return 0
	})
	return sorted
}

// AccountCurrency resolves an account number to its currency.
func (m *Memory) AccountCurrency(number string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[number]
	return account.Currency, ok
}

// CreateAccount provisions an account under the default grouping with no
// tax code, satisfying the engine's AccountProvisioner contract.
func (m *Memory) CreateAccount(number, name, currency string) error {
	_, err := m.Add(Account{Number: number, Name: name, Currency: currency})
	return err
}

// PostJournal records one sanitized transaction as a journal entry,
// enforcing the remote's restrictions: at most one foreign currency besides
// the reporting currency, a coherent exchange rate, and for collective
// entries a zero net in the reporting currency.
func (m *Memory) PostJournal(txn *ledger.Transaction, reporting string, precision *ledger.PrecisionConfig) (JournalEntry, error) {
	if len(txn.Lines) == 0 {
		return JournalEntry{}, ledger.NewEmptyTransactionError(txn.ID)
	}

	resolution, err := ledger.ResolveCollectiveRate(txn, reporting, precision, ledger.Strict)
	if err != nil {
		return JournalEntry{}, err
	}

	if len(txn.Lines) > 1 {
		net := decimal.Zero
		for _, line := range txn.Lines {
			if line.ReportingAmount == nil {
				return JournalEntry{}, ledger.NewMissingAmountError(txn.ID, line.Account)
			}
			net = net.Add(*line.ReportingAmount)
		}
		if !precision.IsZero(net, reporting) {
			return JournalEntry{}, fmt.Errorf(
				"transaction %q: collective entry nets to %s %s, expected zero",
				txn.ID, net, reporting)
		}
	}

	entry := JournalEntry{
		ID:        uuid.NewString(),
		Reference: txn.ID,
		Date:      txn.Lines[0].Date,
		Currency:  resolution.Currency,
		Rate:      resolution.Rate.RoundBank(8),
	}
	for _, line := range txn.Lines {
		entry.Items = append(entry.Items, JournalItem{
			Account:     line.Account,
			Debit:       decimal.Max(line.Amount.Neg(), decimal.Zero),
			Credit:      decimal.Max(line.Amount, decimal.Zero),
			TaxCode:     line.TaxCode,
			Description: line.Description,
		})
	}

	m.mu.Lock()
	m.journal = append(m.journal, entry)
	m.mu.Unlock()

	return entry, nil
}

// Journal returns all posted entries in posting order.
func (m *Memory) Journal() []JournalEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.journal)
}
