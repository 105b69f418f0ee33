// Package ledger turns accounts and transactions into derived ledger state.
//
// Everything here is pure: functions receive the host's collections by value
// and return new collections or computed views. Persistence and transport
// belong to the callers.
package ledger

import (
	"errors"
	"slices"

	"pocketledger/internal/core"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Book is a snapshot of one owner's accounts and transactions.
type Book struct {
	Accounts     []core.Account
	Transactions []core.Transaction
}

// Clone returns a copy whose slices can be modified without touching b.
func (b Book) Clone() Book {
	return Book{
		Accounts:     slices.Clone(b.Accounts),
		Transactions: slices.Clone(b.Transactions),
	}
}

// ForOwner keeps only the accounts and transactions owned by ownerID.
func (b Book) ForOwner(ownerID string) Book {
	var out Book
	for _, a := range b.Accounts {
		if a.OwnerID == ownerID {
			out.Accounts = append(out.Accounts, a)
		}
	}
	for _, t := range b.Transactions {
		if t.OwnerID == ownerID {
			out.Transactions = append(out.Transactions, t)
		}
	}
	return out
}

// Account looks an account up by id.
func (b Book) Account(id string) (core.Account, bool) {
	if i := b.accountIndex(id); i >= 0 {
		return b.Accounts[i], true
	}
	return core.Account{}, false
}

// Transaction looks a transaction up by id.
func (b Book) Transaction(id string) (core.Transaction, bool) {
	if i := b.transactionIndex(id); i >= 0 {
		return b.Transactions[i], true
	}
	return core.Transaction{}, false
}

func (b Book) accountIndex(id string) int {
	return slices.IndexFunc(b.Accounts, func(a core.Account) bool { return a.ID == id })
}

func (b Book) transactionIndex(id string) int {
	return slices.IndexFunc(b.Transactions, func(t core.Transaction) bool { return t.ID == id })
}

// takenIDs collects every id already in use, accounts and transactions alike.
func (b Book) takenIDs() map[string]struct{} {
	taken := make(map[string]struct{}, len(b.Accounts)+len(b.Transactions))
	for _, a := range b.Accounts {
		taken[a.ID] = struct{}{}
	}
	for _, t := range b.Transactions {
		taken[t.ID] = struct{}{}
	}
	return taken
}

// accountsByID maps account ids to accounts for the aggregators.
func accountsByID(accounts []core.Account) map[string]core.Account {
	byID := make(map[string]core.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return byID
}
