package domain

import (
	"encoding/json" // JSON encoding/decoding of the history column
	"errors"        // Sentinel errors
	"time"          // Entry timestamps
)

// History entry types
const (
	EntryDeposit     = "deposit"
	EntryTransferIn  = "transfer_in"
	EntryTransferOut = "transfer_out"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// HistoryEntry is one element of users.transactions_history
type HistoryEntry struct {
	Type         string    `json:"type"`                   // deposit, transfer_in, transfer_out
	Amount       float64   `json:"amount"`                 // Always positive
	Counterparty string    `json:"counterparty,omitempty"` // Other username for transfers
	BalanceAfter float64   `json:"balance_after"`          // Balance once the entry applied
	CreatedAt    time.Time `json:"created_at"`             // When the entry was recorded
}

// History decodes the serialized transaction history. Empty or NULL
// columns decode to an empty list.
func (u *User) History() ([]HistoryEntry, error) {
	if u.TransactionsHistory == "" {
		return []HistoryEntry{}, nil
	}
	var entries []HistoryEntry
	if err := json.Unmarshal([]byte(u.TransactionsHistory), &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return entries, nil
}

func (u *User) appendHistory(e HistoryEntry) error {
	entries, err := u.History()
	if err != nil {
		return err
	}
	b, err := json.Marshal(append(entries, e))
	if err != nil {
		return err
	}
	u.TransactionsHistory = string(b)
	return nil
}

// Credit adds amount to the balance and records the entry
func (u *User) Credit(entryType string, amount float64, counterparty string, at time.Time) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	u.Balance += amount
	return u.appendHistory(HistoryEntry{Type: entryType, Amount: amount, Counterparty: counterparty, BalanceAfter: u.Balance, CreatedAt: at})
}

// Debit removes amount from the balance and records the entry
func (u *User) Debit(entryType string, amount float64, counterparty string, at time.Time) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if u.Balance < amount {
		return ErrInsufficientFunds
	}
	u.Balance -= amount
	return u.appendHistory(HistoryEntry{Type: entryType, Amount: amount, Counterparty: counterparty, BalanceAfter: u.Balance, CreatedAt: at})
}

// Page returns entries newest first, sliced for the given 1-based page
func Page(entries []HistoryEntry, page, pageSize int) []HistoryEntry {
	if page < 1 {
		page = 1
	}
	n := len(entries)
	start := (page - 1) * pageSize
	if start >= n {
		return []HistoryEntry{}
	}
	end := start + pageSize
	if end > n {
		end = n
	}
	out := make([]HistoryEntry, 0, end-start)
	for i := n - 1 - start; i > n-1-end; i-- {
		out = append(out, entries[i])
	}
	return out
}
