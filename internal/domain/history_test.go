package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryDecoding(t *testing.T) {
	for _, raw := range []string{"", "[]", "null"} {
		u := User{TransactionsHistory: raw}
		entries, err := u.History()
		require.NoError(t, err, raw)
		assert.Empty(t, entries, raw)
		assert.NotNil(t, entries, raw)
	}

	u := User{TransactionsHistory: "{not json"}
	_, err := u.History()
	assert.Error(t, err)
}

func TestCreditAndDebit(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u := User{TransactionsHistory: "[]"}

	require.NoError(t, u.Credit(EntryDeposit, 50, "", at))
	require.NoError(t, u.Debit(EntryTransferOut, 20, "bruno", at.Add(time.Minute)))
	assert.Equal(t, 30.0, u.Balance)

	assert.ErrorIs(t, u.Debit(EntryTransferOut, 31, "bruno", at), ErrInsufficientFunds)
	assert.ErrorIs(t, u.Credit(EntryDeposit, 0, "", at), ErrInvalidAmount)
	assert.ErrorIs(t, u.Debit(EntryTransferOut, -5, "bruno", at), ErrInvalidAmount)
	assert.Equal(t, 30.0, u.Balance)

	entries, err := u.History()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, HistoryEntry{Type: EntryDeposit, Amount: 50, BalanceAfter: 50, CreatedAt: at}, entries[0])
	assert.Equal(t, HistoryEntry{Type: EntryTransferOut, Amount: 20, Counterparty: "bruno", BalanceAfter: 30, CreatedAt: at.Add(time.Minute)}, entries[1])
}

func TestPage(t *testing.T) {
	var entries []HistoryEntry
	for i := 1; i <= 5; i++ {
		entries = append(entries, HistoryEntry{Amount: float64(i)})
	}
	amounts := func(es []HistoryEntry) []float64 {
		out := []float64{}
		for _, e := range es {
			out = append(out, e.Amount)
		}
		return out
	}

	assert.Equal(t, []float64{5, 4}, amounts(Page(entries, 1, 2)))
	assert.Equal(t, []float64{3, 2}, amounts(Page(entries, 2, 2)))
	assert.Equal(t, []float64{1}, amounts(Page(entries, 3, 2)))
	assert.Empty(t, Page(entries, 4, 2))
	assert.Equal(t, []float64{5, 4, 3, 2, 1}, amounts(Page(entries, 1, 20)))
}

func TestTimestampScan(t *testing.T) {
	want := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	for _, src := range []any{want, "2026-10-18 09:30:00", []byte("2026-10-18T09:30:00Z"), want.Unix()} {
		var ts Timestamp
		require.NoError(t, ts.Scan(src), "%T", src)
		assert.True(t, want.Equal(ts.Time()), "%T", src)
	}

	var ts Timestamp
	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.Time().IsZero())
	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(3.5))

	v, err := Timestamp(want).Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18 09:30:00", v)

	b, err := Timestamp(want).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-10-18T09:30:00Z"`, string(b))
}

func TestRoles(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("admin"))
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
}
