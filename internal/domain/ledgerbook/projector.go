// Package ledgerbook projects ordered in/out entries into chronological
// running balances. Projection is pure and deterministic: no hidden state,
// safe for concurrent readers, restartable from the raw entries at any time.
package ledgerbook

import (
	"bytes"
	"sort"

	"github.com/shopspring/decimal"
)

// Project returns the entries in total chronological order with the running
// balance filled in. The sort key is (date, createdAt) with the insertion id
// as a final tie-break so the order is total. The first balance is seeded at
// zero; each subsequent one adds amountIn and subtracts amountOut.
func Project(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})

	balance := decimal.Zero
	for i := range out {
		balance = balance.Add(out[i].AmountIn).Sub(out[i].AmountOut)
		out[i].RunningBalance = balance
	}
	return out
}

// ProjectNewestFirst projects in chronological order first and then reverses
// for display. Computing the running sum on a reversed sequence would silently
// invert the invariant, so the reversal always happens after projection.
func ProjectNewestFirst(entries []Entry) []Entry {
	out := Project(entries)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ClosingBalance returns the final running balance, or zero for an empty
// ledger.
func ClosingBalance(entries []Entry) decimal.Decimal {
	projected := Project(entries)
	if len(projected) == 0 {
		return decimal.Zero
	}
	return projected[len(projected)-1].RunningBalance
}
