package domain

import "time"

// LedgerOrder an order as the venue's own ledger reports it. The engine reads
// these to detect a buy already placed within the current window; the pair
// identifier comes back in whichever form the order was placed under.
type LedgerOrder struct {
	OrderID   string
	PairID    string
	Side      string
	Status    string
	CreatedAt time.Time
}
