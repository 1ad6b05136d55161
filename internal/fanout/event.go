package fanout

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the payload pushed to every viewer of a listing when a bid is
// accepted. BidderName is already masked for display; the full identity
// stays in the ledger.
type Event struct {
	ListingID  int64           `json:"listing_id"`
	Amount     decimal.Decimal `json:"amount"`
	CurrentBid decimal.Decimal `json:"current_bid"`
	TotalBids  int             `json:"total_bids"`
	BidderName string          `json:"bidder_name"`
	BidTime    time.Time       `json:"bid_time"`
}
