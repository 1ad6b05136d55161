package bidledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Bid is one accepted offer against a listing. Rows are append-only:
// once recorded a bid is never updated or removed by the engine.
type Bid struct {
	ID         int64           `json:"id"`
	ListingID  int64           `json:"listing_id"`
	BidderID   int64           `json:"bidder_id"`
	BidderName string          `json:"bidder_name"`
	Amount     decimal.Decimal `json:"amount"`
	PlacedAt   time.Time       `json:"placed_at"`
}

// Ledger is the durable record of accepted bids. AppendBid is called only
// by the commit coordinator, inside the per-listing critical section; the
// read methods are safe for any collaborator.
type Ledger interface {
	AppendBid(ctx context.Context, listingID, bidderID int64, amount decimal.Decimal, at time.Time) (int64, error)

	// CurrentHighBid returns the max accepted amount for the listing, or
	// startingPrice when no bids exist.
	CurrentHighBid(ctx context.Context, listingID int64, startingPrice decimal.Decimal) (decimal.Decimal, error)

	CountBids(ctx context.Context, listingID int64) (int, error)

	// ListBids returns the listing's bids with bidder names, highest first.
	ListBids(ctx context.Context, listingID int64) ([]Bid, error)
}
