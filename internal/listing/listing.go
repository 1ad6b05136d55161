package listing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a listing. Only approved listings
// accept bids; transitions are owned by the admin CRUD layer, never by
// the bidding engine.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var ErrNotFound = errors.New("listing not found")

// Listing is a vehicle put up for auction by a finance office.
type Listing struct {
	ID            int64           `json:"id"`
	OfficeID      int64           `json:"office_id"`
	OfficeName    string          `json:"office_name,omitempty"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	// BidIncrement is the listing's increment policy. Zero means any
	// higher amount is a valid bid; a positive value k means each bid
	// must land on an exact multiple of k above the current high bid.
	BidIncrement decimal.Decimal `json:"bid_increment"`
	Status       Status          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Summary is a listing row for the public browse view, with the
// aggregate bid figures folded in.
type Summary struct {
	Listing
	CurrentBid decimal.Decimal `json:"current_bid"`
	TotalBids  int             `json:"total_bids"`
}

// Store is the read-only listing access the bidding engine consumes.
type Store interface {
	GetListing(ctx context.Context, id int64) (*Listing, error)
	BrowseListings(ctx context.Context, status Status, search string, limit, offset int) ([]Summary, error)
}
