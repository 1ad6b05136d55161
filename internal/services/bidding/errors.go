package bidding

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Expected, recoverable rejection reasons. These are normal outcomes of a
// bid attempt and are never logged as errors.
var (
	ErrInvalidAmount      = errors.New("bid amount must be a positive number with at most two decimals")
	ErrBidTooLow          = errors.New("bid must be higher than the current high bid")
	ErrInvalidIncrement   = errors.New("bid must be an exact multiple of the listing increment above the current high bid")
	ErrListingNotBiddable = errors.New("listing is not open for bidding")
)

var (
	// ErrForbidden rejects submissions from non-bidder roles.
	ErrForbidden = errors.New("only bidder accounts may place bids")

	// ErrStorage wraps ledger failures. The submission fails atomically,
	// so a caller may safely retry.
	ErrStorage = errors.New("bid could not be recorded")
)

// Rejection is a failed validation outcome. It carries enough context for
// the client to re-offer a correct amount without re-fetching the listing.
type Rejection struct {
	Reason         error
	CurrentHighBid decimal.Decimal
	// NextValidAmounts holds the next two acceptable amounts when the
	// rejection is an increment violation.
	NextValidAmounts []decimal.Decimal
}

func (r *Rejection) Error() string {
	if r.CurrentHighBid.IsPositive() {
		return fmt.Sprintf("%s (current high bid %s)", r.Reason, r.CurrentHighBid.StringFixed(2))
	}
	return r.Reason.Error()
}

func (r *Rejection) Unwrap() error { return r.Reason }

// Code is the machine-readable reason sent to clients.
func (r *Rejection) Code() string {
	switch r.Reason {
	case ErrInvalidAmount:
		return "invalid_amount"
	case ErrBidTooLow:
		return "bid_too_low"
	case ErrInvalidIncrement:
		return "invalid_increment"
	case ErrListingNotBiddable:
		return "listing_not_biddable"
	default:
		return "rejected"
	}
}
