package bidding

import (
	"github.com/shopspring/decimal"

	"autorevive/internal/listing"
)

var two = decimal.NewFromInt(2)

// Validate decides whether amount is an acceptable next bid for the
// listing given the current high bid. It returns nil on accept and a
// *Rejection with the reason otherwise. Pure function, no side effects;
// all comparisons are decimal-exact.
func Validate(l *listing.Listing, currentHighBid, amount decimal.Decimal) error {
	if l.Status != listing.StatusApproved {
		return &Rejection{Reason: ErrListingNotBiddable}
	}

	// Positive, at most two fractional digits.
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return &Rejection{Reason: ErrInvalidAmount}
	}

	if amount.LessThanOrEqual(currentHighBid) {
		return &Rejection{Reason: ErrBidTooLow, CurrentHighBid: currentHighBid}
	}

	// A positive increment policy requires the bid to land on an exact
	// multiple of the increment above the current high bid.
	if inc := l.BidIncrement; inc.IsPositive() {
		if !amount.Sub(currentHighBid).Mod(inc).IsZero() {
			return &Rejection{
				Reason:         ErrInvalidIncrement,
				CurrentHighBid: currentHighBid,
				NextValidAmounts: []decimal.Decimal{
					currentHighBid.Add(inc),
					currentHighBid.Add(inc.Mul(two)),
				},
			}
		}
	}

	return nil
}
