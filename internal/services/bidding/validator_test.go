package bidding

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"autorevive/internal/listing"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func approvedListing(startingPrice, increment string) *listing.Listing {
	return &listing.Listing{
		ID:            1,
		Name:          "Maruti Swift 2019",
		StartingPrice: dec(startingPrice),
		BidIncrement:  dec(increment),
		Status:        listing.StatusApproved,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		listing     *listing.Listing
		currentHigh string
		amount      string
		wantErr     error
	}{
		{
			name:        "first_bid_above_starting_price",
			listing:     approvedListing("50000", "0"),
			currentHigh: "50000",
			amount:      "50001",
			wantErr:     nil,
		},
		{
			name:        "higher_bid_accepted",
			listing:     approvedListing("50000", "0"),
			currentHigh: "61000",
			amount:      "61000.01",
			wantErr:     nil,
		},
		{
			name:        "equal_amount_rejected",
			listing:     approvedListing("50000", "0"),
			currentHigh: "61000",
			amount:      "61000",
			wantErr:     ErrBidTooLow,
		},
		{
			name:        "lower_amount_rejected",
			listing:     approvedListing("50000", "0"),
			currentHigh: "61000",
			amount:      "60000",
			wantErr:     ErrBidTooLow,
		},
		{
			name:        "zero_amount",
			listing:     approvedListing("50000", "0"),
			currentHigh: "50000",
			amount:      "0",
			wantErr:     ErrInvalidAmount,
		},
		{
			name:        "negative_amount",
			listing:     approvedListing("50000", "0"),
			currentHigh: "50000",
			amount:      "-100",
			wantErr:     ErrInvalidAmount,
		},
		{
			name:        "three_decimal_places",
			listing:     approvedListing("50000", "0"),
			currentHigh: "50000",
			amount:      "50000.001",
			wantErr:     ErrInvalidAmount,
		},
		{
			name:        "two_decimal_places_ok",
			listing:     approvedListing("50000", "0"),
			currentHigh: "50000",
			amount:      "50000.25",
			wantErr:     nil,
		},
		{
			name:        "increment_off_step",
			listing:     approvedListing("5000", "500"),
			currentHigh: "10000",
			amount:      "10300",
			wantErr:     ErrInvalidIncrement,
		},
		{
			name:        "increment_single_step",
			listing:     approvedListing("5000", "500"),
			currentHigh: "10000",
			amount:      "10500",
			wantErr:     nil,
		},
		{
			name:        "increment_double_step",
			listing:     approvedListing("5000", "500"),
			currentHigh: "10000",
			amount:      "11000",
			wantErr:     nil,
		},
		{
			name:        "fractional_increment_exact_multiple",
			listing:     approvedListing("100", "0.05"),
			currentHigh: "100.10",
			amount:      "100.25",
			wantErr:     nil,
		},
		{
			name:        "fractional_increment_off_step",
			listing:     approvedListing("100", "0.05"),
			currentHigh: "100.10",
			amount:      "100.22",
			wantErr:     ErrInvalidIncrement,
		},
		{
			name: "pending_listing_rejects_any_amount",
			listing: &listing.Listing{
				ID: 2, StartingPrice: dec("50000"), Status: listing.StatusPending,
			},
			currentHigh: "50000",
			amount:      "99999",
			wantErr:     ErrListingNotBiddable,
		},
		{
			name: "rejected_listing_rejects_any_amount",
			listing: &listing.Listing{
				ID: 3, StartingPrice: dec("50000"), Status: listing.StatusRejected,
			},
			currentHigh: "50000",
			amount:      "60000",
			wantErr:     ErrListingNotBiddable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.listing, dec(tt.currentHigh), dec(tt.amount))
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)

			var rej *Rejection
			require.ErrorAs(t, err, &rej)
			require.NotEmpty(t, rej.Code())
		})
	}
}

func TestValidateBidTooLowCarriesCurrentHigh(t *testing.T) {
	err := Validate(approvedListing("50000", "0"), dec("61000"), dec("60000"))

	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	require.True(t, rej.CurrentHighBid.Equal(dec("61000")))
}

func TestValidateIncrementCarriesNextValidAmounts(t *testing.T) {
	err := Validate(approvedListing("5000", "500"), dec("10000"), dec("10300"))

	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	require.Len(t, rej.NextValidAmounts, 2)
	require.True(t, rej.NextValidAmounts[0].Equal(dec("10500")))
	require.True(t, rej.NextValidAmounts[1].Equal(dec("11000")))
}

func TestValidateStatusCheckedBeforeAmount(t *testing.T) {
	// A pending listing rejects with ListingNotBiddable even when the
	// amount itself is garbage.
	l := &listing.Listing{ID: 4, StartingPrice: dec("50000"), Status: listing.StatusPending}
	err := Validate(l, dec("50000"), dec("-1"))
	require.True(t, errors.Is(err, ErrListingNotBiddable))
}
