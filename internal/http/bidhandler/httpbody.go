package bidhandler

import "github.com/shopspring/decimal"

type PlaceBidBody struct {
	Amount decimal.Decimal `json:"amount" example:"10500.00"`
} // @name PlaceBidRequest

// BidOutcome is the response for every bid attempt, accepted or not.
// Rejections carry the current high bid and, for increment violations,
// the next valid amounts so clients can re-offer without re-fetching.
type BidOutcome struct {
	Accepted         bool              `json:"accepted"`
	BidID            int64             `json:"bid_id,omitempty"`
	Amount           *decimal.Decimal  `json:"amount,omitempty"`
	CurrentHighBid   *decimal.Decimal  `json:"current_high_bid,omitempty"`
	TotalBids        *int              `json:"total_bids,omitempty"`
	Reason           string            `json:"reason,omitempty"`
	Error            string            `json:"error,omitempty"`
	NextValidAmounts []decimal.Decimal `json:"next_valid_amounts,omitempty"`
} // @name BidOutcome

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse

type BrowseListingsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	Search string `form:"search"`
	Limit  int    `form:"limit,default=20"  binding:"gte=0,lte=100"`
	Offset int    `form:"offset,default=0"  binding:"gte=0"`
} // @name BrowseListingsQuery
