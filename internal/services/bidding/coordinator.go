package bidding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"autorevive/internal/bidledger"
	"autorevive/internal/fanout"
	"autorevive/internal/listing"
)

// RoleBidder is the only role allowed to place bids. Admin and office
// accounts manage listings; they never bid.
const RoleBidder = "user"

// Bidder is the authenticated identity behind a submission. Issued by the
// auth collaborator; the engine only enforces the role rule.
type Bidder struct {
	ID       int64
	Username string
	Role     string
}

// BidReceipt is returned for an accepted bid.
type BidReceipt struct {
	BidID      int64
	Amount     decimal.Decimal
	NewHighBid decimal.Decimal
	TotalBids  int
}

// ListingDetail is a listing with its live bid figures and history.
type ListingDetail struct {
	listing.Listing
	CurrentBid decimal.Decimal `json:"current_bid"`
	TotalBids  int             `json:"total_bids"`
	Bids       []bidledger.Bid `json:"bids"`
}

// Publisher receives the accepted-bid event after the commit. Publishing
// happens outside the per-listing section and must not block the caller.
type Publisher interface {
	PublishBid(ctx context.Context, ev fanout.Event)
}

type Service interface {
	SubmitBid(ctx context.Context, listingID int64, bidder Bidder, amount decimal.Decimal) (*BidReceipt, error)
	ListingDetail(ctx context.Context, listingID int64) (*ListingDetail, error)
	BrowseListings(ctx context.Context, status listing.Status, search string, limit, offset int) ([]listing.Summary, error)
	ListBids(ctx context.Context, listingID int64) ([]bidledger.Bid, error)
}

// Coordinator turns validated bid attempts into durable ledger facts. A
// per-listing section serializes read-validate-append so no two concurrent
// submissions can both win on a stale view of the high bid; submissions
// for different listings proceed fully in parallel.
type Coordinator struct {
	store  listing.Store
	ledger bidledger.Ledger
	pub    Publisher

	mu       sync.Mutex
	sections map[int64]chan struct{}
}

var _ Service = (*Coordinator)(nil)

func NewCoordinator(store listing.Store, ledger bidledger.Ledger, pub Publisher) *Coordinator {
	return &Coordinator{
		store:    store,
		ledger:   ledger,
		pub:      pub,
		sections: make(map[int64]chan struct{}),
	}
}

// sectionFor returns the listing's entry channel, created lazily and never
// removed. Capacity-1 channel rather than a mutex so waiters queue FIFO
// and can still be cancelled before entry.
func (c *Coordinator) sectionFor(listingID int64) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	sec, ok := c.sections[listingID]
	if !ok {
		sec = make(chan struct{}, 1)
		c.sections[listingID] = sec
	}
	return sec
}

func (c *Coordinator) SubmitBid(ctx context.Context, listingID int64, bidder Bidder, amount decimal.Decimal) (*BidReceipt, error) {
	if bidder.Role != RoleBidder {
		return nil, ErrForbidden
	}

	sec := c.sectionFor(listingID)
	select {
	case sec <- struct{}{}:
	case <-ctx.Done():
		// Abandoned before entering the section: no side effects.
		return nil, ctx.Err()
	}

	// Once inside, the commit runs to completion. A cancellation mid-append
	// would leave a half-applied bid, so the section body drops the
	// caller's cancel signal.
	receipt, ev, err := c.commit(context.WithoutCancel(ctx), listingID, bidder, amount)
	<-sec

	if err != nil {
		return nil, err
	}
	c.pub.PublishBid(ctx, *ev)
	return receipt, nil
}

// commit is steps 2-4 of the submission: consistent read, validate,
// append. Callers hold the listing's section.
func (c *Coordinator) commit(ctx context.Context, listingID int64, bidder Bidder, amount decimal.Decimal) (*BidReceipt, *fanout.Event, error) {
	l, err := c.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, nil, err
	}

	highBid, err := c.ledger.CurrentHighBid(ctx, listingID, l.StartingPrice)
	if err != nil {
		zap.L().Error("bidding.high_bid_read", zap.Int64("listing_id", listingID), zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := Validate(l, highBid, amount); err != nil {
		return nil, nil, err
	}

	placedAt := time.Now().UTC()
	bidID, err := c.ledger.AppendBid(ctx, listingID, bidder.ID, amount, placedAt)
	if err != nil {
		zap.L().Error("bidding.append", zap.Int64("listing_id", listingID), zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	totalBids, err := c.ledger.CountBids(ctx, listingID)
	if err != nil {
		zap.L().Error("bidding.count", zap.Int64("listing_id", listingID), zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	receipt := &BidReceipt{
		BidID:      bidID,
		Amount:     amount,
		NewHighBid: amount,
		TotalBids:  totalBids,
	}
	ev := &fanout.Event{
		ListingID:  listingID,
		Amount:     amount,
		CurrentBid: amount,
		TotalBids:  totalBids,
		BidderName: MaskBidderName(bidder.Username),
		BidTime:    placedAt,
	}
	return receipt, ev, nil
}

func (c *Coordinator) ListingDetail(ctx context.Context, listingID int64) (*ListingDetail, error) {
	l, err := c.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	bids, err := c.ledger.ListBids(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if bids == nil {
		bids = []bidledger.Bid{}
	}

	current := l.StartingPrice
	if len(bids) > 0 {
		current = bids[0].Amount
	}
	return &ListingDetail{
		Listing:    *l,
		CurrentBid: current,
		TotalBids:  len(bids),
		Bids:       bids,
	}, nil
}

func (c *Coordinator) BrowseListings(ctx context.Context, status listing.Status, search string, limit, offset int) ([]listing.Summary, error) {
	return c.store.BrowseListings(ctx, status, search, limit, offset)
}

func (c *Coordinator) ListBids(ctx context.Context, listingID int64) ([]bidledger.Bid, error) {
	if _, err := c.store.GetListing(ctx, listingID); err != nil {
		return nil, err
	}
	bids, err := c.ledger.ListBids(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if bids == nil {
		bids = []bidledger.Bid{}
	}
	return bids, nil
}
