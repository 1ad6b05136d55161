package bidledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type pgLedger struct {
	db *sql.DB
}

// NewPgLedger returns a Ledger backed by the bids table in Postgres.
func NewPgLedger(db *sql.DB) Ledger { return &pgLedger{db: db} }

func (l *pgLedger) AppendBid(ctx context.Context, listingID, bidderID int64, amount decimal.Decimal, at time.Time) (int64, error) {
	const q = `INSERT INTO bids (listing_id, bidder_id, amount, placed_at)
	                VALUES ($1, $2, $3, $4)
	             RETURNING id`
	var id int64
	err := l.db.QueryRowContext(ctx, q, listingID, bidderID, amount, at).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (l *pgLedger) CurrentHighBid(ctx context.Context, listingID int64, startingPrice decimal.Decimal) (decimal.Decimal, error) {
	const q = `SELECT MAX(amount) FROM bids WHERE listing_id = $1`
	var high decimal.NullDecimal
	if err := l.db.QueryRowContext(ctx, q, listingID).Scan(&high); err != nil {
		return decimal.Zero, err
	}
	if !high.Valid {
		return startingPrice, nil
	}
	return high.Decimal, nil
}

func (l *pgLedger) CountBids(ctx context.Context, listingID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM bids WHERE listing_id = $1`
	var n int
	if err := l.db.QueryRowContext(ctx, q, listingID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (l *pgLedger) ListBids(ctx context.Context, listingID int64) ([]Bid, error) {
	const q = `SELECT b.id, b.listing_id, b.bidder_id, u.username, b.amount, b.placed_at
	             FROM bids b JOIN users u ON b.bidder_id = u.id
	            WHERE b.listing_id = $1
	         ORDER BY b.amount DESC`
	rows, err := l.db.QueryContext(ctx, q, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []Bid
	for rows.Next() {
		var b Bid
		if err := rows.Scan(&b.ID, &b.ListingID, &b.BidderID, &b.BidderName, &b.Amount, &b.PlacedAt); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}
