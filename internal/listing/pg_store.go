package listing

import (
	"context"
	"database/sql"
	"errors"
)

type pgStore struct {
	db *sql.DB
}

// NewPgStore returns a Store backed by the listings table in Postgres.
func NewPgStore(db *sql.DB) Store { return &pgStore{db: db} }

func (s *pgStore) GetListing(ctx context.Context, id int64) (*Listing, error) {
	const q = `SELECT l.id, l.office_id, u.username, l.name, l.description,
	                  l.starting_price, l.bid_increment, l.status, l.created_at
	             FROM listings l JOIN users u ON l.office_id = u.id
	            WHERE l.id = $1`
	l := &Listing{}
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&l.ID, &l.OfficeID, &l.OfficeName, &l.Name, &l.Description,
		&l.StartingPrice, &l.BidIncrement, &l.Status, &l.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *pgStore) BrowseListings(ctx context.Context, status Status, search string, limit, offset int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	if status == "" {
		status = StatusApproved
	}
	const q = `SELECT l.id, l.office_id, u.username, l.name, l.description,
	                  l.starting_price, l.bid_increment, l.status, l.created_at,
	                  COALESCE(MAX(b.amount), 0), COUNT(b.id)
	             FROM listings l
	             JOIN users u ON l.office_id = u.id
	        LEFT JOIN bids b ON b.listing_id = l.id
	            WHERE l.status = $1
	              AND ($2 = '' OR l.name ILIKE '%' || $2 || '%' OR l.description ILIKE '%' || $2 || '%')
	         GROUP BY l.id, u.username
	         ORDER BY l.created_at DESC
	            LIMIT $3 OFFSET $4`
	rows, err := s.db.QueryContext(ctx, q, status, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Summary, 0, limit)
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(
			&sm.ID, &sm.OfficeID, &sm.OfficeName, &sm.Name, &sm.Description,
			&sm.StartingPrice, &sm.BidIncrement, &sm.Status, &sm.CreatedAt,
			&sm.CurrentBid, &sm.TotalBids,
		); err != nil {
			return nil, err
		}
		// A listing with no bids browses at its starting price.
		if sm.TotalBids == 0 {
			sm.CurrentBid = sm.StartingPrice
		} else {
			sm.CurrentBid = sm.CurrentBid.Round(2)
		}
		list = append(list, sm)
	}
	return list, rows.Err()
}
