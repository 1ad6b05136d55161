package bidledger

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPgLedgerAppendBid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 2, 26, 8, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO bids (listing_id, bidder_id, amount, placed_at)`)).
		WithArgs(int64(42), int64(7), dec("85000"), at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	ledger := NewPgLedger(db)
	id, err := ledger.AppendBid(context.Background(), 42, 7, dec("85000"), at)
	require.NoError(t, err)
	require.Equal(t, int64(11), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgLedgerAppendBidStorageError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO bids`)).
		WillReturnError(errors.New("connection reset"))

	ledger := NewPgLedger(db)
	_, err = ledger.AppendBid(context.Background(), 42, 7, dec("85000"), time.Now().UTC())
	require.Error(t, err)
}

func TestPgLedgerCurrentHighBid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT MAX(amount) FROM bids WHERE listing_id = $1`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow("61000"))

	ledger := NewPgLedger(db)
	high, err := ledger.CurrentHighBid(context.Background(), 42, dec("50000"))
	require.NoError(t, err)
	require.True(t, high.Equal(dec("61000")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgLedgerCurrentHighBidFallsBackToStartingPrice(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// MAX over an empty set is NULL.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT MAX(amount) FROM bids`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	ledger := NewPgLedger(db)
	high, err := ledger.CurrentHighBid(context.Background(), 42, dec("50000"))
	require.NoError(t, err)
	require.True(t, high.Equal(dec("50000")))
}

func TestPgLedgerCountBids(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bids WHERE listing_id = $1`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	ledger := NewPgLedger(db)
	n, err := ledger.CountBids(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, 7, n)
}

func TestPgLedgerListBids(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "listing_id", "bidder_id", "username", "amount", "placed_at"}).
		AddRow(int64(3), int64(42), int64(9), "anita", "61000", now).
		AddRow(int64(2), int64(42), int64(7), "rajesh", "60000", now.Add(-time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY b.amount DESC`)).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	ledger := NewPgLedger(db)
	bids, err := ledger.ListBids(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, "anita", bids[0].BidderName)
	require.True(t, bids[0].Amount.Equal(dec("61000")))
	require.True(t, bids[0].Amount.GreaterThan(bids[1].Amount))
}
