package fanout

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func event(listingID int64, amount string) Event {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	return Event{
		ListingID:  listingID,
		Amount:     d,
		CurrentBid: d,
		TotalBids:  1,
		BidderName: "Ra***sh",
		BidTime:    time.Now().UTC(),
	}
}

func TestHubDeliversToAllSubscribers(t *testing.T) {
	hub := NewHub(4)
	a := hub.Subscribe(42)
	b := hub.Subscribe(42)
	other := hub.Subscribe(99)

	hub.Publish(42, event(42, "85000"))

	for _, sub := range []*Subscription{a, b} {
		select {
		case ev := <-sub.Events():
			require.Equal(t, int64(42), ev.ListingID)
			require.Equal(t, "Ra***sh", ev.BidderName)
		case <-time.After(time.Second):
			t.Fatal("subscriber missed the event")
		}
	}

	select {
	case <-other.Events():
		t.Fatal("subscriber of another listing received the event")
	default:
	}
}

func TestHubUnsubscribedViewerReceivesNothing(t *testing.T) {
	hub := NewHub(4)
	sub := hub.Subscribe(42)
	hub.Unsubscribe(sub)

	hub.Publish(42, event(42, "85000"))

	_, open := <-sub.Events()
	require.False(t, open, "channel closes on unsubscribe")
}

func TestHubUnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub(4)
	keep := hub.Subscribe(42)
	gone := hub.Subscribe(42)

	hub.Unsubscribe(gone)
	require.NotPanics(t, func() { hub.Unsubscribe(gone) })
	hub.Unsubscribe(nil)

	// Other subscribers are unaffected.
	hub.Publish(42, event(42, "85000"))
	select {
	case ev := <-keep.Events():
		require.Equal(t, int64(42), ev.ListingID)
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber missed the event")
	}
}

func TestHubFIFOPerSubscriber(t *testing.T) {
	hub := NewHub(16)
	sub := hub.Subscribe(42)

	amounts := []string{"100", "200", "300", "400", "500"}
	for _, a := range amounts {
		hub.Publish(42, event(42, a))
	}

	for _, want := range amounts {
		ev := <-sub.Events()
		require.Equal(t, want, ev.Amount.String())
	}
}

func TestHubDropsStalledSubscriber(t *testing.T) {
	hub := NewHub(1)
	stalled := hub.Subscribe(42)
	healthy := hub.Subscribe(42)

	hub.Publish(42, event(42, "100")) // fills the stalled buffer
	require.Equal(t, "100", (<-healthy.Events()).Amount.String())

	hub.Publish(42, event(42, "200")) // overflows it: subscriber dropped
	require.Equal(t, "200", (<-healthy.Events()).Amount.String())

	// Stalled subscriber: buffered event then closed channel.
	require.Equal(t, "100", (<-stalled.Events()).Amount.String())
	_, open := <-stalled.Events()
	require.False(t, open)
}

func TestHubConcurrentSubscribePublishUnsubscribe(t *testing.T) {
	hub := NewHub(8)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			listingID := int64(i % 3)
			sub := hub.Subscribe(listingID)
			hub.Publish(listingID, event(listingID, "100"))
			hub.Unsubscribe(sub)
			hub.Unsubscribe(sub)
		}(i)
	}
	wg.Wait()
}
