package ws

const (
	opSubscribe   = "subscribe"
	opUnsubscribe = "unsubscribe"
)

// ClientOp is the only frame clients send: watch or stop watching a
// listing. Bids themselves go through the REST endpoint.
type ClientOp struct {
	Op        string `json:"op"`
	ListingID int64  `json:"listing_id"`
}

// ServerFrame wraps every frame the server pushes.
type ServerFrame struct {
	Event string `json:"event"`
	Body  any    `json:"body,omitempty"`
}

type ErrorBody struct {
	Error string `json:"error"`
}

type listingRef struct {
	ListingID int64 `json:"listing_id"`
}
