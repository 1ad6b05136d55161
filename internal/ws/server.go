package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"autorevive/internal/fanout"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second // must be < pongWait
	readLimit  = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // dev-only
}

// WsServer exposes the live-update channel: clients subscribe to listings
// and receive a bid_update frame for every accepted bid.
type WsServer struct {
	hub *fanout.Hub
}

func NewWsServer(hub *fanout.Hub) *WsServer {
	return &WsServer{hub: hub}
}

// Handle is the gin entry point for GET /ws.
func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}

	sess := &session{
		hub:  s.hub,
		conn: &clientConn{rawConn: rawConn},
		subs: make(map[int64]*fanout.Subscription),
	}
	go sess.reader()
	go sess.pinger()
}

// session is one connected viewer and the listings it watches.
type session struct {
	hub  *fanout.Hub
	conn *clientConn

	mu   sync.Mutex
	subs map[int64]*fanout.Subscription
	done bool
}

func (s *session) reader() {
	defer s.teardown()

	s.conn.rawConn.SetReadLimit(readLimit)
	_ = s.conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.rawConn.SetPongHandler(func(string) error {
		return s.conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var op ClientOp
		if err := s.conn.rawConn.ReadJSON(&op); err != nil {
			return // client closed or errored
		}
		if op.ListingID <= 0 {
			_ = s.conn.writeJSON(ServerFrame{Event: "error", Body: ErrorBody{Error: "listing_id is required"}})
			continue
		}

		switch op.Op {
		case opSubscribe:
			s.subscribe(op.ListingID)
		case opUnsubscribe:
			s.unsubscribe(op.ListingID)
		default:
			_ = s.conn.writeJSON(ServerFrame{Event: "error", Body: ErrorBody{Error: "unknown_op"}})
		}
	}
}

func (s *session) subscribe(listingID int64) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	if _, ok := s.subs[listingID]; ok {
		s.mu.Unlock()
		_ = s.conn.writeJSON(ServerFrame{Event: "subscribed", Body: listingRef{ListingID: listingID}})
		return
	}
	sub := s.hub.Subscribe(listingID)
	s.subs[listingID] = sub
	s.mu.Unlock()

	go s.forward(sub)
	_ = s.conn.writeJSON(ServerFrame{Event: "subscribed", Body: listingRef{ListingID: listingID}})
}

func (s *session) unsubscribe(listingID int64) {
	s.mu.Lock()
	sub, ok := s.subs[listingID]
	delete(s.subs, listingID)
	s.mu.Unlock()

	if ok {
		s.hub.Unsubscribe(sub)
	}
	_ = s.conn.writeJSON(ServerFrame{Event: "unsubscribed", Body: listingRef{ListingID: listingID}})
}

// forward pumps one subscription's events to the socket. The loop ends
// when the subscription is removed from the hub (channel closed) or the
// socket write fails.
func (s *session) forward(sub *fanout.Subscription) {
	for ev := range sub.Events() {
		if err := s.conn.writeJSON(ServerFrame{Event: "bid_update", Body: ev}); err != nil {
			s.hub.Unsubscribe(sub)
			return
		}
	}
}

func (s *session) pinger() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := s.conn.write(websocket.PingMessage, nil); err != nil {
			s.conn.close()
			return
		}
	}
}

// teardown drops every subscription and closes the socket. Safe to run
// once per session; the reader goroutine owns it.
func (s *session) teardown() {
	s.mu.Lock()
	s.done = true
	subs := make([]*fanout.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		s.hub.Unsubscribe(sub)
	}
	s.conn.close()
}
