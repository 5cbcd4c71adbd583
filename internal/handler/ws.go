package handler

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"artisanlink/internal/logger"
	"artisanlink/internal/product"
	"artisanlink/internal/search"
	"artisanlink/internal/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 4096
)

// Client messages.
const (
	wsMount   = "mount"
	wsFilters = "filters"
	wsReset   = "reset"
)

// Server messages.
const (
	wsURL     = "url"
	wsResults = "results"
	wsError   = "error"
)

type wsClientMessage struct {
	Type  string `json:"type"`
	Query string `json:"query"`
}

type wsServerMessage struct {
	Type       string              `json:"type"`
	Query      string              `json:"query"`
	Filters    *search.Filters     `json:"filters,omitempty"`
	Loading    bool                `json:"loading"`
	Results    *product.ListResult `json:"results,omitempty"`
	Message    string              `json:"message,omitempty"`
	Generation uint64              `json:"generation,omitempty"`
}

// wsConn serializes writes; gorilla allows a single concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(msg wsServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteJSON(msg)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(h.CORSOrigins, origin)
		},
	}
}

// liveSearch drives one search pipeline per connection. Keystrokes arrive
// as filter messages, the pipeline answers with url and results messages.
func (h *Handler) liveSearch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "handler"),
		zap.String("method", "LiveSearch"),
	)

	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	ws := &wsConn{conn: conn}

	reqID := logger.RequestIDFrom(r.Context())
	devID := logger.DeviceIDFrom(r.Context())

	// Fetch contexts are detached from the request, so carry its ids for the logs.
	fetch := func(ctx context.Context, f search.Filters) (*product.ListResult, error) {
		ctx = logger.WithDeviceID(logger.WithRequestID(ctx, reqID), devID)
		return h.Products.Search(ctx, f)
	}

	p := search.NewPipeline(fetch,
		search.WithDebounce(h.SearchDebounce),
		search.WithTimeout(h.SearchTimeout),
		search.WithLogger(log),
		search.WithNavigator(search.NavigatorFunc(func(q string) {
			if err := ws.send(wsServerMessage{Type: wsURL, Query: q}); err != nil {
				log.Debug("url message not delivered", zap.Error(err))
			}
		})),
	)
	defer func() {
		p.Close()
		log.Info("live search closed", p.Stats().Fields()...)
	}()

	p.Subscribe(func(st search.State[*product.ListResult]) {
		if err := ws.send(toWSResults(st)); err != nil {
			log.Debug("results message not delivered", zap.Error(err))
		}
	})

	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go keepAlive(ws, done)

	for {
		var msg wsClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("live search read failed", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case wsMount:
			v, _ := url.ParseQuery(strings.TrimPrefix(msg.Query, "?"))
			p.Mount(v)
		case wsFilters:
			p.SetFilters(search.ParseQuery(msg.Query))
		case wsReset:
			p.Reset()
		default:
			if err := ws.send(wsServerMessage{Type: wsError, Message: utils.MsgInvalidInput}); err != nil {
				return
			}
		}
	}
}

func keepAlive(ws *wsConn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := ws.ping(); err != nil {
				return
			}
		}
	}
}

func toWSResults(st search.State[*product.ListResult]) wsServerMessage {
	f := st.Filters
	msg := wsServerMessage{
		Type:       wsResults,
		Query:      st.Query,
		Filters:    &f,
		Loading:    st.Loading,
		Results:    st.Results,
		Generation: st.Generation,
	}
	if st.Err != nil {
		msg.Message = utils.MsgLoadProducts
		msg.Results = emptyProducts(f)
	}
	return msg
}
