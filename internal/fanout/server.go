package fanout

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/superleague-points/internal/core/scenario"
	"github.com/charleschow/superleague-points/internal/events"
	"github.com/charleschow/superleague-points/internal/telemetry"
)

const (
	watcherSendBuf = 256
	writeDeadline  = 5 * time.Second
	pongWait       = 30 * time.Second
	pingInterval   = 20 * time.Second
	maxControlSize = 1 << 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type watcher struct {
	conn   *websocket.Conn
	remote string
	send   chan []byte
	done   chan struct{}

	mu   sync.Mutex
	kind scenario.Kind
}

func (w *watcher) filter() scenario.Kind {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.kind
}

func (w *watcher) setFilter(k scenario.Kind) {
	w.mu.Lock()
	w.kind = k
	w.mu.Unlock()
}

// matches reports whether a result of kind result carries the table a
// filter asked for. A "both" filter takes everything.
func matches(filter, result scenario.Kind) bool {
	switch filter {
	case scenario.KindWinning:
		return result.IncludesWinning()
	case scenario.KindLosing:
		return result.IncludesLosing()
	default:
		return true
	}
}

// enqueue never blocks; a full buffer drops the frame.
func (w *watcher) enqueue(data []byte) bool {
	select {
	case w.send <- data:
		return true
	default:
		telemetry.Metrics.FanoutDropped.Inc()
		return false
	}
}

// Server pushes computed scenarios to WebSocket watchers.
//
// A watcher picks its initial filter with ?scenario= and may change it on
// a live connection by sending a subscribe frame. Every filter change,
// including the initial one, is acknowledged with a subscribed frame.
type Server struct {
	mu       sync.Mutex
	watchers map[*watcher]struct{}
	detach   func()
}

func NewServer(bus *events.Bus) *Server {
	s := &Server{
		watchers: make(map[*watcher]struct{}),
	}
	s.detach = bus.Subscribe(events.EventScenarioComputed, s.forward)
	return s
}

// RegisterRoutes mounts the WebSocket endpoint at /ws.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", s.HandleWS)
}

// forward runs on the publisher's goroutine. The event is encoded once and
// queued to every matching watcher.
func (s *Server) forward(evt events.Event) error {
	sc, ok := evt.Payload.(events.ScenarioComputedEvent)
	if !ok {
		return nil
	}

	data, err := MarshalEvent(evt)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for w := range s.watchers {
		if !matches(w.filter(), sc.Result.Kind) {
			continue
		}
		if !w.enqueue(data) {
			telemetry.Warnf("fanout: dropping %s for slow watcher %s", evt.ID, w.remote)
		}
	}
	return nil
}

// HandleWS upgrades a watcher connection. An unknown ?scenario= is a 400.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	kind, err := scenario.ParseKind(r.URL.Query().Get("scenario"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		telemetry.Warnf("fanout: upgrade failed: %v", err)
		return
	}
	conn.SetReadLimit(maxControlSize)

	c := &watcher{
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan []byte, watcherSendBuf),
		done:   make(chan struct{}),
		kind:   kind,
	}
	s.ack(c, kind)

	s.mu.Lock()
	s.watchers[c] = struct{}{}
	s.mu.Unlock()
	telemetry.Metrics.FanoutWatchers.Inc()

	telemetry.Infof("fanout: watcher connected  scenario=%s  remote=%s", kind, c.remote)

	go s.writePump(c)
	go s.readPump(c)
}

func (s *Server) ack(c *watcher, kind scenario.Kind) {
	data, err := MarshalControl(TypeSubscribed, kind)
	if err != nil {
		telemetry.Warnf("fanout: encode ack: %v", err)
		return
	}
	c.enqueue(data)
}

// WatcherCount reports the number of connected watchers.
func (s *Server) WatcherCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

// Close stops forwarding and disconnects every watcher.
func (s *Server) Close() {
	s.detach()

	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.watchers))
	for w := range s.watchers {
		conns = append(conns, w.conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeDeadline))
		conn.Close()
	}
}

// writePump owns the watcher's lifecycle: on exit it removes the watcher
// so forward never queues to a dead channel, then closes the connection.
func (s *Server) writePump(c *watcher) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.removeWatcher(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				telemetry.Warnf("fanout: write error %s: %v", c.remote, err)
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump handles pongs and subscribe frames. It signals writePump via
// c.done on exit and never closes c.send.
func (s *Server) readPump(c *watcher) {
	defer close(c.done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		env, err := Decode(msg)
		if err != nil || env.Type != TypeSubscribe {
			telemetry.Debugf("fanout: ignoring frame from %s: %s", c.remote, msg)
			continue
		}
		kind, err := scenario.ParseKind(string(env.Scenario))
		if err != nil {
			telemetry.Debugf("fanout: bad subscribe from %s: %v", c.remote, err)
			continue
		}
		c.setFilter(kind)
		s.ack(c, kind)
		telemetry.Infof("fanout: watcher %s now scenario=%s", c.remote, kind)
	}
}

func (s *Server) removeWatcher(c *watcher) {
	s.mu.Lock()
	_, ok := s.watchers[c]
	delete(s.watchers, c)
	s.mu.Unlock()
	if ok {
		telemetry.Metrics.FanoutWatchers.Dec()
		telemetry.Infof("fanout: watcher disconnected  remote=%s", c.remote)
	}
}
