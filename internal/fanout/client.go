package fanout

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/superleague-points/internal/core/scenario"
	"github.com/charleschow/superleague-points/internal/events"
	"github.com/charleschow/superleague-points/internal/telemetry"
)

const (
	minBackoff = 1 * time.Second
	maxBackoff = 30 * time.Second
	ackWait    = 5 * time.Second
)

// Client watches a fanout server and republishes matching events onto a
// local bus.
type Client struct {
	addr string
	kind scenario.Kind
	bus  *events.Bus
}

func NewClient(addr string, kind scenario.Kind, bus *events.Bus) *Client {
	return &Client{
		addr: addr,
		kind: kind,
		bus:  bus,
	}
}

// ConnectWithRetry keeps a connection open until ctx is cancelled,
// reconnecting with exponential backoff. The backoff resets after a
// connection that lasted longer than a minute.
func (c *Client) ConnectWithRetry(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		connStart := time.Now()
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return
		}

		if time.Since(connStart) > time.Minute {
			attempt = 0
		}
		attempt++
		backoff := min(time.Duration(float64(minBackoff)*math.Pow(2, float64(min(attempt-1, 5)))), maxBackoff)

		telemetry.Warnf("fanout: connection lost (attempt %d): %v, retrying in %s", attempt, err, backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	u := url.URL{Scheme: "ws", Host: c.addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller gives up.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := c.subscribe(conn); err != nil {
		return err
	}
	telemetry.Infof("fanout: connected to %s as scenario=%s", c.addr, c.kind)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		env, err := Decode(msg)
		if err != nil {
			telemetry.Warnf("fanout: %v", err)
			continue
		}
		if env.Type == TypeSubscribed || !matches(c.kind, env.Scenario) {
			continue
		}
		evt, err := env.Event()
		if err != nil {
			telemetry.Warnf("fanout: %v", err)
			continue
		}
		c.bus.Publish(evt)
	}
}

// subscribe sends the filter and waits for the server to acknowledge it.
// Event frames that arrive first are discarded.
func (c *Client) subscribe(conn *websocket.Conn) error {
	req, err := MarshalControl(TypeSubscribe, c.kind)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, req); err != nil {
		return fmt.Errorf("send subscribe: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(ackWait))
	defer conn.SetReadDeadline(time.Time{})
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("await subscribe ack: %w", err)
		}
		env, err := Decode(msg)
		if err != nil {
			return err
		}
		if env.Type == TypeSubscribed && env.Scenario == c.kind {
			return nil
		}
	}
}
