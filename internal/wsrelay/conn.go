package wsrelay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dynrelay/locator/internal/relaywire"
	"github.com/gorilla/websocket"
)

var errEmptyFrame = errors.New("wsrelay: empty frame")

type okResult struct {
	ok  bool
	msg string
}

// conn owns one relay's WebSocket connection and demultiplexes its
// incoming EVENT/OK/EOSE frames to whichever subscription or publish call
// is waiting on them.
type conn struct {
	relay string
	ws    *websocket.Conn

	writeMu sync.Mutex

	mu        sync.Mutex
	subs      map[string]chan *relaywire.Event
	eose      map[string]chan struct{}
	pendingOK map[string]chan okResult
	subSeq    uint64

	isClosed atomic.Bool
}

func newConn(relay string, ws *websocket.Conn) *conn {
	return &conn{
		relay:     relay,
		ws:        ws,
		subs:      make(map[string]chan *relaywire.Event),
		eose:      make(map[string]chan struct{}),
		pendingOK: make(map[string]chan okResult),
	}
}

func (c *conn) closed() bool { return c.isClosed.Load() }

func (c *conn) close() error {
	if !c.isClosed.CompareAndSwap(false, true) {
		return nil
	}
	return c.ws.Close()
}

func (c *conn) nextSubID() string {
	id := atomic.AddUint64(&c.subSeq, 1)
	return "locator-" + itoa(id)
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func (c *conn) writeRaw(b []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

func (c *conn) readLoop() {
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			c.close()
			c.failAllPending()
			return
		}
		frame, err := parseInboundFrame(raw)
		if err != nil {
			continue
		}
		c.dispatch(frame)
	}
}

func (c *conn) dispatch(frame inboundFrame) {
	switch frame.Label {
	case "EVENT":
		if len(frame.Raw) < 2 {
			return
		}
		var subID string
		if err := json.Unmarshal(frame.Raw[0], &subID); err != nil {
			return
		}
		var event relaywire.Event
		if err := json.Unmarshal(frame.Raw[1], &event); err != nil {
			return
		}
		c.mu.Lock()
		ch, ok := c.subs[subID]
		c.mu.Unlock()
		if ok {
			ch <- &event
		}
	case "EOSE":
		if len(frame.Raw) < 1 {
			return
		}
		var subID string
		if err := json.Unmarshal(frame.Raw[0], &subID); err != nil {
			return
		}
		c.mu.Lock()
		done, ok := c.eose[subID]
		c.mu.Unlock()
		if ok {
			close(done)
		}
	case "OK":
		if len(frame.Raw) < 3 {
			return
		}
		var eventID string
		var ok bool
		var msg string
		_ = json.Unmarshal(frame.Raw[0], &eventID)
		_ = json.Unmarshal(frame.Raw[1], &ok)
		if len(frame.Raw) >= 3 {
			_ = json.Unmarshal(frame.Raw[2], &msg)
		}
		c.mu.Lock()
		ch, found := c.pendingOK[eventID]
		c.mu.Unlock()
		if found {
			ch <- okResult{ok: ok, msg: msg}
		}
	}
}

func (c *conn) failAllPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.eose {
		close(ch)
	}
	for _, ch := range c.pendingOK {
		close(ch)
	}
}

// query opens a REQ subscription, collects every EVENT until EOSE (or ctx
// expires), and closes the subscription.
func (c *conn) query(ctx context.Context, filter relaywire.Filter) ([]*relaywire.Event, error) {
	subID := c.nextSubID()
	eventsCh := make(chan *relaywire.Event, 64)
	doneCh := make(chan struct{})

	c.mu.Lock()
	c.subs[subID] = eventsCh
	c.eose[subID] = doneCh
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.subs, subID)
		delete(c.eose, subID)
		c.mu.Unlock()
		raw, err := encodeClose(subID)
		if err == nil {
			_ = c.writeRaw(raw)
		}
	}()

	raw, err := encodeReq(subID, filter)
	if err != nil {
		return nil, err
	}
	if err := c.writeRaw(raw); err != nil {
		return nil, err
	}

	var events []*relaywire.Event
	for {
		select {
		case e := <-eventsCh:
			events = append(events, e)
		case <-doneCh:
			// Events dispatched before EOSE may still sit in the buffer.
			for {
				select {
				case e := <-eventsCh:
					events = append(events, e)
				default:
					return events, nil
				}
			}
		case <-ctx.Done():
			return events, ctx.Err()
		}
	}
}

// publish sends event and waits for the relay's OK response.
func (c *conn) publish(ctx context.Context, event *relaywire.Event) (bool, string, error) {
	okCh := make(chan okResult, 1)
	c.mu.Lock()
	c.pendingOK[event.ID] = okCh
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pendingOK, event.ID)
		c.mu.Unlock()
	}()

	raw, err := encodeEvent(event)
	if err != nil {
		return false, "", err
	}
	if err := c.writeRaw(raw); err != nil {
		return false, "", err
	}

	select {
	case res, ok := <-okCh:
		if !ok {
			return false, "", errors.New("wsrelay: connection closed before OK")
		}
		return res.ok, res.msg, nil
	case <-ctx.Done():
		return false, "", ctx.Err()
	}
}
