package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"video-consulta-sync/internal/pkg/logger"
)

// State of the channel lifecycle.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

// Events are the inbound callbacks. Unknown or malformed frames are dropped
// without raising; the channel never crashes on bad input.
type Events struct {
	OnOpen          func()
	OnClose         func()
	OnTranscription func(TranscriptionPayload)
	OnProposal      func(ProposalPayload)
	OnProposalError func()
}

// Config parameterizes one connection. Reconnection defaults to a single
// attempt; MaxRetries/RetryBackoff are the configuration point for
// reconnect-on-drop deployments.
type Config struct {
	BaseURL   string // ws(s) endpoint, e.g. wss://host/ws
	RoomID    string
	Role      string
	PatientID string

	MaxRetries   int
	RetryBackoff time.Duration

	// dial overrides the websocket dialer in tests.
	dial func(ctx context.Context, url string) (wsConn, error)
}

type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Channel is one logical duplex connection per call session. Send is a
// fire-and-forget primitive: frames are silently dropped unless the channel
// is open, matching at-most-once semantics for perishable live-stream data.
type Channel struct {
	cfg    Config
	events Events
	log    logger.ILogger

	mu    sync.Mutex
	state State
	conn  wsConn

	// wmu serializes writers: the flush ticker, the debounce timer and
	// user actions all reach Send from their own goroutines, and the
	// underlying connection allows only one writer at a time.
	wmu sync.Mutex
}

func New(cfg Config, events Events, log logger.ILogger) *Channel {
	return &Channel{
		cfg:    cfg,
		events: events,
		log:    log,
		state:  StateConnecting,
	}
}

// URL builds the connect address with the room, role and patient id as
// query parameters.
func (c *Channel) URL() string {
	q := url.Values{}
	q.Set("roomId", c.cfg.RoomID)
	q.Set("role", c.cfg.Role)
	q.Set("patientId", c.cfg.PatientID)
	return c.cfg.BaseURL + "?" + q.Encode()
}

// Connect establishes the connection and starts the read loop. Blocks only
// for the handshake; cancelable via ctx.
func (c *Channel) Connect(ctx context.Context) error {
	dial := c.cfg.dial
	if dial == nil {
		dial = func(ctx context.Context, u string) (wsConn, error) {
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
			return conn, err
		}
	}

	attempts := c.cfg.MaxRetries + 1
	var conn wsConn
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 && c.cfg.RetryBackoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.RetryBackoff):
			}
		}
		conn, err = dial(ctx, c.URL())
		if err == nil {
			break
		}
	}
	if err != nil {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		return fmt.Errorf("channel dial %s: %w", c.cfg.RoomID, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()

	if c.events.OnOpen != nil {
		c.events.OnOpen()
	}
	go c.readLoop(conn)
	return nil
}

// Send marshals {type, payload} and writes it if the channel is open.
// Dropped silently while connecting or after close.
func (c *Channel) Send(msgType string, payload interface{}) {
	c.mu.Lock()
	if c.state != StateOpen || c.conn == nil {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.mu.Unlock()

	data, err := json.Marshal(map[string]interface{}{
		"type":    msgType,
		"payload": payload,
	})
	if err != nil {
		c.log.Warn("Channel", "Failed to marshal outbound frame", map[string]interface{}{"type": msgType, "error": err.Error()})
		return
	}
	c.wmu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.wmu.Unlock()
	if err != nil {
		c.log.Warn("Channel", "Write failed", map[string]interface{}{"type": msgType, "error": err.Error()})
	}
}

// State returns the current lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close shuts the connection down. Safe to call multiple times; the close
// callback fires at most once.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if c.events.OnClose != nil {
		c.events.OnClose()
	}
}

func (c *Channel) readLoop(conn wsConn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.Close()
			return
		}
		c.handleFrame(data)
	}
}

// handleFrame routes one inbound frame by type. Anything unparseable or
// unknown is dropped; liveness over strict delivery.
func (c *Channel) handleFrame(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.log.Debug("Channel", "Dropping malformed frame", map[string]interface{}{"error": err.Error()})
		return
	}
	switch msg.Type {
	case TypeTranscription:
		var p TranscriptionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		if c.events.OnTranscription != nil {
			c.events.OnTranscription(p)
		}
	case TypeProposal:
		var p ProposalPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		if c.events.OnProposal != nil {
			c.events.OnProposal(p)
		}
	case TypeProposalError:
		if c.events.OnProposalError != nil {
			c.events.OnProposalError()
		}
	default:
		// Reserved/unknown types are ignored.
	}
}
