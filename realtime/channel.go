// Package realtime owns the dashboard's single push-channel connection.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-dashboard/kds"
)

const DefaultPath = "/ws"

type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "errored"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Dispatcher receives every recognised change tag. It reports false for tags
// it does not know.
type Dispatcher interface {
	Dispatch(event kds.EventType) bool
}

// StatusFunc is told when the channel opens (true) or drops (false).
type StatusFunc func(connected bool)

type Config struct {
	// BaseURL is the dashboard origin, e.g. http://localhost:8080.
	BaseURL string
	Path    string

	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration

	Dialer *websocket.Dialer
	Logger logrus.FieldLogger
}

func (c *Config) setDefaults() {
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 2 * time.Second
	}
	if c.MaxReconnectDelay < c.ReconnectDelay {
		c.MaxReconnectDelay = 30 * time.Second
		if c.MaxReconnectDelay < c.ReconnectDelay {
			c.MaxReconnectDelay = c.ReconnectDelay
		}
	}
	if c.Dialer == nil {
		c.Dialer = websocket.DefaultDialer
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
}

// EndpointURL derives the push endpoint from the dashboard origin: same host,
// ws/wss instead of http/https.
func EndpointURL(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("realtime: parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("realtime: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("realtime: base url has no host")
	}
	if path == "" {
		path = DefaultPath
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Manager maintains one logical connection for as long as its owner keeps it.
type Manager struct {
	cfg        Config
	endpoint   string
	dispatcher Dispatcher
	onStatus   StatusFunc
	log        logrus.FieldLogger

	state      atomic.Int32
	reconnects atomic.Uint64

	mu       sync.Mutex
	conn     *websocket.Conn
	clientID string
	closed   bool
	cancel   context.CancelFunc
	done     chan struct{}

	writeMu sync.Mutex
}

func New(cfg Config, dispatcher Dispatcher, onStatus StatusFunc) (*Manager, error) {
	cfg.setDefaults()
	endpoint, err := EndpointURL(cfg.BaseURL, cfg.Path)
	if err != nil {
		return nil, err
	}
	if onStatus == nil {
		onStatus = func(bool) {}
	}
	return &Manager{
		cfg:        cfg,
		endpoint:   endpoint,
		dispatcher: dispatcher,
		onStatus:   onStatus,
		log:        cfg.Logger.WithField("component", "channel"),
	}, nil
}

func (m *Manager) Endpoint() string { return m.endpoint }

func (m *Manager) State() State { return State(m.state.Load()) }

// Reconnects counts connection attempts after the first one.
func (m *Manager) Reconnects() uint64 { return m.reconnects.Load() }

// ClientID is the id the server assigned in its connect message.
func (m *Manager) ClientID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clientID
}

// Start launches the connect/reconnect loop. Calling Start twice is a no-op.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.done != nil {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.run(ctx, m.done)
}

// Close tears the connection down and waits for the loop to exit. No status
// or dispatch callbacks fire after Close returns.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	conn, cancel, done := m.conn, m.cancel, m.done
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if conn != nil {
		m.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		m.writeMu.Unlock()
		err = conn.Close()
	}
	if done != nil {
		<-done
	}
	return err
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Manager) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	failures := 0
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			m.reconnects.Add(1)
		}

		opened := m.connectOnce(ctx)
		if opened {
			failures = 0
		} else {
			failures++
		}

		if ctx.Err() != nil {
			return
		}

		delay := backoff(failures, m.cfg.ReconnectDelay, m.cfg.MaxReconnectDelay)
		m.log.WithFields(logrus.Fields{"delay": delay, "failures": failures}).Info("scheduling reconnect")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

// connectOnce dials, serves the connection until it drops and reports whether
// it ever reached Open.
func (m *Manager) connectOnce(ctx context.Context) bool {
	m.setState(StateConnecting)

	conn, _, err := m.cfg.Dialer.DialContext(ctx, m.endpoint, nil)
	if err != nil {
		if ctx.Err() != nil {
			m.setState(StateClosed)
			return false
		}
		m.log.WithError(err).Warn("push channel connect failed")
		m.setState(StateErrored)
		m.report(false)
		return false
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		conn.Close()
		return false
	}
	m.conn = conn
	m.mu.Unlock()

	m.setState(StateOpen)
	m.log.WithField("endpoint", m.endpoint).Info("push channel open")
	m.report(true)

	final := m.readLoop(conn)

	m.mu.Lock()
	m.conn = nil
	m.mu.Unlock()
	conn.Close()

	m.setState(final)
	m.report(false)
	return true
}

func (m *Manager) readLoop(conn *websocket.Conn) State {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) || m.isClosed() {
				m.log.WithError(err).Info("push channel closed")
				return StateClosed
			}
			m.log.WithError(err).Warn("push channel error")
			return StateErrored
		}
		m.onMessage(conn, data)
	}
}

// onMessage never panics into callers: bad frames are logged and dropped.
func (m *Manager) onMessage(conn *websocket.Conn, raw []byte) {
	msg, err := kds.DecodeMessage(raw)
	if err != nil {
		m.log.WithError(err).WithField("payload", truncate(raw, 120)).Warn("dropping malformed push message")
		return
	}

	switch msg.Type {
	case kds.EventPing:
		m.pong(conn)
	case kds.EventPong:
	case kds.EventConnect:
		m.mu.Lock()
		m.clientID = msg.ClientID
		m.mu.Unlock()
		m.log.WithField("client_id", msg.ClientID).Debug("server assigned client id")
	default:
		if m.isClosed() || m.dispatcher == nil {
			return
		}
		if !m.dispatcher.Dispatch(msg.Type) {
			m.log.WithField("type", msg.Type).Debug("ignoring unknown push message type")
		}
	}
}

func (m *Manager) pong(conn *websocket.Conn) {
	data, _ := kds.EncodeMessage(kds.Message{Type: kds.EventPong})
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		m.log.WithError(err).Warn("failed to answer heartbeat")
	}
}

func (m *Manager) setState(s State) { m.state.Store(int32(s)) }

func (m *Manager) report(connected bool) {
	if m.isClosed() {
		return
	}
	m.onStatus(connected)
}

// backoff grows the reconnect delay with consecutive failures, capped at max.
func backoff(failures int, base, ceiling time.Duration) time.Duration {
	if failures <= 1 {
		return base
	}
	delay := base
	for i := 1; i < failures; i++ {
		delay *= 2
		if delay >= ceiling {
			return ceiling
		}
	}
	return delay
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
