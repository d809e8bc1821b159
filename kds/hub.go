package kds

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// HubConfig mengatur heartbeat ping/pong
type HubConfig struct {
	PingInterval time.Duration
	PongTimeout  time.Duration
	Logger       logrus.FieldLogger
}

func DefaultHubConfig() HubConfig {
	return HubConfig{
		PingInterval: 25 * time.Second,
		PongTimeout:  60 * time.Second,
	}
}

// Client is one registered dashboard connection.
type Client struct {
	ID       string
	conn     *websocket.Conn
	writeMu  sync.Mutex
	lastPong time.Time
}

func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub menampung semua client dashboard (order board, tracker, kitchen) dan broadcast perubahan
type Hub struct {
	cfg     HubConfig
	log     logrus.FieldLogger
	clients map[*Client]struct{}
	mutex   sync.Mutex

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewHub(cfg HubConfig) *Hub {
	def := DefaultHubConfig()
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = def.PongTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		cfg:      cfg,
		log:      log.WithField("component", "kds_hub"),
		clients:  make(map[*Client]struct{}),
		stopChan: make(chan struct{}),
	}
}

// RegisterClient -> menambahkan connection dan mengirim {type:"connect", clientId}
func (h *Hub) RegisterClient(conn *websocket.Conn) *Client {
	client := &Client{
		ID:       uuid.NewString(),
		conn:     conn,
		lastPong: time.Now(),
	}

	// connect harus frame pertama, jadi ditulis sebelum client terlihat oleh Broadcast
	data, _ := EncodeMessage(Message{Type: EventConnect, ClientID: client.ID})
	if err := client.write(data); err != nil {
		h.log.WithError(err).WithField("client_id", client.ID).Warn("failed to send connect message")
		conn.Close()
		return client
	}

	h.mutex.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mutex.Unlock()

	h.log.WithFields(logrus.Fields{"client_id": client.ID, "clients": total}).Info("client registered")
	return client
}

// UnregisterClient -> melepaskan connection
func (h *Hub) UnregisterClient(client *Client) {
	h.mutex.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	h.mutex.Unlock()

	if ok {
		client.conn.Close()
		h.log.WithField("client_id", client.ID).Info("client unregistered")
	}
}

// HandleMessage processes one frame read from a client. Only pong is meaningful.
func (h *Hub) HandleMessage(client *Client, raw []byte) {
	msg, err := DecodeMessage(raw)
	if err != nil {
		h.log.WithError(err).WithField("client_id", client.ID).Debug("dropping client message")
		return
	}
	if msg.Type == EventPong {
		h.mutex.Lock()
		client.lastPong = time.Now()
		h.mutex.Unlock()
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast -> menyiarkan satu event ke semua client
func (h *Hub) Broadcast(event EventType) {
	data, err := EncodeMessage(Message{Type: event})
	if err != nil {
		h.log.WithError(err).Error("error marshaling message")
		return
	}

	clients := h.snapshot()
	h.log.WithFields(logrus.Fields{"event": event, "clients": len(clients)}).Debug("broadcasting")

	for _, client := range clients {
		if err := client.write(data); err != nil {
			h.log.WithError(err).WithField("client_id", client.ID).Warn("error sending message, dropping client")
			h.UnregisterClient(client)
		}
	}
}

// Start runs the heartbeat loop until Stop.
func (h *Hub) Start() {
	go func() {
		ticker := time.NewTicker(h.cfg.PingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				h.heartbeat(time.Now())
			case <-h.stopChan:
				return
			}
		}
	}()
}

// Stop ends the heartbeat loop and closes every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
		for _, client := range h.snapshot() {
			h.UnregisterClient(client)
		}
	})
}

// heartbeat drops clients that missed the pong deadline and pings the rest.
func (h *Hub) heartbeat(now time.Time) {
	ping, _ := EncodeMessage(Message{Type: EventPing})

	h.mutex.Lock()
	var stale, alive []*Client
	for client := range h.clients {
		if now.Sub(client.lastPong) > h.cfg.PongTimeout {
			stale = append(stale, client)
		} else {
			alive = append(alive, client)
		}
	}
	h.mutex.Unlock()

	for _, client := range stale {
		h.log.WithField("client_id", client.ID).Info("heartbeat timeout, closing client")
		h.UnregisterClient(client)
	}
	for _, client := range alive {
		if err := client.write(ping); err != nil {
			h.UnregisterClient(client)
		}
	}
}

func (h *Hub) snapshot() []*Client {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}
