package websockets

import (
	"encoding/json"
	"subsidy/config"
	"subsidy/internal/database"
	"subsidy/internal/events"
	"subsidy/internal/logger"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Manager fans lifecycle events out to connected websocket clients. Clients
// are read-only listeners; inbound frames are drained and dropped.
type Manager struct {
	db       database.DB
	eventBus *events.EventBus
	log      logger.Logger

	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

func New(db database.DB, eventBus *events.EventBus, config config.Config) (*Manager, error) {
	m := &Manager{
		db:       db,
		eventBus: eventBus,
		log:      logger.New("websockets"),
		conns:    make(map[*websocket.Conn]struct{}),
	}

	go m.listen()

	return m, nil
}

func (m *Manager) listen() {
	log := m.log.Function("listen")

	if err := m.eventBus.Subscribe("requests", m.broadcast); err != nil {
		log.Er("event subscription ended", err)
	}
}

func (m *Manager) broadcast(event events.Event) {
	log := m.log.Function("broadcast")

	payload, err := json.Marshal(event)
	if err != nil {
		log.Er("failed to marshal event", err, "type", event.Type)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for conn := range m.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Warn("failed to write to websocket client", "error", err)
		}
	}
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	m.mu.Lock()
	m.conns[c] = struct{}{}
	m.mu.Unlock()

	log.Info("websocket client connected", "remote", c.RemoteAddr().String())

	defer func() {
		m.mu.Lock()
		delete(m.conns, c)
		m.mu.Unlock()
		_ = c.Close()
		log.Info("websocket client disconnected")
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
