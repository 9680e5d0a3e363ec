package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"coursegen-backend/internal/metrics"
	"coursegen-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// TokenParser resolves a bearer token to the owner id it was issued for.
type TokenParser interface {
	ParseToken(tokenStr string) (string, error)
}

// Hub relays job updates published on redis to the owner's open sockets.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*websocket.Conn
	redisClient *redis.Client
	tokens      TokenParser
	cancelFuncs map[string]context.CancelFunc
	logger      *zap.Logger
}

// NewHub builds a hub. With a nil redis client connections are accepted but
// only SendToUser reaches them.
func NewHub(redisClient *redis.Client, tokens TokenParser, logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[string][]*websocket.Conn),
		redisClient: redisClient,
		tokens:      tokens,
		cancelFuncs: make(map[string]context.CancelFunc),
		logger:      logger.With(zap.String("component", "ws_hub")),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ownerID, err := h.tokens.ParseToken(tokenStr)
	if err != nil || ownerID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.registerConnection(ownerID, conn)

	go func() {
		defer h.unregisterConnection(ownerID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) registerConnection(ownerID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[ownerID] = append(h.connections[ownerID], conn)
	metrics.WSConnections.Inc()

	// First connection for this owner starts the subscription.
	if len(h.connections[ownerID]) == 1 && h.redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[ownerID] = cancel
		go h.subscribeToPubSub(ctx, ownerID)
	}

	h.logger.Debug("websocket connected",
		zap.String("owner_id", ownerID),
		zap.Int("connections", len(h.connections[ownerID])),
	)
}

func (h *Hub) unregisterConnection(ownerID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[ownerID]
	for i, c := range conns {
		if c == conn {
			h.connections[ownerID] = append(conns[:i], conns[i+1:]...)
			metrics.WSConnections.Dec()
			break
		}
	}

	if len(h.connections[ownerID]) == 0 {
		delete(h.connections, ownerID)
		if cancel, ok := h.cancelFuncs[ownerID]; ok {
			cancel()
			delete(h.cancelFuncs, ownerID)
		}
	}

	h.logger.Debug("websocket disconnected", zap.String("owner_id", ownerID))
}

func (h *Hub) subscribeToPubSub(ctx context.Context, ownerID string) {
	pubsub := h.redisClient.Subscribe(ctx, services.UpdatesChannel(ownerID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(ownerID, []byte(msg.Payload))
		}
	}
}

// broadcast writes under the exclusive lock: a gorilla connection supports
// one concurrent writer.
func (h *Hub) broadcast(ownerID string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conn := range h.connections[ownerID] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("websocket write failed", zap.String("owner_id", ownerID), zap.Error(err))
		}
	}
}

// SendToUser sends a message directly to an owner, bypassing pub/sub.
func (h *Hub) SendToUser(ownerID string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.broadcast(ownerID, data)
}

// Close ends every subscription and connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ownerID, cancel := range h.cancelFuncs {
		cancel()
		delete(h.cancelFuncs, ownerID)
	}
	for ownerID, conns := range h.connections {
		for _, c := range conns {
			c.Close()
		}
		metrics.WSConnections.Sub(float64(len(conns)))
		delete(h.connections, ownerID)
	}
}
