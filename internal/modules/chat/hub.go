package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	pkgredis "github.com/rahabenico/core/internal/pkg/redis"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	namespaceChat = "/chat"
	redisChanChat = "rb:chat"

	EventNewMessage  = "new_message"
	EventOnlineCount = "online_count"
)

// broadcastEnvelope is the wire format for hub broadcasts and Redis
// fan-out between instances.
type broadcastEnvelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub runs the live chat over socket.io. Messages submitted on a socket
// are persisted through the chat Service and then broadcast to every
// connected client, across instances via Redis pub/sub.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]struct{}

	broadcast  chan broadcastEnvelope
	register   chan string
	unregister chan string

	svc    *Service
	rc     *pkgredis.Client
	logger *zap.Logger
	sio    *socketio.Server
}

func NewHub(svc *Service, rc *pkgredis.Client, logger *zap.Logger) *Hub {
	h := &Hub{
		clients:    make(map[string]struct{}),
		broadcast:  make(chan broadcastEnvelope, 256),
		register:   make(chan string, 256),
		unregister: make(chan string, 256),
		svc:        svc,
		rc:         rc,
		logger:     logger,
		sio:        socketio.NewServer(nil, nil),
	}
	h.registerNamespace()
	return h
}

type incomingMessage struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

func (h *Hub) registerNamespace() {
	ns := h.sio.Of(namespaceChat, nil)
	_ = ns.On("connection", func(args ...any) {
		client, ok := args[0].(*socketio.Socket)
		if !ok {
			return
		}
		sid := string(client.Id())
		h.register <- sid

		_ = client.On("message_create", func(msgArgs ...any) {
			if len(msgArgs) == 0 {
				return
			}
			in, ok := decodeIncoming(msgArgs[0])
			if !ok {
				return
			}
			m, err := h.svc.Send(in.Username, in.Content)
			if err != nil {
				_ = client.Emit("error", err.Error())
				return
			}
			h.Broadcast(EventNewMessage, toView(m))
		})

		_ = client.On("disconnect", func(_ ...any) {
			h.unregister <- sid
		})
	})
}

// decodeIncoming tolerates both object payloads and JSON strings; the
// socket.io client emits either depending on how it is called.
func decodeIncoming(raw any) (incomingMessage, bool) {
	var in incomingMessage
	switch v := raw.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &in); err != nil {
			return in, false
		}
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return in, false
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return in, false
		}
	}
	return in, true
}

// Run starts the hub loop and Redis subscriber. Blocks until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	if h.rc != nil {
		go h.subscribeRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.sio.Close(nil)
			return

		case sid := <-h.register:
			h.mu.Lock()
			h.clients[sid] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.Broadcast(EventOnlineCount, gin.H{"online": n})

		case sid := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, sid)
			n := len(h.clients)
			h.mu.Unlock()
			h.Broadcast(EventOnlineCount, gin.H{"online": n})

		case env := <-h.broadcast:
			h.deliver(env)

			if h.rc != nil {
				data, err := json.Marshal(env)
				if err != nil {
					continue
				}
				if err := h.rc.Publish(ctx, redisChanChat, string(data)); err != nil && h.logger != nil {
					h.logger.Warn("chat publish failed", zap.Error(err))
				}
			}
		}
	}
}

func (h *Hub) deliver(env broadcastEnvelope) {
	h.sio.Of(namespaceChat, nil).Emit(env.Event, env.Payload)
}

// subscribeRedis delivers broadcasts originating on other instances.
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rc.Subscribe(ctx, redisChanChat)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case redisMsg, ok := <-ch:
			if !ok {
				return
			}
			var env broadcastEnvelope
			if err := json.Unmarshal([]byte(redisMsg.Payload), &env); err != nil {
				continue
			}
			h.deliver(env)
		}
	}
}

// Broadcast queues an event for every connected client.
func (h *Hub) Broadcast(event string, payload interface{}) {
	h.broadcast <- broadcastEnvelope{Event: event, Payload: payload}
}

// ClientCount returns the number of clients connected to this instance.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler returns the socket.io HTTP handler mounted at /socket.io.
func (h *Hub) Handler() http.Handler {
	return h.sio.ServeHandler(nil)
}

// RegisterSocketRoutes mounts socket.io and the online-count endpoint.
func RegisterSocketRoutes(rg *gin.RouterGroup, hub *Hub) {
	handler := gin.WrapH(hub.Handler())
	rg.Any("/socket.io", handler)
	rg.Any("/socket.io/*any", handler)

	rg.GET("/chat/online", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"online": hub.ClientCount()})
	})
}
