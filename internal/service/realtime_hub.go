package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"iwala99_backend/internal/repository"
	"iwala99_backend/pkg/logger"
	"iwala99_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	shardCount     = 32
	onlineTTL      = 2 * time.Minute
)

const realtimeChannel = "realtime_channel"

// Event types carried over the socket.
const (
	EventNewMessage   = "NEW_MESSAGE"
	EventMessagesRead = "MESSAGES_READ"
	EventTyping       = "TYPING"
	EventNotification = "NOTIFICATION"
	EventUserStatus   = "USER_STATUS"
	EventLeaderboard  = "LEADERBOARD_UPDATED"
)

var messagePool = sync.Pool{
	New: func() interface{} {
		return &WSMessage{}
	},
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Client struct {
	Hub     *RealtimeHub
	Conn    *websocket.Conn
	Send    chan []byte
	UserID  uint
	Limiter *rate.Limiter
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.Uint("userId", c.UserID))
			}
			break
		}

		if !c.Limiter.Allow() {
			continue
		}

		wsMsg := messagePool.Get().(*WSMessage)
		if err := json.Unmarshal(message, wsMsg); err != nil {
			messagePool.Put(wsMsg)
			continue
		}

		monitoring.RealtimeEventCounter.WithLabelValues(wsMsg.Type, "in").Inc()

		// TYPING is the only client-originated event. Everything else
		// reaches the socket through the HTTP API.
		if wsMsg.Type == EventTyping {
			c.Hub.HandleTransientEvent(c.UserID, *wsMsg)
		}
		messagePool.Put(wsMsg)
	}
}

// HandleTransientEvent relays events that never touch the database to
// the other members of the conversation.
func (h *RealtimeHub) HandleTransientEvent(senderID uint, msg WSMessage) {
	data, ok := msg.Data.(map[string]interface{})
	if !ok {
		return
	}
	convID, _ := data["conversationId"].(string)
	if convID == "" || h.ConversationRepo == nil {
		return
	}

	isMember, err := h.ConversationRepo.IsParticipant(convID, senderID)
	if err != nil || !isMember {
		return
	}

	data["userId"] = senderID
	msg.Data = data

	memberIDs, err := h.ConversationRepo.ParticipantIDs(convID)
	if err != nil {
		return
	}
	var targets []uint
	for _, id := range memberIDs {
		if id != senderID {
			targets = append(targets, id)
		}
	}
	if len(targets) > 0 {
		h.PushToUsers(targets, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if n := len(c.Send); n > 0 {
				for i := 0; i < n; i++ {
					w.Write(<-c.Send)
				}
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type shard struct {
	clients map[uint]*Client
	mu      sync.RWMutex
}

// RealtimeHub fans events out to connected users. Cross-instance
// delivery goes through Redis pub/sub so any instance can address any
// user.
type RealtimeHub struct {
	shards           [shardCount]*shard
	register         chan *Client
	unregister       chan *Client
	Redis            *redis.Client
	ConversationRepo *repository.ConversationRepository
	ctx              context.Context
}

func NewRealtimeHub(rdb *redis.Client, conversationRepo *repository.ConversationRepository) *RealtimeHub {
	h := &RealtimeHub{
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		Redis:            rdb,
		ConversationRepo: conversationRepo,
		ctx:              context.Background(),
	}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{
			clients: make(map[uint]*Client),
		}
	}
	return h
}

func (h *RealtimeHub) getShard(userID uint) *shard {
	return h.shards[userID%shardCount]
}

type PubSubMessage struct {
	TargetUsers []uint          `json:"targetUsers"`
	Payload     json.RawMessage `json:"payload"`
}

func (h *RealtimeHub) Run() {
	pubsub := h.Redis.Subscribe(h.ctx, realtimeChannel)
	go func() {
		ch := pubsub.Channel()
		for msg := range ch {
			var psMsg PubSubMessage
			if err := json.Unmarshal([]byte(msg.Payload), &psMsg); err != nil {
				logger.Log.Error("PubSub unmarshal error", zap.Error(err))
				continue
			}
			h.pushToLocalUsers(psMsg.TargetUsers, psMsg.Payload)
		}
	}()

	// Presence writes are batched, and live connections renew their TTL
	// on a heartbeat.
	ticker := time.NewTicker(500 * time.Millisecond)
	heartbeatTicker := time.NewTicker(1 * time.Minute)
	defer func() {
		ticker.Stop()
		heartbeatTicker.Stop()
	}()

	type statusUpdate struct {
		userID uint
		status string
	}
	var pendingUpdates []statusUpdate

	for {
		select {
		case client := <-h.register:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			s.clients[client.UserID] = client
			s.mu.Unlock()
			pendingUpdates = append(pendingUpdates, statusUpdate{client.UserID, "online"})
			monitoring.RealtimeOnlineUsers.Inc()

		case client := <-h.unregister:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if _, ok := s.clients[client.UserID]; ok {
				delete(s.clients, client.UserID)
				close(client.Send)
				monitoring.RealtimeOnlineUsers.Dec()
			}
			s.mu.Unlock()
			pendingUpdates = append(pendingUpdates, statusUpdate{client.UserID, "offline"})

		case <-heartbeatTicker.C:
			h.refreshOnlineStatus()

		case <-ticker.C:
			if len(pendingUpdates) == 0 {
				continue
			}

			pipe := h.Redis.Pipeline()
			for _, update := range pendingUpdates {
				key := fmt.Sprintf("user:online:%d", update.userID)
				if update.status == "online" {
					pipe.Set(h.ctx, key, "true", onlineTTL)
				} else {
					pipe.Del(h.ctx, key)
				}
			}
			if _, err := pipe.Exec(h.ctx); err != nil {
				logger.Log.Error("Redis pipeline error", zap.Error(err))
			}

			for _, update := range pendingUpdates {
				h.notifyStatus(update.userID, update.status)
			}
			pendingUpdates = pendingUpdates[:0]
		}
	}
}

func (h *RealtimeHub) refreshOnlineStatus() {
	pipe := h.Redis.Pipeline()
	count := 0
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.RLock()
		for userID := range s.clients {
			pipe.Expire(h.ctx, fmt.Sprintf("user:online:%d", userID), onlineTTL)
			count++
		}
		s.mu.RUnlock()
	}
	if count > 0 {
		pipe.Exec(h.ctx)
		logger.Log.Debug("Refreshed online status", zap.Int("count", count))
	}
}

// notifyStatus tells everyone who shares a conversation with the user
// that their presence changed.
func (h *RealtimeHub) notifyStatus(userID uint, status string) {
	if h.ConversationRepo == nil {
		return
	}
	relatedIDs, err := h.ConversationRepo.RelatedUserIDs(userID)
	if err != nil || len(relatedIDs) == 0 {
		return
	}

	h.PushToUsers(relatedIDs, WSMessage{
		Type: EventUserStatus,
		Data: map[string]interface{}{
			"userId": userID,
			"status": status,
		},
	})
}

// Stop closes every connection and clears presence for this instance.
func (h *RealtimeHub) Stop() {
	logger.Log.Info("Realtime hub stopping: clearing online status and closing connections...")

	var allUserIDs []uint
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.Lock()
		for userID, client := range s.clients {
			allUserIDs = append(allUserIDs, userID)
			close(client.Send)
			delete(s.clients, userID)
		}
		s.mu.Unlock()
	}

	if len(allUserIDs) > 0 {
		pipe := h.Redis.Pipeline()
		for _, userID := range allUserIDs {
			pipe.Del(h.ctx, fmt.Sprintf("user:online:%d", userID))
		}
		pipe.Exec(h.ctx)
	}

	monitoring.RealtimeOnlineUsers.Set(0)
	logger.Log.Info("Realtime hub stopped", zap.Int("closedConnections", len(allUserIDs)))
}

func (h *RealtimeHub) PushToUsers(userIDs []uint, msg WSMessage) {
	msgBytes, _ := json.Marshal(msg)
	psMsg := PubSubMessage{
		TargetUsers: userIDs,
		Payload:     msgBytes,
	}
	payload, _ := json.Marshal(psMsg)
	h.Redis.Publish(h.ctx, realtimeChannel, payload)
	monitoring.RealtimeEventCounter.WithLabelValues(msg.Type, "out").Inc()
}

func (h *RealtimeHub) pushToLocalUsers(userIDs []uint, payload []byte) {
	// An empty target list is a broadcast to everyone connected.
	if len(userIDs) == 0 {
		for i := 0; i < shardCount; i++ {
			s := h.shards[i]
			s.mu.RLock()
			for _, client := range s.clients {
				select {
				case client.Send <- payload:
				default:
				}
			}
			s.mu.RUnlock()
		}
		return
	}

	for _, id := range userIDs {
		s := h.getShard(id)
		s.mu.RLock()
		if client, ok := s.clients[id]; ok {
			select {
			case client.Send <- payload:
			default:
			}
		}
		s.mu.RUnlock()
	}
}

func (h *RealtimeHub) IsUserOnline(userID uint) bool {
	s := h.getShard(userID)
	s.mu.RLock()
	_, ok := s.clients[userID]
	s.mu.RUnlock()
	if ok {
		return true
	}

	// Other instances park presence in Redis.
	val, err := h.Redis.Get(h.ctx, fmt.Sprintf("user:online:%d", userID)).Result()
	return err == nil && val == "true"
}

// OnlineCount counts presence keys across all instances.
func (h *RealtimeHub) OnlineCount() int64 {
	var count int64
	var cursor uint64
	for {
		keys, next, err := h.Redis.Scan(h.ctx, cursor, "user:online:*", 200).Result()
		if err != nil {
			return count
		}
		count += int64(len(keys))
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return count
}

func ServeWs(hub *RealtimeHub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	client := &Client{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		UserID:  userID,
		Limiter: rate.NewLimiter(rate.Limit(30), 50),
	}
	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}
