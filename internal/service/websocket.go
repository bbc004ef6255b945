package service

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"balance_debate/internal/models"
)

// Client 代表一個 WebSocket 客戶端連接
// RoomID / UserID 在成功加入房間後才會被設置
type Client struct {
	ID       string                  // 連線 ID
	Conn     *websocket.Conn         // WebSocket 連接
	RoomID   string                  // 加入的房間
	UserID   string                  // 用戶 ID（客戶端自報，不驗證）
	Name     string                  // 顯示名稱
	SendChan chan models.ServerEvent // 事件發送通道，用於異步傳送
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Conn:     conn,
		SendChan: make(chan models.ServerEvent, 256),
	}
}

// WebSocketManager 管理所有的 WebSocket 連接和事件廣播
// 實作 Broadcaster 介面
type WebSocketManager struct {
	mu      sync.RWMutex
	clients map[*Client]bool            // 所有連線，含尚未加入房間的
	rooms   map[string]map[*Client]bool // roomID -> 訂閱該房間的連線
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
	}
}

// Register 登記新連線，讓它開始收到全域目錄事件
func (m *WebSocketManager) Register(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client] = true
}

// Subscribe 讓連線訂閱房間事件，在成功加入房間後呼叫
func (m *WebSocketManager) Subscribe(client *Client, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rooms[roomID] == nil {
		m.rooms[roomID] = make(map[*Client]bool)
	}
	m.rooms[roomID][client] = true
}

// Unsubscribe 取消連線對單一房間的訂閱，同一連線換房時呼叫
func (m *WebSocketManager) Unsubscribe(client *Client, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if subs, ok := m.rooms[roomID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(m.rooms, roomID)
		}
	}
}

// Unregister 移除連線
// 不依賴 client.RoomID，從所有房間的訂閱中移除，
// 確保返回後不會再有任何事件寫入該連線的 SendChan
func (m *WebSocketManager) Unregister(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.clients, client)
	for roomID, subs := range m.rooms {
		if _, ok := subs[client]; !ok {
			continue
		}
		delete(subs, client)
		if len(subs) == 0 {
			delete(m.rooms, roomID)
		}
	}
}

// BroadcastToRoom 向房間內的所有連線廣播事件
func (m *WebSocketManager) BroadcastToRoom(roomID string, event models.ServerEvent) {
	m.sendAll(func() map[*Client]bool { return m.rooms[roomID] }, nil, event)
}

// BroadcastToRoomExcept 廣播給房間內發送者以外的連線
// 聊天訊息用：發送者本地已做樂觀更新，不能再收到自己的訊息
func (m *WebSocketManager) BroadcastToRoomExcept(roomID string, sender *Client, event models.ServerEvent) {
	m.sendAll(func() map[*Client]bool { return m.rooms[roomID] }, sender, event)
}

// BroadcastAll 向所有連線廣播房間目錄事件，不限房間
func (m *WebSocketManager) BroadcastAll(event models.ServerEvent) {
	m.sendAll(func() map[*Client]bool { return m.clients }, nil, event)
}

// SendToClient 只向單一連線發送，用於錯誤與初始狀態快照
func (m *WebSocketManager) SendToClient(client *Client, event models.ServerEvent) {
	select {
	case client.SendChan <- event:
	default:
		log.Printf("[WebSocket] client %s send buffer full, dropping event %s", client.ID, event.Type)
	}
}

// sendAll 在讀鎖內投遞事件，寫不進去的連線視為過慢，事後移除
func (m *WebSocketManager) sendAll(pick func() map[*Client]bool, except *Client, event models.ServerEvent) {
	m.mu.RLock()
	var slow []*Client
	for client := range pick() {
		if client == except {
			continue
		}
		select {
		case client.SendChan <- event:
		default:
			slow = append(slow, client)
		}
	}
	m.mu.RUnlock()

	for _, client := range slow {
		log.Printf("[WebSocket] client %s too slow, dropping connection", client.ID)
		m.Unregister(client)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
}

// WritePump 處理向客戶端發送事件的邏輯，每個連線一個 goroutine
func (m *WebSocketManager) WritePump(client *Client) {
	// 心跳計時器
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
