package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"balance_debate/internal/models"
	"balance_debate/internal/service"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 注意：在生產環境中，應該檢查 origin
	},
}

// WebSocketHandler 處理 WebSocket 連接與事件分發
type WebSocketHandler struct {
	wsManager       *service.WebSocketManager
	roomService     *service.RoomService
	presenceService *service.PresenceService
	messageService  *service.MessageService
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例
func NewWebSocketHandler(wsManager *service.WebSocketManager, roomService *service.RoomService, presenceService *service.PresenceService, messageService *service.MessageService) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:       wsManager,
		roomService:     roomService,
		presenceService: presenceService,
		messageService:  messageService,
	}
}

// HandleWebSocket 處理 WebSocket 連接請求
// 連線建立後由 join_room 事件決定 (房間, 用戶) 的綁定
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "升級WebSocket失敗"})
		return
	}

	client := service.NewClient(conn)
	h.wsManager.Register(client)

	defer func() {
		// 斷線先進入寬限期，寬限期內重連不會被其他成員察覺
		if client.RoomID != "" {
			h.presenceService.Disconnect(client.RoomID, client.UserID)
		}
		h.wsManager.Unregister(client)
		conn.Close()
		close(client.SendChan)
	}()

	go h.wsManager.WritePump(client)
	h.readLoop(client)
}

// readLoop 持續監聽並分發客戶端送入的事件
func (h *WebSocketHandler) readLoop(client *service.Client) {
	client.Conn.SetReadLimit(4096)
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			return
		}

		var event models.ClientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Printf("event parse error: %v", err)
			continue
		}

		switch event.Type {
		case models.EventJoinRoom:
			h.handleJoinRoom(client, event.Data)
		case models.EventSendMessage:
			h.handleSendMessage(client, event.Data)
		case models.EventStartDebate:
			h.handleStartDebate(client, event.Data)
		case models.EventSelectSide:
			h.handleSelectSide(client, event.Data)
		default:
			log.Printf("unknown event type: %s", event.Type)
		}
	}
}

func (h *WebSocketHandler) handleJoinRoom(client *service.Client, data json.RawMessage) {
	var payload models.JoinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	room, err := h.presenceService.Join(payload.RoomID, payload.UserID, payload.Name)
	if err != nil {
		h.sendError(client, err)
		return
	}

	// 同一連線換房：加入新房成功後，先退訂並離開原房間，
	// 否則舊房間會殘留訂閱與幽靈成員
	if client.RoomID != "" && client.RoomID != room.ID {
		h.wsManager.Unsubscribe(client, client.RoomID)
		h.presenceService.Leave(client.RoomID, client.UserID)
	}

	client.RoomID = room.ID
	client.UserID = payload.UserID
	client.Name = payload.Name
	h.wsManager.Subscribe(client, room.ID)

	// 只發給剛加入的連線，讓它同步到目前的房間狀態
	h.wsManager.SendToClient(client, models.ServerEvent{
		Type: models.EventRoomState,
		Data: models.NewRoomState(room, payload.UserID),
	})

	// 訂閱完成後才廣播，剛加入的連線也要收到成員列表
	h.wsManager.BroadcastToRoom(room.ID, models.ServerEvent{
		Type: models.EventRoomUsersUpdate,
		Data: models.RoomUsersUpdatePayload{Users: room.Users, HostID: room.HostID()},
	})
	h.wsManager.BroadcastAll(models.ServerEvent{
		Type: models.EventRoomUpdated,
		Data: models.RoomUpdatedPayload{
			ID:                  room.ID,
			CurrentParticipants: len(room.Users),
			MaxParticipants:     room.Capacity,
		},
	})
}

func (h *WebSocketHandler) handleSendMessage(client *service.Client, data json.RawMessage) {
	var payload models.SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	message := h.messageService.Relay(payload.RoomID, payload.UserID, payload.Name, payload.Text)
	if err := h.messageService.Append(payload.RoomID, message); err != nil {
		log.Printf("failed to append message to room %s: %v", payload.RoomID, err)
	}

	// 發送者本地已做樂觀更新，只廣播給其他成員
	h.wsManager.BroadcastToRoomExcept(payload.RoomID, client, models.ServerEvent{
		Type: models.EventReceiveMessage,
		Data: message,
	})
}

func (h *WebSocketHandler) handleStartDebate(client *service.Client, data json.RawMessage) {
	var payload models.StartDebatePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	if err := h.roomService.StartDebate(payload.RoomID, payload.UserID, payload.Topic); err != nil {
		h.sendError(client, err)
	}
}

func (h *WebSocketHandler) handleSelectSide(client *service.Client, data json.RawMessage) {
	var payload models.SelectSidePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	if err := h.roomService.SelectSide(payload.RoomID, payload.UserID, payload.Side); err != nil {
		h.sendError(client, err)
	}
}

// sendError 把可恢復的錯誤發回原連線，不影響其他成員
func (h *WebSocketHandler) sendError(client *service.Client, err error) {
	h.wsManager.SendToClient(client, models.ServerEvent{
		Type: models.EventError,
		Data: models.ErrorPayload{Message: err.Error()},
	})
}
