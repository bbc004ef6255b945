package service

import "balance_debate/internal/models"

// Broadcaster 是房間邏輯對外發送事件的出口
// 由 WebSocketManager 實作，測試時可注入假的實作
type Broadcaster interface {
	// BroadcastToRoom 發送事件給訂閱該房間的所有連線
	BroadcastToRoom(roomID string, event models.ServerEvent)
	// BroadcastAll 發送房間目錄事件給所有連線，不限房間
	BroadcastAll(event models.ServerEvent)
}
