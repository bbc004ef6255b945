package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"balance_debate/internal/service"
)

// RoomHandler 處理與辯論房間相關的 HTTP 請求
type RoomHandler struct {
	roomService    *service.RoomService
	messageService *service.MessageService
}

// NewRoomHandler 創建一個新的 RoomHandler 實例
func NewRoomHandler(roomService *service.RoomService, messageService *service.MessageService) *RoomHandler {
	return &RoomHandler{
		roomService:    roomService,
		messageService: messageService,
	}
}

// CreateRoom 處理創建新房間的請求
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var input struct {
		Title        string `json:"title" binding:"required"`
		Participants int    `json:"participants"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.roomService.CreateRoom(input.Title, input.Participants)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "創建房間失敗"})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// ListRooms 處理獲取房間列表的請求
func (h *RoomHandler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.roomService.ListRooms())
}

// GetRoom 處理獲取單一房間訊息的請求
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomService.GetRoom(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
		return
	}

	c.JSON(http.StatusOK, room)
}

// GetMessages 處理獲取房間聊天記錄的請求
func (h *RoomHandler) GetMessages(c *gin.Context) {
	c.JSON(http.StatusOK, h.messageService.History(c.Param("id")))
}

// PostMessage 處理寫入聊天訊息的請求
// 文字內容只檢查非空，其餘不做驗證
func (h *RoomHandler) PostMessage(c *gin.Context) {
	var input struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
		Text   string `json:"text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(input.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text 為必填"})
		return
	}

	roomID := c.Param("id")
	message := h.messageService.Relay(roomID, input.UserID, input.Name, input.Text)
	if err := h.messageService.Append(roomID, message); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "房間不存在"})
		return
	}

	c.JSON(http.StatusOK, message)
}
