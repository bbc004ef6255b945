package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"balance_debate/internal/api/handlers"
	"balance_debate/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	roomHandler := handlers.NewRoomHandler(services.Room, services.Message)
	wsHandler := handlers.NewWebSocketHandler(services.WSManager, services.Room, services.Presence, services.Message)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 基本的健康檢查
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// 辯論室相關
	rooms := api.Group("/rooms")
	{
		rooms.GET("", roomHandler.ListRooms)   // 獲取房間列表
		rooms.POST("", roomHandler.CreateRoom) // 創建房間
		rooms.GET("/:id", roomHandler.GetRoom) // 獲取房間信息

		// 聊天記錄
		rooms.GET("/:id/messages", roomHandler.GetMessages)
		rooms.POST("/:id/messages", roomHandler.PostMessage)
	}

	// WebSocket 連接點
	r.GET("/ws", wsHandler.HandleWebSocket)
}
