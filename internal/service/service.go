package service

import (
	"balance_debate/internal/repository"
	"balance_debate/pkg/config"
)

type Services struct {
	Room      *RoomService
	Presence  *PresenceService
	Message   *MessageService
	WSManager *WebSocketManager
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	wsManager := NewWebSocketManager()

	roomService := NewRoomService(repos.Room, repos.Message, wsManager, cfg.Debate)
	presenceService := NewPresenceService(roomService, repos.Room, repos.Message, wsManager, cfg.Presence.GracePeriod)
	messageService := NewMessageService(repos.Room, repos.Message)

	return &Services{
		Room:      roomService,
		Presence:  presenceService,
		Message:   messageService,
		WSManager: wsManager,
	}
}
