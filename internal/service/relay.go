package service

import (
	"balance_debate/internal/models"
	"balance_debate/internal/repository"
)

// MessageService 負責聊天訊息的轉發與記錄
type MessageService struct {
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
}

func NewMessageService(roomRepo repository.RoomRepository, messageRepo repository.MessageRepository) *MessageService {
	return &MessageService{roomRepo: roomRepo, messageRepo: messageRepo}
}

// Relay 組出要轉發的訊息，附上發送者當下的立場快照
// 只讀取房間狀態，不做持久化
func (s *MessageService) Relay(roomID, userID, name, text string) models.Message {
	var side models.Side
	if room, err := s.roomRepo.FindByID(roomID); err == nil {
		if user := room.FindUser(userID); user != nil {
			side = user.Side
		}
	}
	return models.NewMessage(userID, name, text, side)
}

// Append 把訊息寫入房間的聊天記錄
func (s *MessageService) Append(roomID string, message models.Message) error {
	if !s.messageRepo.HasLog(roomID) {
		return ErrRoomNotFound
	}
	return s.messageRepo.Append(roomID, message)
}

// History 返回房間的聊天記錄，記錄不存在時為空列表
func (s *MessageService) History(roomID string) []models.Message {
	return s.messageRepo.FindByRoom(roomID)
}
