package repository

import (
	"path/filepath"
	"sync"

	"balance_debate/internal/models"
	"balance_debate/internal/storage"
)

type MessageRepository interface {
	CreateLog(roomID string) error
	HasLog(roomID string) bool
	Append(roomID string, message models.Message) error
	FindByRoom(roomID string) []models.Message
	DeleteLog(roomID string) error
}

// messageRepository 每個房間一個 logs/<roomID>.json，只做尾端追加
type messageRepository struct {
	store *storage.FileStore
	mu    sync.Mutex // 序列化同一房間的追加
}

func NewMessageRepository(store *storage.FileStore) MessageRepository {
	return &messageRepository{store: store}
}

func logFile(roomID string) string {
	return filepath.Join("logs", roomID+".json")
}

// CreateLog 在房間創建時建立空的聊天記錄檔
func (r *messageRepository) CreateLog(roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.WriteJSON(logFile(roomID), []models.Message{})
}

func (r *messageRepository) HasLog(roomID string) bool {
	return r.store.Exists(logFile(roomID))
}

func (r *messageRepository) Append(roomID string, message models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var messages []models.Message
	r.store.ReadJSON(logFile(roomID), &messages)
	messages = append(messages, message)
	return r.store.WriteJSON(logFile(roomID), messages)
}

// FindByRoom 返回房間的所有訊息，記錄檔不存在或損壞時返回空列表
func (r *messageRepository) FindByRoom(roomID string) []models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages := []models.Message{}
	r.store.ReadJSON(logFile(roomID), &messages)
	return messages
}

func (r *messageRepository) DeleteLog(roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Remove(logFile(roomID))
}
