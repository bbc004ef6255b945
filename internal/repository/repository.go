package repository

import "balance_debate/internal/storage"

type Repositories struct {
	Room    RoomRepository
	Message MessageRepository
}

func NewRepositories(store *storage.FileStore) *Repositories {
	return &Repositories{
		Room:    NewRoomRepository(store),
		Message: NewMessageRepository(store),
	}
}
