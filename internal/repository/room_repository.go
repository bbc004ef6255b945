package repository

import (
	"errors"
	"sync"

	"balance_debate/internal/models"
	"balance_debate/internal/storage"
)

// ErrRoomNotFound 在房間不存在時返回，訊息直接用於 error 事件
var ErrRoomNotFound = errors.New("Room not found")

const roomsFile = "rooms.json"

type RoomRepository interface {
	FindAll() []models.Room
	FindByID(id string) (*models.Room, error)
	Create(room *models.Room) error
	Update(room *models.Room) error
	Delete(id string) error
}

// roomRepository 把所有房間存在單一 rooms.json
// 內部鎖讓每次「讀全部、改一間、寫回」不會互相覆蓋；
// 同一房間上層邏輯的讀改寫序列由 service 層的房間鎖保護
type roomRepository struct {
	store *storage.FileStore
	mu    sync.Mutex
}

func NewRoomRepository(store *storage.FileStore) RoomRepository {
	return &roomRepository{store: store}
}

func (r *roomRepository) readAll() []models.Room {
	var rooms []models.Room
	r.store.ReadJSON(roomsFile, &rooms)
	return rooms
}

// FindAll 返回所有房間，檔案不存在或損壞時返回空列表
func (r *roomRepository) FindAll() []models.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readAll()
}

func (r *roomRepository) FindByID(id string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.readAll() {
		if room.ID == id {
			return &room, nil
		}
	}
	return nil, ErrRoomNotFound
}

func (r *roomRepository) Create(room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := append(r.readAll(), *room)
	return r.store.WriteJSON(roomsFile, rooms)
}

func (r *roomRepository) Update(room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := r.readAll()
	for i := range rooms {
		if rooms[i].ID == room.ID {
			rooms[i] = *room
			return r.store.WriteJSON(roomsFile, rooms)
		}
	}
	return ErrRoomNotFound
}

func (r *roomRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := r.readAll()
	kept := rooms[:0]
	for _, room := range rooms {
		if room.ID != id {
			kept = append(kept, room)
		}
	}
	return r.store.WriteJSON(roomsFile, kept)
}
