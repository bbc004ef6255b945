package service

import (
	"log"
	"sync"
	"time"

	"balance_debate/internal/models"
	"balance_debate/internal/repository"
)

// PresenceService 管理用戶的加入、離開與斷線寬限
//
// 斷線不會立刻移除用戶，而是先武裝一個寬限計時器；
// 寬限期內重新加入（例如刷新頁面）會取消計時器，
// 其他成員完全看不到這次斷線。計時器以 (房間, 用戶) 為鍵，
// 重連產生的新連線也能正確對上
type PresenceService struct {
	rooms       *RoomService
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
	broadcaster Broadcaster
	grace       time.Duration

	mu     sync.Mutex
	gen    uint64
	timers map[string]*graceTimer // roomID + "/" + userID
}

// graceTimer 帶世代編號的寬限計時器
// 回呼觸發時比對世代，已被取消或被新計時器取代的回呼不得移除用戶
type graceTimer struct {
	gen   uint64
	timer *time.Timer
}

func NewPresenceService(rooms *RoomService, roomRepo repository.RoomRepository, messageRepo repository.MessageRepository, broadcaster Broadcaster, grace time.Duration) *PresenceService {
	return &PresenceService{
		rooms:       rooms,
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		broadcaster: broadcaster,
		grace:       grace,
		timers:      make(map[string]*graceTimer),
	}
}

func graceKey(roomID, userID string) string {
	return roomID + "/" + userID
}

// Join 讓用戶加入房間，成功時返回加入後的房間快照
// 已在房間內的用戶視為重連，只更新顯示名稱
// 這裡只做狀態變更，加入後的廣播由連線層在訂閱完成後發出，
// 剛加入的連線才收得到自己的 room_users_update
func (s *PresenceService) Join(roomID, userID, name string) (*models.Room, error) {
	s.cancelGrace(roomID, userID)

	mu := s.rooms.lockRoom(roomID)
	defer mu.Unlock()

	room, err := s.roomRepo.FindByID(roomID)
	if err != nil {
		return nil, err
	}

	if user := room.FindUser(userID); user != nil {
		user.Name = name
		if err := s.roomRepo.Update(room); err != nil {
			return nil, err
		}
		return room, nil
	}

	if room.Status == models.RoomStatusDebating {
		return nil, ErrDebateInProgress
	}
	if room.IsFull() {
		return nil, ErrRoomFull
	}

	room.AddUser(userID, name)
	if err := s.roomRepo.Update(room); err != nil {
		return nil, err
	}

	log.Printf("[Presence] user %s joined room %s (%d/%d)",
		userID, roomID, len(room.Users), room.Capacity)
	return room, nil
}

// Disconnect 在連線中斷時呼叫，武裝寬限計時器
// 寬限期內沒有重新加入才會真正離開房間
func (s *PresenceService) Disconnect(roomID, userID string) {
	if roomID == "" || userID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := graceKey(roomID, userID)
	if t, ok := s.timers[key]; ok {
		t.timer.Stop()
	}

	s.gen++
	gen := s.gen
	entry := &graceTimer{gen: gen}
	entry.timer = time.AfterFunc(s.grace, func() {
		s.expireGrace(key, gen, roomID, userID)
	})
	s.timers[key] = entry
}

// expireGrace 寬限期滿的回呼
// Stop 不保證攔得住已經在觸發中的計時器，所以這裡再比對一次世代：
// 計時器已被取消（重連）或被更新的斷線取代時，回呼不做任何事
func (s *PresenceService) expireGrace(key string, gen uint64, roomID, userID string) {
	s.mu.Lock()
	entry, ok := s.timers[key]
	if !ok || entry.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.timers, key)
	s.mu.Unlock()

	s.Leave(roomID, userID)
}

// Leave 將用戶從房間移除
// 最後一位用戶離開時刪除房間、聊天記錄與階段計時器
func (s *PresenceService) Leave(roomID, userID string) {
	s.cancelGrace(roomID, userID)

	mu := s.rooms.lockRoom(roomID)
	defer mu.Unlock()

	room, err := s.roomRepo.FindByID(roomID)
	if err != nil {
		return
	}
	if !room.RemoveUser(userID) {
		return
	}

	if len(room.Users) == 0 {
		s.rooms.CancelPhaseTimer(roomID)
		if err := s.roomRepo.Delete(roomID); err != nil {
			log.Printf("[Presence] failed to delete room %s: %v", roomID, err)
		}
		if err := s.messageRepo.DeleteLog(roomID); err != nil {
			log.Printf("[Presence] failed to delete message log for room %s: %v", roomID, err)
		}
		log.Printf("[Presence] room %s deleted, last user left", roomID)
		s.broadcaster.BroadcastAll(models.ServerEvent{
			Type: models.EventRoomDeleted,
			Data: models.RoomDeletedPayload{RoomID: roomID},
		})
		return
	}

	if err := s.roomRepo.Update(room); err != nil {
		log.Printf("[Presence] failed to save room %s: %v", roomID, err)
		return
	}
	s.broadcastUsers(room)
	s.broadcastOccupancy(room)
}

func (s *PresenceService) cancelGrace(roomID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := graceKey(roomID, userID)
	if t, ok := s.timers[key]; ok {
		t.timer.Stop()
		delete(s.timers, key)
	}
}

func (s *PresenceService) broadcastUsers(room *models.Room) {
	s.broadcaster.BroadcastToRoom(room.ID, models.ServerEvent{
		Type: models.EventRoomUsersUpdate,
		Data: models.RoomUsersUpdatePayload{Users: room.Users, HostID: room.HostID()},
	})
}

// broadcastOccupancy 向所有連線更新房間目錄上的人數
func (s *PresenceService) broadcastOccupancy(room *models.Room) {
	s.broadcaster.BroadcastAll(models.ServerEvent{
		Type: models.EventRoomUpdated,
		Data: models.RoomUpdatedPayload{
			ID:                  room.ID,
			CurrentParticipants: len(room.Users),
			MaxParticipants:     room.Capacity,
		},
	})
}
