package service

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"balance_debate/internal/models"
	"balance_debate/internal/repository"
	"balance_debate/pkg/config"
)

// RoomService 負責房間的生命週期：
//
//	waiting --startDebate--> selecting --timeout--> debating
//	  --timeout--> final_selecting --timeout--> waiting
//
// 每個房間同時只有一個待觸發的階段計時器，轉換時重新武裝。
// 計時器觸發時會重讀房間並確認仍在預期階段，房間被清空或重置時自動失效。
type RoomService struct {
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository
	broadcaster Broadcaster
	cfg         config.DebateConfig

	locks sync.Map // roomID -> *sync.Mutex

	timersMu sync.Mutex
	timers   map[string]*time.Timer // roomID -> 待觸發的階段計時器
}

func NewRoomService(roomRepo repository.RoomRepository, messageRepo repository.MessageRepository, broadcaster Broadcaster, cfg config.DebateConfig) *RoomService {
	return &RoomService{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		broadcaster: broadcaster,
		cfg:         cfg,
		timers:      make(map[string]*time.Timer),
	}
}

// lockRoom 取得指定房間的互斥鎖並上鎖
// 所有對同一房間的讀改寫序列都必須先經過這裡，避免交錯造成更新遺失
func (s *RoomService) lockRoom(roomID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(roomID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu
}

// CreateRoom 創建新房間並廣播 room_created 目錄事件
func (s *RoomService) CreateRoom(title string, capacity int) (*models.Room, error) {
	if capacity <= 0 {
		capacity = 2
	}

	room := &models.Room{
		ID:       uuid.NewString(),
		Title:    title,
		Capacity: capacity,
		Status:   models.RoomStatusWaiting,
		Users:    []models.RoomUser{},
	}

	if err := s.roomRepo.Create(room); err != nil {
		return nil, err
	}
	if err := s.messageRepo.CreateLog(room.ID); err != nil {
		log.Printf("[RoomService] failed to create message log for room %s: %v", room.ID, err)
	}

	s.broadcaster.BroadcastAll(models.ServerEvent{Type: models.EventRoomCreated, Data: room})
	return room, nil
}

func (s *RoomService) ListRooms() []models.Room {
	return s.roomRepo.FindAll()
}

func (s *RoomService) GetRoom(roomID string) (*models.Room, error) {
	return s.roomRepo.FindByID(roomID)
}

// StartDebate 由房主發起辯論，進入 selecting 階段
// 只有房主可以發起；房間不在 waiting 時不做任何事，
// 因此並發的重複發起不會重複武裝計時器
func (s *RoomService) StartDebate(roomID, userID, topic string) error {
	mu := s.lockRoom(roomID)
	defer mu.Unlock()

	room, err := s.roomRepo.FindByID(roomID)
	if err != nil {
		return err
	}

	if room.HostID() != userID {
		return ErrNotAuthorized
	}
	if room.Status != models.RoomStatusWaiting {
		return nil
	}

	room.Status = models.RoomStatusSelecting
	room.Topic = topic
	room.SelectionEndTime = time.Now().Add(s.cfg.SelectionWindow).UnixMilli()

	if err := s.roomRepo.Update(room); err != nil {
		return err
	}

	parts := models.ParseTopic(topic)
	log.Printf("[RoomService] room %s debate started: %q (A: %s / B: %s)",
		roomID, topic, parts.OptionA, parts.OptionB)

	s.broadcastProgress(room, room.SelectionEndTime)
	s.armPhaseTimer(roomID, s.cfg.SelectionWindow, s.beginDebating)
	return nil
}

// SelectSide 記錄用戶最新的立場選擇
// 不檢查目前階段，waiting 期間的選擇會延續到下一場辯論開始
func (s *RoomService) SelectSide(roomID, userID string, side models.Side) error {
	mu := s.lockRoom(roomID)
	defer mu.Unlock()

	room, err := s.roomRepo.FindByID(roomID)
	if err != nil {
		return err
	}

	user := room.FindUser(userID)
	if user == nil {
		return ErrUserNotFound
	}
	user.Side = side

	if err := s.roomRepo.Update(room); err != nil {
		return err
	}

	s.broadcaster.BroadcastToRoom(roomID, models.ServerEvent{
		Type: models.EventSideUpdate,
		Data: models.SideUpdatePayload{UserID: userID, Side: side},
	})
	return nil
}

// beginDebating 選邊時間到，進入 debating 階段
// 尚未選邊的用戶此時自動指定為 A 方
func (s *RoomService) beginDebating(roomID string) {
	mu := s.lockRoom(roomID)
	defer mu.Unlock()

	room, err := s.roomRepo.FindByID(roomID)
	if err != nil || room.Status != models.RoomStatusSelecting {
		// 房間已被刪除或重置，過期的計時器不做任何事
		return
	}

	room.Status = models.RoomStatusDebating
	room.SelectionEndTime = 0
	room.DebateEndTime = time.Now().Add(s.cfg.DebateWindow).UnixMilli()
	room.AutoAssignSides()

	if err := s.roomRepo.Update(room); err != nil {
		log.Printf("[RoomService] failed to save room %s: %v", roomID, err)
		return
	}

	s.broadcastProgress(room, room.DebateEndTime)
	s.broadcastUsers(room)
	s.armPhaseTimer(roomID, s.cfg.DebateWindow, s.beginFinalSelection)
}

// beginFinalSelection 辯論時間到，進入最終選邊階段
func (s *RoomService) beginFinalSelection(roomID string) {
	mu := s.lockRoom(roomID)
	defer mu.Unlock()

	room, err := s.roomRepo.FindByID(roomID)
	if err != nil || room.Status != models.RoomStatusDebating {
		return
	}

	room.Status = models.RoomStatusFinalSelecting
	room.DebateEndTime = 0
	room.FinalSelectionEndTime = time.Now().Add(s.cfg.SelectionWindow).UnixMilli()

	if err := s.roomRepo.Update(room); err != nil {
		log.Printf("[RoomService] failed to save room %s: %v", roomID, err)
		return
	}

	s.broadcastProgress(room, room.FinalSelectionEndTime)
	s.armPhaseTimer(roomID, s.cfg.SelectionWindow, s.endDebate)
}

// endDebate 最終選邊結束，房間回到 waiting
// 題目、截止時間與所有用戶的立場都會被清除
func (s *RoomService) endDebate(roomID string) {
	mu := s.lockRoom(roomID)
	defer mu.Unlock()

	room, err := s.roomRepo.FindByID(roomID)
	if err != nil || room.Status != models.RoomStatusFinalSelecting {
		return
	}

	room.ResetDebate()

	if err := s.roomRepo.Update(room); err != nil {
		log.Printf("[RoomService] failed to save room %s: %v", roomID, err)
		return
	}

	log.Printf("[RoomService] room %s debate finished", roomID)
	s.broadcastProgress(room, 0)
	s.broadcastUsers(room)
}

// armPhaseTimer 武裝房間的階段計時器，取代先前未觸發的那一個
func (s *RoomService) armPhaseTimer(roomID string, d time.Duration, next func(roomID string)) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if t, ok := s.timers[roomID]; ok {
		t.Stop()
	}
	s.timers[roomID] = time.AfterFunc(d, func() {
		next(roomID)
	})
}

// CancelPhaseTimer 取消房間的階段計時器，房間刪除時呼叫
// 即使取消晚了一步，計時器回呼的階段確認也會讓它變成 no-op
func (s *RoomService) CancelPhaseTimer(roomID string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if t, ok := s.timers[roomID]; ok {
		t.Stop()
		delete(s.timers, roomID)
	}
}

// broadcastProgress 把階段與題目廣播給房間成員
// 題目同時附上拆解後的主題與兩個選項，客戶端不必自己解析
func (s *RoomService) broadcastProgress(room *models.Room, endTime int64) {
	parts := models.ParseTopic(room.Topic)
	s.broadcaster.BroadcastToRoom(room.ID, models.ServerEvent{
		Type: models.EventDebateProgress,
		Data: models.DebateProgressPayload{
			Phase:     room.Status,
			Topic:     room.Topic,
			MainTopic: parts.Main,
			OptionA:   parts.OptionA,
			OptionB:   parts.OptionB,
			EndTime:   endTime,
		},
	})
}

func (s *RoomService) broadcastUsers(room *models.Room) {
	s.broadcaster.BroadcastToRoom(room.ID, models.ServerEvent{
		Type: models.EventRoomUsersUpdate,
		Data: models.RoomUsersUpdatePayload{Users: room.Users, HostID: room.HostID()},
	})
}
