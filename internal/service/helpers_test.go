package service

import (
	"sync"
	"testing"
	"time"

	"balance_debate/internal/models"
	"balance_debate/internal/repository"
	"balance_debate/internal/storage"
	"balance_debate/pkg/config"
)

// fakeBroadcaster 記錄所有廣播事件，供測試檢查
type fakeBroadcaster struct {
	mu     sync.Mutex
	room   map[string][]models.ServerEvent
	global []models.ServerEvent
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{room: make(map[string][]models.ServerEvent)}
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, event models.ServerEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.room[roomID] = append(b.room[roomID], event)
}

func (b *fakeBroadcaster) BroadcastAll(event models.ServerEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = append(b.global, event)
}

func (b *fakeBroadcaster) roomEvents(roomID, eventType string) []models.ServerEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []models.ServerEvent
	for _, ev := range b.room[roomID] {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func (b *fakeBroadcaster) globalEvents(eventType string) []models.ServerEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []models.ServerEvent
	for _, ev := range b.global {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

type testEnv struct {
	rooms    *RoomService
	presence *PresenceService
	messages *MessageService
	repos    *repository.Repositories
	bc       *fakeBroadcaster
}

// newTestEnv 建立以暫存目錄為後端的完整服務組合
func newTestEnv(t *testing.T, selection, debate, grace time.Duration) *testEnv {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	repos := repository.NewRepositories(store)
	bc := newFakeBroadcaster()

	debateCfg := config.DebateConfig{SelectionWindow: selection, DebateWindow: debate}
	rooms := NewRoomService(repos.Room, repos.Message, bc, debateCfg)
	presence := NewPresenceService(rooms, repos.Room, repos.Message, bc, grace)
	messages := NewMessageService(repos.Room, repos.Message)

	return &testEnv{
		rooms:    rooms,
		presence: presence,
		messages: messages,
		repos:    repos,
		bc:       bc,
	}
}

// waitForStatus 輪詢房間直到進入指定狀態，超時直接讓測試失敗
func waitForStatus(t *testing.T, repo repository.RoomRepository, roomID string, want models.RoomStatus, within time.Duration) *models.Room {
	t.Helper()

	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if room, err := repo.FindByID(roomID); err == nil && room.Status == want {
			return room
		}
		time.Sleep(5 * time.Millisecond)
	}
	room, err := repo.FindByID(roomID)
	if err != nil {
		t.Fatalf("timed out waiting for room %s to reach %q: room not found", roomID, want)
	}
	t.Fatalf("timed out waiting for room %s to reach %q, still %q", roomID, want, room.Status)
	return nil
}

// mustJoin 加入房間並在失敗時中止測試
func mustJoin(t *testing.T, env *testEnv, roomID, userID, name string) *models.Room {
	t.Helper()

	room, err := env.presence.Join(roomID, userID, name)
	if err != nil {
		t.Fatalf("join %s failed: %v", userID, err)
	}
	return room
}

// mustCreateRoom 創建房間並在失敗時中止測試
func mustCreateRoom(t *testing.T, env *testEnv, title string, capacity int) *models.Room {
	t.Helper()

	room, err := env.rooms.CreateRoom(title, capacity)
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}
	return room
}
