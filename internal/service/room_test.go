package service

import (
	"errors"
	"testing"
	"time"

	"balance_debate/internal/models"
)

func TestStartDebateRequiresHost(t *testing.T) {
	env := newTestEnv(t, 50*time.Millisecond, 50*time.Millisecond, 20*time.Millisecond)
	room := mustCreateRoom(t, env, "host test", 3)
	mustJoin(t, env, room.ID, "u1", "Alice")
	mustJoin(t, env, room.ID, "u2", "Bob")
	mustJoin(t, env, room.ID, "u3", "Carol")

	err := env.rooms.StartDebate(room.ID, "u3", "Coffee vs Tea")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	got, err := env.repos.Room.FindByID(room.ID)
	if err != nil {
		t.Fatalf("room lookup failed: %v", err)
	}
	if got.Status != models.RoomStatusWaiting {
		t.Fatalf("room status changed to %q, want waiting", got.Status)
	}
}

func TestStartDebateIsNoOpOutsideWaiting(t *testing.T) {
	env := newTestEnv(t, time.Hour, time.Hour, 20*time.Millisecond)
	room := mustCreateRoom(t, env, "double start", 2)
	mustJoin(t, env, room.ID, "u1", "Alice")

	if err := env.rooms.StartDebate(room.ID, "u1", "Coffee vs Tea"); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	// 第二次發起不報錯、不重置截止時間
	first, _ := env.repos.Room.FindByID(room.ID)
	if err := env.rooms.StartDebate(room.ID, "u1", "Cats vs Dogs"); err != nil {
		t.Fatalf("second start returned error: %v", err)
	}

	got, _ := env.repos.Room.FindByID(room.ID)
	if got.Topic != "Coffee vs Tea" {
		t.Fatalf("topic overwritten by second start: %q", got.Topic)
	}
	if got.SelectionEndTime != first.SelectionEndTime {
		t.Fatalf("selection deadline re-armed by second start")
	}
	if n := len(env.bc.roomEvents(room.ID, models.EventDebateProgress)); n != 1 {
		t.Fatalf("expected exactly 1 debate_progress event, got %d", n)
	}
}

func TestStartDebateUnknownRoom(t *testing.T) {
	env := newTestEnv(t, time.Hour, time.Hour, 20*time.Millisecond)

	if err := env.rooms.StartDebate("missing", "u1", "Coffee vs Tea"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

// 完整週期：waiting -> selecting -> debating -> final_selecting -> waiting
func TestDebateFullCycle(t *testing.T) {
	env := newTestEnv(t, 40*time.Millisecond, 60*time.Millisecond, 20*time.Millisecond)
	room := mustCreateRoom(t, env, "full cycle", 2)
	mustJoin(t, env, room.ID, "u1", "Alice")
	mustJoin(t, env, room.ID, "u2", "Bob")

	if err := env.rooms.SelectSide(room.ID, "u2", models.SideB); err != nil {
		t.Fatalf("select side failed: %v", err)
	}

	if err := env.rooms.StartDebate(room.ID, "u1", "Tea|Coffee vs Tea"); err != nil {
		t.Fatalf("start debate failed: %v", err)
	}

	got, _ := env.repos.Room.FindByID(room.ID)
	if got.Status != models.RoomStatusSelecting {
		t.Fatalf("status = %q, want selecting", got.Status)
	}
	if got.Topic != "Tea|Coffee vs Tea" {
		t.Fatalf("topic = %q", got.Topic)
	}
	if got.SelectionEndTime == 0 {
		t.Fatalf("selection deadline not set")
	}

	// 選邊時間到：未選邊的 u1 自動成為 A 方，u2 保持 B 方
	got = waitForStatus(t, env.repos.Room, room.ID, models.RoomStatusDebating, time.Second)
	if side := got.FindUser("u1").Side; side != models.SideA {
		t.Fatalf("u1 side = %q, want auto-assigned A", side)
	}
	if side := got.FindUser("u2").Side; side != models.SideB {
		t.Fatalf("u2 side = %q, want B", side)
	}
	if got.SelectionEndTime != 0 {
		t.Fatalf("selection deadline not cleared on phase exit")
	}
	if got.DebateEndTime == 0 {
		t.Fatalf("debate deadline not set")
	}

	got = waitForStatus(t, env.repos.Room, room.ID, models.RoomStatusFinalSelecting, time.Second)
	if got.DebateEndTime != 0 {
		t.Fatalf("debate deadline not cleared on phase exit")
	}
	if got.FinalSelectionEndTime == 0 {
		t.Fatalf("final selection deadline not set")
	}

	// 週期結束：題目、截止時間與立場全部清空
	got = waitForStatus(t, env.repos.Room, room.ID, models.RoomStatusWaiting, time.Second)
	if got.Topic != "" {
		t.Fatalf("topic not cleared: %q", got.Topic)
	}
	if got.SelectionEndTime != 0 || got.DebateEndTime != 0 || got.FinalSelectionEndTime != 0 {
		t.Fatalf("deadlines not cleared: %+v", got)
	}
	for _, u := range got.Users {
		if u.Side != "" {
			t.Fatalf("user %s side not cleared: %q", u.ID, u.Side)
		}
	}
}

func TestSelectSideErrors(t *testing.T) {
	env := newTestEnv(t, time.Hour, time.Hour, 20*time.Millisecond)
	room := mustCreateRoom(t, env, "side errors", 2)
	mustJoin(t, env, room.ID, "u1", "Alice")

	if err := env.rooms.SelectSide("missing", "u1", models.SideA); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if err := env.rooms.SelectSide(room.ID, "stranger", models.SideA); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// waiting 期間選的立場沒有階段檢查，會延續到下一場辯論
func TestSideChosenWhileWaitingCarriesOver(t *testing.T) {
	env := newTestEnv(t, 30*time.Millisecond, time.Hour, 20*time.Millisecond)
	room := mustCreateRoom(t, env, "carry over", 2)
	mustJoin(t, env, room.ID, "u1", "Alice")
	mustJoin(t, env, room.ID, "u2", "Bob")

	if err := env.rooms.SelectSide(room.ID, "u2", models.SideB); err != nil {
		t.Fatalf("select side failed: %v", err)
	}
	if err := env.rooms.StartDebate(room.ID, "u1", "Coffee vs Tea"); err != nil {
		t.Fatalf("start debate failed: %v", err)
	}

	got := waitForStatus(t, env.repos.Room, room.ID, models.RoomStatusDebating, time.Second)
	if side := got.FindUser("u2").Side; side != models.SideB {
		t.Fatalf("u2 side = %q, want pre-selected B", side)
	}
}

// 房間在計時器觸發前被清空刪除，過期的計時器必須是 no-op
func TestStalePhaseTimerIsNoOp(t *testing.T) {
	env := newTestEnv(t, 50*time.Millisecond, time.Hour, time.Millisecond)
	room := mustCreateRoom(t, env, "stale timer", 2)
	mustJoin(t, env, room.ID, "u1", "Alice")

	if err := env.rooms.StartDebate(room.ID, "u1", "Coffee vs Tea"); err != nil {
		t.Fatalf("start debate failed: %v", err)
	}
	env.presence.Leave(room.ID, "u1")

	if _, err := env.repos.Room.FindByID(room.ID); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("room should be deleted, got %v", err)
	}

	time.Sleep(120 * time.Millisecond)

	if _, err := env.repos.Room.FindByID(room.ID); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("stale timer resurrected room: %v", err)
	}
	for _, ev := range env.bc.roomEvents(room.ID, models.EventDebateProgress) {
		if p, ok := ev.Data.(models.DebateProgressPayload); ok && p.Phase == models.RoomStatusDebating {
			t.Fatalf("stale timer fired a debating transition")
		}
	}
}

// debate_progress 附帶拆解後的題目，客戶端不需要自己解析
func TestDebateProgressCarriesParsedTopic(t *testing.T) {
	env := newTestEnv(t, time.Hour, time.Hour, 20*time.Millisecond)
	room := mustCreateRoom(t, env, "parsed topic", 2)
	mustJoin(t, env, room.ID, "u1", "Alice")

	if err := env.rooms.StartDebate(room.ID, "u1", "Tea|Coffee vs Tea"); err != nil {
		t.Fatalf("start debate failed: %v", err)
	}

	events := env.bc.roomEvents(room.ID, models.EventDebateProgress)
	if len(events) != 1 {
		t.Fatalf("expected 1 debate_progress event, got %d", len(events))
	}
	p, ok := events[0].Data.(models.DebateProgressPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", events[0].Data)
	}
	if p.Topic != "Tea|Coffee vs Tea" {
		t.Fatalf("topic = %q", p.Topic)
	}
	if p.MainTopic != "Tea" || p.OptionA != "Coffee" || p.OptionB != "Tea" {
		t.Fatalf("parsed topic = %q / %q / %q", p.MainTopic, p.OptionA, p.OptionB)
	}
}

func TestCreateRoomDefaultsAndDirectoryEvent(t *testing.T) {
	env := newTestEnv(t, time.Hour, time.Hour, 20*time.Millisecond)

	room := mustCreateRoom(t, env, "defaults", 0)
	if room.Capacity != 2 {
		t.Fatalf("capacity = %d, want default 2", room.Capacity)
	}
	if room.Status != models.RoomStatusWaiting {
		t.Fatalf("status = %q, want waiting", room.Status)
	}
	if !env.repos.Message.HasLog(room.ID) {
		t.Fatalf("message log not created with room")
	}
	if n := len(env.bc.globalEvents(models.EventRoomCreated)); n != 1 {
		t.Fatalf("expected 1 room_created event, got %d", n)
	}
}
