package models

import "encoding/json"

// WebSocket 事件名稱
const (
	// 客戶端送入
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
	EventStartDebate = "start_debate"
	EventSelectSide  = "select_side"

	// 伺服器送出
	EventRoomState       = "room_state"        // 只發給剛加入的連線
	EventRoomUsersUpdate = "room_users_update" // 發給房間內所有人
	EventDebateProgress  = "debate_progress"   // 發給房間內所有人
	EventSideUpdate      = "side_update"       // 發給房間內所有人
	EventReceiveMessage  = "receive_message"   // 發給發送者以外的房間成員
	EventError           = "error"             // 只發給單一連線
	EventRoomCreated     = "room_created"      // 發給所有連線
	EventRoomUpdated     = "room_updated"      // 發給所有連線
	EventRoomDeleted     = "room_deleted"      // 發給所有連線
)

// ClientEvent 是客戶端送入事件的統一封裝
type ClientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerEvent 是伺服器送出事件的統一封裝
type ServerEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

type SendMessagePayload struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

type StartDebatePayload struct {
	RoomID string `json:"roomId"`
	Topic  string `json:"topic"`
	UserID string `json:"userId"`
}

type SelectSidePayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Side   Side   `json:"side"`
}

// RoomStatePayload 是加入房間後發給該連線的狀態快照
type RoomStatePayload struct {
	Status                RoomStatus `json:"status"`
	Topic                 string     `json:"topic,omitempty"`
	MainTopic             string     `json:"mainTopic,omitempty"`
	OptionA               string     `json:"optionA,omitempty"`
	OptionB               string     `json:"optionB,omitempty"`
	MySide                Side       `json:"mySide,omitempty"`
	SelectionEndTime      int64      `json:"selectionEndTime,omitempty"`
	DebateEndTime         int64      `json:"debateEndTime,omitempty"`
	FinalSelectionEndTime int64      `json:"finalSelectionEndTime,omitempty"`
	HostID                string     `json:"hostId"`
}

type RoomUsersUpdatePayload struct {
	Users  []RoomUser `json:"users"`
	HostID string     `json:"hostId"`
}

type DebateProgressPayload struct {
	Phase     RoomStatus `json:"phase"`
	Topic     string     `json:"topic,omitempty"`
	MainTopic string     `json:"mainTopic,omitempty"`
	OptionA   string     `json:"optionA,omitempty"`
	OptionB   string     `json:"optionB,omitempty"`
	EndTime   int64      `json:"endTime,omitempty"`
}

type SideUpdatePayload struct {
	UserID string `json:"userId"`
	Side   Side   `json:"side"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type RoomUpdatedPayload struct {
	ID                  string `json:"id"`
	CurrentParticipants int    `json:"currentParticipants"`
	MaxParticipants     int    `json:"maxParticipants"`
}

type RoomDeletedPayload struct {
	RoomID string `json:"roomId"`
}

// NewRoomState 根據房間與用戶組出 room_state 快照
func NewRoomState(room *Room, userID string) RoomStatePayload {
	state := RoomStatePayload{
		Status:                room.Status,
		Topic:                 room.Topic,
		SelectionEndTime:      room.SelectionEndTime,
		DebateEndTime:         room.DebateEndTime,
		FinalSelectionEndTime: room.FinalSelectionEndTime,
		HostID:                room.HostID(),
	}
	if room.Topic != "" {
		parts := ParseTopic(room.Topic)
		state.MainTopic = parts.Main
		state.OptionA = parts.OptionA
		state.OptionB = parts.OptionB
	}
	if u := room.FindUser(userID); u != nil {
		state.MySide = u.Side
	}
	return state
}
