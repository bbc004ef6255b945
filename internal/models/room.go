package models

// RoomStatus 定義房間狀態的類型
type RoomStatus string

const (
	RoomStatusWaiting        RoomStatus = "waiting"
	RoomStatusSelecting      RoomStatus = "selecting"
	RoomStatusDebating       RoomStatus = "debating"
	RoomStatusFinalSelecting RoomStatus = "final_selecting"
)

// Side 代表用戶在辯論中選擇的立場
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// RoomUser 代表房間內的一個成員
// Users 切片保留加入順序，第一位即為房主
type RoomUser struct {
	ID   string `json:"userId"`
	Name string `json:"name"`
	Side Side   `json:"side,omitempty"`
}

// Room 表示一個辯論房間
// 階段截止時間以 unix 毫秒存儲，0 表示該階段未啟用
type Room struct {
	ID                    string     `json:"id"`
	Title                 string     `json:"title"`
	Capacity              int        `json:"participants"` // 最大人數，創建後不變
	Status                RoomStatus `json:"status"`
	Topic                 string     `json:"topic,omitempty"`
	SelectionEndTime      int64      `json:"selectionEndTime,omitempty"`
	DebateEndTime         int64      `json:"debateEndTime,omitempty"`
	FinalSelectionEndTime int64      `json:"finalSelectionEndTime,omitempty"`
	Users                 []RoomUser `json:"users"`
}

// HostID 返回房主的用戶 ID，即最早加入且仍在房間內的用戶
func (r *Room) HostID() string {
	if len(r.Users) == 0 {
		return ""
	}
	return r.Users[0].ID
}

// FindUser 返回指定用戶的指針，找不到時返回 nil
func (r *Room) FindUser(userID string) *RoomUser {
	for i := range r.Users {
		if r.Users[i].ID == userID {
			return &r.Users[i]
		}
	}
	return nil
}

// AddUser 將新用戶加到成員列表尾端
func (r *Room) AddUser(userID, name string) {
	r.Users = append(r.Users, RoomUser{ID: userID, Name: name})
}

// RemoveUser 移除指定用戶，返回是否有移除
func (r *Room) RemoveUser(userID string) bool {
	for i := range r.Users {
		if r.Users[i].ID == userID {
			r.Users = append(r.Users[:i], r.Users[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Room) IsFull() bool {
	return len(r.Users) >= r.Capacity
}

// AutoAssignSides 把尚未選邊的用戶指定為 A 方
// 進入辯論階段時呼叫，避免因未選擇的用戶卡住辯論
func (r *Room) AutoAssignSides() {
	for i := range r.Users {
		if r.Users[i].Side == "" {
			r.Users[i].Side = SideA
		}
	}
}

// ResetDebate 清除題目、所有階段截止時間與所有用戶的立場
// 讓房間回到 waiting，下一場辯論從乾淨狀態開始
func (r *Room) ResetDebate() {
	r.Status = RoomStatusWaiting
	r.Topic = ""
	r.SelectionEndTime = 0
	r.DebateEndTime = 0
	r.FinalSelectionEndTime = 0
	for i := range r.Users {
		r.Users[i].Side = ""
	}
}
