package service

import (
	"errors"

	"balance_debate/internal/repository"
)

// 可由呼叫方恢復的錯誤，訊息直接作為 error 事件內容發回原連線
var (
	ErrRoomNotFound     = repository.ErrRoomNotFound
	ErrRoomFull         = errors.New("Room is full")
	ErrDebateInProgress = errors.New("Debate already started")
	ErrNotAuthorized    = errors.New("Only the host can start a debate")
	ErrUserNotFound     = errors.New("User not found")
)
