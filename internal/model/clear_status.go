package model

import (
	"strings"
	"time"
)

// ClearStatus 对应 clear_status 表：用户 × 作品 × 难易度 的粗粒度通关状态。
// ClearCount 表示累计通关次数，只增不减。
type ClearStatus struct {
	ID              uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          uint64     `gorm:"column:user_id;not null;uniqueIndex:ux_clear_status_key,priority:1"`
	GameID          uint64     `gorm:"column:game_id;not null;uniqueIndex:ux_clear_status_key,priority:2"`
	Difficulty      string     `gorm:"column:difficulty;type:varchar(16);not null;uniqueIndex:ux_clear_status_key,priority:3"`
	IsCleared       bool       `gorm:"column:is_cleared;not null;default:false"`
	ClearedAt       *time.Time `gorm:"column:cleared_at"`
	NoContinueClear bool       `gorm:"column:no_continue_clear;not null;default:false"`
	NoBombClear     bool       `gorm:"column:no_bomb_clear;not null;default:false"`
	NoMissClear     bool       `gorm:"column:no_miss_clear;not null;default:false"`
	Score           *int64     `gorm:"column:score"`
	Memo            *string    `gorm:"column:memo;type:text"`
	ClearCount      int        `gorm:"column:clear_count;not null;default:0"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (ClearStatus) TableName() string { return "clear_status" }

// NewClearStatus 初始状态为 NOT_CLEARED
func NewClearStatus(userID, gameID uint64, difficulty string) (*ClearStatus, error) {
	s := &ClearStatus{
		UserID:     userID,
		GameID:     gameID,
		Difficulty: strings.TrimSpace(difficulty),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate 检查不变量：cleared 必须带 cleared_at，score/clear_count 非负
func (s *ClearStatus) Validate() error {
	if s.GameID == 0 {
		return NewValidationError("game_id", "game id must be positive")
	}
	if s.UserID == 0 {
		return NewValidationError("user_id", "user id must be positive")
	}
	if s.Difficulty == "" {
		return NewValidationError("difficulty", "difficulty cannot be empty")
	}
	if s.IsCleared && s.ClearedAt == nil {
		return NewValidationError("cleared_at", "cleared_at is required when is_cleared is true")
	}
	if s.Score != nil && *s.Score < 0 {
		return NewValidationError("score", "score must be non-negative")
	}
	if s.ClearCount < 0 {
		return NewValidationError("clear_count", "clear count must be non-negative")
	}
	return nil
}

// ClearAction ClearStatus 的状态迁移动作，只有 MarkCleared 与 MarkNotCleared 两种
type ClearAction interface {
	apply(s ClearStatus, now time.Time) ClearStatus
}

// MarkCleared NOT_CLEARED/CLEARED -> CLEARED，每次都会使 ClearCount +1
type MarkCleared struct {
	NoContinue bool
	NoBomb     bool
	NoMiss     bool
	Score      *int64 // nil 时保留原分数
}

func (a MarkCleared) apply(s ClearStatus, now time.Time) ClearStatus {
	t := now
	s.IsCleared = true
	s.ClearedAt = &t
	s.NoContinueClear = a.NoContinue
	s.NoBombClear = a.NoBomb
	s.NoMissClear = a.NoMiss
	if a.Score != nil {
		score := *a.Score
		s.Score = &score
	}
	s.ClearCount++
	return s
}

// MarkNotCleared 任意状态 -> NOT_CLEARED；ClearCount 和 Score 不变
type MarkNotCleared struct{}

func (MarkNotCleared) apply(s ClearStatus, _ time.Time) ClearStatus {
	s.IsCleared = false
	s.ClearedAt = nil
	s.NoContinueClear = false
	s.NoBombClear = false
	s.NoMissClear = false
	return s
}

// Transition 纯函数：返回迁移后的新值，不修改入参
func Transition(s ClearStatus, a ClearAction, now time.Time) ClearStatus {
	return a.apply(s, now)
}

// IsPerfectClear 同时满足 ノーコン/ノーボム/ノーミス
func (s ClearStatus) IsPerfectClear() bool {
	return s.IsCleared && s.NoContinueClear && s.NoBombClear && s.NoMissClear
}

// ClearTypeSummary 返回 "未クリア"、"クリア" 或拼接的达成类型
func (s ClearStatus) ClearTypeSummary() string {
	if !s.IsCleared {
		return "未クリア"
	}
	var types []string
	if s.NoContinueClear {
		types = append(types, "ノーコン")
	}
	if s.NoBombClear {
		types = append(types, "ノーボム")
	}
	if s.NoMissClear {
		types = append(types, "ノーミス")
	}
	if len(types) == 0 {
		return "クリア"
	}
	return strings.Join(types, "・")
}
