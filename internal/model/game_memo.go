package model

import "time"

// GameMemo 用户对某作品的自由备注，(user_id, game_id) 唯一
type GameMemo struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex:ux_game_memo_user_game,priority:1"`
	GameID    uint64    `gorm:"column:game_id;not null;uniqueIndex:ux_game_memo_user_game,priority:2"`
	Memo      *string   `gorm:"column:memo;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (GameMemo) TableName() string { return "game_memos" }

func (m *GameMemo) Validate() error {
	if m.UserID == 0 {
		return NewValidationError("user_id", "user id must be positive")
	}
	if m.GameID == 0 {
		return NewValidationError("game_id", "game id must be positive")
	}
	return nil
}
