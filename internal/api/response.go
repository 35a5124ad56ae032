package api

import (
	"time"

	"ClearTracker/internal/model"
)

// ClearRecordResponse 通关记录出参；cleared_at 为 YYYY-MM-DD
type ClearRecordResponse struct {
	ID            uint64  `json:"id"`
	UserID        uint64  `json:"user_id"`
	GameID        uint64  `json:"game_id"`
	CharacterName string  `json:"character_name"`
	Difficulty    string  `json:"difficulty"`
	Mode          string  `json:"mode"`
	ClearedAt     *string `json:"cleared_at"`
	model.ClearFlags
	AchievedConditions []string  `json:"achieved_conditions"`
	AchievementCount   int       `json:"achievement_count"`
	LastUpdatedAt      time.Time `json:"last_updated_at"`
	CreatedAt          time.Time `json:"created_at"`
}

func toClearRecordResponse(r *model.ClearRecord) ClearRecordResponse {
	return ClearRecordResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		GameID:             r.GameID,
		CharacterName:      r.CharacterName,
		Difficulty:         r.Difficulty,
		Mode:               r.Mode,
		ClearedAt:          model.FormatDate(r.ClearedAt),
		ClearFlags:         r.ClearFlags,
		AchievedConditions: r.AchievedConditions(),
		AchievementCount:   r.AchievementCount(),
		LastUpdatedAt:      r.LastUpdatedAt,
		CreatedAt:          r.CreatedAt,
	}
}

func toClearRecordResponses(rs []*model.ClearRecord) []ClearRecordResponse {
	out := make([]ClearRecordResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toClearRecordResponse(r))
	}
	return out
}

// ClearStatusResponse 通关状态出参
type ClearStatusResponse struct {
	ID              uint64     `json:"id"`
	UserID          uint64     `json:"user_id"`
	GameID          uint64     `json:"game_id"`
	Difficulty      string     `json:"difficulty"`
	IsCleared       bool       `json:"is_cleared"`
	ClearedAt       *time.Time `json:"cleared_at"`
	NoContinueClear bool       `json:"no_continue_clear"`
	NoBombClear     bool       `json:"no_bomb_clear"`
	NoMissClear     bool       `json:"no_miss_clear"`
	Score           *int64     `json:"score"`
	Memo            *string    `json:"memo"`
	ClearCount      int        `json:"clear_count"`
	ClearType       string     `json:"clear_type"`
	IsPerfectClear  bool       `json:"is_perfect_clear"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toClearStatusResponse(s *model.ClearStatus) ClearStatusResponse {
	return ClearStatusResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		GameID:          s.GameID,
		Difficulty:      s.Difficulty,
		IsCleared:       s.IsCleared,
		ClearedAt:       s.ClearedAt,
		NoContinueClear: s.NoContinueClear,
		NoBombClear:     s.NoBombClear,
		NoMissClear:     s.NoMissClear,
		Score:           s.Score,
		Memo:            s.Memo,
		ClearCount:      s.ClearCount,
		ClearType:       s.ClearTypeSummary(),
		IsPerfectClear:  s.IsPerfectClear(),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func toClearStatusResponses(ss []*model.ClearStatus) []ClearStatusResponse {
	out := make([]ClearStatusResponse, 0, len(ss))
	for _, s := range ss {
		out = append(out, toClearStatusResponse(s))
	}
	return out
}

// GameResponse 作品
type GameResponse struct {
	ID           uint64         `json:"id"`
	Title        string         `json:"title"`
	SeriesNumber float64        `json:"series_number"`
	ReleaseYear  int            `json:"release_year"`
	GameType     model.GameType `json:"game_type"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func toGameResponse(g *model.Game) GameResponse {
	return GameResponse{
		ID:           g.ID,
		Title:        g.Title,
		SeriesNumber: g.SeriesNumber,
		ReleaseYear:  g.ReleaseYear,
		GameType:     g.GameType,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

// GameCharacterResponse 机体
type GameCharacterResponse struct {
	ID            uint64    `json:"id"`
	GameID        uint64    `json:"game_id"`
	CharacterName string    `json:"character_name"`
	Description   *string   `json:"description"`
	SortOrder     int       `json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"`
}

func toGameCharacterResponse(ch *model.GameCharacter) GameCharacterResponse {
	return GameCharacterResponse{
		ID:            ch.ID,
		GameID:        ch.GameID,
		CharacterName: ch.CharacterName,
		Description:   ch.Description,
		SortOrder:     ch.SortOrder,
		CreatedAt:     ch.CreatedAt,
	}
}

// GameMemoResponse 作品备注
type GameMemoResponse struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	GameID    uint64    `json:"game_id"`
	Memo      *string   `json:"memo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toGameMemoResponse(m *model.GameMemo) GameMemoResponse {
	return GameMemoResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		GameID:    m.GameID,
		Memo:      m.Memo,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// UserResponse 不含密码哈希
type UserResponse struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// TokenResponse 登录成功返回
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"` // 秒
	User        UserResponse `json:"user"`
}
