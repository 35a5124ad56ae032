package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// GameType 作品类型
type GameType string

const (
	GameTypeMainSeries  GameType = "main_series" // 本编STG
	GameTypeSpinOff     GameType = "spin_off"
	GameTypeFighting    GameType = "fighting"    // 格斗作
	GameTypePhotography GameType = "photography" // 摄影STG
	GameTypeVersus      GameType = "versus"      // 对战型STG
	GameTypeMixed       GameType = "mixed"
)

// ParseGameType 解析作品类型，空字符串视为 main_series
func ParseGameType(s string) (GameType, error) {
	if s == "" {
		return GameTypeMainSeries, nil
	}
	switch t := GameType(s); t {
	case GameTypeMainSeries, GameTypeSpinOff, GameTypeFighting, GameTypePhotography, GameTypeVersus, GameTypeMixed:
		return t, nil
	}
	return "", NewValidationError("game_type", "unknown game type %q", s)
}

const (
	CharacterNameMaxLength        = 100
	CharacterDescriptionMaxLength = 500
)

// Game 对应 games 表。SeriesNumber 使用小数，外传作如 12.8
type Game struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Title        string    `gorm:"column:title;type:varchar(128);not null"`
	SeriesNumber float64   `gorm:"column:series_number;type:numeric(5,1);not null;index"`
	ReleaseYear  int       `gorm:"column:release_year;not null"`
	GameType     GameType  `gorm:"column:game_type;type:varchar(16);not null;default:'main_series';index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Game) TableName() string { return "games" }

// Validate 校验作品字段
func (g *Game) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return NewValidationError("title", "game title cannot be empty")
	}
	if g.SeriesNumber <= 0 {
		return NewValidationError("series_number", "series number must be positive")
	}
	if g.ReleaseYear <= 0 {
		return NewValidationError("release_year", "release year must be positive")
	}
	if _, err := ParseGameType(string(g.GameType)); err != nil {
		return err
	}
	return nil
}

// GameCharacter 对应 game_characters 表；机体名在同一作品内唯一
type GameCharacter struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	GameID        uint64    `gorm:"column:game_id;not null;uniqueIndex:ux_game_character_name,priority:1"`
	CharacterName string    `gorm:"column:character_name;type:varchar(100);not null;uniqueIndex:ux_game_character_name,priority:2"`
	Description   *string   `gorm:"column:description;type:varchar(500)"`
	SortOrder     int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (GameCharacter) TableName() string { return "game_characters" }

// Validate 校验机体字段，同时把名称两端空白去掉
func (c *GameCharacter) Validate() error {
	if c.GameID == 0 {
		return NewValidationError("game_id", "game id must be positive")
	}
	c.CharacterName = strings.TrimSpace(c.CharacterName)
	if c.CharacterName == "" {
		return NewValidationError("character_name", "character name cannot be empty")
	}
	if utf8.RuneCountInString(c.CharacterName) > CharacterNameMaxLength {
		return NewValidationError("character_name", "character name must be at most %d characters", CharacterNameMaxLength)
	}
	if c.Description != nil && utf8.RuneCountInString(*c.Description) > CharacterDescriptionMaxLength {
		return NewValidationError("description", "description must be at most %d characters", CharacterDescriptionMaxLength)
	}
	return nil
}
