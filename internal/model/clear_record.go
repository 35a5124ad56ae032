package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/datatypes"
)

// ClearFlags 八个相互独立的达成标记
type ClearFlags struct {
	Cleared       bool `gorm:"column:is_cleared;not null;default:false" json:"is_cleared"`
	NoContinue    bool `gorm:"column:is_no_continue_clear;not null;default:false" json:"is_no_continue_clear"`
	NoBomb        bool `gorm:"column:is_no_bomb_clear;not null;default:false" json:"is_no_bomb_clear"`
	NoMiss        bool `gorm:"column:is_no_miss_clear;not null;default:false" json:"is_no_miss_clear"`
	FullSpellCard bool `gorm:"column:is_full_spell_card;not null;default:false" json:"is_full_spell_card"`
	Special1      bool `gorm:"column:is_special_clear_1;not null;default:false" json:"is_special_clear_1"`
	Special2      bool `gorm:"column:is_special_clear_2;not null;default:false" json:"is_special_clear_2"`
	Special3      bool `gorm:"column:is_special_clear_3;not null;default:false" json:"is_special_clear_3"`
}

// AchievedConditions 按“通用条件 → 特殊条件”的固定顺序返回已达成的条件键
func (f ClearFlags) AchievedConditions() []string {
	conditions := make([]string, 0, 8)
	for _, c := range []struct {
		key string
		on  bool
	}{
		{ConditionCleared, f.Cleared},
		{ConditionNoContinue, f.NoContinue},
		{ConditionNoBomb, f.NoBomb},
		{ConditionNoMiss, f.NoMiss},
		{ConditionFullSpellCard, f.FullSpellCard},
		{ConditionSpecial1, f.Special1},
		{ConditionSpecial2, f.Special2},
		{ConditionSpecial3, f.Special3},
	} {
		if c.on {
			conditions = append(conditions, c.key)
		}
	}
	return conditions
}

// AchievementCount 已达成条件数
func (f ClearFlags) AchievementCount() int {
	return len(f.AchievedConditions())
}

// HasAnyClearCondition 任意一个标记为 true
func (f ClearFlags) HasAnyClearCondition() bool {
	return f.Cleared || f.NoContinue || f.NoBomb || f.NoMiss || f.FullSpellCard ||
		f.Special1 || f.Special2 || f.Special3
}

// SpecialFlag 按 special_1..3 取特殊条件标记
func (f ClearFlags) SpecialFlag(slot string) bool {
	switch slot {
	case ConditionSpecial1:
		return f.Special1
	case ConditionSpecial2:
		return f.Special2
	case ConditionSpecial3:
		return f.Special3
	}
	return false
}

// ClearRecord 对应 clear_records 表：用户 × 作品 × 机体 × 难易度 × 模式 的达成记录。
// CharacterName 是机体名而不是外键。
type ClearRecord struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        uint64          `gorm:"column:user_id;not null;uniqueIndex:ux_clear_record_natural_key,priority:1;index"`
	GameID        uint64          `gorm:"column:game_id;not null;uniqueIndex:ux_clear_record_natural_key,priority:2;index"`
	CharacterName string          `gorm:"column:character_name;type:varchar(100);not null;uniqueIndex:ux_clear_record_natural_key,priority:3"`
	Difficulty    string          `gorm:"column:difficulty;type:varchar(16);not null;uniqueIndex:ux_clear_record_natural_key,priority:4"`
	Mode          string          `gorm:"column:mode;type:varchar(16);not null;default:'normal';uniqueIndex:ux_clear_record_natural_key,priority:5"`
	ClearFlags                    // 嵌入字段，gorm 自动展开为列
	ClearedAt     *datatypes.Date `gorm:"column:cleared_at"`
	LastUpdatedAt time.Time       `gorm:"column:last_updated_at;autoUpdateTime"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (ClearRecord) TableName() string { return "clear_records" }

// NaturalKey 记录的自然键
type NaturalKey struct {
	UserID        uint64
	GameID        uint64
	CharacterName string
	Difficulty    string
	Mode          string
}

func (k NaturalKey) String() string {
	return fmt.Sprintf("user=%d game=%d character=%s difficulty=%s mode=%s",
		k.UserID, k.GameID, k.CharacterName, k.Difficulty, k.Mode)
}

// Key 返回记录的自然键
func (r *ClearRecord) Key() NaturalKey {
	return NaturalKey{
		UserID:        r.UserID,
		GameID:        r.GameID,
		CharacterName: r.CharacterName,
		Difficulty:    r.Difficulty,
		Mode:          r.Mode,
	}
}

// NewClearRecord 构造并校验一条记录；mode 为空时取 normal。
// 难易度/模式是否合法属于服务层规则，这里不做判断（历史记录可能引用旧值）。
func NewClearRecord(userID, gameID uint64, characterName, difficulty, mode string, flags ClearFlags, clearedAt *datatypes.Date) (*ClearRecord, error) {
	if mode == "" {
		mode = ModeNormal
	}
	r := &ClearRecord{
		UserID:        userID,
		GameID:        gameID,
		CharacterName: strings.TrimSpace(characterName),
		Difficulty:    strings.TrimSpace(difficulty),
		Mode:          mode,
		ClearFlags:    flags,
		ClearedAt:     clearedAt,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate 检查实体不变量
func (r *ClearRecord) Validate() error {
	if r.UserID == 0 {
		return NewValidationError("user_id", "user id must be positive")
	}
	if r.GameID == 0 {
		return NewValidationError("game_id", "game id must be positive")
	}
	if r.CharacterName == "" {
		return NewValidationError("character_name", "character name cannot be empty")
	}
	if utf8.RuneCountInString(r.CharacterName) > CharacterNameMaxLength {
		return NewValidationError("character_name", "character name must be at most %d characters", CharacterNameMaxLength)
	}
	if r.Difficulty == "" {
		return NewValidationError("difficulty", "difficulty cannot be empty")
	}
	if r.Mode == "" {
		return NewValidationError("mode", "mode cannot be empty")
	}
	return nil
}

// StampClearedAt 规整 cleared_at：未通关则清空；通关但未给日期时，
// 沿用 previous 中已通关记录的日期，否则取 today。
func (r *ClearRecord) StampClearedAt(today time.Time, previous *ClearRecord) {
	if !r.Cleared {
		r.ClearedAt = nil
		return
	}
	if r.ClearedAt != nil {
		return
	}
	if previous != nil && previous.Cleared && previous.ClearedAt != nil {
		d := *previous.ClearedAt
		r.ClearedAt = &d
		return
	}
	d := NewDate(today)
	r.ClearedAt = &d
}

// NewDate 截取到日
func NewDate(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return datatypes.Date{}, NewValidationError("cleared_at", "invalid date %q, expected YYYY-MM-DD", s)
	}
	return datatypes.Date(t), nil
}

// FormatDate 输出 YYYY-MM-DD，nil 返回 nil
func FormatDate(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := time.Time(*d).Format(time.DateOnly)
	return &s
}
