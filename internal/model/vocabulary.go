package model

// 难易度
const (
	DifficultyEasy     = "Easy"
	DifficultyNormal   = "Normal"
	DifficultyHard     = "Hard"
	DifficultyLunatic  = "Lunatic"
	DifficultyExtra    = "Extra"
	DifficultyPhantasm = "Phantasm"
)

// 游戏模式：normal 全作品通用，legacy/pointdevice 仅用于支持模式选择的作品
const (
	ModeNormal      = "normal"
	ModeLegacy      = "legacy"
	ModePointDevice = "pointdevice"
)

// 达成条件键，顺序即 AchievedConditions 的输出顺序
const (
	ConditionCleared       = "cleared"
	ConditionNoContinue    = "no_continue"
	ConditionNoBomb        = "no_bomb"
	ConditionNoMiss        = "no_miss"
	ConditionFullSpellCard = "full_spell_card"
	ConditionSpecial1      = "special_1"
	ConditionSpecial2      = "special_2"
	ConditionSpecial3      = "special_3"
)

// SpecialSlots special_1..special_3 的固定顺序
var SpecialSlots = []string{ConditionSpecial1, ConditionSpecial2, ConditionSpecial3}
