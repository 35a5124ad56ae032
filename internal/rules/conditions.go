package rules

import "ClearTracker/internal/model"

// Condition 达成条件描述
type Condition struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// SpecialCondition 登记在 special_1..3 槽位上的作品特有条件
type SpecialCondition struct {
	Slot string `json:"slot"`
	Condition
}

var universalConditions = []Condition{
	{Key: model.ConditionCleared, DisplayName: "クリア", Description: "通常クリア"},
	{Key: model.ConditionNoContinue, DisplayName: "ノーコン", Description: "コンティニュー未使用でクリア"},
	{Key: model.ConditionNoBomb, DisplayName: "ノーボム", Description: "ボム未使用でクリア"},
	{Key: model.ConditionNoMiss, DisplayName: "ノーミス", Description: "ミス0でクリア"},
	{Key: model.ConditionFullSpellCard, DisplayName: "フルスペカ", Description: "全スペルカード取得"},
}

// 槽位 -> 条件；未登记的槽位不出现
var specialConditions = map[uint64]map[string]Condition{
	GameDDC: {
		model.ConditionSpecial1: {Key: "no_reverse_use", DisplayName: "ノーリバース", Description: "ひっくり返り弾幕を使用せずにクリア"},
	},
	GameHSiFS: {
		model.ConditionSpecial1: {Key: "no_season_release", DisplayName: "ノー季節解放", Description: "シーズンリリースを使用せずにクリア"},
		model.ConditionSpecial2: {Key: "no_sub_season", DisplayName: "ノーサブシーズン", Description: "サブシーズンを変更せずにクリア"},
	},
	GameWBaWC: {
		model.ConditionSpecial1: {Key: "no_roaring_mode", DisplayName: "ノーロアリング", Description: "ローリングモードを発動せずにクリア"},
		model.ConditionSpecial2: {Key: "single_animal", DisplayName: "単一アニマル", Description: "1種類のアニマルスピリットのみでクリア"},
	},
	GameUM: {
		model.ConditionSpecial1: {Key: "no_ability_card", DisplayName: "ノーアビリティカード", Description: "アビリティカードを使用せずにクリア"},
		model.ConditionSpecial2: {Key: "basic_setup_only", DisplayName: "基本装備のみ", Description: "初期装備のみでクリア"},
	},
	GameUDoALG: {
		model.ConditionSpecial1: {Key: "no_card_upgrade", DisplayName: "ノーカード強化", Description: "カードアップグレードを使用せずにクリア"},
		model.ConditionSpecial2: {Key: "starter_deck_only", DisplayName: "初期デッキのみ", Description: "スターターデッキのみでクリア"},
	},
	GameUDoKJ: {
		model.ConditionSpecial1: {Key: "no_henka_stone", DisplayName: "ノー異変石", Description: "異変石を装備せずにクリア"},
		model.ConditionSpecial2: {Key: "basic_stone_only", DisplayName: "基本異変石のみ", Description: "基本異変石のみでクリア"},
	},
}

// UniversalConditions 五个通用条件，顺序固定
func UniversalConditions() []Condition {
	out := make([]Condition, len(universalConditions))
	copy(out, universalConditions)
	return out
}

// SpecialConditions 按 special_1, special_2, special_3 顺序返回已登记的特殊条件
func SpecialConditions(gameID uint64) []SpecialCondition {
	registered := specialConditions[gameID]
	var out []SpecialCondition
	for _, slot := range model.SpecialSlots {
		if c, ok := registered[slot]; ok {
			out = append(out, SpecialCondition{Slot: slot, Condition: c})
		}
	}
	return out
}

// IsSpecialConditionAvailable 槽位是否已为该作品登记
func IsSpecialConditionAvailable(gameID uint64, slot string) bool {
	_, ok := specialConditions[gameID][slot]
	return ok
}

// AllConditionsForGame 通用条件在前，特殊条件按槽位顺序在后
func AllConditionsForGame(gameID uint64) []Condition {
	all := UniversalConditions()
	for _, sc := range SpecialConditions(gameID) {
		all = append(all, sc.Condition)
	}
	return all
}
