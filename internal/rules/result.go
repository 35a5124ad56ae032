package rules

import (
	"ClearTracker/internal/model"
)

// Lookup 查表结果标记
type Lookup string

const (
	Known   Lookup = "known"
	Unknown Lookup = "unknown" // 未登记作品，规则为默认值
)

// Rules 单个作品的完整规则
type Rules struct {
	GameID            uint64              `json:"game_id"`
	Modes             []string            `json:"modes"`
	Difficulties      map[string][]string `json:"difficulties"` // 模式 -> 难易度
	SpecialConditions []SpecialCondition  `json:"special_conditions"`
	Conditions        []Condition         `json:"conditions"`
	CharacterRange    CharacterRange      `json:"character_range"`
	CharacterCount    int                 `json:"character_count"`
}

// Result Known(rules) | Unknown(defaultRules)，调用方自行决定是否严格处理 Unknown
type Result struct {
	Lookup Lookup `json:"lookup"`
	Rules  Rules  `json:"rules"`
}

func (r Result) IsKnown() bool { return r.Lookup == Known }

// 已登记的作品：有机体区间的即视为已登记
func isRegistered(gameID uint64) bool {
	_, ok := characterRanges[gameID]
	return ok
}

// ForGame 汇总作品规则
func ForGame(gameID uint64) Result {
	lookup := Unknown
	if isRegistered(gameID) {
		lookup = Known
	}
	modes := AvailableModes(gameID)
	diffs := make(map[string][]string, len(modes))
	for _, m := range modes {
		diffs[m] = AvailableDifficulties(gameID, m)
	}
	cr := CharacterRangeFor(gameID)
	return Result{
		Lookup: lookup,
		Rules: Rules{
			GameID:            gameID,
			Modes:             modes,
			Difficulties:      diffs,
			SpecialConditions: SpecialConditions(gameID),
			Conditions:        AllConditionsForGame(gameID),
			CharacterRange:    cr,
			CharacterCount:    cr.Count(),
		},
	}
}

// CheckCombination 校验 难易度/模式/特殊条件 组合是否合法。
// normal 模式对所有作品都接受：紺珠伝在区分 legacy/pointdevice 之前写入的记录都是 normal，
// 此时按 基本难易度 + Extra 校验。Unknown 作品一律放行。
func (r Result) CheckCombination(difficulty, mode string, flags model.ClearFlags) error {
	if !r.IsKnown() {
		return nil
	}
	gameID := r.Rules.GameID
	if mode == "" {
		mode = model.ModeNormal
	}
	if mode != model.ModeNormal && !contains(r.Rules.Modes, mode) {
		return model.NewValidationError("mode", "mode %q is not available for game %d", mode, gameID)
	}
	if !contains(AvailableDifficulties(gameID, mode), difficulty) {
		return model.NewValidationError("difficulty", "difficulty %q is not available for game %d in mode %s", difficulty, gameID, mode)
	}
	for _, slot := range model.SpecialSlots {
		if flags.SpecialFlag(slot) && !IsSpecialConditionAvailable(gameID, slot) {
			return model.NewValidationError(slot, "%s is not registered for game %d", slot, gameID)
		}
	}
	return nil
}

// CheckDifficulty 只校验难易度（ClearStatus 没有模式，任一模式下合法即可）
func (r Result) CheckDifficulty(difficulty string) error {
	if !r.IsKnown() {
		return nil
	}
	modes := append(clone(r.Rules.Modes), model.ModeNormal)
	for _, m := range modes {
		if contains(AvailableDifficulties(r.Rules.GameID, m), difficulty) {
			return nil
		}
	}
	return model.NewValidationError("difficulty", "difficulty %q is not available for game %d", difficulty, r.Rules.GameID)
}
