// Package rules 作品能力表：每个作品合法的难易度、模式与特殊达成条件。
// 纯查表，不依赖数据库。未登记的作品 ID 返回 Unknown + 默认规则，不报错。
package rules

import (
	"ClearTracker/internal/model"
)

// 作品 ID（与 games 表初始数据一致）
const (
	GameEOSD   uint64 = 1  // 東方紅魔郷
	GamePCB    uint64 = 2  // 東方妖々夢
	GameIN     uint64 = 3  // 東方永夜抄
	GamePoFV   uint64 = 4  // 東方花映塚
	GameMoF    uint64 = 5  // 東方風神録
	GameSA     uint64 = 6  // 東方地霊殿
	GameUFO    uint64 = 7  // 東方星蓮船
	GameFW     uint64 = 8  // 妖精大戦争
	GameTD     uint64 = 9  // 東方神霊廟
	GameDDC    uint64 = 10 // 東方輝針城
	GameLoLK   uint64 = 11 // 東方紺珠伝
	GameHSiFS  uint64 = 12 // 東方天空璋
	GameWBaWC  uint64 = 13 // 東方鬼形獣
	GameUM     uint64 = 14 // 東方虹龍洞
	GameUDoALG uint64 = 15 // 東方獣王園
	GameUDoKJ  uint64 = 16 // 東方錦上京
)

var baseDifficulties = []string{
	model.DifficultyEasy,
	model.DifficultyNormal,
	model.DifficultyHard,
	model.DifficultyLunatic,
}

// 模式可选的作品（目前只有紺珠伝）
var modeDifficulties = map[uint64]map[string][]string{
	GameLoLK: {
		model.ModeLegacy:      append(clone(baseDifficulties), model.DifficultyExtra),
		model.ModePointDevice: clone(baseDifficulties),
	},
}

// 没有 Extra 的作品
var noExtraGames = map[uint64]bool{GameUDoALG: true}

// 有 Phantasm 的作品
var phantasmGames = map[uint64]bool{GamePCB: true}

// AvailableModes 紺珠伝返回 legacy/pointdevice，其余作品只有 normal
func AvailableModes(gameID uint64) []string {
	if _, ok := modeDifficulties[gameID]; ok {
		return []string{model.ModeLegacy, model.ModePointDevice}
	}
	return []string{model.ModeNormal}
}

// IsModeAvailable 是否支持模式选择
func IsModeAvailable(gameID uint64) bool {
	_, ok := modeDifficulties[gameID]
	return ok
}

// AvailableDifficulties 返回作品在指定模式下的合法难易度，结果总包含 Easy..Lunatic
func AvailableDifficulties(gameID uint64, mode string) []string {
	if byMode, ok := modeDifficulties[gameID]; ok {
		if diffs, ok := byMode[mode]; ok {
			return clone(diffs)
		}
	}
	diffs := clone(baseDifficulties)
	if !noExtraGames[gameID] {
		diffs = append(diffs, model.DifficultyExtra)
	}
	if phantasmGames[gameID] {
		diffs = append(diffs, model.DifficultyPhantasm)
	}
	return diffs
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
