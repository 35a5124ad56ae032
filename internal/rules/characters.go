package rules

// CharacterRange 作品对应的机体 ID 区间（闭区间）
type CharacterRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Count 区间内机体数
func (r CharacterRange) Count() int {
	return r.End - r.Start + 1
}

// DefaultCharacterRange 未登记作品使用紅魔郷的区间
var DefaultCharacterRange = CharacterRange{Start: 19, End: 22}

var characterRanges = map[uint64]CharacterRange{
	GameEOSD:   {19, 22},
	GamePCB:    {23, 28},
	GameIN:     {29, 40},
	GamePoFV:   {41, 56},
	GameMoF:    {57, 62},
	GameSA:     {63, 68},
	GameUFO:    {69, 74},
	GameFW:     {75, 75},
	GameTD:     {76, 79},
	GameDDC:    {80, 85},
	GameLoLK:   {86, 89},
	GameHSiFS:  {90, 105},
	GameWBaWC:  {106, 114},
	GameUM:     {115, 126},
	GameUDoALG: {127, 130},
	GameUDoKJ:  {131, 132},
}

// CharacterRangeFor 未登记的作品返回 DefaultCharacterRange
func CharacterRangeFor(gameID uint64) CharacterRange {
	if r, ok := characterRanges[gameID]; ok {
		return r
	}
	return DefaultCharacterRange
}
