package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ClearTracker/internal/model"
	"ClearTracker/internal/repository"
	"ClearTracker/internal/rules"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ClearRecordService 通关记录：所有权校验、规则校验与按自然键的幂等 upsert。
// 调用方 userID 一律显式传入；“不存在”和“不属于调用方”对外表现一致，返回 (nil, nil)/false。
type ClearRecordService struct {
	repo        repository.ClearRecordRepository
	logger      *logrus.Logger
	strictRules bool
	now         func() time.Time
}

// NewClearRecordService 创建 ClearRecordService；strictRules=false 时跳过难易度/模式/特殊条件校验
func NewClearRecordService(repo repository.ClearRecordRepository, logger *logrus.Logger, strictRules bool) *ClearRecordService {
	return &ClearRecordService{
		repo:        repo,
		logger:      logger,
		strictRules: strictRules,
		now:         time.Now,
	}
}

// ClearRecordPayload 创建/upsert 的输入，mode 为空视为 normal，cleared_at 格式 YYYY-MM-DD
type ClearRecordPayload struct {
	GameID        uint64  `json:"game_id"`
	CharacterName string  `json:"character_name"`
	Difficulty    string  `json:"difficulty"`
	Mode          string  `json:"mode"`
	ClearedAt     *string `json:"cleared_at"`
	model.ClearFlags
}

// ClearRecordPatch 局部更新：未出现的字段保持原值；mode 为 null 时重置为 normal，cleared_at 为 null 时清空
type ClearRecordPatch struct {
	CharacterName Optional[string] `json:"character_name"`
	Difficulty    Optional[string] `json:"difficulty"`
	Mode          Optional[string] `json:"mode"`
	Cleared       Optional[bool]   `json:"is_cleared"`
	NoContinue    Optional[bool]   `json:"is_no_continue_clear"`
	NoBomb        Optional[bool]   `json:"is_no_bomb_clear"`
	NoMiss        Optional[bool]   `json:"is_no_miss_clear"`
	FullSpellCard Optional[bool]   `json:"is_full_spell_card"`
	Special1      Optional[bool]   `json:"is_special_clear_1"`
	Special2      Optional[bool]   `json:"is_special_clear_2"`
	Special3      Optional[bool]   `json:"is_special_clear_3"`
	ClearedAt     Optional[string] `json:"cleared_at"`
}

// BatchItemError 批量 upsert 中第 Index 条失败；之前已写入的条目不回滚
type BatchItemError struct {
	Index int
	Err   error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("batch item %d: %v", e.Index, e.Err)
}

func (e *BatchItemError) Unwrap() error { return e.Err }

// GetUserRecords 用户全部记录
func (s *ClearRecordService) GetUserRecords(ctx context.Context, userID uint64) ([]*model.ClearRecord, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// GetUserGameRecords 用户在某作品下的记录
func (s *ClearRecordService) GetUserGameRecords(ctx context.Context, userID, gameID uint64) ([]*model.ClearRecord, error) {
	return s.repo.FindByUserAndGame(ctx, userID, gameID)
}

// GetByID 非本人记录同样返回 (nil, nil)
func (s *ClearRecordService) GetByID(ctx context.Context, recordID, userID uint64) (*model.ClearRecord, error) {
	rec, err := s.repo.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.UserID != userID {
		return nil, nil
	}
	return rec, nil
}

// Create 首次插入，不做重复检查；自然键重复由仓储返回 ErrConflict
func (s *ClearRecordService) Create(ctx context.Context, userID uint64, p ClearRecordPayload) (*model.ClearRecord, error) {
	rec, err := s.buildRecord(userID, p)
	if err != nil {
		return nil, err
	}
	rec.StampClearedAt(s.now(), nil)
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"record_id": rec.ID,
		"game_id":   rec.GameID,
	}).Info("通关记录已创建")
	return rec, nil
}

// Update 局部更新，只修改 patch 中出现的字段
func (s *ClearRecordService) Update(ctx context.Context, recordID, userID uint64, patch ClearRecordPatch) (*model.ClearRecord, error) {
	existing, err := s.GetByID(ctx, recordID, userID)
	if err != nil || existing == nil {
		return nil, err
	}

	rec := *existing
	if err := applyClearRecordPatch(&rec, patch); err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	// 旧记录可能带有当时合法、现在已不合法的组合，只在相关字段变化时校验
	if rulesFieldsChanged(existing, &rec) {
		if err := s.checkRules(&rec); err != nil {
			return nil, err
		}
	}
	previous := existing
	if patch.ClearedAt.Set {
		// 显式给出 cleared_at（含 null）时不沿用旧日期
		previous = nil
	}
	rec.StampClearedAt(s.now(), previous)

	if err := s.repo.Update(ctx, &rec); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"record_id": rec.ID,
	}).Info("通关记录已更新")
	return &rec, nil
}

// Delete 仅本人可删除
func (s *ClearRecordService) Delete(ctx context.Context, recordID, userID uint64) (bool, error) {
	existing, err := s.GetByID(ctx, recordID, userID)
	if err != nil || existing == nil {
		return false, err
	}
	deleted, err := s.repo.Delete(ctx, recordID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.WithFields(logrus.Fields{
			"user_id":   userID,
			"record_id": recordID,
		}).Info("通关记录已删除")
	}
	return deleted, nil
}

// Upsert 按 (user, game, character, difficulty, mode) 插入或整体覆盖。
// 已存在时沿用原 id 与 created_at，八个标记完全以 payload 为准。
// 并发插入撞上唯一约束时重新读取后再写一次，仍失败则返回错误。
func (s *ClearRecordService) Upsert(ctx context.Context, userID uint64, p ClearRecordPayload) (*model.ClearRecord, error) {
	rec, err := s.buildRecord(userID, p)
	if err != nil {
		return nil, err
	}
	saved, err := s.upsertOnce(ctx, *rec)
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, model.ErrConflict) {
		return nil, err
	}

	s.logger.WithError(err).WithFields(logrus.Fields{
		"user_id": userID,
		"key":     rec.Key().String(),
	}).Warn("upsert 自然键冲突，重试一次")
	return s.retryUpsert(ctx, *rec)
}

// BatchUpsert 按输入顺序逐条 upsert，遇到第一条失败即返回 *BatchItemError
func (s *ClearRecordService) BatchUpsert(ctx context.Context, userID uint64, payloads []ClearRecordPayload) ([]*model.ClearRecord, error) {
	results := make([]*model.ClearRecord, 0, len(payloads))
	for i, p := range payloads {
		rec, err := s.Upsert(ctx, userID, p)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"index":   i,
				"applied": len(results),
			}).Warn("批量 upsert 中断")
			return nil, &BatchItemError{Index: i, Err: err}
		}
		results = append(results, rec)
	}
	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"count":   len(results),
	}).Info("批量 upsert 完成")
	return results, nil
}

func (s *ClearRecordService) upsertOnce(ctx context.Context, rec model.ClearRecord) (*model.ClearRecord, error) {
	existing, err := s.repo.FindByNaturalKey(ctx, rec.Key())
	if err != nil {
		return nil, err
	}
	rec.StampClearedAt(s.now(), existing)
	if existing == nil {
		if err := s.repo.Create(ctx, &rec); err != nil {
			return nil, err
		}
		return &rec, nil
	}

	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, &rec); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// 读到之后被并发删除，按冲突处理
			return nil, fmt.Errorf("%w: record %d vanished during upsert", model.ErrConflict, existing.ID)
		}
		return nil, err
	}
	return &rec, nil
}

func (s *ClearRecordService) retryUpsert(ctx context.Context, rec model.ClearRecord) (*model.ClearRecord, error) {
	existing, err := s.repo.FindByNaturalKey(ctx, rec.Key())
	if err != nil {
		return nil, err
	}
	rec.StampClearedAt(s.now(), existing)
	if err := s.repo.CreateOrUpdate(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *ClearRecordService) buildRecord(userID uint64, p ClearRecordPayload) (*model.ClearRecord, error) {
	var clearedAt *datatypes.Date
	if p.ClearedAt != nil && *p.ClearedAt != "" {
		d, err := model.ParseDate(*p.ClearedAt)
		if err != nil {
			return nil, err
		}
		clearedAt = &d
	}
	rec, err := model.NewClearRecord(userID, p.GameID, p.CharacterName, p.Difficulty, p.Mode, p.ClearFlags, clearedAt)
	if err != nil {
		return nil, err
	}
	if err := s.checkRules(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *ClearRecordService) checkRules(rec *model.ClearRecord) error {
	if !s.strictRules {
		return nil
	}
	return rules.ForGame(rec.GameID).CheckCombination(rec.Difficulty, rec.Mode, rec.ClearFlags)
}

// rulesFieldsChanged 难易度/模式变化，或新打开了特殊条件标记
func rulesFieldsChanged(before, after *model.ClearRecord) bool {
	if before.Difficulty != after.Difficulty || before.Mode != after.Mode {
		return true
	}
	for _, slot := range model.SpecialSlots {
		if after.SpecialFlag(slot) && !before.SpecialFlag(slot) {
			return true
		}
	}
	return false
}

func applyClearRecordPatch(rec *model.ClearRecord, p ClearRecordPatch) error {
	if err := p.CharacterName.applyTo(&rec.CharacterName, "character_name"); err != nil {
		return err
	}
	if err := p.Difficulty.applyTo(&rec.Difficulty, "difficulty"); err != nil {
		return err
	}
	rec.CharacterName = strings.TrimSpace(rec.CharacterName)
	rec.Difficulty = strings.TrimSpace(rec.Difficulty)
	if p.Mode.Set {
		rec.Mode = model.ModeNormal
		if p.Mode.Valid && p.Mode.Value != "" {
			rec.Mode = p.Mode.Value
		}
	}
	flags := []struct {
		opt   Optional[bool]
		dst   *bool
		field string
	}{
		{p.Cleared, &rec.Cleared, "is_cleared"},
		{p.NoContinue, &rec.NoContinue, "is_no_continue_clear"},
		{p.NoBomb, &rec.NoBomb, "is_no_bomb_clear"},
		{p.NoMiss, &rec.NoMiss, "is_no_miss_clear"},
		{p.FullSpellCard, &rec.FullSpellCard, "is_full_spell_card"},
		{p.Special1, &rec.Special1, "is_special_clear_1"},
		{p.Special2, &rec.Special2, "is_special_clear_2"},
		{p.Special3, &rec.Special3, "is_special_clear_3"},
	}
	for _, f := range flags {
		if err := f.opt.applyTo(f.dst, f.field); err != nil {
			return err
		}
	}
	if p.ClearedAt.Set {
		rec.ClearedAt = nil
		if p.ClearedAt.Valid && p.ClearedAt.Value != "" {
			d, err := model.ParseDate(p.ClearedAt.Value)
			if err != nil {
				return err
			}
			rec.ClearedAt = &d
		}
	}
	return nil
}
