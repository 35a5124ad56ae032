package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"ClearTracker/internal/model"
	"ClearTracker/internal/repository"
	"ClearTracker/internal/rules"

	"github.com/sirupsen/logrus"
)

// ClearStatusService 难易度级通关状态
type ClearStatusService struct {
	repo        repository.ClearStatusRepository
	logger      *logrus.Logger
	strictRules bool
	now         func() time.Time
}

// NewClearStatusService 创建 ClearStatusService
func NewClearStatusService(repo repository.ClearStatusRepository, logger *logrus.Logger, strictRules bool) *ClearStatusService {
	return &ClearStatusService{
		repo:        repo,
		logger:      logger,
		strictRules: strictRules,
		now:         time.Now,
	}
}

// ClearStatusPayload 创建输入
type ClearStatusPayload struct {
	GameID          uint64     `json:"game_id"`
	Difficulty      string     `json:"difficulty"`
	IsCleared       bool       `json:"is_cleared"`
	ClearedAt       *time.Time `json:"cleared_at"`
	NoContinueClear bool       `json:"no_continue_clear"`
	NoBombClear     bool       `json:"no_bomb_clear"`
	NoMissClear     bool       `json:"no_miss_clear"`
	Score           *int64     `json:"score"`
	Memo            *string    `json:"memo"`
}

// ClearStatusPatch 局部更新；cleared_at/score/memo 可显式置 null
type ClearStatusPatch struct {
	IsCleared       Optional[bool]      `json:"is_cleared"`
	ClearedAt       Optional[time.Time] `json:"cleared_at"`
	NoContinueClear Optional[bool]      `json:"no_continue_clear"`
	NoBombClear     Optional[bool]      `json:"no_bomb_clear"`
	NoMissClear     Optional[bool]      `json:"no_miss_clear"`
	Score           Optional[int64]     `json:"score"`
	Memo            Optional[string]    `json:"memo"`
}

// MarkClearedRequest 标记通关
type MarkClearedRequest struct {
	GameID     uint64 `json:"game_id"`
	Difficulty string `json:"difficulty"`
	NoContinue bool   `json:"no_continue"`
	NoBomb     bool   `json:"no_bomb"`
	NoMiss     bool   `json:"no_miss"`
	Score      *int64 `json:"score"`
}

// ListByUser 用户全部状态
func (s *ClearStatusService) ListByUser(ctx context.Context, userID uint64) ([]*model.ClearStatus, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// ListByUserAndGame 用户在某作品下的状态
func (s *ClearStatusService) ListByUserAndGame(ctx context.Context, userID, gameID uint64) ([]*model.ClearStatus, error) {
	return s.repo.FindByUserAndGame(ctx, userID, gameID)
}

// GetByID 非本人返回 (nil, nil)
func (s *ClearStatusService) GetByID(ctx context.Context, id, userID uint64) (*model.ClearStatus, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil || st.UserID != userID {
		return nil, nil
	}
	return st, nil
}

// Create 校验不变量后插入；cleared 却没有 cleared_at 直接报错，不做补全
func (s *ClearStatusService) Create(ctx context.Context, userID uint64, p ClearStatusPayload) (*model.ClearStatus, error) {
	st := &model.ClearStatus{
		UserID:          userID,
		GameID:          p.GameID,
		Difficulty:      strings.TrimSpace(p.Difficulty),
		IsCleared:       p.IsCleared,
		ClearedAt:       p.ClearedAt,
		NoContinueClear: p.NoContinueClear,
		NoBombClear:     p.NoBombClear,
		NoMissClear:     p.NoMissClear,
		Score:           p.Score,
		Memo:            p.Memo,
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkRules(st.GameID, st.Difficulty); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"status_id":  st.ID,
		"game_id":    st.GameID,
		"difficulty": st.Difficulty,
	}).Info("通关状态已创建")
	return st, nil
}

// Update 局部更新后重新校验不变量
func (s *ClearStatusService) Update(ctx context.Context, id, userID uint64, patch ClearStatusPatch) (*model.ClearStatus, error) {
	existing, err := s.GetByID(ctx, id, userID)
	if err != nil || existing == nil {
		return nil, err
	}
	st := *existing
	for _, f := range []struct {
		opt   Optional[bool]
		dst   *bool
		field string
	}{
		{patch.IsCleared, &st.IsCleared, "is_cleared"},
		{patch.NoContinueClear, &st.NoContinueClear, "no_continue_clear"},
		{patch.NoBombClear, &st.NoBombClear, "no_bomb_clear"},
		{patch.NoMissClear, &st.NoMissClear, "no_miss_clear"},
	} {
		if err := f.opt.applyTo(f.dst, f.field); err != nil {
			return nil, err
		}
	}
	patch.ClearedAt.applyNullable(&st.ClearedAt)
	patch.Score.applyNullable(&st.Score)
	patch.Memo.applyNullable(&st.Memo)

	if err := st.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &st); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"status_id": st.ID,
	}).Info("通关状态已更新")
	return &st, nil
}

// MarkCleared 不存在时先按 NOT_CLEARED 初始化，再执行迁移；每次调用 clear_count +1
func (s *ClearStatusService) MarkCleared(ctx context.Context, userID uint64, req MarkClearedRequest) (*model.ClearStatus, error) {
	if req.Score != nil && *req.Score < 0 {
		return nil, model.NewValidationError("score", "score must be non-negative")
	}
	action := model.MarkCleared{
		NoContinue: req.NoContinue,
		NoBomb:     req.NoBomb,
		NoMiss:     req.NoMiss,
		Score:      req.Score,
	}
	st, err := s.markCleared(ctx, userID, req.GameID, req.Difficulty, action)
	if errors.Is(err, model.ErrConflict) {
		// 并发首次标记，另一请求已插入初始行
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":    userID,
			"game_id":    req.GameID,
			"difficulty": req.Difficulty,
		}).Warn("标记通关冲突，重试一次")
		st, err = s.markCleared(ctx, userID, req.GameID, req.Difficulty, action)
	}
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"status_id":   st.ID,
		"clear_count": st.ClearCount,
	}).Info("已标记通关")
	return st, nil
}

func (s *ClearStatusService) markCleared(ctx context.Context, userID, gameID uint64, difficulty string, action model.MarkCleared) (*model.ClearStatus, error) {
	difficulty = strings.TrimSpace(difficulty)
	existing, err := s.repo.FindByKey(ctx, userID, gameID, difficulty)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		initial, err := model.NewClearStatus(userID, gameID, difficulty)
		if err != nil {
			return nil, err
		}
		if err := s.checkRules(gameID, difficulty); err != nil {
			return nil, err
		}
		next := model.Transition(*initial, action, s.now())
		if err := next.Validate(); err != nil {
			return nil, err
		}
		if err := s.repo.Create(ctx, &next); err != nil {
			return nil, err
		}
		return &next, nil
	}

	next := model.Transition(*existing, action, s.now())
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// MarkNotCleared 没有对应行时返回 (nil, nil)
func (s *ClearStatusService) MarkNotCleared(ctx context.Context, userID, gameID uint64, difficulty string) (*model.ClearStatus, error) {
	existing, err := s.repo.FindByKey(ctx, userID, gameID, strings.TrimSpace(difficulty))
	if err != nil || existing == nil {
		return nil, err
	}
	next := model.Transition(*existing, model.MarkNotCleared{}, s.now())
	if err := s.repo.Update(ctx, &next); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"status_id": next.ID,
	}).Info("已取消通关标记")
	return &next, nil
}

// Delete 仅本人可删除
func (s *ClearStatusService) Delete(ctx context.Context, id, userID uint64) (bool, error) {
	existing, err := s.GetByID(ctx, id, userID)
	if err != nil || existing == nil {
		return false, err
	}
	return s.repo.Delete(ctx, id)
}

func (s *ClearStatusService) checkRules(gameID uint64, difficulty string) error {
	if !s.strictRules {
		return nil
	}
	return rules.ForGame(gameID).CheckDifficulty(difficulty)
}
