package service

import (
	"context"
	"errors"

	"ClearTracker/internal/model"
	"ClearTracker/internal/repository"

	"github.com/sirupsen/logrus"
)

// GameMemoService 用户的作品备注，每个 (user, game) 一条
type GameMemoService struct {
	repo   repository.GameMemoRepository
	logger *logrus.Logger
}

// NewGameMemoService 创建 GameMemoService
func NewGameMemoService(repo repository.GameMemoRepository, logger *logrus.Logger) *GameMemoService {
	return &GameMemoService{repo: repo, logger: logger}
}

// GameMemoPayload memo 为 null 表示清空备注
type GameMemoPayload struct {
	Memo *string `json:"memo"`
}

// Get 没有备注返回 (nil, nil)
func (s *GameMemoService) Get(ctx context.Context, userID, gameID uint64) (*model.GameMemo, error) {
	return s.repo.FindByUserAndGame(ctx, userID, gameID)
}

// ListByUser 用户全部备注
func (s *GameMemoService) ListByUser(ctx context.Context, userID uint64) ([]*model.GameMemo, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// Upsert 按 (user, game) 插入或覆盖
func (s *GameMemoService) Upsert(ctx context.Context, userID, gameID uint64, p GameMemoPayload) (*model.GameMemo, error) {
	m := &model.GameMemo{UserID: userID, GameID: gameID, Memo: p.Memo}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateOrUpdate(ctx, m); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "game_id": gameID, "memo_id": m.ID}).Info("作品备注已保存")
	return m, nil
}

// Update 仅本人可修改，非本人返回 (nil, nil)
func (s *GameMemoService) Update(ctx context.Context, id, userID uint64, p GameMemoPayload) (*model.GameMemo, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil || existing == nil || existing.UserID != userID {
		return nil, err
	}
	existing.Memo = p.Memo
	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return existing, nil
}

// Delete 仅本人可删除
func (s *GameMemoService) Delete(ctx context.Context, id, userID uint64) (bool, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil || existing == nil || existing.UserID != userID {
		return false, err
	}
	return s.repo.Delete(ctx, id)
}
