package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ClearTracker/internal/model"
	"ClearTracker/internal/repository"
	"ClearTracker/internal/rules"

	"github.com/sirupsen/logrus"
)

// GameService 作品目录
type GameService struct {
	repo   repository.GameRepository
	logger *logrus.Logger
}

// NewGameService 创建 GameService
func NewGameService(repo repository.GameRepository, logger *logrus.Logger) *GameService {
	return &GameService{repo: repo, logger: logger}
}

// GamePayload 创建/整体更新作品
type GamePayload struct {
	Title        string  `json:"title"`
	SeriesNumber float64 `json:"series_number"`
	ReleaseYear  int     `json:"release_year"`
	GameType     string  `json:"game_type"`
}

func (p GamePayload) toModel() (*model.Game, error) {
	gt, err := model.ParseGameType(p.GameType)
	if err != nil {
		return nil, err
	}
	g := &model.Game{
		Title:        strings.TrimSpace(p.Title),
		SeriesNumber: p.SeriesNumber,
		ReleaseYear:  p.ReleaseYear,
		GameType:     gt,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// List 按系列编号排序
func (s *GameService) List(ctx context.Context, filter repository.GameFilter) ([]*model.Game, error) {
	return s.repo.List(ctx, filter)
}

// Get 不存在返回 (nil, nil)
func (s *GameService) Get(ctx context.Context, id uint64) (*model.Game, error) {
	return s.repo.FindByID(ctx, id)
}

// Create 创建作品
func (s *GameService) Create(ctx context.Context, p GamePayload) (*model.Game, error) {
	g, err := p.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"game_id": g.ID, "title": g.Title}).Info("作品已创建")
	return g, nil
}

// Update 显式整体更新
func (s *GameService) Update(ctx context.Context, id uint64, p GamePayload) (*model.Game, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}
	g, err := p.toModel()
	if err != nil {
		return nil, err
	}
	g.ID = existing.ID
	g.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, g); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	s.logger.WithField("game_id", id).Info("作品已更新")
	return g, nil
}

// Delete 删除作品
func (s *GameService) Delete(ctx context.Context, id uint64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.WithField("game_id", id).Info("作品已删除")
	}
	return deleted, nil
}

// Rules 作品规则；作品不在目录中返回 (nil, nil)，在目录中但规则表未登记时返回 Unknown
func (s *GameService) Rules(ctx context.Context, id uint64) (*rules.Result, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil || g == nil {
		return nil, err
	}
	res := rules.ForGame(g.ID)
	return &res, nil
}

// GameCharacterService 机体目录
type GameCharacterService struct {
	repo     repository.GameCharacterRepository
	gameRepo repository.GameRepository
	logger   *logrus.Logger
}

// NewGameCharacterService 创建 GameCharacterService
func NewGameCharacterService(repo repository.GameCharacterRepository, gameRepo repository.GameRepository, logger *logrus.Logger) *GameCharacterService {
	return &GameCharacterService{repo: repo, gameRepo: gameRepo, logger: logger}
}

// GameCharacterPayload 创建/更新机体
type GameCharacterPayload struct {
	CharacterName string  `json:"character_name"`
	Description   *string `json:"description"`
	SortOrder     int     `json:"sort_order"`
}

// ListByGame 按 sort_order, id 排序
func (s *GameCharacterService) ListByGame(ctx context.Context, gameID uint64) ([]*model.GameCharacter, error) {
	return s.repo.FindByGameID(ctx, gameID)
}

// Get 不存在返回 (nil, nil)
func (s *GameCharacterService) Get(ctx context.Context, id uint64) (*model.GameCharacter, error) {
	return s.repo.FindByID(ctx, id)
}

// CountByGame 作品下机体数
func (s *GameCharacterService) CountByGame(ctx context.Context, gameID uint64) (int64, error) {
	return s.repo.CountByGameID(ctx, gameID)
}

// Create 作品不存在返回 (nil, nil)；同作品重名返回 ErrConflict
func (s *GameCharacterService) Create(ctx context.Context, gameID uint64, p GameCharacterPayload) (*model.GameCharacter, error) {
	g, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil || g == nil {
		return nil, err
	}
	ch := &model.GameCharacter{
		GameID:        gameID,
		CharacterName: p.CharacterName,
		Description:   p.Description,
		SortOrder:     p.SortOrder,
	}
	if err := ch.Validate(); err != nil {
		return nil, err
	}
	dup, err := s.repo.FindByGameAndName(ctx, gameID, ch.CharacterName)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, fmt.Errorf("%w: character %q already exists in game %d", model.ErrConflict, ch.CharacterName, gameID)
	}
	if err := s.repo.Create(ctx, ch); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"game_id": gameID, "character_id": ch.ID}).Info("机体已创建")
	return ch, nil
}

// Update 改名时检查同作品重名；game_id 不可修改
func (s *GameCharacterService) Update(ctx context.Context, id uint64, p GameCharacterPayload) (*model.GameCharacter, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}
	ch := *existing
	ch.CharacterName = p.CharacterName
	ch.Description = p.Description
	ch.SortOrder = p.SortOrder
	if err := ch.Validate(); err != nil {
		return nil, err
	}
	if ch.CharacterName != existing.CharacterName {
		dup, err := s.repo.FindByGameAndName(ctx, ch.GameID, ch.CharacterName)
		if err != nil {
			return nil, err
		}
		if dup != nil && dup.ID != ch.ID {
			return nil, fmt.Errorf("%w: character %q already exists in game %d", model.ErrConflict, ch.CharacterName, ch.GameID)
		}
	}
	if err := s.repo.Update(ctx, &ch); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	s.logger.WithField("character_id", id).Info("机体已更新")
	return &ch, nil
}

// Delete 删除机体
func (s *GameCharacterService) Delete(ctx context.Context, id uint64) (bool, error) {
	return s.repo.Delete(ctx, id)
}
