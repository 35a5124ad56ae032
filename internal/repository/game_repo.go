package repository

import (
	"context"

	"ClearTracker/internal/model"

	"gorm.io/gorm"
)

// GameRepository 作品目录仓储
type GameRepository interface {
	List(ctx context.Context, filter GameFilter) ([]*model.Game, error)
	FindByID(ctx context.Context, id uint64) (*model.Game, error)
	Create(ctx context.Context, game *model.Game) error
	Update(ctx context.Context, game *model.Game) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

// GameFilter 作品列表筛选
type GameFilter struct {
	SeriesNumber *float64       // 系列编号
	GameType     model.GameType // 作品类型，空表示不过滤
}

type gameRepository struct {
	db *gorm.DB
}

// NewGameRepository 创建作品仓储
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) List(ctx context.Context, filter GameFilter) ([]*model.Game, error) {
	db := r.db.WithContext(ctx).Model(&model.Game{})
	if filter.SeriesNumber != nil {
		db = db.Where("series_number = ?", *filter.SeriesNumber)
	}
	if filter.GameType != "" {
		db = db.Where("game_type = ?", filter.GameType)
	}
	var list []*model.Game
	if err := db.Order("series_number, id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *gameRepository) FindByID(ctx context.Context, id uint64) (*model.Game, error) {
	var g model.Game
	found, err := notFoundAsNil(r.db.WithContext(ctx).First(&g, id).Error)
	if !found {
		return nil, err
	}
	return &g, nil
}

func (r *gameRepository) Create(ctx context.Context, game *model.Game) error {
	return translateError(r.db.WithContext(ctx).Create(game).Error)
}

func (r *gameRepository) Update(ctx context.Context, game *model.Game) error {
	res := r.db.WithContext(ctx).Model(game).
		Select("title", "series_number", "release_year", "game_type", "updated_at").
		Updates(game)
	if err := translateError(res.Error); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gameRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Game{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
