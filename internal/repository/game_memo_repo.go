package repository

import (
	"context"

	"ClearTracker/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameMemoRepository 作品备注仓储
type GameMemoRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.GameMemo, error)
	FindByUserAndGame(ctx context.Context, userID, gameID uint64) (*model.GameMemo, error)
	FindByUserID(ctx context.Context, userID uint64) ([]*model.GameMemo, error)
	// CreateOrUpdate 按 (user_id, game_id) 插入或覆盖 memo
	CreateOrUpdate(ctx context.Context, memo *model.GameMemo) error
	Update(ctx context.Context, memo *model.GameMemo) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

type gameMemoRepository struct {
	db *gorm.DB
}

// NewGameMemoRepository 创建作品备注仓储
func NewGameMemoRepository(db *gorm.DB) GameMemoRepository {
	return &gameMemoRepository{db: db}
}

func (r *gameMemoRepository) FindByID(ctx context.Context, id uint64) (*model.GameMemo, error) {
	var m model.GameMemo
	found, err := notFoundAsNil(r.db.WithContext(ctx).First(&m, id).Error)
	if !found {
		return nil, err
	}
	return &m, nil
}

func (r *gameMemoRepository) FindByUserAndGame(ctx context.Context, userID, gameID uint64) (*model.GameMemo, error) {
	var m model.GameMemo
	err := r.db.WithContext(ctx).Where("user_id = ? AND game_id = ?", userID, gameID).First(&m).Error
	found, err := notFoundAsNil(err)
	if !found {
		return nil, err
	}
	return &m, nil
}

func (r *gameMemoRepository) FindByUserID(ctx context.Context, userID uint64) ([]*model.GameMemo, error) {
	var list []*model.GameMemo
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("game_id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *gameMemoRepository) CreateOrUpdate(ctx context.Context, memo *model.GameMemo) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "game_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"memo", "updated_at"}),
	}).Create(memo).Error; err != nil {
		return translateError(err)
	}
	// 冲突分支下 id/created_at 需要回读
	return r.db.WithContext(ctx).Where("user_id = ? AND game_id = ?", memo.UserID, memo.GameID).First(memo).Error
}

func (r *gameMemoRepository) Update(ctx context.Context, memo *model.GameMemo) error {
	res := r.db.WithContext(ctx).Model(memo).Select("memo", "updated_at").Updates(memo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gameMemoRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.GameMemo{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
