package repository

import (
	"context"

	"ClearTracker/internal/model"

	"gorm.io/gorm"
)

// ClearStatusRepository 难易度级通关状态仓储
type ClearStatusRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.ClearStatus, error)
	FindByUserID(ctx context.Context, userID uint64) ([]*model.ClearStatus, error)
	FindByUserAndGame(ctx context.Context, userID, gameID uint64) ([]*model.ClearStatus, error)
	FindByKey(ctx context.Context, userID, gameID uint64, difficulty string) (*model.ClearStatus, error)
	Create(ctx context.Context, status *model.ClearStatus) error
	Update(ctx context.Context, status *model.ClearStatus) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

type clearStatusRepository struct {
	db *gorm.DB
}

// NewClearStatusRepository 创建通关状态仓储
func NewClearStatusRepository(db *gorm.DB) ClearStatusRepository {
	return &clearStatusRepository{db: db}
}

func (r *clearStatusRepository) FindByID(ctx context.Context, id uint64) (*model.ClearStatus, error) {
	var s model.ClearStatus
	found, err := notFoundAsNil(r.db.WithContext(ctx).First(&s, id).Error)
	if !found {
		return nil, err
	}
	return &s, nil
}

func (r *clearStatusRepository) FindByUserID(ctx context.Context, userID uint64) ([]*model.ClearStatus, error) {
	var list []*model.ClearStatus
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("game_id, id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *clearStatusRepository) FindByUserAndGame(ctx context.Context, userID, gameID uint64) ([]*model.ClearStatus, error) {
	var list []*model.ClearStatus
	if err := r.db.WithContext(ctx).Where("user_id = ? AND game_id = ?", userID, gameID).Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *clearStatusRepository) FindByKey(ctx context.Context, userID, gameID uint64, difficulty string) (*model.ClearStatus, error) {
	var s model.ClearStatus
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND game_id = ? AND difficulty = ?", userID, gameID, difficulty).
		First(&s).Error
	found, err := notFoundAsNil(err)
	if !found {
		return nil, err
	}
	return &s, nil
}

func (r *clearStatusRepository) Create(ctx context.Context, status *model.ClearStatus) error {
	return translateError(r.db.WithContext(ctx).Create(status).Error)
}

func (r *clearStatusRepository) Update(ctx context.Context, status *model.ClearStatus) error {
	res := r.db.WithContext(ctx).Model(status).
		Select("*").Omit("id", "created_at").
		Updates(status)
	if err := translateError(res.Error); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *clearStatusRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.ClearStatus{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
