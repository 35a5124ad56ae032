package repository

import (
	"context"

	"ClearTracker/internal/model"

	"gorm.io/gorm"
)

// GameCharacterRepository 机体仓储
type GameCharacterRepository interface {
	FindByGameID(ctx context.Context, gameID uint64) ([]*model.GameCharacter, error)
	FindByID(ctx context.Context, id uint64) (*model.GameCharacter, error)
	FindByGameAndName(ctx context.Context, gameID uint64, name string) (*model.GameCharacter, error)
	CountByGameID(ctx context.Context, gameID uint64) (int64, error)
	Create(ctx context.Context, ch *model.GameCharacter) error
	Update(ctx context.Context, ch *model.GameCharacter) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

type gameCharacterRepository struct {
	db *gorm.DB
}

// NewGameCharacterRepository 创建机体仓储
func NewGameCharacterRepository(db *gorm.DB) GameCharacterRepository {
	return &gameCharacterRepository{db: db}
}

func (r *gameCharacterRepository) FindByGameID(ctx context.Context, gameID uint64) ([]*model.GameCharacter, error) {
	var list []*model.GameCharacter
	if err := r.db.WithContext(ctx).Where("game_id = ?", gameID).Order("sort_order, id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *gameCharacterRepository) FindByID(ctx context.Context, id uint64) (*model.GameCharacter, error) {
	var ch model.GameCharacter
	found, err := notFoundAsNil(r.db.WithContext(ctx).First(&ch, id).Error)
	if !found {
		return nil, err
	}
	return &ch, nil
}

func (r *gameCharacterRepository) FindByGameAndName(ctx context.Context, gameID uint64, name string) (*model.GameCharacter, error) {
	var ch model.GameCharacter
	err := r.db.WithContext(ctx).Where("game_id = ? AND character_name = ?", gameID, name).First(&ch).Error
	found, err := notFoundAsNil(err)
	if !found {
		return nil, err
	}
	return &ch, nil
}

func (r *gameCharacterRepository) CountByGameID(ctx context.Context, gameID uint64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.GameCharacter{}).Where("game_id = ?", gameID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *gameCharacterRepository) Create(ctx context.Context, ch *model.GameCharacter) error {
	return translateError(r.db.WithContext(ctx).Create(ch).Error)
}

// Update 只更新名称、说明与排序，game_id 不可变
func (r *gameCharacterRepository) Update(ctx context.Context, ch *model.GameCharacter) error {
	res := r.db.WithContext(ctx).Model(ch).
		Select("character_name", "description", "sort_order").
		Updates(ch)
	if err := translateError(res.Error); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gameCharacterRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.GameCharacter{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
