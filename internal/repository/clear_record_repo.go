package repository

import (
	"context"

	"ClearTracker/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClearRecordRepository 通关记录仓储。查不到时返回 (nil, nil)；
// 唯一约束冲突返回包装了 model.ErrConflict 的错误。
type ClearRecordRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.ClearRecord, error)
	FindByUserID(ctx context.Context, userID uint64) ([]*model.ClearRecord, error)
	FindByGameID(ctx context.Context, gameID uint64) ([]*model.ClearRecord, error)
	FindByUserAndGame(ctx context.Context, userID, gameID uint64) ([]*model.ClearRecord, error)
	FindByNaturalKey(ctx context.Context, key model.NaturalKey) (*model.ClearRecord, error)
	Create(ctx context.Context, record *model.ClearRecord) error
	// Update 按 ID 全字段覆盖（created_at 除外），目标不存在返回 model.ErrNotFound
	Update(ctx context.Context, record *model.ClearRecord) error
	Delete(ctx context.Context, id uint64) (bool, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	// CreateOrUpdate 按自然键原子地插入或覆盖，完成后 record 回填为库中最新状态
	CreateOrUpdate(ctx context.Context, record *model.ClearRecord) error
}

// clearRecordUpdateColumns 自然键冲突时需要覆盖的列
var clearRecordUpdateColumns = []string{
	"is_cleared", "is_no_continue_clear", "is_no_bomb_clear", "is_no_miss_clear",
	"is_full_spell_card", "is_special_clear_1", "is_special_clear_2", "is_special_clear_3",
	"cleared_at", "last_updated_at",
}

type clearRecordRepository struct {
	db *gorm.DB
}

// NewClearRecordRepository 创建通关记录仓储
func NewClearRecordRepository(db *gorm.DB) ClearRecordRepository {
	return &clearRecordRepository{db: db}
}

func (r *clearRecordRepository) FindByID(ctx context.Context, id uint64) (*model.ClearRecord, error) {
	var rec model.ClearRecord
	found, err := notFoundAsNil(r.db.WithContext(ctx).First(&rec, id).Error)
	if !found {
		return nil, err
	}
	return &rec, nil
}

func (r *clearRecordRepository) FindByUserID(ctx context.Context, userID uint64) ([]*model.ClearRecord, error) {
	var list []*model.ClearRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("game_id, character_name, difficulty, mode").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *clearRecordRepository) FindByGameID(ctx context.Context, gameID uint64) ([]*model.ClearRecord, error) {
	var list []*model.ClearRecord
	if err := r.db.WithContext(ctx).Where("game_id = ?", gameID).Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *clearRecordRepository) FindByUserAndGame(ctx context.Context, userID, gameID uint64) ([]*model.ClearRecord, error) {
	var list []*model.ClearRecord
	if err := r.db.WithContext(ctx).Where("user_id = ? AND game_id = ?", userID, gameID).
		Order("character_name, difficulty, mode").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *clearRecordRepository) FindByNaturalKey(ctx context.Context, key model.NaturalKey) (*model.ClearRecord, error) {
	return findByNaturalKey(r.db.WithContext(ctx), key)
}

func findByNaturalKey(db *gorm.DB, key model.NaturalKey) (*model.ClearRecord, error) {
	var rec model.ClearRecord
	err := db.Where("user_id = ? AND game_id = ? AND character_name = ? AND difficulty = ? AND mode = ?",
		key.UserID, key.GameID, key.CharacterName, key.Difficulty, key.Mode).First(&rec).Error
	found, err := notFoundAsNil(err)
	if !found {
		return nil, err
	}
	return &rec, nil
}

func (r *clearRecordRepository) Create(ctx context.Context, record *model.ClearRecord) error {
	return translateError(r.db.WithContext(ctx).Create(record).Error)
}

func (r *clearRecordRepository) Update(ctx context.Context, record *model.ClearRecord) error {
	res := r.db.WithContext(ctx).Model(record).
		Select("*").Omit("id", "created_at").
		Updates(record)
	if err := translateError(res.Error); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *clearRecordRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.ClearRecord{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *clearRecordRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.ClearRecord{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *clearRecordRepository) CreateOrUpdate(ctx context.Context, record *model.ClearRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record.ID = 0
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "game_id"}, {Name: "character_name"}, {Name: "difficulty"}, {Name: "mode"},
			},
			DoUpdates: clause.AssignmentColumns(clearRecordUpdateColumns),
		}).Create(record).Error; err != nil {
			return translateError(err)
		}
		// 冲突更新时不一定回填 id/created_at，重新读取一次
		saved, err := findByNaturalKey(tx, record.Key())
		if err != nil {
			return err
		}
		if saved == nil {
			return model.ErrNotFound
		}
		*record = *saved
		return nil
	})
}
