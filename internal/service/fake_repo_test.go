package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"ClearTracker/internal/model"
	"ClearTracker/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&model.User{}, &model.Game{}, &model.GameCharacter{},
		&model.ClearRecord{}, &model.ClearStatus{}, &model.GameMemo{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeClearRecordRepo 内存实现，可注入冲突/故障
type fakeClearRecordRepo struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.ClearRecord
	clock  time.Time

	createHook          func(rec *model.ClearRecord) error
	createOrUpdateErr   error
	createOrUpdateCalls int
	createCalls         int
	updateCalls         int
}

var _ repository.ClearRecordRepository = (*fakeClearRecordRepo)(nil)

func newFakeClearRecordRepo() *fakeClearRecordRepo {
	return &fakeClearRecordRepo{
		rows:  make(map[uint64]model.ClearRecord),
		clock: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fakeClearRecordRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeClearRecordRepo) list(match func(model.ClearRecord) bool) []*model.ClearRecord {
	var out []*model.ClearRecord
	for _, r := range f.rows {
		if match(r) {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeClearRecordRepo) FindByID(_ context.Context, id uint64) (*model.ClearRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeClearRecordRepo) FindByUserID(_ context.Context, userID uint64) ([]*model.ClearRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(func(r model.ClearRecord) bool { return r.UserID == userID }), nil
}

func (f *fakeClearRecordRepo) FindByGameID(_ context.Context, gameID uint64) ([]*model.ClearRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(func(r model.ClearRecord) bool { return r.GameID == gameID }), nil
}

func (f *fakeClearRecordRepo) FindByUserAndGame(_ context.Context, userID, gameID uint64) ([]*model.ClearRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(func(r model.ClearRecord) bool { return r.UserID == userID && r.GameID == gameID }), nil
}

func (f *fakeClearRecordRepo) FindByNaturalKey(_ context.Context, key model.NaturalKey) (*model.ClearRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findByKey(key), nil
}

func (f *fakeClearRecordRepo) findByKey(key model.NaturalKey) *model.ClearRecord {
	for _, r := range f.rows {
		if r.Key() == key {
			r := r
			return &r
		}
	}
	return nil
}

func (f *fakeClearRecordRepo) Create(_ context.Context, rec *model.ClearRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createHook != nil {
		if err := f.createHook(rec); err != nil {
			return err
		}
	}
	if f.findByKey(rec.Key()) != nil {
		return model.ErrConflict
	}
	f.insert(rec)
	return nil
}

func (f *fakeClearRecordRepo) insert(rec *model.ClearRecord) {
	f.nextID++
	now := f.tick()
	rec.ID = f.nextID
	rec.CreatedAt = now
	rec.LastUpdatedAt = now
	f.rows[rec.ID] = *rec
}

func (f *fakeClearRecordRepo) Update(_ context.Context, rec *model.ClearRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	old, ok := f.rows[rec.ID]
	if !ok {
		return model.ErrNotFound
	}
	if other := f.findByKey(rec.Key()); other != nil && other.ID != rec.ID {
		return model.ErrConflict
	}
	rec.CreatedAt = old.CreatedAt
	rec.LastUpdatedAt = f.tick()
	f.rows[rec.ID] = *rec
	return nil
}

func (f *fakeClearRecordRepo) Delete(_ context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

func (f *fakeClearRecordRepo) Exists(_ context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	return ok, nil
}

func (f *fakeClearRecordRepo) CreateOrUpdate(_ context.Context, rec *model.ClearRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createOrUpdateCalls++
	if f.createOrUpdateErr != nil {
		return f.createOrUpdateErr
	}
	if existing := f.findByKey(rec.Key()); existing != nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		rec.LastUpdatedAt = f.tick()
		f.rows[rec.ID] = *rec
		return nil
	}
	f.insert(rec)
	return nil
}

func (f *fakeClearRecordRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}
