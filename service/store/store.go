// Package store is the device-local persistent key/value storage.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/utils"
)

var ErrStorage = errors.New("local storage failure")

// KV is what the token store and the tenant context need.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Store struct {
	db    *gorm.DB
	cache *cache.Cache
	// 串行化“读库再回填缓存”与写操作，避免已删除的值被回填
	mu sync.Mutex
}

var _ KV = (*Store)(nil)

// Open 打开（必要时创建）sqlite 数据库文件
func Open(path string, debug bool) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && !utils.IsFileExists(dir) {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", ErrStorage, dir, err)
		}
	}
	return open(sqlite.Open(path), debug)
}

// OpenMemory opens a private in-memory database.
func OpenMemory() (*Store, error) {
	return open(sqlite.Open("file::memory:"), false)
}

func open(dialector gorm.Dialector, debug bool) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrStorage, err)
	}
	if debug {
		db = db.Debug()
	}
	// sqlite 单写者，避免 database is locked
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&model.KVEntry{}); err != nil {
		return nil, fmt.Errorf("%w: migrate: %v", ErrStorage, err)
	}
	return &Store{
		db:    db,
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		return v.(string), true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(key); ok {
		return v.(string), true, nil
	}

	var entry model.KVEntry
	err := s.db.WithContext(ctx).Where("`key` = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %s: %v", ErrStorage, key, err)
	}

	s.cache.Set(key, entry.Value, cache.NoExpiration)
	return entry.Value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := model.KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		s.cache.Delete(key)
		return fmt.Errorf("%w: set %s: %v", ErrStorage, key, err)
	}
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(key)
	if err := s.db.WithContext(ctx).Where("`key` = ?", key).Delete(&model.KVEntry{}).Error; err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStorage, key, err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
