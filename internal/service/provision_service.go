package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"qindex/internal/pkg/cache"
	"qindex/internal/pkg/id"
	"qindex/internal/pkg/mongodb"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrDrift             = errors.New("declared indexes are missing or conflicting")
	ErrNoRunStore        = errors.New("run record store is not configured")
	ErrNoRecordedRun     = errors.New("no recorded run")
)

// Locker 运行锁
type Locker interface {
	Lock(ctx context.Context, key, token string, ttl time.Duration) error
	Unlock(ctx context.Context, key, token string) error
}

// RunStore 运行记录存储
type RunStore interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Get(ctx context.Context, key string, dest any) error
}

// RunRecord 一次索引创建运行的记录
type RunRecord struct {
	RunID      string    `json:"run_id"`
	Database   string    `json:"database"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Declared   int       `json:"declared"`
	Created    []string  `json:"created"` // 本次新建的索引，格式 collection.index_name
	Error      string    `json:"error,omitempty"`
}

// ProvisionService 索引创建、报告和校验
type ProvisionService struct {
	db      *mongo.Database
	models  []mongodb.Model
	out     io.Writer
	locker  Locker
	lockTTL time.Duration
	runs    RunStore
}

// NewProvisionService 创建索引服务
// out 接收进度信息和索引报告
func NewProvisionService(db *mongo.Database, out io.Writer, models ...mongodb.Model) *ProvisionService {
	return &ProvisionService{
		db:     db,
		models: models,
		out:    out,
	}
}

// WithLock 启用运行锁
func (s *ProvisionService) WithLock(locker Locker, ttl time.Duration) *ProvisionService {
	s.locker = locker
	s.lockTTL = ttl
	return s
}

// WithRunStore 启用运行记录
func (s *ProvisionService) WithRunStore(store RunStore) *ProvisionService {
	s.runs = store
	return s
}

// Ensure 按声明顺序逐个创建索引
// 任何一个索引失败都会立即终止，之前创建的索引保留
func (s *ProvisionService) Ensure(ctx context.Context) (*RunRecord, error) {
	record := &RunRecord{
		RunID:     id.New(),
		Database:  s.db.Name(),
		StartedAt: time.Now(),
		Created:   []string{},
	}
	logger := log.With().Str("run_id", record.RunID).Str("database", record.Database).Logger()

	if s.locker != nil {
		key := cache.LockKey(record.Database)
		if err := s.locker.Lock(ctx, key, record.RunID, s.lockTTL); err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		defer func() {
			if err := s.locker.Unlock(context.WithoutCancel(ctx), key, record.RunID); err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("failed to release lock")
			}
		}()
	}

	fmt.Fprintf(s.out, "Creating indexes for %s database (run %s)...\n", record.Database, id.Short(record.RunID))

	err := s.ensureAll(ctx, record)
	record.FinishedAt = time.Now()
	if err != nil {
		record.Error = err.Error()
	}
	s.saveRun(ctx, record)

	if err != nil {
		logger.Error().Err(err).Int("created", len(record.Created)).Msg("index provisioning aborted")
		return record, err
	}

	fmt.Fprintln(s.out, "All indexes created successfully!")
	logger.Info().
		Int("declared", record.Declared).
		Int("created", len(record.Created)).
		Dur("elapsed", record.FinishedAt.Sub(record.StartedAt)).
		Msg("index provisioning completed")
	return record, nil
}

func (s *ProvisionService) ensureAll(ctx context.Context, record *RunRecord) error {
	for _, m := range s.models {
		name := m.Collection()
		fmt.Fprintf(s.out, "Creating indexes for '%s' collection...\n", name)

		existing, err := s.indexNames(ctx, name)
		if err != nil {
			return err
		}

		declared := m.IndexModels()
		record.Declared += len(declared)

		names, err := m.EnsureIndexes(ctx, s.db)
		for _, n := range names {
			if !existing[n] {
				record.Created = append(record.Created, name+"."+n)
			}
		}
		if err != nil {
			return fmt.Errorf("ensure indexes for %s: %w", name, err)
		}

		log.Debug().
			Str("collection", name).
			Int("declared", len(declared)).
			Strs("indexes", names).
			Msg("collection indexes ensured")
	}
	return nil
}

func (s *ProvisionService) indexNames(ctx context.Context, collection string) (map[string]bool, error) {
	infos, err := s.catalog(ctx, collection)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(infos))
	for _, info := range infos {
		names[info.Name] = true
	}
	return names, nil
}

func (s *ProvisionService) catalog(ctx context.Context, collection string) ([]mongodb.IndexInfo, error) {
	specs, err := mongodb.ListIndexes(ctx, s.db.Collection(collection))
	if err != nil {
		return nil, err
	}
	return mongodb.DecodeIndexes(specs)
}

// saveRun 记录运行结果，失败只记录日志
func (s *ProvisionService) saveRun(ctx context.Context, record *RunRecord) {
	if s.runs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.runs.Set(ctx, cache.LastRunKey(record.Database), record, cache.LastRunTTL); err != nil {
		log.Warn().Err(err).Str("run_id", record.RunID).Msg("failed to save run record")
	}
}

// LastRun 读取最近一次运行记录
func (s *ProvisionService) LastRun(ctx context.Context) (*RunRecord, error) {
	if s.runs == nil {
		return nil, ErrNoRunStore
	}
	var record RunRecord
	if err := s.runs.Get(ctx, cache.LastRunKey(s.db.Name()), &record); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrNoRecordedRun
		}
		return nil, err
	}
	return &record, nil
}

// selectModels 按集合名筛选模型，为空时返回全部
func (s *ProvisionService) selectModels(collections []string) ([]mongodb.Model, error) {
	if len(collections) == 0 {
		return s.models, nil
	}
	byName := make(map[string]mongodb.Model, len(s.models))
	for _, m := range s.models {
		byName[m.Collection()] = m
	}
	selected := make([]mongodb.Model, 0, len(collections))
	for _, name := range collections {
		m, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
		}
		selected = append(selected, m)
	}
	return selected, nil
}
