package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"qindex/internal/model/questionnaire"
	"qindex/internal/pkg/cache"
)

// memoryStore 内存运行记录
type memoryStore struct {
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = data
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string, dest any) error {
	data, ok := m.data[key]
	if !ok {
		return cache.ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

// fakeLocker 记录加锁和解锁调用
type fakeLocker struct {
	held     bool
	locked   []string
	unlocked []string
}

func (f *fakeLocker) Lock(_ context.Context, key, token string, _ time.Duration) error {
	if f.held {
		return cache.ErrLocked
	}
	f.locked = append(f.locked, key+"="+token)
	return nil
}

func (f *fakeLocker) Unlock(_ context.Context, key, token string) error {
	f.unlocked = append(f.unlocked, key+"="+token)
	return nil
}

func indexSpec(name string, keys bson.D) bson.D {
	return bson.D{
		{Key: "v", Value: int32(2)},
		{Key: "key", Value: keys},
		{Key: "name", Value: name},
	}
}

func idOnly(mt *mtest.T, collection string) bson.D {
	return mtest.CreateCursorResponse(0, mt.DB.Name()+"."+collection, mtest.FirstBatch,
		indexSpec("_id_", bson.D{{Key: "_id", Value: int32(1)}}))
}

// successResponses 每个集合一次 listIndexes 加上每个索引一次 createIndexes
func successResponses(mt *mtest.T) []bson.D {
	var responses []bson.D
	for _, m := range questionnaire.Models() {
		responses = append(responses, idOnly(mt, m.Collection()))
		for range m.IndexModels() {
			responses = append(responses, mtest.CreateSuccessResponse())
		}
	}
	return responses
}

func TestProvisionService_Ensure(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates all declared indexes", func(mt *mtest.T) {
		mt.AddMockResponses(successResponses(mt)...)

		var out bytes.Buffer
		store := newMemoryStore()
		locker := &fakeLocker{}
		svc := NewProvisionService(mt.DB, &out, questionnaire.Models()...).
			WithLock(locker, time.Minute).
			WithRunStore(store)

		record, err := svc.Ensure(context.Background())
		if err != nil {
			mt.Fatalf("Ensure() error = %v", err)
		}
		if record.Declared != 27 || len(record.Created) != 27 {
			mt.Errorf("declared=%d created=%d, want 27/27", record.Declared, len(record.Created))
		}
		if record.Created[0] != "companies.name_1" {
			mt.Errorf("first created = %q, want companies.name_1", record.Created[0])
		}

		text := out.String()
		if got := strings.Count(text, "Creating indexes for '"); got != 5 {
			mt.Errorf("progress lines = %d, want 5", got)
		}
		if !strings.Contains(text, "All indexes created successfully!") {
			mt.Errorf("missing completion line in %q", text)
		}

		wantLock := cache.LockKey(mt.DB.Name()) + "=" + record.RunID
		if len(locker.locked) != 1 || locker.locked[0] != wantLock {
			mt.Errorf("locked = %v, want [%s]", locker.locked, wantLock)
		}
		if len(locker.unlocked) != 1 || locker.unlocked[0] != wantLock {
			mt.Errorf("unlocked = %v, want [%s]", locker.unlocked, wantLock)
		}

		last, err := svc.LastRun(context.Background())
		if err != nil {
			mt.Fatalf("LastRun() error = %v", err)
		}
		if last.RunID != record.RunID || last.Error != "" {
			mt.Errorf("LastRun() = %+v", last)
		}
	})

	mt.Run("existing indexes are not counted as created", func(mt *mtest.T) {
		company := &questionnaire.Company{}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, mt.DB.Name()+".companies", mtest.FirstBatch,
				indexSpec("_id_", bson.D{{Key: "_id", Value: int32(1)}}),
				indexSpec("name_1", bson.D{{Key: "name", Value: int32(1)}}),
			),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		var out bytes.Buffer
		record, err := NewProvisionService(mt.DB, &out, company).Ensure(context.Background())
		if err != nil {
			mt.Fatalf("Ensure() error = %v", err)
		}
		if len(record.Created) != 1 || record.Created[0] != "companies.created_at_-1" {
			mt.Errorf("created = %v, want [companies.created_at_-1]", record.Created)
		}
	})

	mt.Run("aborts on the first failing index", func(mt *mtest.T) {
		mt.AddMockResponses(
			idOnly(mt, "companies"),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			idOnly(mt, "questionnaires"),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    13,
				Name:    "Unauthorized",
				Message: "not authorized to create index",
			}),
		)

		var out bytes.Buffer
		store := newMemoryStore()
		svc := NewProvisionService(mt.DB, &out, questionnaire.Models()...).WithRunStore(store)

		record, err := svc.Ensure(context.Background())
		if err == nil {
			mt.Fatal("Ensure() expected error")
		}
		var cmdErr mongo.CommandError
		if !errors.As(err, &cmdErr) || cmdErr.Code != 13 {
			mt.Errorf("Ensure() error = %v, want command error 13", err)
		}
		if !strings.Contains(err.Error(), "questionnaires") {
			mt.Errorf("error should name the collection: %v", err)
		}
		if len(record.Created) != 4 {
			mt.Errorf("created = %v, want 4 indexes before the failure", record.Created)
		}
		if strings.Contains(out.String(), "All indexes created successfully!") {
			mt.Error("completion line printed after failure")
		}
		if strings.Contains(out.String(), "company_questionnaires") {
			mt.Error("collections after the failure must not be attempted")
		}

		last, err := svc.LastRun(context.Background())
		if err != nil {
			mt.Fatalf("LastRun() error = %v", err)
		}
		if last.Error == "" {
			mt.Error("failed run should record its error")
		}
	})

	mt.Run("held lock stops the run before touching the database", func(mt *mtest.T) {
		var out bytes.Buffer
		svc := NewProvisionService(mt.DB, &out, questionnaire.Models()...).
			WithLock(&fakeLocker{held: true}, time.Minute)

		record, err := svc.Ensure(context.Background())
		if !errors.Is(err, cache.ErrLocked) {
			mt.Fatalf("Ensure() error = %v, want ErrLocked", err)
		}
		if record != nil || out.Len() != 0 {
			mt.Errorf("record = %+v, output = %q", record, out.String())
		}
	})

	mt.Run("last run without a record", func(mt *mtest.T) {
		svc := NewProvisionService(mt.DB, &bytes.Buffer{}).WithRunStore(newMemoryStore())
		_, err := svc.LastRun(context.Background())
		if !errors.Is(err, ErrNoRecordedRun) {
			mt.Errorf("LastRun() error = %v, want ErrNoRecordedRun", err)
		}
	})
}

func TestProvisionService_LastRun_NoStore(t *testing.T) {
	Convey("未配置运行记录存储时返回 ErrNoRunStore", t, func() {
		_, err := NewProvisionService(nil, &bytes.Buffer{}).LastRun(context.Background())
		So(errors.Is(err, ErrNoRunStore), ShouldBeTrue)
	})
}
