package service

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"converso-go/internal/model"
	"converso-go/internal/repository"
	"converso-go/pkg/events"
	"converso-go/pkg/log"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Companion{}, &model.SessionHistory{}, &model.Bookmark{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedCompanion(t *testing.T, repo repository.CompanionRepository, id, author string) {
	t.Helper()
	err := repo.Create(&model.Companion{
		ID:       id,
		Name:     "companion-" + id,
		Subject:  "maths",
		Topic:    "fractions",
		Voice:    "female",
		Style:    "casual",
		Duration: 15,
		Author:   author,
	})
	if err != nil {
		t.Fatalf("seed companion %s: %v", id, err)
	}
}

// fakePopularityRepo 返回固定的排行，记录计数调用。
type fakePopularityRepo struct {
	ids    []string
	incred []string
}

func (f *fakePopularityRepo) IncrScore(_ context.Context, companionID string) error {
	f.incred = append(f.incred, companionID)
	return nil
}

func (f *fakePopularityRepo) TopIDs(_ context.Context, _ int) ([]string, error) {
	return f.ids, nil
}

// fakePageCache 记录被失效的路径。
type fakePageCache struct {
	invalidated []string
	failWith    error
}

func (f *fakePageCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (f *fakePageCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

func (f *fakePageCache) Invalidate(_ context.Context, path string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.invalidated = append(f.invalidated, path)
	return nil
}

// fakePublisher 捕获已发布的事件。
type fakePublisher struct {
	published []events.SessionCompletedEvent
	failWith  error
}

func (f *fakePublisher) publish(event events.SessionCompletedEvent) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.published = append(f.published, event)
	return nil
}

// fakeArchive 把转录留在内存里。
type fakeArchive struct {
	objects map[uint][]byte
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{objects: make(map[uint][]byte)}
}

func (f *fakeArchive) Put(_ context.Context, sessionID uint, data []byte) error {
	f.objects[sessionID] = data
	return nil
}

func (f *fakeArchive) URL(sessionID uint) (string, error) {
	if _, ok := f.objects[sessionID]; !ok {
		return "", fmt.Errorf("no transcript for session %d", sessionID)
	}
	return fmt.Sprintf("https://storage.local/transcripts/%d.json", sessionID), nil
}
