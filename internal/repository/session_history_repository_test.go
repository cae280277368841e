package repository

import (
	"errors"
	"testing"

	"converso-go/internal/model"
	"converso-go/pkg/errs"
)

func TestSessionHistory_FindByID_NotFound(t *testing.T) {
	repo := NewSessionHistoryRepository(openTestDB(t))

	_, err := repo.FindByID(42)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionHistory_AppendOnly(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionHistoryRepository(db)
	compRepo := NewCompanionRepository(db)

	seedCompanion(t, compRepo, "c1", "Neura", "maths", "fractions", "user_1")

	// 同一伙伴完成两次会话 → 两行
	for i := 0; i < 2; i++ {
		if err := repo.Create(&model.SessionHistory{CompanionID: "c1", UserID: "user_1"}); err != nil {
			t.Fatalf("create session %d: %v", i, err)
		}
	}

	var count int64
	if err := db.Model(&model.SessionHistory{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}
}

func TestSessionHistory_RecentCompanionsNewestFirstWithDuplicates(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionHistoryRepository(db)
	compRepo := NewCompanionRepository(db)

	seedCompanion(t, compRepo, "c1", "Neura", "maths", "fractions", "user_1")
	seedCompanion(t, compRepo, "c2", "Codey", "coding", "sorting", "user_2")

	// 会话顺序：c1, c2, c1 → 展平结果 [c1 c2 c1]
	for _, id := range []string{"c1", "c2", "c1"} {
		if err := repo.Create(&model.SessionHistory{CompanionID: id, UserID: "user_1"}); err != nil {
			t.Fatalf("create session for %s: %v", id, err)
		}
	}

	got, err := repo.FindRecentCompanions(10)
	if err != nil {
		t.Fatalf("recent companions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	wantIDs := []string{"c1", "c2", "c1"}
	for i, want := range wantIDs {
		if got[i].ID != want {
			t.Fatalf("row %d: expected %s, got %s", i, want, got[i].ID)
		}
	}
}

func TestSessionHistory_CompanionsByUserScoped(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionHistoryRepository(db)
	compRepo := NewCompanionRepository(db)

	seedCompanion(t, compRepo, "c1", "Neura", "maths", "fractions", "user_1")
	seedCompanion(t, compRepo, "c2", "Codey", "coding", "sorting", "user_2")

	if err := repo.Create(&model.SessionHistory{CompanionID: "c1", UserID: "user_1"}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := repo.Create(&model.SessionHistory{CompanionID: "c2", UserID: "user_2"}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := repo.FindCompanionsByUser("user_1", 10)
	if err != nil {
		t.Fatalf("companions by user: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c1" {
		t.Fatalf("expected only c1, got %+v", got)
	}
}

func TestSessionHistory_LimitApplied(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionHistoryRepository(db)
	compRepo := NewCompanionRepository(db)

	seedCompanion(t, compRepo, "c1", "Neura", "maths", "fractions", "user_1")

	for i := 0; i < 5; i++ {
		if err := repo.Create(&model.SessionHistory{CompanionID: "c1", UserID: "user_1"}); err != nil {
			t.Fatalf("create session %d: %v", i, err)
		}
	}

	got, err := repo.FindRecentCompanions(3)
	if err != nil {
		t.Fatalf("recent companions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
}
