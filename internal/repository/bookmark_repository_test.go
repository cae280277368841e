package repository

import (
	"testing"

	"converso-go/internal/model"
)

func TestBookmark_AddThenRemoveLeavesNoRows(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookmarkRepository(db)
	compRepo := NewCompanionRepository(db)

	seedCompanion(t, compRepo, "c1", "Neura", "maths", "fractions", "user_1")

	if err := repo.Create(&model.Bookmark{CompanionID: "c1", UserID: "user_1"}); err != nil {
		t.Fatalf("create bookmark: %v", err)
	}
	if err := repo.DeleteByPair("c1", "user_1"); err != nil {
		t.Fatalf("delete bookmark: %v", err)
	}

	var count int64
	if err := db.Model(&model.Bookmark{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 rows after remove, got %d", count)
	}
}

func TestBookmark_RemoveMissingIsNoop(t *testing.T) {
	repo := NewBookmarkRepository(openTestDB(t))

	if err := repo.DeleteByPair("c1", "user_1"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestBookmark_ExistsByPair(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookmarkRepository(db)
	compRepo := NewCompanionRepository(db)

	seedCompanion(t, compRepo, "c1", "Neura", "maths", "fractions", "user_1")

	exists, err := repo.ExistsByPair("c1", "user_1")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected not exists before create")
	}

	if err := repo.Create(&model.Bookmark{CompanionID: "c1", UserID: "user_1"}); err != nil {
		t.Fatalf("create bookmark: %v", err)
	}

	exists, err = repo.ExistsByPair("c1", "user_1")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("expected exists after create")
	}
}

func TestBookmark_CompanionsByUserNewestFirst(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookmarkRepository(db)
	compRepo := NewCompanionRepository(db)

	seedCompanion(t, compRepo, "c1", "Neura", "maths", "fractions", "user_1")
	seedCompanion(t, compRepo, "c2", "Codey", "coding", "sorting", "user_2")

	if err := repo.Create(&model.Bookmark{CompanionID: "c1", UserID: "user_1"}); err != nil {
		t.Fatalf("create bookmark: %v", err)
	}
	if err := repo.Create(&model.Bookmark{CompanionID: "c2", UserID: "user_1"}); err != nil {
		t.Fatalf("create bookmark: %v", err)
	}
	if err := repo.Create(&model.Bookmark{CompanionID: "c1", UserID: "user_2"}); err != nil {
		t.Fatalf("create bookmark: %v", err)
	}

	got, err := repo.FindCompanionsByUser("user_1")
	if err != nil {
		t.Fatalf("companions by user: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].ID != "c2" || got[1].ID != "c1" {
		t.Fatalf("expected newest first [c2 c1], got [%s %s]", got[0].ID, got[1].ID)
	}
}
