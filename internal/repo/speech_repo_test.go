package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trippingly/go-speech-backend/internal/domain"
)

func newRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestCreateSpeech_Error_NoTable(t *testing.T) {
	db := newRepoDB(t /* no migrations */)
	sp, err := CreateSpeech(context.Background(), db, "u1", "n", "c")
	if err == nil || sp != nil {
		t.Fatalf("expected error creating without table, got speech=%v err=%v", sp, err)
	}
}

func TestCreateSpeech_Success_PersistsAndSetsFields(t *testing.T) {
	db := newRepoDB(t, &domain.Speech{})

	start := time.Now().UTC().Add(-time.Minute)
	sp, err := CreateSpeech(context.Background(), db, "u1", "Gettysburg", "Four score...")
	if err != nil {
		t.Fatalf("CreateSpeech: %v", err)
	}
	if sp.ID == "" || sp.UserID != "u1" || sp.Name != "Gettysburg" || sp.Content != "Four score..." {
		t.Fatalf("unexpected Speech fields: %+v", sp)
	}
	if sp.CreatedAt.Before(start) {
		t.Fatalf("CreatedAt seems unset/really old: %v", sp.CreatedAt)
	}
	// round-trip
	var got domain.Speech
	if err := db.First(&got, "id = ?", sp.ID).Error; err != nil {
		t.Fatalf("load created speech: %v", err)
	}
	if got.UserID != "u1" || got.Content != "Four score..." {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestListSpeeches_OrderDescendingAndFilter(t *testing.T) {
	db := newRepoDB(t, &domain.Speech{})

	// Seed with known CreatedAt so order is deterministic.
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(1 * time.Hour)
	t3 := t2.Add(1 * time.Hour)
	s1 := domain.Speech{ID: "s1", UserID: "u1", Name: "A", Content: "a", CreatedAt: t1}
	s2 := domain.Speech{ID: "s2", UserID: "u1", Name: "B", Content: "b", CreatedAt: t2}
	s3 := domain.Speech{ID: "s3", UserID: "u1", Name: "C", Content: "c", CreatedAt: t3}
	sx := domain.Speech{ID: "sx", UserID: "u2", Name: "Other", Content: "x", CreatedAt: t2}

	for _, s := range []domain.Speech{s1, s2, s3, sx} {
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed %s: %v", s.ID, err)
		}
	}

	list, err := ListSpeeches(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("ListSpeeches: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 speeches for u1, got %d", len(list))
	}
	if list[0].ID != "s3" || list[1].ID != "s2" || list[2].ID != "s1" {
		t.Fatalf("unexpected order: %#v", list)
	}
}

func TestListSpeechesPage_And_Count(t *testing.T) {
	db := newRepoDB(t, &domain.Speech{})

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s := domain.Speech{
			ID:        fmt.Sprintf("s%d", i),
			UserID:    "u1",
			Name:      fmt.Sprintf("speech %d", i),
			Content:   "text",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	total, err := CountSpeeches(context.Background(), db, "u1")
	if err != nil || total != 5 {
		t.Fatalf("CountSpeeches = (%d, %v), want 5", total, err)
	}

	page, err := ListSpeechesPage(context.Background(), db, "u1", 2, 2)
	if err != nil {
		t.Fatalf("ListSpeechesPage: %v", err)
	}
	// Descending order: s4 s3 | s2 s1 | s0 -> offset 2 limit 2 gives s2, s1.
	if len(page) != 2 || page[0].ID != "s2" || page[1].ID != "s1" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestGetSpeech_ByIDIgnoresOwner(t *testing.T) {
	db := newRepoDB(t, &domain.Speech{})
	if err := db.Create(&domain.Speech{ID: "s1", UserID: "u1", Name: "n", Content: "c"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Anyone's ID lookup finds the row; ownership policy lives above repo.
	sp, err := GetSpeech(context.Background(), db, "s1")
	if err != nil || sp.UserID != "u1" {
		t.Fatalf("GetSpeech = (%+v, %v)", sp, err)
	}

	if _, err := GetSpeech(context.Background(), db, "missing"); err != ErrNotFound {
		t.Fatalf("missing speech err = %v, want ErrNotFound", err)
	}
}

func TestDeleteSpeech_IdempotentAndOwnerScoped(t *testing.T) {
	db := newRepoDB(t, &domain.Speech{})
	if err := db.Create(&domain.Speech{ID: "s1", UserID: "u1", Name: "n", Content: "c"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Someone else's delete removes nothing.
	removed, err := DeleteSpeech(context.Background(), db, "s1", "u2")
	if err != nil || removed {
		t.Fatalf("cross-user delete = (%v, %v), want (false, nil)", removed, err)
	}

	removed, err = DeleteSpeech(context.Background(), db, "s1", "u1")
	if err != nil || !removed {
		t.Fatalf("first delete = (%v, %v), want (true, nil)", removed, err)
	}

	// Second delete finds nothing; still not an error.
	removed, err = DeleteSpeech(context.Background(), db, "s1", "u1")
	if err != nil || removed {
		t.Fatalf("second delete = (%v, %v), want (false, nil)", removed, err)
	}

	// Soft delete hides the row from normal reads.
	if _, err := GetSpeech(context.Background(), db, "s1"); err != ErrNotFound {
		t.Fatalf("deleted speech err = %v, want ErrNotFound", err)
	}
}

func TestUpdateSpeechContent_MergesContentOnly(t *testing.T) {
	db := newRepoDB(t, &domain.Speech{})
	orig := domain.Speech{ID: "s1", UserID: "u1", Name: "keep me", Content: "old"}
	if err := db.Create(&orig).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := UpdateSpeechContent(context.Background(), db, "s1", "new clean text"); err != nil {
		t.Fatalf("UpdateSpeechContent: %v", err)
	}

	var got domain.Speech
	if err := db.First(&got, "id = ?", "s1").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Content != "new clean text" {
		t.Fatalf("content = %q", got.Content)
	}
	if got.Name != "keep me" || got.UserID != "u1" {
		t.Fatalf("merge touched other columns: %+v", got)
	}

	if err := UpdateSpeechContent(context.Background(), db, "missing", "x"); err != ErrNotFound {
		t.Fatalf("missing err = %v, want ErrNotFound", err)
	}
}
