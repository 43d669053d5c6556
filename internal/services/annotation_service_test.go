package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trippingly/go-speech-backend/internal/domain"
	"github.com/trippingly/go-speech-backend/internal/repo"
)

func newAnnotationDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:ann_svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedSpeech(t *testing.T, db *gorm.DB, id, userID, content string) {
	t.Helper()
	sp := domain.Speech{ID: id, UserID: userID, Name: "speech", Content: content}
	if err := db.Create(&sp).Error; err != nil {
		t.Fatalf("seed speech: %v", err)
	}
}

const annClean = "Hello world! This is a test."

func TestSave_PersistsAssociationAndMergesContent(t *testing.T) {
	db := newAnnotationDB(t)
	svc := &AnnotationService{DB: db}
	seedSpeech(t, db, "s1", "u1", "stale server copy")

	a, created, err := svc.Save(context.Background(), "u1", SaveAssociationInput{
		SpeechID:     "s1",
		OriginalText: "Hello",
		Emoji:        "😀",
		Position:     0,
		CleanSpeech:  annClean,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !created || a.ID == "" || a.Position != 0 || a.Length != 5 || a.Emoji != "😀" {
		t.Fatalf("unexpected result: created=%v assoc=%+v", created, a)
	}

	// Durability merge: content column now carries the client's clean text.
	var sp domain.Speech
	if err := db.First(&sp, "id = ?", "s1").Error; err != nil {
		t.Fatalf("reload speech: %v", err)
	}
	if sp.Content != annClean {
		t.Fatalf("content = %q, want merged clean text", sp.Content)
	}
	if sp.Name != "speech" || sp.UserID != "u1" {
		t.Fatalf("merge touched other columns: %+v", sp)
	}
}

func TestSave_OwnershipAndExistence(t *testing.T) {
	db := newAnnotationDB(t)
	svc := &AnnotationService{DB: db}
	seedSpeech(t, db, "s1", "u1", annClean)

	in := SaveAssociationInput{SpeechID: "missing", OriginalText: "Hello", Emoji: "😀", CleanSpeech: annClean}
	if _, _, err := svc.Save(context.Background(), "u1", in); !errors.Is(err, ErrSpeechNotFound) {
		t.Fatalf("missing speech err = %v, want ErrSpeechNotFound", err)
	}

	in.SpeechID = "s1"
	if _, _, err := svc.Save(context.Background(), "intruder", in); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("foreign speech err = %v, want ErrNotOwner", err)
	}
}

func TestSave_SelectionValidation(t *testing.T) {
	db := newAnnotationDB(t)
	svc := &AnnotationService{DB: db}
	seedSpeech(t, db, "s1", "u1", annClean)
	ctx := context.Background()

	// Position beyond the clean text.
	_, _, err := svc.Save(ctx, "u1", SaveAssociationInput{
		SpeechID: "s1", OriginalText: "test.", Emoji: "🧪", Position: 999, CleanSpeech: annClean,
	})
	if !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("out-of-bounds err = %v, want ErrInvalidPosition", err)
	}

	// Text does not match the clean text at the claimed position.
	_, _, err = svc.Save(ctx, "u1", SaveAssociationInput{
		SpeechID: "s1", OriginalText: "world", Emoji: "🌍", Position: 0, CleanSpeech: annClean,
	})
	if !errors.Is(err, ErrSelectionMismatch) {
		t.Fatalf("mismatch err = %v, want ErrSelectionMismatch", err)
	}

	// Empty cleanSpeech falls back to the stored content.
	a, created, err := svc.Save(ctx, "u1", SaveAssociationInput{
		SpeechID: "s1", OriginalText: "Hello", Emoji: "😀", Position: 0,
	})
	if err != nil || !created || a.OriginalText != "Hello" {
		t.Fatalf("fallback save = (%+v, %v, %v)", a, created, err)
	}
}

func TestSave_RejectsOverlap(t *testing.T) {
	db := newAnnotationDB(t)
	svc := &AnnotationService{DB: db}
	seedSpeech(t, db, "s1", "u1", annClean)
	ctx := context.Background()

	if _, _, err := svc.Save(ctx, "u1", SaveAssociationInput{
		SpeechID: "s1", OriginalText: "world", Emoji: "🌍", Position: 6, CleanSpeech: annClean,
	}); err != nil {
		t.Fatalf("seed association: %v", err)
	}

	// "o world"[4:11] crosses the existing [6,11) range.
	_, _, err := svc.Save(ctx, "u1", SaveAssociationInput{
		SpeechID: "s1", OriginalText: "o world", Emoji: "💥", Position: 4, CleanSpeech: annClean,
	})
	if !errors.Is(err, ErrOverlappingAssociation) {
		t.Fatalf("overlap err = %v, want ErrOverlappingAssociation", err)
	}

	// The failed save left no rows behind.
	assocs, err := repo.ListAssociations(ctx, db, "s1")
	if err != nil || len(assocs) != 1 {
		t.Fatalf("associations after overlap = (%d, %v)", len(assocs), err)
	}

	// Adjacent ranges are fine.
	if _, _, err := svc.Save(ctx, "u1", SaveAssociationInput{
		SpeechID: "s1", OriginalText: "!", Emoji: "❗", Position: 11, CleanSpeech: annClean,
	}); err != nil {
		t.Fatalf("adjacent save: %v", err)
	}
}

func TestSave_IdempotentReplay(t *testing.T) {
	db := newAnnotationDB(t)
	svc := &AnnotationService{DB: db, IdempotencyTTL: time.Hour}
	seedSpeech(t, db, "s1", "u1", annClean)
	ctx := context.Background()

	in := SaveAssociationInput{
		SpeechID:       "s1",
		OriginalText:   "Hello",
		Emoji:          "😀",
		Position:       0,
		CleanSpeech:    annClean,
		IdempotencyKey: "retry-key-1",
	}

	first, created, err := svc.Save(ctx, "u1", in)
	if err != nil || !created {
		t.Fatalf("first save = (%+v, %v, %v)", first, created, err)
	}

	// The retry returns the original association without inserting.
	second, created, err := svc.Save(ctx, "u1", in)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if created {
		t.Fatalf("replay reported created=true")
	}
	if second.ID != first.ID {
		t.Fatalf("replay returned %s, want %s", second.ID, first.ID)
	}

	assocs, err := repo.ListAssociations(ctx, db, "s1")
	if err != nil || len(assocs) != 1 {
		t.Fatalf("associations after replay = (%d, %v)", len(assocs), err)
	}
}

func TestUpdateToggle_ChecksOwnershipAndMembership(t *testing.T) {
	db := newAnnotationDB(t)
	svc := &AnnotationService{DB: db}
	seedSpeech(t, db, "s1", "u1", annClean)
	seedSpeech(t, db, "s2", "u1", annClean)
	ctx := context.Background()

	a, _, err := svc.Save(ctx, "u1", SaveAssociationInput{
		SpeechID: "s1", OriginalText: "Hello", Emoji: "😀", Position: 0, CleanSpeech: annClean,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.UpdateToggle(ctx, "u1", "missing", a.ID, true, 1); !errors.Is(err, ErrSpeechNotFound) {
		t.Fatalf("missing speech err = %v", err)
	}
	if err := svc.UpdateToggle(ctx, "intruder", "s1", a.ID, true, 1); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("foreign speech err = %v", err)
	}
	if err := svc.UpdateToggle(ctx, "u1", "s1", "missing", true, 1); !errors.Is(err, ErrAssociationNotFound) {
		t.Fatalf("missing assoc err = %v", err)
	}
	// Association exists but belongs to another speech.
	if err := svc.UpdateToggle(ctx, "u1", "s2", a.ID, true, 1); !errors.Is(err, ErrAssociationNotFound) {
		t.Fatalf("wrong-speech assoc err = %v", err)
	}

	if err := svc.UpdateToggle(ctx, "u1", "s1", a.ID, true, 1); err != nil {
		t.Fatalf("valid toggle: %v", err)
	}
}

func TestUpdateToggle_StaleVersionSilentlyDropped(t *testing.T) {
	db := newAnnotationDB(t)
	svc := &AnnotationService{DB: db}
	seedSpeech(t, db, "s1", "u1", annClean)
	ctx := context.Background()

	a, _, err := svc.Save(ctx, "u1", SaveAssociationInput{
		SpeechID: "s1", OriginalText: "Hello", Emoji: "😀", Position: 0, CleanSpeech: annClean,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.UpdateToggle(ctx, "u1", "s1", a.ID, true, 5); err != nil {
		t.Fatalf("v5 toggle: %v", err)
	}
	// A racing mirror with an older version still succeeds but changes nothing.
	if err := svc.UpdateToggle(ctx, "u1", "s1", a.ID, false, 3); err != nil {
		t.Fatalf("stale toggle: %v", err)
	}

	toggles, err := repo.ListToggles(ctx, db, "s1")
	if err != nil {
		t.Fatalf("ListToggles: %v", err)
	}
	got := toggles[a.ID]
	if !got.ShowOriginal || got.Version != 5 {
		t.Fatalf("stale write applied: %+v", got)
	}
}

func TestSnapshot_ReturnsAssociationsAndToggles(t *testing.T) {
	db := newAnnotationDB(t)
	svc := &AnnotationService{DB: db}
	seedSpeech(t, db, "s1", "u1", annClean)
	ctx := context.Background()

	a1, _, err := svc.Save(ctx, "u1", SaveAssociationInput{
		SpeechID: "s1", OriginalText: "world", Emoji: "🌍", Position: 6, CleanSpeech: annClean,
	})
	if err != nil {
		t.Fatalf("seed a1: %v", err)
	}
	a2, _, err := svc.Save(ctx, "u1", SaveAssociationInput{
		SpeechID: "s1", OriginalText: "Hello", Emoji: "😀", Position: 0, CleanSpeech: annClean,
	})
	if err != nil {
		t.Fatalf("seed a2: %v", err)
	}
	if err := svc.UpdateToggle(ctx, "u1", "s1", a1.ID, true, 1); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	sp, assocs, toggles, err := svc.Snapshot(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if sp.ID != "s1" {
		t.Fatalf("speech = %+v", sp)
	}
	// Position order, not insertion order.
	if len(assocs) != 2 || assocs[0].ID != a2.ID || assocs[1].ID != a1.ID {
		t.Fatalf("assocs = %+v", assocs)
	}
	if len(toggles) != 1 || !toggles[a1.ID].ShowOriginal {
		t.Fatalf("toggles = %+v", toggles)
	}

	if _, _, _, err := svc.Snapshot(ctx, "intruder", "s1"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("foreign snapshot err = %v", err)
	}
	if _, _, _, err := svc.Snapshot(ctx, "u1", "missing"); !errors.Is(err, ErrSpeechNotFound) {
		t.Fatalf("missing snapshot err = %v", err)
	}
}
