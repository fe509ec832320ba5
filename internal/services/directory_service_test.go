package services

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/jotasones/guardias-backend/internal/domain"
	"github.com/jotasones/guardias-backend/internal/repo"
)

func openServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "guardias.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// fakeProfiles is a canned remote directory feed.
type fakeProfiles struct {
	profiles []domain.TeacherProfile
}

func (f *fakeProfiles) Teachers(ctx context.Context) []domain.TeacherProfile {
	return f.profiles
}

func profile(first, last, origin string) domain.TeacherProfile {
	return domain.TeacherProfile{FirstName: first, LastName: last, Origin: origin}
}

func TestDirectoryTeachers_MergeAndDedupe(t *testing.T) {
	db := openServiceDB(t)
	ctx := context.Background()
	repo.CreateTeacher(ctx, db, "José", "García")
	repo.CreateTeacher(ctx, db, "Ana", "Martín")

	svc := NewDirectoryService(db,
		&fakeProfiles{profiles: []domain.TeacherProfile{
			profile("JOSÉ", "GARCÍA", "remota"), // duplicate of the local row, case differs
			profile("Marta", "Ruiz", "remota"),
		}},
		&fakeProfiles{profiles: []domain.TeacherProfile{
			profile("Marta", "Ruiz", "script"), // already seen from the first feed
			profile("Elena", "Soto", "script"),
		}},
	)

	got, err := svc.Teachers(ctx)
	if err != nil {
		t.Fatalf("Teachers: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d entries; want 4: %+v", len(got), got)
	}
	if got[0].FirstName != "José" || got[0].Origin != "local" {
		t.Fatalf("local rows must come first and win: %+v", got[0])
	}
	if got[2].FirstName != "Marta" || got[2].Origin != "remota" {
		t.Fatalf("first remote occurrence must win: %+v", got[2])
	}
	// External entries are numbered from 100.
	if got[2].ID != 100 || got[3].ID != 101 {
		t.Fatalf("external ids = %d, %d; want 100, 101", got[2].ID, got[3].ID)
	}
	if got[0].ID == 100 || got[1].ID == 101 {
		t.Fatalf("local rows must keep their directory ids: %+v", got[:2])
	}
}

func TestDirectoryTeachers_WithoutBackingStore(t *testing.T) {
	svc := NewDirectoryService(nil,
		&fakeProfiles{profiles: []domain.TeacherProfile{profile("Marta", "Ruiz", "remota")}},
	)
	got, err := svc.Teachers(context.Background())
	if err != nil {
		t.Fatalf("Teachers: %v", err)
	}
	if len(got) != 1 || got[0].ID != 100 {
		t.Fatalf("got %+v", got)
	}
}

func TestDirectoryTeachers_BlankEntriesSkipped(t *testing.T) {
	svc := NewDirectoryService(nil,
		&fakeProfiles{profiles: []domain.TeacherProfile{profile("", "", "remota"), profile("Marta", "", "remota")}},
	)
	got, err := svc.Teachers(context.Background())
	if err != nil {
		t.Fatalf("Teachers: %v", err)
	}
	if len(got) != 1 || got[0].FirstName != "Marta" {
		t.Fatalf("got %+v", got)
	}
}

func TestDirectoryGroups_Fallback(t *testing.T) {
	svc := NewDirectoryService(nil)
	got, err := svc.Groups(context.Background())
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if len(got) != 3 || got[0].Name != "1º ESO A" || got[2].Name != "Sala Profesores" {
		t.Fatalf("fallback = %+v", got)
	}

	// An empty table also falls back.
	db := openServiceDB(t)
	svc = NewDirectoryService(db)
	got, err = svc.Groups(context.Background())
	if err != nil || len(got) != 3 {
		t.Fatalf("empty-table fallback: %v %+v", err, got)
	}

	// Seeded rows win over the fallback.
	repo.CreateGroup(context.Background(), db, "3º ESO C")
	got, err = svc.Groups(context.Background())
	if err != nil || len(got) != 1 || got[0].Name != "3º ESO C" {
		t.Fatalf("seeded groups: %v %+v", err, got)
	}
}

func closeBackingStore(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestDirectoryGroups_FallbackWhenStoreUnreachable(t *testing.T) {
	db := openServiceDB(t)
	ctx := context.Background()
	repo.CreateGroup(ctx, db, "3º ESO C")
	closeBackingStore(t, db)

	got, err := NewDirectoryService(db).Groups(ctx)
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if len(got) != 3 || got[0].Name != "1º ESO A" || got[2].Name != "Sala Profesores" {
		t.Fatalf("expected built-in fallback, got %+v", got)
	}
}

func TestDirectoryTeachers_LocalFailureKeepsRemoteLegs(t *testing.T) {
	db := openServiceDB(t)
	ctx := context.Background()
	repo.CreateTeacher(ctx, db, "Ana", "Martín")
	closeBackingStore(t, db)

	svc := NewDirectoryService(db, &fakeProfiles{profiles: []domain.TeacherProfile{
		profile("Marta", "Ruiz", "remota"),
	}})

	got, err := svc.Teachers(ctx)
	if err != nil {
		t.Fatalf("Teachers: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries; want the remote leg alone: %+v", len(got), got)
	}
	if got[0].FirstName != "Marta" || got[0].ID != 100 || got[0].Origin != "remota" {
		t.Fatalf("remote entry misnumbered or mistagged: %+v", got[0])
	}
}
