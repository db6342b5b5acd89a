//go:build integration
// +build integration

package gormstore

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	classAuth "github.com/MrEthical07/classAuth"
	"github.com/MrEthical07/classAuth/password"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *Store {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN_TEST"))
	if dsn == "" {
		t.Skip("POSTGRES_DSN_TEST not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	hasher, err := password.NewHasher(password.Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	store := New(db).WithHasher(hasher)
	if err := store.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec("TRUNCATE students, teachers").Error; err != nil {
		t.Fatalf("reset tables: %v", err)
	}
	return store
}

func TestStoreLookupAgainstPostgres(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	studentID, err := store.CreateStudent(ctx, StudentModel{
		Name:         "Asha",
		Email:        "asha@example.edu",
		RollNumber:   "R-17",
		ClassName:    "10B",
		Password:     "asha-plaintext-pw",
		RefreshToken: "refresh",
	})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	teacherID, err := store.CreateTeacher(ctx, TeacherModel{
		Name:       "Mr. Rao",
		Email:      "rao@example.edu",
		Department: "Science",
		Subject:    "Physics",
		Password:   "rao-plaintext-pw",
	})
	if err != nil {
		t.Fatalf("create teacher: %v", err)
	}

	var stored StudentModel
	if err := store.DB().First(&stored, "id = ?", studentID).Error; err != nil {
		t.Fatalf("load student row: %v", err)
	}
	if !password.IsHash(stored.Password) {
		t.Fatalf("expected stored password to be hashed, got %q", stored.Password)
	}

	student, err := store.Lookup(ctx, studentID)
	if err != nil {
		t.Fatalf("lookup student: %v", err)
	}
	if student.Role != classAuth.RoleStudent || student.Student == nil || student.Student.ClassName != "10B" {
		t.Fatalf("unexpected student: %+v", student)
	}

	teacher, err := store.Lookup(ctx, teacherID)
	if err != nil {
		t.Fatalf("lookup teacher: %v", err)
	}
	if teacher.Role != classAuth.RoleTeacher || teacher.Teacher == nil || teacher.Teacher.Subject != "Physics" {
		t.Fatalf("unexpected teacher: %+v", teacher)
	}

	if _, err := store.Lookup(ctx, uuid.NewString()); !errors.Is(err, classAuth.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestStoreLookupAmbiguousAgainstPostgres(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	id := uuid.NewString()

	if _, err := store.CreateStudent(ctx, StudentModel{ID: id, Name: "A", Email: "a@example.edu", Password: "ambiguous-pw-1"}); err != nil {
		t.Fatalf("create student: %v", err)
	}
	if _, err := store.CreateTeacher(ctx, TeacherModel{ID: id, Name: "A", Email: "a@example.edu", Password: "ambiguous-pw-1"}); err != nil {
		t.Fatalf("create teacher: %v", err)
	}

	if _, err := store.Lookup(ctx, id); !errors.Is(err, classAuth.ErrPrincipalAmbiguous) {
		t.Fatalf("expected ErrPrincipalAmbiguous, got %v", err)
	}
}
