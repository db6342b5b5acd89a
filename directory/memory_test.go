package directory

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	classAuth "github.com/MrEthical07/classAuth"
)

func seededMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	if err := m.AddStudent(StudentRecord{
		ID:           "s1",
		Name:         "Asha",
		Email:        "asha@example.edu",
		RollNumber:   "R-17",
		ClassName:    "10B",
		PasswordHash: "$argon2id$secret-hash",
		RefreshToken: "refresh-secret",
	}); err != nil {
		t.Fatalf("add student: %v", err)
	}
	if err := m.AddTeacher(TeacherRecord{
		ID:           "t1",
		Name:         "Mr. Rao",
		Department:   "Science",
		Subject:      "Physics",
		PasswordHash: "$argon2id$teacher-hash",
		RefreshToken: "teacher-refresh",
	}); err != nil {
		t.Fatalf("add teacher: %v", err)
	}
	return m
}

func TestMemoryLookupResolvesTaggedPrincipal(t *testing.T) {
	m := seededMemory(t)
	ctx := context.Background()

	student, err := m.Lookup(ctx, "s1")
	if err != nil {
		t.Fatalf("lookup student: %v", err)
	}
	if student.Role != classAuth.RoleStudent || student.Student == nil || student.Teacher != nil {
		t.Fatalf("unexpected student principal: %+v", student)
	}
	if student.Student.RollNumber != "R-17" {
		t.Fatalf("expected roll number R-17, got %q", student.Student.RollNumber)
	}

	teacher, err := m.Lookup(ctx, "t1")
	if err != nil {
		t.Fatalf("lookup teacher: %v", err)
	}
	if teacher.Role != classAuth.RoleTeacher || teacher.Teacher == nil || teacher.Student != nil {
		t.Fatalf("unexpected teacher principal: %+v", teacher)
	}
	if !teacher.Consistent() || !student.Consistent() {
		t.Fatal("expected resolved principals to be consistent")
	}
}

func TestMemoryLookupNeverExposesSecrets(t *testing.T) {
	m := seededMemory(t)

	for _, id := range []string{"s1", "t1"} {
		p, err := m.Lookup(context.Background(), id)
		if err != nil {
			t.Fatalf("lookup %s: %v", id, err)
		}
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal %s: %v", id, err)
		}
		body := string(data)
		for _, secret := range []string{"hash", "refresh", "password"} {
			if strings.Contains(strings.ToLower(body), secret) {
				t.Fatalf("principal %s leaked %q: %s", id, secret, body)
			}
		}
	}
}

func TestMemoryLookupNotFoundAndAmbiguous(t *testing.T) {
	m := seededMemory(t)
	ctx := context.Background()

	if _, err := m.Lookup(ctx, "ghost"); !errors.Is(err, classAuth.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}

	// Bypass the duplicate guard to simulate two stores disagreeing.
	m.teachers["s1"] = TeacherRecord{ID: "s1"}
	if _, err := m.Lookup(ctx, "s1"); !errors.Is(err, classAuth.ErrPrincipalAmbiguous) {
		t.Fatalf("expected ErrPrincipalAmbiguous, got %v", err)
	}
}

func TestMemoryRejectsDuplicateIDsAcrossVariants(t *testing.T) {
	m := seededMemory(t)

	if err := m.AddTeacher(TeacherRecord{ID: "s1"}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if err := m.AddStudent(StudentRecord{ID: " "}); err == nil {
		t.Fatal("expected empty id to be rejected")
	}

	m.Remove("s1")
	if _, err := m.Lookup(context.Background(), "s1"); !errors.Is(err, classAuth.ErrPrincipalNotFound) {
		t.Fatalf("expected removed id to be gone, got %v", err)
	}
}

func TestMemoryLookupHonoursCancelledContext(t *testing.T) {
	m := seededMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Lookup(ctx, "s1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
