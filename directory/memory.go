package directory

import (
	"context"
	"errors"
	"strings"
	"sync"

	classAuth "github.com/MrEthical07/classAuth"
)

// ErrDuplicateID is returned when an id is already present in either store.
var ErrDuplicateID = errors.New("directory: id already registered")

// StudentRecord is a stored student. PasswordHash and RefreshToken never
// leave the store.
type StudentRecord struct {
	ID           string
	Name         string
	Email        string
	RollNumber   string
	ClassName    string
	PasswordHash string
	RefreshToken string
}

// TeacherRecord is a stored teacher. PasswordHash and RefreshToken never
// leave the store.
type TeacherRecord struct {
	ID           string
	Name         string
	Email        string
	Department   string
	Subject      string
	PasswordHash string
	RefreshToken string
}

// Memory is an in-process two-variant directory for tests, the load
// generator and the demo server. It is safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	students map[string]StudentRecord
	teachers map[string]TeacherRecord
}

// NewMemory returns an empty directory.
func NewMemory() *Memory {
	return &Memory{
		students: make(map[string]StudentRecord),
		teachers: make(map[string]TeacherRecord),
	}
}

// AddStudent stores rec. The id must not exist in either variant store.
func (m *Memory) AddStudent(rec StudentRecord) error {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return errors.New("directory: empty id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exists(id) {
		return ErrDuplicateID
	}
	rec.ID = id
	m.students[id] = rec
	return nil
}

// AddTeacher stores rec. The id must not exist in either variant store.
func (m *Memory) AddTeacher(rec TeacherRecord) error {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return errors.New("directory: empty id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exists(id) {
		return ErrDuplicateID
	}
	rec.ID = id
	m.teachers[id] = rec
	return nil
}

// Remove deletes id from whichever store holds it.
func (m *Memory) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.students, id)
	delete(m.teachers, id)
}

func (m *Memory) exists(id string) bool {
	_, s := m.students[id]
	_, t := m.teachers[id]
	return s || t
}

// Lookup resolves id to the tagged principal with sensitive fields
// projected away.
func (m *Memory) Lookup(ctx context.Context, id string) (classAuth.Principal, error) {
	if err := ctx.Err(); err != nil {
		return classAuth.Principal{}, err
	}

	m.mu.RLock()
	s, isStudent := m.students[id]
	t, isTeacher := m.teachers[id]
	m.mu.RUnlock()

	switch {
	case isStudent && isTeacher:
		return classAuth.Principal{}, classAuth.ErrPrincipalAmbiguous
	case isStudent:
		return StudentPrincipal(s), nil
	case isTeacher:
		return TeacherPrincipal(t), nil
	default:
		return classAuth.Principal{}, classAuth.ErrPrincipalNotFound
	}
}

// StudentPrincipal projects a stored student onto the public principal.
func StudentPrincipal(rec StudentRecord) classAuth.Principal {
	return classAuth.Principal{
		ID:    rec.ID,
		Role:  classAuth.RoleStudent,
		Name:  rec.Name,
		Email: rec.Email,
		Student: &classAuth.StudentProfile{
			RollNumber: rec.RollNumber,
			ClassName:  rec.ClassName,
		},
	}
}

// TeacherPrincipal projects a stored teacher onto the public principal.
func TeacherPrincipal(rec TeacherRecord) classAuth.Principal {
	return classAuth.Principal{
		ID:    rec.ID,
		Role:  classAuth.RoleTeacher,
		Name:  rec.Name,
		Email: rec.Email,
		Teacher: &classAuth.TeacherProfile{
			Department: rec.Department,
			Subject:    rec.Subject,
		},
	}
}
