package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	classAuth "github.com/MrEthical07/classAuth"
	"github.com/MrEthical07/classAuth/password"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errDBUnavailable = errors.New("gormstore: database not configured")

// One statement, both variants, sensitive columns never selected. LIMIT 2
// is enough to detect an id present in both tables.
const lookupSQL = `SELECT id, 'student' AS role, name, email, roll_number, class_name, '' AS department, '' AS subject
FROM students WHERE id = ?
UNION ALL
SELECT id, 'teacher' AS role, name, email, '' AS roll_number, '' AS class_name, department, subject
FROM teachers WHERE id = ?
LIMIT 2`

// Store is a classAuth.Directory backed by Postgres through gorm.
type Store struct {
	db     *gorm.DB
	hasher *password.Hasher
}

// New returns a Store over db. Call AutoMigrate before first use.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to dsn with the postgres driver. gorm's own query logging
// is silenced; failures surface as errors to the engine, which logs them.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("gormstore: empty dsn")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(db), nil
}

// WithHasher makes CreateStudent and CreateTeacher hash plaintext
// passwords before insert. Values that are already PHC hashes are stored
// as given.
func (s *Store) WithHasher(h *password.Hasher) *Store {
	s.hasher = h
	return s
}

// DB exposes the underlying handle for migrations and seeding.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// AutoMigrate creates or updates the students and teachers tables.
func (s *Store) AutoMigrate(ctx context.Context) error {
	if s.db == nil {
		return errDBUnavailable
	}
	return s.db.WithContext(ctx).AutoMigrate(&StudentModel{}, &TeacherModel{})
}

func lookupQuery(tx *gorm.DB, id string, dest *[]principalRow) *gorm.DB {
	return tx.Raw(lookupSQL, id, id).Scan(dest)
}

// Lookup implements classAuth.Directory. Ids that are not uuids cannot
// exist in either table and resolve to ErrPrincipalNotFound without a
// query.
func (s *Store) Lookup(ctx context.Context, id string) (classAuth.Principal, error) {
	if s.db == nil {
		return classAuth.Principal{}, errDBUnavailable
	}
	if _, err := uuid.Parse(id); err != nil {
		return classAuth.Principal{}, classAuth.ErrPrincipalNotFound
	}

	var rows []principalRow
	if err := lookupQuery(s.db.WithContext(ctx), id, &rows).Error; err != nil {
		return classAuth.Principal{}, fmt.Errorf("gormstore: lookup: %w", err)
	}

	switch len(rows) {
	case 0:
		return classAuth.Principal{}, classAuth.ErrPrincipalNotFound
	case 1:
		return rows[0].principal()
	default:
		return classAuth.Principal{}, classAuth.ErrPrincipalAmbiguous
	}
}

func (r principalRow) principal() (classAuth.Principal, error) {
	p := classAuth.Principal{
		ID:    r.ID,
		Role:  classAuth.Role(r.Role),
		Name:  r.Name,
		Email: r.Email,
	}
	switch p.Role {
	case classAuth.RoleStudent:
		p.Student = &classAuth.StudentProfile{RollNumber: r.RollNumber, ClassName: r.ClassName}
	case classAuth.RoleTeacher:
		p.Teacher = &classAuth.TeacherProfile{Department: r.Department, Subject: r.Subject}
	default:
		return classAuth.Principal{}, fmt.Errorf("gormstore: unexpected role %q", r.Role)
	}
	return p, nil
}

// CreateStudent inserts m, assigning a uuid when ID is empty. It returns the
// stored id.
func (s *Store) CreateStudent(ctx context.Context, m StudentModel) (string, error) {
	if s.db == nil {
		return "", errDBUnavailable
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	hashed, err := s.hashPassword(m.Password)
	if err != nil {
		return "", fmt.Errorf("gormstore: create student: %w", err)
	}
	m.Password = hashed
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return "", fmt.Errorf("gormstore: create student: %w", err)
	}
	return m.ID, nil
}

// CreateTeacher inserts m, assigning a uuid when ID is empty. It returns the
// stored id.
func (s *Store) CreateTeacher(ctx context.Context, m TeacherModel) (string, error) {
	if s.db == nil {
		return "", errDBUnavailable
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	hashed, err := s.hashPassword(m.Password)
	if err != nil {
		return "", fmt.Errorf("gormstore: create teacher: %w", err)
	}
	m.Password = hashed
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return "", fmt.Errorf("gormstore: create teacher: %w", err)
	}
	return m.ID, nil
}

func (s *Store) hashPassword(plaintext string) (string, error) {
	if s.hasher == nil || plaintext == "" || password.IsHash(plaintext) {
		return plaintext, nil
	}
	return s.hasher.Hash(plaintext)
}
