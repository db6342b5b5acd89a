package gormstore

import "time"

// StudentModel maps the students table. Password and RefreshToken are
// stored for the identity service that owns them; Lookup never selects
// them.
type StudentModel struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	RollNumber   string `gorm:"index"`
	ClassName    string
	Password     string `gorm:"not null"`
	RefreshToken string
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

// TableName pins the table name for gorm.
func (StudentModel) TableName() string { return "students" }

// TeacherModel maps the teachers table.
type TeacherModel struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	Department   string
	Subject      string
	Password     string `gorm:"not null"`
	RefreshToken string
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

// TableName pins the table name for gorm.
func (TeacherModel) TableName() string { return "teachers" }

// principalRow is the projection both tables are read into.
type principalRow struct {
	ID         string
	Role       string
	Name       string
	Email      string
	RollNumber string
	ClassName  string
	Department string
	Subject    string
}
