package classAuth

import (
	"context"
	"time"
)

// Role is the principal variant discriminant. It is the only authorization
// axis.
type Role string

const (
	// RoleStudent marks a principal resolved from the student store.
	RoleStudent Role = "student"
	// RoleTeacher marks a principal resolved from the teacher store.
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is one of the known variants.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// String returns the role tag.
func (r Role) String() string {
	return string(r)
}

// StudentProfile holds the student-only attributes of a principal.
type StudentProfile struct {
	RollNumber string `json:"rollNumber,omitempty"`
	ClassName  string `json:"className,omitempty"`
}

// TeacherProfile holds the teacher-only attributes of a principal.
type TeacherProfile struct {
	Department string `json:"department,omitempty"`
	Subject    string `json:"subject,omitempty"`
}

// Principal is the resolved identity behind a credential. Role selects the
// variant and exactly one of Student or Teacher is set to match it.
//
// Principal deliberately has no password or refresh-token field: directories
// project those away before a Principal is built.
type Principal struct {
	ID      string          `json:"_id"`
	Role    Role            `json:"role"`
	Name    string          `json:"name,omitempty"`
	Email   string          `json:"email,omitempty"`
	Student *StudentProfile `json:"student,omitempty"`
	Teacher *TeacherProfile `json:"teacher,omitempty"`
}

// Consistent reports whether the variant payload matches the discriminant.
func (p Principal) Consistent() bool {
	switch p.Role {
	case RoleStudent:
		return p.Student != nil && p.Teacher == nil
	case RoleTeacher:
		return p.Teacher != nil && p.Student == nil
	default:
		return false
	}
}

// CredentialSource names where the gate found the credential.
type CredentialSource string

const (
	SourceNone   CredentialSource = ""       // no credential found
	SourceCookie CredentialSource = "cookie" // accessToken cookie
	SourceHeader CredentialSource = "header" // Authorization: Bearer
)

// AuthResult is attached to the request context by the gate and consumed by
// the role guards and handlers.
type AuthResult struct {
	Principal Principal
	Role      Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Source    CredentialSource
}

// Directory resolves a subject identifier to a principal. Implementations
// return ErrPrincipalNotFound for unknown ids and ErrPrincipalAmbiguous when
// the id matches more than one variant store. Any other error is treated as
// a backend failure.
type Directory interface {
	Lookup(ctx context.Context, id string) (Principal, error)
}

// DirectoryFunc adapts a function to Directory.
type DirectoryFunc func(ctx context.Context, id string) (Principal, error)

// Lookup calls f.
func (f DirectoryFunc) Lookup(ctx context.Context, id string) (Principal, error) {
	return f(ctx, id)
}
