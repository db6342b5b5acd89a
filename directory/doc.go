// Package directory provides principal directories for classAuth.
//
// [Memory] keeps students and teachers in process. The gormstore
// sub-package resolves principals from Postgres. Both implement
// classAuth.Directory and both guarantee that a resolved principal never
// carries a password hash or refresh token.
package directory
