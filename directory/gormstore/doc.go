// Package gormstore resolves classAuth principals from the students and
// teachers tables in Postgres using gorm.
//
// Lookup issues a single UNION ALL statement that selects only
// non-sensitive columns and tags each row with its variant, so a subject is
// resolved with one round trip and an id present in both tables is
// reported as ambiguous instead of silently preferring one.
package gormstore
