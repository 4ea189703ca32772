package db

import "strings"

// IsUniqueViolation reports whether err came from a unique constraint on a
// directory table. Postgres surfaces "duplicate key value" along with the
// constraint name, while the in-memory sqlite databases used in tests say
// "UNIQUE constraint failed"; both shapes are matched so callers map the
// error the same way in either environment.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
