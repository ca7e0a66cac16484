package db

import "strings"

// IsUniqueViolation reports whether err carries a unique-constraint
// violation. With a constraintName the check narrows to that constraint.
// Both the Postgres and sqlite message shapes are recognized so the
// helper behaves the same under the in-memory test driver.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
