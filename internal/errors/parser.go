package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorInfo is a parsed storage error: a stable code plus a message safe to
// surface to the client.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts storage and driver errors into ErrorInfo. Constraint
// details from Postgres are mapped to codes; everything else passes through
// with the underlying message so the client sees what broke.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "internal server error"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	// Postgres constraint violations via the pq driver error type.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return parseDuplicateKey(pqErr.Constraint)
		case "23503": // foreign_key_violation
			return ErrorInfo{Code: ResourceConflict, Message: "referenced row is missing or still in use"}
		case "23502": // not_null_violation
			return ErrorInfo{Code: ValidationRequired, Message: "required field " + pqErr.Column + " is missing"}
		}
	}

	// SQLite (tests) reports constraint text rather than codes.
	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "unique constraint") || strings.Contains(errLower, "duplicate key") {
		return parseDuplicateKey(errLower)
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{Code: InternalExternalAPI, Message: err.Error()}
	}

	// Storage failures surface the underlying message.
	return ErrorInfo{Code: InternalDatabaseError, Message: err.Error()}
}

func parseDuplicateKey(detail string) ErrorInfo {
	detail = strings.ToLower(detail)

	if strings.Contains(detail, "bottle_tags") {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "bottle is already linked to this tag"}
	}
	if strings.Contains(detail, "idx_tags_owner_name") || strings.Contains(detail, "tags") {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "tag already exists for this owner"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "row already exists"}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "bottle") {
		return "bottle not found"
	}
	if strings.Contains(contextLower, "tag") {
		return "tag not found"
	}
	return "not found"
}
