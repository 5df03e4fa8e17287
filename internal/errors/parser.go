package errors

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

// ParseDBError converts a raw database error into a structured APIError.
// It recognizes driver-specific duplicate-key errors for MySQL and PostgreSQL
// so callers can respond with a conflict instead of a generic 500.
func ParseDBError(err error) *APIError {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrResourceNotFound
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		// 1062: ER_DUP_ENTRY
		if mysqlErr.Number == 1062 {
			return ErrDuplicateResource
		}
		return ErrDatabase
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505: unique_violation
		if pgErr.Code == "23505" {
			return ErrDuplicateResource
		}
		return ErrDatabase
	}

	// SQLite reports constraint violations by message only.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed") {
		return ErrDuplicateResource
	}

	return ErrDatabase
}

// ParseUpstreamError extracts a human-readable message from an upstream model
// backend error body. Providers disagree on the envelope, so several common
// shapes are probed in order before falling back to the raw body.
func ParseUpstreamError(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	if !gjson.ValidBytes(body) {
		return trimmed
	}

	// {"error": {"message": "..."}}
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() && msg.String() != "" {
		return strings.TrimSpace(msg.String())
	}
	// {"error": "..."}
	if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String && msg.String() != "" {
		return strings.TrimSpace(msg.String())
	}
	// {"error_msg": "..."} (some vendors)
	if msg := gjson.GetBytes(body, "error_msg"); msg.Exists() && msg.String() != "" {
		return strings.TrimSpace(msg.String())
	}
	// {"message": "..."}
	if msg := gjson.GetBytes(body, "message"); msg.Exists() && msg.String() != "" {
		return strings.TrimSpace(msg.String())
	}

	return trimmed
}
