package db

import (
	"errors"

	"github.com/lib/pq"
)

const (
	PgUniqueViolation     = "23505"
	PgForeignKeyViolation = "23503"
)

func IsUniqueViolation(err error) bool {
	return pgCode(err) == PgUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == PgForeignKeyViolation
}

func pgCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}
