// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the stores translate into domain outcomes.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
)

// maxSlugAttempts bounds the insert-and-suffix loop on slug collisions.
const maxSlugAttempts = 5

// constraintError returns the SQLSTATE code and constraint name of a
// PostgreSQL error, or empty strings for any other error.
func constraintError(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// isSlugConflict reports whether err is a unique violation on a slug column.
func isSlugConflict(err error, constraint string) bool {
	code, name := constraintError(err)
	return code == codeUniqueViolation && name == constraint
}
