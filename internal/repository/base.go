// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"journals/internal/database"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Transactor runs fn inside one database transaction. Repositories bound to
// tx with WithTx see the transaction's view and take part in its commit.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor returns a Transactor backed by db.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

// readDB returns the replica for plain reads. Inside a transaction the
// caller passes inTx so reads stay on the transaction's connection.
func readDB(primary *gorm.DB, inTx bool) *gorm.DB {
	if inTx {
		return primary
	}
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

var (
	lockForUpdate = clause.Locking{Strength: "UPDATE"}
	lockForShare  = clause.Locking{Strength: "SHARE"}
)

// isUniqueConstraintError reports whether err is a unique violation, either
// translated by GORM or raised by Postgres as SQLSTATE 23505.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

// normalizePage clamps paging arguments. A negative limit means "no limit".
func normalizePage(limit, offset int) (int, int) {
	if limit == 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
